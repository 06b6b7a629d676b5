package event

import "encoding/json"

// Chat Event Types - Client to Server
const (
	// EventSendMessage - Client posts a new message
	EventSendMessage = "sendMessage"

	// EventUpdateMessageStatus - Client acks delivery or reading of a message
	EventUpdateMessageStatus = "updateMessageStatus"

	// EventMarkConversationRead - Client acks every unread message in a conversation
	EventMarkConversationRead = "markConversationAsRead"

	// EventJoinConversation - Client subscribes to a conversation room
	EventJoinConversation = "joinConversation"

	// EventLeaveConversation - Client unsubscribes from a conversation room
	EventLeaveConversation = "leaveConversation"

	// EventRenameConversation - Client renames a group conversation
	EventRenameConversation = "renameConversation"
)

// Chat Event Types - Server to Client
const (
	// EventReceiveMessage - Full message record pushed to recipients
	EventReceiveMessage = "receiveMessage"

	// EventMessageSent - Persistence ack pushed back to the sender
	EventMessageSent = "messageSent"

	// EventMessageStatusUpdated - Status transition pushed to the sender
	EventMessageStatusUpdated = "messageStatusUpdated"

	// EventConversationRead - Whole-conversation read receipt to a sender
	EventConversationRead = "conversationRead"

	// EventUserStatusChanged - Aggregate presence flip broadcast
	EventUserStatusChanged = "userStatusChanged"

	// EventNotification - Social notification pushed to its recipient
	EventNotification = "notification"

	// EventError - Transport-level error pushed to the offending client
	EventError = "error"
)

// WsEvent is the envelope every socket frame carries in both directions.
type WsEvent struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// New marshals payload into a WsEvent envelope. Marshal failures are
// programming errors (all payload types are plain structs), so the error
// is swallowed and an empty payload sent.
func New(name string, payload any) WsEvent {
	raw, _ := json.Marshal(payload)
	return WsEvent{Event: name, Payload: raw}
}
