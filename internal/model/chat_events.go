package model

// -----------------------------------------------------------------
// WebSocket Event Payloads - Client to Server
// -----------------------------------------------------------------

// SendMessagePayload is sent by a client to post a message. When
// GroupParticipantIDs carries more than two ids, the message opens a new
// group conversation; otherwise it goes through the private path and
// ReceiverID is required.
type SendMessagePayload struct {
	SenderID            string   `json:"senderId"`
	ReceiverID          string   `json:"receiverId,omitempty"`
	Content             string   `json:"content"`
	MessageType         string   `json:"messageType"`
	GroupParticipantIDs []string `json:"groupParticipantIds,omitempty"`
	GroupName           string   `json:"groupName,omitempty"`
}

// UpdateMessageStatusPayload acknowledges delivery or reading of a message.
// Status is "delivered" or "seen".
type UpdateMessageStatusPayload struct {
	MessageID string `json:"messageId"`
	Status    string `json:"status"`
}

// MarkConversationReadPayload bulk-acknowledges every unread message
// addressed to UserID in the conversation.
type MarkConversationReadPayload struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
}

// JoinConversationPayload subscribes the connection to a conversation room.
type JoinConversationPayload struct {
	ConversationID string `json:"conversationId"`
}

// LeaveConversationPayload unsubscribes the connection from a room.
type LeaveConversationPayload struct {
	ConversationID string `json:"conversationId"`
}

// RenameConversationPayload renames a group conversation.
type RenameConversationPayload struct {
	ConversationID string `json:"conversationId"`
	Name           string `json:"name"`
}

// -----------------------------------------------------------------
// WebSocket Event Payloads - Server to Client
// -----------------------------------------------------------------

// MessageSentEvent is the ack pushed back to the sender once the message
// row is persisted, regardless of live delivery.
type MessageSentEvent struct {
	MessageID      string `json:"messageId"`
	ConversationID string `json:"conversationId"`
	Timestamp      int64  `json:"timestamp"`
}

// MessageStatusEvent notifies the original sender that a message moved to
// delivered or seen.
type MessageStatusEvent struct {
	MessageID      string `json:"messageId"`
	Status         string `json:"status"`
	ConversationID string `json:"conversationId,omitempty"`
	ReceiverID     string `json:"receiverId,omitempty"`
}

// ConversationReadEvent notifies a sender that ByUserID read the whole
// conversation.
type ConversationReadEvent struct {
	ConversationID string `json:"conversationId"`
	ByUserID       string `json:"byUserId"`
}

// UserStatusEvent is broadcast when a user's aggregate presence flips.
type UserStatusEvent struct {
	UserID   string `json:"userId"`
	IsOnline bool   `json:"isOnline"`
}

// NotificationEvent is the live-push shape of a persisted notification.
type NotificationEvent struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	SenderID  string `json:"senderId"`
	PostID    string `json:"postId,omitempty"`
	CommentID string `json:"commentId,omitempty"`
}

// ErrorPayload represents an error response sent to a client over the socket.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
