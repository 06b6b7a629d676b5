package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MessageStatus is the ordered delivery state of a message. Modeling the
// state as a single enum rather than independent delivered/seen flags makes
// the "seen implies delivered" invariant impossible to violate: updates only
// move the status forward.
type MessageStatus int

const (
	StatusCreated   MessageStatus = 1
	StatusDelivered MessageStatus = 2
	StatusSeen      MessageStatus = 3
)

// ParseMessageStatus maps the wire-level status strings to the enum.
func ParseMessageStatus(s string) (MessageStatus, bool) {
	switch s {
	case "delivered":
		return StatusDelivered, true
	case "seen":
		return StatusSeen, true
	default:
		return 0, false
	}
}

func (s MessageStatus) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusDelivered:
		return "delivered"
	case StatusSeen:
		return "seen"
	default:
		return "unknown"
	}
}

func (s MessageStatus) Delivered() bool { return s >= StatusDelivered }
func (s MessageStatus) Seen() bool      { return s >= StatusSeen }

const (
	MessageTypeText  = "TEXT"
	MessageTypeImage = "IMAGE"
)

// Message represents a chat message in MongoDB. ReceiverID is set for
// private conversations only; group recipients are implied by the
// conversation membership. Status only ever moves forward.
type Message struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	MessageID      string             `json:"messageId" bson:"message_id"`
	ConversationID primitive.ObjectID `json:"conversationId" bson:"conversation_id"`
	SenderID       string             `json:"senderId" bson:"sender_id"`
	ReceiverID     string             `json:"receiverId,omitempty" bson:"receiver_id,omitempty"`
	Content        string             `json:"content" bson:"content"`
	MessageType    string             `json:"messageType" bson:"message_type"`
	Status         MessageStatus      `json:"status" bson:"status"`
	Delivered      bool               `json:"delivered" bson:"-"`
	Seen           bool               `json:"seen" bson:"-"`
	Sender         *UserRef           `json:"sender,omitempty" bson:"-"`
	Receiver       *UserRef           `json:"receiver,omitempty" bson:"-"`
	CreatedAt      time.Time          `json:"createdAt" bson:"created_at"`
}

// SyncFlags mirrors the status enum into the delivered/seen response fields
// clients consume. Call before returning a message over the wire.
func (m *Message) SyncFlags() {
	m.Delivered = m.Status.Delivered()
	m.Seen = m.Status.Seen()
}
