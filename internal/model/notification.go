package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification is a rendered social event addressed to one recipient.
// Before insert, prior rows matching (type, sender_id, recipient_id) are
// deleted so repeated identical actions collapse into the latest one.
type Notification struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Type        string             `json:"type" bson:"type"`
	SenderID    string             `json:"senderId" bson:"sender_id"`
	RecipientID string             `json:"recipientId" bson:"recipient_id"`
	Message     string             `json:"message" bson:"message"`
	PostID      string             `json:"postId,omitempty" bson:"post_id,omitempty"`
	CommentID   string             `json:"commentId,omitempty" bson:"comment_id,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"created_at"`
}
