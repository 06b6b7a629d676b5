package model

import (
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ConversationPrivate = "PRIVATE"
	ConversationGroup   = "GROUP"
)

// MinGroupParticipants is the smallest participant set a group conversation
// may be created with. Two participants always resolve to the private path.
const MinGroupParticipants = 3

// Conversation represents a chat thread in MongoDB. A PRIVATE conversation
// has exactly two participants and carries a PairKey with a unique sparse
// index, so only one private thread can exist per user pair. GROUP
// conversations are never deduplicated.
type Conversation struct {
	ID               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ConversationType string             `json:"type" bson:"conversation_type"`
	Name             string             `json:"name,omitempty" bson:"name,omitempty"`
	PairKey          string             `json:"-" bson:"pair_key,omitempty"`
	ParticipantIDs   []string           `json:"participantIds" bson:"participant_ids"`
	Participants     []Participant      `json:"participants" bson:"participants"`
	CreatedAt        time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt        time.Time          `json:"updatedAt" bson:"updated_at"`
}

// Participant is the flat membership record linking a user to a conversation.
type Participant struct {
	UserID   string    `json:"userId" bson:"user_id"`
	JoinedAt time.Time `json:"joinedAt" bson:"joined_at"`
}

func (c *Conversation) IsPrivate() bool {
	return c.ConversationType == ConversationPrivate
}

// HasParticipant reports whether userID is a member of the conversation.
func (c *Conversation) HasParticipant(userID string) bool {
	for _, id := range c.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// PairKeyFor builds the normalized private-conversation key for two user ids.
// The key is order-independent: PairKeyFor(a, b) == PairKeyFor(b, a).
func PairKeyFor(userA, userB string) string {
	pair := []string{userA, userB}
	sort.Strings(pair)
	return strings.Join(pair, ":")
}
