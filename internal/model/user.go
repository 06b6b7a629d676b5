package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a user document in MongoDB. The chat core only mutates
// the online flag; account lifecycle belongs to the auth endpoints.
type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID       string             `json:"userId" bson:"user_id"`
	Name         string             `json:"name" bson:"name"`
	Email        string             `json:"email" bson:"email"`
	PasswordHash string             `json:"-" bson:"password_hash"`
	ProfileImage string             `json:"profileImage" bson:"profile_image"`
	IsOnline     bool               `json:"isOnline" bson:"is_online"`
	CreatedAt    time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt    *time.Time         `json:"updatedAt" bson:"updated_at"`
}

// UserRef is the reduced user shape embedded in message and conversation
// responses.
type UserRef struct {
	UserID       string `json:"userId" bson:"user_id"`
	Name         string `json:"name" bson:"name"`
	ProfileImage string `json:"profileImage,omitempty" bson:"profile_image,omitempty"`
	IsOnline     bool   `json:"isOnline" bson:"is_online"`
}

func (u *User) Ref() UserRef {
	return UserRef{
		UserID:       u.UserID,
		Name:         u.Name,
		ProfileImage: u.ProfileImage,
		IsOnline:     u.IsOnline,
	}
}
