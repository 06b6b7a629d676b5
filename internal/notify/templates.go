package notify

import (
	"errors"
	"fmt"
)

// Type is the closed set of social events that produce notifications.
// Using a typed constant with an exhaustive renderer instead of a
// string-keyed template map turns an unknown type into a compile-visible
// code path rather than a runtime lookup miss.
type Type string

const (
	TypeFollowUser     Type = "follow_user"
	TypeLikePost       Type = "like_post"
	TypeCommentPost    Type = "comment_post"
	TypeLikeComment    Type = "like_comment"
	TypeDislikeComment Type = "dislike_comment"
	TypeRatePost       Type = "rate_post"
)

// ErrUnknownType is returned for a Type outside the closed set. Callers
// treat it as a programming error, not user input.
var ErrUnknownType = errors.New("unknown notification type")

// Data carries the event-specific fields a template may reference.
type Data struct {
	SenderName string
	PostID     string
	CommentID  string
}

// Valid reports whether t belongs to the closed set.
func (t Type) Valid() bool {
	switch t {
	case TypeFollowUser, TypeLikePost, TypeCommentPost, TypeLikeComment, TypeDislikeComment, TypeRatePost:
		return true
	}
	return false
}

// Render produces the human-readable notification text for t.
func Render(t Type, data Data) (string, error) {
	switch t {
	case TypeFollowUser:
		return fmt.Sprintf("%s started following you", data.SenderName), nil
	case TypeLikePost:
		return fmt.Sprintf("%s liked your post", data.SenderName), nil
	case TypeCommentPost:
		return fmt.Sprintf("%s commented on your post", data.SenderName), nil
	case TypeLikeComment:
		return fmt.Sprintf("%s liked your comment", data.SenderName), nil
	case TypeDislikeComment:
		return fmt.Sprintf("%s disliked your comment", data.SenderName), nil
	case TypeRatePost:
		return fmt.Sprintf("%s rated your post", data.SenderName), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownType, t)
	}
}
