package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrReceiverRequired  = errors.New("receiverId is required for private messages")
	ErrEmptyContent      = errors.New("message content cannot be empty")
	ErrGroupTooSmall     = fmt.Errorf("group must have at least 3 participants")
	ErrUnsupportedStatus = errors.New("status must be 'delivered' or 'seen'")
)

// InvalidParticipantError reports every referenced user id that does not
// exist. Validation always collects the full offending set before failing.
type InvalidParticipantError struct {
	UserIDs []string
}

func (e *InvalidParticipantError) Error() string {
	return fmt.Sprintf("invalid user IDs: %s", strings.Join(e.UserIDs, ", "))
}

// IsInvalidParticipant unwraps err as an InvalidParticipantError.
func IsInvalidParticipant(err error) (*InvalidParticipantError, bool) {
	var ipe *InvalidParticipantError
	if errors.As(err, &ipe) {
		return ipe, true
	}
	return nil, false
}
