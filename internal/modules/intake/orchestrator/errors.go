package orchestrator

import (
	"errors"

	"github.com/google/uuid"
)

// Error is returned for failures after the conversation exists, so callers can
// retry against the same id.
type Error struct {
	ConversationID uuid.UUID
	Err            error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "conversation " + e.ConversationID.String() + ": unknown error"
	}
	return "conversation " + e.ConversationID.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// ConversationIDOf returns the conversation a failure belongs to, if known.
func ConversationIDOf(err error) (uuid.UUID, bool) {
	var oe *Error
	if errors.As(err, &oe) && oe.ConversationID != uuid.Nil {
		return oe.ConversationID, true
	}
	return uuid.Nil, false
}
