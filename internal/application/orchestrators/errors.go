package orchestrators

import (
	"errors"
	"fmt"
)

// Errors shared by the event and participant orchestrators.
var (
	ErrEventNotFound        = errors.New("event not found")
	ErrParticipantNotFound  = errors.New("participant not found")
	ErrDuplicateParticipant = errors.New("participant already exists for this event")
	ErrEventClosed          = errors.New("event has been completed")
)

// RecordError reports an invalid record of a bulk request.
type RecordError struct {
	Index int // 0-based position in the request
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("participant %d: %v", e.Index+1, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
