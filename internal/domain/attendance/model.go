package attendance

import (
	"errors"
	"time"
)

// Check-in methods
const (
	MethodQR     = "qr"
	MethodManual = "manual"
)

// Domain errors
var (
	ErrAlreadyCheckedIn = errors.New("participant has already checked in to this event")
	ErrInvalidMethod    = errors.New("check-in method must be 'qr' or 'manual'")
)

// Attendance records a participant checking in to an event.
type Attendance struct {
	ID            string
	EventID       int64
	ParticipantID int64
	CheckedInAt   time.Time
	Method        string
}

// Validate checks if the Attendance has valid data.
// PRE: Attendance struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: EventID and ParticipantID must be set, CheckedInAt must be set
func (a *Attendance) Validate() error {
	if a.EventID <= 0 {
		return errors.New("attendance must be associated with an event")
	}
	if a.ParticipantID <= 0 {
		return errors.New("attendance must be associated with a participant")
	}
	if a.CheckedInAt.IsZero() {
		return errors.New("check-in time must be set")
	}
	if a.Method != MethodQR && a.Method != MethodManual {
		return ErrInvalidMethod
	}
	return nil
}

// Rate returns checkedIn/registered as a fraction in [0,1].
func Rate(checkedIn, registered int) float64 {
	if registered <= 0 {
		return 0
	}
	return float64(checkedIn) / float64(registered)
}
