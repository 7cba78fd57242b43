package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"eventdesk/internal/domain/attendance"
	"eventdesk/internal/domain/event"
	"eventdesk/internal/domain/participant"
)

// ParticipantStoreForCheckIn defines the lookups needed by CheckIn.
type ParticipantStoreForCheckIn interface {
	GetByID(ctx context.Context, eventID, id int64) (participant.Participant, error)
	GetByCheckInCode(ctx context.Context, code string) (participant.Participant, error)
}

// AttendanceCreator defines the store method needed by CheckIn.
type AttendanceCreator interface {
	Create(ctx context.Context, a attendance.Attendance) error
}

// CheckInInput identifies who is checking in. A QR scan sets Code; a manual
// check-in sets EventID and ParticipantID.
type CheckInInput struct {
	Code          string
	EventID       int64
	ParticipantID int64
}

// CheckInResult carries the recorded attendance.
type CheckInResult struct {
	Participant participant.Participant
	Attendance  attendance.Attendance
	EventName   string
}

// CheckInDeps holds dependencies for CheckIn.
type CheckInDeps struct {
	EventStore       EventLookup
	ParticipantStore ParticipantStoreForCheckIn
	AttendanceStore  AttendanceCreator
	GenerateID       func() string
	Now              func() time.Time
}

// ExecuteCheckIn records a participant's arrival at an event.
// PRE: Either Code or both EventID and ParticipantID are set
// POST: Attendance recorded with method qr (by code) or manual
// INVARIANT: A participant checks in at most once per event
// (attendance.ErrAlreadyCheckedIn); completed events reject check-ins
func ExecuteCheckIn(ctx context.Context, input CheckInInput, deps CheckInDeps) (CheckInResult, error) {
	var (
		p      participant.Participant
		method string
		err    error
	)
	if input.Code != "" {
		method = attendance.MethodQR
		p, err = deps.ParticipantStore.GetByCheckInCode(ctx, input.Code)
	} else {
		method = attendance.MethodManual
		p, err = deps.ParticipantStore.GetByID(ctx, input.EventID, input.ParticipantID)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return CheckInResult{}, ErrParticipantNotFound
	}
	if err != nil {
		return CheckInResult{}, err
	}

	ev, err := lookupEvent(ctx, deps.EventStore, p.EventID)
	if err != nil {
		return CheckInResult{}, err
	}
	if ev.Status == event.StatusCompleted {
		return CheckInResult{}, ErrEventClosed
	}

	pid, _ := p.PersistedID()
	genID, now := deps.GenerateID, deps.Now
	if genID == nil {
		genID = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	a := attendance.Attendance{
		ID:            genID(),
		EventID:       p.EventID,
		ParticipantID: pid,
		CheckedInAt:   now().UTC(),
		Method:        method,
	}
	if err := a.Validate(); err != nil {
		return CheckInResult{}, err
	}
	if err := deps.AttendanceStore.Create(ctx, a); err != nil {
		return CheckInResult{}, err
	}

	slog.Info("participant_checked_in", "event_id", a.EventID, "participant_id", pid, "method", method)
	return CheckInResult{Participant: p, Attendance: a, EventName: ev.Name}, nil
}
