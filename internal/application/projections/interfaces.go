package projections

import (
	"context"
	"database/sql"
	"errors"

	eventStore "eventdesk/internal/adapters/storage/event"
	participantStore "eventdesk/internal/adapters/storage/participant"
	domainAttendance "eventdesk/internal/domain/attendance"
	domainEvent "eventdesk/internal/domain/event"
	domainParticipant "eventdesk/internal/domain/participant"
)

// ErrEventNotFound is returned when a query names an unknown event.
var ErrEventNotFound = errors.New("event not found")

// EventStore interface for event queries.
type EventStore interface {
	GetByID(ctx context.Context, id int64) (domainEvent.Event, error)
	List(ctx context.Context, filter eventStore.ListFilter) ([]domainEvent.Event, error)
	Count(ctx context.Context, filter eventStore.ListFilter) (int, error)
}

// ParticipantStore interface for participant queries.
type ParticipantStore interface {
	ListByEvent(ctx context.Context, eventID int64, filter participantStore.ListFilter) ([]domainParticipant.Participant, error)
	ListAllByEvent(ctx context.Context, eventID int64) ([]domainParticipant.Participant, error)
	CountByEvent(ctx context.Context, eventID int64) (int, error)
}

// AttendanceStore interface for attendance queries.
type AttendanceStore interface {
	ListByEvent(ctx context.Context, eventID int64) ([]domainAttendance.Attendance, error)
	CountByEvent(ctx context.Context, eventID int64) (int, error)
}

func lookupEvent(ctx context.Context, store EventStore, id int64) (domainEvent.Event, error) {
	ev, err := store.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domainEvent.Event{}, ErrEventNotFound
	}
	return ev, err
}
