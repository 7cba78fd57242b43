package attendance

import (
	"context"

	domain "eventdesk/internal/domain/attendance"
)

// Store persists Attendance state.
type Store interface {
	Create(ctx context.Context, a domain.Attendance) error
	GetByParticipant(ctx context.Context, eventID, participantID int64) (domain.Attendance, error)
	ListByEvent(ctx context.Context, eventID int64) ([]domain.Attendance, error)
	CountByEvent(ctx context.Context, eventID int64) (int, error)
}
