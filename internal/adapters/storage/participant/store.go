package participant

import (
	"context"
	"errors"

	domain "eventdesk/internal/domain/participant"
)

// ErrDuplicate is returned when an insert would break the per-event identity-key uniqueness.
var ErrDuplicate = errors.New("participant with the same email or name and phone already exists")

// Store persists Participant state.
type Store interface {
	GetByID(ctx context.Context, eventID, id int64) (domain.Participant, error)
	GetByCheckInCode(ctx context.Context, code string) (domain.Participant, error)
	ListByEvent(ctx context.Context, eventID int64, filter ListFilter) ([]domain.Participant, error)
	ListAllByEvent(ctx context.Context, eventID int64) ([]domain.Participant, error)
	CountByEvent(ctx context.Context, eventID int64) (int, error)
	InsertBatch(ctx context.Context, eventID int64, records []domain.Participant) ([]domain.Participant, error)
	Delete(ctx context.Context, eventID, id int64) error
}

// ListFilter carries paging and sorting parameters for ListByEvent.
type ListFilter struct {
	Limit  int
	Offset int
	Sort   string // one of SortColumns keys
	Dir    string // "asc" or "desc"
}

// SortColumns maps API sort keys to columns.
var SortColumns = map[string]string{
	"id":        "id",
	"name":      "name",
	"email":     "email_key",
	"faculty":   "faculty",
	"course":    "course",
	"year":      "year",
	"gender":    "gender",
	"role":      "role",
	"createdAt": "created_at",
}
