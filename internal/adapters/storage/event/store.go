package event

import (
	"context"

	domain "eventdesk/internal/domain/event"
)

// Store persists Event state.
type Store interface {
	GetByID(ctx context.Context, id int64) (domain.Event, error)
	Create(ctx context.Context, e domain.Event) (int64, error)
	Update(ctx context.Context, e domain.Event) error
	List(ctx context.Context, filter ListFilter) ([]domain.Event, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit  int
	Offset int
	Status string
}
