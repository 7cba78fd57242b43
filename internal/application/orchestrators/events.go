package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"eventdesk/internal/domain/event"
)

// EventStoreForCreate defines the store method needed by CreateEvent.
type EventStoreForCreate interface {
	Create(ctx context.Context, e event.Event) (int64, error)
}

// EventStoreForStatus defines the store methods needed by UpdateEventStatus.
type EventStoreForStatus interface {
	GetByID(ctx context.Context, id int64) (event.Event, error)
	Update(ctx context.Context, e event.Event) error
}

// CreateEventInput carries the event form. Dates are YYYY-MM-DD and clocks HH:MM,
// combined in Location.
type CreateEventInput struct {
	Name        string
	Description string
	Venue       string
	Date        string
	StartTime   string
	EndTime     string
	Location    *time.Location
}

// CreateEventDeps holds dependencies for CreateEvent.
type CreateEventDeps struct {
	EventStore EventStoreForCreate
	Now        func() time.Time
}

// ExecuteCreateEvent validates and stores a new upcoming event.
// PRE: input.Name is non-empty
// POST: Returns the stored event with its server id
func ExecuteCreateEvent(ctx context.Context, input CreateEventInput, deps CreateEventDeps) (event.Event, error) {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	ev := event.Event{
		Name:        input.Name,
		Description: input.Description,
		Venue:       input.Venue,
		Status:      event.StatusUpcoming,
		CreatedAt:   now().UTC(),
	}
	if input.Date != "" {
		start, err := event.CombineDateTime(input.Date, input.StartTime, input.Location)
		if err != nil {
			return event.Event{}, err
		}
		ev.StartsAt = start
		if input.EndTime != "" {
			end, err := event.CombineDateTime(input.Date, input.EndTime, input.Location)
			if err != nil {
				return event.Event{}, err
			}
			ev.EndsAt = end
		}
	}
	if err := ev.Validate(); err != nil {
		return event.Event{}, err
	}

	id, err := deps.EventStore.Create(ctx, ev)
	if err != nil {
		return event.Event{}, err
	}
	ev.ID = id
	slog.Info("event_created", "event_id", id, "name", ev.Name)
	return ev, nil
}

// UpdateEventStatusInput carries a status change.
type UpdateEventStatusInput struct {
	EventID int64
	Status  string
}

// UpdateEventStatusDeps holds dependencies for UpdateEventStatus.
type UpdateEventStatusDeps struct {
	EventStore EventStoreForStatus
}

// ExecuteUpdateEventStatus moves an event forward through upcoming, active and completed.
// PRE: input.Status is a valid status
// POST: Status persisted, or event.ErrInvalidTransition for backward moves
func ExecuteUpdateEventStatus(ctx context.Context, input UpdateEventStatusInput, deps UpdateEventStatusDeps) (event.Event, error) {
	ev, err := lookupEvent(ctx, deps.EventStore, input.EventID)
	if err != nil {
		return event.Event{}, err
	}
	from := ev.Status
	if err := ev.Transition(input.Status); err != nil {
		return event.Event{}, err
	}
	if err := deps.EventStore.Update(ctx, ev); err != nil {
		return event.Event{}, err
	}
	slog.Info("event_status_changed", "event_id", ev.ID, "from", from, "to", ev.Status)
	return ev, nil
}
