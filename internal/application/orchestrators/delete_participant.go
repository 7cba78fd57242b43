package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
)

// ParticipantDeleter defines the store method needed by DeleteParticipant.
type ParticipantDeleter interface {
	Delete(ctx context.Context, eventID, id int64) error
}

// DeleteParticipantInput identifies the participant to remove.
type DeleteParticipantInput struct {
	EventID       int64
	ParticipantID int64
}

// DeleteParticipantDeps holds dependencies for DeleteParticipant.
type DeleteParticipantDeps struct {
	ParticipantStore ParticipantDeleter
}

// ExecuteDeleteParticipant removes a participant and its attendance from an event.
// PRE: input ids are positive
// POST: Participant is gone, or ErrParticipantNotFound if it did not belong to the event
func ExecuteDeleteParticipant(ctx context.Context, input DeleteParticipantInput, deps DeleteParticipantDeps) error {
	if input.EventID <= 0 || input.ParticipantID <= 0 {
		return ErrParticipantNotFound
	}
	err := deps.ParticipantStore.Delete(ctx, input.EventID, input.ParticipantID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrParticipantNotFound
	}
	if err != nil {
		return err
	}
	slog.Info("participant_deleted", "event_id", input.EventID, "participant_id", input.ParticipantID)
	return nil
}
