package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"eventdesk/internal/adapters/spreadsheet"
	"eventdesk/internal/domain/event"
	"eventdesk/internal/domain/participant"
)

// EventLookup defines the event store method orchestrators need to confirm an event exists.
type EventLookup interface {
	GetByID(ctx context.Context, id int64) (event.Event, error)
}

// ImportParticipantsInput carries an uploaded spreadsheet.
type ImportParticipantsInput struct {
	EventID     int64
	Filename    string
	ContentType string
	Reader      io.Reader
}

// ImportParticipantsResult carries the staged candidates.
type ImportParticipantsResult struct {
	Candidates []participant.Participant
	RowErrors  []spreadsheet.RowError
}

// ImportParticipantsDeps holds dependencies for ImportParticipants.
type ImportParticipantsDeps struct {
	EventStore EventLookup
	GenerateID func() string
}

// ExecuteImportParticipants parses a spreadsheet into candidate records.
// Nothing is persisted; candidates are committed later through ExecuteSaveParticipants.
// PRE: input.Reader yields the uploaded file
// POST: Candidates carry fresh client-style ids and input.EventID, in sheet order
// INVARIANT: Non-xlsx uploads are rejected with spreadsheet.ErrUnsupportedFileType before parsing
func ExecuteImportParticipants(ctx context.Context, input ImportParticipantsInput, deps ImportParticipantsDeps) (ImportParticipantsResult, error) {
	if err := spreadsheet.ValidateUpload(input.Filename, input.ContentType); err != nil {
		return ImportParticipantsResult{}, err
	}
	if _, err := lookupEvent(ctx, deps.EventStore, input.EventID); err != nil {
		return ImportParticipantsResult{}, err
	}

	parsed, err := spreadsheet.ParseParticipants(input.Reader)
	if err != nil {
		return ImportParticipantsResult{}, err
	}

	genID := deps.GenerateID
	if genID == nil {
		genID = uuid.NewString
	}
	for i := range parsed.Candidates {
		parsed.Candidates[i].ID = genID()
		parsed.Candidates[i].EventID = input.EventID
	}

	slog.Info("participants_import",
		"event_id", input.EventID,
		"file", input.Filename,
		"candidates", len(parsed.Candidates),
		"row_errors", len(parsed.RowErrors),
	)
	return ImportParticipantsResult{Candidates: parsed.Candidates, RowErrors: parsed.RowErrors}, nil
}

// lookupEvent maps a missing event to ErrEventNotFound.
func lookupEvent(ctx context.Context, store EventLookup, id int64) (event.Event, error) {
	ev, err := store.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return event.Event{}, ErrEventNotFound
	}
	return ev, err
}
