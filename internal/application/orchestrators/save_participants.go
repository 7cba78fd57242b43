package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventdesk/internal/adapters/email"
	"eventdesk/internal/adapters/qrcode"
	participantStore "eventdesk/internal/adapters/storage/participant"
	"eventdesk/internal/domain/event"
	"eventdesk/internal/domain/participant"
)

// ParticipantStoreForSave defines the store methods needed by SaveParticipants.
type ParticipantStoreForSave interface {
	ListAllByEvent(ctx context.Context, eventID int64) ([]participant.Participant, error)
	InsertBatch(ctx context.Context, eventID int64, records []participant.Participant) ([]participant.Participant, error)
}

// SaveParticipantsInput carries a batch of records to commit.
type SaveParticipantsInput struct {
	EventID int64
	Records []participant.Participant
}

// SaveParticipantsDeps holds dependencies for SaveParticipants.
// Mailer is optional; when nil no tickets are sent.
type SaveParticipantsDeps struct {
	EventStore       EventLookup
	ParticipantStore ParticipantStoreForSave
	Mailer           email.Sender
	PublicURL        string
	GenerateCode     func() string
	Now              func() time.Time
}

// ExecuteSaveParticipants commits a batch of participants to an event.
// PRE: input.EventID refers to an existing event
// POST: Returns true once every record is persisted with a check-in code
// INVARIANT: All-or-nothing. An invalid record or one whose email key or
// name-phone key is already taken (persisted or earlier in the batch) rejects
// the whole batch and nothing is written
func ExecuteSaveParticipants(ctx context.Context, input SaveParticipantsInput, deps SaveParticipantsDeps) (bool, error) {
	ev, err := lookupEvent(ctx, deps.EventStore, input.EventID)
	if err != nil {
		return false, err
	}
	if len(input.Records) == 0 {
		return true, nil
	}

	records := make([]participant.Participant, len(input.Records))
	for i, r := range input.Records {
		r.Normalize()
		if err := r.Validate(); err != nil {
			return false, &RecordError{Index: i, Err: err}
		}
		records[i] = r
	}

	existing, err := deps.ParticipantStore.ListAllByEvent(ctx, input.EventID)
	if err != nil {
		return false, err
	}
	rec := participant.Reconcile(existing, records)
	if rec.SkippedCount > 0 {
		slog.Info("participants_save_rejected", "event_id", input.EventID, "duplicates", rec.SkippedCount)
		return false, fmt.Errorf("%w: %d duplicate record(s)", ErrDuplicateParticipant, rec.SkippedCount)
	}

	now, genCode := deps.Now, deps.GenerateCode
	if now == nil {
		now = time.Now
	}
	if genCode == nil {
		genCode = newCheckInCode
	}
	createdAt := now().UTC()
	for i := range records {
		records[i].ID = ""
		records[i].EventID = input.EventID
		records[i].CheckInCode = genCode()
		records[i].CreatedAt = createdAt
	}

	saved, err := deps.ParticipantStore.InsertBatch(ctx, input.EventID, records)
	if errors.Is(err, participantStore.ErrDuplicate) {
		return false, fmt.Errorf("%w: %v", ErrDuplicateParticipant, err)
	}
	if err != nil {
		return false, err
	}
	slog.Info("participants_saved", "event_id", input.EventID, "count", len(saved))

	if deps.Mailer != nil {
		sendTickets(ctx, deps.Mailer, deps.PublicURL, ev, saved)
	}
	return true, nil
}

// sendTickets mails every saved participant a ticket. Failures are logged only.
func sendTickets(ctx context.Context, mailer email.Sender, publicURL string, ev event.Event, saved []participant.Participant) {
	reqs := make([]email.SendRequest, 0, len(saved))
	for _, p := range saved {
		t := email.Ticket{
			ParticipantName: p.Name,
			ParticipantMail: p.Email,
			EventName:       ev.Name,
			Venue:           ev.Venue,
			CheckInURL:      qrcode.CheckInURL(publicURL, p.CheckInCode),
			QRCodeURL:       strings.TrimRight(publicURL, "/") + "/checkin/" + p.CheckInCode + "/qrcode.png",
		}
		if !ev.StartsAt.IsZero() {
			t.StartsAt = ev.StartsAt.Format("Mon 2 Jan 2006 15:04")
		}
		req, err := email.TicketRequest(t)
		if err != nil {
			slog.Error("ticket_render_failed", "participant_id", p.ID, "error", err)
			continue
		}
		reqs = append(reqs, req)
	}
	if len(reqs) == 0 {
		return
	}
	if _, err := mailer.SendBatch(ctx, reqs); err != nil {
		slog.Error("ticket_send_failed", "event_id", ev.ID, "count", len(reqs), "error", err)
		return
	}
	slog.Info("tickets_sent", "event_id", ev.ID, "count", len(reqs))
}

// newCheckInCode returns a random 32-character hex code.
func newCheckInCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
