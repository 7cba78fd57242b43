package orchestrators

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"eventdesk/internal/adapters/spreadsheet"
	"eventdesk/internal/domain/event"
	"eventdesk/internal/domain/participant"
)

var fixedNow = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }

func testEvent() event.Event {
	return event.Event{ID: 1, Name: "Career Fair", Venue: "Hall A", Status: event.StatusActive}
}

func xlsxOf(t *testing.T, ps ...participant.Participant) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	if err := spreadsheet.WriteParticipants(&buf, ps); err != nil {
		t.Fatalf("WriteParticipants: %v", err)
	}
	return &buf
}

// TestExecuteImportParticipants_StagesWithoutPersisting verifies candidates get
// client ids and nothing reaches the participant store.
func TestExecuteImportParticipants_StagesWithoutPersisting(t *testing.T) {
	file := xlsxOf(t,
		participant.Participant{Name: "Ana", Email: "ana@x.com"},
		participant.Participant{Name: "Ben", Email: "ben@x.com", PhoneNo: "021 555"},
	)
	got, err := ExecuteImportParticipants(context.Background(), ImportParticipantsInput{
		EventID:     1,
		Filename:    "list.xlsx",
		ContentType: spreadsheet.XLSXContentType,
		Reader:      file,
	}, ImportParticipantsDeps{EventStore: newMockEventStore(testEvent()), GenerateID: seqID("tmp")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Candidates) != 2 {
		t.Fatalf("candidates=%d want 2", len(got.Candidates))
	}
	for i, want := range []string{"tmp-1", "tmp-2"} {
		c := got.Candidates[i]
		if c.ID != want || c.EventID != 1 {
			t.Errorf("candidate %d id=%q event=%d", i, c.ID, c.EventID)
		}
		if _, persisted := c.PersistedID(); persisted {
			t.Errorf("candidate %d looks persisted", i)
		}
	}
	if got.Candidates[1].PhoneNo != "021555" {
		t.Errorf("phone not normalized: %q", got.Candidates[1].PhoneNo)
	}
}

func TestExecuteImportParticipants_Rejections(t *testing.T) {
	deps := ImportParticipantsDeps{EventStore: newMockEventStore(testEvent())}
	tests := []struct {
		name    string
		input   ImportParticipantsInput
		wantErr error
	}{
		{"csv", ImportParticipantsInput{EventID: 1, Filename: "list.csv", ContentType: "text/csv", Reader: strings.NewReader("a,b")}, spreadsheet.ErrUnsupportedFileType},
		{"renamed text", ImportParticipantsInput{EventID: 1, Filename: "list.xlsx", Reader: strings.NewReader("name,email\n")}, spreadsheet.ErrUnsupportedFileType},
		{"renamed text sent as octet-stream", ImportParticipantsInput{EventID: 1, Filename: "list.xlsx", ContentType: "application/octet-stream", Reader: strings.NewReader("name,email\n")}, spreadsheet.ErrUnsupportedFileType},
		{"unknown event", ImportParticipantsInput{EventID: 9, Filename: "list.xlsx", Reader: xlsxOf(t)}, ErrEventNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExecuteImportParticipants(context.Background(), tt.input, deps)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err=%v want %v", err, tt.wantErr)
			}
		})
	}
}

func saveDeps(ps *mockParticipantStore, mailer *mockSender) SaveParticipantsDeps {
	deps := SaveParticipantsDeps{
		EventStore:       newMockEventStore(testEvent()),
		ParticipantStore: ps,
		PublicURL:        "https://events.example.com",
		GenerateCode:     seqID("code"),
		Now:              fixedNow,
	}
	if mailer != nil {
		deps.Mailer = mailer
	}
	return deps
}

// TestExecuteSaveParticipants_InsertsAndMailsTickets verifies the happy path.
func TestExecuteSaveParticipants_InsertsAndMailsTickets(t *testing.T) {
	store := newMockParticipantStore()
	mailer := &mockSender{}
	ok, err := ExecuteSaveParticipants(context.Background(), SaveParticipantsInput{
		EventID: 1,
		Records: []participant.Participant{
			{ID: "tmp-1", Name: " Ana ", Email: "ana@x.com"},
			{ID: "tmp-2", Name: "Ben", Email: "ben@x.com"},
		},
	}, saveDeps(store, mailer))
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}

	saved := store.byEvent[1]
	if len(saved) != 2 {
		t.Fatalf("saved=%d want 2", len(saved))
	}
	if saved[0].Name != "Ana" || saved[0].CheckInCode != "code-1" || !saved[0].CreatedAt.Equal(fixedNow()) {
		t.Errorf("saved[0]=%+v", saved[0])
	}
	if len(mailer.sent) != 2 {
		t.Fatalf("tickets sent=%d want 2", len(mailer.sent))
	}
	if !strings.Contains(mailer.sent[0].HTML, "https://events.example.com/checkin/code-1") {
		t.Errorf("ticket missing check-in link: %s", mailer.sent[0].HTML)
	}
}

// TestExecuteSaveParticipants_RejectsWholeBatch verifies all-or-nothing on duplicates and invalid records.
func TestExecuteSaveParticipants_RejectsWholeBatch(t *testing.T) {
	tests := []struct {
		name    string
		records []participant.Participant
		wantErr error
	}{
		{"collides with persisted email", []participant.Participant{
			{Name: "New", Email: "new@x.com"},
			{Name: "Other", Email: "ANA@x.com"},
		}, ErrDuplicateParticipant},
		{"collides with persisted name and phone", []participant.Participant{
			{Name: "ana", Email: "ana2@x.com", PhoneNo: "(021) 111"},
		}, ErrDuplicateParticipant},
		{"duplicate within batch", []participant.Participant{
			{Name: "Cy", Email: "cy@x.com"},
			{Name: "Cy Two", Email: "cy@x.com"},
		}, ErrDuplicateParticipant},
		{"invalid email", []participant.Participant{
			{Name: "Dee", Email: "dee@x.com"},
			{Name: "Eve", Email: "not-an-email"},
		}, participant.ErrInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockParticipantStore()
			store.seed(1, participant.Participant{Name: "Ana", Email: "ana@x.com", PhoneNo: "021111"})
			mailer := &mockSender{}

			ok, err := ExecuteSaveParticipants(context.Background(), SaveParticipantsInput{EventID: 1, Records: tt.records}, saveDeps(store, mailer))
			if ok || !errors.Is(err, tt.wantErr) {
				t.Fatalf("ok=%v err=%v want %v", ok, err, tt.wantErr)
			}
			if store.insertCalls != 0 {
				t.Errorf("InsertBatch called %d times", store.insertCalls)
			}
			if len(store.byEvent[1]) != 1 || len(mailer.sent) != 0 {
				t.Errorf("state changed: %d participants, %d mails", len(store.byEvent[1]), len(mailer.sent))
			}
		})
	}
}

// TestExecuteSaveParticipants_RecordErrorIndex verifies the failing record is identified.
func TestExecuteSaveParticipants_RecordErrorIndex(t *testing.T) {
	_, err := ExecuteSaveParticipants(context.Background(), SaveParticipantsInput{
		EventID: 1,
		Records: []participant.Participant{{Name: "A", Email: "a@x.com"}, {Email: "b@x.com"}},
	}, saveDeps(newMockParticipantStore(), nil))
	var recErr *RecordError
	if !errors.As(err, &recErr) || recErr.Index != 1 || !errors.Is(err, participant.ErrEmptyName) {
		t.Fatalf("err=%v want RecordError at index 1", err)
	}
	if recErr.Error() != "participant 2: participant name cannot be empty" {
		t.Errorf("message=%q", recErr.Error())
	}
}

func TestExecuteSaveParticipants_EdgeCases(t *testing.T) {
	store := newMockParticipantStore()

	ok, err := ExecuteSaveParticipants(context.Background(), SaveParticipantsInput{EventID: 1}, saveDeps(store, nil))
	if !ok || err != nil || store.insertCalls != 0 {
		t.Errorf("empty batch: ok=%v err=%v inserts=%d", ok, err, store.insertCalls)
	}

	_, err = ExecuteSaveParticipants(context.Background(), SaveParticipantsInput{
		EventID: 7, Records: []participant.Participant{{Name: "A", Email: "a@x.com"}},
	}, saveDeps(store, nil))
	if !errors.Is(err, ErrEventNotFound) {
		t.Errorf("unknown event: err=%v", err)
	}

	// A mail failure does not fail the save.
	mailer := &mockSender{err: errors.New("provider down")}
	ok, err = ExecuteSaveParticipants(context.Background(), SaveParticipantsInput{
		EventID: 1, Records: []participant.Participant{{Name: "A", Email: "a@x.com"}},
	}, saveDeps(store, mailer))
	if !ok || err != nil {
		t.Errorf("mail failure: ok=%v err=%v", ok, err)
	}
}

func TestExecuteDeleteParticipant(t *testing.T) {
	store := newMockParticipantStore()
	saved := store.seed(1, participant.Participant{Name: "Ana", Email: "ana@x.com"})
	id, _ := saved[0].PersistedID()
	deps := DeleteParticipantDeps{ParticipantStore: store}

	if err := ExecuteDeleteParticipant(context.Background(), DeleteParticipantInput{EventID: 2, ParticipantID: id}, deps); !errors.Is(err, ErrParticipantNotFound) {
		t.Errorf("wrong event: err=%v", err)
	}
	if err := ExecuteDeleteParticipant(context.Background(), DeleteParticipantInput{EventID: 1, ParticipantID: id}, deps); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(store.byEvent[1]) != 0 {
		t.Error("participant still stored")
	}
	if err := ExecuteDeleteParticipant(context.Background(), DeleteParticipantInput{EventID: 1, ParticipantID: id}, deps); !errors.Is(err, ErrParticipantNotFound) {
		t.Errorf("second delete: err=%v", err)
	}
}
