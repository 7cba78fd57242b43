package web

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"eventdesk/internal/adapters/email"
	"eventdesk/internal/adapters/http/middleware"
	"eventdesk/internal/adapters/http/perf"
	"eventdesk/internal/adapters/spreadsheet"
	"eventdesk/internal/adapters/storage"
	accountStore "eventdesk/internal/adapters/storage/account"
	attendanceStore "eventdesk/internal/adapters/storage/attendance"
	eventStore "eventdesk/internal/adapters/storage/event"
	participantStore "eventdesk/internal/adapters/storage/participant"
	domainAccount "eventdesk/internal/domain/account"
	domainEvent "eventdesk/internal/domain/event"
	domainParticipant "eventdesk/internal/domain/participant"
)

// testEnv is a fully wired app over an in-memory database.
type testEnv struct {
	handler http.Handler
	stores  *Stores
	mailer  *email.NoopSender
}

// newTestEnv builds the app with SQLite stores, a noop mailer and a fixed public URL.
// PRE: none
// POST: Package globals point at the new env until the next call
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	collector := perf.NewCollector(256)
	timed := storage.NewTimedDB(db, collector)
	s := &Stores{
		AccountStore:     accountStore.NewSQLiteStore(timed),
		EventStore:       eventStore.NewSQLiteStore(timed),
		ParticipantStore: participantStore.NewSQLiteStore(timed),
		AttendanceStore:  attendanceStore.NewSQLiteStore(timed),
	}

	mailer := email.NewNoopSender()
	SetEmailSender(mailer)
	SetPublicURL("https://events.example.com")
	RateLimitPerSecond = 10000
	t.Cleanup(func() {
		SetEmailSender(nil)
		SetPublicURL("")
	})
	return &testEnv{handler: NewMux(s, collector), stores: s, mailer: mailer}
}

// login creates a session for role and returns its cookie.
func (e *testEnv) login(t *testing.T, role string) *http.Cookie {
	t.Helper()
	token, err := sessions.Create("acc-"+role, role+"@example.com", role)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return &http.Cookie{Name: middleware.SessionCookieName, Value: token}
}

// do sends a request through the full middleware chain.
func (e *testEnv) do(t *testing.T, method, path, contentType string, body io.Reader, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

// seedEvent stores an active event and returns its id.
func (e *testEnv) seedEvent(t *testing.T, name string) int64 {
	t.Helper()
	id, err := e.stores.EventStore.Create(context.Background(), domainEvent.Event{
		Name:      name,
		Status:    domainEvent.StatusActive,
		StartsAt:  time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
		CreatedAt: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("seed event: %v", err)
	}
	return id
}

// seedParticipants stores ps on eventID; each gets the check-in code "code-<email>".
func (e *testEnv) seedParticipants(t *testing.T, eventID int64, ps ...domainParticipant.Participant) []domainParticipant.Participant {
	t.Helper()
	for i := range ps {
		if ps[i].CheckInCode == "" {
			ps[i].CheckInCode = "code-" + ps[i].Email
		}
		ps[i].CreatedAt = time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	}
	saved, err := e.stores.ParticipantStore.InsertBatch(context.Background(), eventID, ps)
	if err != nil {
		t.Fatalf("seed participants: %v", err)
	}
	return saved
}

// seedAccount stores an account with a real bcrypt password.
func (e *testEnv) seedAccount(t *testing.T, mail, password, role string) {
	t.Helper()
	a := domainAccount.Account{ID: "acc-" + mail, Email: mail, Role: role, CreatedAt: time.Now()}
	if err := a.SetPassword(password); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if err := e.stores.AccountStore.Save(context.Background(), a); err != nil {
		t.Fatalf("save account: %v", err)
	}
}

// workbookUpload builds a multipart body with one "file" part.
func workbookUpload(t *testing.T, filename string, content []byte) (string, *bytes.Buffer) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	part.Write(content)
	mw.Close()
	return mw.FormDataContentType(), &body
}

// workbook renders participants as an .xlsx file.
func workbook(t *testing.T, ps ...domainParticipant.Participant) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := spreadsheet.WriteParticipants(&buf, ps); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func person(name, mail, phone string) domainParticipant.Participant {
	return domainParticipant.Participant{Name: name, Email: mail, PhoneNo: phone, Faculty: "Science", Gender: "Female", Year: 2}
}
