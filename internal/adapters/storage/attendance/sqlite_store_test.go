package attendance

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"eventdesk/internal/adapters/storage"
	domain "eventdesk/internal/domain/attendance"
)

// TestAttendanceStore_CheckInOnce verifies a second check-in is rejected.
func TestAttendanceStore_CheckInOnce(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	defer db.Close()
	if err := storage.MigrateDB(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db.Exec("INSERT INTO event (name, status, created_at) VALUES ('e', 'active', '2026-01-01T00:00:00Z')")
	db.Exec(`INSERT INTO participant (event_id, name, email, email_key, name_phone_key, check_in_code, created_at)
		VALUES (1, 'A', 'a@x.com', 'a@x.com', 'a_', 'c1', '2026-01-01T00:00:00Z')`)

	s := NewSQLiteStore(db)
	ctx := context.Background()
	at := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	a := domain.Attendance{ID: "att-1", EventID: 1, ParticipantID: 1, CheckedInAt: at, Method: domain.MethodQR}

	if err := s.Create(ctx, a); err != nil {
		t.Fatalf("Create: %v", err)
	}
	a.ID = "att-2"
	if err := s.Create(ctx, a); err != domain.ErrAlreadyCheckedIn {
		t.Errorf("second Create = %v, want ErrAlreadyCheckedIn", err)
	}

	got, err := s.GetByParticipant(ctx, 1, 1)
	if err != nil {
		t.Fatalf("GetByParticipant: %v", err)
	}
	if !got.CheckedInAt.Equal(at) || got.Method != domain.MethodQR {
		t.Errorf("GetByParticipant = %+v", got)
	}
	n, err := s.CountByEvent(ctx, 1)
	if err != nil || n != 1 {
		t.Errorf("CountByEvent = %d, %v; want 1", n, err)
	}
}
