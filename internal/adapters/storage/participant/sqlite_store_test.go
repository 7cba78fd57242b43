package participant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"eventdesk/internal/adapters/storage"
	domain "eventdesk/internal/domain/participant"
)

// newTestStore opens a migrated in-memory database with one event (id 1).
func newTestStore(t *testing.T) *SQLiteStore {
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
	if _, err := db.Exec("INSERT INTO event (name, status, created_at) VALUES ('Expo', 'active', '2026-01-01T00:00:00Z')"); err != nil {
		t.Fatalf("seed event: %v", err)
	}
	return NewSQLiteStore(db)
}

func sample(n int) domain.Participant {
	return domain.Participant{
		Name:        fmt.Sprintf("Person %d", n),
		Email:       fmt.Sprintf("p%d@example.com", n),
		PhoneNo:     fmt.Sprintf("02100%d", n),
		Faculty:     "Science",
		Year:        n % 4,
		CheckInCode: fmt.Sprintf("code-%d", n),
		CreatedAt:   time.Date(2026, 1, 1, 0, 0, n, 0, time.UTC),
	}
}

// TestInsertBatch_AssignsIDs verifies inserted records come back with server ids.
func TestInsertBatch_AssignsIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	saved, err := s.InsertBatch(ctx, 1, []domain.Participant{sample(1), sample(2)})
	if err != nil {
		t.Fatalf("InsertBatch: %v", err)
	}
	for _, p := range saved {
		if _, ok := p.PersistedID(); !ok {
			t.Errorf("participant %q has no server id: %q", p.Name, p.ID)
		}
		if p.EventID != 1 {
			t.Errorf("EventID = %d, want 1", p.EventID)
		}
	}

	got, err := s.GetByCheckInCode(ctx, "code-2")
	if err != nil {
		t.Fatalf("GetByCheckInCode: %v", err)
	}
	if got.Email != "p2@example.com" || got.ID != saved[1].ID {
		t.Errorf("GetByCheckInCode = %+v", got)
	}
}

// TestInsertBatch_AllOrNothing verifies a colliding record rolls back the whole batch.
func TestInsertBatch_AllOrNothing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, err := s.InsertBatch(ctx, 1, []domain.Participant{sample(1)}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	dup := sample(9)
	dup.Email = "P1@Example.com"
	_, err := s.InsertBatch(ctx, 1, []domain.Participant{sample(2), dup})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
	n, err := s.CountByEvent(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1 (batch rolled back)", n)
	}
}

// TestListByEvent_PagingAndSort verifies limit/offset and sort direction.
func TestListByEvent_PagingAndSort(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	var batch []domain.Participant
	for i := 1; i <= 5; i++ {
		batch = append(batch, sample(i))
	}
	if _, err := s.InsertBatch(ctx, 1, batch); err != nil {
		t.Fatal(err)
	}

	page, err := s.ListByEvent(ctx, 1, ListFilter{Limit: 2, Offset: 2, Sort: "name", Dir: "desc"})
	if err != nil {
		t.Fatalf("ListByEvent: %v", err)
	}
	if len(page) != 2 || page[0].Name != "Person 3" || page[1].Name != "Person 2" {
		t.Errorf("page = %v", names(page))
	}

	// Unknown sort keys fall back to id order.
	page, err = s.ListByEvent(ctx, 1, ListFilter{Limit: 10, Sort: "name; DROP TABLE participant"})
	if err != nil {
		t.Fatalf("ListByEvent: %v", err)
	}
	if len(page) != 5 || page[0].Name != "Person 1" {
		t.Errorf("fallback order = %v", names(page))
	}
}

// TestDelete verifies delete and the not-found case.
func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	saved, err := s.InsertBatch(ctx, 1, []domain.Participant{sample(1)})
	if err != nil {
		t.Fatal(err)
	}
	id, _ := saved[0].PersistedID()

	if err := s.Delete(ctx, 1, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, 1, id); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("second Delete = %v, want sql.ErrNoRows", err)
	}
	if _, err := s.GetByID(ctx, 1, id); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetByID after delete = %v, want sql.ErrNoRows", err)
	}
}

func names(ps []domain.Participant) []string {
	var out []string
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}
