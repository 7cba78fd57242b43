package event

import (
	"context"
	"database/sql"
	"fmt"

	"eventdesk/internal/adapters/storage"
	domain "eventdesk/internal/domain/event"
)

const selectEvent = "SELECT id, name, description, venue, status, starts_at, ends_at, created_at FROM event"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new EventStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

type scanner func(dest ...any) error

func scanEvent(scan scanner) (domain.Event, error) {
	var e domain.Event
	var startsAt, endsAt, createdAt sql.NullString
	if err := scan(&e.ID, &e.Name, &e.Description, &e.Venue, &e.Status, &startsAt, &endsAt, &createdAt); err != nil {
		return domain.Event{}, err
	}
	var err error
	if e.StartsAt, err = storage.ParseTime(startsAt); err != nil {
		return domain.Event{}, fmt.Errorf("failed to parse starts_at: %w", err)
	}
	if e.EndsAt, err = storage.ParseTime(endsAt); err != nil {
		return domain.Event{}, fmt.Errorf("failed to parse ends_at: %w", err)
	}
	if e.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Event{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return e, nil
}

// GetByID retrieves an Event by its ID.
// PRE: id > 0
// POST: Returns the entity or an error wrapping sql.ErrNoRows if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id int64) (domain.Event, error) {
	e, err := scanEvent(s.db.QueryRowContext(ctx, selectEvent+" WHERE id = ?", id).Scan)
	if err == sql.ErrNoRows {
		return domain.Event{}, fmt.Errorf("event not found: %w", err)
	}
	return e, err
}

// Create inserts a new Event and returns its id.
// PRE: e has been validated
// POST: Event persisted with a server-assigned id
func (s *SQLiteStore) Create(ctx context.Context, e domain.Event) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO event (name, description, venue, status, starts_at, ends_at, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		e.Name, e.Description, e.Venue, e.Status,
		storage.FormatTime(e.StartsAt), storage.FormatTime(e.EndsAt), storage.FormatTime(e.CreatedAt),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Update overwrites the mutable fields of an existing Event.
// PRE: e.ID refers to an existing event
// POST: Returns an error wrapping sql.ErrNoRows if no row matched
func (s *SQLiteStore) Update(ctx context.Context, e domain.Event) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE event SET name = ?, description = ?, venue = ?, status = ?, starts_at = ?, ends_at = ? WHERE id = ?",
		e.Name, e.Description, e.Venue, e.Status,
		storage.FormatTime(e.StartsAt), storage.FormatTime(e.EndsAt), e.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("event not found: %w", sql.ErrNoRows)
	}
	return nil
}

func listWhereClause(filter ListFilter) (string, []any) {
	if filter.Status == "" {
		return "", nil
	}
	return " WHERE status = ?", []any{filter.Status}
}

// Count returns the number of events matching the filter.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := listWhereClause(filter)
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM event"+where, args...).Scan(&n)
	return n, err
}

// List retrieves events ordered by start time, newest first.
// PRE: filter has valid parameters
// POST: Returns at most filter.Limit events (1000 when unset)
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Event, error) {
	where, args := listWhereClause(filter)
	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	args = append(args, limit, filter.Offset)
	rows, err := s.db.QueryContext(ctx, selectEvent+where+" ORDER BY starts_at DESC, id DESC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, e)
	}
	return results, rows.Err()
}
