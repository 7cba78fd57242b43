package attendance

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"eventdesk/internal/adapters/storage"
	domain "eventdesk/internal/domain/attendance"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new AttendanceStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Create records a check-in.
// PRE: a has been validated
// POST: Returns domain.ErrAlreadyCheckedIn if the participant already checked in to the event
func (s *SQLiteStore) Create(ctx context.Context, a domain.Attendance) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO attendance (id, event_id, participant_id, checked_in_at, method) VALUES (?, ?, ?, ?, ?)",
		a.ID, a.EventID, a.ParticipantID, storage.FormatTime(a.CheckedInAt), a.Method,
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return domain.ErrAlreadyCheckedIn
	}
	return err
}

func scanAttendance(scan func(dest ...any) error) (domain.Attendance, error) {
	var a domain.Attendance
	var at sql.NullString
	if err := scan(&a.ID, &a.EventID, &a.ParticipantID, &at, &a.Method); err != nil {
		return domain.Attendance{}, err
	}
	var err error
	if a.CheckedInAt, err = storage.ParseTime(at); err != nil {
		return domain.Attendance{}, fmt.Errorf("failed to parse checked_in_at: %w", err)
	}
	return a, nil
}

// GetByParticipant retrieves the check-in of one participant.
// POST: Returns an error wrapping sql.ErrNoRows if the participant has not checked in
func (s *SQLiteStore) GetByParticipant(ctx context.Context, eventID, participantID int64) (domain.Attendance, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, event_id, participant_id, checked_in_at, method FROM attendance WHERE event_id = ? AND participant_id = ?",
		eventID, participantID)
	a, err := scanAttendance(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Attendance{}, fmt.Errorf("attendance not found: %w", err)
	}
	return a, err
}

// ListByEvent retrieves every check-in of an event in check-in order.
func (s *SQLiteStore) ListByEvent(ctx context.Context, eventID int64) ([]domain.Attendance, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, event_id, participant_id, checked_in_at, method FROM attendance WHERE event_id = ? ORDER BY checked_in_at ASC",
		eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, a)
	}
	return results, rows.Err()
}

// CountByEvent returns the number of check-ins of an event.
func (s *SQLiteStore) CountByEvent(ctx context.Context, eventID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM attendance WHERE event_id = ?", eventID).Scan(&n)
	return n, err
}
