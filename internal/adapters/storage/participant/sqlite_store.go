package participant

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"eventdesk/internal/adapters/storage"
	domain "eventdesk/internal/domain/participant"
)

const selectParticipant = "SELECT id, event_id, name, email, phone_no, faculty, course, year, gender, role, check_in_code, created_at FROM participant"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new ParticipantStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

type scanner func(dest ...any) error

func scanParticipant(scan scanner) (domain.Participant, error) {
	var p domain.Participant
	var id int64
	var createdAt sql.NullString
	err := scan(&id, &p.EventID, &p.Name, &p.Email, &p.PhoneNo, &p.Faculty, &p.Course, &p.Year, &p.Gender, &p.Role, &p.CheckInCode, &createdAt)
	if err != nil {
		return domain.Participant{}, err
	}
	p.ID = strconv.FormatInt(id, 10)
	if p.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Participant{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) queryList(ctx context.Context, query string, args ...any) ([]domain.Participant, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.Participant{}
	for rows.Next() {
		p, err := scanParticipant(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	return results, rows.Err()
}

// GetByID retrieves a Participant of an event.
// PRE: eventID > 0, id > 0
// POST: Returns the entity or an error wrapping sql.ErrNoRows if not found
func (s *SQLiteStore) GetByID(ctx context.Context, eventID, id int64) (domain.Participant, error) {
	p, err := scanParticipant(s.db.QueryRowContext(ctx, selectParticipant+" WHERE event_id = ? AND id = ?", eventID, id).Scan)
	if err == sql.ErrNoRows {
		return domain.Participant{}, fmt.Errorf("participant not found: %w", err)
	}
	return p, err
}

// GetByCheckInCode retrieves the Participant a QR check-in code belongs to.
// PRE: code is non-empty
// POST: Returns the entity or an error wrapping sql.ErrNoRows if not found
func (s *SQLiteStore) GetByCheckInCode(ctx context.Context, code string) (domain.Participant, error) {
	p, err := scanParticipant(s.db.QueryRowContext(ctx, selectParticipant+" WHERE check_in_code = ?", code).Scan)
	if err == sql.ErrNoRows {
		return domain.Participant{}, fmt.Errorf("participant not found: %w", err)
	}
	return p, err
}

// sortClause returns a safe ORDER BY clause. Only SortColumns keys are accepted.
func sortClause(filter ListFilter) string {
	col, ok := SortColumns[filter.Sort]
	if !ok {
		col = "id"
	}
	dir := "ASC"
	if filter.Dir == "desc" {
		dir = "DESC"
	}
	return " ORDER BY " + col + " " + dir + ", id ASC"
}

// ListByEvent retrieves one page of an event's participants.
// PRE: filter has valid parameters
// POST: Returns at most filter.Limit participants (1000 when unset) in the requested order
func (s *SQLiteStore) ListByEvent(ctx context.Context, eventID int64, filter ListFilter) ([]domain.Participant, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query := selectParticipant + " WHERE event_id = ?" + sortClause(filter) + " LIMIT ? OFFSET ?"
	return s.queryList(ctx, query, eventID, limit, filter.Offset)
}

// ListAllByEvent retrieves every participant of an event in id order.
func (s *SQLiteStore) ListAllByEvent(ctx context.Context, eventID int64) ([]domain.Participant, error) {
	return s.queryList(ctx, selectParticipant+" WHERE event_id = ? ORDER BY id ASC", eventID)
}

// CountByEvent returns the number of participants of an event.
func (s *SQLiteStore) CountByEvent(ctx context.Context, eventID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM participant WHERE event_id = ?", eventID).Scan(&n)
	return n, err
}

// InsertBatch inserts every record in one transaction.
// PRE: records are validated and carry CheckInCode and CreatedAt
// POST: Either all records are persisted and returned with server ids, or none are
// INVARIANT: A unique-key violation rolls back the whole batch and returns ErrDuplicate
func (s *SQLiteStore) InsertBatch(ctx context.Context, eventID int64, records []domain.Participant) ([]domain.Participant, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO participant
		(event_id, name, email, email_key, phone_no, name_phone_key, faculty, course, year, gender, role, check_in_code, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	saved := make([]domain.Participant, 0, len(records))
	for _, p := range records {
		res, err := stmt.ExecContext(ctx,
			eventID, p.Name, p.Email, p.EmailKey(), p.PhoneNo, p.NamePhoneKey(),
			p.Faculty, p.Course, p.Year, p.Gender, p.Role, p.CheckInCode, storage.FormatTime(p.CreatedAt),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, fmt.Errorf("%w: %s", ErrDuplicate, p.Email)
			}
			return nil, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		p.ID = strconv.FormatInt(id, 10)
		p.EventID = eventID
		saved = append(saved, p)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return saved, nil
}

// Delete removes a participant together with its attendance rows.
// PRE: eventID > 0, id > 0
// POST: Returns an error wrapping sql.ErrNoRows if nothing was deleted
func (s *SQLiteStore) Delete(ctx context.Context, eventID, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM attendance WHERE event_id = ? AND participant_id = ?", eventID, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM participant WHERE event_id = ? AND id = ?", eventID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("participant not found: %w", sql.ErrNoRows)
	}
	return tx.Commit()
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
