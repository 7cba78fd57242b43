package account

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"eventdesk/internal/adapters/storage"
	domain "eventdesk/internal/domain/account"
)

const selectAccount = "SELECT id, email, password_hash, role, created_at, failed_logins, locked_until FROM account"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new AccountStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an Account by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error wrapping sql.ErrNoRows if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	return s.getOne(ctx, selectAccount+" WHERE id = ?", id)
}

// GetByEmail retrieves an Account by email (case-insensitive).
// PRE: email is non-empty
// POST: Returns the entity or an error wrapping sql.ErrNoRows if not found
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	return s.getOne(ctx, selectAccount+" WHERE email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (s *SQLiteStore) getOne(ctx context.Context, query string, arg any) (domain.Account, error) {
	var a domain.Account
	var createdAt, lockedUntil sql.NullString
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.Role, &createdAt, &a.FailedLogins, &lockedUntil,
	)
	if err == sql.ErrNoRows {
		return domain.Account{}, fmt.Errorf("account not found: %w", err)
	}
	if err != nil {
		return domain.Account{}, err
	}
	if a.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Account{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if a.LockedUntil, err = storage.ParseTime(lockedUntil); err != nil {
		return domain.Account{}, fmt.Errorf("failed to parse locked_until: %w", err)
	}
	return a, nil
}

// Save persists an Account (insert or update). Emails are stored lower-cased.
// PRE: entity has been validated
// POST: Entity is persisted
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Account) error {
	query := `INSERT INTO account (id, email, password_hash, role, created_at, failed_logins, locked_until)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email=excluded.email,
			password_hash=excluded.password_hash,
			role=excluded.role,
			failed_logins=excluded.failed_logins,
			locked_until=excluded.locked_until`
	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		strings.ToLower(strings.TrimSpace(entity.Email)),
		entity.PasswordHash,
		entity.Role,
		storage.FormatTime(entity.CreatedAt),
		entity.FailedLogins,
		storage.FormatTime(entity.LockedUntil),
	)
	return err
}

// Count returns the number of accounts.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM account").Scan(&n)
	return n, err
}
