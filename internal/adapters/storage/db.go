package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// migration is one forward-only schema step.
type migration struct {
	version     int
	description string
	up          func(tx *sql.Tx) error
}

// migrations is the ordered schema history. Never edit an applied step; append a new one.
var migrations = []migration{
	{1, "baseline: event, participant, attendance, account", migrateBaseline},
	{2, "list and report indexes", migrateIndexes},
}

// LatestSchemaVersion returns the version the migration chain ends at.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion returns the currently applied schema version (0 for a fresh database).
// PRE: db is a valid connection
// POST: Returns the highest applied version
func SchemaVersion(db *sql.DB) (int, error) {
	if _, err := db.Exec("CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)"); err != nil {
		return 0, fmt.Errorf("failed to create schema_version: %w", err)
	}
	var v sql.NullInt64
	if err := db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return int(v.Int64), nil
}

// MigrateDB applies every pending migration, each in its own transaction.
// PRE: db is a valid database connection
// POST: Schema is at LatestSchemaVersion
// INVARIANT: Running MigrateDB on an up-to-date database is a no-op
func MigrateDB(db *sql.DB) error {
	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := db.BeginTx(context.Background(), nil)
		if err != nil {
			return err
		}
		if err := m.up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.description, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: failed to record version: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		slog.Info("schema_migrated", "version", m.version, "description", m.description)
	}
	return nil
}

func migrateBaseline(tx *sql.Tx) error {
	schema := `
	CREATE TABLE IF NOT EXISTS event (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		venue TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		starts_at TEXT,
		ends_at TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS participant (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		email_key TEXT NOT NULL,
		phone_no TEXT NOT NULL DEFAULT '',
		name_phone_key TEXT NOT NULL,
		faculty TEXT NOT NULL DEFAULT '',
		course TEXT NOT NULL DEFAULT '',
		year INTEGER NOT NULL DEFAULT 0,
		gender TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT '',
		check_in_code TEXT NOT NULL UNIQUE,
		created_at TEXT NOT NULL,
		UNIQUE (event_id, email_key),
		UNIQUE (event_id, name_phone_key),
		FOREIGN KEY (event_id) REFERENCES event(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS attendance (
		id TEXT PRIMARY KEY,
		event_id INTEGER NOT NULL,
		participant_id INTEGER NOT NULL,
		checked_in_at TEXT NOT NULL,
		method TEXT NOT NULL,
		UNIQUE (event_id, participant_id),
		FOREIGN KEY (event_id) REFERENCES event(id) ON DELETE CASCADE,
		FOREIGN KEY (participant_id) REFERENCES participant(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS account (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		created_at TEXT NOT NULL,
		failed_logins INTEGER NOT NULL DEFAULT 0,
		locked_until TEXT
	);
	`
	_, err := tx.Exec(schema)
	return err
}

func migrateIndexes(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE INDEX IF NOT EXISTS idx_event_status ON event(status, starts_at);
	CREATE INDEX IF NOT EXISTS idx_participant_event_name ON participant(event_id, name);
	CREATE INDEX IF NOT EXISTS idx_attendance_event ON attendance(event_id);
	`)
	return err
}
