package storage

import (
	"database/sql"
	"time"
)

// TimeLayout is the text layout used for every stored timestamp.
const TimeLayout = time.RFC3339Nano

// FormatTime renders t for storage; the zero time is stored as NULL.
func FormatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a stored timestamp; NULL yields the zero time.
func ParseTime(s sql.NullString) (time.Time, error) {
	if !s.Valid || s.String == "" {
		return time.Time{}, nil
	}
	return time.Parse(TimeLayout, s.String)
}
