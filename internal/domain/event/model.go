package event

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength  = 200
	MaxVenueLength = 200
)

// Status values, matching the organizer's upcoming/active/completed views.
const (
	StatusUpcoming  = "upcoming"
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// Layouts accepted by CombineDateTime.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// Domain errors
var (
	ErrEmptyName         = errors.New("event name cannot be empty")
	ErrNameTooLong       = errors.New("event name cannot exceed 200 characters")
	ErrVenueTooLong      = errors.New("event venue cannot exceed 200 characters")
	ErrInvalidStatus     = errors.New("status must be 'upcoming', 'active', or 'completed'")
	ErrEndBeforeStart    = errors.New("event cannot end before it starts")
	ErrInvalidTransition = errors.New("event status can only move forward")
)

// Event is an organized event that participants register for.
type Event struct {
	ID          int64
	Name        string
	Description string // markdown
	Venue       string
	Status      string
	StartsAt    time.Time
	EndsAt      time.Time
	CreatedAt   time.Time
}

// Validate checks if the Event has valid data.
// PRE: Event struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(e.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if utf8.RuneCountInString(e.Venue) > MaxVenueLength {
		return ErrVenueTooLong
	}
	if !IsValidStatus(e.Status) {
		return ErrInvalidStatus
	}
	if !e.StartsAt.IsZero() && !e.EndsAt.IsZero() && e.EndsAt.Before(e.StartsAt) {
		return ErrEndBeforeStart
	}
	return nil
}

// Transition moves the event to a later status.
// PRE: to is a valid status
// POST: Status updated when the move is forward; otherwise ErrInvalidTransition
func (e *Event) Transition(to string) error {
	if !IsValidStatus(to) {
		return ErrInvalidStatus
	}
	if rank(to) <= rank(e.Status) {
		return ErrInvalidTransition
	}
	e.Status = to
	return nil
}

// IsValidStatus reports whether s is a known event status.
func IsValidStatus(s string) bool {
	return s == StatusUpcoming || s == StatusActive || s == StatusCompleted
}

func rank(status string) int {
	switch status {
	case StatusUpcoming:
		return 0
	case StatusActive:
		return 1
	case StatusCompleted:
		return 2
	}
	return -1
}

// CombineDateTime joins a date field and a clock field into one instant.
// An empty clock means midnight.
// PRE: date is YYYY-MM-DD, clock is HH:MM or empty
// POST: Returns the instant in loc (UTC when loc is nil)
func CombineDateTime(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if clock == "" {
		clock = "00:00"
	}
	t, err := time.ParseInLocation(DateLayout+" "+ClockLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date/time %q %q: %w", date, clock, err)
	}
	return t, nil
}
