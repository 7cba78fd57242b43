// Package staging holds the participant import session an organizer works
// through: upload a spreadsheet, review the staged candidates, and commit the
// ones that are not already registered.
package staging

import (
	"context"
	"io"

	"eventdesk/internal/domain/participant"
)

// Page is one page of an event's saved participants.
type Page struct {
	Content       []participant.Participant `json:"content"`
	TotalElements int                       `json:"totalElements"`
	TotalPages    int                       `json:"totalPages"`
	Pageable      Pageable                  `json:"pageable"`
}

// Pageable echoes the paging of a Page.
type Pageable struct {
	PageNumber int    `json:"pageNumber"`
	PageSize   int    `json:"pageSize"`
	Sort       string `json:"sort,omitempty"`
	Offset     int    `json:"offset"`
}

// Service is the participant backend a Session talks to.
type Service interface {
	// ImportParticipants parses an uploaded spreadsheet into candidates. Nothing is persisted.
	ImportParticipants(ctx context.Context, eventID int64, filename, contentType string, file io.Reader) ([]participant.Participant, error)
	// SaveParticipants persists records all-or-nothing and reports success.
	SaveParticipants(ctx context.Context, eventID int64, records []participant.Participant) (bool, error)
	// GetParticipantsByEventID returns one 0-indexed page of saved participants.
	GetParticipantsByEventID(ctx context.Context, eventID int64, page, size int, sortKey string) (Page, error)
	DeleteParticipant(ctx context.Context, eventID, participantID int64) error
}

// Level is the severity of a Notification.
type Level string

// Notification levels
const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
)

// Notification is a message for the organizer, e.g. a toast.
type Notification struct {
	Level   Level
	Message string
}

// Notifier receives session notifications.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notification) { f(n) }
