package event_test

import (
	"strings"
	"testing"
	"time"

	"eventdesk/internal/domain/event"
)

// TestEventValidation tests validation of Event.
func TestEventValidation(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		e       event.Event
		wantErr error
	}{
		{
			name: "valid event",
			e:    event.Event{Name: "Orientation", Status: event.StatusUpcoming, StartsAt: start, EndsAt: start.Add(2 * time.Hour)},
		},
		{
			name:    "empty name",
			e:       event.Event{Status: event.StatusUpcoming},
			wantErr: event.ErrEmptyName,
		},
		{
			name: "multibyte name within the limit",
			e:    event.Event{Name: strings.Repeat("会", 150), Venue: strings.Repeat("ห", 200), Status: event.StatusUpcoming},
		},
		{
			name:    "multibyte name over the limit",
			e:       event.Event{Name: strings.Repeat("会", 201), Status: event.StatusUpcoming},
			wantErr: event.ErrNameTooLong,
		},
		{
			name:    "bad status",
			e:       event.Event{Name: "x", Status: "archived"},
			wantErr: event.ErrInvalidStatus,
		},
		{
			name:    "ends before start",
			e:       event.Event{Name: "x", Status: event.StatusActive, StartsAt: start, EndsAt: start.Add(-time.Minute)},
			wantErr: event.ErrEndBeforeStart,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.e.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestEventTransition verifies statuses only move forward.
func TestEventTransition(t *testing.T) {
	e := event.Event{Name: "x", Status: event.StatusUpcoming}
	if err := e.Transition(event.StatusActive); err != nil {
		t.Fatalf("upcoming->active: %v", err)
	}
	if err := e.Transition(event.StatusUpcoming); err != event.ErrInvalidTransition {
		t.Errorf("active->upcoming = %v, want ErrInvalidTransition", err)
	}
	if err := e.Transition(event.StatusCompleted); err != nil {
		t.Fatalf("active->completed: %v", err)
	}
	if err := e.Transition("bogus"); err != event.ErrInvalidStatus {
		t.Errorf("Transition(bogus) = %v, want ErrInvalidStatus", err)
	}
}

// TestCombineDateTime covers the date and clock form combination.
func TestCombineDateTime(t *testing.T) {
	loc := time.FixedZone("NZDT", 13*3600)
	got, err := event.CombineDateTime("2026-03-01", "18:30", loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 3, 1, 18, 30, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	midnight, err := event.CombineDateTime("2026-03-01", "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if midnight.Hour() != 0 || midnight.Location() != time.UTC {
		t.Errorf("empty clock = %v, want UTC midnight", midnight)
	}

	if _, err := event.CombineDateTime("01/03/2026", "18:30", nil); err == nil {
		t.Error("expected error for malformed date")
	}
}
