package projections

import (
	"bytes"
	"context"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	eventStore "eventdesk/internal/adapters/storage/event"
	"eventdesk/internal/application/listutil"
	domainAttendance "eventdesk/internal/domain/attendance"
	domainEvent "eventdesk/internal/domain/event"
)

// mdRenderer renders event descriptions. Raw HTML in the markdown is escaped
// because WithUnsafe is not set.
var mdRenderer = goldmark.New(
	goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
	goldmark.WithRendererOptions(goldmarkHTML.WithHardWraps()),
)

// EventSummary is an event as listed and shown in detail.
type EventSummary struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Venue     string    `json:"venue,omitempty"`
	Status    string    `json:"status"`
	StartsAt  time.Time `json:"startsAt,omitzero"`
	EndsAt    time.Time `json:"endsAt,omitzero"`
	CreatedAt time.Time `json:"createdAt"`
}

// EventDetail is an event with its rendered description and counts.
type EventDetail struct {
	EventSummary
	Description     string  `json:"description,omitempty"`
	DescriptionHTML string  `json:"descriptionHtml,omitempty"`
	Registered      int     `json:"registered"`
	CheckedIn       int     `json:"checkedIn"`
	AttendanceRate  float64 `json:"attendanceRate"`
}

// EventDetailDeps holds dependencies for EventDetail.
type EventDetailDeps struct {
	EventStore       EventStore
	ParticipantStore ParticipantStore
	AttendanceStore  AttendanceStore
}

// QueryEventDetail retrieves one event with its counts.
// PRE: id > 0
// POST: DescriptionHTML is the sanitized markdown rendering of Description
func QueryEventDetail(ctx context.Context, id int64, deps EventDetailDeps) (EventDetail, error) {
	ev, err := lookupEvent(ctx, deps.EventStore, id)
	if err != nil {
		return EventDetail{}, err
	}
	registered, err := deps.ParticipantStore.CountByEvent(ctx, id)
	if err != nil {
		return EventDetail{}, err
	}
	checkedIn, err := deps.AttendanceStore.CountByEvent(ctx, id)
	if err != nil {
		return EventDetail{}, err
	}

	detail := EventDetail{
		EventSummary:   summarize(ev),
		Description:    ev.Description,
		Registered:     registered,
		CheckedIn:      checkedIn,
		AttendanceRate: domainAttendance.Rate(checkedIn, registered),
	}
	if ev.Description != "" {
		var buf bytes.Buffer
		if err := mdRenderer.Convert([]byte(ev.Description), &buf); err != nil {
			return EventDetail{}, err
		}
		detail.DescriptionHTML = buf.String()
	}
	return detail, nil
}

// EventListQuery carries query parameters.
type EventListQuery struct {
	Status   string // empty for all statuses
	Pageable listutil.Pageable
}

// EventList is one page of events.
type EventList struct {
	Content       []EventSummary `json:"content"`
	TotalElements int            `json:"totalElements"`
	TotalPages    int            `json:"totalPages"`
	Number        int            `json:"number"`
	Size          int            `json:"size"`
}

// EventListDeps holds dependencies for EventList.
type EventListDeps struct {
	EventStore EventStore
}

// QueryEventList retrieves one page of events, optionally filtered by status.
// PRE: query.Status is empty or a valid status
// POST: Events are ordered by start time, newest first
func QueryEventList(ctx context.Context, query EventListQuery, deps EventListDeps) (EventList, error) {
	if query.Status != "" && !domainEvent.IsValidStatus(query.Status) {
		return EventList{}, domainEvent.ErrInvalidStatus
	}
	filter := eventStore.ListFilter{Status: query.Status}
	total, err := deps.EventStore.Count(ctx, filter)
	if err != nil {
		return EventList{}, err
	}
	pi := listutil.NewPageInfo(query.Pageable.Page, query.Pageable.Size, total)
	filter.Limit, filter.Offset = pi.Size, pi.Offset()

	events, err := deps.EventStore.List(ctx, filter)
	if err != nil {
		return EventList{}, err
	}
	content := make([]EventSummary, 0, len(events))
	for _, ev := range events {
		content = append(content, summarize(ev))
	}
	return EventList{
		Content:       content,
		TotalElements: total,
		TotalPages:    pi.TotalPages,
		Number:        pi.Page,
		Size:          pi.Size,
	}, nil
}

func summarize(ev domainEvent.Event) EventSummary {
	return EventSummary{
		ID:        ev.ID,
		Name:      ev.Name,
		Venue:     ev.Venue,
		Status:    ev.Status,
		StartsAt:  ev.StartsAt,
		EndsAt:    ev.EndsAt,
		CreatedAt: ev.CreatedAt,
	}
}
