package web

import (
	"net/http"

	"eventdesk/internal/application/listutil"
	"eventdesk/internal/application/orchestrators"
	"eventdesk/internal/application/projections"
)

func eventDetailDeps() projections.EventDetailDeps {
	return projections.EventDetailDeps{
		EventStore:       stores.EventStore,
		ParticipantStore: stores.ParticipantStore,
		AttendanceStore:  stores.AttendanceStore,
	}
}

// handleEventList handles GET /api/events?status=&page=&size=
func handleEventList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := projections.QueryEventList(r.Context(), projections.EventListQuery{
		Status:   q.Get("status"),
		Pageable: listutil.ParsePageable(q, nil),
	}, projections.EventListDeps{EventStore: stores.EventStore})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type createEventRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Venue       string `json:"venue"`
	Date        string `json:"date"`      // YYYY-MM-DD
	StartTime   string `json:"startTime"` // HH:MM
	EndTime     string `json:"endTime"`   // HH:MM
}

// handleCreateEvent handles POST /api/events
func handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	ev, err := orchestrators.ExecuteCreateEvent(r.Context(), orchestrators.CreateEventInput{
		Name:        req.Name,
		Description: req.Description,
		Venue:       req.Venue,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Location:    eventLocation,
	}, orchestrators.CreateEventDeps{EventStore: stores.EventStore, Now: timeNow})
	if err != nil {
		writeError(w, err)
		return
	}

	detail, err := projections.QueryEventDetail(r.Context(), ev.ID, eventDetailDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

// handleEventDetail handles GET /api/events/{eventID}
func handleEventDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "eventID")
	if !ok {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}
	detail, err := projections.QueryEventDetail(r.Context(), id, eventDetailDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// handleEventStatus handles POST /api/events/{eventID}/status with {"status": "..."}
func handleEventStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "eventID")
	if !ok {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	if _, err := orchestrators.ExecuteUpdateEventStatus(r.Context(), orchestrators.UpdateEventStatusInput{
		EventID: id,
		Status:  req.Status,
	}, orchestrators.UpdateEventStatusDeps{EventStore: stores.EventStore}); err != nil {
		writeError(w, err)
		return
	}

	detail, err := projections.QueryEventDetail(r.Context(), id, eventDetailDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// handleDemographics handles GET /api/events/{eventID}/reports/demographics
func handleDemographics(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "eventID")
	if !ok {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}
	report, err := projections.QueryDemographics(r.Context(), id, projections.DemographicsDeps{
		EventStore:       stores.EventStore,
		ParticipantStore: stores.ParticipantStore,
		AttendanceStore:  stores.AttendanceStore,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
