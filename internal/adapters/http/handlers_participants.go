package web

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"time"

	"eventdesk/internal/adapters/qrcode"
	"eventdesk/internal/adapters/spreadsheet"
	participantStore "eventdesk/internal/adapters/storage/participant"
	"eventdesk/internal/application/listutil"
	"eventdesk/internal/application/orchestrators"
	"eventdesk/internal/application/projections"
	"eventdesk/internal/domain/participant"
)

// participantSortKeys are the sort keys accepted on the participant list.
var participantSortKeys = slices.Sorted(maps.Keys(participantStore.SortColumns))

// maxMultipartMemory is the part of an upload kept in memory; the rest spills to disk.
const maxMultipartMemory = 1 << 20

// baseURL is the public URL, or the request's own origin when none is configured.
func baseURL(r *http.Request) string {
	if publicURL != "" {
		return publicURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// handleParticipantPage handles GET /api/events/{eventID}/participants?page=&size=&sort=
func handleParticipantPage(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(r, "eventID")
	if !ok {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}
	page, err := projections.QueryParticipantPage(r.Context(), projections.ParticipantPageQuery{
		EventID:  eventID,
		Pageable: listutil.ParsePageable(r.URL.Query(), participantSortKeys),
	}, projections.ParticipantPageDeps{
		EventStore:       stores.EventStore,
		ParticipantStore: stores.ParticipantStore,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

type importResponse struct {
	Candidates []participant.Participant `json:"candidates"`
	RowErrors  []spreadsheet.RowError    `json:"rowErrors"`
}

// handleImportParticipants handles POST /api/events/{eventID}/participants/import
// with a multipart "file" field. Nothing is stored; the response lists the candidates.
func handleImportParticipants(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(r, "eventID")
	if !ok {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, spreadsheet.MaxUploadBytes+maxMultipartMemory)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "upload is too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "invalid multipart upload", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	result, err := orchestrators.ExecuteImportParticipants(r.Context(), orchestrators.ImportParticipantsInput{
		EventID:     eventID,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Reader:      file,
	}, orchestrators.ImportParticipantsDeps{EventStore: stores.EventStore})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := importResponse{Candidates: result.Candidates, RowErrors: result.RowErrors}
	if resp.RowErrors == nil {
		resp.RowErrors = []spreadsheet.RowError{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSaveParticipants handles POST /api/events/{eventID}/participants with a JSON array.
// Responds true once every record is stored.
func handleSaveParticipants(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(r, "eventID")
	if !ok {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}
	var records []participant.Participant
	if err := strictDecode(r, &records); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	saved, err := orchestrators.ExecuteSaveParticipants(r.Context(), orchestrators.SaveParticipantsInput{
		EventID: eventID,
		Records: records,
	}, orchestrators.SaveParticipantsDeps{
		EventStore:       stores.EventStore,
		ParticipantStore: stores.ParticipantStore,
		Mailer:           emailSender,
		PublicURL:        baseURL(r),
		Now:              timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// handleDeleteParticipant handles DELETE /api/events/{eventID}/participants/{participantID}
func handleDeleteParticipant(w http.ResponseWriter, r *http.Request) {
	eventID, ok1 := pathID(r, "eventID")
	participantID, ok2 := pathID(r, "participantID")
	if !ok1 || !ok2 {
		http.Error(w, orchestrators.ErrParticipantNotFound.Error(), http.StatusNotFound)
		return
	}
	if err := orchestrators.ExecuteDeleteParticipant(r.Context(), orchestrators.DeleteParticipantInput{
		EventID:       eventID,
		ParticipantID: participantID,
	}, orchestrators.DeleteParticipantDeps{ParticipantStore: stores.ParticipantStore}); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExportParticipants handles GET /api/events/{eventID}/participants/export
func handleExportParticipants(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(r, "eventID")
	if !ok {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}
	if _, err := stores.EventStore.GetByID(r.Context(), eventID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}
		internalError(w, err)
		return
	}
	list, err := stores.ParticipantStore.ListAllByEvent(r.Context(), eventID)
	if err != nil {
		internalError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := spreadsheet.WriteParticipants(&buf, list); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", spreadsheet.XLSXContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="event-%d-participants.xlsx"`, eventID))
	w.Write(buf.Bytes())
}

// handleParticipantQRCode handles GET /api/events/{eventID}/participants/{participantID}/qrcode
func handleParticipantQRCode(w http.ResponseWriter, r *http.Request) {
	eventID, ok1 := pathID(r, "eventID")
	participantID, ok2 := pathID(r, "participantID")
	if !ok1 || !ok2 {
		http.Error(w, orchestrators.ErrParticipantNotFound.Error(), http.StatusNotFound)
		return
	}
	p, err := stores.ParticipantStore.GetByID(r.Context(), eventID, participantID)
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, orchestrators.ErrParticipantNotFound.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	writePNG(w, qrcode.CheckInURL(baseURL(r), p.CheckInCode))
}

func writePNG(w http.ResponseWriter, content string) {
	png, err := qrcode.PNG(content, qrcode.DefaultSize)
	if err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(png)
}

type checkInResponse struct {
	ID            string    `json:"id"`
	EventID       int64     `json:"eventId"`
	ParticipantID int64     `json:"participantId"`
	Name          string    `json:"name"`
	CheckedInAt   time.Time `json:"checkedInAt"`
	Method        string    `json:"method"`
}

// handleManualCheckIn handles POST /api/events/{eventID}/attendance with {"participantId": n}
func handleManualCheckIn(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(r, "eventID")
	if !ok {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}
	var req struct {
		ParticipantID int64 `json:"participantId"`
	}
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.ParticipantID <= 0 {
		http.Error(w, "participantId is required", http.StatusBadRequest)
		return
	}

	result, err := orchestrators.ExecuteCheckIn(r.Context(), orchestrators.CheckInInput{
		EventID:       eventID,
		ParticipantID: req.ParticipantID,
	}, checkInDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, checkInResponse{
		ID:            result.Attendance.ID,
		EventID:       result.Attendance.EventID,
		ParticipantID: result.Attendance.ParticipantID,
		Name:          result.Participant.Name,
		CheckedInAt:   result.Attendance.CheckedInAt,
		Method:        result.Attendance.Method,
	})
}

func checkInDeps() orchestrators.CheckInDeps {
	return orchestrators.CheckInDeps{
		EventStore:       stores.EventStore,
		ParticipantStore: stores.ParticipantStore,
		AttendanceStore:  stores.AttendanceStore,
		Now:              timeNow,
	}
}
