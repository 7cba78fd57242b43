package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"eventdesk/internal/adapters/http/middleware"
	"eventdesk/internal/adapters/spreadsheet"
	"eventdesk/internal/application/orchestrators"
	"eventdesk/internal/application/projections"
	"eventdesk/internal/domain/attendance"
	"eventdesk/internal/domain/event"
)

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response_encode_failed", "error", err)
	}
}

// pathID parses a positive integer path value.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil && id > 0
}

// writeError maps application errors to status codes. The message of a
// client error is returned as plain text; anything unrecognised is a 500.
func writeError(w http.ResponseWriter, err error) {
	var (
		recordErr *orchestrators.RecordError
		parseErr  *time.ParseError
	)
	switch {
	case errors.Is(err, orchestrators.ErrEventNotFound),
		errors.Is(err, projections.ErrEventNotFound),
		errors.Is(err, orchestrators.ErrParticipantNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, orchestrators.ErrDuplicateParticipant),
		errors.Is(err, attendance.ErrAlreadyCheckedIn),
		errors.Is(err, event.ErrInvalidTransition),
		errors.Is(err, orchestrators.ErrEventClosed):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, spreadsheet.ErrUnsupportedFileType):
		http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
	case errors.As(err, &recordErr),
		errors.As(err, &parseErr),
		errors.Is(err, spreadsheet.ErrMissingColumn),
		errors.Is(err, spreadsheet.ErrInvalidWorkbook),
		errors.Is(err, event.ErrEmptyName),
		errors.Is(err, event.ErrNameTooLong),
		errors.Is(err, event.ErrVenueTooLong),
		errors.Is(err, event.ErrInvalidStatus),
		errors.Is(err, event.ErrEndBeforeStart):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, orchestrators.ErrInvalidCredentials),
		errors.Is(err, orchestrators.ErrAccountLocked):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	default:
		internalError(w, err)
	}
}

// handleHealth handles GET /healthz
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type accountResponse struct {
	AccountID string `json:"accountId"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// handleLogin handles POST /api/login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}, orchestrators.LoginDeps{
		AccountStore: stores.AccountStore,
		Now:          timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := sessions.Create(result.AccountID, result.Email, result.Role)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)
	writeJSON(w, http.StatusOK, accountResponse(result))
}

// handleLogout handles POST /api/logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		sessions.Delete(cookie.Value)
	}
	middleware.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleMe handles GET /api/me
func handleMe(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	writeJSON(w, http.StatusOK, accountResponse{AccountID: sess.AccountID, Email: sess.Email, Role: sess.Role})
}

// handlePerf handles GET /api/admin/perf?window=15m
func handlePerf(w http.ResponseWriter, r *http.Request) {
	if perfCollector == nil {
		http.Error(w, "performance collection is disabled", http.StatusNotFound)
		return
	}
	window := 15 * time.Minute
	if v := r.URL.Query().Get("window"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			http.Error(w, "window must be a positive duration such as 15m", http.StatusBadRequest)
			return
		}
		window = d
	}
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(timeNow().Add(-window), 10))
}
