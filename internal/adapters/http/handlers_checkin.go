package web

import (
	"database/sql"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"

	"eventdesk/internal/adapters/qrcode"
	"eventdesk/internal/application/orchestrators"
	"eventdesk/internal/domain/attendance"
)

var checkInPage = template.Must(template.New("checkin").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>Check in</title></head>
<body style="font-family: sans-serif; max-width: 28rem; margin: 3rem auto; text-align: center">
{{if .EventName}}<h1>{{.EventName}}</h1>{{end}}
{{if .Message}}<p>{{.Message}}</p>{{end}}
{{if .ShowForm}}
<form method="post" action="/checkin/{{.Code}}">
{{.CSRFField}}
<p>Checking in <strong>{{.Name}}</strong></p>
<button type="submit">Check in</button>
</form>
{{end}}
</body>
</html>
`))

type checkInView struct {
	Code      string
	EventName string
	Name      string
	Message   string
	ShowForm  bool
	CSRFField template.HTML
}

func renderCheckIn(w http.ResponseWriter, status int, view checkInView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := checkInPage.Execute(w, view); err != nil {
		slog.Error("template_render_failed", "template", "checkin", "error", err)
	}
}

// handleCheckInPage handles GET /checkin/{code}, the page a scanned QR code opens.
func handleCheckInPage(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	p, err := stores.ParticipantStore.GetByCheckInCode(r.Context(), code)
	if errors.Is(err, sql.ErrNoRows) {
		renderCheckIn(w, http.StatusNotFound, checkInView{Message: "This check-in code is not valid."})
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	view := checkInView{Code: code, Name: p.Name}
	if ev, err := stores.EventStore.GetByID(r.Context(), p.EventID); err == nil {
		view.EventName = ev.Name
	}
	pid, _ := p.PersistedID()
	if _, err := stores.AttendanceStore.GetByParticipant(r.Context(), p.EventID, pid); err == nil {
		view.Message = p.Name + " is already checked in."
		renderCheckIn(w, http.StatusOK, view)
		return
	}
	view.ShowForm = true
	view.CSRFField = csrf.TemplateField(r)
	renderCheckIn(w, http.StatusOK, view)
}

// handleCheckInSubmit handles POST /checkin/{code}
func handleCheckInSubmit(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	result, err := orchestrators.ExecuteCheckIn(r.Context(), orchestrators.CheckInInput{Code: code}, checkInDeps())
	switch {
	case err == nil:
		renderCheckIn(w, http.StatusOK, checkInView{
			EventName: result.EventName,
			Message:   "Welcome, " + result.Participant.Name + ". You are checked in.",
		})
	case errors.Is(err, orchestrators.ErrParticipantNotFound):
		renderCheckIn(w, http.StatusNotFound, checkInView{Message: "This check-in code is not valid."})
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		renderCheckIn(w, http.StatusConflict, checkInView{Message: "You are already checked in."})
	case errors.Is(err, orchestrators.ErrEventClosed):
		renderCheckIn(w, http.StatusConflict, checkInView{Message: "This event has finished."})
	default:
		internalError(w, err)
	}
}

// handleCheckInQRCode handles GET /checkin/{code}/qrcode.png, the image linked from ticket emails.
func handleCheckInQRCode(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if _, err := stores.ParticipantStore.GetByCheckInCode(r.Context(), code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.NotFound(w, r)
			return
		}
		internalError(w, err)
		return
	}
	writePNG(w, qrcode.CheckInURL(baseURL(r), code))
}
