package email

import (
	"bytes"
	"html/template"
)

// Ticket is the data rendered into a participant's ticket email.
type Ticket struct {
	ParticipantName string
	ParticipantMail string
	EventName       string
	Venue           string
	StartsAt        string // preformatted, empty when unscheduled
	CheckInURL      string
	QRCodeURL       string
}

var ticketTemplate = template.Must(template.New("ticket").Parse(`<p>Kia ora {{.ParticipantName}},</p>
<p>You are registered for <strong>{{.EventName}}</strong>{{if .Venue}} at {{.Venue}}{{end}}{{if .StartsAt}} on {{.StartsAt}}{{end}}.</p>
<p>Show this code at the door to check in:</p>
<p><img src="{{.QRCodeURL}}" alt="Check-in QR code" width="256" height="256"></p>
<p>Or open <a href="{{.CheckInURL}}">{{.CheckInURL}}</a>.</p>`))

// TicketRequest renders a ticket into a SendRequest addressed to the participant.
// PRE: t.ParticipantMail is a valid address
// POST: Returns a request with an HTML body; values are HTML-escaped
func TicketRequest(t Ticket) (SendRequest, error) {
	var body bytes.Buffer
	if err := ticketTemplate.Execute(&body, t); err != nil {
		return SendRequest{}, err
	}
	return SendRequest{
		To:      []string{t.ParticipantMail},
		Subject: "Your ticket for " + t.EventName,
		HTML:    body.String(),
	}, nil
}
