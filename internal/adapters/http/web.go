package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"eventdesk/internal/adapters/email"
	"eventdesk/internal/adapters/http/middleware"
	"eventdesk/internal/adapters/http/perf"
	accountStore "eventdesk/internal/adapters/storage/account"
	attendanceStore "eventdesk/internal/adapters/storage/attendance"
	eventStore "eventdesk/internal/adapters/storage/event"
	participantStore "eventdesk/internal/adapters/storage/participant"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore     accountStore.Store
	EventStore       eventStore.Store
	ParticipantStore participantStore.Store
	AttendanceStore  attendanceStore.Store
}

// loadCSRFKey reads the CSRF secret from EVENTDESK_CSRF_KEY (hex-encoded, 32 bytes).
// In production the key must be set. In development a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("EVENTDESK_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("EVENTDESK_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if isProduction() {
		log.Fatal("EVENTDESK_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	slog.Warn("csrf_key_generated", "detail", "check-in forms won't survive a restart; set EVENTDESK_CSRF_KEY")
	return key
}

func isProduction() bool {
	return os.Getenv("EVENTDESK_ENV") == "production"
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global email sender instance (set by SetEmailSender). Nil disables tickets.
var emailSender email.Sender

// publicURL is the externally visible base URL used in QR codes and tickets.
// Empty means derive it from the request.
var publicURL string

// eventLocation is the zone event dates and clocks are entered in.
var eventLocation = time.Local

// timeNow is a variable for testability.
var timeNow = time.Now

// SetEmailSender sets the sender used for participant tickets.
func SetEmailSender(sender email.Sender) {
	emailSender = sender
}

// SetPublicURL sets the base URL printed in QR codes and ticket emails.
func SetPublicURL(u string) {
	publicURL = strings.TrimRight(u, "/")
}

// SetLocation sets the time zone used to interpret event dates.
func SetLocation(loc *time.Location) {
	if loc != nil {
		eventLocation = loc
	}
}

// NewMux wires HTTP handlers for the app.
func NewMux(s *Stores, collector *perf.Collector) http.Handler {
	stores = s
	perfCollector = collector
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = isProduction()

	mux := http.NewServeMux()
	registerRoutes(mux)

	csrfKey := loadCSRFKey()
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)
	go sweepVisitors(limiter)

	// Outermost first: RateLimit -> SecurityHeaders -> CSRF -> Auth -> Timing -> Mux
	return middleware.Chain(mux,
		middleware.Timing(collector, middleware.SlowRequestThreshold()),
		middleware.Auth(sessions),
		middleware.CSRF(csrfKey, trustedOrigins()),
		middleware.SecurityHeaders,
		middleware.RateLimit(limiter),
	)
}

// trustedOrigins lists the public host so cross-origin form posts from it pass the CSRF check.
func trustedOrigins() []string {
	if publicURL == "" {
		return nil
	}
	u, err := url.Parse(publicURL)
	if err != nil || u.Host == "" {
		return nil
	}
	return []string{u.Host}
}

func sweepVisitors(limiter *middleware.RateLimiter) {
	for range time.Tick(10 * time.Minute) {
		limiter.Sweep(10 * time.Minute)
	}
}

// registerRoutes maps every route to its handler and access rule.
func registerRoutes(mux *http.ServeMux) {
	anyone := func(h http.HandlerFunc) http.Handler { return h }
	reader := func(h http.HandlerFunc) http.Handler { return middleware.RequireAuth(h) }
	editor := func(h http.HandlerFunc) http.Handler { return middleware.RequireEditor(h) }
	admin := func(h http.HandlerFunc) http.Handler { return middleware.RequireAdmin(h) }

	mux.Handle("GET /healthz", anyone(handleHealth))

	// Auth
	mux.Handle("POST /api/login", anyone(handleLogin))
	mux.Handle("POST /api/logout", anyone(handleLogout))
	mux.Handle("GET /api/me", reader(handleMe))

	// Events
	mux.Handle("GET /api/events", reader(handleEventList))
	mux.Handle("POST /api/events", editor(handleCreateEvent))
	mux.Handle("GET /api/events/{eventID}", reader(handleEventDetail))
	mux.Handle("POST /api/events/{eventID}/status", editor(handleEventStatus))

	// Participants
	mux.Handle("GET /api/events/{eventID}/participants", reader(handleParticipantPage))
	mux.Handle("POST /api/events/{eventID}/participants", editor(handleSaveParticipants))
	mux.Handle("POST /api/events/{eventID}/participants/import", editor(handleImportParticipants))
	mux.Handle("GET /api/events/{eventID}/participants/export", reader(handleExportParticipants))
	mux.Handle("DELETE /api/events/{eventID}/participants/{participantID}", editor(handleDeleteParticipant))
	mux.Handle("GET /api/events/{eventID}/participants/{participantID}/qrcode", reader(handleParticipantQRCode))

	// Attendance and reports
	mux.Handle("POST /api/events/{eventID}/attendance", editor(handleManualCheckIn))
	mux.Handle("GET /api/events/{eventID}/reports/demographics", reader(handleDemographics))

	// Admin
	mux.Handle("GET /api/admin/perf", admin(handlePerf))

	// Public check-in by QR code
	mux.Handle("GET /checkin/{code}", anyone(handleCheckInPage))
	mux.Handle("POST /checkin/{code}", anyone(handleCheckInSubmit))
	mux.Handle("GET /checkin/{code}/qrcode.png", anyone(handleCheckInQRCode))
}
