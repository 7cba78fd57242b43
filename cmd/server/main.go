package main

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	emailPkg "eventdesk/internal/adapters/email"
	web "eventdesk/internal/adapters/http"
	"eventdesk/internal/adapters/http/perf"
	"eventdesk/internal/adapters/storage"
	accountStore "eventdesk/internal/adapters/storage/account"
	attendanceStore "eventdesk/internal/adapters/storage/attendance"
	eventStore "eventdesk/internal/adapters/storage/event"
	participantStore "eventdesk/internal/adapters/storage/participant"
	"eventdesk/internal/application/orchestrators"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// .env is optional; real environment variables win over it
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("failed to read .env: %v", err)
	}
	env := envOrDefault("EVENTDESK_ENV", "development")
	configureLogging(env)

	// WAL mode, foreign keys and busy timeout
	dbPath := envOrDefault("EVENTDESK_DB", "eventdesk.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.MigrateDB(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector)

	acctStore := accountStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		AccountStore:     acctStore,
		EventStore:       eventStore.NewSQLiteStore(timedDB),
		ParticipantStore: participantStore.NewSQLiteStore(timedDB),
		AttendanceStore:  attendanceStore.NewSQLiteStore(timedDB),
	}

	// Bootstrap admin on an empty database
	seeded, err := orchestrators.ExecuteSeedAdmin(context.Background(), orchestrators.SeedAdminInput{
		Email:    os.Getenv("EVENTDESK_ADMIN_EMAIL"),
		Password: os.Getenv("EVENTDESK_ADMIN_PASSWORD"),
	}, orchestrators.SeedAdminDeps{AccountStore: acctStore})
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	if seeded {
		slog.Info("admin_seeded", "email", os.Getenv("EVENTDESK_ADMIN_EMAIL"))
	}

	// Ticket email
	resendKey := os.Getenv("EVENTDESK_RESEND_KEY")
	mailFrom := envOrDefault("EVENTDESK_MAIL_FROM", "Eventdesk <tickets@eventdesk.local>")
	switch {
	case resendKey != "":
		web.SetEmailSender(emailPkg.NewResendSender(resendKey, mailFrom))
		slog.Info("email_sender_configured", "provider", "resend")
	case env == "production":
		slog.Warn("email_sender_disabled", "reason", "EVENTDESK_RESEND_KEY is not set")
	default:
		web.SetEmailSender(emailPkg.NewNoopSender())
		slog.Info("email_sender_configured", "provider", "noop")
	}

	web.SetPublicURL(os.Getenv("EVENTDESK_PUBLIC_URL"))
	if tz := os.Getenv("EVENTDESK_TZ"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			log.Fatalf("invalid EVENTDESK_TZ %q: %v", tz, err)
		}
		web.SetLocation(loc)
	}
	if v := os.Getenv("EVENTDESK_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			log.Fatalf("EVENTDESK_RATE_LIMIT must be a positive integer")
		}
		web.RateLimitPerSecond = n
	}

	addr := envOrDefault("EVENTDESK_ADDR", ":8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           web.NewMux(stores, collector),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown_failed", "error", err)
		}
	}()

	slog.Info("server_starting", "version", version, "addr", addr, "env", env, "schema", storage.LatestSchemaVersion())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server failed: %v", err)
	}
	slog.Info("server_stopped")
}

// configureLogging installs a JSON handler in production and a text handler otherwise.
// EVENTDESK_LOG_LEVEL=debug also logs every request.
func configureLogging(env string) {
	level := slog.LevelInfo
	if os.Getenv("EVENTDESK_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if env == "production" {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
