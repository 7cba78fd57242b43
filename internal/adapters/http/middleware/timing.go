package middleware

import (
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"eventdesk/internal/adapters/http/perf"
)

// DefaultSlowRequestMs is the default threshold for slow request warnings.
const DefaultSlowRequestMs = 200

// SlowRequestThreshold reads EVENTDESK_SLOW_REQUEST_MS, falling back to DefaultSlowRequestMs.
func SlowRequestThreshold() time.Duration {
	ms := DefaultSlowRequestMs
	if v := os.Getenv("EVENTDESK_SLOW_REQUEST_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ms = n
		}
	}
	return time.Duration(ms) * time.Millisecond
}

var requestIDCounter atomic.Uint64

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

// Timing returns middleware that logs request duration and records it in collector.
// Requests at or above threshold log at WARN, the rest at DEBUG.
// Samples are labelled with the matched route pattern so path ids do not
// split a route into many labels.
func Timing(collector *perf.Collector, threshold time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := requestIDCounter.Add(1)
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			elapsed := time.Since(start)
			label := r.Pattern
			if label == "" {
				label = r.Method + " " + r.URL.Path
			}
			level := slog.LevelDebug
			msg := "request"
			if elapsed >= threshold {
				level, msg = slog.LevelWarn, "slow_request"
			}
			slog.Log(r.Context(), level, msg,
				"request_id", reqID,
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration_ms", elapsed.Milliseconds(),
			)
			if collector != nil {
				collector.Record(perf.Sample{
					Kind:       perf.KindRequest,
					Label:      label,
					Status:     sw.status,
					DurationMs: float64(elapsed.Microseconds()) / 1000,
					At:         start,
				})
			}
		})
	}
}
