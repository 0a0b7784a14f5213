// Package middleware holds HTTP middleware shared by the API server.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"git.home.luguber.info/inful/pmtrack/internal/logfields"
	"git.home.luguber.info/inful/pmtrack/internal/metrics"
)

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs one structured line per request and feeds the request
// histogram. The metric path label is the chi route pattern, not the raw
// URL, so ids do not explode cardinality.
func RequestLogger(log *slog.Logger, rec metrics.Recorder) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			elapsed := time.Since(start)
			pattern := chi.RouteContext(r.Context()).RoutePattern()
			if pattern == "" {
				pattern = r.URL.Path
			}
			rec.ObserveRequestDuration(r.Method, pattern, sw.status, elapsed)
			log.Info("request handled",
				logfields.Method(r.Method),
				logfields.Path(r.URL.Path),
				logfields.StatusCode(sw.status),
				logfields.RemoteAddr(r.RemoteAddr),
				logfields.DurationMS(float64(elapsed.Milliseconds())))
		})
	}
}
