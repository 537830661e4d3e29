package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)
	trackerActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_actions_total",
			Help: "Total number of tracker action requests by action name",
		},
		[]string{"action"},
	)
)

// InitPrometheus registers the metrics. Call this from main.go
func InitPrometheus() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(trackerActionsTotal)
}

// CountAction records one dispatched tracker action. Anything outside the
// three known actions collapses into one bucket so client-supplied strings
// cannot mint unbounded label values on a public endpoint.
func CountAction(action string) {
	switch action {
	case "addRecord", "getRecords", "deleteRecord":
	default:
		action = "unknown"
	}
	trackerActionsTotal.WithLabelValues(action).Inc()
}

// MonitorMiddleware tracks request counts and latency, and tags every request
// with a short id so log lines from one request can be correlated.
func MonitorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := uuid.NewString()[:8]

		ww := &responseWriter{w, http.StatusOK}
		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		httpRequestsTotal.WithLabelValues(r.URL.Path, r.Method, http.StatusText(ww.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.URL.Path, r.Method).Observe(duration.Seconds())

		log.Printf("[%s] %s %s -> %d (%s)", reqID, r.Method, r.URL.Path, ww.statusCode, duration.Round(time.Millisecond))
	})
}

// BasicAuthMiddleware protects /metrics
func BasicAuthMiddleware(username, password string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != username || pass != password {
			w.Header().Set("WWW-Authenticate", `Basic realm="Metrics"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
