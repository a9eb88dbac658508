package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Counter for handled requests
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cv_wizard_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// Histogram for request duration
	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cv_wizard_http_request_duration_seconds",
			Help:    "Time spent handling HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// Counter for wizard errors by kind
	wizardErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cv_wizard_errors_total",
			Help: "Total number of wizard errors",
		},
		[]string{"kind"},
	)

	// Gauge for live sessions
	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cv_wizard_active_sessions_current",
			Help: "Current number of live wizard sessions",
		},
	)
)

// statusRecorder remembers the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// metricsMiddleware records request counts and durations per route pattern
func (s *Server) metricsMiddleware(mux *http.ServeMux, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, route := mux.Handler(r)
		if route == "" {
			route = "unmatched"
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		activeSessions.Set(float64(s.store.Len()))
	})
}
