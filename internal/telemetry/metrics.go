package telemetry

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	httpDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// Validations counts validation verdicts by result: match, no_match or error.
	Validations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "validations_total",
			Help: "Total validation requests by result",
		},
		[]string{"result"},
	)
	// ValidationDuration observes end-to-end rule evaluation latency.
	ValidationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "validation_duration_seconds",
		Help:    "Rule evaluation duration in seconds",
		Buckets: prometheus.DefBuckets,
	})
	// AuditDrops counts audit entries dropped due to a full queue.
	AuditDrops = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "audit_dropped_entries_total",
		Help: "Audit entries dropped because the queue was full",
	})
)

func Init() {
	prometheus.MustRegister(httpReqs, httpDur, Validations, ValidationDuration, AuditDrops)
}

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// get route pattern if available
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}

		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(ww, r)

		httpReqs.WithLabelValues(route, r.Method, http.StatusText(ww.status)).Inc()
		httpDur.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
