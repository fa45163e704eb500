package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"order-service/internal/fieldcrypt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry owns every collector the service exposes on /metrics.
type Registry struct {
	registry *prometheus.Registry

	ordersCreated        prometheus.Counter
	statusTransitions    *prometheus.CounterVec
	concurrencyConflicts prometheus.Counter
	decryptionFailures   *prometheus.CounterVec
	eventsFailed         prometheus.Counter
	httpRequests         *prometheus.CounterVec
	httpDuration         *prometheus.HistogramVec
}

// New creates a Registry with Go runtime and process collectors attached.
func New() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		registry: reg,
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Total number of orders created",
		}),
		statusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "order_status_transitions_total",
			Help: "Total number of persisted status transitions by target status",
		}, []string{"status"}),
		concurrencyConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "order_concurrency_conflicts_total",
			Help: "Total number of order saves rejected because of a stale version",
		}),
		decryptionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "field_decryption_failures_total",
			Help: "Total number of PII fields that could not be decrypted, by reason",
		}, []string{"reason"}),
		eventsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "order_events_failed_total",
			Help: "Total number of order events that could not be published",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		r.ordersCreated,
		r.statusTransitions,
		r.concurrencyConflicts,
		r.decryptionFailures,
		r.eventsFailed,
		r.httpRequests,
		r.httpDuration,
	)

	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (r *Registry) OrderCreated() {
	r.ordersCreated.Inc()
}

func (r *Registry) StatusTransition(status string) {
	r.statusTransitions.WithLabelValues(status).Inc()
}

func (r *Registry) ConcurrencyConflict() {
	r.concurrencyConflicts.Inc()
}

func (r *Registry) EventFailed() {
	r.eventsFailed.Inc()
}

// DecryptionFailure matches fieldcrypt.FailureHook.
func (r *Registry) DecryptionFailure(reason error) {
	label := "unknown"
	switch {
	case errors.Is(reason, fieldcrypt.ErrMalformedToken):
		label = "malformed"
	case errors.Is(reason, fieldcrypt.ErrDecryptFailed):
		label = "auth_failed"
	}
	r.decryptionFailures.WithLabelValues(label).Inc()
}

// HTTPRequest records one served request. route is the matched pattern, not
// the raw path, to keep label cardinality bounded.
func (r *Registry) HTTPRequest(method, route string, status int, duration time.Duration) {
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
