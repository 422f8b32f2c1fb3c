package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus metrics for the application.
type Metrics struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	ordersPlaced      *prometheus.CounterVec
	statusTransitions *prometheus.CounterVec
	healthScore       prometheus.Gauge
}

// NewMetrics initialises the registry with HTTP and domain collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ordelix_http_requests_total",
		Help: "HTTP requests partitioned by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ordelix_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	placed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ordelix_orders_placed_total",
		Help: "Orders placed, split by whether they were accepted as pre-orders.",
	}, []string{"pre_order"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ordelix_order_status_transitions_total",
		Help: "Order status changes by source and target status.",
	}, []string{"from", "to"})
	score := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ordelix_health_score",
		Help: "Most recently computed business health score.",
	})
	registry.MustRegister(requests, duration, placed, transitions, score)
	return &Metrics{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:     requests,
		requestDuration:   duration,
		ordersPlaced:      placed,
		statusTransitions: transitions,
		healthScore:       score,
	}
}

// Handler returns the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records metrics for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveOrderPlaced counts a placed order.
func (m *Metrics) ObserveOrderPlaced(preOrder bool) {
	if m == nil {
		return
	}
	m.ordersPlaced.WithLabelValues(strconv.FormatBool(preOrder)).Inc()
}

// ObserveStatusChange counts a status transition.
func (m *Metrics) ObserveStatusChange(from, to string) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(from, to).Inc()
}

// SetHealthScore publishes the latest health score.
func (m *Metrics) SetHealthScore(score int) {
	if m == nil {
		return
	}
	m.healthScore.Set(float64(score))
}

// Registerer exposes the registry for custom collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
