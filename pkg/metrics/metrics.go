package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestSize     *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Business metrics
	Generations        *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
	GatingRejections   *prometheus.CounterVec
	CheckoutSessions   *prometheus.CounterVec
	PlansSelected      *prometheus.CounterVec
	AuthEvents         *prometheus.CounterVec
	LoginAttempts      *prometheus.CounterVec
}

// New creates a new Metrics instance registered on reg.
// A nil reg means the default Prometheus registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	m := &Metrics{
		// HTTP metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 5000, 10000, 50000, 100000, 500000, 1000000},
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 5000, 10000, 50000, 100000, 500000, 1000000},
			},
			[]string{"method", "path"},
		),

		// Business metrics
		Generations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "generations_total",
				Help: "Total number of generation attempts that reached the provider",
			},
			[]string{"status"}, // success, failed
		),
		GenerationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "generation_duration_seconds",
				Help:    "Generation provider latency in seconds",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
			},
			[]string{"status"},
		),
		GatingRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gating_rejections_total",
				Help: "Total number of generation requests rejected before the provider call",
			},
			[]string{"reason"}, // validation, sign_in, upgrade
		),
		CheckoutSessions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "checkout_sessions_total",
				Help: "Total number of checkout session requests",
			},
			[]string{"status"}, // created, already_subscribed, failed
		),
		PlansSelected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plans_selected_total",
				Help: "Total number of plan selections",
			},
			[]string{"tier"}, // free, pro, enterprise
		),
		AuthEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_events_total",
				Help: "Total number of auth-state changes",
			},
			[]string{"event"},
		),
		LoginAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "login_attempts_total",
				Help: "Total number of login attempts",
			},
			[]string{"status"}, // success, failed
		),
	}

	return m
}

// Middleware creates an Echo middleware for Prometheus metrics
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			path := c.Path() // route pattern, not the raw path

			if req.ContentLength > 0 {
				m.HTTPRequestSize.WithLabelValues(req.Method, path).Observe(float64(req.ContentLength))
			}

			err := next(c)

			status := c.Response().Status
			duration := time.Since(start).Seconds()

			m.HTTPRequestsTotal.WithLabelValues(req.Method, path, strconv.Itoa(status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(req.Method, path, strconv.Itoa(status)).Observe(duration)
			m.HTTPResponseSize.WithLabelValues(req.Method, path).Observe(float64(c.Response().Size))

			return err
		}
	}
}

// The Record helpers accept a nil receiver so services can run without metrics.

// RecordGeneration records one provider call and its latency
func (m *Metrics) RecordGeneration(success bool, duration time.Duration) {
	if m == nil {
		return
	}
	status := "failed"
	if success {
		status = "success"
	}
	m.Generations.WithLabelValues(status).Inc()
	m.GenerationDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordGatingRejection increments the rejection counter for reason
func (m *Metrics) RecordGatingRejection(reason string) {
	if m == nil {
		return
	}
	m.GatingRejections.WithLabelValues(reason).Inc()
}

// RecordCheckout increments the checkout counter for status
func (m *Metrics) RecordCheckout(status string) {
	if m == nil {
		return
	}
	m.CheckoutSessions.WithLabelValues(status).Inc()
}

// RecordPlanSelected increments the plan selection counter
func (m *Metrics) RecordPlanSelected(tier string) {
	if m == nil {
		return
	}
	m.PlansSelected.WithLabelValues(tier).Inc()
}

// RecordAuthEvent increments the auth-state change counter
func (m *Metrics) RecordAuthEvent(event string) {
	if m == nil {
		return
	}
	m.AuthEvents.WithLabelValues(event).Inc()
}

// RecordLoginAttempt increments login attempts counter
func (m *Metrics) RecordLoginAttempt(success bool) {
	if m == nil {
		return
	}
	status := "failed"
	if success {
		status = "success"
	}
	m.LoginAttempts.WithLabelValues(status).Inc()
}
