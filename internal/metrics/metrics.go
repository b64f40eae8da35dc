package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	Registry *prometheus.Registry

	RequestDuration  *prometheus.HistogramVec
	RequestTotal     *prometheus.CounterVec
	RequestsInFlight prometheus.Gauge

	LoginAttempts  *prometheus.CounterVec
	BulkImported   *prometheus.CounterVec
	PasswordResets *prometheus.CounterVec
}

// New creates the collectors and registers them, plus the Go and process collectors, on a fresh registry.
func New(namespace string) *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		RequestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests.",
			},
			[]string{"method", "route", "status"},
		),
		RequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served.",
		}),
		LoginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "auth",
				Name:      "login_attempts_total",
				Help:      "Login attempts by outcome.",
			},
			[]string{"outcome"},
		),
		BulkImported: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "catalog",
				Name:      "bulk_imported_total",
				Help:      "Entities created by bulk import.",
			},
			[]string{"entity"},
		),
		PasswordResets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "auth",
				Name:      "password_resets_total",
				Help:      "Password reset flow events.",
			},
			[]string{"event"},
		),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestDuration,
		m.RequestTotal,
		m.RequestsInFlight,
		m.LoginAttempts,
		m.BulkImported,
		m.PasswordResets,
	)
	return m
}

// ObserveLogin counts a login attempt. Safe on a nil receiver.
func (m *Metrics) ObserveLogin(outcome string) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}

// ObserveBulkImport counts entities created by one bulk import. Safe on a nil receiver.
func (m *Metrics) ObserveBulkImport(categories, products int) {
	if m == nil {
		return
	}
	m.BulkImported.WithLabelValues("category").Add(float64(categories))
	m.BulkImported.WithLabelValues("product").Add(float64(products))
}

// ObservePasswordReset counts a step of the reset flow. Safe on a nil receiver.
func (m *Metrics) ObservePasswordReset(event string) {
	if m == nil {
		return
	}
	m.PasswordResets.WithLabelValues(event).Inc()
}
