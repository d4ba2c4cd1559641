// Package metrics provides Prometheus metrics for the pipeaudit service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for audit runs and the optional
// HTTP serve mode.
type Manager struct {
	namespace    string
	subsystem    string
	buckets      []float64
	enabled      bool
	customLabels map[string]string
	registry     prometheus.Registerer

	// Ingest metrics
	rowsIngested   *prometheus.CounterVec // by kind: deals, activities
	rowsQuarantine *prometheus.CounterVec // by reason code

	// Audit metrics
	auditRuns      prometheus.Counter
	moduleDuration *prometheus.HistogramVec // by module name
	moduleFailures *prometheus.CounterVec   // by module name

	// HTTP metrics (serve mode)
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Initialize sets up the global metrics manager.
func Initialize(opts ...Option) {
	globalManager = NewManager(opts...)
}

// Get returns the global metrics manager, initializing a default one if
// needed.
func Get() *Manager {
	if globalManager == nil {
		Initialize()
	}
	return globalManager
}

// NewManager creates a metrics manager with the given options.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "pipeaudit",
		buckets:   prometheus.DefBuckets,
		enabled:   true,
		registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	if !m.enabled {
		return m
	}

	factory := promauto.With(m.registry)

	m.rowsIngested = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rows_ingested_total",
		Help:        "Raw rows read from exports, by record kind.",
		ConstLabels: m.customLabels,
	}, []string{"kind"})

	m.rowsQuarantine = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rows_quarantined_total",
		Help:        "Rows rejected during normalization, by reason code.",
		ConstLabels: m.customLabels,
	}, []string{"reason"})

	m.auditRuns = factory.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "audit_runs_total",
		Help:        "Completed audit orchestrator runs.",
		ConstLabels: m.customLabels,
	})

	m.moduleDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "module_duration_seconds",
		Help:        "Wall time of each analyzer module run.",
		Buckets:     m.buckets,
		ConstLabels: m.customLabels,
	}, []string{"module"})

	m.moduleFailures = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "module_failures_total",
		Help:        "Analyzer module runs that ended in a failure marker.",
		ConstLabels: m.customLabels,
	}, []string{"module"})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "HTTP requests by endpoint and status code.",
		ConstLabels: m.customLabels,
	}, []string{"endpoint", "status"})

	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_seconds",
		Help:        "HTTP request latency by endpoint.",
		Buckets:     m.buckets,
		ConstLabels: m.customLabels,
	}, []string{"endpoint"})

	return m
}

// RecordRowsIngested adds to the ingest counter for a record kind.
func (m *Manager) RecordRowsIngested(kind string, n int) {
	if m == nil || !m.enabled {
		return
	}
	m.rowsIngested.WithLabelValues(kind).Add(float64(n))
}

// RecordQuarantine adds to the quarantine counter for a reason code.
func (m *Manager) RecordQuarantine(reason string, n int) {
	if m == nil || !m.enabled {
		return
	}
	m.rowsQuarantine.WithLabelValues(reason).Add(float64(n))
}

// RecordAuditRun counts one completed orchestrator run.
func (m *Manager) RecordAuditRun() {
	if m == nil || !m.enabled {
		return
	}
	m.auditRuns.Inc()
}

// RecordModuleDuration observes one module run's wall time.
func (m *Manager) RecordModuleDuration(module string, d time.Duration) {
	if m == nil || !m.enabled {
		return
	}
	m.moduleDuration.WithLabelValues(module).Observe(d.Seconds())
}

// RecordModuleFailure counts one module failure marker.
func (m *Manager) RecordModuleFailure(module string) {
	if m == nil || !m.enabled {
		return
	}
	m.moduleFailures.WithLabelValues(module).Inc()
}

// RecordHTTPRequest counts one request and observes its latency.
func (m *Manager) RecordHTTPRequest(endpoint, status string, d time.Duration) {
	if m == nil || !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, status).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}
