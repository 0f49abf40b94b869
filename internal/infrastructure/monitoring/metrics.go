package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the client's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	// Lifecycle metrics
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	CachedSessions    *prometheus.GaugeVec
	DroppedOutcomes   *prometheus.CounterVec

	// Transport metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	BreakerState    *prometheus.GaugeVec

	// Registry metrics
	RegistryResources *prometheus.GaugeVec
}

// NewMetrics registers the collectors on reg. Pass prometheus.NewRegistry()
// in tests so repeated construction does not collide.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workbench_session_operations_total",
				Help: "Total number of session lifecycle operations",
			},
			[]string{"kind", "operation", "outcome"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "workbench_session_operation_duration_seconds",
				Help:    "Session lifecycle operation duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"kind", "operation"},
		),
		CachedSessions: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "workbench_cached_sessions",
				Help: "Number of sessions held in the local store",
			},
			[]string{"kind"},
		),
		DroppedOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workbench_dropped_outcomes_total",
				Help: "Outcomes that targeted a session unknown to the local store",
			},
			[]string{"kind", "operation"},
		),
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workbench_http_requests_total",
				Help: "Total number of platform API requests",
			},
			[]string{"method", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "workbench_http_request_duration_seconds",
				Help:    "Platform API request duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method"},
		),
		BreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "workbench_circuit_breaker_state",
				Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"name"},
		),
		RegistryResources: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "workbench_registry_resources",
				Help: "Number of resources held in the local registry cache",
			},
			[]string{"kind"},
		),
	}
}

// ObserveOperation records one finished lifecycle operation
func (m *Metrics) ObserveOperation(kind, operation string, failed bool, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if failed {
		outcome = "failure"
	}
	m.OperationsTotal.WithLabelValues(kind, operation, outcome).Inc()
	m.OperationDuration.WithLabelValues(kind, operation).Observe(duration.Seconds())
}

// SetCachedSessions records the size of a kind's session collection
func (m *Metrics) SetCachedSessions(kind string, count int) {
	if m == nil {
		return
	}
	m.CachedSessions.WithLabelValues(kind).Set(float64(count))
}

// RecordDroppedOutcome counts a stop/resume/delete that matched nothing
func (m *Metrics) RecordDroppedOutcome(kind, operation string) {
	if m == nil {
		return
	}
	m.DroppedOutcomes.WithLabelValues(kind, operation).Inc()
}

// ObserveRequest records one HTTP round trip; status 0 means no response
func (m *Metrics) ObserveRequest(method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.RequestsTotal.WithLabelValues(method, label).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// SetBreakerState records a circuit breaker transition
func (m *Metrics) SetBreakerState(name string, state int) {
	if m == nil {
		return
	}
	m.BreakerState.WithLabelValues(name).Set(float64(state))
}

// SetRegistryResources records the size of a kind's registry cache
func (m *Metrics) SetRegistryResources(kind string, count int) {
	if m == nil {
		return
	}
	m.RegistryResources.WithLabelValues(kind).Set(float64(count))
}
