// Package monitoring provides Prometheus metrics for the workbench client.
//
// Metric families:
//   - workbench_session_operations_total / _duration_seconds: lifecycle calls
//   - workbench_cached_sessions: local store size per kind
//   - workbench_dropped_outcomes_total: outcomes for sessions the store never saw
//   - workbench_http_requests_total / _duration_seconds: platform round trips
//   - workbench_circuit_breaker_state: breaker transitions
//   - workbench_registry_resources: registry cache size per kind
//
// All recording methods are nil-safe so components can run without metrics.
//
// Example Usage:
//
//	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)
//	metrics.ObserveOperation("apps", "stop_session", false, time.Since(start))
package monitoring
