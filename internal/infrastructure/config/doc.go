// Package config provides 12-factor configuration for the workbench client.
//
// Configuration is loaded from environment variables with sensible defaults,
// or from a TOML file layered over the same defaults.
//
// Configuration Sections:
//   - API: platform base URL, bearer token, timeout, user agent
//   - Retry: retry policy for idempotent requests
//   - Breaker: circuit breaker guarding the platform API
//   - RateLimit: client-side token bucket
//   - Logging: log level and output format
//   - Engine: session engine switches (version fencing)
//   - FakeServer: listen address of the local fake platform
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	client := transport.New(cfg, logger)
//
// Environment Variables:
//   - WORKBENCH_API_URL, WORKBENCH_API_TOKEN, WORKBENCH_API_TIMEOUT
//   - WORKBENCH_RETRY_COUNT, WORKBENCH_RETRY_WAIT_MIN, WORKBENCH_RETRY_WAIT_MAX
//   - WORKBENCH_BREAKER_ENABLED, WORKBENCH_BREAKER_FAILURES, WORKBENCH_BREAKER_TIMEOUT
//   - WORKBENCH_RATE_LIMIT_RPS, WORKBENCH_RATE_LIMIT_BURST
//   - WORKBENCH_LOG_LEVEL, WORKBENCH_LOG_DEV
//   - WORKBENCH_FENCE_STALE_VERSIONS, WORKBENCH_FAKE_ADDR
package config
