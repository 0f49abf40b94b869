// Package transport is the platform API client shared by every domain
// package.
//
// Built on go-resty/resty with:
//   - pooled keep-alive transport from hashicorp/go-retryablehttp
//   - retries limited to idempotent methods (GET, DELETE)
//   - a token-bucket rate limiter (golang.org/x/time/rate)
//   - a circuit breaker that only counts transport failures and 5xx
//   - bytedance/sonic as the JSON codec
//   - an X-Request-ID header per call
//
// Every failure is an *Error. Status errors carry the server's message,
// read from the detail, message or error field of the JSON body, falling back
// to the HTTP status text.
//
// Example Usage:
//
//	client := transport.New(cfg, transport.WithLogger(logger))
//	var sessions []types.Session
//	err := client.Do(ctx, http.MethodGet, "/api/apps/a1/sessions", nil, &sessions)
//	if msg := transport.ServerMessage(err); msg != "" { ... }
package transport
