/*
Package tracing correlates client operations with the requests they send.

Every lifecycle and registry operation starts a span. The span's trace id
travels in the X-Trace-ID header of each request the operation makes, and
the fake platform echoes it back and logs it, so one grep joins client and
server log lines.

# Usage

	span, ctx := tracing.StartSpan(ctx, "apps.stop_session")
	log := log.With(span.Fields()...)
	err := doer.Do(ctx, ...) // carries X-Trace-ID and X-Span-ID
	span.Finish(err)

	// Server side
	router.Use(tracing.Middleware())
*/
package tracing
