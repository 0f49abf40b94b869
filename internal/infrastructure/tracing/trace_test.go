package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartSpanCreatesTrace(t *testing.T) {
	span, ctx := StartSpan(context.Background(), "apps.create_session")

	require.NotEmpty(t, span.TraceID)
	require.NotEmpty(t, span.SpanID)
	assert.Empty(t, span.ParentID)
	assert.Equal(t, span.TraceID, GetTraceID(ctx))
	assert.Equal(t, span.SpanID, GetSpanID(ctx))
}

func TestChildSpanKeepsTrace(t *testing.T) {
	parent, ctx := StartSpan(context.Background(), "parent")
	child, childCtx := StartSpan(ctx, "child")

	assert.Equal(t, parent.TraceID, child.TraceID)
	assert.Equal(t, parent.SpanID, child.ParentID)
	assert.NotEqual(t, parent.SpanID, child.SpanID)
	assert.Equal(t, child.SpanID, GetSpanID(childCtx))

	fields := child.Fields()
	assert.Len(t, fields, 3)
}

func TestInjectExtractRoundTrip(t *testing.T) {
	span, ctx := StartSpan(context.Background(), "op")

	header := http.Header{}
	Inject(ctx, header.Set)
	assert.Equal(t, string(span.TraceID), header.Get(TraceHeader))

	traceID, spanID := Extract(header.Get)
	assert.Equal(t, span.TraceID, traceID)
	assert.Equal(t, span.SpanID, spanID)
}

func TestInjectWithoutTraceSetsNothing(t *testing.T) {
	header := http.Header{}
	Inject(context.Background(), header.Set)
	assert.Empty(t, header)
}

func TestFinishRecordsOutcome(t *testing.T) {
	span, _ := StartSpan(context.Background(), "op")
	span.SetTag("kind", "apps")

	d := span.Finish(assert.AnError)
	assert.Equal(t, d, span.Duration)
	assert.ErrorIs(t, span.Err, assert.AnError)
	assert.Equal(t, "apps", span.Tags["kind"])
}

func TestMiddlewareContinuesTrace(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	var seen *Span
	var ctxTrace TraceID
	router.Use(func(c *gin.Context) {
		c.Next()
		seen = SpanFrom(c)
	})
	router.Use(Middleware())
	router.GET("/ping", func(c *gin.Context) {
		ctxTrace = GetTraceID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(TraceHeader, "trace-from-client")
	req.Header.Set(SpanHeader, "span-from-client")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "trace-from-client", rec.Header().Get(TraceHeader))
	assert.Equal(t, TraceID("trace-from-client"), ctxTrace)

	require.NotNil(t, seen)
	assert.Equal(t, SpanID("span-from-client"), seen.ParentID)
	assert.Equal(t, "204", seen.Tags["http.status"])
	assert.NoError(t, seen.Err)
}

func TestMiddlewareStartsTrace(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, rec.Header().Get(TraceHeader))
}
