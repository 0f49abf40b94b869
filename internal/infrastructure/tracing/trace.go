package tracing

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/workbench/internal/shared/id"
)

// Propagation headers
const (
	TraceHeader = "X-Trace-ID"
	SpanHeader  = "X-Span-ID"
)

// TraceID represents a unique trace identifier
type TraceID string

// SpanID represents a unique span identifier
type SpanID string

// Span represents a single operation in a trace
type Span struct {
	TraceID   TraceID
	SpanID    SpanID
	ParentID  SpanID
	Name      string
	StartTime time.Time
	Duration  time.Duration
	Tags      map[string]string
	Err       error
}

// StartSpan creates a span under the trace carried by ctx, or a new trace
func StartSpan(ctx context.Context, name string) (*Span, context.Context) {
	traceID := GetTraceID(ctx)
	if traceID == "" {
		traceID = TraceID(id.Default().Generate().String())
	}

	span := &Span{
		TraceID:   traceID,
		SpanID:    SpanID(id.Default().Generate().String()),
		ParentID:  GetSpanID(ctx),
		Name:      name,
		StartTime: time.Now(),
		Tags:      make(map[string]string),
	}
	return span, ContextWith(ctx, span.TraceID, span.SpanID)
}

// SetTag adds a tag to the span
func (s *Span) SetTag(key, value string) {
	s.Tags[key] = value
}

// Finish records the duration and outcome and returns the duration
func (s *Span) Finish(err error) time.Duration {
	s.Duration = time.Since(s.StartTime)
	s.Err = err
	return s.Duration
}

// Fields returns the span ids as log fields
func (s *Span) Fields() []zap.Field {
	fields := []zap.Field{
		zap.String("trace_id", string(s.TraceID)),
		zap.String("span_id", string(s.SpanID)),
	}
	if s.ParentID != "" {
		fields = append(fields, zap.String("parent_id", string(s.ParentID)))
	}
	return fields
}

// Inject passes the trace context of ctx to set, e.g. a request header setter
func Inject(ctx context.Context, set func(key, value string)) {
	if traceID := GetTraceID(ctx); traceID != "" {
		set(TraceHeader, string(traceID))
	}
	if spanID := GetSpanID(ctx); spanID != "" {
		set(SpanHeader, string(spanID))
	}
}

// Extract reads the trace context through get, e.g. a request header getter
func Extract(get func(key string) string) (TraceID, SpanID) {
	return TraceID(get(TraceHeader)), SpanID(get(SpanHeader))
}

// Context keys for trace propagation
type contextKey string

const (
	traceIDKey contextKey = "trace_id"
	spanIDKey  contextKey = "span_id"
)

// ContextWith returns ctx carrying the given ids; empty ids are skipped
func ContextWith(ctx context.Context, traceID TraceID, spanID SpanID) context.Context {
	if traceID != "" {
		ctx = context.WithValue(ctx, traceIDKey, traceID)
	}
	if spanID != "" {
		ctx = context.WithValue(ctx, spanIDKey, spanID)
	}
	return ctx
}

// GetTraceID retrieves the trace ID from context
func GetTraceID(ctx context.Context) TraceID {
	if traceID, ok := ctx.Value(traceIDKey).(TraceID); ok {
		return traceID
	}
	return ""
}

// GetSpanID retrieves the span ID from context
func GetSpanID(ctx context.Context) SpanID {
	if spanID, ok := ctx.Value(spanIDKey).(SpanID); ok {
		return spanID
	}
	return ""
}
