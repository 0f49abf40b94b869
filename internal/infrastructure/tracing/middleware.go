package tracing

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const ginSpanKey = "tracing.span"

// Middleware continues the caller's trace, or starts one, and echoes the
// trace id in the response
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID, parentID := Extract(c.GetHeader)
		ctx := ContextWith(c.Request.Context(), traceID, parentID)

		span, ctx := StartSpan(ctx, c.Request.Method+" "+c.FullPath())
		c.Request = c.Request.WithContext(ctx)
		c.Set(ginSpanKey, span)
		c.Header(TraceHeader, string(span.TraceID))
		c.Header(SpanHeader, string(span.SpanID))

		c.Next()

		span.SetTag("http.status", strconv.Itoa(c.Writer.Status()))
		var err error
		if last := c.Errors.Last(); last != nil {
			err = last
		}
		span.Finish(err)
	}
}

// SpanFrom returns the span Middleware attached to c, or nil
func SpanFrom(c *gin.Context) *Span {
	if v, ok := c.Get(ginSpanKey); ok {
		span, _ := v.(*Span)
		return span
	}
	return nil
}
