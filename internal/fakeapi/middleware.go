package fakeapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/tracing"
)

// CORS lets a browser frontend on another origin call the fake server
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Accept",
			"Authorization",
			"Origin",
			"X-Request-ID",
			tracing.TraceHeader,
			tracing.SpanHeader,
		},
		ExposeHeaders: []string{"X-Request-ID", tracing.TraceHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

// RateLimit throttles each client IP with a token bucket
func RateLimit(rps int) gin.HandlerFunc {
	var (
		mu      sync.Mutex
		clients = make(map[string]*rate.Limiter)
	)

	return func(c *gin.Context) {
		ip := c.ClientIP()

		mu.Lock()
		limiter, ok := clients[ip]
		if !ok {
			limiter = rate.NewLimiter(rate.Limit(rps), rps)
			clients[ip] = limiter
		}
		mu.Unlock()

		if !limiter.Allow() {
			abort(c, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}
		c.Next()
	}
}

// Latency delays every request by d
func Latency(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		select {
		case <-time.After(d):
		case <-c.Request.Context().Done():
		}
		c.Next()
	}
}

// Inject answers requests that match a failure registered on the platform
func Inject(p *Platform) gin.HandlerFunc {
	return func(c *gin.Context) {
		if f, ok := p.injected(c.Request.Method, c.Request.URL.Path); ok {
			abort(c, f.status, f.detail)
			return
		}
		c.Next()
	}
}

// RequestLogger logs one line per request
func RequestLogger(log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.String("request_id", c.GetHeader("X-Request-ID")),
			zap.Duration("duration", time.Since(start)),
		}
		if span := tracing.SpanFrom(c); span != nil {
			fields = append(fields, span.Fields()...)
		}
		log.Info("request", fields...)
	}
}
