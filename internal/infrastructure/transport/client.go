package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/tracing"
)

// BreakerName labels the platform API breaker in logs and metrics
const BreakerName = "platform-api"

// RequestIDHeader carries a per-request correlation id
const RequestIDHeader = "X-Request-ID"

// Doer is the narrow contract every domain component depends on
type Doer interface {
	// Do sends body (when non-nil) as JSON and decodes a 2xx body into out
	// (when non-nil). Failures are always *Error.
	Do(ctx context.Context, method, path string, body, out any) error
}

// Client wraps resty with rate limiting and a circuit breaker
type Client struct {
	resty   *resty.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
	logger  *logging.Logger
	metrics *monitoring.Metrics
	mu      sync.RWMutex
}

var _ Doer = (*Client)(nil)

// Option customizes a Client
type Option func(*Client)

// WithLogger attaches a logger
func WithLogger(logger *logging.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger.Named("transport")
		}
	}
}

// WithMetrics attaches metrics
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// New creates a platform API client from configuration
func New(cfg *config.Config, opts ...Option) *Client {
	c := &Client{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(c)
	}

	// Pooled transport from retryablehttp; retries stay with resty so they can
	// be limited to idempotent methods.
	pooled := retryablehttp.NewClient()
	pooled.Logger = nil

	c.resty = resty.New().
		SetBaseURL(cfg.API.BaseURL).
		SetTimeout(cfg.API.Timeout.Duration).
		SetRetryCount(cfg.Retry.Count).
		SetRetryWaitTime(cfg.Retry.WaitMin.Duration).
		SetRetryMaxWaitTime(cfg.Retry.WaitMax.Duration).
		AddRetryCondition(retryIdempotent).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", cfg.API.UserAgent)
	c.resty.SetTransport(pooled.HTTPClient.Transport)
	c.resty.SetLogger(restyLogger{c.logger.Sugar()})

	if cfg.API.Token != "" {
		c.resty.SetAuthToken(cfg.API.Token)
	}

	c.limiter = newLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	if cfg.Breaker.Enabled {
		threshold := cfg.Breaker.ConsecutiveFailures
		c.breaker = resilience.New(BreakerName, resilience.Settings{
			MaxRequests: 1,
			Timeout:     cfg.Breaker.OpenTimeout.Duration,
			ReadyToTrip: func(counts resilience.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			IsSuccessful: func(err error) bool {
				var terr *Error
				if errors.As(err, &terr) {
					return !terr.Temporary()
				}
				return err == nil
			},
			OnStateChange: func(name string, from, to resilience.State) {
				c.logger.Warn("circuit breaker state changed",
					zap.String("breaker", name),
					zap.Stringer("from", from),
					zap.Stringer("to", to),
				)
				c.metrics.SetBreakerState(name, int(to))
			},
		})
	}

	return c
}

// BaseURL returns the platform API base URL
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resty.BaseURL
}

// SetRateLimit replaces the token bucket; rps <= 0 means unlimited
func (c *Client) SetRateLimit(rps float64, burst int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.limiter = newLimiter(rps, burst)
}

// Do implements Doer
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	c.mu.RLock()
	limiter := c.limiter
	c.mu.RUnlock()

	if err := limiter.Wait(ctx); err != nil {
		return &Error{Class: ClassTransport, Method: method, Path: path, Err: fmt.Errorf("rate limit wait: %w", err)}
	}

	requestID := uuid.NewString()
	start := time.Now()

	resp, err := resilience.Call(c.breaker, func() (*resty.Response, error) {
		return c.execute(ctx, method, path, requestID, body)
	})

	status := 0
	if resp != nil {
		status = resp.StatusCode()
	}
	c.metrics.ObserveRequest(method, status, time.Since(start))

	if err != nil {
		var terr *Error
		if !errors.As(err, &terr) {
			// Breaker rejections never reach execute.
			terr = &Error{Class: ClassTransport, Method: method, Path: path, Err: err}
		}
		c.logger.Debug("platform request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Int("status", status),
			zap.Error(err),
		)
		return terr
	}

	c.logger.Debug("platform request",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status", status),
		zap.Duration("duration", time.Since(start)),
	)

	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(resp.Body(), out); err != nil {
		return &Error{Class: ClassTransport, Method: method, Path: path, StatusCode: status, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) execute(ctx context.Context, method, path, requestID string, body any) (*resty.Response, error) {
	c.mu.RLock()
	req := c.resty.R().
		SetContext(ctx).
		SetHeader(RequestIDHeader, requestID)
	c.mu.RUnlock()
	tracing.Inject(ctx, func(key, value string) { req.SetHeader(key, value) })

	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return resp, &Error{Class: ClassTransport, Method: method, Path: path, Err: err}
	}
	if code := resp.StatusCode(); code < http.StatusOK || code >= http.StatusMultipleChoices {
		return resp, statusError(method, path, code, resp.Body())
	}
	return resp, nil
}

func newLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// retryIdempotent retries GET/DELETE on network errors and gateway failures.
// Non-idempotent calls (create, stop, resume, save, deploy) are never replayed.
func retryIdempotent(resp *resty.Response, err error) bool {
	if resp == nil || resp.Request == nil {
		return false
	}
	switch resp.Request.Method {
	case http.MethodGet, http.MethodDelete, http.MethodHead:
	default:
		return false
	}
	if err != nil {
		return true
	}
	switch resp.StatusCode() {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// restyLogger demotes resty's own messages to debug; failures are reported
// through returned errors.
type restyLogger struct {
	sugar *zap.SugaredLogger
}

func (l restyLogger) Errorf(format string, v ...any) { l.sugar.Debugf(format, v...) }
func (l restyLogger) Warnf(format string, v ...any)  { l.sugar.Debugf(format, v...) }
func (l restyLogger) Debugf(format string, v ...any) { l.sugar.Debugf(format, v...) }
