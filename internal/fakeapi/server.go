package fakeapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/workbench/internal/domain/kind"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/infrastructure/tracing"
)

// Server is the fake platform HTTP server
type Server struct {
	router   *gin.Engine
	platform *Platform
	logger   *logging.Logger
	config   config.FakeServerConfig
}

// NewServer wires the router for platform
func NewServer(platform *Platform, cfg config.FakeServerConfig, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.Named("fakeapi")

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(logger))
	router.Use(tracing.Middleware())
	router.Use(CORS(cfg.AllowOrigins))
	if cfg.RateLimitRPS > 0 {
		router.Use(RateLimit(cfg.RateLimitRPS))
	}
	if cfg.Latency.Duration > 0 {
		router.Use(Latency(cfg.Latency.Duration))
	}
	router.Use(Inject(platform))

	router.NoRoute(func(c *gin.Context) {
		abort(c, http.StatusNotFound, "Not Found")
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	apps := NewHandlers(platform, kind.Apps)
	a := router.Group("/api/apps")
	registerShared(a, apps)
	a.DELETE("/:id/sessions/:sid", apps.DeleteSession)
	a.POST("/:id/deploy", apps.Deploy)
	a.GET("/:id/sessions/:sid/files", apps.ListFiles)
	a.GET("/:id/sessions/:sid/files/content", apps.ReadFile)
	a.PUT("/:id/sessions/:sid/files/content", apps.WriteFile)

	notebooks := NewHandlers(platform, kind.Notebooks)
	n := router.Group("/api/notebooks")
	registerShared(n, notebooks)
	n.POST("/:id/sessions/:sid/save", notebooks.SaveWorkspace)

	return &Server{router: router, platform: platform, logger: logger, config: cfg}
}

func registerShared(g *gin.RouterGroup, h *Handlers) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.GET("/:id/sessions", h.ListSessions)
	g.POST("/:id/sessions", h.CreateSession)
	g.POST("/:id/sessions/:sid/stop", h.StopSession)
	g.POST("/:id/sessions/:sid/resume", h.ResumeSession)
}

// Handler returns the router, e.g. for httptest.NewServer
func (s *Server) Handler() http.Handler {
	return s.router
}

// Platform returns the backing state
func (s *Server) Platform() *Platform {
	return s.platform
}

// Run listens on the configured address until ctx is done
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("fake platform API listening", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down fake platform API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
