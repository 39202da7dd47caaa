package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"searchagent/agent"
	"searchagent/pkg/metrics"
)

const Version = "1.0.0"

type SearchService interface {
	Search(ctx context.Context, req agent.SearchRequest) (*agent.AnalysisBundle, error)
}

type ServerConfig struct {
	Port              int
	DefaultMaxResults int
	RequestTimeout    time.Duration
}

// Server represents the API server
type Server struct {
	router            *gin.Engine
	httpServer        *http.Server
	service           SearchService
	metrics           *metrics.Metrics
	logger            *zap.Logger
	defaultMaxResults int
	requestTimeout    time.Duration
}

func NewServer(service SearchService, cfg ServerConfig, logger *zap.Logger, m *metrics.Metrics) *Server {
	if cfg.DefaultMaxResults < 1 {
		cfg.DefaultMaxResults = 10
	}

	router := gin.New()
	router.Use(RequestID())
	router.Use(Recovery(logger))
	router.Use(RequestLogger(logger))
	router.Use(CORS())
	router.Use(MetricsRecorder(m))

	s := &Server{
		router:            router,
		service:           service,
		metrics:           m,
		logger:            logger,
		defaultMaxResults: cfg.DefaultMaxResults,
		requestTimeout:    cfg.RequestTimeout,
	}
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleWelcome)
	s.router.POST("/search", s.handleSearch)
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks until the server stops. A graceful Shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info("starting API server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.httpServer.Shutdown(ctx)
}
