package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/synthworks/tabsynth/internal/observability/metrics"
	"github.com/synthworks/tabsynth/pkg/constants"
)

// Server represents the HTTP API server.
type Server struct {
	httpServer *http.Server
	router     *mux.Router
	logger     *logrus.Logger
	config     *Config
	handlers   *Handlers
	metrics    *metrics.PrometheusMetrics
}

// Config contains server configuration.
type Config struct {
	Host            string        `yaml:"host" json:"host"`
	Port            int           `yaml:"port" json:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	EnableCORS      bool          `yaml:"enable_cors" json:"enable_cors"`
	MaxRequestSize  int64         `yaml:"max_request_size" json:"max_request_size"`
}

// NewServer creates a new HTTP server instance. Metrics may be nil; when
// provided, request metrics are recorded and the exposition server is started
// alongside the API server.
func NewServer(config *Config, handlers *Handlers, pm *metrics.PrometheusMetrics, logger *logrus.Logger) (*Server, error) {
	if config == nil {
		config = getDefaultConfig()
	}
	if handlers == nil {
		return nil, fmt.Errorf("handlers cannot be nil")
	}
	if logger == nil {
		logger = logrus.New()
	}

	server := &Server{
		router:   mux.NewRouter(),
		logger:   logger,
		config:   config,
		handlers: handlers,
		metrics:  pm,
	}

	server.setupMiddleware()
	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      server.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return server, nil
}

// Start starts the HTTP server. It blocks until the server stops.
func (s *Server) Start(ctx context.Context) error {
	if s.metrics != nil {
		if err := s.metrics.Start(ctx); err != nil {
			return err
		}
	}

	s.logger.WithFields(logrus.Fields{
		"host": s.config.Host,
		"port": s.config.Port,
	}).Info("Starting HTTP server")

	return s.httpServer.ListenAndServe()
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if s.metrics != nil {
		if err := s.metrics.Stop(shutdownCtx); err != nil {
			s.logger.WithError(err).Error("Error shutting down metrics server")
		}
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.WithError(err).Error("Error shutting down HTTP server")
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

func (s *Server) setupRoutes() {
	// Health and version endpoints
	s.router.HandleFunc("/health", s.handlers.Health).Methods("GET")
	s.router.HandleFunc("/health/ready", s.handlers.Ready).Methods("GET")
	s.router.HandleFunc("/health/live", s.handlers.Health).Methods("GET")
	s.router.HandleFunc("/version", s.handlers.Version).Methods("GET")

	apiRouter := s.router.PathPrefix(constants.APIPrefix).Subrouter()

	// Dataset endpoints
	apiRouter.HandleFunc("/datasets/upload", s.handlers.UploadDataset).Methods("POST")
	apiRouter.HandleFunc("/datasets", s.handlers.ListDatasets).Methods("GET")
	apiRouter.HandleFunc("/datasets/{id}/stats", s.handlers.GetDatasetStats).Methods("GET")
	apiRouter.HandleFunc("/datasets/{id}", s.handlers.DeleteDataset).Methods("DELETE")

	// Generation endpoint
	apiRouter.HandleFunc("/generate", s.handlers.Generate).Methods("POST")

	// Synthesizer catalog
	apiRouter.HandleFunc("/synthesizers", s.handlers.ListSynthesizers).Methods("GET")

	// Copilot endpoint
	apiRouter.HandleFunc("/copilot/ask", s.handlers.CopilotAsk).Methods("POST")

	s.router.NotFoundHandler = http.HandlerFunc(s.handlers.NotFound)
}

func (s *Server) setupMiddleware() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.recoveryMiddleware)

	if s.config.EnableCORS {
		s.router.Use(s.corsMiddleware)
	}

	s.router.Use(s.requestSizeLimitMiddleware)
}

// GetRouter returns the HTTP router, used by tests.
func (s *Server) GetRouter() *mux.Router {
	return s.router
}

// getDefaultConfig returns the default server configuration.
func getDefaultConfig() *Config {
	return &Config{
		Host:            constants.DefaultHost,
		Port:            constants.DefaultPort,
		ReadTimeout:     constants.DefaultReadTimeout,
		WriteTimeout:    constants.DefaultWriteTimeout,
		IdleTimeout:     constants.DefaultIdleTimeout,
		ShutdownTimeout: constants.DefaultShutdownTimeout,
		EnableCORS:      true,
		MaxRequestSize:  constants.MaxUploadSize,
	}
}
