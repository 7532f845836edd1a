package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/synthworks/tabsynth/internal/copilot"
	"github.com/synthworks/tabsynth/internal/generators"
	"github.com/synthworks/tabsynth/internal/observability/metrics"
	"github.com/synthworks/tabsynth/internal/server"
	pgimpl "github.com/synthworks/tabsynth/internal/storage/implementations/postgres"
	redisimpl "github.com/synthworks/tabsynth/internal/storage/implementations/redis"
	"github.com/synthworks/tabsynth/pkg/constants"
	"github.com/synthworks/tabsynth/pkg/interfaces"
)

func main() {
	config := ParseFlags()

	logger := setupLogger(config.LogLevel, config.LogFormat)

	logger.WithFields(logrus.Fields{
		"version":   Version,
		"commit":    GitCommit,
		"buildDate": BuildDate,
	}).Info("Starting Tabular Synthetic Data Server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Dataset cache (required)
	redisHost, redisPort := splitHostPort(config.RedisAddr, 6379)
	cache, err := redisimpl.NewDatasetCache(&redisimpl.CacheConfig{
		Host:     redisHost,
		Port:     redisPort,
		Password: config.RedisPassword,
		Database: config.RedisDB,
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create dataset cache")
	}
	if err := cache.Connect(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer cache.Close()

	// Dataset registry (optional)
	var registry *pgimpl.Registry
	if config.EnableRegistry {
		registry, err = pgimpl.NewRegistry(&pgimpl.RegistryConfig{
			Host:     config.PostgresHost,
			Port:     config.PostgresPort,
			Database: config.PostgresDB,
			Username: config.PostgresUser,
			Password: config.PostgresPassword,
		}, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create dataset registry")
		}
		if err := registry.Connect(ctx); err != nil {
			logger.WithError(err).Fatal("Failed to connect to PostgreSQL")
		}
		defer registry.Close()
	}

	// Copilot (optional)
	var copilotSvc *copilot.Service
	if config.EnableCopilot {
		oracle := copilot.NewClient(&copilot.ClientConfig{
			BaseURL: config.OracleURL,
			Model:   config.OracleModel,
		}, logger)
		copilotSvc, err = copilot.NewService(oracle, cache, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create copilot service")
		}
	}

	// Metrics
	var pm *metrics.PrometheusMetrics
	if config.EnableMetrics {
		pm, err = metrics.NewPrometheusMetrics(&metrics.PrometheusConfig{
			Enabled:   true,
			Port:      config.MetricsPort,
			Path:      "/metrics",
			Namespace: "tabsynth",
		}, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create metrics")
		}
	}

	factory := generators.NewFactory(logger)

	// A typed-nil *Registry must not reach the interface field.
	var registryIface interfaces.DatasetRegistry
	if registry != nil {
		registryIface = registry
	}

	handlers, err := server.NewHandlers(cache, registryIface, factory, copilotSvc, pm, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create handlers")
	}

	serverConfig := &server.Config{
		Host:            config.Host,
		Port:            config.Port,
		ReadTimeout:     constants.DefaultReadTimeout,
		WriteTimeout:    constants.DefaultWriteTimeout,
		IdleTimeout:     constants.DefaultIdleTimeout,
		ShutdownTimeout: constants.DefaultShutdownTimeout,
		EnableCORS:      true,
		MaxRequestSize:  constants.MaxUploadSize,
	}
	srv, err := server.NewServer(serverConfig, handlers, pm, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create server")
	}

	// Signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	<-sigChan
	logger.Info("Shutdown signal received")

	if err := srv.Stop(context.Background()); err != nil {
		logger.WithError(err).Error("Server shutdown failed")
	}

	logger.Info("Server stopped")
}

func splitHostPort(addr string, defaultPort int) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, defaultPort
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, defaultPort
	}
	return host, port
}

func setupLogger(level, format string) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
