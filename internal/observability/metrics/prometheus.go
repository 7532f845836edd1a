package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// PrometheusMetrics provides Prometheus-based metrics collection for the
// generation pipeline and the HTTP service.
type PrometheusMetrics struct {
	logger   *logrus.Logger
	registry *prometheus.Registry
	server   *http.Server
	config   *PrometheusConfig

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Generation loop metrics
	generationRunsTotal    *prometheus.CounterVec
	generationPassesTotal  prometheus.Counter
	generationPassDuration prometheus.Histogram
	rowsSampledTotal       prometheus.Counter
	rowsLeakedTotal        prometheus.Counter
	rowsDeduplicatedTotal  prometheus.Counter
	rowsEmittedTotal       prometheus.Counter
	anomaliesInjectedTotal prometheus.Counter
}

// PrometheusConfig configures Prometheus metrics
type PrometheusConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Port      int    `json:"port" yaml:"port"`
	Path      string `json:"path" yaml:"path"`
	Namespace string `json:"namespace" yaml:"namespace"`
}

// NewPrometheusMetrics creates a new Prometheus metrics instance
func NewPrometheusMetrics(config *PrometheusConfig, logger *logrus.Logger) (*PrometheusMetrics, error) {
	if config == nil {
		config = getDefaultPrometheusConfig()
	}

	if logger == nil {
		logger = logrus.New()
	}

	pm := &PrometheusMetrics{
		logger:   logger,
		registry: prometheus.NewRegistry(),
		config:   config,
	}

	if err := pm.initializeMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	return pm, nil
}

func (pm *PrometheusMetrics) initializeMetrics() error {
	ns := pm.config.Namespace

	pm.httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	pm.httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ns,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	pm.generationRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "generation_runs_total",
		Help:      "Total generation runs by terminal status",
	}, []string{"status"})

	pm.generationPassesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "generation_passes_total",
		Help:      "Total generation passes (row source calls)",
	})

	pm.generationPassDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: ns,
		Name:      "generation_pass_duration_seconds",
		Help:      "Duration of a single generation pass",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	pm.rowsSampledTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "rows_sampled_total",
		Help:      "Candidate rows drawn from the row source",
	})

	pm.rowsLeakedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "rows_leaked_total",
		Help:      "Candidate rows removed by the leakage filter",
	})

	pm.rowsDeduplicatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "rows_deduplicated_total",
		Help:      "Candidate rows dropped as duplicates",
	})

	pm.rowsEmittedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "rows_emitted_total",
		Help:      "Rows emitted into final artifacts",
	})

	pm.anomaliesInjectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "anomalies_injected_total",
		Help:      "Cells mutated by anomaly injection",
	})

	collectors := []prometheus.Collector{
		pm.httpRequestsTotal,
		pm.httpRequestDuration,
		pm.generationRunsTotal,
		pm.generationPassesTotal,
		pm.generationPassDuration,
		pm.rowsSampledTotal,
		pm.rowsLeakedTotal,
		pm.rowsDeduplicatedTotal,
		pm.rowsEmittedTotal,
		pm.anomaliesInjectedTotal,
	}
	for _, c := range collectors {
		if err := pm.registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Start starts the Prometheus metrics server
func (pm *PrometheusMetrics) Start(ctx context.Context) error {
	if !pm.config.Enabled {
		pm.logger.Info("Prometheus metrics disabled")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(pm.config.Path, pm.Handler())

	pm.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", pm.config.Port),
		Handler: mux,
	}

	pm.logger.WithFields(logrus.Fields{
		"port": pm.config.Port,
		"path": pm.config.Path,
	}).Info("Starting Prometheus metrics server")

	go func() {
		if err := pm.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			pm.logger.WithError(err).Error("Metrics server error")
		}
	}()

	return nil
}

// Stop gracefully stops the metrics server
func (pm *PrometheusMetrics) Stop(ctx context.Context) error {
	if pm.server == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return pm.server.Shutdown(shutdownCtx)
}

// Handler returns the exposition handler for embedding into another router.
func (pm *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(pm.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// ObserveHTTPRequest records one HTTP request.
func (pm *PrometheusMetrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	pm.httpRequestsTotal.WithLabelValues(method, path, fmt.Sprintf("%d", status)).Inc()
	pm.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordRun records a terminated generation run. Nil receivers are allowed so
// the pipeline can run without metrics wired.
func (pm *PrometheusMetrics) RecordRun(status string) {
	if pm == nil {
		return
	}
	pm.generationRunsTotal.WithLabelValues(status).Inc()
}

// RecordPass records one generation pass.
func (pm *PrometheusMetrics) RecordPass(sampled, leaked, deduplicated int, duration time.Duration) {
	if pm == nil {
		return
	}
	pm.generationPassesTotal.Inc()
	pm.generationPassDuration.Observe(duration.Seconds())
	pm.rowsSampledTotal.Add(float64(sampled))
	pm.rowsLeakedTotal.Add(float64(leaked))
	pm.rowsDeduplicatedTotal.Add(float64(deduplicated))
}

// RecordEmitted records rows written into a final artifact.
func (pm *PrometheusMetrics) RecordEmitted(rows int) {
	if pm == nil {
		return
	}
	pm.rowsEmittedTotal.Add(float64(rows))
}

// RecordAnomalies records injected anomaly cells.
func (pm *PrometheusMetrics) RecordAnomalies(cells int) {
	if pm == nil {
		return
	}
	pm.anomaliesInjectedTotal.Add(float64(cells))
}

func getDefaultPrometheusConfig() *PrometheusConfig {
	return &PrometheusConfig{
		Enabled:   true,
		Port:      9090,
		Path:      "/metrics",
		Namespace: "tabsynth",
	}
}
