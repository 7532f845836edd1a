package synthesis

import (
	"context"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/synthworks/tabsynth/internal/observability/metrics"
	"github.com/synthworks/tabsynth/pkg/constants"
	"github.com/synthworks/tabsynth/pkg/errors"
	"github.com/synthworks/tabsynth/pkg/interfaces"
	"github.com/synthworks/tabsynth/pkg/models"
)

// PipelineConfig contains configuration for the generation pipeline.
type PipelineConfig struct {
	// MaxAttempts bounds the number of row source passes per run.
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`
}

// Pipeline drives the generation-and-privacy-filtering loop: it repeatedly
// draws candidate batches from the row source, injects anomalies, removes
// leaked records, deduplicates into the running result set, and terminates
// when the target count is reached or the attempt budget is exhausted.
//
// The loop is single-threaded and synchronous: each pass fully completes
// sample -> inject -> filter -> accumulate before the next begins. The
// pipeline owns the run state exclusively; the original dataset is read-only.
type Pipeline struct {
	source   interfaces.RowSource
	injector *Injector
	filter   *LeakageFilter
	config   *PipelineConfig
	logger   *logrus.Logger
	metrics  *metrics.PrometheusMetrics
}

// NewPipeline creates a generation pipeline around a row source. Metrics may
// be nil.
func NewPipeline(source interfaces.RowSource, config *PipelineConfig, logger *logrus.Logger, pm *metrics.PrometheusMetrics) (*Pipeline, error) {
	if source == nil {
		return nil, errors.NewValidationError(errors.CodeInvalidInput, "row source cannot be nil")
	}
	if config == nil {
		config = &PipelineConfig{}
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = constants.DefaultMaxAttempts
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &Pipeline{
		source:   source,
		injector: NewInjector(logger),
		filter:   NewLeakageFilter(logger),
		config:   config,
		logger:   logger,
		metrics:  pm,
	}, nil
}

// batchSize computes the over-request size for one pass:
// ceil(needed * 1.1) + 10, compensating for expected loss to leakage
// filtering and deduplication.
func batchSize(needed int) int {
	return int(math.Ceil(float64(needed)*constants.OverRequestFactor)) + constants.OverRequestPadding
}

// Run executes one generation run and returns its result.
//
// Terminal states:
//   - StatusSuccess: the result holds exactly req.TargetCount rows, trimmed
//     head-first in accumulation order.
//   - StatusPartial: the attempt budget ran out; the result holds everything
//     collected plus the shortfall count. This is best-effort termination,
//     not an error: err is nil.
//   - StatusFailed: the row source failed mid-run. The accumulated rows are
//     surfaced in the result for callers that choose to accept them, and the
//     sampling error is returned.
//
// A non-positive target short-circuits to an empty success with zero row
// source calls.
func (p *Pipeline) Run(ctx context.Context, req *models.GenerationRequest) (*models.GenerationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeValidation, errors.CodeInvalidInput, "invalid generation request")
	}

	start := time.Now()
	result := &models.GenerationResult{
		RequestID: req.ID,
		Status:    models.StatusRunning,
		Columns:   p.source.Schema(),
	}

	if req.TargetCount <= 0 {
		result.Status = models.StatusSuccess
		result.Rows = []models.Row{}
		result.Duration = time.Since(start)
		p.metrics.RecordRun(string(result.Status))
		return result, nil
	}

	state := &models.GenerationState{
		TargetCount: req.TargetCount,
		MaxAttempts: p.config.MaxAttempts,
	}
	if req.MaxAttempts > 0 {
		state.MaxAttempts = req.MaxAttempts
	}

	if req.Original.IsEmpty() {
		p.logger.Debug("No original dataset supplied, leakage protection disabled")
	}

	acc := NewAccumulator(p.source.Schema())

	for state.RowsCollected < state.TargetCount && !state.Exhausted() {
		passStart := time.Now()
		n := batchSize(state.Needed())

		p.logger.WithFields(logrus.Fields{
			"pass":         state.AttemptsMade + 1,
			"max_attempts": state.MaxAttempts,
			"batch_size":   n,
			"collected":    state.RowsCollected,
			"target":       state.TargetCount,
		}).Info("Generation pass")

		batch, err := p.source.Sample(ctx, n)
		if err != nil {
			// A single unrecoverable sampling error aborts the whole run.
			result.Status = models.StatusFailed
			result.Rows = acc.Rows()
			result.RowCount = acc.Len()
			result.Shortfall = state.TargetCount - acc.Len()
			result.AttemptsMade = state.AttemptsMade
			result.Duration = time.Since(start)
			p.metrics.RecordRun(string(result.Status))
			p.logger.WithError(err).Error("Sampling failed, aborting generation")
			return result, errors.WrapError(err, errors.ErrorTypeGeneration, errors.CodeSamplingFailed, "row source sampling failed")
		}

		sampled := batch.Len()

		if len(req.Rules) > 0 {
			p.metrics.RecordAnomalies(p.injector.Inject(batch, req.Rules))
		}

		leaked := 0
		if !req.Original.IsEmpty() {
			batch, leaked = p.filter.Filter(batch, req.Original)
			result.LeakedRemoved += leaked
		}

		duplicates := acc.Add(batch)

		state.AttemptsMade++
		state.RowsCollected = acc.Len()
		p.metrics.RecordPass(sampled, leaked, duplicates, time.Since(passStart))
	}

	result.AttemptsMade = state.AttemptsMade

	if state.RowsCollected >= state.TargetCount {
		acc.Trim(state.TargetCount)
		result.Status = models.StatusSuccess
	} else {
		result.Status = models.StatusPartial
		result.Shortfall = state.TargetCount - state.RowsCollected
		p.logger.WithFields(logrus.Fields{
			"collected": state.RowsCollected,
			"target":    state.TargetCount,
			"shortfall": result.Shortfall,
			"attempts":  state.AttemptsMade,
		}).Warn("Could not generate full unique record count within attempt budget")
	}

	result.Rows = acc.Rows()
	result.RowCount = acc.Len()
	result.Duration = time.Since(start)

	p.metrics.RecordRun(string(result.Status))
	p.metrics.RecordEmitted(result.RowCount)

	p.logger.WithFields(logrus.Fields{
		"status":   result.Status,
		"rows":     result.RowCount,
		"attempts": result.AttemptsMade,
		"leaked":   result.LeakedRemoved,
		"duration": result.Duration,
	}).Info("Generation run finished")

	return result, nil
}
