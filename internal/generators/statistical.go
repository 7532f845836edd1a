package generators

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/synthworks/tabsynth/internal/metadata"
	"github.com/synthworks/tabsynth/pkg/errors"
	"github.com/synthworks/tabsynth/pkg/models"
)

// TypeStatistical identifies the per-column statistical synthesizer.
const TypeStatistical = "statistical"

// StatisticalSynthesizer fits independent per-column distributions: numeric
// columns sample gaussian around the training mean (clamped to the observed
// range), categorical columns sample proportionally to training frequencies,
// and PII-tagged columns sample fully synthetic surrogate values so that no
// real sensitive attribute can reappear in output.
type StatisticalSynthesizer struct {
	logger *logrus.Logger
	mu     sync.RWMutex
	rng    *rand.Rand
	model  *tableModel
}

// NewStatisticalSynthesizer creates an untrained statistical synthesizer.
func NewStatisticalSynthesizer(logger *logrus.Logger) *StatisticalSynthesizer {
	if logger == nil {
		logger = logrus.New()
	}
	return &StatisticalSynthesizer{
		logger: logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Type returns the synthesizer type identifier.
func (s *StatisticalSynthesizer) Type() string { return TypeStatistical }

// IsTrained reports whether a model is loaded or fitted.
func (s *StatisticalSynthesizer) IsTrained() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model != nil
}

// Schema returns the model's output columns, fixed at fit/load time.
func (s *StatisticalSynthesizer) Schema() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.model == nil {
		return nil
	}
	return s.model.schema()
}

// Fit trains the synthesizer on a reference dataset. Column kinds and PII
// tags come from the metadata detector; PII columns keep no training values
// at all, only a null rate.
func (s *StatisticalSynthesizer) Fit(ctx context.Context, data *models.Dataset) error {
	if data.IsEmpty() {
		return errors.NewValidationError(errors.CodeInvalidInput, "training dataset is empty")
	}
	if len(data.Columns) == 0 {
		return errors.WrapError(errors.ErrNoColumns, errors.ErrorTypeValidation, errors.CodeInvalidInput, "training dataset has no columns")
	}

	detected := metadata.NewDetector(s.logger).Detect(data)

	model := &tableModel{
		Version:      modelArtifactVersion,
		Type:         TypeStatistical,
		TrainingRows: data.RowCount(),
		TrainedAt:    time.Now(),
	}

	for _, colMeta := range detected.Columns {
		if err := ctx.Err(); err != nil {
			return errors.WrapError(err, errors.ErrorTypeGeneration, errors.CodeTrainingFailed, "training cancelled")
		}

		col := columnModel{
			Name:    colMeta.Name,
			Kind:    colMeta.Kind,
			PIIType: colMeta.PIIType,
		}

		switch {
		case col.PIIType != "":
			_, col.NullRate = fitCategorical(data, col.Name)
		case col.Kind == metadata.KindNumeric:
			col.Integer = colMeta.Integer
			col.Mean, col.StdDev, col.Min, col.Max, col.NullRate = fitNumeric(data, col.Name)
		default:
			col.Categories, col.NullRate = fitCategorical(data, col.Name)
			for _, c := range col.Categories {
				col.total += c.Count
			}
		}

		model.Columns = append(model.Columns, col)
	}

	s.mu.Lock()
	s.model = model
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"columns": len(model.Columns),
		"rows":    model.TrainingRows,
	}).Info("Statistical model fitted")

	return nil
}

// Sample produces up to n candidate rows. Rows are drawn independently per
// column, so duplicates and accidental reproductions of training rows are
// possible; the generation loop filters both.
func (s *StatisticalSynthesizer) Sample(ctx context.Context, n int) (*models.Batch, error) {
	s.mu.RLock()
	model := s.model
	s.mu.RUnlock()

	if model == nil {
		return nil, errors.WrapError(errors.ErrModelNotTrained, errors.ErrorTypeGeneration, errors.CodeSamplingFailed, "statistical synthesizer is not trained")
	}
	if n <= 0 {
		return models.NewBatch(model.schema(), 0), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeGeneration, errors.CodeSamplingFailed, "sampling cancelled")
	}

	batch := models.NewBatch(model.schema(), n)
	for i := 0; i < n; i++ {
		row := make(models.Row, len(model.Columns))
		for ci := range model.Columns {
			row[model.Columns[ci].Name] = s.sampleCell(&model.Columns[ci])
		}
		batch.Rows = append(batch.Rows, row)
	}
	return batch, nil
}

func (s *StatisticalSynthesizer) sampleCell(col *columnModel) models.Value {
	if col.NullRate > 0 && s.rng.Float64() < col.NullRate {
		return nil
	}

	if col.PIIType != "" {
		return s.surrogate(col.PIIType)
	}

	if col.Kind == metadata.KindNumeric {
		v := col.Mean + s.rng.NormFloat64()*col.StdDev
		if v < col.Min {
			v = col.Min
		}
		if v > col.Max {
			v = col.Max
		}
		if col.Integer {
			return int64(math.Round(v))
		}
		return v
	}

	if len(col.Categories) == 0 || col.total == 0 {
		return nil
	}
	pick := s.rng.Intn(col.total)
	for _, c := range col.Categories {
		pick -= c.Count
		if pick < 0 {
			return models.ParseValue(c.Value)
		}
	}
	return models.ParseValue(col.Categories[len(col.Categories)-1].Value)
}

// Save persists the trained model to a JSON artifact.
func (s *StatisticalSynthesizer) Save(path string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.model == nil {
		return errors.WrapError(errors.ErrModelNotTrained, errors.ErrorTypeGeneration, errors.CodeTrainingFailed, "nothing to save")
	}
	return saveModel(path, s.model)
}

// Load restores a trained model from a JSON artifact.
func (s *StatisticalSynthesizer) Load(path string) error {
	model, err := loadModel(path, TypeStatistical)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.model = model
	s.mu.Unlock()
	return nil
}

// Close cleans up resources.
func (s *StatisticalSynthesizer) Close() error { return nil }
