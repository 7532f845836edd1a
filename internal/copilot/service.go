package copilot

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/synthworks/tabsynth/internal/analytics"
	"github.com/synthworks/tabsynth/pkg/errors"
	"github.com/synthworks/tabsynth/pkg/interfaces"
)

// Service answers natural-language questions about cached datasets by
// building a statistics context block and forwarding it to the oracle.
type Service struct {
	oracle interfaces.TextOracle
	cache  interfaces.DatasetCache
	logger *logrus.Logger
}

// NewService creates a copilot service.
func NewService(oracle interfaces.TextOracle, cache interfaces.DatasetCache, logger *logrus.Logger) (*Service, error) {
	if oracle == nil {
		return nil, errors.NewValidationError(errors.CodeInvalidInput, "oracle cannot be nil")
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Service{oracle: oracle, cache: cache, logger: logger}, nil
}

// Ask answers a question. When datasetID names a cached dataset, its
// descriptive statistics are prepended as context; an empty datasetID asks
// the oracle directly.
func (s *Service) Ask(ctx context.Context, datasetID, question string) (string, error) {
	var contextBlock string

	if datasetID != "" {
		if s.cache == nil {
			return "", errors.NewStorageError(errors.CodeConnectionFailed, "dataset cache is not configured")
		}
		dataset, err := s.cache.Get(ctx, datasetID)
		if err != nil {
			return "", err
		}
		contextBlock = analytics.Describe(dataset).ContextBlock()
	}

	answer, err := s.oracle.Generate(ctx, question, contextBlock)
	if err != nil {
		s.logger.WithError(err).WithField("dataset_id", datasetID).Warn("Oracle request failed")
		return "", err
	}
	return answer, nil
}

// Healthy reports oracle reachability.
func (s *Service) Healthy(ctx context.Context) bool {
	return s.oracle.Healthy(ctx)
}
