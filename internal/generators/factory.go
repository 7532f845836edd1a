package generators

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/synthworks/tabsynth/pkg/errors"
	"github.com/synthworks/tabsynth/pkg/interfaces"
)

// Factory creates synthesizer instances by type.
type Factory struct {
	logger   *logrus.Logger
	mu       sync.RWMutex
	creators map[string]func(*logrus.Logger) interfaces.TrainableSynthesizer
}

// NewFactory creates a factory with the built-in synthesizers registered.
func NewFactory(logger *logrus.Logger) *Factory {
	if logger == nil {
		logger = logrus.New()
	}
	f := &Factory{
		logger:   logger,
		creators: make(map[string]func(*logrus.Logger) interfaces.TrainableSynthesizer),
	}

	f.Register(TypeStatistical, func(l *logrus.Logger) interfaces.TrainableSynthesizer {
		return NewStatisticalSynthesizer(l)
	})
	f.Register(TypeEmpirical, func(l *logrus.Logger) interfaces.TrainableSynthesizer {
		return NewEmpiricalSynthesizer(l)
	})

	return f
}

// Register adds a synthesizer constructor for a type.
func (f *Factory) Register(synthType string, create func(*logrus.Logger) interfaces.TrainableSynthesizer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creators[synthType] = create
}

// CreateSynthesizer creates a new synthesizer instance.
func (f *Factory) CreateSynthesizer(synthType string) (interfaces.TrainableSynthesizer, error) {
	f.mu.RLock()
	create, ok := f.creators[synthType]
	f.mu.RUnlock()
	if !ok {
		return nil, errors.WrapError(errors.ErrSynthesizerNotFound, errors.ErrorTypeGeneration, errors.CodeModelNotFound,
			fmt.Sprintf("unknown synthesizer type: %s", synthType))
	}
	return create(f.logger), nil
}

// AvailableSynthesizers returns all registered types, sorted.
func (f *Factory) AvailableSynthesizers() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	types := make([]string, 0, len(f.creators))
	for t := range f.creators {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// IsSupported checks whether a type is registered.
func (f *Factory) IsSupported(synthType string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.creators[synthType]
	return ok
}
