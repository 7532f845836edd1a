package interfaces

import (
	"context"

	"github.com/synthworks/tabsynth/pkg/models"
)

// RowSource produces candidate batches of synthetic rows. Implementations
// give no uniqueness or privacy guarantee: the generation loop is responsible
// for filtering and deduplication. Sample is the only operation expected to
// be slow; callers needing bounded latency impose a deadline via ctx and
// treat expiry as a sampling failure.
type RowSource interface {
	// Schema returns the fixed output column set, established at model load.
	Schema() []string

	// Sample produces up to n candidate rows.
	Sample(ctx context.Context, n int) (*models.Batch, error)
}

// Synthesizer is a tabular generative model exposed as a RowSource.
type Synthesizer interface {
	RowSource

	// Type returns the synthesizer type identifier.
	Type() string

	// Close cleans up resources.
	Close() error
}

// TrainableSynthesizer extends Synthesizer for models fitted from data.
type TrainableSynthesizer interface {
	Synthesizer

	// Fit trains the model on a reference dataset.
	Fit(ctx context.Context, data *models.Dataset) error

	// Save persists the trained model to a file artifact.
	Save(path string) error

	// Load restores a trained model from a file artifact.
	Load(path string) error

	// IsTrained reports whether the model is ready to sample.
	IsTrained() bool
}

// SynthesizerFactory creates synthesizer instances by type.
type SynthesizerFactory interface {
	// CreateSynthesizer creates a new synthesizer instance.
	CreateSynthesizer(synthType string) (TrainableSynthesizer, error)

	// AvailableSynthesizers returns all registered types.
	AvailableSynthesizers() []string

	// IsSupported checks whether a type is registered.
	IsSupported(synthType string) bool
}
