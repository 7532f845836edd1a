package generators

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/synthworks/tabsynth/internal/metadata"
	"github.com/synthworks/tabsynth/pkg/errors"
	"github.com/synthworks/tabsynth/pkg/models"
)

// modelArtifactVersion guards the on-disk model format.
const modelArtifactVersion = "1"

// categoryWeight is one observed categorical value with its training count.
// Values are stored in canonical CSV form and parsed back on load.
type categoryWeight struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// columnModel is the fitted per-column distribution.
type columnModel struct {
	Name     string              `json:"name"`
	Kind     metadata.ColumnKind `json:"kind"`
	PIIType  string              `json:"pii_type,omitempty"`
	NullRate float64             `json:"null_rate"`

	// Numeric columns
	Mean    float64 `json:"mean,omitempty"`
	StdDev  float64 `json:"std_dev,omitempty"`
	Min     float64 `json:"min,omitempty"`
	Max     float64 `json:"max,omitempty"`
	Integer bool    `json:"integer,omitempty"`

	// Categorical columns
	Categories []categoryWeight `json:"categories,omitempty"`
	total      int
}

// tableModel is the persisted model artifact.
type tableModel struct {
	Version      string        `json:"version"`
	Type         string        `json:"type"`
	Columns      []columnModel `json:"columns"`
	TrainingRows int           `json:"training_rows"`
	TrainedAt    time.Time     `json:"trained_at"`
}

func (m *tableModel) schema() []string {
	cols := make([]string, len(m.Columns))
	for i, c := range m.Columns {
		cols[i] = c.Name
	}
	return cols
}

// saveModel persists a trained model as a JSON artifact.
func saveModel(path string, model *tableModel) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeWriteFailed,
			fmt.Sprintf("failed to create model file: %s", path))
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(model); err != nil {
		return errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeWriteFailed, "failed to encode model")
	}
	return nil
}

// loadModel restores a model artifact, checking type and format version.
func loadModel(path, expectType string) (*tableModel, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeGeneration, errors.CodeModelLoadFailed,
			fmt.Sprintf("failed to open model file: %s", path))
	}
	defer file.Close()

	var model tableModel
	if err := json.NewDecoder(file).Decode(&model); err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeGeneration, errors.CodeModelLoadFailed, "failed to decode model")
	}
	if model.Version != modelArtifactVersion {
		return nil, errors.NewGenerationError(errors.CodeModelLoadFailed,
			fmt.Sprintf("unsupported model version %q", model.Version))
	}
	if expectType != "" && model.Type != expectType {
		return nil, errors.NewGenerationError(errors.CodeModelLoadFailed,
			fmt.Sprintf("model type %q does not match synthesizer %q", model.Type, expectType))
	}
	for i := range model.Columns {
		for _, c := range model.Columns[i].Categories {
			model.Columns[i].total += c.Count
		}
	}
	return &model, nil
}

// fitCategorical collects value frequencies for one column.
func fitCategorical(dataset *models.Dataset, name string) ([]categoryWeight, float64) {
	counts := make(map[string]int)
	order := make([]string, 0)
	nulls := 0
	for _, row := range dataset.Rows {
		v := row[name]
		if v == nil {
			nulls++
			continue
		}
		key := models.FormatValue(v)
		if _, ok := counts[key]; !ok {
			order = append(order, key)
		}
		counts[key]++
	}

	categories := make([]categoryWeight, 0, len(order))
	for _, key := range order {
		categories = append(categories, categoryWeight{Value: key, Count: counts[key]})
	}
	nullRate := 0.0
	if n := dataset.RowCount(); n > 0 {
		nullRate = float64(nulls) / float64(n)
	}
	return categories, nullRate
}

// fitNumeric computes moments and range for one column.
func fitNumeric(dataset *models.Dataset, name string) (mean, std, min, max, nullRate float64) {
	var sum, sumSq float64
	count := 0
	nulls := 0
	first := true
	for _, row := range dataset.Rows {
		var f float64
		switch v := row[name].(type) {
		case int64:
			f = float64(v)
		case float64:
			f = v
		case nil:
			nulls++
			continue
		default:
			continue
		}
		if first {
			min, max = f, f
			first = false
		}
		if f < min {
			min = f
		}
		if f > max {
			max = f
		}
		sum += f
		sumSq += f * f
		count++
	}
	if count > 0 {
		mean = sum / float64(count)
		variance := sumSq/float64(count) - mean*mean
		if variance > 0 {
			std = math.Sqrt(variance)
		}
	}
	if n := dataset.RowCount(); n > 0 {
		nullRate = float64(nulls) / float64(n)
	}
	return mean, std, min, max, nullRate
}
