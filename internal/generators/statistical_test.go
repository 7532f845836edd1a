package generators

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synthworks/tabsynth/pkg/models"
)

func trainingDataset() *models.Dataset {
	rows := []models.Row{
		{"age": int64(25), "email": "real.person@corp.example", "segment": "a"},
		{"age": int64(31), "email": "another.real@corp.example", "segment": "b"},
		{"age": int64(47), "email": "third.real@corp.example", "segment": "a"},
		{"age": int64(52), "email": "fourth.real@corp.example", "segment": "a"},
	}
	return &models.Dataset{
		ID:      "train",
		Name:    "training",
		Columns: []string{"age", "email", "segment"},
		Rows:    rows,
	}
}

func TestStatisticalFitAndSample(t *testing.T) {
	s := NewStatisticalSynthesizer(logrus.New())
	require.False(t, s.IsTrained())

	require.NoError(t, s.Fit(context.Background(), trainingDataset()))
	require.True(t, s.IsTrained())
	assert.Equal(t, []string{"age", "email", "segment"}, s.Schema())

	batch, err := s.Sample(context.Background(), 50)
	require.NoError(t, err)
	require.Equal(t, 50, batch.Len())

	for _, row := range batch.Rows {
		// Numeric values are clamped to the observed range.
		age, ok := row["age"].(int64)
		require.True(t, ok, "age must stay integer")
		assert.GreaterOrEqual(t, age, int64(25))
		assert.LessOrEqual(t, age, int64(52))

		// Categorical values come from the training support.
		seg := row["segment"].(string)
		assert.Contains(t, []string{"a", "b"}, seg)
	}
}

func TestStatisticalNegativeIntegerRounding(t *testing.T) {
	rows := make([]models.Row, 10)
	for i := range rows {
		rows[i] = models.Row{"delta": int64(-3)}
	}
	data := &models.Dataset{ID: "neg", Name: "negatives", Columns: []string{"delta"}, Rows: rows}

	s := NewStatisticalSynthesizer(logrus.New())
	require.NoError(t, s.Fit(context.Background(), data))

	// Zero variance pins every draw at the mean; rounding toward positive
	// infinity would turn -3 into -2.
	batch, err := s.Sample(context.Background(), 20)
	require.NoError(t, err)
	for _, row := range batch.Rows {
		assert.Equal(t, int64(-3), row["delta"])
	}
}

func TestStatisticalPIIColumnsAreFullySynthetic(t *testing.T) {
	s := NewStatisticalSynthesizer(logrus.New())
	require.NoError(t, s.Fit(context.Background(), trainingDataset()))

	batch, err := s.Sample(context.Background(), 100)
	require.NoError(t, err)

	trainingEmails := map[string]struct{}{
		"real.person@corp.example":  {},
		"another.real@corp.example": {},
		"third.real@corp.example":   {},
		"fourth.real@corp.example":  {},
	}
	for _, row := range batch.Rows {
		email := row["email"].(string)
		_, leaked := trainingEmails[email]
		assert.False(t, leaked, "PII surrogate must never be a training value")
		assert.True(t, strings.HasSuffix(email, "@example.com"))
	}
}

func TestStatisticalSaveLoadRoundTrip(t *testing.T) {
	s := NewStatisticalSynthesizer(logrus.New())
	require.NoError(t, s.Fit(context.Background(), trainingDataset()))

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, s.Save(path))

	loaded := NewStatisticalSynthesizer(logrus.New())
	require.NoError(t, loaded.Load(path))
	assert.True(t, loaded.IsTrained())
	assert.Equal(t, s.Schema(), loaded.Schema())

	batch, err := loaded.Sample(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 10, batch.Len())
}

func TestStatisticalUntrainedErrors(t *testing.T) {
	s := NewStatisticalSynthesizer(logrus.New())

	_, err := s.Sample(context.Background(), 10)
	require.Error(t, err)

	err = s.Save(filepath.Join(t.TempDir(), "model.json"))
	require.Error(t, err)
}

func TestStatisticalLoadRejectsWrongType(t *testing.T) {
	e := NewEmpiricalSynthesizer(logrus.New())
	require.NoError(t, e.Fit(context.Background(), trainingDataset()))

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, e.Save(path))

	s := NewStatisticalSynthesizer(logrus.New())
	err := s.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}

func TestStatisticalFitEmptyDataset(t *testing.T) {
	s := NewStatisticalSynthesizer(logrus.New())
	err := s.Fit(context.Background(), &models.Dataset{Columns: []string{"a"}})
	require.Error(t, err)
}

func TestEmpiricalFitAndSample(t *testing.T) {
	e := NewEmpiricalSynthesizer(logrus.New())
	require.NoError(t, e.Fit(context.Background(), trainingDataset()))

	batch, err := e.Sample(context.Background(), 20)
	require.NoError(t, err)
	require.Equal(t, 20, batch.Len())

	for _, row := range batch.Rows {
		age := row["age"].(int64)
		assert.Contains(t, []int64{25, 31, 47, 52}, age, "empirical sampling resamples observed values only")
	}
}
