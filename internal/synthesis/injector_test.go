package synthesis

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synthworks/tabsynth/pkg/models"
)

func makeBatch(n int) *models.Batch {
	batch := models.NewBatch([]string{"id", "amount", "city"}, n)
	for i := 0; i < n; i++ {
		batch.Rows = append(batch.Rows, models.Row{
			"id":     int64(i),
			"amount": float64(i) * 1.5,
			"city":   "springfield",
		})
	}
	return batch
}

func countWhere(batch *models.Batch, column string, want models.Value) int {
	count := 0
	for _, row := range batch.Rows {
		if models.CanonicalValue(row[column]) == models.CanonicalValue(want) {
			count++
		}
	}
	return count
}

func TestInjectFixedValue(t *testing.T) {
	in := NewSeededInjector(logrus.New(), 42)
	batch := makeBatch(100)

	mutated := in.Inject(batch, []models.AnomalyRule{
		{Column: "amount", Kind: models.AnomalyFixedValue, Value: int64(-999), Ratio: 0.1},
	})

	assert.Equal(t, 10, mutated)
	assert.Equal(t, 10, countWhere(batch, "amount", int64(-999)))
	assert.Equal(t, 100, batch.Len(), "injection must not change batch size")
}

func TestInjectNullify(t *testing.T) {
	in := NewSeededInjector(logrus.New(), 7)
	batch := makeBatch(40)

	mutated := in.Inject(batch, []models.AnomalyRule{
		{Column: "city", Kind: models.AnomalyNullify, Ratio: 0.25},
	})

	assert.Equal(t, 10, mutated)
	assert.Equal(t, 10, countWhere(batch, "city", nil))
}

func TestInjectRoundsIndexCount(t *testing.T) {
	in := NewSeededInjector(logrus.New(), 1)
	// round(30 * 0.05) = 2, not the truncated 1
	batch := makeBatch(30)
	mutated := in.Inject(batch, []models.AnomalyRule{
		{Column: "city", Kind: models.AnomalyNullify, Ratio: 0.05},
	})
	assert.Equal(t, 2, mutated)
}

func TestInjectDefaultRatio(t *testing.T) {
	rules, err := models.ParseAnomalyRules(`[{"column":"amount","type":"fixed","value":0}]`)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, models.DefaultAnomalyRatio, rules[0].Ratio)

	in := NewSeededInjector(logrus.New(), 3)
	batch := makeBatch(100)
	mutated := in.Inject(batch, rules)
	assert.Equal(t, 5, mutated)
}

func TestInjectUnknownColumnIsNoOp(t *testing.T) {
	in := NewSeededInjector(logrus.New(), 9)
	batch := makeBatch(20)

	mutated := in.Inject(batch, []models.AnomalyRule{
		{Column: "does_not_exist", Kind: models.AnomalyNullify, Ratio: 0.5},
	})

	assert.Zero(t, mutated)
	assert.Equal(t, 20, countWhere(batch, "city", "springfield"))
}

func TestInjectMalformedRuleSkipped(t *testing.T) {
	in := NewSeededInjector(logrus.New(), 11)
	batch := makeBatch(20)

	// Unknown kind is skipped, the valid rule after it still runs.
	mutated := in.Inject(batch, []models.AnomalyRule{
		{Column: "amount", Kind: "spike", Ratio: 0.5},
		{Column: "city", Kind: models.AnomalyNullify, Ratio: 0.5},
	})

	assert.Equal(t, 10, mutated)
	assert.Equal(t, 10, countWhere(batch, "city", nil))
}

func TestInjectLaterRuleWinsOnSharedColumn(t *testing.T) {
	in := NewSeededInjector(logrus.New(), 5)
	batch := makeBatch(10)

	in.Inject(batch, []models.AnomalyRule{
		{Column: "city", Kind: models.AnomalyFixedValue, Value: "first", Ratio: 1.0},
		{Column: "city", Kind: models.AnomalyFixedValue, Value: "second", Ratio: 1.0},
	})

	// Both rules select every index; the later rule must win everywhere.
	assert.Equal(t, 10, countWhere(batch, "city", "second"))
}

func TestInjectSelectsDistinctIndices(t *testing.T) {
	in := NewSeededInjector(logrus.New(), 13)
	batch := makeBatch(50)

	in.Inject(batch, []models.AnomalyRule{
		{Column: "amount", Kind: models.AnomalyFixedValue, Value: int64(1), Ratio: 0.4},
	})

	// Exactly round(50*0.4)=20 rows mutated means no index was chosen twice.
	assert.Equal(t, 20, countWhere(batch, "amount", int64(1)))
}
