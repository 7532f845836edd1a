package synthesis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/synthworks/tabsynth/pkg/models"
)

func twoRowBatch() *models.Batch {
	return &models.Batch{
		Columns: []string{"id", "name"},
		Rows: []models.Row{
			{"id": int64(1), "name": "alice"},
			{"id": int64(2), "name": "bob"},
		},
	}
}

func TestAccumulatorDeduplicatesWithinBatch(t *testing.T) {
	acc := NewAccumulator([]string{"id", "name"})

	batch := twoRowBatch()
	batch.Rows = append(batch.Rows, models.Row{"id": int64(1), "name": "alice"})

	dropped := acc.Add(batch)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, 2, acc.Len())
}

func TestAccumulatorDeduplicatesAcrossBatches(t *testing.T) {
	acc := NewAccumulator([]string{"id", "name"})

	assert.Zero(t, acc.Add(twoRowBatch()))
	// The whole second batch duplicates rows collected in the earlier pass.
	assert.Equal(t, 2, acc.Add(twoRowBatch()))
	assert.Equal(t, 2, acc.Len())
}

func TestAccumulatorIsIdempotent(t *testing.T) {
	once := NewAccumulator([]string{"id", "name"})
	once.Add(twoRowBatch())

	twice := NewAccumulator([]string{"id", "name"})
	twice.Add(twoRowBatch())
	twice.Add(twoRowBatch())

	assert.Equal(t, once.Len(), twice.Len())
	assert.Equal(t, once.Rows(), twice.Rows())
}

func TestAccumulatorPreservesFirstOccurrenceOrder(t *testing.T) {
	acc := NewAccumulator([]string{"id"})

	acc.Add(&models.Batch{Columns: []string{"id"}, Rows: []models.Row{
		{"id": int64(3)}, {"id": int64(1)},
	}})
	acc.Add(&models.Batch{Columns: []string{"id"}, Rows: []models.Row{
		{"id": int64(1)}, {"id": int64(2)},
	}})

	rows := acc.Rows()
	assert.Equal(t, int64(3), rows[0]["id"])
	assert.Equal(t, int64(1), rows[1]["id"])
	assert.Equal(t, int64(2), rows[2]["id"])
}

func TestAccumulatorTrimKeepsHead(t *testing.T) {
	acc := NewAccumulator([]string{"id"})
	acc.Add(&models.Batch{Columns: []string{"id"}, Rows: []models.Row{
		{"id": int64(1)}, {"id": int64(2)}, {"id": int64(3)},
	}})

	acc.Trim(2)
	assert.Equal(t, 2, acc.Len())
	assert.Equal(t, int64(1), acc.Rows()[0]["id"])
	assert.Equal(t, int64(2), acc.Rows()[1]["id"])

	// Trimming beyond the current size is a no-op.
	acc.Trim(10)
	assert.Equal(t, 2, acc.Len())
}
