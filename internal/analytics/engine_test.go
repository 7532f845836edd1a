package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synthworks/tabsynth/pkg/models"
)

func statsDataset() *models.Dataset {
	return &models.Dataset{
		ID:      "d1",
		Name:    "payments",
		Columns: []string{"amount", "status"},
		Rows: []models.Row{
			{"amount": int64(10), "status": "ok"},
			{"amount": int64(20), "status": "ok"},
			{"amount": int64(30), "status": "failed"},
			{"amount": nil, "status": "ok"},
		},
	}
}

func TestDescribeNumericColumn(t *testing.T) {
	stats := Describe(statsDataset())

	require.Equal(t, 4, stats.RowCount)
	require.Len(t, stats.Columns, 2)

	amount := stats.Columns[0]
	assert.Equal(t, "amount", amount.Name)
	assert.True(t, amount.Numeric)
	assert.Equal(t, 3, amount.Count)
	assert.Equal(t, 1, amount.Nulls)
	assert.Equal(t, 3, amount.Distinct)
	assert.InDelta(t, 20.0, amount.Mean, 1e-9)
	assert.InDelta(t, 10.0, amount.Min, 1e-9)
	assert.InDelta(t, 30.0, amount.Max, 1e-9)
}

func TestDescribeCategoricalColumn(t *testing.T) {
	stats := Describe(statsDataset())

	status := stats.Columns[1]
	assert.Equal(t, "status", status.Name)
	assert.False(t, status.Numeric)
	assert.Equal(t, 2, status.Distinct)
	require.NotEmpty(t, status.TopValues)
	assert.Equal(t, "ok", status.TopValues[0].Value)
	assert.Equal(t, 3, status.TopValues[0].Count)
}

func TestContextBlockMentionsEveryColumn(t *testing.T) {
	block := Describe(statsDataset()).ContextBlock()
	assert.Contains(t, block, `Dataset "payments": 4 rows, 2 columns.`)
	assert.Contains(t, block, "amount (numeric)")
	assert.Contains(t, block, "status (categorical)")
}
