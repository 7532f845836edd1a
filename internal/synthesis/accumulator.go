package synthesis

import (
	"github.com/synthworks/tabsynth/pkg/models"
)

// Accumulator merges filtered batches into the running result set,
// deduplicating by full-row equality across the entire accumulated set. A row
// that duplicates one collected in an earlier pass is dropped. Order of first
// occurrence is preserved.
type Accumulator struct {
	columns []string
	rows    []models.Row
	seen    map[string]struct{}
}

// NewAccumulator creates an accumulator for the given schema.
func NewAccumulator(columns []string) *Accumulator {
	return &Accumulator{
		columns: columns,
		seen:    make(map[string]struct{}),
	}
}

// Add merges a batch into the result set and returns the number of rows
// dropped as duplicates. Adding the same batch twice yields the same set as
// adding it once.
func (a *Accumulator) Add(batch *models.Batch) int {
	if batch == nil {
		return 0
	}
	dropped := 0
	for _, row := range batch.Rows {
		key := models.RowKey(row, a.columns)
		if _, dup := a.seen[key]; dup {
			dropped++
			continue
		}
		a.seen[key] = struct{}{}
		a.rows = append(a.rows, row)
	}
	return dropped
}

// Len returns the number of unique rows collected so far.
func (a *Accumulator) Len() int {
	return len(a.rows)
}

// Trim cuts the result set to at most n rows, keeping the head in
// accumulation order.
func (a *Accumulator) Trim(n int) {
	if n < 0 {
		n = 0
	}
	if len(a.rows) > n {
		a.rows = a.rows[:n]
	}
}

// Rows returns the accumulated rows.
func (a *Accumulator) Rows() []models.Row {
	return a.rows
}
