package synthesis

import (
	"github.com/sirupsen/logrus"

	"github.com/synthworks/tabsynth/pkg/models"
)

// LeakageFilter removes candidate rows that exactly reproduce a record from
// the original dataset on the column set common to both schemas. Equality is
// exact value equality, no numeric tolerance. Multiple original rows matching
// one candidate still remove that candidate exactly once.
type LeakageFilter struct {
	logger *logrus.Logger
}

// NewLeakageFilter creates a leakage filter.
func NewLeakageFilter(logger *logrus.Logger) *LeakageFilter {
	if logger == nil {
		logger = logrus.New()
	}
	return &LeakageFilter{logger: logger}
}

// Filter returns the batch with all leaking rows removed, preserving the
// order of the remaining rows, plus the number of rows removed.
//
// A nil or empty original dataset means no privacy check was requested and
// the batch passes through untouched. When the candidate and original schemas
// share zero columns the check cannot run at all; that situation bypasses the
// privacy guarantee entirely, so it is logged loudly on every affected batch
// rather than silently ignored.
func (f *LeakageFilter) Filter(batch *models.Batch, original *models.Dataset) (*models.Batch, int) {
	if batch == nil || batch.Len() == 0 {
		return batch, 0
	}
	if original.IsEmpty() {
		return batch, 0
	}

	common := original.CommonColumns(batch.Columns)
	if len(common) == 0 {
		f.logger.WithFields(logrus.Fields{
			"batch_columns":    batch.Columns,
			"original_columns": original.Columns,
		}).Warn("Leakage check skipped: candidate and original schemas share no columns; privacy guarantee is NOT enforced")
		return batch, 0
	}

	originalKeys := original.KeySet(common)

	kept := make([]models.Row, 0, batch.Len())
	removed := 0
	for _, row := range batch.Rows {
		if _, leaked := originalKeys[models.RowKey(row, common)]; leaked {
			removed++
			continue
		}
		kept = append(kept, row)
	}

	if removed > 0 {
		f.logger.WithFields(logrus.Fields{
			"removed":        removed,
			"common_columns": len(common),
		}).Warn("Detected leaked records, removing")
	} else {
		f.logger.Debug("No leakage detected")
	}

	return &models.Batch{Columns: batch.Columns, Rows: kept}, removed
}
