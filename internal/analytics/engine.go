package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/synthworks/tabsynth/pkg/models"
)

// ColumnStats holds descriptive statistics for one column.
type ColumnStats struct {
	Name     string  `json:"name"`
	Count    int     `json:"count"`
	Nulls    int     `json:"nulls"`
	Distinct int     `json:"distinct"`
	Numeric  bool    `json:"numeric"`
	Mean     float64 `json:"mean,omitempty"`
	StdDev   float64 `json:"std_dev,omitempty"`
	Min      float64 `json:"min,omitempty"`
	Max      float64 `json:"max,omitempty"`
	// TopValues lists the most frequent values of a categorical column.
	TopValues []ValueCount `json:"top_values,omitempty"`
}

// ValueCount is one categorical value with its frequency.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// DatasetStats holds descriptive statistics for a whole dataset.
type DatasetStats struct {
	DatasetID   string        `json:"dataset_id"`
	Name        string        `json:"name"`
	RowCount    int           `json:"row_count"`
	ColumnCount int           `json:"column_count"`
	Columns     []ColumnStats `json:"columns"`
}

// topValueLimit caps how many categorical values are reported per column.
const topValueLimit = 5

// Describe computes descriptive statistics for a dataset.
func Describe(dataset *models.Dataset) *DatasetStats {
	stats := &DatasetStats{
		DatasetID:   dataset.ID,
		Name:        dataset.Name,
		RowCount:    dataset.RowCount(),
		ColumnCount: len(dataset.Columns),
	}

	for _, name := range dataset.Columns {
		stats.Columns = append(stats.Columns, describeColumn(dataset, name))
	}
	return stats
}

func describeColumn(dataset *models.Dataset, name string) ColumnStats {
	col := ColumnStats{Name: name, Numeric: true}

	var sum, sumSq float64
	var min, max float64
	numericCount := 0
	counts := make(map[string]int)

	for _, row := range dataset.Rows {
		v := row[name]
		if v == nil {
			col.Nulls++
			continue
		}
		col.Count++
		counts[models.FormatValue(v)]++

		var f float64
		switch tv := v.(type) {
		case int64:
			f = float64(tv)
		case float64:
			f = tv
		default:
			col.Numeric = false
			continue
		}
		if numericCount == 0 {
			min, max = f, f
		}
		if f < min {
			min = f
		}
		if f > max {
			max = f
		}
		sum += f
		sumSq += f * f
		numericCount++
	}

	col.Distinct = len(counts)

	if col.Numeric && numericCount > 0 {
		col.Mean = sum / float64(numericCount)
		if variance := sumSq/float64(numericCount) - col.Mean*col.Mean; variance > 0 {
			col.StdDev = math.Sqrt(variance)
		}
		col.Min = min
		col.Max = max
	} else {
		col.Numeric = false
		col.TopValues = topValues(counts, topValueLimit)
	}

	return col
}

func topValues(counts map[string]int, limit int) []ValueCount {
	values := make([]ValueCount, 0, len(counts))
	for v, c := range counts {
		values = append(values, ValueCount{Value: v, Count: c})
	}
	sort.Slice(values, func(i, j int) bool {
		if values[i].Count != values[j].Count {
			return values[i].Count > values[j].Count
		}
		return values[i].Value < values[j].Value
	})
	if len(values) > limit {
		values = values[:limit]
	}
	return values
}

// ContextBlock renders the statistics as a plain-text block suitable for
// prepending to a text-generation oracle prompt.
func (s *DatasetStats) ContextBlock() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dataset %q: %d rows, %d columns.\n", s.Name, s.RowCount, s.ColumnCount)
	for _, col := range s.Columns {
		if col.Numeric {
			fmt.Fprintf(&b, "- %s (numeric): count=%d nulls=%d mean=%.4g std=%.4g min=%.4g max=%.4g\n",
				col.Name, col.Count, col.Nulls, col.Mean, col.StdDev, col.Min, col.Max)
			continue
		}
		tops := make([]string, 0, len(col.TopValues))
		for _, tv := range col.TopValues {
			tops = append(tops, fmt.Sprintf("%s (%d)", tv.Value, tv.Count))
		}
		fmt.Fprintf(&b, "- %s (categorical): count=%d nulls=%d distinct=%d top=[%s]\n",
			col.Name, col.Count, col.Nulls, col.Distinct, strings.Join(tops, ", "))
	}
	return b.String()
}
