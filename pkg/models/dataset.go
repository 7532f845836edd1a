package models

import (
	"time"
)

// Row maps column names to cell values. Column order lives on the enclosing
// Batch or Dataset schema.
type Row map[string]Value

// Clone returns a shallow copy of the row. Cell values are scalars, so a
// shallow copy is a full copy.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Batch is an ordered sequence of rows sharing one schema, produced by a
// single Row Source call.
type Batch struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// NewBatch creates an empty batch with the given schema.
func NewBatch(columns []string, capacity int) *Batch {
	return &Batch{
		Columns: columns,
		Rows:    make([]Row, 0, capacity),
	}
}

// Len returns the number of rows in the batch.
func (b *Batch) Len() int {
	return len(b.Rows)
}

// HasColumn reports whether the batch schema contains the named column.
func (b *Batch) HasColumn(name string) bool {
	for _, c := range b.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Dataset is a named rectangular table. It serves both as the immutable
// original reference table for leakage checks and as the generated output
// artifact. The generation loop never mutates an original dataset.
type Dataset struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Columns   []string  `json:"columns"`
	Rows      []Row     `json:"rows"`
	CreatedAt time.Time `json:"created_at"`
}

// RowCount returns the number of rows.
func (d *Dataset) RowCount() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// IsEmpty reports whether the dataset holds no rows. A nil dataset is empty.
func (d *Dataset) IsEmpty() bool {
	return d.RowCount() == 0
}

// CommonColumns returns the columns shared by the dataset and the given
// schema, in the dataset's column order. The result is order-independent as a
// set: callers must treat an empty result as "leakage cannot be checked".
func (d *Dataset) CommonColumns(schema []string) []string {
	if d == nil {
		return nil
	}
	other := make(map[string]struct{}, len(schema))
	for _, c := range schema {
		other[c] = struct{}{}
	}
	var common []string
	for _, c := range d.Columns {
		if _, ok := other[c]; ok {
			common = append(common, c)
		}
	}
	return common
}

// KeySet builds the set of row keys over the given columns. The leakage
// filter probes this set once per candidate row.
func (d *Dataset) KeySet(columns []string) map[string]struct{} {
	keys := make(map[string]struct{}, d.RowCount())
	for _, row := range d.Rows {
		keys[RowKey(row, columns)] = struct{}{}
	}
	return keys
}
