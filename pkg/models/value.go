package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is a single table cell: nil, int64, float64, bool or string.
// Values coming out of CSV parsing and out of synthesizers are normalized
// through ParseValue/CanonicalValue so that equality checks compare the same
// representations on both sides.
type Value = interface{}

// nullToken marks a nil cell inside a row key. It uses a control character so
// it cannot collide with real CSV content.
const nullToken = "\x00null\x00"

// keySeparator joins canonical cell values into a row key.
const keySeparator = "\x1f"

// ParseValue converts a raw CSV field into a typed Value. Empty fields become
// nil. Integers are preferred over floats so that "100" compares equal across
// datasets regardless of which file it came from.
func ParseValue(field string) Value {
	if field == "" {
		return nil
	}
	if i, err := strconv.ParseInt(field, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(field, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(field); err == nil {
		return b
	}
	return field
}

// FormatValue renders a Value back into its CSV field representation.
// nil renders as the empty field.
func FormatValue(v Value) string {
	switch tv := v.(type) {
	case nil:
		return ""
	case string:
		return tv
	case int64:
		return strconv.FormatInt(tv, 10)
	case int:
		return strconv.Itoa(tv)
	case float64:
		return strconv.FormatFloat(tv, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(tv)
	default:
		return fmt.Sprintf("%v", tv)
	}
}

// CanonicalValue returns the representation used for exact-match comparison.
// The leakage filter and the accumulator both key rows with this encoding, so
// equality is exact value equality with no numeric tolerance.
func CanonicalValue(v Value) string {
	if v == nil {
		return nullToken
	}
	return FormatValue(v)
}

// RowKey builds a comparison key for row over the given columns, in the given
// column order. Columns absent from the row compare as nil.
func RowKey(row Row, columns []string) string {
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = CanonicalValue(row[col])
	}
	return strings.Join(parts, keySeparator)
}
