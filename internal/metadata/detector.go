package metadata

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/synthworks/tabsynth/pkg/models"
)

// ColumnKind classifies a column for model fitting.
type ColumnKind string

const (
	KindNumeric     ColumnKind = "numeric"
	KindCategorical ColumnKind = "categorical"
)

// ColumnMetadata describes one detected column.
type ColumnMetadata struct {
	Name    string     `json:"name"`
	Kind    ColumnKind `json:"kind"`
	Integer bool       `json:"integer,omitempty"`
	// PIIType is non-empty when the column name matches a sensitive-attribute
	// pattern. PII columns get fully synthetic surrogate values instead of
	// resampled real ones.
	PIIType string `json:"pii_type,omitempty"`
}

// TableMetadata is the detected schema for a dataset.
type TableMetadata struct {
	Columns []ColumnMetadata `json:"columns"`
}

// Column returns the metadata for a named column, or nil.
func (m *TableMetadata) Column(name string) *ColumnMetadata {
	for i := range m.Columns {
		if m.Columns[i].Name == name {
			return &m.Columns[i]
		}
	}
	return nil
}

// piiPattern maps a column-name substring to the surrogate type generated for
// it. Patterns are checked in order; the first match wins. More specific
// patterns come before the generic ones they contain.
type piiPattern struct {
	substring string
	piiType   string
}

var piiPatterns = []piiPattern{
	{"email", "email"},
	{"mail", "email"},
	{"phone", "phone_number"},
	{"tel", "phone_number"},
	{"ssn", "ssn"},
	{"social", "ssn"},
	{"card", "credit_card_number"},
	{"credit", "credit_card_number"},
	{"iban", "iban"},
	{"address", "address"},
	{"city", "city"},
	{"country", "country"},
	{"first_name", "first_name"},
	{"last_name", "last_name"},
	{"name", "person_name"},
}

// Detector infers column kinds and PII tags from a dataset before training.
type Detector struct {
	logger *logrus.Logger
}

// NewDetector creates a detector.
func NewDetector(logger *logrus.Logger) *Detector {
	if logger == nil {
		logger = logrus.New()
	}
	return &Detector{logger: logger}
}

// Detect scans the dataset and classifies every column. A column is numeric
// when every non-null cell is an int64 or float64; integer when every numeric
// cell is an int64. Everything else is categorical. Non-numeric columns whose
// name matches a PII pattern are tagged for fully synthetic generation.
func (d *Detector) Detect(dataset *models.Dataset) *TableMetadata {
	meta := &TableMetadata{Columns: make([]ColumnMetadata, 0, len(dataset.Columns))}

	for _, name := range dataset.Columns {
		col := ColumnMetadata{Name: name, Kind: KindNumeric, Integer: true}

		seen := false
		for _, row := range dataset.Rows {
			v := row[name]
			if v == nil {
				continue
			}
			seen = true
			switch v.(type) {
			case int64:
			case float64:
				col.Integer = false
			default:
				col.Kind = KindCategorical
				col.Integer = false
			}
			if col.Kind == KindCategorical {
				break
			}
		}
		if !seen {
			// All-null columns carry no distribution; treat as categorical.
			col.Kind = KindCategorical
			col.Integer = false
		}

		if col.Kind != KindNumeric {
			if piiType := matchPII(name); piiType != "" {
				col.PIIType = piiType
				d.logger.WithFields(logrus.Fields{
					"column":   name,
					"pii_type": piiType,
				}).Info("Flagged column as PII, will generate fully synthetic values")
			}
		}

		meta.Columns = append(meta.Columns, col)
	}

	return meta
}

func matchPII(column string) string {
	lower := strings.ToLower(column)
	for _, p := range piiPatterns {
		if strings.Contains(lower, p.substring) {
			return p.piiType
		}
	}
	return ""
}
