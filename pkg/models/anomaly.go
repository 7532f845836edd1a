package models

import (
	"encoding/json"
	"fmt"
)

// AnomalyKind identifies the mutation an anomaly rule applies.
type AnomalyKind string

const (
	// AnomalyFixedValue overwrites the target column with a fixed value.
	AnomalyFixedValue AnomalyKind = "fixed"
	// AnomalyNullify clears the target column.
	AnomalyNullify AnomalyKind = "null"
)

// DefaultAnomalyRatio is the fraction of rows mutated when a rule does not
// specify one.
const DefaultAnomalyRatio = 0.05

// AnomalyRule describes one deliberate out-of-distribution mutation applied
// to a fraction of generated rows. Rules are applied in caller-supplied
// order; later rules win on indices they also select.
type AnomalyRule struct {
	Column string      `json:"column"`
	Kind   AnomalyKind `json:"type"`
	Value  Value       `json:"value,omitempty"`
	Ratio  float64     `json:"ratio,omitempty"`
}

// Normalize fills defaults. Parsed JSON numbers arrive as float64; fixed
// values are run through the same normalization as CSV fields so injected
// values compare consistently with dataset cells.
func (r *AnomalyRule) Normalize() {
	if r.Ratio == 0 {
		r.Ratio = DefaultAnomalyRatio
	}
	if f, ok := r.Value.(float64); ok && f == float64(int64(f)) {
		r.Value = int64(f)
	}
}

// Validate reports whether the rule is well formed. Column existence is
// checked per batch by the injector, not here, because the rule may legally
// reference a column absent from some schemas (it is then a no-op).
func (r *AnomalyRule) Validate() error {
	if r.Column == "" {
		return fmt.Errorf("anomaly rule: column is required")
	}
	switch r.Kind {
	case AnomalyFixedValue:
		if r.Value == nil {
			return fmt.Errorf("anomaly rule %q: fixed value rule requires a value", r.Column)
		}
	case AnomalyNullify:
	default:
		return fmt.Errorf("anomaly rule %q: unknown kind %q", r.Column, r.Kind)
	}
	if r.Ratio < 0 || r.Ratio > 1 {
		return fmt.Errorf("anomaly rule %q: ratio %v outside (0,1]", r.Column, r.Ratio)
	}
	return nil
}

// ParseAnomalyRules decodes a caller-supplied JSON list of anomaly rules,
// e.g. `[{"column":"amount","type":"fixed","value":-1,"ratio":0.1}]`.
// Defaults are filled; validation is left to the injector so that a single
// malformed rule is skipped rather than failing the run.
func ParseAnomalyRules(raw string) ([]AnomalyRule, error) {
	if raw == "" {
		return nil, nil
	}
	var rules []AnomalyRule
	if err := json.Unmarshal([]byte(raw), &rules); err != nil {
		return nil, fmt.Errorf("failed to parse anomaly rules: %w", err)
	}
	for i := range rules {
		rules[i].Normalize()
	}
	return rules, nil
}
