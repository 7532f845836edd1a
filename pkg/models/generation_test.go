package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnomalyRules(t *testing.T) {
	rules, err := ParseAnomalyRules(`[{"column":"amount","type":"fixed","value":-1,"ratio":0.1},{"column":"status","type":"null"}]`)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	assert.Equal(t, "amount", rules[0].Column)
	assert.Equal(t, AnomalyFixedValue, rules[0].Kind)
	// Whole JSON numbers normalize to int64 so they compare like CSV cells.
	assert.Equal(t, int64(-1), rules[0].Value)
	assert.Equal(t, 0.1, rules[0].Ratio)

	assert.Equal(t, AnomalyNullify, rules[1].Kind)
	assert.Equal(t, DefaultAnomalyRatio, rules[1].Ratio)
}

func TestParseAnomalyRulesEmpty(t *testing.T) {
	rules, err := ParseAnomalyRules("")
	require.NoError(t, err)
	assert.Nil(t, rules)
}

func TestParseAnomalyRulesInvalid(t *testing.T) {
	_, err := ParseAnomalyRules("{not json")
	require.Error(t, err)
}

func TestAnomalyRuleValidate(t *testing.T) {
	valid := AnomalyRule{Column: "a", Kind: AnomalyFixedValue, Value: int64(1), Ratio: 0.5}
	assert.NoError(t, valid.Validate())

	assert.Error(t, (&AnomalyRule{Kind: AnomalyNullify, Ratio: 0.5}).Validate(), "missing column")
	assert.Error(t, (&AnomalyRule{Column: "a", Kind: AnomalyFixedValue, Ratio: 0.5}).Validate(), "fixed without value")
	assert.Error(t, (&AnomalyRule{Column: "a", Kind: "spike", Ratio: 0.5}).Validate(), "unknown kind")
	assert.Error(t, (&AnomalyRule{Column: "a", Kind: AnomalyNullify, Ratio: 1.5}).Validate(), "ratio above 1")
}

func TestGenerationRequestValidate(t *testing.T) {
	assert.NoError(t, (&GenerationRequest{TargetCount: 10}).Validate())
	assert.NoError(t, (&GenerationRequest{TargetCount: 0}).Validate(), "zero target is legal")
	assert.NoError(t, (&GenerationRequest{TargetCount: -5}).Validate(), "negative target short-circuits, not an error")
	assert.Error(t, (&GenerationRequest{TargetCount: 10, MaxAttempts: -1}).Validate())

	var nilReq *GenerationRequest
	assert.Error(t, nilReq.Validate())
}

func TestGenerationState(t *testing.T) {
	state := &GenerationState{TargetCount: 100, MaxAttempts: 10}

	assert.Equal(t, 100, state.Needed())
	assert.False(t, state.Exhausted())

	state.RowsCollected = 60
	assert.Equal(t, 40, state.Needed())

	state.RowsCollected = 120
	assert.Equal(t, 0, state.Needed(), "needed never goes negative")

	state.AttemptsMade = 10
	assert.True(t, state.Exhausted())
}

func TestGenerationResultDataset(t *testing.T) {
	result := &GenerationResult{
		RequestID: "r1",
		Status:    StatusSuccess,
		Columns:   []string{"a"},
		Rows:      []Row{{"a": int64(1)}},
		RowCount:  1,
	}

	ds := result.Dataset("synthetic")
	assert.Equal(t, "r1", ds.ID)
	assert.Equal(t, "synthetic", ds.Name)
	assert.Equal(t, 1, ds.RowCount())
}
