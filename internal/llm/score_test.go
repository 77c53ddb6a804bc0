package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFitAnalysis_ValidJSON(t *testing.T) {
	raw := `{
		"fitScore": 4,
		"reasoning": "Strong overlap on backend experience.",
		"strengths": ["Go", "distributed systems"],
		"gaps": ["no fintech background"],
		"recommendation": "apply"
	}`

	got, err := parseFitAnalysis(raw)
	require.NoError(t, err)
	assert.Equal(t, 4, got.FitScore)
	assert.Equal(t, "Strong overlap on backend experience.", got.Reasoning)
	assert.Equal(t, []string{"Go", "distributed systems"}, got.Strengths)
	assert.Equal(t, []string{"no fintech background"}, got.Gaps)
	assert.Equal(t, "apply", got.Recommendation)
}

func TestParseFitAnalysis_ScoreClampedTo3(t *testing.T) {
	for _, raw := range []string{
		`{"fitScore": 0, "reasoning": "x"}`,
		`{"fitScore": 9, "reasoning": "x"}`,
		`{"fitScore": -2, "reasoning": "x"}`,
	} {
		got, err := parseFitAnalysis(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, 3, got.FitScore, raw)
	}
}

func TestParseFitAnalysis_MissingReasoningGetsDefault(t *testing.T) {
	got, err := parseFitAnalysis(`{"fitScore": 2}`)
	require.NoError(t, err)
	assert.Equal(t, 2, got.FitScore)
	assert.NotEmpty(t, got.Reasoning)
}

func TestParseFitAnalysis_FieldRecoveryOnLooseTypes(t *testing.T) {
	// fitScore as a string breaks strict decoding into the int field; the
	// field-by-field fallback still recovers the document.
	raw := `{"fitScore": "5", "reasoning": "great match", "strengths": ["Go"], "recommendation": "apply"}`

	got, err := parseFitAnalysis(raw)
	require.NoError(t, err)
	assert.Equal(t, 5, got.FitScore)
	assert.Equal(t, "great match", got.Reasoning)
	assert.Equal(t, []string{"Go"}, got.Strengths)
	assert.Equal(t, "apply", got.Recommendation)
}

func TestParseFitAnalysis_GarbageInput(t *testing.T) {
	_, err := parseFitAnalysis("I could not produce JSON today, sorry.")
	assert.Error(t, err)
}
