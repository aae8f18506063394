package generation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateResult_Valid(t *testing.T) {
	raw := `{
		"can_answer": true,
		"query": "SELECT AVG(amount) FROM orders",
		"explanation": "average of the amount column",
		"confidence": 0.9,
		"assumptions": ["amount is in a single currency"],
		"tables_used": ["orders"]
	}`

	result, err := ValidateResult(raw, sampleSnapshot())
	require.NoError(t, err)
	assert.True(t, result.CanAnswer)
	assert.Equal(t, "SELECT AVG(amount) FROM orders", result.Query)
	assert.InDelta(t, 0.9, result.Confidence, 1e-9)
}

func TestValidateResult_StripsMarkdownFences(t *testing.T) {
	raw := "```json\n{\"can_answer\": true, \"query\": \"SELECT 1\", \"confidence\": 0.5, \"tables_used\": [\"orders\"]}\n```"
	result, err := ValidateResult(raw, sampleSnapshot())
	require.NoError(t, err)
	assert.True(t, result.CanAnswer)
}

func TestValidateResult_UngroundedReferenceDowngrades(t *testing.T) {
	raw := `{
		"can_answer": true,
		"query": "SELECT * FROM revenue",
		"confidence": 0.99,
		"tables_used": ["revenue"]
	}`

	result, err := ValidateResult(raw, sampleSnapshot())
	require.NoError(t, err, "grounding violations must not fail the step")
	assert.False(t, result.CanAnswer, "downgraded regardless of declared confidence")
	assert.Empty(t, result.Query, "query must be unusable when can_answer is false")
	assert.Contains(t, result.Reason, "revenue")
}

func TestValidateResult_QualifiedReferenceIsGrounded(t *testing.T) {
	raw := `{
		"can_answer": true,
		"query": "SELECT 1",
		"confidence": 0.8,
		"tables_used": ["\"main\".\"orders\""]
	}`
	result, err := ValidateResult(raw, sampleSnapshot())
	require.NoError(t, err)
	assert.True(t, result.CanAnswer)
}

func TestValidateResult_CannotAnswerClearsQuery(t *testing.T) {
	raw := `{"can_answer": false, "reason": "no pricing data", "query": "SELECT 1", "confidence": 0.2}`
	result, err := ValidateResult(raw, sampleSnapshot())
	require.NoError(t, err)
	assert.False(t, result.CanAnswer)
	assert.Empty(t, result.Query)
	assert.Equal(t, "no pricing data", result.Reason)
}

func TestValidateResult_ShapeFailures(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not json", "this is not json"},
		{"missing confidence", `{"can_answer": true, "query": "SELECT 1"}`},
		{"confidence above one", `{"can_answer": true, "query": "SELECT 1", "confidence": 1.5}`},
		{"confidence below zero", `{"can_answer": true, "query": "SELECT 1", "confidence": -0.1}`},
		{"missing query when answerable", `{"can_answer": true, "confidence": 0.5}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateResult(tc.raw, sampleSnapshot())
			var malformed *MalformedGenerationResult
			require.True(t, errors.As(err, &malformed), "expected MalformedGenerationResult, got %v", err)
		})
	}
}
