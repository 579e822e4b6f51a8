package heuristics

import (
	"testing"

	"github.com/parserator/kernel/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchValueEmail(t *testing.T) {
	val, ok := MatchValue(types.ValidationEmail, "contact us at ada@example.com today")
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", val)
}

func TestMatchValueBooleanNormalizes(t *testing.T) {
	val, ok := MatchValue(types.ValidationBoolean, "Active: Yes")
	require.True(t, ok)
	assert.Equal(t, "true", val)
}

func TestMatchValueStringArray(t *testing.T) {
	val, ok := MatchValue(types.ValidationStringArray, "red, green, blue")
	require.True(t, ok)
	assert.Equal(t, "red, green, blue", val)
}

func TestCoerceValueNumber(t *testing.T) {
	got := CoerceValue(types.ValidationCurrency, "$1,234.50")
	assert.Equal(t, 1234.50, got)
}

func TestCoerceValueNumberArray(t *testing.T) {
	got := CoerceValue(types.ValidationNumberArray, "1, 2, 3")
	assert.Equal(t, []float64{1, 2, 3}, got)
}

func TestBaselineConfidenceOrdering(t *testing.T) {
	assert.Greater(t, BaselineConfidence(types.ValidationEmail), BaselineConfidence(types.ValidationString))
	assert.Greater(t, BaselineConfidence(types.ValidationPhone), BaselineConfidence(types.ValidationAddress))
}
