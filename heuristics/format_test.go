package heuristics

import (
	"testing"

	"github.com/parserator/kernel/types"
	"github.com/stretchr/testify/assert"
)

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  types.DetectedFormat
	}{
		{"json object", `{"a": 1}`, types.FormatJSON},
		{"json array", `[1, 2, 3]`, types.FormatJSON},
		{"html", `<div class="x">hi</div>`, types.FormatHTML},
		{"csv", "a,b,c\n1,2,3\n4,5,6", types.FormatCSV},
		{"text", "Name: Ada\nEmail: ada@example.com", types.FormatText},
		{"empty", "", types.FormatText},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DetectFormat(tc.input))
		})
	}
}

func TestEstimateTokensCaps(t *testing.T) {
	got := EstimateTokens(10_000_000, 500)
	assert.Equal(t, maxEstimatedTokens, got)
}

func TestEstimateComplexity(t *testing.T) {
	assert.Equal(t, types.ComplexityLow, EstimateComplexity(2, types.FormatJSON))
	assert.Equal(t, types.ComplexityMedium, EstimateComplexity(6, types.FormatText))
	assert.Equal(t, types.ComplexityHigh, EstimateComplexity(20, types.FormatText))
}
