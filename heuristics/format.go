// Package heuristics implements the deterministic, non-LLM helpers shared by
// the architect and resolver registry: format detection, key normalization,
// section segmentation, validation-type pattern matchers, and token/
// complexity estimates. Nothing here calls out to a model; everything is a
// pure function of its input so both the heuristic architect and the
// default resolvers can share it without coordination.
package heuristics

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/parserator/kernel/types"
)

// DetectFormat classifies an input blob's shape. JSON is detected by a
// successful unmarshal of the trimmed input into any; HTML by the presence
// of a common HTML tag anywhere in the input; CSV-like text by a consistent delimiter across the
// first few lines; everything else is plain text.
func DetectFormat(input string) types.DetectedFormat {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return types.FormatText
	}
	if looksLikeJSON(trimmed) {
		return types.FormatJSON
	}
	if looksLikeHTML(trimmed) {
		return types.FormatHTML
	}
	if looksLikeCSV(trimmed) {
		return types.FormatCSV
	}
	return types.FormatText
}

func looksLikeJSON(trimmed string) bool {
	if len(trimmed) == 0 {
		return false
	}
	switch trimmed[0] {
	case '{', '[':
	default:
		return false
	}
	var v any
	return json.Unmarshal([]byte(trimmed), &v) == nil
}

var htmlTagRe = regexp.MustCompile(`(?i)<(html|body|div|span|table|p|ul|ol|h[1-6])[\s>]`)

func looksLikeHTML(trimmed string) bool {
	return htmlTagRe.MatchString(trimmed)
}

func looksLikeCSV(trimmed string) bool {
	lines := strings.Split(trimmed, "\n")
	check := lines
	if len(check) > 5 {
		check = check[:5]
	}
	if len(check) < 2 {
		return false
	}
	for _, delim := range []string{",", "\t", "|"} {
		if consistentDelimiterCount(check, delim) {
			return true
		}
	}
	return false
}

func consistentDelimiterCount(lines []string, delim string) bool {
	want := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := strings.Count(line, delim)
		if n == 0 {
			return false
		}
		if want == -1 {
			want = n
		} else if n != want {
			return false
		}
	}
	return want > 0
}

// EstimateComplexity buckets a plan's difficulty from its field count and
// the detected input format, per spec.md §4.4 ("Plan metadata captures...
// complexity bucket").
func EstimateComplexity(fieldCount int, format types.DetectedFormat) types.Complexity {
	switch {
	case fieldCount <= 3 && format == types.FormatJSON:
		return types.ComplexityLow
	case fieldCount <= 8:
		return types.ComplexityMedium
	default:
		return types.ComplexityHigh
	}
}

// EstimateTokens implements spec.md §4.4's token-cost estimate:
// ceil(len/4) + fields*32, capped so a single plan never reports an
// unbounded figure regardless of input size.
const maxEstimatedTokens = 128_000

func EstimateTokens(inputLen, fieldCount int) int {
	est := (inputLen+3)/4 + fieldCount*32
	if est > maxEstimatedTokens {
		return maxEstimatedTokens
	}
	return est
}
