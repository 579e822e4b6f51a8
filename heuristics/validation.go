package heuristics

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/parserator/kernel/types"
)

// patterns maps each ValidationType to the regular expression the typed
// regex resolver (and the section resolver, when extracting from a scored
// section body) uses to pull a matching substring out of free text. Array
// types have no entry here; MatchValue hands them to matchArray, which
// splits on commas, semicolons and newlines.
var patterns = map[types.ValidationType]*regexp.Regexp{
	types.ValidationEmail:      regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`),
	types.ValidationPhone:      regexp.MustCompile(`\+?\d{1,3}[\s.\-]?\(?\d{2,4}\)?[\s.\-]?\d{3,4}[\s.\-]?\d{3,4}`),
	types.ValidationURL:        regexp.MustCompile(`https?://[^\s"'<>]+`),
	types.ValidationISODate:    regexp.MustCompile(`\d{4}-\d{2}-\d{2}(T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+\-]\d{2}:\d{2})?)?`),
	types.ValidationDate:       regexp.MustCompile(`\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4}|(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}`),
	types.ValidationCurrency:   regexp.MustCompile(`[$€£¥]\s?-?\d[\d,]*(\.\d+)?|-?\d[\d,]*(\.\d+)?\s?(USD|EUR|GBP|JPY)`),
	types.ValidationPercentage: regexp.MustCompile(`-?\d+(\.\d+)?\s?%`),
	types.ValidationNumber:     regexp.MustCompile(`-?\d[\d,]*(\.\d+)?`),
	types.ValidationBoolean:    regexp.MustCompile(`(?i)\b(true|false|yes|no)\b`),
	types.ValidationName:       regexp.MustCompile(`[A-Z][a-z'-]+(\s+[A-Z][a-z'-]+){1,3}`),
	types.ValidationAddress:    regexp.MustCompile(`\d+\s+[A-Za-z0-9.'\s]+,\s*[A-Za-z.\s]+,?\s*[A-Z]{2}\s*\d{5}(-\d{4})?`),
}

// MatchValue applies the regex matcher for vt to input and returns the
// first match, normalized where the validation type defines a canonical
// normalization (booleans to "true"/"false"; everything else verbatim).
func MatchValue(vt types.ValidationType, input string) (string, bool) {
	if vt == types.ValidationStringArray || vt == types.ValidationNumberArray {
		return matchArray(vt, input)
	}
	re, ok := patterns[vt]
	if !ok {
		return "", false
	}
	m := re.FindString(input)
	if m == "" {
		return "", false
	}
	if vt == types.ValidationBoolean {
		return normalizeBoolean(m), true
	}
	return strings.TrimSpace(m), true
}

func normalizeBoolean(m string) string {
	switch strings.ToLower(m) {
	case "true", "yes":
		return "true"
	default:
		return "false"
	}
}

func matchArray(vt types.ValidationType, input string) (string, bool) {
	elementRe := regexp.MustCompile(`[^,;\n]+`)
	matches := elementRe.FindAllString(input, -1)
	var kept []string
	for _, m := range matches {
		trimmed := strings.TrimSpace(m)
		if trimmed == "" {
			continue
		}
		if vt == types.ValidationNumberArray {
			if _, err := strconv.ParseFloat(strings.ReplaceAll(trimmed, ",", ""), 64); err != nil {
				continue
			}
		}
		kept = append(kept, trimmed)
	}
	if len(kept) == 0 {
		return "", false
	}
	return strings.Join(kept, ", "), true
}

// CoerceValue converts the raw string a resolver extracted into the typed
// Go value parsedData should carry for vt (numbers become float64, booleans
// become bool, arrays become []string), leaving everything else as string.
func CoerceValue(vt types.ValidationType, raw string) any {
	switch vt {
	case types.ValidationNumber, types.ValidationCurrency, types.ValidationPercentage:
		cleaned := strings.Map(func(r rune) rune {
			switch r {
			case '$', '€', '£', '¥', ',', '%', ' ':
				return -1
			default:
				return r
			}
		}, raw)
		if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
			return f
		}
		return raw
	case types.ValidationBoolean:
		return raw == "true"
	case types.ValidationStringArray:
		parts := strings.Split(raw, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			out = append(out, strings.TrimSpace(p))
		}
		return out
	case types.ValidationNumberArray:
		parts := strings.Split(raw, ",")
		out := make([]float64, 0, len(parts))
		for _, p := range parts {
			if f, err := strconv.ParseFloat(strings.TrimSpace(p), 64); err == nil {
				out = append(out, f)
			}
		}
		return out
	default:
		return raw
	}
}

// BaselineConfidence returns the confidence a deterministic resolver should
// report for a successful match of the given validation type. Narrowly
// defined types (email, iso_date, currency, percentage) that are unlikely to
// false-positive score higher than the broad fallback types (string,
// object, custom).
func BaselineConfidence(vt types.ValidationType) float64 {
	switch vt {
	case types.ValidationEmail, types.ValidationISODate, types.ValidationURL, types.ValidationCurrency, types.ValidationPercentage:
		return 0.9
	case types.ValidationPhone, types.ValidationDate, types.ValidationNumber, types.ValidationBoolean, types.ValidationStringArray, types.ValidationNumberArray:
		return 0.8
	case types.ValidationAddress, types.ValidationName:
		return 0.7
	default:
		return 0.6
	}
}
