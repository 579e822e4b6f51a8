package heuristics

import (
	"regexp"
	"strings"
)

// Section is a contiguous, heading-delimited region of non-JSON input text.
type Section struct {
	Heading string
	Body    string
	// Start/End are line offsets into the original input, inclusive-start,
	// exclusive-end, so callers can report which section a match came from.
	Start, End int
}

var (
	// trailingColonHeading matches a short line ending in a colon, e.g. "Contact Info:".
	trailingColonHeading = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9 /&'-]{0,48}:\s*$`)
	// allCapsHeading matches a short all-caps line, e.g. "CONTACT INFO".
	allCapsHeading = regexp.MustCompile(`^[A-Z][A-Z0-9 /&'-]{2,48}$`)
	// titleCaseHeading matches a short Title Case line with no terminal punctuation.
	titleCaseHeading = regexp.MustCompile(`^([A-Z][a-z0-9'-]*\s?){1,6}$`)
)

// isHeading reports whether a trimmed line looks like a section heading
// using the three heuristics named in spec.md §4.6: a trailing colon, a
// short all-caps line, or a short Title Case line.
func isHeading(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || len(trimmed) > 64 {
		return false
	}
	if trailingColonHeading.MatchString(trimmed) {
		return true
	}
	if allCapsHeading.MatchString(trimmed) && strings.ToUpper(trimmed) == trimmed {
		return true
	}
	return titleCaseHeading.MatchString(trimmed)
}

// SegmentSections splits non-JSON input into heading-delimited sections. Any
// content before the first recognized heading becomes a section with an
// empty Heading, so callers always get full coverage of the input.
func SegmentSections(input string) []Section {
	lines := strings.Split(input, "\n")
	var sections []Section
	cur := Section{Start: 0}
	var body []string

	flush := func(end int) {
		cur.Body = strings.Join(body, "\n")
		cur.End = end
		if strings.TrimSpace(cur.Body) != "" || cur.Heading != "" {
			sections = append(sections, cur)
		}
		body = nil
	}

	for i, line := range lines {
		if isHeading(line) {
			flush(i)
			cur = Section{Heading: strings.TrimSuffix(strings.TrimSpace(line), ":"), Start: i}
			continue
		}
		body = append(body, line)
	}
	flush(len(lines))
	return sections
}

// ScoreSection scores how likely a section is to contain the value for a
// normalized target key, per spec.md §4.6: exact heading match scores
// highest, substring next, then token overlap; a `key:` labeled line inside
// the body adds a flat bonus regardless of heading score.
func ScoreSection(s Section, normalizedTarget string) float64 {
	var score float64
	normalizedHeading := NormalizeKey(s.Heading)
	switch {
	case normalizedHeading != "" && normalizedHeading == normalizedTarget:
		score = 1.0
	case normalizedHeading != "" && strings.Contains(normalizedHeading, normalizedTarget):
		score = 0.6
	case normalizedHeading != "" && strings.Contains(normalizedTarget, normalizedHeading):
		score = 0.5
	default:
		score = tokenOverlapScore(normalizedHeading, normalizedTarget)
	}
	if lineLabelMatches(s.Body, normalizedTarget) {
		score += 0.7
	}
	return score
}

func tokenOverlapScore(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	shorter, longer := a, b
	if len(a) > len(b) {
		shorter, longer = b, a
	}
	matched := 0
	for i := 0; i < len(shorter); i++ {
		if strings.ContainsRune(longer, rune(shorter[i])) {
			matched++
		}
	}
	return 0.2 * float64(matched) / float64(len(shorter))
}

var labelLineRe = regexp.MustCompile(`^\s*([A-Za-z0-9 _/-]{1,48})\s*[:=]\s*(.+)$`)

func lineLabelMatches(body string, normalizedTarget string) bool {
	for _, line := range strings.Split(body, "\n") {
		m := labelLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if NormalizeKey(m[1]) == normalizedTarget {
			return true
		}
	}
	return false
}

// ExtractLabeledValue returns the value of the first `label: value` (or
// `label = value`) line in body whose normalized label equals
// normalizedTarget, and whether one was found.
func ExtractLabeledValue(body string, normalizedTarget string) (string, bool) {
	for _, line := range strings.Split(body, "\n") {
		m := labelLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if NormalizeKey(m[1]) == normalizedTarget {
			return strings.TrimSpace(m[2]), true
		}
	}
	return "", false
}
