package heuristics

import "strings"

// NormalizeKey lowercases a key and strips every character that is not a
// letter or digit, so "Email Address", "email_address", and "emailAddress"
// all normalize to "emailaddress". This is the shared comparison form the
// JSON and section resolvers use to match a target field against keys found
// in the input (spec.md §4.6: "normalized target (including collapsed and
// underscored variants)").
func NormalizeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		}
	}
	return b.String()
}

// KeyVariants returns the distinct normalized and underscored forms of key,
// the spellings the loose key-value resolver matches labels against.
func KeyVariants(key string) []string {
	normalized := NormalizeKey(key)
	underscored := toSnake(key)
	variants := []string{normalized}
	if underscored != normalized {
		variants = append(variants, underscored)
	}
	return variants
}

func toSnake(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	prevLower := false
	for _, r := range s {
		switch {
		case r == ' ' || r == '-':
			b.WriteByte('_')
			prevLower = false
		case r >= 'A' && r <= 'Z':
			if prevLower {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			prevLower = false
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevLower = true
		case r == '_':
			b.WriteByte('_')
			prevLower = false
		}
	}
	return strings.Trim(b.String(), "_")
}
