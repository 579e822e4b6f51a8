package resolver

import (
	"context"
	"regexp"
	"strings"

	"github.com/parserator/kernel/heuristics"
	"github.com/parserator/kernel/types"
)

// looseLineRe matches any "key: value" or "key = value" line, more
// permissive than section.go's labelLineRe since LooseKVResolver runs
// against the whole input, not a pre-scored section body.
var looseLineRe = regexp.MustCompile(`(?m)^\s*([A-Za-z0-9 _/.'-]{1,64})\s*[:=]\s*(.+)$`)

// LooseKVResolver scans the entire input line by line for a "key: value"
// pattern whose key normalizes (or snake-cases) to the target field, a
// fallback for flat key-value text that doesn't segment into sections.
type LooseKVResolver struct{}

func (LooseKVResolver) Name() string { return "loose_kv" }

func (LooseKVResolver) Resolve(_ context.Context, input string, step types.SearchStep) (Result, error) {
	target := heuristics.NormalizeKey(step.TargetKey)
	for _, m := range looseLineRe.FindAllStringSubmatch(input, -1) {
		key, val := m[1], strings.TrimSpace(m[2])
		if !matchesVariant(key, target) {
			continue
		}
		raw, matched := heuristics.MatchValue(step.ValidationType, val)
		if !matched {
			raw = val
		}
		return Result{
			Defined:    true,
			Value:      heuristics.CoerceValue(step.ValidationType, raw),
			Confidence: heuristics.BaselineConfidence(step.ValidationType) * 0.75,
		}, nil
	}
	return skip, nil
}

func matchesVariant(key, target string) bool {
	for _, v := range heuristics.KeyVariants(key) {
		if v == target {
			return true
		}
	}
	return heuristics.NormalizeKey(key) == target
}
