package resolver

import (
	"context"

	"github.com/parserator/kernel/heuristics"
	"github.com/parserator/kernel/types"
)

// TypedRegexResolver is the last deterministic resolver in the default
// chain: it scans the raw input for a substring matching the field's
// validation type, the broadest and lowest confidence of the non-LLM
// resolvers. For string, object and custom fields that no pattern matches,
// it falls back to the first "label: value" line whose label matches the
// normalized target key.
type TypedRegexResolver struct{}

func (TypedRegexResolver) Name() string { return "typed_regex" }

func (TypedRegexResolver) Resolve(_ context.Context, input string, step types.SearchStep) (Result, error) {
	raw, ok := heuristics.MatchValue(step.ValidationType, input)
	if !ok {
		switch step.ValidationType {
		case types.ValidationString, types.ValidationObject, types.ValidationCustom:
			raw, ok = heuristics.ExtractLabeledValue(input, heuristics.NormalizeKey(step.TargetKey))
		}
	}
	if !ok {
		return skip, nil
	}
	return Result{
		Defined:    true,
		Value:      heuristics.CoerceValue(step.ValidationType, raw),
		Confidence: heuristics.BaselineConfidence(step.ValidationType) * 0.6,
	}, nil
}
