package resolver

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/parserator/kernel/heuristics"
	"github.com/parserator/kernel/types"
)

// JSONResolver resolves fields directly out of JSON input by normalized key
// match, the first resolver in the default chain since a JSON hit is exact
// and needs no further heuristics.
type JSONResolver struct{}

func (JSONResolver) Name() string { return "json" }

func (JSONResolver) Resolve(_ context.Context, input string, step types.SearchStep) (Result, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" || (trimmed[0] != '{' && trimmed[0] != '[') {
		return skip, nil
	}
	var doc any
	if err := json.Unmarshal([]byte(trimmed), &doc); err != nil {
		return skip, nil
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return skip, nil
	}
	target := heuristics.NormalizeKey(step.TargetKey)
	for k, v := range obj {
		if heuristics.NormalizeKey(k) != target {
			continue
		}
		return Result{
			Defined:    true,
			Value:      v,
			Confidence: 0.97,
		}, nil
	}
	return skip, nil
}
