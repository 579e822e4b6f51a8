// Package extractor implements the second pipeline stage: executing a
// SearchPlan's steps against the full input via a resolver.Registry,
// producing parsed data, per-field confidences, and diagnostics. Grounded
// on the teacher's activity-execution loop in runtime/agent/engine (drive a
// fixed list of units of work, collect results, never let one failure stop
// the rest).
package extractor

import (
	"context"
	"math"

	"github.com/parserator/kernel/resolver"
	"github.com/parserator/kernel/types"
)

// Extractor runs a SearchPlan against the full input.
type Extractor interface {
	Extract(ctx context.Context, plan types.SearchPlan, input string) (Result, error)
}

// Result is what an Extractor produces for one plan execution.
type Result struct {
	Data        map[string]any
	Confidence  float64
	Diagnostics []types.ParseDiagnostic
	Tokens      int
	Missing     []string // required fields left unresolved
}

// Heuristic drives a plan's steps sequentially through a resolver.Registry.
// Strategy on the plan is advisory (spec.md §3: "Sequential execution is
// always correct"); Heuristic always executes in order regardless of the
// hint, leaving a future parallel/adaptive executor to the registry's own
// resolvers if they choose to fan out internally.
type Heuristic struct {
	registry *resolver.Registry
}

// NewHeuristic constructs a Heuristic extractor bound to registry.
func NewHeuristic(registry *resolver.Registry) *Heuristic {
	return &Heuristic{registry: registry}
}

func (h *Heuristic) Extract(ctx context.Context, plan types.SearchPlan, input string) (Result, error) {
	data := make(map[string]any, len(plan.Steps))
	var diags []types.ParseDiagnostic
	var missing []string
	var confidenceSum float64
	var tokens int

	for _, step := range plan.Steps {
		res, fieldDiags, err := h.registry.ResolveField(ctx, input, step)
		diags = append(diags, fieldDiags...)
		if err != nil {
			diags = append(diags, types.ParseDiagnostic{
				Field:    step.TargetKey,
				Stage:    types.StageExtractor,
				Message:  err.Error(),
				Severity: types.SeverityError,
			})
			if step.IsRequired {
				missing = append(missing, step.TargetKey)
			} else {
				confidenceSum += 0.2
			}
			continue
		}
		tokens += res.Tokens
		if !res.Defined {
			if step.IsRequired {
				missing = append(missing, step.TargetKey)
				diags = append(diags, types.ParseDiagnostic{
					Field:    step.TargetKey,
					Stage:    types.StageExtractor,
					Message:  "required field could not be resolved by any resolver in the chain",
					Severity: types.SeverityError,
				})
				confidenceSum += res.Confidence
			} else {
				confidenceSum += math.Max(res.Confidence, 0.2)
				diags = append(diags, types.ParseDiagnostic{
					Field:    step.TargetKey,
					Stage:    types.StageExtractor,
					Message:  "optional field not found",
					Severity: types.SeverityInfo,
				})
			}
			continue
		}
		data[step.TargetKey] = res.Value
		floor := 0.5
		if step.IsRequired {
			floor = 0.7
		}
		confidenceSum += math.Max(res.Confidence, floor)
	}

	var overall float64
	if len(plan.Steps) > 0 {
		overall = math.Min(1, confidenceSum/float64(len(plan.Steps)))
	}

	return Result{
		Data:        data,
		Confidence:  overall,
		Diagnostics: diags,
		Tokens:      tokens + int(math.Max(72, math.Round(float64(plan.Metadata.EstimatedTokens)*0.7))),
		Missing:     missing,
	}, nil
}
