// Package architect implements the plan-production stage of the pipeline:
// a Heuristic architect that builds a SearchPlan deterministically from a
// schema and sample (spec.md §4.4), and a Hybrid architect that layers an
// LLM rewrite pass on top of it (spec.md §4.5). Grounded on the teacher's
// registry-of-strategies pattern, generalized from service discovery to
// plan construction.
package architect

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/parserator/kernel/heuristics"
	"github.com/parserator/kernel/types"
)

// Architect produces a SearchPlan for a schema from a representative sample
// of the input.
type Architect interface {
	BuildPlan(ctx context.Context, schema map[string]types.SchemaField, sample, instructions string) (types.SearchPlan, []types.ParseDiagnostic, error)
}

// Heuristic builds a plan using only the deterministic helpers in package
// heuristics: no model call, no network, fully reproducible for a given
// schema/sample pair.
type Heuristic struct{}

// NewHeuristic constructs a Heuristic architect.
func NewHeuristic() *Heuristic { return &Heuristic{} }

func (h *Heuristic) BuildPlan(_ context.Context, schema map[string]types.SchemaField, sample, instructions string) (types.SearchPlan, []types.ParseDiagnostic, error) {
	if len(schema) == 0 {
		return types.SearchPlan{}, nil, fmt.Errorf("architect: schema has no fields")
	}

	format := heuristics.DetectFormat(sample)
	steps := make([]types.SearchStep, 0, len(schema))
	var diags []types.ParseDiagnostic

	for key, field := range schema {
		vt := types.DetectValidationType(key, field)
		required := !types.IsFieldOptional(field)
		steps = append(steps, types.SearchStep{
			TargetKey:         key,
			Description:       fieldDescription(field),
			SearchInstruction: fieldInstruction(key, field, instructions),
			ValidationType:    vt,
			IsRequired:        required,
		})
	}
	sortSteps(steps)

	complexity := heuristics.EstimateComplexity(len(steps), format)
	tokens := heuristics.EstimateTokens(len(sample), len(steps))

	plan := types.SearchPlan{
		ID:                  uuid.NewString(),
		Version:             1,
		Steps:               steps,
		Strategy:            pickStrategy(complexity),
		ConfidenceThreshold: 0.5,
		Metadata: types.PlanMetadata{
			DetectedFormat:  format,
			Complexity:      complexity,
			EstimatedTokens: tokens,
			Origin:          types.PlanOriginHeuristic,
		},
	}

	diags = append(diags, types.ParseDiagnostic{
		Stage:    types.StageArchitect,
		Message:  fmt.Sprintf("built heuristic plan with %d steps (format=%s, complexity=%s)", len(steps), format, complexity),
		Severity: types.SeverityInfo,
	})

	return plan, diags, nil
}

func fieldDescription(f types.SchemaField) string {
	if f.Hint != "" {
		return f.Hint
	}
	if f.Descriptor != nil {
		return string(f.Descriptor.Type)
	}
	return ""
}

func fieldInstruction(key string, f types.SchemaField, instructions string) string {
	desc := fieldDescription(f)
	if desc == "" {
		return instructions
	}
	return desc
}

func pickStrategy(c types.Complexity) types.Strategy {
	switch c {
	case types.ComplexityLow:
		return types.StrategySequential
	case types.ComplexityHigh:
		return types.StrategyAdaptive
	default:
		return types.StrategyParallel
	}
}

// sortSteps orders steps by TargetKey so a plan built from the same schema
// is deterministic regardless of Go map iteration order.
func sortSteps(steps []types.SearchStep) {
	for i := 1; i < len(steps); i++ {
		for j := i; j > 0 && steps[j].TargetKey < steps[j-1].TargetKey; j-- {
			steps[j], steps[j-1] = steps[j-1], steps[j]
		}
	}
}
