package architect

import (
	"context"
	"time"

	"github.com/parserator/kernel/llm"
	"github.com/parserator/kernel/queue"
	"github.com/parserator/kernel/types"
)

// HybridConfig tunes when Hybrid escalates a heuristic plan to an LLM
// rewrite pass, per spec.md §4.5: below ConfidenceThreshold the heuristic
// plan is rewritten. Concurrency and cooldown come from the queue passed to
// NewHybrid, so rewrite calls never pile up under load.
type HybridConfig struct {
	ConfidenceThreshold float64
}

// Hybrid wraps a Heuristic architect with an optional LLM rewrite pass. The
// heuristic plan always runs first and is always a valid fallback if the
// rewrite is skipped, fails, or times out.
type Hybrid struct {
	base    *Heuristic
	client  llm.RewriteClient
	cfg     HybridConfig
	q       *queue.Queue[llm.RewriteResponse]
}

// NewHybrid constructs a Hybrid architect. q is typically
// queue.New(1, queue.WithMinInterval(cooldown)) so rewrite calls are
// serialized and spaced out across a whole kernel instance.
func NewHybrid(client llm.RewriteClient, cfg HybridConfig, q *queue.Queue[llm.RewriteResponse]) *Hybrid {
	return &Hybrid{base: NewHeuristic(), client: client, cfg: cfg, q: q}
}

func (h *Hybrid) BuildPlan(ctx context.Context, schema map[string]types.SchemaField, sample, instructions string) (types.SearchPlan, []types.ParseDiagnostic, error) {
	plan, diags, err := h.base.BuildPlan(ctx, schema, sample, instructions)
	if err != nil {
		return plan, diags, err
	}

	confidence := heuristicPlanConfidence(plan)
	if confidence >= h.cfg.ConfidenceThreshold {
		diags = append(diags, types.ParseDiagnostic{
			Stage:    types.StageArchitect,
			Message:  "heuristic plan confidence at or above rewrite threshold, skipping LLM rewrite",
			Severity: types.SeverityInfo,
		})
		return plan, diags, nil
	}

	fut := h.q.Enqueue(ctx, func(ctx context.Context) (llm.RewriteResponse, error) {
		return h.client.Rewrite(ctx, llm.RewriteRequest{
			Plan:         plan,
			Sample:       sample,
			Instructions: instructions,
			Schema:       schema,
		})
	})

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()
	resp, err := fut.Get(waitCtx)
	if err != nil {
		diags = append(diags, types.ParseDiagnostic{
			Stage:    types.StageArchitect,
			Message:  "LLM rewrite failed, falling back to heuristic plan: " + err.Error(),
			Severity: types.SeverityWarning,
		})
		return plan, diags, nil
	}

	resp.Plan.ID = plan.ID
	resp.Plan.Version = plan.Version + 1
	resp.Plan.Metadata.DetectedFormat = plan.Metadata.DetectedFormat
	if resp.Plan.ConfidenceThreshold == 0 {
		resp.Plan.ConfidenceThreshold = plan.ConfidenceThreshold
	}

	diags = append(diags, types.ParseDiagnostic{
		Stage:    types.StageArchitect,
		Message:  "applied LLM rewrite to heuristic plan",
		Severity: types.SeverityInfo,
	})

	return resp.Plan, diags, nil
}

// heuristicPlanConfidence is a proxy for how much we trust the purely
// heuristic plan before any model involvement: more steps with a narrow,
// well-matched validation type raise confidence; an all-string plan (no
// useful field-name signal matched) lowers it.
func heuristicPlanConfidence(plan types.SearchPlan) float64 {
	if len(plan.Steps) == 0 {
		return 0
	}
	strings := 0
	for _, s := range plan.Steps {
		if s.ValidationType == types.ValidationString {
			strings++
		}
	}
	ratio := 1 - float64(strings)/float64(len(plan.Steps))
	return 0.4 + 0.5*ratio
}
