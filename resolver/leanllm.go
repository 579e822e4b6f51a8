package resolver

import (
	"context"
	"fmt"
	"sync"

	"github.com/parserator/kernel/llm"
	"github.com/parserator/kernel/queue"
	"github.com/parserator/kernel/types"
)

// LeanLLMGate is the set of limits spec.md §4.7 places on the lean LLM
// resolver so it stays a last resort: a plan-confidence gate at or above
// which it does not run at all, and invocation/token budgets. The
// invocation and token counts accumulate over every PrimeBatch call on one
// LeanLLMResolver and are never reset, so the budgets cover the resolver's
// whole lifetime rather than a single parse.
type LeanLLMGate struct {
	PlanConfidenceGate  float64
	MaxInvocations      int
	MaxTokens           int
	AllowOptionalFields bool
	MaxInputCharacters  int
}

// LeanLLMResolver is the async, batched, last-resort field resolver: rather
// than being consulted per field like the deterministic resolvers, it is
// invoked once per parse (via ResolveBatch) with every field the
// deterministic chain left unresolved, and its Resolve method replays
// the batch result for each individual field the Registry asks about.
//
// Concurrency and pacing are delegated to a queue.Queue so the hybrid
// architect and this resolver can share one cooldown/concurrency policy
// without duplicating rate-limiting logic.
type LeanLLMResolver struct {
	client      llm.ResolveClient
	gate        LeanLLMGate
	q           *queue.Queue[llm.ResolveResponse]
	instructions string

	mu          sync.Mutex
	invocations int
	tokensSpent int
	results     map[string]llm.FieldResolution
	audit       []types.FallbackAudit
	shared      map[string]int // field -> index of sourceField reused from, for audit
}

// NewLeanLLMResolver constructs a resolver bound to client, gated by gate,
// and paced through q (typically queue.New(1, queue.WithMinInterval(cooldown))).
func NewLeanLLMResolver(client llm.ResolveClient, gate LeanLLMGate, q *queue.Queue[llm.ResolveResponse], instructions string) *LeanLLMResolver {
	return &LeanLLMResolver{
		client:       client,
		gate:         gate,
		q:            q,
		instructions: instructions,
		results:      make(map[string]llm.FieldResolution),
	}
}

func (r *LeanLLMResolver) Name() string { return "lean_llm" }

// PrimeBatch submits every field in fields (still unresolved after the
// deterministic chain) as a single async resolve call, gated by plan
// confidence and the configured budgets. It must be called once per parse,
// before Resolve is used as a Resolver in a chain, and its Future
// awaited (via OnIdle or Get) before the extractor reads results.
func (r *LeanLLMResolver) PrimeBatch(ctx context.Context, input string, fields []types.SearchStep, planConfidence float64) queue.Future[llm.ResolveResponse] {
	if planConfidence >= r.gate.PlanConfidenceGate {
		r.recordSkip(fields, "plan_confidence", "at_or_above_gate", 0)
		return noop()
	}
	if !r.gate.AllowOptionalFields {
		var required []types.SearchStep
		for _, f := range fields {
			if f.IsRequired {
				required = append(required, f)
			} else {
				r.recordSkip([]types.SearchStep{f}, "optional_field", "optional_fields_disabled", 0)
			}
		}
		fields = required
	}
	if r.gate.MaxInputCharacters > 0 && len(input) > r.gate.MaxInputCharacters {
		input = fmt.Sprintf("%s... [truncated %d chars]", input[:r.gate.MaxInputCharacters], len(input)-r.gate.MaxInputCharacters)
	}

	r.mu.Lock()
	if r.invocations >= r.gate.MaxInvocations {
		r.mu.Unlock()
		r.recordSkip(fields, "invocation_budget", "max_invocations_reached", r.gate.MaxInvocations)
		return noop()
	}
	r.invocations++
	r.mu.Unlock()

	if len(fields) == 0 {
		return noop()
	}

	return r.q.Enqueue(ctx, func(ctx context.Context) (llm.ResolveResponse, error) {
		resp, err := r.client.Resolve(ctx, llm.ResolveRequest{
			Input:        input,
			Instructions: r.instructions,
			Fields:       fields,
		})
		if err != nil {
			return resp, err
		}
		r.mu.Lock()
		r.tokensSpent += resp.Tokens
		for _, fr := range resp.Fields {
			r.results[fr.TargetKey] = fr
			action := "skipped"
			reason := "not_defined"
			if fr.Defined {
				action = "invoked"
				reason = "resolved"
			}
			r.audit = append(r.audit, types.FallbackAudit{Field: fr.TargetKey, Action: action, Reason: reason})
		}
		r.mu.Unlock()
		return resp, nil
	})
}

func (r *LeanLLMResolver) recordSkip(fields []types.SearchStep, limitType, reason string, limit int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range fields {
		r.audit = append(r.audit, types.FallbackAudit{
			Field:     f.TargetKey,
			Action:    "skipped",
			Reason:    reason,
			LimitType: limitType,
			Limit:     limit,
		})
	}
}

// Resolve implements Resolver by replaying a result PrimeBatch already
// fetched; it never makes a new model call itself.
func (r *LeanLLMResolver) Resolve(_ context.Context, _ string, step types.SearchStep) (Result, error) {
	r.mu.Lock()
	fr, ok := r.results[step.TargetKey]
	budgetExceeded := r.gate.MaxTokens > 0 && r.tokensSpent > r.gate.MaxTokens
	r.mu.Unlock()
	if !ok || !fr.Defined || budgetExceeded {
		return skip, nil
	}
	return Result{
		Defined:    true,
		Value:      fr.Value,
		Confidence: fr.Confidence,
	}, nil
}

// Summary returns the accumulated FallbackSummary for the parse, attached to
// ParseMetadata.Fallback.
func (r *LeanLLMResolver) Summary() types.FallbackSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	summary := types.FallbackSummary{
		TotalInvocations: r.invocations,
		TotalTokens:      r.tokensSpent,
		Audit:            append([]types.FallbackAudit(nil), r.audit...),
	}
	for _, a := range r.audit {
		switch a.Action {
		case "invoked":
			summary.ResolvedFields++
		case "reused":
			summary.ReusedResolutions++
		case "skipped":
			if a.LimitType == "plan_confidence" {
				summary.SkippedByConfidence++
			} else if a.LimitType != "" {
				summary.SkippedByLimits++
			}
		}
	}
	return summary
}

func noop() queue.Future[llm.ResolveResponse] {
	return noopFuture{}
}

type noopFuture struct{}

func (noopFuture) Get(ctx context.Context) (llm.ResolveResponse, error) {
	return llm.ResolveResponse{}, nil
}
