// Package llm declares the two model-backed capabilities the kernel needs —
// rewriting a heuristic SearchPlan (the hybrid architect, spec.md §4.5) and
// resolving a batch of unresolved fields (the lean LLM resolver, spec.md
// §4.7) — as small interfaces, so the kernel never imports a specific
// provider SDK directly. Concrete clients live in the anthropic, openai, and
// bedrock subpackages, mirroring how the teacher's features/model package
// keeps provider SDKs behind a shared Model interface.
package llm

import (
	"context"

	"github.com/parserator/kernel/types"
)

// RewriteRequest carries what the hybrid architect needs an LLM to improve:
// the heuristic plan it already produced, plus enough context to judge it.
type RewriteRequest struct {
	Plan         types.SearchPlan
	Sample       string
	Instructions string
	Schema       map[string]types.SchemaField
}

// RewriteResponse is the model's opinion on the plan.
type RewriteResponse struct {
	Plan       types.SearchPlan
	Confidence float64
	Tokens     int
}

// RewriteClient improves a heuristic plan using a model call. Implementations
// must be safe for concurrent use; the hybrid architect serializes calls
// itself via a queue.Queue, but a client may be shared across kernels.
type RewriteClient interface {
	Rewrite(ctx context.Context, req RewriteRequest) (RewriteResponse, error)
}

// ResolveRequest carries the batch of fields the lean LLM resolver needs
// resolved in a single call, per spec.md §4.7's "batches all unresolved
// fields into one async call".
type ResolveRequest struct {
	Input        string
	Instructions string
	Fields       []types.SearchStep
}

// FieldResolution is one field's outcome from a ResolveClient call.
type FieldResolution struct {
	TargetKey  string
	Value      any
	Defined    bool
	Confidence float64
}

// ResolveResponse is the batched result of a ResolveClient call.
type ResolveResponse struct {
	Fields []FieldResolution
	Tokens int
}

// ResolveClient resolves a batch of otherwise-unresolved fields using a
// model call.
type ResolveClient interface {
	Resolve(ctx context.Context, req ResolveRequest) (ResolveResponse, error)
}
