package parserator

import (
	"context"

	"github.com/parserator/kernel/session"
	"github.com/parserator/kernel/types"
)

// ParseMany runs Parse over every request in reqs sequentially. Each request
// is parsed independently: no session is created and requests are not
// grouped by schema; repeated requests against the same schema/instructions
// reuse an architected plan only through the Kernel's plan cache.
func (k *Kernel) ParseMany(ctx context.Context, reqs []types.ParseRequest) []types.ParseResponse {
	out := make([]types.ParseResponse, len(reqs))
	for i, req := range reqs {
		out[i] = k.Parse(ctx, req)
	}
	return out
}

// SessionFromResponse constructs a session.Session seeded with the plan
// already carried by a prior successful ParseResponse, so a caller that
// parsed one document ad hoc can upgrade to a session for subsequent calls
// without re-architecting (spec.md §6: "createSessionFromResponse").
func (k *Kernel) SessionFromResponse(id string, schema map[string]types.SchemaField, instructions string, opts types.ParseOptions, resp types.ParseResponse) *session.Session {
	sess := k.NewSession(id, schema, instructions, opts)
	if resp.Success {
		sess.Seed(resp.Metadata.ArchitectPlan)
	}
	return sess
}
