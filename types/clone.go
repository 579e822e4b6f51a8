package types

// ClonePlan returns a deep copy of a SearchPlan so the caller can never
// alias a plan held by a PlanCache or Session. Callers must clone before
// handing a plan to any consumer other than the owning cache/session, per
// spec.md §3 ("Plans are cloned before handing out; consumers never mutate
// cached plans").
func ClonePlan(p SearchPlan) SearchPlan {
	out := p
	if p.Steps != nil {
		out.Steps = make([]SearchStep, len(p.Steps))
		copy(out.Steps, p.Steps)
	}
	return out
}

// CloneDiagnostics returns a deep copy of a diagnostics slice.
func CloneDiagnostics(d []ParseDiagnostic) []ParseDiagnostic {
	if d == nil {
		return nil
	}
	out := make([]ParseDiagnostic, len(d))
	copy(out, d)
	return out
}

// ClonePlanCacheEntry returns a deep copy of a cache entry, rewriting the
// embedded plan's Metadata.Origin to PlanOriginCached as spec.md §3 requires
// ("cached retrievals rewrite origin to cached").
func ClonePlanCacheEntry(e PlanCacheEntry) PlanCacheEntry {
	out := e
	out.Plan = ClonePlan(e.Plan)
	out.Plan.Metadata.Origin = PlanOriginCached
	out.Diagnostics = CloneDiagnostics(e.Diagnostics)
	return out
}
