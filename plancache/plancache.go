// Package plancache implements the pluggable SearchPlan cache spec.md §4.2
// describes: a minimal Get/Set interface any storage backend can satisfy,
// a deterministic cache key derived from schema+instructions+options+profile,
// and deep-clone-on-boundary semantics so a caller mutating a returned plan
// never corrupts the cached copy. Grounded on the teacher's registry
// abstraction (a small interface with swappable in-memory and networked
// implementations) generalized from service registration to plan storage.
package plancache

import (
	"context"
	"time"

	"github.com/parserator/kernel/types"
)

// Cache is the storage interface every plan cache backend implements. Set
// and Get both hand the caller a deep clone, never a shared pointer into the
// backend's own storage, so concurrent callers cannot observe each other's
// in-place edits.
type Cache interface {
	// Get returns the cached plan for key, with Origin rewritten to
	// types.PlanOriginCached, or ok=false on a miss.
	Get(ctx context.Context, key string) (entry types.PlanCacheEntry, ok bool, err error)
	// Set stores plan under key, overwriting any existing entry.
	Set(ctx context.Context, key string, entry types.PlanCacheEntry) error
	// Delete removes key if present; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Clear removes every entry. Intended for tests and admin tooling, not
	// the parse hot path.
	Clear(ctx context.Context) error
}

// Key derives the deterministic cache key for a parse request, per spec.md
// §4.2's "stable digest of schema + instructions + options + profile".
func Key(schema map[string]types.SchemaField, instructions string, opts types.ParseOptions, profile string) string {
	return types.PlanCacheKey(schema, instructions, opts, profile)
}

// NewEntry wraps plan (plus the confidence/diagnostics/tokens/timing the
// architect reported for it) into a cache entry stamped with the current
// time, used by callers writing a freshly produced plan into a Cache.
func NewEntry(plan types.SearchPlan, confidence float64, diagnostics []types.ParseDiagnostic, tokens int, processingTimeMs int64, profile string) types.PlanCacheEntry {
	return types.PlanCacheEntry{
		Plan:             types.ClonePlan(plan),
		Confidence:       confidence,
		Diagnostics:      types.CloneDiagnostics(diagnostics),
		Tokens:           tokens,
		ProcessingTimeMs: processingTimeMs,
		UpdatedAt:        time.Now(),
		Profile:          profile,
	}
}

// Fetch retrieves and deep-clones entry from cache under key, rewriting the
// embedded plan's origin to cached. It is a thin convenience wrapper so
// callers never forget the clone-on-fetch step.
func Fetch(ctx context.Context, cache Cache, key string) (types.PlanCacheEntry, bool, error) {
	entry, ok, err := cache.Get(ctx, key)
	if err != nil || !ok {
		return types.PlanCacheEntry{}, ok, err
	}
	return types.ClonePlanCacheEntry(entry), true, nil
}

// Store deep-clones entry before handing it to cache, so a caller's
// subsequent in-place mutation of its own copy never corrupts what was
// stored.
func Store(ctx context.Context, cache Cache, key string, entry types.PlanCacheEntry) error {
	return cache.Set(ctx, key, types.ClonePlanCacheEntry(entry))
}
