// Package resolver implements the chained field-resolution strategy
// spec.md §4.6/§4.7 describe: an ordered list of Resolver implementations is
// consulted per field, in order, until one returns a defined value; every
// resolver consulted (even ones that skip) contributes diagnostics. Grounded
// on the teacher's plugin-chain pattern in plugins/ (each plugin gets a
// chance to handle a request before falling through to the next).
package resolver

import (
	"context"

	"github.com/parserator/kernel/types"
)

// Result is what a single Resolver returns for one field.
type Result struct {
	// Defined is false when the resolver has nothing to contribute and the
	// registry should fall through to the next resolver in the chain.
	Defined    bool
	Value      any
	Confidence float64
	Tokens     int
	Diagnostic *types.ParseDiagnostic
}

// skip is the zero Result; named for readability at call sites.
var skip = Result{}

// Resolver resolves a single SearchStep's value out of input. Implementations
// must be side-effect free with respect to other fields: a resolver may only
// read input and the step it was asked about.
type Resolver interface {
	// Name identifies the resolver in diagnostics and telemetry.
	Name() string
	// Resolve attempts to produce a value for step from input. It returns
	// Defined=false (not an error) when the field simply isn't present in a
	// form this resolver understands.
	Resolve(ctx context.Context, input string, step types.SearchStep) (Result, error)
}

// Registry holds an ordered chain of Resolvers and drives field resolution
// the way spec.md §4.7 specifies: consult each resolver in order, stop at
// the first Defined result, and merge in diagnostics from every resolver
// consulted along the way (including the ones that skipped).
type Registry struct {
	chain []Resolver
}

// NewRegistry builds a Registry from resolvers, consulted in the given order.
func NewRegistry(resolvers ...Resolver) *Registry {
	return &Registry{chain: resolvers}
}

// ResolveField runs the full chain for a single step and returns the first
// Defined result plus the diagnostics accumulated from every resolver
// consulted (including ones before the winner that skipped).
func (r *Registry) ResolveField(ctx context.Context, input string, step types.SearchStep) (Result, []types.ParseDiagnostic, error) {
	var diags []types.ParseDiagnostic
	for _, res := range r.chain {
		out, err := res.Resolve(ctx, input, step)
		if err != nil {
			diags = append(diags, types.ParseDiagnostic{
				Field:    step.TargetKey,
				Stage:    types.StageExtractor,
				Message:  res.Name() + ": " + err.Error(),
				Severity: types.SeverityError,
			})
			continue
		}
		if out.Diagnostic != nil {
			diags = append(diags, *out.Diagnostic)
		}
		if out.Defined {
			return out, diags, nil
		}
	}
	return skip, diags, nil
}

// Chain returns the resolvers in consultation order, for introspection and
// tests.
func (r *Registry) Chain() []Resolver {
	return append([]Resolver(nil), r.chain...)
}
