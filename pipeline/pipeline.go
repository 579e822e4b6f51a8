// Package pipeline implements the pre/postprocessor stacks that bracket the
// architect/extractor stages, per spec.md §4.9: a preprocessor sees the raw
// request before architecture begins, a postprocessor sees the extracted
// data before confidence blending. Grounded on the teacher's middleware
// chain in runtime (ordered, each link can short-circuit by returning an
// error), generalized from HTTP middleware to parse-stage hooks.
package pipeline

import (
	"context"

	"github.com/parserator/kernel/types"
)

// Preprocessor runs before the architect sees a request. It may normalize
// or trim InputData, but must not add/remove schema fields.
type Preprocessor interface {
	Name() string
	Preprocess(ctx context.Context, req types.ParseRequest) (types.ParseRequest, error)
}

// Postprocessor runs after extraction, before confidence blending. It may
// adjust ParsedData (e.g. coercions, enrichments) and append diagnostics.
type Postprocessor interface {
	Name() string
	Postprocess(ctx context.Context, data map[string]any, schema map[string]types.SchemaField) (map[string]any, []types.ParseDiagnostic, error)
}

// PreprocessorFunc adapts a function to Preprocessor.
type PreprocessorFunc struct {
	FuncName string
	Fn       func(ctx context.Context, req types.ParseRequest) (types.ParseRequest, error)
}

func (f PreprocessorFunc) Name() string { return f.FuncName }
func (f PreprocessorFunc) Preprocess(ctx context.Context, req types.ParseRequest) (types.ParseRequest, error) {
	return f.Fn(ctx, req)
}

// PostprocessorFunc adapts a function to Postprocessor.
type PostprocessorFunc struct {
	FuncName string
	Fn       func(ctx context.Context, data map[string]any, schema map[string]types.SchemaField) (map[string]any, []types.ParseDiagnostic, error)
}

func (f PostprocessorFunc) Name() string { return f.FuncName }
func (f PostprocessorFunc) Postprocess(ctx context.Context, data map[string]any, schema map[string]types.SchemaField) (map[string]any, []types.ParseDiagnostic, error) {
	return f.Fn(ctx, data, schema)
}

// Stack holds ordered pre/postprocessor chains run around a single parse.
type Stack struct {
	Pre  []Preprocessor
	Post []Postprocessor
}

// RunPre runs every preprocessor in order, threading req through each; a
// returned error stops the chain and is surfaced as a VALIDATION failure by
// the caller.
func (s Stack) RunPre(ctx context.Context, req types.ParseRequest) (types.ParseRequest, error) {
	for _, p := range s.Pre {
		var err error
		req, err = p.Preprocess(ctx, req)
		if err != nil {
			return req, err
		}
	}
	return req, nil
}

// RunPost runs every postprocessor in order, threading data through each and
// accumulating diagnostics regardless of which stage appended them.
func (s Stack) RunPost(ctx context.Context, data map[string]any, schema map[string]types.SchemaField) (map[string]any, []types.ParseDiagnostic, error) {
	var diags []types.ParseDiagnostic
	for _, p := range s.Post {
		var (
			out      map[string]any
			postDiag []types.ParseDiagnostic
			err      error
		)
		out, postDiag, err = p.Postprocess(ctx, data, schema)
		diags = append(diags, postDiag...)
		if err != nil {
			return data, diags, err
		}
		data = out
	}
	return data, diags, nil
}
