package parserator

import (
	"context"
	"testing"

	"github.com/parserator/kernel/extractor"
	"github.com/parserator/kernel/plancache"
	"github.com/parserator/kernel/resolver"
	"github.com/parserator/kernel/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubArchitect struct {
	plan types.SearchPlan
	err  error
}

func (s stubArchitect) BuildPlan(_ context.Context, _ map[string]types.SchemaField, _, _ string) (types.SearchPlan, []types.ParseDiagnostic, error) {
	return s.plan, nil, s.err
}

type stubExtractor struct {
	res extractor.Result
	err error
}

func (s stubExtractor) Extract(_ context.Context, _ types.SearchPlan, _ string) (extractor.Result, error) {
	return s.res, s.err
}

func basicSchema() map[string]types.SchemaField {
	return map[string]types.SchemaField{"email": types.NewHintField("email")}
}

func TestKernelParseSuccess(t *testing.T) {
	plan := types.SearchPlan{ID: "p1", ConfidenceThreshold: 0.9}
	arch := stubArchitect{plan: plan}
	ext := stubExtractor{res: extractor.Result{
		Data:       map[string]any{"email": "ada@example.com"},
		Confidence: 0.95,
	}}
	k := New(arch, ext, resolver.NewRegistry())

	resp := k.Parse(context.Background(), types.ParseRequest{
		InputData:    `{"email":"ada@example.com"}`,
		OutputSchema: basicSchema(),
	})

	require.True(t, resp.Success)
	assert.Equal(t, "ada@example.com", resp.ParsedData["email"])
	assert.Nil(t, resp.Error)
}

func TestKernelParseRejectsEmptyInput(t *testing.T) {
	k := New(stubArchitect{}, stubExtractor{}, resolver.NewRegistry())
	resp := k.Parse(context.Background(), types.ParseRequest{OutputSchema: basicSchema()})
	require.False(t, resp.Success)
	assert.Equal(t, types.ErrValidation, resp.Error.Code)
}

func TestKernelParseMissingRequiredFieldFails(t *testing.T) {
	plan := types.SearchPlan{ID: "p1", ConfidenceThreshold: 0.9}
	arch := stubArchitect{plan: plan}
	ext := stubExtractor{res: extractor.Result{
		Data:    map[string]any{},
		Missing: []string{"email"},
	}}
	k := New(arch, ext, resolver.NewRegistry())

	resp := k.Parse(context.Background(), types.ParseRequest{
		InputData:    "no email here",
		OutputSchema: basicSchema(),
	})

	require.False(t, resp.Success)
	assert.Equal(t, types.ErrMissingRequiredFields, resp.Error.Code)
}

func TestKernelParseLowConfidenceFailsWhenFallbacksDisabled(t *testing.T) {
	plan := types.SearchPlan{ID: "p1", ConfidenceThreshold: 0.9}
	arch := stubArchitect{plan: plan}
	ext := stubExtractor{res: extractor.Result{
		Data:       map[string]any{"email": "ada@example.com"},
		Confidence: 0.1,
	}}
	cfg := types.DefaultConfig()
	cfg = cfg.Overlay(types.DisableFieldFallbacks())
	k := New(arch, ext, resolver.NewRegistry(), WithConfig(cfg))

	resp := k.Parse(context.Background(), types.ParseRequest{
		InputData:    `{"email":"ada@example.com"}`,
		OutputSchema: basicSchema(),
	})

	require.False(t, resp.Success)
	assert.Equal(t, types.ErrLowConfidence, resp.Error.Code)
}

func TestKernelParseUsesPlanCache(t *testing.T) {
	plan := types.SearchPlan{ID: "p1", ConfidenceThreshold: 0.9}
	var architectCalls int
	arch := countingArchitect{plan: plan, calls: &architectCalls}
	ext := stubExtractor{res: extractor.Result{
		Data:       map[string]any{"email": "ada@example.com"},
		Confidence: 0.95,
	}}
	cache := plancache.NewMemory()
	k := New(arch, ext, resolver.NewRegistry(), WithPlanCache(cache))

	req := types.ParseRequest{InputData: `{"email":"ada@example.com"}`, OutputSchema: basicSchema()}
	k.Parse(context.Background(), req)
	k.Parse(context.Background(), req)

	assert.Equal(t, 1, architectCalls)
}

type countingArchitect struct {
	plan  types.SearchPlan
	calls *int
}

func (c countingArchitect) BuildPlan(_ context.Context, _ map[string]types.SchemaField, _, _ string) (types.SearchPlan, []types.ParseDiagnostic, error) {
	*c.calls++
	return c.plan, nil, nil
}
