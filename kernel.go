// Package parserator is the structured-data extraction kernel's facade: it
// composes an Architect, Extractor, resolver.Registry, plancache.Cache, and
// telemetry.Hub into the nine-step parse lifecycle spec.md §4.10 describes.
// Grounded on the teacher's runtime.Runtime facade, which composes an
// agent's model client, tool registry, and hooks bus behind a single
// Execute-style entry point; Kernel plays the same composing-facade role
// here for the extraction pipeline instead of an agent loop.
package parserator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/parserator/kernel/architect"
	"github.com/parserator/kernel/extractor"
	"github.com/parserator/kernel/pipeline"
	"github.com/parserator/kernel/plancache"
	"github.com/parserator/kernel/resolver"
	"github.com/parserator/kernel/session"
	"github.com/parserator/kernel/telemetry"
	"github.com/parserator/kernel/types"
)

// Interceptor observes a parse without altering its outcome: an error
// returned by BeforeParse is discarded and the parse continues; AfterParse
// only observes the final response.
type Interceptor interface {
	BeforeParse(ctx context.Context, req types.ParseRequest) error
	AfterParse(ctx context.Context, req types.ParseRequest, resp types.ParseResponse)
}

// Kernel is the composed extraction engine. Construct with New; the zero
// value is not usable.
type Kernel struct {
	arch         architect.Architect
	ext          extractor.Extractor
	registry     *resolver.Registry
	cache        plancache.Cache
	hub          *telemetry.Hub
	cfg          types.Config
	profile      string
	pipe         pipeline.Stack
	interceptors []Interceptor
}

// Option configures a Kernel at construction time.
type Option func(*Kernel)

// WithPlanCache installs a plan cache backend (default: a fresh in-memory
// plancache.Memory). Passing nil leaves the Kernel with no cache, so every
// parse re-architects.
func WithPlanCache(c plancache.Cache) Option {
	return func(k *Kernel) { k.cache = c }
}

// WithTelemetryHub installs a telemetry hub (default: a fresh, unsubscribed
// hub whose Publish calls are no-ops until something subscribes).
func WithTelemetryHub(h *telemetry.Hub) Option {
	return func(k *Kernel) { k.hub = h }
}

// WithConfig overlays cfg onto types.DefaultConfig().
func WithConfig(cfg types.Config) Option {
	return func(k *Kernel) { k.cfg = types.DefaultConfig().Overlay(cfg) }
}

// WithProfile tags every plan cache key and the parse:start telemetry event
// with profile (other telemetry events do not carry it), and, combined with
// WithConfig, lets callers namespace cache entries across differently-tuned
// deployments sharing one cache backend.
func WithProfile(profile string) Option {
	return func(k *Kernel) { k.profile = profile }
}

// WithPipeline installs the pre/postprocessor stack (default:
// pipeline.DefaultPreprocessors() and no postprocessors).
func WithPipeline(p pipeline.Stack) Option {
	return func(k *Kernel) { k.pipe = p }
}

// WithInterceptor registers an Interceptor, in registration order.
func WithInterceptor(i Interceptor) Option {
	return func(k *Kernel) { k.interceptors = append(k.interceptors, i) }
}

// New composes a Kernel from an architect, an extractor, and a resolver
// registry (the three required collaborators), plus any Options.
func New(arch architect.Architect, ext extractor.Extractor, registry *resolver.Registry, opts ...Option) *Kernel {
	k := &Kernel{
		arch:     arch,
		ext:      ext,
		registry: registry,
		cache:    plancache.NewMemory(),
		hub:      telemetry.New(),
		cfg:      types.DefaultConfig(),
		pipe:     pipeline.Stack{Pre: pipeline.DefaultPreprocessors()},
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Parse runs the full nine-step lifecycle spec.md §4.10 specifies:
// preprocess, beforeParse interceptors, parse:start telemetry, validate,
// cache-lookup-or-architect, extract, metadata+postprocess, confidence
// blend+threshold check, parse:success/failure telemetry+interceptors.
func (k *Kernel) Parse(ctx context.Context, req types.ParseRequest) types.ParseResponse {
	requestID := uuid.NewString()
	start := time.Now()

	// 1. preprocess
	req, err := k.pipe.RunPre(ctx, req)
	if err != nil {
		return k.fail(ctx, requestID, req, start, asParseError(err, types.ErrValidation, types.StagePreprocess))
	}

	// 2. beforeParse interceptors
	for _, ic := range k.interceptors {
		_ = ic.BeforeParse(ctx, req)
	}

	// 3. parse:start telemetry
	k.hub.PublishAsync(ctx, telemetry.Event{
		Type: telemetry.EventParseStart, RequestID: requestID,
		Fields: map[string]any{"profile": k.profile},
	})

	// 4. validate (schema/input size limits)
	if err := k.validate(req); err != nil {
		return k.fail(ctx, requestID, req, start, err)
	}

	// 5. cache-lookup-or-architect
	plan, cacheHit, diags, err := k.resolvePlan(ctx, req)
	if err != nil {
		return k.fail(ctx, requestID, req, start, asParseError(err, types.ErrArchitectFailed, types.StageArchitect))
	}
	if cacheHit {
		k.hub.PublishAsync(ctx, telemetry.Event{Type: telemetry.EventCacheHit, RequestID: requestID})
	} else {
		k.hub.PublishAsync(ctx, telemetry.Event{Type: telemetry.EventCacheMiss, RequestID: requestID})
	}

	// 6. extractor
	k.hub.PublishAsync(ctx, telemetry.Event{Type: telemetry.EventExtractorStart, RequestID: requestID})
	extRes, err := k.ext.Extract(ctx, plan, req.InputData)
	if err != nil {
		return k.fail(ctx, requestID, req, start, asParseError(err, types.ErrExtractorFailed, types.StageExtractor))
	}
	k.hub.PublishAsync(ctx, telemetry.Event{Type: telemetry.EventExtractorDone, RequestID: requestID})
	diags = append(diags, extRes.Diagnostics...)

	if len(extRes.Missing) > 0 {
		perr := types.NewParseError(types.ErrMissingRequiredFields, types.StageExtractor,
			fmt.Sprintf("missing required fields: %v", extRes.Missing))
		perr.Details = map[string]any{"fields": extRes.Missing}
		return k.fail(ctx, requestID, req, start, perr)
	}

	// 7. metadata + postprocess
	data, postDiags, err := k.pipe.RunPost(ctx, extRes.Data, req.OutputSchema)
	if err != nil {
		return k.fail(ctx, requestID, req, start, asParseError(err, types.ErrUnknownFailure, types.StagePostprocess))
	}
	diags = append(diags, postDiags...)

	// 8. confidence blend + threshold check
	confidence := 0.35*plan.ConfidenceThreshold + 0.65*extRes.Confidence
	threshold := k.cfg.MinConfidence
	if req.Options.ConfidenceThreshold != nil {
		threshold = *req.Options.ConfidenceThreshold
	}

	metadata := types.ParseMetadata{
		ArchitectPlan:    plan,
		Confidence:       confidence,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		RequestID:        requestID,
		Timestamp:        start.UTC().Format(time.RFC3339),
		Diagnostics:      diags,
	}

	if confidence < threshold {
		diags = append(diags, types.ParseDiagnostic{
			Stage:    types.StageOrchestration,
			Message:  fmt.Sprintf("confidence %.2f below threshold %.2f", confidence, threshold),
			Severity: types.SeverityWarning,
		})
		metadata.Diagnostics = diags
		if !k.cfg.EnableFieldFallbacks {
			perr := types.NewParseError(types.ErrLowConfidence, types.StageOrchestration,
				fmt.Sprintf("confidence %.2f below threshold %.2f", confidence, threshold))
			return k.failWithMetadata(ctx, requestID, req, metadata, perr)
		}
	}

	resp := types.ParseResponse{Success: true, ParsedData: data, Metadata: metadata}

	// 9. parse:success telemetry + interceptors
	k.hub.PublishAsync(ctx, telemetry.Event{Type: telemetry.EventParseSuccess, RequestID: requestID})
	for _, ic := range k.interceptors {
		ic.AfterParse(ctx, req, resp)
	}
	return resp
}

func (k *Kernel) validate(req types.ParseRequest) *types.ParseError {
	if k.cfg.MaxInputLength > 0 && len(req.InputData) > k.cfg.MaxInputLength {
		return types.NewParseError(types.ErrValidation, types.StageValidation,
			fmt.Sprintf("input exceeds max length %d", k.cfg.MaxInputLength))
	}
	if k.cfg.MaxSchemaFields > 0 && len(req.OutputSchema) > k.cfg.MaxSchemaFields {
		return types.NewParseError(types.ErrValidation, types.StageValidation,
			fmt.Sprintf("schema exceeds max fields %d", k.cfg.MaxSchemaFields))
	}
	return nil
}

func (k *Kernel) resolvePlan(ctx context.Context, req types.ParseRequest) (types.SearchPlan, bool, []types.ParseDiagnostic, error) {
	if k.cache != nil {
		key := plancache.Key(req.OutputSchema, req.Instructions, req.Options, k.profile)
		if entry, ok, err := plancache.Fetch(ctx, k.cache, key); err == nil && ok {
			return entry.Plan, true, nil, nil
		}
	}

	plan, diags, err := k.arch.BuildPlan(ctx, req.OutputSchema, req.InputData, req.Instructions)
	if err != nil {
		return types.SearchPlan{}, false, nil, err
	}

	if k.cache != nil {
		key := plancache.Key(req.OutputSchema, req.Instructions, req.Options, k.profile)
		entry := plancache.NewEntry(plan, plan.ConfidenceThreshold, diags, plan.Metadata.EstimatedTokens, 0, k.profile)
		_ = plancache.Store(ctx, k.cache, key, entry)
	}

	return plan, false, diags, nil
}

// BuildPlan exposes the architect directly, for session.Parser.
func (k *Kernel) BuildPlan(ctx context.Context, schema map[string]types.SchemaField, sample, instructions string) (types.SearchPlan, error) {
	plan, _, err := k.arch.BuildPlan(ctx, schema, sample, instructions)
	return plan, err
}

// ParseWithPlan runs req's input through an already-built plan, skipping
// architecture entirely; used by session.Session to replay a cached plan,
// and by Kernel.Parse's cache-hit path conceptually (though Parse inlines
// the extractor call itself to keep its telemetry granular).
func (k *Kernel) ParseWithPlan(ctx context.Context, plan types.SearchPlan, req types.ParseRequest) (types.ParseResponse, error) {
	extRes, err := k.ext.Extract(ctx, plan, req.InputData)
	if err != nil {
		return types.ParseResponse{}, err
	}
	data, postDiags, err := k.pipe.RunPost(ctx, extRes.Data, req.OutputSchema)
	if err != nil {
		return types.ParseResponse{}, err
	}
	confidence := 0.35*plan.ConfidenceThreshold + 0.65*extRes.Confidence
	return types.ParseResponse{
		Success:    len(extRes.Missing) == 0,
		ParsedData: data,
		Metadata: types.ParseMetadata{
			ArchitectPlan: plan,
			Confidence:    confidence,
			Diagnostics:   append(extRes.Diagnostics, postDiags...),
		},
	}, nil
}

// NewSession constructs a session.Session bound to this Kernel.
func (k *Kernel) NewSession(id string, schema map[string]types.SchemaField, instructions string, opts types.ParseOptions) *session.Session {
	cfg := session.Config{Cooldown: k.cfg.AutoRefreshDefaults.MinInterval}
	if m := k.cfg.AutoRefreshDefaults.MinConfidence; m != nil {
		cfg.ConfidenceDropTrigger = *m
		cfg.Enabled = true
	}
	if m := k.cfg.AutoRefreshDefaults.MaxParses; m != nil {
		cfg.UsageCountTrigger = *m
		cfg.Enabled = true
	}
	return session.New(id, k, schema, instructions, opts, cfg)
}

func (k *Kernel) fail(ctx context.Context, requestID string, req types.ParseRequest, start time.Time, perr *types.ParseError) types.ParseResponse {
	metadata := types.ParseMetadata{
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		RequestID:        requestID,
		Timestamp:        start.UTC().Format(time.RFC3339),
	}
	return k.failWithMetadata(ctx, requestID, req, metadata, perr)
}

func (k *Kernel) failWithMetadata(ctx context.Context, requestID string, req types.ParseRequest, metadata types.ParseMetadata, perr *types.ParseError) types.ParseResponse {
	resp := types.ParseResponse{Success: false, Metadata: metadata, Error: perr}
	k.hub.PublishAsync(ctx, telemetry.Event{
		Type: telemetry.EventParseFailure, RequestID: requestID,
		Fields: map[string]any{"code": string(perr.Code)},
	})
	for _, ic := range k.interceptors {
		ic.AfterParse(ctx, req, resp)
	}
	return resp
}

func asParseError(err error, code types.ErrorCode, stage types.Stage) *types.ParseError {
	if perr, ok := err.(*types.ParseError); ok {
		return perr
	}
	return types.WrapParseError(code, stage, err.Error(), err)
}
