// Package session implements the long-lived parsing handle spec.md §6
// describes: a Session wraps a schema, instructions, and options, lazily
// builds and caches a SearchPlan on first use, and can auto-refresh that
// plan when confidence drifts or usage grows, without the caller ever
// re-specifying the schema. Grounded on the teacher's session.Session/
// session.Store pattern (a per-conversation handle with lazy state and a
// background refresh loop), generalized from conversation state to plan
// state.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/parserator/kernel/types"
)

// Parser is the subset of kernel behavior a Session needs: build a plan, run
// it, and run a plan directly (used on refresh, skipping architecture).
type Parser interface {
	BuildPlan(ctx context.Context, schema map[string]types.SchemaField, sample, instructions string) (types.SearchPlan, error)
	ParseWithPlan(ctx context.Context, plan types.SearchPlan, req types.ParseRequest) (types.ParseResponse, error)
}

// Config tunes a Session's auto-refresh behavior, sourced from
// types.Config.AutoRefreshDefaults unless the caller overrides it per
// session.
type Config struct {
	Enabled              bool
	ConfidenceDropTrigger float64
	UsageCountTrigger     int
	Cooldown              time.Duration
}

// Session wraps a schema/instructions/options triple with a lazily-created,
// cached plan and optional auto-refresh.
type Session struct {
	ID           string
	parser       Parser
	schema       map[string]types.SchemaField
	instructions string
	opts         types.ParseOptions
	cfg          Config

	mu              sync.Mutex
	plan            *types.SearchPlan
	usageCount      int
	lastConfidence  float64
	lastRefresh     time.Time
	refreshPending  bool
	pendingRefresh  chan struct{}
}

// New constructs a Session. The plan is not built until the first Parse
// call (spec.md §6: "lazily creates/caches a plan").
func New(id string, parser Parser, schema map[string]types.SchemaField, instructions string, opts types.ParseOptions, cfg Config) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	return &Session{ID: id, parser: parser, schema: schema, instructions: instructions, opts: opts, cfg: cfg}
}

// Parse runs input through the session's cached plan, building one first if
// none exists yet, and triggers a background refresh if the refresh
// triggers fire and no refresh is already in flight.
func (s *Session) Parse(ctx context.Context, input string) (types.ParseResponse, error) {
	plan, err := s.ensurePlan(ctx, input)
	if err != nil {
		return types.ParseResponse{}, err
	}

	resp, err := s.parser.ParseWithPlan(ctx, plan, types.ParseRequest{
		InputData:    input,
		OutputSchema: s.schema,
		Instructions: s.instructions,
		Options:      s.opts,
	})
	if err != nil {
		return resp, err
	}

	s.recordUsage(resp.Metadata.Confidence)
	s.maybeTriggerRefresh(ctx, input)

	return resp, nil
}

func (s *Session) ensurePlan(ctx context.Context, sample string) (types.SearchPlan, error) {
	s.mu.Lock()
	if s.plan != nil {
		plan := types.ClonePlan(*s.plan)
		s.mu.Unlock()
		return plan, nil
	}
	s.mu.Unlock()

	plan, err := s.parser.BuildPlan(ctx, s.schema, sample, s.instructions)
	if err != nil {
		return types.SearchPlan{}, err
	}

	s.mu.Lock()
	cloned := types.ClonePlan(plan)
	s.plan = &cloned
	s.lastRefresh = time.Now()
	s.mu.Unlock()

	return plan, nil
}

func (s *Session) recordUsage(confidence float64) {
	s.mu.Lock()
	s.usageCount++
	s.lastConfidence = confidence
	s.mu.Unlock()
}

// maybeTriggerRefresh checks the two triggers spec.md §6 names — a
// confidence drop past ConfidenceDropTrigger, or usage count past
// UsageCountTrigger — and, if either fires and no refresh is pending or
// inside the cooldown window, kicks off a background rebuild.
func (s *Session) maybeTriggerRefresh(ctx context.Context, sample string) {
	if !s.cfg.Enabled {
		return
	}

	s.mu.Lock()
	if s.refreshPending {
		s.mu.Unlock()
		return
	}
	if s.cfg.Cooldown > 0 && time.Since(s.lastRefresh) < s.cfg.Cooldown {
		s.mu.Unlock()
		return
	}
	triggered := false
	if s.cfg.ConfidenceDropTrigger > 0 && s.lastConfidence < s.cfg.ConfidenceDropTrigger {
		triggered = true
	}
	if s.cfg.UsageCountTrigger > 0 && s.usageCount >= s.cfg.UsageCountTrigger {
		triggered = true
	}
	if !triggered {
		s.mu.Unlock()
		return
	}
	s.refreshPending = true
	done := make(chan struct{})
	s.pendingRefresh = done
	s.mu.Unlock()

	go s.refresh(ctx, sample, done)
}

func (s *Session) refresh(ctx context.Context, sample string, done chan struct{}) {
	defer close(done)
	plan, err := s.parser.BuildPlan(ctx, s.schema, sample, s.instructions)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshPending = false
	s.lastRefresh = time.Now()
	if err == nil {
		cloned := types.ClonePlan(plan)
		s.plan = &cloned
		s.usageCount = 0
	}
}

// WaitForIdle blocks until any in-flight background refresh completes, or
// ctx is canceled. Safe to call when no refresh is pending (returns
// immediately).
func (s *Session) WaitForIdle(ctx context.Context) error {
	s.mu.Lock()
	done := s.pendingRefresh
	pending := s.refreshPending
	s.mu.Unlock()
	if !pending || done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Seed installs plan as the session's cached plan directly, skipping the
// architect entirely on the next Parse call. Used when a caller already has
// a plan from a prior ad hoc parse (spec.md §6's createSessionFromResponse).
func (s *Session) Seed(plan types.SearchPlan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cloned := types.ClonePlan(plan)
	s.plan = &cloned
	s.lastRefresh = time.Now()
}

// Plan returns a clone of the session's currently cached plan, or
// ok=false if none has been built yet.
func (s *Session) Plan() (types.SearchPlan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.plan == nil {
		return types.SearchPlan{}, false
	}
	return types.ClonePlan(*s.plan), true
}
