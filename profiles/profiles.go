// Package profiles defines named Config presets for common deployment
// shapes, per spec.md §5/§9: a caller picks a profile by name rather than
// hand-tuning every Config field. Grounded on the teacher's quickstart
// preset pattern (a handful of named, opinionated configurations layered on
// top of one shared default).
package profiles

import (
	"fmt"
	"time"

	"github.com/parserator/kernel/types"
)

// Name identifies a built-in profile.
type Name string

const (
	// LeanAgent favors low latency and minimal LLM spend: fallbacks mostly
	// off, tight budgets when they do run. Suited to high-volume agent
	// tool calls where a miss is cheap to retry.
	LeanAgent Name = "lean-agent"
	// VibeCoder favors correctness over cost: fallbacks on with generous
	// budgets, lower confidence thresholds. Suited to interactive,
	// low-volume use where a wrong answer is more expensive than a slow one.
	VibeCoder Name = "vibe-coder"
	// SensorGrid favors throughput over everything: fallbacks disabled
	// entirely, aggressive field-count/length limits. Suited to high-volume
	// structured telemetry where every field already has a tight schema.
	SensorGrid Name = "sensor-grid"
)

// Config returns the base types.Config for a named profile, layered over
// types.DefaultConfig(). An unknown name returns an error rather than
// silently falling back, so a typo'd profile name never passes unnoticed.
func Config(name Name) (types.Config, error) {
	base := types.DefaultConfig()
	switch name {
	case LeanAgent:
		base.EnableFieldFallbacks = true
		base.LeanLLMPlanConfidenceGate = 0.55
		base.LeanLLMMaxInvocationsPerParse = 1
		base.LeanLLMMaxTokensPerParse = 1500
		base.LeanLLMAllowOptionalFields = false
		base.RewriteQueueConcurrency = 1
		base.RewriteCooldown = 2 * time.Second
		base.LeanLLMQueueConcurrency = 1
		base.LeanLLMCooldown = 2 * time.Second
		base.MinConfidence = 0.5
		return base, nil
	case VibeCoder:
		base.EnableFieldFallbacks = true
		base.LeanLLMPlanConfidenceGate = 0.35
		base.LeanLLMMaxInvocationsPerParse = 3
		base.LeanLLMMaxTokensPerParse = 6000
		base.LeanLLMAllowOptionalFields = true
		base.RewriteQueueConcurrency = 2
		base.RewriteCooldown = 500 * time.Millisecond
		base.LeanLLMQueueConcurrency = 2
		base.LeanLLMCooldown = 500 * time.Millisecond
		base.MinConfidence = 0.3
		return base, nil
	case SensorGrid:
		base = base.Overlay(types.DisableFieldFallbacks())
		base.MaxInputLength = 4096
		base.MaxSchemaFields = 24
		base.Strategy = types.StrategyParallel
		base.MinConfidence = 0.6
		return base, nil
	default:
		return types.Config{}, fmt.Errorf("profiles: unknown profile %q", name)
	}
}

// Names lists every built-in profile name, for validation and help text.
func Names() []Name {
	return []Name{LeanAgent, VibeCoder, SensorGrid}
}
