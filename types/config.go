package types

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every kernel-wide tunable referenced across spec.md: input
// and schema limits enforced during validation (§4.10 step 4), the default
// confidence floor below which a parse is flagged or failed (§4.10 step 8),
// resolver budgets and cooldowns (§4.7), and the hybrid architect's rewrite
// cooldown (§4.5). Kernel construction merges three layers in order —
// package defaults, then an optional named profile's overrides, then
// caller-supplied overrides — each layer only replacing fields it sets.
type Config struct {
	MaxInputLength  int
	MaxSchemaFields int
	MinConfidence   float64

	// EnableFieldFallbacks gates the lean LLM resolver (§4.7) and the §4.10
	// step 8 LOW_CONFIDENCE conversion: when false, a below-threshold parse
	// becomes a hard failure instead of a warning.
	EnableFieldFallbacks bool

	// Strategy is a plan strategy carried through Overlay and YAML loading.
	// The heuristic architect does not read it: it picks each plan's
	// strategy from the plan's complexity.
	Strategy Strategy

	// RewriteQueueConcurrency bounds the hybrid architect's LLM rewrite
	// queue (§4.5, default 1).
	RewriteQueueConcurrency int
	// RewriteCooldown is the minimum time between two rewrite attempts for
	// the same architect instance (§4.5).
	RewriteCooldown time.Duration

	// LeanLLMQueueConcurrency bounds the lean LLM resolver's batched-call
	// queue (§4.7, default 1).
	LeanLLMQueueConcurrency int
	// LeanLLMCooldown is the minimum time between two lean LLM resolver
	// invocations (§4.7).
	LeanLLMCooldown time.Duration
	// LeanLLMPlanConfidenceGate is the plannerConfidence threshold at or
	// above which the lean LLM resolver skips a step entirely (§4.7).
	LeanLLMPlanConfidenceGate float64
	// LeanLLMMaxInvocationsPerParse bounds how many batched LLM calls a
	// single parse may issue (§4.7). Zero disables the resolver entirely.
	LeanLLMMaxInvocationsPerParse int
	// LeanLLMMaxTokensPerParse bounds the total tokens a single parse may
	// spend across lean LLM resolver calls (§4.7). Zero disables the budget.
	LeanLLMMaxTokensPerParse int
	// LeanLLMAllowOptionalFields permits the lean LLM resolver to run for
	// optional steps, not just required ones (§4.7).
	LeanLLMAllowOptionalFields bool
	// LeanLLMMaxInputCharacters bounds the input trimmed and sent to the LLM
	// client (§4.7).
	LeanLLMMaxInputCharacters int

	// AutoRefreshDefaults seeds Session auto-refresh config when a session
	// is created without explicit overrides (§4.11).
	AutoRefreshDefaults AutoRefreshConfig

	// fallbacksExplicitlyDisabled lets an overlay turn EnableFieldFallbacks
	// off explicitly; a bare zero-value bool in an overlay cannot otherwise
	// be distinguished from "this layer didn't set the field". Set via
	// DisableFieldFallbacks().
	fallbacksExplicitlyDisabled bool
}

// AutoRefreshConfig configures a Session's plan auto-refresh policy per
// spec.md §3 "AutoRefresh config".
type AutoRefreshConfig struct {
	MinConfidence      *float64
	MaxParses          *int
	MinInterval        time.Duration
	LowConfidenceGrace int
}

// DefaultConfig returns the package-default configuration layer. Values
// chosen here match the numeric constants named throughout spec.md §4
// (confidence clamps, token formulas) and are deliberately conservative:
// fallbacks enabled, a single-flight rewrite/fallback queue, no cooldown
// floor shorter than a second so a burst of parses cannot thunder a
// downstream LLM provider.
func DefaultConfig() Config {
	return Config{
		MaxInputLength:                200_000,
		MaxSchemaFields:                64,
		MinConfidence:                  0.6,
		EnableFieldFallbacks:           true,
		Strategy:                       StrategySequential,
		RewriteQueueConcurrency:        1,
		RewriteCooldown:                5 * time.Second,
		LeanLLMQueueConcurrency:        1,
		LeanLLMCooldown:                2 * time.Second,
		LeanLLMPlanConfidenceGate:      0.85,
		LeanLLMMaxInvocationsPerParse:  3,
		LeanLLMMaxTokensPerParse:       4_000,
		LeanLLMAllowOptionalFields:     false,
		LeanLLMMaxInputCharacters:      8_000,
	}
}

// Overlay returns a copy of c with every non-zero field of o applied on top.
// Zero values in o are treated as "not set" and leave c's value untouched;
// this is the three-layer merge spec.md §4.10 describes (defaults ⊕ profile
// ⊕ user), applied twice in sequence by the caller.
func (c Config) Overlay(o Config) Config {
	out := c
	if o.MaxInputLength != 0 {
		out.MaxInputLength = o.MaxInputLength
	}
	if o.MaxSchemaFields != 0 {
		out.MaxSchemaFields = o.MaxSchemaFields
	}
	if o.MinConfidence != 0 {
		out.MinConfidence = o.MinConfidence
	}
	if o.Strategy != "" {
		out.Strategy = o.Strategy
	}
	if o.RewriteQueueConcurrency != 0 {
		out.RewriteQueueConcurrency = o.RewriteQueueConcurrency
	}
	if o.RewriteCooldown != 0 {
		out.RewriteCooldown = o.RewriteCooldown
	}
	if o.LeanLLMQueueConcurrency != 0 {
		out.LeanLLMQueueConcurrency = o.LeanLLMQueueConcurrency
	}
	if o.LeanLLMCooldown != 0 {
		out.LeanLLMCooldown = o.LeanLLMCooldown
	}
	if o.LeanLLMPlanConfidenceGate != 0 {
		out.LeanLLMPlanConfidenceGate = o.LeanLLMPlanConfidenceGate
	}
	if o.LeanLLMMaxInvocationsPerParse != 0 {
		out.LeanLLMMaxInvocationsPerParse = o.LeanLLMMaxInvocationsPerParse
	}
	if o.LeanLLMMaxTokensPerParse != 0 {
		out.LeanLLMMaxTokensPerParse = o.LeanLLMMaxTokensPerParse
	}
	if o.LeanLLMMaxInputCharacters != 0 {
		out.LeanLLMMaxInputCharacters = o.LeanLLMMaxInputCharacters
	}
	// A bare zero-value bool in an overlay cannot be distinguished from "this
	// layer didn't set the field", so both booleans are only ever replaced
	// when the overlay actually asks to (true, or the explicit-disable
	// marker set by DisableFieldFallbacks).
	if o.EnableFieldFallbacks {
		out.EnableFieldFallbacks = true
		out.fallbacksExplicitlyDisabled = false
	}
	if o.fallbacksExplicitlyDisabled {
		out.EnableFieldFallbacks = false
		out.fallbacksExplicitlyDisabled = true
	}
	if o.LeanLLMAllowOptionalFields {
		out.LeanLLMAllowOptionalFields = true
	}
	if o.AutoRefreshDefaults.MinConfidence != nil {
		out.AutoRefreshDefaults.MinConfidence = o.AutoRefreshDefaults.MinConfidence
	}
	if o.AutoRefreshDefaults.MaxParses != nil {
		out.AutoRefreshDefaults.MaxParses = o.AutoRefreshDefaults.MaxParses
	}
	if o.AutoRefreshDefaults.MinInterval != 0 {
		out.AutoRefreshDefaults.MinInterval = o.AutoRefreshDefaults.MinInterval
	}
	if o.AutoRefreshDefaults.LowConfidenceGrace != 0 {
		out.AutoRefreshDefaults.LowConfidenceGrace = o.AutoRefreshDefaults.LowConfidenceGrace
	}
	return out
}

// DisableFieldFallbacks returns a Config overlay fragment that explicitly
// turns field fallbacks off, for use by profiles that need to disable a
// feature a bare zero-value overlay cannot express.
func DisableFieldFallbacks() Config {
	return Config{fallbacksExplicitlyDisabled: true}
}

// LoadConfigYAML reads a Config overlay from a YAML file, for callers that
// keep profile/config bundles on disk rather than constructing them in Go.
func LoadConfigYAML(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var raw configYAML
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return Config{}, err
	}
	return raw.toConfig(), nil
}

// configYAML is the on-disk shape of a Config overlay, kept separate from
// Config itself so the in-memory struct's field types (time.Duration,
// Strategy) don't have to carry yaml tags.
type configYAML struct {
	MaxInputLength                int     `yaml:"max_input_length"`
	MaxSchemaFields                int     `yaml:"max_schema_fields"`
	MinConfidence                  float64 `yaml:"min_confidence"`
	EnableFieldFallbacks           bool    `yaml:"enable_field_fallbacks"`
	Strategy                       string  `yaml:"strategy"`
	RewriteQueueConcurrency        int     `yaml:"rewrite_queue_concurrency"`
	RewriteCooldownMs              int64   `yaml:"rewrite_cooldown_ms"`
	LeanLLMQueueConcurrency        int     `yaml:"lean_llm_queue_concurrency"`
	LeanLLMCooldownMs              int64   `yaml:"lean_llm_cooldown_ms"`
	LeanLLMPlanConfidenceGate      float64 `yaml:"lean_llm_plan_confidence_gate"`
	LeanLLMMaxInvocationsPerParse  int     `yaml:"lean_llm_max_invocations_per_parse"`
	LeanLLMMaxTokensPerParse       int     `yaml:"lean_llm_max_tokens_per_parse"`
	LeanLLMAllowOptionalFields     bool    `yaml:"lean_llm_allow_optional_fields"`
	LeanLLMMaxInputCharacters      int     `yaml:"lean_llm_max_input_characters"`
}

func (c configYAML) toConfig() Config {
	return Config{
		MaxInputLength:                c.MaxInputLength,
		MaxSchemaFields:                c.MaxSchemaFields,
		MinConfidence:                  c.MinConfidence,
		EnableFieldFallbacks:           c.EnableFieldFallbacks,
		Strategy:                       Strategy(c.Strategy),
		RewriteQueueConcurrency:        c.RewriteQueueConcurrency,
		RewriteCooldown:                time.Duration(c.RewriteCooldownMs) * time.Millisecond,
		LeanLLMQueueConcurrency:        c.LeanLLMQueueConcurrency,
		LeanLLMCooldown:                time.Duration(c.LeanLLMCooldownMs) * time.Millisecond,
		LeanLLMPlanConfidenceGate:      c.LeanLLMPlanConfidenceGate,
		LeanLLMMaxInvocationsPerParse:  c.LeanLLMMaxInvocationsPerParse,
		LeanLLMMaxTokensPerParse:       c.LeanLLMMaxTokensPerParse,
		LeanLLMAllowOptionalFields:     c.LeanLLMAllowOptionalFields,
		LeanLLMMaxInputCharacters:      c.LeanLLMMaxInputCharacters,
	}
}
