package resolver

import (
	"context"

	"github.com/parserator/kernel/heuristics"
	"github.com/parserator/kernel/types"
)

// SectionResolver segments non-JSON input into heading-delimited sections
// and looks for the target field inside the best-scoring section, per
// spec.md §4.6.
type SectionResolver struct {
	// MinScore is the minimum ScoreSection result required to consider a
	// section a match. Defaults to 0.5 when zero.
	MinScore float64
}

func (SectionResolver) Name() string { return "section" }

func (s SectionResolver) Resolve(_ context.Context, input string, step types.SearchStep) (Result, error) {
	minScore := s.MinScore
	if minScore == 0 {
		minScore = 0.5
	}
	target := heuristics.NormalizeKey(step.TargetKey)
	sections := heuristics.SegmentSections(input)
	if len(sections) == 0 {
		return skip, nil
	}

	var best heuristics.Section
	bestScore := -1.0
	for _, sec := range sections {
		score := heuristics.ScoreSection(sec, target)
		if score > bestScore {
			best, bestScore = sec, score
		}
	}
	if bestScore < minScore {
		return skip, nil
	}

	if val, ok := heuristics.ExtractLabeledValue(best.Body, target); ok {
		raw, matched := heuristics.MatchValue(step.ValidationType, val)
		if !matched {
			raw = val
		}
		return Result{
			Defined:    true,
			Value:      heuristics.CoerceValue(step.ValidationType, raw),
			Confidence: clamp(bestScore) * heuristics.BaselineConfidence(step.ValidationType),
		}, nil
	}

	if raw, ok := heuristics.MatchValue(step.ValidationType, best.Body); ok {
		return Result{
			Defined:    true,
			Value:      heuristics.CoerceValue(step.ValidationType, raw),
			Confidence: clamp(bestScore) * heuristics.BaselineConfidence(step.ValidationType) * 0.85,
		}, nil
	}

	return skip, nil
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}
