package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/propfolio/backoffice/internal/domain"
	"github.com/propfolio/backoffice/internal/infrastructure/metrics"
)

// PropertyMatcher matches vendor import names against the canonical
// property registry with graduated confidence.
type PropertyMatcher struct {
	oracle MatchOracle
	logger zerolog.Logger
}

// NewPropertyMatcher creates a new PropertyMatcher.
func NewPropertyMatcher(oracle MatchOracle, logger zerolog.Logger) *PropertyMatcher {
	return &PropertyMatcher{
		oracle: oracle,
		logger: logger,
	}
}

// Match resolves every import name to exactly one outcome: a MatchResult
// with confidence >= 0.5, or membership in Unmatched. Two explicit phases:
//
//  1. Exact matching on normalized names. An exact hit is resolved at
//     confidence 1.0 with zero oracle involvement, so the common case stays
//     deterministic and cheap.
//  2. One batched oracle call for everything left. If the oracle fails for
//     any reason the whole remainder falls back to Unmatched; attaching a
//     low-confidence guess to financial data is worse than matching nothing.
//
// The returned sets always partition the input: the unmatched list is
// recomputed locally from the remainder minus the oracle's matches rather
// than trusting the oracle's own bookkeeping.
func (m *PropertyMatcher) Match(ctx context.Context, importNames []string, properties []*domain.Property) *domain.MatchOutcome {
	outcome := &domain.MatchOutcome{
		Matches: make(map[string]domain.MatchResult),
	}

	byNormalizedName := make(map[string]*domain.Property, len(properties))
	knownIDs := make(map[string]bool, len(properties))
	for _, p := range properties {
		knownIDs[p.ID] = true

		key := domain.NormalizeName(p.Name)
		if _, exists := byNormalizedName[key]; !exists {
			byNormalizedName[key] = p
		}
	}

	// Phase 1: exact matches on normalized keys.
	var remaining []string

	seen := make(map[string]bool, len(importNames))
	for _, name := range importNames {
		if seen[name] {
			continue
		}
		seen[name] = true

		if p, ok := byNormalizedName[domain.NormalizeName(name)]; ok {
			outcome.Matches[name] = domain.MatchResult{
				PropertyID: p.ID,
				Confidence: 1.0,
				Reason:     domain.ExactMatchReason,
			}

			continue
		}

		remaining = append(remaining, name)
	}

	metrics.Matches("exact", len(outcome.Matches))

	// Phase 2: one batched oracle call for the remainder.
	if len(remaining) == 0 {
		return outcome
	}

	// The oracle implementation accounts for its own round trips; this
	// layer only records match decisions.
	suggestions, err := m.oracle.SuggestMatches(ctx, remaining, properties)
	if err != nil {
		m.logger.Warn().
			Err(err).
			Int("names", len(remaining)).
			Msg("match oracle failed, falling back to unmatched")

		outcome.Unmatched = append(outcome.Unmatched, remaining...)
		metrics.Matches("unmatched", len(remaining))

		return outcome
	}

	oracleMatched := 0
	for _, name := range remaining {
		result, ok := suggestions[name]
		if ok && m.admissible(result, knownIDs) {
			outcome.Matches[name] = result
			oracleMatched++

			continue
		}

		outcome.Unmatched = append(outcome.Unmatched, name)
	}

	metrics.Matches("oracle", oracleMatched)
	metrics.Matches("unmatched", len(remaining)-oracleMatched)

	return outcome
}

// admissible filters oracle output: confidence must clear the threshold,
// stay within [0,1], and reference a property that actually exists.
func (m *PropertyMatcher) admissible(result domain.MatchResult, knownIDs map[string]bool) bool {
	if result.Confidence < domain.MatchConfidenceThreshold || result.Confidence > 1.0 {
		return false
	}

	return knownIDs[result.PropertyID]
}
