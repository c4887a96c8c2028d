package usecase_test

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/propfolio/backoffice/internal/domain"
	"github.com/propfolio/backoffice/internal/usecase"
	"github.com/propfolio/backoffice/internal/usecase/mocks"
)

var registry = []*domain.Property{
	{ID: "prop-1", OrgID: "org-1", Name: "123 Main St"},
	{ID: "prop-2", OrgID: "org-1", Name: "Oak Ridge Apartments"},
	{ID: "prop-3", OrgID: "org-1", Name: "Elm Court (NEW)"},
}

func newMatcher(t *testing.T, oracle usecase.MatchOracle) *usecase.PropertyMatcher {
	t.Helper()
	return usecase.NewPropertyMatcher(oracle, zerolog.Nop())
}

func assertPartition(t *testing.T, names []string, outcome *domain.MatchOutcome) {
	t.Helper()

	var got []string
	for name := range outcome.Matches {
		got = append(got, name)
	}
	got = append(got, outcome.Unmatched...)
	sort.Strings(got)

	want := append([]string(nil), names...)
	sort.Strings(want)

	assert.Equal(t, want, got, "matches and unmatched must partition the input")

	for _, name := range outcome.Unmatched {
		_, dup := outcome.Matches[name]
		assert.False(t, dup, "name %q appears in both sets", name)
	}
}

func TestPropertyMatcher_ExactMatchesSkipOracle(t *testing.T) {
	ctrl := gomock.NewController(t)
	oracle := mocks.NewMockMatchOracle(ctrl)
	// No EXPECT: any oracle call fails the test.

	matcher := newMatcher(t, oracle)

	names := []string{"123 Main St (OLD)", "123   main st", "Elm Court"}
	outcome := matcher.Match(context.Background(), names, registry)

	require.Empty(t, outcome.Unmatched)
	require.Len(t, outcome.Matches, 3)

	for _, name := range names {
		result := outcome.Matches[name]
		assert.Equal(t, 1.0, result.Confidence, "exact match confidence for %q", name)
		assert.Equal(t, "exact match", result.Reason)
	}

	assert.Equal(t, "prop-1", outcome.Matches["123 Main St (OLD)"].PropertyID)
	assert.Equal(t, "prop-3", outcome.Matches["Elm Court"].PropertyID)

	assertPartition(t, names, outcome)
}

func TestPropertyMatcher_BatchesRemainderToOracle(t *testing.T) {
	ctrl := gomock.NewController(t)
	oracle := mocks.NewMockMatchOracle(ctrl)

	oracle.EXPECT().
		SuggestMatches(gomock.Any(), []string{"Oak Rdge Apts", "Totally Unknown"}, registry).
		Return(map[string]domain.MatchResult{
			"Oak Rdge Apts": {PropertyID: "prop-2", Confidence: 0.85, Reason: "minor misspelling"},
		}, nil)

	matcher := newMatcher(t, oracle)

	names := []string{"123 Main St", "Oak Rdge Apts", "Totally Unknown"}
	outcome := matcher.Match(context.Background(), names, registry)

	require.Len(t, outcome.Matches, 2)
	assert.Equal(t, "prop-1", outcome.Matches["123 Main St"].PropertyID)
	assert.Equal(t, 0.85, outcome.Matches["Oak Rdge Apts"].Confidence)
	assert.Equal(t, []string{"Totally Unknown"}, outcome.Unmatched)

	assertPartition(t, names, outcome)
}

func TestPropertyMatcher_OracleFailureFallsBackToUnmatched(t *testing.T) {
	ctrl := gomock.NewController(t)
	oracle := mocks.NewMockMatchOracle(ctrl)

	oracle.EXPECT().
		SuggestMatches(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("oracle timeout"))

	matcher := newMatcher(t, oracle)

	names := []string{"123 Main St", "Oak Rdge Apts", "Maple Heights"}
	outcome := matcher.Match(context.Background(), names, registry)

	// Exact matches already computed are unaffected by the failure.
	require.Len(t, outcome.Matches, 1)
	assert.Equal(t, "prop-1", outcome.Matches["123 Main St"].PropertyID)

	assert.ElementsMatch(t, []string{"Oak Rdge Apts", "Maple Heights"}, outcome.Unmatched)
	assertPartition(t, names, outcome)
}

func TestPropertyMatcher_FiltersInadmissibleSuggestions(t *testing.T) {
	ctrl := gomock.NewController(t)
	oracle := mocks.NewMockMatchOracle(ctrl)

	oracle.EXPECT().
		SuggestMatches(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(map[string]domain.MatchResult{
			"Below Threshold": {PropertyID: "prop-2", Confidence: 0.4, Reason: "weak"},
			"Unknown ID":      {PropertyID: "prop-999", Confidence: 0.9, Reason: "hallucinated"},
			"Too Confident":   {PropertyID: "prop-2", Confidence: 1.5, Reason: "out of range"},
			"Fine":            {PropertyID: "prop-2", Confidence: 0.5, Reason: "partial match"},
		}, nil)

	matcher := newMatcher(t, oracle)

	names := []string{"Below Threshold", "Unknown ID", "Too Confident", "Fine"}
	outcome := matcher.Match(context.Background(), names, registry)

	require.Len(t, outcome.Matches, 1)
	assert.Equal(t, 0.5, outcome.Matches["Fine"].Confidence)
	assert.ElementsMatch(t, []string{"Below Threshold", "Unknown ID", "Too Confident"}, outcome.Unmatched)

	assertPartition(t, names, outcome)
}

func TestPropertyMatcher_OracleCannotOverrideExactMatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	oracle := mocks.NewMockMatchOracle(ctrl)

	// The oracle only ever sees the remainder, so a rogue suggestion for an
	// exact-matched name must be ignored.
	oracle.EXPECT().
		SuggestMatches(gomock.Any(), []string{"Maple Heights"}, registry).
		Return(map[string]domain.MatchResult{
			"123 Main St":   {PropertyID: "prop-2", Confidence: 0.9, Reason: "should be ignored"},
			"Maple Heights": {PropertyID: "prop-2", Confidence: 0.7, Reason: "partial"},
		}, nil)

	matcher := newMatcher(t, oracle)

	names := []string{"123 Main St", "Maple Heights"}
	outcome := matcher.Match(context.Background(), names, registry)

	assert.Equal(t, "prop-1", outcome.Matches["123 Main St"].PropertyID)
	assert.Equal(t, 1.0, outcome.Matches["123 Main St"].Confidence)
	assert.Equal(t, "prop-2", outcome.Matches["Maple Heights"].PropertyID)

	assertPartition(t, names, outcome)
}

func TestPropertyMatcher_NoRemainderNoOracleCall(t *testing.T) {
	ctrl := gomock.NewController(t)
	oracle := mocks.NewMockMatchOracle(ctrl)

	matcher := newMatcher(t, oracle)

	outcome := matcher.Match(context.Background(), []string{"123 Main St"}, registry)

	assert.Len(t, outcome.Matches, 1)
	assert.Empty(t, outcome.Unmatched)
}

func TestPropertyMatcher_EmptyInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	oracle := mocks.NewMockMatchOracle(ctrl)

	matcher := newMatcher(t, oracle)

	outcome := matcher.Match(context.Background(), nil, registry)

	assert.Empty(t, outcome.Matches)
	assert.Empty(t, outcome.Unmatched)
}

func oracleCallCount(t *testing.T) float64 {
	t.Helper()

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	var total float64
	for _, mf := range families {
		if mf.GetName() != "backoffice_match_oracle_calls_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}

	return total
}

func TestPropertyMatcher_DoesNotCountOracleCalls(t *testing.T) {
	ctrl := gomock.NewController(t)
	oracle := mocks.NewMockMatchOracle(ctrl)

	oracle.EXPECT().
		SuggestMatches(gomock.Any(), []string{"Oak Rdge Apts"}, registry).
		Return(map[string]domain.MatchResult{
			"Oak Rdge Apts": {PropertyID: "prop-2", Confidence: 0.85, Reason: "minor misspelling"},
		}, nil)

	matcher := newMatcher(t, oracle)

	// Oracle round trips are accounted for inside the oracle client itself.
	// If this layer counted them too, every round trip would show up twice.
	before := oracleCallCount(t)
	matcher.Match(context.Background(), []string{"Oak Rdge Apts"}, registry)
	after := oracleCallCount(t)

	assert.Equal(t, before, after, "matcher must not record oracle call metrics")
}

func TestPropertyMatcher_DuplicateNamesResolvedOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	oracle := mocks.NewMockMatchOracle(ctrl)

	oracle.EXPECT().
		SuggestMatches(gomock.Any(), []string{"Maple Heights"}, registry).
		Return(map[string]domain.MatchResult{}, nil)

	matcher := newMatcher(t, oracle)

	names := []string{"123 Main St", "123 Main St", "Maple Heights", "Maple Heights"}
	outcome := matcher.Match(context.Background(), names, registry)

	assert.Len(t, outcome.Matches, 1)
	assert.Equal(t, []string{"Maple Heights"}, outcome.Unmatched)
}
