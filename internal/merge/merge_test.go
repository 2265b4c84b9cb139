package merge

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transcript-insights-go/internal/types"
)

func fp(v float64) *float64 { return &v }
func bp(v bool) *bool       { return &v }

func originalResults() types.AnalysisResults {
	return types.AnalysisResults{
		Summary: "A sync.",
		Sections: []types.Section{
			{Key: "overview", Title: "Overview", Content: "Weekly sync."},
		},
		ActionItems: []types.ActionItem{
			{ID: "a1", Task: "Fix bug", Owner: "Bob"},
			{ID: "a2", Task: "Write docs"},
		},
		Decisions: []types.Decision{
			{ID: "d1", Text: "Ship on Friday", Timestamp: 10},
		},
		Quotes: []types.Quote{
			{ID: "q1", Text: "Let's ship it", Speaker: "Alice"},
		},
	}
}

func TestApplyEmptyPartialIsIdentity(t *testing.T) {
	original := originalResults()
	merged := Apply(original, types.PartialEnrichmentResult{})
	if diff := cmp.Diff(original, merged); diff != "" {
		t.Fatalf("empty partial changed results (-want +got):\n%s", diff)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	original := originalResults()
	partial := types.PartialEnrichmentResult{
		ActionEnrichments: []types.ActionEnrichment{
			{ID: "a1", Priority: types.PriorityHigh, Confidence: fp(0.9)},
		},
	}
	_ = Apply(original, partial)
	assert.Empty(t, original.ActionItems[0].Priority)
	assert.Nil(t, original.ActionItems[0].Confidence)
}

func TestApplyActionEnrichmentIsAdditive(t *testing.T) {
	merged := Apply(originalResults(), types.PartialEnrichmentResult{
		ActionEnrichments: []types.ActionEnrichment{
			{ID: "a1", Priority: types.PriorityHigh, Confidence: fp(0.9)},
		},
	})

	a1 := merged.ActionItems[0]
	assert.Equal(t, "a1", a1.ID)
	assert.Equal(t, "Fix bug", a1.Task) // base fields untouched
	assert.Equal(t, "Bob", a1.Owner)
	assert.Equal(t, types.PriorityHigh, a1.Priority)
	require.NotNil(t, a1.Confidence)
	assert.Equal(t, 0.9, *a1.Confidence)

	// items without an enrichment pass through unchanged
	assert.Equal(t, originalResults().ActionItems[1], merged.ActionItems[1])
}

func TestApplyAbsentFieldsNeverOverwrite(t *testing.T) {
	original := originalResults()
	original.ActionItems[0].AssignedBy = "Alice"
	original.ActionItems[0].Priority = types.PriorityLow

	merged := Apply(original, types.PartialEnrichmentResult{
		ActionEnrichments: []types.ActionEnrichment{
			{ID: "a1", Confidence: fp(0.8)}, // supplies neither assignedBy nor priority
		},
	})
	assert.Equal(t, "Alice", merged.ActionItems[0].AssignedBy)
	assert.Equal(t, types.PriorityLow, merged.ActionItems[0].Priority)
}

func TestApplyDecisionEnrichment(t *testing.T) {
	merged := Apply(originalResults(), types.PartialEnrichmentResult{
		DecisionEnrichments: []types.DecisionEnrichment{
			{
				ID:         "d1",
				MadeBy:     "Carol",
				VoteTally:  &types.VoteTally{For: 5, Against: 1, Abstain: 0},
				IsExplicit: bp(true),
				Confidence: fp(0.8),
			},
		},
	})

	d1 := merged.Decisions[0]
	assert.Equal(t, "Carol", d1.MadeBy)
	require.NotNil(t, d1.VoteTally)
	assert.Equal(t, 5, d1.VoteTally.For)
}

func TestApplyDropsNegativeVoteTallyKeepsRest(t *testing.T) {
	merged := Apply(originalResults(), types.PartialEnrichmentResult{
		DecisionEnrichments: []types.DecisionEnrichment{
			{
				ID:         "d1",
				MadeBy:     "Carol",
				VoteTally:  &types.VoteTally{For: 5, Against: -1, Abstain: 0},
				Confidence: fp(0.8),
			},
		},
	})

	d1 := merged.Decisions[0]
	assert.Nil(t, d1.VoteTally) // invalid tally dropped
	assert.Equal(t, "Carol", d1.MadeBy)
	require.NotNil(t, d1.Confidence)
}

func TestApplyDeduplicatesNewQuotes(t *testing.T) {
	merged := Apply(originalResults(), types.PartialEnrichmentResult{
		NewQuotes: []types.Quote{
			{Text: "  LET'S   SHIP IT  ", Speaker: "Alice"}, // dup of q1 modulo case/whitespace
			{Text: "We need more tests", Speaker: "Bob", Category: types.QuoteCategoryConcern, Confidence: fp(0.7)},
			{Text: "we need   MORE tests"}, // dup within the partial
		},
	})

	require.Len(t, merged.Quotes, 2)
	assert.Equal(t, "q1", merged.Quotes[0].ID)
	assert.Equal(t, "quote-mined-1", merged.Quotes[1].ID)
	assert.Equal(t, "We need more tests", merged.Quotes[1].Text)
}

func TestApplyUnknownIDsAreIgnored(t *testing.T) {
	merged := Apply(originalResults(), types.PartialEnrichmentResult{
		ActionEnrichments: []types.ActionEnrichment{
			{ID: "no-such-item", Priority: types.PriorityHigh, Confidence: fp(0.9)},
		},
	})
	// nothing duplicated, nothing invented
	assert.Len(t, merged.ActionItems, 2)
	for _, a := range merged.ActionItems {
		assert.Empty(t, a.Priority)
	}
}

func TestValidateActionConfidenceRange(t *testing.T) {
	for _, c := range []float64{0, 0.5, 1} {
		assert.True(t, ValidateAction(types.ActionEnrichment{ID: "a", Confidence: fp(c)}))
	}
	for _, c := range []float64{-0.1, 1.1, 42} {
		assert.False(t, ValidateAction(types.ActionEnrichment{ID: "a", Confidence: fp(c)}))
	}
	assert.True(t, ValidateAction(types.ActionEnrichment{ID: "a"}))
}

func TestValidateActionEnumAndTimestamp(t *testing.T) {
	assert.False(t, ValidateAction(types.ActionEnrichment{ID: "a", Priority: "whenever"}))
	assert.True(t, ValidateAction(types.ActionEnrichment{ID: "a", Priority: types.PriorityMedium}))
	assert.False(t, ValidateAction(types.ActionEnrichment{ID: "a", AssignmentTimestamp: fp(-3)}))
}

func TestValidateDecisionVoteTally(t *testing.T) {
	assert.True(t, ValidateDecision(types.DecisionEnrichment{ID: "d", VoteTally: &types.VoteTally{For: 5, Against: 1}}))
	assert.False(t, ValidateDecision(types.DecisionEnrichment{ID: "d", VoteTally: &types.VoteTally{For: 5, Against: -1}}))
}

func TestValidateQuote(t *testing.T) {
	assert.True(t, ValidateQuote(types.Quote{Text: "x", Category: types.QuoteCategoryHumor, Sentiment: types.SentimentNeutral}))
	assert.False(t, ValidateQuote(types.Quote{Text: "x", Category: "rant"}))
	assert.False(t, ValidateQuote(types.Quote{Text: "x", Sentiment: "angry"}))
	assert.False(t, ValidateQuote(types.Quote{Text: "x", Timestamp: -1}))
	assert.False(t, ValidateQuote(types.Quote{Text: "x", Confidence: fp(2)}))
}

func TestNormalizeQuoteText(t *testing.T) {
	assert.Equal(t, "let's ship it", NormalizeQuoteText("  Let's   SHIP\tit "))
	assert.Equal(t, NormalizeQuoteText("A  b C"), NormalizeQuoteText("a b\nc"))
}

func TestShouldEnrich(t *testing.T) {
	assert.False(t, ShouldEnrich(types.AnalysisResults{}, 1))
	assert.True(t, ShouldEnrich(types.AnalysisResults{Decisions: []types.Decision{{ID: "d1"}}}, 1))
	assert.False(t, ShouldEnrich(types.AnalysisResults{Decisions: []types.Decision{{ID: "d1"}}}, 3))
	assert.True(t, ShouldEnrich(types.AnalysisResults{
		Decisions:   []types.Decision{{ID: "d1"}},
		ActionItems: []types.ActionItem{{ID: "a1"}, {ID: "a2"}},
	}, 3))
	// minItems below 1 behaves as 1
	assert.False(t, ShouldEnrich(types.AnalysisResults{}, 0))
}
