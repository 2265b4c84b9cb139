package mining

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transcript-insights-go/internal/types"
)

func TestQuoteMiningShouldRun(t *testing.T) {
	m := QuoteMining{MinConfidence: 0.5}
	assert.True(t, m.ShouldRun(miningContext()))
	assert.False(t, m.ShouldRun(types.MiningContext{}))
}

func TestQuoteMiningPromptListsExistingQuotes(t *testing.T) {
	m := QuoteMining{MinConfidence: 0.5}
	prompt := m.BuildPrompt(miningContext())
	assert.Contains(t, prompt, `"Will do"`)
	assert.Contains(t, prompt, "## Response Format (JSON):")

	noQuotes := miningContext()
	noQuotes.ExistingResults.Quotes = nil
	assert.Contains(t, m.BuildPrompt(noQuotes), "(none)")
}

func TestQuoteMiningParseResponse(t *testing.T) {
	m := QuoteMining{MinConfidence: 0.5}
	out := m.ParseResponse(`{"quotes": [
		{"text": "Let's ship it", "speaker": "Alice", "timestamp": 12, "category": "Decision", "sentiment": "POSITIVE", "confidence": 0.7},
		{"text": "", "confidence": 0.9},
		{"text": "low confidence", "confidence": 0.1}
	]}`)

	require.Empty(t, out.Err)
	require.Len(t, out.Partial.NewQuotes, 1)
	q := out.Partial.NewQuotes[0]
	assert.Equal(t, types.QuoteCategoryDecision, q.Category)
	assert.Equal(t, types.SentimentPositive, q.Sentiment)
	assert.Equal(t, 3, out.Metadata.ItemsProcessed)
	assert.Equal(t, 1, out.Metadata.ItemsEnriched)
}

func TestQuoteMiningParseNotJSON(t *testing.T) {
	m := QuoteMining{MinConfidence: 0.5}
	out := m.ParseResponse("not json")
	assert.NotEmpty(t, out.Err)
	assert.Empty(t, out.Partial.NewQuotes)
	assert.Equal(t, types.MiningMetadata{}, out.Metadata)
}
