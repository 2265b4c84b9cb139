package strategy

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transcript-insights-go/internal/llm"
	"transcript-insights-go/internal/retry"
	"transcript-insights-go/internal/types"
)

func testSegments() []types.Segment {
	return []types.Segment{
		{ID: "seg-001", Speaker: "Alice", Start: 0, End: 10, Text: "Welcome everyone, let's get started."},
		{ID: "seg-002", Speaker: "Bob", Start: 10, End: 20, Text: "We decided to ship on Friday."},
		{ID: "seg-003", Speaker: "Alice", Start: 20, End: 30, Text: "Bob, please fix the login bug urgently."},
	}
}

func tmplWithGroups() types.TemplateSpec {
	return types.TemplateSpec{
		Name: "meeting",
		Sections: []types.TemplateSection{
			{Key: "overview", Title: "Overview", Group: "narrative"},
			{Key: "discussion", Title: "Discussion", Group: "narrative"},
			{Key: "outcomes", Title: "Outcomes", Group: "closing"},
		},
	}
}

func testOpts() Options {
	return Options{Retry: retry.Policy{Attempts: 1}}
}

// keyedClient answers by prompt substring so concurrent calls stay
// deterministic.
type keyedClient struct {
	mu        sync.Mutex
	responses map[string]string
	errs      map[string]error
	prompts   []string
}

func (c *keyedClient) Complete(_ context.Context, prompt string, _ llm.Params) (string, error) {
	c.mu.Lock()
	c.prompts = append(c.prompts, prompt)
	c.mu.Unlock()
	for k, e := range c.errs {
		if strings.Contains(prompt, k) {
			return "", e
		}
	}
	for k, v := range c.responses {
		if strings.Contains(prompt, k) {
			return v, nil
		}
	}
	return "", fmt.Errorf("no scripted response matches prompt")
}

func (c *keyedClient) promptContaining(t *testing.T, key string) string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.prompts {
		if strings.Contains(p, key) {
			return p
		}
	}
	t.Fatalf("no prompt contains %q", key)
	return ""
}

func TestBasicExecutorSingleCall(t *testing.T) {
	client := &llm.Scripted{Responses: []string{
		`{"summary": "Quick sync.",
		  "sections": [{"key": "outcomes", "title": "Outcomes", "content": "Ship Friday."},
		               {"key": "overview", "title": "Overview", "content": "Weekly sync."},
		               {"key": "discussion", "title": "Discussion", "content": "Release plans."}],
		  "actionItems": [{"task": "Fix the login bug", "owner": "Bob", "timestamp": 20}],
		  "decisions": [{"text": "Ship on Friday", "timestamp": 10}],
		  "quotes": [{"text": "let's get started", "speaker": "Alice", "timestamp": 0}]}`,
	}}

	exec := &BasicExecutor{}
	results, meta, err := exec.Execute(context.Background(), testSegments(), tmplWithGroups(), client, testOpts())
	require.NoError(t, err)

	assert.Equal(t, 1, meta.CallsMade)
	assert.Empty(t, meta.FailedUnits)
	assert.Equal(t, "Quick sync.", results.Summary)

	// sections come back in template order regardless of response order
	require.Len(t, results.Sections, 3)
	assert.Equal(t, "overview", results.Sections[0].Key)
	assert.Equal(t, "discussion", results.Sections[1].Key)
	assert.Equal(t, "outcomes", results.Sections[2].Key)

	require.Len(t, results.ActionItems, 1)
	assert.Equal(t, "act-1", results.ActionItems[0].ID)
	require.Len(t, results.Decisions, 1)
	assert.Equal(t, "dec-1", results.Decisions[0].ID)
	require.Len(t, results.Quotes, 1)
	assert.Equal(t, "quote-1", results.Quotes[0].ID)
}

func TestBasicExecutorBadResponseSoftFails(t *testing.T) {
	client := &llm.Scripted{Responses: []string{"sorry, I cannot help with that"}}

	exec := &BasicExecutor{}
	results, meta, err := exec.Execute(context.Background(), testSegments(), tmplWithGroups(), client, testOpts())
	require.NoError(t, err)

	assert.Equal(t, []string{"analysis"}, meta.FailedUnits)
	require.Len(t, results.Sections, 3)
	for _, sec := range results.Sections {
		assert.Empty(t, sec.Content)
		assert.NotEmpty(t, sec.Error)
	}
}

func TestHybridExecutorFansOutBatches(t *testing.T) {
	client := &keyedClient{responses: map[string]string{
		`Write section "overview"`: `{"sections": [{"key": "overview", "title": "Overview", "content": "Weekly sync."},
		                                           {"key": "discussion", "title": "Discussion", "content": "Release plans."}]}`,
		`Write section "outcomes"`: `{"sections": [{"key": "outcomes", "title": "Outcomes", "content": "Ship Friday."}]}`,
		"Extract the summary":      `{"summary": "Quick sync.", "actionItems": [{"task": "Fix the login bug", "owner": "Bob"}], "decisions": [], "quotes": []}`,
	}}

	var mu sync.Mutex
	progress := 0
	opts := testOpts()
	opts.Progress = func(current, total int, message string) {
		mu.Lock()
		progress++
		mu.Unlock()
		assert.Equal(t, 3, total)
	}

	exec := &HybridExecutor{}
	results, meta, err := exec.Execute(context.Background(), testSegments(), tmplWithGroups(), client, opts)
	require.NoError(t, err)

	assert.Equal(t, 3, meta.CallsMade)
	assert.Equal(t, 3, progress)
	assert.Empty(t, meta.FailedUnits)

	require.Len(t, results.Sections, 3)
	assert.Equal(t, "overview", results.Sections[0].Key)
	assert.Equal(t, "outcomes", results.Sections[2].Key)
	assert.Equal(t, "Quick sync.", results.Summary)
	require.Len(t, results.ActionItems, 1)
	assert.Equal(t, "act-1", results.ActionItems[0].ID)

	// the second batch carries a locally derived contextual link
	second := client.promptContaining(t, `Write section "outcomes"`)
	assert.Contains(t, second, "## Context:")
	assert.Contains(t, second, "Earlier batches cover: Overview, Discussion.")
}

func TestHybridExecutorOneBatchFailing(t *testing.T) {
	client := &keyedClient{responses: map[string]string{
		`Write section "overview"`: `{"sections": [{"key": "overview", "title": "Overview", "content": "Weekly sync."},
		                                           {"key": "discussion", "title": "Discussion", "content": "Release plans."}]}`,
		`Write section "outcomes"`: "garbage, no json here",
		"Extract the summary":      `{"summary": "Quick sync."}`,
	}}

	exec := &HybridExecutor{}
	results, meta, err := exec.Execute(context.Background(), testSegments(), tmplWithGroups(), client, testOpts())
	require.NoError(t, err)

	assert.Contains(t, meta.FailedUnits, "batch-2")
	require.Len(t, results.Sections, 3)
	assert.Equal(t, "Weekly sync.", results.Sections[0].Content)
	assert.NotEmpty(t, results.Sections[2].Error)
	assert.Empty(t, results.Sections[2].Content)
}

func TestAdvancedExecutorCarriesContext(t *testing.T) {
	client := &keyedClient{responses: map[string]string{
		`Write the "Overview" section`:   `{"sections": [{"key": "overview", "title": "Overview", "content": "Weekly sync about the release."}]}`,
		`Write the "Discussion" section`: `{"sections": [{"key": "discussion", "title": "Discussion", "content": "Release plans."}]}`,
		`Write the "Outcomes" section`:   `{"sections": [{"key": "outcomes", "title": "Outcomes", "content": "Ship Friday."}]}`,
		"Extract the summary":            `{"summary": "Quick sync.", "decisions": [{"text": "Ship on Friday", "timestamp": 10}]}`,
	}}

	exec := &AdvancedExecutor{}
	results, meta, err := exec.Execute(context.Background(), testSegments(), tmplWithGroups(), client, testOpts())
	require.NoError(t, err)

	assert.Equal(t, 4, meta.CallsMade)
	require.Len(t, results.Sections, 3)
	require.Len(t, results.Decisions, 1)
	assert.Equal(t, "dec-1", results.Decisions[0].ID)

	// later sections see the accumulated output of prior ones
	outcomesPrompt := client.promptContaining(t, `Write the "Outcomes" section`)
	assert.Contains(t, outcomesPrompt, "Weekly sync about the release.")
	assert.Contains(t, outcomesPrompt, "Release plans.")

	extractPrompt := client.promptContaining(t, "Extract the summary")
	assert.Contains(t, extractPrompt, "Ship Friday.")
}

func TestAdvancedExecutorSectionSoftFailure(t *testing.T) {
	client := &keyedClient{responses: map[string]string{
		`Write the "Overview" section`:   "no json",
		`Write the "Discussion" section`: `{"sections": [{"key": "discussion", "title": "Discussion", "content": "Release plans."}]}`,
		`Write the "Outcomes" section`:   `{"sections": [{"key": "outcomes", "title": "Outcomes", "content": "Ship Friday."}]}`,
		"Extract the summary":            `{"summary": "Quick sync."}`,
	}}

	exec := &AdvancedExecutor{}
	results, meta, err := exec.Execute(context.Background(), testSegments(), tmplWithGroups(), client, testOpts())
	require.NoError(t, err)

	assert.Contains(t, meta.FailedUnits, "section-overview")
	require.Len(t, results.Sections, 3)
	assert.NotEmpty(t, results.Sections[0].Error)
	assert.Equal(t, "Release plans.", results.Sections[1].Content)
}

func TestForStrategy(t *testing.T) {
	for _, s := range []Strategy{Basic, Hybrid, Advanced} {
		exec, err := ForStrategy(s)
		require.NoError(t, err)
		assert.Equal(t, s, exec.Name())
	}
	_, err := ForStrategy("bogus")
	assert.Error(t, err)
}
