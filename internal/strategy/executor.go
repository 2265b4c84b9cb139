package strategy

import (
	"context"
	"encoding/json"
	"fmt"

	"transcript-insights-go/internal/llm"
	"transcript-insights-go/internal/retry"
	"transcript-insights-go/internal/types"
)

// Options carries the per-run knobs shared by all executors.
type Options struct {
	Retry  retry.Policy
	Params llm.Params
	// Progress is invoked at each LLM round-trip for UI feedback. Optional.
	Progress func(current, total int, message string)
}

func (o Options) progress(current, total int, message string) {
	if o.Progress != nil {
		o.Progress(current, total, message)
	}
}

// Executor turns transcript segments into draft analysis results. The three
// implementations differ only in fan-out shape and context carried between
// calls.
type Executor interface {
	Name() Strategy
	Execute(ctx context.Context, segments []types.Segment, tmpl types.TemplateSpec, client llm.Client, opts Options) (types.AnalysisResults, types.RunMetadata, error)
}

// ForStrategy resolves a concrete executor. Auto must be resolved by the
// caller (via Recommend) before reaching here.
func ForStrategy(s Strategy) (Executor, error) {
	switch s {
	case Basic:
		return &BasicExecutor{}, nil
	case Hybrid:
		return &HybridExecutor{}, nil
	case Advanced:
		return &AdvancedExecutor{}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", s)
	}
}

// payload is the JSON shape every analysis response is decoded into. Missing
// lists simply stay empty.
type payload struct {
	Summary      string              `json:"summary"`
	Sections     []types.Section     `json:"sections"`
	ActionItems  []types.ActionItem  `json:"actionItems"`
	Decisions    []types.Decision    `json:"decisions"`
	Quotes       []types.Quote       `json:"quotes"`
	Benchmarks   []types.Benchmark   `json:"benchmarks"`
	RadioReports []types.RadioReport `json:"radioReports"`
	SafetyEvents []types.SafetyEvent `json:"safetyEvents"`
}

func parsePayload(raw string) (payload, error) {
	var p payload
	body := llm.ExtractJSON(raw)
	if body == "" {
		return p, fmt.Errorf("no JSON object in response")
	}
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return p, fmt.Errorf("decode response: %w", err)
	}
	return p, nil
}

// assignIDs gives every extracted item its stable id. IDs are assigned here
// once and never regenerated downstream.
func assignIDs(r *types.AnalysisResults) {
	for i := range r.ActionItems {
		if r.ActionItems[i].ID == "" {
			r.ActionItems[i].ID = fmt.Sprintf("act-%d", i+1)
		}
	}
	for i := range r.Decisions {
		if r.Decisions[i].ID == "" {
			r.Decisions[i].ID = fmt.Sprintf("dec-%d", i+1)
		}
	}
	for i := range r.Quotes {
		if r.Quotes[i].ID == "" {
			r.Quotes[i].ID = fmt.Sprintf("quote-%d", i+1)
		}
	}
	for i := range r.Benchmarks {
		if r.Benchmarks[i].ID == "" {
			r.Benchmarks[i].ID = fmt.Sprintf("bench-%d", i+1)
		}
	}
	for i := range r.RadioReports {
		if r.RadioReports[i].ID == "" {
			r.RadioReports[i].ID = fmt.Sprintf("radio-%d", i+1)
		}
	}
	for i := range r.SafetyEvents {
		if r.SafetyEvents[i].ID == "" {
			r.SafetyEvents[i].ID = fmt.Sprintf("safety-%d", i+1)
		}
	}
}

// complete wraps one LLM round-trip in the retry policy.
func complete(ctx context.Context, client llm.Client, prompt string, opts Options) (string, error) {
	var out string
	err := opts.Retry.Do(ctx, func() error {
		var callErr error
		out, callErr = client.Complete(ctx, prompt, opts.Params)
		return callErr
	})
	return out, err
}

// placeholderSections fills the template's sections with empty content and a
// soft error annotation when a response could not be used.
func placeholderSections(sections []types.TemplateSection, errMsg string) []types.Section {
	out := make([]types.Section, 0, len(sections))
	for _, sec := range sections {
		out = append(out, types.Section{
			Key:   sec.Key,
			Title: sec.Title,
			Error: errMsg,
		})
	}
	return out
}
