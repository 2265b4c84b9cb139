// Package evaluate implements the optional self-evaluation pass: one extra
// LLM call that critiques the draft results against the transcript and
// returns a revision plus a 0-10 quality score.
package evaluate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"transcript-insights-go/internal/llm"
	"transcript-insights-go/internal/logger"
	"transcript-insights-go/internal/retry"
	"transcript-insights-go/internal/strategy"
	"transcript-insights-go/internal/types"
)

type Evaluator struct {
	Retry  retry.Policy
	Params llm.Params
}

type response struct {
	QualityScore   float64                `json:"qualityScore"`
	Improvements   []string               `json:"improvements"`
	Additions      []string               `json:"additions"`
	Warnings       []string               `json:"warnings"`
	Reasoning      string                 `json:"reasoning"`
	RevisedResults *types.AnalysisResults `json:"revisedResults"`
}

// Run critiques draft against the transcript and returns the final results
// plus the evaluation record. A response that cannot be parsed degrades
// softly: the draft stands and the evaluation carries a warning.
func (e Evaluator) Run(ctx context.Context, client llm.Client, draft types.AnalysisResults, segments []types.Segment, tmpl types.TemplateSpec) (types.AnalysisResults, types.EvaluationResults, error) {
	log := logger.Component("self-evaluator")
	start := time.Now()

	prompt := buildPrompt(draft, segments, tmpl)

	var raw string
	err := e.Retry.Do(ctx, func() error {
		var callErr error
		raw, callErr = client.Complete(ctx, prompt, e.Params)
		return callErr
	})
	if err != nil {
		return draft, types.EvaluationResults{}, fmt.Errorf("evaluation call failed: %w", err)
	}

	body := llm.ExtractJSON(raw)
	var resp response
	if body == "" || json.Unmarshal([]byte(body), &resp) != nil {
		log.Warn("evaluation response unusable, keeping draft")
		return draft, types.EvaluationResults{
			Warnings: []string{"evaluation response could not be parsed; draft kept unchanged"},
		}, nil
	}

	eval := types.EvaluationResults{
		QualityScore: clampScore(resp.QualityScore),
		Improvements: resp.Improvements,
		Additions:    resp.Additions,
		Warnings:     resp.Warnings,
		Reasoning:    resp.Reasoning,
	}

	final := draft
	if resp.RevisedResults != nil {
		final = *resp.RevisedResults
		fillRevisionIDs(&final)
	}

	log.WithField("quality_score", eval.QualityScore).
		WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("self-evaluation complete")
	return final, eval, nil
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 10 {
		return 10
	}
	return s
}

// fillRevisionIDs gives ids only to items the revision added. Existing ids
// are preserved exactly as the prompt requires; they are never regenerated.
func fillRevisionIDs(r *types.AnalysisResults) {
	for i := range r.ActionItems {
		if r.ActionItems[i].ID == "" {
			r.ActionItems[i].ID = fmt.Sprintf("act-eval-%d", i+1)
		}
	}
	for i := range r.Decisions {
		if r.Decisions[i].ID == "" {
			r.Decisions[i].ID = fmt.Sprintf("dec-eval-%d", i+1)
		}
	}
	for i := range r.Quotes {
		if r.Quotes[i].ID == "" {
			r.Quotes[i].ID = fmt.Sprintf("quote-eval-%d", i+1)
		}
	}
}

func buildPrompt(draft types.AnalysisResults, segments []types.Segment, tmpl types.TemplateSpec) string {
	draftJSON, _ := json.MarshalIndent(draft, "", "  ")

	var b strings.Builder
	b.WriteString("## Task:\n")
	fmt.Fprintf(&b, "Critique the draft %q analysis below against the transcript and produce an improved revision with a quality score.\n\n", tmpl.Name)

	b.WriteString("## Transcript (with segment IDs):\n")
	b.WriteString(strategy.FormatSegments(segments))
	b.WriteString("\n")

	b.WriteString("## Draft Results (JSON):\n")
	b.Write(draftJSON)
	b.WriteString("\n\n")

	b.WriteString("## Instructions:\n")
	b.WriteString("- Score the draft 0-10 for completeness, accuracy and grounding.\n")
	b.WriteString("- List concrete improvements you applied and additions you made.\n")
	b.WriteString("- List as warnings any orphaned items: extracted facts with no matching transcript evidence.\n")
	b.WriteString("- Return the full revised results under \"revisedResults\".\n\n")

	b.WriteString("## Rules:\n")
	b.WriteString("- Never invent quotes, speakers, or timestamps absent from the supplied segments.\n")
	b.WriteString("- Preserve every existing item id exactly; leave the id empty on items you add.\n")
	b.WriteString("- Omit a field rather than guess.\n")
	b.WriteString("- Return ONLY a single valid JSON object matching the response format.\n\n")

	b.WriteString("## Response Format (JSON):\n")
	b.WriteString(`{"qualityScore": 0, "improvements": [""], "additions": [""], "warnings": [""], "reasoning": "", "revisedResults": {"summary": "", "sections": [], "actionItems": [], "decisions": [], "quotes": []}}`)
	b.WriteString("\n")
	return b.String()
}
