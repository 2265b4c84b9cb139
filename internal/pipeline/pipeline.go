// Package pipeline wires the stages together: strategy selection, execution,
// optional self-evaluation, optional enrichment, merge.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"transcript-insights-go/internal/config"
	"transcript-insights-go/internal/evaluate"
	"transcript-insights-go/internal/llm"
	"transcript-insights-go/internal/logger"
	"transcript-insights-go/internal/merge"
	"transcript-insights-go/internal/mining"
	"transcript-insights-go/internal/strategy"
	"transcript-insights-go/internal/transcript"
	"transcript-insights-go/internal/types"
)

type Options struct {
	// Strategy may be auto, in which case the recommender decides.
	Strategy strategy.Strategy
	// Deployment overrides the configured model name when set.
	Deployment    string
	RunEvaluation bool
	RunEnrichment bool
	Progress      func(current, total int, message string)
}

type Outcome struct {
	Strategy       strategy.Strategy        `json:"strategy"`
	Recommendation *strategy.Recommendation `json:"recommendation,omitempty"`
	Warning        string                   `json:"warning,omitempty"`
	Results        types.AnalysisResults    `json:"results"`
	DraftResults   *types.AnalysisResults   `json:"draftResults,omitempty"`
	Evaluation     *types.EvaluationResults `json:"evaluation,omitempty"`
	Enrichment     *mining.EngineMetadata   `json:"enrichment,omitempty"`
	Metadata       types.RunMetadata        `json:"metadata"`
}

// ExecuteAnalysis runs the whole pipeline for one transcript. Auth failures
// and exhausted retries are the only terminal errors; everything else
// degrades into partial results plus metadata.
func ExecuteAnalysis(ctx context.Context, cfg config.Config, tmpl types.TemplateSpec, segments []types.Segment, client llm.Client, opts Options) (*Outcome, error) {
	log := logger.Component("pipeline")
	start := time.Now()

	if len(segments) == 0 {
		return nil, fmt.Errorf("empty transcript")
	}

	th := strategy.Thresholds{
		BasicMaxTokens:  cfg.Strategy.BasicMaxTokens,
		HybridMaxTokens: cfg.Strategy.HybridMaxTokens,
	}
	text := transcript.Flatten(segments)

	out := &Outcome{Strategy: opts.Strategy}
	if opts.Strategy == strategy.Auto || opts.Strategy == "" {
		rec := strategy.Recommend(text, th)
		out.Strategy = rec.Strategy
		out.Recommendation = &rec
		log.WithField("strategy", rec.Strategy).WithField("reason", rec.Reason).Info("strategy recommended")
	} else {
		out.Warning = strategy.Validate(text, opts.Strategy, th)
	}

	exec, err := strategy.ForStrategy(out.Strategy)
	if err != nil {
		return nil, err
	}

	params := llm.Params{Model: cfg.LLM.Model, Temperature: cfg.LLM.Temperature}
	if opts.Deployment != "" {
		params.Model = opts.Deployment
	}
	execOpts := strategy.Options{
		Retry:    cfg.Retry.Policy(),
		Params:   params,
		Progress: opts.Progress,
	}

	draft, meta, err := exec.Execute(ctx, segments, tmpl, client, execOpts)
	if err != nil {
		return nil, fmt.Errorf("strategy %s failed: %w", out.Strategy, err)
	}
	out.Metadata = meta
	out.Results = draft

	if opts.RunEvaluation {
		// draft snapshot stays untouched; the evaluator returns a new value
		snapshot := draft
		ev := evaluate.Evaluator{Retry: cfg.Retry.Policy(), Params: params}
		final, evaluation, err := ev.Run(ctx, client, draft, segments, tmpl)
		if err != nil {
			return nil, err
		}
		out.DraftResults = &snapshot
		out.Evaluation = &evaluation
		out.Results = final
		out.Metadata.CallsMade++
	}

	if opts.RunEnrichment && merge.ShouldEnrich(out.Results, cfg.Enrich.MinItems) {
		mc := types.MiningContext{Segments: segments, ExistingResults: out.Results}
		partial, engineMeta, err := Enrich(ctx, cfg, mc, mining.DefaultPatterns(cfg.Enrich.MinConfidence), client)
		if err != nil {
			return nil, err
		}
		out.Enrichment = &engineMeta
		out.Results = merge.Apply(out.Results, partial)
	}

	out.Metadata.DurationMs = time.Since(start).Milliseconds()
	log.WithField("strategy", out.Strategy).
		WithField("calls_made", out.Metadata.CallsMade).
		WithField("duration_ms", out.Metadata.DurationMs).
		Info("pipeline finished")
	return out, nil
}

// Enrich runs the mining patterns over the context and returns the
// aggregated partial. The keyword-based priority fallback cross-checks
// action enrichments the model left without a priority.
func Enrich(ctx context.Context, cfg config.Config, mc types.MiningContext, patterns []mining.Pattern, client llm.Client) (types.PartialEnrichmentResult, mining.EngineMetadata, error) {
	engine := mining.Engine{
		Retry:  cfg.Retry.Policy(),
		Params: llm.Params{Model: cfg.LLM.Model, Temperature: cfg.LLM.Temperature},
	}
	partial, meta, err := engine.Run(ctx, mc, patterns, client)
	if err != nil {
		return partial, meta, err
	}

	taskByID := make(map[string]string, len(mc.ExistingResults.ActionItems))
	for _, a := range mc.ExistingResults.ActionItems {
		taskByID[a.ID] = a.Task
	}
	for i, e := range partial.ActionEnrichments {
		if e.Priority == "" {
			partial.ActionEnrichments[i].Priority = mining.InferPriorityFromText(taskByID[e.ID])
		}
	}
	return partial, meta, nil
}
