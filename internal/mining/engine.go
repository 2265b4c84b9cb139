package mining

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"transcript-insights-go/internal/llm"
	"transcript-insights-go/internal/logger"
	"transcript-insights-go/internal/retry"
	"transcript-insights-go/internal/types"
)

// EngineMetadata reports per-pattern outcomes so callers can render an
// honest partial-completion status.
type EngineMetadata struct {
	PatternsRun     []string                        `json:"patternsRun"`
	PatternsSkipped []string                        `json:"patternsSkipped"`
	PatternsFailed  map[string]string               `json:"patternsFailed,omitempty"`
	PatternMetadata map[string]types.MiningMetadata `json:"patternMetadata,omitempty"`
	DurationMs      int64                           `json:"durationMs"`
}

// Engine fans the registered patterns out together. One pattern failing
// never blocks the others; only auth failures (never retryable) abort the
// whole run.
type Engine struct {
	Retry  retry.Policy
	Params llm.Params
}

func (e Engine) Run(ctx context.Context, mc types.MiningContext, patterns []Pattern, client llm.Client) (types.PartialEnrichmentResult, EngineMetadata, error) {
	log := logger.Component("enrichment-engine")
	start := time.Now()

	meta := EngineMetadata{
		PatternsFailed:  map[string]string{},
		PatternMetadata: map[string]types.MiningMetadata{},
	}
	var partial types.PartialEnrichmentResult
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range patterns {
		if !p.ShouldRun(mc) {
			meta.PatternsSkipped = append(meta.PatternsSkipped, p.Name())
			continue
		}
		meta.PatternsRun = append(meta.PatternsRun, p.Name())

		p := p
		g.Go(func() error {
			prompt := p.BuildPrompt(mc)
			if prompt == "" {
				return nil
			}

			var raw string
			err := e.Retry.Do(gctx, func() error {
				var callErr error
				raw, callErr = client.Complete(gctx, prompt, e.Params)
				return callErr
			})
			if err != nil {
				if retry.IsAuth(err) {
					return err
				}
				log.WithError(err).WithField("pattern", p.Name()).Warn("pattern call failed")
				mu.Lock()
				meta.PatternsFailed[p.Name()] = err.Error()
				mu.Unlock()
				return nil
			}

			out := p.ParseResponse(raw)
			mu.Lock()
			defer mu.Unlock()
			meta.PatternMetadata[p.Name()] = out.Metadata
			if out.Err != "" {
				meta.PatternsFailed[p.Name()] = out.Err
				return nil
			}
			// each pattern contributes a disjoint slice of the aggregate
			partial.ActionEnrichments = append(partial.ActionEnrichments, out.Partial.ActionEnrichments...)
			partial.DecisionEnrichments = append(partial.DecisionEnrichments, out.Partial.DecisionEnrichments...)
			partial.NewQuotes = append(partial.NewQuotes, out.Partial.NewQuotes...)
			return nil
		})
	}

	err := g.Wait()
	meta.DurationMs = time.Since(start).Milliseconds()
	if err != nil {
		return types.PartialEnrichmentResult{}, meta, err
	}

	log.WithField("patterns_run", len(meta.PatternsRun)).
		WithField("patterns_failed", len(meta.PatternsFailed)).
		WithField("duration_ms", meta.DurationMs).
		Info("enrichment engine finished")
	return partial, meta, nil
}

// DefaultPatterns returns the shipped pattern set at one confidence
// threshold.
func DefaultPatterns(minConfidence float64) []Pattern {
	return []Pattern{
		ActionMining{MinConfidence: minConfidence},
		DecisionMining{MinConfidence: minConfidence},
		QuoteMining{MinConfidence: minConfidence},
	}
}
