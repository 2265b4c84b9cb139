package strategy

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"transcript-insights-go/internal/llm"
	"transcript-insights-go/internal/logger"
	"transcript-insights-go/internal/types"
)

// HybridExecutor groups template sections into batches and fans them out
// together, plus one extraction unit for the summary and entity lists. Each
// batch prompt after the first carries a locally derived contextual link to
// the previous group so batches stay topically connected without a data
// dependency on each other's output.
type HybridExecutor struct{}

func (*HybridExecutor) Name() Strategy { return Hybrid }

func (*HybridExecutor) Execute(ctx context.Context, segments []types.Segment, tmpl types.TemplateSpec, client llm.Client, opts Options) (types.AnalysisResults, types.RunMetadata, error) {
	log := logger.Component("strategy-hybrid")
	start := time.Now()
	meta := types.RunMetadata{Strategy: string(Hybrid)}

	batches := groupSections(tmpl)
	total := len(batches) + 1 // plus the extraction unit

	var (
		mu           sync.Mutex
		done         int
		batchOut     = make([]payload, len(batches))
		batchFailed  = make([]string, len(batches))
		extraction   payload
		extractError string
	)
	step := func(message string) {
		mu.Lock()
		done++
		cur := done
		mu.Unlock()
		opts.progress(cur, total, message)
	}

	g, gctx := errgroup.WithContext(ctx)

	for i := range batches {
		i := i
		g.Go(func() error {
			var link string
			if i > 0 {
				link = contextualLink(batches[i-1], segments)
			}
			prompt := buildAnalysisPrompt(promptSpec{
				task:     fmt.Sprintf("Write the listed sections of the %q analysis for this transcript.", tmpl.Name),
				context:  link,
				segments: segments,
				sections: batches[i],
			})
			raw, err := complete(gctx, client, prompt, opts)
			mu.Lock()
			meta.CallsMade++
			mu.Unlock()
			if err != nil {
				return err
			}
			p, perr := parsePayload(raw)
			if perr != nil {
				log.WithError(perr).WithField("batch", i+1).Warn("batch response unusable")
				batchFailed[i] = perr.Error()
			} else {
				batchOut[i] = p
			}
			step(fmt.Sprintf("batch %d/%d complete", i+1, len(batches)))
			return nil
		})
	}

	g.Go(func() error {
		prompt := buildAnalysisPrompt(promptSpec{
			task:            "Extract the summary, action items, decisions and quotes from this transcript.",
			segments:        segments,
			artifacts:       tmpl.Artifacts,
			includeSummary:  true,
			includeEntities: true,
		})
		raw, err := complete(gctx, client, prompt, opts)
		mu.Lock()
		meta.CallsMade++
		mu.Unlock()
		if err != nil {
			return err
		}
		p, perr := parsePayload(raw)
		if perr != nil {
			log.WithError(perr).Warn("extraction response unusable")
			extractError = perr.Error()
		} else {
			extraction = p
		}
		step("extraction complete")
		return nil
	})

	if err := g.Wait(); err != nil {
		meta.DurationMs = time.Since(start).Milliseconds()
		return types.AnalysisResults{}, meta, err
	}

	// assemble in fixed batch order
	var results types.AnalysisResults
	for i, batch := range batches {
		if batchFailed[i] != "" {
			results.Sections = append(results.Sections, placeholderSections(batch, batchFailed[i])...)
			meta.FailedUnits = append(meta.FailedUnits, fmt.Sprintf("batch-%d", i+1))
			continue
		}
		results.Sections = append(results.Sections, orderSections(batch, batchOut[i].Sections)...)
	}
	if extractError != "" {
		meta.FailedUnits = append(meta.FailedUnits, "extraction")
	} else {
		results.Summary = extraction.Summary
		results.ActionItems = extraction.ActionItems
		results.Decisions = extraction.Decisions
		results.Quotes = extraction.Quotes
		results.Benchmarks = extraction.Benchmarks
		results.RadioReports = extraction.RadioReports
		results.SafetyEvents = extraction.SafetyEvents
	}
	assignIDs(&results)

	meta.DurationMs = time.Since(start).Milliseconds()
	return results, meta, nil
}
