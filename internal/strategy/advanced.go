package strategy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"transcript-insights-go/internal/llm"
	"transcript-insights-go/internal/logger"
	"transcript-insights-go/internal/types"
)

// maxCarriedContext caps the accumulated prior-section text carried into
// each subsequent prompt.
const maxCarriedContext = 8000

// AdvancedExecutor issues one call per section, strictly sequential; each
// prompt carries the accumulated output of all prior sections so later
// sections can cross-reference earlier ones. The ordering dependency is the
// point, not an accident.
type AdvancedExecutor struct{}

func (*AdvancedExecutor) Name() Strategy { return Advanced }

func (*AdvancedExecutor) Execute(ctx context.Context, segments []types.Segment, tmpl types.TemplateSpec, client llm.Client, opts Options) (types.AnalysisResults, types.RunMetadata, error) {
	log := logger.Component("strategy-advanced")
	start := time.Now()
	meta := types.RunMetadata{Strategy: string(Advanced)}

	total := len(tmpl.Sections) + 1 // plus the extraction call
	var results types.AnalysisResults
	var carried strings.Builder

	for i, sec := range tmpl.Sections {
		prompt := buildAnalysisPrompt(promptSpec{
			task:     fmt.Sprintf("Write the %q section of the %q analysis for this transcript. You may cross-reference the prior sections supplied as context.", sec.Title, tmpl.Name),
			context:  clipTail(carried.String(), maxCarriedContext),
			segments: segments,
			sections: []types.TemplateSection{sec},
		})
		opts.progress(i, total, fmt.Sprintf("section %q", sec.Title))
		raw, err := complete(ctx, client, prompt, opts)
		meta.CallsMade++
		if err != nil {
			meta.DurationMs = time.Since(start).Milliseconds()
			return types.AnalysisResults{}, meta, err
		}

		p, perr := parsePayload(raw)
		if perr != nil || len(p.Sections) == 0 {
			msg := "section missing from response"
			if perr != nil {
				msg = perr.Error()
			}
			log.WithField("section", sec.Key).Warn("section response unusable")
			results.Sections = append(results.Sections, types.Section{Key: sec.Key, Title: sec.Title, Error: msg})
			meta.FailedUnits = append(meta.FailedUnits, "section-"+sec.Key)
			continue
		}
		got := orderSections([]types.TemplateSection{sec}, p.Sections)[0]
		results.Sections = append(results.Sections, got)
		fmt.Fprintf(&carried, "### %s\n%s\n\n", got.Title, got.Content)
	}

	// extraction call sees every produced section as context
	prompt := buildAnalysisPrompt(promptSpec{
		task:            "Extract the summary, action items, decisions and quotes from this transcript. The completed analysis sections are supplied as context.",
		context:         clipTail(carried.String(), maxCarriedContext),
		segments:        segments,
		artifacts:       tmpl.Artifacts,
		includeSummary:  true,
		includeEntities: true,
	})
	opts.progress(total-1, total, "extracting items")
	raw, err := complete(ctx, client, prompt, opts)
	meta.CallsMade++
	if err != nil {
		meta.DurationMs = time.Since(start).Milliseconds()
		return types.AnalysisResults{}, meta, err
	}
	opts.progress(total, total, "analysis complete")

	p, perr := parsePayload(raw)
	if perr != nil {
		log.WithError(perr).Warn("extraction response unusable")
		meta.FailedUnits = append(meta.FailedUnits, "extraction")
	} else {
		results.Summary = p.Summary
		results.ActionItems = p.ActionItems
		results.Decisions = p.Decisions
		results.Quotes = p.Quotes
		results.Benchmarks = p.Benchmarks
		results.RadioReports = p.RadioReports
		results.SafetyEvents = p.SafetyEvents
	}
	assignIDs(&results)

	meta.DurationMs = time.Since(start).Milliseconds()
	return results, meta, nil
}

func clipTail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
