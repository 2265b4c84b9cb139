package strategy

import (
	"context"
	"fmt"
	"time"

	"transcript-insights-go/internal/llm"
	"transcript-insights-go/internal/logger"
	"transcript-insights-go/internal/types"
)

// BasicExecutor covers the whole transcript and template in a single call.
// Fastest, lowest cross-section fidelity.
type BasicExecutor struct{}

func (*BasicExecutor) Name() Strategy { return Basic }

func (*BasicExecutor) Execute(ctx context.Context, segments []types.Segment, tmpl types.TemplateSpec, client llm.Client, opts Options) (types.AnalysisResults, types.RunMetadata, error) {
	log := logger.Component("strategy-basic")
	start := time.Now()
	meta := types.RunMetadata{Strategy: string(Basic)}

	prompt := buildAnalysisPrompt(promptSpec{
		task:            fmt.Sprintf("Analyze the transcript against the %q template and produce every requested output in one response.", tmpl.Name),
		segments:        segments,
		sections:        tmpl.Sections,
		artifacts:       tmpl.Artifacts,
		includeSummary:  true,
		includeEntities: true,
	})

	opts.progress(0, 1, "analyzing transcript")
	raw, err := complete(ctx, client, prompt, opts)
	meta.CallsMade++
	if err != nil {
		meta.DurationMs = time.Since(start).Milliseconds()
		return types.AnalysisResults{}, meta, err
	}
	opts.progress(1, 1, "analysis complete")

	var results types.AnalysisResults
	p, perr := parsePayload(raw)
	if perr != nil {
		log.WithError(perr).Warn("analysis response unusable, recording placeholders")
		results.Sections = placeholderSections(tmpl.Sections, perr.Error())
		meta.FailedUnits = append(meta.FailedUnits, "analysis")
	} else {
		results = types.AnalysisResults{
			Summary:      p.Summary,
			Sections:     orderSections(tmpl.Sections, p.Sections),
			ActionItems:  p.ActionItems,
			Decisions:    p.Decisions,
			Quotes:       p.Quotes,
			Benchmarks:   p.Benchmarks,
			RadioReports: p.RadioReports,
			SafetyEvents: p.SafetyEvents,
		}
	}
	assignIDs(&results)

	meta.DurationMs = time.Since(start).Milliseconds()
	return results, meta, nil
}

// orderSections maps responses back onto template order so assembly is
// deterministic regardless of what order the model answered in. Sections the
// model skipped become annotated placeholders.
func orderSections(tmplSections []types.TemplateSection, got []types.Section) []types.Section {
	byKey := make(map[string]types.Section, len(got))
	for _, sec := range got {
		byKey[sec.Key] = sec
	}
	out := make([]types.Section, 0, len(tmplSections))
	for _, want := range tmplSections {
		if sec, ok := byKey[want.Key]; ok {
			if sec.Title == "" {
				sec.Title = want.Title
			}
			out = append(out, sec)
			continue
		}
		out = append(out, types.Section{
			Key:   want.Key,
			Title: want.Title,
			Error: "section missing from response",
		})
	}
	return out
}
