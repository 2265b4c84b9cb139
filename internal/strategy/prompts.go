package strategy

import (
	"fmt"
	"strings"

	"transcript-insights-go/internal/types"
)

// FormatSegments renders segments the way every prompt in the pipeline
// references them: one line per segment, id and time range first.
func FormatSegments(segs []types.Segment) string {
	var b strings.Builder
	for _, s := range segs {
		fmt.Fprintf(&b, "[%s] [%.1fs-%.1fs] ", s.ID, s.Start, s.End)
		if s.Speaker != "" {
			b.WriteString(s.Speaker)
			b.WriteString(": ")
		}
		b.WriteString(s.Text)
		b.WriteString("\n")
	}
	return b.String()
}

// promptSpec collects everything one analysis round-trip asks for.
type promptSpec struct {
	task            string
	context         string
	segments        []types.Segment
	sections        []types.TemplateSection
	artifacts       []string
	includeSummary  bool
	includeEntities bool
}

func buildAnalysisPrompt(ps promptSpec) string {
	var b strings.Builder

	b.WriteString("## Task:\n")
	b.WriteString(ps.task)
	b.WriteString("\n\n")

	if ps.context != "" {
		b.WriteString("## Context:\n")
		b.WriteString(ps.context)
		b.WriteString("\n\n")
	}

	b.WriteString("## Transcript (with segment IDs):\n")
	b.WriteString(FormatSegments(ps.segments))
	b.WriteString("\n")

	b.WriteString("## Instructions:\n")
	for _, sec := range ps.sections {
		if sec.Description != "" {
			fmt.Fprintf(&b, "- Write section %q (%s): %s\n", sec.Key, sec.Title, sec.Description)
		} else {
			fmt.Fprintf(&b, "- Write section %q (%s).\n", sec.Key, sec.Title)
		}
	}
	if ps.includeSummary {
		b.WriteString("- Write a short overall summary of the transcript.\n")
	}
	if ps.includeEntities {
		b.WriteString("- Extract every action item (task, owner if named, timestamp in seconds).\n")
		b.WriteString("- Extract every decision that was reached (text, timestamp in seconds).\n")
		b.WriteString("- Extract notable quotes worth keeping verbatim (text, speaker, timestamp).\n")
	}
	for _, art := range ps.artifacts {
		switch art {
		case types.ArtifactBenchmarks:
			b.WriteString("- Extract any benchmark figures mentioned (name, value, unit, context).\n")
		case types.ArtifactRadioReports:
			b.WriteString("- Extract any radio reports given (kind, summary, timestamp).\n")
		case types.ArtifactSafetyEvents:
			b.WriteString("- Extract any safety events raised (description, severity, timestamp).\n")
		}
	}
	b.WriteString("\n")

	b.WriteString("## Rules:\n")
	b.WriteString("- Never invent quotes, speakers, or timestamps absent from the supplied segments.\n")
	b.WriteString("- Omit a field rather than guess.\n")
	b.WriteString("- Timestamps are seconds from the start of the transcript.\n")
	b.WriteString("- Return ONLY a single valid JSON object matching the response format. No commentary, no markdown fences.\n\n")

	b.WriteString("## Response Format (JSON):\n")
	b.WriteString(responseSchema(ps))
	b.WriteString("\n")

	return b.String()
}

func responseSchema(ps promptSpec) string {
	var parts []string
	if ps.includeSummary {
		parts = append(parts, `"summary": ""`)
	}
	if len(ps.sections) > 0 {
		keys := make([]string, 0, len(ps.sections))
		for _, sec := range ps.sections {
			keys = append(keys, fmt.Sprintf("{\"key\": %q, \"title\": %q, \"content\": \"\"}", sec.Key, sec.Title))
		}
		parts = append(parts, fmt.Sprintf(`"sections": [%s]`, strings.Join(keys, ", ")))
	}
	if ps.includeEntities {
		parts = append(parts,
			`"actionItems": [{"task": "", "owner": "", "timestamp": 0}]`,
			`"decisions": [{"text": "", "timestamp": 0}]`,
			`"quotes": [{"text": "", "speaker": "", "timestamp": 0}]`,
		)
	}
	for _, art := range ps.artifacts {
		switch art {
		case types.ArtifactBenchmarks:
			parts = append(parts, `"benchmarks": [{"name": "", "value": "", "unit": "", "context": ""}]`)
		case types.ArtifactRadioReports:
			parts = append(parts, `"radioReports": [{"kind": "", "summary": "", "timestamp": 0}]`)
		case types.ArtifactSafetyEvents:
			parts = append(parts, `"safetyEvents": [{"description": "", "severity": "", "timestamp": 0}]`)
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// contextualLink builds the short local digest a hybrid batch carries so
// batches stay topically linked without depending on each other's LLM
// output.
func contextualLink(prev []types.TemplateSection, segs []types.Segment) string {
	if len(prev) == 0 {
		return ""
	}
	titles := make([]string, 0, len(prev))
	for _, sec := range prev {
		titles = append(titles, sec.Title)
	}
	link := "Earlier batches cover: " + strings.Join(titles, ", ") + "."
	if len(segs) > 0 {
		first := segs[0]
		last := segs[len(segs)-1]
		link += fmt.Sprintf(" The transcript runs from %.0fs (%q) to %.0fs (%q).",
			first.Start, clip(first.Text, 60), last.Start, clip(last.Text, 60))
	}
	return link
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
