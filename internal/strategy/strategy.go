// Package strategy selects and runs one of the three analysis strategies:
// basic (one call), hybrid (batched fan-out with local contextual links) and
// advanced (sequential fold carrying accumulated context).
package strategy

import (
	"fmt"

	"transcript-insights-go/internal/types"
)

type Strategy string

const (
	Auto     Strategy = "auto"
	Basic    Strategy = "basic"
	Hybrid   Strategy = "hybrid"
	Advanced Strategy = "advanced"
)

// Thresholds are the token-estimate cutoffs between strategies. They are
// configuration, not constants; config.Default carries the shipped values.
type Thresholds struct {
	BasicMaxTokens  int
	HybridMaxTokens int
}

type Recommendation struct {
	Strategy        Strategy `json:"strategy"`
	Reason          string   `json:"reason"`
	EstimatedTokens int      `json:"estimatedTokens"`
}

// EstimateTokens is the rough chars/4 heuristic used for strategy selection.
// It only needs to be consistent, not exact.
func EstimateTokens(text string) int {
	return len(text) / 4
}

// Recommend picks a strategy from the transcript's estimated token count.
// Pure and synchronous; no I/O.
func Recommend(transcriptText string, th Thresholds) Recommendation {
	tokens := EstimateTokens(transcriptText)
	switch {
	case tokens <= th.BasicMaxTokens:
		return Recommendation{
			Strategy:        Basic,
			Reason:          fmt.Sprintf("short transcript (~%d tokens) fits a single call", tokens),
			EstimatedTokens: tokens,
		}
	case tokens <= th.HybridMaxTokens:
		return Recommendation{
			Strategy:        Hybrid,
			Reason:          fmt.Sprintf("medium transcript (~%d tokens) benefits from batched calls", tokens),
			EstimatedTokens: tokens,
		}
	default:
		return Recommendation{
			Strategy:        Advanced,
			Reason:          fmt.Sprintf("long transcript (~%d tokens) needs per-section calls with carried context", tokens),
			EstimatedTokens: tokens,
		}
	}
}

// Validate returns an advisory warning when a manual strategy choice diverges
// materially from the recommendation. Empty string means no concern. Never
// blocks execution.
func Validate(transcriptText string, chosen Strategy, th Thresholds) string {
	rec := Recommend(transcriptText, th)
	if chosen == rec.Strategy || chosen == Auto {
		return ""
	}
	if chosen == Basic && rec.Strategy == Advanced {
		return fmt.Sprintf("basic strategy on a ~%d token transcript may truncate context; %s is recommended", rec.EstimatedTokens, rec.Strategy)
	}
	if chosen == Advanced && rec.Strategy == Basic {
		return fmt.Sprintf("advanced strategy on a ~%d token transcript adds serial latency for little gain; %s is recommended", rec.EstimatedTokens, rec.Strategy)
	}
	return fmt.Sprintf("chosen strategy %q differs from recommendation %q (%s)", chosen, rec.Strategy, rec.Reason)
}

// groupSections splits template sections into hybrid batches by their Group
// hint, preserving template order. Ungrouped sections each form their own
// batch.
func groupSections(tmpl types.TemplateSpec) [][]types.TemplateSection {
	var batches [][]types.TemplateSection
	index := map[string]int{}
	for _, sec := range tmpl.Sections {
		if sec.Group == "" {
			batches = append(batches, []types.TemplateSection{sec})
			continue
		}
		if i, ok := index[sec.Group]; ok {
			batches[i] = append(batches[i], sec)
			continue
		}
		index[sec.Group] = len(batches)
		batches = append(batches, []types.TemplateSection{sec})
	}
	return batches
}
