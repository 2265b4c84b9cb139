package merge

import (
	"fmt"

	"transcript-insights-go/internal/types"
)

// Apply folds a partial enrichment into the original results and returns a
// new value. A field is overwritten only when the enrichment explicitly
// supplies it; absent never clobbers present. New quotes are deduplicated by
// normalized text against existing quotes (and each other) before being
// appended. An empty partial returns a result deep-equal to the original.
func Apply(original types.AnalysisResults, partial types.PartialEnrichmentResult) types.AnalysisResults {
	out := original

	actionByID := make(map[string]types.ActionEnrichment, len(partial.ActionEnrichments))
	for _, e := range partial.ActionEnrichments {
		actionByID[e.ID] = sanitizeAction(e)
	}
	decisionByID := make(map[string]types.DecisionEnrichment, len(partial.DecisionEnrichments))
	for _, e := range partial.DecisionEnrichments {
		decisionByID[e.ID] = sanitizeDecision(e)
	}

	if len(original.ActionItems) > 0 {
		out.ActionItems = make([]types.ActionItem, len(original.ActionItems))
		for i, item := range original.ActionItems {
			if e, ok := actionByID[item.ID]; ok {
				item = applyAction(item, e)
			}
			out.ActionItems[i] = item
		}
	}

	if len(original.Decisions) > 0 {
		out.Decisions = make([]types.Decision, len(original.Decisions))
		for i, item := range original.Decisions {
			if e, ok := decisionByID[item.ID]; ok {
				item = applyDecision(item, e)
			}
			out.Decisions[i] = item
		}
	}

	if len(partial.NewQuotes) > 0 {
		seen := make(map[string]bool, len(original.Quotes))
		for _, q := range original.Quotes {
			seen[NormalizeQuoteText(q.Text)] = true
		}
		out.Quotes = append([]types.Quote(nil), original.Quotes...)
		mined := 0
		for _, q := range partial.NewQuotes {
			key := NormalizeQuoteText(q.Text)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			q = sanitizeQuote(q)
			mined++
			if q.ID == "" {
				q.ID = fmt.Sprintf("quote-mined-%d", mined)
			}
			out.Quotes = append(out.Quotes, q)
		}
	}

	return out
}

func applyAction(item types.ActionItem, e types.ActionEnrichment) types.ActionItem {
	if e.AssignedBy != "" {
		item.AssignedBy = e.AssignedBy
	}
	if e.AssignmentTimestamp != nil {
		item.AssignmentTimestamp = e.AssignmentTimestamp
	}
	if e.Priority != "" {
		item.Priority = e.Priority
	}
	if e.IsExplicit != nil {
		item.IsExplicit = e.IsExplicit
	}
	if e.Confidence != nil {
		item.Confidence = e.Confidence
	}
	return item
}

func applyDecision(item types.Decision, e types.DecisionEnrichment) types.Decision {
	if e.MadeBy != "" {
		item.MadeBy = e.MadeBy
	}
	if len(e.Participants) > 0 {
		item.Participants = e.Participants
	}
	if e.VoteTally != nil {
		item.VoteTally = e.VoteTally
	}
	if e.IsExplicit != nil {
		item.IsExplicit = e.IsExplicit
	}
	if e.Confidence != nil {
		item.Confidence = e.Confidence
	}
	return item
}
