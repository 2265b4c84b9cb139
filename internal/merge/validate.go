// Package merge folds enrichment partials back into original results:
// ID-keyed, additive-only, validated. It never mutates its inputs.
package merge

import (
	"strings"

	"transcript-insights-go/internal/types"
)

var validPriorities = map[string]bool{
	types.PriorityHigh:   true,
	types.PriorityMedium: true,
	types.PriorityLow:    true,
}

var validCategories = map[string]bool{
	types.QuoteCategoryDecision:   true,
	types.QuoteCategoryCommitment: true,
	types.QuoteCategoryConcern:    true,
	types.QuoteCategoryInsight:    true,
	types.QuoteCategoryHumor:      true,
}

var validSentiments = map[string]bool{
	types.SentimentPositive: true,
	types.SentimentNegative: true,
	types.SentimentNeutral:  true,
}

func confidenceOK(c *float64) bool {
	return c == nil || (*c >= 0 && *c <= 1)
}

// ValidateAction reports whether every field the enrichment supplies is in
// contract. Absent fields are always acceptable.
func ValidateAction(e types.ActionEnrichment) bool {
	if !confidenceOK(e.Confidence) {
		return false
	}
	if e.Priority != "" && !validPriorities[e.Priority] {
		return false
	}
	if e.AssignmentTimestamp != nil && *e.AssignmentTimestamp < 0 {
		return false
	}
	return true
}

func ValidateDecision(e types.DecisionEnrichment) bool {
	if !confidenceOK(e.Confidence) {
		return false
	}
	if t := e.VoteTally; t != nil && (t.For < 0 || t.Against < 0 || t.Abstain < 0) {
		return false
	}
	return true
}

func ValidateQuote(q types.Quote) bool {
	if !confidenceOK(q.Confidence) {
		return false
	}
	if q.Category != "" && !validCategories[q.Category] {
		return false
	}
	if q.Sentiment != "" && !validSentiments[q.Sentiment] {
		return false
	}
	return q.Timestamp >= 0
}

// sanitizeAction drops any out-of-contract field, keeping the rest of the
// enrichment usable.
func sanitizeAction(e types.ActionEnrichment) types.ActionEnrichment {
	if !confidenceOK(e.Confidence) {
		e.Confidence = nil
	}
	if e.Priority != "" && !validPriorities[e.Priority] {
		e.Priority = ""
	}
	if e.AssignmentTimestamp != nil && *e.AssignmentTimestamp < 0 {
		e.AssignmentTimestamp = nil
	}
	return e
}

func sanitizeDecision(e types.DecisionEnrichment) types.DecisionEnrichment {
	if !confidenceOK(e.Confidence) {
		e.Confidence = nil
	}
	if t := e.VoteTally; t != nil && (t.For < 0 || t.Against < 0 || t.Abstain < 0) {
		e.VoteTally = nil
	}
	return e
}

func sanitizeQuote(q types.Quote) types.Quote {
	if !confidenceOK(q.Confidence) {
		q.Confidence = nil
	}
	if q.Category != "" && !validCategories[q.Category] {
		q.Category = ""
	}
	if q.Sentiment != "" && !validSentiments[q.Sentiment] {
		q.Sentiment = ""
	}
	if q.Timestamp < 0 {
		q.Timestamp = 0
	}
	return q
}

// NormalizeQuoteText is the dedup key for quotes: case-folded with all
// whitespace runs collapsed to single spaces.
func NormalizeQuoteText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// ShouldEnrich gates the whole enrichment stage: trivially small result sets
// skip the extra LLM round-trips.
func ShouldEnrich(r types.AnalysisResults, minItems int) bool {
	if minItems < 1 {
		minItems = 1
	}
	return len(r.ActionItems)+len(r.Decisions) >= minItems
}
