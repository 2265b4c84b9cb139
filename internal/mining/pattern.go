// Package mining re-reads the transcript to attach secondary attributes to
// already-extracted items. Each pattern is an independently testable unit:
// a cheap gate, a deterministic prompt builder, and a tolerant parser that
// never throws. New patterns plug in by implementing Pattern.
package mining

import (
	"encoding/json"
	"time"

	"transcript-insights-go/internal/llm"
	"transcript-insights-go/internal/types"
)

// Pattern is the three-method mining contract.
type Pattern interface {
	Name() string
	// ShouldRun gates the LLM call entirely when there is nothing to enrich.
	ShouldRun(mc types.MiningContext) bool
	// BuildPrompt is deterministic for the same context and returns "" when
	// there is nothing to do.
	BuildPrompt(mc types.MiningContext) string
	// ParseResponse never fails hard: bad input yields an empty Outcome with
	// Err set.
	ParseResponse(raw string) Outcome
}

// Outcome is the pattern-level slice of the aggregated enrichment, wrapped
// in the uniform result envelope.
type Outcome struct {
	Partial  types.PartialEnrichmentResult
	Metadata types.MiningMetadata
	Err      string
}

// Result is the uniform typed envelope for one pattern's parsed data.
type Result[T any] struct {
	Data     []T
	Metadata types.MiningMetadata
	Err      string
}

// decodeEnvelope extracts and decodes the JSON object in raw into dst.
// Returns an error string instead of an error so callers stay on the
// soft-failure path.
func decodeEnvelope(raw string, dst any) string {
	body := llm.ExtractJSON(raw)
	if body == "" {
		return "no JSON object in response"
	}
	if err := json.Unmarshal([]byte(body), dst); err != nil {
		return "decode response: " + err.Error()
	}
	return ""
}

// validConfidence reports whether c is a usable [0,1] confidence. Anything
// else is treated as absent, never as an error that aborts the run.
func validConfidence(c *float64) bool {
	return c != nil && *c >= 0 && *c <= 1
}

// finish computes envelope metadata for a successful parse.
func finish(processed, enriched int, confidences []float64, start time.Time) types.MiningMetadata {
	avg := 0.0
	if len(confidences) > 0 {
		for _, c := range confidences {
			avg += c
		}
		avg /= float64(len(confidences))
	}
	return types.MiningMetadata{
		ItemsProcessed:   processed,
		ItemsEnriched:    enriched,
		Confidence:       avg,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}
}
