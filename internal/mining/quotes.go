package mining

import (
	"fmt"
	"strings"
	"time"

	"transcript-insights-go/internal/strategy"
	"transcript-insights-go/internal/types"
)

// QuoteMining extracts notable quotes the strategy pass did not capture,
// classified by category and sentiment.
type QuoteMining struct {
	MinConfidence float64
}

func (QuoteMining) Name() string { return "quote-mining" }

func (QuoteMining) ShouldRun(mc types.MiningContext) bool {
	return len(mc.Segments) > 0
}

func (m QuoteMining) BuildPrompt(mc types.MiningContext) string {
	if !m.ShouldRun(mc) {
		return ""
	}
	var b strings.Builder
	b.WriteString("## Task:\nFind notable quotes in the transcript that are not already captured below.\n\n")

	b.WriteString("## Transcript (with segment IDs):\n")
	b.WriteString(strategy.FormatSegments(mc.Segments))
	b.WriteString("\n")

	b.WriteString("## Already Captured Quotes:\n")
	if len(mc.ExistingResults.Quotes) == 0 {
		b.WriteString("(none)\n")
	}
	for _, q := range mc.ExistingResults.Quotes {
		fmt.Fprintf(&b, "- %q\n", q.Text)
	}
	b.WriteString("\n")

	b.WriteString("## Instructions:\n")
	b.WriteString("- Extract quotes worth keeping verbatim and not already captured.\n")
	b.WriteString("- Classify each by \"category\": decision, commitment, concern, insight or humor.\n")
	b.WriteString("- Classify each by \"sentiment\": positive, negative or neutral.\n")
	b.WriteString("- Set \"speaker\" and \"timestamp\" from the segment the quote appears in.\n")
	b.WriteString("- Attach a \"confidence\" between 0 and 1 to every quote.\n\n")

	b.WriteString("## Rules:\n")
	b.WriteString("- Never invent quotes or timestamps absent from the supplied segments; quote text must appear in a segment verbatim.\n")
	b.WriteString("- Omit a field rather than guess.\n")
	fmt.Fprintf(&b, "- Only include quotes you are at least %.2f confident about.\n", m.MinConfidence)
	b.WriteString("- Return ONLY a single valid JSON object matching the response format.\n\n")

	b.WriteString("## Response Format (JSON):\n")
	b.WriteString(`{"quotes": [{"text": "", "speaker": "", "timestamp": 0, "category": "decision|commitment|concern|insight|humor", "sentiment": "positive|negative|neutral", "confidence": 0.0}]}`)
	b.WriteString("\n")
	return b.String()
}

func (m QuoteMining) ParseResponse(raw string) Outcome {
	res := m.parse(raw)
	return Outcome{
		Partial:  types.PartialEnrichmentResult{NewQuotes: res.Data},
		Metadata: res.Metadata,
		Err:      res.Err,
	}
}

func (m QuoteMining) parse(raw string) Result[types.Quote] {
	start := time.Now()
	var resp struct {
		Quotes []types.Quote `json:"quotes"`
	}
	if errStr := decodeEnvelope(raw, &resp); errStr != "" {
		return Result[types.Quote]{Data: []types.Quote{}, Err: errStr}
	}

	kept := make([]types.Quote, 0, len(resp.Quotes))
	var confs []float64
	for _, q := range resp.Quotes {
		if strings.TrimSpace(q.Text) == "" {
			continue
		}
		if !validConfidence(q.Confidence) {
			q.Confidence = nil
		}
		if q.Confidence == nil || *q.Confidence < m.MinConfidence {
			continue
		}
		q.Category = strings.ToLower(q.Category)
		q.Sentiment = strings.ToLower(q.Sentiment)
		kept = append(kept, q)
		confs = append(confs, *q.Confidence)
	}
	return Result[types.Quote]{
		Data:     kept,
		Metadata: finish(len(resp.Quotes), len(kept), confs, start),
	}
}
