package mining

import (
	"fmt"
	"strings"
	"time"

	"transcript-insights-go/internal/strategy"
	"transcript-insights-go/internal/types"
)

// vote-indicative language; the tally instruction is only issued when one of
// these appears in the transcript, so tallies are never fabricated.
var voteWords = []string{
	"motion", "aye", "nay", "unanimous", "all in favor", "seconded",
	"second the motion", "vote", "abstain",
}

func hasVoteLanguage(segs []types.Segment) bool {
	for _, s := range segs {
		t := strings.ToLower(s.Text)
		for _, w := range voteWords {
			if strings.Contains(t, w) {
				return true
			}
		}
	}
	return false
}

// DecisionMining asks, for each existing decision, who finalized it, who was
// in the discussion, and (only when voting language is present) the tally.
type DecisionMining struct {
	MinConfidence float64
}

func (DecisionMining) Name() string { return "decision-mining" }

func (DecisionMining) ShouldRun(mc types.MiningContext) bool {
	return len(mc.ExistingResults.Decisions) > 0
}

func (m DecisionMining) BuildPrompt(mc types.MiningContext) string {
	if !m.ShouldRun(mc) {
		return ""
	}
	withVotes := hasVoteLanguage(mc.Segments)

	var b strings.Builder
	b.WriteString("## Task:\nFor each listed decision, locate in the transcript who finalized it and who took part in the discussion leading up to it.\n\n")

	b.WriteString("## Transcript (with segment IDs):\n")
	b.WriteString(strategy.FormatSegments(mc.Segments))
	b.WriteString("\n")

	b.WriteString("## Decisions:\n")
	for _, d := range mc.ExistingResults.Decisions {
		fmt.Fprintf(&b, "- [%s] %s\n", d.ID, d.Text)
	}
	b.WriteString("\n")

	b.WriteString("## Instructions:\n")
	b.WriteString("- For each decision id, set \"madeBy\" to the speaker who finalized it.\n")
	b.WriteString("- List \"participants\": the speakers in the discussion preceding it.\n")
	if withVotes {
		b.WriteString("- When a vote was taken on the decision, report \"voteTally\" with non-negative integer counts for, against and abstain.\n")
	}
	b.WriteString("- Set \"isExplicit\" true when the decision was stated outright, false when it was implied.\n")
	b.WriteString("- Attach a \"confidence\" between 0 and 1 to every item.\n\n")

	b.WriteString("## Rules:\n")
	b.WriteString("- Never invent quotes or timestamps absent from the supplied segments.\n")
	b.WriteString("- Omit a field rather than guess.\n")
	if withVotes {
		b.WriteString("- Only report a voteTally when the transcript contains the actual vote; never estimate counts.\n")
	}
	fmt.Fprintf(&b, "- Only include items you are at least %.2f confident about.\n", m.MinConfidence)
	b.WriteString("- Return ONLY a single valid JSON object matching the response format.\n\n")

	b.WriteString("## Response Format (JSON):\n")
	if withVotes {
		b.WriteString(`{"decisions": [{"id": "", "madeBy": "", "participants": [""], "voteTally": {"for": 0, "against": 0, "abstain": 0}, "isExplicit": true, "confidence": 0.0}]}`)
	} else {
		b.WriteString(`{"decisions": [{"id": "", "madeBy": "", "participants": [""], "isExplicit": true, "confidence": 0.0}]}`)
	}
	b.WriteString("\n")
	return b.String()
}

func (m DecisionMining) ParseResponse(raw string) Outcome {
	res := m.parse(raw)
	return Outcome{
		Partial:  types.PartialEnrichmentResult{DecisionEnrichments: res.Data},
		Metadata: res.Metadata,
		Err:      res.Err,
	}
}

func (m DecisionMining) parse(raw string) Result[types.DecisionEnrichment] {
	start := time.Now()
	var resp struct {
		Decisions []types.DecisionEnrichment `json:"decisions"`
	}
	if errStr := decodeEnvelope(raw, &resp); errStr != "" {
		return Result[types.DecisionEnrichment]{Data: []types.DecisionEnrichment{}, Err: errStr}
	}

	kept := make([]types.DecisionEnrichment, 0, len(resp.Decisions))
	var confs []float64
	for _, e := range resp.Decisions {
		if e.ID == "" {
			continue
		}
		if !validConfidence(e.Confidence) {
			e.Confidence = nil
		}
		if e.Confidence == nil || *e.Confidence < m.MinConfidence {
			continue
		}
		kept = append(kept, e)
		confs = append(confs, *e.Confidence)
	}
	return Result[types.DecisionEnrichment]{
		Data:     kept,
		Metadata: finish(len(resp.Decisions), len(kept), confs, start),
	}
}
