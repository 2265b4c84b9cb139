package mining

import (
	"fmt"
	"strings"
	"time"

	"transcript-insights-go/internal/strategy"
	"transcript-insights-go/internal/types"
)

// priority keyword taxonomy shared by the prompt and the local fallback.
var (
	highPriorityWords   = []string{"urgent", "asap", "immediately", "critical", "right away", "top priority"}
	mediumPriorityWords = []string{"soon", "should", "this week", "important", "needs to"}
	lowPriorityWords    = []string{"eventually", "maybe", "someday", "when you can", "nice to have", "at some point"}
)

// InferPriorityFromText is the non-LLM fallback/cross-check using the same
// urgency-language taxonomy the prompt describes. Returns "" when no keyword
// matches.
func InferPriorityFromText(text string) string {
	t := strings.ToLower(text)
	for _, w := range highPriorityWords {
		if strings.Contains(t, w) {
			return types.PriorityHigh
		}
	}
	for _, w := range mediumPriorityWords {
		if strings.Contains(t, w) {
			return types.PriorityMedium
		}
	}
	for _, w := range lowPriorityWords {
		if strings.Contains(t, w) {
			return types.PriorityLow
		}
	}
	return ""
}

// ActionMining asks, for each existing action item, who assigned it, when,
// and how urgent the surrounding language was.
type ActionMining struct {
	MinConfidence float64
}

func (ActionMining) Name() string { return "action-mining" }

func (ActionMining) ShouldRun(mc types.MiningContext) bool {
	return len(mc.ExistingResults.ActionItems) > 0
}

func (m ActionMining) BuildPrompt(mc types.MiningContext) string {
	if !m.ShouldRun(mc) {
		return ""
	}
	var b strings.Builder
	b.WriteString("## Task:\nFor each listed action item, locate in the transcript who assigned it, when, and the priority implied by the urgency language around it.\n\n")

	b.WriteString("## Transcript (with segment IDs):\n")
	b.WriteString(strategy.FormatSegments(mc.Segments))
	b.WriteString("\n")

	b.WriteString("## Action Items:\n")
	for _, a := range mc.ExistingResults.ActionItems {
		if a.Owner != "" {
			fmt.Fprintf(&b, "- [%s] %s (owner: %s)\n", a.ID, a.Task, a.Owner)
		} else {
			fmt.Fprintf(&b, "- [%s] %s\n", a.ID, a.Task)
		}
	}
	b.WriteString("\n")

	b.WriteString("## Instructions:\n")
	b.WriteString("- For each action item id, find the segment where it was assigned.\n")
	b.WriteString("- Set \"assignedBy\" to the speaker who assigned it and \"assignmentTimestamp\" to that segment's start time in seconds.\n")
	b.WriteString("- Infer \"priority\" from urgency language: urgent/asap means \"high\", soon/should means \"medium\", eventually/maybe means \"low\".\n")
	b.WriteString("- Set \"isExplicit\" true when the assignment was stated outright, false when it was implied.\n")
	b.WriteString("- Attach a \"confidence\" between 0 and 1 to every item.\n\n")

	b.WriteString("## Rules:\n")
	b.WriteString("- Never invent quotes or timestamps absent from the supplied segments.\n")
	b.WriteString("- Omit a field rather than guess.\n")
	fmt.Fprintf(&b, "- Only include items you are at least %.2f confident about.\n", m.MinConfidence)
	b.WriteString("- Return ONLY a single valid JSON object matching the response format.\n\n")

	b.WriteString("## Response Format (JSON):\n")
	b.WriteString(`{"actionItems": [{"id": "", "assignedBy": "", "assignmentTimestamp": 0, "priority": "high|medium|low", "isExplicit": true, "confidence": 0.0}]}`)
	b.WriteString("\n")
	return b.String()
}

func (m ActionMining) ParseResponse(raw string) Outcome {
	res := m.parse(raw)
	return Outcome{
		Partial:  types.PartialEnrichmentResult{ActionEnrichments: res.Data},
		Metadata: res.Metadata,
		Err:      res.Err,
	}
}

func (m ActionMining) parse(raw string) Result[types.ActionEnrichment] {
	start := time.Now()
	var resp struct {
		ActionItems []types.ActionEnrichment `json:"actionItems"`
	}
	if errStr := decodeEnvelope(raw, &resp); errStr != "" {
		return Result[types.ActionEnrichment]{Data: []types.ActionEnrichment{}, Err: errStr}
	}

	kept := make([]types.ActionEnrichment, 0, len(resp.ActionItems))
	var confs []float64
	for _, e := range resp.ActionItems {
		if e.ID == "" {
			continue
		}
		if !validConfidence(e.Confidence) {
			e.Confidence = nil
		}
		// confidence filtering happens here, at the pattern boundary
		if e.Confidence == nil || *e.Confidence < m.MinConfidence {
			continue
		}
		e.Priority = strings.ToLower(e.Priority)
		kept = append(kept, e)
		confs = append(confs, *e.Confidence)
	}
	return Result[types.ActionEnrichment]{
		Data:     kept,
		Metadata: finish(len(resp.ActionItems), len(kept), confs, start),
	}
}
