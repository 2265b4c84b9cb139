package types

// ActionEnrichment carries only the fields a mining pass wants to change on
// the action item with the matching ID. Absent fields never overwrite.
type ActionEnrichment struct {
	ID                  string   `json:"id"`
	AssignedBy          string   `json:"assignedBy,omitempty"`
	AssignmentTimestamp *float64 `json:"assignmentTimestamp,omitempty"`
	Priority            string   `json:"priority,omitempty"`
	IsExplicit          *bool    `json:"isExplicit,omitempty"`
	Confidence          *float64 `json:"confidence,omitempty"`
}

type DecisionEnrichment struct {
	ID           string     `json:"id"`
	MadeBy       string     `json:"madeBy,omitempty"`
	Participants []string   `json:"participants,omitempty"`
	VoteTally    *VoteTally `json:"voteTally,omitempty"`
	IsExplicit   *bool      `json:"isExplicit,omitempty"`
	Confidence   *float64   `json:"confidence,omitempty"`
}

// PartialEnrichmentResult aggregates what every mining pattern produced.
type PartialEnrichmentResult struct {
	ActionEnrichments   []ActionEnrichment   `json:"actionEnrichments"`
	DecisionEnrichments []DecisionEnrichment `json:"decisionEnrichments"`
	NewQuotes           []Quote              `json:"newQuotes"`
}

// MiningContext is the read-only view handed to every mining pattern.
type MiningContext struct {
	Segments        []Segment
	ExistingResults AnalysisResults
}

// MiningMetadata is the uniform envelope metadata every pattern reports.
type MiningMetadata struct {
	ItemsProcessed   int     `json:"itemsProcessed"`
	ItemsEnriched    int     `json:"itemsEnriched"`
	Confidence       float64 `json:"confidence"`
	ProcessingTimeMs int64   `json:"processingTimeMs"`
}

// EvaluationResults is produced once per self-evaluation run and paired with
// the immutable draft snapshot taken before evaluation.
type EvaluationResults struct {
	QualityScore float64  `json:"qualityScore"`
	Improvements []string `json:"improvements"`
	Additions    []string `json:"additions"`
	Warnings     []string `json:"warnings"`
	Reasoning    string   `json:"reasoning"`
}

// RunMetadata reports how an execution went, including which units soft-failed.
type RunMetadata struct {
	Strategy    string   `json:"strategy"`
	CallsMade   int      `json:"callsMade"`
	FailedUnits []string `json:"failedUnits,omitempty"`
	DurationMs  int64    `json:"durationMs"`
}
