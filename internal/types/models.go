package types

// Segment is one speaker-attributed, timestamped slice of the transcript.
// Segments are immutable once parsed; their ids are stable for the whole
// pipeline run and are what mining prompts reference.
type Segment struct {
	ID      string  `json:"id"`
	Speaker string  `json:"speaker,omitempty"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
}

// TemplateSection describes one narrative section the analysis should produce.
// Group is an optional batching hint used by the hybrid strategy; sections
// sharing a group are sent in the same batch.
type TemplateSection struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Group       string `json:"group,omitempty"`
}

// Artifact kinds a template may request beyond the standard lists.
const (
	ArtifactBenchmarks   = "benchmarks"
	ArtifactRadioReports = "radioReports"
	ArtifactSafetyEvents = "safetyEvents"
)

type TemplateSpec struct {
	Name      string            `json:"name"`
	Sections  []TemplateSection `json:"sections"`
	Artifacts []string          `json:"artifacts,omitempty"`
}

// Section is one produced narrative section. Error carries the soft-failure
// annotation when the LLM response for this section could not be parsed.
type Section struct {
	Key     string `json:"key"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
}

const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// ActionItem base fields come from the strategy executor; everything after
// Timestamp is optional enrichment attached later by mining.
type ActionItem struct {
	ID        string  `json:"id"`
	Task      string  `json:"task"`
	Owner     string  `json:"owner,omitempty"`
	Timestamp float64 `json:"timestamp,omitempty"`

	AssignedBy          string   `json:"assignedBy,omitempty"`
	AssignmentTimestamp *float64 `json:"assignmentTimestamp,omitempty"`
	Priority            string   `json:"priority,omitempty"`
	IsExplicit          *bool    `json:"isExplicit,omitempty"`
	Confidence          *float64 `json:"confidence,omitempty"`
}

// VoteTally is only attached when explicit voting language was detected.
type VoteTally struct {
	For     int `json:"for"`
	Against int `json:"against"`
	Abstain int `json:"abstain"`
}

type Decision struct {
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	Timestamp float64 `json:"timestamp,omitempty"`

	MadeBy       string     `json:"madeBy,omitempty"`
	Participants []string   `json:"participants,omitempty"`
	VoteTally    *VoteTally `json:"voteTally,omitempty"`
	IsExplicit   *bool      `json:"isExplicit,omitempty"`
	Confidence   *float64   `json:"confidence,omitempty"`
}

const (
	QuoteCategoryDecision   = "decision"
	QuoteCategoryCommitment = "commitment"
	QuoteCategoryConcern    = "concern"
	QuoteCategoryInsight    = "insight"
	QuoteCategoryHumor      = "humor"
)

const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

type Quote struct {
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	Speaker   string  `json:"speaker,omitempty"`
	Timestamp float64 `json:"timestamp,omitempty"`

	Category   string   `json:"category,omitempty"`
	Sentiment  string   `json:"sentiment,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

type Benchmark struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Value   string `json:"value"`
	Unit    string `json:"unit,omitempty"`
	Context string `json:"context,omitempty"`
}

type RadioReport struct {
	ID        string  `json:"id"`
	Kind      string  `json:"kind"`
	Summary   string  `json:"summary"`
	Timestamp float64 `json:"timestamp,omitempty"`
}

type SafetyEvent struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Severity    string  `json:"severity,omitempty"`
	Timestamp   float64 `json:"timestamp,omitempty"`
}

// AnalysisResults is the draft/final output of a strategy execution and the
// input to enrichment. Merge never mutates one of these in place.
type AnalysisResults struct {
	Summary      string        `json:"summary,omitempty"`
	Sections     []Section     `json:"sections"`
	ActionItems  []ActionItem  `json:"actionItems,omitempty"`
	Decisions    []Decision    `json:"decisions,omitempty"`
	Quotes       []Quote       `json:"quotes,omitempty"`
	Benchmarks   []Benchmark   `json:"benchmarks,omitempty"`
	RadioReports []RadioReport `json:"radioReports,omitempty"`
	SafetyEvents []SafetyEvent `json:"safetyEvents,omitempty"`
}
