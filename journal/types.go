package journal

// Entry is one day's journal text supplied by the caller.
type Entry struct {
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
}

// Result is the envelope every gateway operation returns. Data is set iff Success is true;
// Message is set iff Success is false.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func ok[T any](v T) Result[T] {
	return Result[T]{Success: true, Data: &v}
}

func fail[T any](op string, err error) Result[T] {
	return Result[T]{Success: false, Message: op + " error: " + err.Error()}
}

// ConnectionResult is returned by the LLM reachability probe.
type ConnectionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Model   string `json:"model,omitempty"`
}

// OrganizedJournal is the cleaned-up version of a raw journal text.
type OrganizedJournal struct {
	OrganizedText    string   `json:"organized_text"`
	WordCount        int      `json:"word_count"`
	DetectedEmotions []string `json:"detected_emotions"`
	KeyEvents        []string `json:"key_events"`
}

// Stage is the 0-4 fatigue severity assigned by the model.
type Stage int

const (
	StageNormal Stage = iota
	StageMildFatigue
	StageModerateFatigue
	StageSevereFatigue
	StageDanger
)

// EmergencyStage is the lowest stage treated as an emergency and escalated to the high-accuracy model.
const EmergencyStage = StageSevereFatigue

func (s Stage) Valid() bool { return s >= StageNormal && s <= StageDanger }

func (s Stage) Emergency() bool { return s >= EmergencyStage }

// StageAnalysis is the classification of a set of journal entries.
type StageAnalysis struct {
	Stage      Stage    `json:"stage"`
	Confidence int      `json:"confidence"`
	Reasons    []string `json:"reasons"`
	Keywords   []string `json:"keywords"`
	Emergency  bool     `json:"emergency"`

	// ModelUsed is the model that produced this result (the high-accuracy model after escalation).
	ModelUsed string `json:"model_used"`
	// AnalysisDate is the call time, ISO-8601 UTC with milliseconds.
	AnalysisDate string `json:"analysis_date"`
	// Escalated is true when a standard-model result was discarded in favour of this one.
	Escalated bool `json:"escalated"`
}

// Recommendation is one active-rest suggestion.
type Recommendation struct {
	Title       string `json:"title"`
	Type        string `json:"type"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
	Materials   string `json:"materials"`
}

// RestPlan is the set of three recommendations for a stage and time of day.
type RestPlan struct {
	Recommendations  []Recommendation `json:"recommendations"`
	EmergencyMessage string           `json:"emergency_message,omitempty"`
}

// stageReply is the subset of StageAnalysis the model fills in.
type stageReply struct {
	Stage      int      `json:"stage"`
	Confidence int      `json:"confidence"`
	Reasons    []string `json:"reasons"`
	Keywords   []string `json:"keywords"`
	Emergency  bool     `json:"emergency"`
}
