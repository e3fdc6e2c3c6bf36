package moderation

// CheckResult is the normalized outcome of a single moderation check.
type CheckResult struct {
	Valid       bool                  `json:"valid"`
	Violations  []Violation           `json:"violations"`
	RequestID   string                `json:"requestId"`
	Status      string                `json:"status"`
	Message     *string               `json:"message,omitempty"`
	Metadata    *Metadata             `json:"metadata,omitempty"`
	RuleDetails map[string]RuleDetail `json:"ruleDetails,omitempty"`
}

type Violation struct {
	RuleID     string         `json:"ruleId"`
	Type       string         `json:"type"`
	Matched    string         `json:"matched"`
	Confidence float64        `json:"confidence"`
	Details    map[string]any `json:"details,omitempty"`
	Category   *string        `json:"category,omitempty"`
}

type Metadata struct {
	ProcessingTimeMs *float64           `json:"processingTimeMs,omitempty"`
	ToxicityScores   map[string]float64 `json:"toxicityScores,omitempty"`
	ClassifierError  *string            `json:"classifierError,omitempty"`
}

type RuleDetail struct {
	Description string `json:"description"`
	Response    string `json:"response"`
}

// BatchResult keeps Results in the order of the submitted contents.
type BatchResult struct {
	BatchID          string        `json:"batchId"`
	Results          []CheckResult `json:"results"`
	TotalItems       int           `json:"totalItems"`
	ProcessingTimeMs float64       `json:"processingTimeMs"`
}

type HealthStatus struct {
	Status    string  `json:"status"`
	Timestamp string  `json:"timestamp"`
	Message   *string `json:"message,omitempty"`
}
