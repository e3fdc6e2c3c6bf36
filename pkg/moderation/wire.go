package moderation

// CheckResponse is the body returned by POST /check.
type CheckResponse struct {
	Status      string                `json:"status"`
	Violations  []ViolationResponse   `json:"violations"`
	Message     *string               `json:"message"`
	Metadata    *MetadataResponse     `json:"metadata"`
	RuleDetails map[string]RuleDetail `json:"rule_details"`
	RequestID   string                `json:"request_id"`
}

type ViolationResponse struct {
	RuleID     string         `json:"rule_id"`
	Type       string         `json:"type"`
	Matched    string         `json:"matched"`
	Confidence float64        `json:"confidence"`
	Details    map[string]any `json:"details"`
	Category   *string        `json:"category"`
}

type MetadataResponse struct {
	ProcessingTimeMs *float64           `json:"processing_time_ms"`
	ToxicityScores   map[string]float64 `json:"toxicity_scores"`
	ClassifierError  *string            `json:"classifier_error"`
}

// BatchResponse is the body returned by POST /batch_check.
type BatchResponse struct {
	BatchID          string          `json:"batch_id"`
	Results          []CheckResponse `json:"results"`
	TotalItems       int             `json:"total_items"`
	ProcessingTimeMs float64         `json:"processing_time_ms"`
}

type checkRequest struct {
	Text    string         `json:"text"`
	Context map[string]any `json:"context,omitempty"`
}

type batchItem struct {
	Text string `json:"text"`
}

type batchRequest struct {
	Items []batchItem `json:"items"`
}
