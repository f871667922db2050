package domain

import "time"

// Classification is the complexity label assigned to a query.
type Classification string

// Available classifications.
const (
	// ClassificationSimple is answered by the light model tier.
	ClassificationSimple Classification = "simple"

	// ClassificationComplex is answered by the heavy model tier.
	ClassificationComplex Classification = "complex"
)

// IsValid returns true if the classification is recognised.
func (c Classification) IsValid() bool {
	return c == ClassificationSimple || c == ClassificationComplex
}

// String returns the string representation.
func (c Classification) String() string {
	return string(c)
}

// Route pairs a query's classification with the model that answers it.
type Route struct {
	Classification Classification `json:"classification"`
	Model          string         `json:"model"`
}

// RequestLog is one append-only record per served query.
type RequestLog struct {
	Timestamp      time.Time      `json:"timestamp"`
	ConversationID string         `json:"conversation_id,omitempty"`
	Query          string         `json:"query"`
	Classification Classification `json:"classification"`
	ModelUsed      string         `json:"model_used"`
	TokensInput    int            `json:"tokens_input"`
	TokensOutput   int            `json:"tokens_output"`
	LatencyMS      int64          `json:"latency_ms"`
}
