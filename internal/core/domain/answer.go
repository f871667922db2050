package domain

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single turn of a conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Evaluator flags raised on generated answers.
const (
	FlagNoContext        = "no_context"
	FlagRefusal          = "refusal"
	FlagInternalDataLeak = "internal_data_leak"
)

// Question is a caller's request to the answer pipeline.
type Question struct {
	Text           string `json:"question"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// TokenUsage counts model tokens for one generation.
type TokenUsage struct {
	Input  int `json:"input"`
	Output int `json:"output"`
}

// AnswerMetadata describes how an answer was produced.
type AnswerMetadata struct {
	ModelUsed       string         `json:"model_used"`
	Classification  Classification `json:"classification"`
	Tokens          TokenUsage     `json:"tokens"`
	LatencyMS       int64          `json:"latency_ms"`
	ChunksRetrieved int            `json:"chunks_retrieved"`
	EvaluatorFlags  []string       `json:"evaluator_flags"`
}

// Answer is the response of the answer pipeline.
type Answer struct {
	Answer         string         `json:"answer"`
	Metadata       AnswerMetadata `json:"metadata"`
	Sources        []Source       `json:"sources"`
	ConversationID string         `json:"conversation_id"`
}

// Generation is the raw output of the generative model.
type Generation struct {
	Text   string
	Tokens TokenUsage
}
