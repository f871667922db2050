package domain

import (
	"fmt"
	"time"
)

// Default configuration values.
const (
	DefaultChunkSize    = 350
	DefaultChunkOverlap = 50
	DefaultTopK         = 5

	DefaultLightModel = "llama-3.1-8b-instant"
	DefaultHeavyModel = "llama-3.3-70b-versatile"

	DefaultLLMBaseURL     = "https://api.groq.com/openai/v1"
	DefaultLLMAPIKeyEnv   = "GROQ_API_KEY"
	DefaultLLMTemperature = 0.3
	DefaultLLMMaxTokens   = 1024
	DefaultLLMTimeout     = 60 * time.Second
	DefaultHistoryTurns   = 6

	DefaultServerAddr = ":8000"
)

// RequestLogKind selects the request log backend.
type RequestLogKind string

// Available request log backends.
const (
	// RequestLogJSONL appends one JSON object per line to a file.
	RequestLogJSONL RequestLogKind = "jsonl"

	// RequestLogSQLite inserts rows into a SQLite database.
	RequestLogSQLite RequestLogKind = "sqlite"

	// RequestLogNone disables request logging.
	RequestLogNone RequestLogKind = "none"
)

// IsValid returns true if the request log kind is recognised.
func (k RequestLogKind) IsValid() bool {
	switch k {
	case RequestLogJSONL, RequestLogSQLite, RequestLogNone:
		return true
	default:
		return false
	}
}

// PathSettings locates the corpus and the generated artifacts.
type PathSettings struct {
	// DocumentsDir holds the source documents.
	DocumentsDir string

	// IndexDir holds the persisted index artifacts.
	IndexDir string

	// LogDir holds the request log.
	LogDir string
}

// ChunkingSettings configures the word-window chunker.
type ChunkingSettings struct {
	// Size is the number of words per window.
	Size int

	// Overlap is the number of words shared by consecutive windows.
	Overlap int
}

// Validate rejects configurations whose stride would not advance.
func (c ChunkingSettings) Validate() error {
	if c.Size <= 0 || c.Overlap < 0 || c.Overlap >= c.Size {
		return fmt.Errorf("%w: size=%d overlap=%d", ErrInvalidChunkConfig, c.Size, c.Overlap)
	}
	return nil
}

// Stride returns the distance between consecutive window starts.
func (c ChunkingSettings) Stride() int {
	return c.Size - c.Overlap
}

// TokenizerSettings configures term normalisation.
// It is persisted with the index so queries are tokenised the same way.
type TokenizerSettings struct {
	// Stemming enables Snowball English stemming of terms.
	Stemming bool `json:"stemming"`
}

// RetrievalSettings configures top-K selection.
type RetrievalSettings struct {
	// TopK is the maximum number of chunks returned per query.
	TopK int
}

// RouterSettings maps classifications to model tiers.
type RouterSettings struct {
	// LightModel answers simple queries.
	LightModel string

	// HeavyModel answers complex queries.
	HeavyModel string
}

// ModelFor returns the model tier for a classification.
func (r RouterSettings) ModelFor(c Classification) string {
	if c == ClassificationComplex {
		return r.HeavyModel
	}
	return r.LightModel
}

// LLMSettings configures the OpenAI-compatible generation endpoint.
type LLMSettings struct {
	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is resolved from APIKeyEnv at load time.
	APIKey string

	// APIKeyEnv names the environment variable holding the key.
	APIKeyEnv string

	// Temperature controls randomness.
	Temperature float64

	// MaxTokens caps the generated answer.
	MaxTokens int

	// Timeout bounds a single generation.
	Timeout time.Duration

	// RequestsPerSecond throttles outbound calls. Zero disables throttling.
	RequestsPerSecond float64

	// HistoryTurns is the number of prior messages sent with a question.
	HistoryTurns int
}

// IsConfigured returns true if the LLM can be called.
func (l LLMSettings) IsConfigured() bool {
	return l.BaseURL != "" && l.APIKey != ""
}

// ServerSettings configures the HTTP transport.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string

	// RequestsPerSecond limits /query. Zero disables the limiter.
	RequestsPerSecond float64
}

// RequestLogSettings selects where request records go.
type RequestLogSettings struct {
	Kind RequestLogKind
}

// EvaluatorSettings configures the answer flagging heuristics.
type EvaluatorSettings struct {
	// InternalDocPrefixes identify documents that simple queries should not surface.
	InternalDocPrefixes []string
}

// Settings holds all application settings.
type Settings struct {
	Paths      PathSettings
	Chunking   ChunkingSettings
	Tokenizer  TokenizerSettings
	Retrieval  RetrievalSettings
	Router     RouterSettings
	LLM        LLMSettings
	Server     ServerSettings
	RequestLog RequestLogSettings
	Evaluator  EvaluatorSettings
}

// DefaultSettings returns settings with sensible defaults.
// The LLM API key is left empty; it is read from the environment.
func DefaultSettings() Settings {
	return Settings{
		Paths: PathSettings{
			DocumentsDir: "docs",
			IndexDir:     "index_store",
			LogDir:       "logs",
		},
		Chunking: ChunkingSettings{
			Size:    DefaultChunkSize,
			Overlap: DefaultChunkOverlap,
		},
		Retrieval: RetrievalSettings{TopK: DefaultTopK},
		Router: RouterSettings{
			LightModel: DefaultLightModel,
			HeavyModel: DefaultHeavyModel,
		},
		LLM: LLMSettings{
			BaseURL:      DefaultLLMBaseURL,
			APIKeyEnv:    DefaultLLMAPIKeyEnv,
			Temperature:  DefaultLLMTemperature,
			MaxTokens:    DefaultLLMMaxTokens,
			Timeout:      DefaultLLMTimeout,
			HistoryTurns: DefaultHistoryTurns,
		},
		Server:     ServerSettings{Addr: DefaultServerAddr},
		RequestLog: RequestLogSettings{Kind: RequestLogJSONL},
		Evaluator: EvaluatorSettings{
			InternalDocPrefixes: []string{
				"01_Employee_Handbook",
				"02_Data_Security_Privacy_Policy",
				"03_Remote_Work_Guidelines",
				"04_Code_of_Conduct",
				"05_PTO_Leave_Policy",
				"22_Q4_2023_Team_Retrospective",
				"23_Engineering_Team_Structure",
				"24_Weekly_Standup_Notes",
				"25_Product_Roadmap_2024",
			},
		},
	}
}
