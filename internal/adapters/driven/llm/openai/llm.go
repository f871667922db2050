// Package openai provides an LLM service adapter for OpenAI-compatible chat
// completion endpoints such as Groq.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
	"github.com/clearpath-labs/clearpath/internal/core/ports/driven"
	"github.com/clearpath-labs/clearpath/internal/logger"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// LLMConfig holds configuration for the chat completion service.
type LLMConfig struct {
	// APIKey is the bearer token (required).
	APIKey string

	// BaseURL is the API base URL (default: the Groq OpenAI endpoint).
	BaseURL string

	// Temperature controls randomness (default: 0.3).
	Temperature float64

	// MaxTokens caps each answer (default: 1024).
	MaxTokens int

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// RequestsPerSecond throttles outbound calls. Zero disables throttling.
	RequestsPerSecond float64

	// HTTPClient overrides the transport. Timeout still applies when set.
	HTTPClient *http.Client
}

// ConfigFromSettings maps application settings to an adapter config.
func ConfigFromSettings(s domain.LLMSettings) LLMConfig {
	return LLMConfig{
		APIKey:            s.APIKey,
		BaseURL:           s.BaseURL,
		Temperature:       s.Temperature,
		MaxTokens:         s.MaxTokens,
		Timeout:           s.Timeout,
		RequestsPerSecond: s.RequestsPerSecond,
	}
}

// LLMService generates answers through the chat completions API.
type LLMService struct {
	client      *openai.Client
	baseURL     string
	temperature float32
	maxTokens   int
	limiter     *rate.Limiter
}

// NewLLMService creates a new chat completion service.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: API key is required", domain.ErrLLMUnavailable)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = domain.DefaultLLMBaseURL
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = domain.DefaultLLMMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = domain.DefaultLLMTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	httpClient.Timeout = cfg.Timeout

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	clientConfig.HTTPClient = httpClient

	s := &LLMService{
		client:      openai.NewClientWithConfig(clientConfig),
		baseURL:     clientConfig.BaseURL,
		temperature: float32(cfg.Temperature),
		maxTokens:   cfg.MaxTokens,
	}
	if cfg.RequestsPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return s, nil
}

// Generate completes the conversation with the given model.
func (s *LLMService) Generate(
	ctx context.Context, model string, messages []domain.ChatMessage,
) (*domain.Generation, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("%w: no messages", domain.ErrInvalidInput)
	}
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	chatMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		chatMessages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	started := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    chatMessages,
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("chat completion (status %d): %s", apiErr.HTTPStatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion: no choices returned")
	}
	logger.Debug("LLM %s answered in %s (%d+%d tokens)",
		model, time.Since(started).Round(time.Millisecond),
		resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	return &domain.Generation{
		Text: resp.Choices[0].Message.Content,
		Tokens: domain.TokenUsage{
			Input:  resp.Usage.PromptTokens,
			Output: resp.Usage.CompletionTokens,
		},
	}, nil
}

// Ping validates the endpoint and key by listing models.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.client.ListModels(ctx); err != nil {
		return fmt.Errorf("ping %s: %w", s.baseURL, err)
	}
	return nil
}

// BaseURL returns the configured endpoint.
func (s *LLMService) BaseURL() string {
	return s.baseURL
}

// Close releases resources.
func (s *LLMService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
