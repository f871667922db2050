package driven

import (
	"context"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
)

// LLMService generates answers from a chat transcript.
// This is an optional service - when nil, the ask pipeline is unavailable
// but retrieval and routing keep working.
type LLMService interface {
	// Generate completes the conversation with the given model.
	Generate(ctx context.Context, model string, messages []domain.ChatMessage) (*domain.Generation, error)

	// Close releases resources.
	Close() error
}
