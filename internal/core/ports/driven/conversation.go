package driven

import (
	"context"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
)

// ConversationStore keeps chat history per conversation id.
type ConversationStore interface {
	// History returns at most the last limit messages. Unknown ids return nil.
	History(ctx context.Context, id string, limit int) ([]domain.ChatMessage, error)

	// Append adds messages to the end of a conversation.
	Append(ctx context.Context, id string, messages ...domain.ChatMessage) error
}
