// Package memory provides in-memory implementations of driven ports.
package memory

import (
	"context"
	"sync"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
	"github.com/clearpath-labs/clearpath/internal/core/ports/driven"
)

// Ensure ConversationStore implements the interface.
var _ driven.ConversationStore = (*ConversationStore)(nil)

// DefaultMaxMessages caps the messages kept per conversation.
const DefaultMaxMessages = 100

// ConversationStore keeps chat history per conversation id for the life of
// the process.
type ConversationStore struct {
	mu            sync.RWMutex
	conversations map[string][]domain.ChatMessage
	maxMessages   int
}

// NewConversationStore creates a new in-memory conversation store.
// maxMessages <= 0 uses DefaultMaxMessages.
func NewConversationStore(maxMessages int) *ConversationStore {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxMessages
	}
	return &ConversationStore{
		conversations: make(map[string][]domain.ChatMessage),
		maxMessages:   maxMessages,
	}
}

// History returns up to limit of the most recent messages, oldest first.
// An unknown id has an empty history.
func (s *ConversationStore) History(_ context.Context, id string, limit int) ([]domain.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.conversations[id]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]domain.ChatMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}

// Append adds messages to a conversation, dropping the oldest past the cap.
func (s *ConversationStore) Append(_ context.Context, id string, messages ...domain.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := append(s.conversations[id], messages...)
	if len(msgs) > s.maxMessages {
		msgs = append([]domain.ChatMessage(nil), msgs[len(msgs)-s.maxMessages:]...)
	}
	s.conversations[id] = msgs
	return nil
}

// Len returns the number of conversations held.
func (s *ConversationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}
