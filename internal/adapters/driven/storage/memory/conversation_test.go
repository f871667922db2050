package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
)

func user(text string) domain.ChatMessage {
	return domain.ChatMessage{Role: domain.RoleUser, Content: text}
}

func TestConversationStore_UnknownIDIsEmpty(t *testing.T) {
	store := NewConversationStore(0)

	history, err := store.History(context.Background(), "conv_missing", 6)

	require.NoError(t, err)
	assert.Empty(t, history)
	assert.Equal(t, 0, store.Len())
}

func TestConversationStore_HistoryReturnsMostRecent(t *testing.T) {
	ctx := context.Background()
	store := NewConversationStore(0)
	for i := range 8 {
		require.NoError(t, store.Append(ctx, "c1", user(fmt.Sprintf("m%d", i))))
	}

	history, err := store.History(ctx, "c1", 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "m5", history[0].Content)
	assert.Equal(t, "m7", history[2].Content)

	all, err := store.History(ctx, "c1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 8)
}

func TestConversationStore_HistoryIsACopy(t *testing.T) {
	ctx := context.Background()
	store := NewConversationStore(0)
	require.NoError(t, store.Append(ctx, "c1", user("hello")))

	history, _ := store.History(ctx, "c1", 0)
	history[0].Content = "changed"

	again, _ := store.History(ctx, "c1", 0)
	assert.Equal(t, "hello", again[0].Content)
}

func TestConversationStore_CapDropsOldest(t *testing.T) {
	ctx := context.Background()
	store := NewConversationStore(4)
	for i := range 6 {
		require.NoError(t, store.Append(ctx, "c1", user(fmt.Sprintf("m%d", i))))
	}

	history, _ := store.History(ctx, "c1", 0)
	require.Len(t, history, 4)
	assert.Equal(t, "m2", history[0].Content)
}

func TestConversationStore_ConversationsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewConversationStore(0)
	require.NoError(t, store.Append(ctx, "a", user("for a")))
	require.NoError(t, store.Append(ctx, "b", user("for b"), user("again b")))

	a, _ := store.History(ctx, "a", 0)
	b, _ := store.History(ctx, "b", 0)
	assert.Len(t, a, 1)
	assert.Len(t, b, 2)
	assert.Equal(t, 2, store.Len())
}

func TestConversationStore_ConcurrentAppend(t *testing.T) {
	ctx := context.Background()
	store := NewConversationStore(1000)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Append(ctx, "shared", user(fmt.Sprintf("m%d", i)))
			_, _ = store.History(ctx, "shared", 6)
		}()
	}
	wg.Wait()

	history, _ := store.History(ctx, "shared", 0)
	assert.Len(t, history, 20)
}
