package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearpath-labs/clearpath/internal/bm25"
	"github.com/clearpath-labs/clearpath/internal/core/domain"
	"github.com/clearpath-labs/clearpath/internal/tokenizer"
)

// buildSnapshot indexes texts as chunks of one source, one page each.
func buildSnapshot(texts ...string) *domain.IndexSnapshot {
	tok := tokenizer.New(domain.TokenizerSettings{})
	chunks := make([]domain.Chunk, len(texts))
	corpus := make([][]string, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{Text: text, Source: "doc.pdf", Page: i + 1, ChunkID: i}
		corpus[i] = tok.Tokenize(text)
	}
	return &domain.IndexSnapshot{
		Manifest: domain.Manifest{Version: domain.IndexFormatVersion, ChunkCount: len(chunks)},
		Chunks:   chunks,
		Corpus:   corpus,
		Index:    bm25.New(corpus, bm25.DefaultParams()),
	}
}

func pricingSnapshot() *domain.IndexSnapshot {
	return buildSnapshot(
		"The Pro plan costs $49 per month and includes unlimited projects",
		"Enterprise plan pricing is custom and includes SSO",
		"Remote work guidelines for employees",
		"Keyboard shortcuts speed up task creation",
		"Gantt charts show project timelines",
	)
}

func TestRetrievalService_NoIndex(t *testing.T) {
	service := NewRetrievalService(&mockIndexStore{}, 5)

	_, err := service.Retrieve(context.Background(), "pro plan", 5)

	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
	assert.False(t, service.Ready())
	assert.Nil(t, service.Manifest())
}

func TestRetrievalService_MalformedStateIsUnavailable(t *testing.T) {
	store := &mockIndexStore{loadErr: domain.ErrMalformedPersistedState}
	service := NewRetrievalService(store, 5)

	err := service.EnsureLoaded(context.Background())

	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
	assert.ErrorIs(t, err, domain.ErrMalformedPersistedState)
}

func TestRetrievalService_InconsistentSnapshotIsUnavailable(t *testing.T) {
	snapshot := pricingSnapshot()
	snapshot.Corpus = snapshot.Corpus[:2]
	service := NewRetrievalService(&mockIndexStore{snapshot: snapshot}, 5)

	err := service.EnsureLoaded(context.Background())

	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
	assert.False(t, service.Ready())
}

func TestRetrievalService_Retrieve_RanksAndNormalises(t *testing.T) {
	service := NewRetrievalService(&mockIndexStore{snapshot: pricingSnapshot()}, 5)

	results, err := service.Retrieve(context.Background(), "How much does the Pro plan cost per month?", 5)

	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, 0, results[0].ChunkID)
	assert.InDelta(t, 1.0, results[0].RelevanceScore, 1e-9)
	for i, r := range results {
		assert.Greater(t, r.RelevanceScore, 0.0)
		assert.LessOrEqual(t, r.RelevanceScore, 1.0)
		if i > 0 {
			assert.GreaterOrEqual(t, results[i-1].RelevanceScore, r.RelevanceScore)
		}
	}
}

func TestRetrievalService_Retrieve_DropsNonMatches(t *testing.T) {
	service := NewRetrievalService(&mockIndexStore{snapshot: pricingSnapshot()}, 5)

	results, err := service.Retrieve(context.Background(), "gantt", 5)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 4, results[0].ChunkID)
}

func TestRetrievalService_Retrieve_NoMatchesIsEmpty(t *testing.T) {
	service := NewRetrievalService(&mockIndexStore{snapshot: pricingSnapshot()}, 5)

	results, err := service.Retrieve(context.Background(), "kubernetes", 5)

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRetrievalService_Retrieve_StopWordQueryIsEmpty(t *testing.T) {
	store := &mockIndexStore{snapshot: pricingSnapshot()}
	service := NewRetrievalService(store, 5)

	results, err := service.Retrieve(context.Background(), "what is the a", 5)

	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestRetrievalService_Retrieve_RespectsTopK(t *testing.T) {
	service := NewRetrievalService(&mockIndexStore{snapshot: pricingSnapshot()}, 2)

	results, err := service.Retrieve(context.Background(), "plan project includes", 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = service.Retrieve(context.Background(), "plan project includes", 0)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(results), 2)
}

func TestRetrievalService_Retrieve_TiesBreakByChunkID(t *testing.T) {
	snapshot := buildSnapshot(
		"alpha bravo",
		"charlie delta",
		"alpha bravo",
		"echo foxtrot",
		"golf hotel",
	)
	service := NewRetrievalService(&mockIndexStore{snapshot: snapshot}, 5)

	results, err := service.Retrieve(context.Background(), "alpha", 2)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 0, results[0].ChunkID)
	assert.Equal(t, 2, results[1].ChunkID)
}

func TestRetrievalService_Retrieve_ScoresRoundedToFourDecimals(t *testing.T) {
	service := NewRetrievalService(&mockIndexStore{snapshot: pricingSnapshot()}, 5)

	results, err := service.Retrieve(context.Background(), "plan includes projects", 5)

	require.NoError(t, err)
	for _, r := range results {
		assert.InDelta(t, roundScore(r.RelevanceScore), r.RelevanceScore, 1e-12)
	}
}

func TestRetrievalService_EnsureLoaded_LoadsOnce(t *testing.T) {
	store := &mockIndexStore{snapshot: pricingSnapshot()}
	service := NewRetrievalService(store, 5)

	require.NoError(t, service.EnsureLoaded(context.Background()))
	store.loadErr = errors.New("should not be called")
	require.NoError(t, service.EnsureLoaded(context.Background()))
	assert.True(t, service.Ready())
}

func TestRetrievalService_Reload_PicksUpNewSnapshot(t *testing.T) {
	store := &mockIndexStore{snapshot: pricingSnapshot()}
	service := NewRetrievalService(store, 5)
	require.NoError(t, service.EnsureLoaded(context.Background()))

	store.snapshot = buildSnapshot("brand new kubernetes guide", "billing faq", "gantt charts")
	require.NoError(t, service.Reload(context.Background()))

	results, err := service.Retrieve(context.Background(), "kubernetes", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 3, service.Manifest().ChunkCount)
}

func TestRetrievalService_Reload_FailureKeepsServing(t *testing.T) {
	store := &mockIndexStore{snapshot: pricingSnapshot()}
	service := NewRetrievalService(store, 5)
	require.NoError(t, service.EnsureLoaded(context.Background()))

	store.loadErr = domain.ErrMalformedPersistedState
	err := service.Reload(context.Background())

	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
	results, err := service.Retrieve(context.Background(), "gantt", 5)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestRetrievalService_Swap(t *testing.T) {
	service := NewRetrievalService(&mockIndexStore{}, 5)

	require.NoError(t, service.Swap(pricingSnapshot()))
	assert.True(t, service.Ready())

	bad := pricingSnapshot()
	bad.Chunks[1].ChunkID = 7
	assert.ErrorIs(t, service.Swap(bad), domain.ErrMalformedPersistedState)
	assert.Equal(t, 5, service.Manifest().ChunkCount)
}

func TestRetrievalService_ConcurrentRetrieveAndSwap(t *testing.T) {
	service := NewRetrievalService(&mockIndexStore{snapshot: pricingSnapshot()}, 5)
	require.NoError(t, service.EnsureLoaded(context.Background()))

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%5 == 0 {
				_ = service.Swap(pricingSnapshot())
				return
			}
			results, err := service.Retrieve(context.Background(), "plan", 3)
			assert.NoError(t, err)
			assert.LessOrEqual(t, len(results), 3)
		}()
	}
	wg.Wait()
}

func TestRoundScore(t *testing.T) {
	assert.InDelta(t, 0.1235, roundScore(0.123456), 1e-12)
	assert.InDelta(t, 1.0, roundScore(0.99999), 1e-12)
	assert.InDelta(t, 0.0, roundScore(0.00004), 1e-12)
}
