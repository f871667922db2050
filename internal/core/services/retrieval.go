package services

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
	"github.com/clearpath-labs/clearpath/internal/core/ports/driven"
	"github.com/clearpath-labs/clearpath/internal/core/ports/driving"
	"github.com/clearpath-labs/clearpath/internal/logger"
	"github.com/clearpath-labs/clearpath/internal/tokenizer"
)

// Ensure RetrievalService implements the interfaces.
var (
	_ driving.RetrievalService = (*RetrievalService)(nil)
	_ SnapshotSwapper          = (*RetrievalService)(nil)
)

// loadedIndex is an immutable snapshot paired with the tokenizer it was built with.
type loadedIndex struct {
	snapshot  *domain.IndexSnapshot
	tokenizer *tokenizer.Tokenizer
}

// RetrievalService ranks chunks with the current index snapshot.
// Readers never block; a reload publishes a whole new snapshot at once.
type RetrievalService struct {
	store       driven.IndexStore
	defaultTopK int

	current atomic.Pointer[loadedIndex]
	loadMu  sync.Mutex
}

// NewRetrievalService creates a new retrieval service.
func NewRetrievalService(store driven.IndexStore, defaultTopK int) *RetrievalService {
	if defaultTopK <= 0 {
		defaultTopK = domain.DefaultTopK
	}
	return &RetrievalService{store: store, defaultTopK: defaultTopK}
}

// EnsureLoaded loads the persisted index if none is loaded yet.
func (s *RetrievalService) EnsureLoaded(ctx context.Context) error {
	if s.current.Load() != nil {
		return nil
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if s.current.Load() != nil {
		return nil
	}
	return s.loadLocked(ctx)
}

// Reload replaces the loaded index with the persisted one. When loading
// fails the previous index keeps serving.
func (s *RetrievalService) Reload(ctx context.Context) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	logger.Debug("Reloading index from %s", s.store.Location())
	return s.loadLocked(ctx)
}

func (s *RetrievalService) loadLocked(ctx context.Context) error {
	snapshot, err := s.store.Load(ctx)
	if err != nil {
		logger.Warn("Failed to load index: %v", err)
		return fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}
	if snapshot == nil {
		return domain.ErrIndexUnavailable
	}
	if err := s.publish(snapshot); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}
	logger.Info("Index loaded: %d chunks", len(snapshot.Chunks))
	return nil
}

// Swap publishes a freshly built snapshot.
func (s *RetrievalService) Swap(snapshot *domain.IndexSnapshot) error {
	return s.publish(snapshot)
}

func (s *RetrievalService) publish(snapshot *domain.IndexSnapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}
	s.current.Store(&loadedIndex{
		snapshot:  snapshot,
		tokenizer: tokenizer.New(snapshot.Manifest.Tokenizer),
	})
	return nil
}

// Ready reports whether an index is loaded.
func (s *RetrievalService) Ready() bool {
	return s.current.Load() != nil
}

// Manifest returns the manifest of the loaded index, or nil.
func (s *RetrievalService) Manifest() *domain.Manifest {
	loaded := s.current.Load()
	if loaded == nil {
		return nil
	}
	m := loaded.snapshot.Manifest
	return &m
}

// Retrieve returns the topK best chunks for query. Scores are divided by the
// best raw score, so the first result scores 1 when anything matched.
func (s *RetrievalService) Retrieve(
	ctx context.Context, query string, topK int,
) ([]domain.RetrievalResult, error) {
	if err := s.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	loaded := s.current.Load()

	if topK <= 0 {
		topK = s.defaultTopK
	}

	terms := loaded.tokenizer.Tokenize(strings.TrimSpace(query))
	logger.Debug("Query %q -> terms %v", query, terms)
	if len(terms) == 0 {
		return []domain.RetrievalResult{}, nil
	}

	scores := loaded.snapshot.Index.Scores(terms)
	maxScore := 0.0
	for _, sc := range scores {
		maxScore = max(maxScore, sc)
	}
	denom := 1.0
	if maxScore > 0 {
		denom = maxScore
	}

	candidates := make([]int, 0, len(scores))
	for i, sc := range scores {
		if sc > 0 {
			candidates = append(candidates, i)
		}
	}
	slices.SortFunc(candidates, func(a, b int) int {
		if c := cmp.Compare(scores[b], scores[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	results := make([]domain.RetrievalResult, 0, len(candidates))
	for _, i := range candidates {
		score := roundScore(scores[i] / denom)
		if score <= 0 {
			continue
		}
		results = append(results, domain.RetrievalResult{
			Chunk:          loaded.snapshot.Chunks[i],
			RelevanceScore: score,
		})
	}
	logger.Debug("Retrieved %d of %d chunks", len(results), len(scores))
	return results, nil
}

// roundScore rounds to 4 decimal places.
func roundScore(x float64) float64 {
	return math.Round(x*1e4) / 1e4
}
