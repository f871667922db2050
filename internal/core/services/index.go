package services

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/clearpath-labs/clearpath/internal/bm25"
	"github.com/clearpath-labs/clearpath/internal/core/domain"
	"github.com/clearpath-labs/clearpath/internal/core/ports/driven"
	"github.com/clearpath-labs/clearpath/internal/core/ports/driving"
	"github.com/clearpath-labs/clearpath/internal/logger"
	"github.com/clearpath-labs/clearpath/internal/postprocessors/chunker"
	"github.com/clearpath-labs/clearpath/internal/tokenizer"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// SnapshotSwapper receives freshly built snapshots.
type SnapshotSwapper interface {
	Swap(snapshot *domain.IndexSnapshot) error
}

// IndexService runs the extract, chunk, tokenize, rank and persist pipeline.
type IndexService struct {
	source     driven.DocumentSource
	extractors driven.PageExtractorRegistry
	store      driven.IndexStore
	chunker    *chunker.Processor
	tokenizer  *tokenizer.Tokenizer
	params     domain.RankingParams

	swapper SnapshotSwapper
	workers int
	now     func() time.Time

	// buildMu ensures a single build at a time.
	buildMu sync.Mutex
}

// NewIndexService creates a new index service.
func NewIndexService(
	source driven.DocumentSource,
	extractors driven.PageExtractorRegistry,
	store driven.IndexStore,
	chunks *chunker.Processor,
	tok *tokenizer.Tokenizer,
) *IndexService {
	return &IndexService{
		source:     source,
		extractors: extractors,
		store:      store,
		chunker:    chunks,
		tokenizer:  tok,
		params:     bm25.DefaultParams(),
		workers:    runtime.GOMAXPROCS(0),
		now:        time.Now,
	}
}

// SetSwapper sets the retriever that receives each new snapshot.
func (s *IndexService) SetSwapper(swapper SnapshotSwapper) {
	s.swapper = swapper
}

// SetWorkers sets the number of documents extracted concurrently.
func (s *IndexService) SetWorkers(n int) {
	if n > 0 {
		s.workers = n
	}
}

// BuildIndex builds and persists a new index. Without force an existing index
// whose fingerprint matches the current documents is kept.
//
//nolint:gocyclo // Pipeline function with necessary sequential steps
func (s *IndexService) BuildIndex(ctx context.Context, force bool) (*domain.BuildReport, error) {
	logger.Section("Index Build")

	if !s.buildMu.TryLock() {
		return nil, domain.ErrBuildInProgress
	}
	defer s.buildMu.Unlock()

	started := s.now()

	// 1. Enumerate documents
	docs, err := s.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	fingerprint := domain.Fingerprint(docs)
	logger.Info("Found %d documents in %s", len(docs), s.source.Root())

	// 2. Skip when the persisted index is current
	if !force && s.store.Exists(ctx) {
		manifest, mErr := s.store.Manifest(ctx)
		switch {
		case mErr != nil:
			logger.Warn("Existing index unreadable, rebuilding: %v", mErr)
		case manifest != nil && manifest.Fingerprint == fingerprint:
			if vErr := s.verifyStored(ctx); vErr != nil {
				logger.Warn("Existing index unusable, rebuilding: %v", vErr)
				break
			}
			logger.Info("Index is up to date (%d chunks)", manifest.ChunkCount)
			return &domain.BuildReport{
				Skipped:     true,
				Documents:   manifest.DocumentCount,
				Chunks:      manifest.ChunkCount,
				Fingerprint: fingerprint,
				Duration:    s.now().Sub(started),
			}, nil
		default:
			logger.Info("Documents changed since last build, rebuilding")
		}
	}

	// 3. Extract pages
	pages, failed, err := s.extract(ctx, docs)
	if err != nil {
		return nil, err
	}

	// 4. Chunk in document order and assign dense ids
	var chunks []domain.Chunk
	for i, doc := range docs {
		if pages[i] == nil {
			continue
		}
		docChunks := s.chunker.ChunkPages(pages[i], doc.Name)
		logger.Debug("%s: %d pages, %d chunks", doc.Name, len(pages[i]), len(docChunks))
		chunks = append(chunks, docChunks...)
	}
	for i := range chunks {
		chunks[i].ChunkID = i
	}
	if len(chunks) == 0 {
		return nil, domain.ErrEmptyCorpus
	}

	// 5. Tokenize
	corpus := make([][]string, len(chunks))
	empty, totalTokens := 0, 0
	for i := range chunks {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		corpus[i] = s.tokenizer.Tokenize(chunks[i].Text)
		if len(corpus[i]) == 0 {
			empty++
			logger.Debug("Chunk %d (%s p.%d) has no indexable terms", i, chunks[i].Source, chunks[i].Page)
		}
		totalTokens += len(corpus[i])
	}
	if empty > 0 {
		logger.Warn("%d chunks have no indexable terms", empty)
	}

	// 6. Rank
	ix := bm25.New(corpus, s.params)
	logger.Info("BM25 index built: %d chunks, %d terms, avgdl %.1f", ix.Len(), ix.Terms(), ix.AverageDocLength())

	snapshot := &domain.IndexSnapshot{
		Manifest: domain.Manifest{
			Version:       domain.IndexFormatVersion,
			CreatedAt:     s.now().UTC(),
			ChunkCount:    len(chunks),
			DocumentCount: len(docs) - len(failed),
			Fingerprint:   fingerprint,
			Tokenizer:     s.tokenizer.Settings(),
			Ranking:       ix.Params(),
		},
		Chunks: chunks,
		Corpus: corpus,
		Index:  ix,
	}

	// 7. Persist, then publish. A started write always runs to completion.
	if err := s.store.Save(context.WithoutCancel(ctx), snapshot); err != nil {
		return nil, fmt.Errorf("save index: %w", err)
	}
	logger.Info("Index saved to %s", s.store.Location())

	if s.swapper != nil {
		if err := s.swapper.Swap(snapshot); err != nil {
			return nil, fmt.Errorf("publish index: %w", err)
		}
	}

	return &domain.BuildReport{
		Documents:       len(docs),
		FailedDocuments: failed,
		Chunks:          len(chunks),
		EmptyChunks:     empty,
		AverageTokens:   float64(totalTokens) / float64(len(chunks)),
		Fingerprint:     fingerprint,
		Duration:        s.now().Sub(started),
	}, nil
}

// verifyStored loads the persisted snapshot to confirm every artifact decodes
// and agrees with the others.
func (s *IndexService) verifyStored(ctx context.Context) error {
	snapshot, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	if snapshot == nil {
		return fmt.Errorf("%w: incomplete artifact set", domain.ErrMalformedPersistedState)
	}
	return nil
}

// extract runs the page extractors concurrently. Results are position-aligned
// with docs; a nil entry marks a skipped document.
func (s *IndexService) extract(
	ctx context.Context, docs []domain.SourceDocument,
) ([][]domain.Page, []string, error) {
	pages := make([][]domain.Page, len(docs))
	errs := make([]error, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			extractor, ok := s.extractors.For(docs[i].Path)
			if !ok {
				errs[i] = fmt.Errorf("%w: %s", domain.ErrUnsupportedType, docs[i].Name)
				return nil
			}
			p, err := extractor.Extract(gctx, docs[i].Path)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				errs[i] = err
				return nil
			}
			if p == nil {
				p = []domain.Page{}
			}
			pages[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var failed []string
	for i, err := range errs {
		if err != nil {
			logger.Warn("Skipping %s: %v", docs[i].Name, err)
			failed = append(failed, docs[i].Name)
		}
	}
	return pages, failed, nil
}

// Status describes the persisted index against the current documents.
func (s *IndexService) Status(ctx context.Context) (*domain.IndexStatus, error) {
	docs, err := s.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	status := &domain.IndexStatus{
		Exists:             s.store.Exists(ctx),
		CurrentFingerprint: domain.Fingerprint(docs),
	}
	if status.Exists {
		manifest, err := s.store.Manifest(ctx)
		if err != nil {
			return nil, fmt.Errorf("read manifest: %w", err)
		}
		status.Manifest = manifest
	}
	status.Stale = status.Manifest == nil || status.Manifest.Fingerprint != status.CurrentFingerprint
	return status, nil
}
