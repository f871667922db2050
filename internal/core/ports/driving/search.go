package driving

import (
	"context"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
)

// RetrievalService ranks chunks against a query.
type RetrievalService interface {
	// Retrieve returns at most topK chunks with relevance scores in (0, 1],
	// highest first. A query without indexable terms returns an empty list.
	// Returns domain.ErrIndexUnavailable when no index has been built.
	Retrieve(ctx context.Context, query string, topK int) ([]domain.RetrievalResult, error)

	// EnsureLoaded loads the persisted index once.
	EnsureLoaded(ctx context.Context) error

	// Reload replaces the cached index with the persisted one.
	Reload(ctx context.Context) error

	// Ready reports whether an index is loaded.
	Ready() bool
}
