package driven

import (
	"context"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
)

// DocumentSource enumerates the corpus documents.
type DocumentSource interface {
	// Root describes where documents are read from.
	Root() string

	// List returns the supported documents in lexicographic name order.
	List(ctx context.Context) ([]domain.SourceDocument, error)

	// Watch streams changes to supported documents until ctx is cancelled.
	Watch(ctx context.Context) (<-chan domain.CorpusChange, error)

	// Close releases resources held by Watch.
	Close() error
}
