package driving

import (
	"context"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
)

// IndexService builds and inspects the persisted index.
type IndexService interface {
	// BuildIndex runs the full pipeline. Without force it is a no-op when a
	// current index already exists.
	BuildIndex(ctx context.Context, force bool) (*domain.BuildReport, error)

	// Status describes the persisted index and whether the corpus changed.
	Status(ctx context.Context) (*domain.IndexStatus, error)
}
