package driven

import (
	"context"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
)

// IndexStore persists the chunk list, tokenized corpus and ranking index as
// one snapshot.
type IndexStore interface {
	// Save writes every artifact, then the manifest.
	Save(ctx context.Context, snapshot *domain.IndexSnapshot) error

	// Load returns nil, nil when no complete snapshot exists.
	// Inconsistent artifacts return domain.ErrMalformedPersistedState.
	Load(ctx context.Context) (*domain.IndexSnapshot, error)

	// Exists reports whether the manifest, chunk file and index file are present.
	Exists(ctx context.Context) bool

	// Manifest reads only the manifest. It returns nil, nil when absent.
	Manifest(ctx context.Context) (*domain.Manifest, error)

	// Location describes where the snapshot lives.
	Location() string
}
