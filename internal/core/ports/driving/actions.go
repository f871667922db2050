package driving

import (
	"context"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
)

// ResultActionService provides actions on retrieved passages.
type ResultActionService interface {
	// CopyToClipboard copies the passage text to the system clipboard.
	CopyToClipboard(ctx context.Context, result *domain.RetrievalResult) error

	// OpenDocument opens the passage's source document in the default application.
	OpenDocument(ctx context.Context, result *domain.RetrievalResult) error
}
