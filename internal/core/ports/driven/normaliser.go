package driven

import (
	"context"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
)

// PageExtractor reads the page text of one document format.
type PageExtractor interface {
	// Name identifies the extractor in logs.
	Name() string

	// SupportedExtensions returns lowercase file extensions including the dot.
	SupportedExtensions() []string

	// Extract returns the pages of the document at path, 1-based.
	// Page text is raw; cleaning happens in the chunker.
	Extract(ctx context.Context, path string) ([]domain.Page, error)
}

// PageExtractorRegistry selects extractors by file extension.
type PageExtractorRegistry interface {
	// Register adds an extractor. Later registrations win for shared extensions.
	Register(e PageExtractor)

	// For returns the extractor for path, or false if none handles it.
	For(path string) (PageExtractor, bool)

	// Extensions returns every supported extension, sorted.
	Extensions() []string
}
