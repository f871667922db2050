// Package plaintext extracts pages from plain text files.
package plaintext

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
	"github.com/clearpath-labs/clearpath/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.PageExtractor = (*Normaliser)(nil)

// Normaliser handles plain text documents. Form feeds start a new page.
type Normaliser struct{}

// New creates a new plain text extractor.
func New() *Normaliser {
	return &Normaliser{}
}

// Name returns the extractor name.
func (n *Normaliser) Name() string {
	return "plaintext"
}

// SupportedExtensions returns the extensions this extractor handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".txt", ".text"}
}

// Extract reads the file at path.
func (n *Normaliser) Extract(ctx context.Context, path string) ([]domain.Page, error) {
	if path == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", domain.ErrUnsupportedType, path)
	}

	return domain.SplitPages(string(data)), nil
}
