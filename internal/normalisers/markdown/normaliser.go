// Package markdown extracts readable text from Markdown files.
package markdown

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
	"github.com/clearpath-labs/clearpath/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.PageExtractor = (*Normaliser)(nil)

// Normaliser handles Markdown documents as a single page.
type Normaliser struct{}

// New creates a new Markdown extractor.
func New() *Normaliser {
	return &Normaliser{}
}

// Name returns the extractor name.
func (n *Normaliser) Name() string {
	return "markdown"
}

// SupportedExtensions returns the extensions this extractor handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".md", ".markdown"}
}

// Extract reads the file at path and strips Markdown syntax.
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

	return domain.SplitPages(stripMarkdown(string(data))), nil
}

var (
	fencedCode   = regexp.MustCompile("(?s)```[^\n]*\n(.*?)```")
	inlineCode   = regexp.MustCompile("`([^`]+)`")
	images       = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	links        = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings     = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	emphasis     = regexp.MustCompile(`(\*\*|__|\*|_)([^*_\n]+)(\*\*|__|\*|_)`)
	blockquote   = regexp.MustCompile(`(?m)^>\s?`)
	horizontal   = regexp.MustCompile(`(?m)^\s*([-*_]\s*){3,}$`)
	listMarker   = regexp.MustCompile(`(?m)^\s*([-*+]|\d+\.)\s+`)
	tableDivider = regexp.MustCompile(`(?m)^\s*\|?(\s*:?-+:?\s*\|)+\s*:?-*:?\s*$`)
)

// stripMarkdown keeps the words of a Markdown document and drops its markup.
// Code is kept because product docs often carry commands worth searching.
func stripMarkdown(content string) string {
	content = fencedCode.ReplaceAllString(content, "$1")
	content = inlineCode.ReplaceAllString(content, "$1")
	content = images.ReplaceAllString(content, "$1")
	content = links.ReplaceAllString(content, "$1")
	content = headings.ReplaceAllString(content, "")
	content = emphasis.ReplaceAllString(content, "$2")
	content = blockquote.ReplaceAllString(content, "")
	content = tableDivider.ReplaceAllString(content, "")
	content = horizontal.ReplaceAllString(content, "")
	content = listMarker.ReplaceAllString(content, "")
	content = strings.ReplaceAll(content, "|", " ")
	return strings.TrimSpace(content)
}
