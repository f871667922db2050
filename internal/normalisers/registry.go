package normalisers

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/clearpath-labs/clearpath/internal/core/ports/driven"
	"github.com/clearpath-labs/clearpath/internal/normalisers/docx"
	"github.com/clearpath-labs/clearpath/internal/normalisers/html"
	"github.com/clearpath-labs/clearpath/internal/normalisers/markdown"
	"github.com/clearpath-labs/clearpath/internal/normalisers/pdf"
	"github.com/clearpath-labs/clearpath/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.PageExtractorRegistry = (*Registry)(nil)

// Registry maps file extensions to extractors.
type Registry struct {
	mu    sync.RWMutex
	byExt map[string]driven.PageExtractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string]driven.PageExtractor)}
}

// DefaultRegistry returns a registry with every built-in extractor.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(pdf.New())
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(html.New())
	r.Register(docx.New())
	return r
}

// Register adds an extractor for each of its extensions.
func (r *Registry) Register(e driven.PageExtractor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range e.SupportedExtensions() {
		r.byExt[strings.ToLower(ext)] = e
	}
}

// For returns the extractor for path by its extension, case-insensitively.
func (r *Registry) For(path string) (driven.PageExtractor, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byExt[ext]
	return e, ok
}

// Extensions returns every registered extension, sorted.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
