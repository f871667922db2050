package html

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	nethtml "golang.org/x/net/html"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
	"github.com/clearpath-labs/clearpath/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.PageExtractor = (*Normaliser)(nil)

// Normaliser handles HTML documents as a single page.
type Normaliser struct{}

// New creates a new HTML extractor.
func New() *Normaliser {
	return &Normaliser{}
}

// Name returns the extractor name.
func (n *Normaliser) Name() string {
	return "html"
}

// SupportedExtensions returns the extensions this extractor handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".html", ".htm", ".xhtml"}
}

// Extract reads the file at path and returns its visible text.
func (n *Normaliser) Extract(ctx context.Context, path string) ([]domain.Page, error) {
	if path == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return domain.SplitPages(visibleText(doc)), nil
}

// invisible lists elements whose text is never rendered.
const invisible = "head, script, style, noscript, svg, template"

var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "hr": true, "li": true, "tr": true,
	"td": true, "th": true, "blockquote": true, "pre": true, "table": true,
	"section": true, "article": true, "header": true, "footer": true,
	"ul": true, "ol": true, "main": true, "nav": true, "aside": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// stripHTML parses content and returns its visible text.
func stripHTML(content string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return ""
	}
	return visibleText(doc)
}

// visibleText returns one line per block of rendered text.
func visibleText(doc *goquery.Document) string {
	doc.Find(invisible).Remove()

	var b strings.Builder
	var walk func(n *nethtml.Node)
	walk = func(n *nethtml.Node) {
		switch n.Type {
		case nethtml.TextNode:
			b.WriteString(n.Data)
			return
		case nethtml.CommentNode:
			return
		}
		block := n.Type == nethtml.ElementNode && blockTags[n.Data]
		if block {
			b.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			b.WriteByte('\n')
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}

	lines := strings.Split(b.String(), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
