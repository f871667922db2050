// Package docx extracts page text from Word documents.
package docx

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
	"github.com/clearpath-labs/clearpath/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.PageExtractor = (*Normaliser)(nil)

// Normaliser handles DOCX documents. Pages follow the breaks Word recorded
// when the file was last saved, plus explicit page breaks.
type Normaliser struct{}

// New creates a new DOCX extractor.
func New() *Normaliser {
	return &Normaliser{}
}

// Name returns the extractor name.
func (n *Normaliser) Name() string {
	return "docx"
}

// SupportedExtensions returns the extensions this extractor handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".docx"}
}

// Extract opens the archive at path and reads word/document.xml.
func (n *Normaliser) Extract(ctx context.Context, path string) ([]domain.Page, error) {
	if path == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrUnsupportedType, path, err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open document.xml: %w", err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read document.xml: %w", err)
		}
		text, err := parseDocumentXML(content)
		if err != nil {
			return nil, err
		}
		return domain.SplitPages(text), nil
	}

	return nil, nil
}

type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	RenderedBreaks []struct{} `xml:"lastRenderedPageBreak"`
	Text           []string   `xml:"t"`
	Breaks         []struct {
		Type string `xml:"type,attr"`
	} `xml:"br"`
}

// parseDocumentXML returns paragraph text with form feeds between pages.
func parseDocumentXML(content []byte) (string, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", fmt.Errorf("%w: parse document.xml: %v", domain.ErrUnsupportedType, err)
	}

	var b strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			b.WriteString("\n")
		}
		for _, r := range para.Runs {
			if len(r.RenderedBreaks) > 0 {
				b.WriteString(domain.PageBreak)
			}
			for _, t := range r.Text {
				b.WriteString(t)
			}
			for _, br := range r.Breaks {
				if br.Type == "page" {
					b.WriteString(domain.PageBreak)
				}
			}
		}
	}

	return b.String(), nil
}
