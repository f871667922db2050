// Package pdf extracts page text from PDF files using poppler's pdftotext.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
	"github.com/clearpath-labs/clearpath/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.PageExtractor = (*Normaliser)(nil)

// toolName is the external binary used for extraction.
const toolName = "pdftotext"

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// CommandRunner runs an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Normaliser extracts PDF pages. pdftotext separates pages with form feeds.
type Normaliser struct {
	runner   CommandRunner
	lookPath bool
}

// New creates a PDF extractor that shells out to pdftotext.
func New() *Normaliser {
	return &Normaliser{runner: execRunner{}, lookPath: true}
}

// NewWithRunner creates a PDF extractor with a custom command runner.
func NewWithRunner(runner CommandRunner) *Normaliser {
	return &Normaliser{runner: runner}
}

// Name returns the extractor name.
func (n *Normaliser) Name() string {
	return "pdf"
}

// SupportedExtensions returns the extensions this extractor handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".pdf"}
}

// Extract returns the non-blank pages of the PDF at path.
func (n *Normaliser) Extract(ctx context.Context, path string) ([]domain.Page, error) {
	if path == "" {
		return nil, domain.ErrInvalidInput
	}
	if n.lookPath {
		if err := CheckAvailable(); err != nil {
			return nil, err
		}
	}

	out, err := n.runner.Run(ctx, toolName, "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return nil, fmt.Errorf("pdftotext failed: %w", err)
	}

	return domain.SplitPages(string(out)), nil
}

// CheckAvailable returns ErrPDFToolNotFound if pdftotext is not installed.
func CheckAvailable() error {
	if _, err := exec.LookPath(toolName); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions explains how to install pdftotext.
func InstallInstructions() string {
	return `PDF extraction requires pdftotext from poppler:
  macOS:         brew install poppler
  Debian/Ubuntu: apt install poppler-utils
  Fedora:        dnf install poppler-utils`
}
