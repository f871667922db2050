package services

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
	"github.com/clearpath-labs/clearpath/internal/core/ports/driving"
)

// Operating system identifiers.
const (
	osDarwin  = "darwin"
	osLinux   = "linux"
	osWindows = "windows"
)

// Ensure ResultActionService implements the interface.
var _ driving.ResultActionService = (*ResultActionService)(nil)

// ResultActionService provides actions on retrieved passages.
type ResultActionService struct {
	docsDir string
	goos    string
	run     func(cmd *exec.Cmd) error
	start   func(cmd *exec.Cmd) error
}

// NewResultActionService creates a service resolving sources under docsDir.
func NewResultActionService(docsDir string) *ResultActionService {
	return &ResultActionService{
		docsDir: docsDir,
		goos:    runtime.GOOS,
		run:     (*exec.Cmd).Run,
		start:   (*exec.Cmd).Start,
	}
}

// CopyToClipboard copies the passage text to the system clipboard.
func (s *ResultActionService) CopyToClipboard(_ context.Context, result *domain.RetrievalResult) error {
	if result == nil {
		return fmt.Errorf("%w: result is nil", domain.ErrInvalidInput)
	}

	cmd, err := s.clipboardCommand()
	if err != nil {
		return err
	}
	cmd.Stdin = strings.NewReader(result.Text)
	return s.run(cmd)
}

// OpenDocument opens the passage's source document in the default application.
func (s *ResultActionService) OpenDocument(_ context.Context, result *domain.RetrievalResult) error {
	if result == nil {
		return fmt.Errorf("%w: result is nil", domain.ErrInvalidInput)
	}

	path, err := s.documentPath(result.Source)
	if err != nil {
		return err
	}
	cmd, err := s.openCommand(path)
	if err != nil {
		return err
	}
	return s.start(cmd)
}

// documentPath resolves a source name inside the documents directory.
func (s *ResultActionService) documentPath(source string) (string, error) {
	if source == "" {
		return "", fmt.Errorf("%w: passage has no source", domain.ErrInvalidInput)
	}
	root, err := filepath.Abs(s.docsDir)
	if err != nil {
		return "", fmt.Errorf("resolving documents directory: %w", err)
	}
	path := filepath.Join(root, filepath.FromSlash(source))
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: source %q is outside the documents directory", domain.ErrInvalidInput, source)
	}
	return path, nil
}

func (s *ResultActionService) clipboardCommand() (*exec.Cmd, error) {
	switch s.goos {
	case osDarwin:
		return exec.Command("pbcopy"), nil
	case osLinux:
		// Try xclip first, fall back to xsel
		if _, err := exec.LookPath("xclip"); err == nil {
			return exec.Command("xclip", "-selection", "clipboard"), nil
		}
		if _, err := exec.LookPath("xsel"); err == nil {
			return exec.Command("xsel", "--clipboard", "--input"), nil
		}
		return nil, fmt.Errorf("no clipboard utility found (install xclip or xsel)")
	case osWindows:
		return exec.Command("cmd", "/c", "clip"), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", s.goos)
	}
}

func (s *ResultActionService) openCommand(path string) (*exec.Cmd, error) {
	switch s.goos {
	case osDarwin:
		return exec.Command("open", path), nil
	case osLinux:
		return exec.Command("xdg-open", path), nil
	case osWindows:
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", path), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", s.goos)
	}
}
