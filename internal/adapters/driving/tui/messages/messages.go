// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/clearpath-labs/clearpath/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewAsk is the question and answer view.
	ViewAsk
	// ViewSearch is the passage retrieval view.
	ViewSearch
	// ViewIndex shows index status and rebuilds it.
	ViewIndex
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewAsk:
		return "ask"
	case ViewSearch:
		return "search"
	case ViewIndex:
		return "index"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// RetrieveCompleted carries ranked passages back to the model.
type RetrieveCompleted struct {
	Query   string
	Route   domain.Route
	Results []domain.RetrievalResult
	Err     error
}

// AnswerCompleted carries a generated answer back to the model.
type AnswerCompleted struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// StatusLoaded carries the index status.
type StatusLoaded struct {
	Status *domain.IndexStatus
	Loaded bool
	Err    error
}

// BuildCompleted signals an index build finished.
type BuildCompleted struct {
	Report *domain.BuildReport
	Err    error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
