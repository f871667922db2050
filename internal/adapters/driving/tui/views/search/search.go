// Package search provides the passage retrieval view for the TUI.
package search

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/clearpath-labs/clearpath/internal/adapters/driving/tui/components/input"
	"github.com/clearpath-labs/clearpath/internal/adapters/driving/tui/components/list"
	"github.com/clearpath-labs/clearpath/internal/adapters/driving/tui/components/status"
	"github.com/clearpath-labs/clearpath/internal/adapters/driving/tui/keymap"
	"github.com/clearpath-labs/clearpath/internal/adapters/driving/tui/messages"
	"github.com/clearpath-labs/clearpath/internal/adapters/driving/tui/styles"
	"github.com/clearpath-labs/clearpath/internal/core/domain"
	"github.com/clearpath-labs/clearpath/internal/core/ports/driving"
)

// Action labels shown in the passage menu.
const (
	actionCopy   = "Copy passage"
	actionOpen   = "Open document"
	actionCancel = "Cancel"
)

// ActionMenu represents a simple action selection overlay.
type ActionMenu struct {
	actions  []string
	selected int
	visible  bool
	result   *domain.RetrievalResult
}

// View represents the search view with input, results list, and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QueryInput
	list      *list.ResultList
	statusbar *status.Bar

	retrieval     driving.RetrievalService
	router        driving.RouterService
	actionService driving.ResultActionService
	ctx           context.Context
	topK          int

	width      int
	height     int
	ready      bool
	err        error
	route      *domain.Route
	focusInput bool // true = input mode (typing), false = results mode (navigating)
	actionMenu *ActionMenu
}

// NewView creates a new search view. router and actionService may be nil.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	retrieval driving.RetrievalService,
	router driving.RouterService,
	actionService driving.ResultActionService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:        s,
		keymap:        km,
		input:         input.NewQueryInput(s, "Search", "Find passages..."),
		list:          list.NewResultList(s),
		statusbar:     status.NewBar(s, km),
		retrieval:     retrieval,
		router:        router,
		actionService: actionService,
		ctx:           context.Background(),
		topK:          domain.DefaultTopK,
		width:         80,
		height:        24,
		focusInput:    true,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetTopK sets how many passages a search returns.
func (v *View) SetTopK(k int) {
	if k > 0 {
		v.topK = k
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.RetrieveCompleted:
		v.handleRetrieveCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	if v.focusInput {
		v.input, cmd = v.input.Update(msg)
	}
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.actionMenu != nil && v.actionMenu.visible {
		return v.handleActionMenuKey(msg)
	}

	// Esc always signals to go back to menu
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			query := strings.TrimSpace(v.input.Value())
			if query == "" {
				return v, nil
			}
			v.statusbar.SetState(status.StateSearching)
			v.focusInput = false
			v.input.Blur()
			return v, v.performRetrieve(query)
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	// Results mode
	if msg.Type == tea.KeyEnter {
		if result := v.list.SelectedResult(); result != nil {
			v.actionMenu = &ActionMenu{
				actions: []string{actionCopy, actionOpen, actionCancel},
				visible: true,
				result:  result,
			}
		}
		return v, nil
	}

	switch {
	case keymap.Matches(msg.String(), v.keymap.NewQuery):
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	default:
		v.list, _ = v.list.Update(msg)
	}
	return v, nil
}

// handleActionMenuKey processes keyboard input when action menu is visible.
func (v *View) handleActionMenuKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.actionMenu.selected > 0 {
			v.actionMenu.selected--
		}
	case "down", "j":
		if v.actionMenu.selected < len(v.actionMenu.actions)-1 {
			v.actionMenu.selected++
		}
	case "enter":
		action := v.actionMenu.actions[v.actionMenu.selected]
		result := v.actionMenu.result
		v.actionMenu = nil
		v.executeAction(action, result)
	case "esc":
		v.actionMenu = nil
	}
	return v, nil
}

// executeAction performs the selected action on a passage.
func (v *View) executeAction(action string, result *domain.RetrievalResult) {
	if result == nil || action == actionCancel {
		return
	}
	if v.actionService == nil {
		v.statusbar.SetMessage("Actions not available")
		return
	}

	switch action {
	case actionCopy:
		if err := v.actionService.CopyToClipboard(v.ctx, result); err != nil {
			v.statusbar.SetMessage("Copy: " + err.Error())
			return
		}
		v.statusbar.SetMessage("Copied to clipboard")
	case actionOpen:
		if err := v.actionService.OpenDocument(v.ctx, result); err != nil {
			v.statusbar.SetMessage("Open: " + err.Error())
			return
		}
		v.statusbar.SetMessage("Opening " + result.Source)
	}
}

// performRetrieve ranks passages for query off the UI goroutine.
func (v *View) performRetrieve(query string) tea.Cmd {
	ctx := v.ctx
	topK := v.topK
	retrieval := v.retrieval
	router := v.router
	return func() tea.Msg {
		if retrieval == nil {
			return messages.ErrorOccurred{Err: ErrNoRetrievalService}
		}
		msg := messages.RetrieveCompleted{Query: query}
		if router != nil {
			msg.Route = router.Route(query)
		}
		if err := retrieval.EnsureLoaded(ctx); err != nil {
			msg.Err = err
			return msg
		}
		msg.Results, msg.Err = retrieval.Retrieve(ctx, query, topK)
		return msg
	}
}

// handleRetrieveCompleted processes retrieval results.
func (v *View) handleRetrieveCompleted(msg messages.RetrieveCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	v.err = nil
	if msg.Route.Classification != "" {
		route := msg.Route
		v.route = &route
	} else {
		v.route = nil
	}
	v.list.SetResults(msg.Results)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetMessage("")
	v.statusbar.SetResultCount(len(msg.Results))
	v.focusInput = false
	v.input.Blur()
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)
	sections = append(sections, v.styles.Title.Render("ClearPath · Search"), "", v.input.View(), "")

	if v.route != nil {
		sections = append(sections,
			v.styles.Classification(v.route.Classification)+" "+v.styles.Muted.Render("would route to "+v.route.Model),
			"")
	}

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	sections = append(sections, v.list.View())

	if v.actionMenu != nil && v.actionMenu.visible {
		sections = append(sections, "", v.renderActionMenu())
	}

	sections = append(sections, "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderActionMenu renders the action menu overlay.
func (v *View) renderActionMenu() string {
	if v.actionMenu == nil {
		return ""
	}

	lines := make([]string, 0, len(v.actionMenu.actions))
	for i, action := range v.actionMenu.actions {
		if i == v.actionMenu.selected {
			lines = append(lines, v.styles.Selected.Render("> "+action))
		} else {
			lines = append(lines, v.styles.Normal.Render("  "+action))
		}
	}

	return v.styles.Border.Padding(0, 1).Render(strings.Join(lines, "\n"))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-12) // header, input, route line, status
	v.statusbar.SetWidth(width)
}

// Width returns the current width.
func (v *View) Width() int {
	return v.width
}

// Height returns the current height.
func (v *View) Height() int {
	return v.height
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the current search query.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the search query.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Results returns the current passages.
func (v *View) Results() []domain.RetrievalResult {
	return v.list.Results()
}

// Route returns the routing decision for the last query, if known.
func (v *View) Route() *domain.Route {
	return v.route
}

// SelectedIndex returns the index of the selected result.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// SelectedResult returns the currently selected result.
func (v *View) SelectedResult() *domain.RetrievalResult {
	return v.list.SelectedResult()
}

// ActionMenuVisible reports whether the passage action menu is open.
func (v *View) ActionMenuVisible() bool {
	return v.actionMenu != nil && v.actionMenu.visible
}

// StatusMessage returns the status bar message.
func (v *View) StatusMessage() string {
	return v.statusbar.Message()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// ClearError clears the current error.
func (v *View) ClearError() {
	v.err = nil
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetMessage("")
}

// Reset resets the view to initial input mode.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.SetValue("")
	v.list.SetResults(nil)
	v.route = nil
	v.actionMenu = nil
	v.err = nil
	v.statusbar.Clear()
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}
