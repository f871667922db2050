// Package indexstatus shows the persisted index and rebuilds it on demand.
package indexstatus

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/clearpath-labs/clearpath/internal/adapters/driving/tui/components/status"
	"github.com/clearpath-labs/clearpath/internal/adapters/driving/tui/keymap"
	"github.com/clearpath-labs/clearpath/internal/adapters/driving/tui/messages"
	"github.com/clearpath-labs/clearpath/internal/adapters/driving/tui/styles"
	"github.com/clearpath-labs/clearpath/internal/core/domain"
	"github.com/clearpath-labs/clearpath/internal/core/ports/driving"
)

// View renders index status.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	spinner   spinner.Model
	statusbar *status.Bar

	index     driving.IndexService
	retrieval driving.RetrievalService
	ctx       context.Context

	status   *domain.IndexStatus
	loaded   bool
	report   *domain.BuildReport
	building bool
	err      error

	width  int
	height int
	ready  bool
}

// NewView creates an index view. index may be nil, in which case the view
// reports that indexing is not configured.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	index driving.IndexService,
	retrieval driving.RetrievalService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetHints(km.IndexHelp())

	return &View{
		styles:    s,
		keymap:    km,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(s.Subtitle)),
		statusbar: bar,
		index:     index,
		retrieval: retrieval,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the status.
func (v *View) Init() tea.Cmd {
	return v.loadStatus()
}

// Update handles messages for the index view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.StatusLoaded:
		v.status, v.loaded, v.err = msg.Status, msg.Loaded, msg.Err
		if msg.Err != nil {
			v.statusbar.SetState(status.StateError)
			v.statusbar.SetMessage(msg.Err.Error())
		} else if !v.building {
			v.statusbar.Clear()
		}
		return v, nil

	case messages.BuildCompleted:
		v.building = false
		v.report, v.err = msg.Report, msg.Err
		if msg.Err != nil {
			v.statusbar.SetState(status.StateError)
			v.statusbar.SetMessage(msg.Err.Error())
			return v, v.loadStatus()
		}
		v.statusbar.Clear()
		return v, v.loadStatus()

	case spinner.TickMsg:
		if !v.building {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc:
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case keymap.Matches(msg.String(), v.keymap.Rebuild):
		return v, v.rebuild()
	case keymap.Matches(msg.String(), v.keymap.Refresh):
		return v, v.loadStatus()
	}
	return v, nil
}

// rebuild forces a build unless one is already running.
func (v *View) rebuild() tea.Cmd {
	if v.index == nil || v.building {
		return nil
	}
	v.building = true
	v.err = nil
	v.statusbar.SetState(status.StateBuilding)

	ctx := v.ctx
	index := v.index
	return tea.Batch(v.spinner.Tick, func() tea.Msg {
		report, err := index.BuildIndex(ctx, true)
		return messages.BuildCompleted{Report: report, Err: err}
	})
}

func (v *View) loadStatus() tea.Cmd {
	ctx := v.ctx
	index := v.index
	retrieval := v.retrieval
	return func() tea.Msg {
		if index == nil {
			return messages.StatusLoaded{}
		}
		st, err := index.Status(ctx)
		loaded := retrieval != nil && retrieval.Ready()
		return messages.StatusLoaded{Status: st, Loaded: loaded, Err: err}
	}
}

// View renders the index view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{v.styles.Title.Render("ClearPath · Index"), ""}

	switch {
	case v.index == nil:
		sections = append(sections, v.styles.Muted.Render("Indexing is not configured."))
	case v.status == nil && v.err == nil:
		sections = append(sections, v.styles.Muted.Render("Loading..."))
	default:
		sections = append(sections, v.renderStatus())
	}

	if v.building {
		sections = append(sections, "", v.spinner.View()+v.styles.Muted.Render(" rebuilding"))
	}
	if v.report != nil && !v.building {
		sections = append(sections, "", v.renderReport())
	}
	if v.err != nil {
		sections = append(sections, "", v.styles.Error.Render("Error: "+v.err.Error()))
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderStatus() string {
	if v.status == nil {
		return ""
	}
	label := func(s string) string { return v.styles.Muted.Render(fmt.Sprintf("%-14s", s)) }

	lines := make([]string, 0, 8)
	if !v.status.Exists {
		lines = append(lines, v.styles.Warning.Render("No index on disk. Press r to build one."))
	} else {
		m := v.status.Manifest
		lines = append(lines,
			label("Built")+v.styles.Normal.Render(m.CreatedAt.Local().Format(time.DateTime)),
			label("Documents")+v.styles.Normal.Render(fmt.Sprint(m.DocumentCount)),
			label("Chunks")+v.styles.Normal.Render(fmt.Sprint(m.ChunkCount)),
			label("Fingerprint")+v.styles.Muted.Render(shortFingerprint(m.Fingerprint)),
		)
		if v.status.Stale {
			lines = append(lines, v.styles.Warning.Render("Documents changed since the last build."))
		} else {
			lines = append(lines, v.styles.Success.Render("Up to date with the documents."))
		}
	}

	if v.loaded {
		lines = append(lines, v.styles.Success.Render("Serving queries."))
	} else {
		lines = append(lines, v.styles.Muted.Render("Not loaded for queries."))
	}
	return strings.Join(lines, "\n")
}

func (v *View) renderReport() string {
	r := v.report
	if r.Skipped {
		return v.styles.Muted.Render("Index already current.")
	}
	line := v.styles.Success.Render(fmt.Sprintf("Built %d chunks from %d documents in %s.",
		r.Chunks, r.Documents, r.Duration.Round(time.Millisecond)))
	if len(r.FailedDocuments) > 0 {
		line += "\n" + v.styles.Warning.Render("Skipped: "+strings.Join(r.FailedDocuments, ", "))
	}
	return line
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Status returns the last loaded status.
func (v *View) Status() *domain.IndexStatus {
	return v.status
}

// Report returns the last build report.
func (v *View) Report() *domain.BuildReport {
	return v.report
}

// Building reports whether a rebuild is running.
func (v *View) Building() bool {
	return v.building
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
