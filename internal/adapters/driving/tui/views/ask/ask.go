// Package ask provides the conversational question answering view.
package ask

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/clearpath-labs/clearpath/internal/adapters/driving/tui/components/input"
	"github.com/clearpath-labs/clearpath/internal/adapters/driving/tui/components/status"
	"github.com/clearpath-labs/clearpath/internal/adapters/driving/tui/keymap"
	"github.com/clearpath-labs/clearpath/internal/adapters/driving/tui/messages"
	"github.com/clearpath-labs/clearpath/internal/adapters/driving/tui/styles"
	"github.com/clearpath-labs/clearpath/internal/core/domain"
	"github.com/clearpath-labs/clearpath/internal/core/ports/driving"
)

// ErrNoQueryService is reported when no language model is configured.
var ErrNoQueryService = fmt.Errorf("%w: configure llm.api_key_env to ask questions", domain.ErrLLMUnavailable)

// Turn is one question and its outcome.
type Turn struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// View is a chat transcript above a question input.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.QueryInput
	transcript viewport.Model
	spinner    spinner.Model
	statusbar  *status.Bar

	query driving.QueryService
	ctx   context.Context

	turns          []Turn
	conversationID string
	pending        bool

	width  int
	height int
	ready  bool
}

// NewView creates an ask view. query may be nil when no model is configured.
func NewView(s *styles.Styles, km *keymap.KeyMap, query driving.QueryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetHints(km.AskHelp())

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQueryInput(s, "Ask", "Ask about the documents..."),
		transcript: viewport.New(80, 14),
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(s.Subtitle)),
		statusbar:  bar,
		query:      query,
		ctx:        context.Background(),
		width:      80,
		height:     24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerCompleted:
		v.handleAnswer(msg)
		return v, nil

	case spinner.TickMsg:
		if !v.pending {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		v.refresh()
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc:
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}

	case keymap.Matches(msg.String(), v.keymap.NewConversation):
		if !v.pending {
			v.NewConversation()
		}
		return v, nil

	case msg.Type == tea.KeyEnter:
		return v, v.submit()

	case msg.Type == tea.KeyPgUp, msg.Type == tea.KeyPgDown:
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit sends the typed question unless one is already in flight.
func (v *View) submit() tea.Cmd {
	question := strings.TrimSpace(v.input.Value())
	if question == "" || v.pending {
		return nil
	}

	v.input.Reset()
	v.turns = append(v.turns, Turn{Question: question})
	v.pending = true
	v.statusbar.SetState(status.StateAnswering)
	v.refresh()

	return tea.Batch(v.spinner.Tick, v.performAsk(question, v.conversationID))
}

// performAsk runs the pipeline off the UI goroutine.
func (v *View) performAsk(question, conversationID string) tea.Cmd {
	ctx := v.ctx
	query := v.query
	return func() tea.Msg {
		if query == nil {
			return messages.AnswerCompleted{Question: question, Err: ErrNoQueryService}
		}
		answer, err := query.Ask(ctx, domain.Question{Text: question, ConversationID: conversationID})
		return messages.AnswerCompleted{Question: question, Answer: answer, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerCompleted) {
	v.pending = false
	if n := len(v.turns); n > 0 && v.turns[n-1].Answer == nil && v.turns[n-1].Err == nil {
		v.turns[n-1].Answer = msg.Answer
		v.turns[n-1].Err = msg.Err
	} else {
		v.turns = append(v.turns, Turn{Question: msg.Question, Answer: msg.Answer, Err: msg.Err})
	}

	switch {
	case msg.Err != nil:
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
	case msg.Answer != nil:
		v.conversationID = msg.Answer.ConversationID
		m := msg.Answer.Metadata
		v.statusbar.SetState(status.StateReady)
		v.statusbar.SetMessage(fmt.Sprintf("%s · %s · %d ms", m.Classification, m.ModelUsed, m.LatencyMS))
	}
	v.refresh()
}

// NewConversation forgets the transcript and the conversation id.
func (v *View) NewConversation() {
	v.turns = nil
	v.conversationID = ""
	v.statusbar.Clear()
	v.refresh()
}

func (v *View) refresh() {
	v.transcript.SetContent(v.renderTranscript())
	v.transcript.GotoBottom()
}

func (v *View) renderTranscript() string {
	if len(v.turns) == 0 {
		return v.styles.Muted.Render("Ask a question about the indexed documents.")
	}

	wrap := lipgloss.NewStyle().Width(max(v.width-4, 20))
	var b strings.Builder
	for i, turn := range v.turns {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(v.styles.Question.Render("You: ") + wrap.Render(turn.Question) + "\n")

		switch {
		case turn.Err != nil:
			b.WriteString(v.styles.Error.Render(describeError(turn.Err)) + "\n")
		case turn.Answer != nil:
			b.WriteString(v.renderAnswer(turn.Answer, wrap))
		case v.pending && i == len(v.turns)-1:
			b.WriteString(v.spinner.View() + v.styles.Muted.Render(" thinking") + "\n")
		}
	}
	return b.String()
}

func (v *View) renderAnswer(a *domain.Answer, wrap lipgloss.Style) string {
	var b strings.Builder
	b.WriteString(wrap.Render(a.Answer) + "\n")

	m := a.Metadata
	b.WriteString(v.styles.Classification(m.Classification) + " " +
		v.styles.Muted.Render(fmt.Sprintf("%s · %d chunks · %d+%d tokens",
			m.ModelUsed, m.ChunksRetrieved, m.Tokens.Input, m.Tokens.Output)) + "\n")

	for _, flag := range m.EvaluatorFlags {
		b.WriteString(v.styles.Flag.Render("! "+flag) + "\n")
	}
	for i, src := range a.Sources {
		b.WriteString(v.styles.Citation.Render(
			fmt.Sprintf("[%d] %s, page %d (%.2f)", i+1, src.Document, src.Page, src.RelevanceScore)) + "\n")
	}
	return b.String()
}

func describeError(err error) string {
	switch {
	case errors.Is(err, domain.ErrIndexUnavailable):
		return "No index loaded. Build one from the Index view."
	case errors.Is(err, domain.ErrLLMUnavailable):
		return "Language model unavailable: " + err.Error()
	default:
		return "Error: " + err.Error()
	}
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	header := v.styles.Title.Render("ClearPath · Ask")
	if v.conversationID != "" {
		header += "  " + v.styles.Muted.Render(v.conversationID)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		v.transcript.View(),
		"",
		v.input.View(),
		"",
		v.statusbar.View(),
	)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.transcript.Width = width
	v.transcript.Height = max(height-9, 3) // header, input, status
	v.statusbar.SetWidth(width)
	v.refresh()
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Turns returns the transcript.
func (v *View) Turns() []Turn {
	return v.turns
}

// ConversationID returns the id of the ongoing conversation, empty before the first answer.
func (v *View) ConversationID() string {
	return v.conversationID
}

// Pending reports whether a question is awaiting its answer.
func (v *View) Pending() bool {
	return v.pending
}

// Question returns the text typed so far.
func (v *View) Question() string {
	return v.input.Value()
}

// SetQuestion sets the typed text.
func (v *View) SetQuestion(q string) {
	v.input.SetValue(q)
}

// Focus focuses the question input.
func (v *View) Focus() tea.Cmd {
	return v.input.Focus()
}
