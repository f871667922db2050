package list

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearpath-labs/clearpath/internal/adapters/driving/tui/styles"
	"github.com/clearpath-labs/clearpath/internal/core/domain"
)

func testResults() []domain.RetrievalResult {
	return []domain.RetrievalResult{
		{Chunk: domain.Chunk{Text: "The Pro plan costs $49 per month.", Source: "14_Pricing.pdf", Page: 2, ChunkID: 7}, RelevanceScore: 1},
		{Chunk: domain.Chunk{Text: "Refunds are issued within 30 days.", Source: "09_Refunds.pdf", Page: 1, ChunkID: 3}, RelevanceScore: 0.42},
		{Chunk: domain.Chunk{Text: "Enterprise pricing is negotiated.", Source: "14_Pricing.pdf", Page: 5, ChunkID: 12}, RelevanceScore: 0.1},
	}
}

func TestNewResultList(t *testing.T) {
	l := NewResultList(styles.DefaultStyles())

	require.NotNil(t, l)
	assert.True(t, l.IsEmpty())
	assert.Equal(t, 0, l.Selected())
	assert.Equal(t, 80, l.Width())
	assert.Equal(t, 10, l.Height())
	assert.Nil(t, l.Init())
}

func TestNewResultList_NilStyles(t *testing.T) {
	l := NewResultList(nil)
	require.NotNil(t, l)
	assert.NotEmpty(t, l.View())
}

func TestResultList_SetResultsResetsSelection(t *testing.T) {
	l := NewResultList(nil)
	l.SetResults(testResults())
	l.SetSelected(2)

	l.SetResults(testResults()[:1])

	assert.Equal(t, 0, l.Selected())
	assert.Equal(t, 1, l.Count())
}

func TestResultList_SetSelected(t *testing.T) {
	l := NewResultList(nil)
	l.SetResults(testResults())

	l.SetSelected(1)
	assert.Equal(t, 1, l.Selected())

	l.SetSelected(10)
	assert.Equal(t, 1, l.Selected())

	l.SetSelected(-1)
	assert.Equal(t, 1, l.Selected())
}

func TestResultList_SelectedResult(t *testing.T) {
	l := NewResultList(nil)
	assert.Nil(t, l.SelectedResult())

	l.SetResults(testResults())
	l.SetSelected(1)

	got := l.SelectedResult()
	require.NotNil(t, got)
	assert.Equal(t, "09_Refunds.pdf", got.Source)
}

func TestResultList_Navigation(t *testing.T) {
	l := NewResultList(nil)
	l.SetResults(testResults())

	l.MoveUp()
	assert.Equal(t, 0, l.Selected())

	l.MoveDown()
	l.MoveDown()
	l.MoveDown()
	assert.Equal(t, 2, l.Selected())
}

func TestResultList_UpdateKeys(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want int
	}{
		{"down arrow", tea.KeyMsg{Type: tea.KeyDown}, 2},
		{"j", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}, 2},
		{"up arrow", tea.KeyMsg{Type: tea.KeyUp}, 0},
		{"k", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewResultList(nil)
			l.SetResults(testResults())
			l.SetSelected(1)

			l, _ = l.Update(tt.msg)

			assert.Equal(t, tt.want, l.Selected())
		})
	}
}

func TestResultList_View_Empty(t *testing.T) {
	assert.Contains(t, NewResultList(nil).View(), "No matching passages")
}

func TestResultList_View_ShowsCitationAndScore(t *testing.T) {
	l := NewResultList(nil)
	l.SetDimensions(100, 20)
	l.SetResults(testResults())

	view := l.View()

	assert.Contains(t, view, "Passages (3)")
	assert.Contains(t, view, "14_Pricing.pdf, page 2")
	assert.Contains(t, view, "1.00")
	assert.Contains(t, view, "Pro plan costs $49")
	assert.Contains(t, view, "> ")
}

func TestResultList_View_ScrollsToSelection(t *testing.T) {
	l := NewResultList(nil)
	l.SetDimensions(100, 7)
	l.SetResults(testResults())
	l.SetSelected(2)

	view := l.View()

	assert.Contains(t, view, "page 5")
	assert.NotContains(t, view, "page 2")
}

func TestResultList_View_TruncatesLongText(t *testing.T) {
	l := NewResultList(nil)
	l.SetDimensions(40, 10)
	l.SetResults([]domain.RetrievalResult{{
		Chunk: domain.Chunk{Text: strings.Repeat("word ", 50), Source: "doc.txt", Page: 1},
	}})

	assert.Contains(t, l.View(), "...")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
