// Package chunker splits page text into overlapping fixed-size word windows.
package chunker

import (
	"regexp"
	"strings"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
)

var (
	horizontalSpace = regexp.MustCompile(`[^\S\n]+`)
	blankLines      = regexp.MustCompile(`\n{3,}`)
)

// CleanText normalises raw extracted text: null bytes are removed, runs of
// non-newline whitespace become one space, three or more newlines become two.
func CleanText(raw string) string {
	text := strings.ReplaceAll(raw, "\x00", "")
	text = horizontalSpace.ReplaceAllString(text, " ")
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Processor splits pages into word windows.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the window size in words.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the number of words shared by consecutive windows.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a chunker. It returns domain.ErrInvalidChunkConfig when the
// stride would not advance.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: domain.DefaultChunkSize,
		overlap:   domain.DefaultChunkOverlap,
	}
	for _, opt := range opts {
		opt(p)
	}

	if err := p.Settings().Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// FromSettings creates a chunker from configuration.
func FromSettings(s domain.ChunkingSettings) (*Processor, error) {
	return New(WithChunkSize(s.Size), WithOverlap(s.Overlap))
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Settings returns the window configuration.
func (p *Processor) Settings() domain.ChunkingSettings {
	return domain.ChunkingSettings{Size: p.chunkSize, Overlap: p.overlap}
}

// ChunkPages splits the words of all pages into windows tagged with source.
// ChunkID is left zero; the index build assigns it.
//
// Each window after the first starts chunkSize-overlap words later. The last
// window ends at the final word and may be shorter than chunkSize. A window's
// page is the page contributing the most words to it; on a tie the page that
// reached the maximum first wins.
func (p *Processor) ChunkPages(pages []domain.Page, source string) []domain.Chunk {
	var words []string
	var wordPages []int
	for _, page := range pages {
		text := CleanText(page.Text)
		if text == "" {
			continue
		}
		pageWords := strings.Fields(text)
		words = append(words, pageWords...)
		for range pageWords {
			wordPages = append(wordPages, page.Number)
		}
	}
	if len(words) == 0 {
		return nil
	}

	stride := p.chunkSize - p.overlap
	chunks := make([]domain.Chunk, 0, windowCount(len(words), p.chunkSize, stride))

	for start := 0; ; start += stride {
		end := start + p.chunkSize
		if end > len(words) {
			end = len(words)
		}

		chunks = append(chunks, domain.Chunk{
			Text:   strings.Join(words[start:end], " "),
			Source: source,
			Page:   plurality(wordPages[start:end]),
		})

		// A further window would lie wholly inside this one and add no words.
		if end == len(words) {
			break
		}
	}

	return chunks
}

// plurality returns the most frequent page, preferring the one that reached
// the winning count first.
func plurality(pages []int) int {
	counts := make(map[int]int)
	best, bestCount := 0, 0
	for _, page := range pages {
		counts[page]++
		if counts[page] > bestCount {
			best, bestCount = page, counts[page]
		}
	}
	return best
}

// windowCount is ceil((n-overlap)/stride) for n > size, else 1.
func windowCount(n, size, stride int) int {
	if n <= size {
		return 1
	}
	return (n-size+stride-1)/stride + 1
}
