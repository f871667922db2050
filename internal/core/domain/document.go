package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// SourceDocument is a readable document file in the configured corpus directory.
type SourceDocument struct {
	// Name is the file name, used as the chunk source identifier.
	Name string

	// Path is the absolute or working-directory relative path.
	Path string

	// Size is the file size in bytes.
	Size int64

	// ModTime is the last modification time.
	ModTime time.Time
}

// Page is the cleaned text of a single document page.
type Page struct {
	// Number is the 1-based page number.
	Number int

	// Text is the page text as extracted.
	Text string
}

// PageBreak separates pages in extracted text.
const PageBreak = "\f"

// SplitPages numbers the form-feed separated pages of text from 1.
// Blank pages keep their number but are omitted.
func SplitPages(text string) []Page {
	parts := strings.Split(text, PageBreak)
	pages := make([]Page, 0, len(parts))
	for i, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		pages = append(pages, Page{Number: i + 1, Text: part})
	}
	return pages
}

// Chunk is the unit of retrieval: a window of consecutive document words.
type Chunk struct {
	// Text is the window's words joined by single spaces.
	Text string `json:"text"`

	// Source is the originating document file name.
	Source string `json:"source"`

	// Page is the page contributing the most words to the window.
	Page int `json:"page"`

	// ChunkID is the dense, zero-based position in the build's chunk list.
	ChunkID int `json:"chunk_id"`
}

// Fingerprint identifies a document set by name, size and modification
// time. Documents must be in corpus order.
func Fingerprint(docs []SourceDocument) string {
	h := sha256.New()
	for _, d := range docs {
		h.Write([]byte(d.Name))
		h.Write([]byte{0})
		h.Write([]byte(strconv.FormatInt(d.Size, 10)))
		h.Write([]byte{0})
		h.Write([]byte(strconv.FormatInt(d.ModTime.UnixNano(), 10)))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ChangeType describes a corpus file event.
type ChangeType string

// Corpus change types.
const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// CorpusChange is a file event in the corpus directory.
type CorpusChange struct {
	Type ChangeType
	Path string
}
