// Package tokenizer normalises text into index terms.
//
// The same Tokenizer value must be used to build an index and to query it:
// any difference in stop words or stemming silently degrades ranking.
package tokenizer

import (
	"regexp"
	"strings"

	"github.com/kljensen/snowball"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
)

// MinTermLength is the shortest term kept.
const MinTermLength = 2

var termPattern = regexp.MustCompile(`[a-z0-9]+`)

// stopWords is the fixed stop-word set shared by indexing and querying.
var stopWords = func() map[string]struct{} {
	words := strings.Fields(
		"a an the is are was were be been being have has had do does did will would " +
			"shall should may might can could of in to for on with at by from as into " +
			"through during before after above below between out off over under again " +
			"further then once here there when where why how all each every both few " +
			"more most other some such no nor not only own same so than too very and " +
			"but or if while about up it its he she they them their this that these those " +
			"i me my we our you your am")
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}()

// Tokenizer converts text into a sequence of terms.
type Tokenizer struct {
	stemming bool
}

// New creates a tokenizer for the given settings.
func New(settings domain.TokenizerSettings) *Tokenizer {
	return &Tokenizer{stemming: settings.Stemming}
}

// Settings returns the settings the tokenizer was built with.
func (t *Tokenizer) Settings() domain.TokenizerSettings {
	return domain.TokenizerSettings{Stemming: t.stemming}
}

// Tokenize lowercases text, extracts alphanumeric runs and drops stop words
// and single-character terms. Order and duplicates are preserved.
func (t *Tokenizer) Tokenize(text string) []string {
	raw := termPattern.FindAllString(strings.ToLower(text), -1)

	terms := make([]string, 0, len(raw))
	for _, term := range raw {
		if len(term) < MinTermLength {
			continue
		}
		if IsStopWord(term) {
			continue
		}
		if t.stemming {
			term = stem(term)
		}
		terms = append(terms, term)
	}
	return terms
}

// IsStopWord reports whether a lowercased term is in the stop-word set.
func IsStopWord(term string) bool {
	_, ok := stopWords[term]
	return ok
}

func stem(term string) string {
	stemmed, err := snowball.Stem(term, "english", true)
	if err != nil || stemmed == "" {
		return term
	}
	return stemmed
}
