// Package bm25 implements an immutable Okapi BM25 ranking index over a
// tokenized corpus, with its own versioned binary encoding.
package bm25

import (
	"math"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
)

// Default smoothing constants.
const (
	DefaultK1      = 1.5
	DefaultB       = 0.75
	DefaultEpsilon = 0.25
)

// Ensure Index implements the ranking interface.
var _ domain.RankingIndex = (*Index)(nil)

// DefaultParams returns the common BM25 defaults.
func DefaultParams() domain.RankingParams {
	return domain.RankingParams{K1: DefaultK1, B: DefaultB, Epsilon: DefaultEpsilon}
}

// posting records how often a term occurs in one document.
type posting struct {
	doc  uint32
	freq uint32
}

// Index is a BM25 index. It is never mutated after New or Decode returns,
// so it is safe for concurrent scoring.
type Index struct {
	params   domain.RankingParams
	docLens  []uint32
	avgdl    float64
	idf      map[string]float64
	postings map[string][]posting
}

// New builds an index over corpus, one entry per document.
// Empty documents are valid and never match any term.
func New(corpus [][]string, params domain.RankingParams) *Index {
	ix := &Index{
		params:   params,
		docLens:  make([]uint32, len(corpus)),
		idf:      make(map[string]float64),
		postings: make(map[string][]posting),
	}

	total := 0
	for doc, terms := range corpus {
		ix.docLens[doc] = uint32(len(terms))
		total += len(terms)

		freqs := make(map[string]uint32, len(terms))
		order := make([]string, 0, len(terms))
		for _, term := range terms {
			if freqs[term] == 0 {
				order = append(order, term)
			}
			freqs[term]++
		}
		for _, term := range order {
			ix.postings[term] = append(ix.postings[term], posting{doc: uint32(doc), freq: freqs[term]})
		}
	}
	if len(corpus) > 0 {
		ix.avgdl = float64(total) / float64(len(corpus))
	}

	ix.computeIDF()
	return ix
}

// computeIDF uses log((N - n + 0.5) / (n + 0.5)). Terms occurring in more
// than half the corpus would score negatively; they are floored to
// epsilon times the mean IDF instead.
func (ix *Index) computeIDF() {
	if len(ix.postings) == 0 {
		return
	}
	n := float64(len(ix.docLens))

	sum := 0.0
	var negative []string
	for term, list := range ix.postings {
		df := float64(len(list))
		idf := math.Log(n-df+0.5) - math.Log(df+0.5)
		ix.idf[term] = idf
		sum += idf
		if idf < 0 {
			negative = append(negative, term)
		}
	}

	floor := ix.params.Epsilon * (sum / float64(len(ix.idf)))
	for _, term := range negative {
		ix.idf[term] = floor
	}
}

// Scores returns the raw BM25 score of every document for the query terms.
// Repeated query terms contribute once per occurrence.
func (ix *Index) Scores(terms []string) []float64 {
	scores := make([]float64, len(ix.docLens))
	if len(terms) == 0 || len(ix.docLens) == 0 {
		return scores
	}

	avgdl := ix.avgdl
	if avgdl == 0 {
		avgdl = 1
	}
	k1, b := ix.params.K1, ix.params.B

	for _, term := range terms {
		idf, ok := ix.idf[term]
		if !ok {
			continue
		}
		for _, p := range ix.postings[term] {
			tf := float64(p.freq)
			norm := k1 * (1 - b + b*float64(ix.docLens[p.doc])/avgdl)
			scores[p.doc] += idf * (tf * (k1 + 1) / (tf + norm))
		}
	}
	return scores
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int {
	return len(ix.docLens)
}

// Params returns the smoothing constants.
func (ix *Index) Params() domain.RankingParams {
	return ix.params
}

// AverageDocLength returns the mean document length in terms.
func (ix *Index) AverageDocLength() float64 {
	return ix.avgdl
}

// IDF returns the inverse document frequency of a term.
func (ix *Index) IDF(term string) (float64, bool) {
	idf, ok := ix.idf[term]
	return idf, ok
}

// Terms returns the number of distinct indexed terms.
func (ix *Index) Terms() int {
	return len(ix.postings)
}
