package domain

import (
	"fmt"
	"time"
)

// IndexFormatVersion is the on-disk manifest version written by this build.
const IndexFormatVersion = 1

// RankingIndex scores a query's terms against every chunk of a build.
// Implementations are immutable after construction.
type RankingIndex interface {
	// Scores returns one raw score per chunk, in chunk order.
	Scores(terms []string) []float64

	// Len returns the number of indexed chunks.
	Len() int
}

// RankingParams holds the BM25 smoothing constants of an index.
type RankingParams struct {
	K1      float64 `json:"k1"`
	B       float64 `json:"b"`
	Epsilon float64 `json:"epsilon"`
}

// Manifest describes one persisted build. Its presence marks a complete
// artifact set; it is written last and read first.
type Manifest struct {
	Version       int               `json:"version"`
	CreatedAt     time.Time         `json:"created_at"`
	ChunkCount    int               `json:"chunk_count"`
	DocumentCount int               `json:"document_count"`
	Fingerprint   string            `json:"fingerprint"`
	Tokenizer     TokenizerSettings `json:"tokenizer"`
	Ranking       RankingParams     `json:"ranking"`
	Files         ManifestFiles     `json:"files"`
}

// ManifestFiles names the artifacts referenced by a manifest.
type ManifestFiles struct {
	Chunks string `json:"chunks"`
	Index  string `json:"index"`
	Corpus string `json:"corpus"`
}

// ManifestFileName is the file that names the current artifact generation.
const ManifestFileName = "manifest.json"

// GenerationFiles returns the artifact names of one index generation. Each
// save writes a fresh generation so the manifest never points at a mix.
func GenerationFiles(generation string) ManifestFiles {
	return ManifestFiles{
		Chunks: "chunks-" + generation + ".json",
		Index:  "bm25-" + generation + ".idx",
		Corpus: "corpus-" + generation + ".bin",
	}
}

// Names lists the artifact file names.
func (f ManifestFiles) Names() []string {
	return []string{f.Chunks, f.Index, f.Corpus}
}

// IndexSnapshot is everything one build produces. Chunks and Corpus are
// position-aligned and Index covers exactly len(Chunks) entries.
type IndexSnapshot struct {
	Manifest Manifest
	Chunks   []Chunk
	Corpus   [][]string
	Index    RankingIndex
}

// Validate checks the alignment invariants between the snapshot's parts.
func (s *IndexSnapshot) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil snapshot", ErrMalformedPersistedState)
	}
	if s.Index == nil {
		return fmt.Errorf("%w: missing ranking index", ErrMalformedPersistedState)
	}
	if len(s.Chunks) != len(s.Corpus) {
		return fmt.Errorf("%w: %d chunks but %d tokenized entries",
			ErrMalformedPersistedState, len(s.Chunks), len(s.Corpus))
	}
	if s.Index.Len() != len(s.Chunks) {
		return fmt.Errorf("%w: index covers %d chunks, expected %d",
			ErrMalformedPersistedState, s.Index.Len(), len(s.Chunks))
	}
	for i := range s.Chunks {
		if s.Chunks[i].ChunkID != i {
			return fmt.Errorf("%w: chunk at position %d has id %d",
				ErrMalformedPersistedState, i, s.Chunks[i].ChunkID)
		}
	}
	return nil
}

// BuildReport summarises an index build.
type BuildReport struct {
	// Skipped is true when an up-to-date index already existed.
	Skipped bool

	// Documents is the number of documents enumerated.
	Documents int

	// FailedDocuments lists documents skipped because extraction failed.
	FailedDocuments []string

	// Chunks is the number of chunks indexed.
	Chunks int

	// EmptyChunks is the number of chunks with no indexable terms.
	EmptyChunks int

	// AverageTokens is the mean token count per chunk.
	AverageTokens float64

	// Fingerprint identifies the document set that was indexed.
	Fingerprint string

	// Duration is the wall time of the build.
	Duration time.Duration
}

// IndexStatus reports the persisted index state against the current corpus.
type IndexStatus struct {
	// Exists is true when a complete artifact set is on disk.
	Exists bool

	// Manifest is the persisted manifest, nil when absent.
	Manifest *Manifest

	// CurrentFingerprint is the fingerprint of the documents on disk now.
	CurrentFingerprint string

	// Stale is true when the documents changed since the last build.
	Stale bool
}
