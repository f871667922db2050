package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a document format with no extractor.
	ErrUnsupportedType = errors.New("unsupported type")

	// Index Errors.

	// ErrIndexUnavailable indicates retrieval was attempted before any
	// successful build or load. A build must run first.
	ErrIndexUnavailable = errors.New("index unavailable: run `clearpath index` first")

	// ErrEmptyCorpus indicates a build produced zero chunks.
	// Nothing is written and any previous index is left untouched.
	ErrEmptyCorpus = errors.New("empty corpus: no chunks produced")

	// ErrInvalidChunkConfig indicates the chunk overlap is not smaller than the window size.
	ErrInvalidChunkConfig = errors.New("invalid chunk config: overlap must be smaller than window size")

	// ErrMalformedPersistedState indicates on-disk index artifacts exist but
	// cannot be decoded or disagree with each other.
	ErrMalformedPersistedState = errors.New("malformed persisted index state")

	// ErrBuildInProgress indicates another index build is already running.
	ErrBuildInProgress = errors.New("index build in progress")

	// Generation Errors.

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Retrieval and routing still work without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
)
