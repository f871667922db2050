// Package domain defines the core business entities for ClearPath.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: A retrievable window of document words
//   - Page: Cleaned text of one page of a source document
//   - IndexSnapshot: Chunks, tokenized corpus and ranking index of one build
//   - Route: The complexity classification and model tier for a query
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
