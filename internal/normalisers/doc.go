// Package normalisers provides implementations of the PageExtractor
// interface for the document formats a corpus may contain. Each extractor
// knows how to read page text from files with specific extensions.
//
// Extractors are registered with the Registry at startup.
package normalisers
