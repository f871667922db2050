// Package connectors provides implementations of the DocumentSource
// interface. The filesystem connector reads the corpus from one local
// directory.
package connectors
