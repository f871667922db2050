// Package html extracts readable text from HTML files.
package html
