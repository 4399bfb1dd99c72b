// Package normalisers provides implementations of the Extractor interface
// for various document formats. Each normaliser knows how to turn one format
// into ordered text runs; the document processor assigns coordinates.
//
// Normalisers are registered with the Registry at startup.
package normalisers
