// Package html provides an extractor for HTML documents.
// It walks paragraph-level elements in reading order with goquery, dropping
// scripts and styles, and tags headings so callers can tell them from body text.
package html
