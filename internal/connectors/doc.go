// Package connectors provides DocumentSource implementations for the places
// reference documents live: a local directory (filesystem), GitHub
// repositories (github) and a Google Drive folder (google/drive).
//
// Composite merges several sources into one so the knowledge base sees a
// single listing. Every source namespaces its ids so they never collide:
// local paths are bare, remote ids carry a "github:" or "gdrive:" prefix.
package connectors
