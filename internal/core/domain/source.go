package domain

import (
	"path"
	"strings"
)

// Format identifies how a document's bytes are laid out.
type Format string

// Supported document formats.
const (
	FormatPlainText Format = "text"
	FormatMarkdown  Format = "markdown"
	FormatPDF       Format = "pdf"
	FormatHTML      Format = "html"
	FormatDOCX      Format = "docx"
	FormatJSON      Format = "json"
	FormatYAML      Format = "yaml"
	FormatTOML      Format = "toml"
)

var extensionFormats = map[string]Format{
	".txt":      FormatPlainText,
	".text":     FormatPlainText,
	".md":       FormatMarkdown,
	".markdown": FormatMarkdown,
	".pdf":      FormatPDF,
	".html":     FormatHTML,
	".htm":      FormatHTML,
	".docx":     FormatDOCX,
	".json":     FormatJSON,
	".yaml":     FormatYAML,
	".yml":      FormatYAML,
	".toml":     FormatTOML,
}

var mimeFormats = map[string]Format{
	"text/plain":       FormatPlainText,
	"text/markdown":    FormatMarkdown,
	"text/x-markdown":  FormatMarkdown,
	"application/pdf":  FormatPDF,
	"text/html":        FormatHTML,
	"application/json": FormatJSON,
	"application/yaml": FormatYAML,
	"text/yaml":        FormatYAML,
	"application/toml": FormatTOML,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": FormatDOCX,
}

// DetectFormat maps a file name or MIME type to a Format.
// The extension wins when both are known. Returns "" when neither matches.
func DetectFormat(name, mimeType string) Format {
	if f, ok := extensionFormats[strings.ToLower(path.Ext(name))]; ok {
		return f
	}
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return mimeFormats[mt]
}

// IsSupportedName reports whether a file name has a known document extension.
func IsSupportedName(name string) bool {
	_, ok := extensionFormats[strings.ToLower(path.Ext(name))]
	return ok
}

// DocumentType is the coarse category of a reference document.
type DocumentType string

// Document categories used to weight and report the reference corpus.
const (
	DocumentTypeSEMP          DocumentType = "SEMP"
	DocumentTypeRequirements  DocumentType = "Requirements"
	DocumentTypeGuide         DocumentType = "Guide"
	DocumentTypeStandard      DocumentType = "Standard"
	DocumentTypeDebtDetection DocumentType = "Debt_Detection"
	DocumentTypeGeneral       DocumentType = "General"
)

// ClassifyDocument derives a DocumentType from keywords in the file name.
func ClassifyDocument(name string) DocumentType {
	n := strings.ToLower(path.Base(name))
	switch {
	case strings.Contains(n, "semp"):
		return DocumentTypeSEMP
	case strings.Contains(n, "requirement"):
		return DocumentTypeRequirements
	case strings.Contains(n, "guide"):
		return DocumentTypeGuide
	case strings.Contains(n, "standard"):
		return DocumentTypeStandard
	case strings.Contains(n, "debt"):
		return DocumentTypeDebtDetection
	default:
		return DocumentTypeGeneral
	}
}

// SourceDocument is a document as listed by a source.
// It is immutable once listed; a content change yields a new ChangeMarker.
type SourceDocument struct {
	// ID is the stable identity within the knowledge base (path, key or prefixed remote id).
	ID string `json:"id"`

	// Name is the display name, usually the file name.
	Name string `json:"name"`

	// Size is the raw byte length, or 0 when unknown.
	Size int64 `json:"size"`

	// ChangeMarker is an opaque hash or timestamp used for change detection.
	ChangeMarker string `json:"change_marker"`

	// Format is the declared or detected format.
	Format Format `json:"format,omitempty"`
}

// SourceContent is the raw payload returned by a source fetch.
type SourceContent struct {
	Data   []byte
	Format Format
	// ChangeMarker identifies the fetched bytes. Empty when the source cannot tell.
	ChangeMarker string
}
