package drive

import "strings"

// ContentType identifies what content to read from Google Drive.
type ContentType string

const (
	// ContentFiles reads regular uploaded files.
	ContentFiles ContentType = "files"
	// ContentDocs reads Google Docs, exported as DOCX.
	ContentDocs ContentType = "docs"
)

// DefaultContentTypes are the content types read by default.
var DefaultContentTypes = []ContentType{ContentFiles, ContentDocs}

// DefaultPageSize is the page size for file list requests.
const DefaultPageSize = 100

// Config holds Google Drive source configuration.
type Config struct {
	// FolderID is the Drive folder to read.
	FolderID string
	// Recursive descends into sub-folders.
	Recursive bool
	// ContentTypes specifies what types of content to read.
	ContentTypes []ContentType
	// PageSize is the page size for API requests.
	PageSize int64
	// Token is the OAuth access token.
	Token string
	// Endpoint overrides the API base URL.
	Endpoint string
	// RequestsPerSecond overrides the default throttle when > 0.
	RequestsPerSecond float64
}

// withDefaults fills unset fields.
func (c Config) withDefaults() Config {
	if len(c.ContentTypes) == 0 {
		c.ContentTypes = DefaultContentTypes
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	return c
}

// ParseContentTypes reads a comma-separated list, ignoring unknown entries.
func ParseContentTypes(val string) []ContentType {
	var out []ContentType
	for _, t := range strings.Split(val, ",") {
		ct := ContentType(strings.TrimSpace(t))
		if isValidContentType(ct) {
			out = append(out, ct)
		}
	}
	return out
}

// HasContentType checks if a content type is enabled.
func (c *Config) HasContentType(ct ContentType) bool {
	for _, t := range c.ContentTypes {
		if t == ct {
			return true
		}
	}
	return false
}

func isValidContentType(ct ContentType) bool {
	switch ct {
	case ContentFiles, ContentDocs:
		return true
	default:
		return false
	}
}
