// Package filesystem provides a DocumentSource over a local directory tree.
package filesystem

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/reqlens/internal/core/domain"
	"github.com/custodia-labs/reqlens/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

// Source lists supported files below a root directory.
// Document ids are slash-separated paths relative to the root; the change
// marker is the hex SHA-256 of the file contents.
type Source struct {
	root string
}

// New creates a filesystem source rooted at root.
func New(root string) *Source {
	return &Source{root: root}
}

// Name identifies the source.
func (s *Source) Name() string {
	return "filesystem:" + s.root
}

// Root returns the watched directory.
func (s *Source) Root() string {
	return s.root
}

// Validate checks that the root exists and is a directory.
func (s *Source) Validate() error {
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("filesystem: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("filesystem: %w: %s is not a directory", domain.ErrInvalidInput, s.root)
	}
	return nil
}

// List walks the root and returns every supported, non-hidden file sorted by id.
func (s *Source) List(ctx context.Context) ([]domain.SourceDocument, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	var docs []domain.SourceDocument
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		rel, relErr := filepath.Rel(s.root, p)
		if relErr != nil {
			return relErr
		}
		if d.IsDir() {
			if rel != "." && isHidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if isHidden(d.Name()) || !d.Type().IsRegular() || !domain.IsSupportedName(d.Name()) {
			return nil
		}

		data, readErr := os.ReadFile(p)
		if readErr != nil {
			return fmt.Errorf("reading %s: %w", rel, readErr)
		}
		docs = append(docs, domain.SourceDocument{
			ID:           filepath.ToSlash(rel),
			Name:         d.Name(),
			Size:         int64(len(data)),
			ChangeMarker: Marker(data),
			Format:       domain.DetectFormat(d.Name(), ""),
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("filesystem: walking %s: %w", s.root, err)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// Fetch reads the document with the given id.
func (s *Source) Fetch(ctx context.Context, id string) (*domain.SourceContent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.resolve(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("filesystem: reading %s: %w", id, err)
	}
	return &domain.SourceContent{Data: data, Format: domain.DetectFormat(id, ""), ChangeMarker: Marker(data)}, nil
}

// resolve maps an id to a path inside the root, rejecting escapes.
func (s *Source) resolve(id string) (string, error) {
	clean := path.Clean("/" + id)[1:]
	if id == "" || clean != id || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, id)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// Marker returns the change marker for file contents.
func Marker(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// isHidden reports whether any element of p starts with a dot.
// "." and ".." are not hidden.
func isHidden(p string) bool {
	for _, part := range strings.FieldsFunc(p, func(r rune) bool { return r == '/' || r == filepath.Separator }) {
		if part != "." && part != ".." && strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
