// Package file provides a directory-backed implementation of driven.BlobStore.
// Each blob is one file; writes go through a temp file and a rename so a
// crash never leaves a half-written snapshot behind.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/reqlens/internal/core/domain"
	"github.com/custodia-labs/reqlens/internal/core/ports/driven"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

// BlobStore stores blobs as files in a single directory.
type BlobStore struct {
	dir string
}

// NewBlobStore creates the directory if needed.
// If dir is empty, defaults to ~/.reqlens/data.
func NewBlobStore(dir string) (*BlobStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("file: getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".reqlens", "data")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("file: creating directory: %w", err)
	}
	return &BlobStore{dir: dir}, nil
}

// Dir returns the backing directory.
func (b *BlobStore) Dir() string {
	return b.dir
}

func (b *BlobStore) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: invalid blob name %q", domain.ErrInvalidInput, name)
	}
	return filepath.Join(b.dir, name), nil
}

// Read returns the bytes stored under name.
func (b *BlobStore) Read(_ context.Context, name string) ([]byte, error) {
	p, err := b.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("file: reading %s: %w", name, err)
	}
	return data, nil
}

// Write replaces name atomically: temp file, fsync, rename, then fsync of the directory.
func (b *BlobStore) Write(ctx context.Context, name string, data []byte) error {
	p, err := b.path(name)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(b.dir, "."+name+".tmp-*")
	if err != nil {
		return fmt.Errorf("file: creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("file: writing %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("file: syncing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("file: closing %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("file: chmod %s: %w", name, err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("file: renaming %s: %w", name, err)
	}
	return syncDir(b.dir)
}

// Delete removes name. Missing names are ignored.
func (b *BlobStore) Delete(_ context.Context, name string) error {
	p, err := b.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("file: deleting %s: %w", name, err)
	}
	return nil
}

// Close is a no-op.
func (b *BlobStore) Close() error {
	return nil
}

// syncDir flushes the directory entry so the rename survives a crash.
// Some platforms cannot fsync a directory, so a Sync failure is ignored.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("file: opening directory: %w", err)
	}
	defer d.Close()
	_ = d.Sync()
	return nil
}
