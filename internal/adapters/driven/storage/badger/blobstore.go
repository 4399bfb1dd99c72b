// Package badger provides a BadgerDB-backed implementation of driven.BlobStore
// using badgerhold for record encoding.
package badger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/custodia-labs/reqlens/internal/core/domain"
	"github.com/custodia-labs/reqlens/internal/core/ports/driven"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

// blobRecord is the stored shape of one blob.
type blobRecord struct {
	Name      string
	Data      []byte
	UpdatedAt time.Time
}

// BlobStore keeps blobs as badgerhold records keyed by name.
type BlobStore struct {
	store *badgerhold.Store
}

// NewBlobStore opens (or creates) a Badger database in dir.
func NewBlobStore(dir string) (*BlobStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("badger: creating directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = dir
	options.ValueDir = dir
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("badger: opening database: %w", err)
	}
	return &BlobStore{store: store}, nil
}

// Read returns the bytes stored under name.
func (b *BlobStore) Read(_ context.Context, name string) ([]byte, error) {
	var record blobRecord
	err := b.store.Get(name, &record)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("badger: reading %s: %w", name, err)
	}
	return record.Data, nil
}

// Write upserts the record for name in a single transaction.
func (b *BlobStore) Write(_ context.Context, name string, data []byte) error {
	record := blobRecord{Name: name, Data: data, UpdatedAt: time.Now()}
	if err := b.store.Upsert(name, record); err != nil {
		return fmt.Errorf("badger: writing %s: %w", name, err)
	}
	return nil
}

// Delete removes name. Missing names are ignored.
func (b *BlobStore) Delete(_ context.Context, name string) error {
	err := b.store.Delete(name, blobRecord{})
	if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return fmt.Errorf("badger: deleting %s: %w", name, err)
	}
	return nil
}

// Close closes the database.
func (b *BlobStore) Close() error {
	return b.store.Close()
}
