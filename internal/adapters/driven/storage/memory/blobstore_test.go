package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reqlens/internal/core/domain"
)

func TestBlobStore_ReadMissing(t *testing.T) {
	_, err := NewBlobStore().Read(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBlobStore_WriteReadDelete(t *testing.T) {
	ctx := context.Background()
	store := NewBlobStore()

	data := []byte("snapshot")
	require.NoError(t, store.Write(ctx, "kb", data))
	data[0] = 'X'

	got, err := store.Read(ctx, "kb")
	require.NoError(t, err)
	assert.Equal(t, []byte("snapshot"), got, "stored bytes are copied")
	assert.Equal(t, 1, store.Writes())

	require.NoError(t, store.Delete(ctx, "kb"))
	require.NoError(t, store.Delete(ctx, "kb"))
	_, err = store.Read(ctx, "kb")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, store.Close())
}
