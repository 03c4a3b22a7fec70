package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/linkdash/internal/storage"
)

func openTemp(t *testing.T) *Adapter {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "linkdash.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestAdapterReadMissing(t *testing.T) {
	a := openTemp(t)
	_, err := a.Read(context.Background(), storage.KeyUserList)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAdapterUpsert(t *testing.T) {
	ctx := context.Background()
	a := openTemp(t)

	require.NoError(t, a.Write(ctx, "users/bob", []byte(`["first"]`)))
	require.NoError(t, a.Write(ctx, "users/bob", []byte(`["second"]`)))

	got, err := a.Read(ctx, "users/bob")
	require.NoError(t, err)
	assert.Equal(t, `["second"]`, string(got))

	var count int64
	require.NoError(t, a.db.Model(&Blob{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAdapterPing(t *testing.T) {
	a := openTemp(t)
	assert.NoError(t, a.Ping(context.Background()))
}
