package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileStore_MissingFileIsEmpty(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "none.json"))
	data, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Nil(t, data)
}

func TestFileStore_SaveCreatesDirAndReplaces(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(filepath.Join(dir, "nested", "favorites.json"))
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, []byte(`[{"user":"a"}]`)))
	require.NoError(t, s.Save(ctx, []byte(`[]`)))

	data, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "[]", string(data))

	entries, err := os.ReadDir(filepath.Join(dir, "nested"))
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files left behind")
}
