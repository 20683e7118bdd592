package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return store
}

func TestSaveWritesFileWithUniquePrefix(t *testing.T) {
	store := newTestStore(t)

	path, size, err := store.Save("invoice 2024.pdf", strings.NewReader("content"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), size)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))

	// spaces replaced, original name kept after the uuid prefix
	assert.True(t, strings.HasSuffix(path, "_invoice_2024.pdf"))

	other, _, err := store.Save("invoice 2024.pdf", strings.NewReader("content"))
	require.NoError(t, err)
	assert.NotEqual(t, path, other)
}

func TestSaveStripsDirectoryComponents(t *testing.T) {
	store := newTestStore(t)

	path, _, err := store.Save("../../etc/passwd", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, store.Dir(), filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, "_passwd"))
}

func TestRemoveIgnoresMissingFile(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Remove(filepath.Join(store.Dir(), "gone")))
}

func TestCleanupOrphansKeepsKnownFiles(t *testing.T) {
	store := newTestStore(t)

	keep, _, err := store.Save("keep.txt", strings.NewReader("a"))
	require.NoError(t, err)
	orphan, _, err := store.Save("orphan.txt", strings.NewReader("b"))
	require.NoError(t, err)

	removed, err := store.CleanupOrphans(map[string]struct{}{keep: {}})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(keep)
	assert.NoError(t, err)
	_, err = os.Stat(orphan)
	assert.True(t, os.IsNotExist(err))
}
