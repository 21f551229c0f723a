package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CreatesEmptyDir(t *testing.T) {
	root := t.TempDir()

	ws, err := New(root)
	require.NoError(t, err)

	assert.Equal(t, root, filepath.Dir(ws.Dir()))
	assert.True(t, strings.HasPrefix(filepath.Base(ws.Dir()), "pdf-parser-"+ws.ID()[:8]))

	entries, err := os.ReadDir(ws.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNew_DistinctSessions(t *testing.T) {
	root := t.TempDir()

	a, err := New(root)
	require.NoError(t, err)
	b, err := New(root)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID(), b.ID())
	assert.NotEqual(t, a.Dir(), b.Dir())
}

func TestNew_MissingRoot(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "root"))
	assert.Error(t, err)
}

func TestSubdirAndPath(t *testing.T) {
	ws, err := New(t.TempDir())
	require.NoError(t, err)

	dir, err := ws.Subdir("images")
	require.NoError(t, err)
	assert.DirExists(t, dir)
	assert.Equal(t, filepath.Join(ws.Dir(), "images", "a.png"), ws.Path("images", "a.png"))

	// idempotent
	again, err := ws.Subdir("images")
	require.NoError(t, err)
	assert.Equal(t, dir, again)
}

func TestRemove(t *testing.T) {
	ws, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = ws.Subdir("images")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(ws.Path("images", "x.png"), []byte("x"), 0o644))

	require.NoError(t, ws.Remove())
	assert.NoDirExists(t, ws.Dir())

	err = ws.Remove()
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
