package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetChangedFiles_FirstRunAllAdded(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"), []byte("package a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.go"), []byte("package b"), 0o644))

	store := t.TempDir()
	mgr, err := NewManager(store)
	require.NoError(t, err)

	_, changes, err := mgr.GetChangedFiles(root)
	require.NoError(t, err)
	require.Len(t, changes.Added, 2)
	require.Empty(t, changes.Modified)
	require.Empty(t, changes.Removed)
}

func TestGetChangedFiles_DetectsModifiedAndRemoved(t *testing.T) {
	root := t.TempDir()
	aPath := filepath.Join(root, "a.go")
	bPath := filepath.Join(root, "b.go")
	require.NoError(t, os.WriteFile(aPath, []byte("package a"), 0o644))
	require.NoError(t, os.WriteFile(bPath, []byte("package b"), 0o644))

	store := t.TempDir()
	mgr, err := NewManager(store)
	require.NoError(t, err)

	_, _, err = mgr.GetChangedFiles(root)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(aPath, []byte("package a // changed"), 0o644))
	require.NoError(t, os.Remove(bPath))

	_, changes, err := mgr.GetChangedFiles(root)
	require.NoError(t, err)
	require.Equal(t, []string{"a.go"}, changes.Modified)
	require.Equal(t, []string{"b.go"}, changes.Removed)
	require.Empty(t, changes.Added)
}

func TestGetChangedFiles_HonorsGitignore(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("ignored.go\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "ignored.go"), []byte("package x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "kept.go"), []byte("package y"), 0o644))

	store := t.TempDir()
	mgr, err := NewManager(store)
	require.NoError(t, err)

	current, changes, err := mgr.GetChangedFiles(root)
	require.NoError(t, err)
	require.NotContains(t, current.Files, "ignored.go")
	require.Contains(t, current.Files, "kept.go")
	require.NotContains(t, changes.Added, "ignored.go")
}

func TestGetChangedFiles_HonorsGitInfoExclude(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git", "info"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".git", "info", "exclude"), []byte("excluded.go\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "excluded.go"), []byte("package x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "kept.go"), []byte("package y"), 0o644))

	store := t.TempDir()
	mgr, err := NewManager(store)
	require.NoError(t, err)

	current, _, err := mgr.GetChangedFiles(root)
	require.NoError(t, err)
	require.NotContains(t, current.Files, "excluded.go")
	require.Contains(t, current.Files, "kept.go")
}
