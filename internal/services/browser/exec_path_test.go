package browser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBinary(t *testing.T, path string, mode os.FileMode) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), mode))
}

func TestFindExecutable_GlobAndOrder(t *testing.T) {
	root := t.TempDir()
	nixChrome := filepath.Join(root, "store", "abc123-chromium", "bin", "chromium")
	usrChrome := filepath.Join(root, "usr", "bin", "google-chrome")
	writeBinary(t, nixChrome, 0755)
	writeBinary(t, usrChrome, 0755)

	found := findExecutable([]string{
		filepath.Join(root, "store", "*", "bin", "google-chrome"),
		filepath.Join(root, "store", "*", "bin", "chromium"),
		usrChrome,
	})

	assert.Equal(t, nixChrome, found)
}

func TestFindExecutable_SkipsNonExecutable(t *testing.T) {
	root := t.TempDir()
	plain := filepath.Join(root, "chrome-notes")
	binary := filepath.Join(root, "chromium")
	writeBinary(t, plain, 0644)
	writeBinary(t, binary, 0755)

	assert.Equal(t, binary, findExecutable([]string{plain, binary}))
}

func TestFindExecutable_NothingFound(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "bin", "chromium"), 0755))

	assert.Empty(t, findExecutable([]string{
		filepath.Join(root, "missing"),
		filepath.Join(root, "bin", "chromium"),
	}))
}
