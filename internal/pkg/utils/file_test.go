package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFileLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lines.txt")
	require.NoError(t, os.WriteFile(path, []byte("# header\r\nfirst\r\n\n  second  \n"), 0644))

	lines, err := ReadFileLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, lines)

	_, err = ReadFileLines(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestListFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.yaml", "c.YAML", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.yaml"), 0755))

	files, err := ListFiles(dir, ".yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.yaml"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "c.YAML"),
	}, files)

	_, err = ListFiles(filepath.Join(dir, "missing"), ".yaml")
	assert.Error(t, err)
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "SKIP")
	assert.False(t, FileExists(path))
	assert.False(t, FileExists(""))
	require.NoError(t, os.WriteFile(path, nil, 0644))
	assert.True(t, FileExists(path))
}
