package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	tempDir := t.TempDir()
	for path, content := range files {
		fullPath := filepath.Join(tempDir, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))
		require.NoError(t, os.WriteFile(fullPath, []byte(content), 0o644))
	}
	return tempDir
}

func TestProjectScanner(t *testing.T) {
	t.Parallel()
	tempDir := createFiles(t, map[string]string{
		"main.f":            "X = 1",
		"LEGACY.F77":        "Y = 2",
		"notes.txt":         "This is a text file",
		"subdir/loop.for":   "DO I = 1, 2\nENDDO",
		"subdir/deep/a.ftn": "Z = 3",
		".git/config.f":     "hidden",
	})

	scannedFiles, err := New(tempDir).Scan()
	require.NoError(t, err)

	var paths []string
	for _, file := range scannedFiles {
		paths = append(paths, file.Path)
		assert.Greater(t, file.Size, int64(0), "File size should be greater than 0")
	}

	assert.Equal(t, []string{
		filepath.Join(tempDir, "LEGACY.F77"),
		filepath.Join(tempDir, "main.f"),
		filepath.Join(tempDir, "subdir/deep/a.ftn"),
		filepath.Join(tempDir, "subdir/loop.for"),
	}, paths, "sorted, hidden directories and other extensions skipped")
}

func TestScannerCustomExtensions(t *testing.T) {
	t.Parallel()
	tempDir := createFiles(t, map[string]string{
		"a.f":   "X = 1",
		"b.f90": "Y = 2",
	})

	s := New(tempDir, ".f90")
	assert.Equal(t, []string{".f90"}, s.Extensions())

	files, err := s.Scan()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(tempDir, "b.f90"), files[0].Path)
}

func TestScannerMissingRoot(t *testing.T) {
	t.Parallel()
	_, err := New(filepath.Join(t.TempDir(), "missing")).Scan()
	assert.Error(t, err)
}
