package internal

import (
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tt "github.com/gnolang/fparse/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache(t *testing.T) {
	t.Parallel()
	tmpDir := createTempDir(t, "cache-test")

	cacheDir := filepath.Join(tmpDir, "cache")
	cache, err := NewCache(cacheDir)
	require.NoError(t, err)

	issues := []tt.Issue{
		{
			Rule:     tt.RuleSyntaxError,
			Category: tt.CategorySyntax,
			Filename: "test.f",
			Message:  "unexpected end of input",
			Severity: tt.SeverityError,
			Start:    token.Position{Line: 2, Column: 1, Filename: "test.f"},
			End:      token.Position{Line: 2, Column: 2, Filename: "test.f"},
		},
	}

	t.Run("SaveAndLoad", func(t *testing.T) {
		filename := writeFile(t, tmpDir, "test.f", "X = \n")

		require.NoError(t, cache.Set(filename, issues))

		loadedIssues, found := cache.Get(filename)
		assert.True(t, found)
		assert.Equal(t, issues, loadedIssues)

		// nothing reaches the disk before a flush
		assert.NoFileExists(t, filepath.Join(cacheDir, cacheFileName))
		require.NoError(t, cache.Flush())
		assert.FileExists(t, filepath.Join(cacheDir, cacheFileName))

		// a second cache over the same directory reads the file back
		reopened, err := NewCache(cacheDir)
		require.NoError(t, err)
		loadedIssues, found = reopened.Get(filename)
		assert.True(t, found)
		assert.Equal(t, issues, loadedIssues)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, found := cache.Get("nonexistent.f")
		assert.False(t, found)
	})

	t.Run("FileModified", func(t *testing.T) {
		filename := writeFile(t, tmpDir, "modified.f", "X = 1\n")
		require.NoError(t, cache.Set(filename, nil))

		require.NoError(t, os.WriteFile(filename, []byte("X = 2\n"), 0o644))

		_, found := cache.Get(filename)
		assert.False(t, found)
	})

	t.Run("Expired", func(t *testing.T) {
		filename := writeFile(t, tmpDir, "expired.f", "X = 1\n")
		require.NoError(t, cache.Set(filename, nil))

		cache.SetMaxAge(time.Nanosecond)
		defer cache.SetMaxAge(DefaultCacheAge)
		time.Sleep(time.Millisecond)

		_, found := cache.Get(filename)
		assert.False(t, found)
	})

	t.Run("InvalidateAll", func(t *testing.T) {
		filename := writeFile(t, tmpDir, "all.f", "X = 1\n")
		require.NoError(t, cache.Set(filename, nil))

		require.NoError(t, cache.InvalidateAll())
		_, found := cache.Get(filename)
		assert.False(t, found)
		assert.Zero(t, cache.Len())
	})
}

func TestCacheDependencies(t *testing.T) {
	t.Parallel()
	tmpDir := createTempDir(t, "cache-deps-test")

	config := writeFile(t, tmpDir, ".fparse.yaml", "name: fparse\n")
	source := writeFile(t, tmpDir, "prog.f", "X = 1\n")

	cache, err := NewCache(filepath.Join(tmpDir, "cache"))
	require.NoError(t, err)
	require.NoError(t, cache.SetDependencies(config))

	require.NoError(t, cache.Set(source, nil))
	_, found := cache.Get(source)
	assert.True(t, found)

	require.NoError(t, os.WriteFile(config, []byte("name: changed\n"), 0o644))
	_, found = cache.Get(source)
	assert.False(t, found)

	assert.Error(t, cache.SetDependencies(filepath.Join(tmpDir, "missing.yaml")))
}

func TestCacheDependenciesAcrossRuns(t *testing.T) {
	t.Parallel()
	tmpDir := createTempDir(t, "cache-runs-test")
	cacheDir := filepath.Join(tmpDir, "cache")

	config := writeFile(t, tmpDir, ".fparse.yaml", "name: fparse\n")
	source := writeFile(t, tmpDir, "prog.f", "X = 1\n")

	first, err := NewCache(cacheDir)
	require.NoError(t, err)
	require.NoError(t, first.SetDependencies(config))
	require.NoError(t, first.Set(source, nil))
	require.NoError(t, first.Flush())

	// same configuration: the entry is served
	second, err := NewCache(cacheDir)
	require.NoError(t, err)
	require.NoError(t, second.SetDependencies(config))
	_, found := second.Get(source)
	assert.True(t, found)

	// the configuration changed between runs
	require.NoError(t, os.WriteFile(config, []byte("name: changed\n"), 0o644))
	third, err := NewCache(cacheDir)
	require.NoError(t, err)
	require.NoError(t, third.SetDependencies(config))
	_, found = third.Get(source)
	assert.False(t, found)
}

func TestCacheCorruptFile(t *testing.T) {
	t.Parallel()
	tmpDir := createTempDir(t, "cache-corrupt-test")
	cacheDir := filepath.Join(tmpDir, "cache")
	require.NoError(t, os.MkdirAll(cacheDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cacheDir, cacheFileName), []byte("not gob"), 0o644))

	cache, err := NewCache(cacheDir)
	require.NoError(t, err)
	assert.Zero(t, cache.Len())

	// the next flush replaces the unreadable file
	require.NoError(t, cache.Flush())
	reopened, err := NewCache(cacheDir)
	require.NoError(t, err)
	assert.Zero(t, reopened.Len())
}

func TestCacheConcurrentSet(t *testing.T) {
	t.Parallel()
	tmpDir := createTempDir(t, "cache-concurrent-test")

	cache, err := NewCache(filepath.Join(tmpDir, "cache"))
	require.NoError(t, err)

	const n = 32
	files := make([]string, n)
	for i := range files {
		files[i] = writeFile(t, tmpDir, fmt.Sprintf("f%02d.f", i), fmt.Sprintf("X = %d\n", i))
	}

	var wg sync.WaitGroup
	for _, f := range files {
		wg.Add(1)
		go func(f string) {
			defer wg.Done()
			assert.NoError(t, cache.Set(f, nil))
		}(f)
	}
	wg.Wait()
	require.NoError(t, cache.Flush())

	reopened, err := NewCache(cache.Dir())
	require.NoError(t, err)
	assert.Equal(t, n, reopened.Len())
	for _, f := range files {
		_, found := reopened.Get(f)
		assert.True(t, found, f)
	}
}

func TestCacheWithEngine(t *testing.T) {
	t.Parallel()
	tmpDir := createTempDir(t, "cache-engine-test")

	engine, err := NewEngine(nil)
	require.NoError(t, err)
	cache, err := engine.EnableCache(filepath.Join(tmpDir, "cache"))
	require.NoError(t, err)

	filename := writeFile(t, tmpDir, "loop.f", "DO I = 1, 10\n  X = X + I\n")

	// First run
	issues, err := engine.Run(filename)
	require.NoError(t, err)
	require.NotEmpty(t, issues)

	cached, found := cache.Get(filename)
	require.True(t, found)
	assert.Equal(t, issues, cached)

	// Second run (should hit cache)
	cachedIssues, err := engine.Run(filename)
	require.NoError(t, err)
	assert.Equal(t, issues, cachedIssues)

	// Fixing the file misses the cache
	require.NoError(t, os.WriteFile(filename, []byte("DO I = 1, 10\n  X = X + I\nENDDO\n"), 0o644))
	issues, err = engine.Run(filename)
	require.NoError(t, err)
	assert.Empty(t, issues)
}
