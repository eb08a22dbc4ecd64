package internal

import (
	"crypto/md5"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	tt "github.com/gnolang/fparse/internal/types"
)

const (
	cacheFileName   = "fparse_cache.gob"
	DefaultCacheAge = 24 * time.Hour
)

// cacheEntry is what the cache file stores per checked file.
type cacheEntry struct {
	Hash        string    // md5 of the file content
	ModTime     time.Time // modification time when checked
	Fingerprint string    // dependency fingerprint when checked
	Issues      []tt.Issue
	CreatedAt   time.Time
}

// Cache keeps the issues of previously checked files. Entries are kept in
// memory while files are checked and written to one gob file by Flush.
//
// An entry is served only while the file content and modification time
// are unchanged, it is younger than the maximum age, and it was recorded
// under the current dependency fingerprint. The fingerprint is stored
// with each entry, so a configuration change also invalidates entries
// loaded from an earlier run.
type Cache struct {
	dir    string
	maxAge time.Duration

	mu          sync.Mutex
	entries     map[string]cacheEntry
	fingerprint string
	dirty       bool
}

// NewCache opens the cache stored in dir, creating the directory if
// needed. A cache file that cannot be decoded is discarded.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	c := &Cache{
		dir:     dir,
		maxAge:  DefaultCacheAge,
		entries: make(map[string]cacheEntry),
	}
	if err := c.load(); err != nil {
		return nil, err
	}
	return c, nil
}

// Dir returns the directory holding the cache file.
func (c *Cache) Dir() string { return c.dir }

func (c *Cache) path() string {
	return filepath.Join(c.dir, cacheFileName)
}

func (c *Cache) load() error {
	file, err := os.Open(c.path())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open cache file: %w", err)
	}
	defer file.Close()

	entries := make(map[string]cacheEntry)
	if err := gob.NewDecoder(file).Decode(&entries); err != nil {
		// rewritten on the next Flush
		c.dirty = true
		return nil
	}
	c.entries = entries
	return nil
}

// SetDependencies records files whose content is part of every entry's
// validity. Changing any of them invalidates all entries.
func (c *Cache) SetDependencies(files ...string) error {
	h := md5.New()
	for _, file := range files {
		sum, err := fileHash(file)
		if err != nil {
			return fmt.Errorf("failed to hash %s: %w", file, err)
		}
		fmt.Fprintf(h, "%s\x00%s\n", file, sum)
	}
	fingerprint := ""
	if len(files) > 0 {
		fingerprint = hex.EncodeToString(h.Sum(nil))
	}

	c.mu.Lock()
	c.fingerprint = fingerprint
	c.mu.Unlock()
	return nil
}

func (c *Cache) SetMaxAge(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxAge = d
}

// Get returns the cached issues of filename if its entry is still valid.
// Invalid entries are dropped.
func (c *Cache) Get(filename string) ([]tt.Issue, bool) {
	c.mu.Lock()
	entry, ok := c.entries[filename]
	fingerprint, maxAge := c.fingerprint, c.maxAge
	c.mu.Unlock()
	if !ok {
		return nil, false
	}

	valid := time.Since(entry.CreatedAt) <= maxAge && entry.Fingerprint == fingerprint
	if valid {
		hash, modTime, err := fileDigest(filename)
		valid = err == nil && hash == entry.Hash && modTime.Equal(entry.ModTime)
	}
	if !valid {
		c.mu.Lock()
		// a concurrent Set may have replaced the entry meanwhile
		if cur, ok := c.entries[filename]; ok && cur.CreatedAt.Equal(entry.CreatedAt) {
			delete(c.entries, filename)
			c.dirty = true
		}
		c.mu.Unlock()
		return nil, false
	}
	return entry.Issues, true
}

// Set records the issues of filename. Nothing is written until Flush.
func (c *Cache) Set(filename string, issues []tt.Issue) error {
	hash, modTime, err := fileDigest(filename)
	if err != nil {
		return fmt.Errorf("failed to get file metadata: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[filename] = cacheEntry{
		Hash:        hash,
		ModTime:     modTime,
		Fingerprint: c.fingerprint,
		Issues:      issues,
		CreatedAt:   time.Now(),
	}
	c.dirty = true
	return nil
}

// Len returns the number of entries currently held.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Flush writes the entries to disk if anything changed since the last
// flush. Expired entries are left out. The file is replaced atomically.
func (c *Cache) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dirty {
		return nil
	}
	for name, entry := range c.entries {
		if time.Since(entry.CreatedAt) > c.maxAge {
			delete(c.entries, name)
		}
	}

	tmp, err := os.CreateTemp(c.dir, cacheFileName+".*")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(c.entries); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path()); err != nil {
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	c.dirty = false
	return nil
}

// InvalidateAll drops every entry and flushes the empty cache.
func (c *Cache) InvalidateAll() error {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.dirty = true
	c.mu.Unlock()
	return c.Flush()
}

func fileDigest(filename string) (string, time.Time, error) {
	file, err := os.Open(filename)
	if err != nil {
		return "", time.Time{}, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", time.Time{}, err
	}
	h := md5.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", time.Time{}, err
	}
	return hex.EncodeToString(h.Sum(nil)), info.ModTime(), nil
}

func fileHash(filename string) (string, error) {
	hash, _, err := fileDigest(filename)
	return hash, err
}
