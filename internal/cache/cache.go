// Package cache stores generated output per input file on disk. An entry is
// valid while the file content, the tracked dependency files and the entry age
// stay within bounds.
package cache

import (
	"crypto/md5"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	cacheFileName = "spec_cache.gob"
	DefaultMaxAge = 24 * time.Hour
)

type fileMetadata struct {
	Hash         string
	LastModified time.Time
}

type Entry[T any] struct {
	Metadata     fileMetadata
	Value        T
	CreatedAt    time.Time
	LastAccessed time.Time
}

type Cache[T any] struct {
	Dir              string
	entries          map[string]Entry[T]
	mutex            sync.Mutex
	maxAge           time.Duration
	dependencyFiles  []string
	dependencyHashes map[string]string
}

// New opens the cache stored in dir, creating the directory if needed.
func New[T any](dir string) (*Cache[T], error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	c := &Cache[T]{
		Dir:              dir,
		entries:          make(map[string]Entry[T]),
		maxAge:           DefaultMaxAge,
		dependencyHashes: make(map[string]string),
	}
	if err := c.load(); err != nil {
		return nil, fmt.Errorf("failed to load cache: %w", err)
	}
	return c, nil
}

func (c *Cache[T]) path() string {
	return filepath.Join(c.Dir, cacheFileName)
}

func (c *Cache[T]) load() error {
	file, err := os.Open(c.path())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open cache file: %w", err)
	}
	defer file.Close()

	if err := gob.NewDecoder(file).Decode(&c.entries); err != nil {
		return fmt.Errorf("failed to decode cache file: %w", err)
	}
	return nil
}

func (c *Cache[T]) save() error {
	file, err := os.Create(c.path())
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(c.entries); err != nil {
		return fmt.Errorf("failed to encode cache file: %w", err)
	}
	return nil
}

// Track adds files whose change invalidates every entry, such as the
// configuration the output was generated with.
func (c *Cache[T]) Track(files ...string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for _, f := range files {
		hash, err := fileHash(f)
		if err != nil {
			return fmt.Errorf("failed to get hash for %s: %w", f, err)
		}
		c.dependencyFiles = append(c.dependencyFiles, f)
		c.dependencyHashes[f] = hash
	}
	return nil
}

func (c *Cache[T]) Set(filename string, value T) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	metadata, err := getFileMetadata(filename)
	if err != nil {
		return fmt.Errorf("failed to get file metadata: %w", err)
	}

	now := time.Now()
	c.entries[filename] = Entry[T]{
		Metadata:     metadata,
		Value:        value,
		CreatedAt:    now,
		LastAccessed: now,
	}
	return c.save()
}

func (c *Cache[T]) Get(filename string) (T, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var zero T
	entry, exists := c.entries[filename]
	if !exists {
		return zero, false
	}
	if c.isEntryInvalid(filename, entry) {
		delete(c.entries, filename)
		return zero, false
	}

	entry.LastAccessed = time.Now()
	c.entries[filename] = entry
	return entry.Value, true
}

func (c *Cache[T]) isEntryInvalid(filename string, entry Entry[T]) bool {
	if time.Since(entry.CreatedAt) > c.maxAge {
		return true
	}
	current, err := getFileMetadata(filename)
	if err != nil || current.Hash != entry.Metadata.Hash {
		return true
	}
	return c.haveDependenciesChanged()
}

func (c *Cache[T]) haveDependenciesChanged() bool {
	for _, file := range c.dependencyFiles {
		hash, err := fileHash(file)
		if err != nil || hash != c.dependencyHashes[file] {
			return true
		}
	}
	return false
}

func (c *Cache[T]) SetMaxAge(d time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.maxAge = d
}

func (c *Cache[T]) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return len(c.entries)
}

func (c *Cache[T]) InvalidateAll() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]Entry[T])
	return c.save()
}

func getFileMetadata(filename string) (fileMetadata, error) {
	file, err := os.Open(filename)
	if err != nil {
		return fileMetadata{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hash, err := hashReader(file)
	if err != nil {
		return fileMetadata{}, err
	}
	info, err := file.Stat()
	if err != nil {
		return fileMetadata{}, fmt.Errorf("failed to get file info: %w", err)
	}
	return fileMetadata{Hash: hash, LastModified: info.ModTime()}, nil
}

func fileHash(filename string) (string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return hashReader(file)
}

func hashReader(r io.Reader) (string, error) {
	h := md5.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("failed to calculate hash: %w", err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
