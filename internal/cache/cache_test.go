package cache

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	ID     string
	Blocks []string
}

func writeFile(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(name, []byte(content), 0o644))
}

func TestCache(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	c, err := New[[]result](filepath.Join(tmpDir, "cache"))
	require.NoError(t, err)

	want := []result{{ID: "f", Blocks: []string{"@id f"}}}

	t.Run("SaveAndLoad", func(t *testing.T) {
		filename := filepath.Join(tmpDir, "a.yaml")
		writeFile(t, filename, "statements: []\n")

		require.NoError(t, c.Set(filename, want))
		got, found := c.Get(filename)
		require.True(t, found)
		assert.Equal(t, want, got)

		reopened, err := New[[]result](c.Dir)
		require.NoError(t, err)
		got, found = reopened.Get(filename)
		require.True(t, found)
		assert.Equal(t, want, got)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, found := c.Get("nonexistent.yaml")
		assert.False(t, found)
	})

	t.Run("FileModified", func(t *testing.T) {
		filename := filepath.Join(tmpDir, "b.yaml")
		writeFile(t, filename, "statements: []\n")
		require.NoError(t, c.Set(filename, want))

		writeFile(t, filename, "path: b.ts\nstatements: []\n")
		_, found := c.Get(filename)
		assert.False(t, found)
	})

	t.Run("InvalidateAll", func(t *testing.T) {
		filename := filepath.Join(tmpDir, "c.yaml")
		writeFile(t, filename, "statements: []\n")
		require.NoError(t, c.Set(filename, want))

		require.NoError(t, c.InvalidateAll())
		assert.Zero(t, c.Len())
	})
}

func TestCacheExpiry(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	c, err := New[string](filepath.Join(tmpDir, "cache"))
	require.NoError(t, err)

	filename := filepath.Join(tmpDir, "a.yaml")
	writeFile(t, filename, "statements: []\n")
	require.NoError(t, c.Set(filename, "out"))

	c.SetMaxAge(time.Nanosecond)
	time.Sleep(time.Millisecond)
	_, found := c.Get(filename)
	assert.False(t, found)
}

func TestCacheDependencies(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	c, err := New[string](filepath.Join(tmpDir, "cache"))
	require.NoError(t, err)

	config := filepath.Join(tmpDir, ".tspec.yaml")
	writeFile(t, config, "name: tspec\n")
	require.NoError(t, c.Track(config))

	filename := filepath.Join(tmpDir, "a.yaml")
	writeFile(t, filename, "statements: []\n")
	require.NoError(t, c.Set(filename, "out"))

	got, found := c.Get(filename)
	require.True(t, found)
	assert.Equal(t, "out", got)

	writeFile(t, config, "name: tspec\nglobals: [console]\n")
	_, found = c.Get(filename)
	assert.False(t, found)

	assert.Error(t, c.Track(filepath.Join(tmpDir, "missing.yaml")))
}

func TestCacheConcurrency(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	c, err := New[string](filepath.Join(tmpDir, "cache"))
	require.NoError(t, err)

	filename := filepath.Join(tmpDir, "a.yaml")
	writeFile(t, filename, "statements: []\n")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.Set(filename, "out"))
		}()
		go func() {
			defer wg.Done()
			_, _ = c.Get(filename)
		}()
	}
	wg.Wait()

	got, found := c.Get(filename)
	require.True(t, found)
	assert.Equal(t, "out", got)
}
