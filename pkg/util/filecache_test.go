package util

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemplate(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFileCache_Get(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplate(t, dir, "base.html", `<div class="tw-flex tw-gap-2">hi</div>`)

	fc := NewFileCache(nil)
	defer fc.Close()

	mf, err := fc.Get(path)
	require.NoError(t, err)
	assert.Equal(t, `<div class="tw-flex tw-gap-2">hi</div>`, string(mf.Data))
	assert.Equal(t, int64(len(mf.Data)), mf.Size)

	_, err = fc.Get(path)
	require.NoError(t, err)

	stats := fc.Stats()
	assert.Equal(t, int64(1), stats.FilesLoaded)
	assert.Equal(t, int64(1), stats.CacheHits)
	assert.Equal(t, 1, stats.FilesCached)
	assert.Equal(t, 1, fc.Size())
}

func TestFileCache_EmptyFile(t *testing.T) {
	path := writeTemplate(t, t.TempDir(), "empty.html", "")

	fc := NewFileCache(nil)
	defer fc.Close()

	mf, err := fc.Get(path)
	require.NoError(t, err)
	assert.Empty(t, mf.Data)
	assert.Equal(t, int64(0), mf.Size)
}

func TestFileCache_RemapsChangedFile(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplate(t, dir, "page.j2", "old")

	fc := NewFileCache(nil)
	defer fc.Close()

	mf, err := fc.Get(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(mf.Data))

	require.NoError(t, os.WriteFile(path, []byte("new contents"), 0644))
	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, later, later))

	mf, err = fc.Get(path)
	require.NoError(t, err)
	assert.Equal(t, "new contents", string(mf.Data))
	assert.Equal(t, int64(1), fc.Stats().Remaps)
}

func TestFileCache_MissingFile(t *testing.T) {
	fc := NewFileCache(nil)
	defer fc.Close()

	_, err := fc.Get(filepath.Join(t.TempDir(), "missing.html"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, int64(1), fc.Stats().CacheMisses)
}

func TestFileCache_MaxFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeTemplate(t, dir, "a.html", "a")
	b := writeTemplate(t, dir, "b.html", "b")

	fc := NewFileCache(&FileCacheConfig{MaxFiles: 1})
	defer fc.Close()

	_, err := fc.Get(a)
	require.NoError(t, err)
	_, err = fc.Get(b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file cache limit reached")

	require.NoError(t, fc.Evict(a))
	_, err = fc.Get(b)
	require.NoError(t, err)
}

func TestFileCache_MaxMemory(t *testing.T) {
	dir := t.TempDir()
	big := writeTemplate(t, dir, "big.html", string(bytes.Repeat([]byte("x"), 2*1024*1024)))

	fc := NewFileCache(&FileCacheConfig{MaxMemoryMB: 1})
	defer fc.Close()

	_, err := fc.Get(big)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "memory limit reached")
}

func TestFileCache_CloseAndReuse(t *testing.T) {
	path := writeTemplate(t, t.TempDir(), "a.html", "content")

	fc := NewFileCache(nil)
	_, err := fc.Get(path)
	require.NoError(t, err)

	require.NoError(t, fc.Close())
	assert.Equal(t, 0, fc.Size())

	mf, err := fc.Get(path)
	require.NoError(t, err)
	assert.Equal(t, "content", string(mf.Data))
	require.NoError(t, fc.Close())
}

func TestFileCache_Concurrent(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := 0; i < 20; i++ {
		paths = append(paths, writeTemplate(t, dir, fmt.Sprintf("f%02d.html", i), fmt.Sprintf("file %d", i)))
	}

	fc := NewFileCache(nil)
	defer fc.Close()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, p := range paths {
				mf, err := fc.Get(p)
				if assert.NoError(t, err) {
					assert.Equal(t, fmt.Sprintf("file %d", i), string(mf.Data))
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, fc.Size())
	assert.Equal(t, int64(20), fc.Stats().FilesLoaded)
}
