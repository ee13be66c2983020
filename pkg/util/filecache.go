// FileCache gives read access to content files through memory maps.
//
// Content scans map each template, match it and evict it again, so the
// limits bound the files in flight rather than the size of the tree. A file
// still cached when read again is remapped if its size or modification time
// changed.
//
//   - Optional MaxFiles limit (prevents file descriptor exhaustion)
//   - Optional MaxMemoryMB limit (bounds virtual memory)
//   - Falls back to os.ReadFile when mmap fails
//   - Thread-safe
package util

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/edsrzf/mmap-go"
)

// FileCache provides read-only file contents backed by memory maps.
type FileCache interface {
	// Get returns the current contents of filePath, mapping it on first
	// access and remapping it when it changed on disk.
	Get(filePath string) (*MappedFile, error)

	// Evict unmaps one file. Evicting an unknown path is a no-op.
	Evict(filePath string) error

	// Size returns number of currently cached files.
	Size() int

	// Stats returns current cache metrics.
	Stats() FileCacheStats

	// Close unmaps all files. The cache stays usable afterwards.
	Close() error
}

// FileCacheConfig controls FileCache behavior.
type FileCacheConfig struct {
	// MaxFiles caps the number of cached files. 0 means unlimited.
	MaxFiles int

	// MaxMemoryMB caps the total mapped size. 0 means unlimited.
	// This limits address space, not resident memory.
	MaxMemoryMB int

	// Logger for warnings. If nil, uses slog.Default().
	Logger *slog.Logger
}

// DefaultFileCacheConfig returns limits suited to template trees.
func DefaultFileCacheConfig() *FileCacheConfig {
	return &FileCacheConfig{
		MaxFiles:    10000,
		MaxMemoryMB: 1024,
	}
}

// MappedFile is one cached file.
type MappedFile struct {
	Path string

	// Data is the mapped region, or the file contents when mmap failed.
	// Nil for empty files. Must not be modified.
	Data []byte

	Size    int64
	ModTime time.Time

	mapped mmap.MMap
	file   *os.File
}

func (mf *MappedFile) release() error {
	var errs []error
	if mf.mapped != nil {
		if err := mf.mapped.Unmap(); err != nil {
			errs = append(errs, fmt.Errorf("unmap %q: %w", mf.Path, err))
		}
	}
	if mf.file != nil {
		if err := mf.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %q: %w", mf.Path, err))
		}
	}
	return errors.Join(errs...)
}

// FileCacheStats tracks cache metrics.
type FileCacheStats struct {
	FilesLoaded   int64 // cumulative loads, remaps included
	FilesCached   int
	CacheHits     int64
	CacheMisses   int64
	Remaps        int64 // reloads caused by on-disk changes
	MmapFailures  int64 // loads served by os.ReadFile instead
	TotalMappedMB float64
}

// NewFileCache creates a FileCache. If config is nil, uses DefaultFileCacheConfig().
func NewFileCache(config *FileCacheConfig) FileCache {
	if config == nil {
		config = DefaultFileCacheConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &fileCacheImpl{
		config: config,
		logger: logger,
		cache:  make(map[string]*MappedFile),
	}
}

type fileCacheImpl struct {
	config *FileCacheConfig
	logger *slog.Logger

	mu    sync.Mutex
	cache map[string]*MappedFile
	stats FileCacheStats
}

func (fc *fileCacheImpl) Get(filePath string) (*MappedFile, error) {
	stat, err := os.Stat(filePath)
	if err != nil {
		fc.mu.Lock()
		fc.stats.CacheMisses++
		fc.mu.Unlock()
		return nil, fmt.Errorf("failed to stat file %q: %w", filePath, err)
	}

	fc.mu.Lock()
	defer fc.mu.Unlock()

	if mf, ok := fc.cache[filePath]; ok {
		if mf.Size == stat.Size() && mf.ModTime.Equal(stat.ModTime()) {
			fc.stats.CacheHits++
			return mf, nil
		}
		// Stale: drop the old mapping before loading the new contents.
		if err := mf.release(); err != nil {
			fc.logger.Warn("failed to release stale mapping", "path", filePath, "error", err)
		}
		delete(fc.cache, filePath)
		fc.stats.Remaps++
	}
	fc.stats.CacheMisses++

	if err := fc.checkLimitsLocked(stat.Size()); err != nil {
		return nil, err
	}

	mf, err := fc.load(filePath)
	if err != nil {
		return nil, err
	}
	fc.cache[filePath] = mf
	fc.stats.FilesLoaded++
	return mf, nil
}

// checkLimitsLocked verifies that adding a file of newSize bytes stays
// within the configured limits. Must be called while holding mu.
func (fc *fileCacheImpl) checkLimitsLocked(newSize int64) error {
	if fc.config.MaxFiles > 0 && len(fc.cache) >= fc.config.MaxFiles {
		return fmt.Errorf("file cache limit reached: %d files (limit: %d files)",
			len(fc.cache), fc.config.MaxFiles)
	}
	if fc.config.MaxMemoryMB > 0 {
		total := fc.totalMappedMBLocked() + float64(newSize)/(1024*1024)
		if total >= float64(fc.config.MaxMemoryMB) {
			return fmt.Errorf("file cache memory limit reached: %.2f MB (limit: %d MB)",
				total, fc.config.MaxMemoryMB)
		}
	}
	return nil
}

// load maps a file, falling back to os.ReadFile if mmap fails.
func (fc *fileCacheImpl) load(filePath string) (*MappedFile, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", filePath, err)
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat file %q: %w", filePath, err)
	}

	mf := &MappedFile{Path: filePath, Size: stat.Size(), ModTime: stat.ModTime()}

	// Zero-length files cannot be mapped.
	if stat.Size() == 0 {
		file.Close()
		return mf, nil
	}

	mapped, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		file.Close()
		fc.logger.Warn("mmap failed, using fallback", "file", filePath, "size", stat.Size(), "error", err)
		data, readErr := os.ReadFile(filePath)
		if readErr != nil {
			return nil, fmt.Errorf("mmap failed and fallback failed for %q: mmap error: %v, read error: %w",
				filePath, err, readErr)
		}
		fc.stats.MmapFailures++
		mf.Data = data
		mf.Size = int64(len(data))
		return mf, nil
	}

	mf.Data = mapped
	mf.mapped = mapped
	mf.file = file
	return mf, nil
}

func (fc *fileCacheImpl) Evict(filePath string) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	mf, ok := fc.cache[filePath]
	if !ok {
		return nil
	}
	delete(fc.cache, filePath)
	return mf.release()
}

func (fc *fileCacheImpl) Size() int {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return len(fc.cache)
}

func (fc *fileCacheImpl) Stats() FileCacheStats {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	stats := fc.stats
	stats.FilesCached = len(fc.cache)
	stats.TotalMappedMB = fc.totalMappedMBLocked()
	return stats
}

func (fc *fileCacheImpl) totalMappedMBLocked() float64 {
	var total int64
	for _, mf := range fc.cache {
		total += mf.Size
	}
	return float64(total) / (1024 * 1024)
}

func (fc *fileCacheImpl) Close() error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	var errs []error
	for path, mf := range fc.cache {
		if err := mf.release(); err != nil {
			fc.logger.Warn("failed to release file", "path", path, "error", err)
			errs = append(errs, err)
		}
	}
	fc.cache = make(map[string]*MappedFile)

	fc.logger.Debug("file cache closed",
		"files_loaded", fc.stats.FilesLoaded,
		"cache_hits", fc.stats.CacheHits,
		"remaps", fc.stats.Remaps,
		"mmap_failures", fc.stats.MmapFailures)

	return errors.Join(errs...)
}
