// Package scanner expands the content globs of a configuration document
// against the file system and checks that matched templates use the
// configured class prefix.
package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gnana997/twconfig/pkg/util"
)

// DefaultCacheSize is the number of (base dir, pattern) expansions kept.
const DefaultCacheSize = 256

// Options configures a Scanner.
type Options struct {
	CacheSize int
	FileCache *util.FileCacheConfig
	Logger    *slog.Logger
}

// PatternResult reports what one content pattern matched.
type PatternResult struct {
	Pattern string `json:"pattern"`
	Negated bool   `json:"negated,omitempty"`
	// Matches counts files matched by a positive pattern, or files removed
	// by a negated one.
	Matches int `json:"matches"`
}

// Report is the outcome of expanding a content list.
type Report struct {
	BaseDir  string          `json:"base_dir"`
	Patterns []PatternResult `json:"patterns"`
	// Files are absolute, sorted and deduplicated.
	Files []string `json:"files"`
	// Unmatched lists positive patterns that matched no file. The external
	// build accepts these silently, so they usually indicate a stale path.
	Unmatched []string `json:"unmatched,omitempty"`
}

type cacheKey struct {
	baseDir string
	pattern string
}

// Scanner expands content globs. It is safe for concurrent use.
type Scanner struct {
	cache    *lru.Cache[cacheKey, []string]
	files    util.FileCache
	maxFiles int // file cache limit, 0 for none
	logger   *slog.Logger
}

// New creates a Scanner.
func New(opts Options) (*Scanner, error) {
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cache, err := lru.NewWithEvict(opts.CacheSize, func(key cacheKey, _ []string) {
		logger.Debug("evicted glob expansion", "base_dir", key.baseDir, "pattern", key.pattern)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create glob cache: %w", err)
	}

	fcConfig := opts.FileCache
	if fcConfig == nil {
		fcConfig = util.DefaultFileCacheConfig()
	}
	fcConfig.Logger = logger

	return &Scanner{
		cache:    cache,
		files:    util.NewFileCache(fcConfig),
		maxFiles: fcConfig.MaxFiles,
		logger:   logger,
	}, nil
}

// Close releases mapped files.
func (s *Scanner) Close() error {
	return s.files.Close()
}

// Invalidate drops every cached expansion and mapped file. Call it when
// files may have been added or removed. It must not run concurrently with
// CheckPrefix.
func (s *Scanner) Invalidate() {
	s.cache.Purge()
	if err := s.files.Close(); err != nil {
		s.logger.Warn("failed to release mapped files", "error", err)
	}
}

// Expand resolves patterns relative to baseDir, normally the directory of
// the configuration document. Patterns may climb out of baseDir with "../".
// A leading "!" excludes matching files (or files under matching
// directories) from every positive pattern.
func (s *Scanner) Expand(baseDir string, patterns []string) (*Report, error) {
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	report := &Report{BaseDir: absBase, Patterns: make([]PatternResult, len(patterns))}
	matched := make(map[string]bool)

	for i, p := range patterns {
		report.Patterns[i] = PatternResult{Pattern: p, Negated: strings.HasPrefix(p, "!")}
		if report.Patterns[i].Negated {
			continue
		}
		files, err := s.glob(absBase, p)
		if err != nil {
			return nil, err
		}
		report.Patterns[i].Matches = len(files)
		if len(files) == 0 {
			report.Unmatched = append(report.Unmatched, p)
		}
		for _, f := range files {
			matched[f] = true
		}
	}

	for i, p := range patterns {
		if !report.Patterns[i].Negated {
			continue
		}
		neg := path.Clean(strings.TrimPrefix(p, "!"))
		if !doublestar.ValidatePattern(neg) {
			return nil, fmt.Errorf("invalid content pattern: %s", p)
		}
		for f := range matched {
			rel, err := filepath.Rel(absBase, f)
			if err != nil {
				continue
			}
			if excludedBy(neg, filepath.ToSlash(rel)) {
				delete(matched, f)
				report.Patterns[i].Matches++
			}
		}
	}

	report.Files = make([]string, 0, len(matched))
	for f := range matched {
		report.Files = append(report.Files, f)
	}
	sort.Strings(report.Files)

	s.logger.Debug("expanded content globs",
		"base_dir", absBase,
		"patterns", len(patterns),
		"files", len(report.Files),
		"unmatched", len(report.Unmatched))
	return report, nil
}

// glob expands one positive pattern, consulting the cache first.
func (s *Scanner) glob(absBase, pattern string) ([]string, error) {
	key := cacheKey{baseDir: absBase, pattern: pattern}
	if files, ok := s.cache.Get(key); ok {
		return files, nil
	}

	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid content pattern: %s", pattern)
	}

	// Split off the literal prefix so "../" segments resolve on disk and
	// the remainder can be matched inside an fs.FS.
	base, rest := doublestar.SplitPattern(path.Clean(filepath.ToSlash(pattern)))
	root := filepath.Join(absBase, filepath.FromSlash(base))
	if filepath.IsAbs(filepath.FromSlash(pattern)) {
		root = filepath.FromSlash(base)
	}

	var files []string
	info, err := os.Stat(root)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// A missing base directory simply matches nothing.
	case err != nil:
		return nil, fmt.Errorf("failed to expand %s: %w", pattern, err)
	case info.IsDir():
		rels, err := doublestar.Glob(os.DirFS(root), rest, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("failed to expand %s: %w", pattern, err)
		}
		for _, rel := range rels {
			files = append(files, filepath.Join(root, filepath.FromSlash(rel)))
		}
	}

	sort.Strings(files)
	s.cache.Add(key, files)
	return files, nil
}

// excludedBy reports whether rel, or any directory containing it, matches
// the negation pattern.
func excludedBy(pattern, rel string) bool {
	for p := rel; p != "." && p != "/" && p != ""; p = path.Dir(p) {
		if ok, _ := doublestar.Match(pattern, p); ok {
			return true
		}
	}
	return false
}
