package scanner

import (
	"context"
	"fmt"
	"regexp"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/gnana997/twconfig/pkg/util"
)

// PrefixUsage summarizes how matched files use the class prefix.
type PrefixUsage struct {
	Prefix  string `json:"prefix"`
	Scanned int    `json:"scanned"`
	// Unused lists files that contain no prefixed class, sorted.
	Unused []string `json:"unused,omitempty"`
}

// prefixPattern matches a prefixed utility at a class boundary, allowing
// variants ("hover:tw-underline") and the important modifier ("!tw-block").
func prefixPattern(prefix string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|[\s"'` + "`" + `:!{(,])` + regexp.QuoteMeta(prefix) + `[a-z0-9\[-]`)
}

// CheckPrefix reads files concurrently and reports those that never use
// prefix. An empty prefix checks nothing. Each file is released once
// matched, so trees larger than the file cache limits can be checked.
// Concurrent calls must not share files.
func (s *Scanner) CheckPrefix(ctx context.Context, files []string, prefix string) (*PrefixUsage, error) {
	usage := &PrefixUsage{Prefix: prefix}
	if prefix == "" {
		return usage, nil
	}
	re := prefixPattern(prefix)
	used := make([]bool, len(files))

	workers := util.GetOptimalPoolSize()
	if s.maxFiles > 0 && s.maxFiles < workers {
		workers = s.maxFiles
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			mf, err := s.files.Get(f)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", f, err)
			}
			used[i] = re.Match(mf.Data)
			if err := s.files.Evict(f); err != nil {
				return fmt.Errorf("failed to release %s: %w", f, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	usage.Scanned = len(files)
	for i, f := range files {
		if !used[i] {
			usage.Unused = append(usage.Unused, f)
		}
	}
	sort.Strings(usage.Unused)
	return usage, nil
}
