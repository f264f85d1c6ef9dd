// Package index rebuilds the directory index for registered roots. Every
// reindex is a full wipe and rebuild per root: the walker collects the
// surviving directory set under the root's ignore policy, and the store
// swaps it in atomically.
package index

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/VaibhavPandit-09/fly/internal/ignore"
	"github.com/VaibhavPandit-09/fly/internal/logger"
	"github.com/VaibhavPandit-09/fly/internal/store"
)

// Store is the slice of the directory store the indexer writes through.
type Store interface {
	ListRoots(ctx context.Context) ([]store.Root, error)
	DeleteDirectoriesByRoot(ctx context.Context, rootID int64) (int64, error)
	ReplaceDirectoriesForRoot(ctx context.Context, rootID int64, dirs []store.Directory) error
}

// PatternSource supplies raw ignore-pattern lines, already read from disk
// by the config layer. The indexer only compiles and applies them.
type PatternSource interface {
	GlobalPatterns() ([]string, error)
	RootPatterns(rootPath string) ([]string, error)
}

// Summary reports what a multi-root reindex accomplished.
type Summary struct {
	RootsIndexed int
	RootsSkipped int
	Directories  int
}

// Indexer wipes and rebuilds the directory index.
type Indexer struct {
	store    Store
	patterns PatternSource
	log      *logger.Console
}

// New creates an Indexer. The logger may be nil.
func New(st Store, patterns PatternSource, log *logger.Console) *Indexer {
	return &Indexer{store: st, patterns: patterns, log: log}
}

// ReindexAll rebuilds every registered root in priority order. A root
// that has gone missing empties its slice of the index but does not fail
// the others; the summary counts both outcomes.
func (ix *Indexer) ReindexAll(ctx context.Context) (Summary, error) {
	roots, err := ix.store.ListRoots(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list roots: %w", err)
	}

	var summary Summary
	for _, root := range roots {
		count, skipped, err := ix.ReindexRoot(ctx, root)
		if err != nil {
			return summary, err
		}
		if skipped {
			summary.RootsSkipped++
			continue
		}
		summary.RootsIndexed++
		summary.Directories += count
	}
	return summary, nil
}

// ReindexRoot wipes and rebuilds the index for one root, returning the
// number of directories indexed. A root whose path is no longer a
// directory has its records cleared and is reported as skipped.
func (ix *Indexer) ReindexRoot(ctx context.Context, root store.Root) (count int, skipped bool, err error) {
	rootPath, err := filepath.Abs(root.Path)
	if err != nil {
		return 0, false, fmt.Errorf("resolve root path %s: %w", root.Path, err)
	}
	rootPath = filepath.Clean(rootPath)

	info, err := os.Stat(rootPath)
	if err != nil || !info.IsDir() {
		ix.log.Warnf("skipping root %s: not a directory or missing", root.Path)
		if _, err := ix.store.DeleteDirectoriesByRoot(ctx, root.ID); err != nil {
			return 0, false, fmt.Errorf("clear missing root %s: %w", root.Path, err)
		}
		return 0, true, nil
	}

	rules, err := ix.buildRules(rootPath)
	if err != nil {
		return 0, false, fmt.Errorf("build ignore rules for %s: %w", rootPath, err)
	}

	batch := ix.collect(rootPath, root.ID, rules)
	if err := ix.store.ReplaceDirectoriesForRoot(ctx, root.ID, batch); err != nil {
		return 0, false, fmt.Errorf("persist index for %s: %w", rootPath, err)
	}

	ix.log.Infof("indexed %d directories under %s", len(batch), rootPath)
	return len(batch), false, nil
}

// buildRules combines global patterns with the root's own, global first.
func (ix *Indexer) buildRules(rootPath string) (*ignore.Rules, error) {
	global, err := ix.patterns.GlobalPatterns()
	if err != nil {
		return nil, fmt.Errorf("load global patterns: %w", err)
	}
	local, err := ix.patterns.RootPatterns(rootPath)
	if err != nil {
		return nil, fmt.Errorf("load root patterns: %w", err)
	}
	combined := make([]string, 0, len(global)+len(local))
	combined = append(combined, global...)
	combined = append(combined, local...)
	return ignore.Compile(combined), nil
}

// collect walks rootPath depth-first and returns one record per
// directory that survives the ignore policy. An ignored directory prunes
// its whole subtree; an unreadable one is logged and skipped without
// aborting the walk.
func (ix *Indexer) collect(rootPath string, rootID int64, rules *ignore.Rules) []store.Directory {
	var batch []store.Directory

	_ = filepath.WalkDir(rootPath, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			ix.log.Warnf("failed to access %s: %v", path, err)
			if entry != nil && entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.IsDir() {
			return nil
		}

		if path != rootPath && rules.ShouldIgnore(rootPath, path, true) {
			return filepath.SkipDir
		}

		record, err := toRecord(rootPath, rootID, path, entry)
		if err != nil {
			ix.log.Warnf("failed to read metadata for %s: %v", path, err)
			return filepath.SkipDir
		}
		batch = append(batch, record)
		return nil
	})

	return batch
}

// toRecord captures one directory's metadata as a store record.
func toRecord(rootPath string, rootID int64, path string, entry fs.DirEntry) (store.Directory, error) {
	abs := filepath.Clean(path)

	depth := 0
	if rel, err := filepath.Rel(rootPath, abs); err == nil && rel != "." {
		depth = segmentCount(rel)
	}

	info, err := entry.Info()
	if err != nil {
		return store.Directory{}, err
	}

	return store.Directory{
		Basename: filepath.Base(abs),
		Fullpath: abs,
		Depth:    depth,
		RootID:   rootID,
		MTime:    info.ModTime().Unix(),
		Segments: filepath.ToSlash(abs),
	}, nil
}

// segmentCount counts path segments in a cleaned relative path.
func segmentCount(rel string) int {
	count := 1
	for _, c := range filepath.ToSlash(rel) {
		if c == '/' {
			count++
		}
	}
	return count
}
