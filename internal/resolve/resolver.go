// Package resolve turns fly queries into ranked candidate paths: exact
// basename lookup, hint-narrowed lookup, numeric recall of the previous
// result, and an edit-distance fallback when nothing matches exactly.
package resolve

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/VaibhavPandit-09/fly/internal/store"
)

// DefaultFuzzyLimit is the number of near-match basenames surfaced when
// an exact lookup comes up empty.
const DefaultFuzzyLimit = 5

// Index is the slice of the directory store the resolver reads from and
// writes back to.
type Index interface {
	FindByBasename(ctx context.Context, name string) ([]store.Directory, error)
	BasenamePaths(ctx context.Context) (map[string][]string, error)
	LastResult(ctx context.Context) ([]string, error)
	ReplaceLastResult(ctx context.Context, paths []string) error
	TouchLastUsed(ctx context.Context, fullpath string, epochSeconds int64) error
}

// Result is the outcome of one query. Fuzzy marks results produced by the
// edit-distance fallback rather than an exact match.
type Result struct {
	Paths []string
	Fuzzy bool
}

// Resolver answers jump queries against an Index.
type Resolver struct {
	index      Index
	fuzzyLimit int
	now        func() time.Time
}

// New creates a Resolver over the given index. A fuzzyLimit <= 0 falls
// back to DefaultFuzzyLimit.
func New(index Index, fuzzyLimit int) *Resolver {
	if fuzzyLimit <= 0 {
		fuzzyLimit = DefaultFuzzyLimit
	}
	return &Resolver{index: index, fuzzyLimit: fuzzyLimit, now: time.Now}
}

// Resolve dispatches tokens by shape: a single integer token recalls from
// the last result, multiple tokens run the hint chain, and a single
// non-numeric token is an exact basename lookup with fuzzy fallback.
func (r *Resolver) Resolve(ctx context.Context, tokens []string) (Result, error) {
	if len(tokens) == 0 {
		return Result{}, nil
	}
	if len(tokens) > 1 {
		return r.ResolveWithHints(ctx, tokens)
	}
	if index, ok := parseIndex(tokens[0]); ok {
		return r.Recall(ctx, index)
	}
	return r.ResolveBasename(ctx, tokens[0])
}

// ResolveBasename resolves a single basename token. Matches are ranked by
// ascending depth, then lexicographically by fullpath, and the ranked
// list replaces the last query result. An exact miss triggers the
// edit-distance fallback.
func (r *Resolver) ResolveBasename(ctx context.Context, basename string) (Result, error) {
	basename = strings.TrimSpace(basename)
	if basename == "" {
		return Result{}, nil
	}

	result, err := r.ResolveExact(ctx, basename)
	if err != nil {
		return Result{}, err
	}
	if len(result.Paths) == 0 {
		return r.fuzzyFallback(ctx, basename)
	}
	return result, nil
}

// ResolveExact is basename resolution without the fuzzy fallback: a miss
// returns empty and leaves the last-result slot alone. The CLI uses it
// to retry a missed numeric recall as a literal directory name.
func (r *Resolver) ResolveExact(ctx context.Context, basename string) (Result, error) {
	paths, err := r.rankedBasenameMatches(ctx, basename)
	if err != nil {
		return Result{}, err
	}
	if len(paths) == 0 {
		return Result{}, nil
	}

	if err := r.index.ReplaceLastResult(ctx, paths); err != nil {
		return Result{}, fmt.Errorf("persist query result: %w", err)
	}
	if len(paths) == 1 {
		r.touch(ctx, paths[0])
	}
	return Result{Paths: paths}, nil
}

// ResolveWithHints treats the last token as the basename and the earlier
// tokens as hints. Each hint independently narrows the ranked basename
// matches to paths containing it, case-insensitively; hint order never
// changes the outcome. A single survivor is returned without touching the
// last-result slot; multiple survivors replace it.
func (r *Resolver) ResolveWithHints(ctx context.Context, tokens []string) (Result, error) {
	basename := tokens[len(tokens)-1]
	hints := tokens[:len(tokens)-1]

	paths, err := r.rankedBasenameMatches(ctx, basename)
	if err != nil {
		return Result{}, err
	}
	if len(paths) == 0 {
		return Result{}, nil
	}

	for _, hint := range hints {
		needle := strings.ToLower(strings.TrimSpace(hint))
		if needle == "" {
			continue
		}
		var narrowed []string
		for _, p := range paths {
			if strings.Contains(strings.ToLower(p), needle) {
				narrowed = append(narrowed, p)
			}
		}
		paths = narrowed
		if len(paths) == 0 {
			return Result{}, nil
		}
	}

	if len(paths) == 1 {
		r.touch(ctx, paths[0])
		return Result{Paths: paths}, nil
	}
	if err := r.index.ReplaceLastResult(ctx, paths); err != nil {
		return Result{}, fmt.Errorf("persist query result: %w", err)
	}
	return Result{Paths: paths}, nil
}

// Recall returns the single path at the 1-based position in the last
// query result. An out-of-range index yields an empty result, never an
// error. The slot itself is left untouched.
func (r *Resolver) Recall(ctx context.Context, index int) (Result, error) {
	paths, err := r.index.LastResult(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load last result: %w", err)
	}
	if index < 1 || index > len(paths) {
		return Result{}, nil
	}
	target := paths[index-1]
	r.touch(ctx, target)
	return Result{Paths: []string{target}}, nil
}

// rankedBasenameMatches runs the case-insensitive basename lookup and
// applies the deterministic ranking without persisting anything.
func (r *Resolver) rankedBasenameMatches(ctx context.Context, basename string) ([]string, error) {
	matches, err := r.index.FindByBasename(ctx, basename)
	if err != nil {
		return nil, fmt.Errorf("find by basename: %w", err)
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Depth != matches[j].Depth {
			return matches[i].Depth < matches[j].Depth
		}
		return matches[i].Fullpath < matches[j].Fullpath
	})

	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		paths = append(paths, m.Fullpath)
	}
	return paths, nil
}

// fuzzyFallback ranks every distinct known basename by edit distance to
// the query and returns the closest ones, ties broken lexicographically.
// Each surviving basename contributes its lexicographically first path.
func (r *Resolver) fuzzyFallback(ctx context.Context, query string) (Result, error) {
	pairs, err := r.index.BasenamePaths(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load basenames: %w", err)
	}
	if len(pairs) == 0 {
		return Result{Fuzzy: true}, nil
	}

	type candidate struct {
		basename string
		distance int
	}
	folded := strings.ToLower(query)
	candidates := make([]candidate, 0, len(pairs))
	for basename := range pairs {
		candidates = append(candidates, candidate{
			basename: basename,
			distance: levenshtein(folded, strings.ToLower(basename)),
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].basename < candidates[j].basename
	})

	limit := r.fuzzyLimit
	if limit > len(candidates) {
		limit = len(candidates)
	}

	paths := make([]string, 0, limit)
	for _, c := range candidates[:limit] {
		candidatePaths := append([]string(nil), pairs[c.basename]...)
		sort.Strings(candidatePaths)
		paths = append(paths, candidatePaths[0])
	}

	if err := r.index.ReplaceLastResult(ctx, paths); err != nil {
		return Result{}, fmt.Errorf("persist fuzzy result: %w", err)
	}
	return Result{Paths: paths, Fuzzy: true}, nil
}

// touch records the MRU timestamp for a jump target. Failures are
// swallowed: losing an MRU update must not fail the query.
func (r *Resolver) touch(ctx context.Context, fullpath string) {
	_ = r.index.TouchLastUsed(ctx, fullpath, r.now().Unix())
}

// parseIndex reports whether token is a bare integer back-reference.
func parseIndex(token string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(token))
	if err != nil {
		return 0, false
	}
	return n, true
}
