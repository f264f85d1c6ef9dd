package ignore

import (
	"path/filepath"
	"strings"
)

// Rules is the ordered, compiled rule set governing pruning for one root:
// global rules first, then root-local rules, in file order within each
// group. An empty rule set never ignores anything.
type Rules struct {
	rules []Rule
}

// Empty returns a rule set that ignores nothing.
func Empty() *Rules {
	return &Rules{}
}

// Compile builds a rule set from raw pattern lines. Lines that produce no
// rule (blanks, comments, stripped-empty patterns) are skipped.
func Compile(rawPatterns []string) *Rules {
	if len(rawPatterns) == 0 {
		return Empty()
	}
	var compiled []Rule
	for _, raw := range rawPatterns {
		if rule, ok := compileRule(raw); ok {
			compiled = append(compiled, rule)
		}
	}
	return &Rules{rules: compiled}
}

// Len returns the number of compiled rules.
func (r *Rules) Len() int {
	return len(r.rules)
}

// ShouldIgnore reports whether candidate, located under root, should be
// excluded from the index. The root itself is never ignored, and neither
// is a candidate outside the root (caller error, not a match). The
// verdict is the negation flag of the last matching rule: a later '!'
// rule re-includes a path an earlier rule ignored. A candidate no rule
// names directly inherits the verdict of its nearest ancestor directory
// that any rule does name, so an ignored directory takes its whole
// subtree with it.
func (r *Rules) ShouldIgnore(root, candidate string, isDirectory bool) bool {
	if len(r.rules) == 0 || root == candidate {
		return false
	}

	rel, err := filepath.Rel(root, candidate)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if rel == "" || rel == "." || strings.HasPrefix(rel, "../") || rel == ".." {
		return false
	}

	if ignored, matched := r.verdict(rel, isDirectory); matched {
		return ignored
	}
	for prefix := parentPrefix(rel); prefix != ""; prefix = parentPrefix(prefix) {
		if ignored, matched := r.verdict(prefix, true); matched {
			return ignored
		}
	}
	return false
}

// verdict runs the last-match-wins scan over rel and reports whether any
// rule matched at all.
func (r *Rules) verdict(rel string, isDirectory bool) (ignored, matched bool) {
	for _, rule := range r.rules {
		if rule.DirectoryOnly && !isDirectory {
			continue
		}
		if rule.Matches(rel) {
			ignored = !rule.Negated
			matched = true
		}
	}
	return ignored, matched
}

// parentPrefix strips the last path segment, returning "" at the top.
func parentPrefix(rel string) string {
	i := strings.LastIndexByte(rel, '/')
	if i < 0 {
		return ""
	}
	return rel[:i]
}
