package ignore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileSkipsNonRules(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		wantLen  int
	}{
		{name: "nil input", patterns: nil, wantLen: 0},
		{name: "blank lines", patterns: []string{"", "   ", "\t"}, wantLen: 0},
		{name: "comments", patterns: []string{"# node stuff", "  # indented"}, wantLen: 0},
		{name: "bare negation", patterns: []string{"!"}, wantLen: 0},
		{name: "bare slash", patterns: []string{"/"}, wantLen: 0},
		{name: "mixed", patterns: []string{"# header", "", "node_modules/", "!keep"}, wantLen: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantLen, Compile(tt.patterns).Len())
		})
	}
}

func TestEmptyRulesNeverIgnore(t *testing.T) {
	for _, rules := range []*Rules{Empty(), Compile(nil), Compile([]string{"# only comments"})} {
		assert.False(t, rules.ShouldIgnore("/root", "/root/anything", true))
		assert.False(t, rules.ShouldIgnore("/root", "/root/a/b/c", false))
	}
}

func TestShouldIgnore(t *testing.T) {
	tests := []struct {
		name      string
		patterns  []string
		candidate string
		isDir     bool
		want      bool
	}{
		{
			name:      "plain name matches anywhere",
			patterns:  []string{"node_modules"},
			candidate: "/root/app/node_modules",
			isDir:     true,
			want:      true,
		},
		{
			name:      "anchored matches only at top level",
			patterns:  []string{"/build/"},
			candidate: "/root/build",
			isDir:     true,
			want:      true,
		},
		{
			name:      "anchored does not match nested",
			patterns:  []string{"/build/"},
			candidate: "/root/src/build",
			isDir:     true,
			want:      false,
		},
		{
			name:      "unanchored matches at any depth",
			patterns:  []string{"build/"},
			candidate: "/root/src/build",
			isDir:     true,
			want:      true,
		},
		{
			name:      "double wildcard prefix equals unanchored",
			patterns:  []string{"**/build/"},
			candidate: "/root/src/build",
			isDir:     true,
			want:      true,
		},
		{
			name:      "directory-only rule skips files",
			patterns:  []string{"build/"},
			candidate: "/root/build",
			isDir:     false,
			want:      false,
		},
		{
			name:      "whole-path match, not substring",
			patterns:  []string{"/src"},
			candidate: "/root/src2",
			isDir:     true,
			want:      false,
		},
		{
			name:      "star stays within a segment",
			patterns:  []string{"/src*go"},
			candidate: "/root/src/go",
			isDir:     true,
			want:      false,
		},
		{
			name:      "question mark matches one character",
			patterns:  []string{"v?"},
			candidate: "/root/v1",
			isDir:     true,
			want:      true,
		},
		{
			name:      "question mark never matches separator",
			patterns:  []string{"/a?b"},
			candidate: "/root/a/b",
			isDir:     true,
			want:      false,
		},
		{
			name:      "double wildcard spans segments",
			patterns:  []string{"/src/**/gen"},
			candidate: "/root/src/a/b/gen",
			isDir:     true,
			want:      true,
		},
		{
			name:      "double wildcard matches zero segments",
			patterns:  []string{"/src/**/gen"},
			candidate: "/root/src/gen",
			isDir:     true,
			want:      true,
		},
		{
			name:      "regex metacharacters are literal",
			patterns:  []string{"a.b"},
			candidate: "/root/aXb",
			isDir:     true,
			want:      false,
		},
		{
			name:      "root itself never ignored",
			patterns:  []string{"**"},
			candidate: "/root",
			isDir:     true,
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := Compile(tt.patterns)
			assert.Equal(t, tt.want, rules.ShouldIgnore("/root", tt.candidate, tt.isDir))
		})
	}
}

func TestCandidateOutsideRootNeverIgnored(t *testing.T) {
	rules := Compile([]string{"**"})
	assert.False(t, rules.ShouldIgnore("/root", "/elsewhere/dir", true))
	assert.False(t, rules.ShouldIgnore("/root/sub", "/root", true))
}

func TestIgnoredDirectoryTakesSubtree(t *testing.T) {
	rules := Compile([]string{"node_modules/"})

	assert.True(t, rules.ShouldIgnore("/root", "/root/app/node_modules", true))
	assert.True(t, rules.ShouldIgnore("/root", "/root/app/node_modules/left-pad", true))
	assert.True(t, rules.ShouldIgnore("/root", "/root/app/node_modules/left-pad/src", true))
	assert.True(t, rules.ShouldIgnore("/root", "/root/app/node_modules/left-pad/index.js", false))
	assert.False(t, rules.ShouldIgnore("/root", "/root/app/src", true))
}

func TestReincludedDirectoryKeepsSubtree(t *testing.T) {
	// The nearest named ancestor decides: a re-included directory keeps
	// its descendants even when an outer ancestor is ignored.
	rules := Compile([]string{"build/", "!build/keep"})

	assert.True(t, rules.ShouldIgnore("/root", "/root/build/out", true))
	assert.False(t, rules.ShouldIgnore("/root", "/root/build/keep", true))
	assert.False(t, rules.ShouldIgnore("/root", "/root/build/keep/sub", true))
}

func TestNegationOverridesEarlierMatch(t *testing.T) {
	rules := Compile([]string{"docs/", "!docs/.keep"})

	assert.True(t, rules.ShouldIgnore("/root", "/root/docs/x", true))
	assert.False(t, rules.ShouldIgnore("/root", "/root/docs/.keep", true))
	assert.True(t, rules.ShouldIgnore("/root", "/root/docs", true))
}

func TestLastMatchingRuleWins(t *testing.T) {
	// Re-ignored after a negation: file order decides.
	rules := Compile([]string{"tmp/", "!tmp/cache", "tmp/cache/"})
	assert.True(t, rules.ShouldIgnore("/root", "/root/tmp/cache", true))

	// Negation does not create matches of its own.
	rules = Compile([]string{"!never-ignored"})
	assert.False(t, rules.ShouldIgnore("/root", "/root/never-ignored", true))
	assert.False(t, rules.ShouldIgnore("/root", "/root/other", true))
}

func TestCompileRuleFlags(t *testing.T) {
	rule, ok := compileRule("!/vendor/")
	require.True(t, ok)
	assert.True(t, rule.Negated)
	assert.True(t, rule.DirectoryOnly)
	assert.True(t, rule.Anchored)

	rule, ok = compileRule("cache")
	require.True(t, ok)
	assert.False(t, rule.Negated)
	assert.False(t, rule.DirectoryOnly)
	assert.False(t, rule.Anchored)
}

func TestGlobToRegexp(t *testing.T) {
	tests := []struct {
		glob string
		want string
	}{
		{"a", "^a$"},
		{"*.log", "^[^/]*\\.log$"},
		{"**/build", "^(?:.*/)?build$"},
		{"src/**", "^src/.*$"},
		{"a?c", "^a[^/]c$"},
		{"a+b(c)", "^a\\+b\\(c\\)$"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, globToRegexp(tt.glob), "glob %q", tt.glob)
	}
}
