// Package ignore compiles gitignore-style pattern lines into an ordered
// rule set and answers should-ignore queries for paths under an index
// root. Supported syntax:
//   - blank lines and comments starting with '#'
//   - negation with leading '!'
//   - trailing '/' marks a directory-only rule
//   - leading '/' anchors the pattern to the root
//   - wildcards '*', '**', '?'
package ignore

import (
	"regexp"
	"strings"
)

// Rule is one compiled ignore pattern. Rules are immutable once compiled
// and evaluated in file order; the last matching rule wins.
type Rule struct {
	pattern       *regexp.Regexp
	Negated       bool
	DirectoryOnly bool
	Anchored      bool
}

// Matches reports whether the rule matches the slash-separated path
// relative to the root.
func (r Rule) Matches(relativePath string) bool {
	return r.pattern.MatchString(relativePath)
}

// compileRule turns one raw pattern line into a Rule. It returns ok=false
// for lines that produce no rule: blanks, comments, and lines emptied by
// marker stripping. Malformed input is dropped, never fatal.
func compileRule(rawLine string) (Rule, bool) {
	line := strings.TrimSpace(rawLine)
	if line == "" || strings.HasPrefix(line, "#") {
		return Rule{}, false
	}

	var rule Rule
	if strings.HasPrefix(line, "!") {
		rule.Negated = true
		line = strings.TrimSpace(line[1:])
	}
	if line == "" {
		return Rule{}, false
	}

	if strings.HasSuffix(line, "/") {
		rule.DirectoryOnly = true
		line = line[:len(line)-1]
	}
	if line == "" {
		return Rule{}, false
	}

	if strings.HasPrefix(line, "/") {
		rule.Anchored = true
		line = line[1:]
	}

	line = strings.ReplaceAll(line, "\\", "/")
	if line == "" {
		return Rule{}, false
	}

	// Unanchored patterns match at any depth.
	if !rule.Anchored && !strings.HasPrefix(line, "**/") {
		line = "**/" + line
	}

	re, err := regexp.Compile(globToRegexp(line))
	if err != nil {
		return Rule{}, false
	}
	rule.pattern = re
	return rule, true
}

// globToRegexp translates a glob into a path-segment-aware regexp matching
// the entire relative path: '?' matches one non-separator character, '*'
// any run of non-separator characters, '**/' zero or more whole path
// segments, and a bare '**' anything at all.
func globToRegexp(glob string) string {
	var sb strings.Builder
	sb.WriteByte('^')
	for i := 0; i < len(glob); {
		c := glob[i]
		switch c {
		case '*':
			if i+1 < len(glob) && glob[i+1] == '*' {
				i += 2
				if i < len(glob) && glob[i] == '/' {
					sb.WriteString("(?:.*/)?")
					i++
				} else {
					sb.WriteString(".*")
				}
			} else {
				sb.WriteString("[^/]*")
				i++
			}
		case '?':
			sb.WriteString("[^/]")
			i++
		case '.', '(', ')', '+', '|', '^', '$', '{', '}', '[', ']', '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
			i++
		default:
			sb.WriteByte(c)
			i++
		}
	}
	sb.WriteByte('$')
	return sb.String()
}
