// Package matcher compiles wildcard source patterns and extracts captures from paths.
package matcher

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"mmv/internal/mmverr"
)

// WildcardMarker matches any substring of the file name.
const WildcardMarker = "*"

// MarkerKind describes a kind of marker that is only allowed in the file name.
type MarkerKind struct {
	Name     string
	contains func(s string) bool
}

var (
	// Wildcard is the `*` marker of a source pattern.
	Wildcard = MarkerKind{
		Name:     "wildcards (*)",
		contains: func(s string) bool { return strings.Contains(s, WildcardMarker) },
	}

	// placeholderPattern is `#` followed by an index.
	placeholderPattern = regexp.MustCompile(`#\d+`)

	// Placeholder is the `#N` marker of a destination pattern.
	Placeholder = MarkerKind{
		Name:     "placeholders (#N)",
		contains: placeholderPattern.MatchString,
	}
)

// MatchResult associates a discovered path with the substrings bound to each wildcard.
type MatchResult struct {
	Path     string
	Captures []string
}

// Matcher is a compiled source pattern.
type Matcher struct {
	source    string
	re        *regexp.Regexp
	wildcards int
}

// SplitPattern splits a pattern at its final path separator. The returned
// directory keeps the trailing separator so that dir+name == pattern.
func SplitPattern(pattern string) (dir, name string) {
	i := strings.LastIndexFunc(pattern, isSeparator)
	if i < 0 {
		return "", pattern
	}
	return pattern[:i+1], pattern[i+1:]
}

func isSeparator(r rune) bool {
	return r == '/' || r == filepath.Separator
}

// Validate ensures markers of the given kind appear only in the final path segment.
func Validate(pattern string, kind MarkerKind) error {
	dir, _ := SplitPattern(pattern)
	if kind.contains(dir) {
		return mmverr.Newf(mmverr.ErrPath,
			"invalid pattern %q: %s may only appear in the file name", pattern, kind.Name).
			WithDetail("pattern", pattern).
			WithDetail("marker", kind.Name)
	}
	return nil
}

// Compile validates the source pattern and translates it into an anchored
// regular expression with one capturing group per wildcard.
func Compile(source string) (*Matcher, error) {
	if err := Validate(source, Wildcard); err != nil {
		return nil, err
	}

	// Literal runs are escaped before the groups are inserted.
	literals := strings.Split(source, WildcardMarker)
	for i, lit := range literals {
		literals[i] = regexp.QuoteMeta(lit)
	}
	expr := "^" + strings.Join(literals, "(.*)") + "$"

	return &Matcher{
		source:    source,
		re:        regexp.MustCompile(expr),
		wildcards: len(literals) - 1,
	}, nil
}

// Source returns the pattern the matcher was compiled from.
func (m *Matcher) Source() string {
	return m.source
}

// Expr returns the compiled regular expression.
func (m *Matcher) Expr() string {
	return m.re.String()
}

// Wildcards returns the number of wildcards in the source pattern.
func (m *Matcher) Wildcards() int {
	return m.wildcards
}

// Match applies the matcher to the whole path. Captures are returned in the
// left-to-right order of the wildcards.
func (m *Matcher) Match(path string) (*MatchResult, error) {
	groups := m.re.FindStringSubmatch(path)
	if groups == nil {
		return nil, mmverr.New(mmverr.ErrMatch,
			fmt.Sprintf("pattern %s could not match the path %s", m.source, path)).
			WithDetail("pattern", m.source).
			WithDetail("path", path)
	}

	captures := make([]string, len(groups)-1)
	copy(captures, groups[1:])
	return &MatchResult{Path: path, Captures: captures}, nil
}

// CompileAndMatch compiles source and matches it against path in one step.
func CompileAndMatch(source, path string) ([]string, error) {
	m, err := Compile(source)
	if err != nil {
		return nil, err
	}
	result, err := m.Match(path)
	if err != nil {
		return nil, err
	}
	return result.Captures, nil
}
