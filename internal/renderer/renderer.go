// Package renderer substitutes captured substrings into destination patterns.
package renderer

import (
	"regexp"
	"strconv"
	"strings"

	"mmv/internal/matcher"
)

// PlaceholderPrefix starts every positional placeholder, e.g. "#1".
const PlaceholderPrefix = "#"

var placeholderToken = regexp.MustCompile(`#(\d+)`)

// Token returns the placeholder text for the 1-based index i.
func Token(i int) string {
	return PlaceholderPrefix + strconv.Itoa(i)
}

// Render replaces the first remaining occurrence of #1, #2, ... #len(captures)
// with the corresponding capture. Each index is substituted at most once, and
// placeholders beyond the number of captures are left in the output as-is.
// Captures are inserted verbatim.
func Render(destination string, captures []string) (string, error) {
	if err := matcher.Validate(destination, matcher.Placeholder); err != nil {
		return "", err
	}

	rendered := destination
	for i, capture := range captures {
		rendered = strings.Replace(rendered, Token(i+1), capture, 1)
	}
	return rendered, nil
}

// Placeholders lists the placeholder indices found in the file name of the
// destination pattern, in textual order.
func Placeholders(destination string) []int {
	_, name := matcher.SplitPattern(destination)

	var indices []int
	for _, m := range placeholderToken.FindAllStringSubmatch(name, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		indices = append(indices, n)
	}
	return indices
}

// Unresolved returns the placeholder indices greater than the number of
// captures a source pattern can produce. Those stay literally in rendered paths.
func Unresolved(destination string, wildcards int) []int {
	var unresolved []int
	for _, n := range Placeholders(destination) {
		if n > wildcards || n == 0 {
			unresolved = append(unresolved, n)
		}
	}
	return unresolved
}
