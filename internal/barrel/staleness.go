package barrel

import (
	"slices"
	"strings"

	"github.com/conneroisu/barrel/internal/config"
	"github.com/conneroisu/barrel/internal/types"
)

// Normalize reduces barrel text to the lines that carry meaning: each line
// trimmed, blank lines and comment lines dropped. Header and group comments
// therefore never make a barrel stale.
func Normalize(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || isCommentLine(line) {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// Equivalent reports whether a and b normalize to the same line sequence.
func Equivalent(a, b string) bool {
	return slices.Equal(Normalize(a), Normalize(b))
}

// IsStale reports whether existing, the current text of the barrel at
// barrelPath, differs from what units would produce.
func IsStale(existing, barrelPath string, units []types.SourceUnit, root string, settings *config.Settings) bool {
	expected := BuildFor(units, root, barrelPath, settings)
	return !Equivalent(existing, expected)
}

func isCommentLine(line string) bool {
	return strings.HasPrefix(line, "//") ||
		strings.HasPrefix(line, "/*") ||
		strings.HasPrefix(line, "*")
}
