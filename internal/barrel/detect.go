package barrel

import (
	"path/filepath"
	"regexp"

	"github.com/conneroisu/barrel/internal/config"
	"github.com/conneroisu/barrel/internal/source"
)

// Recognition bounds. Files outside them are assumed not to be barrels
// without reading them.
const (
	MaxRecognizedLines = 100
	MaxRecognizedSize  = 10 * 1024
)

var exportPattern = regexp.MustCompile(`^export '([^']+)';$`)

// IsBarrelText reports whether text is structurally a barrel: at least one
// meaningful line, and every one of the first MaxRecognizedLines meaningful
// lines is an export statement.
func IsBarrelText(text string) bool {
	lines := Normalize(text)
	if len(lines) == 0 {
		return false
	}
	if len(lines) > MaxRecognizedLines {
		lines = lines[:MaxRecognizedLines]
	}
	for _, line := range lines {
		if !exportPattern.MatchString(line) {
			return false
		}
	}
	return true
}

// ExportTargets returns the quoted paths of every export statement in text,
// in file order.
func ExportTargets(text string) []string {
	var targets []string
	for _, line := range Normalize(text) {
		if m := exportPattern.FindStringSubmatch(line); m != nil {
			targets = append(targets, m[1])
		}
	}
	return targets
}

// IsBarrelFile applies the recognition predicate to the file at path: it
// must carry the source extension, be non-empty and at most
// MaxRecognizedSize bytes, and its text must satisfy IsBarrelText.
func IsBarrelFile(src source.Source, path string, settings *config.Settings) (bool, error) {
	if !settings.HasSourceExtension(filepath.Base(path)) {
		return false, nil
	}

	entry, err := src.Stat(path)
	if err != nil {
		return false, err
	}
	if entry.IsDir || entry.Size == 0 || entry.Size > MaxRecognizedSize {
		return false, nil
	}

	text, err := src.ReadText(path)
	if err != nil {
		return false, err
	}
	return IsBarrelText(text), nil
}
