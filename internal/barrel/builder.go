// Package barrel builds, compares and recognizes barrel file text.
//
// A barrel is a list of export statements, one per line:
//
//	// Auto-generated barrel file
//
//	export './models/user.dart';
//	export './widgets/button.dart';
//
// Everything in this package is pure: no function here touches the file
// system, so the same units, root and settings always produce the same
// bytes.
package barrel

import (
	"path"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/conneroisu/barrel/internal/config"
	"github.com/conneroisu/barrel/internal/types"
)

// export is one line of a barrel before formatting.
type export struct {
	// rel is the forward-slash path of the unit relative to the barrel root,
	// byte for byte as it is stored on disk
	rel string
	// key is rel in NFC, used only for ordering
	key string
}

func (e export) statement() string {
	target := e.rel
	if !strings.HasPrefix(target, "../") {
		target = "./" + target
	}
	return "export '" + target + "';"
}

func (e export) group() string {
	return path.Dir(e.rel)
}

// Build returns the canonical barrel text for units aggregated at root,
// excluding the barrel that the naming scheme resolves for root.
func Build(units []types.SourceUnit, root string, settings *config.Settings) string {
	return BuildFor(units, root, FilePath(root, settings), settings)
}

// BuildFor returns the canonical barrel text for a barrel at barrelPath.
// The barrel itself and private units are never exported. An empty export
// set yields the empty string, header included.
func BuildFor(units []types.SourceUnit, root, barrelPath string, settings *config.Settings) string {
	exports := collectExports(units, root, barrelPath)
	if len(exports) == 0 {
		return ""
	}

	if settings.SortExports {
		sortExports(exports)
	}

	var b strings.Builder
	if settings.IncludeHeader {
		writeHeader(&b, settings.HeaderComment)
	}

	lastGroup := ""
	for i, e := range exports {
		if settings.GroupByDirectory {
			if g := e.group(); i == 0 || g != lastGroup {
				if i > 0 {
					b.WriteString("\n")
				}
				b.WriteString("// " + g + "\n")
				lastGroup = g
			}
		}
		b.WriteString(e.statement())
		b.WriteString("\n")
	}

	return b.String()
}

// Exports returns the statement lines BuildFor would emit, without header
// or group comments.
func Exports(units []types.SourceUnit, root, barrelPath string, settings *config.Settings) []string {
	exports := collectExports(units, root, barrelPath)
	if settings.SortExports {
		sortExports(exports)
	}
	lines := make([]string, len(exports))
	for i, e := range exports {
		lines[i] = e.statement()
	}
	return lines
}

func collectExports(units []types.SourceUnit, root, barrelPath string) []export {
	root = filepath.Clean(root)
	barrelPath = filepath.Clean(barrelPath)

	seen := make(map[string]struct{}, len(units))
	exports := make([]export, 0, len(units))
	for _, u := range units {
		if u.IsPrivate || filepath.Clean(u.Path) == barrelPath {
			continue
		}

		rel, err := u.RelativeTo(root)
		if err != nil || rel == "." {
			continue
		}
		if _, dup := seen[rel]; dup {
			continue
		}
		seen[rel] = struct{}{}
		exports = append(exports, export{rel: rel, key: norm.NFC.String(rel)})
	}
	return exports
}

// sortExports orders exports by their NFC form so composed and decomposed
// names sort alike. Names equal under NFC fall back to their raw bytes.
func sortExports(exports []export) {
	sort.SliceStable(exports, func(i, j int) bool {
		if exports[i].key != exports[j].key {
			return exports[i].key < exports[j].key
		}
		return exports[i].rel < exports[j].rel
	})
}

func writeHeader(b *strings.Builder, header string) {
	header = strings.TrimSpace(header)
	if header == "" {
		return
	}
	for _, line := range strings.Split(header, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			line = "//"
		case !isCommentLine(line):
			line = "// " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
}
