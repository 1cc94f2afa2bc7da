package barrel

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/barrel/internal/config"
	"github.com/conneroisu/barrel/internal/testutils"
)

func TestNormalize(t *testing.T) {
	content := `// Auto-generated barrel file
/* block
 * comment
 */

   export './a.dart';   
	export './b.dart';

`
	assert.Equal(t, []string{"export './a.dart';", "export './b.dart';"}, Normalize(content))
	assert.Empty(t, Normalize(""))
	assert.Empty(t, Normalize("// only a header\n\n"))
}

func TestEquivalent(t *testing.T) {
	assert.True(t, Equivalent("// header\n\nexport './a.dart';\n", "export './a.dart';"))
	assert.True(t, Equivalent("", "// nothing\n"))
	assert.False(t, Equivalent("export './a.dart';\nexport './b.dart';\n", "export './b.dart';\nexport './a.dart';\n"))
}

func TestIsStale(t *testing.T) {
	settings := config.DefaultSettings()
	current := Build(units("/lib/a.dart", "/lib/b.dart"), "/lib", settings)

	tests := []struct {
		name     string
		existing string
		units    []string
		expected bool
	}{
		{name: "fresh", existing: current, units: []string{"/lib/a.dart", "/lib/b.dart"}, expected: false},
		{name: "header edited", existing: strings.Replace(current, "Auto-generated", "Hand-edited", 1), units: []string{"/lib/a.dart", "/lib/b.dart"}, expected: false},
		{name: "header removed", existing: "export './a.dart';\nexport './b.dart';", units: []string{"/lib/a.dart", "/lib/b.dart"}, expected: false},
		{name: "unit added", existing: current, units: []string{"/lib/a.dart", "/lib/b.dart", "/lib/c.dart"}, expected: true},
		{name: "unit removed", existing: current, units: []string{"/lib/a.dart"}, expected: true},
		{name: "unit renamed", existing: current, units: []string{"/lib/a.dart", "/lib/c.dart"}, expected: true},
		{name: "barrel in the unit list is ignored", existing: current, units: []string{"/lib/a.dart", "/lib/b.dart", "/lib/lib.dart"}, expected: false},
		{name: "private unit does not count", existing: current, units: []string{"/lib/a.dart", "/lib/b.dart", "/lib/_c.dart"}, expected: false},
		{name: "empty barrel for empty set", existing: "", units: nil, expected: false},
		{name: "reordered", existing: "export './b.dart';\nexport './a.dart';\n", units: []string{"/lib/a.dart", "/lib/b.dart"}, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsStale(tt.existing, "/lib/lib.dart", units(tt.units...), "/lib", settings))
		})
	}
}

func TestIsBarrelText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected bool
	}{
		{name: "generated barrel", text: "// header\n\nexport './a.dart';\nexport './b/c.dart';\n", expected: true},
		{name: "package export", text: "export 'package:app/app.dart';\n", expected: true},
		{name: "parent export", text: "export '../shared.dart';\n", expected: true},
		{name: "block header", text: "/*\n * generated\n */\nexport './a.dart';\n", expected: true},
		{name: "empty", text: "", expected: false},
		{name: "only comments", text: "// nothing here\n", expected: false},
		{name: "class declaration", text: "export './a.dart';\nclass A {}\n", expected: false},
		{name: "export with show", text: "export './a.dart' show A;\n", expected: false},
		{name: "double quotes", text: "export \"./a.dart\";\n", expected: false},
		{name: "trailing comment", text: "export './a.dart'; // a\n", expected: false},
		{name: "import", text: "import './a.dart';\n", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsBarrelText(tt.text))
		})
	}
}

func TestIsBarrelTextLineCap(t *testing.T) {
	var b strings.Builder
	for range MaxRecognizedLines {
		b.WriteString("export './a.dart';\n")
	}
	b.WriteString("class Late {}\n")
	assert.True(t, IsBarrelText(b.String()))
}

func TestExportTargets(t *testing.T) {
	text := "// h\nexport './a.dart';\nexport 'package:x/y.dart';\n"
	assert.Equal(t, []string{"./a.dart", "package:x/y.dart"}, ExportTargets(text))
}

func TestIsBarrelFile(t *testing.T) {
	settings := config.DefaultSettings()
	src := testutils.MemTree(t, map[string]string{
		"/lib/lib.dart":    "export './a.dart';\n",
		"/lib/a.dart":      "class A {}\n",
		"/lib/empty.dart":  "",
		"/lib/big.dart":    strings.Repeat("export './a.dart';\n", MaxRecognizedSize/10),
		"/lib/exports.txt": "export './a.dart';\n",
		"/lib/dir.dart/":   "",
	})

	tests := []struct {
		path     string
		expected bool
	}{
		{"/lib/lib.dart", true},
		{"/lib/a.dart", false},
		{"/lib/empty.dart", false},
		{"/lib/big.dart", false},
		{"/lib/exports.txt", false},
		{"/lib/dir.dart", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			ok, err := IsBarrelFile(src, tt.path, settings)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
		})
	}

	_, err := IsBarrelFile(src, "/lib/missing.dart", settings)
	assert.Error(t, err)
}
