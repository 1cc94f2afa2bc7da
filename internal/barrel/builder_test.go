package barrel

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/conneroisu/barrel/internal/config"
	"github.com/conneroisu/barrel/internal/testutils"
	"github.com/conneroisu/barrel/internal/types"
)

func units(paths ...string) []types.SourceUnit {
	out := make([]types.SourceUnit, 0, len(paths))
	for _, p := range paths {
		out = append(out, types.NewSourceUnit(p))
	}
	return out
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name     string
		units    []types.SourceUnit
		root     string
		mutate   func(c *config.BarrelConfig)
		expected string
	}{
		{
			name:     "models scenario",
			units:    units("/lib/models/user.dart", "/lib/models/_private.dart"),
			root:     "/lib/models",
			mutate:   testutils.NoHeader,
			expected: "export './user.dart';\n",
		},
		{
			name:  "header is prepended",
			units: units("/lib/b.dart", "/lib/a.dart"),
			root:  "/lib",
			expected: "// Auto-generated barrel file\n\n" +
				"export './a.dart';\n" +
				"export './b.dart';\n",
		},
		{
			name:  "header without comment marker",
			units: units("/lib/a.dart"),
			root:  "/lib",
			mutate: func(c *config.BarrelConfig) {
				c.HeaderComment = "GENERATED\n\nDo not edit"
			},
			expected: "// GENERATED\n//\n// Do not edit\n\nexport './a.dart';\n",
		},
		{
			name:     "empty export set has no header",
			units:    units("/lib/_a.dart", "/lib/lib.dart"),
			root:     "/lib",
			expected: "",
		},
		{
			name:     "no units",
			root:     "/lib",
			expected: "",
		},
		{
			name:     "barrel itself is excluded",
			units:    units("/lib/lib.dart", "/lib/a.dart"),
			root:     "/lib",
			mutate:   testutils.NoHeader,
			expected: "export './a.dart';\n",
		},
		{
			name:     "nested paths use forward slashes",
			units:    units("/lib/widgets/button.dart", "/lib/models/user.dart", "/lib/app.dart"),
			root:     "/lib",
			mutate:   testutils.NoHeader,
			expected: "export './app.dart';\nexport './models/user.dart';\nexport './widgets/button.dart';\n",
		},
		{
			name:  "unsorted keeps scan order",
			units: units("/lib/z.dart", "/lib/a.dart", "/lib/m.dart"),
			root:  "/lib",
			mutate: func(c *config.BarrelConfig) {
				c.IncludeHeader = false
				c.SortExports = false
			},
			expected: "export './z.dart';\nexport './a.dart';\nexport './m.dart';\n",
		},
		{
			name:     "duplicates collapse",
			units:    units("/lib/a.dart", "/lib/a.dart"),
			root:     "/lib",
			mutate:   testutils.NoHeader,
			expected: "export './a.dart';\n",
		},
		{
			name:     "units outside the root",
			units:    units("/shared/util.dart", "/lib/a.dart"),
			root:     "/lib",
			mutate:   testutils.NoHeader,
			expected: "export '../shared/util.dart';\nexport './a.dart';\n",
		},
		{
			name:  "grouped by directory",
			units: units("/lib/models/user.dart", "/lib/models/order.dart", "/lib/widgets/card.dart", "/lib/app.dart"),
			root:  "/lib",
			mutate: func(c *config.BarrelConfig) {
				c.IncludeHeader = false
				c.GroupByDirectory = true
			},
			expected: "// .\nexport './app.dart';\n" +
				"\n// models\nexport './models/order.dart';\nexport './models/user.dart';\n" +
				"\n// widgets\nexport './widgets/card.dart';\n",
		},
		{
			name:  "index naming excludes index",
			units: units("/lib/index.dart", "/lib/lib.dart"),
			root:  "/lib",
			mutate: func(c *config.BarrelConfig) {
				c.IncludeHeader = false
				c.NamingScheme = "index"
			},
			expected: "export './lib.dart';\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := testutils.Settings(t, tt.mutate)
			assert.Equal(t, tt.expected, Build(tt.units, tt.root, settings))
		})
	}
}

func TestBuildKeepsUnicodeNamesAsStored(t *testing.T) {
	settings := testutils.Settings(t, testutils.NoHeader)
	decomposed := "/lib/cafe\u0301.dart"
	composed := "/lib/caf\u00e9.dart"

	assert.Equal(t, "export './cafe\u0301.dart';\n", Build(units(decomposed), "/lib", settings))
	assert.Equal(t, "export './caf\u00e9.dart';\n", Build(units(composed), "/lib", settings))

	// Both spellings exist as distinct files, so both are exported, ordered
	// by raw bytes since they are equal under NFC.
	want := "export './cafe\u0301.dart';\nexport './caf\u00e9.dart';\n"
	assert.Equal(t, want, Build(units(decomposed, composed), "/lib", settings))
	assert.Equal(t, want, Build(units(composed, decomposed), "/lib", settings))
}

func TestBuildSortsDecomposedNamesByComposedForm(t *testing.T) {
	settings := testutils.Settings(t, testutils.NoHeader)
	// "e\u0301" sorts before "z" as raw bytes but after it once composed
	got := Build(units("/lib/e\u0301.dart", "/lib/z.dart"), "/lib", settings)
	assert.Equal(t, "export './z.dart';\nexport './e\u0301.dart';\n", got)
}

func TestBuildForCustomName(t *testing.T) {
	settings := testutils.Settings(t, testutils.NoHeader)
	got := BuildFor(units("/lib/a.dart", "/lib/all.dart", "/lib/lib.dart"), "/lib", "/lib/all.dart", settings)
	assert.Equal(t, "export './a.dart';\nexport './lib.dart';\n", got)
}

func TestExports(t *testing.T) {
	settings := config.DefaultSettings()
	lines := Exports(units("/lib/b.dart", "/lib/_c.dart", "/lib/a.dart"), "/lib", "/lib/lib.dart", settings)
	assert.Equal(t, []string{"export './a.dart';", "export './b.dart';"}, lines)
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name     string
		dir      string
		mutate   func(c *config.BarrelConfig)
		expected string
	}{
		{name: "folder", dir: "/app/lib/models", expected: "models.dart"},
		{name: "folder with trailing slash", dir: "/app/lib/models/", expected: "models.dart"},
		{name: "index", dir: "/app/lib/models", mutate: func(c *config.BarrelConfig) { c.NamingScheme = "index" }, expected: "index.dart"},
		{
			name: "custom",
			dir:  "/app/lib/models",
			mutate: func(c *config.BarrelConfig) {
				c.NamingScheme = "custom"
				c.CustomName = "exports.dart"
			},
			expected: "exports.dart",
		},
		{name: "other extension", dir: "/src/ui", mutate: func(c *config.BarrelConfig) { c.SourceExtension = ".ts" }, expected: "ui.ts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := testutils.Settings(t, tt.mutate)
			assert.Equal(t, tt.expected, FileName(tt.dir, settings))
		})
	}
}
