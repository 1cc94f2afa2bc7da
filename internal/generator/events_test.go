package generator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/barrel/internal/config"
	"github.com/conneroisu/barrel/internal/testutils"
)

func autoOn(c *config.BarrelConfig) {
	c.AutoGenerateOnChange = true
	c.IncludeHeader = false
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "created", EventCreated.String())
	assert.Equal(t, "deleted", EventDeleted.String())
	assert.Equal(t, "changed", EventChanged.String())
	assert.Equal(t, "moved", EventMoved.String())
	assert.Equal(t, "EventKind(9)", EventKind(9).String())
}

func TestEventDirs(t *testing.T) {
	e := Moved("/lib/x/a.dart", "/lib/y/a.dart")
	assert.Equal(t, "/lib/y", e.Dir())
	assert.Equal(t, "/lib/x", e.OldDir())
	assert.Empty(t, Created("/lib/x/a.dart").OldDir())
}

func TestRelevant(t *testing.T) {
	settings := testutils.Settings(t, nil)

	tests := []struct {
		name  string
		event Event
		want  bool
	}{
		{"source file", Created("/lib/a.dart"), true},
		{"other extension", Changed("/lib/a.txt"), false},
		{"private file", Deleted("/lib/_a.dart"), false},
		{"generated file", Changed("/lib/a.g.dart"), false},
		{"hidden file", Created("/lib/.a.dart"), false},
		{"move into eligible name", Moved("/lib/_a.dart", "/lib/a.dart"), true},
		{"move out of eligible name", Moved("/lib/a.dart", "/lib/a.txt"), true},
		{"move between ineligible names", Moved("/lib/_a.dart", "/lib/_b.dart"), false},
		{"directory removal", Deleted("/lib/models"), false},
		{"directory move", Moved("/lib/models", "/lib/entities"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Relevant(tt.event, settings))
		})
	}
}

func TestAffectedDirectories(t *testing.T) {
	t.Run("dedup in first-seen order", func(t *testing.T) {
		settings := testutils.Settings(t, nil)
		dirs := AffectedDirectories([]Event{
			Changed("/lib/b/one.dart"),
			Created("/lib/a/one.dart"),
			Changed("/lib/b/two.dart"),
			Changed("/lib/c/_private.dart"),
			Moved("/lib/a/three.dart", "/lib/d/three.dart"),
		}, settings)
		assert.Equal(t, []string{"/lib/b", "/lib/a", "/lib/d"}, dirs)
	})

	t.Run("ancestors up to the root when flattening", func(t *testing.T) {
		settings := testutils.Settings(t, func(c *config.BarrelConfig) { c.IncludeSubdirectories = true })
		dirs := AffectedDirectories([]Event{Created("/app/lib/models/deep/a.dart")}, settings, "/app", "/app/lib")
		assert.Equal(t, []string{"/app/lib/models/deep", "/app/lib/models", "/app/lib"}, dirs)
	})

	t.Run("no ancestors outside a root", func(t *testing.T) {
		settings := testutils.Settings(t, func(c *config.BarrelConfig) { c.IncludeSubdirectories = true })
		dirs := AffectedDirectories([]Event{Created("/other/x/a.dart")}, settings, "/app")
		assert.Equal(t, []string{"/other/x"}, dirs)
	})
}

func TestHandleEventsMoveRegeneratesEachOnce(t *testing.T) {
	g, src := setup(t, map[string]string{
		"/lib/x/a.dart": "",
		"/lib/x/b.dart": "",
		"/lib/y/c.dart": "",
	}, autoOn)
	ctx := context.Background()

	_, err := g.Generate(ctx, "/lib/x")
	require.NoError(t, err)
	_, err = g.Generate(ctx, "/lib/y")
	require.NoError(t, err)

	require.NoError(t, src.fs().Rename("/lib/x/a.dart", "/lib/y/a.dart"))

	events := []Event{
		Moved("/lib/x/a.dart", "/lib/y/a.dart"),
		Changed("/lib/y/a.dart"),
		Deleted("/lib/x/a.dart"),
	}
	results, err := g.HandleEvents(ctx, events, "/lib")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "/lib/y", results[0].Target)
	assert.Equal(t, "/lib/x", results[1].Target)

	assert.Equal(t, 2, src.count("/lib/x/x.dart"))
	assert.Equal(t, 2, src.count("/lib/y/y.dart"))
	assert.Equal(t, "export './b.dart';\n", testutils.ReadText(t, src, "/lib/x/x.dart"))
	assert.Equal(t, "export './a.dart';\nexport './c.dart';\n", testutils.ReadText(t, src, "/lib/y/y.dart"))
}

func TestHandleEventsSkipsFreshAndMissingBarrels(t *testing.T) {
	g, src := setup(t, map[string]string{
		"/lib/x/a.dart": "",
		"/lib/y/b.dart": "",
	}, autoOn)
	ctx := context.Background()

	_, err := g.Generate(ctx, "/lib/x")
	require.NoError(t, err)

	// x is fresh and y has no barrel
	results, err := g.HandleEvents(ctx, []Event{Changed("/lib/x/a.dart"), Created("/lib/y/b.dart")})
	require.NoError(t, err)
	assert.Empty(t, results)

	assert.Equal(t, 1, src.total())
	ok, err := src.Exists("/lib/y/y.dart")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHandleEventsDisabled(t *testing.T) {
	g, src := setup(t, map[string]string{
		"/lib/x/a.dart": "",
		"/lib/x/x.dart": "export './old.dart';\n",
	}, testutils.NoHeader)

	results, err := g.HandleEvents(context.Background(), []Event{Changed("/lib/x/a.dart")})
	require.NoError(t, err)
	assert.Nil(t, results)
	assert.Zero(t, src.total())

	// Enabling it through a new snapshot takes effect on the next cycle
	g.UpdateSettings(testutils.Settings(t, autoOn))
	results, err = g.HandleEvents(context.Background(), []Event{Changed("/lib/x/a.dart")})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "export './a.dart';\n", testutils.ReadText(t, src, "/lib/x/x.dart"))
}

func TestHandleEventsDeletedDirectory(t *testing.T) {
	g, src := setup(t, map[string]string{"/lib/x/": ""}, autoOn)

	results, err := g.HandleEvents(context.Background(), []Event{Deleted("/lib/gone/a.dart")})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, src.total())
}

func TestHandleEventsIgnoresDirectoryRemoval(t *testing.T) {
	g, src := setup(t, map[string]string{
		"/lib/a.dart":        "",
		"/lib/models/b.dart": "",
	}, func(c *config.BarrelConfig) {
		autoOn(c)
		c.IncludeSubdirectories = true
	})
	ctx := context.Background()

	_, err := g.Generate(ctx, "/lib")
	require.NoError(t, err)
	require.NoError(t, src.fs().RemoveAll("/lib/models"))

	// Only the directory itself is reported, so the flattened barrel keeps
	// the stale export until a file event or check --fix.
	results, err := g.HandleEvents(ctx, []Event{Deleted("/lib/models")}, "/lib")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, "export './a.dart';\nexport './models/b.dart';\n", testutils.ReadText(t, src, "/lib/lib.dart"))

	stale, err := g.NeedsRegeneration(ctx, "/lib/lib.dart")
	require.NoError(t, err)
	assert.True(t, stale)
}
