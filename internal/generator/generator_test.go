package generator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/barrel/internal/config"
	berrors "github.com/conneroisu/barrel/internal/errors"
	"github.com/conneroisu/barrel/internal/source"
	"github.com/conneroisu/barrel/internal/testutils"
	"github.com/conneroisu/barrel/internal/types"
)

// recordingSource counts writes per path and can be told to fail them.
type recordingSource struct {
	source.Source

	mu     sync.Mutex
	writes map[string]int
	fail   map[string]bool
}

func newRecordingSource(src source.Source) *recordingSource {
	return &recordingSource{Source: src, writes: map[string]int{}, fail: map[string]bool{}}
}

func (r *recordingSource) record(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes[path]++
	if r.fail[path] {
		return berrors.ErrWriteFailed(path, errors.New("disk full"))
	}
	return nil
}

func (r *recordingSource) CreateFile(path, content string) error {
	if err := r.record(path); err != nil {
		return err
	}
	return r.Source.CreateFile(path, content)
}

func (r *recordingSource) ReplaceText(path, content string) error {
	if err := r.record(path); err != nil {
		return err
	}
	return r.Source.ReplaceText(path, content)
}

func (r *recordingSource) fs() afero.Fs {
	return r.Source.(*source.FS).Fs()
}

func (r *recordingSource) count(path string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes[path]
}

func (r *recordingSource) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.writes {
		n += c
	}
	return n
}

func setup(t *testing.T, files map[string]string, mutate func(c *config.BarrelConfig)) (*Generator, *recordingSource) {
	t.Helper()
	src := newRecordingSource(testutils.MemTree(t, files))
	return New(src, testutils.Settings(t, mutate)), src
}

func TestGenerateModelsScenario(t *testing.T) {
	g, src := setup(t, map[string]string{
		"/lib/models/user.dart":     "class User {}",
		"/lib/models/_private.dart": "class _P {}",
		"/lib/models/order.g.dart":  "part of 'order.dart';",
	}, testutils.NoHeader)

	file, err := g.Generate(context.Background(), "/lib/models")
	require.NoError(t, err)
	require.NotNil(t, file)

	assert.Equal(t, "/lib/models/models.dart", file.Path)
	assert.Equal(t, "/lib/models", file.Directory)
	assert.Equal(t, "models.dart", file.Name)
	assert.True(t, file.Created)
	assert.Equal(t, "export './user.dart';\n", file.Content)
	assert.Equal(t, "export './user.dart';\n", testutils.ReadText(t, src, "/lib/models/models.dart"))
}

func TestGenerateEmptyDirectory(t *testing.T) {
	g, src := setup(t, map[string]string{
		"/lib/empty/":          "",
		"/lib/gen/a.g.dart":    "",
		"/lib/private/_a.dart": "",
	}, nil)

	for _, dir := range []string{"/lib/empty", "/lib/gen", "/lib/private"} {
		file, err := g.Generate(context.Background(), dir)
		require.NoError(t, err, dir)
		assert.Nil(t, file, dir)
	}
	assert.Zero(t, src.total())

	ok, err := src.Exists("/lib/empty/empty.dart")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGenerateMissingDirectory(t *testing.T) {
	g, _ := setup(t, nil, nil)
	_, err := g.Generate(context.Background(), "/nope")
	require.Error(t, err)
	assert.True(t, berrors.IsNotFound(err))
}

func TestGenerateIncludeSubdirectories(t *testing.T) {
	files := map[string]string{
		"/lib/app.dart":               "",
		"/lib/models/user.dart":       "",
		"/lib/models/models.dart":     "export './user.dart';\n",
		"/lib/widgets/deep/card.dart": "",
	}

	t.Run("direct children only", func(t *testing.T) {
		g, _ := setup(t, files, testutils.NoHeader)
		file, err := g.Generate(context.Background(), "/lib")
		require.NoError(t, err)
		assert.Equal(t, "export './app.dart';\n", file.Content)
	})

	t.Run("flattened subtree", func(t *testing.T) {
		g, _ := setup(t, files, func(c *config.BarrelConfig) {
			c.IncludeHeader = false
			c.IncludeSubdirectories = true
		})
		file, err := g.Generate(context.Background(), "/lib")
		require.NoError(t, err)
		assert.Equal(t,
			"export './app.dart';\nexport './models/user.dart';\nexport './widgets/deep/card.dart';\n",
			file.Content)
	})
}

func TestGenerateReplacesExisting(t *testing.T) {
	g, src := setup(t, map[string]string{
		"/lib/a.dart":   "",
		"/lib/lib.dart": "export './old.dart';\n",
	}, testutils.NoHeader)

	file, err := g.Generate(context.Background(), "/lib")
	require.NoError(t, err)
	assert.False(t, file.Created)
	assert.Equal(t, "export './a.dart';\n", testutils.ReadText(t, src, "/lib/lib.dart"))
	assert.Equal(t, 1, src.count("/lib/lib.dart"))
}

func TestGenerateIsIdempotent(t *testing.T) {
	g, src := setup(t, map[string]string{
		"/lib/models/user.dart":  "",
		"/lib/models/order.dart": "",
	}, nil)
	ctx := context.Background()

	first, err := g.Generate(ctx, "/lib/models")
	require.NoError(t, err)

	stale, err := g.NeedsRegeneration(ctx, first.Path)
	require.NoError(t, err)
	assert.False(t, stale)

	second, err := g.Generate(ctx, "/lib/models")
	require.NoError(t, err)
	assert.Equal(t, first.Content, second.Content)
	assert.Equal(t, first.Content, testutils.ReadText(t, src, first.Path))
}

func TestStalenessSymmetry(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(t *testing.T, src source.Source)
	}{
		{
			name: "unit added",
			mutate: func(t *testing.T, src source.Source) {
				require.NoError(t, src.CreateFile("/lib/models/post.dart", ""))
			},
		},
		{
			name: "unit removed",
			mutate: func(t *testing.T, src source.Source) {
				require.NoError(t, src.(*recordingSource).fs().Remove("/lib/models/order.dart"))
			},
		},
		{
			name: "unit renamed",
			mutate: func(t *testing.T, src source.Source) {
				require.NoError(t, src.(*recordingSource).fs().Rename("/lib/models/order.dart", "/lib/models/purchase.dart"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, src := setup(t, map[string]string{
				"/lib/models/user.dart":  "",
				"/lib/models/order.dart": "",
			}, nil)
			ctx := context.Background()

			file, err := g.Generate(ctx, "/lib/models")
			require.NoError(t, err)

			stale, err := g.NeedsRegeneration(ctx, file.Path)
			require.NoError(t, err)
			require.False(t, stale)

			tt.mutate(t, src)

			stale, err = g.NeedsRegeneration(ctx, file.Path)
			require.NoError(t, err)
			assert.True(t, stale)

			_, err = g.RegenerateForFile(ctx, file.Path)
			require.NoError(t, err)

			stale, err = g.NeedsRegeneration(ctx, file.Path)
			require.NoError(t, err)
			assert.False(t, stale)
		})
	}
}

func TestPrivateAndGeneratedChangesKeepBarrelFresh(t *testing.T) {
	g, src := setup(t, map[string]string{"/lib/a.dart": ""}, nil)
	ctx := context.Background()

	file, err := g.Generate(ctx, "/lib")
	require.NoError(t, err)

	require.NoError(t, src.CreateFile("/lib/_helper.dart", ""))
	require.NoError(t, src.CreateFile("/lib/a.g.dart", ""))
	require.NoError(t, src.CreateFile("/lib/.hidden.dart", ""))

	stale, err := g.NeedsRegeneration(ctx, file.Path)
	require.NoError(t, err)
	assert.False(t, stale)
}

func TestNeedsRegenerationMissing(t *testing.T) {
	g, _ := setup(t, map[string]string{"/lib/a.dart": ""}, nil)
	ctx := context.Background()

	stale, err := g.NeedsRegeneration(ctx, "/gone/gone.dart")
	require.NoError(t, err)
	assert.False(t, stale)

	stale, err = g.NeedsRegeneration(ctx, "/lib/lib.dart")
	require.NoError(t, err)
	assert.False(t, stale)

	_, err = g.NeedsRegeneration(ctx, "")
	assert.Error(t, err)
}

func TestRegenerateForFile(t *testing.T) {
	t.Run("overwrites even when fresh", func(t *testing.T) {
		g, src := setup(t, map[string]string{"/lib/a.dart": ""}, nil)
		ctx := context.Background()

		file, err := g.Generate(ctx, "/lib")
		require.NoError(t, err)

		again, err := g.RegenerateForFile(ctx, file.Path)
		require.NoError(t, err)
		require.NotNil(t, again)
		assert.False(t, again.Created)
		assert.Equal(t, 2, src.count("/lib/lib.dart"))
	})

	t.Run("keeps the barrel's own name", func(t *testing.T) {
		g, src := setup(t, map[string]string{
			"/lib/a.dart":   "",
			"/lib/all.dart": "export './stale.dart';\n",
		}, testutils.NoHeader)

		file, err := g.RegenerateForFile(context.Background(), "/lib/all.dart")
		require.NoError(t, err)
		assert.Equal(t, "/lib/all.dart", file.Path)
		assert.Equal(t, "export './a.dart';\n", testutils.ReadText(t, src, "/lib/all.dart"))
	})

	t.Run("empty export set writes empty content", func(t *testing.T) {
		g, src := setup(t, map[string]string{
			"/lib/lib.dart":   "export './gone.dart';\n",
			"/lib/_a.dart":    "",
			"/lib/b.g.dart":   "",
			"/lib/sub/c.dart": "",
		}, nil)

		file, err := g.RegenerateForFile(context.Background(), "/lib/lib.dart")
		require.NoError(t, err)
		require.NotNil(t, file)
		assert.Equal(t, "", testutils.ReadText(t, src, "/lib/lib.dart"))
	})

	t.Run("missing containing directory is a no-op", func(t *testing.T) {
		g, src := setup(t, nil, nil)
		file, err := g.RegenerateForFile(context.Background(), "/deleted/deleted.dart")
		require.NoError(t, err)
		assert.Nil(t, file)
		assert.Zero(t, src.total())
	})

	t.Run("deleted barrel is not recreated", func(t *testing.T) {
		g, src := setup(t, map[string]string{"/lib/a.dart": ""}, nil)
		file, err := g.RegenerateForFile(context.Background(), "/lib/lib.dart")
		require.NoError(t, err)
		assert.Nil(t, file)
		assert.Zero(t, src.total())
	})
}

func TestGenerateWithSelection(t *testing.T) {
	files := map[string]string{
		"/lib/a.dart":  "",
		"/lib/b.dart":  "",
		"/lib/_c.dart": "",
	}
	selection := []types.SourceUnit{
		types.NewSourceUnit("/lib/b.dart"),
		types.NewSourceUnit("/lib/_c.dart"),
		types.NewSourceUnit("/lib/public.dart"),
	}

	t.Run("writes exactly the selection", func(t *testing.T) {
		g, src := setup(t, files, testutils.NoHeader)
		file, err := g.GenerateWithSelection(context.Background(), "/lib", selection, "public.dart")
		require.NoError(t, err)
		assert.Equal(t, "/lib/public.dart", file.Path)
		assert.Equal(t, "export './b.dart';\n", testutils.ReadText(t, src, "/lib/public.dart"))
	})

	t.Run("empty selection is a no-op", func(t *testing.T) {
		g, src := setup(t, files, nil)
		file, err := g.GenerateWithSelection(context.Background(), "/lib", nil, "public.dart")
		require.NoError(t, err)
		assert.Nil(t, file)
		assert.Zero(t, src.total())
	})

	t.Run("file name must be bare", func(t *testing.T) {
		g, _ := setup(t, files, nil)
		for _, name := range []string{"", "../x.dart", "a/b.dart", ".."} {
			_, err := g.GenerateWithSelection(context.Background(), "/lib", selection, name)
			assert.Error(t, err, name)
		}
	})
}

func TestPreviewDoesNotWrite(t *testing.T) {
	g, src := setup(t, map[string]string{
		"/lib/a.dart": "",
		"/lib/b.dart": "",
	}, testutils.NoHeader)
	ctx := context.Background()

	text, err := g.Preview(ctx, "/lib", nil)
	require.NoError(t, err)
	assert.Equal(t, "export './a.dart';\nexport './b.dart';\n", text)

	text, err = g.Preview(ctx, "/lib", []types.SourceUnit{types.NewSourceUnit("/lib/b.dart")})
	require.NoError(t, err)
	assert.Equal(t, "export './b.dart';\n", text)

	assert.Zero(t, src.total())
}

func TestWriteFailureSurfacesAsNilFile(t *testing.T) {
	g, src := setup(t, map[string]string{"/lib/a.dart": ""}, nil)
	src.fail["/lib/lib.dart"] = true

	file, err := g.Generate(context.Background(), "/lib")
	assert.Nil(t, file)
	require.Error(t, err)
	assert.Equal(t, berrors.ErrCodeWriteFailed, berrors.Code(err))
	assert.True(t, berrors.IsRecoverable(err))
}

func TestUpdateSettings(t *testing.T) {
	g, _ := setup(t, map[string]string{"/lib/a.dart": ""}, nil)

	before := g.Settings()
	g.UpdateSettings(testutils.Settings(t, func(c *config.BarrelConfig) { c.NamingScheme = "index" }))
	assert.NotSame(t, before, g.Settings())

	file, err := g.Generate(context.Background(), "/lib")
	require.NoError(t, err)
	assert.Equal(t, "/lib/index.dart", file.Path)

	g.UpdateSettings(nil)
	assert.Equal(t, config.NamingIndex, g.Settings().NamingScheme)
}

func TestAsync(t *testing.T) {
	g, _ := setup(t, map[string]string{"/lib/a.dart": ""}, nil)
	ctx := context.Background()

	r := <-g.GenerateAsync(ctx, "/lib")
	require.NoError(t, r.Err)
	require.NotNil(t, r.File)
	assert.Equal(t, "/lib", r.Target)

	r = <-g.RegenerateAsync(ctx, r.File.Path)
	require.NoError(t, r.Err)
	assert.NotNil(t, r.File)

	var results []Result
	for r := range g.BatchGenerateAsync(ctx, []string{"/lib", "/missing"}) {
		results = append(results, r)
	}
	require.Len(t, results, 2)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
}
