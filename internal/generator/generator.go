// Package generator orchestrates barrel generation: it scans directories,
// builds content, checks staleness and writes barrel files.
//
// Every operation loads the settings snapshot once and uses it for its whole
// duration, so a concurrent UpdateSettings never lets a scan and a build see
// different configurations. Long operations check the context between
// directories, never in the middle of one.
package generator

import (
	"context"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/conneroisu/barrel/internal/barrel"
	"github.com/conneroisu/barrel/internal/config"
	berrors "github.com/conneroisu/barrel/internal/errors"
	"github.com/conneroisu/barrel/internal/logging"
	"github.com/conneroisu/barrel/internal/scanner"
	"github.com/conneroisu/barrel/internal/source"
	"github.com/conneroisu/barrel/internal/types"
)

// Progress reports the state of a recursive run after each directory.
type Progress struct {
	// Directory is the directory just processed
	Directory string
	// Visited counts directories processed so far
	Visited int
	// Written counts barrel files written so far
	Written int
}

// ProgressFunc receives progress updates. It is called from the goroutine
// running the operation.
type ProgressFunc func(Progress)

// Generator is the barrel orchestrator. It is safe for concurrent use.
type Generator struct {
	src      source.Source
	settings atomic.Pointer[config.Settings]
	writer   *writer
	logger   logging.Logger
	progress ProgressFunc
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithProgress sets a callback for recursive runs.
func WithProgress(fn ProgressFunc) Option {
	return func(g *Generator) {
		g.progress = fn
	}
}

// New creates a generator over src with an initial settings snapshot.
func New(src source.Source, settings *config.Settings, opts ...Option) *Generator {
	g := &Generator{
		src:    src,
		logger: logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.WithComponent("generator")
	g.writer = newWriter(src, g.logger)

	if settings == nil {
		settings = config.DefaultSettings()
	}
	g.settings.Store(settings)

	return g
}

// Settings returns the current snapshot.
func (g *Generator) Settings() *config.Settings {
	return g.settings.Load()
}

// UpdateSettings swaps in a new snapshot. Operations already running keep
// the snapshot they started with.
func (g *Generator) UpdateSettings(settings *config.Settings) {
	if settings != nil {
		g.settings.Store(settings)
	}
}

func (g *Generator) scanner(settings *config.Settings) *scanner.Scanner {
	return scanner.New(g.src, settings, g.logger)
}

// Generate writes the barrel for dir from its eligible units, scanning the
// whole subtree when include_subdirectories is set. It returns (nil, nil)
// when dir has no eligible units.
func (g *Generator) Generate(ctx context.Context, dir string) (*types.AggregatorFile, error) {
	return g.generateWith(ctx, dir, g.settings.Load())
}

func (g *Generator) generateUnits(
	ctx context.Context,
	dir string,
	units []types.SourceUnit,
	settings *config.Settings,
) (*types.AggregatorFile, error) {
	if len(units) == 0 {
		g.logger.Debug(ctx, "No eligible units, skipping", "dir", dir)
		return nil, nil
	}

	path := barrel.FilePath(dir, settings)
	content := barrel.BuildFor(units, dir, path, settings)

	return g.writer.write(ctx, path, content, createOrReplace)
}

// GenerateWithSelection writes a barrel named fileName in dir exporting
// exactly units, without scanning. It returns (nil, nil) for an empty
// selection.
func (g *Generator) GenerateWithSelection(
	ctx context.Context,
	dir string,
	units []types.SourceUnit,
	fileName string,
) (*types.AggregatorFile, error) {
	if len(units) == 0 {
		return nil, nil
	}
	if err := validateFileName(fileName); err != nil {
		return nil, err
	}

	settings := g.settings.Load()
	root, err := filepath.Abs(filepath.Clean(dir))
	if err != nil {
		return nil, berrors.ErrInvalidPath(dir)
	}

	path := filepath.Join(root, fileName)
	content := barrel.BuildFor(units, root, path, settings)

	return g.writer.write(ctx, path, content, createOrReplace)
}

// Preview returns the text Generate would write for dir without writing.
// When units is nil the directory is scanned as Generate would; otherwise
// exactly units are used.
func (g *Generator) Preview(ctx context.Context, dir string, units []types.SourceUnit) (string, error) {
	settings := g.settings.Load()

	root, err := filepath.Abs(filepath.Clean(dir))
	if err != nil {
		return "", berrors.ErrInvalidPath(dir)
	}

	if units == nil {
		units, err = g.scanner(settings).Collect(ctx, root, settings.IncludeSubdirectories)
		if err != nil {
			return "", err
		}
	}

	return barrel.Build(units, root, settings), nil
}

// NeedsRegeneration reports whether the barrel at barrelPath differs from
// what its directory would produce now. A barrel whose directory or file no
// longer exists never needs regeneration.
func (g *Generator) NeedsRegeneration(ctx context.Context, barrelPath string) (bool, error) {
	return g.needsRegeneration(ctx, barrelPath, g.settings.Load())
}

func (g *Generator) needsRegeneration(ctx context.Context, barrelPath string, settings *config.Settings) (bool, error) {
	path, units, err := g.barrelUnits(ctx, barrelPath, settings)
	if err != nil {
		if berrors.Code(err) == berrors.ErrCodeNoContainingDir {
			g.logger.Debug(ctx, "Barrel has no containing directory", "path", barrelPath)
			return false, nil
		}
		return false, err
	}

	existing, err := g.src.ReadText(path)
	if err != nil {
		if berrors.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}

	return barrel.IsStale(existing, path, units, filepath.Dir(path), settings), nil
}

// RegenerateForFile unconditionally rewrites the barrel at barrelPath from
// its directory's current units. A barrel whose directory or file no longer
// exists is left alone and (nil, nil) is returned.
func (g *Generator) RegenerateForFile(ctx context.Context, barrelPath string) (*types.AggregatorFile, error) {
	return g.regenerate(ctx, barrelPath, g.settings.Load())
}

func (g *Generator) regenerate(
	ctx context.Context,
	barrelPath string,
	settings *config.Settings,
) (*types.AggregatorFile, error) {
	path, units, err := g.barrelUnits(ctx, barrelPath, settings)
	if err != nil {
		if berrors.Code(err) == berrors.ErrCodeNoContainingDir {
			g.logger.Debug(ctx, "Barrel has no containing directory", "path", barrelPath)
			return nil, nil
		}
		return nil, err
	}

	content := barrel.BuildFor(units, filepath.Dir(path), path, settings)
	return g.writer.write(ctx, path, content, replaceOnly)
}

// barrelUnits resolves barrelPath and scans its containing directory.
func (g *Generator) barrelUnits(
	ctx context.Context,
	barrelPath string,
	settings *config.Settings,
) (string, []types.SourceUnit, error) {
	if barrelPath == "" {
		return "", nil, berrors.ErrInvalidPath(barrelPath)
	}
	path, err := filepath.Abs(filepath.Clean(barrelPath))
	if err != nil {
		return "", nil, berrors.ErrInvalidPath(barrelPath)
	}

	dir := filepath.Dir(path)
	entry, err := g.src.Stat(dir)
	if err != nil || !entry.IsDir {
		if err == nil || berrors.IsNotFound(err) {
			return "", nil, berrors.ErrNoContainingDir(path)
		}
		return "", nil, err
	}

	units, err := g.scanner(settings).Collect(ctx, dir, settings.IncludeSubdirectories)
	if err != nil {
		return "", nil, err
	}
	return path, units, nil
}

func validateFileName(name string) error {
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return berrors.NewValidationError(berrors.ErrCodeInvalidPath, "barrel file name must be a bare file name").
			WithContext("name", name)
	}
	return nil
}
