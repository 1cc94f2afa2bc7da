package generator

import (
	"context"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/conneroisu/barrel/internal/barrel"
	"github.com/conneroisu/barrel/internal/config"
	"github.com/conneroisu/barrel/internal/logging"
	"github.com/conneroisu/barrel/internal/types"
)

// BatchSize bounds how many items of a batch are in flight at once.
const BatchSize = 5

// Result is the outcome of one item of a batch or async operation.
type Result struct {
	// Target is the directory or barrel path the item was asked for
	Target string
	// File is the written barrel, nil for a no-op or a failure
	File *types.AggregatorFile
	// Err is the item's failure, if any
	Err error
}

type batchItem struct {
	target string
	// key identifies the barrel the item writes; items sharing a key run
	// one after another
	key string
	run func(ctx context.Context) (*types.AggregatorFile, error)
}

// BatchGenerate runs Generate for every directory. Results are returned in
// input order; a failing item does not stop the others and all failures are
// also returned combined.
func (g *Generator) BatchGenerate(ctx context.Context, dirs []string) ([]Result, error) {
	settings := g.settings.Load()

	items := make([]batchItem, 0, len(dirs))
	for _, dir := range dirs {
		items = append(items, batchItem{
			target: dir,
			key:    barrelKey(dir, settings),
			run: func(ctx context.Context) (*types.AggregatorFile, error) {
				return g.generateWith(ctx, dir, settings)
			},
		})
	}

	return g.runBatch(ctx, "batch_generate", items)
}

// BatchRegenerate runs RegenerateForFile for every barrel path with the same
// ordering and isolation guarantees as BatchGenerate.
func (g *Generator) BatchRegenerate(ctx context.Context, barrels []string) ([]Result, error) {
	settings := g.settings.Load()

	items := make([]batchItem, 0, len(barrels))
	for _, path := range barrels {
		items = append(items, batchItem{
			target: path,
			key:    cleanAbs(path),
			run: func(ctx context.Context) (*types.AggregatorFile, error) {
				return g.regenerate(ctx, path, settings)
			},
		})
	}

	return g.runBatch(ctx, "batch_regenerate", items)
}

func (g *Generator) generateWith(ctx context.Context, dir string, settings *config.Settings) (*types.AggregatorFile, error) {
	root := cleanAbs(dir)
	units, err := g.scanner(settings).Collect(ctx, root, settings.IncludeSubdirectories)
	if err != nil {
		return nil, err
	}
	return g.generateUnits(ctx, root, units, settings)
}

// runBatch processes items in chunks of BatchSize. Within a chunk, items
// with different keys run concurrently and items sharing a key run in input
// order on one goroutine. Chunks run one after another and the context is
// checked before each item.
func (g *Generator) runBatch(ctx context.Context, operation string, items []batchItem) ([]Result, error) {
	perf := logging.StartOperation(g.logger, operation)
	results := make([]Result, len(items))

	for start := 0; start < len(items); start += BatchSize {
		end := min(start+BatchSize, len(items))

		var order []string
		lanes := make(map[string][]int)
		for i := start; i < end; i++ {
			key := items[i].key
			if _, ok := lanes[key]; !ok {
				order = append(order, key)
			}
			lanes[key] = append(lanes[key], i)
		}

		var eg errgroup.Group
		for _, key := range order {
			lane := lanes[key]
			eg.Go(func() error {
				for _, i := range lane {
					results[i].Target = items[i].target
					if err := ctx.Err(); err != nil {
						results[i].Err = err
						continue
					}
					results[i].File, results[i].Err = items[i].run(ctx)
				}
				return nil
			})
		}
		_ = eg.Wait()
	}

	var errs *multierror.Error
	written := 0
	for _, r := range results {
		if r.Err != nil {
			errs = multierror.Append(errs, r.Err)
		}
		if r.File != nil {
			written++
		}
	}

	err := errs.ErrorOrNil()
	if err != nil {
		perf.EndWithError(ctx, err, "items", len(items), "written", written)
	} else {
		perf.End(ctx, "items", len(items), "written", written)
	}
	return results, err
}

func barrelKey(dir string, settings *config.Settings) string {
	return barrel.FilePath(cleanAbs(dir), settings)
}

func cleanAbs(path string) string {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
