package generator

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/hashicorp/go-multierror"

	berrors "github.com/conneroisu/barrel/internal/errors"
	"github.com/conneroisu/barrel/internal/logging"
	"github.com/conneroisu/barrel/internal/types"
)

// GenerateRecursively gives every directory under root that directly
// contains an eligible unit its own barrel. It returns how many barrels were
// written. Every directory is visited exactly once; a failing directory is
// recorded and the walk continues, and the collected failures are returned
// alongside the count. Cancellation stops the walk between directories.
func (g *Generator) GenerateRecursively(ctx context.Context, root string) (int, error) {
	settings := g.settings.Load()
	perf := logging.StartOperation(g.logger, "generate_recursively")

	start, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return 0, berrors.ErrInvalidPath(root)
	}

	var (
		written int
		visited int
		errs    *multierror.Error
	)

	walkErr := g.scanner(settings).Walk(ctx, start, func(dir types.Directory) error {
		visited++

		if dir.HasUnits() {
			units := dir.Units
			if settings.IncludeSubdirectories {
				var err error
				units, err = g.scanner(settings).Collect(ctx, dir.Path, true)
				if err != nil {
					errs = multierror.Append(errs, err)
					units = nil
				}
			}

			if len(units) > 0 {
				file, err := g.generateUnits(ctx, dir.Path, units, settings)
				switch {
				case err != nil:
					if berrors.IsRecoverable(err) {
						g.logger.Warn(ctx, err, "Skipping directory", "dir", dir.Path)
					} else {
						g.logger.Error(ctx, err, "Generating barrel failed", "dir", dir.Path)
					}
					errs = multierror.Append(errs, err)
				case file != nil:
					written++
				}
			}
		}

		if g.progress != nil {
			g.progress(Progress{Directory: dir.Path, Visited: visited, Written: written})
		}
		return nil
	})

	if walkErr != nil {
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			g.logger.Warn(ctx, walkErr, "Recursive generation cancelled", "root", start, "written", written)
		}
		errs = multierror.Append(errs, walkErr)
	}

	err = errs.ErrorOrNil()
	if err != nil {
		perf.EndWithError(ctx, err, "root", start, "visited", visited, "written", written)
	} else {
		perf.End(ctx, "root", start, "visited", visited, "written", written)
	}

	return written, err
}
