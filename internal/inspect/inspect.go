package inspect

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/conneroisu/barrel/internal/barrel"
	"github.com/conneroisu/barrel/internal/generator"
	"github.com/conneroisu/barrel/internal/logging"
	"github.com/conneroisu/barrel/internal/scanner"
	"github.com/conneroisu/barrel/internal/source"
	"github.com/conneroisu/barrel/internal/types"
)

// Inspector checks directory trees against the generator's current
// settings.
type Inspector struct {
	src    source.Source
	gen    *generator.Generator
	logger logging.Logger
}

// New creates an inspector. src must be the source gen writes through.
func New(src source.Source, gen *generator.Generator, logger logging.Logger) *Inspector {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Inspector{
		src:    src,
		gen:    gen,
		logger: logger.WithComponent("inspect"),
	}
}

// Inspect walks every root and reports missing and outdated barrels in
// walk order.
func (in *Inspector) Inspect(ctx context.Context, roots ...string) (*Report, error) {
	start := time.Now()
	settings := in.gen.Settings()
	sc := scanner.New(in.src, settings, in.logger)

	report := &Report{Findings: []Finding{}}
	for _, root := range roots {
		abs, err := filepath.Abs(filepath.Clean(root))
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", root, err)
		}
		report.Roots = append(report.Roots, abs)

		err = sc.Walk(ctx, abs, func(dir types.Directory) error {
			report.Directories++
			findings, err := in.inspectDir(ctx, dir)
			if err != nil {
				return err
			}
			report.Findings = append(report.Findings, findings...)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	report.Duration = time.Since(start)
	in.logger.Debug(ctx, "Inspection complete",
		"directories", report.Directories, "findings", len(report.Findings))
	return report, nil
}

func (in *Inspector) inspectDir(ctx context.Context, dir types.Directory) ([]Finding, error) {
	settings := in.gen.Settings()

	entries, err := in.src.ListChildren(ctx, dir.Path)
	if err != nil {
		return nil, err
	}

	var barrels []string
	for _, entry := range entries {
		if entry.IsDir {
			continue
		}
		ok, err := barrel.IsBarrelFile(in.src, entry.Path, settings)
		if err != nil {
			return nil, err
		}
		if ok {
			barrels = append(barrels, entry.Path)
		}
	}

	var findings []Finding

	// Private units count toward the threshold, but a directory with no
	// public unit would get an empty barrel, which is never written.
	public := 0
	for _, unit := range dir.Units {
		if !unit.IsPrivate {
			public++
		}
	}
	if len(dir.Units) > 1 && public > 0 && len(barrels) == 0 {
		path := barrel.FilePath(dir.Path, settings)
		findings = append(findings, Finding{
			Rule:       RuleMissingBarrel,
			Severity:   SeverityInfo,
			Directory:  dir.Path,
			Barrel:     path,
			Message:    fmt.Sprintf("%d source files but no barrel", len(dir.Units)),
			Suggestion: fmt.Sprintf("run barrel generate %s", dir.Path),
			CanAutoFix: true,
		})
	}

	for _, path := range barrels {
		stale, err := in.gen.NeedsRegeneration(ctx, path)
		if err != nil {
			return nil, err
		}
		if !stale {
			continue
		}
		findings = append(findings, Finding{
			Rule:       RuleOutdatedBarrel,
			Severity:   SeverityWarning,
			Directory:  dir.Path,
			Barrel:     path,
			Message:    fmt.Sprintf("%s does not match its directory", filepath.Base(path)),
			Suggestion: fmt.Sprintf("run barrel regenerate %s", path),
			CanAutoFix: true,
		})
	}

	return findings, nil
}

// Fix applies every auto-fixable finding: missing barrels are generated and
// outdated ones regenerated. It returns how many files were written. A
// failing fix does not stop the others.
func (in *Inspector) Fix(ctx context.Context, findings []Finding) (int, error) {
	var (
		fixed int
		errs  *multierror.Error
	)

	for _, f := range findings {
		if !f.CanAutoFix {
			continue
		}
		if err := ctx.Err(); err != nil {
			errs = multierror.Append(errs, err)
			break
		}

		var (
			file *types.AggregatorFile
			err  error
		)
		switch f.Rule {
		case RuleMissingBarrel:
			file, err = in.gen.Generate(ctx, f.Directory)
		case RuleOutdatedBarrel:
			file, err = in.gen.RegenerateForFile(ctx, f.Barrel)
		default:
			continue
		}

		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("fixing %s: %w", f.Directory, err))
			continue
		}
		if file != nil {
			in.logger.Info(ctx, "Fixed barrel", "rule", string(f.Rule), "path", file.Path)
			fixed++
		}
	}

	return fixed, errs.ErrorOrNil()
}
