package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/conneroisu/barrel/internal/barrel"
	"github.com/conneroisu/barrel/internal/config"
	"github.com/conneroisu/barrel/internal/generator"
	"github.com/conneroisu/barrel/internal/scanner"
	"github.com/conneroisu/barrel/internal/types"
)

var generateCmd = &cobra.Command{
	Use:     "generate [dir|glob...]",
	Aliases: []string{"gen", "g"},
	Short:   "Generate barrel files",
	Long: `Generate a barrel file for each directory. With no arguments the
configured watch paths are used. Arguments may be globs such as
'lib/**/models'.

Examples:
  barrel generate lib/models               # One barrel for lib/models
  barrel generate -r lib                   # A barrel for every directory under lib
  barrel generate --subdirs lib            # One barrel for lib exporting the whole subtree
  barrel generate 'lib/**/widgets'         # Every widgets directory under lib
  barrel generate lib --only a.dart,b.dart --name public.dart`,
	RunE: runGenerate,
}

var (
	generateRecursive bool
	generateSubdirs   bool
	generateOnly      string
	generateName      string
)

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().BoolVarP(&generateRecursive, "recursive", "r", false, "Give every directory below each argument its own barrel")
	generateCmd.Flags().BoolVar(&generateSubdirs, "subdirs", false, "Export files of all subdirectories from each barrel for this run")
	generateCmd.Flags().StringVar(&generateOnly, "only", "", "Comma separated files to export instead of scanning")
	generateCmd.Flags().StringVarP(&generateName, "name", "n", "", "Barrel file name instead of the naming scheme")
	AddFlagValidation(generateCmd.Flags(), "name", ValidateFileName)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	cfg, settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if generateSubdirs {
		settings = withSubdirectories(settings)
	}

	dirs, err := expandDirs(defaultDirs(cfg, args))
	if err != nil {
		return err
	}

	logger := newLogger(cmd)
	gen, src := newGenerator(cmd, settings, generator.WithProgress(func(p generator.Progress) {
		logger.Debug(ctx, "Processed directory", "dir", p.Directory, "visited", p.Visited, "written", p.Written)
	}))

	switch {
	case generateOnly != "" || generateName != "":
		if generateRecursive {
			return errors.New("--recursive cannot be combined with --only or --name")
		}
		if len(dirs) != 1 {
			return fmt.Errorf("--only and --name need exactly one directory, got %d", len(dirs))
		}

		var units []types.SourceUnit
		if generateOnly != "" {
			units, err = selectedUnits(dirs[0], splitList(generateOnly))
		} else {
			units, err = scanner.New(src, settings, logger).Collect(ctx, dirs[0], settings.IncludeSubdirectories)
		}
		if err != nil {
			return err
		}

		name := generateName
		if name == "" {
			name = barrel.FileName(dirs[0], settings)
		}
		file, err := gen.GenerateWithSelection(ctx, dirs[0], units, name)
		if err != nil {
			return err
		}
		reportFile(cmd, dirs[0], file)
		return nil

	case generateRecursive:
		var errs *multierror.Error
		for _, dir := range dirs {
			count, err := gen.GenerateRecursively(ctx, dir)
			printf(cmd, "%s: wrote %d barrel file(s)\n", dir, count)
			if err != nil {
				errs = multierror.Append(errs, err)
			}
		}
		return errs.ErrorOrNil()

	default:
		results, err := gen.BatchGenerate(ctx, dirs)
		for _, r := range results {
			if r.Err == nil {
				reportFile(cmd, r.Target, r.File)
			}
		}
		return err
	}
}

// selectedUnits resolves --only names against dir. Every name must exist.
func selectedUnits(dir string, names []string) ([]types.SourceUnit, error) {
	units := make([]types.SourceUnit, 0, len(names))
	for _, name := range names {
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, name)
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(abs); err != nil {
			return nil, fmt.Errorf("selected file %s: %w", name, err)
		}
		units = append(units, types.NewSourceUnit(abs))
	}
	return units, nil
}

// withSubdirectories returns a copy of settings that flattens subtrees.
func withSubdirectories(settings *config.Settings) *config.Settings {
	copied := *settings
	copied.IncludeSubdirectories = true
	return &copied
}

func reportFile(cmd *cobra.Command, target string, file *types.AggregatorFile) {
	switch {
	case file == nil:
		printf(cmd, "%s: nothing to export\n", target)
	case file.Created:
		printf(cmd, "created %s\n", file.Path)
	default:
		printf(cmd, "updated %s\n", file.Path)
	}
}

// commandContext returns the command's context, or a background context
// when the command was not started through Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
