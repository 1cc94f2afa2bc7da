package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/barrel/internal/config"
	"github.com/conneroisu/barrel/internal/generator"
	"github.com/conneroisu/barrel/internal/logging"
	"github.com/conneroisu/barrel/internal/watcher"
)

var errNothingToWatch = errors.New("none of the watch paths could be watched")

var watchCmd = &cobra.Command{
	Use:     "watch [dir...]",
	Aliases: []string{"w"},
	Short:   "Keep barrel files up to date as files change",
	Long: `Watch directories and regenerate existing barrels that go stale as
files are created, deleted, changed or moved. Directories without a barrel
are never given one. The configuration file is watched too; edits take
effect on the next change.

Examples:
  barrel watch                        # Watch the configured paths
  barrel watch lib packages/core/lib  # Watch these directories
  barrel watch --auto-generate=false  # Log changes without regenerating`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().Bool("auto-generate", true, "Regenerate stale barrels on change (barrel.auto_generate_on_change)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	// The flag supplies the default; a config file value still wins unless
	// the flag is given explicitly.
	if err := viper.BindPFlag("barrel.auto_generate_on_change", cmd.Flags().Lookup("auto-generate")); err != nil {
		return err
	}

	cfg, settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	logger := newLogger(cmd)
	gen, _ := newGenerator(cmd, settings)

	fileWatcher, err := watcher.NewFileWatcher(cfg.Watch.Debounce, settings, logger)
	if err != nil {
		return err
	}
	defer fileWatcher.Stop()

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, path := range defaultDirs(cfg, args) {
		if err := fileWatcher.AddRecursive(path); err != nil {
			logger.Warn(ctx, err, "Failed to watch path", "path", path)
			continue
		}
		logger.Info(ctx, "Watching", "path", path)
	}
	if len(fileWatcher.Roots()) == 0 {
		return errNothingToWatch
	}

	fileWatcher.AddHandler(func(ctx context.Context, events []generator.Event) error {
		for _, e := range events {
			logger.Debug(ctx, "File changed", "kind", e.Kind.String(), "path", e.Path)
		}

		results, err := gen.HandleEvents(ctx, events, fileWatcher.Roots()...)
		for _, r := range results {
			if r.File != nil {
				logger.Info(ctx, "Regenerated barrel", "path", r.File.Path)
			}
		}
		return err
	})

	if viper.ConfigFileUsed() != "" {
		viper.OnConfigChange(func(e fsnotify.Event) {
			reloadSettings(ctx, logger, gen, fileWatcher)
		})
		viper.WatchConfig()
	}

	if err := fileWatcher.Start(ctx); err != nil {
		return err
	}

	logger.Info(ctx, "Watching for changes, press Ctrl+C to stop",
		"auto_generate", settings.AutoGenerateOnChange)
	<-ctx.Done()
	logger.Info(context.Background(), "Stopping file watcher")

	return nil
}

// reloadSettings swaps in a snapshot built from the edited configuration.
// An invalid edit keeps the previous snapshot.
func reloadSettings(ctx context.Context, logger logging.Logger, gen *generator.Generator, fw *watcher.FileWatcher) {
	cfg, warnings, err := config.Load()
	if err != nil {
		logger.Warn(ctx, err, "Ignoring invalid configuration change")
		return
	}
	logConfigWarnings(ctx, logger, warnings)
	settings, err := cfg.Settings()
	if err != nil {
		logger.Warn(ctx, err, "Ignoring invalid configuration change")
		return
	}

	gen.UpdateSettings(settings)
	fw.UpdateSettings(settings)
	logger.Info(ctx, "Configuration reloaded", "auto_generate", settings.AutoGenerateOnChange)
}
