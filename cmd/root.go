// Package cmd provides the command-line interface for barrel with
// configuration management supporting multiple configuration sources.
//
// Configuration System:
//
//	The CLI reads configuration from several sources with clear precedence:
//	1. Command-line flags (--config, --log-level, etc.) - highest priority
//	2. BARREL_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (BARREL_BARREL_SORT_EXPORTS, etc.)
//	4. Configuration file (.barrel.yml) - lowest priority
//
// Environment Variables:
//
//	BARREL_CONFIG_FILE: Path to custom configuration file
//	BARREL_BARREL_NAMING_SCHEME: Override the naming scheme
//	BARREL_WATCH_DEBOUNCE: Override the watch debounce
//	And every other key following the BARREL_<SECTION>_<OPTION> pattern
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/barrel/internal/config"
	berrors "github.com/conneroisu/barrel/internal/errors"
	"github.com/conneroisu/barrel/internal/generator"
	"github.com/conneroisu/barrel/internal/logging"
	"github.com/conneroisu/barrel/internal/source"
)

var (
	cfgFile string

	// configErr holds a configuration file that exists but cannot be read;
	// it is reported by the first command that loads configuration.
	configErr error
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "barrel",
	Short: "Keep barrel files in sync with your source tree",
	Long: `barrel generates and maintains barrel files: per-directory files made
of nothing but export statements for the source files next to them.

Quick Start:
  barrel init                     Write a default .barrel.yml
  barrel generate lib/models      Generate one barrel
  barrel generate -r lib          Give every directory under lib a barrel
  barrel check lib                Report missing and outdated barrels
  barrel watch                    Keep barrels fresh while you work`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is .barrel.yml, can also use BARREL_CONFIG_FILE env var)")
	flags.StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "pretty", "log format (pretty, text, json)")
	_ = viper.BindPFlag("log-level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("log-format", flags.Lookup("log-format"))

	AddFlagValidation(flags, "log-level", func(s string) error {
		_, err := logging.ParseLevel(s)
		return err
	})
	AddFlagValidation(flags, "log-format", ValidateChoice("pretty", "text", "json"))
}

// initConfig initializes the configuration system.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag: Explicitly specified config file path
//  2. BARREL_CONFIG_FILE environment variable: Custom config file path
//  3. Default: .barrel.yml in current directory
//
// Every key can also be overridden from the environment with the BARREL_
// prefix, e.g. BARREL_BARREL_INCLUDE_HEADER=false.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv(config.ConfigFileEnv); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".barrel")
	}

	config.BindEnv(viper.GetViper())

	configErr = nil
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			configErr = berrors.WrapConfig(err, berrors.ErrCodeConfigInvalid, "reading configuration file")
		}
	}
}

// loadSettings loads the configuration and compiles its settings snapshot.
// Validation warnings are logged to the command's error stream.
func loadSettings(cmd *cobra.Command) (*config.Config, *config.Settings, error) {
	if configErr != nil {
		return nil, nil, configErr
	}

	cfg, warnings, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logConfigWarnings(commandContext(cmd), newLogger(cmd), warnings)
	settings, err := cfg.Settings()
	if err != nil {
		return nil, nil, err
	}
	return cfg, settings, nil
}

func logConfigWarnings(ctx context.Context, logger logging.Logger, warnings []config.ValidationError) {
	for i := range warnings {
		w := &warnings[i]
		logger.Warn(ctx, w, "Configuration warning", "field", w.Field)
	}
}

// newLogger builds the logger selected by --log-level and --log-format.
// Logs go to the command's error stream so command output stays clean.
func newLogger(cmd *cobra.Command) logging.Logger {
	level, err := logging.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		level = logging.LevelInfo
	}
	format := viper.GetString("log-format")
	if format == "" {
		format = "pretty"
	}

	return logging.NewLogger(&logging.LoggerConfig{
		Level:     level,
		Format:    format,
		Output:    cmd.ErrOrStderr(),
		Component: "barrel",
	})
}

// newGenerator wires a generator over the operating system.
func newGenerator(cmd *cobra.Command, settings *config.Settings, opts ...generator.Option) (*generator.Generator, source.Source) {
	src := source.NewOS()
	opts = append([]generator.Option{generator.WithLogger(newLogger(cmd))}, opts...)
	return generator.New(src, settings, opts...), src
}

// defaultDirs returns args, or the configured watch paths when args is empty.
func defaultDirs(cfg *config.Config, args []string) []string {
	if len(args) > 0 {
		return args
	}
	return cfg.Watch.Paths
}

func printf(cmd *cobra.Command, format string, args ...interface{}) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
