// Package config provides configuration management for barrel using Viper
// for loading from files, environment variables and command-line flags.
//
// The configuration system supports a YAML file (.barrel.yml), environment
// variable overrides with the BARREL_ prefix and validation. The barrel
// section is compiled into an immutable Settings snapshot before use, so a
// scan and a build inside one operation always see the same options.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the full on-disk configuration.
type Config struct {
	Barrel     BarrelConfig `mapstructure:"barrel" yaml:"barrel"`
	Watch      WatchConfig  `mapstructure:"watch" yaml:"watch"`
	TargetDirs []string     `mapstructure:"-" yaml:"-"` // CLI arguments, not from config file
}

// BarrelConfig mirrors the generation options of a barrel run.
type BarrelConfig struct {
	SourceExtension       string   `mapstructure:"source_extension" yaml:"source_extension"`
	NamingScheme          string   `mapstructure:"naming_scheme" yaml:"naming_scheme"`
	CustomName            string   `mapstructure:"custom_name" yaml:"custom_name,omitempty"`
	SortExports           bool     `mapstructure:"sort_exports" yaml:"sort_exports"`
	GroupByDirectory      bool     `mapstructure:"group_by_directory" yaml:"group_by_directory"`
	IncludeSubdirectories bool     `mapstructure:"include_subdirectories" yaml:"include_subdirectories"`
	ExcludePatterns       []string `mapstructure:"exclude_patterns" yaml:"exclude_patterns"`
	GeneratedSuffixes     []string `mapstructure:"generated_suffixes" yaml:"generated_suffixes"`
	HeaderComment         string   `mapstructure:"header_comment" yaml:"header_comment"`
	IncludeHeader         bool     `mapstructure:"include_header" yaml:"include_header"`
	AutoGenerateOnChange  bool     `mapstructure:"auto_generate_on_change" yaml:"auto_generate_on_change"`
	RespectGitignore      bool     `mapstructure:"respect_gitignore" yaml:"respect_gitignore"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	Paths    []string      `mapstructure:"paths" yaml:"paths"`
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

// Defaults shared by Load and the init command.
const (
	DefaultExtension     = ".dart"
	DefaultHeaderComment = "// Auto-generated barrel file"
	DefaultDebounce      = 300 * time.Millisecond
)

var (
	defaultExcludePatterns   = []string{`.*\.g\.dart`, `.*\.freezed\.dart`}
	defaultGeneratedSuffixes = []string{".g", ".freezed", ".gr", ".config"}
	defaultWatchPaths        = []string{"./lib"}
)

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Barrel: BarrelConfig{
			SourceExtension:       DefaultExtension,
			NamingScheme:          string(NamingFolder),
			SortExports:           true,
			GroupByDirectory:      false,
			IncludeSubdirectories: false,
			ExcludePatterns:       append([]string(nil), defaultExcludePatterns...),
			GeneratedSuffixes:     append([]string(nil), defaultGeneratedSuffixes...),
			HeaderComment:         DefaultHeaderComment,
			IncludeHeader:         true,
			AutoGenerateOnChange:  false,
			RespectGitignore:      true,
		},
		Watch: WatchConfig{
			Paths:    append([]string(nil), defaultWatchPaths...),
			Debounce: DefaultDebounce,
		},
	}
}

// Load reads the configuration from the global viper instance.
func Load() (*Config, []ValidationError, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads the configuration from v, applies defaults for unset keys
// and validates the result. Warnings are returned alongside a valid
// configuration for the caller to report.
func LoadFrom(v *viper.Viper) (*Config, []ValidationError, error) {
	config := Default()
	if err := v.Unmarshal(config); err != nil {
		return nil, nil, fmt.Errorf("decoding configuration: %w", err)
	}

	// Handle slices set via viper (env values arrive as a single string)
	if v.IsSet("barrel.exclude_patterns") {
		config.Barrel.ExcludePatterns = v.GetStringSlice("barrel.exclude_patterns")
	}
	if v.IsSet("barrel.generated_suffixes") {
		config.Barrel.GeneratedSuffixes = v.GetStringSlice("barrel.generated_suffixes")
	}
	if v.IsSet("watch.paths") {
		config.Watch.Paths = v.GetStringSlice("watch.paths")
	}
	if v.IsSet("watch.debounce") {
		config.Watch.Debounce = v.GetDuration("watch.debounce")
	}

	if config.Barrel.SourceExtension == "" {
		config.Barrel.SourceExtension = DefaultExtension
	}
	if config.Barrel.NamingScheme == "" {
		config.Barrel.NamingScheme = string(NamingFolder)
	}
	if len(config.Watch.Paths) == 0 {
		config.Watch.Paths = append([]string(nil), defaultWatchPaths...)
	}
	// Zero means unset; a negative value is left for validation to reject.
	if config.Watch.Debounce == 0 {
		config.Watch.Debounce = DefaultDebounce
	}

	result := ValidateConfigWithDetails(config)
	if result.HasErrors() {
		return nil, nil, result.Err()
	}

	return config, result.Warnings, nil
}

// Settings compiles the barrel section into an immutable snapshot.
func (c *Config) Settings() (*Settings, error) {
	return c.Barrel.Compile()
}
