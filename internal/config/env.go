package config

import (
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g.
// BARREL_BARREL_SORT_EXPORTS or BARREL_WATCH_DEBOUNCE.
const EnvPrefix = "BARREL"

// ConfigFileEnv names a configuration file to use instead of .barrel.yml.
const ConfigFileEnv = "BARREL_CONFIG_FILE"

// Keys lists every configuration key.
var Keys = []string{
	"barrel.source_extension",
	"barrel.naming_scheme",
	"barrel.custom_name",
	"barrel.sort_exports",
	"barrel.group_by_directory",
	"barrel.include_subdirectories",
	"barrel.exclude_patterns",
	"barrel.generated_suffixes",
	"barrel.header_comment",
	"barrel.include_header",
	"barrel.auto_generate_on_change",
	"barrel.respect_gitignore",
	"watch.paths",
	"watch.debounce",
}

// BindEnv makes every key in Keys readable from its environment variable.
// Viper only consults the environment for keys it already knows, so each
// key is bound explicitly.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range Keys {
		_ = v.BindEnv(key)
	}
}
