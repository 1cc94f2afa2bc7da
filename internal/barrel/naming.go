package barrel

import (
	"path/filepath"

	"github.com/conneroisu/barrel/internal/config"
)

// FileName resolves the barrel file name for dir under the naming scheme
// of settings.
func FileName(dir string, settings *config.Settings) string {
	switch settings.NamingScheme {
	case config.NamingIndex:
		return "index" + settings.Extension
	case config.NamingCustom:
		return settings.CustomName
	default:
		return filepath.Base(filepath.Clean(dir)) + settings.Extension
	}
}

// FilePath is the absolute location of the barrel for dir.
func FilePath(dir string, settings *config.Settings) string {
	return filepath.Join(dir, FileName(dir, settings))
}
