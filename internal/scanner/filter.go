package scanner

import (
	"strings"

	"github.com/conneroisu/barrel/internal/barrel"
	"github.com/conneroisu/barrel/internal/config"
	"github.com/conneroisu/barrel/internal/types"
)

// Filter decides which files are eligible source units. It has no side
// effects and holds nothing but the settings snapshot.
type Filter struct {
	settings *config.Settings
}

// NewFilter creates a filter for settings.
func NewFilter(settings *config.Settings) *Filter {
	return &Filter{settings: settings}
}

// Unit builds a SourceUnit for path with generated detection applied.
func (f *Filter) Unit(path string) types.SourceUnit {
	unit := types.NewSourceUnit(path)
	unit.IsGenerated = f.settings.IsGeneratedName(unit.BaseName)
	return unit
}

// IsEligible reports whether unit is a source unit that belongs in a barrel:
// it has the source extension, is not hidden, is not generated, does not
// match an exclude pattern and is not the barrel of its own directory.
// Private units are eligible here; the builder drops them from exports.
func (f *Filter) IsEligible(unit types.SourceUnit) bool {
	name := unit.BaseName
	switch {
	case !f.settings.HasSourceExtension(name):
		return false
	case strings.HasPrefix(name, types.HiddenMarker):
		return false
	case unit.IsGenerated || f.settings.IsGeneratedName(name):
		return false
	case f.settings.IsExcluded(name):
		return false
	case name == barrel.FileName(unit.Dir(), f.settings):
		return false
	}
	return true
}

// SkipDir reports whether a directory named name is never descended into.
func (f *Filter) SkipDir(name string) bool {
	return strings.HasPrefix(name, types.HiddenMarker)
}
