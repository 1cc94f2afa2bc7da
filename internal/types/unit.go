// Package types provides the value types shared by the scanner, the barrel
// builder and the generator. This package contains shared types to avoid
// circular dependencies between packages.
package types

import (
	"path/filepath"
	"strings"
)

const (
	// PrivateMarker prefixes file names that must never be exported.
	PrivateMarker = "_"
	// HiddenMarker prefixes file and directory names that are never scanned.
	HiddenMarker = "."
)

// SourceUnit is a snapshot of one source file taken during a scan. It is
// never cached across operations; every operation rescans.
type SourceUnit struct {
	// Path is the cleaned absolute path of the file
	Path string
	// BaseName is the file name without directory
	BaseName string
	// IsPrivate reports whether BaseName starts with PrivateMarker
	IsPrivate bool
	// IsGenerated reports whether BaseName carries a generated-file suffix
	IsGenerated bool
}

// Dir returns the directory containing the unit.
func (u SourceUnit) Dir() string {
	return filepath.Dir(u.Path)
}

// RelativeTo returns the unit path relative to root using forward slashes.
func (u SourceUnit) RelativeTo(root string) (string, error) {
	rel, err := filepath.Rel(root, u.Path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// NewSourceUnit builds a unit for path. Generated detection is left to the
// caller since it depends on configuration.
func NewSourceUnit(path string) SourceUnit {
	clean := filepath.Clean(path)
	base := filepath.Base(clean)
	return SourceUnit{
		Path:      clean,
		BaseName:  base,
		IsPrivate: strings.HasPrefix(base, PrivateMarker),
	}
}

// Directory is one node of an on-demand walk. It has no identity beyond its
// path and is discarded after the operation that produced it.
type Directory struct {
	Path           string
	Units          []SourceUnit
	Subdirectories []string
}

// HasUnits reports whether the directory directly contains eligible units.
func (d Directory) HasUnits() bool {
	return len(d.Units) > 0
}

// AggregatorFile describes a barrel file after a write.
type AggregatorFile struct {
	// Path is the absolute path of the barrel file
	Path string
	// Directory is the directory the barrel aggregates
	Directory string
	// Name is the barrel file name
	Name string
	// Created is true when the write created the file, false for an update
	Created bool
	// Content is the text that was written
	Content string
}
