package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/conneroisu/barrel/internal/errors"
)

// NamingScheme selects how a directory maps to its barrel file name.
type NamingScheme string

const (
	// NamingFolder names the barrel after its directory: lib/models -> models.dart
	NamingFolder NamingScheme = "folder"
	// NamingIndex always uses index<ext>
	NamingIndex NamingScheme = "index"
	// NamingCustom uses the configured custom_name literally
	NamingCustom NamingScheme = "custom"
)

// Valid reports whether s is a known scheme.
func (s NamingScheme) Valid() bool {
	switch s {
	case NamingFolder, NamingIndex, NamingCustom:
		return true
	default:
		return false
	}
}

// Settings is a validated, compiled snapshot of BarrelConfig. A snapshot is
// never modified after Compile returns; reloading configuration produces a
// new one.
type Settings struct {
	Extension             string
	NamingScheme          NamingScheme
	CustomName            string
	SortExports           bool
	GroupByDirectory      bool
	IncludeSubdirectories bool
	ExcludePatterns       []*regexp.Regexp
	GeneratedSuffixes     []string
	HeaderComment         string
	IncludeHeader         bool
	AutoGenerateOnChange  bool
	RespectGitignore      bool
}

// DefaultSettings returns a fresh snapshot of the default configuration.
func DefaultSettings() *Settings {
	s, err := Default().Barrel.Compile()
	if err != nil {
		panic(fmt.Sprintf("default barrel settings do not compile: %v", err))
	}
	return s
}

// Compile validates the section and compiles its patterns. A malformed
// exclude pattern is reported here, once, rather than on every scan.
func (c BarrelConfig) Compile() (*Settings, error) {
	settings, fields := c.compile()
	if len(fields) > 0 {
		return nil, fields.Err()
	}
	return settings, nil
}

func (c BarrelConfig) compile() (*Settings, errors.FieldErrors) {
	var fields errors.FieldErrors

	ext := c.SourceExtension
	if ext == "" {
		ext = DefaultExtension
	}
	if !strings.HasPrefix(ext, ".") || strings.ContainsAny(ext, `/\`) {
		fields.Add("barrel.source_extension", c.SourceExtension,
			"extension must start with a dot and contain no path separators",
			"use a value like .dart or .ts")
	}

	scheme := NamingScheme(c.NamingScheme)
	if scheme == "" {
		scheme = NamingFolder
	}
	if !scheme.Valid() {
		fields.Add("barrel.naming_scheme", c.NamingScheme, "unknown naming scheme",
			"valid schemes: folder, index, custom")
	}
	if scheme == NamingCustom {
		switch {
		case strings.TrimSpace(c.CustomName) == "":
			fields.Add("barrel.custom_name", c.CustomName, "custom naming scheme requires custom_name",
				"set custom_name to a file name such as exports.dart")
		case strings.ContainsAny(c.CustomName, `/\`):
			fields.Add("barrel.custom_name", c.CustomName, "custom_name must be a bare file name")
		case !(&Settings{Extension: ext}).HasSourceExtension(strings.TrimSpace(c.CustomName)):
			fields.Add("barrel.custom_name", c.CustomName,
				fmt.Sprintf("custom_name must end in the source extension %s", ext),
				"set custom_name to a file name such as exports"+ext)
		}
	}

	patterns := make([]*regexp.Regexp, 0, len(c.ExcludePatterns))
	for _, p := range c.ExcludePatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			fields.Add("barrel.exclude_patterns", p,
				fmt.Sprintf("invalid regular expression: %v", err),
				`patterns are Go regular expressions, escape literal dots as \.`)
			continue
		}
		patterns = append(patterns, re)
	}

	suffixes := make([]string, 0, len(c.GeneratedSuffixes))
	for _, s := range c.GeneratedSuffixes {
		if !strings.HasPrefix(s, ".") || len(s) < 2 {
			fields.Add("barrel.generated_suffixes", s,
				"generated suffix must start with a dot",
				"use values like .g or .freezed (the source extension is appended)")
			continue
		}
		suffixes = append(suffixes, s)
	}

	if len(fields) > 0 {
		return nil, fields
	}

	return &Settings{
		Extension:             ext,
		NamingScheme:          scheme,
		CustomName:            strings.TrimSpace(c.CustomName),
		SortExports:           c.SortExports,
		GroupByDirectory:      c.GroupByDirectory,
		IncludeSubdirectories: c.IncludeSubdirectories,
		ExcludePatterns:       patterns,
		GeneratedSuffixes:     suffixes,
		HeaderComment:         c.HeaderComment,
		IncludeHeader:         c.IncludeHeader,
		AutoGenerateOnChange:  c.AutoGenerateOnChange,
		RespectGitignore:      c.RespectGitignore,
	}, nil
}

// HasSourceExtension reports whether name carries the configured extension.
func (s *Settings) HasSourceExtension(name string) bool {
	return strings.HasSuffix(name, s.Extension) && len(name) > len(s.Extension)
}

// IsGeneratedName reports whether name ends in one of the generated-file
// suffixes followed by the source extension (e.g. user.g.dart).
func (s *Settings) IsGeneratedName(name string) bool {
	for _, suffix := range s.GeneratedSuffixes {
		if strings.HasSuffix(name, suffix+s.Extension) {
			return true
		}
	}
	return false
}

// IsExcluded reports whether any exclude pattern matches name.
func (s *Settings) IsExcluded(name string) bool {
	for _, re := range s.ExcludePatterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}
