package config

import (
	"fmt"
	"path/filepath"
	"strings"

	berrors "github.com/conneroisu/barrel/internal/errors"
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

// Err returns the errors as a single configuration error, or nil.
func (vr *ValidationResult) Err() error {
	if !vr.HasErrors() {
		return nil
	}
	var fields berrors.FieldErrors
	for _, e := range vr.Errors {
		fields.Add(e.Field, e.Value, e.Message, e.Suggestions...)
	}
	return fields.Err()
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder

	if len(vr.Errors) > 0 {
		builder.WriteString("Validation errors:\n")
		for _, err := range vr.Errors {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", err.Field, err.Message))
			for _, suggestion := range err.Suggestions {
				builder.WriteString(fmt.Sprintf("    hint: %s\n", suggestion))
			}
		}
	}

	if len(vr.Warnings) > 0 {
		if len(vr.Errors) > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString("Validation warnings:\n")
		for _, warning := range vr.Warnings {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", warning.Field, warning.Message))
			for _, suggestion := range warning.Suggestions {
				builder.WriteString(fmt.Sprintf("    hint: %s\n", suggestion))
			}
		}
	}

	return builder.String()
}

// ValidateConfigWithDetails performs validation with detailed feedback. The
// barrel section is compiled as part of validation so pattern errors surface
// at load time.
func ValidateConfigWithDetails(config *Config) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	validateBarrelConfigDetails(&config.Barrel, result)
	validateWatchConfigDetails(&config.Watch, result)

	result.Valid = !result.HasErrors()

	return result
}

func validateBarrelConfigDetails(config *BarrelConfig, result *ValidationResult) {
	_, fields := config.compile()
	for _, fe := range fields {
		result.Errors = append(result.Errors, ValidationError{
			Field:       fe.Field,
			Value:       fe.Value,
			Message:     fe.Message,
			Suggestions: fe.Suggestions,
		})
	}

	if !config.SortExports && config.GroupByDirectory {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "barrel.group_by_directory",
			Value:   config.GroupByDirectory,
			Message: "grouping without sorting may repeat a directory header",
			Suggestions: []string{
				"enable sort_exports to keep each directory's exports contiguous",
			},
		})
	}

	if config.IncludeHeader && strings.TrimSpace(config.HeaderComment) == "" {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "barrel.header_comment",
			Value:   config.HeaderComment,
			Message: "include_header is set but header_comment is empty",
		})
	}
}

func validateWatchConfigDetails(config *WatchConfig, result *ValidationResult) {
	for _, path := range config.Paths {
		if strings.TrimSpace(path) == "" {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "watch.paths",
				Value:   path,
				Message: "empty watch path",
			})
			continue
		}
		if strings.Contains(filepath.Clean(path), "\x00") {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "watch.paths",
				Value:   path,
				Message: "path contains a NUL byte",
			})
		}
	}

	if config.Debounce < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:       "watch.debounce",
			Value:       config.Debounce,
			Message:     "debounce must not be negative",
			Suggestions: []string{"use a duration like 300ms"},
		})
	}
}
