// Package errors provides the structured error type shared by the barrel
// packages. Errors carry a category, a stable code and optional file
// context so callers can decide between "skip this file" and "abort".
package errors

import (
	"errors"
	"strings"
)

// ErrorType is the category of a BarrelError.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeConfig     ErrorType = "config"
)

// Stable error codes.
const (
	ErrCodeInvalidPath     = "ERR_INVALID_PATH"
	ErrCodeInvalidPattern  = "ERR_INVALID_PATTERN"
	ErrCodeConfigInvalid   = "ERR_CONFIG_INVALID"
	ErrCodeFileNotFound    = "ERR_FILE_NOT_FOUND"
	ErrCodeWriteFailed     = "ERR_WRITE_FAILED"
	ErrCodeReadFailed      = "ERR_READ_FAILED"
	ErrCodeNoContainingDir = "ERR_NO_CONTAINING_DIR"
)

// BarrelError is the error returned across package boundaries. A
// recoverable error means only the file it names was skipped.
type BarrelError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	FilePath    string
	Recoverable bool
}

// Error renders "[CODE] path message: cause", omitting empty parts.
func (e *BarrelError) Error() string {
	var b strings.Builder
	if e.Code != "" {
		b.WriteString("[" + e.Code + "] ")
	}
	if e.FilePath != "" {
		b.WriteString(e.FilePath + " ")
	}
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": " + e.Cause.Error())
	}
	return b.String()
}

func (e *BarrelError) Unwrap() error {
	return e.Cause
}

// Is matches another BarrelError with the same type and code, so callers
// can test against a template such as &BarrelError{Type: ErrorTypeIO, Code: ErrCodeWriteFailed}.
func (e *BarrelError) Is(target error) bool {
	t, ok := target.(*BarrelError)
	return ok && e.Type == t.Type && e.Code == t.Code
}

// WithContext records key on the error and returns it.
func (e *BarrelError) WithContext(key string, value interface{}) *BarrelError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithFile sets the file the error refers to and returns it.
func (e *BarrelError) WithFile(path string) *BarrelError {
	e.FilePath = path
	return e
}

func newError(errType ErrorType, code, message string, cause error) *BarrelError {
	return &BarrelError{
		Type:        errType,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: errType == ErrorTypeValidation || errType == ErrorTypeIO,
	}
}

func NewValidationError(code, message string) *BarrelError {
	return newError(ErrorTypeValidation, code, message, nil)
}

func NewIOError(code, message string, cause error) *BarrelError {
	return newError(ErrorTypeIO, code, message, cause)
}

func NewConfigError(code, message string) *BarrelError {
	return newError(ErrorTypeConfig, code, message, nil)
}

// IsRecoverable reports whether err only affected a single file. Errors
// that are not BarrelErrors are treated as fatal.
func IsRecoverable(err error) bool {
	var be *BarrelError
	return errors.As(err, &be) && be.Recoverable
}

// IsConfigError reports whether err came from loading or compiling settings.
func IsConfigError(err error) bool {
	return hasType(err, ErrorTypeConfig)
}

// IsIOError reports whether err came from the file system collaborator.
func IsIOError(err error) bool {
	return hasType(err, ErrorTypeIO)
}

func hasType(err error, errType ErrorType) bool {
	var be *BarrelError
	return errors.As(err, &be) && be.Type == errType
}

// ErrInvalidPath reports a path that cannot be resolved.
func ErrInvalidPath(path string) *BarrelError {
	return NewValidationError(ErrCodeInvalidPath, "invalid path").WithFile(path)
}

// ErrFileNotFound reports a missing file or directory.
func ErrFileNotFound(path string) *BarrelError {
	return NewValidationError(ErrCodeFileNotFound, "file not found").WithFile(path)
}

// ErrNoContainingDir reports a barrel whose directory no longer resolves.
func ErrNoContainingDir(path string) *BarrelError {
	return NewValidationError(ErrCodeNoContainingDir, "no containing directory").WithFile(path)
}

// ErrWriteFailed wraps a create or replace failure for a barrel file.
func ErrWriteFailed(path string, cause error) *BarrelError {
	return NewIOError(ErrCodeWriteFailed, "writing barrel file failed", cause).WithFile(path)
}
