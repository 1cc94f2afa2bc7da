package errors

import (
	"errors"
)

// Wrap returns err as the cause of a new BarrelError. The file, context and
// recoverability of an inner BarrelError carry over to the wrapper.
func Wrap(err error, errType ErrorType, code, message string) *BarrelError {
	if err == nil {
		return nil
	}

	wrapped := newError(errType, code, message, err)

	var inner *BarrelError
	if errors.As(err, &inner) {
		wrapped.Context = inner.Context
		wrapped.FilePath = inner.FilePath
		wrapped.Recoverable = inner.Recoverable
	}
	return wrapped
}

// WrapIO wraps err as an I/O error on path.
func WrapIO(err error, code, message, path string) *BarrelError {
	be := Wrap(err, ErrorTypeIO, code, message)
	if be != nil {
		be.FilePath = path
	}
	return be
}

// WrapConfig wraps err as a configuration error. Configuration errors are
// never recoverable.
func WrapConfig(err error, code, message string) *BarrelError {
	be := Wrap(err, ErrorTypeConfig, code, message)
	if be != nil {
		be.Recoverable = false
	}
	return be
}

func WrapValidation(err error, code, message string) *BarrelError {
	return Wrap(err, ErrorTypeValidation, code, message)
}

// Code returns the code of the outermost BarrelError in the chain, or "".
func Code(err error) string {
	var be *BarrelError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// IsNotFound reports whether err is a missing file or directory error.
func IsNotFound(err error) bool {
	return Code(err) == ErrCodeFileNotFound
}
