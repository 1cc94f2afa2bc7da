package errors

import (
	"fmt"
	"strings"
)

// FieldError is one invalid configuration value.
type FieldError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (f *FieldError) Error() string {
	return fmt.Sprintf("%s: %s (got %v)", f.Field, f.Message, f.Value)
}

// FieldErrors collects every invalid field of one configuration so they
// can be reported together.
type FieldErrors []*FieldError

// Add appends an invalid field.
func (fe *FieldErrors) Add(field string, value interface{}, message string, suggestions ...string) {
	*fe = append(*fe, &FieldError{
		Field:       field,
		Value:       value,
		Message:     message,
		Suggestions: suggestions,
	})
}

// Err folds the fields into one ERR_CONFIG_INVALID error. The context maps
// each field to its value and suggestions. Err returns nil when fe is empty.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}

	messages := make([]string, 0, len(fe))
	be := NewConfigError(ErrCodeConfigInvalid, "")
	for _, f := range fe {
		messages = append(messages, f.Error())
		be.WithContext(f.Field, map[string]interface{}{
			"value":       f.Value,
			"suggestions": f.Suggestions,
		})
	}
	be.Message = strings.Join(messages, "; ")
	return be
}
