package core

import (
	"errors"
	"strings"
)

// ErrLocked is returned by admin operations when the PIN does not unlock the gate.
var ErrLocked = errors.New("admin pin required")

// ValidationError lists the form fields that failed validation.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, ", ") + ": " + e.Message
}

// Has reports whether field failed validation.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f == field {
			return true
		}
	}
	return false
}
