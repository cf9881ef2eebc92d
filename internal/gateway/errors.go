package gateway

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownTable  = errors.New("unknown table")
	ErrUnknownColumn = errors.New("unknown column")
	ErrNotFound      = errors.New("record not found")
)

// ConflictError is a server-side uniqueness-constraint violation. Field is the
// form field the constraint guards, when it could be recognised.
type ConflictError struct {
	Table      string
	Field      string
	Constraint string
	Err        error
}

func (e *ConflictError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: duplicate value for %s", e.Table, e.Field)
	}
	return fmt.Sprintf("%s: unique constraint %q violated", e.Table, e.Constraint)
}

func (e *ConflictError) Unwrap() error { return e.Err }

// FieldError describes one rejected input field.
type FieldError struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error codes carried by FieldError.
const (
	CodeRequired        = "required"
	CodeInvalid         = "invalid"
	CodeOutOfRange      = "out_of_range"
	CodeUniqueViolation = "unique_violation"
	CodeRefNotFound     = "ref_not_found"
)

// ValidationError is a set of field errors rejected before reaching storage.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ErrNotAuthenticated blocks every mutating operation when no actor is known.
var ErrNotAuthenticated = errors.New("you must be logged in")

// ErrInvalidCredentials is returned by sign-in for an unknown email or a wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")
