package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")
)

// ErrorKind is a stable machine-readable classification for query
// failures. Callers inspect the kind; the message is for humans.
type ErrorKind string

// Query error kinds.
const (
	// ErrKindSyntax is a query grammar violation, e.g. an unmatched
	// opening parenthesis. Fails fast to the caller.
	ErrKindSyntax ErrorKind = "syntax"

	// ErrKindValidation is an invalid search request: empty query,
	// inverted date range, non-positive limit, negative offset.
	// Never silently defaulted.
	ErrKindValidation ErrorKind = "validation"
)

// QueryError is a typed, inspectable query failure.
type QueryError struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

// NewSyntaxError builds a grammar violation error.
func NewSyntaxError(format string, args ...any) *QueryError {
	return &QueryError{Kind: ErrKindSyntax, Message: fmt.Sprintf(format, args...)}
}

// NewValidationError builds a request validation error.
func NewValidationError(format string, args ...any) *QueryError {
	return &QueryError{Kind: ErrKindValidation, Message: fmt.Sprintf(format, args...)}
}

// IsQueryError reports whether err is a QueryError of the given kind.
func IsQueryError(err error, kind ErrorKind) bool {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Kind == kind
	}
	return false
}
