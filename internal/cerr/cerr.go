// Package cerr defines the tagged error kinds shared across codelens
// components and the user-visible failure shape described by the error
// handling design.
package cerr

import "fmt"

// Kind is a closed set of error categories. Callers switch on Kind rather
// than inspecting error strings.
type Kind string

const (
	KindNotFound       Kind = "not_found"
	KindIO             Kind = "io"
	KindParse          Kind = "parse"
	KindVectorDB       Kind = "vector_db"
	KindConfiguration  Kind = "configuration"
	KindAuthentication Kind = "authentication"
	KindAuthorization  Kind = "authorization"
	KindInternal       Kind = "internal"
)

// Severity ranks how the caller should treat a failure.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Error is the user-visible failure shape: a stable id, a category, a
// severity, a message, and optional source-location/suggestion fields.
type Error struct {
	ID         string
	Kind       Kind
	Severity   Severity
	Message    string
	File       string
	Line       int
	Suggestion string
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.ID, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.ID, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error with the given id, kind and message.
func New(id string, kind Kind, message string) *Error {
	return &Error{ID: id, Kind: kind, Severity: SeverityError, Message: message}
}

// Wrap builds an Error that carries an underlying cause.
func Wrap(id string, kind Kind, message string, cause error) *Error {
	return &Error{ID: id, Kind: kind, Severity: SeverityError, Message: message, Cause: cause}
}

// WithSuggestion attaches an operator-facing suggestion and returns the
// receiver for chaining.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// WithLocation attaches a source file/line and returns the receiver.
func (e *Error) WithLocation(file string, line int) *Error {
	e.File = file
	e.Line = line
	return e
}

// NotFound builds a NotFound-kind error for the given resource.
func NotFound(id, message string) *Error { return New(id, KindNotFound, message) }

// Internal builds an Internal-kind error, used for invariant violations
// that should be reported and investigated rather than retried.
func Internal(id, message string) *Error { return New(id, KindInternal, message) }
