package diagram

import (
	"errors"
	"fmt"
)

// Sentinel errors returned (wrapped in *Error) by graph mutations.
var (
	ErrNodeNotFound           = errors.New("diagram: node not found")
	ErrLinkNotFound           = errors.New("diagram: link not found")
	ErrEmptyKey               = errors.New("diagram: key is empty")
	ErrDuplicateKey           = errors.New("diagram: key already in use")
	ErrUnknownCategory        = errors.New("diagram: unknown category")
	ErrEmptyLabel             = errors.New("diagram: label is empty")
	ErrNumericLabel           = errors.New("diagram: label reads as a number")
	ErrDuplicateLabel         = errors.New("diagram: label already in use")
	ErrGhostTarget            = errors.New("diagram: ghost has no real node to mirror")
	ErrGhostHasNoData         = errors.New("diagram: ghosts do not carry data")
	ErrNoEquation             = errors.New("diagram: node category has no equation")
	ErrNotAValve              = errors.New("diagram: node is not a valve")
	ErrInvalidFlowEndpoint    = errors.New("diagram: flow endpoints must be stocks or clouds")
	ErrInvalidInfluenceTarget = errors.New("diagram: influences may only feed variables or valves")
	ErrSelfLink               = errors.New("diagram: link cannot start and end at the same node")
	ErrFlowWithoutValve       = errors.New("diagram: flow has no valve")
	ErrDirectValveEdit        = errors.New("diagram: valves are created and removed with their flow")

	ErrTransactionNotActive    = errors.New("diagram: transaction is not active")
	ErrTransactionAlreadyEnded = errors.New("diagram: transaction has already been committed or rolled back")
	ErrNestedTransaction       = errors.New("diagram: nested transactions are not supported")
)

// Error provides structured information about a failed graph operation.
type Error struct {
	Op      string // Operation that failed (e.g. "Rename", "AddFlow")
	Entity  string // "node" or "link"
	Key     string // Entity key, if known
	Field   string // Field being edited, if any
	Context string // Free-form detail
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	subject := e.Entity
	if e.Key != "" {
		subject = fmt.Sprintf("%s %q", e.Entity, e.Key)
	}
	if e.Field != "" {
		subject = fmt.Sprintf("%s (field %s)", subject, e.Field)
	}
	if e.Context != "" {
		subject = fmt.Sprintf("%s (%s)", subject, e.Context)
	}
	if subject == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, subject, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// ErrorBuilder provides a fluent interface for building Errors.
type ErrorBuilder struct {
	err Error
}

// NewError starts an error for the given operation.
func NewError(op string) *ErrorBuilder {
	return &ErrorBuilder{err: Error{Op: op}}
}

// Node sets the entity to "node" with the given key.
func (b *ErrorBuilder) Node(key string) *ErrorBuilder {
	b.err.Entity = "node"
	b.err.Key = key
	return b
}

// Link sets the entity to "link" with the given key.
func (b *ErrorBuilder) Link(key string) *ErrorBuilder {
	b.err.Entity = "link"
	b.err.Key = key
	return b
}

// Field sets the field name.
func (b *ErrorBuilder) Field(name string) *ErrorBuilder {
	b.err.Field = name
	return b
}

// Context sets additional context information.
func (b *ErrorBuilder) Context(format string, args ...any) *ErrorBuilder {
	b.err.Context = fmt.Sprintf(format, args...)
	return b
}

// Cause sets the underlying error cause.
func (b *ErrorBuilder) Cause(err error) *ErrorBuilder {
	b.err.Cause = err
	return b
}

// Build returns the constructed Error.
func (b *ErrorBuilder) Build() *Error {
	e := b.err
	return &e
}

// Err returns the constructed error as an error interface.
func (b *ErrorBuilder) Err() error {
	return b.Build()
}
