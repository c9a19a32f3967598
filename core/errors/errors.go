// Package errors provides standardized error types and helpers for the Otzar codebase.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the import taxonomy
var (
	// ErrStructuralMismatch indicates schema/content shape disagreement
	ErrStructuralMismatch = errors.New("structural mismatch")
	// ErrUnresolvableCitation indicates no candidate key matched the index
	ErrUnresolvableCitation = errors.New("unresolvable citation")
	// ErrMalformedCitation indicates no reference tokens were extractable
	ErrMalformedCitation = errors.New("malformed citation")
	// ErrEmptyContent indicates a blank or placeholder branch
	ErrEmptyContent = errors.New("empty content")
	// ErrCorpusRoot indicates the corpus root is missing or unreadable.
	// This is the only fatal condition in the import taxonomy.
	ErrCorpusRoot = errors.New("corpus root not found")
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
)

// StructureError represents a schema/content shape disagreement with context.
// The affected subtree is skipped; the import continues.
type StructureError struct {
	Book    string // Book title where the mismatch occurred
	Path    string // Traversal path within the document (e.g., "Introduction/3")
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *StructureError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("structural mismatch in %s at %s: %s", e.Book, e.Path, e.Message)
	}
	return fmt.Sprintf("structural mismatch in %s: %s", e.Book, e.Message)
}

func (e *StructureError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrStructuralMismatch
}

// CitationError represents a citation that could not be parsed or resolved.
// Dropped and counted, never propagated.
type CitationError struct {
	Raw     string // The citation string as received
	Stage   string // "parse" or "resolve"
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *CitationError) Error() string {
	return fmt.Sprintf("citation %s failed for %q: %s", e.Stage, e.Raw, e.Message)
}

func (e *CitationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	if e.Stage == "parse" {
		return ErrMalformedCitation
	}
	return ErrUnresolvableCitation
}

// SourceError represents a failure reading from the document source.
type SourceError struct {
	Operation string // Operation being performed (e.g., "read", "decode")
	Path      string // File/resource path involved
	Err       error  // Underlying error
}

func (e *SourceError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string // Field name that failed validation
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// Helper functions for creating common errors

// NewStructure creates a StructureError
func NewStructure(book, path, message string) *StructureError {
	return &StructureError{
		Book:    book,
		Path:    path,
		Message: message,
	}
}

// NewCitation creates a CitationError
func NewCitation(raw, stage, message string) *CitationError {
	return &CitationError{
		Raw:     raw,
		Stage:   stage,
		Message: message,
	}
}

// NewSource creates a SourceError
func NewSource(operation, path string, err error) *SourceError {
	return &SourceError{
		Operation: operation,
		Path:      path,
		Err:       err,
	}
}

// NewValidation creates a ValidationError
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
