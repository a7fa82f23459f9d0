// Package errors provides standardized error types and helpers for the MuseScore Tools codebase.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure kinds surfaced to callers
var (
	// ErrUnsupportedFormat indicates a path whose extension is neither .mscx nor .mscz
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrMalformedDocument indicates unparsable XML or a broken archive manifest
	ErrMalformedDocument = errors.New("malformed document")
	// ErrInvalidStructure indicates the single-staff invariant was violated
	ErrInvalidStructure = errors.New("invalid structure")
	// ErrEmptyInput indicates a merge was requested without source documents
	ErrEmptyInput = errors.New("empty input")
	// ErrWriteFailure indicates an I/O failure while persisting a document
	ErrWriteFailure = errors.New("write failure")
)

// UnsupportedError represents a path with an unrecognized extension
type UnsupportedError struct {
	Path      string // Path that was rejected
	Extension string // Extension found on the path
}

func (e *UnsupportedError) Error() string {
	if e.Extension == "" {
		return fmt.Sprintf("unsupported format: %s has no extension", e.Path)
	}
	return fmt.Sprintf("unsupported format %q: %s", e.Extension, e.Path)
}

func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupportedFormat
}

// ParseError represents a document or manifest that could not be decoded
type ParseError struct {
	Format  string // Part being parsed (e.g., "score", "manifest", "archive")
	Path    string // File path, if applicable
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to parse %s at %s: %s", e.Format, e.Path, e.Message)
	}
	return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
}

func (e *ParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMalformedDocument, e.Err}
	}
	return []error{ErrMalformedDocument}
}

// StructureError represents a violated structural invariant
type StructureError struct {
	Path  string // Element path that was located (e.g., "Score/Staff")
	Found int    // Number of matching elements
	Want  string // Human-readable expectation
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("invalid structure: expected %s at %s, found %d", e.Want, e.Path, e.Found)
}

func (e *StructureError) Unwrap() error {
	return ErrInvalidStructure
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "open")
	Path      string // File/resource path involved
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// WriteError represents a failure while persisting a document
type WriteError struct {
	Operation string // Step that failed (e.g., "create archive", "rename")
	Path      string // Destination path
	Err       error  // Underlying error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write failure: %s %s: %v", e.Operation, e.Path, e.Err)
}

func (e *WriteError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrWriteFailure, e.Err}
	}
	return []error{ErrWriteFailure}
}

// Helper functions for creating common errors

// NewUnsupported creates an UnsupportedError
func NewUnsupported(path, ext string) *UnsupportedError {
	return &UnsupportedError{
		Path:      path,
		Extension: ext,
	}
}

// NewParse creates a ParseError
func NewParse(format, path, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		Path:    path,
		Message: message,
		Err:     err,
	}
}

// NewStructure creates a StructureError
func NewStructure(path string, found int, want string) *StructureError {
	return &StructureError{
		Path:  path,
		Found: found,
		Want:  want,
	}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{
		Operation: operation,
		Path:      path,
		Err:       err,
	}
}

// NewWrite creates a WriteError
func NewWrite(operation, path string, err error) *WriteError {
	return &WriteError{
		Operation: operation,
		Path:      path,
		Err:       err,
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
