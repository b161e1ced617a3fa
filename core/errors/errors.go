// Package errors provides standardized error types and helpers for the docfold codebase.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrMalformedInput indicates input that does not conform to the claimed format
	ErrMalformedInput = errors.New("malformed input")
	// ErrEncoding indicates a character-encoding failure in the input
	ErrEncoding = errors.New("encoding error")
	// ErrTruncated indicates input that ends before the format's grammar allows
	ErrTruncated = errors.New("truncated input")
	// ErrUnrepresentable indicates a structure the target format cannot express
	ErrUnrepresentable = errors.New("unrepresentable structure")
	// ErrIO indicates an I/O failure from a caller-supplied source or sink
	ErrIO = errors.New("i/o failure")
	// ErrDuplicateID indicates a resource identifier collision
	ErrDuplicateID = errors.New("duplicate id")
	// ErrUnknownFormat indicates a format name no registered module handles
	ErrUnknownFormat = errors.New("unknown format")
)

// Is reports whether any error in err's chain matches target.
// Re-exported so callers don't need to import both packages.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// ParseError represents a hard parse failure from a format module.
type ParseError struct {
	Format string // Format being parsed (e.g., "markdown", "bibtex")
	Reason string // Human-readable failure detail
	Offset int    // Byte offset of the failure, -1 if unknown
	Err    error  // Underlying error: one of the Err* parse sentinels
}

func (e *ParseError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s: parse failed at byte %d: %s", e.Format, e.Offset, e.Reason)
	}
	return fmt.Sprintf("%s: parse failed: %s", e.Format, e.Reason)
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrMalformedInput
}

// Malformed builds a ParseError for input that violates the format grammar.
func Malformed(format, reason string) *ParseError {
	return &ParseError{Format: format, Reason: reason, Offset: -1, Err: ErrMalformedInput}
}

// MalformedAt builds a ParseError carrying the byte offset of the violation.
func MalformedAt(format, reason string, offset int) *ParseError {
	return &ParseError{Format: format, Reason: reason, Offset: offset, Err: ErrMalformedInput}
}

// Encoding builds a ParseError for invalid character encoding.
func Encoding(format, reason string) *ParseError {
	return &ParseError{Format: format, Reason: reason, Offset: -1, Err: ErrEncoding}
}

// Truncated builds a ParseError for input that ends mid-construct.
func Truncated(format, reason string) *ParseError {
	return &ParseError{Format: format, Reason: reason, Offset: -1, Err: ErrTruncated}
}

// EmitError represents a hard emit failure from a format module.
type EmitError struct {
	Format string // Format being emitted
	Reason string // Human-readable failure detail
	Err    error  // Underlying error: ErrUnrepresentable or ErrIO
}

func (e *EmitError) Error() string {
	return fmt.Sprintf("%s: emit failed: %s", e.Format, e.Reason)
}

func (e *EmitError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrUnrepresentable
}

// Unrepresentable builds an EmitError for structure the target cannot express.
func Unrepresentable(format, reason string) *EmitError {
	return &EmitError{Format: format, Reason: reason, Err: ErrUnrepresentable}
}

// IO builds an EmitError wrapping a caller-supplied sink failure.
func IO(format string, err error) *EmitError {
	return &EmitError{Format: format, Reason: err.Error(), Err: fmt.Errorf("%w: %w", ErrIO, err)}
}

// DuplicateIDError represents a resource id collision within one ResourceMap.
type DuplicateIDError struct {
	ID string // Identifier that collided
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("resource id already present: %s", e.ID)
}

func (e *DuplicateIDError) Unwrap() error {
	return ErrDuplicateID
}

// UnknownFormatError represents a registry lookup for an unregistered format.
type UnknownFormatError struct {
	Name string // Requested format name
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown format: %s", e.Name)
}

func (e *UnknownFormatError) Unwrap() error {
	return ErrUnknownFormat
}
