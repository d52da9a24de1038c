// Package rowbinary implements the ClickHouse RowBinary family of wire
// formats: a row-major, little-endian, length-prefixed binary serialization
// for typed rows, with optional headers carrying column names and types.
package rowbinary

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
// These can be checked using errors.Is().
var (
	// ErrUnexpectedEOF indicates the stream ended where bytes were required.
	ErrUnexpectedEOF = errors.New("rowbinary: unexpected end of data")

	// ErrInvalidType indicates a malformed type descriptor.
	ErrInvalidType = errors.New("rowbinary: invalid type")

	// ErrUnsupportedType indicates a well-formed but unrecognized type name.
	ErrUnsupportedType = errors.New("rowbinary: unsupported type")

	// ErrInvalidValue indicates a value failed a type-specific structural check.
	ErrInvalidValue = errors.New("rowbinary: invalid value")

	// ErrTypeMismatch indicates a value variant incompatible with the declared type.
	ErrTypeMismatch = errors.New("rowbinary: type mismatch")

	// ErrOverflow indicates a varint or decoded count exceeded platform limits.
	ErrOverflow = errors.New("rowbinary: overflow")

	// ErrInternal indicates an invariant violation; never reachable from
	// well-formed inputs.
	ErrInternal = errors.New("rowbinary: internal error")
)

// TypeParseError reports a malformed type descriptor with the byte offset
// where parsing failed.
type TypeParseError struct {
	// Input is the descriptor being parsed.
	Input string

	// Offset is the byte offset in Input where the error occurred.
	Offset int

	// Message describes what went wrong.
	Message string
}

// Error returns a formatted error message.
func (e *TypeParseError) Error() string {
	return fmt.Sprintf("rowbinary: parse type %q at offset %d: %s", e.Input, e.Offset, e.Message)
}

// Is reports whether the error matches the target.
// This supports errors.Is(err, ErrInvalidType).
func (e *TypeParseError) Is(target error) bool {
	return target == ErrInvalidType
}

// UnsupportedTypeError reports a syntactically valid but unrecognized type
// identifier, or a Dynamic descriptor that cannot be interpreted.
type UnsupportedTypeError struct {
	// Name is the offending type name or descriptor.
	Name string
}

// Error returns a formatted error message.
func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("rowbinary: unsupported type %q", e.Name)
}

// Is reports whether the error matches the target.
func (e *UnsupportedTypeError) Is(target error) bool {
	return target == ErrUnsupportedType
}

// TypeMismatchError reports an encoder receiving a value variant that does
// not match the declared column type.
type TypeMismatchError struct {
	// Expected is the canonical name of the declared type.
	Expected string

	// Actual is the variant name of the provided value.
	Actual string
}

// Error returns a formatted error message.
func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("rowbinary: type mismatch: expected %s, got %s", e.Expected, e.Actual)
}

// Is reports whether the error matches the target.
func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// invalidValuef builds an ErrInvalidValue with a formatted description.
func invalidValuef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidValue, fmt.Sprintf(format, args...))
}

// overflowf builds an ErrOverflow with a formatted description.
func overflowf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrOverflow, fmt.Sprintf(format, args...))
}

// internalf builds an ErrInternal with a formatted description.
func internalf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInternal, fmt.Sprintf(format, args...))
}
