package version

import (
	"errors"
	"fmt"
	"math"
)

// ErrorKind classifies a version error for programmatic handling.
type ErrorKind string

const (
	// KindMalformedVersion indicates the input is not a valid version string.
	KindMalformedVersion ErrorKind = "MALFORMED_VERSION"
	// KindInvalidBumpLabel indicates a pre-release or build label violates the identifier grammar.
	KindInvalidBumpLabel ErrorKind = "INVALID_BUMP_LABEL"
	// KindArithmeticOverflow indicates a bump would exceed the uint64 range.
	KindArithmeticOverflow ErrorKind = "ARITHMETIC_OVERFLOW"
	// KindInvalidBumpRequest indicates a bump request with a zero or unknown kind.
	KindInvalidBumpRequest ErrorKind = "INVALID_BUMP_REQUEST"
)

// Sentinels for errors.Is. Every *Error matches the sentinel of its Kind.
var (
	ErrMalformedVersion   = errors.New("malformed version")
	ErrInvalidBumpLabel   = errors.New("invalid bump label")
	ErrArithmeticOverflow = errors.New("arithmetic overflow")
	ErrInvalidBumpRequest = errors.New("invalid bump request")
)

// Error describes why a version could not be parsed or bumped.
type Error struct {
	Kind ErrorKind
	// Input is the offending string: the version being parsed, the bump
	// label, or the rendered version being bumped.
	Input string
	// Offset is the byte offset into Input where the problem was detected,
	// or -1 when the error is not tied to a position.
	Offset int
	Reason string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("[%s] %s at offset %d in %q", e.Kind, e.Reason, e.Offset, e.Input)
	}
	return fmt.Sprintf("[%s] %s: %q", e.Kind, e.Reason, e.Input)
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrMalformedVersion:
		return e.Kind == KindMalformedVersion
	case ErrInvalidBumpLabel:
		return e.Kind == KindInvalidBumpLabel
	case ErrArithmeticOverflow:
		return e.Kind == KindArithmeticOverflow
	case ErrInvalidBumpRequest:
		return e.Kind == KindInvalidBumpRequest
	}
	return false
}

func malformed(input string, offset int, format string, args ...any) *Error {
	return &Error{
		Kind:   KindMalformedVersion,
		Input:  input,
		Offset: offset,
		Reason: fmt.Sprintf(format, args...),
	}
}

func overflow(input, component string) *Error {
	return &Error{
		Kind:   KindArithmeticOverflow,
		Input:  input,
		Offset: -1,
		Reason: fmt.Sprintf("%s cannot be incremented past %d", component, uint64(math.MaxUint64)),
	}
}
