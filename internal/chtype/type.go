package chtype

import "fmt"

// Type is a sealed interface describing one ClickHouse storage type.
//
// Only descriptors in this package implement it. The marker method pattern
// prevents external implementations and keeps type switches over descriptor
// kinds exhaustive.
//
// A descriptor bundles three concerns:
//   - Name: the canonical dialect type text, e.g. "Array(String)"
//   - Literal: rendering a semantic Go value as dialect SQL literal text
//   - Encode/Decode: converting between the semantic Go value and the
//     wire form exchanged with the server
//
// Descriptors are immutable after construction and safe to share across
// concurrent query compilations.
type Type interface {
	chType() // Marker method - seals interface to this package

	// Name returns the canonical type name, including nested types.
	Name() string

	// Literal renders v as dialect SQL literal text.
	// Fails with ErrCodeInvalidLiteral when v's runtime shape does not
	// match the descriptor.
	Literal(v any) (string, error)

	// Encode converts a semantic value to its wire form.
	Encode(v any) (any, error)

	// Decode converts a wire value back to its semantic form.
	// Decode(Encode(v)) == v for all valid v, except for documented
	// lossy mappings (see SentinelNullable).
	Decode(v any) (any, error)
}

// Equal reports whether two descriptors are structurally equal.
// The canonical name encodes the full nested structure, so name equality
// is structural equality.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Name() == b.Name()
}

// TypeErrorCode categorizes type system errors.
type TypeErrorCode string

const (
	// ErrCodeUnsupportedType indicates no catalog mapping exists for a Go type.
	ErrCodeUnsupportedType TypeErrorCode = "UNSUPPORTED_TYPE"

	// ErrCodeInvalidLiteral indicates a value's runtime shape does not match
	// the descriptor it was rendered against.
	ErrCodeInvalidLiteral TypeErrorCode = "INVALID_LITERAL"
)

// TypeError represents a type mapping or literal rendering failure.
//
// All TypeErrors are raised synchronously during query compilation. They
// represent programmer errors in query construction and are never retried.
type TypeError struct {
	// Code identifies the error category.
	Code TypeErrorCode

	// TypeName is the canonical descriptor name involved, if any.
	TypeName string

	// Message is a human-readable description naming the offending construct.
	Message string
}

// Error implements the error interface.
func (e *TypeError) Error() string {
	if e.TypeName != "" {
		return fmt.Sprintf("%s: %s (type=%s)", e.Code, e.Message, e.TypeName)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// invalidLiteral builds an ErrCodeInvalidLiteral error for descriptor t.
func invalidLiteral(t Type, format string, args ...any) error {
	return &TypeError{
		Code:     ErrCodeInvalidLiteral,
		TypeName: t.Name(),
		Message:  fmt.Sprintf(format, args...),
	}
}
