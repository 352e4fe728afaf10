package chtype

import (
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"
)

// scalarType is the shared implementation for leaf storage types.
//
// Encode and Decode default to identity: most scalar semantic values travel
// unchanged on the wire. Types whose wire form differs (TimeOfDay, enums)
// supply explicit conversion functions.
type scalarType struct {
	name string
	lit  func(t Type, v any) (string, error)
	enc  func(t Type, v any) (any, error)
	dec  func(t Type, v any) (any, error)
}

func (t *scalarType) chType() {}

// Name returns the canonical type name.
func (t *scalarType) Name() string { return t.name }

// Literal renders v as dialect literal text.
func (t *scalarType) Literal(v any) (string, error) { return t.lit(t, v) }

// Encode converts a semantic value to its wire form.
func (t *scalarType) Encode(v any) (any, error) {
	if t.enc == nil {
		return v, nil
	}
	return t.enc(t, v)
}

// Decode converts a wire value back to its semantic form.
func (t *scalarType) Decode(v any) (any, error) {
	if t.dec == nil {
		return v, nil
	}
	return t.dec(t, v)
}

// signedLiteral builds a literal renderer for a signed integer type with
// the given inclusive range.
func signedLiteral(min, max int64) func(Type, any) (string, error) {
	return func(t Type, v any) (string, error) {
		n, ok := asInt64(v)
		if !ok {
			return "", invalidLiteral(t, "expected integer, got %T", v)
		}
		if n < min || n > max {
			return "", invalidLiteral(t, "value %d out of range [%d, %d]", n, min, max)
		}
		return strconv.FormatInt(n, 10), nil
	}
}

// unsignedLiteral builds a literal renderer for an unsigned integer type
// with the given inclusive upper bound.
func unsignedLiteral(max uint64) func(Type, any) (string, error) {
	return func(t Type, v any) (string, error) {
		n, ok := asUint64(v)
		if !ok {
			return "", invalidLiteral(t, "expected non-negative integer, got %v (%T)", v, v)
		}
		if n > max {
			return "", invalidLiteral(t, "value %d out of range [0, %d]", n, max)
		}
		return strconv.FormatUint(n, 10), nil
	}
}

// floatLiteral renders a floating point literal.
// NaN and the infinities render as the dialect's textual tokens rather
// than numeric literals.
func floatLiteral(t Type, v any) (string, error) {
	f, ok := asFloat64(v)
	if !ok {
		return "", invalidLiteral(t, "expected float, got %T", v)
	}
	switch {
	case math.IsNaN(f):
		return "nan", nil
	case math.IsInf(f, 1):
		return "inf", nil
	case math.IsInf(f, -1):
		return "-inf", nil
	}
	return strconv.FormatFloat(f, 'g', -1, 64), nil
}

// Predeclared scalar descriptors. These are the shared singletons the
// Catalog hands out; callers never construct their own copies.
var (
	String Type = &scalarType{name: "String", lit: func(t Type, v any) (string, error) {
		switch s := v.(type) {
		case string:
			return QuoteString(s), nil
		case []byte:
			return QuoteString(string(s)), nil
		}
		return "", invalidLiteral(t, "expected string, got %T", v)
	}}

	Bool Type = &scalarType{name: "Bool", lit: func(t Type, v any) (string, error) {
		b, ok := v.(bool)
		if !ok {
			return "", invalidLiteral(t, "expected bool, got %T", v)
		}
		if b {
			return "true", nil
		}
		return "false", nil
	}}

	Int8  Type = &scalarType{name: "Int8", lit: signedLiteral(math.MinInt8, math.MaxInt8)}
	Int16 Type = &scalarType{name: "Int16", lit: signedLiteral(math.MinInt16, math.MaxInt16)}
	Int32 Type = &scalarType{name: "Int32", lit: signedLiteral(math.MinInt32, math.MaxInt32)}
	Int64 Type = &scalarType{name: "Int64", lit: signedLiteral(math.MinInt64, math.MaxInt64)}

	UInt8  Type = &scalarType{name: "UInt8", lit: unsignedLiteral(math.MaxUint8)}
	UInt16 Type = &scalarType{name: "UInt16", lit: unsignedLiteral(math.MaxUint16)}
	UInt32 Type = &scalarType{name: "UInt32", lit: unsignedLiteral(math.MaxUint32)}
	UInt64 Type = &scalarType{name: "UInt64", lit: unsignedLiteral(math.MaxUint64)}

	Float32 Type = &scalarType{name: "Float32", lit: floatLiteral}
	Float64 Type = &scalarType{name: "Float64", lit: floatLiteral}

	UUID Type = &scalarType{name: "UUID", lit: func(t Type, v any) (string, error) {
		switch u := v.(type) {
		case uuid.UUID:
			return QuoteString(u.String()), nil
		case string:
			parsed, err := uuid.Parse(u)
			if err != nil {
				return "", invalidLiteral(t, "invalid UUID text %q", u)
			}
			return QuoteString(parsed.String()), nil
		}
		return "", invalidLiteral(t, "expected uuid.UUID, got %T", v)
	}}
)

// NewFixedString returns the FixedString(n) descriptor.
// Literal rendering rejects values longer than n bytes; shorter values are
// left as-is (the server zero-pads on storage).
func NewFixedString(n int) Type {
	return &scalarType{
		name: fmt.Sprintf("FixedString(%d)", n),
		lit: func(t Type, v any) (string, error) {
			s, ok := v.(string)
			if !ok {
				return "", invalidLiteral(t, "expected string, got %T", v)
			}
			if len(s) > n {
				return "", invalidLiteral(t, "value is %d bytes, limit is %d", len(s), n)
			}
			return QuoteString(s), nil
		},
	}
}
