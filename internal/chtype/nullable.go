package chtype

import (
	"fmt"
	"reflect"
)

// nullableType wraps an inner descriptor in a NULL-capable column.
type nullableType struct {
	name  string
	inner Type
}

// NewNullable returns the Nullable(inner) descriptor. A nil semantic value
// renders, encodes and decodes as NULL.
func NewNullable(inner Type) Type {
	return &nullableType{name: fmt.Sprintf("Nullable(%s)", inner.Name()), inner: inner}
}

func (t *nullableType) chType() {}

// Name returns the canonical type name.
func (t *nullableType) Name() string { return t.name }

// Inner returns the wrapped descriptor.
func (t *nullableType) Inner() Type { return t.inner }

// Literal renders NULL for nil, otherwise delegates to the inner type.
func (t *nullableType) Literal(v any) (string, error) {
	if v == nil {
		return "NULL", nil
	}
	return t.inner.Literal(v)
}

// Encode passes nil through and delegates otherwise.
func (t *nullableType) Encode(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	return t.inner.Encode(v)
}

// Decode passes nil through and delegates otherwise.
func (t *nullableType) Decode(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	return t.inner.Decode(v)
}

// sentinelType stores an optional value in a non-nullable column by
// substituting a configured sentinel for NULL.
//
// KNOWN LIMITATION: this mapping is lossy by construction. A genuine data
// value equal to the sentinel is indistinguishable from a stored null on
// read-back; Decode maps both to nil. Choose a sentinel outside the value
// domain, or use NewNullable when the column can afford NULL storage.
type sentinelType struct {
	inner        Type
	sentinel     any
	sentinelWire any
}

// NewSentinelNullable wraps inner so that a nil semantic value is stored as
// the given sentinel. The column type stays the inner, non-nullable type.
// The sentinel must itself be a valid inner value.
func NewSentinelNullable(inner Type, sentinel any) (Type, error) {
	if sentinel == nil {
		return nil, &TypeError{
			Code:     ErrCodeInvalidLiteral,
			TypeName: inner.Name(),
			Message:  "sentinel value must be non-nil",
		}
	}
	wire, err := inner.Encode(sentinel)
	if err != nil {
		return nil, fmt.Errorf("sentinel value: %w", err)
	}
	return &sentinelType{inner: inner, sentinel: sentinel, sentinelWire: wire}, nil
}

func (t *sentinelType) chType() {}

// Name returns the inner type name: the stored column is not nullable.
func (t *sentinelType) Name() string { return t.inner.Name() }

// Inner returns the wrapped descriptor.
func (t *sentinelType) Inner() Type { return t.inner }

// Sentinel returns the configured default-for-null value.
func (t *sentinelType) Sentinel() any { return t.sentinel }

// Literal renders the sentinel for nil, otherwise delegates.
func (t *sentinelType) Literal(v any) (string, error) {
	if v == nil {
		return t.inner.Literal(t.sentinel)
	}
	return t.inner.Literal(v)
}

// Encode substitutes the sentinel wire form for nil.
func (t *sentinelType) Encode(v any) (any, error) {
	if v == nil {
		return t.sentinelWire, nil
	}
	return t.inner.Encode(v)
}

// Decode maps the sentinel wire value back to nil. Values equal to the
// sentinel collapse into nil here; see the type comment.
func (t *sentinelType) Decode(v any) (any, error) {
	if v == nil || reflect.DeepEqual(v, t.sentinelWire) {
		return nil, nil
	}
	return t.inner.Decode(v)
}
