package chtype

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// aggregateType carries an opaque partial-aggregation state.
//
// States are produced and consumed by the server; this side treats them as
// raw bytes. They can be merged before finalization but never inspected.
type aggregateType struct {
	name string
}

// NewAggregateState returns the AggregateFunction(fn, argTypes...)
// descriptor. The semantic and wire forms are both []byte.
func NewAggregateState(function string, argTypes ...Type) Type {
	parts := make([]string, 0, len(argTypes)+1)
	parts = append(parts, function)
	for _, at := range argTypes {
		parts = append(parts, at.Name())
	}
	return &aggregateType{name: fmt.Sprintf("AggregateFunction(%s)", strings.Join(parts, ", "))}
}

func (t *aggregateType) chType() {}

// Name returns the canonical type name.
func (t *aggregateType) Name() string { return t.name }

// Literal renders the opaque state as an unhex() call over its hex dump.
func (t *aggregateType) Literal(v any) (string, error) {
	b, ok := v.([]byte)
	if !ok {
		return "", invalidLiteral(t, "expected []byte state, got %T", v)
	}
	return fmt.Sprintf("unhex(%s)", QuoteString(hex.EncodeToString(b))), nil
}

// Encode is identity: the state is already in wire form.
func (t *aggregateType) Encode(v any) (any, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, invalidLiteral(t, "expected []byte state, got %T", v)
	}
	return b, nil
}

// Decode is identity.
func (t *aggregateType) Decode(v any) (any, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, invalidLiteral(t, "expected []byte state, got %T", v)
	}
	return b, nil
}
