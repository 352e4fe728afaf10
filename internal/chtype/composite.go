package chtype

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// arrayType wraps an element descriptor.
type arrayType struct {
	name string
	elem Type
}

// NewArray returns the Array(elem) descriptor.
func NewArray(elem Type) Type {
	return &arrayType{name: fmt.Sprintf("Array(%s)", elem.Name()), elem: elem}
}

func (t *arrayType) chType() {}

// Name returns the canonical type name.
func (t *arrayType) Name() string { return t.name }

// Elem returns the element descriptor.
func (t *arrayType) Elem() Type { return t.elem }

// Literal renders [e1, e2, ...] with each element rendered by the element
// descriptor.
func (t *arrayType) Literal(v any) (string, error) {
	elems, err := sliceElements(t, v)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(elems))
	for i, e := range elems {
		lit, err := t.elem.Literal(e)
		if err != nil {
			return "", fmt.Errorf("array element %d: %w", i, err)
		}
		parts[i] = lit
	}
	return "[" + strings.Join(parts, ", ") + "]", nil
}

// Encode converts each element through the element codec.
func (t *arrayType) Encode(v any) (any, error) {
	elems, err := sliceElements(t, v)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(elems))
	for i, e := range elems {
		enc, err := t.elem.Encode(e)
		if err != nil {
			return nil, fmt.Errorf("array element %d: %w", i, err)
		}
		out[i] = enc
	}
	return out, nil
}

// Decode converts each wire element back through the element codec.
func (t *arrayType) Decode(v any) (any, error) {
	elems, err := sliceElements(t, v)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(elems))
	for i, e := range elems {
		dec, err := t.elem.Decode(e)
		if err != nil {
			return nil, fmt.Errorf("array element %d: %w", i, err)
		}
		out[i] = dec
	}
	return out, nil
}

// sliceElements flattens any slice or array value into []any.
func sliceElements(t Type, v any) ([]any, error) {
	if elems, ok := v.([]any); ok {
		return elems, nil
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, invalidLiteral(t, "expected slice, got %T", v)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

// MapWire is the wire form of a Map column: parallel key and value arrays.
type MapWire struct {
	Keys   []any
	Values []any
}

// mapType wraps key and value descriptors.
type mapType struct {
	name  string
	key   Type
	value Type
}

// NewMap returns the Map(key, value) descriptor.
func NewMap(key, value Type) Type {
	return &mapType{
		name:  fmt.Sprintf("Map(%s, %s)", key.Name(), value.Name()),
		key:   key,
		value: value,
	}
}

func (t *mapType) chType() {}

// Name returns the canonical type name.
func (t *mapType) Name() string { return t.name }

// Key returns the key descriptor.
func (t *mapType) Key() Type { return t.key }

// Value returns the value descriptor.
func (t *mapType) Value() Type { return t.value }

// mapEntry is an internal rendered pair, ordered by key text for
// deterministic output.
type mapEntry struct {
	keyLit string
	key    any
	value  any
}

// entries extracts map pairs ordered by rendered key literal.
func (t *mapType) entries(v any) ([]mapEntry, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Map {
		return nil, invalidLiteral(t, "expected map, got %T", v)
	}
	out := make([]mapEntry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key().Interface()
		keyLit, err := t.key.Literal(k)
		if err != nil {
			return nil, fmt.Errorf("map key: %w", err)
		}
		out = append(out, mapEntry{keyLit: keyLit, key: k, value: iter.Value().Interface()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].keyLit < out[j].keyLit })
	return out, nil
}

// Literal renders {k1: v1, k2: v2} with entries ordered by key text.
func (t *mapType) Literal(v any) (string, error) {
	entries, err := t.entries(v)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(entries))
	for i, e := range entries {
		valLit, err := t.value.Literal(e.value)
		if err != nil {
			return "", fmt.Errorf("map value for key %s: %w", e.keyLit, err)
		}
		parts[i] = e.keyLit + ": " + valLit
	}
	return "{" + strings.Join(parts, ", ") + "}", nil
}

// Encode converts the map to parallel key/value arrays ordered by key text.
func (t *mapType) Encode(v any) (any, error) {
	entries, err := t.entries(v)
	if err != nil {
		return nil, err
	}
	wire := MapWire{Keys: make([]any, len(entries)), Values: make([]any, len(entries))}
	for i, e := range entries {
		k, err := t.key.Encode(e.key)
		if err != nil {
			return nil, fmt.Errorf("map key: %w", err)
		}
		val, err := t.value.Encode(e.value)
		if err != nil {
			return nil, fmt.Errorf("map value for key %s: %w", e.keyLit, err)
		}
		wire.Keys[i] = k
		wire.Values[i] = val
	}
	return wire, nil
}

// Decode rebuilds a map[any]any from parallel key/value arrays.
func (t *mapType) Decode(v any) (any, error) {
	wire, ok := v.(MapWire)
	if !ok {
		return nil, invalidLiteral(t, "expected MapWire, got %T", v)
	}
	if len(wire.Keys) != len(wire.Values) {
		return nil, invalidLiteral(t, "key array length %d != value array length %d",
			len(wire.Keys), len(wire.Values))
	}
	out := make(map[any]any, len(wire.Keys))
	for i := range wire.Keys {
		k, err := t.key.Decode(wire.Keys[i])
		if err != nil {
			return nil, fmt.Errorf("map key %d: %w", i, err)
		}
		val, err := t.value.Decode(wire.Values[i])
		if err != nil {
			return nil, fmt.Errorf("map value %d: %w", i, err)
		}
		out[k] = val
	}
	return out, nil
}

// TupleElement is one positional member of a tuple descriptor.
// Name is optional; named tuples render "name Type" in the type text.
type TupleElement struct {
	Name string
	Type Type
}

// tupleType wraps an ordered list of element descriptors.
type tupleType struct {
	name  string
	elems []TupleElement
}

// NewTuple returns the Tuple(...) descriptor.
func NewTuple(elems ...TupleElement) Type {
	if len(elems) == 0 {
		panic("chtype: tuple requires at least one element")
	}
	parts := make([]string, len(elems))
	for i, e := range elems {
		if e.Name != "" {
			parts[i] = e.Name + " " + e.Type.Name()
		} else {
			parts[i] = e.Type.Name()
		}
	}
	return &tupleType{
		name:  fmt.Sprintf("Tuple(%s)", strings.Join(parts, ", ")),
		elems: elems,
	}
}

func (t *tupleType) chType() {}

// Name returns the canonical type name.
func (t *tupleType) Name() string { return t.name }

// Elements returns the ordered member descriptors.
func (t *tupleType) Elements() []TupleElement { return t.elems }

// values validates the fixed tuple shape.
func (t *tupleType) values(v any) ([]any, error) {
	vals, err := sliceElements(t, v)
	if err != nil {
		return nil, err
	}
	if len(vals) != len(t.elems) {
		return nil, invalidLiteral(t, "expected %d elements, got %d", len(t.elems), len(vals))
	}
	return vals, nil
}

// Literal renders (v1, v2, ...); a single-element tuple uses the tuple()
// function form to avoid reading as a parenthesized expression.
func (t *tupleType) Literal(v any) (string, error) {
	vals, err := t.values(v)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(vals))
	for i, e := range vals {
		lit, err := t.elems[i].Type.Literal(e)
		if err != nil {
			return "", fmt.Errorf("tuple element %d: %w", i, err)
		}
		parts[i] = lit
	}
	if len(parts) == 1 {
		return "tuple(" + parts[0] + ")", nil
	}
	return "(" + strings.Join(parts, ", ") + ")", nil
}

// Encode converts each positional element through its own codec.
func (t *tupleType) Encode(v any) (any, error) {
	vals, err := t.values(v)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(vals))
	for i, e := range vals {
		enc, err := t.elems[i].Type.Encode(e)
		if err != nil {
			return nil, fmt.Errorf("tuple element %d: %w", i, err)
		}
		out[i] = enc
	}
	return out, nil
}

// Decode converts each positional wire element back.
func (t *tupleType) Decode(v any) (any, error) {
	vals, err := t.values(v)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(vals))
	for i, e := range vals {
		dec, err := t.elems[i].Type.Decode(e)
		if err != nil {
			return nil, fmt.Errorf("tuple element %d: %w", i, err)
		}
		out[i] = dec
	}
	return out, nil
}
