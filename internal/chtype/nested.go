package chtype

import (
	"fmt"
	"strings"
)

// NestedField is one declared column of a Nested record.
type NestedField struct {
	Name string
	Type Type
}

// nestedType decomposes a sequence of fixed-shape records into parallel
// per-field arrays, which is how the storage engine models Nested columns.
type nestedType struct {
	name   string
	fields []NestedField
	index  map[string]int
}

// NewNested returns the Nested(f1 T1, f2 T2, ...) descriptor.
//
// The semantic form is []map[string]any, one map per record, each carrying
// exactly the declared fields. The wire form is map[string][]any: one array
// per declared field, all of equal length. An unequal length on decode is a
// hard error, never silently truncated.
func NewNested(fields ...NestedField) Type {
	if len(fields) == 0 {
		panic("chtype: nested requires at least one field")
	}
	index := make(map[string]int, len(fields))
	parts := make([]string, len(fields))
	for i, f := range fields {
		if _, dup := index[f.Name]; dup {
			panic(fmt.Sprintf("chtype: duplicate nested field %q", f.Name))
		}
		index[f.Name] = i
		parts[i] = f.Name + " " + f.Type.Name()
	}
	return &nestedType{
		name:   fmt.Sprintf("Nested(%s)", strings.Join(parts, ", ")),
		fields: fields,
		index:  index,
	}
}

func (t *nestedType) chType() {}

// Name returns the canonical type name.
func (t *nestedType) Name() string { return t.name }

// Fields returns the declaration-ordered field descriptors.
func (t *nestedType) Fields() []NestedField { return t.fields }

// records validates the semantic []map[string]any shape.
func (t *nestedType) records(v any) ([]map[string]any, error) {
	recs, ok := v.([]map[string]any)
	if !ok {
		return nil, invalidLiteral(t, "expected []map[string]any, got %T", v)
	}
	for i, rec := range recs {
		if len(rec) != len(t.fields) {
			return nil, invalidLiteral(t, "record %d has %d fields, expected %d", i, len(rec), len(t.fields))
		}
		for name := range rec {
			if _, known := t.index[name]; !known {
				return nil, invalidLiteral(t, "record %d has undeclared field %q", i, name)
			}
		}
	}
	return recs, nil
}

// Literal renders one array literal per declared field, in declaration
// order, joined with ", " (the VALUES position for the nested subcolumns).
func (t *nestedType) Literal(v any) (string, error) {
	arrays, err := t.fieldArrays(v)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(t.fields))
	for i, f := range t.fields {
		lit, err := NewArray(f.Type).Literal(arrays[f.Name])
		if err != nil {
			return "", fmt.Errorf("nested field %q: %w", f.Name, err)
		}
		parts[i] = lit
	}
	return strings.Join(parts, ", "), nil
}

// fieldArrays decomposes records into unencoded parallel arrays.
func (t *nestedType) fieldArrays(v any) (map[string][]any, error) {
	// Accept the wire form directly so Literal can render either shape.
	if arrays, ok := v.(map[string][]any); ok {
		if err := t.checkArrays(arrays); err != nil {
			return nil, err
		}
		return arrays, nil
	}
	recs, err := t.records(v)
	if err != nil {
		return nil, err
	}
	arrays := make(map[string][]any, len(t.fields))
	for _, f := range t.fields {
		col := make([]any, len(recs))
		for i, rec := range recs {
			col[i] = rec[f.Name]
		}
		arrays[f.Name] = col
	}
	return arrays, nil
}

// checkArrays enforces declared fields and equal lengths.
func (t *nestedType) checkArrays(arrays map[string][]any) error {
	if len(arrays) != len(t.fields) {
		return invalidLiteral(t, "expected %d field arrays, got %d", len(t.fields), len(arrays))
	}
	length := -1
	for _, f := range t.fields {
		col, ok := arrays[f.Name]
		if !ok {
			return invalidLiteral(t, "missing field array %q", f.Name)
		}
		if length == -1 {
			length = len(col)
			continue
		}
		if len(col) != length {
			return invalidLiteral(t, "field array %q has length %d, expected %d", f.Name, len(col), length)
		}
	}
	return nil
}

// Encode decomposes records into parallel per-field arrays, converting
// every element through its field codec.
func (t *nestedType) Encode(v any) (any, error) {
	recs, err := t.records(v)
	if err != nil {
		return nil, err
	}
	wire := make(map[string][]any, len(t.fields))
	for _, f := range t.fields {
		col := make([]any, len(recs))
		for i, rec := range recs {
			enc, err := f.Type.Encode(rec[f.Name])
			if err != nil {
				return nil, fmt.Errorf("nested field %q record %d: %w", f.Name, i, err)
			}
			col[i] = enc
		}
		wire[f.Name] = col
	}
	return wire, nil
}

// Decode recomposes parallel field arrays into records. Unequal array
// lengths are a hard error.
func (t *nestedType) Decode(v any) (any, error) {
	arrays, ok := v.(map[string][]any)
	if !ok {
		return nil, invalidLiteral(t, "expected map[string][]any, got %T", v)
	}
	if err := t.checkArrays(arrays); err != nil {
		return nil, err
	}
	length := len(arrays[t.fields[0].Name])
	recs := make([]map[string]any, length)
	for i := range recs {
		recs[i] = make(map[string]any, len(t.fields))
	}
	for _, f := range t.fields {
		for i, e := range arrays[f.Name] {
			dec, err := f.Type.Decode(e)
			if err != nil {
				return nil, fmt.Errorf("nested field %q record %d: %w", f.Name, i, err)
			}
			recs[i][f.Name] = dec
		}
	}
	return recs, nil
}
