package chtype

import (
	"fmt"
	"math"
	"strings"
)

// EnumSymbol is one declared enumeration member.
type EnumSymbol struct {
	Name string
	Code int16
}

// enumType maps symbol names to numeric codes.
//
// The canonical name lists every symbol with its explicit code in
// declaration order, not code order. The backing width is Enum8 when the
// symbol count fits 256 and every code fits the 8-bit signed range,
// Enum16 otherwise.
type enumType struct {
	name    string
	symbols []EnumSymbol
	byName  map[string]int16
	byCode  map[int16]string
}

// NewEnum builds an enumeration descriptor from declaration-ordered symbols.
// Duplicate names or codes panic: enum shapes are static program data, not
// runtime input.
func NewEnum(symbols []EnumSymbol) Type {
	if len(symbols) == 0 {
		panic("chtype: enum requires at least one symbol")
	}
	byName := make(map[string]int16, len(symbols))
	byCode := make(map[int16]string, len(symbols))
	fitsInt8 := true
	for _, s := range symbols {
		if _, dup := byName[s.Name]; dup {
			panic(fmt.Sprintf("chtype: duplicate enum symbol %q", s.Name))
		}
		if _, dup := byCode[s.Code]; dup {
			panic(fmt.Sprintf("chtype: duplicate enum code %d", s.Code))
		}
		byName[s.Name] = s.Code
		byCode[s.Code] = s.Name
		if s.Code < math.MinInt8 || s.Code > math.MaxInt8 {
			fitsInt8 = false
		}
	}

	base := "Enum16"
	if fitsInt8 && len(symbols) <= 256 {
		base = "Enum8"
	}
	parts := make([]string, len(symbols))
	for i, s := range symbols {
		parts[i] = fmt.Sprintf("%s = %d", QuoteString(s.Name), s.Code)
	}
	return &enumType{
		name:    fmt.Sprintf("%s(%s)", base, strings.Join(parts, ", ")),
		symbols: symbols,
		byName:  byName,
		byCode:  byCode,
	}
}

func (t *enumType) chType() {}

// Name returns the full enumeration type text.
func (t *enumType) Name() string { return t.name }

// Symbols returns the declaration-ordered members.
func (t *enumType) Symbols() []EnumSymbol { return t.symbols }

// Literal renders the symbol name as a quoted string.
func (t *enumType) Literal(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", invalidLiteral(t, "expected symbol string, got %T", v)
	}
	if _, known := t.byName[s]; !known {
		return "", invalidLiteral(t, "unknown enum symbol %q", s)
	}
	return QuoteString(s), nil
}

// Encode converts a symbol name to its numeric code.
func (t *enumType) Encode(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, invalidLiteral(t, "expected symbol string, got %T", v)
	}
	code, known := t.byName[s]
	if !known {
		return nil, invalidLiteral(t, "unknown enum symbol %q", s)
	}
	return code, nil
}

// Decode converts a numeric code back to its symbol name.
func (t *enumType) Decode(v any) (any, error) {
	n, ok := asInt64(v)
	if !ok {
		return nil, invalidLiteral(t, "expected integer wire value, got %T", v)
	}
	if n < math.MinInt16 || n > math.MaxInt16 {
		return nil, invalidLiteral(t, "enum code %d out of range", n)
	}
	name, known := t.byCode[int16(n)]
	if !known {
		return nil, invalidLiteral(t, "unknown enum code %d", n)
	}
	return name, nil
}
