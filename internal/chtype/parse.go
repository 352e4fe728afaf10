package chtype

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseName resolves a canonical type name back to its descriptor.
//
// This is the inverse of Type.Name for the catalog's supported shapes and
// exists so that model schemas can declare column types as text. It is not
// a SQL parser; it only understands the closed type-name grammar.
func ParseName(s string) (Type, error) {
	p := &nameParser{input: strings.TrimSpace(s)}
	t, err := p.parse()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return nil, parseErr(s, "trailing text after type name")
	}
	return t, nil
}

// scalarsByName indexes the parameterless descriptors.
var scalarsByName = map[string]Type{
	"String":  String,
	"Bool":    Bool,
	"Int8":    Int8,
	"Int16":   Int16,
	"Int32":   Int32,
	"Int64":   Int64,
	"Int128":  Int128,
	"Int256":  Int256,
	"UInt8":   UInt8,
	"UInt16":  UInt16,
	"UInt32":  UInt32,
	"UInt64":  UInt64,
	"UInt128": UInt128,
	"UInt256": UInt256,
	"Float32": Float32,
	"Float64": Float64,
	"UUID":    UUID,
	"Date":    Date,
	"Date32":  Date32,
}

func parseErr(input, format string, args ...any) error {
	return &TypeError{
		Code:    ErrCodeUnsupportedType,
		Message: fmt.Sprintf("cannot parse type name %q: %s", input, fmt.Sprintf(format, args...)),
	}
}

type nameParser struct {
	input string
	pos   int
}

func (p *nameParser) skipSpace() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}

// ident consumes a leading identifier.
func (p *nameParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			p.pos++
			continue
		}
		break
	}
	return p.input[start:p.pos]
}

// expect consumes one literal byte.
func (p *nameParser) expect(c byte) error {
	p.skipSpace()
	if p.pos >= len(p.input) || p.input[p.pos] != c {
		return parseErr(p.input, "expected %q at position %d", string(c), p.pos)
	}
	p.pos++
	return nil
}

// number consumes a decimal integer argument.
func (p *nameParser) number() (int, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.input) && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
		p.pos++
	}
	if start == p.pos {
		return 0, parseErr(p.input, "expected number at position %d", start)
	}
	return strconv.Atoi(p.input[start:p.pos])
}

// quoted consumes a single-quoted string argument.
func (p *nameParser) quoted() (string, error) {
	if err := p.expect('\''); err != nil {
		return "", err
	}
	var b strings.Builder
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		p.pos++
		switch c {
		case '\\':
			if p.pos < len(p.input) {
				b.WriteByte(p.input[p.pos])
				p.pos++
			}
		case '\'':
			return b.String(), nil
		default:
			b.WriteByte(c)
		}
	}
	return "", parseErr(p.input, "unterminated string")
}

func (p *nameParser) parse() (Type, error) {
	name := p.ident()
	if name == "" {
		return nil, parseErr(p.input, "expected type name at position %d", p.pos)
	}
	if t, ok := scalarsByName[name]; ok {
		return t, nil
	}

	switch name {
	case "DateTime":
		p.skipSpace()
		if p.pos >= len(p.input) || p.input[p.pos] != '(' {
			return DateTime, nil
		}
		p.pos++
		tz, err := p.quoted()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return NewDateTime(tz), nil

	case "DateTime64":
		if err := p.expect('('); err != nil {
			return nil, err
		}
		precision, err := p.number()
		if err != nil {
			return nil, err
		}
		tz := ""
		p.skipSpace()
		if p.pos < len(p.input) && p.input[p.pos] == ',' {
			p.pos++
			if tz, err = p.quoted(); err != nil {
				return nil, err
			}
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		if precision < 0 || precision > 9 {
			return nil, parseErr(p.input, "DateTime64 precision %d out of range", precision)
		}
		return NewDateTime64(precision, tz), nil

	case "FixedString":
		if err := p.expect('('); err != nil {
			return nil, err
		}
		n, err := p.number()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return NewFixedString(n), nil

	case "Decimal":
		if err := p.expect('('); err != nil {
			return nil, err
		}
		precision, err := p.number()
		if err != nil {
			return nil, err
		}
		if err := p.expect(','); err != nil {
			return nil, err
		}
		scale, err := p.number()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		if precision < 1 || precision > 76 || scale < 0 || scale > precision {
			return nil, parseErr(p.input, "invalid Decimal(%d, %d)", precision, scale)
		}
		return NewDecimal(precision, scale), nil

	case "Array", "Nullable", "LowCardinality":
		if err := p.expect('('); err != nil {
			return nil, err
		}
		inner, err := p.parse()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		switch name {
		case "Array":
			return NewArray(inner), nil
		case "Nullable":
			return NewNullable(inner), nil
		default:
			// LowCardinality changes the storage encoding, not the
			// value semantics; the descriptor is the inner type.
			return inner, nil
		}

	case "Map":
		if err := p.expect('('); err != nil {
			return nil, err
		}
		key, err := p.parse()
		if err != nil {
			return nil, err
		}
		if err := p.expect(','); err != nil {
			return nil, err
		}
		value, err := p.parse()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return NewMap(key, value), nil

	case "Enum8", "Enum16":
		if err := p.expect('('); err != nil {
			return nil, err
		}
		var symbols []EnumSymbol
		for {
			sym, err := p.quoted()
			if err != nil {
				return nil, err
			}
			if err := p.expect('='); err != nil {
				return nil, err
			}
			p.skipSpace()
			negative := false
			if p.pos < len(p.input) && p.input[p.pos] == '-' {
				negative = true
				p.pos++
			}
			code, err := p.number()
			if err != nil {
				return nil, err
			}
			if negative {
				code = -code
			}
			symbols = append(symbols, EnumSymbol{Name: sym, Code: int16(code)})
			p.skipSpace()
			if p.pos < len(p.input) && p.input[p.pos] == ',' {
				p.pos++
				continue
			}
			break
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return NewEnum(symbols), nil
	}

	return nil, parseErr(p.input, "unknown type %q", name)
}
