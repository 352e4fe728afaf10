package chtype

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultDecimal is the catalog mapping for decimal.Decimal values with no
// explicit precision annotation.
var DefaultDecimal = NewDecimal(18, 4)

// NewDecimal returns the Decimal(precision, scale) descriptor.
//
// The backing column width is selected by precision the way the server
// does: 32-bit up to 9 digits, 64-bit up to 18, 128-bit up to 38, 256-bit
// beyond that. The canonical name keeps the Decimal(P, S) spelling; the
// width only constrains the accepted value range.
func NewDecimal(precision, scale int) Type {
	if precision < 1 || precision > 76 {
		panic(fmt.Sprintf("chtype: Decimal precision %d out of range [1, 76]", precision))
	}
	if scale < 0 || scale > precision {
		panic(fmt.Sprintf("chtype: Decimal scale %d out of range [0, %d]", scale, precision))
	}
	t := &scalarType{name: fmt.Sprintf("Decimal(%d, %d)", precision, scale)}
	t.lit = func(_ Type, v any) (string, error) {
		d, err := coerceDecimal(t, v)
		if err != nil {
			return "", err
		}
		if digitCount(d) > precision {
			return "", invalidLiteral(t, "value %s exceeds precision %d", d.String(), precision)
		}
		// Plain decimal numeral, never exponent notation.
		return d.StringFixed(int32(scale)), nil
	}
	t.enc = func(_ Type, v any) (any, error) {
		d, err := coerceDecimal(t, v)
		if err != nil {
			return nil, err
		}
		return d.Round(int32(scale)), nil
	}
	t.dec = func(_ Type, v any) (any, error) {
		return coerceDecimal(t, v)
	}
	return t
}

// DecimalWidth reports the backing integer width in bits for a precision.
func DecimalWidth(precision int) int {
	switch {
	case precision <= 9:
		return 32
	case precision <= 18:
		return 64
	case precision <= 38:
		return 128
	default:
		return 256
	}
}

// coerceDecimal accepts decimal.Decimal and common numeric shapes.
func coerceDecimal(t Type, v any) (decimal.Decimal, error) {
	switch d := v.(type) {
	case decimal.Decimal:
		return d, nil
	case string:
		parsed, err := decimal.NewFromString(d)
		if err != nil {
			return decimal.Decimal{}, invalidLiteral(t, "invalid decimal text %q", d)
		}
		return parsed, nil
	case float64:
		return decimal.NewFromFloat(d), nil
	case float32:
		return decimal.NewFromFloat32(d), nil
	}
	if n, ok := asInt64(v); ok {
		return decimal.NewFromInt(n), nil
	}
	return decimal.Decimal{}, invalidLiteral(t, "expected decimal.Decimal, got %T", v)
}

// digitCount counts significant integral-plus-fractional digits of d.
func digitCount(d decimal.Decimal) int {
	s := d.Abs().String()
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits
}
