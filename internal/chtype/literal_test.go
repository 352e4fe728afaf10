package chtype

import (
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiteral_String(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"plain", "hello", "'hello'"},
		{"single quote", "o'clock", `'o\'clock'`},
		{"backslash", `a\b`, `'a\\b'`},
		{"empty", "", "''"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := String.Literal(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLiteral_StringRejectsNonString(t *testing.T) {
	_, err := String.Literal(42)
	require.Error(t, err)

	var typeErr *TypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, ErrCodeInvalidLiteral, typeErr.Code)
}

func TestLiteral_Integers(t *testing.T) {
	got, err := Int32.Literal(-7)
	require.NoError(t, err)
	assert.Equal(t, "-7", got)

	got, err = UInt64.Literal(uint64(math.MaxUint64))
	require.NoError(t, err)
	assert.Equal(t, "18446744073709551615", got)
}

func TestLiteral_IntegerRangeChecks(t *testing.T) {
	_, err := Int8.Literal(200)
	require.Error(t, err)

	_, err = UInt16.Literal(-1)
	require.Error(t, err)

	var typeErr *TypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, ErrCodeInvalidLiteral, typeErr.Code)
}

func TestLiteral_FloatSpecialValues(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  string
	}{
		{"nan", math.NaN(), "nan"},
		{"positive infinity", math.Inf(1), "inf"},
		{"negative infinity", math.Inf(-1), "-inf"},
		{"plain", 0.5, "0.5"},
		{"negative", -2.25, "-2.25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Float64.Literal(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLiteral_Bool(t *testing.T) {
	got, err := Bool.Literal(true)
	require.NoError(t, err)
	assert.Equal(t, "true", got)

	got, err = Bool.Literal(false)
	require.NoError(t, err)
	assert.Equal(t, "false", got)
}

func TestLiteral_WideIntegers(t *testing.T) {
	n := new(big.Int).Lsh(big.NewInt(1), 100) // 2^100, beyond Int64

	got, err := Int256.Literal(n)
	require.NoError(t, err)
	assert.Equal(t, n.String(), got)

	got, err = UInt256.Literal(7)
	require.NoError(t, err)
	assert.Equal(t, "7", got)
}

func TestLiteral_UnsignedWideRejectsNegative(t *testing.T) {
	_, err := UInt256.Literal(big.NewInt(-1))
	require.Error(t, err)

	var typeErr *TypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, ErrCodeInvalidLiteral, typeErr.Code)
}

func TestLiteral_Decimal(t *testing.T) {
	d := NewDecimal(18, 4)
	assert.Equal(t, "Decimal(18, 4)", d.Name())

	got, err := d.Literal(decimal.RequireFromString("200.5"))
	require.NoError(t, err)
	assert.Equal(t, "200.5000", got)
}

func TestDecimalWidthSelection(t *testing.T) {
	assert.Equal(t, 32, DecimalWidth(9))
	assert.Equal(t, 64, DecimalWidth(18))
	assert.Equal(t, 128, DecimalWidth(38))
	assert.Equal(t, 256, DecimalWidth(76))
}

func TestLiteral_DateAndDateTime(t *testing.T) {
	tm := time.Date(2024, 3, 15, 10, 30, 0, 500_000_000, time.UTC)

	got, err := Date.Literal(tm)
	require.NoError(t, err)
	assert.Equal(t, "toDate('2024-03-15')", got)

	got, err = DateTime.Literal(tm)
	require.NoError(t, err)
	assert.Equal(t, "toDateTime('2024-03-15 10:30:00')", got)

	dt64 := NewDateTime64(3, "UTC")
	assert.Equal(t, "DateTime64(3, 'UTC')", dt64.Name())
	got, err = dt64.Literal(tm)
	require.NoError(t, err)
	assert.Equal(t, "toDateTime64('2024-03-15 10:30:00.500', 3, 'UTC')", got)
}

func TestLiteral_UUID(t *testing.T) {
	u := uuid.MustParse("c4ca4238-a0b9-3382-8dcc-509a6f75849b")
	got, err := UUID.Literal(u)
	require.NoError(t, err)
	assert.Equal(t, "'c4ca4238-a0b9-3382-8dcc-509a6f75849b'", got)
}

func TestLiteral_Array(t *testing.T) {
	arr := NewArray(String)
	assert.Equal(t, "Array(String)", arr.Name())

	got, err := arr.Literal([]string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, "['a', 'b']", got)

	got, err = arr.Literal([]any{})
	require.NoError(t, err)
	assert.Equal(t, "[]", got)
}

func TestLiteral_Map(t *testing.T) {
	m := NewMap(String, UInt32)
	assert.Equal(t, "Map(String, UInt32)", m.Name())

	got, err := m.Literal(map[string]uint32{"b": 2, "a": 1})
	require.NoError(t, err)
	// Entries are ordered by key text for deterministic SQL.
	assert.Equal(t, "{'a': 1, 'b': 2}", got)
}

func TestLiteral_Tuple(t *testing.T) {
	tup := NewTuple(
		TupleElement{Type: UInt8},
		TupleElement{Type: String},
	)
	assert.Equal(t, "Tuple(UInt8, String)", tup.Name())

	got, err := tup.Literal([]any{uint8(1), "x"})
	require.NoError(t, err)
	assert.Equal(t, "(1, 'x')", got)

	_, err = tup.Literal([]any{uint8(1)})
	require.Error(t, err)
}

func TestLiteral_NamedTupleName(t *testing.T) {
	tup := NewTuple(
		TupleElement{Name: "id", Type: UInt32},
		TupleElement{Name: "label", Type: String},
	)
	assert.Equal(t, "Tuple(id UInt32, label String)", tup.Name())
}

func TestLiteral_Nullable(t *testing.T) {
	n := NewNullable(Int32)
	assert.Equal(t, "Nullable(Int32)", n.Name())

	got, err := n.Literal(nil)
	require.NoError(t, err)
	assert.Equal(t, "NULL", got)

	got, err = n.Literal(5)
	require.NoError(t, err)
	assert.Equal(t, "5", got)
}

func TestStructuralEquality(t *testing.T) {
	a := NewArray(NewMap(String, UInt32))
	b := NewArray(NewMap(String, UInt32))
	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, NewArray(String)))
}
