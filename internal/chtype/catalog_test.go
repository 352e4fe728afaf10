package chtype

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_DefaultMappings(t *testing.T) {
	c := NewCatalog()
	tests := []struct {
		value any
		want  string
	}{
		{"text", "String"},
		{int64(1), "Int64"},
		{uint32(1), "UInt32"},
		{3.14, "Float64"},
		{true, "Bool"},
		{time.Time{}, "DateTime"},
		{TimeOfDay(0), "Int64"},
		{decimal.Decimal{}, "Decimal(18, 4)"},
	}
	for _, tt := range tests {
		typ, err := c.For(tt.value)
		require.NoError(t, err)
		assert.Equal(t, tt.want, typ.Name())
	}
}

func TestCatalog_DerivesCompositeShapes(t *testing.T) {
	c := NewCatalog()

	typ, err := c.Lookup(reflect.TypeOf([]string(nil)))
	require.NoError(t, err)
	assert.Equal(t, "Array(String)", typ.Name())

	typ, err = c.Lookup(reflect.TypeOf(map[string]uint32(nil)))
	require.NoError(t, err)
	assert.Equal(t, "Map(String, UInt32)", typ.Name())

	typ, err = c.Lookup(reflect.TypeOf((*int64)(nil)))
	require.NoError(t, err)
	assert.Equal(t, "Nullable(Int64)", typ.Name())
}

func TestCatalog_UnsupportedTypeFails(t *testing.T) {
	c := NewCatalog()
	_, err := c.Lookup(reflect.TypeOf(make(chan int)))
	require.Error(t, err)

	var typeErr *TypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, ErrCodeUnsupportedType, typeErr.Code)
}

func TestCatalog_RegisterOverrides(t *testing.T) {
	c := NewCatalog()
	c.Register(reflect.TypeOf(""), NewFixedString(16))

	typ, err := c.For("abc")
	require.NoError(t, err)
	assert.Equal(t, "FixedString(16)", typ.Name())
}
