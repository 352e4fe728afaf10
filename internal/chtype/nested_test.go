package chtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nestedFixture() Type {
	return NewNested(
		NestedField{Name: "id", Type: UInt32},
		NestedField{Name: "label", Type: String},
	)
}

func TestNested_Name(t *testing.T) {
	assert.Equal(t, "Nested(id UInt32, label String)", nestedFixture().Name())
}

func TestNested_EncodeDecodeRoundTrip(t *testing.T) {
	nested := nestedFixture()
	recs := []map[string]any{
		{"id": uint32(1), "label": "first"},
		{"id": uint32(2), "label": "second"},
	}

	wire, err := nested.Encode(recs)
	require.NoError(t, err)
	arrays, ok := wire.(map[string][]any)
	require.True(t, ok)
	assert.Equal(t, []any{uint32(1), uint32(2)}, arrays["id"])
	assert.Equal(t, []any{"first", "second"}, arrays["label"])

	back, err := nested.Decode(wire)
	require.NoError(t, err)
	assert.Equal(t, recs, back)
}

func TestNested_UnequalFieldArraysFail(t *testing.T) {
	nested := nestedFixture()
	_, err := nested.Decode(map[string][]any{
		"id":    {uint32(1), uint32(2)},
		"label": {"only one"},
	})
	require.Error(t, err)

	var typeErr *TypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, ErrCodeInvalidLiteral, typeErr.Code)
}

func TestNested_UndeclaredFieldFails(t *testing.T) {
	nested := nestedFixture()
	_, err := nested.Encode([]map[string]any{
		{"id": uint32(1), "extra": true},
	})
	require.Error(t, err)
}

func TestNested_LiteralRendersParallelArrays(t *testing.T) {
	nested := nestedFixture()
	got, err := nested.Literal([]map[string]any{
		{"id": uint32(1), "label": "a"},
		{"id": uint32(2), "label": "b"},
	})
	require.NoError(t, err)
	assert.Equal(t, "[1, 2], ['a', 'b']", got)
}
