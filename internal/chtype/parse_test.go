package chtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseName_RoundTripsCanonicalNames(t *testing.T) {
	names := []string{
		"String",
		"UInt64",
		"Float32",
		"Decimal(18, 4)",
		"FixedString(16)",
		"DateTime",
		"DateTime('UTC')",
		"DateTime64(3, 'UTC')",
		"Array(String)",
		"Array(Array(UInt8))",
		"Map(String, UInt32)",
		"Nullable(Int64)",
		"Enum8('Active' = 1, 'Suspended' = 5, 'Closed' = 127)",
	}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			typ, err := ParseName(name)
			require.NoError(t, err)
			assert.Equal(t, name, typ.Name())
		})
	}
}

func TestParseName_LowCardinalityIsTransparent(t *testing.T) {
	typ, err := ParseName("LowCardinality(String)")
	require.NoError(t, err)
	assert.Equal(t, "String", typ.Name())
}

func TestParseName_Failures(t *testing.T) {
	inputs := []string{
		"",
		"Frob",
		"Array(",
		"Array(String) extra",
		"Decimal(0, 0)",
		"Map(String)",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := ParseName(input)
			require.Error(t, err)
		})
	}
}
