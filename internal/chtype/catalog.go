package chtype

import (
	"fmt"
	"math/big"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Catalog resolves Go types to storage type descriptors.
//
// A catalog is built once (NewCatalog seeds the default mappings) and read
// concurrently afterwards; Register calls belong in setup code, before the
// catalog is shared across query compilations.
type Catalog struct {
	byGoType map[reflect.Type]Type
}

// NewCatalog returns a catalog seeded with the default Go-to-storage
// mappings.
func NewCatalog() *Catalog {
	c := &Catalog{byGoType: make(map[reflect.Type]Type)}

	c.Register(reflect.TypeOf(""), String)
	c.Register(reflect.TypeOf([]byte(nil)), String)
	c.Register(reflect.TypeOf(false), Bool)

	c.Register(reflect.TypeOf(int8(0)), Int8)
	c.Register(reflect.TypeOf(int16(0)), Int16)
	c.Register(reflect.TypeOf(int32(0)), Int32)
	c.Register(reflect.TypeOf(int64(0)), Int64)
	c.Register(reflect.TypeOf(int(0)), Int64)
	c.Register(reflect.TypeOf(uint8(0)), UInt8)
	c.Register(reflect.TypeOf(uint16(0)), UInt16)
	c.Register(reflect.TypeOf(uint32(0)), UInt32)
	c.Register(reflect.TypeOf(uint64(0)), UInt64)
	c.Register(reflect.TypeOf(uint(0)), UInt64)
	c.Register(reflect.TypeOf(float32(0)), Float32)
	c.Register(reflect.TypeOf(float64(0)), Float64)

	c.Register(reflect.TypeOf((*big.Int)(nil)), Int256)
	c.Register(reflect.TypeOf(decimal.Decimal{}), DefaultDecimal)
	c.Register(reflect.TypeOf(time.Time{}), DateTime)
	c.Register(reflect.TypeOf(TimeOfDay(0)), TimeOfDayType)
	c.Register(reflect.TypeOf(uuid.UUID{}), UUID)

	return c
}

// Register maps a Go type to a descriptor, replacing any prior mapping.
func (c *Catalog) Register(goType reflect.Type, t Type) {
	c.byGoType[goType] = t
}

// Lookup resolves a Go type to its descriptor.
// Fails with ErrCodeUnsupportedType when no mapping exists.
func (c *Catalog) Lookup(goType reflect.Type) (Type, error) {
	if t, ok := c.byGoType[goType]; ok {
		return t, nil
	}
	// Composite shapes are derived structurally from their element types.
	switch goType.Kind() {
	case reflect.Slice, reflect.Array:
		elem, err := c.Lookup(goType.Elem())
		if err != nil {
			return nil, err
		}
		return NewArray(elem), nil
	case reflect.Map:
		key, err := c.Lookup(goType.Key())
		if err != nil {
			return nil, err
		}
		value, err := c.Lookup(goType.Elem())
		if err != nil {
			return nil, err
		}
		return NewMap(key, value), nil
	case reflect.Pointer:
		inner, err := c.Lookup(goType.Elem())
		if err != nil {
			return nil, err
		}
		return NewNullable(inner), nil
	}
	return nil, &TypeError{
		Code:    ErrCodeUnsupportedType,
		Message: fmt.Sprintf("no storage type mapping for Go type %s", goType),
	}
}

// For resolves the descriptor for a concrete value.
func (c *Catalog) For(v any) (Type, error) {
	if v == nil {
		return nil, &TypeError{
			Code:    ErrCodeUnsupportedType,
			Message: "cannot infer storage type for untyped nil",
		}
	}
	return c.Lookup(reflect.TypeOf(v))
}
