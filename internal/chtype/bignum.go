package chtype

import (
	"math/big"
)

// Range bounds for the wide integer types. Computed once at init.
var (
	maxInt128  = bigPow2(127)                      // 2^127, exclusive upper bound
	minInt128  = new(big.Int).Neg(bigPow2(127))    // -2^127, inclusive lower bound
	maxInt256  = bigPow2(255)
	minInt256  = new(big.Int).Neg(bigPow2(255))
	maxUint128 = bigPow2(128)
	maxUint256 = bigPow2(256)
)

func bigPow2(n uint) *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), n)
}

// Wide integer descriptors. Semantic values are *big.Int (plain Go integers
// are also accepted); the wire form is the *big.Int itself.
var (
	Int128  Type = newBigIntType("Int128", minInt128, maxInt128)
	Int256  Type = newBigIntType("Int256", minInt256, maxInt256)
	UInt128 Type = newBigIntType("UInt128", big.NewInt(0), maxUint128)
	UInt256 Type = newBigIntType("UInt256", big.NewInt(0), maxUint256)
)

// newBigIntType builds a wide integer descriptor covering [min, max).
func newBigIntType(name string, min, max *big.Int) Type {
	t := &scalarType{name: name}
	t.lit = func(_ Type, v any) (string, error) {
		n, err := coerceBigInt(t, v)
		if err != nil {
			return "", err
		}
		if n.Cmp(min) < 0 || n.Cmp(max) >= 0 {
			return "", invalidLiteral(t, "value %s out of range for %s", n.String(), name)
		}
		return n.String(), nil
	}
	t.enc = func(_ Type, v any) (any, error) {
		n, err := coerceBigInt(t, v)
		if err != nil {
			return nil, err
		}
		if n.Cmp(min) < 0 || n.Cmp(max) >= 0 {
			return nil, invalidLiteral(t, "value %s out of range for %s", n.String(), name)
		}
		return new(big.Int).Set(n), nil
	}
	t.dec = func(_ Type, v any) (any, error) {
		return coerceBigInt(t, v)
	}
	return t
}

// coerceBigInt accepts *big.Int and plain Go integers.
func coerceBigInt(t Type, v any) (*big.Int, error) {
	switch n := v.(type) {
	case *big.Int:
		if n == nil {
			return nil, invalidLiteral(t, "nil *big.Int")
		}
		return n, nil
	case big.Int:
		return &n, nil
	case uint64:
		return new(big.Int).SetUint64(n), nil
	}
	if n, ok := asInt64(v); ok {
		return big.NewInt(n), nil
	}
	return nil, invalidLiteral(t, "expected *big.Int or integer, got %T", v)
}
