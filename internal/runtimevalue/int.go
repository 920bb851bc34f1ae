package runtimevalue

import "math/big"

// Int is an arbitrary-precision integer backed by math/big rather than a
// machine int64, so arithmetic never silently wraps.
type Int struct{ Value *big.Int }

func (i Int) Kind() Kind      { return KindInt }
func (i Int) Inspect() string { return i.Value.String() }
func (i Int) Hash() uint32    { return hashString(i.Value.String()) }

// IntFromInt64 builds an Int from a native int64 literal.
func IntFromInt64(v int64) Int {
	return Int{Value: big.NewInt(v)}
}

// Int64 reports the value as an int64 and whether it fits; a value
// outside the int64 range yields 0, false.
func (i Int) Int64() (int64, bool) {
	if !i.Value.IsInt64() {
		return 0, false
	}
	return i.Value.Int64(), true
}
