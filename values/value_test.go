package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddCommutativity(t *testing.T) {
	a, b := Int(3), Int(4)
	ab, err := a.Add(b)
	require.NoError(t, err)
	ba, err := b.Add(a)
	require.NoError(t, err)
	assert.True(t, ab.Eq(ba))
}

func TestIntRealPromotion(t *testing.T) {
	v, err := Int(2).Add(Real(1.5))
	require.NoError(t, err)
	assert.Equal(t, TReal, v.Type)
	assert.Equal(t, 3.5, v.AsReal())
}

func TestDivideByZero(t *testing.T) {
	_, err := Int(1).Divide(Int(0))
	assert.ErrorContains(t, err, "DivideByZero")

	v, err := Real(1).Divide(Real(0))
	require.NoError(t, err)
	assert.True(t, v.AsReal() > 1e300 || v.ToDisplayString() == "+Inf")
}

func TestShiftMasksToSixBits(t *testing.T) {
	// A shift amount of 64 masks down to 0, so the value is unchanged.
	v, err := Int(1).Shl(Int(64))
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.AsInt())
}

func TestCompareNotComparable(t *testing.T) {
	assert.Equal(t, NotComparable, Str("x").Compare(Int(1)))
}

func TestEqUsesCompare(t *testing.T) {
	assert.True(t, Int(5).Eq(Int(5)))
	assert.False(t, Int(5).Eq(Int(6)))
}

func TestRefEqIsIdentityOnly(t *testing.T) {
	a := Str("x")
	b := Str("x")
	assert.True(t, a.Eq(b))
	assert.False(t, a.RefEq(b))
	assert.True(t, a.RefEq(a))
}

func TestListRoundTrip(t *testing.T) {
	l := NewList(Int(1), Int(2), Int(3))
	list := l.Data.(*List)
	v, ok := list.Get(1)
	require.True(t, ok)
	assert.Equal(t, int64(2), v.AsInt())

	assert.True(t, list.Set(1, Int(9)))
	v, _ = list.Get(1)
	assert.Equal(t, int64(9), v.AsInt())
}

func TestMapInsertionOrderPreserved(t *testing.T) {
	m := NewMap().Data.(*Map)
	m.Set(Str("b"), Int(2))
	m.Set(Str("a"), Int(1))
	m.Set(Str("b"), Int(20)) // overwrite, must not move position

	keys := m.Keys()
	require.Len(t, keys, 2)
	assert.Equal(t, "b", keys[0].AsString())
	assert.Equal(t, "a", keys[1].AsString())

	v, ok := m.Get(Str("b"))
	require.True(t, ok)
	assert.Equal(t, int64(20), v.AsInt())
}

func TestRangeContains(t *testing.T) {
	r := NewRange(Int(1), Int(5), false).Data.(*Range)
	assert.True(t, r.Contains(Int(1)))
	assert.True(t, r.Contains(Int(4)))
	assert.False(t, r.Contains(Int(5)))

	rIncl := NewRange(Int(1), Int(5), true).Data.(*Range)
	assert.True(t, rIncl.Contains(Int(5)))
}
