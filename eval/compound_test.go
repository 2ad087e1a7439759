package eval

import (
	"context"
	"testing"

	"github.com/avery-lang/corelang/rtscope"
	"github.com/avery-lang/corelang/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignOpRefCompoundAdd(t *testing.T) {
	scope := newBoundScope("x")
	ctx := context.Background()
	require.NoError(t, NewLocalVarRef("x").SetAt(ctx, scope, values.Int(10)))

	ref := NewAssignOpRef(CompoundAdd, NewLocalVarRef("x"), NewConstRef(values.Int(5)))
	v, err := ref.EvalValue(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, int64(15), v.AsInt())

	stored, err := NewLocalVarRef("x").EvalValue(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, int64(15), stored.AsInt())
}

func TestAssignOpRefCompoundBitOr(t *testing.T) {
	scope := newBoundScope("x")
	ctx := context.Background()
	require.NoError(t, NewLocalVarRef("x").SetAt(ctx, scope, values.Int(0b0100)))

	ref := NewAssignOpRef(CompoundBitOr, NewLocalVarRef("x"), NewConstRef(values.Int(0b0011)))
	v, err := ref.EvalValue(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, int64(0b0111), v.AsInt())
}

func TestAssignOpRefSetAtErrors(t *testing.T) {
	scope := newBoundScope("x")
	ctx := context.Background()
	require.NoError(t, NewLocalVarRef("x").SetAt(ctx, scope, values.Int(1)))

	ref := NewAssignOpRef(CompoundAdd, NewLocalVarRef("x"), NewConstRef(values.Int(1)))
	err := ref.SetAt(ctx, scope, values.Int(2))
	require.Error(t, err)
}

func TestIncDecRefPostIncrementReturnsOldValue(t *testing.T) {
	scope := newBoundScope("x")
	ctx := context.Background()
	require.NoError(t, NewLocalVarRef("x").SetAt(ctx, scope, values.Int(5)))

	ref := NewIncDecRef(NewLocalVarRef("x"), true, true)
	v, err := ref.EvalValue(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, int64(5), v.AsInt())

	stored, err := NewLocalVarRef("x").EvalValue(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, int64(6), stored.AsInt())
}

func TestIncDecRefPreDecrementReturnsNewValue(t *testing.T) {
	scope := newBoundScope("x")
	ctx := context.Background()
	require.NoError(t, NewLocalVarRef("x").SetAt(ctx, scope, values.Int(5)))

	ref := NewIncDecRef(NewLocalVarRef("x"), false, false)
	v, err := ref.EvalValue(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, int64(4), v.AsInt())
}

func TestIncDecRefOnImmutableTargetErrors(t *testing.T) {
	scope := rtscope.NewRootScope()
	ctx := context.Background()

	ref := NewIncDecRef(NewConstRef(values.Int(1)), true, true)
	_, err := ref.EvalValue(ctx, scope)
	require.Error(t, err)
}

func TestIncDecRefOnRealTarget(t *testing.T) {
	scope := newBoundScope("x")
	ctx := context.Background()
	require.NoError(t, NewLocalVarRef("x").SetAt(ctx, scope, values.Real(1.5)))

	ref := NewIncDecRef(NewLocalVarRef("x"), true, false)
	v, err := ref.EvalValue(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, 2.5, v.AsReal())
}
