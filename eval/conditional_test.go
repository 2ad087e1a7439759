package eval

import (
	"context"
	"testing"

	"github.com/avery-lang/corelang/object"
	"github.com/avery-lang/corelang/rtscope"
	"github.com/avery-lang/corelang/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditionalRefTakesTrueBranch(t *testing.T) {
	scope := rtscope.NewRootScope()
	ctx := context.Background()

	ref := NewConditionalRef(NewConstRef(values.Bool(true)), NewConstRef(values.Int(1)), newPanicNode())
	v, err := ref.EvalValue(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.AsInt())
}

func TestConditionalRefTakesFalseBranch(t *testing.T) {
	scope := rtscope.NewRootScope()
	ctx := context.Background()

	ref := NewConditionalRef(NewConstRef(values.Bool(false)), newPanicNode(), NewConstRef(values.Int(2)))
	v, err := ref.EvalValue(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v.AsInt())
}

func TestConditionalRefIntNonzeroIsTruthy(t *testing.T) {
	scope := rtscope.NewRootScope()
	ctx := context.Background()

	ref := NewConditionalRef(NewConstRef(values.Int(5)), NewConstRef(values.Int(1)), NewConstRef(values.Int(2)))
	v, err := ref.EvalValue(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.AsInt())
}

func TestCastRefSucceedsForInstanceOfAncestor(t *testing.T) {
	base, err := object.NewClassBuilder("Base").Finalize()
	require.NoError(t, err)
	derived, err := object.NewClassBuilder("Derived", base).Finalize()
	require.NoError(t, err)

	inst := object.NewInstance(derived)
	scope := rtscope.NewRootScope()
	ctx := context.Background()

	ref := NewCastRef(NewConstRef(object.NewInstanceValue(inst)), base, false)
	v, err := ref.EvalValue(ctx, scope)
	require.NoError(t, err)

	_, startClass, ok := object.Unwrap(v)
	require.True(t, ok)
	assert.Equal(t, base, startClass)
}

func TestCastRefFailsForUnrelatedClassRaisesError(t *testing.T) {
	a, err := object.NewClassBuilder("A").Finalize()
	require.NoError(t, err)
	b, err := object.NewClassBuilder("B").Finalize()
	require.NoError(t, err)

	inst := object.NewInstance(a)
	scope := rtscope.NewRootScope()
	ctx := context.Background()

	ref := NewCastRef(NewConstRef(object.NewInstanceValue(inst)), b, false)
	_, err = ref.EvalValue(ctx, scope)
	require.Error(t, err)
}

func TestCastRefNullableFailureReturnsNull(t *testing.T) {
	a, err := object.NewClassBuilder("A").Finalize()
	require.NoError(t, err)
	b, err := object.NewClassBuilder("B").Finalize()
	require.NoError(t, err)

	inst := object.NewInstance(a)
	scope := rtscope.NewRootScope()
	ctx := context.Background()

	ref := NewCastRef(NewConstRef(object.NewInstanceValue(inst)), b, true)
	v, err := ref.EvalValue(ctx, scope)
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestQualifiedThisRefResolvesAncestorView(t *testing.T) {
	base, err := object.NewClassBuilder("Base").Finalize()
	require.NoError(t, err)
	derived, err := object.NewClassBuilder("Derived", base).Finalize()
	require.NoError(t, err)

	inst := object.NewInstance(derived)
	scope := rtscope.NewRootScope()
	scope.SetThis(inst)
	ctx := context.Background()

	ref := NewQualifiedThisRef(base)
	v, err := ref.EvalValue(ctx, scope)
	require.NoError(t, err)

	_, startClass, ok := object.Unwrap(v)
	require.True(t, ok)
	assert.Equal(t, base, startClass)
}

func TestQualifiedThisRefWithNoMatchingThisErrors(t *testing.T) {
	other, err := object.NewClassBuilder("Other").Finalize()
	require.NoError(t, err)
	scope := rtscope.NewRootScope()
	ctx := context.Background()

	ref := NewQualifiedThisRef(other)
	_, err = ref.EvalValue(ctx, scope)
	require.Error(t, err)
}
