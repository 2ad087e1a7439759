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

func nativeReturning(v *values.Value) *values.Value {
	return object.NewMethodValue(object.NewNativeMethod(func(ctx context.Context, receiver *object.Instance, args []*values.Value) (*values.Value, error) {
		return v, nil
	}))
}

func TestThisFieldSlotRefReadsOwnField(t *testing.T) {
	cls, err := object.NewClassBuilder("Widget").AddField("label", object.Public, true, values.Str("box")).Finalize()
	require.NoError(t, err)
	inst := object.NewInstance(cls)

	scope := rtscope.NewRootScope()
	scope.SetThis(inst)
	scope.SetCurrentClass(cls)
	ctx := context.Background()

	ref := NewThisFieldSlotRef("label")
	v, err := ref.EvalValue(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, "box", v.AsString())
}

func TestThisFieldSlotRefWithNoEnclosingThisErrors(t *testing.T) {
	scope := rtscope.NewRootScope()
	ctx := context.Background()

	ref := NewThisFieldSlotRef("label")
	_, err := ref.EvalValue(ctx, scope)
	require.Error(t, err)
}

func TestQualifiedThisMethodCallDispatchesToAncestorNotDynamicClass(t *testing.T) {
	base, err := object.NewClassBuilder("Base").AddMethod("greet", object.Public, nativeReturning(values.Str("base"))).Finalize()
	require.NoError(t, err)
	derived, err := object.NewClassBuilder("Derived", base).AddMethod("greet", object.Public, nativeReturning(values.Str("derived"))).Finalize()
	require.NoError(t, err)

	inst := object.NewInstance(derived)
	scope := rtscope.NewRootScope()
	scope.SetThis(inst)
	scope.SetCurrentClass(derived)
	ctx := context.Background()

	// The dynamic dispatch (this.greet()) picks up the override...
	dynamic := NewThisMethodSlotCallRef("greet", nil, nil)
	v, err := dynamic.EvalValue(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, "derived", v.AsString())

	// ...while the qualified form (this@Base.greet()) pins it to Base.
	qualified := NewQualifiedThisMethodSlotCallRef(base, "greet", nil, nil)
	v, err = qualified.EvalValue(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, "base", v.AsString())
}

func TestImplicitThisMethodCallResolvesBareName(t *testing.T) {
	cls, err := object.NewClassBuilder("Service").AddMethod("run", object.Public, nativeReturning(values.Int(7))).Finalize()
	require.NoError(t, err)
	inst := object.NewInstance(cls)

	scope := rtscope.NewRootScope()
	scope.SetThis(inst)
	scope.SetCurrentClass(cls)
	ctx := context.Background()

	ref := NewImplicitThisMethodCallRef("run", nil, nil)
	v, err := ref.EvalValue(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, int64(7), v.AsInt())
}
