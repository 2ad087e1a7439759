package corelang

import (
	"context"
	"testing"

	"github.com/avery-lang/corelang/eval"
	"github.com/avery-lang/corelang/object"
	"github.com/avery-lang/corelang/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpreterExecutesArithmeticExpression(t *testing.T) {
	in := NewInterpreter(DefaultPerfFlags())

	tree := eval.NewBinaryOpRef(eval.OpAdd,
		eval.NewConstRef(values.Int(2)),
		eval.NewBinaryOpRef(eval.OpMul, eval.NewConstRef(values.Int(3)), eval.NewConstRef(values.Int(4))),
	)

	v, err := in.Execute(context.Background(), tree)
	require.NoError(t, err)
	assert.Equal(t, int64(14), v.AsInt())
}

func TestInterpreterExecuteInChildScopeIsolatesLocals(t *testing.T) {
	in := NewInterpreter(DefaultPerfFlags())

	assign := eval.NewAssignRef(eval.NewLocalVarRef("x"), eval.NewConstRef(values.Int(5)))
	_, err := in.ExecuteInChildScope(context.Background(), assign)
	require.Error(t, err) // "x" was never declared in the child scope, so SetAt's Get fails

	_, gets, puts, _ := in.Stats()
	assert.Equal(t, int64(1), gets)
	assert.Equal(t, int64(1), puts)
}

func TestInterpreterRootScopeLocalsPersistAcrossCalls(t *testing.T) {
	in := NewInterpreter(DefaultPerfFlags())
	in.RootScope().PushSlot("counter", &object.Record{Value: values.Int(0), IsMutable: true, Kind: object.KindField})

	inc := eval.NewAssignOpRef(eval.CompoundAdd, eval.NewLocalVarRef("counter"), eval.NewConstRef(values.Int(1)))

	_, err := in.Execute(context.Background(), inc)
	require.NoError(t, err)
	_, err = in.Execute(context.Background(), inc)
	require.NoError(t, err)

	v, err := in.Execute(context.Background(), eval.NewLocalVarRef("counter"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), v.AsInt())
}

func TestInterpreterExtensionsRegistryWiredToRootScope(t *testing.T) {
	in := NewInterpreter(DefaultPerfFlags())
	cls, err := object.NewClassBuilder("Thing").Finalize()
	require.NoError(t, err)
	in.Extensions().Register(cls, "describe", &object.Record{
		Value: object.NewMethodValue(object.NewNativeMethod(func(ctx context.Context, receiver *object.Instance, args []*values.Value) (*values.Value, error) {
			return values.Str("a thing"), nil
		})),
		Kind: object.KindFun,
	})

	inst := object.NewInstance(cls)
	call := eval.NewMethodCallRef(eval.NewConstRef(object.NewInstanceValue(inst)), "describe", nil, nil, false)

	v, err := in.Execute(context.Background(), call)
	require.NoError(t, err)
	assert.Equal(t, "a thing", v.AsString())
}
