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

func TestMethodCallRefInvokesNativeMethodWithArgs(t *testing.T) {
	fn := object.NewNativeMethod(func(ctx context.Context, receiver *object.Instance, args []*values.Value) (*values.Value, error) {
		return args[0].Add(values.Int(1))
	})
	cls, err := object.NewClassBuilder("Counter").AddMethod("bump", object.Public, object.NewMethodValue(fn)).Finalize()
	require.NoError(t, err)

	inst := object.NewInstance(cls)
	scope := rtscope.NewRootScope()
	ctx := context.Background()

	call := NewMethodCallRef(NewConstRef(object.NewInstanceValue(inst)), "bump",
		[]ArgSpec{{Value: NewConstRef(values.Int(41))}}, nil, false)

	v, err := call.EvalValue(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.AsInt())
}

func TestMethodCallRefOptionalShortCircuitsOnNullReceiver(t *testing.T) {
	scope := rtscope.NewRootScope()
	ctx := context.Background()

	call := NewMethodCallRef(NewConstRef(values.Null), "anything", nil, nil, true)
	v, err := call.EvalValue(ctx, scope)
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestMethodCallRefPICCachesSecondCall(t *testing.T) {
	calls := 0
	fn := object.NewNativeMethod(func(ctx context.Context, receiver *object.Instance, args []*values.Value) (*values.Value, error) {
		calls++
		return values.Int(int64(calls)), nil
	})
	cls, err := object.NewClassBuilder("Thing").AddMethod("go", object.Public, object.NewMethodValue(fn)).Finalize()
	require.NoError(t, err)

	inst := object.NewInstance(cls)
	scope := rtscope.NewRootScope()
	pf := DefaultPerfFlags()
	pf.PICDebugCounters = true
	ctx := WithPerfFlags(context.Background(), pf)
	ctx = WithStats(ctx, &Stats{})

	call := NewMethodCallRef(NewConstRef(object.NewInstanceValue(inst)), "go", nil, nil, false)
	_, err = call.EvalValue(ctx, scope)
	require.NoError(t, err)
	_, err = call.EvalValue(ctx, scope)
	require.NoError(t, err)

	st := StatsFrom(ctx)
	snap := st.Snapshot()
	assert.Equal(t, uint64(1), snap.MethodPicMiss)
	assert.Equal(t, uint64(1), snap.MethodPicHit)
	assert.Equal(t, 2, calls)
}

func TestBindArgumentsExpandsSpreadAndNamed(t *testing.T) {
	scope := rtscope.NewRootScope()
	ctx := context.Background()

	spreadSrc := NewListLiteralRef([]ListElement{
		{Value: NewConstRef(values.Int(2))},
		{Value: NewConstRef(values.Int(3))},
	})
	args, err := bindArguments(ctx, scope, []ArgSpec{
		{Value: NewConstRef(values.Int(1))},
		{Value: spreadSrc, Spread: true},
		{Name: "opt", Value: NewConstRef(values.Str("x"))},
	}, nil)
	require.NoError(t, err)
	require.Len(t, args.Positional, 3)
	assert.Equal(t, int64(1), args.Positional[0].AsInt())
	assert.Equal(t, int64(2), args.Positional[1].AsInt())
	assert.Equal(t, int64(3), args.Positional[2].AsInt())
	require.Contains(t, args.Named, "opt")
	assert.Equal(t, "x", args.Named["opt"].AsString())
}
