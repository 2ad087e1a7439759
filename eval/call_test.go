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

func TestCallRefInvokesCallableValue(t *testing.T) {
	fn := object.NewNativeMethod(func(ctx context.Context, receiver *object.Instance, args []*values.Value) (*values.Value, error) {
		return args[0].Multiply(values.Int(2))
	})
	scope := rtscope.NewRootScope()
	ctx := WithPerfFlags(context.Background(), DefaultPerfFlags())

	call := NewCallRef(NewConstRef(object.NewMethodValue(fn)), []ArgSpec{{Value: NewConstRef(values.Int(21))}}, nil, false)
	v, err := call.EvalValue(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.AsInt())
}

func TestCallRefNotCallableErrors(t *testing.T) {
	scope := rtscope.NewRootScope()
	ctx := context.Background()

	call := NewCallRef(NewConstRef(values.Int(1)), nil, nil, false)
	_, err := call.EvalValue(ctx, scope)
	require.Error(t, err)
}

func TestCallRefOptionalShortCircuitsOnNullCallee(t *testing.T) {
	scope := rtscope.NewRootScope()
	ctx := context.Background()

	call := NewCallRef(NewConstRef(values.Null), nil, nil, true)
	v, err := call.EvalValue(ctx, scope)
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestCallRefScopePoolReleasesChildFrame(t *testing.T) {
	pool := rtscope.NewFramePool()
	root := rtscope.NewRootScope().WithPool(pool)

	fn := object.NewNativeMethod(func(ctx context.Context, receiver *object.Instance, args []*values.Value) (*values.Value, error) {
		_, ok := ScopeFromContext(ctx)
		assert.True(t, ok)
		return values.Int(1), nil
	})
	ctx := WithPerfFlags(context.Background(), DefaultPerfFlags())

	call := NewCallRef(NewConstRef(object.NewMethodValue(fn)), nil, nil, false)
	_, err := call.EvalValue(ctx, root)
	require.NoError(t, err)

	_, puts, _ := pool.Stats()
	assert.Equal(t, int64(1), puts)
}
