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

func TestNewClosureMethodBindsParams(t *testing.T) {
	cls, err := object.NewClassBuilder("Greeter").Finalize()
	require.NoError(t, err)
	inst := object.NewInstance(cls)

	defining := rtscope.NewRootScope()
	pool := rtscope.NewFramePool()

	// Body reads the bound param "name"; the receiver is passed but not read.
	body := NewBinaryOpRef(OpAdd, NewLocalVarRef("name"), NewConstRef(values.Str("!")))
	method := NewClosureMethod(defining, pool, []string{"name"}, body)

	v, err := method.Execute(context.Background(), inst, []*values.Value{values.Str("hi")})
	require.NoError(t, err)
	assert.Equal(t, "hi!", v.AsString())
}

func TestNewClosureMethodMissingArgBindsUnset(t *testing.T) {
	defining := rtscope.NewRootScope()
	body := NewLocalVarRef("missing")
	method := NewClosureMethod(defining, nil, []string{"missing"}, body)

	v, err := method.Execute(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.True(t, v.IsUnset())
}

func TestNewClosureMethodReleasesPooledChildFrame(t *testing.T) {
	defining := rtscope.NewRootScope()
	pool := rtscope.NewFramePool()
	body := NewConstRef(values.Int(1))
	method := NewClosureMethod(defining, pool, nil, body)

	_, err := method.Execute(context.Background(), nil, nil)
	require.NoError(t, err)

	_, puts, _ := pool.Stats()
	assert.Equal(t, int64(1), puts)
}
