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

// TestAssignRefRoutesThroughPropertySetterNotGetter confirms a Property
// target's AssignRef calls the setter exactly once and never touches the
// getter, since AssignRef bypasses any read before SetAt (spec's l-value
// short-circuit rule).
func TestAssignRefRoutesThroughPropertySetterNotGetter(t *testing.T) {
	var getCalls, setCalls int
	var stored *values.Value

	cls, err := object.NewClassBuilder("Box").AddProperty("val", object.Public,
		func() (*values.Value, error) {
			getCalls++
			return stored, nil
		},
		func(v *values.Value) error {
			setCalls++
			stored = v
			return nil
		},
	).Finalize()
	require.NoError(t, err)

	inst := object.NewInstance(cls)
	scope := rtscope.NewRootScope()
	ctx := context.Background()

	target := NewConstRef(object.NewInstanceValue(inst))
	field := NewFieldRef(target, "val", false)
	assign := NewAssignRef(field, NewConstRef(values.Int(7)))

	_, err = assign.EvalValue(ctx, scope)
	require.NoError(t, err)

	assert.Equal(t, 0, getCalls)
	assert.Equal(t, 1, setCalls)
	assert.Equal(t, int64(7), stored.AsInt())
}

func TestFieldRefReadRoutesThroughPropertyGetter(t *testing.T) {
	var getCalls int

	cls, err := object.NewClassBuilder("Box").AddProperty("val", object.Public,
		func() (*values.Value, error) {
			getCalls++
			return values.Int(99), nil
		},
		nil,
	).Finalize()
	require.NoError(t, err)

	inst := object.NewInstance(cls)
	scope := rtscope.NewRootScope()
	ctx := context.Background()

	field := NewFieldRef(NewConstRef(object.NewInstanceValue(inst)), "val", false)
	v, err := field.EvalValue(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, int64(99), v.AsInt())
	assert.Equal(t, 1, getCalls)
}
