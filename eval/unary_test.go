package eval

import (
	"context"
	"testing"

	"github.com/avery-lang/corelang/corerr"
	"github.com/avery-lang/corelang/rtscope"
	"github.com/avery-lang/corelang/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnaryOpNotFlipsBool(t *testing.T) {
	scope := rtscope.NewRootScope()
	ref := NewUnaryOpRef(OpNot, NewConstRef(values.Bool(true)))
	v, err := ref.EvalValue(context.Background(), scope)
	require.NoError(t, err)
	assert.False(t, v.AsBool())
}

func TestUnaryOpNegateInt(t *testing.T) {
	scope := rtscope.NewRootScope()
	ref := NewUnaryOpRef(OpNegate, NewConstRef(values.Int(5)))
	v, err := ref.EvalValue(context.Background(), scope)
	require.NoError(t, err)
	assert.Equal(t, int64(-5), v.AsInt())
}

func TestUnaryOpNegateReal(t *testing.T) {
	scope := rtscope.NewRootScope()
	ref := NewUnaryOpRef(OpNegate, NewConstRef(values.Real(1.5)))
	v, err := ref.EvalValue(context.Background(), scope)
	require.NoError(t, err)
	assert.Equal(t, -1.5, v.AsReal())
}

func TestUnaryOpBitNotInt(t *testing.T) {
	scope := rtscope.NewRootScope()
	ref := NewUnaryOpRef(OpBitNot, NewConstRef(values.Int(0)))
	v, err := ref.EvalValue(context.Background(), scope)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), v.AsInt())
}

func TestUnaryOpSetAtErrors(t *testing.T) {
	scope := rtscope.NewRootScope()
	ref := NewUnaryOpRef(OpNot, NewConstRef(values.Bool(true)))
	err := ref.SetAt(context.Background(), scope, values.Bool(false))
	require.Error(t, err)
}

func TestUnaryOpUnsetOperandRaisesUnsetError(t *testing.T) {
	scope := rtscope.NewRootScope()
	ref := NewUnaryOpRef(OpNegate, NewConstRef(values.Unset))
	_, err := ref.EvalValue(context.Background(), scope)
	require.Error(t, err)
	cerr, ok := err.(*corerr.Error)
	require.True(t, ok)
	assert.Equal(t, corerr.UnsetError, cerr.Kind)
}
