package rtscope

import (
	"testing"

	"github.com/avery-lang/corelang/object"
	"github.com/avery-lang/corelang/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFramePoolFrameIDIncreasesOnReuse(t *testing.T) {
	fp := NewFramePool()
	root := NewFrame(nil)

	f1 := fp.Acquire(root)
	id1 := f1.ID()
	fp.Release(f1)

	f2 := fp.Acquire(root)
	id2 := f2.ID()

	assert.Greater(t, id2, id1, "a reused pooled frame must carry a fresher frameId")
}

func TestFramePoolAcquireClearsSlotsAndBindings(t *testing.T) {
	fp := NewFramePool()
	root := NewFrame(nil)

	f1 := fp.Acquire(root)
	f1.PushSlot("x", &object.Record{Value: values.Int(1)})
	f1.DeclareLocal("y", &object.Record{Value: values.Int(2)})
	fp.Release(f1)

	f2 := fp.Acquire(root)
	assert.Equal(t, 0, f2.SlotCount())
	_, ok := f2.GetSlotIndexOf("x")
	assert.False(t, ok)
	_, ok = f2.Lookup("y")
	assert.False(t, ok)
}

func TestFramePoolRejectsUnpooledFrame(t *testing.T) {
	fp := NewFramePool()
	unpooled := NewFrame(nil)
	gets, puts, _ := fp.Stats()
	fp.Release(unpooled)
	newGets, newPuts, _ := fp.Stats()
	assert.Equal(t, gets, newGets)
	assert.Equal(t, puts, newPuts)
}

func TestFrameLookupParentChainCycleGuard(t *testing.T) {
	f := NewFrame(nil)
	f.parent = f // simulate a self-referential pooled frame mid-rebind
	_, ok := f.Lookup("anything")
	assert.False(t, ok)
}

func TestFrameAncestorDepthAndAtDepth(t *testing.T) {
	root := NewFrame(nil)
	mid := NewFrame(root)
	leaf := NewFrame(mid)

	assert.Equal(t, 0, leaf.AncestorDepth(leaf))
	assert.Equal(t, 1, leaf.AncestorDepth(mid))
	assert.Equal(t, 2, leaf.AncestorDepth(root))
	assert.Equal(t, -1, root.AncestorDepth(leaf))

	at1, ok := leaf.AtDepth(1)
	require.True(t, ok)
	assert.Same(t, mid, at1)
}

func TestScopeWithChildFrameReleasesOnReturn(t *testing.T) {
	fp := NewFramePool()
	root := NewRootScope().WithPool(fp)

	_, err := root.WithChildFrame(func(s *Scope) (*values.Value, error) {
		return nil, nil
	})
	require.NoError(t, err)
	_, puts, _ := fp.Stats()
	assert.Equal(t, int64(1), puts)
}
