package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPICZeroClassIDNeverCaches(t *testing.T) {
	p := NewPIC[int](2, false, false)
	p.Insert(0, 1, 42)
	_, ok := p.Lookup(0, 1)
	assert.False(t, ok)
}

func TestPICHitAfterInsertMovesToFront(t *testing.T) {
	p := NewPIC[string](2, false, false)
	p.Insert(1, 1, "a")
	p.Insert(2, 1, "b")

	h, ok := p.Lookup(1, 1)
	require.True(t, ok)
	assert.Equal(t, "a", h)
	// 1 is now most-recently-used; inserting a third entry at capacity 2
	// should evict 2, not 1.
	p.Insert(3, 1, "c")
	_, ok = p.Lookup(2, 1)
	assert.False(t, ok)
	h, ok = p.Lookup(1, 1)
	require.True(t, ok)
	assert.Equal(t, "a", h)
}

func TestPICInvalidateDropsOnlyThatClass(t *testing.T) {
	p := NewPIC[int](4, false, false)
	p.Insert(1, 1, 100)
	p.Insert(2, 1, 200)

	p.Invalidate(1)
	_, ok := p.Lookup(1, 1)
	assert.False(t, ok)
	_, ok = p.Lookup(2, 1)
	assert.True(t, ok)
}

func TestPICPromotesTo4OnHighMissRate(t *testing.T) {
	p := NewPIC[int](2, true, false)
	require.Equal(t, 2, p.size)

	// A run of nothing-but-misses pushes the window's miss rate to 100%,
	// well above the 20% promotion threshold.
	for i := 0; i < picWindowSize; i++ {
		_, ok := p.Lookup(999, 1)
		assert.False(t, ok)
	}
	assert.Equal(t, 4, p.size)
}

func TestPICStaysAt2WhenAdaptiveDisabled(t *testing.T) {
	p := NewPIC[int](2, false, false)
	for i := 0; i < picWindowSize; i++ {
		p.Lookup(999, 1)
	}
	assert.Equal(t, 2, p.size)
}

func TestPICFreezesAfterSustainedHighMissRateThenUnfreezes(t *testing.T) {
	p := NewPIC[int](4, false, true)

	// 4 consecutive windows at >=25% miss rate: first window's recordAccess
	// call that crosses the threshold freezes the cache and drops size to 2.
	for i := 0; i < picWindowSize; i++ {
		p.Lookup(999, 1)
	}
	assert.True(t, p.frozen)
	assert.Equal(t, 2, p.size)
	assert.Equal(t, picFreezeWindows, p.freezeWindowsLeft)

	// 3 more full windows keep it frozen.
	for w := 0; w < picFreezeWindows-1; w++ {
		for i := 0; i < picWindowSize; i++ {
			p.Lookup(999, 1)
		}
		assert.True(t, p.frozen)
	}

	// One final window ticks freezeWindowsLeft down to 0 and unfreezes.
	for i := 0; i < picWindowSize; i++ {
		p.Lookup(999, 1)
	}
	assert.False(t, p.frozen)
	assert.Equal(t, 2, p.size)
}
