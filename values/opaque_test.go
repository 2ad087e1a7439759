package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegexCachesBySourcePattern(t *testing.T) {
	ClearRegexCache()

	v1, err := NewRegex(`[a-z]+`)
	require.NoError(t, err)
	v2, err := NewRegex(`[a-z]+`)
	require.NoError(t, err)

	re1 := v1.Data.(*Regex).Compiled
	re2 := v2.Data.(*Regex).Compiled
	assert.Same(t, re1, re2)

	size, hits, misses := RegexCacheStats()
	assert.Equal(t, 1, size)
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestNewRegexUncachedAlwaysRecompiles(t *testing.T) {
	ClearRegexCache()

	v1, err := NewRegexUncached(`\d+`)
	require.NoError(t, err)
	v2, err := NewRegexUncached(`\d+`)
	require.NoError(t, err)

	re1 := v1.Data.(*Regex).Compiled
	re2 := v2.Data.(*Regex).Compiled
	assert.NotSame(t, re1, re2)

	size, _, _ := RegexCacheStats()
	assert.Equal(t, 0, size)
}

func TestNewRegexInvalidPatternErrors(t *testing.T) {
	ClearRegexCache()
	_, err := NewRegex(`[`)
	require.Error(t, err)
}
