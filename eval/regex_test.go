package eval

import (
	"context"
	"testing"

	"github.com/avery-lang/corelang/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileRegexValueUsesSharedCacheWhenEnabled(t *testing.T) {
	values.ClearRegexCache()
	ctx := WithPerfFlags(context.Background(), DefaultPerfFlags())

	v1, err := CompileRegexValue(ctx, `ab+c`)
	require.NoError(t, err)
	v2, err := CompileRegexValue(ctx, `ab+c`)
	require.NoError(t, err)

	assert.Same(t, v1.Data.(*values.Regex).Compiled, v2.Data.(*values.Regex).Compiled)
}

func TestCompileRegexValueBypassesCacheWhenDisabled(t *testing.T) {
	values.ClearRegexCache()
	pf := DefaultPerfFlags()
	pf.RegexCache = false
	ctx := WithPerfFlags(context.Background(), pf)

	v1, err := CompileRegexValue(ctx, `xy+z`)
	require.NoError(t, err)
	v2, err := CompileRegexValue(ctx, `xy+z`)
	require.NoError(t, err)

	assert.NotSame(t, v1.Data.(*values.Regex).Compiled, v2.Data.(*values.Regex).Compiled)
	size, _, _ := values.RegexCacheStats()
	assert.Equal(t, 0, size)
}
