package eval

import (
	"context"

	"github.com/avery-lang/corelang/values"
)

// CompileRegexValue builds a Regex value for source, the call site every
// regex-literal constructor in the tree should go through: it honors
// RegexCache the way FieldRef/IndexRef/MethodCallRef honor their own PIC
// flags, bypassing the shared cache entirely when the flag is off.
func CompileRegexValue(ctx context.Context, source string) (*values.Value, error) {
	if PerfFlagsFrom(ctx).RegexCache {
		return values.NewRegex(source)
	}
	return values.NewRegexUncached(source)
}
