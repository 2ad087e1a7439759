package object

import (
	"testing"

	"github.com/avery-lang/corelang/corerr"
	"github.com/avery-lang/corelang/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustFinalize(t *testing.T, b *ClassBuilder) *Class {
	t.Helper()
	c, err := b.Finalize()
	require.NoError(t, err)
	return c
}

func TestResolveMemberPublicOverride(t *testing.T) {
	base := mustFinalize(t, NewClassBuilder("Base").AddMethod("greet", Public, values.Str("base")))
	derived := mustFinalize(t, NewClassBuilder("Derived", base).AddMethod("greet", Public, values.Str("derived")))

	rec, owner, err := ResolveMember(derived, "greet", nil, nil, corerr.Position{})
	require.NoError(t, err)
	assert.Equal(t, derived, owner)
	assert.Equal(t, "derived", rec.Value.AsString())
}

func TestResolveMemberPrivateNotInherited(t *testing.T) {
	base := mustFinalize(t, NewClassBuilder("Base").AddField("secret", Private, true, values.Int(1)))
	derived := mustFinalize(t, NewClassBuilder("Derived", base).Build().finalizeHelper(t))

	_, _, err := ResolveMember(derived, "secret", derived, nil, corerr.Position{})
	assert.Error(t, err)

	_, owner, err := ResolveMember(base, "secret", base, nil, corerr.Position{})
	require.NoError(t, err)
	assert.Equal(t, base, owner)
}

func TestResolveMemberProtectedVisibleToDescendant(t *testing.T) {
	base := mustFinalize(t, NewClassBuilder("Base").AddField("shared", Protected, true, values.Int(1)))
	derived := mustFinalize(t, NewClassBuilder("Derived", base).Build().finalizeHelper(t))

	_, owner, err := ResolveMember(derived, "shared", derived, nil, corerr.Position{})
	require.NoError(t, err)
	assert.Equal(t, base, owner)

	_, _, err = ResolveMember(derived, "shared", nil, nil, corerr.Position{})
	assert.Error(t, err)
}

func TestResolveMemberExtensionFallback(t *testing.T) {
	base := mustFinalize(t, NewClassBuilder("Base"))
	ext := NewExtensionRegistry()
	ext.Register(base, "describe", &Record{Value: values.Str("extended"), Kind: KindFun})

	rec, _, err := ResolveMember(base, "describe", nil, ext, corerr.Position{})
	require.NoError(t, err)
	assert.Equal(t, "extended", rec.Value.AsString())
}

func TestResolveMemberNotFound(t *testing.T) {
	base := mustFinalize(t, NewClassBuilder("Base"))
	_, _, err := ResolveMember(base, "nope", nil, nil, corerr.Position{})
	require.Error(t, err)
	cerr, ok := err.(*corerr.Error)
	require.True(t, ok)
	assert.Equal(t, corerr.SymbolNotFound, cerr.Kind)
}

func TestC3LinearizationDiamond(t *testing.T) {
	top := mustFinalize(t, NewClassBuilder("Top"))
	left := mustFinalize(t, NewClassBuilder("Left", top))
	right := mustFinalize(t, NewClassBuilder("Right", top))
	bottom := mustFinalize(t, NewClassBuilder("Bottom", left, right))

	lin := bottom.Linearization()
	names := make([]string, len(lin))
	for i, k := range lin {
		names[i] = k.Name
	}
	// Left must precede Right (declaration order), and Top must come after
	// both since it is their shared ancestor.
	var leftIdx, rightIdx, topIdx int
	for i, name := range names {
		switch name {
		case "Left":
			leftIdx = i
		case "Right":
			rightIdx = i
		case "Top":
			topIdx = i
		}
	}
	assert.Less(t, leftIdx, rightIdx)
	assert.Less(t, rightIdx, topIdx)
	assert.Equal(t, "Bottom", names[0])
}

func TestAllocateSlotsReusesOverriddenSlot(t *testing.T) {
	base := mustFinalize(t, NewClassBuilder("Base").AddField("x", Public, true, values.Int(0)))
	derived := NewClassBuilder("Derived", base).AddField("x", Public, true, values.Int(0)).Build()
	require.NoError(t, derived.Finalize())
	derived.AllocateSlots()

	assert.Equal(t, base.FieldSlots["x"], derived.FieldSlots["x"])
}

func TestIsInstanceOf(t *testing.T) {
	base := mustFinalize(t, NewClassBuilder("Base"))
	derived := mustFinalize(t, NewClassBuilder("Derived", base))
	assert.True(t, derived.IsInstanceOf(base))
	assert.False(t, base.IsInstanceOf(derived))
}

// finalizeHelper lets a test Build() a class without immediately finalizing
// (useful when the builder chain ends on AddField, which returns *ClassBuilder,
// not *Class) and then finalize it in one step.
func (c *Class) finalizeHelper(t *testing.T) *Class {
	t.Helper()
	require.NoError(t, c.Finalize())
	c.AllocateSlots()
	return c
}
