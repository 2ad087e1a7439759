package eval

import (
	"context"

	"github.com/avery-lang/corelang/corerr"
	"github.com/avery-lang/corelang/object"
	"github.com/avery-lang/corelang/rtscope"
	"github.com/avery-lang/corelang/values"
)

// ListElement is one entry in a ListLiteralRef: an expression, or a spread
// of a list value into the result.
type ListElement struct {
	Value  Node
	Spread bool
}

// ListLiteralRef builds a List from its Elements, expanding spreads, and
// doubles as a destructuring pattern target: assigning a List to it via
// SetAt distributes elements positionally, with at most one Spread element
// absorbing the middle run (spec §4.4/§8's destructuring rules).
type ListLiteralRef struct {
	Elements []ListElement
}

func NewListLiteralRef(elements []ListElement) *ListLiteralRef {
	return &ListLiteralRef{Elements: elements}
}

func (n *ListLiteralRef) EvalValue(ctx context.Context, scope *rtscope.Scope) (*values.Value, error) {
	list := &values.List{}
	for _, el := range n.Elements {
		v, err := el.Value.EvalValue(ctx, scope)
		if err != nil {
			return nil, err
		}
		if el.Spread {
			if v.Type != values.TList {
				return nil, corerr.New(corerr.IllegalArgument, scope.Pos(), "spread element must be a list")
			}
			list.Items = append(list.Items, v.Data.(*values.List).Items...)
		} else {
			list.Items = append(list.Items, v)
		}
	}
	return &values.Value{Type: values.TList, Data: list}, nil
}

func (n *ListLiteralRef) Get(ctx context.Context, scope *rtscope.Scope) (*object.Record, error) {
	v, err := n.EvalValue(ctx, scope)
	if err != nil {
		return nil, err
	}
	return frozenRecord(v), nil
}

// SetAt implements destructuring: exactly one Elements entry may have
// Spread == true, which absorbs every middle item so the head and tail
// patterns bind positionally around it. Two spreads, or fewer source items
// than required non-spread patterns, raise DestructuringError.
func (n *ListLiteralRef) SetAt(ctx context.Context, scope *rtscope.Scope, newValue *values.Value) error {
	if newValue.Type != values.TList {
		return corerr.New(corerr.DestructuringError, scope.Pos(), "cannot destructure %s as a list", newValue.KindName())
	}
	src := newValue.Data.(*values.List).Items

	spreadIdx := -1
	for i, el := range n.Elements {
		if el.Spread {
			if spreadIdx != -1 {
				return corerr.New(corerr.DestructuringError, scope.Pos(), "at most one spread pattern is allowed")
			}
			spreadIdx = i
		}
	}

	nonSpread := len(n.Elements)
	if spreadIdx != -1 {
		nonSpread--
	}
	if len(src) < nonSpread {
		return corerr.New(corerr.DestructuringError, scope.Pos(), "not enough elements to destructure: need %d, got %d", nonSpread, len(src))
	}

	if spreadIdx == -1 {
		for i, el := range n.Elements {
			if err := el.Value.SetAt(ctx, scope, src[i]); err != nil {
				return err
			}
		}
		return nil
	}

	for i := 0; i < spreadIdx; i++ {
		if err := n.Elements[i].Value.SetAt(ctx, scope, src[i]); err != nil {
			return err
		}
	}
	tailCount := len(n.Elements) - spreadIdx - 1
	midEnd := len(src) - tailCount
	mid := &values.List{Items: append([]*values.Value{}, src[spreadIdx:midEnd]...)}
	if err := n.Elements[spreadIdx].Value.SetAt(ctx, scope, &values.Value{Type: values.TList, Data: mid}); err != nil {
		return err
	}
	for i := 0; i < tailCount; i++ {
		if err := n.Elements[spreadIdx+1+i].Value.SetAt(ctx, scope, src[midEnd+i]); err != nil {
			return err
		}
	}
	return nil
}

func (n *ListLiteralRef) isLValue() {}

func (n *ListLiteralRef) ForEachVariable(f func(name string)) {
	for _, el := range n.Elements {
		el.Value.ForEachVariable(f)
	}
}
func (n *ListLiteralRef) ForEachVariableWithPos(f func(name string, pos corerr.Position)) {
	for _, el := range n.Elements {
		el.Value.ForEachVariableWithPos(f)
	}
}

var _ VariableRef = (*ListLiteralRef)(nil)

// MapEntryNode is one entry in a MapLiteralRef: a Key/Value pair, or a
// spread of a map value into the result.
type MapEntryNode struct {
	Key, Value Node
	Spread     bool
}

// MapLiteralRef builds a Map from its Entries, expanding spreads in
// insertion order; a later entry overwrites an earlier one with the same
// key (spec §3's Map semantics).
type MapLiteralRef struct {
	Entries []MapEntryNode
}

func NewMapLiteralRef(entries []MapEntryNode) *MapLiteralRef {
	return &MapLiteralRef{Entries: entries}
}

func (n *MapLiteralRef) EvalValue(ctx context.Context, scope *rtscope.Scope) (*values.Value, error) {
	result := values.NewMap()
	m := result.Data.(*values.Map)
	for _, e := range n.Entries {
		if e.Spread {
			v, err := e.Value.EvalValue(ctx, scope)
			if err != nil {
				return nil, err
			}
			if v.Type != values.TMap {
				return nil, corerr.New(corerr.IllegalArgument, scope.Pos(), "spread entry must be a map")
			}
			v.Data.(*values.Map).Each(func(k, val *values.Value) { m.Set(k, val) })
			continue
		}
		k, err := e.Key.EvalValue(ctx, scope)
		if err != nil {
			return nil, err
		}
		v, err := e.Value.EvalValue(ctx, scope)
		if err != nil {
			return nil, err
		}
		m.Set(k, v)
	}
	return result, nil
}

func (n *MapLiteralRef) Get(ctx context.Context, scope *rtscope.Scope) (*object.Record, error) {
	v, err := n.EvalValue(ctx, scope)
	if err != nil {
		return nil, err
	}
	return frozenRecord(v), nil
}

func (n *MapLiteralRef) SetAt(ctx context.Context, scope *rtscope.Scope, newValue *values.Value) error {
	return corerr.New(corerr.IllegalAssignment, scope.Pos(), "a map literal is not an assignable pattern")
}

func (n *MapLiteralRef) ForEachVariable(f func(name string)) {
	for _, e := range n.Entries {
		if e.Key != nil {
			e.Key.ForEachVariable(f)
		}
		e.Value.ForEachVariable(f)
	}
}
func (n *MapLiteralRef) ForEachVariableWithPos(f func(name string, pos corerr.Position)) {
	for _, e := range n.Entries {
		if e.Key != nil {
			e.Key.ForEachVariableWithPos(f)
		}
		e.Value.ForEachVariableWithPos(f)
	}
}

// RangeRef builds a Range value; Start/End may be nil for an open endpoint.
type RangeRef struct {
	Start, End   Node
	EndInclusive bool
}

func NewRangeRef(start, end Node, endInclusive bool) *RangeRef {
	return &RangeRef{Start: start, End: end, EndInclusive: endInclusive}
}

func (n *RangeRef) EvalValue(ctx context.Context, scope *rtscope.Scope) (*values.Value, error) {
	var start, end *values.Value
	var err error
	if n.Start != nil {
		start, err = n.Start.EvalValue(ctx, scope)
		if err != nil {
			return nil, err
		}
	}
	if n.End != nil {
		end, err = n.End.EvalValue(ctx, scope)
		if err != nil {
			return nil, err
		}
	}
	return values.NewRange(start, end, n.EndInclusive), nil
}

func (n *RangeRef) Get(ctx context.Context, scope *rtscope.Scope) (*object.Record, error) {
	v, err := n.EvalValue(ctx, scope)
	if err != nil {
		return nil, err
	}
	return frozenRecord(v), nil
}

func (n *RangeRef) SetAt(ctx context.Context, scope *rtscope.Scope, newValue *values.Value) error {
	return corerr.New(corerr.IllegalAssignment, scope.Pos(), "cannot assign to a range literal")
}

func (n *RangeRef) ForEachVariable(f func(name string)) {
	if n.Start != nil {
		n.Start.ForEachVariable(f)
	}
	if n.End != nil {
		n.End.ForEachVariable(f)
	}
}
func (n *RangeRef) ForEachVariableWithPos(f func(name string, pos corerr.Position)) {
	if n.Start != nil {
		n.Start.ForEachVariableWithPos(f)
	}
	if n.End != nil {
		n.End.ForEachVariableWithPos(f)
	}
}
