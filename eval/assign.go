package eval

import (
	"context"

	"github.com/avery-lang/corelang/corerr"
	"github.com/avery-lang/corelang/object"
	"github.com/avery-lang/corelang/rtscope"
	"github.com/avery-lang/corelang/values"
)

// AssignRef implements `target := value`. When Target is a known VariableRef
// variant (FieldRef, IndexRef, a local variant, or a qualified-this variant)
// it calls SetAt directly, bypassing any value-level hook — this is what
// keeps a Property target routed through its setter exactly once instead of
// running a getter first (spec §4.4's l-value short-circuit rule). Anything
// else (e.g. ListLiteralRef used as a destructuring pattern) still
// implements SetAt itself, so the dispatch is uniform either way.
type AssignRef struct {
	Target Node
	Value  Node
}

func NewAssignRef(target, value Node) *AssignRef {
	return &AssignRef{Target: target, Value: value}
}

func (n *AssignRef) EvalValue(ctx context.Context, scope *rtscope.Scope) (*values.Value, error) {
	v, err := n.Value.EvalValue(ctx, scope)
	if err != nil {
		return nil, err
	}
	if err := n.Target.SetAt(ctx, scope, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (n *AssignRef) Get(ctx context.Context, scope *rtscope.Scope) (*object.Record, error) {
	v, err := n.EvalValue(ctx, scope)
	if err != nil {
		return nil, err
	}
	return frozenRecord(v), nil
}

func (n *AssignRef) SetAt(ctx context.Context, scope *rtscope.Scope, newValue *values.Value) error {
	return corerr.New(corerr.IllegalAssignment, scope.Pos(), "cannot assign to an assignment expression")
}

func (n *AssignRef) ForEachVariable(f func(name string)) {
	n.Target.ForEachVariable(f)
	n.Value.ForEachVariable(f)
}
func (n *AssignRef) ForEachVariableWithPos(f func(name string, pos corerr.Position)) {
	n.Target.ForEachVariableWithPos(f)
	n.Value.ForEachVariableWithPos(f)
}

// AssignIfNullRef implements `target ?= value`: reads Target first, and
// writes only when its current value IsNull. The read always goes through
// Target.EvalValue (not a raw SetAt bypass) since the decision to write
// depends on the current value, unlike plain AssignRef.
type AssignIfNullRef struct {
	Target Node
	Value  Node
}

func NewAssignIfNullRef(target, value Node) *AssignIfNullRef {
	return &AssignIfNullRef{Target: target, Value: value}
}

func (n *AssignIfNullRef) EvalValue(ctx context.Context, scope *rtscope.Scope) (*values.Value, error) {
	cur, err := n.Target.EvalValue(ctx, scope)
	if err != nil {
		return nil, err
	}
	if !cur.IsNull() {
		return cur, nil
	}
	v, err := n.Value.EvalValue(ctx, scope)
	if err != nil {
		return nil, err
	}
	if err := n.Target.SetAt(ctx, scope, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (n *AssignIfNullRef) Get(ctx context.Context, scope *rtscope.Scope) (*object.Record, error) {
	v, err := n.EvalValue(ctx, scope)
	if err != nil {
		return nil, err
	}
	return frozenRecord(v), nil
}

func (n *AssignIfNullRef) SetAt(ctx context.Context, scope *rtscope.Scope, newValue *values.Value) error {
	return corerr.New(corerr.IllegalAssignment, scope.Pos(), "cannot assign to a ?= expression")
}

func (n *AssignIfNullRef) ForEachVariable(f func(name string)) {
	n.Target.ForEachVariable(f)
	n.Value.ForEachVariable(f)
}
func (n *AssignIfNullRef) ForEachVariableWithPos(f func(name string, pos corerr.Position)) {
	n.Target.ForEachVariableWithPos(f)
	n.Value.ForEachVariableWithPos(f)
}
