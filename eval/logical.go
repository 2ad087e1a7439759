package eval

import (
	"context"

	"github.com/avery-lang/corelang/corerr"
	"github.com/avery-lang/corelang/object"
	"github.com/avery-lang/corelang/rtscope"
	"github.com/avery-lang/corelang/values"
)

// LogicalOrRef evaluates Left; if it is a Bool settling the result (true),
// short-circuits without evaluating Right; otherwise evaluates Right and
// applies the primitive Bool rule or dispatches to Value.LogicalOr.
type LogicalOrRef struct {
	Left, Right Node
}

func NewLogicalOrRef(left, right Node) *LogicalOrRef { return &LogicalOrRef{Left: left, Right: right} }

func (n *LogicalOrRef) Get(ctx context.Context, scope *rtscope.Scope) (*object.Record, error) {
	v, err := n.EvalValue(ctx, scope)
	if err != nil {
		return nil, err
	}
	return frozenRecord(v), nil
}

func (n *LogicalOrRef) EvalValue(ctx context.Context, scope *rtscope.Scope) (*values.Value, error) {
	l, err := n.Left.EvalValue(ctx, scope)
	if err != nil {
		return nil, err
	}
	if l.IsBool() && l.AsBool() {
		return values.True, nil
	}
	r, err := n.Right.EvalValue(ctx, scope)
	if err != nil {
		return nil, err
	}
	if l.IsBool() && r.IsBool() {
		return values.Bool(l.AsBool() || r.AsBool()), nil
	}
	v, err := l.LogicalOr(r)
	return v, wrapNotImpl(err, scope.Pos())
}

func (n *LogicalOrRef) SetAt(ctx context.Context, scope *rtscope.Scope, newValue *values.Value) error {
	return corerr.New(corerr.IllegalAssignment, scope.Pos(), "cannot assign to a logical expression")
}
func (n *LogicalOrRef) ForEachVariable(f func(name string)) {
	n.Left.ForEachVariable(f)
	n.Right.ForEachVariable(f)
}
func (n *LogicalOrRef) ForEachVariableWithPos(f func(name string, pos corerr.Position)) {
	n.Left.ForEachVariableWithPos(f)
	n.Right.ForEachVariableWithPos(f)
}

// LogicalAndRef is LogicalOrRef's dual: short-circuits on a settling false.
type LogicalAndRef struct {
	Left, Right Node
}

func NewLogicalAndRef(left, right Node) *LogicalAndRef {
	return &LogicalAndRef{Left: left, Right: right}
}

func (n *LogicalAndRef) Get(ctx context.Context, scope *rtscope.Scope) (*object.Record, error) {
	v, err := n.EvalValue(ctx, scope)
	if err != nil {
		return nil, err
	}
	return frozenRecord(v), nil
}

func (n *LogicalAndRef) EvalValue(ctx context.Context, scope *rtscope.Scope) (*values.Value, error) {
	l, err := n.Left.EvalValue(ctx, scope)
	if err != nil {
		return nil, err
	}
	if l.IsBool() && !l.AsBool() {
		return values.False, nil
	}
	r, err := n.Right.EvalValue(ctx, scope)
	if err != nil {
		return nil, err
	}
	if l.IsBool() && r.IsBool() {
		return values.Bool(l.AsBool() && r.AsBool()), nil
	}
	v, err := l.LogicalAnd(r)
	return v, wrapNotImpl(err, scope.Pos())
}

func (n *LogicalAndRef) SetAt(ctx context.Context, scope *rtscope.Scope, newValue *values.Value) error {
	return corerr.New(corerr.IllegalAssignment, scope.Pos(), "cannot assign to a logical expression")
}
func (n *LogicalAndRef) ForEachVariable(f func(name string)) {
	n.Left.ForEachVariable(f)
	n.Right.ForEachVariable(f)
}
func (n *LogicalAndRef) ForEachVariableWithPos(f func(name string, pos corerr.Position)) {
	n.Left.ForEachVariableWithPos(f)
	n.Right.ForEachVariableWithPos(f)
}

// ElvisRef(l, r): returns l if non-Null, else r.
type ElvisRef struct {
	L, R Node
}

func NewElvisRef(l, r Node) *ElvisRef { return &ElvisRef{L: l, R: r} }

func (n *ElvisRef) Get(ctx context.Context, scope *rtscope.Scope) (*object.Record, error) {
	l, err := n.L.EvalValue(ctx, scope)
	if err != nil {
		return nil, err
	}
	if !l.IsNull() {
		return frozenRecord(l), nil
	}
	return n.R.Get(ctx, scope)
}

func (n *ElvisRef) EvalValue(ctx context.Context, scope *rtscope.Scope) (*values.Value, error) {
	l, err := n.L.EvalValue(ctx, scope)
	if err != nil {
		return nil, err
	}
	if !l.IsNull() {
		return l, nil
	}
	return n.R.EvalValue(ctx, scope)
}

func (n *ElvisRef) SetAt(ctx context.Context, scope *rtscope.Scope, newValue *values.Value) error {
	return corerr.New(corerr.IllegalAssignment, scope.Pos(), "cannot assign to an elvis expression")
}
func (n *ElvisRef) ForEachVariable(f func(name string)) {
	n.L.ForEachVariable(f)
	n.R.ForEachVariable(f)
}
func (n *ElvisRef) ForEachVariableWithPos(f func(name string, pos corerr.Position)) {
	n.L.ForEachVariableWithPos(f)
	n.R.ForEachVariableWithPos(f)
}
