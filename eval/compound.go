package eval

import (
	"context"

	"github.com/avery-lang/corelang/corerr"
	"github.com/avery-lang/corelang/object"
	"github.com/avery-lang/corelang/rtscope"
	"github.com/avery-lang/corelang/values"
)

// CompoundOp is the operator set AssignOpRef applies (the assignment forms
// of a subset of BinaryOp).
type CompoundOp byte

const (
	CompoundAdd CompoundOp = iota
	CompoundSub
	CompoundMul
	CompoundDiv
	CompoundMod
	CompoundBitAnd
	CompoundBitOr
	CompoundBitXor
	CompoundShl
	CompoundShr
)

func applyCompound(op CompoundOp, target, value *values.Value) (*values.Value, error) {
	switch op {
	case CompoundAdd:
		return target.Add(value)
	case CompoundSub:
		return target.Subtract(value)
	case CompoundMul:
		return target.Multiply(value)
	case CompoundDiv:
		return target.Divide(value)
	case CompoundMod:
		return target.Modulo(value)
	case CompoundBitAnd:
		return target.BitAnd(value)
	case CompoundBitOr:
		return target.BitOr(value)
	case CompoundBitXor:
		return target.BitXor(value)
	case CompoundShl:
		return target.Shl(value)
	case CompoundShr:
		return target.Shr(value)
	}
	return nil, nil
}

// AssignOpRef reads Target, computes `target op value`, writes the result
// back through Target.SetAt, and returns it. The spec's "ask the value for
// an in-place op first" step has no analogue here: values.Value is an
// immutable tagged union with no mutating operator hooks, so every compound
// assignment takes the "else" branch and goes straight to write-back.
type AssignOpRef struct {
	Op     CompoundOp
	Target Node
	Value  Node
}

func NewAssignOpRef(op CompoundOp, target, value Node) *AssignOpRef {
	return &AssignOpRef{Op: op, Target: target, Value: value}
}

func (n *AssignOpRef) compute(ctx context.Context, scope *rtscope.Scope) (*values.Value, error) {
	cur, err := n.Target.EvalValue(ctx, scope)
	if err != nil {
		return nil, err
	}
	rhs, err := n.Value.EvalValue(ctx, scope)
	if err != nil {
		return nil, err
	}
	result, err := applyCompound(n.Op, cur, rhs)
	if err != nil {
		return nil, corerr.Wrap(corerr.NotImplemented, scope.Pos(), err, "%s", err.Error())
	}
	if err := n.Target.SetAt(ctx, scope, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (n *AssignOpRef) Get(ctx context.Context, scope *rtscope.Scope) (*object.Record, error) {
	v, err := n.compute(ctx, scope)
	if err != nil {
		return nil, err
	}
	return frozenRecord(v), nil
}

func (n *AssignOpRef) EvalValue(ctx context.Context, scope *rtscope.Scope) (*values.Value, error) {
	return n.compute(ctx, scope)
}

func (n *AssignOpRef) SetAt(ctx context.Context, scope *rtscope.Scope, newValue *values.Value) error {
	return corerr.New(corerr.IllegalAssignment, scope.Pos(), "cannot assign to a compound-assignment result")
}

func (n *AssignOpRef) ForEachVariable(f func(name string)) {
	n.Target.ForEachVariable(f)
	n.Value.ForEachVariable(f)
}
func (n *AssignOpRef) ForEachVariableWithPos(f func(name string, pos corerr.Position)) {
	n.Target.ForEachVariableWithPos(f)
	n.Value.ForEachVariableWithPos(f)
}

// IncDecRef reads Target (which must be mutable at the record level),
// computes new = old ± 1, writes it back, and returns old for the post-form
// or new for the pre-form. Open Question decision (spec §9): always
// write-back through setAt, never in-place mutation of a boxed Int/Real —
// values.Value has no mutable numeric box to mutate in place anyway.
type IncDecRef struct {
	Target      Node
	IsIncrement bool
	IsPost      bool
}

func NewIncDecRef(target Node, isIncrement, isPost bool) *IncDecRef {
	return &IncDecRef{Target: target, IsIncrement: isIncrement, IsPost: isPost}
}

func (n *IncDecRef) compute(ctx context.Context, scope *rtscope.Scope) (oldV, newV *values.Value, err error) {
	rec, err := n.Target.Get(ctx, scope)
	if err != nil {
		return nil, nil, err
	}
	if !rec.IsMutable {
		return nil, nil, corerr.New(corerr.IllegalAssignment, scope.Pos(), "increment/decrement target is not mutable")
	}
	oldV, err = readRecord(rec)
	if err != nil {
		return nil, nil, err
	}
	delta := int64(1)
	if !n.IsIncrement {
		delta = -1
	}
	switch {
	case oldV.IsInt():
		newV = values.Int(oldV.AsInt() + delta)
	case oldV.IsReal():
		newV = values.Real(oldV.AsReal() + float64(delta))
	default:
		return nil, nil, corerr.New(corerr.NotImplemented, scope.Pos(), "++/-- not supported on %s", oldV.KindName())
	}
	if err := n.Target.SetAt(ctx, scope, newV); err != nil {
		return nil, nil, err
	}
	return oldV, newV, nil
}

func (n *IncDecRef) Get(ctx context.Context, scope *rtscope.Scope) (*object.Record, error) {
	v, err := n.EvalValue(ctx, scope)
	if err != nil {
		return nil, err
	}
	return frozenRecord(v), nil
}

func (n *IncDecRef) EvalValue(ctx context.Context, scope *rtscope.Scope) (*values.Value, error) {
	oldV, newV, err := n.compute(ctx, scope)
	if err != nil {
		return nil, err
	}
	if n.IsPost {
		return oldV, nil
	}
	return newV, nil
}

func (n *IncDecRef) SetAt(ctx context.Context, scope *rtscope.Scope, newValue *values.Value) error {
	return corerr.New(corerr.IllegalAssignment, scope.Pos(), "cannot assign to an increment/decrement result")
}

func (n *IncDecRef) ForEachVariable(f func(name string)) { n.Target.ForEachVariable(f) }
func (n *IncDecRef) ForEachVariableWithPos(f func(name string, pos corerr.Position)) {
	n.Target.ForEachVariableWithPos(f)
}
