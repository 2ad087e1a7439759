package eval

import (
	"context"

	"github.com/avery-lang/corelang/corerr"
	"github.com/avery-lang/corelang/object"
	"github.com/avery-lang/corelang/rtscope"
	"github.com/avery-lang/corelang/values"
)

// UnaryOp is the closed operator set UnaryOpRef accepts.
type UnaryOp byte

const (
	OpNot UnaryOp = iota
	OpNegate
	OpBitNot
)

// UnaryOpRef applies a unary operator to its operand, with primitive fast
// paths for Not/Bool, Negate/Int-Real, and BitNot/Int (spec §4.4).
type UnaryOpRef struct {
	Op UnaryOp
	A  Node
}

func NewUnaryOpRef(op UnaryOp, a Node) *UnaryOpRef {
	return &UnaryOpRef{Op: op, A: a}
}

func (n *UnaryOpRef) Get(ctx context.Context, scope *rtscope.Scope) (*object.Record, error) {
	v, err := n.EvalValue(ctx, scope)
	if err != nil {
		return nil, err
	}
	return frozenRecord(v), nil
}

func (n *UnaryOpRef) EvalValue(ctx context.Context, scope *rtscope.Scope) (*values.Value, error) {
	a, err := n.A.EvalValue(ctx, scope)
	if err != nil {
		return nil, err
	}
	if a.IsUnset() {
		return nil, corerr.New(corerr.UnsetError, scope.Pos(), "operand is unset")
	}
	pf := PerfFlagsFrom(ctx)
	st := StatsFrom(ctx)
	if pf.PrimitiveFastOps {
		switch n.Op {
		case OpNot:
			if a.IsBool() {
				st.AddPrimitiveFastOpsHit()
				return values.Bool(!a.AsBool()), nil
			}
		case OpNegate:
			if a.IsInt() || a.IsReal() {
				st.AddPrimitiveFastOpsHit()
				return a.Negate()
			}
		case OpBitNot:
			if a.IsInt() {
				st.AddPrimitiveFastOpsHit()
				return a.BitNot()
			}
		}
	}
	var v *values.Value
	switch n.Op {
	case OpNot:
		v, err = a.LogicalNot()
	case OpNegate:
		v, err = a.Negate()
	case OpBitNot:
		v, err = a.BitNot()
	}
	if err != nil {
		return nil, corerr.Wrap(corerr.NotImplemented, scope.Pos(), err, "%s", err.Error())
	}
	return v, nil
}

func (n *UnaryOpRef) SetAt(ctx context.Context, scope *rtscope.Scope, newValue *values.Value) error {
	return corerr.New(corerr.IllegalAssignment, scope.Pos(), "cannot assign to a unary expression")
}

func (n *UnaryOpRef) ForEachVariable(f func(name string)) { n.A.ForEachVariable(f) }
func (n *UnaryOpRef) ForEachVariableWithPos(f func(name string, pos corerr.Position)) {
	n.A.ForEachVariableWithPos(f)
}
