package eval

import (
	"context"

	"github.com/avery-lang/corelang/corerr"
	"github.com/avery-lang/corelang/object"
	"github.com/avery-lang/corelang/rtscope"
	"github.com/avery-lang/corelang/values"
)

// ConstRef returns a frozen record wrapping a compile-time-known value —
// the tree's leaf node for literals.
type ConstRef struct {
	rec *object.Record
}

func NewConstRef(v *values.Value) *ConstRef {
	return &ConstRef{rec: frozenRecord(v)}
}

func (n *ConstRef) Get(ctx context.Context, scope *rtscope.Scope) (*object.Record, error) {
	return n.rec, nil
}

func (n *ConstRef) EvalValue(ctx context.Context, scope *rtscope.Scope) (*values.Value, error) {
	return n.rec.Value, nil
}

func (n *ConstRef) SetAt(ctx context.Context, scope *rtscope.Scope, newValue *values.Value) error {
	return corerr.New(corerr.IllegalAssignment, scope.Pos(), "cannot assign to a constant")
}

func (n *ConstRef) ForEachVariable(f func(name string))                               {}
func (n *ConstRef) ForEachVariableWithPos(f func(name string, pos corerr.Position)) {}

// StatementRef executes a sub-statement for its value, used during
// compilation migration for expressions that still bottom out in a
// statement-shaped body (spec §4.4).
type StatementRef struct {
	stmt func(ctx context.Context, scope *rtscope.Scope) (*values.Value, error)
}

func NewStatementRef(stmt func(ctx context.Context, scope *rtscope.Scope) (*values.Value, error)) *StatementRef {
	return &StatementRef{stmt: stmt}
}

func (n *StatementRef) Get(ctx context.Context, scope *rtscope.Scope) (*object.Record, error) {
	v, err := n.stmt(ctx, scope)
	if err != nil {
		return nil, err
	}
	return frozenRecord(v), nil
}

func (n *StatementRef) EvalValue(ctx context.Context, scope *rtscope.Scope) (*values.Value, error) {
	return n.stmt(ctx, scope)
}

func (n *StatementRef) SetAt(ctx context.Context, scope *rtscope.Scope, newValue *values.Value) error {
	return corerr.New(corerr.IllegalAssignment, scope.Pos(), "cannot assign to a statement result")
}

func (n *StatementRef) ForEachVariable(f func(name string))                               {}
func (n *StatementRef) ForEachVariableWithPos(f func(name string, pos corerr.Position)) {}
