package eval

import (
	"context"

	"github.com/avery-lang/corelang/corerr"
	"github.com/avery-lang/corelang/object"
	"github.com/avery-lang/corelang/rtscope"
	"github.com/avery-lang/corelang/values"
)

// ConditionalRef picks a branch by the boolness of Cond: Bool uses its raw
// value, Int uses nonzero, anything else falls back to Value.ToBool.
type ConditionalRef struct {
	Cond, A, B Node
}

func NewConditionalRef(cond, a, b Node) *ConditionalRef {
	return &ConditionalRef{Cond: cond, A: a, B: b}
}

func (n *ConditionalRef) branch(ctx context.Context, scope *rtscope.Scope) (Node, error) {
	c, err := n.Cond.EvalValue(ctx, scope)
	if err != nil {
		return nil, err
	}
	var taken bool
	switch {
	case c.IsBool():
		taken = c.AsBool()
	case c.IsInt():
		taken = c.AsInt() != 0
	default:
		taken = c.ToBool()
	}
	if taken {
		return n.A, nil
	}
	return n.B, nil
}

func (n *ConditionalRef) Get(ctx context.Context, scope *rtscope.Scope) (*object.Record, error) {
	b, err := n.branch(ctx, scope)
	if err != nil {
		return nil, err
	}
	return b.Get(ctx, scope)
}

func (n *ConditionalRef) EvalValue(ctx context.Context, scope *rtscope.Scope) (*values.Value, error) {
	b, err := n.branch(ctx, scope)
	if err != nil {
		return nil, err
	}
	return b.EvalValue(ctx, scope)
}

func (n *ConditionalRef) SetAt(ctx context.Context, scope *rtscope.Scope, newValue *values.Value) error {
	b, err := n.branch(ctx, scope)
	if err != nil {
		return err
	}
	return b.SetAt(ctx, scope, newValue)
}

func (n *ConditionalRef) ForEachVariable(f func(name string)) {
	n.Cond.ForEachVariable(f)
	n.A.ForEachVariable(f)
	n.B.ForEachVariable(f)
}
func (n *ConditionalRef) ForEachVariableWithPos(f func(name string, pos corerr.Position)) {
	n.Cond.ForEachVariableWithPos(f)
	n.A.ForEachVariableWithPos(f)
	n.B.ForEachVariableWithPos(f)
}

// CastRef resolves Type to a Class, unwraps any QualifiedView on Value,
// checks isInstanceOf, and on success returns the value (wrapped in a
// QualifiedView if Type is a strict ancestor of the instance's dynamic
// class); on failure returns Null if Nullable else fails with
// ClassCastError.
type CastRef struct {
	Value    Node
	Type     *object.Class
	Nullable bool
}

func NewCastRef(value Node, typ *object.Class, nullable bool) *CastRef {
	return &CastRef{Value: value, Type: typ, Nullable: nullable}
}

func (n *CastRef) EvalValue(ctx context.Context, scope *rtscope.Scope) (*values.Value, error) {
	v, err := n.Value.EvalValue(ctx, scope)
	if err != nil {
		return nil, err
	}
	inst, startClass, ok := object.Unwrap(v)
	if !ok || !startClass.IsInstanceOf(n.Type) {
		if n.Nullable {
			return values.Null, nil
		}
		return nil, corerr.New(corerr.ClassCastError, scope.Pos(), "cannot cast %s to %s", v.KindName(), n.Type.Name)
	}
	if n.Type != inst.Class {
		return object.NewQualifiedViewValue(inst, n.Type), nil
	}
	return v, nil
}

func (n *CastRef) Get(ctx context.Context, scope *rtscope.Scope) (*object.Record, error) {
	v, err := n.EvalValue(ctx, scope)
	if err != nil {
		return nil, err
	}
	return frozenRecord(v), nil
}

func (n *CastRef) SetAt(ctx context.Context, scope *rtscope.Scope, newValue *values.Value) error {
	return corerr.New(corerr.IllegalAssignment, scope.Pos(), "cannot assign to a cast expression")
}
func (n *CastRef) ForEachVariable(f func(name string)) { n.Value.ForEachVariable(f) }
func (n *CastRef) ForEachVariableWithPos(f func(name string, pos corerr.Position)) {
	n.Value.ForEachVariableWithPos(f)
}

// QualifiedThisRef(typeName) walks parent scopes for a thisObj that
// isInstanceOf typeName, returning a QualifiedView bound to that ancestor.
type QualifiedThisRef struct {
	Type *object.Class
}

func NewQualifiedThisRef(typ *object.Class) *QualifiedThisRef { return &QualifiedThisRef{Type: typ} }

func (n *QualifiedThisRef) EvalValue(ctx context.Context, scope *rtscope.Scope) (*values.Value, error) {
	this := currentThis(scope)
	if this == nil || !this.Class.IsInstanceOf(n.Type) {
		return nil, corerr.New(corerr.IllegalState, scope.Pos(), "no enclosing this is an instance of %s", n.Type.Name)
	}
	return object.NewQualifiedViewValue(this, n.Type), nil
}

func (n *QualifiedThisRef) Get(ctx context.Context, scope *rtscope.Scope) (*object.Record, error) {
	v, err := n.EvalValue(ctx, scope)
	if err != nil {
		return nil, err
	}
	return frozenRecord(v), nil
}

func (n *QualifiedThisRef) SetAt(ctx context.Context, scope *rtscope.Scope, newValue *values.Value) error {
	return corerr.New(corerr.IllegalAssignment, scope.Pos(), "cannot assign to this@T")
}
func (n *QualifiedThisRef) ForEachVariable(f func(name string))                               {}
func (n *QualifiedThisRef) ForEachVariableWithPos(f func(name string, pos corerr.Position)) {}
