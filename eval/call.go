package eval

import (
	"context"

	"github.com/avery-lang/corelang/corerr"
	"github.com/avery-lang/corelang/object"
	"github.com/avery-lang/corelang/rtscope"
	"github.com/avery-lang/corelang/values"
)

// CallRef invokes a callable Value directly — `Callee(args)` where Callee is
// not a member access, e.g. a local holding a closure or a function passed
// as an argument. Distinct from MethodCallRef, which resolves Name against a
// receiver's class hierarchy; CallRef's target is already the callable.
type CallRef struct {
	Callee        Node
	Args          []ArgSpec
	TrailingBlock Node
	Optional      bool
}

func NewCallRef(callee Node, args []ArgSpec, trailingBlock Node, optional bool) *CallRef {
	return &CallRef{Callee: callee, Args: args, TrailingBlock: trailingBlock, Optional: optional}
}

func (n *CallRef) EvalValue(ctx context.Context, scope *rtscope.Scope) (*values.Value, error) {
	callee, err := n.Callee.EvalValue(ctx, scope)
	if err != nil {
		return nil, err
	}
	if n.Optional && callee.IsNull() {
		return values.Null, nil
	}

	impl, ok := object.MethodFromValue(callee)
	if !ok {
		return nil, corerr.New(corerr.NotImplemented, scope.Pos(), "%s is not callable", callee.KindName())
	}

	args, err := bindArguments(ctx, scope, n.Args, n.TrailingBlock)
	if err != nil {
		return nil, err
	}

	pf := PerfFlagsFrom(ctx)

	var receiver *object.Instance
	if inst, _, ok := object.Unwrap(callee); ok {
		receiver = inst
	}

	if pf.ScopePool {
		child := scope.NewChild()
		defer child.Release()
		ctx = WithScope(ctx, child)
		return impl.Execute(ctx, receiver, args.Positional)
	}
	return impl.Execute(ctx, receiver, args.Positional)
}

func (n *CallRef) Get(ctx context.Context, scope *rtscope.Scope) (*object.Record, error) {
	v, err := n.EvalValue(ctx, scope)
	if err != nil {
		return nil, err
	}
	return frozenRecord(v), nil
}

func (n *CallRef) SetAt(ctx context.Context, scope *rtscope.Scope, newValue *values.Value) error {
	return corerr.New(corerr.IllegalAssignment, scope.Pos(), "cannot assign to a call result")
}

func (n *CallRef) ForEachVariable(f func(name string)) {
	n.Callee.ForEachVariable(f)
	for _, a := range n.Args {
		a.Value.ForEachVariable(f)
	}
}
func (n *CallRef) ForEachVariableWithPos(f func(name string, pos corerr.Position)) {
	n.Callee.ForEachVariableWithPos(f)
	for _, a := range n.Args {
		a.Value.ForEachVariableWithPos(f)
	}
}
