package eval

import (
	"context"

	"github.com/avery-lang/corelang/object"
	"github.com/avery-lang/corelang/rtscope"
	"github.com/avery-lang/corelang/values"
)

type scopeCtxKey struct{}

// WithScope attaches the currently executing scope to ctx so a BodyMethod
// closure invoked through object.MethodImpl.Execute (whose signature carries
// no *rtscope.Scope parameter) can still evaluate its body node tree. It is
// installed by CallRef (around its pooled child frame) and by
// NewClosureMethod (around the body it evaluates) — every other node
// already receives scope as an explicit argument.
func WithScope(ctx context.Context, scope *rtscope.Scope) context.Context {
	return context.WithValue(ctx, scopeCtxKey{}, scope)
}

func ScopeFromContext(ctx context.Context) (*rtscope.Scope, bool) {
	s, ok := ctx.Value(scopeCtxKey{}).(*rtscope.Scope)
	return s, ok
}

// NewClosureMethod wraps a user-defined body (an eval.Node tree) as an
// object.BodyMethod: on each call it draws a child frame from pool (if
// non-nil), binds receiver as `this` and each paramName to a positional
// argument slot in declaration order, evaluates body, and releases the
// frame. This realizes the "method body is a node tree in a closure" design
// (spec §4.4's MethodImplementation generalization) — the one place an
// object.MethodImpl is actually built from an eval.Node.
func NewClosureMethod(definingScope *rtscope.Scope, pool *rtscope.FramePool, paramNames []string, body Node) *object.BodyMethod {
	if pool != nil {
		definingScope.WithPool(pool)
	}
	return object.NewBodyMethod(func(ctx context.Context, receiver *object.Instance, args []*values.Value) (*values.Value, error) {
		child := definingScope.NewChild()
		defer child.Release()

		if receiver != nil {
			child.SetThis(receiver)
			child.SetCurrentClass(receiver.Class)
		}
		for i, name := range paramNames {
			var v *values.Value
			if i < len(args) {
				v = args[i]
			} else {
				v = values.Unset
			}
			child.PushSlot(name, &object.Record{Value: v, IsMutable: true, Kind: object.KindField})
		}

		ctx = WithScope(ctx, child)
		return body.EvalValue(ctx, child)
	})
}
