package object

import (
	"context"
	"fmt"

	"github.com/avery-lang/corelang/values"
)

// MethodType distinguishes how a method body is realized. Grounded in
// compiler/registry/class.go's MethodType (MethodTypeBytecode/Native/
// Handler); this tree-walking evaluator has no bytecode, so MethodKindBody
// takes over the "compiled method body" role bytecode played there, while
// Native/Handler keep their original meaning (a host-provided Go closure).
type MethodType byte

const (
	// MethodKindBody is a user-defined method whose body is an evaluator
	// node tree, wrapped into this closure shape by package eval (which
	// cannot be imported here without a cycle — eval imports object).
	MethodKindBody MethodType = iota
	MethodKindNative
	MethodKindHandler
)

// MethodFunc is the unified signature every MethodImpl variant executes
// through, mirroring MethodImplementation.Execute's (ctx, args) shape.
type MethodFunc func(ctx context.Context, receiver *Instance, args []*values.Value) (*values.Value, error)

// MethodImpl is compiler/registry.MethodImplementation renamed, with
// Execute taking the receiver and GetType shortened to Type, so the resolver and the PIC's
// miss-path invoker call through the same interface regardless of how a
// method body is actually realized.
type MethodImpl interface {
	Execute(ctx context.Context, receiver *Instance, args []*values.Value) (*values.Value, error)
	Type() MethodType
}

type BodyMethod struct {
	Fn MethodFunc
}

func NewBodyMethod(fn MethodFunc) *BodyMethod { return &BodyMethod{Fn: fn} }

func (b *BodyMethod) Execute(ctx context.Context, receiver *Instance, args []*values.Value) (*values.Value, error) {
	return b.Fn(ctx, receiver, args)
}
func (b *BodyMethod) Type() MethodType { return MethodKindBody }

// NativeMethod is a host-provided extension or builtin, not backed by any
// script-level node tree.
type NativeMethod struct {
	Fn MethodFunc
}

func NewNativeMethod(fn MethodFunc) *NativeMethod { return &NativeMethod{Fn: fn} }

func (n *NativeMethod) Execute(ctx context.Context, receiver *Instance, args []*values.Value) (*values.Value, error) {
	return n.Fn(ctx, receiver, args)
}
func (n *NativeMethod) Type() MethodType { return MethodKindNative }

// HandlerMethod backs delegate/trait-forwarded methods: a runtime hook
// distinct from a plain native extension, mirroring RuntimeHandlerImpl.
type HandlerMethod struct {
	Fn MethodFunc
}

func NewHandlerMethod(fn MethodFunc) *HandlerMethod { return &HandlerMethod{Fn: fn} }

func (h *HandlerMethod) Execute(ctx context.Context, receiver *Instance, args []*values.Value) (*values.Value, error) {
	return h.Fn(ctx, receiver, args)
}
func (h *HandlerMethod) Type() MethodType { return MethodKindHandler }

// NewMethodValue wraps a MethodImpl as a Value stored in a KindFun record.
func NewMethodValue(impl MethodImpl) *values.Value {
	return &values.Value{Type: values.TMethod, Data: impl}
}

func MethodFromValue(v *values.Value) (MethodImpl, bool) {
	if v == nil || v.Type != values.TMethod {
		return nil, false
	}
	impl, ok := v.Data.(MethodImpl)
	return impl, ok
}

// CallMethod invokes rec's MethodImpl (stored in rec.Value as a TMethod
// value) against receiver and args; it is the single place the method PIC
// and MethodCallRef's generic invoker funnel through.
func CallMethod(ctx context.Context, rec *Record, receiver *Instance, args []*values.Value) (*values.Value, error) {
	impl, ok := MethodFromValue(rec.Value)
	if !ok {
		return nil, fmt.Errorf("IllegalState: %q is not callable", rec.Name)
	}
	return impl.Execute(ctx, receiver, args)
}
