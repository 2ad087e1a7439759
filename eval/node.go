// Package eval implements component C4: the closed set of reference-node
// variants that make up an expression/statement tree, plus the polymorphic
// inline caches (PICs) that shortcut field, index, and method resolution.
//
// Grounded in the teacher's per-opcode-family executor split
// (arithmetic_executor.go, comparison_executor.go, instruction_executor.go —
// github.com/wudi/hey's compiler/vm), generalized from dispatch-by-opcode in
// a bytecode loop to dispatch-by-struct-type over a tree: one Go file per
// node family, each a small set of methods on a node struct implementing the
// shared Node interface below.
package eval

import (
	"context"

	"github.com/avery-lang/corelang/corerr"
	"github.com/avery-lang/corelang/object"
	"github.com/avery-lang/corelang/rtscope"
	"github.com/avery-lang/corelang/values"
)

// Node is the contract every reference-node variant implements (spec §4.4).
// EvalValue defaults to Get(scope).value but every leaf/primitive node that
// reads a cached slot or takes a primitive fast path overrides it, to avoid
// allocating a throwaway Record.
type Node interface {
	Get(ctx context.Context, scope *rtscope.Scope) (*object.Record, error)
	EvalValue(ctx context.Context, scope *rtscope.Scope) (*values.Value, error)
	SetAt(ctx context.Context, scope *rtscope.Scope, newValue *values.Value) error
	ForEachVariable(f func(name string))
	ForEachVariableWithPos(f func(name string, pos corerr.Position))
}

// VariableRef is implemented by the l-value node variants: FieldRef,
// IndexRef, the local/slot variants, and the qualified-this variants. AssignRef
// consults this to skip a target's assign hook and call SetAt directly
// (spec §4.4's "known l-value variant" rule), which avoids an unwanted
// getter invocation on Property targets.
type VariableRef interface {
	Node
	isLValue()
}

// defaultEvalValue implements the universal fallback N.evalValue(S) ==
// N.get(S).value invariant (spec §8, property 1) for node variants that have
// no primitive fast path of their own.
func defaultEvalValue(ctx context.Context, n Node, scope *rtscope.Scope) (*values.Value, error) {
	rec, err := n.Get(ctx, scope)
	if err != nil {
		return nil, err
	}
	return readRecord(rec)
}

// readRecord routes through Record.Read using the record's bound receiver
// (set at lookup/construction time), never the caller's own `this`.
func readRecord(rec *object.Record) (*values.Value, error) {
	return rec.Read(rec.Receiver)
}

// writeRecord routes through Record.Write the same way.
func writeRecord(rec *object.Record, newValue *values.Value) error {
	return rec.Write(rec.Receiver, newValue)
}

// frozenRecord wraps a plain Value as an immutable Record, for nodes whose
// Get() must return something record-shaped (literals, computed rvalues)
// without being writable.
func frozenRecord(v *values.Value) *object.Record {
	return &object.Record{Value: v, IsMutable: false, Kind: object.KindOther}
}

// Arguments is the bound argument list produced by call-site binding
// (positional, named, spread, trailing block), passed to MethodImpl.Execute.
type Arguments struct {
	Positional []*values.Value
	Named      map[string]*values.Value
	Block      Node
}

// currentThis resolves the nearest enclosing thisObj by walking the scope's
// frame chain, used by QualifiedThisRef and the Implicit*/This* fast paths.
func currentThis(scope *rtscope.Scope) *object.Instance {
	f := scope.Frame
	for i := 0; i < 4096 && f != nil; i++ {
		if t := f.ThisObj(); t != nil {
			return t
		}
		if f.Parent() == f {
			break
		}
		f = f.Parent()
	}
	return nil
}
