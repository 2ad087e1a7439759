// Package corelang is the evaluation core's public entry point: it wires a
// PerfFlags/Stats pair, a root scope, a frame pool, and an extension
// registry into a single Interpreter, and runs an eval.Node tree through
// them. Grounded in compiler/vm/vm.go's VirtualMachine struct shape (flags
// and metrics living as instance fields on the interpreter, never package
// globals, so two interpreters never share state).
package corelang

import (
	"context"

	"github.com/avery-lang/corelang/eval"
	"github.com/avery-lang/corelang/object"
	"github.com/avery-lang/corelang/rtscope"
	"github.com/avery-lang/corelang/values"
)

// PerfFlags and Stats are re-exported from package eval so a caller never
// has to import both packages to configure or inspect a run.
type PerfFlags = eval.PerfFlags
type Stats = eval.Stats

func DefaultPerfFlags() PerfFlags { return eval.DefaultPerfFlags() }

// Interpreter owns the long-lived state a script's execution needs across
// many Execute calls: the root scope (top-level bindings persist between
// calls, the way a REPL or module accumulates state), a frame pool shared by
// every call frame, the extension registry consulted by member resolution,
// and the Stats counters every PIC and fast path bumps into.
type Interpreter struct {
	root       *rtscope.Scope
	pool       *rtscope.FramePool
	extensions *object.ExtensionRegistry
	perfFlags  PerfFlags
	stats      *Stats
}

func NewInterpreter(perfFlags PerfFlags) *Interpreter {
	pool := rtscope.NewFramePool()
	root := rtscope.NewRootScope().WithPool(pool)
	ext := object.NewExtensionRegistry()
	root.SetExtensions(ext)
	return &Interpreter{
		root:       root,
		pool:       pool,
		extensions: ext,
		perfFlags:  perfFlags,
		stats:      &Stats{},
	}
}

// RootScope exposes the interpreter's top-level scope so a host can declare
// globals or register classes before running any node tree.
func (in *Interpreter) RootScope() *rtscope.Scope { return in.root }

// Extensions exposes the registry backing step 3 of member resolution, so a
// host can register extension methods before execution.
func (in *Interpreter) Extensions() *object.ExtensionRegistry { return in.extensions }

// Stats returns a consistent-enough snapshot of every PIC/fast-path counter
// plus the frame pool's own gets/puts/creates.
func (in *Interpreter) Stats() (nodeStats Stats, poolGets, poolPuts, poolCreates int64) {
	poolGets, poolPuts, poolCreates = in.pool.Stats()
	return in.stats.Snapshot(), poolGets, poolPuts, poolCreates
}

// Execute runs root against the interpreter's root scope, installing
// PerfFlags and Stats onto ctx so every reference node and PIC along the way
// can reach them without an extra parameter.
func (in *Interpreter) Execute(ctx context.Context, root eval.Node) (*values.Value, error) {
	ctx = eval.WithPerfFlags(ctx, in.perfFlags)
	ctx = eval.WithStats(ctx, in.stats)
	return root.EvalValue(ctx, in.root)
}

// ExecuteInChildScope runs root in a fresh pooled child of the root scope —
// the shape a top-level statement list or a REPL line uses so its locals
// don't leak into the next call.
func (in *Interpreter) ExecuteInChildScope(ctx context.Context, root eval.Node) (*values.Value, error) {
	ctx = eval.WithPerfFlags(ctx, in.perfFlags)
	ctx = eval.WithStats(ctx, in.stats)
	child := in.root.NewChild()
	defer child.Release()
	return root.EvalValue(ctx, child)
}
