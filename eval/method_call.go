package eval

import (
	"context"

	"github.com/avery-lang/corelang/corerr"
	"github.com/avery-lang/corelang/object"
	"github.com/avery-lang/corelang/rtscope"
	"github.com/avery-lang/corelang/values"
)

// ArgSpec is one call-site argument: positional (Name == ""), named, or a
// spread of a list value.
type ArgSpec struct {
	Name   string
	Value  Node
	Spread bool
}

// bindArguments evaluates each ArgSpec left-to-right, expanding spreads and
// collecting named arguments, per spec §5's "argument evaluation at a call
// site is left-to-right, followed by named/spread expansion" ordering rule.
func bindArguments(ctx context.Context, scope *rtscope.Scope, specs []ArgSpec, trailingBlock Node) (*Arguments, error) {
	args := &Arguments{Block: trailingBlock}
	for _, spec := range specs {
		v, err := spec.Value.EvalValue(ctx, scope)
		if err != nil {
			return nil, err
		}
		switch {
		case spec.Spread:
			if v.Type != values.TList {
				return nil, corerr.New(corerr.IllegalArgument, scope.Pos(), "spread argument must be a list")
			}
			args.Positional = append(args.Positional, v.Data.(*values.List).Items...)
		case spec.Name != "":
			if args.Named == nil {
				args.Named = make(map[string]*values.Value)
			}
			args.Named[spec.Name] = v
		default:
			args.Positional = append(args.Positional, v)
		}
	}
	return args, nil
}

type methodHandlerKind byte

const (
	mhSlot methodHandlerKind = iota
	mhClassScope
	mhGeneric
	mhNegative
)

// methodHandler is the method PIC payload: the resolved record (for every
// non-negative kind; a hit invokes it directly, skipping re-resolution) or a
// negative-cache message. kind only notes where the name was found.
type methodHandler struct {
	kind   methodHandlerKind
	rec    *object.Record
	negMsg string
}

// MethodCallRef evaluates Receiver, binds Args (positional/named/spread
// plus an optional trailing Block), and invokes Name on the receiver. The
// method PIC mirrors the field PIC's structure exactly (spec §4.4): 2/4
// entries, move-to-front, adaptive promotion with heuristic freeze, keyed
// on (classId, layoutVersion).
type MethodCallRef struct {
	Receiver      Node
	Name          string
	Args          []ArgSpec
	TrailingBlock Node
	Optional      bool

	pic *PIC[methodHandler]
}

func NewMethodCallRef(receiver Node, name string, args []ArgSpec, trailingBlock Node, optional bool) *MethodCallRef {
	return &MethodCallRef{Receiver: receiver, Name: name, Args: args, TrailingBlock: trailingBlock, Optional: optional}
}

func (n *MethodCallRef) ensurePIC(pf PerfFlags) {
	if n.pic == nil {
		n.pic = NewPIC[methodHandler](pf.picInitialSize(pf.MethodPICSize4), pf.PICAdaptive2To4, pf.PICAdaptiveHeuristic)
	}
}

func (n *MethodCallRef) EvalValue(ctx context.Context, scope *rtscope.Scope) (*values.Value, error) {
	recv, err := n.Receiver.EvalValue(ctx, scope)
	if err != nil {
		return nil, err
	}
	if n.Optional && recv.IsNull() {
		return values.Null, nil
	}

	inst, startClass, ok := object.Unwrap(recv)
	if !ok {
		return nil, corerr.New(corerr.NullPointer, scope.Pos(), "cannot call %q on %s", n.Name, recv.KindName())
	}

	args, err := bindArguments(ctx, scope, n.Args, n.TrailingBlock)
	if err != nil {
		return nil, err
	}

	pf := PerfFlagsFrom(ctx)
	st := StatsFrom(ctx)
	pos := scope.Pos()

	if !pf.MethodPIC {
		rec, _, err := object.ResolveMember(startClass, n.Name, scope.CurrentClass(), scopeExtensions(scope), pos)
		if err != nil {
			return nil, err
		}
		return object.CallMethod(ctx, rec, inst, args.Positional)
	}
	n.ensurePIC(pf)

	classID, layoutVersion := startClass.ID(), startClass.LayoutVersion()
	if h, ok := n.pic.Lookup(classID, layoutVersion); ok {
		if pf.PICDebugCounters {
			st.AddMethodPicHit()
		}
		if h.kind == mhNegative {
			return nil, corerr.New(corerr.SymbolNotFound, pos, "%s", h.negMsg)
		}
		return object.CallMethod(ctx, h.rec, inst, args.Positional)
	}
	if pf.PICDebugCounters {
		st.AddMethodPicMiss()
	}

	rec, _, err := object.ResolveMember(startClass, n.Name, scope.CurrentClass(), scopeExtensions(scope), pos)
	if err != nil {
		n.pic.Insert(classID, layoutVersion, methodHandler{kind: mhNegative, negMsg: err.Error()})
		return nil, err
	}
	kind := mhGeneric
	if _, ok := startClass.FieldSlots[n.Name]; ok {
		kind = mhSlot
	} else if _, ok := startClass.ClassScope.Objects[n.Name]; ok {
		kind = mhClassScope
	}
	n.pic.Insert(classID, layoutVersion, methodHandler{kind: kind, rec: rec})
	return object.CallMethod(ctx, rec, inst, args.Positional)
}

func (n *MethodCallRef) Get(ctx context.Context, scope *rtscope.Scope) (*object.Record, error) {
	v, err := n.EvalValue(ctx, scope)
	if err != nil {
		return nil, err
	}
	return frozenRecord(v), nil
}

func (n *MethodCallRef) SetAt(ctx context.Context, scope *rtscope.Scope, newValue *values.Value) error {
	return corerr.New(corerr.IllegalAssignment, scope.Pos(), "cannot assign to a method call result")
}

func (n *MethodCallRef) ForEachVariable(f func(name string)) {
	n.Receiver.ForEachVariable(f)
	for _, a := range n.Args {
		a.Value.ForEachVariable(f)
	}
}
func (n *MethodCallRef) ForEachVariableWithPos(f func(name string, pos corerr.Position)) {
	n.Receiver.ForEachVariableWithPos(f)
	for _, a := range n.Args {
		a.Value.ForEachVariableWithPos(f)
	}
}
