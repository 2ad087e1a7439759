package eval

import (
	"context"

	"github.com/avery-lang/corelang/corerr"
	"github.com/avery-lang/corelang/object"
	"github.com/avery-lang/corelang/rtscope"
	"github.com/avery-lang/corelang/values"
)

type indexHandlerKind byte

const (
	ihList indexHandlerKind = iota
	ihString
	ihMap
	ihInstance
	ihGeneric
	ihNegative
)

// indexerMemberName is the conventional member name ResolveMember looks up
// for a user-defined `target[index]` overload on an Instance receiver.
const indexerMemberName = "[]"

// indexHandler is the PIC payload for both the index-read and index-write
// caches: a type tag for the built-in List/String/Map shapes (dispatched
// without re-deriving target.Type), the resolved indexer record for an
// Instance receiver, a generic fallback, or a negative-cache entry.
type indexHandler struct {
	kind   indexHandlerKind
	rec    *object.Record
	negMsg string
}

// IndexRef implements `target[index]`. Primitive fast paths cover
// List+Int, String+Int (returns a Char), and Map+String; anything else
// goes through a separate 4-entry PIC analogous to the field PIC (spec
// §4.4): a cache hit dispatches straight through the remembered handler,
// never re-running the generic resolve.
type IndexRef struct {
	Target, Index Node

	readPIC  *PIC[indexHandler]
	writePIC *PIC[indexHandler]
}

func NewIndexRef(target, index Node) *IndexRef { return &IndexRef{Target: target, Index: index} }

func (n *IndexRef) ensurePICs(pf PerfFlags) {
	if n.readPIC == nil {
		n.readPIC = NewPIC[indexHandler](pf.picInitialSize(pf.IndexPICSize4), pf.PICAdaptive2To4 && !pf.PICAdaptiveMethodsOnly, pf.PICAdaptiveHeuristic)
	}
	if n.writePIC == nil {
		n.writePIC = NewPIC[indexHandler](pf.picInitialSize(pf.IndexPICSize4), pf.PICAdaptive2To4 && !pf.PICAdaptiveMethodsOnly, pf.PICAdaptiveHeuristic)
	}
}

func (n *IndexRef) eval(ctx context.Context, scope *rtscope.Scope) (target, idx *values.Value, err error) {
	target, err = n.Target.EvalValue(ctx, scope)
	if err != nil {
		return nil, nil, err
	}
	idx, err = n.Index.EvalValue(ctx, scope)
	if err != nil {
		return nil, nil, err
	}
	return target, idx, nil
}

func (n *IndexRef) EvalValue(ctx context.Context, scope *rtscope.Scope) (*values.Value, error) {
	target, idx, err := n.eval(ctx, scope)
	if err != nil {
		return nil, err
	}
	pos := scope.Pos()
	pf := PerfFlagsFrom(ctx)
	st := StatsFrom(ctx)

	if pf.PrimitiveFastOps {
		switch {
		case target.Type == values.TList && idx.IsInt():
			v, ok := target.Data.(*values.List).Get(idx.AsInt())
			if !ok {
				return nil, corerr.New(corerr.NoSuchElement, pos, "index %d out of range", idx.AsInt())
			}
			st.AddPrimitiveFastOpsHit()
			return v, nil
		case target.Type == values.TString && idx.IsInt():
			s := target.AsString()
			i := idx.AsInt()
			if i < 0 || i >= int64(len(s)) {
				return nil, corerr.New(corerr.NoSuchElement, pos, "index %d out of range", i)
			}
			st.AddPrimitiveFastOpsHit()
			return values.Char(rune(s[i])), nil
		case target.Type == values.TMap && idx.IsString():
			v, ok := target.Data.(*values.Map).Get(idx)
			if !ok {
				return nil, corerr.New(corerr.NoSuchElement, pos, "no such key %q", idx.AsString())
			}
			st.AddPrimitiveFastOpsHit()
			return v, nil
		}
	}

	if !pf.IndexPIC {
		return n.readGeneric(ctx, target, idx, scope, pos)
	}
	n.ensurePICs(pf)
	classID, layoutVersion := shapeOf(target)
	if h, ok := n.readPIC.Lookup(classID, layoutVersion); ok {
		if pf.PICDebugCounters {
			st.AddIndexPicHit()
		}
		return n.invokeIndexHandler(ctx, h, target, idx, scope, pos)
	}
	if pf.PICDebugCounters {
		st.AddIndexPicMiss()
	}

	v, h, err := n.resolveIndexRead(ctx, target, idx, scope, pos)
	if err != nil {
		n.readPIC.Insert(classID, layoutVersion, indexHandler{kind: ihNegative, negMsg: err.Error()})
		return nil, err
	}
	n.readPIC.Insert(classID, layoutVersion, h)
	return v, nil
}

// invokeIndexHandler dispatches a PIC-hit directly through the remembered
// handler; it falls back to readGeneric only when the cached shape no
// longer matches the live value (e.g. a stale List handler against a
// value whose type changed underneath a reused call site).
func (n *IndexRef) invokeIndexHandler(ctx context.Context, h indexHandler, target, idx *values.Value, scope *rtscope.Scope, pos corerr.Position) (*values.Value, error) {
	switch h.kind {
	case ihNegative:
		return nil, corerr.New(corerr.NoSuchElement, pos, "%s", h.negMsg)
	case ihList:
		if target.Type != values.TList || !idx.IsInt() {
			return n.readGeneric(ctx, target, idx, scope, pos)
		}
		v, ok := target.Data.(*values.List).Get(idx.AsInt())
		if !ok {
			return nil, corerr.New(corerr.NoSuchElement, pos, "index %d out of range", idx.AsInt())
		}
		return v, nil
	case ihString:
		if target.Type != values.TString || !idx.IsInt() {
			return n.readGeneric(ctx, target, idx, scope, pos)
		}
		s := target.AsString()
		i := idx.AsInt()
		if i < 0 || i >= int64(len(s)) {
			return nil, corerr.New(corerr.NoSuchElement, pos, "index %d out of range", i)
		}
		return values.Char(rune(s[i])), nil
	case ihMap:
		if target.Type != values.TMap {
			return n.readGeneric(ctx, target, idx, scope, pos)
		}
		v, ok := target.Data.(*values.Map).Get(idx)
		if !ok {
			return nil, corerr.New(corerr.NoSuchElement, pos, "no such key %s", idx.ToDisplayString())
		}
		return v, nil
	case ihInstance:
		inst, _, ok := object.Unwrap(target)
		if !ok || h.rec == nil {
			return n.readGeneric(ctx, target, idx, scope, pos)
		}
		return object.CallMethod(ctx, h.rec, inst, []*values.Value{idx})
	default:
		return n.readGeneric(ctx, target, idx, scope, pos)
	}
}

// resolveIndexRead is the miss-path: resolve the value the slow way and
// derive the handler to cache for next time.
func (n *IndexRef) resolveIndexRead(ctx context.Context, target, idx *values.Value, scope *rtscope.Scope, pos corerr.Position) (*values.Value, indexHandler, error) {
	if inst, startClass, ok := object.Unwrap(target); ok {
		rec, _, err := object.ResolveMember(startClass, indexerMemberName, scope.CurrentClass(), scopeExtensions(scope), pos)
		if err != nil {
			return nil, indexHandler{}, err
		}
		v, err := object.CallMethod(ctx, rec, inst, []*values.Value{idx})
		if err != nil {
			return nil, indexHandler{}, err
		}
		return v, indexHandler{kind: ihInstance, rec: rec}, nil
	}
	v, err := n.readGeneric(ctx, target, idx, scope, pos)
	if err != nil {
		return nil, indexHandler{}, err
	}
	return v, n.genericHandlerFor(target), nil
}

func (n *IndexRef) genericHandlerFor(target *values.Value) indexHandler {
	switch target.Type {
	case values.TList:
		return indexHandler{kind: ihList}
	case values.TString:
		return indexHandler{kind: ihString}
	case values.TMap:
		return indexHandler{kind: ihMap}
	default:
		return indexHandler{kind: ihGeneric}
	}
}

func (n *IndexRef) readGeneric(ctx context.Context, target, idx *values.Value, scope *rtscope.Scope, pos corerr.Position) (*values.Value, error) {
	switch target.Type {
	case values.TList:
		if !idx.IsInt() {
			return nil, corerr.New(corerr.IllegalArgument, pos, "list index must be an int")
		}
		v, ok := target.Data.(*values.List).Get(idx.AsInt())
		if !ok {
			return nil, corerr.New(corerr.NoSuchElement, pos, "index %d out of range", idx.AsInt())
		}
		return v, nil
	case values.TMap:
		v, ok := target.Data.(*values.Map).Get(idx)
		if !ok {
			return nil, corerr.New(corerr.NoSuchElement, pos, "no such key %s", idx.ToDisplayString())
		}
		return v, nil
	case values.TString:
		if !idx.IsInt() {
			return nil, corerr.New(corerr.IllegalArgument, pos, "string index must be an int")
		}
		s := target.AsString()
		i := idx.AsInt()
		if i < 0 || i >= int64(len(s)) {
			return nil, corerr.New(corerr.NoSuchElement, pos, "index %d out of range", i)
		}
		return values.Char(rune(s[i])), nil
	case values.TRange:
		return nil, corerr.New(corerr.NotImplemented, pos, "range is not indexable")
	case values.TInstance, values.TQualifiedView:
		inst, startClass, ok := object.Unwrap(target)
		if !ok {
			return nil, corerr.New(corerr.NotImplemented, pos, "%s is not indexable", target.KindName())
		}
		rec, _, err := object.ResolveMember(startClass, indexerMemberName, scope.CurrentClass(), scopeExtensions(scope), pos)
		if err != nil {
			return nil, err
		}
		return object.CallMethod(ctx, rec, inst, []*values.Value{idx})
	default:
		return nil, corerr.New(corerr.NotImplemented, pos, "%s is not indexable", target.KindName())
	}
}

func (n *IndexRef) Get(ctx context.Context, scope *rtscope.Scope) (*object.Record, error) {
	v, err := n.EvalValue(ctx, scope)
	if err != nil {
		return nil, err
	}
	return frozenRecord(v), nil
}

// SetAt handles `List[Int] := v` and `Map[key] := v` by writing the
// container directly; with IndexPIC on it then records the target's shape
// in the index-write PIC (hit/miss only, its handler is not used for the
// write). An Instance target's indexer has no natural "write"
// overload in this value universe (the indexer record is resolved as a
// single callable, not a getter/setter pair), so writes stay limited to
// the built-in List/Map containers, per spec §4.4.
func (n *IndexRef) SetAt(ctx context.Context, scope *rtscope.Scope, newValue *values.Value) error {
	target, idx, err := n.eval(ctx, scope)
	if err != nil {
		return err
	}
	pos := scope.Pos()
	pf := PerfFlagsFrom(ctx)
	st := StatsFrom(ctx)

	switch target.Type {
	case values.TList:
		if !idx.IsInt() {
			return corerr.New(corerr.IllegalArgument, pos, "list index must be an int")
		}
		if !target.Data.(*values.List).Set(idx.AsInt(), newValue) {
			return corerr.New(corerr.NoSuchElement, pos, "index %d out of range", idx.AsInt())
		}
	case values.TMap:
		target.Data.(*values.Map).Set(idx, newValue)
	default:
		return corerr.New(corerr.NotImplemented, pos, "%s does not support index assignment", target.KindName())
	}

	if pf.IndexPIC {
		n.ensurePICs(pf)
		classID, layoutVersion := shapeOf(target)
		if _, ok := n.writePIC.Lookup(classID, layoutVersion); ok {
			if pf.PICDebugCounters {
				st.AddIndexPicHit()
			}
		} else {
			if pf.PICDebugCounters {
				st.AddIndexPicMiss()
			}
			n.writePIC.Insert(classID, layoutVersion, n.genericHandlerFor(target))
		}
	}
	return nil
}

func (n *IndexRef) isLValue() {}

func (n *IndexRef) ForEachVariable(f func(name string)) {
	n.Target.ForEachVariable(f)
	n.Index.ForEachVariable(f)
}
func (n *IndexRef) ForEachVariableWithPos(f func(name string, pos corerr.Position)) {
	n.Target.ForEachVariableWithPos(f)
	n.Index.ForEachVariableWithPos(f)
}

var _ VariableRef = (*IndexRef)(nil)
