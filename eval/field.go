package eval

import (
	"context"

	"github.com/avery-lang/corelang/corerr"
	"github.com/avery-lang/corelang/object"
	"github.com/avery-lang/corelang/rtscope"
	"github.com/avery-lang/corelang/values"
)

type fieldHandlerKind byte

const (
	fhSlot fieldHandlerKind = iota
	fhClassScope
	fhGeneric
	fhNegative
)

// fieldHandler is the PIC payload for both the field-read and field-write
// caches: either a direct field-slot index (Instance receiver), a
// class-scope key (Class receiver), a generic fallback that re-walks
// ResolveMember, or a negative-cache entry remembering a prior failure's
// message (spec §4.4/§7).
type fieldHandler struct {
	kind   fieldHandlerKind
	slot   int
	key    string
	negMsg string
}

// lastFieldRead is the "transient read-cache" of spec §4.4: after a read,
// the resolved record is remembered for this call site within the current
// frame so a subsequent write can reuse it without a second resolution, as
// long as the record is not a Property (which must always route through
// its setter).
type lastFieldRead struct {
	classID       int64
	layoutVersion int64
	frameID       int64
	rec           *object.Record
}

// FieldRef implements `target.name` with optional chaining, backed by a
// 2/4-entry adaptive move-to-front PIC for reads and a separate one for
// writes (spec §4.4's field-access PIC workhorse).
type FieldRef struct {
	Target   Node
	Name     string
	Optional bool

	readPIC  *PIC[fieldHandler]
	writePIC *PIC[fieldHandler]
	lastRead *lastFieldRead
}

func NewFieldRef(target Node, name string, optional bool) *FieldRef {
	return &FieldRef{Target: target, Name: name, Optional: optional}
}

func (n *FieldRef) ensurePICs(pf PerfFlags) {
	if n.readPIC == nil {
		n.readPIC = NewPIC[fieldHandler](pf.picInitialSize(pf.FieldPICSize4), pf.PICAdaptive2To4 && !pf.PICAdaptiveMethodsOnly, pf.PICAdaptiveHeuristic)
	}
	if n.writePIC == nil {
		n.writePIC = NewPIC[fieldHandler](pf.picInitialSize(pf.FieldPICSize4), pf.PICAdaptive2To4 && !pf.PICAdaptiveMethodsOnly, pf.PICAdaptiveHeuristic)
	}
}

// shapeOf extracts the (classId, layoutVersion) cache key from a receiver
// value; 0 means "shape not stable, do not cache".
func shapeOf(v *values.Value) (int64, int64) {
	if _, startClass, ok := object.Unwrap(v); ok {
		return startClass.ID(), startClass.LayoutVersion()
	}
	if cls, ok := object.ClassFromValue(v); ok {
		return cls.ID(), cls.LayoutVersion()
	}
	return 0, 0
}

// scopeExtensions adapts rtscope.Scope's registered extension lookup to
// object.ExtensionLookup for ResolveMember's step 3.
func scopeExtensions(scope *rtscope.Scope) object.ExtensionLookup {
	return scope.Extensions()
}

func (n *FieldRef) Get(ctx context.Context, scope *rtscope.Scope) (*object.Record, error) {
	target, err := n.Target.EvalValue(ctx, scope)
	if err != nil {
		return nil, err
	}
	if n.Optional && target.IsNull() {
		return frozenRecord(values.Null), nil
	}

	pf := PerfFlagsFrom(ctx)
	st := StatsFrom(ctx)
	pos := scope.Pos()

	if !pf.FieldPIC {
		rec, err := n.resolveGeneric(target, scope, pos)
		if err != nil {
			return nil, err
		}
		return rec, nil
	}
	n.ensurePICs(pf)

	classID, layoutVersion := shapeOf(target)
	if h, ok := n.readPIC.Lookup(classID, layoutVersion); ok {
		if pf.PICDebugCounters {
			st.AddFieldPicHit()
		}
		rec, err := n.invokeFieldHandler(h, target, scope, pos)
		if err == nil {
			n.rememberRead(classID, layoutVersion, scope, rec)
		}
		return rec, err
	}
	if pf.PICDebugCounters {
		st.AddFieldPicMiss()
	}

	rec, installErr := n.resolveAndInstall(target, scope, pos, classID, layoutVersion)
	if installErr != nil {
		return nil, installErr
	}
	n.rememberRead(classID, layoutVersion, scope, rec)
	return rec, nil
}

func (n *FieldRef) rememberRead(classID, layoutVersion int64, scope *rtscope.Scope, rec *object.Record) {
	if rec == nil || rec.Kind == object.KindProperty {
		n.lastRead = nil
		return
	}
	n.lastRead = &lastFieldRead{classID: classID, layoutVersion: layoutVersion, frameID: scope.ID(), rec: rec}
}

func (n *FieldRef) invokeFieldHandler(h fieldHandler, target *values.Value, scope *rtscope.Scope, pos corerr.Position) (*object.Record, error) {
	switch h.kind {
	case fhNegative:
		return nil, corerr.New(corerr.SymbolNotFound, pos, "%s", h.negMsg)
	case fhSlot:
		inst, _, ok := object.Unwrap(target)
		if !ok || h.slot < 0 || h.slot >= len(inst.FieldSlots) {
			return n.resolveGeneric(target, scope, pos)
		}
		return inst.FieldSlots[h.slot], nil
	case fhClassScope:
		cls, ok := object.ClassFromValue(target)
		if !ok {
			return n.resolveGeneric(target, scope, pos)
		}
		if rec, ok := cls.ClassScope.Objects[h.key]; ok {
			return rec, nil
		}
		return n.resolveGeneric(target, scope, pos)
	default:
		return n.resolveGeneric(target, scope, pos)
	}
}

func (n *FieldRef) resolveGeneric(target *values.Value, scope *rtscope.Scope, pos corerr.Position) (*object.Record, error) {
	inst, startClass, ok := object.Unwrap(target)
	if !ok {
		return nil, corerr.New(corerr.NullPointer, pos, "cannot access field %q on %s", n.Name, target.KindName())
	}
	rec, _, err := object.ResolveMember(startClass, n.Name, scope.CurrentClass(), scopeExtensions(scope), pos)
	if err != nil {
		return nil, err
	}
	if rec.Receiver == nil {
		clone := *rec
		clone.Receiver = inst
		return &clone, nil
	}
	return rec, nil
}

func (n *FieldRef) resolveAndInstall(target *values.Value, scope *rtscope.Scope, pos corerr.Position, classID, layoutVersion int64) (*object.Record, error) {
	rec, err := n.resolveGeneric(target, scope, pos)
	if err != nil {
		n.readPIC.Insert(classID, layoutVersion, fieldHandler{kind: fhNegative, negMsg: err.Error()})
		return nil, err
	}

	if inst, _, ok := object.Unwrap(target); ok {
		if slot, ok := inst.Class.FieldSlots[n.Name]; ok {
			n.readPIC.Insert(classID, layoutVersion, fieldHandler{kind: fhSlot, slot: slot})
			return rec, nil
		}
	} else if cls, ok := object.ClassFromValue(target); ok {
		if _, ok := cls.ClassScope.Objects[n.Name]; ok {
			n.readPIC.Insert(classID, layoutVersion, fieldHandler{kind: fhClassScope, key: n.Name})
			return rec, nil
		}
	}
	n.readPIC.Insert(classID, layoutVersion, fieldHandler{kind: fhGeneric})
	return rec, nil
}

func (n *FieldRef) EvalValue(ctx context.Context, scope *rtscope.Scope) (*values.Value, error) {
	if !PerfFlagsFrom(ctx).RVALFastpath {
		rec, err := n.Get(ctx, scope)
		if err != nil {
			return nil, err
		}
		return readRecord(rec)
	}
	rec, err := n.Get(ctx, scope)
	if err != nil {
		return nil, err
	}
	return readRecord(rec)
}

func (n *FieldRef) SetAt(ctx context.Context, scope *rtscope.Scope, newValue *values.Value) error {
	target, err := n.Target.EvalValue(ctx, scope)
	if err != nil {
		return err
	}
	if n.Optional && target.IsNull() {
		return nil
	}

	pf := PerfFlagsFrom(ctx)
	st := StatsFrom(ctx)
	pos := scope.Pos()

	classID, layoutVersion := shapeOf(target)

	// Transient read-cache fast path: a read at this site in the same frame
	// already resolved a non-Property record, so write straight through it.
	if n.lastRead != nil && n.lastRead.classID == classID && n.lastRead.layoutVersion == layoutVersion && n.lastRead.frameID == scope.ID() {
		return writeRecord(n.lastRead.rec, newValue)
	}

	if !pf.FieldPIC {
		rec, err := n.resolveGeneric(target, scope, pos)
		if err != nil {
			return err
		}
		return writeRecord(rec, newValue)
	}
	n.ensurePICs(pf)

	if h, ok := n.writePIC.Lookup(classID, layoutVersion); ok {
		if pf.PICDebugCounters {
			st.AddFieldPicSetHit()
		}
		rec, err := n.invokeFieldHandler(h, target, scope, pos)
		if err != nil {
			return err
		}
		return writeRecord(rec, newValue)
	}
	if pf.PICDebugCounters {
		st.AddFieldPicSetMiss()
	}

	rec, err := n.resolveGeneric(target, scope, pos)
	if err != nil {
		n.writePIC.Insert(classID, layoutVersion, fieldHandler{kind: fhNegative, negMsg: err.Error()})
		return err
	}
	if inst, _, ok := object.Unwrap(target); ok {
		if slot, ok := inst.Class.FieldSlots[n.Name]; ok {
			n.writePIC.Insert(classID, layoutVersion, fieldHandler{kind: fhSlot, slot: slot})
			return writeRecord(rec, newValue)
		}
	} else if cls, ok := object.ClassFromValue(target); ok {
		if _, ok := cls.ClassScope.Objects[n.Name]; ok {
			n.writePIC.Insert(classID, layoutVersion, fieldHandler{kind: fhClassScope, key: n.Name})
			return writeRecord(rec, newValue)
		}
	}
	n.writePIC.Insert(classID, layoutVersion, fieldHandler{kind: fhGeneric})
	return writeRecord(rec, newValue)
}

func (n *FieldRef) isLValue() {}

func (n *FieldRef) ForEachVariable(f func(name string)) { n.Target.ForEachVariable(f) }
func (n *FieldRef) ForEachVariableWithPos(f func(name string, pos corerr.Position)) {
	n.Target.ForEachVariableWithPos(f)
}

var _ VariableRef = (*FieldRef)(nil)
