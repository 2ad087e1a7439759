package eval

import (
	"context"

	"github.com/avery-lang/corelang/corerr"
	"github.com/avery-lang/corelang/object"
	"github.com/avery-lang/corelang/rtscope"
	"github.com/avery-lang/corelang/values"
)

// LocalVarRef is the general case (spec §4.4 variant 1): look up Name in
// the current frame's slot map, then fall through the parent chain via
// scope[name], finally trying this.name as a field. A "no such field"
// failure from that this-fallback is re-tagged as SymbolNotFound (spec §7)
// to preserve caller expectations. Caches (frameId, slotIndex).
type LocalVarRef struct {
	Name string

	cachedFrameID int64
	cachedSlot    int
	cacheValid    bool
}

func NewLocalVarRef(name string) *LocalVarRef { return &LocalVarRef{Name: name} }

func (n *LocalVarRef) Get(ctx context.Context, scope *rtscope.Scope) (*object.Record, error) {
	pf := PerfFlagsFrom(ctx)
	st := StatsFrom(ctx)

	if pf.LocalSlotPIC && n.cacheValid && scope.ID() == n.cachedFrameID {
		if rec := scope.SlotAt(n.cachedSlot); rec != nil {
			if pf.PICDebugCounters {
				st.AddLocalVarPicHit()
			}
			return rec, nil
		}
	}
	if pf.LocalSlotPIC && pf.PICDebugCounters {
		st.AddLocalVarPicMiss()
	}

	if idx, ok := scope.GetSlotIndexOf(n.Name); ok {
		rec := scope.SlotAt(idx)
		n.cachedFrameID = scope.ID()
		n.cachedSlot = idx
		n.cacheValid = true
		return rec, nil
	}
	if rec, ok := scope.Lookup(n.Name); ok {
		n.cacheValid = false
		return rec, nil
	}
	if this := currentThis(scope); this != nil {
		rec, _, err := object.ResolveMember(this.Class, n.Name, scope.CurrentClass(), scopeExtensions(scope), scope.Pos())
		if err == nil {
			n.cacheValid = false
			return rec, nil
		}
	}
	return nil, corerr.New(corerr.SymbolNotFound, scope.Pos(), "undefined symbol %q", n.Name)
}

func (n *LocalVarRef) EvalValue(ctx context.Context, scope *rtscope.Scope) (*values.Value, error) {
	return defaultEvalValue(ctx, n, scope)
}

func (n *LocalVarRef) SetAt(ctx context.Context, scope *rtscope.Scope, newValue *values.Value) error {
	rec, err := n.Get(ctx, scope)
	if err != nil {
		return err
	}
	return writeRecord(rec, newValue)
}

func (n *LocalVarRef) isLValue() {}
func (n *LocalVarRef) ForEachVariable(f func(name string)) { f(n.Name) }
func (n *LocalVarRef) ForEachVariableWithPos(f func(name string, pos corerr.Position)) {
	f(n.Name, corerr.Position{})
}

var _ VariableRef = (*LocalVarRef)(nil)

// FastLocalVarRef (variant 2): the compiler already knows Name is a
// local/closure binding. Walks the ancestor chain for the declaring frame,
// caches (ownerScope, frameId, slotIndex), and validates on every access
// that the cached owner is still an ancestor of the current scope and still
// carries the expected frameId — the ancestor walk carries the §4.3 cycle
// guard via Frame.AncestorDepth/Lookup.
type FastLocalVarRef struct {
	Name string

	ownerFrame *rtscope.Frame
	frameID    int64
	slot       int
	valid      bool
}

func NewFastLocalVarRef(name string) *FastLocalVarRef { return &FastLocalVarRef{Name: name} }

func (n *FastLocalVarRef) resolve(scope *rtscope.Scope) (*rtscope.Frame, int, bool) {
	if n.valid && n.ownerFrame != nil && n.ownerFrame.ID() == n.frameID {
		if scope.Frame.AncestorDepth(n.ownerFrame) >= 0 {
			return n.ownerFrame, n.slot, true
		}
	}
	cur := scope.Frame
	for i := 0; i < 4096 && cur != nil; i++ {
		if idx, ok := cur.GetSlotIndexOf(n.Name); ok {
			n.ownerFrame = cur
			n.frameID = cur.ID()
			n.slot = idx
			n.valid = true
			return cur, idx, true
		}
		if cur.Parent() == cur {
			break
		}
		cur = cur.Parent()
	}
	n.valid = false
	return nil, 0, false
}

func (n *FastLocalVarRef) Get(ctx context.Context, scope *rtscope.Scope) (*object.Record, error) {
	pf := PerfFlagsFrom(ctx)
	st := StatsFrom(ctx)
	f, idx, ok := n.resolve(scope)
	if !ok {
		if pf.PICDebugCounters {
			st.AddFastLocalMiss()
		}
		return nil, corerr.New(corerr.SymbolNotFound, scope.Pos(), "undefined local %q", n.Name)
	}
	if pf.PICDebugCounters {
		st.AddFastLocalHit()
	}
	return f.SlotAt(idx), nil
}

func (n *FastLocalVarRef) EvalValue(ctx context.Context, scope *rtscope.Scope) (*values.Value, error) {
	return defaultEvalValue(ctx, n, scope)
}

func (n *FastLocalVarRef) SetAt(ctx context.Context, scope *rtscope.Scope, newValue *values.Value) error {
	rec, err := n.Get(ctx, scope)
	if err != nil {
		return err
	}
	return writeRecord(rec, newValue)
}

func (n *FastLocalVarRef) isLValue() {}
func (n *FastLocalVarRef) ForEachVariable(f func(name string)) { f(n.Name) }
func (n *FastLocalVarRef) ForEachVariableWithPos(f func(name string, pos corerr.Position)) {
	f(n.Name, corerr.Position{})
}

var _ VariableRef = (*FastLocalVarRef)(nil)

// BoundLocalVarRef (variant 3): the slot is already known at compile time —
// direct indexed access into the current frame.
type BoundLocalVarRef struct {
	SlotIndex int
}

func NewBoundLocalVarRef(slot int) *BoundLocalVarRef { return &BoundLocalVarRef{SlotIndex: slot} }

func (n *BoundLocalVarRef) Get(ctx context.Context, scope *rtscope.Scope) (*object.Record, error) {
	rec := scope.SlotAt(n.SlotIndex)
	if rec == nil {
		return nil, corerr.New(corerr.SymbolNotFound, scope.Pos(), "slot %d not bound", n.SlotIndex)
	}
	return rec, nil
}

func (n *BoundLocalVarRef) EvalValue(ctx context.Context, scope *rtscope.Scope) (*values.Value, error) {
	return defaultEvalValue(ctx, n, scope)
}

func (n *BoundLocalVarRef) SetAt(ctx context.Context, scope *rtscope.Scope, newValue *values.Value) error {
	rec, err := n.Get(ctx, scope)
	if err != nil {
		return err
	}
	return writeRecord(rec, newValue)
}

func (n *BoundLocalVarRef) isLValue() {}
func (n *BoundLocalVarRef) ForEachVariable(f func(name string))                               {}
func (n *BoundLocalVarRef) ForEachVariableWithPos(f func(name string, pos corerr.Position)) {}

var _ VariableRef = (*BoundLocalVarRef)(nil)

// LocalSlotRef (variant 4): compile-known slot index AND depth up the
// ancestor chain — direct, no name lookup at all.
type LocalSlotRef struct {
	Name      string
	SlotIndex int
	Depth     int
}

func NewLocalSlotRef(name string, slot, depth int) *LocalSlotRef {
	return &LocalSlotRef{Name: name, SlotIndex: slot, Depth: depth}
}

func (n *LocalSlotRef) Get(ctx context.Context, scope *rtscope.Scope) (*object.Record, error) {
	f, ok := scope.Frame.AtDepth(n.Depth)
	if !ok {
		return nil, corerr.New(corerr.SymbolNotFound, scope.Pos(), "no frame at depth %d for %q", n.Depth, n.Name)
	}
	rec := f.SlotAt(n.SlotIndex)
	if rec == nil {
		return nil, corerr.New(corerr.SymbolNotFound, scope.Pos(), "slot %d not bound at depth %d", n.SlotIndex, n.Depth)
	}
	return rec, nil
}

func (n *LocalSlotRef) EvalValue(ctx context.Context, scope *rtscope.Scope) (*values.Value, error) {
	return defaultEvalValue(ctx, n, scope)
}

func (n *LocalSlotRef) SetAt(ctx context.Context, scope *rtscope.Scope, newValue *values.Value) error {
	rec, err := n.Get(ctx, scope)
	if err != nil {
		return err
	}
	return writeRecord(rec, newValue)
}

func (n *LocalSlotRef) isLValue() {}
func (n *LocalSlotRef) ForEachVariable(f func(name string)) { f(n.Name) }
func (n *LocalSlotRef) ForEachVariableWithPos(f func(name string, pos corerr.Position)) {
	f(n.Name, corerr.Position{})
}

var _ VariableRef = (*LocalSlotRef)(nil)
