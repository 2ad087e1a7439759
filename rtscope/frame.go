// Package rtscope implements component C3: nested scopes ("frames") holding
// ordered slots of records, a frame pool for cheap call frames, and the
// current-class context used for visibility checks.
//
// Grounded in vm/call_stack.go's CallStackManager/CallFrame (push/pop/
// current/depth over a slice of frames), generalized from one global call
// stack to a parent-pointer chain per scope, since reference nodes need to
// walk an arbitrary enclosing-scope chain (closures), not just the active
// call stack.
package rtscope

import (
	"github.com/avery-lang/corelang/corerr"
	"github.com/avery-lang/corelang/object"
	"github.com/avery-lang/corelang/values"
)

// maxParentWalk bounds every parent-chain walk defensively, per spec §4.3:
// pooled frames in rare reentrant paths may briefly self-reference during
// rebinding, so a walk must never spin forever even if a cycle slips through.
const maxParentWalk = 4096

// Frame is one entry in the scope stack: a call frame or a nested lexical
// block. frameId changes every time a pooled frame is reused, so any
// previously cached (frameId, slotIndex) pair can detect staleness.
type Frame struct {
	id     int64
	parent *Frame

	thisObj *object.Instance
	args    []*values.Value

	slots     []*object.Record
	slotIndex map[string]int

	localBindings map[string]*object.Record

	currentClassCtx *object.Class
	pos             corerr.Position
	extensions      object.ExtensionLookup

	pooled bool
}

func newFrame() *Frame {
	return &Frame{
		slotIndex:     make(map[string]int),
		localBindings: make(map[string]*object.Record),
	}
}

// NewFrame is the scope-construction API's entry point: an external
// compiler builds a fresh, unpooled frame for top-level execution.
func NewFrame(parent *Frame) *Frame {
	f := newFrame()
	f.parent = parent
	f.id = nextFrameID()
	return f
}

func (f *Frame) ID() int64 { return f.id }
func (f *Frame) Parent() *Frame { return f.parent }

func (f *Frame) ThisObj() *object.Instance { return f.thisObj }
func (f *Frame) SetThis(inst *object.Instance) { f.thisObj = inst }

func (f *Frame) Args() []*values.Value { return f.args }
func (f *Frame) SetArgs(args []*values.Value) { f.args = args }

func (f *Frame) CurrentClass() *object.Class { return f.currentClassCtx }
func (f *Frame) SetCurrentClass(c *object.Class) { f.currentClassCtx = c }

func (f *Frame) Pos() corerr.Position { return f.pos }
func (f *Frame) SetPos(p corerr.Position) { f.pos = p }

func (f *Frame) SetExtensions(ext object.ExtensionLookup) { f.extensions = ext }

// Extensions walks the parent chain for the nearest registered extension
// registry, since it is typically installed once on a root scope and
// inherited by every descendant frame.
func (f *Frame) Extensions() object.ExtensionLookup {
	cur := f
	for i := 0; i < maxParentWalk && cur != nil; i++ {
		if cur.extensions != nil {
			return cur.extensions
		}
		if cur.parent == cur {
			break
		}
		cur = cur.parent
	}
	return nil
}

// PushSlot appends a new ordered slot and returns its index. Used by the
// scope-construction API when declaring a parameter or local variable that
// participates in the slot sequence.
func (f *Frame) PushSlot(name string, rec *object.Record) int {
	idx := len(f.slots)
	f.slots = append(f.slots, rec)
	f.slotIndex[name] = idx
	return idx
}

// DeclareLocal adds a binding that does not participate in the slot
// sequence (spec §3's localBindings map).
func (f *Frame) DeclareLocal(name string, rec *object.Record) {
	f.localBindings[name] = rec
}

// SlotCount is the second cache-validity token alongside frameId (spec §4.3).
func (f *Frame) SlotCount() int { return len(f.slots) }

// GetSlotIndexOf touches only the current frame, per spec §4.3.
func (f *Frame) GetSlotIndexOf(name string) (int, bool) {
	idx, ok := f.slotIndex[name]
	return idx, ok
}

// SlotAt returns the record at a known-valid slot index.
func (f *Frame) SlotAt(idx int) *object.Record {
	if idx < 0 || idx >= len(f.slots) {
		return nil
	}
	return f.slots[idx]
}

func (f *Frame) SetSlotAt(idx int, rec *object.Record) bool {
	if idx < 0 || idx >= len(f.slots) {
		return false
	}
	f.slots[idx] = rec
	return true
}

// Lookup climbs the parent chain (scope[name]) returning the first matching
// record: current frame's slots, then its localBindings, then the parent's,
// and so on. Detects a self-referential parent pointer and bounds the walk
// at maxParentWalk, per spec §4.3.
func (f *Frame) Lookup(name string) (*object.Record, bool) {
	cur := f
	for i := 0; i < maxParentWalk && cur != nil; i++ {
		if idx, ok := cur.slotIndex[name]; ok {
			return cur.slots[idx], true
		}
		if rec, ok := cur.localBindings[name]; ok {
			return rec, true
		}
		if cur.parent == cur {
			break
		}
		cur = cur.parent
	}
	return nil, false
}

// AncestorDepth walks up from f counting hops until it reaches target,
// returning -1 if target is not an ancestor within maxParentWalk hops. Used
// by FastLocalVarRef to validate a cached owner scope is still an ancestor.
func (f *Frame) AncestorDepth(target *Frame) int {
	cur := f
	for depth := 0; depth < maxParentWalk && cur != nil; depth++ {
		if cur == target {
			return depth
		}
		if cur.parent == cur {
			break
		}
		cur = cur.parent
	}
	return -1
}

// AtDepth walks exactly `depth` parent hops up from f (bounded by
// maxParentWalk), for LocalSlotRef's compile-known-depth fast path.
func (f *Frame) AtDepth(depth int) (*Frame, bool) {
	cur := f
	for i := 0; i < depth; i++ {
		if cur == nil || i >= maxParentWalk {
			return nil, false
		}
		if cur.parent == cur {
			return nil, false
		}
		cur = cur.parent
	}
	if cur == nil {
		return nil, false
	}
	return cur, true
}
