package eval

// PIC is the adaptive polymorphic inline cache shared by FieldRef, IndexRef,
// and MethodCallRef (spec §4.4): a small move-to-front table keyed by
// (classId, layoutVersion), with 2/4-entry adaptive sizing and a heuristic
// freeze-back state machine. No teacher precedent exists for this — the
// teacher re-walks resolveMethod on every call — this is built to the
// letter of spec.md §4.4's state-machine description.
type PIC[H any] struct {
	entries []picEntry[H]
	size    int

	adaptive  bool
	heuristic bool

	windowAccesses int
	windowMisses   int

	frozen            bool
	freezeWindowsLeft int
}

type picEntry[H any] struct {
	classID       int64
	layoutVersion int64
	handler       H
}

const picWindowSize = 256
const picPromoteMissRate = 0.20
const picFreezeMissRate = 0.25
const picFreezeWindows = 4

// NewPIC builds a PIC starting at initialSize (2 or 4 per FIELD_PIC_SIZE_4 /
// INDEX_PIC_SIZE_4 / METHOD_PIC_SIZE_4). adaptive enables PIC_ADAPTIVE_2_TO_4
// promotion; heuristic enables PIC_ADAPTIVE_HEURISTIC freeze-back.
func NewPIC[H any](initialSize int, adaptive, heuristic bool) *PIC[H] {
	if initialSize != 2 && initialSize != 4 {
		initialSize = 2
	}
	return &PIC[H]{size: initialSize, adaptive: adaptive, heuristic: heuristic}
}

// Lookup probes up to `size` entries in move-to-front order. classID == 0
// means "shape not stable, do not cache" (spec §4.4): Lookup always misses
// and Insert is a no-op for it.
func (p *PIC[H]) Lookup(classID, layoutVersion int64) (H, bool) {
	var zero H
	if classID == 0 {
		p.recordAccess(false)
		return zero, false
	}
	for i, e := range p.entries {
		if e.classID == classID && e.layoutVersion == layoutVersion {
			p.moveToFront(i)
			p.recordAccess(true)
			return e.handler, true
		}
	}
	p.recordAccess(false)
	return zero, false
}

func (p *PIC[H]) moveToFront(i int) {
	if i == 0 {
		return
	}
	e := p.entries[i]
	copy(p.entries[1:i+1], p.entries[0:i])
	p.entries[0] = e
}

// Insert installs a handler for (classID, layoutVersion) at the front,
// evicting the least-recently-used entry if the cache is at capacity.
// Also used to install a negative-cache handler (H carrying its own
// "this is a cached failure" marker) on a resolution error, per spec §7.
func (p *PIC[H]) Insert(classID, layoutVersion int64, h H) {
	if classID == 0 {
		return
	}
	for i, e := range p.entries {
		if e.classID == classID && e.layoutVersion == layoutVersion {
			p.entries[i].handler = h
			p.moveToFront(i)
			return
		}
	}
	entry := picEntry[H]{classID: classID, layoutVersion: layoutVersion, handler: h}
	if len(p.entries) < p.size {
		p.entries = append([]picEntry[H]{entry}, p.entries...)
		return
	}
	p.entries = append([]picEntry[H]{entry}, p.entries[:p.size-1]...)
}

// Invalidate drops every entry for classID, used when a class's
// layoutVersion bumps and old entries would otherwise linger keyed to a
// stale version (they simply never hit again, but dropping them frees the
// slots immediately for the new shape).
func (p *PIC[H]) Invalidate(classID int64) {
	kept := p.entries[:0]
	for _, e := range p.entries {
		if e.classID != classID {
			kept = append(kept, e)
		}
	}
	p.entries = kept
}

// recordAccess feeds the 256-access adaptive/heuristic window state
// machine (spec §4.4's "State machines" section).
func (p *PIC[H]) recordAccess(hit bool) {
	p.windowAccesses++
	if !hit {
		p.windowMisses++
	}
	if p.windowAccesses < picWindowSize {
		return
	}
	missRate := float64(p.windowMisses) / float64(p.windowAccesses)
	p.windowAccesses = 0
	p.windowMisses = 0

	if p.frozen {
		p.freezeWindowsLeft--
		if p.freezeWindowsLeft <= 0 {
			p.frozen = false
			p.size = 2
		}
		return
	}

	if p.size == 2 && p.adaptive && missRate > picPromoteMissRate {
		p.size = 4
		return
	}
	if p.size == 4 && p.heuristic && missRate >= picFreezeMissRate {
		p.frozen = true
		p.freezeWindowsLeft = picFreezeWindows
		p.size = 2
		// Lookup scans every stored entry, so trim to the new size now;
		// this also keeps Insert's capacity check accurate.
		if len(p.entries) > p.size {
			p.entries = p.entries[:p.size]
		}
	}
}
