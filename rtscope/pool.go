package rtscope

import (
	"sync"
	"sync/atomic"

	"github.com/avery-lang/corelang/corerr"
)

// frameIDCounter mints the monotonically increasing frameId every frame
// carries, pooled or not. Grounded in compiler/vm/performance.go's
// MemoryPool counters, which track pool hit/miss/reuse the same way.
var frameIDCounter int64

func nextFrameID() int64 {
	return atomic.AddInt64(&frameIDCounter, 1)
}

// FramePool hands out pooled Frames for call-site scope construction.
// Grounded in compiler/vm/performance.go's MemoryPool.framePool
// (sync.Pool-backed CallFrame reuse); the frameId bump on every Acquire is
// new — it is what lets a cached (frameId, slotIndex) pair in a PIC or a
// local-variable-resolution node detect that the frame underneath it was
// recycled for an unrelated call.
type FramePool struct {
	pool    sync.Pool
	gets    int64
	puts    int64
	creates int64
}

func NewFramePool() *FramePool {
	fp := &FramePool{}
	fp.pool.New = func() interface{} {
		atomic.AddInt64(&fp.creates, 1)
		return newFrame()
	}
	return fp
}

// Acquire returns a frame ready for use as a child of parent, with a fresh
// frameId distinguishing it from whatever call last used this backing
// struct.
func (fp *FramePool) Acquire(parent *Frame) *Frame {
	atomic.AddInt64(&fp.gets, 1)
	f := fp.pool.Get().(*Frame)
	f.parent = parent
	f.id = nextFrameID()
	f.thisObj = nil
	f.args = nil
	f.currentClassCtx = nil
	f.pos = corerr.Position{}
	f.extensions = nil
	f.pooled = true
	if len(f.slots) > 0 {
		f.slots = f.slots[:0]
	}
	for k := range f.slotIndex {
		delete(f.slotIndex, k)
	}
	for k := range f.localBindings {
		delete(f.localBindings, k)
	}
	return f
}

// Release returns a pooled frame to the pool. Non-pooled frames (built via
// NewFrame) are not accepted, since a caller may still hold long-lived
// references to them (e.g. a closure's captured enclosing scope).
func (fp *FramePool) Release(f *Frame) {
	if f == nil || !f.pooled {
		return
	}
	atomic.AddInt64(&fp.puts, 1)
	f.parent = nil
	fp.pool.Put(f)
}

// Stats exposes raw pool counters for corelang.Stats to fold in.
func (fp *FramePool) Stats() (gets, puts, creates int64) {
	return atomic.LoadInt64(&fp.gets), atomic.LoadInt64(&fp.puts), atomic.LoadInt64(&fp.creates)
}
