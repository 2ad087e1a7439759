package rtscope

import (
	"github.com/avery-lang/corelang/object"
	"github.com/avery-lang/corelang/values"
)

// Scope is the public handle reference nodes and the class-construction API
// operate on: a Frame plus the pool it was (maybe) drawn from, so a caller
// never has to remember which pool owns which frame.
type Scope struct {
	*Frame
	pool *FramePool
}

// NewRootScope builds an unpooled top-level scope, e.g. for a script's
// module-level execution or a REPL statement.
func NewRootScope() *Scope {
	return &Scope{Frame: NewFrame(nil)}
}

// NewChild acquires a pooled child frame from the pool associated with s
// (or, if s was never given one, falls back to an unpooled frame). This is
// the scope-construction API's call-site entry point.
func (s *Scope) NewChild() *Scope {
	if s.pool == nil {
		return &Scope{Frame: NewFrame(s.Frame)}
	}
	return &Scope{Frame: s.pool.Acquire(s.Frame), pool: s.pool}
}

// Release returns a pooled child scope's frame to its pool. A no-op for
// unpooled scopes.
func (s *Scope) Release() {
	if s.pool != nil {
		s.pool.Release(s.Frame)
	}
}

// WithPool attaches a frame pool to s so that NewChild draws pooled frames.
func (s *Scope) WithPool(fp *FramePool) *Scope {
	s.pool = fp
	return s
}

// WithChildFrame acquires a child scope, runs fn, and releases the frame
// whether fn returns an error or not. This is the call-frame lifecycle a
// method/function call site should use.
func (s *Scope) WithChildFrame(fn func(*Scope) (*values.Value, error)) (*values.Value, error) {
	child := s.NewChild()
	defer child.Release()
	return fn(child)
}

// NewInstanceScope builds the scope backing an instance's own member
// resolution (spec §3: every instance owns an instanceScope used when a
// method body references bare names that resolve to its own members), and
// wires it into inst.InstanceScope. Kept as interface{} on Instance to avoid
// object/ importing rtscope/; eval type-asserts it back with
// InstanceScopeOf.
func NewInstanceScope(inst *object.Instance, parent *Scope) *Scope {
	var parentFrame *Frame
	if parent != nil {
		parentFrame = parent.Frame
	}
	s := &Scope{Frame: NewFrame(parentFrame)}
	s.SetThis(inst)
	s.SetCurrentClass(inst.Class)
	inst.InstanceScope = s
	return s
}

// InstanceScopeOf recovers the *Scope stored on an Instance by
// NewInstanceScope, or nil if none was set.
func InstanceScopeOf(inst *object.Instance) *Scope {
	s, _ := inst.InstanceScope.(*Scope)
	return s
}
