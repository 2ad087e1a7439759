package object

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// classIDCounter mints stable 64-bit classIds. Grounded in the teacher's
// sync/atomic counter idiom (values/value.go's WaitGroup.counter, old
// package) — an atomic avoids a mutex for what is otherwise a single
// increment-and-read.
var classIDCounter int64

func nextClassID() int64 {
	return atomic.AddInt64(&classIDCounter, 1)
}

// ClassScope holds a class's static/companion members (the "classScope" of
// spec §3), separate from its instance member table.
type ClassScope struct {
	Objects       map[string]*Record
	layoutVersion int64
}

func newClassScope() *ClassScope {
	return &ClassScope{Objects: make(map[string]*Record)}
}

func (cs *ClassScope) bumpVersion() {
	atomic.AddInt64(&cs.layoutVersion, 1)
}

func (cs *ClassScope) LayoutVersion() int64 {
	return atomic.LoadInt64(&cs.layoutVersion)
}

// Class is the runtime class descriptor: parents, linearization, member
// table, and slot maps. Grounded in compiler/registry/class.go's
// ClassDescriptor, generalized from a single Parent string to Parents
// []*Class with a C3 linearization (true multiple inheritance).
type Class struct {
	mu sync.RWMutex

	id         int64
	Name       string
	Parents    []*Class
	IsAbstract bool
	IsFinal    bool

	// Members holds only what THIS class directly declares, keyed by
	// mangled name for private members and by plain surface name otherwise
	// (see mangle). Instance resolution walks each ancestor's own Members.
	Members map[string]*Record

	// PublicResolution maps a surface name to the key a public reader should
	// land on (spec §4.2's "public-member resolution map").
	PublicResolution map[string]string

	// FieldSlots gives each instance's field-slot index for a member key,
	// computed by AllocateSlots. MethodSlots is not populated: instances
	// have no method slot array, and methods resolve through Members.
	FieldSlots  map[string]int
	MethodSlots int

	ClassScope *ClassScope

	linearization []*Class // computed once by Finalize
	layoutVersion int64
	numFieldSlots int
}

// Obj is the terminal root of every linearization.
var Obj = &Class{
	id:               nextClassID(),
	Name:             "Obj",
	Members:          make(map[string]*Record),
	PublicResolution: make(map[string]string),
	FieldSlots:       make(map[string]int),
	ClassScope:       newClassScope(),
}

func NewClass(name string, parents ...*Class) *Class {
	c := &Class{
		id:               nextClassID(),
		Name:             name,
		Parents:          parents,
		Members:          make(map[string]*Record),
		PublicResolution: make(map[string]string),
		FieldSlots:       make(map[string]int),
		ClassScope:       newClassScope(),
	}
	return c
}

func (c *Class) ID() int64 { return c.id }

func (c *Class) LayoutVersion() int64 {
	return atomic.LoadInt64(&c.layoutVersion)
}

func (c *Class) bumpLayout() {
	atomic.AddInt64(&c.layoutVersion, 1)
}

// mangle returns the storage key for a non-public member: private members
// are prefixed with their declaring class's name so that private members
// sharing a surface name across the hierarchy coexist (spec §4.2). Public
// and protected members participate in ordinary overriding and are stored
// under their plain surface name.
func mangle(declaringClass *Class, name string) string {
	return fmt.Sprintf("%s$$%s", declaringClass.Name, name)
}

// AddMember registers a member declared directly by this class and bumps
// layoutVersion, invalidating every PIC keyed on this class's shape.
func (c *Class) AddMember(name string, vis Visibility, rec *Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec.Name = name
	rec.Visibility = vis
	rec.DeclaringClass = c

	key := name
	if vis == Private {
		key = mangle(c, name)
	}
	c.Members[key] = rec
	if vis == Public {
		c.PublicResolution[name] = key
	}
	c.bumpLayout()
}

// ownRecord returns this class's own record stored under the plain surface
// name (public and protected members); private members are found through
// privateRecord, see ResolveMember.
func (c *Class) ownRecord(name string) (*Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.Members[name]
	return rec, ok
}

func (c *Class) privateRecord(name string) (*Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.Members[mangle(c, name)]
	return rec, ok
}

// Linearization returns the C3-computed MRO, computing it lazily on first
// use and caching it. Classes are immutable in shape once Finalize has run
// (layoutVersion changes track member-table mutations, not ancestor
// changes — ancestors are fixed at construction).
func (c *Class) Linearization() []*Class {
	c.mu.RLock()
	if c.linearization != nil {
		defer c.mu.RUnlock()
		return c.linearization
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.linearization == nil {
		lin, err := c3Linearize(c)
		if err != nil {
			// An inconsistent hierarchy degrades to depth-first order
			// rather than panicking; callers that care can re-validate via
			// Finalize's error return.
			lin = depthFirstFallback(c)
		}
		c.linearization = lin
	}
	return c.linearization
}

// Finalize computes and validates the linearization eagerly, surfacing a C3
// merge failure (inconsistent hierarchy) as an error instead of silently
// falling back. Call this from the class-construction API once all parents
// are known.
func (c *Class) Finalize() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	lin, err := c3Linearize(c)
	if err != nil {
		return err
	}
	c.linearization = lin
	return nil
}

// c3Linearize implements the C3 merge: L[C] = C + merge(L[P1],...,L[Pn],
// [P1,...,Pn]).
func c3Linearize(c *Class) ([]*Class, error) {
	if c == Obj {
		return []*Class{Obj}, nil
	}
	parents := c.Parents
	if len(parents) == 0 {
		parents = []*Class{Obj}
	}

	sequences := make([][]*Class, 0, len(parents)+1)
	for _, p := range parents {
		sequences = append(sequences, append([]*Class{}, p.Linearization()...))
	}
	sequences = append(sequences, append([]*Class{}, parents...))

	result := []*Class{c}
	for {
		sequences = dropEmpty(sequences)
		if len(sequences) == 0 {
			break
		}
		var head *Class
		for _, seq := range sequences {
			candidate := seq[0]
			if !appearsInTail(candidate, sequences) {
				head = candidate
				break
			}
		}
		if head == nil {
			return nil, fmt.Errorf("IllegalState: inconsistent linearization for class %q", c.Name)
		}
		result = append(result, head)
		for i, seq := range sequences {
			if len(seq) > 0 && seq[0] == head {
				sequences[i] = seq[1:]
			}
		}
	}
	return result, nil
}

func dropEmpty(seqs [][]*Class) [][]*Class {
	out := seqs[:0]
	for _, s := range seqs {
		if len(s) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func appearsInTail(k *Class, seqs [][]*Class) bool {
	for _, seq := range seqs {
		for i := 1; i < len(seq); i++ {
			if seq[i] == k {
				return true
			}
		}
	}
	return false
}

func depthFirstFallback(c *Class) []*Class {
	seen := make(map[*Class]bool)
	var order []*Class
	var visit func(k *Class)
	visit = func(k *Class) {
		if seen[k] {
			return
		}
		seen[k] = true
		order = append(order, k)
		for _, p := range k.Parents {
			visit(p)
		}
	}
	visit(c)
	if !seen[Obj] {
		order = append(order, Obj)
	}
	return order
}

// AllocateSlots assigns field slot indices for every field-kind member
// across the linearization, root-first, so that an override of a
// public/protected field reuses its ancestor's slot (vtable-style layout)
// while private fields (mangled keys) always get a fresh slot. Call once
// after all classes in a hierarchy have their members declared.
func (c *Class) AllocateSlots() {
	c.mu.Lock()
	defer c.mu.Unlock()

	lin := c.linearization
	if lin == nil {
		lin = depthFirstFallback(c)
	}
	c.FieldSlots = make(map[string]int)
	next := 0
	// Root-first so ancestor slots are assigned before descendants'.
	for i := len(lin) - 1; i >= 0; i-- {
		k := lin[i]
		if k == Obj {
			continue
		}
		for key, rec := range k.Members {
			if rec.Kind != KindField && rec.Kind != KindConstructorField {
				continue
			}
			if _, exists := c.FieldSlots[key]; exists {
				continue
			}
			c.FieldSlots[key] = next
			next++
		}
	}
	c.numFieldSlots = next
}

func (c *Class) NumFieldSlots() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.numFieldSlots
}

// IsInstanceOf reports whether c is target or a descendant of target,
// backing CastRef/BinaryOpRef's Is/NotIs.
func (c *Class) IsInstanceOf(target *Class) bool {
	if c == target {
		return true
	}
	for _, k := range c.Linearization() {
		if k == target {
			return true
		}
	}
	return false
}
