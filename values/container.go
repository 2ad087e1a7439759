package values

import "strings"

// List is an ordered sequence of Value, backing both ListLiteralRef and
// IndexRef's List fast path.
type List struct {
	Items []*Value
}

func NewList(items ...*Value) *Value {
	return &Value{Type: TList, Data: &List{Items: items}}
}

func (l *List) Get(i int64) (*Value, bool) {
	if i < 0 || i >= int64(len(l.Items)) {
		return nil, false
	}
	return l.Items[i], true
}

func (l *List) Set(i int64, v *Value) bool {
	if i < 0 || i >= int64(len(l.Items)) {
		return false
	}
	l.Items[i] = v
	return true
}

func (l *List) Append(v *Value) { l.Items = append(l.Items, v) }
func (l *List) Len() int        { return len(l.Items) }

func (l *List) Contains(v *Value) bool {
	for _, item := range l.Items {
		if item.Eq(v) {
			return true
		}
	}
	return false
}

func (l *List) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, item := range l.Items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(item.ToDisplayString())
	}
	b.WriteByte(']')
	return b.String()
}

// Map is an insertion-ordered mapping from Value to Value, following the
// teacher's Array{Elements, NextIndex}-style bookkeeping but restricted to
// the Map role only (List/Set take the other two roles Array conflated).
type Map struct {
	keys   []*Value
	values map[interface{}]*Value
	index  map[interface{}]int // key identity -> position in keys, for Delete/insertion order
}

func mapKey(k *Value) interface{} {
	switch k.Type {
	case TInt:
		return k.AsInt()
	case TString:
		return k.AsString()
	case TBool:
		return k.AsBool()
	case TChar:
		return k.AsChar()
	default:
		return k
	}
}

func NewMap() *Value {
	return &Value{Type: TMap, Data: &Map{
		values: make(map[interface{}]*Value),
		index:  make(map[interface{}]int),
	}}
}

func (m *Map) Get(k *Value) (*Value, bool) {
	v, ok := m.values[mapKey(k)]
	return v, ok
}

func (m *Map) Set(k, v *Value) {
	mk := mapKey(k)
	if _, exists := m.values[mk]; !exists {
		m.index[mk] = len(m.keys)
		m.keys = append(m.keys, k)
	}
	m.values[mk] = v
}

func (m *Map) Delete(k *Value) {
	mk := mapKey(k)
	if pos, exists := m.index[mk]; exists {
		m.keys = append(m.keys[:pos], m.keys[pos+1:]...)
		delete(m.values, mk)
		delete(m.index, mk)
		for i := pos; i < len(m.keys); i++ {
			m.index[mapKey(m.keys[i])] = i
		}
	}
}

func (m *Map) Len() int { return len(m.keys) }

func (m *Map) Keys() []*Value { return m.keys }

func (m *Map) Each(f func(k, v *Value)) {
	for _, k := range m.keys {
		f(k, m.values[mapKey(k)])
	}
}

func (m *Map) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k.ToDisplayString())
		b.WriteString(": ")
		b.WriteString(m.values[mapKey(k)].ToDisplayString())
	}
	b.WriteByte('}')
	return b.String()
}

// Set is a Map restricted to membership testing — its values are all Void.
type Set struct {
	backing *Map
}

func NewSet() *Value {
	return &Value{Type: TSet, Data: &Set{backing: &Map{
		values: make(map[interface{}]*Value),
		index:  make(map[interface{}]int),
	}}}
}

func (s *Set) Add(v *Value)      { s.backing.Set(v, Void) }
func (s *Set) Remove(v *Value)   { s.backing.Delete(v) }
func (s *Set) Contains(v *Value) bool {
	_, ok := s.backing.Get(v)
	return ok
}
func (s *Set) Len() int          { return s.backing.Len() }
func (s *Set) Items() []*Value   { return s.backing.Keys() }

func (s *Set) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, v := range s.Items() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(v.ToDisplayString())
	}
	b.WriteByte('}')
	return b.String()
}

// Range is a start/end pair with optional open endpoints (nil = open) and an
// end-inclusive flag.
type Range struct {
	Start, End   *Value
	EndInclusive bool
}

func NewRange(start, end *Value, endInclusive bool) *Value {
	return &Value{Type: TRange, Data: &Range{Start: start, End: end, EndInclusive: endInclusive}}
}

// Contains implements the In/NotIn membership check for Range over Int.
func (r *Range) Contains(v *Value) bool {
	if v.Type != TInt {
		return false
	}
	n := v.AsInt()
	if r.Start != nil && n < r.Start.AsInt() {
		return false
	}
	if r.End != nil {
		end := r.End.AsInt()
		if r.EndInclusive {
			return n <= end
		}
		return n < end
	}
	return true
}

// MapEntry is the value produced by the `==>` operator (BinaryOpRef).
type MapEntry struct {
	Key, Val *Value
}

func NewMapEntry(k, v *Value) *Value {
	return &Value{Type: TMapEntry, Data: &MapEntry{Key: k, Val: v}}
}
