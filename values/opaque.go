package values

import (
	"container/list"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Buffer is a host-opaque byte blob. It carries an identity (ID) distinct
// from its contents so two buffers with identical bytes are not confused by
// reference-identity-sensitive code (RefEq, cache shape keys); grounded in
// the teacher's resource-handle pattern (compiler/values TypeResource),
// generalized with a real identity instead of a bare interface{} handle.
type Buffer struct {
	ID   uuid.UUID
	Data []byte
}

func NewBuffer(data []byte) *Value {
	return &Value{Type: TBuffer, Data: &Buffer{ID: uuid.New(), Data: data}}
}

// Regex wraps a compiled host regular expression. REGEX_CACHE (see
// corelang.PerfFlags) memoizes these by source pattern.
type Regex struct {
	Source   string
	Compiled *regexp.Regexp
}

const (
	regexCacheMaxSize = 512
	regexCacheTTL     = 5 * time.Minute
)

// regexCacheEntry pairs a compiled pattern with the bookkeeping the LRU
// eviction and TTL expiry need.
type regexCacheEntry struct {
	source     string
	compiled   *regexp.Regexp
	compiledAt time.Time
}

// regexCache is a move-to-front LRU with TTL expiry, keyed by source
// pattern, so two regex literals with the same source share one compile.
type regexCache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List

	hits, misses int64
}

var globalRegexCache = &regexCache{
	entries: make(map[string]*list.Element),
	order:   list.New(),
}

func (c *regexCache) get(source string) (*regexp.Regexp, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[source]
	if !ok {
		c.misses++
		return nil, false
	}
	entry := el.Value.(*regexCacheEntry)
	if time.Since(entry.compiledAt) > regexCacheTTL {
		c.order.Remove(el)
		delete(c.entries, source)
		c.misses++
		return nil, false
	}
	c.order.MoveToFront(el)
	c.hits++
	return entry.compiled, true
}

func (c *regexCache) put(source string, compiled *regexp.Regexp) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[source]; ok {
		el.Value.(*regexCacheEntry).compiled = compiled
		el.Value.(*regexCacheEntry).compiledAt = time.Now()
		c.order.MoveToFront(el)
		return
	}
	el := c.order.PushFront(&regexCacheEntry{source: source, compiled: compiled, compiledAt: time.Now()})
	c.entries[source] = el
	for c.order.Len() > regexCacheMaxSize {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*regexCacheEntry).source)
	}
}

func (c *regexCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.order = list.New()
	c.hits, c.misses = 0, 0
}

// RegexCacheStats reports cache occupancy and hit/miss counts, mirroring
// the introspection a REGEX_CACHE consumer (spec §6/§7) would want.
func RegexCacheStats() (size int, hits, misses int64) {
	globalRegexCache.mu.Lock()
	defer globalRegexCache.mu.Unlock()
	return globalRegexCache.order.Len(), globalRegexCache.hits, globalRegexCache.misses
}

// ClearRegexCache drops every memoized pattern; used by tests and by a host
// embedding this runtime for long-lived processes that want to bound memory.
func ClearRegexCache() {
	globalRegexCache.clear()
}

// NewRegex compiles source, consulting the process-wide cache by source
// pattern first so repeated literals of the same pattern share one
// *regexp.Regexp. Callers that must bypass the cache (REGEX_CACHE off) use
// NewRegexUncached instead.
func NewRegex(source string) (*Value, error) {
	if compiled, ok := globalRegexCache.get(source); ok {
		return &Value{Type: TRegex, Data: &Regex{Source: source, Compiled: compiled}}, nil
	}
	re, err := regexp.Compile(source)
	if err != nil {
		return nil, err
	}
	globalRegexCache.put(source, re)
	return &Value{Type: TRegex, Data: &Regex{Source: source, Compiled: re}}, nil
}

// NewRegexUncached recompiles source every call, bypassing the cache
// entirely; used when REGEX_CACHE is disabled.
func NewRegexUncached(source string) (*Value, error) {
	re, err := regexp.Compile(source)
	if err != nil {
		return nil, err
	}
	return &Value{Type: TRegex, Data: &Regex{Source: source, Compiled: re}}, nil
}

// GoIterator adapts a host Go iterator (anything that can produce a
// next-or-done sequence) into a Value, the way the teacher's
// runtime/iterator.go bridges PHP's Iterator interface into Go's range
// protocol — mined for the adapter shape, not copied (runtime/ was deleted
// wholesale as out-of-scope stdlib).
type GoIterator struct {
	Next func() (v *Value, ok bool)
	// Close is called once when the consumer stops iterating early (mirrors
	// spec §5's cancelIteration best-effort release).
	Close func()
}

func NewGoIterator(next func() (*Value, bool), close func()) *Value {
	return &Value{Type: TGoIterator, Data: &GoIterator{Next: next, Close: close}}
}

// Property is the getter/setter pair stored in a Property-kind Record.
// Properties never get an implicit backing field — see spec §4.2/§9.
type Property struct {
	Getter func() (*Value, error)
	Setter func(*Value) error
}

func NewProperty(get func() (*Value, error), set func(*Value) error) *Value {
	return &Value{Type: TProperty, Data: &Property{Getter: get, Setter: set}}
}
