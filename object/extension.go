package object

import "sync"

// ExtensionRegistry holds extension methods registered on a scope chain,
// keyed by receiver type name, consulted at step 3 of ResolveMember.
// Grounded in the teacher's builtin-function registry pattern (a name ->
// implementation map), re-purposed from free functions to receiver-scoped
// extension methods.
type ExtensionRegistry struct {
	mu         sync.RWMutex
	byReceiver map[string]map[string]*Record
}

func NewExtensionRegistry() *ExtensionRegistry {
	return &ExtensionRegistry{byReceiver: make(map[string]map[string]*Record)}
}

// Register adds an extension method/property for the given receiver class.
func (er *ExtensionRegistry) Register(receiver *Class, name string, rec *Record) {
	er.mu.Lock()
	defer er.mu.Unlock()
	bucket, ok := er.byReceiver[receiver.Name]
	if !ok {
		bucket = make(map[string]*Record)
		er.byReceiver[receiver.Name] = bucket
	}
	rec.Name = name
	rec.DeclaringClass = receiver
	bucket[name] = rec
}

// LookupExtension implements object.ExtensionLookup: search the receiver's
// class first, then each ancestor in its linearization.
func (er *ExtensionRegistry) LookupExtension(receiverClass *Class, name string) (*Record, bool) {
	er.mu.RLock()
	defer er.mu.RUnlock()
	if bucket, ok := er.byReceiver[receiverClass.Name]; ok {
		if rec, ok := bucket[name]; ok {
			return rec, true
		}
	}
	for _, k := range receiverClass.Linearization() {
		if k == receiverClass {
			continue
		}
		if bucket, ok := er.byReceiver[k.Name]; ok {
			if rec, ok := bucket[name]; ok {
				return rec, true
			}
		}
	}
	return nil, false
}
