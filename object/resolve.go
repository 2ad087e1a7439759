package object

import "github.com/avery-lang/corelang/corerr"

// ExtensionLookup is consulted at step 3 of member resolution (spec §4.2):
// an extension method registered against a receiver type or any of its
// ancestors. Scopes implement this to expose scope-chain-registered
// extensions without object/ depending on rtscope (which depends on
// object), avoiding an import cycle.
type ExtensionLookup interface {
	LookupExtension(receiverClass *Class, name string) (*Record, bool)
}

// ResolveMember implements spec §4.2's five-step resolution order on an
// instance of class `instanceClass` for name `n`, called from class `caller`
// (nil if the call site has no enclosing class context).
func ResolveMember(instanceClass *Class, name string, caller *Class, ext ExtensionLookup, pos corerr.Position) (*Record, *Class, error) {
	// Step 1: a private member the caller itself declares always wins.
	if caller != nil {
		if rec, ok := caller.privateRecord(name); ok {
			return rec, caller, nil
		}
	}

	// Step 2: walk the linearization front-to-back, skipping Obj.
	for _, k := range instanceClass.Linearization() {
		if k == Obj {
			continue
		}
		if rec, ok := k.ownRecord(name); ok {
			if !rec.IsAbstract && CanAccess(rec.Visibility, k, caller) {
				return rec, k, nil
			}
		}
		if k.ClassScope != nil {
			if rec, ok := k.ClassScope.Objects[name]; ok {
				if !rec.IsAbstract && CanAccess(rec.Visibility, k, caller) {
					return rec, k, nil
				}
			}
		}
	}

	// Step 3: extension lookup on the current scope chain.
	if ext != nil {
		if rec, ok := ext.LookupExtension(instanceClass, name); ok {
			return rec, rec.DeclaringClass, nil
		}
	}

	// Step 4: root Obj is the final fallback (may be shadowed by
	// extensions, which is why step 3 runs first).
	if rec, ok := Obj.ownRecord(name); ok {
		return rec, Obj, nil
	}

	// Step 5.
	return nil, nil, corerr.New(corerr.SymbolNotFound, pos, "no member %q on %s", name, instanceClass.Name)
}
