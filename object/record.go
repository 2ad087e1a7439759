// Package object implements the object model (component C2): classes with
// linearized multiple-inheritance ancestor order, member tables keyed by
// mangled class-qualified names, per-instance field slot arrays, and
// visibility-checked member resolution with extension-method fallback.
//
// Grounded in compiler/registry/class.go's ClassDescriptor/MethodDescriptor
// family (github.com/wudi/hey), generalized from PHP's single-parent
// inheritance to true multiple inheritance with a C3 linearization.
package object

import (
	"fmt"

	"github.com/avery-lang/corelang/values"
)

// Visibility is the access-control level of a Record.
type Visibility byte

const (
	Public Visibility = iota
	Protected
	Private
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Protected:
		return "protected"
	case Private:
		return "private"
	default:
		return "unknown"
	}
}

// RecordKind distinguishes how a Record's value should be read/written.
type RecordKind byte

const (
	KindField RecordKind = iota
	KindConstructorField
	KindFun
	KindProperty
	KindDelegated
	KindOther
)

// Delegate forwards reads/writes for a Delegated record to a host object.
type Delegate interface {
	GetValue(instance *Instance, name string) (*values.Value, error)
	SetValue(instance *Instance, name string, newValue *values.Value) error
}

// Record is the unit held in every slot — class member tables and scope
// slots alike. Records, not raw Values, are the only thing assignable.
type Record struct {
	Value           *values.Value
	IsMutable       bool
	Visibility      Visibility
	WriteVisibility *Visibility // optional; when set, must be >= Visibility
	Kind            RecordKind
	DeclaringClass  *Class
	Receiver        *Instance // set for template records bound at lookup time
	Delegate        Delegate
	IsAbstract      bool
	Name            string
}

// Read resolves the record's current value, routing Property reads through
// the getter and Delegated reads through Delegate.GetValue. Direct field
// slot access in eval bypasses Read; eval's readRecord helper (generic
// field reads, default EvalValue, inc/dec) goes through it.
func (r *Record) Read(instance *Instance) (*values.Value, error) {
	switch r.Kind {
	case KindProperty:
		if r.Value == nil || r.Value.Type != values.TProperty {
			return nil, fmt.Errorf("IllegalState: property record %q has no getter pair", r.Name)
		}
		prop := r.Value.Data.(*values.Property)
		if prop.Getter == nil {
			return nil, fmt.Errorf("IllegalAccess: property %q has no getter", r.Name)
		}
		return prop.Getter()
	case KindDelegated:
		if r.Delegate == nil {
			return nil, fmt.Errorf("IllegalState: delegated record %q has no delegate", r.Name)
		}
		return r.Delegate.GetValue(instance, r.Name)
	default:
		if r.Value == nil {
			return values.Unset, nil
		}
		return r.Value, nil
	}
}

// Write enforces mutability and routes Property/Delegated writes through
// their setter/SetValue hook, per spec §3's record invariants.
func (r *Record) Write(instance *Instance, newValue *values.Value) error {
	if !r.IsMutable && r.Kind != KindProperty && r.Kind != KindDelegated {
		return fmt.Errorf("IllegalAssignment: %q is not mutable", r.Name)
	}
	switch r.Kind {
	case KindProperty:
		if r.Value == nil || r.Value.Type != values.TProperty {
			return fmt.Errorf("IllegalState: property record %q has no setter pair", r.Name)
		}
		prop := r.Value.Data.(*values.Property)
		if prop.Setter == nil {
			return fmt.Errorf("IllegalAssignment: property %q has no setter", r.Name)
		}
		return prop.Setter(newValue)
	case KindDelegated:
		if r.Delegate == nil {
			return fmt.Errorf("IllegalState: delegated record %q has no delegate", r.Name)
		}
		return r.Delegate.SetValue(instance, r.Name, newValue)
	default:
		r.Value = newValue
		return nil
	}
}

// CanAccess implements canAccessMember(vis, declaringClass, caller, name)
// from spec §4.2.
func CanAccess(vis Visibility, declaringClass, caller *Class) bool {
	switch vis {
	case Public:
		return true
	case Protected:
		if caller == nil {
			return false
		}
		if caller == declaringClass {
			return true
		}
		for _, k := range caller.Linearization() {
			if k == declaringClass {
				return true
			}
		}
		return false
	case Private:
		return caller == declaringClass
	default:
		return false
	}
}
