package object

import (
	"github.com/avery-lang/corelang/values"
)

// Instance holds a class pointer, a field slot array (there is no per-instance
// method slot array; methods resolve through the class member tables), and an
// instanceScope reference (opaque here — rtscope owns Scope; Instance keeps
// only a closure-shaped hook so object/ need not import rtscope, avoiding a
// cycle since rtscope imports object for Class/Record).
type Instance struct {
	Class      *Class
	FieldSlots []*Record
	// InstanceScope is set by rtscope when the instance is constructed; it
	// is stored as interface{} here purely to break the import cycle — eval
	// type-asserts it back to *rtscope.Scope.
	InstanceScope interface{}
}

// NewInstance allocates an instance with field slots sized and pre-filled
// from cls.FieldSlots (which must already be populated via AllocateSlots).
func NewInstance(cls *Class) *Instance {
	inst := &Instance{
		Class:      cls,
		FieldSlots: make([]*Record, cls.NumFieldSlots()),
	}
	for _, k := range cls.Linearization() {
		if k == Obj {
			continue
		}
		for key, rec := range k.Members {
			if rec.Kind != KindField && rec.Kind != KindConstructorField {
				continue
			}
			slot, ok := cls.FieldSlots[key]
			if !ok {
				continue
			}
			if inst.FieldSlots[slot] == nil {
				clone := *rec
				clone.Receiver = inst
				inst.FieldSlots[slot] = &clone
			}
		}
	}
	return inst
}

// NewInstanceValue wraps an Instance as a Value without values/ importing
// object/ (Value.Data is interface{}; TInstance values carry *Instance).
func NewInstanceValue(inst *Instance) *values.Value {
	return &values.Value{Type: values.TInstance, Data: inst}
}

func InstanceFromValue(v *values.Value) (*Instance, bool) {
	if v.Type != values.TInstance {
		return nil, false
	}
	inst, ok := v.Data.(*Instance)
	return inst, ok
}

func NewClassValue(c *Class) *values.Value {
	return &values.Value{Type: values.TClass, Data: c}
}

func ClassFromValue(v *values.Value) (*Class, bool) {
	if v.Type != values.TClass {
		return nil, false
	}
	c, ok := v.Data.(*Class)
	return c, ok
}

// QualifiedView is the transient (instance, ancestorClass) wrapper created
// by `x as T` and `this@T` (spec §4.1). Member resolution through a view
// starts the linearization search at Ancestor instead of Instance's dynamic
// class.
type QualifiedView struct {
	Instance *Instance
	Ancestor *Class
}

func NewQualifiedViewValue(inst *Instance, ancestor *Class) *values.Value {
	return &values.Value{Type: values.TQualifiedView, Data: &QualifiedView{Instance: inst, Ancestor: ancestor}}
}

func QualifiedViewFromValue(v *values.Value) (*QualifiedView, bool) {
	if v.Type != values.TQualifiedView {
		return nil, false
	}
	qv, ok := v.Data.(*QualifiedView)
	return qv, ok
}

// Unwrap strips a QualifiedView down to its underlying Instance and the
// class resolution should start from: the Ancestor if v is a view, or the
// instance's own dynamic class otherwise.
func Unwrap(v *values.Value) (inst *Instance, startClass *Class, ok bool) {
	if qv, isView := QualifiedViewFromValue(v); isView {
		return qv.Instance, qv.Ancestor, true
	}
	if inst, isInst := InstanceFromValue(v); isInst {
		return inst, inst.Class, true
	}
	return nil, nil, false
}
