package object

import "github.com/avery-lang/corelang/values"

// ClassBuilder is the class-construction API an external compiler uses to
// build a Class: add members, set parents, finalize the linearization and
// slot layout. Grounded in compiler/registry/builder.go's fluent
// ClassBuilder/MethodBuilder pair, field names adjusted to this package's
// Class/Record shape.
type ClassBuilder struct {
	class *Class
}

func NewClassBuilder(name string, parents ...*Class) *ClassBuilder {
	return &ClassBuilder{class: NewClass(name, parents...)}
}

func (b *ClassBuilder) Abstract() *ClassBuilder {
	b.class.IsAbstract = true
	return b
}

func (b *ClassBuilder) Final() *ClassBuilder {
	b.class.IsFinal = true
	return b
}

func (b *ClassBuilder) AddField(name string, vis Visibility, mutable bool, defaultValue *values.Value) *ClassBuilder {
	b.class.AddMember(name, vis, &Record{
		Value:     defaultValue,
		IsMutable: mutable,
		Kind:      KindField,
	})
	return b
}

func (b *ClassBuilder) AddConstructorField(name string, vis Visibility, mutable bool) *ClassBuilder {
	b.class.AddMember(name, vis, &Record{
		IsMutable: mutable,
		Kind:      KindConstructorField,
	})
	return b
}

func (b *ClassBuilder) AddMethod(name string, vis Visibility, fn *values.Value) *ClassBuilder {
	b.class.AddMember(name, vis, &Record{
		Value:     fn,
		IsMutable: false,
		Kind:      KindFun,
	})
	return b
}

func (b *ClassBuilder) AddAbstractMethod(name string, vis Visibility) *ClassBuilder {
	rec := &Record{Kind: KindFun, IsAbstract: true}
	b.class.AddMember(name, vis, rec)
	return b
}

func (b *ClassBuilder) AddProperty(name string, vis Visibility, get func() (*values.Value, error), set func(*values.Value) error) *ClassBuilder {
	b.class.AddMember(name, vis, &Record{
		Value:     values.NewProperty(get, set),
		IsMutable: set != nil,
		Kind:      KindProperty,
	})
	return b
}

func (b *ClassBuilder) AddDelegated(name string, vis Visibility, mutable bool, delegate Delegate) *ClassBuilder {
	b.class.AddMember(name, vis, &Record{
		Delegate:  delegate,
		IsMutable: mutable,
		Kind:      KindDelegated,
	})
	return b
}

// AddStatic adds a member to the class's static (companion) scope instead
// of the instance member table.
func (b *ClassBuilder) AddStatic(name string, vis Visibility, rec *Record) *ClassBuilder {
	rec.Name = name
	rec.Visibility = vis
	rec.DeclaringClass = b.class
	b.class.ClassScope.Objects[name] = rec
	b.class.ClassScope.bumpVersion()
	return b
}

// Finalize computes the linearization and field-slot layout. Must be called
// after every parent class involved is itself finalized.
func (b *ClassBuilder) Finalize() (*Class, error) {
	if err := b.class.Finalize(); err != nil {
		return nil, err
	}
	b.class.AllocateSlots()
	return b.class, nil
}

// Build returns the class without finalizing (for incremental construction
// across multiple builder passes, e.g. forward-declared mutually recursive
// classes).
func (b *ClassBuilder) Build() *Class {
	return b.class
}
