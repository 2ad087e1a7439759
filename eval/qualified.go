package eval

import (
	"context"

	"github.com/avery-lang/corelang/corerr"
	"github.com/avery-lang/corelang/object"
	"github.com/avery-lang/corelang/rtscope"
	"github.com/avery-lang/corelang/values"
)

// thisReceiver resolves the instance and the class the lookup should start
// walking from: ancestor, when given (the `this@T` / qualified case), or the
// instance's own dynamic class otherwise.
func thisReceiver(scope *rtscope.Scope, ancestor *object.Class) (*object.Instance, *object.Class, error) {
	inst := currentThis(scope)
	if inst == nil {
		return nil, nil, corerr.New(corerr.NullPointer, scope.Pos(), "no enclosing this")
	}
	if ancestor != nil {
		return inst, ancestor, nil
	}
	return inst, inst.Class, nil
}

func resolveThisField(scope *rtscope.Scope, inst *object.Instance, startClass *object.Class, name string) (*object.Record, error) {
	rec, _, err := object.ResolveMember(startClass, name, scope.CurrentClass(), scopeExtensions(scope), scope.Pos())
	if err != nil {
		return nil, err
	}
	if rec.Receiver == nil {
		clone := *rec
		clone.Receiver = inst
		return &clone, nil
	}
	return rec, nil
}

// ThisFieldSlotRef (spec §4.4 qualified/this fast path 1): the compiler has
// proven the receiver is the implicit `this`. Caches a resolved field-slot
// handler the same way FieldRef does, skipping the target-evaluation step
// entirely since the receiver is always the frame's current this.
type ThisFieldSlotRef struct {
	Name string

	pic *PIC[fieldHandler]
}

func NewThisFieldSlotRef(name string) *ThisFieldSlotRef { return &ThisFieldSlotRef{Name: name} }

func (n *ThisFieldSlotRef) ensurePIC(pf PerfFlags) {
	if n.pic == nil {
		n.pic = NewPIC[fieldHandler](pf.picInitialSize(pf.FieldPICSize4), pf.PICAdaptive2To4 && !pf.PICAdaptiveMethodsOnly, pf.PICAdaptiveHeuristic)
	}
}

func (n *ThisFieldSlotRef) Get(ctx context.Context, scope *rtscope.Scope) (*object.Record, error) {
	inst, startClass, err := thisReceiver(scope, nil)
	if err != nil {
		return nil, err
	}
	pf := PerfFlagsFrom(ctx)
	st := StatsFrom(ctx)
	if !pf.FieldPIC {
		return resolveThisField(scope, inst, startClass, n.Name)
	}
	n.ensurePIC(pf)
	classID, layoutVersion := startClass.ID(), startClass.LayoutVersion()
	if h, ok := n.pic.Lookup(classID, layoutVersion); ok {
		if pf.PICDebugCounters {
			st.AddFieldPicHit()
		}
		if h.kind == fhNegative {
			return nil, corerr.New(corerr.SymbolNotFound, scope.Pos(), "%s", h.negMsg)
		}
		if h.kind == fhSlot && h.slot >= 0 && h.slot < len(inst.FieldSlots) {
			return inst.FieldSlots[h.slot], nil
		}
		return resolveThisField(scope, inst, startClass, n.Name)
	}
	if pf.PICDebugCounters {
		st.AddFieldPicMiss()
	}
	rec, err := resolveThisField(scope, inst, startClass, n.Name)
	if err != nil {
		n.pic.Insert(classID, layoutVersion, fieldHandler{kind: fhNegative, negMsg: err.Error()})
		return nil, err
	}
	if slot, ok := inst.Class.FieldSlots[n.Name]; ok {
		n.pic.Insert(classID, layoutVersion, fieldHandler{kind: fhSlot, slot: slot})
	} else {
		n.pic.Insert(classID, layoutVersion, fieldHandler{kind: fhGeneric})
	}
	return rec, nil
}

func (n *ThisFieldSlotRef) EvalValue(ctx context.Context, scope *rtscope.Scope) (*values.Value, error) {
	return defaultEvalValue(ctx, n, scope)
}

func (n *ThisFieldSlotRef) SetAt(ctx context.Context, scope *rtscope.Scope, newValue *values.Value) error {
	rec, err := n.Get(ctx, scope)
	if err != nil {
		return err
	}
	return writeRecord(rec, newValue)
}

func (n *ThisFieldSlotRef) isLValue()                                                     {}
func (n *ThisFieldSlotRef) ForEachVariable(f func(name string))                           {}
func (n *ThisFieldSlotRef) ForEachVariableWithPos(f func(name string, pos corerr.Position)) {}

var _ VariableRef = (*ThisFieldSlotRef)(nil)

// QualifiedThisFieldSlotRef (fast path 3): `this@T.name` — identical to
// ThisFieldSlotRef except resolution starts at the fixed ancestor T rather
// than the instance's dynamic class.
type QualifiedThisFieldSlotRef struct {
	Ancestor *object.Class
	Name     string

	pic *PIC[fieldHandler]
}

func NewQualifiedThisFieldSlotRef(ancestor *object.Class, name string) *QualifiedThisFieldSlotRef {
	return &QualifiedThisFieldSlotRef{Ancestor: ancestor, Name: name}
}

func (n *QualifiedThisFieldSlotRef) ensurePIC(pf PerfFlags) {
	if n.pic == nil {
		n.pic = NewPIC[fieldHandler](pf.picInitialSize(pf.FieldPICSize4), pf.PICAdaptive2To4 && !pf.PICAdaptiveMethodsOnly, pf.PICAdaptiveHeuristic)
	}
}

func (n *QualifiedThisFieldSlotRef) Get(ctx context.Context, scope *rtscope.Scope) (*object.Record, error) {
	inst, startClass, err := thisReceiver(scope, n.Ancestor)
	if err != nil {
		return nil, err
	}
	pf := PerfFlagsFrom(ctx)
	st := StatsFrom(ctx)
	if !pf.FieldPIC {
		return resolveThisField(scope, inst, startClass, n.Name)
	}
	n.ensurePIC(pf)
	classID, layoutVersion := startClass.ID(), startClass.LayoutVersion()
	if h, ok := n.pic.Lookup(classID, layoutVersion); ok {
		if pf.PICDebugCounters {
			st.AddFieldPicHit()
		}
		if h.kind == fhNegative {
			return nil, corerr.New(corerr.SymbolNotFound, scope.Pos(), "%s", h.negMsg)
		}
		if h.kind == fhSlot && h.slot >= 0 && h.slot < len(inst.FieldSlots) {
			return inst.FieldSlots[h.slot], nil
		}
		return resolveThisField(scope, inst, startClass, n.Name)
	}
	if pf.PICDebugCounters {
		st.AddFieldPicMiss()
	}
	rec, err := resolveThisField(scope, inst, startClass, n.Name)
	if err != nil {
		n.pic.Insert(classID, layoutVersion, fieldHandler{kind: fhNegative, negMsg: err.Error()})
		return nil, err
	}
	if slot, ok := startClass.FieldSlots[n.Name]; ok {
		n.pic.Insert(classID, layoutVersion, fieldHandler{kind: fhSlot, slot: slot})
	} else {
		n.pic.Insert(classID, layoutVersion, fieldHandler{kind: fhGeneric})
	}
	return rec, nil
}

func (n *QualifiedThisFieldSlotRef) EvalValue(ctx context.Context, scope *rtscope.Scope) (*values.Value, error) {
	return defaultEvalValue(ctx, n, scope)
}

func (n *QualifiedThisFieldSlotRef) SetAt(ctx context.Context, scope *rtscope.Scope, newValue *values.Value) error {
	rec, err := n.Get(ctx, scope)
	if err != nil {
		return err
	}
	return writeRecord(rec, newValue)
}

func (n *QualifiedThisFieldSlotRef) isLValue()                                           {}
func (n *QualifiedThisFieldSlotRef) ForEachVariable(f func(name string))                 {}
func (n *QualifiedThisFieldSlotRef) ForEachVariableWithPos(f func(name string, pos corerr.Position)) {
}

var _ VariableRef = (*QualifiedThisFieldSlotRef)(nil)

// invokeThisMethod is the shared generic+PIC invocation path for the three
// this-rooted method-call fast paths below; it mirrors MethodCallRef's
// EvalValue body but starting from an already-resolved (inst, startClass)
// pair instead of evaluating a Receiver node.
func invokeThisMethod(ctx context.Context, scope *rtscope.Scope, pic **PIC[methodHandler], inst *object.Instance, startClass *object.Class, name string, args *Arguments) (*values.Value, error) {
	pf := PerfFlagsFrom(ctx)
	st := StatsFrom(ctx)
	pos := scope.Pos()

	if !pf.MethodPIC {
		rec, _, err := object.ResolveMember(startClass, name, scope.CurrentClass(), scopeExtensions(scope), pos)
		if err != nil {
			return nil, err
		}
		return object.CallMethod(ctx, rec, inst, args.Positional)
	}
	if *pic == nil {
		*pic = NewPIC[methodHandler](pf.picInitialSize(pf.MethodPICSize4), pf.PICAdaptive2To4, pf.PICAdaptiveHeuristic)
	}
	p := *pic

	classID, layoutVersion := startClass.ID(), startClass.LayoutVersion()
	if h, ok := p.Lookup(classID, layoutVersion); ok {
		if pf.PICDebugCounters {
			st.AddMethodPicHit()
		}
		if h.kind == mhNegative {
			return nil, corerr.New(corerr.SymbolNotFound, pos, "%s", h.negMsg)
		}
		return object.CallMethod(ctx, h.rec, inst, args.Positional)
	}
	if pf.PICDebugCounters {
		st.AddMethodPicMiss()
	}

	rec, _, err := object.ResolveMember(startClass, name, scope.CurrentClass(), scopeExtensions(scope), pos)
	if err != nil {
		p.Insert(classID, layoutVersion, methodHandler{kind: mhNegative, negMsg: err.Error()})
		return nil, err
	}
	p.Insert(classID, layoutVersion, methodHandler{kind: mhGeneric, rec: rec})
	return object.CallMethod(ctx, rec, inst, args.Positional)
}

// ThisMethodSlotCallRef (fast path 2): `this.name(args)`.
type ThisMethodSlotCallRef struct {
	Name          string
	Args          []ArgSpec
	TrailingBlock Node

	pic *PIC[methodHandler]
}

func NewThisMethodSlotCallRef(name string, args []ArgSpec, trailingBlock Node) *ThisMethodSlotCallRef {
	return &ThisMethodSlotCallRef{Name: name, Args: args, TrailingBlock: trailingBlock}
}

func (n *ThisMethodSlotCallRef) EvalValue(ctx context.Context, scope *rtscope.Scope) (*values.Value, error) {
	inst, startClass, err := thisReceiver(scope, nil)
	if err != nil {
		return nil, err
	}
	args, err := bindArguments(ctx, scope, n.Args, n.TrailingBlock)
	if err != nil {
		return nil, err
	}
	return invokeThisMethod(ctx, scope, &n.pic, inst, startClass, n.Name, args)
}

func (n *ThisMethodSlotCallRef) Get(ctx context.Context, scope *rtscope.Scope) (*object.Record, error) {
	v, err := n.EvalValue(ctx, scope)
	if err != nil {
		return nil, err
	}
	return frozenRecord(v), nil
}

func (n *ThisMethodSlotCallRef) SetAt(ctx context.Context, scope *rtscope.Scope, newValue *values.Value) error {
	return corerr.New(corerr.IllegalAssignment, scope.Pos(), "cannot assign to a method call result")
}

func (n *ThisMethodSlotCallRef) ForEachVariable(f func(name string)) {
	for _, a := range n.Args {
		a.Value.ForEachVariable(f)
	}
}
func (n *ThisMethodSlotCallRef) ForEachVariableWithPos(f func(name string, pos corerr.Position)) {
	for _, a := range n.Args {
		a.Value.ForEachVariableWithPos(f)
	}
}

// QualifiedThisMethodSlotCallRef (fast path 4): `this@T.name(args)`.
type QualifiedThisMethodSlotCallRef struct {
	Ancestor      *object.Class
	Name          string
	Args          []ArgSpec
	TrailingBlock Node

	pic *PIC[methodHandler]
}

func NewQualifiedThisMethodSlotCallRef(ancestor *object.Class, name string, args []ArgSpec, trailingBlock Node) *QualifiedThisMethodSlotCallRef {
	return &QualifiedThisMethodSlotCallRef{Ancestor: ancestor, Name: name, Args: args, TrailingBlock: trailingBlock}
}

func (n *QualifiedThisMethodSlotCallRef) EvalValue(ctx context.Context, scope *rtscope.Scope) (*values.Value, error) {
	inst, startClass, err := thisReceiver(scope, n.Ancestor)
	if err != nil {
		return nil, err
	}
	args, err := bindArguments(ctx, scope, n.Args, n.TrailingBlock)
	if err != nil {
		return nil, err
	}
	return invokeThisMethod(ctx, scope, &n.pic, inst, startClass, n.Name, args)
}

func (n *QualifiedThisMethodSlotCallRef) Get(ctx context.Context, scope *rtscope.Scope) (*object.Record, error) {
	v, err := n.EvalValue(ctx, scope)
	if err != nil {
		return nil, err
	}
	return frozenRecord(v), nil
}

func (n *QualifiedThisMethodSlotCallRef) SetAt(ctx context.Context, scope *rtscope.Scope, newValue *values.Value) error {
	return corerr.New(corerr.IllegalAssignment, scope.Pos(), "cannot assign to a method call result")
}

func (n *QualifiedThisMethodSlotCallRef) ForEachVariable(f func(name string)) {
	for _, a := range n.Args {
		a.Value.ForEachVariable(f)
	}
}
func (n *QualifiedThisMethodSlotCallRef) ForEachVariableWithPos(f func(name string, pos corerr.Position)) {
	for _, a := range n.Args {
		a.Value.ForEachVariableWithPos(f)
	}
}

// ImplicitThisMemberRef (fast path 5): a bare name inside a method body that
// the compiler could not prove is a local, so it falls back to this.name —
// e.g. referencing an inherited field without `this.` in front of it.
// Unlike ThisFieldSlotRef, the compiler has NOT proven this resolves to a
// field at all (it may land on a property or an extension), so the PIC
// caches a slot handler only when the name has a field slot on the
// instance's class, and a generic handler (full re-resolution) otherwise.
type ImplicitThisMemberRef struct {
	Name string

	pic *PIC[fieldHandler]
}

func NewImplicitThisMemberRef(name string) *ImplicitThisMemberRef {
	return &ImplicitThisMemberRef{Name: name}
}

func (n *ImplicitThisMemberRef) ensurePIC(pf PerfFlags) {
	if n.pic == nil {
		n.pic = NewPIC[fieldHandler](pf.picInitialSize(pf.FieldPICSize4), pf.PICAdaptive2To4 && !pf.PICAdaptiveMethodsOnly, pf.PICAdaptiveHeuristic)
	}
}

func (n *ImplicitThisMemberRef) Get(ctx context.Context, scope *rtscope.Scope) (*object.Record, error) {
	inst, startClass, err := thisReceiver(scope, nil)
	if err != nil {
		return nil, err
	}
	pf := PerfFlagsFrom(ctx)
	st := StatsFrom(ctx)
	if !pf.FieldPIC {
		return resolveThisField(scope, inst, startClass, n.Name)
	}
	n.ensurePIC(pf)
	classID, layoutVersion := startClass.ID(), startClass.LayoutVersion()
	if h, ok := n.pic.Lookup(classID, layoutVersion); ok {
		if pf.PICDebugCounters {
			st.AddFieldPicHit()
		}
		if h.kind == fhNegative {
			return nil, corerr.New(corerr.SymbolNotFound, scope.Pos(), "%s", h.negMsg)
		}
		if h.kind == fhSlot && h.slot >= 0 && h.slot < len(inst.FieldSlots) {
			return inst.FieldSlots[h.slot], nil
		}
		return resolveThisField(scope, inst, startClass, n.Name)
	}
	if pf.PICDebugCounters {
		st.AddFieldPicMiss()
	}
	rec, err := resolveThisField(scope, inst, startClass, n.Name)
	if err != nil {
		n.pic.Insert(classID, layoutVersion, fieldHandler{kind: fhNegative, negMsg: err.Error()})
		return nil, err
	}
	if slot, ok := inst.Class.FieldSlots[n.Name]; ok {
		n.pic.Insert(classID, layoutVersion, fieldHandler{kind: fhSlot, slot: slot})
	} else {
		n.pic.Insert(classID, layoutVersion, fieldHandler{kind: fhGeneric})
	}
	return rec, nil
}

func (n *ImplicitThisMemberRef) EvalValue(ctx context.Context, scope *rtscope.Scope) (*values.Value, error) {
	return defaultEvalValue(ctx, n, scope)
}

func (n *ImplicitThisMemberRef) SetAt(ctx context.Context, scope *rtscope.Scope, newValue *values.Value) error {
	rec, err := n.Get(ctx, scope)
	if err != nil {
		return err
	}
	return writeRecord(rec, newValue)
}

func (n *ImplicitThisMemberRef) isLValue()                                                     {}
func (n *ImplicitThisMemberRef) ForEachVariable(f func(name string))                           {}
func (n *ImplicitThisMemberRef) ForEachVariableWithPos(f func(name string, pos corerr.Position)) {}

var _ VariableRef = (*ImplicitThisMemberRef)(nil)

// ImplicitThisMethodCallRef (fast path 6): a bare call `foo(args)` inside a
// method body, resolved against this when no local/global function named
// foo shadows it.
type ImplicitThisMethodCallRef struct {
	Name          string
	Args          []ArgSpec
	TrailingBlock Node

	pic *PIC[methodHandler]
}

func NewImplicitThisMethodCallRef(name string, args []ArgSpec, trailingBlock Node) *ImplicitThisMethodCallRef {
	return &ImplicitThisMethodCallRef{Name: name, Args: args, TrailingBlock: trailingBlock}
}

func (n *ImplicitThisMethodCallRef) EvalValue(ctx context.Context, scope *rtscope.Scope) (*values.Value, error) {
	inst, startClass, err := thisReceiver(scope, nil)
	if err != nil {
		return nil, err
	}
	args, err := bindArguments(ctx, scope, n.Args, n.TrailingBlock)
	if err != nil {
		return nil, err
	}
	return invokeThisMethod(ctx, scope, &n.pic, inst, startClass, n.Name, args)
}

func (n *ImplicitThisMethodCallRef) Get(ctx context.Context, scope *rtscope.Scope) (*object.Record, error) {
	v, err := n.EvalValue(ctx, scope)
	if err != nil {
		return nil, err
	}
	return frozenRecord(v), nil
}

func (n *ImplicitThisMethodCallRef) SetAt(ctx context.Context, scope *rtscope.Scope, newValue *values.Value) error {
	return corerr.New(corerr.IllegalAssignment, scope.Pos(), "cannot assign to a method call result")
}

func (n *ImplicitThisMethodCallRef) ForEachVariable(f func(name string)) {
	for _, a := range n.Args {
		a.Value.ForEachVariable(f)
	}
}
func (n *ImplicitThisMethodCallRef) ForEachVariableWithPos(f func(name string, pos corerr.Position)) {
	for _, a := range n.Args {
		a.Value.ForEachVariableWithPos(f)
	}
}
