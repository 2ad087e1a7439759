package eval

import (
	"context"
	"strings"

	"github.com/avery-lang/corelang/corerr"
	"github.com/avery-lang/corelang/object"
	"github.com/avery-lang/corelang/rtscope"
	"github.com/avery-lang/corelang/values"
)

// BinaryOp is the closed operator set BinaryOpRef accepts (spec §4.4).
type BinaryOp byte

const (
	OpOr BinaryOp = iota
	OpAnd
	OpMapEntry // ==>
	OpEq
	OpNeq
	OpRefEq
	OpRefNeq
	OpMatch
	OpNotMatch
	OpLe
	OpLt
	OpGe
	OpGt
	OpIn
	OpNotIn
	OpIs
	OpNotIs
	OpSpaceship
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
)

// BinaryOpRef handles every binary operator. Primitive fast paths cover
// Bool⊕Bool (logical, Eq/Neq), Int⊕Int (arithmetic/bit/shift/comparison,
// with division/modulo by zero deliberately falling through to the slow
// path so it fails with DivideByZero), String⊕String, Char⊕Char, the four
// string/char concatenation combinations, mixed Int/Real promotion, and
// membership over List/Set/Map/Range/String.
type BinaryOpRef struct {
	Op          BinaryOp
	Left, Right Node
}

func NewBinaryOpRef(op BinaryOp, left, right Node) *BinaryOpRef {
	return &BinaryOpRef{Op: op, Left: left, Right: right}
}

func (n *BinaryOpRef) Get(ctx context.Context, scope *rtscope.Scope) (*object.Record, error) {
	v, err := n.EvalValue(ctx, scope)
	if err != nil {
		return nil, err
	}
	return frozenRecord(v), nil
}

func (n *BinaryOpRef) EvalValue(ctx context.Context, scope *rtscope.Scope) (*values.Value, error) {
	// Short-circuit logical operators have their own dedicated node
	// (LogicalOrRef/LogicalAndRef); OpOr/OpAnd here handle the non-short-
	// circuit Bool-typed forms some front ends lower directly to BinaryOpRef.
	l, err := n.Left.EvalValue(ctx, scope)
	if err != nil {
		return nil, err
	}
	r, err := n.Right.EvalValue(ctx, scope)
	if err != nil {
		return nil, err
	}

	pos := scope.Pos()
	if l.IsUnset() || r.IsUnset() {
		return nil, corerr.New(corerr.UnsetError, pos, "operand is unset")
	}

	pf := PerfFlagsFrom(ctx)
	st := StatsFrom(ctx)

	if pf.PrimitiveFastOps {
		if v, ok, ferr := n.primitiveFastPath(l, r, pos); ok {
			if ferr != nil {
				return nil, ferr
			}
			st.AddPrimitiveFastOpsHit()
			return v, nil
		}
	}

	return n.slowPath(l, r, pos)
}

func (n *BinaryOpRef) primitiveFastPath(l, r *values.Value, pos corerr.Position) (*values.Value, bool, error) {
	switch n.Op {
	case OpAnd:
		if l.IsBool() && r.IsBool() {
			v, err := l.LogicalAnd(r)
			return v, true, wrapNotImpl(err, pos)
		}
	case OpOr:
		if l.IsBool() && r.IsBool() {
			v, err := l.LogicalOr(r)
			return v, true, wrapNotImpl(err, pos)
		}
	case OpEq:
		if l.IsBool() && r.IsBool() || (l.IsInt() && r.IsInt()) || (l.IsString() && r.IsString()) {
			return values.Bool(l.Eq(r)), true, nil
		}
	case OpNeq:
		if l.IsBool() && r.IsBool() || (l.IsInt() && r.IsInt()) || (l.IsString() && r.IsString()) {
			return values.Bool(!l.Eq(r)), true, nil
		}
	case OpAdd:
		if l.IsInt() && r.IsInt() {
			v, err := l.Add(r)
			return v, true, wrapNotImpl(err, pos)
		}
		if l.IsNumeric() && r.IsNumeric() {
			v, err := l.Add(r)
			return v, true, wrapNotImpl(err, pos)
		}
		if l.IsString() && r.IsString() {
			return values.Str(l.AsString() + r.AsString()), true, nil
		}
		if l.IsString() && r.IsInt() {
			return values.Str(l.AsString() + r.String()), true, nil
		}
		if l.IsString() && r.Type == values.TChar {
			return values.Str(l.AsString() + string(r.AsChar())), true, nil
		}
		if l.IsInt() && r.IsString() {
			return values.Str(l.String() + r.AsString()), true, nil
		}
		if l.Type == values.TChar && r.IsString() {
			return values.Str(string(l.AsChar()) + r.AsString()), true, nil
		}
	case OpSub, OpMul:
		if l.IsNumeric() && r.IsNumeric() {
			v, err := n.numericOp(l, r)
			return v, true, wrapNotImpl(err, pos)
		}
	case OpDiv, OpMod:
		if l.IsInt() && r.IsInt() && r.AsInt() == 0 {
			return nil, false, nil // fall through to the slow path on purpose
		}
		if l.IsNumeric() && r.IsNumeric() {
			v, err := n.numericOp(l, r)
			return v, true, wrapDivZero(err, pos)
		}
	case OpBitAnd, OpBitOr, OpBitXor, OpShl, OpShr:
		if l.IsInt() && r.IsInt() {
			v, err := n.bitOp(l, r)
			return v, true, wrapNotImpl(err, pos)
		}
	case OpLe, OpLt, OpGe, OpGt:
		if (l.IsInt() && r.IsInt()) || (l.Type == values.TChar && r.Type == values.TChar) || (l.IsString() && r.IsString()) {
			return values.Bool(n.compareOp(l.Compare(r))), true, nil
		}
	}
	return nil, false, nil
}

func (n *BinaryOpRef) numericOp(l, r *values.Value) (*values.Value, error) {
	switch n.Op {
	case OpSub:
		return l.Subtract(r)
	case OpMul:
		return l.Multiply(r)
	case OpDiv:
		return l.Divide(r)
	case OpMod:
		return l.Modulo(r)
	}
	return nil, nil
}

func (n *BinaryOpRef) bitOp(l, r *values.Value) (*values.Value, error) {
	switch n.Op {
	case OpBitAnd:
		return l.BitAnd(r)
	case OpBitOr:
		return l.BitOr(r)
	case OpBitXor:
		return l.BitXor(r)
	case OpShl:
		return l.Shl(r)
	case OpShr:
		return l.Shr(r)
	}
	return nil, nil
}

func (n *BinaryOpRef) compareOp(c int) bool {
	switch n.Op {
	case OpLe:
		return c <= 0
	case OpLt:
		return c < 0
	case OpGe:
		return c >= 0
	case OpGt:
		return c > 0
	}
	return false
}

func (n *BinaryOpRef) slowPath(l, r *values.Value, pos corerr.Position) (*values.Value, error) {
	switch n.Op {
	case OpAnd:
		v, err := l.LogicalAnd(r)
		return v, wrapNotImpl(err, pos)
	case OpOr:
		v, err := l.LogicalOr(r)
		return v, wrapNotImpl(err, pos)
	case OpMapEntry:
		return values.NewMapEntry(l, r), nil
	case OpEq:
		return values.Bool(l.Eq(r)), nil
	case OpNeq:
		return values.Bool(!l.Eq(r)), nil
	case OpRefEq:
		return values.Bool(l.RefEq(r)), nil
	case OpRefNeq:
		return values.Bool(!l.RefEq(r)), nil
	case OpMatch, OpNotMatch:
		return n.matchOp(l, r, pos)
	case OpLe, OpLt, OpGe, OpGt:
		c := l.Compare(r)
		if c == values.NotComparable {
			return nil, corerr.New(corerr.NotImplemented, pos, "%s and %s are not comparable", l.KindName(), r.KindName())
		}
		return values.Bool(n.compareOp(c)), nil
	case OpSpaceship:
		c := l.Compare(r)
		if c == values.NotComparable {
			return nil, corerr.New(corerr.NotImplemented, pos, "%s and %s are not comparable", l.KindName(), r.KindName())
		}
		return values.Int(int64(c)), nil
	case OpIn, OpNotIn:
		return n.membershipOp(l, r, pos)
	case OpIs, OpNotIs:
		return n.isOp(l, r, pos)
	case OpAdd:
		v, err := l.Add(r)
		return v, wrapNotImpl(err, pos)
	case OpSub, OpMul:
		v, err := n.numericOp(l, r)
		return v, wrapNotImpl(err, pos)
	case OpDiv, OpMod:
		v, err := n.numericOp(l, r)
		return v, wrapDivZero(err, pos)
	case OpBitAnd, OpBitOr, OpBitXor, OpShl, OpShr:
		v, err := n.bitOp(l, r)
		return v, wrapNotImpl(err, pos)
	}
	return nil, corerr.New(corerr.NotImplemented, pos, "unknown binary operator")
}

func (n *BinaryOpRef) matchOp(l, r *values.Value, pos corerr.Position) (*values.Value, error) {
	if l.Type != values.TString || r.Type != values.TRegex {
		return nil, corerr.New(corerr.NotImplemented, pos, "match requires a string and a regex")
	}
	re := r.Data.(*values.Regex)
	matched := re.Compiled.MatchString(l.AsString())
	if n.Op == OpNotMatch {
		matched = !matched
	}
	return values.Bool(matched), nil
}

func (n *BinaryOpRef) membershipOp(l, r *values.Value, pos corerr.Position) (*values.Value, error) {
	var found bool
	switch r.Type {
	case values.TList:
		found = r.Data.(*values.List).Contains(l)
	case values.TSet:
		found = r.Data.(*values.Set).Contains(l)
	case values.TMap:
		_, found = r.Data.(*values.Map).Get(l)
	case values.TRange:
		found = r.Data.(*values.Range).Contains(l)
	case values.TString:
		if l.Type != values.TString && l.Type != values.TChar {
			return nil, corerr.New(corerr.NotImplemented, pos, "'in' over a string requires a string or char operand")
		}
		needle := l.AsString()
		if l.Type == values.TChar {
			needle = string(l.AsChar())
		}
		found = strings.Contains(r.AsString(), needle)
	default:
		return nil, corerr.New(corerr.NotImplemented, pos, "'in' not supported over %s", r.KindName())
	}
	if n.Op == OpNotIn {
		found = !found
	}
	return values.Bool(found), nil
}

func (n *BinaryOpRef) isOp(l, r *values.Value, pos corerr.Position) (*values.Value, error) {
	cls, ok := object.ClassFromValue(r)
	if !ok {
		return nil, corerr.New(corerr.NotImplemented, pos, "'is' requires a class operand")
	}
	_, startClass, ok := object.Unwrap(l)
	var is bool
	if ok {
		is = startClass.IsInstanceOf(cls)
	}
	if n.Op == OpNotIs {
		is = !is
	}
	return values.Bool(is), nil
}

func wrapNotImpl(err error, pos corerr.Position) error {
	if err == nil {
		return nil
	}
	return corerr.Wrap(corerr.NotImplemented, pos, err, "%s", err.Error())
}

func wrapDivZero(err error, pos corerr.Position) error {
	if err == nil {
		return nil
	}
	return corerr.Wrap(corerr.DivideByZero, pos, err, "%s", err.Error())
}

func (n *BinaryOpRef) SetAt(ctx context.Context, scope *rtscope.Scope, newValue *values.Value) error {
	return corerr.New(corerr.IllegalAssignment, scope.Pos(), "cannot assign to a binary expression")
}

func (n *BinaryOpRef) ForEachVariable(f func(name string)) {
	n.Left.ForEachVariable(f)
	n.Right.ForEachVariable(f)
}

func (n *BinaryOpRef) ForEachVariableWithPos(f func(name string, pos corerr.Position)) {
	n.Left.ForEachVariableWithPos(f)
	n.Right.ForEachVariableWithPos(f)
}
