package lattice

import (
	"reflect"

	"tyflow/pkg/types"
)

// Leq reports a ⊑ b, "a is at most as general as b". The decision rules are
// ordered; the first matching rule wins.
func Leq(a, b Value) bool {
	assert(a != nil && b != nil, "nil lattice value in order query")

	// Top absorbs everything and bottom is absorbed by everything, wrappers
	// included.
	if bt, ok := b.(Ty); ok && types.IsAny(bt.T) {
		return true
	}
	if at, ok := a.(Ty); ok && types.IsBottom(at.T) {
		return true
	}

	// LimitedAccuracy: a limited value is below its unlimited form, and below
	// another limited value only when it accounts for at least the same
	// unresolved sites.
	if lb, ok := b.(LimitedAccuracy); ok {
		la, ok := a.(LimitedAccuracy)
		if !ok || !lb.Causes.SubsetOf(la.Causes) {
			return false
		}
		a, b = la.V, lb.V
	} else if la, ok := a.(LimitedAccuracy); ok {
		a = la.V
	}

	// MaybeUndef: possibly-undefined is strictly more general.
	if ma, ok := a.(MaybeUndef); ok {
		mb, ok := b.(MaybeUndef)
		if !ok {
			return false
		}
		a, b = ma.V, mb.V
	} else if mb, ok := b.(MaybeUndef); ok {
		b = mb.V
	}

	// A bare type variable here means the caller leaked an unsubstituted
	// bound.
	if bt, ok := b.(Ty); ok {
		assertBoundVar(bt.T)
		if types.IsAny(bt.T) {
			return true
		}
	}
	if at, ok := a.(Ty); ok {
		assertBoundVar(at.T)
		if types.IsBottom(at.T) {
			return true
		}
	}

	// Conditional.
	if cb, ok := asConditional(b); ok {
		ca, ok := asConditional(a)
		if !ok {
			return false
		}
		assertf(ca.inter == cb.inter, "comparing conditionals from different binding contexts: %s vs %s", a, b)
		return ca.slot == cb.slot &&
			types.Subtype(ca.ifTrue, cb.ifTrue) &&
			types.Subtype(ca.ifFalse, cb.ifFalse)
	}
	if _, ok := asConditional(a); ok {
		if c, ok := b.(Const); ok {
			if bv, ok := c.Val.(types.BoolVal); ok {
				got, known := MaybeBool(a)
				return known && got == bv.V
			}
		}
		a = Ty{T: types.Bool}
	}

	// MustAlias: two aliases compare only when bound to the same field of the
	// same slot, by their widened field types. Nothing else sits below an
	// alias, so an invalidated alias always registers as a change; an alias
	// on the left widens to its field type and continues.
	aa, aok := asAlias(a)
	ab, bok := asAlias(b)
	if bok {
		if !aok {
			return false
		}
		assertf(aa.inter == ab.inter, "comparing aliases from different binding contexts: %s vs %s", a, b)
		return aa.slot == ab.slot && aa.fld == ab.fld &&
			Leq(WidenSlotWrapper(aa.fldTyp), WidenSlotWrapper(ab.fldTyp))
	}
	if aok {
		a = WidenMustAlias(a)
	}

	// PartialStruct / PartialOpaque.
	if bp, ok := b.(PartialStruct); ok {
		switch av := a.(type) {
		case PartialStruct:
			if len(av.Fields) != len(bp.Fields) || !types.Subtype(av.Typ, bp.Typ) {
				return false
			}
			for i := range av.Fields {
				if !Leq(av.Fields[i], bp.Fields[i]) {
					return false
				}
			}
			return true
		case Const:
			n, ok := types.NumFields(av.Val)
			if !ok || n != len(bp.Fields) || !types.Equal(types.TypeOf(av.Val), bp.Typ) {
				return false
			}
			for i := 0; i < n; i++ {
				fv, _ := types.FieldVal(av.Val, i)
				if !Leq(Const{Val: fv}, bp.Fields[i]) {
					return false
				}
			}
			return true
		}
		return false
	}
	if ap, ok := a.(PartialStruct); ok {
		a = Ty{T: ap.Typ}
	}
	if bo, ok := b.(PartialOpaque); ok {
		ao, ok := a.(PartialOpaque)
		return ok && types.Subtype(ao.Typ, bo.Typ) && Leq(ao.Env, bo.Env)
	}
	if ao, ok := a.(PartialOpaque); ok {
		a = Ty{T: ao.Typ}
	}

	// Const.
	if bc, ok := b.(Const); ok {
		switch av := a.(type) {
		case Const:
			return types.ValEqual(av.Val, bc.Val)
		case Ty:
			sv, ok := types.SingletonOf(av.T)
			return ok && types.ValEqual(sv, bc.Val)
		}
		return false
	}
	if ac, ok := a.(Const); ok {
		if bt, ok := b.(Ty); ok {
			return types.Includes(bt.T, ac.Val)
		}
		return false
	}

	// Plain types delegate to the nominal oracle.
	if at, ok := a.(Ty); ok {
		if bt, ok := b.(Ty); ok {
			return types.Subtype(at.T, bt.T)
		}
	}

	// Anything left (PartialTypeVar against itself, mixed leftovers) orders
	// only by structural identity.
	return identical(a, b)
}

// Lt reports a ⊏ b.
func Lt(a, b Value) bool {
	return Leq(a, b) && !Leq(b, a)
}

// FastLt reports a ⊏ b assuming a ⊑ b is already known. Cheaper than Lt for
// the fixed-point loop, where monotone progress guarantees the precondition;
// meaningless without it.
func FastLt(a, b Value) bool {
	return !Leq(b, a)
}

// LatticeEq reports mutual ordering, a ⊑ b ∧ b ⊑ a, with cheaper paths for
// the common shapes.
func LatticeEq(a, b Value) bool {
	if identical(a, b) {
		return true
	}
	ap, aok := a.(PartialStruct)
	bp, bok := b.(PartialStruct)
	if aok || bok {
		if !aok || !bok {
			return false
		}
		if len(ap.Fields) != len(bp.Fields) || !types.Equal(ap.Typ, bp.Typ) {
			return false
		}
		for i := range ap.Fields {
			if !LatticeEq(ap.Fields[i], bp.Fields[i]) {
				return false
			}
		}
		return true
	}
	if ac, ok := a.(Const); ok {
		if bt, ok := b.(Ty); ok {
			sv, ok := types.SingletonOf(bt.T)
			return ok && types.ValEqual(ac.Val, sv)
		}
	}
	if bc, ok := b.(Const); ok {
		if at, ok := a.(Ty); ok {
			sv, ok := types.SingletonOf(at.T)
			return ok && types.ValEqual(bc.Val, sv)
		}
	}
	return Leq(a, b) && Leq(b, a)
}

// MaybeBool resolves v to a statically known boolean when possible. A
// Conditional resolves when exactly one branch is unreachable.
func MaybeBool(v Value) (val, known bool) {
	switch x := v.(type) {
	case Const:
		if b, ok := x.Val.(types.BoolVal); ok {
			return b.V, true
		}
	case Conditional, InterConditional:
		c, _ := asConditional(x)
		tBot, fBot := types.IsBottom(c.ifTrue), types.IsBottom(c.ifFalse)
		if tBot && !fBot {
			return false, true
		}
		if fBot && !tBot {
			return true, true
		}
	}
	return false, false
}

// identical is the identity short-circuit of the order engine: structural
// equality without any coercion between variants.
func identical(a, b Value) bool {
	return reflect.DeepEqual(a, b)
}

func assertBoundVar(t types.Type) {
	_, isVar := t.(types.TypeVar)
	assertf(!isVar, "bare type variable %s in order query", t)
}
