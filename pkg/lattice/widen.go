package lattice

import "tyflow/pkg/types"

// WidenConst collapses v to the least precise plain type admitting it.
// LimitedAccuracy must be unwrapped first; bare type variables and variadic
// markers have no plain widening and are caller defects.
func WidenConst(v Value) types.Type {
	switch x := v.(type) {
	case Ty:
		switch x.T.(type) {
		case types.TypeVar:
			assertf(false, "widenconst of bare type variable %s", x.T)
		case types.EllipsisType:
			assertf(false, "widenconst of variadic marker %s", x.T)
		}
		return x.T
	case Const:
		if tv, ok := x.Val.(types.TypeVal); ok {
			return types.TypeType{W: tv.T}
		}
		return types.TypeOf(x.Val)
	case Conditional, InterConditional:
		return types.Bool
	case PartialStruct:
		return x.Typ
	case PartialOpaque:
		return x.Typ
	case MustAlias, InterMustAlias:
		return WidenConst(WidenMustAlias(x))
	case MaybeUndef:
		return WidenConst(x.V)
	case LimitedAccuracy:
		assertf(false, "widenconst of limited accuracy %s", x)
	case PartialTypeVar:
		assertf(false, "widenconst of partial type var %s", x)
	}
	assertf(false, "widenconst of unknown value %s", v)
	return nil
}

// WidenConditional resolves a Conditional whose outcome is already forced:
// an unreachable true branch means the value is the constant false, and
// symmetrically; otherwise it is just a Bool. Non-conditionals pass through.
func WidenConditional(v Value) Value {
	c, ok := asConditional(v)
	if !ok {
		return v
	}
	tBot, fBot := types.IsBottom(c.ifTrue), types.IsBottom(c.ifFalse)
	switch {
	case tBot && fBot:
		return Ty{T: types.Bottom}
	case tBot:
		return Const{Val: types.BoolVal{V: false}}
	case fBot:
		return Const{Val: types.BoolVal{V: true}}
	}
	return Ty{T: types.Bool}
}

// WidenMustAlias drops the aliasing fact, keeping the field's abstract type.
// Non-aliases pass through.
func WidenMustAlias(v Value) Value {
	if a, ok := asAlias(v); ok {
		return a.fldTyp
	}
	return v
}

// WidenSlotWrapper removes any slot-identity-bound refinement. Applied when a
// value crosses a boundary where slot identity stops meaning anything: stored
// into a struct field, passed across a call.
func WidenSlotWrapper(v Value) Value {
	return WidenConditional(WidenMustAlias(v))
}

// IgnoreLimited unwraps a LimitedAccuracy marker.
func IgnoreLimited(v Value) Value {
	if l, ok := v.(LimitedAccuracy); ok {
		return l.V
	}
	return v
}

// IgnoreMaybeUndef unwraps a MaybeUndef marker.
func IgnoreMaybeUndef(v Value) Value {
	if m, ok := v.(MaybeUndef); ok {
		return m.V
	}
	return v
}
