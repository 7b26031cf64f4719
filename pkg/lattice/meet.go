package lattice

import "tyflow/pkg/types"

// TMeet intersects v with the concrete-type constraint t, the narrowing
// applied after a type test. A constraint still carrying free type variables
// is unsafe to narrow against and leaves v untouched.
func TMeet(v Value, t types.Type) Value {
	if types.HasFreeVars(t) {
		return v
	}
	switch x := v.(type) {
	case Const:
		if types.Includes(t, x.Val) {
			return x
		}
		return Ty{T: types.Bottom}
	case PartialStruct:
		if types.Subtype(x.Typ, t) {
			return x
		}
		base := types.Intersect(x.Typ, t)
		if _, ok := types.FieldCount(base); !ok || types.IsBottom(base) {
			return Ty{T: types.Bottom}
		}
		fields := make([]Value, len(x.Fields))
		for i, f := range x.Fields {
			ft, ok := types.FieldTypeAt(base, i)
			if !ok {
				return Ty{T: types.Bottom}
			}
			fields[i] = TMeet(f, ft)
			if bottomValue(fields[i]) {
				return Ty{T: types.Bottom}
			}
		}
		return PartialStruct{Typ: base, Fields: fields}
	case Conditional, InterConditional:
		if types.IsBottom(types.Intersect(types.Bool, t)) {
			return Ty{T: types.Bottom}
		}
		return v
	case MustAlias, InterMustAlias:
		return TMeet(WidenMustAlias(v), t)
	case MaybeUndef:
		inner := TMeet(x.V, t)
		if bottomValue(inner) {
			return inner
		}
		return MaybeUndef{V: inner}
	case LimitedAccuracy:
		inner := TMeet(x.V, t)
		if bottomValue(inner) {
			return inner
		}
		return LimitedAccuracy{V: inner, Causes: x.Causes.Clone()}
	case PartialOpaque:
		if types.Subtype(x.Typ, t) {
			return x
		}
		return Ty{T: types.Intersect(x.Typ, t)}
	case PartialTypeVar:
		return v
	}
	return Ty{T: types.Intersect(WidenConst(v), t)}
}

func bottomValue(v Value) bool {
	t, ok := v.(Ty)
	return ok && types.IsBottom(t.T)
}
