package types

import (
	"reflect"
	"slices"
)

// Equal reports structural type identity.
func Equal(a, b Type) bool {
	return reflect.DeepEqual(a, b)
}

// Subtype reports a <: b.
func Subtype(a, b Type) bool {
	if IsBottom(a) || IsAny(b) {
		return true
	}
	if IsAny(a) || IsBottom(b) {
		return false
	}
	if u, ok := a.(UnionType); ok {
		return !slices.ContainsFunc(u.Elts, func(e Type) bool { return !Subtype(e, b) })
	}
	if u, ok := b.(UnionType); ok {
		return slices.ContainsFunc(u.Elts, func(e Type) bool { return Subtype(a, e) })
	}
	// Type variables relate through their bounds.
	if v, ok := a.(TypeVar); ok {
		return Subtype(v.Upper, b)
	}
	if v, ok := b.(TypeVar); ok {
		return Subtype(a, v.Lower)
	}
	switch x := a.(type) {
	case TupleType:
		y, ok := b.(TupleType)
		return ok && tupleSubtype(x, y)
	case StructType:
		y, ok := b.(StructType)
		return ok && x.Name == y.Name
	case TypeType:
		y, ok := b.(TypeType)
		return ok && Subtype(x.W, y.W)
	case EllipsisType:
		y, ok := b.(EllipsisType)
		return ok && Subtype(x.Elt, y.Elt)
	default:
		return nominalSubtype(a, b)
	}
}

func supertypeOf(t Type) (Type, bool) {
	switch t.(type) {
	case IntType, UintType:
		return Integer, true
	case IntegerType, F64Type:
		return Number, true
	}
	return nil, false
}

func nominalSubtype(a, b Type) bool {
	for {
		if Equal(a, b) {
			return true
		}
		parent, ok := supertypeOf(a)
		if !ok {
			return false
		}
		a = parent
	}
}

func splitVariadic(t TupleType) (fixed []Type, vararg Type, variadic bool) {
	n := len(t.Elts)
	if n > 0 {
		if e, ok := t.Elts[n-1].(EllipsisType); ok {
			return t.Elts[:n-1], e.Elt, true
		}
	}
	return t.Elts, nil, false
}

func tupleSubtype(a, b TupleType) bool {
	af, av, avar := splitVariadic(a)
	bf, bv, bvar := splitVariadic(b)
	if avar && !bvar {
		return false
	}
	if !bvar {
		if len(af) != len(bf) {
			return false
		}
		for i := range af {
			if !Subtype(af[i], bf[i]) {
				return false
			}
		}
		return true
	}
	if len(af) < len(bf) {
		return false
	}
	for i := range bf {
		if !Subtype(af[i], bf[i]) {
			return false
		}
	}
	for _, e := range af[len(bf):] {
		if !Subtype(e, bv) {
			return false
		}
	}
	if avar && !Subtype(av, bv) {
		return false
	}
	return true
}

// Union computes the join of two types. The result is the smaller of the two
// when one subsumes the other, otherwise a deduplicated UnionType.
func Union(a, b Type) Type {
	if Subtype(a, b) {
		return b
	}
	if Subtype(b, a) {
		return a
	}
	var elts []Type
	for _, t := range slices.Concat(unionElts(a), unionElts(b)) {
		if slices.ContainsFunc(elts, func(e Type) bool { return Subtype(t, e) }) {
			continue
		}
		elts = slices.DeleteFunc(elts, func(e Type) bool { return Subtype(e, t) })
		elts = append(elts, t)
	}
	if len(elts) == 1 {
		return elts[0]
	}
	return UnionType{Elts: elts}
}

func unionElts(t Type) []Type {
	if u, ok := t.(UnionType); ok {
		return u.Elts
	}
	return []Type{t}
}

// Intersect computes the meet of two types, Bottom when they are disjoint.
func Intersect(a, b Type) Type {
	if Subtype(a, b) {
		return a
	}
	if Subtype(b, a) {
		return b
	}
	if u, ok := a.(UnionType); ok {
		return intersectUnion(u, b)
	}
	if u, ok := b.(UnionType); ok {
		return intersectUnion(u, a)
	}
	if v, ok := a.(TypeVar); ok {
		return Intersect(v.Upper, b)
	}
	if v, ok := b.(TypeVar); ok {
		return Intersect(a, v.Upper)
	}
	x, xok := a.(TupleType)
	y, yok := b.(TupleType)
	if xok && yok {
		return intersectTuples(x, y)
	}
	return Bottom
}

func intersectUnion(u UnionType, t Type) Type {
	out := Bottom
	for _, e := range u.Elts {
		if r := Intersect(e, t); !IsBottom(r) {
			out = Union(out, r)
		}
	}
	return out
}

func intersectTuples(a, b TupleType) Type {
	_, _, avar := splitVariadic(a)
	_, _, bvar := splitVariadic(b)
	if avar || bvar {
		// Variadic arity intersection is not needed by any caller; the
		// subsumption checks above already handled the common cases.
		return Bottom
	}
	if len(a.Elts) != len(b.Elts) {
		return Bottom
	}
	elts := make([]Type, len(a.Elts))
	for i := range a.Elts {
		elts[i] = Intersect(a.Elts[i], b.Elts[i])
		if IsBottom(elts[i]) {
			return Bottom
		}
	}
	return TupleType{Elts: elts}
}

// HasFreeVars reports whether t contains a type variable anywhere.
func HasFreeVars(t Type) bool {
	switch x := t.(type) {
	case TypeVar:
		return true
	case TupleType:
		return slices.ContainsFunc(x.Elts, HasFreeVars)
	case UnionType:
		return slices.ContainsFunc(x.Elts, HasFreeVars)
	case EllipsisType:
		return HasFreeVars(x.Elt)
	case TypeType:
		return HasFreeVars(x.W)
	case StructType:
		return slices.ContainsFunc(x.Fields, func(f FieldType) bool { return HasFreeVars(f.Typ) })
	}
	return false
}

// IsVariadic reports whether t is a tuple with a trailing variadic marker.
func IsVariadic(t Type) bool {
	if tt, ok := t.(TupleType); ok {
		_, _, variadic := splitVariadic(tt)
		return variadic
	}
	return false
}

// FieldCount returns the declared field count of t, counting a trailing
// variadic marker as one slot. ok is false for non-record types.
func FieldCount(t Type) (n int, ok bool) {
	switch x := t.(type) {
	case TupleType:
		return len(x.Elts), true
	case StructType:
		return len(x.Fields), true
	}
	return 0, false
}

// FieldTypeAt returns the declared type of field i of t. For a variadic
// tuple, positions at or past the marker yield the variadic element type.
func FieldTypeAt(t Type, i int) (Type, bool) {
	switch x := t.(type) {
	case TupleType:
		fixed, vararg, variadic := splitVariadic(x)
		if i < len(fixed) {
			return fixed[i], true
		}
		if variadic && i >= len(fixed) {
			return vararg, true
		}
	case StructType:
		if i < len(x.Fields) {
			return x.Fields[i].Typ, true
		}
	}
	return nil, false
}

// SingletonOf returns the unique instance of t, if t has exactly one.
func SingletonOf(t Type) (Val, bool) {
	switch x := t.(type) {
	case VoidType:
		return VoidVal{}, true
	case TypeType:
		return TypeVal{T: x.W}, true
	case TupleType:
		if len(x.Elts) == 0 {
			return TupleVal{}, true
		}
	}
	return nil, false
}

func IsSingleton(t Type) bool {
	_, ok := SingletonOf(t)
	return ok
}
