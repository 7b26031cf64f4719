package lattice

import (
	"testing"

	tassert "github.com/stretchr/testify/assert"

	"tyflow/pkg/types"
)

var (
	tupAnyAny = types.TupleType{Elts: []types.Type{types.Any, types.Any}}
	tupIntInt = types.TupleType{Elts: []types.Type{types.Int, types.Int}}
	pointTyp  = types.StructType{Name: "Point", Fields: []types.FieldType{
		{Name: "x", Typ: types.F64}, {Name: "y", Typ: types.F64},
	}}
)

func cInt(v int64) Const     { return Const{Val: types.IntVal{V: v}} }
func cBool(v bool) Const     { return Const{Val: types.BoolVal{V: v}} }
func ty(t types.Type) Value  { return Ty{T: t} }
func ps(t types.Type, fields ...Value) PartialStruct {
	return NewPartialStruct(t, fields)
}

// sampleValues covers every intraprocedural variant; interprocedural kinds
// get their own tests since mixing binding contexts in one comparison is a
// defect by design.
func sampleValues() []Value {
	return []Value{
		ty(types.Any), ty(types.Bottom), ty(types.Int), ty(types.Bool), ty(types.Void),
		ty(tupIntInt),
		cInt(5), cInt(6), cBool(true), cBool(false), Const{Val: types.VoidVal{}},
		ps(tupAnyAny, cInt(1), ty(types.Int)),
		ps(tupIntInt, cInt(1), cInt(2)),
		PartialOpaque{Typ: pointTyp, Env: cInt(1)},
		NewConditional(1, types.Int, types.F64),
		NewConditional(1, types.Bottom, types.F64),
		NewConditional(2, types.Int, types.F64),
		NewMustAlias(1, ps(tupIntInt, cInt(1), cInt(2)), 0, cInt(1)),
		NewLimited(ty(types.Int), Causes(7)),
		MaybeUndef{V: ty(types.Int)},
		NewPartialTypeVar(types.TypeVar{Name: "T", Lower: types.Bottom, Upper: types.Number}, true, false),
	}
}

func TestLeqReflexive(t *testing.T) {
	for _, x := range sampleValues() {
		tassert.True(t, Leq(x, x), "%s ⊑ %s", x, x)
	}
	inter := NewInterConditional(0, types.Int, types.F64)
	tassert.True(t, Leq(inter, inter))
	ia := NewInterMustAlias(0, ty(tupIntInt), 1, ty(types.Int))
	tassert.True(t, Leq(ia, ia))
}

func TestLeqAbsorption(t *testing.T) {
	top, bot := ty(types.Any), ty(types.Bottom)
	for _, x := range sampleValues() {
		tassert.True(t, Leq(x, top), "%s ⊑ Any", x)
		tassert.True(t, Leq(bot, x), "Bottom ⊑ %s", x)
	}
}

func TestLatticeEqConsistency(t *testing.T) {
	vs := sampleValues()
	for _, a := range vs {
		for _, b := range vs {
			both := Leq(a, b) && Leq(b, a)
			tassert.Equal(t, both, LatticeEq(a, b), "%s vs %s", a, b)
		}
	}
}

func TestLeqConst(t *testing.T) {
	tassert.True(t, Leq(cInt(5), ty(types.Int)))
	tassert.True(t, Leq(cInt(5), ty(types.Number)))
	tassert.False(t, Leq(cInt(5), ty(types.Str)))
	tassert.False(t, Leq(ty(types.Int), cInt(5)))
	tassert.True(t, Leq(cInt(5), cInt(5)))
	tassert.False(t, Leq(cInt(5), cInt(6)))
	// a singleton type is below the constant of its unique instance
	tassert.True(t, Leq(ty(types.Void), Const{Val: types.VoidVal{}}))
	tassert.True(t, LatticeEq(ty(types.Void), Const{Val: types.VoidVal{}}))
}

func TestLeqConditional(t *testing.T) {
	c := NewConditional(1, types.Int, types.F64)
	wider := NewConditional(1, types.Number, types.Any)
	tassert.True(t, Leq(c, wider))
	tassert.False(t, Leq(wider, c))
	// different slots never compare
	tassert.False(t, Leq(c, NewConditional(2, types.Int, types.F64)))
	// conditional vs plain widens to Bool
	tassert.True(t, Leq(c, ty(types.Bool)))
	tassert.False(t, Leq(c, ty(types.Int)))
	// non-conditional below a conditional only for bottom
	tassert.False(t, Leq(ty(types.Bool), c))
	tassert.True(t, Leq(ty(types.Bottom), c))
	// statically resolvable conditionals compare against boolean constants
	alwaysFalse := NewConditional(1, types.Bottom, types.F64)
	alwaysTrue := NewConditional(1, types.F64, types.Bottom)
	tassert.True(t, Leq(alwaysFalse, cBool(false)))
	tassert.False(t, Leq(alwaysFalse, cBool(true)))
	tassert.True(t, Leq(alwaysTrue, cBool(true)))
	tassert.False(t, Leq(c, cBool(true)))
}

func TestLeqMixedBindingContextsPanics(t *testing.T) {
	tassert.Panics(t, func() {
		Leq(NewConditional(1, types.Int, types.F64), NewInterConditional(1, types.Int, types.F64))
	})
	tassert.Panics(t, func() {
		Leq(NewMustAlias(1, ty(tupIntInt), 0, ty(types.Int)),
			NewInterMustAlias(1, ty(tupIntInt), 0, ty(types.Int)))
	})
}

func TestLeqMustAlias(t *testing.T) {
	a := NewMustAlias(1, ty(tupIntInt), 0, cInt(1))
	b := NewMustAlias(1, ty(tupIntInt), 0, ty(types.Int))
	tassert.True(t, Leq(a, b))
	tassert.False(t, Leq(b, a))
	// different field: no relation
	other := NewMustAlias(1, ty(tupIntInt), 1, ty(types.Int))
	tassert.False(t, Leq(a, other))
	// alias vs plain widens away the aliasing fact
	tassert.True(t, Leq(a, ty(types.Int)))
	tassert.False(t, Leq(a, ty(types.Str)))
	// nothing non-bottom sits below an alias
	tassert.False(t, Leq(cInt(1), a))
	tassert.True(t, Leq(ty(types.Bottom), a))
}

func TestLeqPartialStruct(t *testing.T) {
	refined := ps(tupAnyAny, cInt(1), ty(types.Int))
	tassert.True(t, Leq(refined, ty(tupAnyAny)))
	tassert.True(t, Leq(refined, ps(tupAnyAny, ty(types.Int), ty(types.Int))))
	tassert.False(t, Leq(ps(tupAnyAny, ty(types.Any), ty(types.Int)), refined))
	narrow := ps(tupIntInt, cInt(1), cInt(2))
	tassert.True(t, Leq(narrow, refined))
	tassert.False(t, Leq(refined, narrow))
	// a structured constant decomposes against a partial struct
	tup := Const{Val: types.TupleVal{Elts: []types.Val{types.IntVal{V: 1}, types.IntVal{V: 2}}}}
	tassert.True(t, Leq(tup, narrow))
	tassert.False(t, Leq(tup, ps(tupIntInt, cInt(3), cInt(2))))
	tassert.False(t, Leq(narrow, tup))
}

func TestLeqLimitedAccuracy(t *testing.T) {
	x := ty(types.Int)
	lim := NewLimited(x, Causes(1, 2))
	tassert.True(t, Leq(lim, x))
	tassert.False(t, Leq(x, lim))
	// more causes accounted for means lower in the order
	tassert.True(t, Leq(lim, NewLimited(x, Causes(1))))
	tassert.False(t, Leq(NewLimited(x, Causes(1)), lim))
	tassert.True(t, Leq(lim, NewLimited(x, Causes(1, 2))))
}

func TestLimitedAccuracyNeverNests(t *testing.T) {
	lim := NewLimited(ty(types.Int), Causes(1))
	again := NewLimited(lim, Causes(2))
	tassert.Equal(t, ty(types.Int), again.V)
	tassert.True(t, again.Causes.Equal(Causes(1, 2)))
}

func TestLeqMaybeUndef(t *testing.T) {
	mu := MaybeUndef{V: ty(types.Int)}
	tassert.True(t, Leq(ty(types.Int), mu))
	tassert.False(t, Leq(mu, ty(types.Int)))
	tassert.True(t, Leq(mu, MaybeUndef{V: ty(types.Number)}))
}

func TestLeqBareTypeVarPanics(t *testing.T) {
	v := ty(types.TypeVar{Name: "T", Lower: types.Bottom, Upper: types.Any})
	tassert.Panics(t, func() { Leq(v, ty(types.Int)) })
	tassert.Panics(t, func() { Leq(ty(types.Int), v) })
}

func TestLtAndFastLt(t *testing.T) {
	tassert.True(t, Lt(cInt(5), ty(types.Int)))
	tassert.False(t, Lt(cInt(5), cInt(5)))
	tassert.False(t, Lt(ty(types.Int), cInt(5)))
	// FastLt assumes a ⊑ b
	tassert.True(t, FastLt(cInt(5), ty(types.Int)))
	tassert.False(t, FastLt(cInt(5), cInt(5)))
}

func TestMaybeBool(t *testing.T) {
	v, known := MaybeBool(cBool(true))
	tassert.True(t, known)
	tassert.True(t, v)
	v, known = MaybeBool(NewConditional(1, types.Bottom, types.F64))
	tassert.True(t, known)
	tassert.False(t, v)
	v, known = MaybeBool(NewConditional(1, types.F64, types.Bottom))
	tassert.True(t, known)
	tassert.True(t, v)
	_, known = MaybeBool(NewConditional(1, types.Int, types.F64))
	tassert.False(t, known)
	_, known = MaybeBool(cInt(1))
	tassert.False(t, known)
	_, known = MaybeBool(ty(types.Bool))
	tassert.False(t, known)
}
