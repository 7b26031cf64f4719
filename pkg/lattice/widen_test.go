package lattice

import (
	"testing"

	tassert "github.com/stretchr/testify/assert"

	"tyflow/pkg/types"
)

func TestWidenConditional(t *testing.T) {
	slot := 1
	tassert.Equal(t, cBool(false), WidenConditional(NewConditional(slot, types.Bottom, types.F64)))
	tassert.Equal(t, cBool(true), WidenConditional(NewConditional(slot, types.F64, types.Bottom)))
	tassert.Equal(t, ty(types.Bool), WidenConditional(NewConditional(slot, types.Int, types.F64)))
	tassert.Equal(t, ty(types.Bottom), WidenConditional(NewConditional(slot, types.Bottom, types.Bottom)))
	// non-conditionals pass through
	tassert.Equal(t, cInt(5), WidenConditional(cInt(5)))
	tassert.Equal(t, cBool(true), WidenConditional(NewInterConditional(0, types.Any, types.Bottom)))
}

func TestWidenMustAlias(t *testing.T) {
	a := NewMustAlias(1, ty(tupIntInt), 0, cInt(1))
	tassert.Equal(t, Value(cInt(1)), WidenMustAlias(a))
	ia := NewInterMustAlias(0, ty(tupIntInt), 1, ty(types.Int))
	tassert.Equal(t, Value(ty(types.Int)), WidenMustAlias(ia))
	tassert.Equal(t, Value(cInt(5)), WidenMustAlias(cInt(5)))
}

func TestWidenConst(t *testing.T) {
	tassert.True(t, types.Equal(types.Int, WidenConst(cInt(5))))
	tassert.True(t, types.Equal(types.Bool, WidenConst(cBool(true))))
	tassert.True(t, types.Equal(types.TypeType{W: types.Int}, WidenConst(Const{Val: types.TypeVal{T: types.Int}})))
	tassert.True(t, types.Equal(types.Bool, WidenConst(NewConditional(1, types.Int, types.F64))))
	tassert.True(t, types.Equal(types.Bool, WidenConst(NewInterConditional(0, types.Int, types.F64))))
	tassert.True(t, types.Equal(tupAnyAny, WidenConst(ps(tupAnyAny, cInt(1), ty(types.Int)))))
	tassert.True(t, types.Equal(pointTyp, WidenConst(PartialOpaque{Typ: pointTyp, Env: cInt(1)})))
	tassert.True(t, types.Equal(types.Int, WidenConst(MaybeUndef{V: cInt(5)})))
	tassert.True(t, types.Equal(types.Int, WidenConst(NewMustAlias(1, ty(tupIntInt), 0, ty(types.Int)))))
	tassert.True(t, types.Equal(types.Int, WidenConst(ty(types.Int))))
}

func TestWidenConstPanics(t *testing.T) {
	tassert.Panics(t, func() {
		WidenConst(ty(types.TypeVar{Name: "T", Lower: types.Bottom, Upper: types.Any}))
	})
	tassert.Panics(t, func() {
		WidenConst(ty(types.EllipsisType{Elt: types.Int}))
	})
	tassert.Panics(t, func() {
		WidenConst(NewLimited(ty(types.Int), Causes(1)))
	})
	tassert.Panics(t, func() {
		WidenConst(NewPartialTypeVar(types.TypeVar{Name: "T", Lower: types.Bottom, Upper: types.Any}, true, true))
	})
}

func TestWidenSlotWrapper(t *testing.T) {
	tassert.Equal(t, ty(types.Bool), WidenSlotWrapper(NewConditional(1, types.Int, types.F64)))
	tassert.Equal(t, cBool(true), WidenSlotWrapper(NewConditional(1, types.Int, types.Bottom)))
	tassert.Equal(t, Value(cInt(1)), WidenSlotWrapper(NewMustAlias(1, ty(tupIntInt), 0, cInt(1))))
	tassert.Equal(t, Value(cInt(5)), WidenSlotWrapper(cInt(5)))
}

func TestUnwrapHelpers(t *testing.T) {
	lim := NewLimited(ty(types.Int), Causes(3))
	tassert.Equal(t, ty(types.Int), IgnoreLimited(lim))
	tassert.Equal(t, cInt(5), IgnoreLimited(cInt(5)))
	tassert.Equal(t, ty(types.Int), IgnoreMaybeUndef(MaybeUndef{V: ty(types.Int)}))
	tassert.Equal(t, cInt(5), IgnoreMaybeUndef(cInt(5)))
}
