package lattice

import (
	"fmt"
	"slices"

	"tyflow/pkg/types"
	"tyflow/pkg/utils"
)

// Value is an abstract value: an approximation of the set of concrete runtime
// values a program location can hold. The set of variants is closed; every
// operator in this package switches exhaustively over it, so a new variant
// forces every operator to be revisited.
type Value interface {
	String() string
	latticeValue()
}

// Ty is a plain-type element, the variant every refined variant widens to.
type Ty struct {
	T types.Type
}

func (t Ty) latticeValue()  {}
func (t Ty) String() string { return t.T.String() }

// Const is exactly one concrete runtime value.
type Const struct {
	Val types.Val
}

func (c Const) latticeValue()  {}
func (c Const) String() string { return fmt.Sprintf("Const(%s)", c.Val) }

// PartialStruct refines a record type with per-field abstract values. The
// field count matches the base type's declared count, barring a trailing
// variadic marker, and every field is below its declared type.
type PartialStruct struct {
	Typ    types.Type
	Fields []Value
}

func (p PartialStruct) latticeValue() {}
func (p PartialStruct) String() string {
	return fmt.Sprintf("PartialStruct(%s, %s)", p.Typ,
		utils.MapJoin(p.Fields, func(f Value) string { return f.String() }, ", "))
}

// PartialOpaque refines a closure type with the abstract value of its
// captured environment.
type PartialOpaque struct {
	Typ types.Type
	Env Value
}

func (p PartialOpaque) latticeValue() {}
func (p PartialOpaque) String() string {
	return fmt.Sprintf("PartialOpaque(%s, %s)", p.Typ, p.Env)
}

// Conditional is a boolean value that, when branched on, narrows the slot it
// is bound to: IfTrue on the true edge, IfFalse on the false edge. Branch
// payloads are plain types, stored pre-widened, so a Conditional can never
// nest a Conditional or MustAlias.
type Conditional struct {
	Slot    int
	IfTrue  types.Type
	IfFalse types.Type
}

func (c Conditional) latticeValue() {}
func (c Conditional) String() string {
	return fmt.Sprintf("Conditional(%d, %s, %s)", c.Slot, c.IfTrue, c.IfFalse)
}

// InterConditional is the interprocedural Conditional, bound to an argument
// position of the callee instead of a local slot. The two kinds never meet in
// one comparison.
type InterConditional struct {
	Arg     int
	IfTrue  types.Type
	IfFalse types.Type
}

func (c InterConditional) latticeValue() {}
func (c InterConditional) String() string {
	return fmt.Sprintf("InterConditional(%d, %s, %s)", c.Arg, c.IfTrue, c.IfFalse)
}

// MustAlias records that a value is field FldIdx of the variable in Slot,
// valid only while that variable keeps its current binding.
type MustAlias struct {
	Slot   int
	VarTyp Value
	FldIdx int
	FldTyp Value
}

func (m MustAlias) latticeValue() {}
func (m MustAlias) String() string {
	return fmt.Sprintf("MustAlias(%d, %s, %d, %s)", m.Slot, m.VarTyp, m.FldIdx, m.FldTyp)
}

// InterMustAlias is the interprocedural MustAlias, bound to an argument
// position.
type InterMustAlias struct {
	Arg    int
	VarTyp Value
	FldIdx int
	FldTyp Value
}

func (m InterMustAlias) latticeValue() {}
func (m InterMustAlias) String() string {
	return fmt.Sprintf("InterMustAlias(%d, %s, %d, %s)", m.Arg, m.VarTyp, m.FldIdx, m.FldTyp)
}

// CauseSet is a set of stable recursion-site ids. Sets are copied on write so
// a checkpointed table never shares one with a live value.
type CauseSet map[uint64]struct{}

func Causes(ids ...uint64) CauseSet {
	c := make(CauseSet, len(ids))
	for _, id := range ids {
		c[id] = struct{}{}
	}
	return c
}

func (c CauseSet) Contains(id uint64) bool {
	_, ok := c[id]
	return ok
}

func (c CauseSet) SubsetOf(o CauseSet) bool {
	for id := range c {
		if !o.Contains(id) {
			return false
		}
	}
	return true
}

func (c CauseSet) Clone() CauseSet {
	out := make(CauseSet, len(c))
	for id := range c {
		out[id] = struct{}{}
	}
	return out
}

func (c CauseSet) UnionWith(o CauseSet) CauseSet {
	out := c.Clone()
	for id := range o {
		out[id] = struct{}{}
	}
	return out
}

func (c CauseSet) Equal(o CauseSet) bool {
	return len(c) == len(o) && c.SubsetOf(o)
}

func (c CauseSet) String() string {
	ids := make([]uint64, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return "{" + utils.MapJoin(ids, func(id uint64) string { return fmt.Sprintf("%d", id) }, ",") + "}"
}

// LimitedAccuracy wraps an under-approximation produced while the recursion
// sites in Causes were still unresolved. Never nests.
type LimitedAccuracy struct {
	V      Value
	Causes CauseSet
}

func (l LimitedAccuracy) latticeValue() {}
func (l LimitedAccuracy) String() string {
	return fmt.Sprintf("Limited(%s, %s)", l.V, l.Causes)
}

// MaybeUndef marks, for the post-inference phase, that the slot may also be
// uninitialized.
type MaybeUndef struct {
	V Value
}

func (m MaybeUndef) latticeValue()  {}
func (m MaybeUndef) String() string { return fmt.Sprintf("MaybeUndef(%s)", m.V) }

// PartialTypeVar carries a bound type variable plus whether each bound is
// definitely known. Metadata only: it never participates in narrowing.
type PartialTypeVar struct {
	TV        types.TypeVar
	LBCertain bool
	UBCertain bool
}

func (p PartialTypeVar) latticeValue() {}
func (p PartialTypeVar) String() string {
	return fmt.Sprintf("PartialTypeVar(%s)", p.TV.Name)
}

// NewConditional builds an intraprocedural Conditional. Branch payloads are
// plain types by construction, which is what keeps Conditionals from nesting.
func NewConditional(slot int, ifTrue, ifFalse types.Type) Conditional {
	assertf(slot >= 0, "conditional bound to negative slot %d", slot)
	return Conditional{Slot: slot, IfTrue: ifTrue, IfFalse: ifFalse}
}

func NewInterConditional(arg int, ifTrue, ifFalse types.Type) InterConditional {
	assertf(arg >= 0, "conditional bound to negative argument %d", arg)
	return InterConditional{Arg: arg, IfTrue: ifTrue, IfFalse: ifFalse}
}

// NewMustAlias builds an alias record. Payloads must be pre-widened: an alias
// wrapping a Conditional or another alias is an invariant violation.
func NewMustAlias(slot int, varTyp Value, fldIdx int, fldTyp Value) MustAlias {
	assertf(slot >= 0 && fldIdx >= 0, "alias bound to negative slot or field")
	assertf(!isSlotWrapper(varTyp) && !isSlotWrapper(fldTyp),
		"alias payload must be pre-widened, got %s / %s", varTyp, fldTyp)
	return MustAlias{Slot: slot, VarTyp: varTyp, FldIdx: fldIdx, FldTyp: fldTyp}
}

func NewInterMustAlias(arg int, varTyp Value, fldIdx int, fldTyp Value) InterMustAlias {
	assertf(arg >= 0 && fldIdx >= 0, "alias bound to negative argument or field")
	assertf(!isSlotWrapper(varTyp) && !isSlotWrapper(fldTyp),
		"alias payload must be pre-widened, got %s / %s", varTyp, fldTyp)
	return InterMustAlias{Arg: arg, VarTyp: varTyp, FldIdx: fldIdx, FldTyp: fldTyp}
}

// NewPartialStruct checks the field shape against the declared base type.
func NewPartialStruct(t types.Type, fields []Value) PartialStruct {
	n, ok := types.FieldCount(t)
	assertf(ok, "partial struct base %s is not a record type", t)
	if types.IsVariadic(t) {
		assertf(len(fields) >= n-1, "partial struct arity %d below declared %d", len(fields), n-1)
	} else {
		assertf(len(fields) == n, "partial struct arity %d, declared %d", len(fields), n)
	}
	for i, f := range fields {
		ft, _ := types.FieldTypeAt(t, i)
		assertf(Leq(f, Ty{T: ft}), "field %d value %s above declared type %s", i, f, ft)
	}
	return PartialStruct{Typ: t, Fields: fields}
}

// NewLimited wraps v with a cause set, merging instead of nesting.
func NewLimited(v Value, causes CauseSet) LimitedAccuracy {
	assert(v != nil, "limited accuracy around nil")
	if inner, ok := v.(LimitedAccuracy); ok {
		return LimitedAccuracy{V: inner.V, Causes: inner.Causes.UnionWith(causes)}
	}
	return LimitedAccuracy{V: v, Causes: causes.Clone()}
}

// NewPartialTypeVar records bound certainty for tv. Both bounds must be set.
func NewPartialTypeVar(tv types.TypeVar, lbCertain, ubCertain bool) PartialTypeVar {
	assertf(tv.Lower != nil && tv.Upper != nil, "type var %s with missing bounds", tv.Name)
	return PartialTypeVar{TV: tv, LBCertain: lbCertain, UBCertain: ubCertain}
}

// condView folds the two Conditional kinds into one shape for the operators.
type condView struct {
	slot    int
	ifTrue  types.Type
	ifFalse types.Type
	inter   bool
}

func asConditional(v Value) (condView, bool) {
	switch x := v.(type) {
	case Conditional:
		return condView{slot: x.Slot, ifTrue: x.IfTrue, ifFalse: x.IfFalse}, true
	case InterConditional:
		return condView{slot: x.Arg, ifTrue: x.IfTrue, ifFalse: x.IfFalse, inter: true}, true
	}
	return condView{}, false
}

func (c condView) rebuild(ifTrue, ifFalse types.Type) Value {
	if c.inter {
		return InterConditional{Arg: c.slot, IfTrue: ifTrue, IfFalse: ifFalse}
	}
	return Conditional{Slot: c.slot, IfTrue: ifTrue, IfFalse: ifFalse}
}

// aliasView folds the two MustAlias kinds likewise.
type aliasView struct {
	slot   int
	fld    int
	varTyp Value
	fldTyp Value
	inter  bool
}

func asAlias(v Value) (aliasView, bool) {
	switch x := v.(type) {
	case MustAlias:
		return aliasView{slot: x.Slot, fld: x.FldIdx, varTyp: x.VarTyp, fldTyp: x.FldTyp}, true
	case InterMustAlias:
		return aliasView{slot: x.Arg, fld: x.FldIdx, varTyp: x.VarTyp, fldTyp: x.FldTyp, inter: true}, true
	}
	return aliasView{}, false
}

// isSlotWrapper reports whether v is bound to a slot identity (the variants
// the table invalidation sweep cares about).
func isSlotWrapper(v Value) bool {
	switch v.(type) {
	case Conditional, InterConditional, MustAlias, InterMustAlias:
		return true
	}
	return false
}
