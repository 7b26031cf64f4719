package lattice

import (
	"fmt"
	"reflect"

	"tyflow/pkg/types"
)

// VarState is one slot's fact at one program point: its abstract type plus
// whether the slot may still be undefined there. The zero VarState is the
// NotFound sentinel, "not yet analyzed", which is distinct from bottom.
type VarState struct {
	Typ   Value
	Undef bool
}

// NotFound is the "no information yet" sentinel.
var NotFound = VarState{}

func NewVarState(typ Value, undef bool) VarState {
	assert(typ != nil, "var state around nil")
	return VarState{Typ: typ, Undef: undef}
}

func (s VarState) Found() bool { return s.Typ != nil }

func (s VarState) String() string {
	if !s.Found() {
		return "NotFound"
	}
	return fmt.Sprintf("VarState(%s, undef=%t)", s.Typ, s.Undef)
}

// VarTable is the full abstract state at a program point: one VarState per
// slot, index-addressed. A table is exclusively owned by the pass analyzing
// its function and is mutated in place.
type VarTable []VarState

// NewVarTable allocates a table with every slot NotFound.
func NewVarTable(n int) VarTable {
	return make(VarTable, n)
}

func (t VarTable) Clone() VarTable {
	out := make(VarTable, len(t))
	copy(out, t)
	return out
}

// StateUpdate is one proposed change: slot Slot takes State, derived from the
// Src table. Conditional marks the change as a branch narrowing of Slot
// itself, which softens the invalidation sweep below.
type StateUpdate struct {
	Slot        int
	State       VarState
	Src         VarTable
	Conditional bool
}

// issubstate reports that b dominates a: a's type is below b's and a is
// defined wherever b claims to be.
func issubstate(a, b VarState) bool {
	return Leq(a.Typ, b.Typ) && (!a.Undef || b.Undef)
}

// Smerge joins two slot facts. NotFound is an absorbing identity; a dominated
// side is returned as is; otherwise the types join and the undef flags or.
func Smerge(a, b VarState) VarState {
	if sidentical(a, b) {
		return a
	}
	if !a.Found() {
		return b
	}
	if !b.Found() {
		return a
	}
	if issubstate(b, a) {
		return a
	}
	if issubstate(a, b) {
		return b
	}
	return VarState{Typ: TMerge(a.Typ, b.Typ), Undef: a.Undef || b.Undef}
}

// Schanged reports whether merging nw over old would change the entry. This
// is the fixed-point termination signal: a false positive loops forever on
// cyclic graphs, a false negative is unsound.
func Schanged(nw, old VarState) bool {
	if sidentical(nw, old) {
		return false
	}
	if !old.Found() {
		return nw.Found()
	}
	return nw.Found() && !issubstate(nw, old)
}

func sidentical(a, b VarState) bool {
	return a.Undef == b.Undef && reflect.DeepEqual(a.Typ, b.Typ)
}

// TMerge joins two abstract values. Refinement-aware cases keep what they
// can; everything else widens and delegates to the plain-type union.
func TMerge(a, b Value) Value {
	la, aok := a.(LimitedAccuracy)
	lb, bok := b.(LimitedAccuracy)
	switch {
	case aok && bok:
		return LimitedAccuracy{V: TMerge(la.V, lb.V), Causes: la.Causes.UnionWith(lb.Causes)}
	case aok:
		return LimitedAccuracy{V: TMerge(la.V, b), Causes: la.Causes.Clone()}
	case bok:
		return LimitedAccuracy{V: TMerge(a, lb.V), Causes: lb.Causes.Clone()}
	}
	_, aok = a.(MaybeUndef)
	_, bok = b.(MaybeUndef)
	if aok || bok {
		return MaybeUndef{V: TMerge(IgnoreMaybeUndef(a), IgnoreMaybeUndef(b))}
	}
	if LatticeEq(a, b) {
		return a
	}
	if Leq(a, b) {
		return b
	}
	if Leq(b, a) {
		return a
	}
	ca, aok := asConditional(a)
	cb, bok := asConditional(b)
	if aok && bok {
		assertf(ca.inter == cb.inter, "merging conditionals from different binding contexts: %s vs %s", a, b)
		if ca.slot == cb.slot {
			return ca.rebuild(types.Union(ca.ifTrue, cb.ifTrue), types.Union(ca.ifFalse, cb.ifFalse))
		}
		return Ty{T: types.Bool}
	}
	pa, aok := a.(PartialStruct)
	pb, bok := b.(PartialStruct)
	if aok && bok && types.Equal(pa.Typ, pb.Typ) && len(pa.Fields) == len(pb.Fields) {
		fields := make([]Value, len(pa.Fields))
		for i := range pa.Fields {
			fields[i] = TMerge(pa.Fields[i], pb.Fields[i])
		}
		return PartialStruct{Typ: pa.Typ, Fields: fields}
	}
	return Ty{T: types.Union(mergeWiden(a), mergeWiden(b))}
}

func mergeWiden(v Value) types.Type {
	if ptv, ok := v.(PartialTypeVar); ok {
		return ptv.TV.Upper
	}
	return WidenConst(WidenSlotWrapper(v))
}

// invalidateSlotWrapper widens vs when its value is a Conditional or
// MustAlias referencing the slot that just changed: those refinements assumed
// the slot's binding was stable. A conditional narrowing of the slot itself
// keeps an existing Conditional on it, but an alias has no safe
// self-referential case and is invalidated regardless.
func invalidateSlotWrapper(vs VarState, changed int, preserveCond bool) (VarState, bool) {
	if !vs.Found() {
		return vs, false
	}
	inner := IgnoreLimited(vs.Typ)
	c, cok := asConditional(inner)
	al, aok := asAlias(inner)
	if (cok && !preserveCond && c.slot == changed) || (aok && al.slot == changed) {
		return VarState{Typ: widenWrappedSlotWrapper(vs.Typ), Undef: vs.Undef}, true
	}
	return vs, false
}

// widenWrappedSlotWrapper widens a slot wrapper through a LimitedAccuracy
// shell without dropping the cause set.
func widenWrappedSlotWrapper(v Value) Value {
	if l, ok := v.(LimitedAccuracy); ok {
		return LimitedAccuracy{V: WidenSlotWrapper(l.V), Causes: l.Causes}
	}
	return WidenSlotWrapper(v)
}

// StOverwrite1 initializes dst from a change: the change's source table with
// the changed slot replaced and stale refinements invalidated. Used when a
// successor block is first reached.
func StOverwrite1(dst VarTable, change StateUpdate) {
	assertf(len(dst) == len(change.Src), "table arity mismatch: %d vs %d", len(dst), len(change.Src))
	for i := range dst {
		nw := change.Src[i]
		if i == change.Slot {
			nw = change.State
		}
		nw, _ = invalidateSlotWrapper(nw, change.Slot, change.Conditional)
		dst[i] = nw
	}
}

// StUpdate merges a change into tbl slot by slot and reports whether any
// entry changed.
func StUpdate(tbl VarTable, change StateUpdate) bool {
	assertf(len(tbl) == len(change.Src), "table arity mismatch: %d vs %d", len(tbl), len(change.Src))
	changed := false
	for i := range tbl {
		nw := change.Src[i]
		if i == change.Slot {
			nw = change.State
		}
		nw, _ = invalidateSlotWrapper(nw, change.Slot, change.Conditional)
		old := tbl[i]
		if Schanged(nw, old) {
			tbl[i] = Smerge(old, nw)
			changed = true
		}
	}
	return changed
}

// StMergeTable merges a whole table into dst and reports whether any entry
// changed. Sources are expected to carry any invalidation already; there is
// no single changed slot to sweep for.
func StMergeTable(dst, src VarTable) bool {
	assertf(len(dst) == len(src), "table arity mismatch: %d vs %d", len(dst), len(src))
	changed := false
	for i := range dst {
		if Schanged(src[i], dst[i]) {
			dst[i] = Smerge(dst[i], src[i])
			changed = true
		}
	}
	return changed
}

// StUpdate1 applies the invalidation sweep to tbl and merges only the changed
// slot. Used for secondary tables such as exception-handler-reachable state.
func StUpdate1(tbl VarTable, change StateUpdate) bool {
	assertf(change.Slot >= 0 && change.Slot < len(tbl), "slot %d outside table of %d", change.Slot, len(tbl))
	for i := range tbl {
		if inv, ok := invalidateSlotWrapper(tbl[i], change.Slot, change.Conditional); ok {
			tbl[i] = inv
		}
	}
	old := tbl[change.Slot]
	if Schanged(change.State, old) {
		tbl[change.Slot] = Smerge(old, change.State)
		return true
	}
	return false
}
