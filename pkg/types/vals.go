package types

import (
	"fmt"
	"reflect"
	"strconv"

	"tyflow/pkg/utils"
)

// Val is a concrete runtime value as carried by constant lattice elements.
type Val interface {
	String() string
	valNode()
}

type IntVal struct{ V int64 }

func (v IntVal) valNode()       {}
func (v IntVal) String() string { return strconv.FormatInt(v.V, 10) }

type UintVal struct{ V uint64 }

func (v UintVal) valNode()       {}
func (v UintVal) String() string { return strconv.FormatUint(v.V, 10) }

type BoolVal struct{ V bool }

func (v BoolVal) valNode()       {}
func (v BoolVal) String() string { return strconv.FormatBool(v.V) }

type F64Val struct{ V float64 }

func (v F64Val) valNode()       {}
func (v F64Val) String() string { return strconv.FormatFloat(v.V, 'g', -1, 64) }

type StringVal struct{ V string }

func (v StringVal) valNode()       {}
func (v StringVal) String() string { return strconv.Quote(v.V) }

type VoidVal struct{}

func (v VoidVal) valNode()       {}
func (v VoidVal) String() string { return "void" }

type TupleVal struct{ Elts []Val }

func (v TupleVal) valNode() {}
func (v TupleVal) String() string {
	return fmt.Sprintf("(%s)", utils.MapJoin(v.Elts, func(e Val) string { return e.String() }, ","))
}

// TypeVal is a type used as a first-class value.
type TypeVal struct{ T Type }

func (v TypeVal) valNode()       {}
func (v TypeVal) String() string { return v.T.String() }

// TypeOf returns the most precise plain type of v.
func TypeOf(v Val) Type {
	switch x := v.(type) {
	case IntVal:
		return Int
	case UintVal:
		return Uint
	case BoolVal:
		return Bool
	case F64Val:
		return F64
	case StringVal:
		return Str
	case VoidVal:
		return Void
	case TupleVal:
		return TupleType{Elts: utils.Map(x.Elts, TypeOf)}
	case TypeVal:
		return TypeType{W: x.T}
	}
	panic(fmt.Sprintf("unknown value %v", v))
}

// ValEqual reports value identity.
func ValEqual(a, b Val) bool {
	return reflect.DeepEqual(a, b)
}

// Includes reports whether v is a member of t.
func Includes(t Type, v Val) bool {
	return Subtype(TypeOf(v), t)
}

// NumFields returns the field count of a structured value.
func NumFields(v Val) (int, bool) {
	if t, ok := v.(TupleVal); ok {
		return len(t.Elts), true
	}
	return 0, false
}

// FieldVal returns field i of a structured value.
func FieldVal(v Val, i int) (Val, bool) {
	if t, ok := v.(TupleVal); ok && i < len(t.Elts) {
		return t.Elts[i], true
	}
	return nil, false
}
