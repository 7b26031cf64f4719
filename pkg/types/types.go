package types

import (
	"fmt"

	"tyflow/pkg/utils"
)

// Type is a plain (non-refined) type of the nominal domain. Abstract values
// carrying extra precision live in pkg/lattice; everything here is what they
// widen to.
type Type interface {
	String() string
	typeNode()
}

// AnyType is the top of the domain.
type AnyType struct{}

func (a AnyType) typeNode()      {}
func (a AnyType) String() string { return "Any" }

// BottomType is the empty type, subtype of everything.
type BottomType struct{}

func (b BottomType) typeNode()      {}
func (b BottomType) String() string { return "Bottom" }

// VoidType has exactly one instance, VoidVal.
type VoidType struct{}

func (v VoidType) typeNode()      {}
func (v VoidType) String() string { return "Void" }

type BoolType struct{}

func (b BoolType) typeNode()      {}
func (b BoolType) String() string { return "Bool" }

type IntType struct{}

func (i IntType) typeNode()      {}
func (i IntType) String() string { return "Int" }

type UintType struct{}

func (u UintType) typeNode()      {}
func (u UintType) String() string { return "Uint" }

type F64Type struct{}

func (f F64Type) typeNode()      {}
func (f F64Type) String() string { return "F64" }

type StringType struct{}

func (s StringType) typeNode()      {}
func (s StringType) String() string { return "String" }

// IntegerType is the abstract supertype of Int and Uint.
type IntegerType struct{}

func (i IntegerType) typeNode()      {}
func (i IntegerType) String() string { return "Integer" }

// NumberType is the abstract supertype of Integer and F64.
type NumberType struct{}

func (n NumberType) typeNode()      {}
func (n NumberType) String() string { return "Number" }

// TupleType is a covariant record of element types. The last element may be
// an EllipsisType, making the tuple variadic.
type TupleType struct {
	Elts []Type
}

func (t TupleType) typeNode() {}
func (t TupleType) String() string {
	return fmt.Sprintf("Tuple{%s}", utils.MapJoin(t.Elts, func(e Type) string { return e.String() }, ","))
}

// EllipsisType marks a trailing variadic tuple element.
type EllipsisType struct {
	Elt Type
}

func (e EllipsisType) typeNode()      {}
func (e EllipsisType) String() string { return fmt.Sprintf("%s...", e.Elt) }

type FieldType struct {
	Name string
	Typ  Type
}

// StructType is a nominal record type. Subtyping is by name only.
type StructType struct {
	Name   string
	Fields []FieldType
}

func (s StructType) typeNode()      {}
func (s StructType) String() string { return s.Name }

// UnionType is a set of alternatives, produced by Union.
type UnionType struct {
	Elts []Type
}

func (u UnionType) typeNode() {}
func (u UnionType) String() string {
	return fmt.Sprintf("Union{%s}", utils.MapJoin(u.Elts, func(e Type) string { return e.String() }, ","))
}

// TypeVar is a bounded type variable. It must never reach the lattice
// operators directly; tmeet refuses to narrow against a type that still
// carries one.
type TypeVar struct {
	Name  string
	Lower Type
	Upper Type
}

func (v TypeVar) typeNode()      {}
func (v TypeVar) String() string { return v.Name }

// TypeType is the type of a type-valued constant: TypeType{Int} is the type
// whose single instance is Int itself.
type TypeType struct {
	W Type
}

func (t TypeType) typeNode()      {}
func (t TypeType) String() string { return fmt.Sprintf("Type{%s}", t.W) }

var (
	Any     Type = AnyType{}
	Bottom  Type = BottomType{}
	Void    Type = VoidType{}
	Bool    Type = BoolType{}
	Int     Type = IntType{}
	Uint    Type = UintType{}
	F64     Type = F64Type{}
	Str     Type = StringType{}
	Integer Type = IntegerType{}
	Number  Type = NumberType{}
)

func IsAny(t Type) bool    { return utils.TryCast[AnyType](t) }
func IsBottom(t Type) bool { return utils.TryCast[BottomType](t) }
