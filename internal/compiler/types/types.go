package types

import "strings"

// Type is a semantic type value. The set of variants is closed: the four
// scalar types, the error sentinel, function types, struct-instance types,
// and struct-definition types.
type Type interface {
	String() string
	// Equals reports type equality as used by assignment and the equality
	// operators. ErrorType compares equal to nothing, including itself.
	Equals(other Type) bool
}

type IntType struct{}

func (IntType) String() string { return "int" }
func (IntType) Equals(o Type) bool { return IsInt(o) }

type BoolType struct{}

func (BoolType) String() string { return "bool" }
func (BoolType) Equals(o Type) bool { return IsBool(o) }

type VoidType struct{}

func (VoidType) String() string { return "void" }
func (VoidType) Equals(o Type) bool { return IsVoid(o) }

type StringType struct{}

func (StringType) String() string { return "string" }
func (StringType) Equals(o Type) bool { return IsString(o) }

// ErrorType is injected at the site of a failed check so that downstream
// checks of the same expression stay quiet.
type ErrorType struct{}

func (ErrorType) String() string { return "error" }
func (ErrorType) Equals(o Type) bool { return false }

// FnType is the type of a declared function. Equality is by kind: the
// checker reports function-to-function comparisons as their own error
// before type equality is ever consulted.
type FnType struct {
	Params []Type
	Ret    Type
}

func (t FnType) String() string {
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.String()
	}
	return strings.Join(params, ",") + "->" + t.Ret.String()
}

func (t FnType) Equals(o Type) bool { return IsFn(o) }

// StructType is the type of a variable declared with a struct type name.
// Ref is the symbol handle of the struct's definition; two struct types
// are equal exactly when they refer to the same definition.
type StructType struct {
	Name string
	Ref  int
}

func (t StructType) String() string { return "struct " + t.Name }

func (t StructType) Equals(o Type) bool {
	s, ok := o.(StructType)
	return ok && s.Ref == t.Ref
}

// StructDefType is the type of a struct definition name itself.
type StructDefType struct{}

func (StructDefType) String() string { return "structdef" }
func (StructDefType) Equals(o Type) bool { return IsStructDef(o) }

func IsInt(t Type) bool    { _, ok := t.(IntType); return ok }
func IsBool(t Type) bool   { _, ok := t.(BoolType); return ok }
func IsVoid(t Type) bool   { _, ok := t.(VoidType); return ok }
func IsString(t Type) bool { _, ok := t.(StringType); return ok }
func IsError(t Type) bool  { _, ok := t.(ErrorType); return ok }
func IsFn(t Type) bool     { _, ok := t.(FnType); return ok }

func IsStruct(t Type) bool    { _, ok := t.(StructType); return ok }
func IsStructDef(t Type) bool { _, ok := t.(StructDefType); return ok }
