package typesystem

import (
	"strings"
)

// Kind classifies a Type.
type Kind int

const (
	KindPrimitive Kind = iota
	KindClass
	KindInterface
	KindArray
	KindNull
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindArray:
		return "array"
	case KindNull:
		return "null"
	}
	return "unknown"
}

// Type is the interface for all types in the model.
// Every implementation is comparable, so == is type identity.
type Type interface {
	String() string
	Kind() Kind
}

// IsReference reports whether values of t are references (nullable).
func IsReference(t Type) bool {
	if t == nil {
		return false
	}
	k := t.Kind()
	return k == KindClass || k == KindInterface || k == KindArray || k == KindNull
}

// Primitive is one of the fixed value types.
type Primitive uint8

const (
	Boolean Primitive = iota + 1
	Byte
	Short
	Char
	Int
	Long
	Float
	Double
	Void
)

var primitiveNames = map[Primitive]string{
	Boolean: "boolean",
	Byte:    "byte",
	Short:   "short",
	Char:    "char",
	Int:     "int",
	Long:    "long",
	Float:   "float",
	Double:  "double",
	Void:    "void",
}

// Primitives lists every primitive usable as a parameter type, in widening order.
var Primitives = []Primitive{Boolean, Byte, Short, Char, Int, Long, Float, Double}

func (p Primitive) String() string {
	if name, ok := primitiveNames[p]; ok {
		return name
	}
	return "invalid"
}

func (p Primitive) Kind() Kind { return KindPrimitive }

// PrimitiveByName returns the primitive spelled name.
func PrimitiveByName(name string) (Primitive, bool) {
	for p, n := range primitiveNames {
		if n == name {
			return p, true
		}
	}
	return 0, false
}

// TClass is a named class or interface with its direct supertypes
// and declared members.
type TClass struct {
	Name        string
	IsInterface bool
	IsFinal     bool
	IsAbstract  bool

	// Super is nil only for the root type and for interfaces.
	Super      *TClass
	Interfaces []*TClass

	constructors []*Member
	methods      []*Member
	fields       []*Member
}

func (c *TClass) String() string { return c.Name }

func (c *TClass) Kind() Kind {
	if c.IsInterface {
		return KindInterface
	}
	return KindClass
}

// DeclaredConstructors returns the constructors declared by c, in declaration order.
func (c *TClass) DeclaredConstructors() []*Member { return c.constructors }

// DeclaredMethods returns the methods declared by c, in declaration order.
func (c *TClass) DeclaredMethods() []*Member { return c.methods }

// DeclaredFields returns the fields declared by c, in declaration order.
func (c *TClass) DeclaredFields() []*Member { return c.fields }

// TArray is an array of Elem.
type TArray struct {
	Elem Type
}

func (a TArray) String() string {
	if a.Elem == nil {
		return "?[]"
	}
	return a.Elem.String() + "[]"
}

func (a TArray) Kind() Kind { return KindArray }

// ArrayOf returns the array type with the given element type.
func ArrayOf(elem Type) TArray { return TArray{Elem: elem} }

// TNull is the type of a nil argument. It is assignable to every reference type.
type TNull struct{}

func (TNull) String() string { return "null" }
func (TNull) Kind() Kind     { return KindNull }

// Null is the single null type.
var Null Type = TNull{}

// TypeNames joins type names for diagnostics.
func TypeNames(types []Type) string {
	if len(types) == 0 {
		return "<no arguments>"
	}
	names := make([]string, len(types))
	for i, t := range types {
		if t == nil {
			names[i] = "?"
			continue
		}
		names[i] = t.String()
	}
	return strings.Join(names, ", ")
}
