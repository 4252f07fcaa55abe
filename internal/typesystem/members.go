package typesystem

import (
	"strings"

	"github.com/funvibe/meditation/internal/config"
)

// MemberKind distinguishes constructors, methods and fields.
type MemberKind int

const (
	Constructor MemberKind = iota
	Method
	Field
)

func (k MemberKind) String() string {
	switch k {
	case Constructor:
		return "constructor"
	case Method:
		return "method"
	case Field:
		return "field"
	}
	return "unknown"
}

// ParseMemberKind accepts "constructor", "method" or "field".
func ParseMemberKind(s string) (MemberKind, bool) {
	switch strings.ToLower(s) {
	case "constructor", "ctor", "new":
		return Constructor, true
	case "method", "func":
		return Method, true
	case "field":
		return Field, true
	}
	return 0, false
}

// Visibility is the access level of a member.
type Visibility int

const (
	Public Visibility = iota
	Protected
	Package
	Private
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Protected:
		return "protected"
	case Package:
		return "package"
	case Private:
		return "private"
	}
	return "unknown"
}

// ParseVisibility accepts the names produced by Visibility.String. Empty means public.
func ParseVisibility(s string) (Visibility, bool) {
	switch s {
	case "", "public":
		return Public, true
	case "protected":
		return Protected, true
	case "package":
		return Package, true
	case "private":
		return Private, true
	}
	return 0, false
}

// Member describes a constructor, method or field declared on a type.
// Members are immutable once declared on their owner.
type Member struct {
	Kind       MemberKind
	Name       string
	Owner      *TClass
	Params     []Type
	Variadic   bool
	Static     bool
	Visibility Visibility

	// Result is the method return type (Void when none) or the field type.
	// Constructors leave it nil.
	Result Type
}

// NewConstructor describes a public constructor.
func NewConstructor(params ...Type) *Member {
	return &Member{Kind: Constructor, Name: config.ConstructorName, Params: params}
}

// NewMethod describes a public instance method.
func NewMethod(name string, result Type, params ...Type) *Member {
	if result == nil {
		result = Void
	}
	return &Member{Kind: Method, Name: name, Params: params, Result: result}
}

// NewField describes a public instance field.
func NewField(name string, typ Type) *Member {
	return &Member{Kind: Field, Name: name, Result: typ}
}

// WithVariadic marks the last parameter as the variadic tail.
func (m *Member) WithVariadic() *Member {
	m.Variadic = true
	return m
}

// AsStatic marks the member static.
func (m *Member) AsStatic() *Member {
	m.Static = true
	return m
}

// WithVisibility sets the access level.
func (m *Member) WithVisibility(v Visibility) *Member {
	m.Visibility = v
	return m
}

// IsPublic reports whether the member can be used without an accessibility override.
func (m *Member) IsPublic() bool { return m.Visibility == Public }

// Signature is the name plus ordered parameter type names. Fields use the name only.
func (m *Member) Signature() string {
	if m.Kind == Field {
		return m.Name
	}
	var sb strings.Builder
	sb.WriteString(m.Name)
	sb.WriteByte('(')
	for i, p := range m.Params {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(p.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// FixedParamCount is the number of parameters before the variadic tail.
func (m *Member) FixedParamCount() int {
	if m.Variadic {
		return len(m.Params) - 1
	}
	return len(m.Params)
}

// VarargType returns the array type of the variadic tail.
func (m *Member) VarargType() (TArray, bool) {
	if !m.Variadic || len(m.Params) == 0 {
		return TArray{}, false
	}
	arr, ok := m.Params[len(m.Params)-1].(TArray)
	return arr, ok
}

func (m *Member) String() string {
	var sb strings.Builder
	if m.Visibility != Public {
		sb.WriteString(m.Visibility.String())
		sb.WriteByte(' ')
	}
	if m.Static {
		sb.WriteString("static ")
	}
	if m.Result != nil {
		sb.WriteString(m.Result.String())
		sb.WriteByte(' ')
	}
	owner := "?"
	if m.Owner != nil {
		owner = m.Owner.Name
	}
	sb.WriteString(owner)
	if m.Kind == Constructor {
		sb.WriteByte('(')
	} else {
		sb.WriteByte('.')
		sb.WriteString(m.Name)
		if m.Kind == Field {
			return sb.String()
		}
		sb.WriteByte('(')
	}
	for i, p := range m.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		if m.Variadic && i == len(m.Params)-1 {
			if arr, ok := p.(TArray); ok {
				sb.WriteString(arr.Elem.String())
				sb.WriteString("...")
				continue
			}
		}
		sb.WriteString(p.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// Declare attaches m to c after validating it. The member must not already
// belong to another type.
func (c *TClass) Declare(m *Member) (*Member, error) {
	if m.Owner != nil && m.Owner != c {
		return nil, &MemberError{Owner: c.Name, Member: m.Name, Reason: "already declared on " + m.Owner.Name}
	}
	if err := c.validateMember(m); err != nil {
		return nil, err
	}

	var list *[]*Member
	switch m.Kind {
	case Constructor:
		list = &c.constructors
	case Method:
		list = &c.methods
	case Field:
		list = &c.fields
	}
	sig := m.Signature()
	for _, existing := range *list {
		if existing.Signature() == sig {
			return nil, &DuplicateMemberError{Owner: c.Name, Signature: sig}
		}
	}

	m.Owner = c
	*list = append(*list, m)
	return m, nil
}

// MustDeclare is Declare for statically known models; it panics on error.
func (c *TClass) MustDeclare(m *Member) *Member {
	decl, err := c.Declare(m)
	if err != nil {
		panic(err)
	}
	return decl
}

func (c *TClass) validateMember(m *Member) error {
	fail := func(reason string) error {
		return &MemberError{Owner: c.Name, Member: m.Name, Reason: reason}
	}
	if m.Name == "" {
		return fail("empty member name")
	}
	for _, p := range m.Params {
		if p == nil {
			return fail("nil parameter type")
		}
		if p == Void {
			return fail("void parameter")
		}
		if p.Kind() == KindNull {
			return fail("null parameter type")
		}
	}

	switch m.Kind {
	case Constructor:
		if c.IsInterface {
			return fail("interfaces have no constructors")
		}
		if m.Static {
			return fail("constructors cannot be static")
		}
		m.Name = config.ConstructorName
	case Method:
		if m.Result == nil {
			m.Result = Void
		}
	case Field:
		if len(m.Params) > 0 || m.Variadic {
			return fail("fields take no parameters")
		}
		if m.Result == nil || m.Result == Void {
			return fail("field needs a type")
		}
	default:
		return fail("unknown member kind")
	}

	if m.Variadic {
		if len(m.Params) == 0 {
			return fail("variadic member without parameters")
		}
		if _, ok := m.Params[len(m.Params)-1].(TArray); !ok {
			return fail("variadic tail must be an array type")
		}
	}
	return nil
}
