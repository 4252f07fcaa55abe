package schema

import (
	"strings"

	"gopkg.in/yaml.v3"

	ts "github.com/funvibe/meditation/internal/typesystem"
)

// Export describes every non built-in type of u, sorted by name.
func Export(u *ts.Universe) *File {
	f := &File{}
	for _, c := range u.Types() {
		if u.IsBuiltin(c) {
			continue
		}
		f.Types = append(f.Types, describeType(u, c))
	}
	return f
}

// Marshal encodes f as YAML.
func (f *File) Marshal() ([]byte, error) {
	return yaml.Marshal(f)
}

func describeType(u *ts.Universe, c *ts.TClass) TypeSpec {
	spec := TypeSpec{
		Name:     c.Name,
		Abstract: c.IsAbstract,
		Final:    c.IsFinal,
	}
	if c.IsInterface {
		spec.Kind = "interface"
	} else if c.Super != nil && c.Super != u.Object {
		spec.Super = c.Super.Name
	}
	for _, i := range c.Interfaces {
		spec.Interfaces = append(spec.Interfaces, i.Name)
	}
	for _, m := range c.DeclaredConstructors() {
		spec.Constructors = append(spec.Constructors, describeMember(m))
	}
	for _, m := range c.DeclaredMethods() {
		spec.Methods = append(spec.Methods, describeMember(m))
	}
	for _, m := range c.DeclaredFields() {
		spec.Fields = append(spec.Fields, describeMember(m))
	}
	return spec
}

func describeMember(m *ts.Member) MemberSpec {
	spec := MemberSpec{Static: m.Static}
	if m.Visibility != ts.Public {
		spec.Visibility = m.Visibility.String()
	}
	switch m.Kind {
	case ts.Method:
		spec.Name = m.Name
		if m.Result != ts.Void {
			spec.Returns = m.Result.String()
		}
	case ts.Field:
		spec.Name = m.Name
		spec.Type = m.Result.String()
		return spec
	}
	for i, p := range m.Params {
		s := p.String()
		if m.Variadic && i == len(m.Params)-1 {
			s = strings.TrimSuffix(s, "[]") + "..."
		}
		spec.Params = append(spec.Params, s)
	}
	return spec
}
