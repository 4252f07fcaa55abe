// Package schema reads and writes type models as YAML.
//
// A schema file lists types with their supertypes and members:
//
//	types:
//	  - name: Shape
//	    kind: class
//	    abstract: true
//	    interfaces: [Comparable]
//	    constructors:
//	      - params: [String]
//	        visibility: protected
//	    methods:
//	      - name: area
//	        returns: double
//	      - name: describe
//	        returns: String
//	        params: [String, Object...]
//	    fields:
//	      - name: count
//	        type: int
//	        static: true
//
// A trailing "..." on the last parameter makes the member variadic.
// Types may refer to each other in any order, across all files applied together.
package schema

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	ts "github.com/funvibe/meditation/internal/typesystem"
)

// File is the top-level content of a schema file.
type File struct {
	Types []TypeSpec `yaml:"types"`

	path string
}

// TypeSpec declares one class or interface.
type TypeSpec struct {
	Name string `yaml:"name"`

	// Kind is "class" (default) or "interface".
	Kind string `yaml:"kind,omitempty"`

	Abstract bool `yaml:"abstract,omitempty"`
	Final    bool `yaml:"final,omitempty"`

	// Super is the superclass of a class. Defaults to the root type.
	// Not valid on interfaces.
	Super string `yaml:"super,omitempty"`

	// Interfaces are the implemented interfaces of a class, or the
	// super-interfaces of an interface.
	Interfaces []string `yaml:"interfaces,omitempty"`

	Constructors []MemberSpec `yaml:"constructors,omitempty"`
	Methods      []MemberSpec `yaml:"methods,omitempty"`
	Fields       []MemberSpec `yaml:"fields,omitempty"`
}

// MemberSpec declares a constructor, method or field.
type MemberSpec struct {
	// Name is required for methods and fields; constructors have none.
	Name string `yaml:"name,omitempty"`

	Params []string `yaml:"params,omitempty"`

	// Returns is the method result type; empty means void.
	Returns string `yaml:"returns,omitempty"`

	// Type is the field type.
	Type string `yaml:"type,omitempty"`

	Static     bool   `yaml:"static,omitempty"`
	Visibility string `yaml:"visibility,omitempty"`
}

func (t *TypeSpec) isInterface() bool { return t.Kind == "interface" }

// LoadFile reads and validates a schema file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes and validates schema content. The path argument is used
// only for error messages.
func Parse(data []byte, path string) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	f.path = path
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Load reads every file at paths and applies them together to u.
func Load(u *ts.Universe, paths ...string) error {
	files := make([]*File, 0, len(paths))
	for _, p := range paths {
		f, err := LoadFile(p)
		if err != nil {
			return err
		}
		files = append(files, f)
	}
	return Apply(u, files...)
}

// validate checks what can be checked without a universe.
func (f *File) validate() error {
	seen := make(map[string]bool)
	for i, t := range f.Types {
		where := fmt.Sprintf("%s: types[%d]", f.path, i)
		if t.Name == "" {
			return fmt.Errorf("%s: name is required", where)
		}
		where = fmt.Sprintf("%s (%s)", where, t.Name)
		if seen[t.Name] {
			return fmt.Errorf("%s: declared twice", where)
		}
		seen[t.Name] = true

		switch t.Kind {
		case "", "class":
		case "interface":
			if t.Super != "" {
				return fmt.Errorf("%s: interfaces have no superclass; list super-interfaces under interfaces", where)
			}
			if len(t.Constructors) > 0 {
				return fmt.Errorf("%s: interfaces have no constructors", where)
			}
			if t.Final {
				return fmt.Errorf("%s: interfaces cannot be final", where)
			}
		default:
			return fmt.Errorf("%s: unknown kind %q", where, t.Kind)
		}
		if t.Abstract && t.Final {
			return fmt.Errorf("%s: abstract and final are mutually exclusive", where)
		}

		for j, m := range t.Constructors {
			if m.Name != "" || m.Returns != "" || m.Type != "" || m.Static {
				return fmt.Errorf("%s: constructors[%d]: only params and visibility are allowed", where, j)
			}
		}
		for j, m := range t.Methods {
			if m.Name == "" {
				return fmt.Errorf("%s: methods[%d]: name is required", where, j)
			}
			if m.Type != "" {
				return fmt.Errorf("%s: methods[%d] (%s): use returns, not type", where, j, m.Name)
			}
		}
		for j, m := range t.Fields {
			if m.Name == "" {
				return fmt.Errorf("%s: fields[%d]: name is required", where, j)
			}
			if m.Type == "" {
				return fmt.Errorf("%s: fields[%d] (%s): type is required", where, j, m.Name)
			}
			if len(m.Params) > 0 || m.Returns != "" {
				return fmt.Errorf("%s: fields[%d] (%s): fields take no params or returns", where, j, m.Name)
			}
		}
		for _, group := range [][]MemberSpec{t.Constructors, t.Methods, t.Fields} {
			for _, m := range group {
				if _, ok := ts.ParseVisibility(m.Visibility); !ok {
					return fmt.Errorf("%s: member %q: unknown visibility %q", where, m.Name, m.Visibility)
				}
				for k, p := range m.Params {
					if strings.HasSuffix(strings.TrimSpace(p), "...") && k != len(m.Params)-1 {
						return fmt.Errorf("%s: member %q: only the last parameter can be variadic", where, m.Name)
					}
				}
			}
		}
	}
	return nil
}

// Apply declares the types of files in u in three passes: names, then
// supertypes, then members, so that declarations may refer to each other
// in any order. On error, u keeps the declarations made so far.
func Apply(u *ts.Universe, files ...*File) error {
	type pending struct {
		spec  *TypeSpec
		class *ts.TClass
		path  string
	}
	var all []pending

	for _, f := range files {
		for i := range f.Types {
			spec := &f.Types[i]
			c, err := u.Declare(spec.Name, spec.isInterface())
			if err != nil {
				return fmt.Errorf("%s: %w", f.path, err)
			}
			c.IsAbstract = spec.Abstract
			c.IsFinal = spec.Final
			all = append(all, pending{spec, c, f.path})
		}
	}

	for _, p := range all {
		var super *ts.TClass
		if p.spec.Super != "" {
			s, err := u.Lookup(p.spec.Super)
			if err != nil {
				return fmt.Errorf("%s: %s: %w", p.path, p.spec.Name, err)
			}
			super = s
		}
		ifaces := make([]*ts.TClass, 0, len(p.spec.Interfaces))
		for _, name := range p.spec.Interfaces {
			i, err := u.Lookup(name)
			if err != nil {
				return fmt.Errorf("%s: %s: %w", p.path, p.spec.Name, err)
			}
			ifaces = append(ifaces, i)
		}
		if err := u.SetSupertypes(p.class, super, ifaces...); err != nil {
			return fmt.Errorf("%s: %w", p.path, err)
		}
	}

	for _, p := range all {
		if err := declareMembers(u, p.class, p.spec); err != nil {
			return fmt.Errorf("%s: %w", p.path, err)
		}
	}
	return nil
}

func declareMembers(u *ts.Universe, c *ts.TClass, spec *TypeSpec) error {
	for _, m := range spec.Constructors {
		params, variadic, err := parseParams(u, m.Params)
		if err != nil {
			return fmt.Errorf("%s constructor: %w", c.Name, err)
		}
		if err := declare(c, ts.NewConstructor(params...), m, variadic); err != nil {
			return err
		}
	}
	for _, m := range spec.Methods {
		params, variadic, err := parseParams(u, m.Params)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", c.Name, m.Name, err)
		}
		var result ts.Type = ts.Void
		if m.Returns != "" && m.Returns != "void" {
			if result, err = u.ParseType(m.Returns); err != nil {
				return fmt.Errorf("%s.%s: %w", c.Name, m.Name, err)
			}
		}
		if err := declare(c, ts.NewMethod(m.Name, result, params...), m, variadic); err != nil {
			return err
		}
	}
	for _, m := range spec.Fields {
		typ, err := u.ParseType(m.Type)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", c.Name, m.Name, err)
		}
		if err := declare(c, ts.NewField(m.Name, typ), m, false); err != nil {
			return err
		}
	}
	return nil
}

func declare(c *ts.TClass, member *ts.Member, spec MemberSpec, variadic bool) error {
	vis, _ := ts.ParseVisibility(spec.Visibility)
	member.WithVisibility(vis)
	if spec.Static {
		member.AsStatic()
	}
	if variadic {
		member.WithVariadic()
	}
	_, err := c.Declare(member)
	return err
}

func parseParams(u *ts.Universe, exprs []string) ([]ts.Type, bool, error) {
	params := make([]ts.Type, 0, len(exprs))
	variadic := false
	for i, e := range exprs {
		e = strings.TrimSpace(e)
		if i == len(exprs)-1 && strings.HasSuffix(e, "...") {
			variadic = true
		}
		t, err := u.ParseType(e)
		if err != nil {
			return nil, false, err
		}
		params = append(params, t)
	}
	return params, variadic, nil
}
