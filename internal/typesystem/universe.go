package typesystem

import (
	"sort"
	"strings"
	"sync"

	"github.com/funvibe/meditation/internal/config"
)

// Universe is a registry of named types. It owns the root type, the
// built-in reference types and the boxing tables.
//
// Thread-safe: definitions and lookups may happen from multiple goroutines.
// Member declarations on a type are not synchronized and should finish
// before the type is shared.
type Universe struct {
	mu    sync.RWMutex
	types map[string]*TClass

	Object       *TClass
	String       *TClass
	Number       *TClass
	Serializable *TClass
	Comparable   *TClass
	CharSequence *TClass
	Cloneable    *TClass

	boxes   map[Primitive]*TClass
	unboxes map[*TClass]Primitive
}

// NewUniverse creates a universe holding only the built-in types.
func NewUniverse() *Universe {
	u := &Universe{
		types:   make(map[string]*TClass),
		boxes:   make(map[Primitive]*TClass),
		unboxes: make(map[*TClass]Primitive),
	}

	u.Object = u.mustAdd(&TClass{Name: config.ObjectTypeName})
	u.Serializable = u.mustAdd(&TClass{Name: config.SerializableTypeName, IsInterface: true})
	u.Comparable = u.mustAdd(&TClass{Name: config.ComparableTypeName, IsInterface: true})
	u.CharSequence = u.mustAdd(&TClass{Name: config.CharSequenceTypeName, IsInterface: true})
	u.Cloneable = u.mustAdd(&TClass{Name: config.CloneableTypeName, IsInterface: true})

	u.String = u.mustAdd(&TClass{
		Name:       config.StringTypeName,
		IsFinal:    true,
		Super:      u.Object,
		Interfaces: []*TClass{u.Serializable, u.Comparable, u.CharSequence},
	})
	u.Number = u.mustAdd(&TClass{
		Name:       config.NumberTypeName,
		IsAbstract: true,
		Super:      u.Object,
		Interfaces: []*TClass{u.Serializable},
	})

	box := func(name string, p Primitive, super *TClass) {
		c := u.mustAdd(&TClass{
			Name:       name,
			IsFinal:    true,
			Super:      super,
			Interfaces: []*TClass{u.Serializable, u.Comparable},
		})
		u.boxes[p] = c
		u.unboxes[c] = p
	}
	box(config.BooleanBoxName, Boolean, u.Object)
	box(config.CharacterBoxName, Char, u.Object)
	box(config.ByteBoxName, Byte, u.Number)
	box(config.ShortBoxName, Short, u.Number)
	box(config.IntegerBoxName, Int, u.Number)
	box(config.LongBoxName, Long, u.Number)
	box(config.FloatBoxName, Float, u.Number)
	box(config.DoubleBoxName, Double, u.Number)

	return u
}

func (u *Universe) mustAdd(c *TClass) *TClass {
	u.types[c.Name] = c
	return c
}

// Lookup returns the class or interface registered under name.
func (u *Universe) Lookup(name string) (*TClass, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	if c, ok := u.types[name]; ok {
		return c, nil
	}
	return nil, NewTypeNotFoundError(name)
}

// MustLookup is Lookup for names known to exist; it panics otherwise.
func (u *Universe) MustLookup(name string) *TClass {
	c, err := u.Lookup(name)
	if err != nil {
		panic(err)
	}
	return c
}

// Types returns every registered class and interface sorted by name.
func (u *Universe) Types() []*TClass {
	u.mu.RLock()
	defer u.mu.RUnlock()
	out := make([]*TClass, 0, len(u.types))
	for _, c := range u.types {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// IsBuiltin reports whether c was created by NewUniverse.
func (u *Universe) IsBuiltin(c *TClass) bool {
	switch c {
	case u.Object, u.String, u.Number, u.Serializable, u.Comparable, u.CharSequence, u.Cloneable:
		return true
	}
	_, boxed := u.unboxes[c]
	return boxed
}

// Declare registers an unlinked type. Classes start as direct subclasses
// of the root; SetSupertypes links them properly.
func (u *Universe) Declare(name string, isInterface bool) (*TClass, error) {
	if name == "" || strings.ContainsAny(name, "[]., \t") {
		return nil, &HierarchyError{Type: name, Reason: "invalid type name"}
	}
	if _, ok := PrimitiveByName(name); ok || name == config.NullTypeName {
		return nil, &HierarchyError{Type: name, Reason: "reserved type name"}
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if _, exists := u.types[name]; exists {
		return nil, &DuplicateTypeError{Name: name}
	}
	c := &TClass{Name: name, IsInterface: isInterface}
	if !isInterface {
		c.Super = u.Object
	}
	u.types[name] = c
	return c, nil
}

// SetSupertypes links c to its superclass and direct interfaces.
// A nil super on a class means the root type.
func (u *Universe) SetSupertypes(c *TClass, super *TClass, interfaces ...*TClass) error {
	if u.IsBuiltin(c) {
		return &HierarchyError{Type: c.Name, Reason: "built-in types cannot be relinked"}
	}
	if c.IsInterface && super != nil {
		return &HierarchyError{Type: c.Name, Reason: "interfaces cannot extend a class"}
	}
	if !c.IsInterface {
		if super == nil {
			super = u.Object
		}
		if super.IsInterface {
			return &HierarchyError{Type: c.Name, Reason: super.Name + " is an interface"}
		}
		if super.IsFinal {
			return &HierarchyError{Type: c.Name, Reason: "cannot extend final " + super.Name}
		}
	}

	seen := make(map[*TClass]bool)
	for _, iface := range interfaces {
		if iface == nil {
			return &HierarchyError{Type: c.Name, Reason: "nil interface"}
		}
		if !iface.IsInterface {
			return &HierarchyError{Type: c.Name, Reason: iface.Name + " is not an interface"}
		}
		if seen[iface] {
			return &HierarchyError{Type: c.Name, Reason: "duplicate interface " + iface.Name}
		}
		seen[iface] = true
	}

	// A supertype that already reaches c would close a cycle.
	candidates := append([]*TClass{}, interfaces...)
	if super != nil {
		candidates = append(candidates, super)
	}
	for _, s := range candidates {
		if s == c || reaches(s, c) {
			return &HierarchyError{Type: c.Name, Reason: "inheritance cycle through " + s.Name}
		}
	}

	c.Super = super
	c.Interfaces = append([]*TClass(nil), interfaces...)
	return nil
}

// DefineClass declares and links a class in one step.
func (u *Universe) DefineClass(name string, super *TClass, interfaces ...*TClass) (*TClass, error) {
	c, err := u.Declare(name, false)
	if err != nil {
		return nil, err
	}
	if err := u.SetSupertypes(c, super, interfaces...); err != nil {
		u.remove(c)
		return nil, err
	}
	return c, nil
}

// DefineInterface declares and links an interface in one step.
func (u *Universe) DefineInterface(name string, supers ...*TClass) (*TClass, error) {
	c, err := u.Declare(name, true)
	if err != nil {
		return nil, err
	}
	if err := u.SetSupertypes(c, nil, supers...); err != nil {
		u.remove(c)
		return nil, err
	}
	return c, nil
}

func (u *Universe) remove(c *TClass) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.types[c.Name] == c {
		delete(u.types, c.Name)
	}
}

// ParseType resolves a type expression: a primitive name, "null",
// a registered type name, or any of those followed by "[]" or "...".
func (u *Universe) ParseType(expr string) (Type, error) {
	expr = strings.TrimSpace(expr)
	if strings.HasSuffix(expr, "[]") {
		elem, err := u.ParseType(strings.TrimSuffix(expr, "[]"))
		if err != nil {
			return nil, err
		}
		return ArrayOf(elem), nil
	}
	if strings.HasSuffix(expr, "...") {
		elem, err := u.ParseType(strings.TrimSuffix(expr, "..."))
		if err != nil {
			return nil, err
		}
		return ArrayOf(elem), nil
	}
	if expr == config.NullTypeName {
		return Null, nil
	}
	if p, ok := PrimitiveByName(expr); ok {
		return p, nil
	}
	c, err := u.Lookup(expr)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ParseTypes resolves a comma separated list of type expressions.
// An empty string is the empty list.
func (u *Universe) ParseTypes(list string) ([]Type, error) {
	list = strings.TrimSpace(list)
	if list == "" {
		return nil, nil
	}
	parts := strings.Split(list, ",")
	out := make([]Type, 0, len(parts))
	for _, p := range parts {
		t, err := u.ParseType(p)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Box returns the boxed class of a primitive.
func (u *Universe) Box(p Primitive) (*TClass, bool) {
	c, ok := u.boxes[p]
	return c, ok
}

// Unbox returns the primitive of a boxed class.
func (u *Universe) Unbox(c *TClass) (Primitive, bool) {
	p, ok := u.unboxes[c]
	return p, ok
}

func reaches(from, target *TClass) bool {
	visited := make(map[*TClass]bool)
	stack := []*TClass{from}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == nil || visited[cur] {
			continue
		}
		if cur == target {
			return true
		}
		visited[cur] = true
		stack = append(stack, cur.Super)
		stack = append(stack, cur.Interfaces...)
	}
	return false
}
