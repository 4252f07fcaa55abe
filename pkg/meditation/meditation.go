package meditation

import (
	"fmt"

	"github.com/funvibe/meditation/internal/invoke"
	"github.com/funvibe/meditation/internal/resolve"
	ts "github.com/funvibe/meditation/internal/typesystem"
)

// Meditation wraps a value, or a type for static access, and chains
// member calls on it. Every step returns a new Meditation.
//
// Failures are sticky: after a step fails, the remaining steps do nothing
// and Err reports the first failure.
type Meditation struct {
	rt         *Runtime
	value      any
	class      *ts.TClass // set for static access
	accessible bool
	err        error
}

// On wraps a value of the runtime: an *Object, a string, a primitive,
// a *Boxed or an *Array.
func On(rt *Runtime, value any) Meditation {
	return Meditation{rt: rt, value: value}
}

// OnClass wraps a type for constructor and static member access.
func OnClass(rt *Runtime, c *ts.TClass) Meditation {
	m := Meditation{rt: rt, class: c}
	if c == nil {
		m.err = &resolve.ConfigurationError{Reason: "nil type"}
	}
	return m
}

// OnType wraps the type registered under name.
func OnType(rt *Runtime, name string) Meditation {
	c, err := rt.universe.Lookup(name)
	if err != nil {
		return Meditation{rt: rt, err: &resolve.ConfigurationError{Reason: "type lookup", Err: err}}
	}
	return OnClass(rt, c)
}

func (m Meditation) Err() error { return m.err }

// IsType reports whether the wrapped target is a type rather than a value.
func (m Meditation) IsType() bool { return m.class != nil }

// Type is the wrapped type, or the class of the wrapped value.
func (m Meditation) Type() (*ts.TClass, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.class != nil {
		return m.class, nil
	}
	return m.rt.marshaller.ClassOf(m.value)
}

// Accessible returns a Meditation whose calls use the accessibility override.
func (m Meditation) Accessible(on bool) Meditation {
	m.accessible = on
	return m
}

// Get returns the wrapped value. For a type it returns the *ts.TClass.
func (m Meditation) Get() (any, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.class != nil {
		return m.class, nil
	}
	return m.value, nil
}

// Consume hands the wrapped value to fn and returns m unchanged.
func (m Meditation) Consume(fn func(any)) Meditation {
	if m.err != nil {
		return m
	}
	v, _ := m.Get()
	fn(v)
	return m
}

// Create instantiates the wrapped type, or the class of the wrapped value,
// through its most specific constructor.
func (m Meditation) Create(args ...any) Meditation {
	return m.CreateWith(resolve.Constructors().MostSpecific(), args...)
}

func (m Meditation) CreateWith(sel resolve.Selector, args ...any) Meditation {
	if m.err != nil {
		return m
	}
	member, err := m.resolve(sel, args)
	if err != nil {
		return m.fail(err)
	}
	v, err := m.rt.caller(member, nil, m.accessible).Invoke(args...)
	if err != nil {
		return m.fail(err)
	}
	return m.next(v)
}

// Call invokes the most specific method called name. A method without a
// result keeps the current target.
func (m Meditation) Call(name string, args ...any) Meditation {
	return m.CallWith(resolve.Methods().Named(name).MostSpecific(), args...)
}

func (m Meditation) CallWith(sel resolve.Selector, args ...any) Meditation {
	if m.err != nil {
		return m
	}
	member, err := m.resolve(sel, args)
	if err != nil {
		return m.fail(err)
	}
	v, err := m.rt.caller(member, m.value, m.accessible).Invoke(args...)
	if err != nil {
		return m.fail(err)
	}
	if v == invoke.Void {
		return m
	}
	return m.next(v)
}

// Field moves to the value of the field called name.
func (m Meditation) Field(name string) Meditation {
	return m.FieldWith(resolve.Fields().Named(name).UseAny())
}

func (m Meditation) FieldWith(sel resolve.Selector) Meditation {
	if m.err != nil {
		return m
	}
	member, err := m.resolve(sel, nil)
	if err != nil {
		return m.fail(err)
	}
	v, err := m.rt.caller(member, m.value, m.accessible).Get()
	if err != nil {
		return m.fail(err)
	}
	return m.next(v)
}

// GetField reads the field called name.
func (m Meditation) GetField(name string) (any, error) {
	return m.Field(name).Get()
}

// Set writes the field called name and keeps the current target.
func (m Meditation) Set(name string, value any) Meditation {
	return m.SetWith(resolve.Fields().Named(name).UseAny(), value)
}

func (m Meditation) SetWith(sel resolve.Selector, value any) Meditation {
	if m.err != nil {
		return m
	}
	member, err := m.resolve(sel, nil)
	if err != nil {
		return m.fail(err)
	}
	if err := m.rt.caller(member, m.value, m.accessible).Set(value); err != nil {
		return m.fail(err)
	}
	return m
}

func (m Meditation) String() string {
	switch {
	case m.err != nil:
		return fmt.Sprintf("Meditation(error: %v)", m.err)
	case m.class != nil:
		return fmt.Sprintf("Meditation(type %s)", m.class.Name)
	}
	return fmt.Sprintf("Meditation(%v)", m.value)
}

func (m Meditation) resolve(sel resolve.Selector, args []any) (*ts.Member, error) {
	c, err := m.Type()
	if err != nil {
		return nil, err
	}
	if m.class != nil && sel.Kind() != ts.Constructor {
		sel = sel.StaticOnly()
	}
	types, err := m.rt.marshaller.TypesOf(args)
	if err != nil {
		return nil, err
	}
	return m.rt.resolver.Select(c, sel, types)
}

func (m Meditation) next(v any) Meditation {
	return Meditation{rt: m.rt, value: v, accessible: m.accessible}
}

func (m Meditation) fail(err error) Meditation {
	m.err = err
	return m
}
