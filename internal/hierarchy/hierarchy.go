// Package hierarchy enumerates the members visible on a type by walking
// its ancestors. Every walk is lazy: types are visited only as the
// consumer asks for more members.
package hierarchy

import (
	"iter"

	"github.com/funvibe/meditation/internal/typesystem"
)

// SuperTypes yields the proper ancestors of c breadth-first, superclass
// before interfaces, each ancestor once.
func SuperTypes(c *typesystem.TClass) iter.Seq[*typesystem.TClass] {
	return func(yield func(*typesystem.TClass) bool) {
		visited := map[*typesystem.TClass]bool{c: true}
		queue := parents(c)
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			if visited[cur] {
				continue
			}
			visited[cur] = true
			if !yield(cur) {
				return
			}
			queue = append(queue, parents(cur)...)
		}
	}
}

// Lineage yields c itself followed by SuperTypes(c).
func Lineage(c *typesystem.TClass) iter.Seq[*typesystem.TClass] {
	return func(yield func(*typesystem.TClass) bool) {
		if !yield(c) {
			return
		}
		for s := range SuperTypes(c) {
			if !yield(s) {
				return
			}
		}
	}
}

// Constructors yields the constructors declared by c. Constructors are never inherited.
func Constructors(c *typesystem.TClass) iter.Seq[*typesystem.Member] {
	return func(yield func(*typesystem.Member) bool) {
		for _, m := range c.DeclaredConstructors() {
			if !yield(m) {
				return
			}
		}
	}
}

// Methods yields the methods visible on c, most-derived declaration first.
// A method whose signature was already yielded by a more-derived type is
// suppressed. With staticOnly, instance methods are skipped and interfaces
// contribute nothing beyond c itself, since their statics are not inherited.
func Methods(c *typesystem.TClass, staticOnly bool) iter.Seq[*typesystem.Member] {
	return members(c, staticOnly, staticOnly, (*typesystem.TClass).DeclaredMethods)
}

// Fields yields the fields visible on c, deduplicated by name, most-derived
// first. Interface constants are inherited, so with staticOnly the walk
// still covers every ancestor.
func Fields(c *typesystem.TClass, staticOnly bool) iter.Seq[*typesystem.Member] {
	return members(c, staticOnly, false, (*typesystem.TClass).DeclaredFields)
}

// Members dispatches on kind.
func Members(c *typesystem.TClass, kind typesystem.MemberKind, staticOnly bool) iter.Seq[*typesystem.Member] {
	switch kind {
	case typesystem.Constructor:
		return Constructors(c)
	case typesystem.Field:
		return Fields(c, staticOnly)
	default:
		return Methods(c, staticOnly)
	}
}

func members(c *typesystem.TClass, staticOnly, skipInterfaces bool, declared func(*typesystem.TClass) []*typesystem.Member) iter.Seq[*typesystem.Member] {
	return func(yield func(*typesystem.Member) bool) {
		emitted := make(map[string]bool)
		for t := range Lineage(c) {
			if skipInterfaces && t != c && t.IsInterface {
				continue
			}
			for _, m := range declared(t) {
				if staticOnly && !m.Static {
					continue
				}
				sig := m.Signature()
				if emitted[sig] {
					continue
				}
				emitted[sig] = true
				if !yield(m) {
					return
				}
			}
		}
	}
}

func parents(c *typesystem.TClass) []*typesystem.TClass {
	out := make([]*typesystem.TClass, 0, len(c.Interfaces)+1)
	if c.Super != nil {
		out = append(out, c.Super)
	}
	return append(out, c.Interfaces...)
}
