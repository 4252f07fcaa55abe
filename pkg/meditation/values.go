package meditation

import (
	"fmt"
	"strings"
	"sync"

	ts "github.com/funvibe/meditation/internal/typesystem"
)

// Object is an instance of a class of the runtime's universe.
// Its fields are keyed by member, so a shadowed field and the field that
// shadows it are stored separately.
type Object struct {
	class *ts.TClass

	mu     sync.RWMutex
	fields map[*ts.Member]any

	// State is free for implementations bound to the class.
	State any
}

func (o *Object) Class() *ts.TClass { return o.class }

func (o *Object) String() string {
	return fmt.Sprintf("%s@%p", o.class.Name, o)
}

func (o *Object) load(f *ts.Member) (any, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, ok := o.fields[f]
	return v, ok
}

func (o *Object) store(f *ts.Member, v any) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.fields[f]; !ok {
		return false
	}
	o.fields[f] = v
	return true
}

// Boxed is a primitive value held by reference.
type Boxed struct {
	Prim  ts.Primitive
	Value any
}

func (b *Boxed) String() string { return fmt.Sprintf("%v", b.Value) }

// Box wraps a Go primitive value. It panics on values without a primitive type.
func Box(v any) *Boxed {
	p, ok := primitiveOf(v)
	if !ok {
		panic(fmt.Sprintf("meditation: cannot box %T", v))
	}
	return &Boxed{Prim: p, Value: canonical(p, v)}
}

// Array is an array value with a fixed element type.
type Array struct {
	Elem  ts.Type
	Items []any
}

// NewArray builds an array of elem holding items as given.
func NewArray(elem ts.Type, items ...any) *Array {
	return &Array{Elem: elem, Items: items}
}

func (a *Array) Type() ts.TArray { return ts.ArrayOf(a.Elem) }

func (a *Array) Len() int { return len(a.Items) }

func (a *Array) String() string {
	parts := make([]string, len(a.Items))
	for i, it := range a.Items {
		parts[i] = fmt.Sprintf("%v", it)
	}
	return a.Elem.String() + "{" + strings.Join(parts, ", ") + "}"
}
