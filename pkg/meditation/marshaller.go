package meditation

import (
	"fmt"

	"github.com/funvibe/meditation/internal/resolve"
	ts "github.com/funvibe/meditation/internal/typesystem"
)

// Marshaller maps Go values onto the types of a universe and converts
// arguments to the representation a parameter expects.
//
// Primitive representations:
//
//	boolean bool     byte  int8    short int16   char   uint16
//	int     int      long  int64   float float32 double float64
//
// int32 is accepted as int. Strings are Go strings, boxed primitives are
// *Boxed, arrays are *Array and class instances are *Object.
type Marshaller struct {
	u *ts.Universe
}

func NewMarshaller(u *ts.Universe) *Marshaller {
	return &Marshaller{u: u}
}

// TypeOf returns the runtime type of a Go value.
func (m *Marshaller) TypeOf(v any) (ts.Type, error) {
	if p, ok := primitiveOf(v); ok {
		return p, nil
	}
	switch val := v.(type) {
	case nil:
		return ts.Null, nil
	case string:
		return m.u.String, nil
	case *Object:
		if val == nil {
			return ts.Null, nil
		}
		return val.class, nil
	case *Boxed:
		if val == nil {
			return ts.Null, nil
		}
		c, ok := m.u.Box(val.Prim)
		if !ok {
			return nil, unsupported("boxed %v", val.Prim)
		}
		return c, nil
	case *Array:
		if val == nil {
			return ts.Null, nil
		}
		if val.Elem == nil {
			return nil, unsupported("array without element type")
		}
		return val.Type(), nil
	}
	return nil, unsupported("Go value of type %T", v)
}

// TypesOf returns the runtime types of an argument list.
func (m *Marshaller) TypesOf(args []any) ([]ts.Type, error) {
	types := make([]ts.Type, len(args))
	for i, a := range args {
		t, err := m.TypeOf(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		types[i] = t
	}
	return types, nil
}

// ClassOf returns the class whose members apply to v. Primitive values
// use their boxed class.
func (m *Marshaller) ClassOf(v any) (*ts.TClass, error) {
	t, err := m.TypeOf(v)
	if err != nil {
		return nil, err
	}
	switch typ := t.(type) {
	case *ts.TClass:
		return typ, nil
	case ts.Primitive:
		if c, ok := m.u.Box(typ); ok {
			return c, nil
		}
	case ts.TArray:
		return m.u.Object, nil
	}
	return nil, &resolve.ConfigurationError{Reason: "the wrapped value is null"}
}

// Coerce converts v to the representation of param, widening, boxing or
// unboxing where the distance rules allow it.
func (m *Marshaller) Coerce(param ts.Type, v any) (any, error) {
	if p, ok := param.(ts.Primitive); ok {
		if b, isBoxed := v.(*Boxed); isBoxed && b != nil {
			v = b.Value
		}
		src, ok := primitiveOf(v)
		if !ok {
			return nil, fmt.Errorf("cannot pass %s as %v", describe(v), param)
		}
		if resolve.PrimitiveDistance(p, src) < 0 {
			return nil, fmt.Errorf("cannot pass %v as %v", src, param)
		}
		return convert(p, v), nil
	}

	if src, ok := primitiveOf(v); ok {
		v = &Boxed{Prim: src, Value: canonical(src, v)}
	}
	typ, err := m.TypeOf(v)
	if err != nil {
		return nil, err
	}
	if resolve.Distance(m.u, param, typ) < 0 {
		return nil, fmt.Errorf("cannot pass %v as %v", typ, param)
	}
	if typ == ts.Null {
		return nil, nil
	}
	return v, nil
}

// Arguments coerces args for a call of member, packing a variadic tail
// into an *Array unless a matching array is passed through.
func (m *Marshaller) Arguments(member *ts.Member, args []any) ([]any, error) {
	fixed := member.FixedParamCount()
	if !member.Variadic && len(args) != len(member.Params) {
		return nil, fmt.Errorf("%v takes %d arguments, got %d", member, len(member.Params), len(args))
	}
	if len(args) < fixed {
		return nil, fmt.Errorf("%v takes at least %d arguments, got %d", member, fixed, len(args))
	}

	out := make([]any, 0, len(member.Params))
	for i := 0; i < fixed; i++ {
		v, err := m.Coerce(member.Params[i], args[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		out = append(out, v)
	}
	if !member.Variadic {
		return out, nil
	}

	tail, _ := member.VarargType()
	rest := args[fixed:]
	if len(rest) == 1 {
		if arr, ok := rest[0].(*Array); ok && arr != nil && arr.Type() == tail {
			return append(out, arr), nil
		}
	}
	packed := &Array{Elem: tail.Elem, Items: make([]any, len(rest))}
	for i, a := range rest {
		v, err := m.Coerce(tail.Elem, a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", fixed+i, err)
		}
		packed.Items[i] = v
	}
	return append(out, packed), nil
}

// Zero is the initial value of a field of type t.
func Zero(t ts.Type) any {
	p, ok := t.(ts.Primitive)
	if !ok {
		return nil
	}
	if p == ts.Boolean {
		return false
	}
	return convert(p, 0)
}

func primitiveOf(v any) (ts.Primitive, bool) {
	switch v.(type) {
	case bool:
		return ts.Boolean, true
	case int8:
		return ts.Byte, true
	case int16:
		return ts.Short, true
	case uint16:
		return ts.Char, true
	case int, int32:
		return ts.Int, true
	case int64:
		return ts.Long, true
	case float32:
		return ts.Float, true
	case float64:
		return ts.Double, true
	}
	return ts.Void, false
}

func canonical(p ts.Primitive, v any) any {
	if p == ts.Int {
		if i, ok := v.(int32); ok {
			return int(i)
		}
	}
	return v
}

// convert widens v, which must be a primitive value convertible to p.
func convert(p ts.Primitive, v any) any {
	if p == ts.Boolean {
		return v.(bool)
	}
	switch p {
	case ts.Float:
		return float32(asFloat(v))
	case ts.Double:
		return asFloat(v)
	}
	i := asInt(v)
	switch p {
	case ts.Byte:
		return int8(i)
	case ts.Short:
		return int16(i)
	case ts.Char:
		return uint16(i)
	case ts.Int:
		return int(i)
	default:
		return i
	}
}

func asInt(v any) int64 {
	switch n := v.(type) {
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case uint16:
		return int64(n)
	case int32:
		return int64(n)
	case int:
		return int64(n)
	case int64:
		return n
	}
	return 0
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float32:
		return float64(n)
	case float64:
		return n
	}
	return float64(asInt(v))
}

func describe(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%T", v)
}

func unsupported(format string, args ...any) error {
	return &resolve.ConfigurationError{Reason: "unsupported " + fmt.Sprintf(format, args...)}
}
