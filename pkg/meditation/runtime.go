// Package meditation resolves and invokes constructors, methods and fields
// of a type model through a fluent API.
//
// A Runtime holds the universe of types, the Go implementations bound to
// their members and the storage of static fields:
//
//	rt := meditation.NewRuntime(u)
//	rt.Implement("Counter", "add(int)", func(this *meditation.Object, args []any) (any, error) {
//		...
//	})
//	n, err := meditation.OnType(rt, "Counter").Create().Call("add", 2).Get()
package meditation

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/funvibe/meditation/internal/hierarchy"
	"github.com/funvibe/meditation/internal/holder"
	"github.com/funvibe/meditation/internal/invoke"
	"github.com/funvibe/meditation/internal/logger"
	"github.com/funvibe/meditation/internal/resolve"
	ts "github.com/funvibe/meditation/internal/typesystem"
	"go.uber.org/zap"
)

// Func implements a constructor or method. this is nil for static methods;
// for constructors it is the freshly allocated instance. Arguments are
// already coerced to the parameter representations.
type Func func(this *Object, args []any) (any, error)

// Runtime binds implementations to members of a universe.
//
// Thread-safe: bindings may be added while other goroutines call members.
type Runtime struct {
	universe   *ts.Universe
	resolver   *resolve.Resolver
	marshaller *Marshaller
	access     *invoke.Access
	log        *zap.Logger

	mu       sync.RWMutex
	bindings map[*ts.Member]Func
	statics  map[*ts.Member]*holder.SynchronizedSingle[any]
}

// Option configures a Runtime.
type Option func(*Runtime)

func WithLogger(l *zap.Logger) Option {
	return func(r *Runtime) {
		r.log = logger.OrNop(l)
	}
}

func NewRuntime(u *ts.Universe, opts ...Option) *Runtime {
	r := &Runtime{
		universe:   u,
		marshaller: NewMarshaller(u),
		access:     invoke.NewAccess(),
		log:        logger.Nop(),
		bindings:   make(map[*ts.Member]Func),
		statics:    make(map[*ts.Member]*holder.SynchronizedSingle[any]),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.resolver = resolve.New(u, resolve.WithLogger(r.log.Named("resolve")))
	return r
}

func (r *Runtime) Universe() *ts.Universe     { return r.universe }
func (r *Runtime) Resolver() *resolve.Resolver { return r.resolver }
func (r *Runtime) Marshaller() *Marshaller     { return r.marshaller }
func (r *Runtime) Access() *invoke.Access      { return r.access }

// Bind attaches fn to a constructor or method.
func (r *Runtime) Bind(m *ts.Member, fn Func) error {
	if m == nil || fn == nil {
		return fmt.Errorf("bind: nil member or implementation")
	}
	if m.Kind == ts.Field {
		return fmt.Errorf("bind %v: fields are stored, not implemented", m)
	}
	if m.Owner == nil {
		return fmt.Errorf("bind %v: member is not declared on a type", m)
	}
	if owner, err := r.universe.Lookup(m.Owner.Name); err != nil || owner != m.Owner {
		return fmt.Errorf("bind %v: %s does not belong to this universe", m, m.Owner.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[m] = fn
	return nil
}

// Implement binds fn to the member of typeName declared with signature,
// e.g. "add(int)" or "<init>(String)".
func (r *Runtime) Implement(typeName, signature string, fn Func) error {
	c, err := r.universe.Lookup(typeName)
	if err != nil {
		return err
	}
	for _, list := range [][]*ts.Member{c.DeclaredConstructors(), c.DeclaredMethods()} {
		for _, m := range list {
			if m.Signature() == signature {
				return r.Bind(m, fn)
			}
		}
	}
	return fmt.Errorf("implement: %s declares no %s", typeName, signature)
}

// BindGo binds an ordinary Go function through reflection. Instance
// methods and constructors take the *Object first; the remaining
// parameters receive the coerced arguments. A variadic Go function gets
// the variadic tail spread. An error as last result is returned as the
// call's failure.
func (r *Runtime) BindGo(m *ts.Member, fn any) error {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		return fmt.Errorf("bind %v: %T is not a function", m, fn)
	}
	return r.Bind(m, reflectFunc(m, fv))
}

func (r *Runtime) binding(m *ts.Member) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.bindings[m]
	return fn, ok
}

// NewObject allocates an instance of c with every instance field of c and
// its ancestors at its zero value. No constructor runs.
func (r *Runtime) NewObject(c *ts.TClass) (*Object, error) {
	if c.IsInterface || c.IsAbstract {
		return nil, fmt.Errorf("cannot instantiate %s", c.Name)
	}
	obj := &Object{class: c, fields: make(map[*ts.Member]any)}
	for t := range hierarchy.Lineage(c) {
		for _, f := range t.DeclaredFields() {
			if !f.Static {
				obj.fields[f] = Zero(f.Result)
			}
		}
	}
	return obj, nil
}

func (r *Runtime) static(f *ts.Member) *holder.SynchronizedSingle[any] {
	r.mu.Lock()
	defer r.mu.Unlock()
	cell, ok := r.statics[f]
	if !ok {
		cell = holder.NewSynchronizedSingle(Zero(f.Result))
		r.statics[f] = cell
	}
	return cell
}

// Call implements invoke.Host.
func (r *Runtime) Call(m *ts.Member, target any, args []any) (any, error) {
	fn, ok := r.binding(m)
	if !ok {
		return nil, invoke.ErrUnbound
	}
	coerced, err := r.marshaller.Arguments(m, args)
	if err != nil {
		return nil, err
	}

	r.log.Debug("call", zap.Stringer("member", m), zap.Int("args", len(coerced)))
	switch {
	case m.Kind == ts.Constructor:
		obj, err := r.NewObject(m.Owner)
		if err != nil {
			return nil, err
		}
		if _, err := fn(obj, coerced); err != nil {
			return nil, err
		}
		return obj, nil
	case m.Static:
		return r.result(m, fn, nil, coerced)
	default:
		this, err := r.receiver(m, target)
		if err != nil {
			return nil, err
		}
		return r.result(m, fn, this, coerced)
	}
}

func (r *Runtime) result(m *ts.Member, fn Func, this *Object, args []any) (any, error) {
	out, err := fn(this, args)
	if err != nil {
		return nil, err
	}
	if m.Result == ts.Void {
		return nil, nil
	}
	v, err := r.marshaller.Coerce(m.Result, out)
	if err != nil {
		return nil, fmt.Errorf("result: %w", err)
	}
	return v, nil
}

// Load implements invoke.Host.
func (r *Runtime) Load(f *ts.Member, target any) (any, error) {
	if f.Static {
		return r.static(f).Get(), nil
	}
	this, err := r.receiver(f, target)
	if err != nil {
		return nil, err
	}
	v, ok := this.load(f)
	if !ok {
		return nil, fmt.Errorf("%v has no field %s", this, f.Signature())
	}
	return v, nil
}

// Store implements invoke.Host.
func (r *Runtime) Store(f *ts.Member, target any, value any) error {
	v, err := r.marshaller.Coerce(f.Result, value)
	if err != nil {
		return err
	}
	if f.Static {
		r.static(f).Set(v)
		return nil
	}
	this, err := r.receiver(f, target)
	if err != nil {
		return err
	}
	if !this.store(f, v) {
		return fmt.Errorf("%v has no field %s", this, f.Signature())
	}
	return nil
}

func (r *Runtime) receiver(m *ts.Member, target any) (*Object, error) {
	this, ok := target.(*Object)
	if !ok || this == nil {
		return nil, fmt.Errorf("receiver %s is not an instance", describe(target))
	}
	if !r.universe.IsAssignable(m.Owner, this.class) {
		return nil, fmt.Errorf("receiver %v is not a %s", this, m.Owner.Name)
	}
	return this, nil
}

// caller prepares an invocation of m on target.
func (r *Runtime) caller(m *ts.Member, target any, accessible bool) *invoke.Caller {
	return invoke.New(r, r.access, m, target,
		invoke.Accessible(accessible),
		invoke.WithLogger(r.log.Named("invoke")))
}

var (
	objectType = reflect.TypeOf((*Object)(nil))
	errorType  = reflect.TypeOf((*error)(nil)).Elem()
)

func reflectFunc(m *ts.Member, fv reflect.Value) Func {
	ft := fv.Type()
	withThis := !m.Static && ft.NumIn() > 0 && ft.In(0) == objectType

	return func(this *Object, args []any) (any, error) {
		in := make([]reflect.Value, 0, ft.NumIn())
		if withThis {
			in = append(in, reflect.ValueOf(this))
		}
		if m.Variadic && ft.IsVariadic() && len(args) > 0 {
			if tail, ok := args[len(args)-1].(*Array); ok {
				args = append(args[:len(args)-1:len(args)-1], tail.Items...)
			}
		}
		for i, a := range args {
			idx := len(in)
			var target reflect.Type
			switch {
			case ft.IsVariadic() && idx >= ft.NumIn()-1:
				target = ft.In(ft.NumIn() - 1).Elem()
			case idx < ft.NumIn():
				target = ft.In(idx)
			default:
				return nil, fmt.Errorf("argument %d: function takes %d parameters", i, ft.NumIn())
			}
			v, err := toReflect(a, target)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i, err)
			}
			in = append(in, v)
		}
		if !ft.IsVariadic() && len(in) != ft.NumIn() {
			return nil, fmt.Errorf("function takes %d parameters, got %d", ft.NumIn(), len(in))
		}

		out := fv.Call(in)
		if n := len(out); n > 0 && ft.Out(n-1) == errorType {
			if err, _ := out[n-1].Interface().(error); err != nil {
				return nil, err
			}
			out = out[:n-1]
		}
		if len(out) == 0 {
			return nil, nil
		}
		return out[0].Interface(), nil
	}
}

func toReflect(v any, target reflect.Type) (reflect.Value, error) {
	if v == nil {
		switch target.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(target), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot pass null as %s", target)
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(target) {
		return rv, nil
	}
	if rv.Type().ConvertibleTo(target) {
		return rv.Convert(target), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot convert %s to %s", rv.Type(), target)
}
