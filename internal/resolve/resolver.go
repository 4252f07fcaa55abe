// Package resolve locates the constructor, method or field of a type that
// best fits a list of argument types.
//
// Every call walks the type hierarchy again; nothing is cached.
package resolve

import (
	"errors"

	"github.com/funvibe/meditation/internal/hierarchy"
	"github.com/funvibe/meditation/internal/logger"
	ts "github.com/funvibe/meditation/internal/typesystem"
	"go.uber.org/zap"
)

// Resolver resolves members against the types of one universe.
type Resolver struct {
	universe *ts.Universe
	log      *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger routes candidate scoring traces to l at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) {
		r.log = logger.OrNop(l)
	}
}

func New(u *ts.Universe, opts ...Option) *Resolver {
	r := &Resolver{universe: u, log: logger.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) Universe() *ts.Universe { return r.universe }

// Distance is Distance over the resolver's universe.
func (r *Resolver) Distance(required, supplied ts.Type) int {
	return Distance(r.universe, required, supplied)
}

// Weight is Weight over the resolver's universe.
func (r *Resolver) Weight(m *ts.Member, args []ts.Type) (int, bool) {
	return Weight(r.universe, m, args)
}

// Resolve finds the member of t of the given kind that best accepts args.
// An empty name matches any member name. Fields are matched by name only.
func (r *Resolver) Resolve(t *ts.TClass, kind ts.MemberKind, name string, args []ts.Type) (*ts.Member, error) {
	sel := For(kind)
	if name != "" {
		sel = sel.Named(name)
	}
	if kind == ts.Field {
		if name == "" {
			return nil, newConfigurationError("field lookup needs a name")
		}
		return r.Select(t, sel.UseAny(), nil)
	}
	return r.Select(t, sel.MostSpecific(), args)
}

// Select runs sel over the members of t. The pipeline must leave exactly
// one member.
func (r *Resolver) Select(t *ts.TClass, sel Selector, args []ts.Type) (*ts.Member, error) {
	if t == nil {
		return nil, newConfigurationError("nil target type")
	}
	if err := validateArgs(args); err != nil {
		return nil, err
	}

	log := r.log.With(zap.String("type", t.Name), zap.Stringer("kind", sel.kind), zap.String("name", sel.name))
	initial := &Selection{
		Universe:   r.universe,
		Args:       args,
		Candidates: hierarchy.Members(t, sel.kind, sel.staticOnly),
		log:        log,
	}
	result := NewPipeline(sel.ops...).Run(initial)

	notFound := &NotFoundError{Type: t, Kind: sel.kind, Name: sel.name, Args: args}
	if result.Err != nil {
		var nf *NotFoundError
		if errors.As(result.Err, &nf) {
			return nil, notFound
		}
		log.Debug("resolution failed", zap.Error(result.Err))
		return nil, result.Err
	}

	var found []*ts.Member
	for m := range result.Candidates {
		found = append(found, m)
	}
	switch len(found) {
	case 0:
		return nil, notFound
	case 1:
		log.Debug("resolved", zap.Stringer("member", found[0]))
		return found[0], nil
	default:
		return nil, &AmbiguousError{Args: args, Candidates: found}
	}
}

func validateArgs(args []ts.Type) error {
	for i, a := range args {
		if a == nil {
			return newConfigurationError("argument %d has no type", i)
		}
		if a == ts.Void {
			return newConfigurationError("argument %d is void", i)
		}
		if arr, ok := a.(ts.TArray); ok && arr.Elem == nil {
			return newConfigurationError("argument %d is an array without element type", i)
		}
	}
	return nil
}
