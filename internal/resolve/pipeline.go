package resolve

import (
	"iter"
	"slices"

	ts "github.com/funvibe/meditation/internal/typesystem"
	"go.uber.org/zap"
)

// Selection is the state threaded through a selector pipeline.
type Selection struct {
	Universe   *ts.Universe
	Args       []ts.Type
	Candidates iter.Seq[*ts.Member]
	Err        error

	log *zap.Logger
}

// Operation is one stage of a selector pipeline.
type Operation interface {
	Apply(s *Selection) *Selection
}

// Pipeline represents a sequence of selection stages.
type Pipeline struct {
	operations []Operation
}

func NewPipeline(operations ...Operation) *Pipeline {
	return &Pipeline{operations: operations}
}

// Run executes the pipeline. A stage that sets Err stops the run.
func (p *Pipeline) Run(initial *Selection) *Selection {
	s := initial
	if s.log == nil {
		s.log = zap.NewNop()
	}
	for _, op := range p.operations {
		s = op.Apply(s)
		if s.Err != nil {
			break
		}
	}
	return s
}

type filterOperation struct {
	pred func(*ts.Member, []ts.Type) bool
}

func (f filterOperation) Apply(s *Selection) *Selection {
	in := s.Candidates
	s.Candidates = func(yield func(*ts.Member) bool) {
		for m := range in {
			if f.pred(m, s.Args) && !yield(m) {
				return
			}
		}
	}
	return s
}

type compatibleOperation struct{}

func (compatibleOperation) Apply(s *Selection) *Selection {
	in := s.Candidates
	s.Candidates = func(yield func(*ts.Member) bool) {
		for m := range in {
			if _, ok := Weight(s.Universe, m, s.Args); ok && !yield(m) {
				return
			}
		}
	}
	return s
}

type mostSpecificOperation struct{}

func (mostSpecificOperation) Apply(s *Selection) *Selection {
	m, err := selectMostSpecific(s.Universe, s.Candidates, s.Args, s.log)
	if err != nil {
		s.Err = err
		s.Candidates = func(func(*ts.Member) bool) {}
		return s
	}
	s.Candidates = func(yield func(*ts.Member) bool) { yield(m) }
	return s
}

type useAnyOperation struct{}

func (useAnyOperation) Apply(s *Selection) *Selection {
	in := s.Candidates
	s.Candidates = func(yield func(*ts.Member) bool) {
		in(func(m *ts.Member) bool {
			yield(m)
			return false
		})
	}
	return s
}

// Selector describes which members of a type to consider and how to narrow
// them to one. Selectors are values; every builder method returns a copy.
type Selector struct {
	kind       ts.MemberKind
	name       string
	staticOnly bool
	ops        []Operation
}

// Constructors starts a selector over the declared constructors.
func Constructors() Selector { return Selector{kind: ts.Constructor} }

// Methods starts a selector over the visible methods.
func Methods() Selector { return Selector{kind: ts.Method} }

// Fields starts a selector over the visible fields.
func Fields() Selector { return Selector{kind: ts.Field} }

// For starts a selector over members of the given kind.
func For(kind ts.MemberKind) Selector { return Selector{kind: kind} }

func (s Selector) Kind() ts.MemberKind { return s.kind }

func (s Selector) with(op Operation) Selector {
	s.ops = append(slices.Clip(s.ops), op)
	return s
}

// Filter keeps members satisfying pred.
func (s Selector) Filter(pred func(*ts.Member) bool) Selector {
	return s.with(filterOperation{pred: func(m *ts.Member, _ []ts.Type) bool { return pred(m) }})
}

// FilterArgs keeps members satisfying pred for the supplied argument types.
func (s Selector) FilterArgs(pred func(*ts.Member, []ts.Type) bool) Selector {
	return s.with(filterOperation{pred: pred})
}

// Named keeps members called name.
func (s Selector) Named(name string) Selector {
	s.name = name
	return s.Filter(func(m *ts.Member) bool { return m.Name == name })
}

// Compatible keeps members able to accept the argument types.
func (s Selector) Compatible() Selector { return s.with(compatibleOperation{}) }

// MostSpecific narrows to the single best match, failing on ties.
func (s Selector) MostSpecific() Selector { return s.with(mostSpecificOperation{}) }

// UseAny keeps the first remaining member.
func (s Selector) UseAny() Selector { return s.with(useAnyOperation{}) }

// StaticOnly restricts the walk to static members.
func (s Selector) StaticOnly() Selector {
	s.staticOnly = true
	return s
}
