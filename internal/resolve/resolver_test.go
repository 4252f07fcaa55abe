package resolve

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"

	"github.com/funvibe/meditation/internal/config"
	ts "github.com/funvibe/meditation/internal/typesystem"
)

func newResolver(t *testing.T) (*Resolver, *ts.Universe) {
	t.Helper()
	u := ts.NewUniverse()
	return New(u, WithLogger(zaptest.NewLogger(t))), u
}

func TestWeight(t *testing.T) {
	u := ts.NewUniverse()
	integer := u.MustLookup(config.IntegerBoxName)

	fixed := ts.NewMethod("f", nil, u.Object, ts.Long)
	variadic := ts.NewMethod("v", nil, u.String, ts.ArrayOf(u.Object)).WithVariadic()
	primTail := ts.NewMethod("p", nil, ts.ArrayOf(ts.Int)).WithVariadic()

	tests := []struct {
		name   string
		member *ts.Member
		args   []ts.Type
		want   int
		ok     bool
	}{
		{"exact plus widening", fixed, []ts.Type{u.String, ts.Int}, 2 + 1, true},
		{"arity mismatch", fixed, []ts.Type{u.String}, config.Incompatible, false},
		{"incompatible arg", fixed, []ts.Type{u.String, ts.Double}, config.Incompatible, false},
		{"unboxing arg", fixed, []ts.Type{u.Object, integer}, config.UnboxingPenalty + 1, true},
		{"no varargs", variadic, []ts.Type{u.String}, config.VarargsSpreadPenalty, true},
		{"spread varargs", variadic, []ts.Type{u.String, u.String, integer}, config.VarargsSpreadPenalty + 2 + 4, true},
		{"pass through exact", variadic, []ts.Type{u.String, ts.ArrayOf(u.Object)}, 0, true},
		{"pass through covariant", variadic, []ts.Type{u.String, ts.ArrayOf(u.String)}, config.Incompatible, false},
		{"missing fixed", variadic, nil, config.Incompatible, false},
		{"primitive spread", primTail, []ts.Type{ts.Byte, ts.Int}, config.VarargsSpreadPenalty + 2, true},
		{"primitive pass through", primTail, []ts.Type{ts.ArrayOf(ts.Int)}, 0, true},
		{"primitive pass through mismatch", primTail, []ts.Type{ts.ArrayOf(ts.Long)}, config.Incompatible, false},
		{"null spread", variadic, []ts.Type{u.String, ts.Null}, config.VarargsSpreadPenalty, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Weight(u, tt.member, tt.args)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Weight(%v, [%s]) = (%d, %v), want (%d, %v)", tt.member, ts.TypeNames(tt.args), got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestResolve_PrefersNearestSupertypes(t *testing.T) {
	r, u := newResolver(t)
	c, _ := u.DefineClass("Calc", nil)
	loose := c.MustDeclare(ts.NewMethod("f", nil, u.Object, u.Object))
	tight := c.MustDeclare(ts.NewMethod("f", nil, u.String, u.Number))

	got, err := r.Resolve(c, ts.Method, "f", []ts.Type{u.String, ts.Int})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != tight {
		t.Errorf("got %v, want %v", got, tight)
	}

	got, err = r.Resolve(c, ts.Method, "f", []ts.Type{u.Object, u.String})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != loose {
		t.Errorf("got %v, want %v", got, loose)
	}
}

func TestResolve_PrimitiveBeforeBoxing(t *testing.T) {
	r, u := newResolver(t)
	c, _ := u.DefineClass("Calc", nil)
	prim := c.MustDeclare(ts.NewMethod("g", nil, ts.Long))
	c.MustDeclare(ts.NewMethod("g", nil, u.MustLookup(config.IntegerBoxName)))

	got, err := r.Resolve(c, ts.Method, "g", []ts.Type{ts.Int})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != prim {
		t.Errorf("got %v, want %v", got, prim)
	}
}

func TestResolve_SiblingInterfacesAmbiguous(t *testing.T) {
	r, u := newResolver(t)
	c, _ := u.DefineClass("Printer", nil)
	c.MustDeclare(ts.NewMethod("print", nil, u.Comparable))
	c.MustDeclare(ts.NewMethod("print", nil, u.CharSequence))

	_, err := r.Resolve(c, ts.Method, "print", []ts.Type{u.String})
	var amb *AmbiguousError
	if !errors.As(err, &amb) {
		t.Fatalf("expected AmbiguousError, got %v", err)
	}
	if !errors.Is(err, ErrMeditation) {
		t.Errorf("AmbiguousError must match ErrMeditation")
	}
	var names []string
	for _, m := range amb.Candidates {
		names = append(names, m.Signature())
	}
	slices.Sort(names)
	if diff := cmp.Diff([]string{"print(CharSequence)", "print(Comparable)"}, names); diff != "" {
		t.Errorf("candidates mismatch (-want +got):\n%s", diff)
	}
	msg := err.Error()
	if !strings.Contains(msg, "[String]") || strings.Count(msg, "\n\t> ") != 2 {
		t.Errorf("unexpected message: %q", msg)
	}
}

func TestResolve_PositionalTieBreak(t *testing.T) {
	r, u := newResolver(t)
	a, _ := u.DefineClass("A", nil)
	b, _ := u.DefineClass("B", a)
	c, _ := u.DefineClass("Host", nil)
	// Equal weight for (B, B); neither dominates positionally.
	c.MustDeclare(ts.NewMethod("h", nil, a, b))
	c.MustDeclare(ts.NewMethod("h", nil, b, a))

	_, err := r.Resolve(c, ts.Method, "h", []ts.Type{b, b})
	var amb *AmbiguousError
	if !errors.As(err, &amb) {
		t.Fatalf("expected AmbiguousError, got %v", err)
	}
	if len(amb.Candidates) != 2 {
		t.Errorf("got %d candidates, want 2", len(amb.Candidates))
	}
}

func TestResolve_NullPrefersSubtype(t *testing.T) {
	r, u := newResolver(t)
	c, _ := u.DefineClass("Host", nil)
	c.MustDeclare(ts.NewMethod("n", nil, u.Object))
	str := c.MustDeclare(ts.NewMethod("n", nil, u.String))

	got, err := r.Resolve(c, ts.Method, "n", []ts.Type{ts.Null})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != str {
		t.Errorf("got %v, want %v", got, str)
	}
}

func TestResolve_Varargs(t *testing.T) {
	r, u := newResolver(t)
	c, _ := u.DefineClass("Joiner", nil)
	spread := c.MustDeclare(ts.NewMethod("join", u.String, ts.ArrayOf(u.String)).WithVariadic())
	pair := c.MustDeclare(ts.NewMethod("join", u.String, u.String, u.String))

	got, err := r.Resolve(c, ts.Method, "join", nil)
	if err != nil {
		t.Fatalf("Resolve(): %v", err)
	}
	if got != spread {
		t.Errorf("zero args: got %v, want %v", got, spread)
	}
	if w, ok := r.Weight(spread, nil); !ok || w != config.VarargsSpreadPenalty {
		t.Errorf("zero args weight = (%d, %v)", w, ok)
	}

	got, err = r.Resolve(c, ts.Method, "join", []ts.Type{u.String, u.String})
	if err != nil {
		t.Fatalf("Resolve(String, String): %v", err)
	}
	if got != pair {
		t.Errorf("two args: got %v, want the fixed overload", got)
	}

	got, err = r.Resolve(c, ts.Method, "join", []ts.Type{ts.ArrayOf(u.String)})
	if err != nil {
		t.Fatalf("Resolve(String[]): %v", err)
	}
	if got != spread {
		t.Errorf("pass through: got %v", got)
	}
}

func TestResolve_InheritedAndOverridden(t *testing.T) {
	r, u := newResolver(t)
	base, _ := u.DefineClass("Base", nil)
	derived, _ := u.DefineClass("Derived", base)
	base.MustDeclare(ts.NewMethod("run", nil))
	override := derived.MustDeclare(ts.NewMethod("run", nil))
	inherited := base.MustDeclare(ts.NewMethod("stop", nil, ts.Int))

	got, err := r.Resolve(derived, ts.Method, "run", nil)
	if err != nil || got != override {
		t.Errorf("run: got %v, %v; want override", got, err)
	}
	got, err = r.Resolve(derived, ts.Method, "stop", []ts.Type{ts.Short})
	if err != nil || got != inherited {
		t.Errorf("stop: got %v, %v; want inherited", got, err)
	}
}

func TestResolve_Constructors(t *testing.T) {
	r, u := newResolver(t)
	base, _ := u.DefineClass("Base", nil)
	base.MustDeclare(ts.NewConstructor(u.String))
	derived, _ := u.DefineClass("Derived", base)
	ctor := derived.MustDeclare(ts.NewConstructor(ts.Int))

	got, err := r.Resolve(derived, ts.Constructor, "", []ts.Type{ts.Byte})
	if err != nil || got != ctor {
		t.Fatalf("got %v, %v", got, err)
	}

	_, err = r.Resolve(derived, ts.Constructor, "", []ts.Type{u.String})
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("constructors are not inherited, got %v", err)
	}
	if nf.Type != derived || nf.Kind != ts.Constructor {
		t.Errorf("NotFoundError not enriched: %+v", nf)
	}
	if want := "no constructor of Derived accepts [String]"; err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}
}

func TestResolve_Fields(t *testing.T) {
	r, u := newResolver(t)
	base, _ := u.DefineClass("Base", nil)
	derived, _ := u.DefineClass("Derived", base)
	base.MustDeclare(ts.NewField("count", ts.Int))
	shadow := derived.MustDeclare(ts.NewField("count", ts.Long))
	inherited := base.MustDeclare(ts.NewField("label", u.String))

	got, err := r.Resolve(derived, ts.Field, "count", nil)
	if err != nil || got != shadow {
		t.Errorf("count: got %v, %v", got, err)
	}
	got, err = r.Resolve(derived, ts.Field, "label", nil)
	if err != nil || got != inherited {
		t.Errorf("label: got %v, %v", got, err)
	}

	_, err = r.Resolve(derived, ts.Field, "missing", nil)
	if !errors.Is(err, ErrMeditation) {
		t.Fatalf("expected meditation error, got %v", err)
	}
	if want := "no field missing on Derived"; err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}

	_, err = r.Resolve(derived, ts.Field, "", nil)
	var ce *ConfigurationError
	if !errors.As(err, &ce) {
		t.Errorf("empty field name: got %v", err)
	}
}

func TestResolve_NotFound(t *testing.T) {
	r, u := newResolver(t)
	c, _ := u.DefineClass("Host", nil)
	c.MustDeclare(ts.NewMethod("m", nil, ts.Int))

	_, err := r.Resolve(c, ts.Method, "m", []ts.Type{u.String})
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if want := "no method m on Host accepts [String]"; err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}

	_, err = r.Resolve(c, ts.Method, "absent", nil)
	if want := "no method absent on Host accepts [<no arguments>]"; err == nil || err.Error() != want {
		t.Errorf("got %v, want %q", err, want)
	}
}

func TestSelect_InvalidArguments(t *testing.T) {
	r, u := newResolver(t)
	c, _ := u.DefineClass("Host", nil)

	for _, args := range [][]ts.Type{
		{nil},
		{ts.Void},
		{u.String, ts.ArrayOf(nil)},
	} {
		_, err := r.Select(c, Methods().MostSpecific(), args)
		var ce *ConfigurationError
		if !errors.As(err, &ce) {
			t.Errorf("args %v: expected ConfigurationError, got %v", args, err)
		}
	}
	if _, err := r.Select(nil, Methods(), nil); err == nil {
		t.Error("nil type must fail")
	}
}

func TestSelect_Pipeline(t *testing.T) {
	r, u := newResolver(t)
	c, _ := u.DefineClass("Host", nil)
	c.MustDeclare(ts.NewMethod("a", nil, ts.Int))
	static := c.MustDeclare(ts.NewMethod("b", nil, ts.Long).AsStatic())
	hidden := c.MustDeclare(ts.NewMethod("c", nil, ts.Double).WithVisibility(ts.Private))

	// Every method accepts an int; only the static one survives StaticOnly.
	got, err := r.Select(c, Methods().StaticOnly().MostSpecific(), []ts.Type{ts.Int})
	if err != nil || got != static {
		t.Errorf("static only: got %v, %v", got, err)
	}

	// Across names the nearest widening wins.
	sel := Methods().Compatible().Filter(func(m *ts.Member) bool { return m.Name != "a" })
	got, err = r.Select(c, sel.MostSpecific(), []ts.Type{ts.Int})
	if err != nil || got != static {
		t.Errorf("filtered: got %v, %v", got, err)
	}

	got, err = r.Select(c, Methods().Filter((*ts.Member).IsPublic).FilterArgs(func(m *ts.Member, args []ts.Type) bool {
		return len(m.Params) == len(args)
	}).Compatible().UseAny(), []ts.Type{ts.Int})
	if err != nil || got == hidden {
		t.Errorf("use any: got %v, %v", got, err)
	}

	// Without narrowing, several survivors are ambiguous.
	_, err = r.Select(c, Methods().Compatible(), []ts.Type{ts.Int})
	var amb *AmbiguousError
	if !errors.As(err, &amb) || len(amb.Candidates) != 3 {
		t.Errorf("unnarrowed: got %v", err)
	}
}

func TestSelector_BuildersDoNotShareState(t *testing.T) {
	base := Methods().Named("x")
	one := base.Compatible()
	two := base.UseAny()
	if len(base.ops) != 1 || len(one.ops) != 2 || len(two.ops) != 2 {
		t.Fatalf("unexpected op counts %d %d %d", len(base.ops), len(one.ops), len(two.ops))
	}
	if _, ok := one.ops[1].(compatibleOperation); !ok {
		t.Errorf("first derived selector was overwritten: %T", one.ops[1])
	}
	if base.Kind() != ts.Method || For(ts.Field).Kind() != ts.Field {
		t.Error("kind not preserved")
	}
}

func TestSelectMostSpecific_LazyInput(t *testing.T) {
	u := ts.NewUniverse()
	c, _ := u.DefineClass("Host", nil)
	only := c.MustDeclare(ts.NewMethod("m", nil, u.Object))

	seq := func(yield func(*ts.Member) bool) { yield(only) }
	got, err := SelectMostSpecific(u, seq, []ts.Type{u.String})
	if err != nil || got != only {
		t.Errorf("got %v, %v", got, err)
	}
	_, err = SelectMostSpecific(u, seq, []ts.Type{ts.Int, ts.Int})
	if !errors.Is(err, ErrMeditation) {
		t.Errorf("expected meditation error, got %v", err)
	}
}
