package hierarchy

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	ts "github.com/funvibe/meditation/internal/typesystem"
)

// diamond builds:
//
//	Top (interface): describe(), size()
//	Left extends Top: describe()
//	Right extends Top: describe(), extra()
//	Base implements Left, Right: size()
//	Leaf extends Base: describe(), own(int)
func diamond(t *testing.T) (*ts.Universe, map[string]*ts.TClass) {
	t.Helper()
	u := ts.NewUniverse()
	top, _ := u.DefineInterface("Top")
	left, _ := u.DefineInterface("Left", top)
	right, _ := u.DefineInterface("Right", top)
	base, _ := u.DefineClass("Base", nil, left, right)
	leaf, err := u.DefineClass("Leaf", base)
	if err != nil {
		t.Fatal(err)
	}

	top.MustDeclare(ts.NewMethod("describe", u.String))
	top.MustDeclare(ts.NewMethod("size", ts.Int))
	left.MustDeclare(ts.NewMethod("describe", u.String))
	right.MustDeclare(ts.NewMethod("describe", u.String))
	right.MustDeclare(ts.NewMethod("extra", nil))
	base.MustDeclare(ts.NewMethod("size", ts.Int))
	base.MustDeclare(ts.NewConstructor())
	leaf.MustDeclare(ts.NewMethod("describe", u.String))
	leaf.MustDeclare(ts.NewMethod("own", nil, ts.Int))
	leaf.MustDeclare(ts.NewConstructor(ts.Int))

	return u, map[string]*ts.TClass{"Top": top, "Left": left, "Right": right, "Base": base, "Leaf": leaf}
}

type entry struct {
	Owner, Sig string
}

func collect(seq func(func(*ts.Member) bool)) []entry {
	var out []entry
	for m := range seq {
		out = append(out, entry{m.Owner.Name, m.Signature()})
	}
	return out
}

func TestSuperTypes_BreadthFirst(t *testing.T) {
	_, cls := diamond(t)
	var got []string
	for c := range SuperTypes(cls["Leaf"]) {
		got = append(got, c.Name)
	}
	want := []string{"Base", "Object", "Left", "Right", "Top"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SuperTypes mismatch (-want +got):\n%s", diff)
	}
}

func TestMethods_DiamondDeduplicated(t *testing.T) {
	_, cls := diamond(t)
	got := collect(Methods(cls["Leaf"], false))
	want := []entry{
		{"Leaf", "describe()"},
		{"Leaf", "own(int)"},
		{"Base", "size()"},
		{"Right", "extra()"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Methods mismatch (-want +got):\n%s", diff)
	}
}

func TestMethods_StaticOnly(t *testing.T) {
	u := ts.NewUniverse()
	iface, _ := u.DefineInterface("Util")
	iface.MustDeclare(ts.NewMethod("helper", nil).AsStatic())
	base, _ := u.DefineClass("Base", nil, iface)
	base.MustDeclare(ts.NewMethod("create", base).AsStatic())
	base.MustDeclare(ts.NewMethod("instance", nil))
	sub, _ := u.DefineClass("Sub", base)
	sub.MustDeclare(ts.NewMethod("create", base).AsStatic())

	got := collect(Methods(sub, true))
	want := []entry{{"Sub", "create()"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("static Methods mismatch (-want +got):\n%s", diff)
	}

	got = collect(Methods(iface, true))
	if diff := cmp.Diff([]entry{{"Util", "helper()"}}, got); diff != "" {
		t.Errorf("interface's own statics must be visible (-want +got):\n%s", diff)
	}
}

func TestFields_ShadowedByName(t *testing.T) {
	u := ts.NewUniverse()
	base, _ := u.DefineClass("Base", nil)
	base.MustDeclare(ts.NewField("id", ts.Int))
	base.MustDeclare(ts.NewField("name", u.String))
	sub, _ := u.DefineClass("Sub", base)
	sub.MustDeclare(ts.NewField("id", ts.Long))

	got := collect(Fields(sub, false))
	want := []entry{{"Sub", "id"}, {"Base", "name"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Fields mismatch (-want +got):\n%s", diff)
	}
}

func TestFields_StaticFromInterface(t *testing.T) {
	u := ts.NewUniverse()
	limits, _ := u.DefineInterface("Limits")
	limits.MustDeclare(ts.NewField("MAX", ts.Int).AsStatic())
	base, _ := u.DefineClass("Base", nil, limits)
	base.MustDeclare(ts.NewField("count", ts.Int).AsStatic())
	base.MustDeclare(ts.NewField("id", ts.Int))
	impl, _ := u.DefineClass("Impl", base)

	want := []entry{{"Base", "count"}, {"Limits", "MAX"}}
	if diff := cmp.Diff(want, collect(Fields(impl, true))); diff != "" {
		t.Errorf("static Fields mismatch (-want +got):\n%s", diff)
	}
	want = []entry{{"Base", "count"}, {"Base", "id"}, {"Limits", "MAX"}}
	if diff := cmp.Diff(want, collect(Fields(impl, false))); diff != "" {
		t.Errorf("Fields mismatch (-want +got):\n%s", diff)
	}
}

func TestConstructors_NotInherited(t *testing.T) {
	_, cls := diamond(t)
	got := collect(Constructors(cls["Leaf"]))
	want := []entry{{"Leaf", "<init>(int)"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Constructors mismatch (-want +got):\n%s", diff)
	}
	if got := collect(Members(cls["Top"], ts.Constructor, false)); len(got) != 0 {
		t.Errorf("interfaces have no constructors, got %v", got)
	}
}

func TestMethods_Lazy(t *testing.T) {
	_, cls := diamond(t)
	n := 0
	for range Methods(cls["Leaf"], false) {
		n++
		if n == 1 {
			break
		}
	}
	if n != 1 {
		t.Errorf("early break yielded %d members", n)
	}
}
