package meditation

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/funvibe/meditation/internal/invoke"
	"github.com/funvibe/meditation/internal/resolve"
	ts "github.com/funvibe/meditation/internal/typesystem"
)

// bank declares
//
//	class Account {
//	    static int opened;
//	    private long balance;
//	    String owner;
//	    Account(String owner);
//	    Account(String owner, long balance);
//	    void deposit(long amount);
//	    long balance();
//	    private void audit();
//	    String tag(Object... parts);
//	    static Account open(String owner);
//	}
//	class Savings extends Account { double rate; Savings(String owner); }
func bank(t *testing.T) *Runtime {
	t.Helper()
	u := ts.NewUniverse()
	account, err := u.DefineClass("Account", nil)
	require.NoError(t, err)
	savings, err := u.DefineClass("Savings", account)
	require.NoError(t, err)

	opened := account.MustDeclare(ts.NewField("opened", ts.Int).AsStatic())
	balance := account.MustDeclare(ts.NewField("balance", ts.Long).WithVisibility(ts.Private))
	owner := account.MustDeclare(ts.NewField("owner", u.String))
	savings.MustDeclare(ts.NewField("rate", ts.Double))

	rt := NewRuntime(u, WithLogger(zaptest.NewLogger(t)))

	init := func(this *Object, args []any) (any, error) {
		if err := rt.Store(owner, this, args[0]); err != nil {
			return nil, err
		}
		if len(args) > 1 {
			if err := rt.Store(balance, this, args[1]); err != nil {
				return nil, err
			}
		}
		n, _ := rt.Load(opened, nil)
		return nil, rt.Store(opened, nil, n.(int)+1)
	}
	require.NoError(t, rt.Bind(account.MustDeclare(ts.NewConstructor(u.String)), init))
	require.NoError(t, rt.Bind(account.MustDeclare(ts.NewConstructor(u.String, ts.Long)), init))
	require.NoError(t, rt.Bind(savings.MustDeclare(ts.NewConstructor(u.String)), init))

	require.NoError(t, rt.BindGo(account.MustDeclare(ts.NewMethod("deposit", nil, ts.Long)),
		func(this *Object, amount int64) error {
			if amount <= 0 {
				return fmt.Errorf("deposit must be positive, got %d", amount)
			}
			cur, err := rt.Load(balance, this)
			if err != nil {
				return err
			}
			return rt.Store(balance, this, cur.(int64)+amount)
		}))
	require.NoError(t, rt.BindGo(account.MustDeclare(ts.NewMethod("balance", ts.Long)),
		func(this *Object) (int64, error) {
			v, err := rt.Load(balance, this)
			if err != nil {
				return 0, err
			}
			return v.(int64), nil
		}))
	account.MustDeclare(ts.NewMethod("audit", nil).WithVisibility(ts.Private))
	require.NoError(t, rt.Implement("Account", "audit()", func(*Object, []any) (any, error) {
		return nil, nil
	}))
	require.NoError(t, rt.BindGo(account.MustDeclare(ts.NewMethod("tag", u.String, ts.ArrayOf(u.Object)).WithVariadic()),
		func(this *Object, parts ...any) string {
			s := make([]string, len(parts))
			for i, p := range parts {
				s[i] = fmt.Sprint(p)
			}
			return strings.Join(s, "-")
		}))
	account.MustDeclare(ts.NewMethod("open", account, u.String).AsStatic())
	require.NoError(t, rt.Implement("Account", "open(String)", func(_ *Object, args []any) (any, error) {
		return OnClass(rt, account).Create(args...).Get()
	}))
	return rt
}

func TestCreateAndCall(t *testing.T) {
	rt := bank(t)

	acc := OnType(rt, "Account").Create("ada", int64(10))
	require.NoError(t, acc.Err())
	assert.False(t, acc.IsType())

	got, err := acc.Call("deposit", 5).Call("balance").Get()
	require.NoError(t, err)
	assert.Equal(t, int64(15), got)

	owner, err := acc.GetField("owner")
	require.NoError(t, err)
	assert.Equal(t, "ada", owner)
}

func TestCreate_WideningSelectsConstructor(t *testing.T) {
	rt := bank(t)

	// int widens to long for the two argument constructor.
	acc := OnType(rt, "Account").Create("bob", 3)
	require.NoError(t, acc.Err())
	got, err := acc.Call("balance").Get()
	require.NoError(t, err)
	assert.Equal(t, int64(3), got)

	// A boxed Integer unboxes, then widens.
	acc = OnType(rt, "Account").Create("bob", Box(4))
	require.NoError(t, acc.Err())
	got, err = acc.Call("balance").Get()
	require.NoError(t, err)
	assert.Equal(t, int64(4), got)
}

func TestVoidCallKeepsTarget(t *testing.T) {
	rt := bank(t)
	acc := OnType(rt, "Account").Create("cy")
	obj, err := acc.Get()
	require.NoError(t, err)

	after := acc.Call("deposit", int64(1))
	require.NoError(t, after.Err())
	same, err := after.Get()
	require.NoError(t, err)
	assert.Same(t, obj, same)
}

func TestStaticAccess(t *testing.T) {
	rt := bank(t)
	typ := OnType(rt, "Account")
	require.True(t, typ.IsType())

	opened, err := typ.GetField("opened")
	require.NoError(t, err)
	assert.Equal(t, 0, opened)

	acc := typ.Call("open", "dee")
	require.NoError(t, acc.Err())
	owner, err := acc.GetField("owner")
	require.NoError(t, err)
	assert.Equal(t, "dee", owner)

	opened, err = typ.GetField("opened")
	require.NoError(t, err)
	assert.Equal(t, 1, opened)

	// Instance methods are not reachable from the type.
	err = typ.Call("balance").Err()
	var nf *resolve.NotFoundError
	require.ErrorAs(t, err, &nf)

	require.NoError(t, typ.Set("opened", int8(7)).Err())
	opened, err = typ.GetField("opened")
	require.NoError(t, err)
	assert.Equal(t, 7, opened)

	// Interface constants are reachable from implementing types.
	u := ts.NewUniverse()
	limits, err := u.DefineInterface("Limits")
	require.NoError(t, err)
	maxField := limits.MustDeclare(ts.NewField("MAX", ts.Int).AsStatic())
	_, err = u.DefineClass("Impl", nil, limits)
	require.NoError(t, err)
	lrt := NewRuntime(u)
	require.NoError(t, lrt.Store(maxField, nil, 64))

	v, err := OnType(lrt, "Impl").GetField("MAX")
	require.NoError(t, err)
	assert.Equal(t, 64, v)
}

func TestAccessibleOverride(t *testing.T) {
	rt := bank(t)
	acc := OnType(rt, "Account").Create("eve", int64(2))

	_, err := acc.GetField("balance")
	require.ErrorIs(t, err, invoke.ErrAccessDenied)
	require.ErrorIs(t, err, resolve.ErrMeditation)

	v, err := acc.Accessible(true).GetField("balance")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	require.NoError(t, acc.Accessible(true).Call("audit").Err())
	require.ErrorIs(t, acc.Call("audit").Err(), invoke.ErrAccessDenied)

	account, err := acc.Type()
	require.NoError(t, err)
	for _, m := range slices.Concat(account.DeclaredMethods(), account.DeclaredFields()) {
		assert.Zero(t, rt.Access().Held(m), "override leaked on %v", m)
	}
}

func TestInheritedMembers(t *testing.T) {
	rt := bank(t)
	sav := OnType(rt, "Savings").Create("fay")
	require.NoError(t, sav.Err())

	require.NoError(t, sav.Set("rate", float32(1.5)).Err())
	rate, err := sav.GetField("rate")
	require.NoError(t, err)
	assert.Equal(t, 1.5, rate)

	got, err := sav.Call("deposit", int64(9)).Call("balance").Get()
	require.NoError(t, err)
	assert.Equal(t, int64(9), got)

	// Constructors are not inherited.
	err = OnType(rt, "Savings").Create("fay", int64(1)).Err()
	var nf *resolve.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestVarargs(t *testing.T) {
	rt := bank(t)
	acc := OnType(rt, "Account").Create("gus")

	tests := []struct {
		name string
		args []any
		want string
	}{
		{"none", nil, ""},
		{"spread", []any{"a", 1, true}, "a-1-true"},
		{"pass through", []any{NewArray(rt.Universe().Object, "x", "y")}, "x-y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := acc.Call("tag", tt.args...).Get()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	// A lone array must match the variadic tail exactly to pass through.
	err := acc.Call("tag", NewArray(rt.Universe().String, "x")).Err()
	var nf *resolve.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestStickyErrors(t *testing.T) {
	rt := bank(t)
	calls := 0

	m := OnType(rt, "Account").Create("hal").Call("deposit", int64(-1))
	err := m.Err()
	var ie *invoke.InvocationError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "deposit", ie.Member.Name)
	assert.Contains(t, err.Error(), "deposit must be positive")

	after := m.Call("balance").Set("owner", "x").Consume(func(any) { calls++ })
	assert.Same(t, err, after.Err())
	assert.Zero(t, calls)
	_, getErr := after.Get()
	assert.Same(t, err, getErr)
}

func TestNullArguments(t *testing.T) {
	rt := bank(t)

	// A single nil is one null argument, and a String parameter accepts it.
	acc := OnType(rt, "Account").Create(nil)
	require.NoError(t, acc.Err())
	owner, err := acc.GetField("owner")
	require.NoError(t, err)
	assert.Nil(t, owner)

	// null cannot become a long.
	err = acc.Call("deposit", nil).Err()
	var nf *resolve.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestConfigurationErrors(t *testing.T) {
	rt := bank(t)

	err := OnType(rt, "Missing").Err()
	var ce *resolve.ConfigurationError
	require.ErrorAs(t, err, &ce)

	err = OnType(rt, "Account").Create(struct{}{}).Err()
	require.ErrorAs(t, err, &ce)
	require.ErrorIs(t, err, resolve.ErrMeditation)

	err = On(rt, nil).Call("anything").Err()
	require.ErrorAs(t, err, &ce)

	_, err = On(rt, nil).Type()
	require.Error(t, err)
}

func TestConsume(t *testing.T) {
	rt := bank(t)
	var seen []any
	m := On(rt, "text").Consume(func(v any) { seen = append(seen, v) })
	require.NoError(t, m.Err())
	assert.Equal(t, []any{"text"}, seen)

	c, err := m.Type()
	require.NoError(t, err)
	assert.Equal(t, rt.Universe().String, c)

	c, err = On(rt, 5).Type()
	require.NoError(t, err)
	assert.Equal(t, "Integer", c.Name)
}

func TestUnboundMember(t *testing.T) {
	rt := bank(t)
	account, err := rt.Universe().Lookup("Account")
	require.NoError(t, err)
	account.MustDeclare(ts.NewMethod("close", nil))

	err = OnType(rt, "Account").Create("ivy").Call("close").Err()
	require.True(t, errors.Is(err, invoke.ErrUnbound), "got %v", err)
}
