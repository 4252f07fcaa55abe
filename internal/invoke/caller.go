// Package invoke calls resolved members through a Host, applying the
// accessibility override around every call.
package invoke

import (
	"fmt"

	"github.com/funvibe/meditation/internal/logger"
	ts "github.com/funvibe/meditation/internal/typesystem"
	"go.uber.org/zap"
)

// Void is the result of calling a method that returns nothing.
var Void = voidResult{}

type voidResult struct{}

func (voidResult) String() string { return "void" }

// Host performs the underlying operations once a member is resolved.
// Arguments arrive unconverted; the host coerces them to the member's
// parameter representation.
type Host interface {
	Call(m *ts.Member, target any, args []any) (any, error)
	Load(m *ts.Member, target any) (any, error)
	Store(m *ts.Member, target any, value any) error
}

// Caller binds a resolved member to a target. The target is ignored for
// static members and constructors.
type Caller struct {
	host       Host
	access     *Access
	member     *ts.Member
	target     any
	accessible bool
	log        *zap.Logger
}

// Option configures a Caller.
type Option func(*Caller)

// Accessible requests the accessibility override for each call.
func Accessible(on bool) Option {
	return func(c *Caller) { c.accessible = on }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Caller) {
		c.log = logger.OrNop(l)
	}
}

func New(host Host, access *Access, m *ts.Member, target any, opts ...Option) *Caller {
	if access == nil {
		access = NewAccess()
	}
	c := &Caller{host: host, access: access, member: m, target: target, log: logger.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Caller) Member() *ts.Member { return c.member }

// Returns reports whether calling the member produces a value.
func (c *Caller) Returns() bool {
	return c.member.Kind != ts.Method || c.member.Result != ts.Void
}

// Invoke calls a constructor or method. Methods without a result return Void.
func (c *Caller) Invoke(args ...any) (any, error) {
	if c.member.Kind == ts.Field {
		return nil, newInvocationError(c.member, fmt.Errorf("%s is a field", c.member.Name))
	}
	result, err := c.run(func() (any, error) {
		return c.host.Call(c.member, c.receiver(), args)
	})
	if err != nil {
		return nil, err
	}
	if !c.Returns() {
		return Void, nil
	}
	return result, nil
}

// Get reads the field.
func (c *Caller) Get() (any, error) {
	if c.member.Kind != ts.Field {
		return nil, newInvocationError(c.member, fmt.Errorf("%s is not a field", c.member.Name))
	}
	return c.run(func() (any, error) {
		return c.host.Load(c.member, c.receiver())
	})
}

// Set writes the field.
func (c *Caller) Set(value any) error {
	if c.member.Kind != ts.Field {
		return newInvocationError(c.member, fmt.Errorf("%s is not a field", c.member.Name))
	}
	_, err := c.run(func() (any, error) {
		return nil, c.host.Store(c.member, c.receiver(), value)
	})
	return err
}

func (c *Caller) receiver() any {
	if c.member.Static || c.member.Kind == ts.Constructor {
		return nil
	}
	return c.target
}

// run holds the override for the duration of fn and turns every failure,
// including a panic, into an *InvocationError.
func (c *Caller) run(fn func() (any, error)) (result any, err error) {
	m := c.member
	if c.host == nil {
		return nil, newInvocationError(m, ErrUnbound)
	}
	if !m.Static && m.Kind != ts.Constructor && c.target == nil {
		return nil, newInvocationError(m, ErrNoReceiver)
	}

	release := c.access.Acquire(m, c.accessible)
	defer release()

	if !c.access.IsAccessible(m) {
		c.log.Debug("access denied", zap.Stringer("member", m))
		return nil, newInvocationError(m, ErrAccessDenied)
	}

	defer func() {
		if r := recover(); r != nil {
			c.log.Debug("implementation panicked", zap.Stringer("member", m), zap.Any("value", r))
			result, err = nil, newInvocationError(m, &PanicError{Value: r})
		}
	}()

	result, err = fn()
	if err != nil {
		return nil, newInvocationError(m, err)
	}
	return result, nil
}
