package invoke

import (
	"errors"
	"fmt"

	"github.com/funvibe/meditation/internal/resolve"
	ts "github.com/funvibe/meditation/internal/typesystem"
)

var (
	// ErrAccessDenied is the cause when a non-public member is used without
	// an override or grant.
	ErrAccessDenied = errors.New("access denied")
	// ErrUnbound is the cause when no implementation backs a member.
	ErrUnbound = errors.New("no implementation bound")
	// ErrNoReceiver is the cause when an instance member is used without a target.
	ErrNoReceiver = errors.New("instance member needs a receiver")
)

// InvocationError wraps any failure raised while calling a resolved member.
type InvocationError struct {
	Member *ts.Member
	Cause  error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("invoking %v: %v", e.Member, e.Cause)
}

func (e *InvocationError) Unwrap() error { return e.Cause }

func (e *InvocationError) Is(target error) bool { return target == resolve.ErrMeditation }

// PanicError carries a value recovered from a panicking implementation.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func newInvocationError(m *ts.Member, cause error) *InvocationError {
	var ie *InvocationError
	if errors.As(cause, &ie) && ie.Member == m {
		return ie
	}
	return &InvocationError{Member: m, Cause: cause}
}
