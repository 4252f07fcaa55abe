package resolve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/funvibe/meditation/internal/typesystem"
)

// ErrMeditation is matched by every resolution and invocation failure:
// errors.Is(err, ErrMeditation).
var ErrMeditation = errors.New("meditation")

// NotFoundError indicates no candidate survived filtering.
type NotFoundError struct {
	Type typesystem.Type
	Kind typesystem.MemberKind
	Name string
	Args []typesystem.Type
}

func (e *NotFoundError) Error() string {
	name := e.Name
	if name == "" {
		name = "*"
	}
	if e.Kind == typesystem.Field {
		return fmt.Sprintf("no field %s on %v", name, e.Type)
	}
	if e.Kind == typesystem.Constructor {
		return fmt.Sprintf("no constructor of %v accepts [%s]", e.Type, typesystem.TypeNames(e.Args))
	}
	return fmt.Sprintf("no method %s on %v accepts [%s]", name, e.Type, typesystem.TypeNames(e.Args))
}

func (e *NotFoundError) Is(target error) bool { return target == ErrMeditation }

// AmbiguousError indicates several maximally specific candidates that no
// ranking separates.
type AmbiguousError struct {
	Args       []typesystem.Type
	Candidates []*typesystem.Member
}

func (e *AmbiguousError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "multiple members accept argument types [%s]:", typesystem.TypeNames(e.Args))
	for _, c := range e.Candidates {
		sb.WriteString("\n\t> ")
		sb.WriteString(c.String())
	}
	return sb.String()
}

func (e *AmbiguousError) Is(target error) bool { return target == ErrMeditation }

// ConfigurationError reports malformed input to the resolver.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration: %s: %v", e.Reason, e.Err)
	}
	return "configuration: " + e.Reason
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func (e *ConfigurationError) Is(target error) bool { return target == ErrMeditation }

func newConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}
