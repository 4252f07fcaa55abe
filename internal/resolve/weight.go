package resolve

import (
	"github.com/funvibe/meditation/internal/config"
	ts "github.com/funvibe/meditation/internal/typesystem"
)

// Weight sums the argument distances of m for the supplied argument types.
// The second result is false when m cannot accept the arguments.
func Weight(u *ts.Universe, m *ts.Member, args []ts.Type) (int, bool) {
	if !m.Variadic && len(args) != len(m.Params) {
		return config.Incompatible, false
	}
	fixed := m.FixedParamCount()
	if fixed > len(args) {
		return config.Incompatible, false
	}

	sum := 0
	for i := 0; i < fixed; i++ {
		d := Distance(u, m.Params[i], args[i])
		if d < 0 {
			return config.Incompatible, false
		}
		sum += d
	}
	if !m.Variadic {
		return sum, true
	}

	tail, ok := m.VarargType()
	if !ok {
		return config.Incompatible, false
	}
	rest := args[fixed:]

	// A lone array argument is passed through as the tail itself and
	// must be exactly the tail type.
	if len(rest) == 1 {
		if arr, isArr := rest[0].(ts.TArray); isArr {
			if arr == tail {
				return sum, true
			}
			return config.Incompatible, false
		}
	}

	sum += config.VarargsSpreadPenalty
	for _, a := range rest {
		d := Distance(u, tail.Elem, a)
		if d < 0 {
			return config.Incompatible, false
		}
		sum += d
	}
	return sum, true
}

// isPassThrough reports whether args hand m's variadic tail over as one array.
func isPassThrough(m *ts.Member, args []ts.Type) bool {
	if !m.Variadic || len(args)-m.FixedParamCount() != 1 {
		return false
	}
	_, isArr := args[len(args)-1].(ts.TArray)
	return isArr
}

// paramAt is the parameter type argument i is matched against.
func paramAt(m *ts.Member, i int, args []ts.Type) ts.Type {
	fixed := m.FixedParamCount()
	if i < fixed {
		return m.Params[i]
	}
	if isPassThrough(m, args) {
		return m.Params[len(m.Params)-1]
	}
	tail, _ := m.VarargType()
	return tail.Elem
}
