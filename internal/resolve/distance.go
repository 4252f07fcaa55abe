package resolve

import (
	"github.com/funvibe/meditation/internal/config"
	ts "github.com/funvibe/meditation/internal/typesystem"
)

// wideningRank places every numeric primitive on the widening order
//
//	byte -> short -> int -> long -> float -> double
//	byte -> char  -> int
//
// short and char share a rank but sit on different branches, so neither
// widens into the other.
var wideningRank = map[ts.Primitive]int{
	ts.Byte:   0,
	ts.Short:  1,
	ts.Char:   1,
	ts.Int:    2,
	ts.Long:   3,
	ts.Float:  4,
	ts.Double: 5,
}

// PrimitiveDistance is the widening distance from supplied to required,
// or config.Incompatible.
func PrimitiveDistance(required, supplied ts.Primitive) int {
	if required == ts.Void || supplied == ts.Void {
		return config.Incompatible
	}
	if required == supplied {
		return 0
	}
	req, okReq := wideningRank[required]
	sup, okSup := wideningRank[supplied]
	if !okReq || !okSup {
		// boolean converts only to itself
		return config.Incompatible
	}
	if req <= sup {
		return config.Incompatible
	}
	return req - sup
}

// Distance is the cost of passing a supplied argument type to a required
// parameter type, 0 for an exact match and config.Incompatible when the
// argument cannot be passed at all.
func Distance(u *ts.Universe, required, supplied ts.Type) int {
	if required == nil || supplied == nil || required.Kind() == ts.KindNull {
		return config.Incompatible
	}

	if supplied.Kind() == ts.KindNull {
		if required.Kind() == ts.KindPrimitive {
			return config.Incompatible
		}
		return 0
	}

	reqPrim, reqIsPrim := required.(ts.Primitive)
	supPrim, supIsPrim := supplied.(ts.Primitive)

	switch {
	case reqIsPrim && supIsPrim:
		return PrimitiveDistance(reqPrim, supPrim)

	case reqIsPrim:
		boxed, ok := supplied.(*ts.TClass)
		if !ok {
			return config.Incompatible
		}
		unboxed, ok := u.Unbox(boxed)
		if !ok {
			return config.Incompatible
		}
		d := PrimitiveDistance(reqPrim, unboxed)
		if d < 0 {
			return config.Incompatible
		}
		return d + config.UnboxingPenalty

	case supIsPrim:
		boxed, ok := u.Box(supPrim)
		if !ok {
			return config.Incompatible
		}
		d := referenceDistance(u, required, boxed)
		if d < 0 {
			return config.Incompatible
		}
		return d + config.BoxingPenalty
	}

	return referenceDistance(u, required, supplied)
}

func referenceDistance(u *ts.Universe, required, supplied ts.Type) int {
	edges := u.Edges(required, supplied)
	if edges < 0 {
		return config.Incompatible
	}
	return edges * config.InheritanceEdgeCost
}
