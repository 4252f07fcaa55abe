package resolve

import (
	"iter"

	"github.com/funvibe/meditation/internal/holder"
	ts "github.com/funvibe/meditation/internal/typesystem"
	"go.uber.org/zap"
)

// candidate pairs a member with its weight for one argument list.
type candidate = holder.Pair[*ts.Member, int]

// SelectMostSpecific picks the single best member for the supplied argument types.
//
// Members that cannot accept the arguments are dropped. Of the rest, only
// those with the minimal weight stay. A remaining tie is broken positionally:
// the winner's parameter type at every argument position must be passable
// to each other tied member's parameter type at that position. When no
// single member wins, the result is an *AmbiguousError listing the tie.
func SelectMostSpecific(u *ts.Universe, members iter.Seq[*ts.Member], args []ts.Type) (*ts.Member, error) {
	return selectMostSpecific(u, members, args, zap.NewNop())
}

func selectMostSpecific(u *ts.Universe, members iter.Seq[*ts.Member], args []ts.Type, log *zap.Logger) (*ts.Member, error) {
	var scored []candidate
	minWeight := holder.NewSingle(-1)
	for m := range members {
		w, ok := Weight(u, m, args)
		if !ok {
			log.Debug("candidate rejected", zap.Stringer("member", m))
			continue
		}
		log.Debug("candidate accepted", zap.Stringer("member", m), zap.Int("weight", w))
		scored = append(scored, holder.NewPair(m, w))
		if minWeight.Get() < 0 || w < minWeight.Get() {
			minWeight.Set(w)
		}
	}

	if len(scored) == 0 {
		return nil, &NotFoundError{Args: args}
	}
	if len(scored) == 1 {
		return scored[0].First, nil
	}

	var tied []*ts.Member
	for _, c := range scored {
		if c.Second == minWeight.Get() {
			tied = append(tied, c.First)
		}
	}
	if len(tied) == 1 {
		return tied[0], nil
	}

	var winners []*ts.Member
	for _, a := range tied {
		dominates := true
		for _, b := range tied {
			if a != b && !atLeastAsSpecific(u, a, b, args) {
				dominates = false
				break
			}
		}
		if dominates {
			winners = append(winners, a)
		}
	}
	if len(winners) == 1 {
		log.Debug("tie broken by specificity", zap.Stringer("member", winners[0]), zap.Int("tied", len(tied)))
		return winners[0], nil
	}
	return nil, &AmbiguousError{Args: args, Candidates: tied}
}

// atLeastAsSpecific reports whether every parameter of a, at the positions
// the arguments occupy, can be passed where b expects its parameter.
func atLeastAsSpecific(u *ts.Universe, a, b *ts.Member, args []ts.Type) bool {
	for i := range args {
		if Distance(u, paramAt(b, i, args), paramAt(a, i, args)) < 0 {
			return false
		}
	}
	return true
}
