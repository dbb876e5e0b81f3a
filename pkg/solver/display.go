package solver

import (
	"io"
	"math"

	"github.com/go-air/gini/z"
	"github.com/pkg/errors"

	"github.com/satkit/satkit/pkg/satcore"
	"github.com/satkit/satkit/pkg/terms"
)

// DisplayWeighted writes the translated state plus the given soft
// assumptions in weighted-CNF textual form, for consumption by external
// MaxSAT drivers. The solver's own state is brought up to date first;
// nothing is solved. Missing weights default to 1; weights must be
// non-negative integers.
func (s *Solver) DisplayWeighted(w io.Writer, assumptions []*terms.Term, weights []float64) error {
	s.weights = s.weights[:0]
	s.weights = append(s.weights, weights...)
	s.asms = s.asms[:0]
	s.sat.PopToBaseLevel()

	dep2lit := make(map[*terms.Term]z.Lit)
	if r := s.internalizeFormulas(); r != satcore.Sat {
		return errors.Errorf("solver: cannot internalize formulas: %s", s.reason)
	}
	if r := s.internalizeAssumptions(assumptions, dep2lit); r != satcore.Sat {
		return errors.Errorf("solver: cannot internalize assumptions: %s", s.reason)
	}

	uw := make([]uint64, len(s.asms))
	for i := range s.asms {
		wt := 1.0
		if i < len(s.weights) {
			wt = s.weights[i]
		}
		if wt < 0 || wt != math.Trunc(wt) {
			return errors.Errorf("solver: cannot display weight %v; weights must be unsigned integers", wt)
		}
		uw[i] = uint64(wt)
	}
	return s.sat.DisplayWCNF(w, s.asms, uw)
}
