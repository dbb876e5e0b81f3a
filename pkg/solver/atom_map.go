package solver

import (
	"github.com/go-air/gini/z"

	"github.com/satkit/satkit/pkg/terms"
)

// atomMap is the stack-scoped association between Boolean-skeleton
// subterms and SAT literals. Entries added at a scope are logged so Pop
// can roll the map back to exactly the state at the matching Push; an
// entry never disappears while the solver is at or above the level that
// inserted it.
type atomMap struct {
	lits  map[*terms.Term]z.Lit
	trail []*terms.Term
	lims  []int
}

func newAtomMap() *atomMap {
	return &atomMap{lits: make(map[*terms.Term]z.Lit)}
}

func (a *atomMap) Lit(t *terms.Term) (z.Lit, bool) {
	m, ok := a.lits[t]
	return m, ok
}

func (a *atomMap) Insert(t *terms.Term, m z.Lit) {
	a.lits[t] = m
	a.trail = append(a.trail, t)
}

func (a *atomMap) Len() int { return len(a.lits) }

func (a *atomMap) Push() {
	a.lims = append(a.lims, len(a.trail))
}

func (a *atomMap) Pop(n int) {
	for ; n > 0 && len(a.lims) > 0; n-- {
		lim := a.lims[len(a.lims)-1]
		a.lims = a.lims[:len(a.lims)-1]
		for _, t := range a.trail[lim:] {
			delete(a.lits, t)
		}
		a.trail = a.trail[:lim]
	}
}

// Range visits every entry until f returns false.
func (a *atomMap) Range(f func(t *terms.Term, m z.Lit) bool) {
	for t, m := range a.lits {
		if !f(t, m) {
			return
		}
	}
}
