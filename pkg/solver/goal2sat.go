package solver

import (
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"

	"github.com/satkit/satkit/pkg/goal"
	"github.com/satkit/satkit/pkg/satcore"
	"github.com/satkit/satkit/pkg/terms"
)

// goal2SAT translates a preprocessed goal into SAT clauses. Subterm
// literals are cached in the scoped atom map, so repeated incremental
// calls reuse the variables chosen earlier; defining clauses land at the
// sat core's current user level and roll back together with the map.
//
// Untagged assertions are asserted as clauses. A tagged assertion is
// only defined, not asserted: its root literal is recorded in the
// per-call dep→literal map and enforced by assuming the literal.
type goal2SAT struct {
	core *satcore.Core
	amap *atomMap
}

func (tr *goal2SAT) Translate(g *goal.Goal, dep2lit map[*terms.Term]z.Lit) error {
	for i := 0; i < g.Len(); i++ {
		t := g.Assertion(i)
		if dep := g.Dep(i); dep != nil {
			m, err := tr.lit(t)
			if err != nil {
				return err
			}
			dep2lit[dep] = m
			continue
		}
		if err := tr.assert(t); err != nil {
			return err
		}
	}
	return nil
}

// assert adds the clauses of a top-level assertion, keeping clause
// structure where the shape allows it instead of introducing a root
// variable.
func (tr *goal2SAT) assert(t *terms.Term) error {
	switch t.Op() {
	case terms.OpTrue:
		return nil
	case terms.OpAnd:
		for _, a := range t.Args() {
			if err := tr.assert(a); err != nil {
				return err
			}
		}
		return nil
	case terms.OpOr:
		lits := make([]z.Lit, t.NumArgs())
		for i, a := range t.Args() {
			m, err := tr.lit(a)
			if err != nil {
				return err
			}
			lits[i] = m
		}
		tr.core.AddClause(lits...)
		return nil
	}
	m, err := tr.lit(t)
	if err != nil {
		return err
	}
	tr.core.AddClause(m)
	return nil
}

// lit returns the literal representing t, emitting defining clauses the
// first time a subterm is seen at the current level.
func (tr *goal2SAT) lit(t *terms.Term) (z.Lit, error) {
	if m, ok := tr.amap.Lit(t); ok {
		return m, nil
	}
	m, err := tr.litRec(t)
	if err != nil {
		return z.LitNull, err
	}
	tr.amap.Insert(t, m)
	return m, nil
}

func (tr *goal2SAT) litRec(t *terms.Term) (z.Lit, error) {
	switch t.Op() {
	case terms.OpTrue:
		d := tr.core.NewVar()
		tr.core.AddClause(d)
		return d, nil
	case terms.OpFalse:
		d := tr.core.NewVar()
		tr.core.AddClause(d.Not())
		return d, nil
	case terms.OpConst:
		if !t.Sort().IsBool() {
			return z.LitNull, errors.Errorf("goal2sat: bit-vector constant %s survived preprocessing", t)
		}
		return tr.core.NewVar(), nil
	case terms.OpNot:
		m, err := tr.lit(t.Arg(0))
		if err != nil {
			return z.LitNull, err
		}
		return m.Not(), nil
	case terms.OpAnd, terms.OpOr:
		lits := make([]z.Lit, t.NumArgs())
		for i, a := range t.Args() {
			m, err := tr.lit(a)
			if err != nil {
				return z.LitNull, err
			}
			lits[i] = m
		}
		if t.Op() == terms.OpAnd {
			return tr.defineAnd(lits), nil
		}
		return tr.defineOr(lits), nil
	case terms.OpImplies:
		a, err := tr.lit(t.Arg(0))
		if err != nil {
			return z.LitNull, err
		}
		b, err := tr.lit(t.Arg(1))
		if err != nil {
			return z.LitNull, err
		}
		return tr.defineOr([]z.Lit{a.Not(), b}), nil
	case terms.OpIff, terms.OpXor:
		a, err := tr.lit(t.Arg(0))
		if err != nil {
			return z.LitNull, err
		}
		b, err := tr.lit(t.Arg(1))
		if err != nil {
			return z.LitNull, err
		}
		if t.Op() == terms.OpXor {
			b = b.Not()
		}
		return tr.defineIff(a, b), nil
	case terms.OpEq:
		if !t.Arg(0).Sort().IsBool() {
			return z.LitNull, errors.Errorf("goal2sat: bit-vector equality %s survived preprocessing", t)
		}
		a, err := tr.lit(t.Arg(0))
		if err != nil {
			return z.LitNull, err
		}
		b, err := tr.lit(t.Arg(1))
		if err != nil {
			return z.LitNull, err
		}
		return tr.defineIff(a, b), nil
	case terms.OpIte:
		c, err := tr.lit(t.Arg(0))
		if err != nil {
			return z.LitNull, err
		}
		a, err := tr.lit(t.Arg(1))
		if err != nil {
			return z.LitNull, err
		}
		b, err := tr.lit(t.Arg(2))
		if err != nil {
			return z.LitNull, err
		}
		d := tr.core.NewVar()
		tr.core.AddClause(d.Not(), c.Not(), a)
		tr.core.AddClause(d.Not(), c, b)
		tr.core.AddClause(d, c.Not(), a.Not())
		tr.core.AddClause(d, c, b.Not())
		return d, nil
	}
	return z.LitNull, errors.Errorf("goal2sat: operator %s survived preprocessing", t.Op())
}

func (tr *goal2SAT) defineAnd(lits []z.Lit) z.Lit {
	d := tr.core.NewVar()
	long := make([]z.Lit, 0, len(lits)+1)
	long = append(long, d)
	for _, m := range lits {
		tr.core.AddClause(d.Not(), m)
		long = append(long, m.Not())
	}
	tr.core.AddClause(long...)
	return d
}

func (tr *goal2SAT) defineOr(lits []z.Lit) z.Lit {
	d := tr.core.NewVar()
	long := make([]z.Lit, 0, len(lits)+1)
	long = append(long, d.Not())
	for _, m := range lits {
		tr.core.AddClause(d, m.Not())
		long = append(long, m)
	}
	tr.core.AddClause(long...)
	return d
}

func (tr *goal2SAT) defineIff(a, b z.Lit) z.Lit {
	d := tr.core.NewVar()
	tr.core.AddClause(d.Not(), a.Not(), b)
	tr.core.AddClause(d.Not(), a, b.Not())
	tr.core.AddClause(d, a, b)
	tr.core.AddClause(d, a.Not(), b.Not())
	return d
}
