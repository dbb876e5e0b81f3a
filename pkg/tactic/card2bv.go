package tactic

import (
	"math/bits"

	"github.com/satkit/satkit/pkg/goal"
	"github.com/satkit/satkit/pkg/terms"
)

type card2bv struct {
	m *terms.Manager
}

// Card2BV rewrites cardinality and pseudo-Boolean constraints into
// bit-vector arithmetic: each guard contributes ite(p, c, 0) to a sum
// wide enough never to overflow, and the bound becomes an unsigned
// comparison. No fresh symbols are introduced, so no model converter is
// needed.
func Card2BV(m *terms.Manager) Tactic {
	return &card2bv{m: m}
}

func (c *card2bv) Name() string { return "card2bv" }

func (c *card2bv) Apply(g *goal.Goal) (*Result, error) {
	if err := checkLimit(c.Name(), c.m.Limit()); err != nil {
		return nil, err
	}
	rw := &cardRewriter{m: c.m, memo: make(map[*terms.Term]*terms.Term)}
	out := goal.New(g.ModelsEnabled(), g.CoresEnabled())
	for i := 0; i < g.Len(); i++ {
		out.AssertWithDep(rw.rewrite(g.Assertion(i)), g.Dep(i))
	}
	return &Result{Subgoals: singleSubgoal(out)}, nil
}

type cardRewriter struct {
	m    *terms.Manager
	memo map[*terms.Term]*terms.Term
}

func (rw *cardRewriter) rewrite(t *terms.Term) *terms.Term {
	if out, ok := rw.memo[t]; ok {
		return out
	}
	out := rw.rewriteRec(t)
	rw.memo[t] = out
	return out
}

func (rw *cardRewriter) rewriteRec(t *terms.Term) *terms.Term {
	m := rw.m
	switch t.Op() {
	case terms.OpAtLeast, terms.OpAtMost:
		args := rw.rewriteAll(t.Args())
		k, n := t.Num(), uint64(len(args))
		if t.Op() == terms.OpAtLeast {
			if k == 0 {
				return m.True()
			}
			if k > n {
				return m.False()
			}
			return m.BVULE(rw.numeral(k, n), rw.sum(args, nil, n))
		}
		if k >= n {
			return m.True()
		}
		return m.BVULE(rw.sum(args, nil, n), rw.numeral(k, n))
	case terms.OpPBLe:
		args := rw.rewriteAll(t.Args())
		var total uint64
		for _, c := range t.Coeffs() {
			total += c
		}
		if t.Num() >= total {
			return m.True()
		}
		return m.BVULE(rw.sum(args, t.Coeffs(), total), rw.numeral(t.Num(), total))
	}
	if t.NumArgs() == 0 {
		return t
	}
	args := rw.rewriteAll(t.Args())
	return rebuild(m, t, args)
}

func (rw *cardRewriter) rewriteAll(args []*terms.Term) []*terms.Term {
	out := make([]*terms.Term, len(args))
	for i, a := range args {
		out[i] = rw.rewrite(a)
	}
	return out
}

// width returns a bit-width that can hold maxSum without wrapping.
func width(maxSum uint64) uint {
	if maxSum == 0 {
		return 1
	}
	return uint(bits.Len64(maxSum))
}

func (rw *cardRewriter) numeral(v, maxSum uint64) *terms.Term {
	return rw.m.BVValue(v, width(maxSum))
}

// sum builds Σ coeffs[i]·ite(args[i], 1, 0) at a width sized for
// maxSum. A nil coeffs means all-ones.
func (rw *cardRewriter) sum(args []*terms.Term, coeffs []uint64, maxSum uint64) *terms.Term {
	w := width(maxSum)
	zero := rw.m.BVValue(0, w)
	one := rw.m.BVValue(1, w)
	addends := make([]*terms.Term, len(args))
	for i, a := range args {
		guard := rw.m.Ite(a, one, zero)
		if coeffs != nil {
			guard = rw.m.BVMul(guard, coeffs[i])
		}
		addends[i] = guard
	}
	return rw.m.BVAdd(addends...)
}

// rebuild reconstructs t with new arguments via the manager, preserving
// the operator and any numeric payload.
func rebuild(m *terms.Manager, t *terms.Term, args []*terms.Term) *terms.Term {
	switch t.Op() {
	case terms.OpNot:
		return m.Not(args[0])
	case terms.OpAnd:
		return m.And(args...)
	case terms.OpOr:
		return m.Or(args...)
	case terms.OpImplies:
		return m.Implies(args[0], args[1])
	case terms.OpIff:
		return m.Iff(args[0], args[1])
	case terms.OpXor:
		return m.Xor(args[0], args[1])
	case terms.OpIte:
		return m.Ite(args[0], args[1], args[2])
	case terms.OpEq:
		return m.Eq(args[0], args[1])
	case terms.OpDistinct:
		return m.Distinct(args...)
	case terms.OpBVAdd:
		return m.BVAdd(args...)
	case terms.OpBVMul:
		return m.BVMul(args[0], t.Num())
	case terms.OpExtract:
		return m.Extract(args[0], uint(t.Num()))
	case terms.OpBVULE:
		return m.BVULE(args[0], args[1])
	case terms.OpBVULT:
		return m.BVULT(args[0], args[1])
	case terms.OpZeroExt:
		return m.ZeroExt(args[0], uint(t.Num()))
	case terms.OpAtLeast:
		return m.AtLeast(uint(t.Num()), args...)
	case terms.OpAtMost:
		return m.AtMost(uint(t.Num()), args...)
	case terms.OpPBLe:
		return m.PBLe(t.Coeffs(), args, t.Num())
	}
	return t
}
