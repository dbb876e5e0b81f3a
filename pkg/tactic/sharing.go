package tactic

import (
	"sort"

	"github.com/satkit/satkit/pkg/goal"
	"github.com/satkit/satkit/pkg/terms"
)

type maxBVSharing struct {
	m *terms.Manager
}

// MaxBVSharing canonicalizes bit-vector sums: nested additions are
// flattened and operands put in a stable order, so hash-consing makes
// syntactically different spellings of the same sum share one node, and
// the bit-blaster emits each shared adder circuit once.
func MaxBVSharing(m *terms.Manager) Tactic {
	return &maxBVSharing{m: m}
}

func (s *maxBVSharing) Name() string { return "max-bv-sharing" }

func (s *maxBVSharing) Apply(g *goal.Goal) (*Result, error) {
	if err := checkLimit(s.Name(), s.m.Limit()); err != nil {
		return nil, err
	}
	rw := &sharingRewriter{m: s.m, memo: make(map[*terms.Term]*terms.Term)}
	out := goal.New(g.ModelsEnabled(), g.CoresEnabled())
	for i := 0; i < g.Len(); i++ {
		out.AssertWithDep(rw.rewrite(g.Assertion(i)), g.Dep(i))
	}
	return &Result{Subgoals: singleSubgoal(out)}, nil
}

type sharingRewriter struct {
	m    *terms.Manager
	memo map[*terms.Term]*terms.Term
}

func (rw *sharingRewriter) rewrite(t *terms.Term) *terms.Term {
	if out, ok := rw.memo[t]; ok {
		return out
	}
	out := rw.rewriteRec(t)
	rw.memo[t] = out
	return out
}

func (rw *sharingRewriter) rewriteRec(t *terms.Term) *terms.Term {
	if t.NumArgs() == 0 {
		return t
	}
	args := make([]*terms.Term, t.NumArgs())
	for i, a := range t.Args() {
		args[i] = rw.rewrite(a)
	}
	if t.Op() != terms.OpBVAdd {
		return rebuild(rw.m, t, args)
	}
	var flat []*terms.Term
	for len(args) > 0 {
		a := args[0]
		args = args[1:]
		if a.Op() == terms.OpBVAdd {
			args = append(args, a.Args()...)
			continue
		}
		flat = append(flat, a)
	}
	sort.SliceStable(flat, func(i, j int) bool { return flat[i].ID() < flat[j].ID() })
	// Rebuild left-associatively over the sorted operands so common
	// prefixes become common subterms.
	acc := flat[0]
	for _, a := range flat[1:] {
		acc = rw.m.BVAdd(acc, a)
	}
	return acc
}
