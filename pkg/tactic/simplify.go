package tactic

import (
	"github.com/satkit/satkit/pkg/goal"
	"github.com/satkit/satkit/pkg/terms"
)

// Profile fixes the simplifier's rewriting options. The incremental
// solver always runs with DefaultProfile; the knobs exist so the
// simplifier can be reused standalone.
type Profile struct {
	Som           bool
	PullCheapIte  bool
	PushIteBV     bool
	LocalCtx      bool
	LocalCtxLimit uint
	Flat          bool
	HoistMul      bool
	ElimAnd       bool
}

// DefaultProfile returns the profile the incremental solver pins:
// sum-of-monomials and flattening on, cheap ITE pulling on, local
// context simplification bounded at 10^7 steps, conjunctions eliminated
// in favor of negated disjunctions.
func DefaultProfile() Profile {
	return Profile{
		Som:           true,
		PullCheapIte:  true,
		PushIteBV:     false,
		LocalCtx:      true,
		LocalCtxLimit: 10000000,
		Flat:          true,
		HoistMul:      false,
		ElimAnd:       true,
	}
}

type simplify struct {
	m       *terms.Manager
	profile Profile
}

// Simplify returns the rewriting tactic for the given profile. The Som,
// PushIteBV, and HoistMul options have no effect in this algebra (there
// are no bit-vector polynomials to reshape) but are accepted for
// compatibility with the pinned parameter set.
func Simplify(m *terms.Manager, p Profile) Tactic {
	return &simplify{m: m, profile: p}
}

func (s *simplify) Name() string { return "simplify" }

func (s *simplify) Apply(g *goal.Goal) (*Result, error) {
	if err := checkLimit(s.Name(), s.m.Limit()); err != nil {
		return nil, err
	}
	rw := &simplifier{m: s.m, profile: s.profile, memo: make(map[*terms.Term]*terms.Term)}
	out := goal.New(g.ModelsEnabled(), g.CoresEnabled())
	for i := 0; i < g.Len(); i++ {
		t := rw.rewrite(g.Assertion(i))
		if t.Op() == terms.OpTrue && g.Dep(i) == nil {
			// Vacuous and untagged; tagged assertions are kept so
			// their dependency still reaches the translator.
			continue
		}
		out.AssertWithDep(t, g.Dep(i))
	}
	return &Result{Subgoals: singleSubgoal(out)}, nil
}

type simplifier struct {
	m       *terms.Manager
	profile Profile
	memo    map[*terms.Term]*terms.Term
	steps   uint
}

func (s *simplifier) rewrite(t *terms.Term) *terms.Term {
	if out, ok := s.memo[t]; ok {
		return out
	}
	out := s.rewriteRec(t)
	s.memo[t] = out
	return out
}

func (s *simplifier) rewriteRec(t *terms.Term) *terms.Term {
	m := s.m
	switch t.Op() {
	case terms.OpTrue, terms.OpFalse, terms.OpConst, terms.OpBVValue:
		return t
	}
	args := make([]*terms.Term, t.NumArgs())
	for i, a := range t.Args() {
		args[i] = s.rewrite(a)
	}
	switch t.Op() {
	case terms.OpNot:
		return s.not(args[0])
	case terms.OpAnd:
		return s.and(args)
	case terms.OpOr:
		return s.or(args)
	case terms.OpImplies:
		return s.or([]*terms.Term{s.not(args[0]), args[1]})
	case terms.OpIff:
		return s.iff(args[0], args[1])
	case terms.OpXor:
		return s.not(s.iff(args[0], args[1]))
	case terms.OpIte:
		return s.ite(args[0], args[1], args[2])
	case terms.OpEq:
		return s.eq(args[0], args[1])
	case terms.OpDistinct:
		if t.NumArgs() == 2 {
			return s.not(s.eq(args[0], args[1]))
		}
		return m.Distinct(args...)
	case terms.OpBVAdd:
		return s.bvadd(args, t.Sort().Width())
	case terms.OpBVMul:
		if args[0].Op() == terms.OpBVValue {
			return m.BVValue(args[0].Num()*t.Num(), t.Sort().Width())
		}
		return m.BVMul(args[0], t.Num())
	case terms.OpExtract:
		if args[0].Op() == terms.OpBVValue {
			return m.BVValue((args[0].Num()>>t.Num())&1, 1)
		}
		return m.Extract(args[0], uint(t.Num()))
	case terms.OpBVULE, terms.OpBVULT:
		if args[0].Op() == terms.OpBVValue && args[1].Op() == terms.OpBVValue {
			if t.Op() == terms.OpBVULE {
				return s.boolTerm(args[0].Num() <= args[1].Num())
			}
			return s.boolTerm(args[0].Num() < args[1].Num())
		}
		if t.Op() == terms.OpBVULE {
			return m.BVULE(args[0], args[1])
		}
		return m.BVULT(args[0], args[1])
	case terms.OpZeroExt:
		if args[0].Op() == terms.OpBVValue {
			return m.BVValue(args[0].Num(), t.Sort().Width())
		}
		return m.ZeroExt(args[0], uint(t.Num()))
	case terms.OpAtLeast:
		return s.card(t, args, true)
	case terms.OpAtMost:
		return s.card(t, args, false)
	case terms.OpPBLe:
		return m.PBLe(t.Coeffs(), args, t.Num())
	}
	return t
}

func (s *simplifier) boolTerm(b bool) *terms.Term {
	if b {
		return s.m.True()
	}
	return s.m.False()
}

func (s *simplifier) not(a *terms.Term) *terms.Term {
	switch a.Op() {
	case terms.OpTrue:
		return s.m.False()
	case terms.OpFalse:
		return s.m.True()
	case terms.OpNot:
		return a.Arg(0)
	}
	return s.m.Not(a)
}

// negOf reports whether a and b are syntactic complements.
func negOf(a, b *terms.Term) bool {
	return (a.Op() == terms.OpNot && a.Arg(0) == b) || (b.Op() == terms.OpNot && b.Arg(0) == a)
}

func (s *simplifier) and(args []*terms.Term) *terms.Term {
	if s.profile.ElimAnd {
		negated := make([]*terms.Term, len(args))
		for i, a := range args {
			negated[i] = s.not(a)
		}
		return s.not(s.or(negated))
	}
	flat := s.flatten(terms.OpAnd, args)
	out := flat[:0]
	for _, a := range flat {
		switch a.Op() {
		case terms.OpTrue:
			continue
		case terms.OpFalse:
			return s.m.False()
		}
		out = append(out, a)
	}
	out = s.dedupe(out)
	if s.profile.LocalCtx {
		for i, a := range out {
			for _, b := range out[i+1:] {
				if s.step() && negOf(a, b) {
					return s.m.False()
				}
			}
		}
	}
	return s.m.And(out...)
}

func (s *simplifier) or(args []*terms.Term) *terms.Term {
	flat := s.flatten(terms.OpOr, args)
	out := flat[:0]
	for _, a := range flat {
		switch a.Op() {
		case terms.OpFalse:
			continue
		case terms.OpTrue:
			return s.m.True()
		}
		out = append(out, a)
	}
	out = s.dedupe(out)
	if s.profile.LocalCtx {
		for i, a := range out {
			for _, b := range out[i+1:] {
				if s.step() && negOf(a, b) {
					return s.m.True()
				}
			}
		}
	}
	return s.m.Or(out...)
}

func (s *simplifier) flatten(op terms.Op, args []*terms.Term) []*terms.Term {
	if !s.profile.Flat {
		return args
	}
	out := make([]*terms.Term, 0, len(args))
	for _, a := range args {
		if a.Op() == op {
			out = append(out, a.Args()...)
			continue
		}
		out = append(out, a)
	}
	return out
}

func (s *simplifier) dedupe(args []*terms.Term) []*terms.Term {
	seen := make(map[*terms.Term]bool, len(args))
	out := args[:0]
	for _, a := range args {
		if seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out
}

// step counts a local-context simplification step against the profile's
// budget; it reports whether the step may be taken.
func (s *simplifier) step() bool {
	if s.steps >= s.profile.LocalCtxLimit {
		return false
	}
	s.steps++
	return true
}

func (s *simplifier) iff(a, b *terms.Term) *terms.Term {
	switch {
	case a == b:
		return s.m.True()
	case a.Op() == terms.OpTrue:
		return b
	case b.Op() == terms.OpTrue:
		return a
	case a.Op() == terms.OpFalse:
		return s.not(b)
	case b.Op() == terms.OpFalse:
		return s.not(a)
	case negOf(a, b):
		return s.m.False()
	}
	return s.m.Iff(a, b)
}

func (s *simplifier) ite(c, t, e *terms.Term) *terms.Term {
	switch {
	case c.Op() == terms.OpTrue:
		return t
	case c.Op() == terms.OpFalse:
		return e
	case t == e:
		return t
	}
	if t.Sort().IsBool() && s.profile.PullCheapIte {
		// (ite c t e) over Bool is cheap to open into two guarded
		// disjuncts, which downstream translation handles natively.
		return s.and([]*terms.Term{
			s.or([]*terms.Term{s.not(c), t}),
			s.or([]*terms.Term{c, e}),
		})
	}
	return s.m.Ite(c, t, e)
}

func (s *simplifier) eq(a, b *terms.Term) *terms.Term {
	if a == b {
		return s.m.True()
	}
	if a.Sort().IsBool() {
		return s.iff(a, b)
	}
	if a.Op() == terms.OpBVValue && b.Op() == terms.OpBVValue {
		return s.boolTerm(a.Num() == b.Num())
	}
	return s.m.Eq(a, b)
}

func (s *simplifier) bvadd(args []*terms.Term, width uint) *terms.Term {
	var sum uint64
	var rest []*terms.Term
	work := append([]*terms.Term(nil), args...)
	for len(work) > 0 {
		a := work[0]
		work = work[1:]
		switch {
		case s.profile.Flat && a.Op() == terms.OpBVAdd:
			work = append(work, a.Args()...)
		case a.Op() == terms.OpBVValue:
			sum += a.Num()
		default:
			rest = append(rest, a)
		}
	}
	if len(rest) == 0 {
		return s.m.BVValue(sum, width)
	}
	if sum != 0 {
		rest = append(rest, s.m.BVValue(sum, width))
	}
	return s.m.BVAdd(rest...)
}

func (s *simplifier) card(t *terms.Term, args []*terms.Term, atLeast bool) *terms.Term {
	k := t.Num()
	n := uint64(len(args))
	if atLeast {
		switch {
		case k == 0:
			return s.m.True()
		case k > n:
			return s.m.False()
		}
		return s.m.AtLeast(uint(k), args...)
	}
	if k >= n {
		return s.m.True()
	}
	return s.m.AtMost(uint(k), args...)
}
