package tactic

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/satkit/satkit/pkg/goal"
	"github.com/satkit/satkit/pkg/terms"
)

// BitBlastRewriter converts bit-vector terms to Boolean circuits over
// fresh per-bit constants. It is stateful and shared across incremental
// solver calls: the memo of already-blasted terms and the table mapping
// each bit-vector constant to its bit encoding persist, and both are
// push/pop tracked in lockstep with the solver's scope trail.
type BitBlastRewriter struct {
	m          *terms.Manager
	bits       map[*terms.Term][]*terms.Term
	bools      map[*terms.Term]*terms.Term
	const2bits map[*terms.Decl][]*terms.Term

	bvTrail   []*terms.Term
	boolTrail []*terms.Term
	declTrail []*terms.Decl
	lims      [][3]int
}

// NewBitBlastRewriter returns an empty rewriter over m.
func NewBitBlastRewriter(m *terms.Manager) *BitBlastRewriter {
	return &BitBlastRewriter{
		m:          m,
		bits:       make(map[*terms.Term][]*terms.Term),
		bools:      make(map[*terms.Term]*terms.Term),
		const2bits: make(map[*terms.Decl][]*terms.Term),
	}
}

// Const2Bits returns the live table mapping each blasted bit-vector
// constant to its ordered (LSB-first) Boolean bit constants. The map is
// owned by the rewriter; callers must not retain it across Push/Pop.
func (rw *BitBlastRewriter) Const2Bits() map[*terms.Decl][]*terms.Term {
	return rw.const2bits
}

// Push opens a scope; Pop(n) discards everything memoized in the last n
// scopes.
func (rw *BitBlastRewriter) Push() {
	rw.lims = append(rw.lims, [3]int{len(rw.bvTrail), len(rw.boolTrail), len(rw.declTrail)})
}

func (rw *BitBlastRewriter) Pop(n int) {
	for ; n > 0 && len(rw.lims) > 0; n-- {
		lim := rw.lims[len(rw.lims)-1]
		rw.lims = rw.lims[:len(rw.lims)-1]
		for _, t := range rw.bvTrail[lim[0]:] {
			delete(rw.bits, t)
		}
		rw.bvTrail = rw.bvTrail[:lim[0]]
		for _, t := range rw.boolTrail[lim[1]:] {
			delete(rw.bools, t)
		}
		rw.boolTrail = rw.boolTrail[:lim[1]]
		for _, d := range rw.declTrail[lim[2]:] {
			delete(rw.const2bits, d)
		}
		rw.declTrail = rw.declTrail[:lim[2]]
	}
}

// Rewrite blasts a Boolean-sorted term, returning an equivalent term
// over the core Boolean operators only.
func (rw *BitBlastRewriter) Rewrite(t *terms.Term) (*terms.Term, error) {
	if !t.Sort().IsBool() {
		return nil, errors.Errorf("bit-blast: non-Boolean assertion %s", t)
	}
	return rw.blastBool(t)
}

func (rw *BitBlastRewriter) blastBool(t *terms.Term) (*terms.Term, error) {
	if out, ok := rw.bools[t]; ok {
		return out, nil
	}
	out, err := rw.blastBoolRec(t)
	if err != nil {
		return nil, err
	}
	rw.bools[t] = out
	rw.boolTrail = append(rw.boolTrail, t)
	return out, nil
}

func (rw *BitBlastRewriter) blastBoolRec(t *terms.Term) (*terms.Term, error) {
	m := rw.m
	switch t.Op() {
	case terms.OpTrue, terms.OpFalse, terms.OpConst:
		return t, nil
	case terms.OpNot, terms.OpAnd, terms.OpOr, terms.OpImplies, terms.OpIff, terms.OpXor:
		args := make([]*terms.Term, t.NumArgs())
		for i, a := range t.Args() {
			b, err := rw.blastBool(a)
			if err != nil {
				return nil, err
			}
			args[i] = b
		}
		return rebuild(m, t, args), nil
	case terms.OpDistinct:
		// Expand to pairwise disequalities, then blast those.
		var pairs []*terms.Term
		for i := 0; i < t.NumArgs(); i++ {
			for j := i + 1; j < t.NumArgs(); j++ {
				pairs = append(pairs, m.Not(m.Eq(t.Arg(i), t.Arg(j))))
			}
		}
		return rw.blastBool(m.And(pairs...))
	case terms.OpIte:
		if !t.Arg(1).Sort().IsBool() {
			return nil, errors.Errorf("bit-blast: bit-vector ite %s in Boolean position", t)
		}
		c, err := rw.blastBool(t.Arg(0))
		if err != nil {
			return nil, err
		}
		a, err := rw.blastBool(t.Arg(1))
		if err != nil {
			return nil, err
		}
		b, err := rw.blastBool(t.Arg(2))
		if err != nil {
			return nil, err
		}
		return m.Ite(c, a, b), nil
	case terms.OpEq:
		if t.Arg(0).Sort().IsBool() {
			a, err := rw.blastBool(t.Arg(0))
			if err != nil {
				return nil, err
			}
			b, err := rw.blastBool(t.Arg(1))
			if err != nil {
				return nil, err
			}
			return m.Iff(a, b), nil
		}
		as, err := rw.blastBV(t.Arg(0))
		if err != nil {
			return nil, err
		}
		bs, err := rw.blastBV(t.Arg(1))
		if err != nil {
			return nil, err
		}
		eqs := make([]*terms.Term, len(as))
		for i := range as {
			eqs[i] = m.Iff(as[i], bs[i])
		}
		return m.And(eqs...), nil
	case terms.OpBVULE:
		bs, err := rw.blastBV(t.Arg(1))
		if err != nil {
			return nil, err
		}
		as, err := rw.blastBV(t.Arg(0))
		if err != nil {
			return nil, err
		}
		// a ≤ b  ⇔  ¬(b < a)
		return m.Not(rw.ult(bs, as)), nil
	case terms.OpBVULT:
		as, err := rw.blastBV(t.Arg(0))
		if err != nil {
			return nil, err
		}
		bs, err := rw.blastBV(t.Arg(1))
		if err != nil {
			return nil, err
		}
		return rw.ult(as, bs), nil
	case terms.OpAtLeast, terms.OpAtMost, terms.OpPBLe:
		return nil, errors.Errorf("bit-blast: cardinality operator %s not eliminated", t.Op())
	}
	return nil, errors.Errorf("bit-blast: unsupported Boolean term %s", t)
}

func (rw *BitBlastRewriter) blastBV(t *terms.Term) ([]*terms.Term, error) {
	if out, ok := rw.bits[t]; ok {
		return out, nil
	}
	out, err := rw.blastBVRec(t)
	if err != nil {
		return nil, err
	}
	rw.bits[t] = out
	rw.bvTrail = append(rw.bvTrail, t)
	return out, nil
}

func (rw *BitBlastRewriter) blastBVRec(t *terms.Term) ([]*terms.Term, error) {
	m := rw.m
	w := t.Sort().Width()
	switch t.Op() {
	case terms.OpBVValue:
		out := make([]*terms.Term, w)
		for i := uint(0); i < w; i++ {
			if t.Num()&(1<<i) != 0 {
				out[i] = m.True()
			} else {
				out[i] = m.False()
			}
		}
		return out, nil
	case terms.OpConst:
		d := t.Decl()
		if bits, ok := rw.const2bits[d]; ok {
			return bits, nil
		}
		bits := make([]*terms.Term, w)
		for i := uint(0); i < w; i++ {
			bits[i] = m.Bool(fmt.Sprintf("%s!%d", d.Name(), i))
		}
		rw.const2bits[d] = bits
		rw.declTrail = append(rw.declTrail, d)
		return bits, nil
	case terms.OpBVAdd:
		acc, err := rw.blastBV(t.Arg(0))
		if err != nil {
			return nil, err
		}
		for _, a := range t.Args()[1:] {
			bs, err := rw.blastBV(a)
			if err != nil {
				return nil, err
			}
			acc = rw.adder(acc, bs)
		}
		return acc, nil
	case terms.OpBVMul:
		// Shift-add over the set bits of the numeral coefficient; the
		// constructor already reduced the coefficient modulo the width.
		as, err := rw.blastBV(t.Arg(0))
		if err != nil {
			return nil, err
		}
		acc := make([]*terms.Term, w)
		for i := range acc {
			acc[i] = m.False()
		}
		for j := uint(0); j < w; j++ {
			if t.Num()&(1<<j) == 0 {
				continue
			}
			shifted := make([]*terms.Term, w)
			for i := uint(0); i < w; i++ {
				if i < j {
					shifted[i] = m.False()
				} else {
					shifted[i] = as[i-j]
				}
			}
			acc = rw.adder(acc, shifted)
		}
		return acc, nil
	case terms.OpExtract:
		as, err := rw.blastBV(t.Arg(0))
		if err != nil {
			return nil, err
		}
		if int(t.Num()) >= len(as) {
			return nil, errors.Errorf("bit-blast: extract bit %d out of range in %s", t.Num(), t)
		}
		return []*terms.Term{as[t.Num()]}, nil
	case terms.OpIte:
		c, err := rw.blastBool(t.Arg(0))
		if err != nil {
			return nil, err
		}
		as, err := rw.blastBV(t.Arg(1))
		if err != nil {
			return nil, err
		}
		bs, err := rw.blastBV(t.Arg(2))
		if err != nil {
			return nil, err
		}
		out := make([]*terms.Term, len(as))
		for i := range as {
			out[i] = m.Ite(c, as[i], bs[i])
		}
		return out, nil
	case terms.OpZeroExt:
		as, err := rw.blastBV(t.Arg(0))
		if err != nil {
			return nil, err
		}
		out := make([]*terms.Term, w)
		copy(out, as)
		for i := uint(len(as)); i < w; i++ {
			out[i] = m.False()
		}
		return out, nil
	}
	return nil, errors.Errorf("bit-blast: unsupported bit-vector term %s", t)
}

// adder is a ripple-carry adder over LSB-first bit slices of equal
// length; the final carry is discarded (modular arithmetic).
func (rw *BitBlastRewriter) adder(as, bs []*terms.Term) []*terms.Term {
	m := rw.m
	out := make([]*terms.Term, len(as))
	carry := m.False()
	for i := range as {
		axb := m.Xor(as[i], bs[i])
		out[i] = m.Xor(axb, carry)
		carry = m.Or(m.And(as[i], bs[i]), m.And(carry, axb))
	}
	return out
}

// ult builds the unsigned a < b comparator, LSB-first inputs.
func (rw *BitBlastRewriter) ult(as, bs []*terms.Term) *terms.Term {
	m := rw.m
	lt := m.False()
	for i := range as {
		lt = m.Or(m.And(m.Not(as[i]), bs[i]), m.And(m.Iff(as[i], bs[i]), lt))
	}
	return lt
}

type bitBlast struct {
	m  *terms.Manager
	rw *BitBlastRewriter
}

// BitBlast wraps a shared rewriter as a pipeline tactic. The rewriter is
// deliberately not owned by the tactic: the solver keeps one instance
// alive across calls so constant encodings stay stable, and consults its
// Const2Bits table when lifting models.
func BitBlast(m *terms.Manager, rw *BitBlastRewriter) Tactic {
	return &bitBlast{m: m, rw: rw}
}

func (b *bitBlast) Name() string { return "bit-blast" }

func (b *bitBlast) Apply(g *goal.Goal) (*Result, error) {
	if err := checkLimit(b.Name(), b.m.Limit()); err != nil {
		return nil, err
	}
	out := goal.New(g.ModelsEnabled(), g.CoresEnabled())
	for i := 0; i < g.Len(); i++ {
		t, err := b.rw.Rewrite(g.Assertion(i))
		if err != nil {
			return nil, err
		}
		out.AssertWithDep(t, g.Dep(i))
	}
	return &Result{Subgoals: singleSubgoal(out)}, nil
}

type bitBlastModelConverter struct {
	m          *terms.Manager
	const2bits map[*terms.Decl][]*terms.Term
}

// NewBitBlastModelConverter returns the inverse converter for a blasted
// model: each bit-vector constant is reconstructed from its bit values
// and the synthetic bit entries are removed from the model.
func NewBitBlastModelConverter(m *terms.Manager, const2bits map[*terms.Decl][]*terms.Term) ModelConverter {
	return &bitBlastModelConverter{m: m, const2bits: const2bits}
}

func (c *bitBlastModelConverter) ApplyTo(md *terms.Model) error {
	for d, bits := range c.const2bits {
		var v uint64
		for i, bit := range bits {
			on, err := md.EvalBool(bit)
			if err != nil {
				return errors.Wrapf(err, "reconstructing %s", d.Name())
			}
			if on {
				v |= 1 << uint(i)
			}
		}
		md.Set(d, c.m.BVValue(v, uint(len(bits))))
		for _, bit := range bits {
			if bit.IsLeaf() {
				md.Delete(bit.Decl())
			}
		}
	}
	return nil
}
