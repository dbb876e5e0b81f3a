package terms

// Translator re-interns terms from a source manager into a destination
// manager. Declarations map by (name, sort); the destination owns every
// term it hands out, so translated terms never alias source storage.
type Translator struct {
	dst  *Manager
	memo map[*Term]*Term
}

// NewTranslator returns a translator targeting dst.
func NewTranslator(dst *Manager) *Translator {
	return &Translator{dst: dst, memo: make(map[*Term]*Term)}
}

// Translate returns dst's copy of t. It is memoized, so shared subterms
// stay shared in the destination.
func (tr *Translator) Translate(t *Term) *Term {
	if out, ok := tr.memo[t]; ok {
		return out
	}
	out := tr.translate(t)
	tr.memo[t] = out
	return out
}

func (tr *Translator) translate(t *Term) *Term {
	m := tr.dst
	switch t.Op() {
	case OpTrue:
		return m.True()
	case OpFalse:
		return m.False()
	case OpConst:
		return m.Const(t.Decl().Name(), t.Decl().Sort())
	case OpBVValue:
		return m.BVValue(t.Num(), t.Sort().Width())
	}
	args := make([]*Term, t.NumArgs())
	for i, a := range t.Args() {
		args[i] = tr.Translate(a)
	}
	switch t.Op() {
	case OpNot:
		return m.Not(args[0])
	case OpAnd:
		return m.And(args...)
	case OpOr:
		return m.Or(args...)
	case OpImplies:
		return m.Implies(args[0], args[1])
	case OpIff:
		return m.Iff(args[0], args[1])
	case OpXor:
		return m.Xor(args[0], args[1])
	case OpIte:
		return m.Ite(args[0], args[1], args[2])
	case OpEq:
		return m.Eq(args[0], args[1])
	case OpDistinct:
		return m.Distinct(args...)
	case OpBVAdd:
		return m.BVAdd(args...)
	case OpBVMul:
		return m.BVMul(args[0], t.Num())
	case OpExtract:
		return m.Extract(args[0], uint(t.Num()))
	case OpBVULE:
		return m.BVULE(args[0], args[1])
	case OpBVULT:
		return m.BVULT(args[0], args[1])
	case OpZeroExt:
		return m.ZeroExt(args[0], uint(t.Num()))
	case OpAtLeast:
		return m.AtLeast(uint(t.Num()), args...)
	case OpAtMost:
		return m.AtMost(uint(t.Num()), args...)
	case OpPBLe:
		return m.PBLe(t.Coeffs(), args, t.Num())
	}
	panic("terms: untranslatable term " + t.String())
}
