package terms

import (
	"sort"

	"github.com/pkg/errors"
)

// Model maps declarations to value terms (true, false, or bit-vector
// numerals). Declarations without an entry evaluate to their sort's
// default value (false, zero), so evaluation is total over ground terms.
type Model struct {
	m    *Manager
	vals map[*Decl]*Term
}

// NewModel returns an empty model over m.
func NewModel(m *Manager) *Model {
	return &Model{m: m, vals: make(map[*Decl]*Term)}
}

// Set registers the value of d. The value must be a ground constant of
// d's sort.
func (md *Model) Set(d *Decl, v *Term) {
	md.vals[d] = v
}

// Delete removes d's entry, if any.
func (md *Model) Delete(d *Decl) {
	delete(md.vals, d)
}

// Value returns the registered value of d, or nil.
func (md *Model) Value(d *Decl) *Term {
	return md.vals[d]
}

// Decls returns the declarations with entries, ordered by declaration id.
func (md *Model) Decls() []*Decl {
	ds := make([]*Decl, 0, len(md.vals))
	for d := range md.vals {
		ds = append(ds, d)
	}
	sort.Slice(ds, func(i, j int) bool { return ds[i].id < ds[j].id })
	return ds
}

// Len returns the number of entries.
func (md *Model) Len() int { return len(md.vals) }

func (md *Model) defaultValue(s Sort) *Term {
	if s.IsBool() {
		return md.m.False()
	}
	return md.m.BVValue(0, s.Width())
}

// Eval evaluates a ground term under the model, completing missing
// declarations with default values. The result is md.m.True(),
// md.m.False(), or a bit-vector numeral.
func (md *Model) Eval(t *Term) (*Term, error) {
	return md.eval(t, make(map[*Term]*Term))
}

// EvalBool evaluates t and reports whether it is true. It is an error if
// t is not Boolean-sorted.
func (md *Model) EvalBool(t *Term) (bool, error) {
	if !t.Sort().IsBool() {
		return false, errors.Errorf("terms: EvalBool of %s-sorted term", t.Sort())
	}
	v, err := md.Eval(t)
	if err != nil {
		return false, err
	}
	return v.Op() == OpTrue, nil
}

func (md *Model) evalBV(t *Term, memo map[*Term]*Term) (uint64, error) {
	v, err := md.eval(t, memo)
	if err != nil {
		return 0, err
	}
	if v.Op() != OpBVValue {
		return 0, errors.Errorf("terms: expected bit-vector value, got %s", v)
	}
	return v.Num(), nil
}

func (md *Model) boolTerm(b bool) *Term {
	if b {
		return md.m.True()
	}
	return md.m.False()
}

func (md *Model) eval(t *Term, memo map[*Term]*Term) (*Term, error) {
	if v, ok := memo[t]; ok {
		return v, nil
	}
	v, err := md.evalRec(t, memo)
	if err != nil {
		return nil, err
	}
	memo[t] = v
	return v, nil
}

func (md *Model) evalRec(t *Term, memo map[*Term]*Term) (*Term, error) {
	m := md.m
	switch t.Op() {
	case OpTrue, OpFalse, OpBVValue:
		return t, nil
	case OpConst:
		if v, ok := md.vals[t.Decl()]; ok {
			return v, nil
		}
		return md.defaultValue(t.Sort()), nil
	case OpNot:
		v, err := md.eval(t.Arg(0), memo)
		if err != nil {
			return nil, err
		}
		return md.boolTerm(v.Op() == OpFalse), nil
	case OpAnd:
		for _, a := range t.Args() {
			v, err := md.eval(a, memo)
			if err != nil {
				return nil, err
			}
			if v.Op() == OpFalse {
				return m.False(), nil
			}
		}
		return m.True(), nil
	case OpOr:
		for _, a := range t.Args() {
			v, err := md.eval(a, memo)
			if err != nil {
				return nil, err
			}
			if v.Op() == OpTrue {
				return m.True(), nil
			}
		}
		return m.False(), nil
	case OpImplies:
		a, err := md.eval(t.Arg(0), memo)
		if err != nil {
			return nil, err
		}
		if a.Op() == OpFalse {
			return m.True(), nil
		}
		return md.eval(t.Arg(1), memo)
	case OpIff, OpXor:
		a, err := md.eval(t.Arg(0), memo)
		if err != nil {
			return nil, err
		}
		b, err := md.eval(t.Arg(1), memo)
		if err != nil {
			return nil, err
		}
		same := a == b
		if t.Op() == OpXor {
			same = !same
		}
		return md.boolTerm(same), nil
	case OpIte:
		c, err := md.eval(t.Arg(0), memo)
		if err != nil {
			return nil, err
		}
		if c.Op() == OpTrue {
			return md.eval(t.Arg(1), memo)
		}
		return md.eval(t.Arg(2), memo)
	case OpEq:
		a, err := md.eval(t.Arg(0), memo)
		if err != nil {
			return nil, err
		}
		b, err := md.eval(t.Arg(1), memo)
		if err != nil {
			return nil, err
		}
		return md.boolTerm(a == b), nil
	case OpDistinct:
		seen := make(map[*Term]bool, t.NumArgs())
		for _, a := range t.Args() {
			v, err := md.eval(a, memo)
			if err != nil {
				return nil, err
			}
			if seen[v] {
				return m.False(), nil
			}
			seen[v] = true
		}
		return m.True(), nil
	case OpBVAdd:
		var sum uint64
		for _, a := range t.Args() {
			v, err := md.evalBV(a, memo)
			if err != nil {
				return nil, err
			}
			sum += v
		}
		return m.BVValue(sum, t.Sort().Width()), nil
	case OpBVMul:
		v, err := md.evalBV(t.Arg(0), memo)
		if err != nil {
			return nil, err
		}
		return m.BVValue(v*t.Num(), t.Sort().Width()), nil
	case OpExtract:
		v, err := md.evalBV(t.Arg(0), memo)
		if err != nil {
			return nil, err
		}
		return m.BVValue((v>>t.Num())&1, 1), nil
	case OpBVULE, OpBVULT:
		a, err := md.evalBV(t.Arg(0), memo)
		if err != nil {
			return nil, err
		}
		b, err := md.evalBV(t.Arg(1), memo)
		if err != nil {
			return nil, err
		}
		if t.Op() == OpBVULE {
			return md.boolTerm(a <= b), nil
		}
		return md.boolTerm(a < b), nil
	case OpZeroExt:
		v, err := md.evalBV(t.Arg(0), memo)
		if err != nil {
			return nil, err
		}
		return m.BVValue(v, t.Sort().Width()), nil
	case OpAtLeast, OpAtMost:
		n := uint64(0)
		for _, a := range t.Args() {
			v, err := md.eval(a, memo)
			if err != nil {
				return nil, err
			}
			if v.Op() == OpTrue {
				n++
			}
		}
		if t.Op() == OpAtLeast {
			return md.boolTerm(n >= t.Num()), nil
		}
		return md.boolTerm(n <= t.Num()), nil
	case OpPBLe:
		var sum uint64
		for i, a := range t.Args() {
			v, err := md.eval(a, memo)
			if err != nil {
				return nil, err
			}
			if v.Op() == OpTrue {
				sum += t.Coeffs()[i]
			}
		}
		return md.boolTerm(sum <= t.Num()), nil
	}
	return nil, errors.Errorf("terms: cannot evaluate %s", t)
}
