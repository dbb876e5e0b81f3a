// Package terms provides the term manager: hash-consed ground terms over
// the Boolean, bit-vector, and cardinality operator families, together
// with sorts, declarations, models, and cross-manager translation.
//
// A Manager interns every term it builds, so structurally identical terms
// are pointer-identical and may be used directly as map keys. Managers are
// not safe for concurrent use.
package terms

import (
	"fmt"
	"strings"
)

// Kind discriminates sorts.
type Kind uint8

const (
	BoolKind Kind = iota
	BVKind
)

// Sort is a value type describing the sort of a term. Bit-vector sorts
// carry their width.
type Sort struct {
	kind  Kind
	width uint
}

// BoolSort returns the Boolean sort.
func BoolSort() Sort { return Sort{kind: BoolKind} }

// BVSort returns the bit-vector sort of the given width. The width must
// be positive.
func BVSort(width uint) Sort {
	if width == 0 {
		panic("terms: zero-width bit-vector sort")
	}
	return Sort{kind: BVKind, width: width}
}

func (s Sort) IsBool() bool { return s.kind == BoolKind }
func (s Sort) IsBV() bool   { return s.kind == BVKind }

// Width returns the width of a bit-vector sort and 0 for Bool.
func (s Sort) Width() uint { return s.width }

func (s Sort) String() string {
	if s.kind == BoolKind {
		return "Bool"
	}
	return fmt.Sprintf("BitVec(%d)", s.width)
}

// Op identifies a term constructor.
type Op uint8

const (
	OpTrue Op = iota
	OpFalse
	OpConst
	OpNot
	OpAnd
	OpOr
	OpImplies
	OpIff
	OpXor
	OpIte
	OpEq
	OpDistinct

	OpBVValue
	OpBVAdd
	OpBVMul
	OpBVULE
	OpBVULT
	OpZeroExt
	OpExtract

	OpAtLeast
	OpAtMost
	OpPBLe

	opMax
)

var opNames = map[Op]string{
	OpTrue:     "true",
	OpFalse:    "false",
	OpConst:    "const",
	OpNot:      "not",
	OpAnd:      "and",
	OpOr:       "or",
	OpImplies:  "=>",
	OpIff:      "iff",
	OpXor:      "xor",
	OpIte:      "ite",
	OpEq:       "=",
	OpDistinct: "distinct",
	OpBVValue:  "bv",
	OpBVAdd:    "bvadd",
	OpBVMul:    "bvmul",
	OpBVULE:    "bvule",
	OpBVULT:    "bvult",
	OpZeroExt:  "zero_ext",
	OpExtract:  "extract",
	OpAtLeast:  "at-least",
	OpAtMost:   "at-most",
	OpPBLe:     "pble",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("op(%d)", uint8(o))
}

// Decl is an interned declaration of an uninterpreted constant.
type Decl struct {
	id   uint32
	name string
	sort Sort
}

func (d *Decl) Name() string { return d.name }
func (d *Decl) Sort() Sort   { return d.sort }
func (d *Decl) String() string {
	return d.name
}

// Term is a hash-consed term node. Terms are created only through a
// Manager; two terms from the same Manager are structurally equal exactly
// when they are pointer-equal.
type Term struct {
	id     uint32
	op     Op
	sort   Sort
	decl   *Decl
	args   []*Term
	num    uint64
	coeffs []uint64
}

// ID returns the term's interning id, unique within its Manager.
func (t *Term) ID() uint32   { return t.id }
func (t *Term) Op() Op       { return t.op }
func (t *Term) Sort() Sort   { return t.sort }
func (t *Term) Decl() *Decl  { return t.decl }
func (t *Term) NumArgs() int { return len(t.args) }
func (t *Term) Arg(i int) *Term {
	return t.args[i]
}
func (t *Term) Args() []*Term { return t.args }

// Num returns the numeric payload of the term: the value of a BVValue,
// the bound of AtLeast/AtMost/PBLe, or the extension width of ZeroExt.
func (t *Term) Num() uint64 { return t.num }

// Coeffs returns the coefficient vector of a PBLe term.
func (t *Term) Coeffs() []uint64 { return t.coeffs }

// IsLeaf reports whether t is an application with zero arguments, i.e. an
// uninterpreted constant.
func (t *Term) IsLeaf() bool { return t.op == OpConst }

func (t *Term) String() string {
	switch t.op {
	case OpTrue:
		return "true"
	case OpFalse:
		return "false"
	case OpConst:
		return t.decl.name
	case OpBVValue:
		return fmt.Sprintf("#x%0*x", (t.sort.width+3)/4, t.num)
	}
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(t.op.String())
	switch t.op {
	case OpAtLeast, OpAtMost, OpZeroExt, OpExtract, OpBVMul:
		fmt.Fprintf(&b, " %d", t.num)
	}
	if t.op == OpPBLe {
		fmt.Fprintf(&b, " %v %d", t.coeffs, t.num)
	}
	for _, a := range t.args {
		b.WriteByte(' ')
		b.WriteString(a.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Manager owns and interns terms and declarations. It also owns the
// cooperative resource limit shared with solvers and tactics.
type Manager struct {
	terms    map[string]*Term
	decls    map[string]*Decl
	families map[string][]Op
	ownerOf  [opMax]string
	nextTerm uint32
	nextDecl uint32
	limit    *Limit
	tru      *Term
	fls      *Term
}

// NewManager returns an empty manager with the built-in operator
// families (core, bv, card) registered.
func NewManager() *Manager {
	m := &Manager{
		terms:    make(map[string]*Term),
		decls:    make(map[string]*Decl),
		families: make(map[string][]Op),
		limit:    NewLimit(),
	}
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(m.RegisterFamily("core", OpTrue, OpFalse, OpConst, OpNot, OpAnd, OpOr, OpImplies, OpIff, OpXor, OpIte, OpEq, OpDistinct))
	must(m.RegisterFamily("bv", OpBVValue, OpBVAdd, OpBVMul, OpBVULE, OpBVULT, OpZeroExt, OpExtract))
	must(m.RegisterFamily("card", OpAtLeast, OpAtMost, OpPBLe))
	m.tru = m.intern(&Term{op: OpTrue, sort: BoolSort()})
	m.fls = m.intern(&Term{op: OpFalse, sort: BoolSort()})
	return m
}

// Limit returns the manager-owned resource limit handle.
func (m *Manager) Limit() *Limit { return m.limit }

// RegisterFamily registers an operator family under the given name. Each
// operator may belong to at most one family.
func (m *Manager) RegisterFamily(name string, ops ...Op) error {
	if _, ok := m.families[name]; ok {
		return fmt.Errorf("terms: operator family %q already registered", name)
	}
	for _, op := range ops {
		if owner := m.ownerOf[op]; owner != "" {
			return fmt.Errorf("terms: operator %s already owned by family %q", op, owner)
		}
	}
	for _, op := range ops {
		m.ownerOf[op] = name
	}
	m.families[name] = ops
	return nil
}

// FamilyOf returns the name of the family owning op, or "".
func (m *Manager) FamilyOf(op Op) string { return m.ownerOf[op] }

func termKey(op Op, sort Sort, decl *Decl, num uint64, coeffs []uint64, args []*Term) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d/%d.%d/%d", op, sort.kind, sort.width, num)
	if decl != nil {
		fmt.Fprintf(&b, "/d%d", decl.id)
	}
	for _, c := range coeffs {
		fmt.Fprintf(&b, "/c%d", c)
	}
	for _, a := range args {
		fmt.Fprintf(&b, "/%d", a.id)
	}
	return b.String()
}

func (m *Manager) intern(t *Term) *Term {
	k := termKey(t.op, t.sort, t.decl, t.num, t.coeffs, t.args)
	if prev, ok := m.terms[k]; ok {
		return prev
	}
	m.nextTerm++
	t.id = m.nextTerm
	m.terms[k] = t
	return t
}

// NumTerms returns the number of distinct terms interned so far.
func (m *Manager) NumTerms() int { return len(m.terms) }

// True returns the Boolean constant true.
func (m *Manager) True() *Term { return m.tru }

// False returns the Boolean constant false.
func (m *Manager) False() *Term { return m.fls }

// DeclOf interns and returns the declaration for (name, sort).
func (m *Manager) DeclOf(name string, sort Sort) *Decl {
	k := fmt.Sprintf("%s/%d.%d", name, sort.kind, sort.width)
	if d, ok := m.decls[k]; ok {
		return d
	}
	m.nextDecl++
	d := &Decl{id: m.nextDecl, name: name, sort: sort}
	m.decls[k] = d
	return d
}

// Const returns the 0-ary application of the declaration for (name, sort).
func (m *Manager) Const(name string, sort Sort) *Term {
	d := m.DeclOf(name, sort)
	return m.intern(&Term{op: OpConst, sort: sort, decl: d})
}

// Bool is shorthand for a Boolean constant term.
func (m *Manager) Bool(name string) *Term { return m.Const(name, BoolSort()) }

// BV is shorthand for a bit-vector constant term.
func (m *Manager) BV(name string, width uint) *Term { return m.Const(name, BVSort(width)) }

func (m *Manager) wantBool(who string, args ...*Term) {
	for _, a := range args {
		if !a.sort.IsBool() {
			panic(fmt.Sprintf("terms: %s applied to non-Boolean term %s", who, a))
		}
	}
}

// Not returns the negation of a.
func (m *Manager) Not(a *Term) *Term {
	m.wantBool("not", a)
	return m.intern(&Term{op: OpNot, sort: BoolSort(), args: []*Term{a}})
}

// And returns the conjunction of args. And() is true; And(a) is a.
func (m *Manager) And(args ...*Term) *Term {
	m.wantBool("and", args...)
	switch len(args) {
	case 0:
		return m.tru
	case 1:
		return args[0]
	}
	return m.intern(&Term{op: OpAnd, sort: BoolSort(), args: dup(args)})
}

// Or returns the disjunction of args. Or() is false; Or(a) is a.
func (m *Manager) Or(args ...*Term) *Term {
	m.wantBool("or", args...)
	switch len(args) {
	case 0:
		return m.fls
	case 1:
		return args[0]
	}
	return m.intern(&Term{op: OpOr, sort: BoolSort(), args: dup(args)})
}

// Implies returns a ⇒ b.
func (m *Manager) Implies(a, b *Term) *Term {
	m.wantBool("=>", a, b)
	return m.intern(&Term{op: OpImplies, sort: BoolSort(), args: []*Term{a, b}})
}

// Iff returns a ⇔ b.
func (m *Manager) Iff(a, b *Term) *Term {
	m.wantBool("iff", a, b)
	return m.intern(&Term{op: OpIff, sort: BoolSort(), args: []*Term{a, b}})
}

// Xor returns a ⊕ b.
func (m *Manager) Xor(a, b *Term) *Term {
	m.wantBool("xor", a, b)
	return m.intern(&Term{op: OpXor, sort: BoolSort(), args: []*Term{a, b}})
}

// Ite returns if c then t else e. The branches must share a sort.
func (m *Manager) Ite(c, t, e *Term) *Term {
	m.wantBool("ite", c)
	if t.sort != e.sort {
		panic(fmt.Sprintf("terms: ite branches have sorts %s and %s", t.sort, e.sort))
	}
	return m.intern(&Term{op: OpIte, sort: t.sort, args: []*Term{c, t, e}})
}

// Eq returns a = b. The operands must share a sort.
func (m *Manager) Eq(a, b *Term) *Term {
	if a.sort != b.sort {
		panic(fmt.Sprintf("terms: = operands have sorts %s and %s", a.sort, b.sort))
	}
	return m.intern(&Term{op: OpEq, sort: BoolSort(), args: []*Term{a, b}})
}

// Distinct returns the pairwise-distinctness constraint over args.
func (m *Manager) Distinct(args ...*Term) *Term {
	if len(args) < 2 {
		return m.tru
	}
	s := args[0].sort
	for _, a := range args[1:] {
		if a.sort != s {
			panic("terms: distinct over mixed sorts")
		}
	}
	return m.intern(&Term{op: OpDistinct, sort: BoolSort(), args: dup(args)})
}

// BVValue returns the bit-vector numeral v of the given width. v is
// truncated to the width.
func (m *Manager) BVValue(v uint64, width uint) *Term {
	if width == 0 {
		panic("terms: zero-width numeral")
	}
	if width < 64 {
		v &= (1 << width) - 1
	}
	return m.intern(&Term{op: OpBVValue, sort: BVSort(width), num: v})
}

func (m *Manager) wantBV(who string, width uint, args ...*Term) uint {
	for _, a := range args {
		if !a.sort.IsBV() {
			panic(fmt.Sprintf("terms: %s applied to non-bit-vector term %s", who, a))
		}
		if width == 0 {
			width = a.sort.width
		} else if a.sort.width != width {
			panic(fmt.Sprintf("terms: %s operand width %d, want %d", who, a.sort.width, width))
		}
	}
	return width
}

// BVAdd returns the modular sum of args, which must share a width.
func (m *Manager) BVAdd(args ...*Term) *Term {
	if len(args) == 0 {
		panic("terms: bvadd needs at least one operand")
	}
	w := m.wantBV("bvadd", 0, args...)
	if len(args) == 1 {
		return args[0]
	}
	return m.intern(&Term{op: OpBVAdd, sort: BVSort(w), args: dup(args)})
}

// BVMul returns a scaled by the numeral coefficient c, modulo a's
// width. Pseudo-Boolean sums use it to weight their guards. c is
// truncated to the width; scaling by 0 or 1 folds immediately.
func (m *Manager) BVMul(a *Term, c uint64) *Term {
	m.wantBV("bvmul", 0, a)
	w := a.sort.width
	if w < 64 {
		c &= (1 << w) - 1
	}
	switch c {
	case 0:
		return m.BVValue(0, w)
	case 1:
		return a
	}
	return m.intern(&Term{op: OpBVMul, sort: BVSort(w), args: []*Term{a}, num: c})
}

// BVULE returns the unsigned comparison a ≤ b.
func (m *Manager) BVULE(a, b *Term) *Term {
	m.wantBV("bvule", 0, a, b)
	if a.sort.width != b.sort.width {
		panic("terms: bvule operand widths differ")
	}
	return m.intern(&Term{op: OpBVULE, sort: BoolSort(), args: []*Term{a, b}})
}

// BVULT returns the unsigned comparison a < b.
func (m *Manager) BVULT(a, b *Term) *Term {
	m.wantBV("bvult", 0, a, b)
	if a.sort.width != b.sort.width {
		panic("terms: bvult operand widths differ")
	}
	return m.intern(&Term{op: OpBVULT, sort: BoolSort(), args: []*Term{a, b}})
}

// ZeroExt returns a zero-extended by extra bits.
func (m *Manager) ZeroExt(a *Term, extra uint) *Term {
	m.wantBV("zero_ext", 0, a)
	if extra == 0 {
		return a
	}
	return m.intern(&Term{op: OpZeroExt, sort: BVSort(a.sort.width + extra), args: []*Term{a}, num: uint64(extra)})
}

// Extract returns the single bit of a at the given index as a
// width-one bit-vector. The index must be within a's width.
func (m *Manager) Extract(a *Term, bit uint) *Term {
	m.wantBV("extract", 0, a)
	if bit >= a.sort.width {
		panic(fmt.Sprintf("terms: extract bit %d out of range for width %d", bit, a.sort.width))
	}
	return m.intern(&Term{op: OpExtract, sort: BVSort(1), args: []*Term{a}, num: uint64(bit)})
}

// AtLeast returns the cardinality constraint |{args true}| ≥ k.
func (m *Manager) AtLeast(k uint, args ...*Term) *Term {
	m.wantBool("at-least", args...)
	return m.intern(&Term{op: OpAtLeast, sort: BoolSort(), args: dup(args), num: uint64(k)})
}

// AtMost returns the cardinality constraint |{args true}| ≤ k.
func (m *Manager) AtMost(k uint, args ...*Term) *Term {
	m.wantBool("at-most", args...)
	return m.intern(&Term{op: OpAtMost, sort: BoolSort(), args: dup(args), num: uint64(k)})
}

// PBLe returns the pseudo-Boolean constraint Σ coeffs[i]·args[i] ≤ bound.
func (m *Manager) PBLe(coeffs []uint64, args []*Term, bound uint64) *Term {
	if len(coeffs) != len(args) {
		panic("terms: pble coefficient count mismatch")
	}
	m.wantBool("pble", args...)
	cs := make([]uint64, len(coeffs))
	copy(cs, coeffs)
	return m.intern(&Term{op: OpPBLe, sort: BoolSort(), args: dup(args), coeffs: cs, num: bound})
}

func dup(args []*Term) []*Term {
	out := make([]*Term, len(args))
	copy(out, args)
	return out
}
