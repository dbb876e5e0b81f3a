package terms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashConsing(t *testing.T) {
	m := NewManager()
	x := m.Bool("x")
	y := m.Bool("y")

	assert.Same(t, x, m.Bool("x"))
	assert.Same(t, m.And(x, y), m.And(x, y))
	assert.Same(t, m.BVValue(3, 4), m.BVValue(3, 4))
	assert.NotSame(t, m.And(x, y), m.And(y, x))
	assert.NotSame(t, m.BVValue(3, 4), m.BVValue(3, 8))

	// Same name, different sort: distinct declarations.
	assert.NotSame(t, m.Bool("c"), m.BV("c", 4))
}

func TestConstructorNormalization(t *testing.T) {
	m := NewManager()
	x := m.Bool("x")

	assert.Same(t, m.True(), m.And())
	assert.Same(t, m.False(), m.Or())
	assert.Same(t, x, m.And(x))
	assert.Same(t, x, m.Or(x))

	b := m.BV("b", 4)
	assert.Same(t, b, m.BVAdd(b))
	assert.Same(t, b, m.ZeroExt(b, 0))
	assert.Same(t, b, m.BVMul(b, 1))
	assert.Same(t, b, m.BVMul(b, 17), "coefficient reduced modulo the width")
	assert.Same(t, m.BVValue(0, 4), m.BVMul(b, 0))
	assert.Same(t, m.True(), m.Distinct(x))
}

func TestBVValueTruncation(t *testing.T) {
	m := NewManager()
	assert.Same(t, m.BVValue(0x12, 4), m.BVValue(0x2, 4))
	assert.Equal(t, uint64(2), m.BVValue(0x12, 4).Num())
}

func TestRegisterFamily(t *testing.T) {
	m := NewManager()
	assert.Equal(t, "core", m.FamilyOf(OpAnd))
	assert.Equal(t, "bv", m.FamilyOf(OpBVAdd))
	assert.Equal(t, "card", m.FamilyOf(OpAtLeast))

	err := m.RegisterFamily("core")
	assert.Error(t, err)
	err = m.RegisterFamily("seq", OpAnd)
	assert.Error(t, err)
}

func TestModelEval(t *testing.T) {
	m := NewManager()
	x := m.Bool("x")
	y := m.Bool("y")
	c := m.BV("c", 4)

	md := NewModel(m)
	md.Set(x.Decl(), m.True())
	md.Set(c.Decl(), m.BVValue(5, 4))

	type tc struct {
		Name string
		Term *Term
		Want *Term
	}
	for _, tt := range []tc{
		{Name: "const", Term: x, Want: m.True()},
		{Name: "default completion", Term: y, Want: m.False()},
		{Name: "not", Term: m.Not(x), Want: m.False()},
		{Name: "or", Term: m.Or(y, x), Want: m.True()},
		{Name: "implies", Term: m.Implies(y, x), Want: m.True()},
		{Name: "iff", Term: m.Iff(x, y), Want: m.False()},
		{Name: "xor", Term: m.Xor(x, y), Want: m.True()},
		{Name: "ite", Term: m.Ite(x, y, x), Want: m.False()},
		{Name: "bv add wraps", Term: m.Eq(m.BVAdd(c, m.BVValue(12, 4)), m.BVValue(1, 4)), Want: m.True()},
		{Name: "bvule", Term: m.BVULE(c, m.BVValue(5, 4)), Want: m.True()},
		{Name: "bvult", Term: m.BVULT(c, m.BVValue(5, 4)), Want: m.False()},
		{Name: "zero ext", Term: m.Eq(m.ZeroExt(c, 4), m.BVValue(5, 8)), Want: m.True()},
		{Name: "bv mul wraps", Term: m.Eq(m.BVMul(c, 5), m.BVValue(9, 4)), Want: m.True()},
		{Name: "extract low bit", Term: m.Eq(m.Extract(c, 0), m.BVValue(1, 1)), Want: m.True()},
		{Name: "extract high bit", Term: m.Eq(m.Extract(c, 3), m.BVValue(0, 1)), Want: m.True()},
		{Name: "at least", Term: m.AtLeast(1, x, y), Want: m.True()},
		{Name: "at most", Term: m.AtMost(0, x, y), Want: m.False()},
		{Name: "pble", Term: m.PBLe([]uint64{3, 2}, []*Term{x, y}, 3), Want: m.True()},
		{Name: "distinct", Term: m.Distinct(x, y), Want: m.True()},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			got, err := md.Eval(tt.Term)
			require.NoError(t, err)
			assert.Same(t, tt.Want, got)
		})
	}
}

func TestTranslate(t *testing.T) {
	src := NewManager()
	dst := NewManager()

	x := src.Bool("x")
	c := src.BV("c", 4)
	f := src.And(
		src.Or(x, src.Not(x)),
		src.Eq(src.BVAdd(c, src.BVValue(1, 4)), src.BVValue(2, 4)),
		src.Eq(src.Extract(src.BVMul(c, 3), 1), src.BVValue(1, 1)),
	)

	tr := NewTranslator(dst)
	g := tr.Translate(f)

	require.Equal(t, f.String(), g.String())
	assert.Same(t, g, tr.Translate(f), "memoized")
	assert.Same(t, dst.Bool("x"), g.Arg(0).Arg(0))
	assert.NotSame(t, x, g.Arg(0).Arg(0))
}

func TestLimit(t *testing.T) {
	l := NewLimit()
	assert.False(t, l.Cancelled())
	l.Cancel()
	assert.True(t, l.Cancelled())
	l.Reset()
	assert.False(t, l.Cancelled())

	var nilLimit *Limit
	assert.False(t, nilLimit.Cancelled())
}
