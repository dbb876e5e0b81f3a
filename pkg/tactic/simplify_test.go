package tactic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satkit/satkit/pkg/goal"
	"github.com/satkit/satkit/pkg/terms"
)

func TestSimplifyIdentities(t *testing.T) {
	m := terms.NewManager()
	x := m.Bool("x")
	y := m.Bool("y")
	z := m.Bool("z")
	tac := Simplify(m, DefaultProfile())

	type tc struct {
		Name string
		In   *terms.Term
		Want *terms.Term
	}
	for _, tt := range []tc{
		{Name: "double negation", In: m.Not(m.Not(x)), Want: x},
		{Name: "or with false", In: m.Or(x, m.False()), Want: x},
		{Name: "or flattening", In: m.Or(m.Or(x, y), z), Want: m.Or(x, y, z)},
		{Name: "or dedupe", In: m.Or(x, x), Want: x},
		{Name: "implies unfolds", In: m.Implies(x, y), Want: m.Or(m.Not(x), y)},
		{Name: "iff with true", In: m.Iff(x, m.True()), Want: x},
		{Name: "iff reflexive", In: m.Iff(x, x), Want: m.True()},
		{Name: "xor with false", In: m.Xor(x, m.False()), Want: x},
		{Name: "ite constant guard", In: m.Ite(m.False(), x, y), Want: y},
		{Name: "eq of numerals", In: m.Eq(m.BVValue(3, 4), m.BVValue(3, 4)), Want: m.True()},
		{Name: "bv constant folding", In: m.BVULE(m.BVAdd(m.BVValue(3, 4), m.BVValue(2, 4)), m.BVValue(5, 4)), Want: m.True()},
		{Name: "bv mul folding", In: m.Eq(m.BVMul(m.BVValue(3, 4), 5), m.BVValue(15, 4)), Want: m.True()},
		{Name: "extract folding", In: m.Eq(m.Extract(m.BVValue(5, 4), 2), m.BVValue(1, 1)), Want: m.True()},
		{Name: "at-least zero", In: m.AtLeast(0, x, y), Want: m.True()},
		{Name: "at-least too many", In: m.AtLeast(3, x, y), Want: m.False()},
		{Name: "at-most all", In: m.AtMost(2, x, y), Want: m.True()},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			out := applyOne(t, tac, tt.In)
			if tt.Want.Op() == terms.OpTrue {
				// Vacuous untagged assertions are dropped from the goal.
				assert.Equal(t, 0, out.Len())
				return
			}
			require.Equal(t, 1, out.Len())
			assert.Same(t, tt.Want, out.Assertion(0))
		})
	}
}

func TestSimplifyElimAnd(t *testing.T) {
	m := terms.NewManager()
	x := m.Bool("x")
	y := m.Bool("y")
	tac := Simplify(m, DefaultProfile())

	out := applyOne(t, tac, m.And(x, y))
	require.Equal(t, 1, out.Len())
	got := out.Assertion(0)
	assert.Equal(t, terms.OpNot, got.Op())
	assert.Equal(t, terms.OpOr, got.Arg(0).Op())
	requireEquivalent(t, m, m.And(x, y), got)
}

func TestSimplifyComplementary(t *testing.T) {
	m := terms.NewManager()
	x := m.Bool("x")
	tac := Simplify(m, DefaultProfile())

	out := applyOne(t, tac, m.Or(x, m.Not(x)))
	assert.Equal(t, 0, out.Len(), "tautology dropped")
}

func TestSimplifyPreservesSemantics(t *testing.T) {
	m := terms.NewManager()
	x := m.Bool("x")
	y := m.Bool("y")
	z := m.Bool("z")
	tac := Simplify(m, DefaultProfile())

	for _, f := range []*terms.Term{
		m.Ite(x, y, z),
		m.Implies(m.And(x, y), z),
		m.Iff(m.Xor(x, y), z),
		m.Not(m.And(x, m.Or(y, m.Not(z)))),
	} {
		out := applyOne(t, tac, f)
		require.Equal(t, 1, out.Len(), "%s", f)
		requireEquivalent(t, m, f, out.Assertion(0))
	}
}

func TestSimplifyKeepsTaggedAssertions(t *testing.T) {
	m := terms.NewManager()
	a := m.Bool("a")
	tac := Simplify(m, DefaultProfile())

	g := goal.New(true, true)
	g.AssertWithDep(m.Or(a, m.Not(a)), a)
	res, err := tac.Apply(g)
	require.NoError(t, err)
	require.Len(t, res.Subgoals, 1)
	out := res.Subgoals[0]
	require.Equal(t, 1, out.Len(), "tagged tautology kept for dependency tracking")
	assert.Same(t, a, out.Dep(0))
}
