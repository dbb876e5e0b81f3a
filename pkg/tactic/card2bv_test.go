package tactic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satkit/satkit/pkg/terms"
)

func TestCard2BVSemantics(t *testing.T) {
	m := terms.NewManager()
	p := m.Bool("p")
	q := m.Bool("q")
	r := m.Bool("r")
	tac := Card2BV(m)

	type tc struct {
		Name string
		In   *terms.Term
	}
	for _, tt := range []tc{
		{Name: "at least one", In: m.AtLeast(1, p, q, r)},
		{Name: "at least two", In: m.AtLeast(2, p, q, r)},
		{Name: "at least all", In: m.AtLeast(3, p, q, r)},
		{Name: "at most zero", In: m.AtMost(0, p, q, r)},
		{Name: "at most one", In: m.AtMost(1, p, q, r)},
		{Name: "at most two", In: m.AtMost(2, p, q, r)},
		{Name: "pble", In: m.PBLe([]uint64{2, 3, 4}, []*terms.Term{p, q, r}, 5)},
		{Name: "nested", In: m.Or(m.Not(p), m.AtLeast(2, p, q, r))},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			out := applyOne(t, tac, tt.In)
			require.Equal(t, 1, out.Len())
			got := out.Assertion(0)
			requireEquivalent(t, m, tt.In, got)
		})
	}
}

func TestCard2BVEliminatesCardinality(t *testing.T) {
	m := terms.NewManager()
	p := m.Bool("p")
	q := m.Bool("q")
	tac := Card2BV(m)

	out := applyOne(t, tac, m.AtLeast(1, p, q))
	got := out.Assertion(0)
	assert.Equal(t, terms.OpBVULE, got.Op())

	var hasCard func(t *terms.Term) bool
	hasCard = func(t *terms.Term) bool {
		switch t.Op() {
		case terms.OpAtLeast, terms.OpAtMost, terms.OpPBLe:
			return true
		}
		for _, a := range t.Args() {
			if hasCard(a) {
				return true
			}
		}
		return false
	}
	assert.False(t, hasCard(got))
}

func TestCard2BVTrivialBounds(t *testing.T) {
	m := terms.NewManager()
	p := m.Bool("p")
	q := m.Bool("q")
	tac := Card2BV(m)

	out := applyOne(t, tac, m.AtLeast(3, p, q))
	require.Equal(t, 1, out.Len())
	assert.Same(t, m.False(), out.Assertion(0))

	out = applyOne(t, tac, m.AtMost(2, p, q))
	require.Equal(t, 1, out.Len())
	assert.Same(t, m.True(), out.Assertion(0))
}
