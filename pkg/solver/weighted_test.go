package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satkit/satkit/pkg/satcore"
	"github.com/satkit/satkit/pkg/terms"
)

func TestCheckSatWeighted(t *testing.T) {
	m := terms.NewManager()
	s := New(m)
	x := m.Bool("x")
	y := m.Bool("y")

	// The two soft assumptions conflict.
	s.Assert(m.Or(m.Not(x), m.Not(y)))

	asms := []*terms.Term{x, y}
	r, err := s.CheckSatWeighted(asms, []float64{1, 5}, 10)
	require.NoError(t, err)
	require.Equal(t, satcore.Sat, r)
	md := model(t, s)
	assert.Same(t, m.True(), md.Value(y.Decl()), "heavier soft assumption survives")

	r, err = s.CheckSatWeighted(asms, []float64{1, 5}, 0)
	require.NoError(t, err)
	assert.Equal(t, satcore.Unsat, r)
}

func TestCheckSatWeightedLengthMismatch(t *testing.T) {
	m := terms.NewManager()
	s := New(m)
	_, err := s.CheckSatWeighted([]*terms.Term{m.Bool("x")}, []float64{1, 2}, 1)
	assert.Error(t, err)
}
