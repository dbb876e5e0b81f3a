package satcore

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-air/gini/z"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckBasics(t *testing.T) {
	c := New(nil, nil)
	x := c.NewVar()
	y := c.NewVar()

	c.AddClause(x, y)
	c.AddClause(x.Not())
	require.Equal(t, Sat, c.Check(nil, nil, 0))
	assert.True(t, c.ModelIsCurrent())
	assert.True(t, c.ModelValue(y))
	assert.False(t, c.ModelValue(x))
	assert.True(t, c.ModelValue(x.Not()))

	c.AddClause(y.Not())
	assert.False(t, c.ModelIsCurrent(), "adding clauses invalidates the model")
	require.Equal(t, Unsat, c.Check(nil, nil, 0))
}

func TestCheckAssumptionsAndCore(t *testing.T) {
	c := New(nil, nil)
	a := c.NewVar()
	b := c.NewVar()
	x := c.NewVar()

	// a ⇒ x, b ⇒ ¬x
	c.AddClause(a.Not(), x)
	c.AddClause(b.Not(), x.Not())

	require.Equal(t, Sat, c.Check([]z.Lit{a}, nil, 0))
	assert.True(t, c.ModelValue(x))

	require.Equal(t, Unsat, c.Check([]z.Lit{a, b}, nil, 0))
	core := c.Core()
	assert.ElementsMatch(t, []z.Lit{a, b}, core)
}

func TestUserScopes(t *testing.T) {
	c := New(nil, nil)
	x := c.NewVar()

	c.UserPush()
	c.AddClause(x)
	require.Equal(t, Sat, c.Check(nil, nil, 0))
	assert.True(t, c.ModelValue(x))
	require.Equal(t, Unsat, c.Check([]z.Lit{x.Not()}, nil, 0))

	c.UserPop(1)
	assert.Equal(t, 0, c.Level())
	require.Equal(t, Sat, c.Check([]z.Lit{x.Not()}, nil, 0), "popped clause no longer constrains")
}

func TestNestedScopes(t *testing.T) {
	c := New(nil, nil)
	x := c.NewVar()
	y := c.NewVar()

	c.AddClause(x, y)
	c.UserPush()
	c.AddClause(x.Not())
	c.UserPush()
	c.AddClause(y.Not())
	assert.Equal(t, 2, c.Level())
	require.Equal(t, Unsat, c.Check(nil, nil, 0))

	c.UserPop(1)
	require.Equal(t, Sat, c.Check(nil, nil, 0))
	assert.True(t, c.ModelValue(y))

	c.UserPop(1)
	require.Equal(t, Sat, c.Check([]z.Lit{x, y.Not()}, nil, 0))
}

func TestWeightedRelaxation(t *testing.T) {
	c := New(nil, nil)
	x := c.NewVar()
	y := c.NewVar()

	// x and y conflict; either soft assumption alone is satisfiable.
	c.AddClause(x.Not(), y.Not())

	asms := []z.Lit{x, y}
	weights := []float64{1, 2}

	// A generous budget lets the lighter assumption go.
	require.Equal(t, Sat, c.Check(asms, weights, 10))
	assert.True(t, c.ModelValue(y), "heavier assumption retained")

	// No budget at all behaves like hard assumptions.
	require.Equal(t, Unsat, c.Check(asms, weights, 0))
}

func TestWeightedHardConflict(t *testing.T) {
	c := New(nil, nil)
	x := c.NewVar()
	c.AddClause(x)
	c.AddClause(x.Not())

	require.Equal(t, Unsat, c.Check([]z.Lit{x}, []float64{1}, 100))
	assert.Empty(t, c.Core())
}

func TestDisplayWCNF(t *testing.T) {
	c := New(nil, nil)
	x := c.NewVar()
	y := c.NewVar()
	c.AddClause(x, y)

	var buf bytes.Buffer
	require.NoError(t, c.DisplayWCNF(&buf, []z.Lit{x.Not()}, []uint64{3}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "p wcnf 2 2 4", lines[0])
	assert.Equal(t, "4 1 2 0", lines[1])
	assert.Equal(t, "3 -1 0", lines[2])
}

func TestDisplayWCNFWeightMismatch(t *testing.T) {
	c := New(nil, nil)
	x := c.NewVar()
	var buf bytes.Buffer
	assert.Error(t, c.DisplayWCNF(&buf, []z.Lit{x}, nil))
}

func TestStatistics(t *testing.T) {
	c := New(nil, nil)
	x := c.NewVar()
	c.AddClause(x)
	c.Check(nil, nil, 0)
	c.Check([]z.Lit{x.Not()}, nil, 0)

	st := c.Statistics()
	assert.Equal(t, int64(1), st.Vars)
	assert.Equal(t, int64(1), st.Clauses)
	assert.Equal(t, int64(2), st.Checks)
	assert.Equal(t, int64(1), st.Sats)
	assert.Equal(t, int64(1), st.Unsats)
}
