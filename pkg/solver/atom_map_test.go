package solver

import (
	"testing"

	"github.com/go-air/gini/z"
	"github.com/stretchr/testify/assert"

	"github.com/satkit/satkit/pkg/terms"
)

func TestAtomMapScoping(t *testing.T) {
	m := terms.NewManager()
	x := m.Bool("x")
	y := m.Bool("y")
	zt := m.Bool("z")

	am := newAtomMap()
	am.Insert(x, z.Var(1).Pos())

	am.Push()
	am.Insert(y, z.Var(2).Pos())
	am.Push()
	am.Insert(zt, z.Var(3).Pos())
	assert.Equal(t, 3, am.Len())

	am.Pop(1)
	assert.Equal(t, 2, am.Len())
	_, ok := am.Lit(zt)
	assert.False(t, ok)
	got, ok := am.Lit(y)
	assert.True(t, ok)
	assert.Equal(t, z.Var(2).Pos(), got)

	am.Pop(1)
	assert.Equal(t, 1, am.Len())
	got, ok = am.Lit(x)
	assert.True(t, ok)
	assert.Equal(t, z.Var(1).Pos(), got)

	// Popping past the base is a no-op.
	am.Pop(4)
	assert.Equal(t, 1, am.Len())
}

func TestAtomMapRange(t *testing.T) {
	m := terms.NewManager()
	am := newAtomMap()
	am.Insert(m.Bool("x"), z.Var(1).Pos())
	am.Insert(m.Bool("y"), z.Var(2).Pos())

	n := 0
	am.Range(func(*terms.Term, z.Lit) bool {
		n++
		return true
	})
	assert.Equal(t, 2, n)

	n = 0
	am.Range(func(*terms.Term, z.Lit) bool {
		n++
		return false
	})
	assert.Equal(t, 1, n)
}
