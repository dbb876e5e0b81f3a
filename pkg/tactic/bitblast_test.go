package tactic

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satkit/satkit/pkg/terms"
)

// evalClosed evaluates a blasted term with no free constants.
func evalClosed(t *testing.T, m *terms.Manager, f *terms.Term) bool {
	t.Helper()
	md := terms.NewModel(m)
	v, err := md.EvalBool(f)
	require.NoError(t, err)
	return v
}

func TestBitBlastArithmetic(t *testing.T) {
	m := terms.NewManager()
	rw := NewBitBlastRewriter(m)

	for a := uint64(0); a < 8; a++ {
		for b := uint64(0); b < 8; b++ {
			t.Run(fmt.Sprintf("%d_%d", a, b), func(t *testing.T) {
				sum := m.Eq(m.BVAdd(m.BVValue(a, 3), m.BVValue(b, 3)), m.BVValue((a+b)&7, 3))
				f, err := rw.Rewrite(sum)
				require.NoError(t, err)
				assert.True(t, evalClosed(t, m, f), "%d+%d", a, b)

				ult, err := rw.Rewrite(m.BVULT(m.BVValue(a, 3), m.BVValue(b, 3)))
				require.NoError(t, err)
				assert.Equal(t, a < b, evalClosed(t, m, ult))

				ule, err := rw.Rewrite(m.BVULE(m.BVValue(a, 3), m.BVValue(b, 3)))
				require.NoError(t, err)
				assert.Equal(t, a <= b, evalClosed(t, m, ule))
			})
		}
	}
}

func TestBitBlastMul(t *testing.T) {
	m := terms.NewManager()
	rw := NewBitBlastRewriter(m)

	for a := uint64(0); a < 8; a++ {
		for c := uint64(2); c < 8; c++ {
			f, err := rw.Rewrite(m.Eq(m.BVMul(m.BVValue(a, 3), c), m.BVValue((a*c)&7, 3)))
			require.NoError(t, err)
			assert.True(t, evalClosed(t, m, f), "%d*%d", a, c)
		}
	}

	// Multiplying a blasted constant keeps the encoding shared.
	d := m.BV("d", 3)
	_, err := rw.Rewrite(m.Eq(m.BVMul(d, 3), m.BVValue(6, 3)))
	require.NoError(t, err)
	assert.Len(t, rw.Const2Bits()[d.Decl()], 3)
}

func TestBitBlastExtract(t *testing.T) {
	m := terms.NewManager()
	rw := NewBitBlastRewriter(m)

	for v := uint64(0); v < 8; v++ {
		for bit := uint(0); bit < 3; bit++ {
			f, err := rw.Rewrite(m.Eq(m.Extract(m.BVValue(v, 3), bit), m.BVValue((v>>bit)&1, 1)))
			require.NoError(t, err)
			assert.True(t, evalClosed(t, m, f), "bit %d of %d", bit, v)
		}
	}
}

func TestBitBlastIteAndZeroExt(t *testing.T) {
	m := terms.NewManager()
	rw := NewBitBlastRewriter(m)
	p := m.Bool("p")

	f, err := rw.Rewrite(m.Eq(m.Ite(p, m.BVValue(2, 3), m.BVValue(5, 3)), m.BVValue(2, 3)))
	require.NoError(t, err)

	md := terms.NewModel(m)
	md.Set(p.Decl(), m.True())
	v, err := md.EvalBool(f)
	require.NoError(t, err)
	assert.True(t, v)
	md.Set(p.Decl(), m.False())
	v, err = md.EvalBool(f)
	require.NoError(t, err)
	assert.False(t, v)

	g, err := rw.Rewrite(m.Eq(m.ZeroExt(m.BVValue(5, 3), 2), m.BVValue(5, 5)))
	require.NoError(t, err)
	assert.True(t, evalClosed(t, m, g))
}

func TestBitBlastConstants(t *testing.T) {
	m := terms.NewManager()
	rw := NewBitBlastRewriter(m)
	c := m.BV("c", 4)

	_, err := rw.Rewrite(m.Eq(c, m.BVValue(9, 4)))
	require.NoError(t, err)

	bits, ok := rw.Const2Bits()[c.Decl()]
	require.True(t, ok)
	require.Len(t, bits, 4)
	for i, bit := range bits {
		assert.True(t, bit.IsLeaf())
		assert.Equal(t, fmt.Sprintf("c!%d", i), bit.Decl().Name())
	}

	// Model reconstruction from bit values.
	md := terms.NewModel(m)
	md.Set(bits[0].Decl(), m.True())
	md.Set(bits[3].Decl(), m.True())
	mc := NewBitBlastModelConverter(m, rw.Const2Bits())
	require.NoError(t, mc.ApplyTo(md))
	assert.Same(t, m.BVValue(9, 4), md.Value(c.Decl()))
	assert.Nil(t, md.Value(bits[0].Decl()), "synthetic bits removed")
}

func TestBitBlastScoping(t *testing.T) {
	m := terms.NewManager()
	rw := NewBitBlastRewriter(m)
	c := m.BV("c", 4)
	d := m.BV("d", 4)

	_, err := rw.Rewrite(m.Eq(c, m.BVValue(1, 4)))
	require.NoError(t, err)

	rw.Push()
	_, err = rw.Rewrite(m.Eq(d, m.BVValue(2, 4)))
	require.NoError(t, err)
	assert.Len(t, rw.Const2Bits(), 2)

	rw.Pop(1)
	assert.Len(t, rw.Const2Bits(), 1)
	_, ok := rw.Const2Bits()[c.Decl()]
	assert.True(t, ok, "base-level encoding survives pop")

	// Re-blasting after the pop allocates a fresh encoding for d.
	_, err = rw.Rewrite(m.Eq(d, m.BVValue(2, 4)))
	require.NoError(t, err)
	assert.Len(t, rw.Const2Bits(), 2)
}

func TestBitBlastRejectsCardinality(t *testing.T) {
	m := terms.NewManager()
	rw := NewBitBlastRewriter(m)

	_, err := rw.Rewrite(m.AtLeast(1, m.Bool("p")))
	assert.Error(t, err)
}
