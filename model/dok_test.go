package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDOKBuild(t *testing.T) {
	d := NewDOK(2, 3)
	d.Set(0, 0, 1)
	d.Set(0, 1, -1)
	d.Set(1, 1, 1)
	d.Set(1, 2, -1)

	require.Equal(t, 4, d.NNZ())
	require.Equal(t, -1.0, d.At(0, 1))
	require.Equal(t, 0.0, d.At(1, 0))

	r, c := d.Dims()
	require.Equal(t, 2, r)
	require.Equal(t, 3, c)
}

func TestDOKSetZeroRemoves(t *testing.T) {
	d := NewDOK(2, 2)
	d.Set(0, 0, 5)
	require.Equal(t, 1, d.NNZ())

	d.Set(0, 0, 0)
	require.Equal(t, 0, d.NNZ())
	require.Equal(t, 0.0, d.At(0, 0))
}

func TestDOKToDense(t *testing.T) {
	d := NewDOK(2, 3)
	d.Set(0, 0, 1)
	d.Set(1, 2, -1)

	m := d.ToDense()
	require.Equal(t, 1.0, m.At(0, 0))
	require.Equal(t, -1.0, m.At(1, 2))
	require.Equal(t, 0.0, m.At(0, 1))
}

func TestDOKMulVec(t *testing.T) {
	d := NewDOK(2, 3)
	d.Set(0, 0, 1)
	d.Set(0, 1, -1)
	d.Set(1, 1, 1)
	d.Set(1, 2, -1)

	dst := make([]float64, 2)
	d.MulVec(dst, []float64{3, 3, 3})
	require.Equal(t, []float64{0, 0}, dst)

	dst = make([]float64, 2)
	d.MulVec(dst, []float64{3, 4, 3})
	require.Equal(t, []float64{-1, 1}, dst)
}

func TestDOKOutOfRange(t *testing.T) {
	d := NewDOK(2, 2)
	require.Panics(t, func() { d.At(2, 0) })
	require.Panics(t, func() { d.Set(0, 2, 1) })
}
