package loops

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/achrlab/polyrun/model"
	"github.com/achrlab/polyrun/solver"
)

func TestFindDetectsCycle(t *testing.T) {
	// r0 (A -> B) and r1 (B -> A) form a cycle that can turn over even with
	// the exchanges r2 and r3 closed.
	s := mat.NewDense(2, 4, []float64{
		-1, 1, 1, 0,
		1, -1, 0, -1,
	})
	m := model.New(s,
		[]float64{0, 0, 0, 0},
		[]float64{10, 10, 10, 10},
	)

	loopy, err := Find(m, solver.NewSimplex(0), 1e-9)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1}, loopy)
}

func TestFindCleanPathway(t *testing.T) {
	// A linear chain has no cycles: closing the exchanges forces the
	// internal conversion to zero.
	s := mat.NewDense(2, 3, []float64{
		1, -1, 0,
		0, 1, -1,
	})
	m := model.New(s, []float64{0, 0, 0}, []float64{10, 10, 10})

	loopy, err := Find(m, solver.NewSimplex(0), 1e-9)
	require.NoError(t, err)
	require.Empty(t, loopy)
}

func TestFindReversibleNonLoop(t *testing.T) {
	// The middle step of a linear chain is reversible, but closing the
	// exchanges pins it to zero from both sides; its negative lower bound
	// must not be mistaken for attainable flux.
	s := mat.NewDense(2, 3, []float64{
		1, -1, 0,
		0, 1, -1,
	})
	m := model.New(s, []float64{0, -10, 0}, []float64{10, 10, 10})

	loopy, err := Find(m, solver.NewSimplex(0), 1e-9)
	require.NoError(t, err)
	require.Empty(t, loopy)
}

func TestFindReversibleCycle(t *testing.T) {
	// The same cycle, but r1 runs backwards only; the loop still turns over
	// with negative flux through r1.
	s := mat.NewDense(2, 4, []float64{
		-1, -1, 1, 0,
		1, 1, 0, -1,
	})
	m := model.New(s,
		[]float64{0, -10, 0, 0},
		[]float64{10, 0, 10, 10},
	)

	loopy, err := Find(m, solver.NewSimplex(0), 1e-9)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1}, loopy)
}

func TestFindLeavesModelUntouched(t *testing.T) {
	s := mat.NewDense(2, 4, []float64{
		-1, 1, 1, 0,
		1, -1, 0, -1,
	})
	m := model.New(s,
		[]float64{0, 0, 0, 0},
		[]float64{10, 10, 10, 10},
	)

	_, err := Find(m, solver.NewSimplex(0), 1e-9)
	require.NoError(t, err)

	// The exchange closure must happen on a clone.
	require.Equal(t, 10.0, m.UB[2])
	require.Equal(t, 10.0, m.UB[3])
}
