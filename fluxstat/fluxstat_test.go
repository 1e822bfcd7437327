package fluxstat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSummarize(t *testing.T) {
	samples := mat.NewDense(2, 4, []float64{
		1, 2, 3, 4,
		5, 5, 5, 5,
	})

	sums, err := Summarize(samples, []string{"uptake", "secrete"})
	require.NoError(t, err)
	require.Len(t, sums, 2)

	up := sums[0]
	require.Equal(t, "uptake", up.Reaction)
	require.InDelta(t, 2.5, up.Mean, 1e-12)
	require.InDelta(t, 2.5, up.Median, 1e-12)
	require.InDelta(t, math.Sqrt(5.0/3.0), up.Std, 1e-12)
	require.InDelta(t, 1, up.Min, 1e-12)
	require.InDelta(t, 4, up.Max, 1e-12)
	require.InDelta(t, 1.5, up.Q1, 1e-12)
	require.InDelta(t, 3.5, up.Q3, 1e-12)

	fixed := sums[1]
	require.InDelta(t, 5, fixed.Mean, 1e-12)
	require.InDelta(t, 0, fixed.Std, 1e-12)
	require.InDelta(t, 5, fixed.Min, 1e-12)
	require.InDelta(t, 5, fixed.Max, 1e-12)
}

func TestSummarizeDefaultNames(t *testing.T) {
	samples := mat.NewDense(2, 3, []float64{
		1, 1, 1,
		2, 2, 2,
	})

	sums, err := Summarize(samples, nil)
	require.NoError(t, err)
	require.Equal(t, "0", sums[0].Reaction)
	require.Equal(t, "1", sums[1].Reaction)
}

func TestSummarizeRejectsBadInput(t *testing.T) {
	samples := mat.NewDense(2, 3, nil)

	_, err := Summarize(samples, []string{"only-one"})
	require.Error(t, err)

	_, err = Summarize(&mat.Dense{}, nil)
	require.Error(t, err)
}
