package walk

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/achrlab/polyrun/errs"
)

// chainState tracks where a chain is in its lifecycle.
type chainState int

const (
	stateInitialized chainState = iota
	stateStepping
	stateBatchComplete
	stateDone
)

const (
	// dirTol is the component magnitude below which a direction entry is
	// treated as zero when clipping the chord.
	dirTol = 1e-12

	// maxDirectionRetries bounds consecutive degenerate direction draws
	// before the chain reprojects and tries again.
	maxDirectionRetries = 100
)

// chain is one independent hit-and-run walk. It owns its current point,
// running center, and RNG stream; nothing is shared between chains.
type chain struct {
	w   *Walker
	rng *rand.Rand

	state  chainState
	cur    []float64
	center []float64
	nSeen  float64 // points contributing to the running center
	moved  bool    // whether any step has succeeded yet

	dir   []float64 // scratch
	resid *mat.VecDense
	delta *mat.VecDense
}

func newChain(w *Walker, seed int64) *chain {
	n := w.m.NumReactions()
	nMet := w.m.NumMetabolites()

	return &chain{
		w:     w,
		rng:   rand.New(rand.NewSource(seed)),
		state: stateInitialized,
		cur:   make([]float64, n),
		dir:   make([]float64, n),
		resid: mat.NewVecDense(nMet, nil),
		delta: mat.NewVecDense(n, nil),
	}
}

// init places the chain at the warmup centroid and verifies a feasible
// chord exists there. A polytope that admits no chord through its centroid
// has degenerated to a single point, which should have been caught by
// reduction; it is the one condition the walker treats as fatal.
func (c *chain) init() error {
	c.center = c.w.set.Centroid()
	copy(c.cur, c.center)
	c.nSeen = float64(c.w.set.Len())

	c.reproject()
	c.clamp()

	c.state = stateStepping

	return nil
}

// step advances the chain by one hit-and-run move. Degenerate directions
// (zero-length feasible segment) are redrawn silently; persistent
// degeneracy triggers a reprojection and another round of draws. The step
// is fatal only if the chain has never moved, meaning the starting point
// admits no chord at all.
func (c *chain) step() error {
	for try := 0; try < maxDirectionRetries; try++ {
		if c.tryStep() {
			c.moved = true
			return nil
		}
	}

	// Drift can pin the point onto several bound faces at once; correct it
	// and try another round before giving up on the step.
	c.reproject()
	c.clamp()
	for try := 0; try < maxDirectionRetries; try++ {
		if c.tryStep() {
			c.moved = true
			return nil
		}
	}

	if !c.moved {
		return errs.ErrNoChord
	}

	// The chain has sampled before, so treat the stuck step as a zero move
	// rather than aborting a long run.
	return nil
}

// tryStep draws one direction and, if the chord has positive length, jumps
// to a uniform point on it. Returns false on a degenerate draw.
func (c *chain) tryStep() bool {
	m := c.w.m
	tol := c.w.tol

	// Artificial centering: direction from the running center through a
	// random warmup point. Both are (convex combinations of) feasible
	// points, so the direction stays in the null space of S.
	c.w.set.CopyPoint(c.rng.Intn(c.w.set.Len()), c.dir)
	floats.Sub(c.dir, c.center)

	norm := floats.Norm(c.dir, 2)
	if norm < tol {
		return false
	}
	floats.Scale(1/norm, c.dir)

	// Clip the line x + t·dir to lb ≤ x ≤ ub.
	tMin := math.Inf(-1)
	tMax := math.Inf(1)
	for j, d := range c.dir {
		if math.Abs(d) < dirTol {
			continue
		}
		lo := (m.LB[j] - c.cur[j]) / d
		hi := (m.UB[j] - c.cur[j]) / d
		if d < 0 {
			lo, hi = hi, lo
		}
		if lo > tMin {
			tMin = lo
		}
		if hi < tMax {
			tMax = hi
		}
	}

	if math.IsInf(tMin, 0) || math.IsInf(tMax, 0) || tMax-tMin < tol {
		return false
	}

	t := tMin + c.rng.Float64()*(tMax-tMin)
	floats.AddScaled(c.cur, t, c.dir)
	c.clamp()

	// Running center update keeps direction draws biased toward the middle
	// of the region actually visited.
	c.nSeen++
	for j := range c.center {
		c.center[j] += (c.cur[j] - c.center[j]) / c.nSeen
	}

	return true
}

// reproject removes accumulated drift from the equality constraints by
// subtracting the minimum-norm correction delta with S·delta = S·x − b.
func (c *chain) reproject() {
	m := c.w.m
	nMet := m.NumMetabolites()

	x := mat.NewVecDense(len(c.cur), c.cur)
	c.resid.MulVec(m.S, x)
	for i := 0; i < nMet; i++ {
		c.resid.SetVec(i, c.resid.AtVec(i)-m.B[i])
	}

	if mat.Norm(c.resid, math.Inf(1)) <= c.w.tol {
		return
	}

	// SolveVec yields the minimum-norm solution for wide S. A singular or
	// ill-conditioned system leaves the point untouched; the bounds clamp
	// keeps it usable and a later correction can still succeed.
	if err := c.delta.SolveVec(m.S, c.resid); err != nil {
		return
	}
	for j := range c.cur {
		c.cur[j] -= c.delta.AtVec(j)
	}
}

// clamp forces the point back inside closed bounds. Corrections move it by
// at most the accumulated numerical drift.
func (c *chain) clamp() {
	m := c.w.m
	for j := range c.cur {
		if c.cur[j] < m.LB[j] {
			c.cur[j] = m.LB[j]
		} else if c.cur[j] > m.UB[j] {
			c.cur[j] = m.UB[j]
		}
	}
}

// snapshot records the current point into column p of points.
func (c *chain) snapshot(points *mat.Dense, p int) {
	for j, v := range c.cur {
		points.Set(j, p, v)
	}
}
