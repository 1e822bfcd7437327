// Package warmup generates the initial point set that seeds the hit-and-run
// walk. Points are LP vertices of the polytope obtained by optimizing
// coordinate objectives first and random objectives after, then pulled
// toward their common centroid so no seed sits exactly on a bound face.
// Spanning many extreme directions keeps the walker from starting confined
// to a low-dimensional slice of the polytope.
package warmup

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/achrlab/polyrun/batch"
	"github.com/achrlab/polyrun/errs"
	"github.com/achrlab/polyrun/format"
	"github.com/achrlab/polyrun/internal/options"
	"github.com/achrlab/polyrun/model"
	"github.com/achrlab/polyrun/solver"
)

// Set is an immutable collection of feasible warmup points, stored as a
// reactions × count matrix.
type Set struct {
	points *mat.Dense
}

// NewSet wraps an existing reactions × count matrix of feasible points.
// The matrix is owned by the set afterwards.
func NewSet(points *mat.Dense) *Set {
	return &Set{points: points}
}

// Len returns the number of points in the set.
func (s *Set) Len() int {
	_, c := s.points.Dims()
	return c
}

// Dim returns the number of reactions per point.
func (s *Set) Dim() int {
	r, _ := s.points.Dims()
	return r
}

// CopyPoint copies point i into dst, which must have length Dim.
func (s *Set) CopyPoint(i int, dst []float64) {
	mat.Col(dst, i, s.points)
}

// Centroid returns the mean of all points.
func (s *Set) Centroid() []float64 {
	rows, cols := s.points.Dims()

	c := make([]float64, rows)
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			c[i] += s.points.At(i, j)
		}
	}
	for i := range c {
		c[i] /= float64(cols)
	}

	return c
}

// Points returns the underlying matrix. Callers must not modify it.
func (s *Set) Points() *mat.Dense {
	return s.points
}

// Save persists the set as a checkpoint file in the batch format, so an
// expensive warmup can be reused across sampling runs.
func (s *Set) Save(path string, compression format.CompressionType) error {
	if err := batch.WriteMatrix(path, s.points, compression); err != nil {
		return fmt.Errorf("save warmup set: %w", err)
	}

	return nil
}

// LoadSet reloads a checkpoint written by Save.
func LoadSet(path string) (*Set, error) {
	points, err := batch.ReadMatrix(path)
	if err != nil {
		return nil, fmt.Errorf("load warmup set: %w", err)
	}

	return &Set{points: points}, nil
}

// generator carries the tunables for Generate.
type generator struct {
	seed      int64
	centering float64
}

// Option configures warmup generation.
type Option = options.Option[*generator]

// WithSeed fixes the RNG seed used for random objective directions.
func WithSeed(seed int64) Option {
	return options.NoError(func(g *generator) {
		g.seed = seed
	})
}

// WithCentering sets the fraction by which generated vertices are pulled
// toward the centroid, in [0, 1). Zero leaves vertices on the boundary;
// the default 0.33 keeps seeds strictly inside the polytope.
func WithCentering(frac float64) Option {
	return options.New(func(g *generator) error {
		if frac < 0 || frac >= 1 {
			return fmt.Errorf("%w: centering fraction %g outside [0, 1)", errs.ErrInvalidConfig, frac)
		}
		g.centering = frac

		return nil
	})
}

// Generate produces n feasible points spanning the polytope of m.
//
// The first 2·NumReactions objectives maximize and minimize each reaction in
// turn; remaining objectives are uniform random directions. Every solved
// vertex is feasible by construction, and the final centroid shrinkage is a
// convex combination of feasible points, so feasibility is preserved.
//
// n must be at least 2 so the walk has direction diversity. Returns
// errs.ErrInfeasibleModel if any LP reports an empty feasible region.
func Generate(m *model.Model, opt solver.Optimizer, n int, opts ...Option) (*Set, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 warmup points, got %d", errs.ErrInvalidConfig, n)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	g := &generator{seed: 1, centering: 0.33}
	if err := options.Apply(g, opts...); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(g.seed))

	nRxn := m.NumReactions()
	points := mat.NewDense(nRxn, n, nil)

	obj := make([]float64, nRxn)
	for k := 0; k < n; k++ {
		sense := solver.Maximize
		if k < 2*nRxn {
			// Coordinate objectives first: max then min for each reaction.
			for j := range obj {
				obj[j] = 0
			}
			obj[k/2] = 1
			if k%2 == 1 {
				sense = solver.Minimize
			}
		} else {
			for j := range obj {
				obj[j] = 2*rng.Float64() - 1
			}
		}

		sol, err := opt.Solve(obj, m, sense)
		if err != nil {
			return nil, fmt.Errorf("warmup point %d: %w", k, err)
		}
		switch sol.Status {
		case solver.StatusInfeasible:
			return nil, fmt.Errorf("warmup point %d: %w", k, errs.ErrInfeasibleModel)
		case solver.StatusUnbounded:
			return nil, fmt.Errorf("warmup point %d: %w", k, errs.ErrUnboundedObjective)
		}

		for i := 0; i < nRxn; i++ {
			points.Set(i, k, sol.X[i])
		}
	}

	set := &Set{points: points}
	if g.centering > 0 {
		centroid := set.Centroid()
		for kk := 0; kk < n; kk++ {
			for i := 0; i < nRxn; i++ {
				v := points.At(i, kk)
				points.Set(i, kk, (1-g.centering)*v+g.centering*centroid[i])
			}
		}
	}

	return set, nil
}
