package solver

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/achrlab/polyrun/model"
)

// Simplex is the default Optimizer, a thin adapter over gonum's dense
// simplex solver.
//
// gonum's lp.Simplex accepts problems in standard form (A·x = b, x ≥ 0), so
// each solve shifts the model's variables by their lower bounds and adds one
// slack variable per reaction to encode the upper bounds:
//
//	y = x − lb ≥ 0
//	S·y = b − S·lb
//	y_j + s_j = ub_j − lb_j, s_j ≥ 0
//
// Model validation guarantees finite bounds, so the transformation is always
// well defined.
type Simplex struct {
	// Tol is the feasibility/pivot tolerance handed to lp.Simplex.
	// Zero selects gonum's internal default.
	Tol float64
}

var _ Optimizer = (*Simplex)(nil)

// NewSimplex creates a Simplex optimizer with the given tolerance.
func NewSimplex(tol float64) *Simplex {
	return &Simplex{Tol: tol}
}

// Solve optimizes obj·x over the model's polytope.
func (s *Simplex) Solve(obj []float64, m *model.Model, sense Sense) (Solution, error) {
	nRxn := m.NumReactions()
	nMet := m.NumMetabolites()

	if len(obj) != nRxn {
		return Solution{}, fmt.Errorf("solver: objective has %d entries for %d reactions", len(obj), nRxn)
	}

	// Standard-form dimensions: nRxn shifted variables + nRxn slacks,
	// nMet equality rows + nRxn bound rows.
	nVar := 2 * nRxn
	nCon := nMet + nRxn

	c := make([]float64, nVar)
	for j := 0; j < nRxn; j++ {
		if sense == Maximize {
			c[j] = -obj[j]
		} else {
			c[j] = obj[j]
		}
	}

	a := mat.NewDense(nCon, nVar, nil)
	b := make([]float64, nCon)

	// S·y = B − S·lb
	for i := 0; i < nMet; i++ {
		rhs := m.B[i]
		for j := 0; j < nRxn; j++ {
			sij := m.S.At(i, j)
			if sij != 0 {
				a.Set(i, j, sij)
				rhs -= sij * m.LB[j]
			}
		}
		b[i] = rhs
	}

	// y_j + s_j = ub_j − lb_j
	for j := 0; j < nRxn; j++ {
		a.Set(nMet+j, j, 1)
		a.Set(nMet+j, nRxn+j, 1)
		b[nMet+j] = m.UB[j] - m.LB[j]
	}

	_, optX, err := lp.Simplex(c, a, b, s.Tol, nil)
	switch {
	case err == nil:
	case errors.Is(err, lp.ErrInfeasible):
		return Solution{Status: StatusInfeasible}, nil
	case errors.Is(err, lp.ErrUnbounded):
		return Solution{Status: StatusUnbounded}, nil
	default:
		return Solution{}, fmt.Errorf("solver: simplex failed: %w", err)
	}

	// The simplex optimum is over the shifted variables y = x − lb; shift
	// back and evaluate obj·x in the model's own variable space, so the
	// objective is not off by obj·lb.
	x := make([]float64, nRxn)
	objVal := 0.0
	for j := 0; j < nRxn; j++ {
		x[j] = optX[j] + m.LB[j]
		objVal += obj[j] * x[j]
	}

	return Solution{Status: StatusOptimal, Objective: objVal, X: x}, nil
}
