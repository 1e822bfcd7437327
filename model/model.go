package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/achrlab/polyrun/errs"
)

// Model represents a constraint-based metabolic model.
//
// The feasible flux space is {x : S·x = B, LB ≤ x ≤ UB}. Row i of S is
// metabolite i, column j is reaction j. B is typically all zeros (steady
// state). Bounds must be finite; flux models conventionally use ±1000 for
// practically unbounded reactions.
type Model struct {
	// S is the stoichiometric matrix, metabolites × reactions.
	S *mat.Dense
	// LB and UB are the per-reaction flux bounds.
	LB []float64
	UB []float64
	// B is the per-metabolite right-hand side, zero at steady state.
	B []float64
	// Reversible marks reactions that may carry flux in either direction in
	// the original sign convention.
	Reversible []bool
	// Reactions and Metabolites hold identifiers; optional but carried
	// through reduction so samples stay attributable.
	Reactions   []string
	Metabolites []string
}

// New creates a model from a stoichiometric matrix and bounds, with a zero
// right-hand side and reversibility inferred from the sign of the lower
// bound.
func New(s *mat.Dense, lb, ub []float64) *Model {
	rows, cols := s.Dims()

	rev := make([]bool, cols)
	for j := range rev {
		rev[j] = lb[j] < 0
	}

	return &Model{
		S:          s,
		LB:         lb,
		UB:         ub,
		B:          make([]float64, rows),
		Reversible: rev,
	}
}

// NumMetabolites returns the number of rows of S.
func (m *Model) NumMetabolites() int {
	r, _ := m.S.Dims()
	return r
}

// NumReactions returns the number of columns of S.
func (m *Model) NumReactions() int {
	_, c := m.S.Dims()
	return c
}

// Validate checks dimensional agreement and bound ordering.
//
// All returned errors wrap errs.ErrInvalidModel.
func (m *Model) Validate() error {
	if m.S == nil {
		return fmt.Errorf("%w: nil stoichiometric matrix", errs.ErrInvalidModel)
	}

	rows, cols := m.S.Dims()
	if len(m.LB) != cols || len(m.UB) != cols {
		return fmt.Errorf("%w: %d reactions but %d lower / %d upper bounds",
			errs.ErrInvalidModel, cols, len(m.LB), len(m.UB))
	}
	if len(m.B) != rows {
		return fmt.Errorf("%w: %d metabolites but %d right-hand side entries",
			errs.ErrInvalidModel, rows, len(m.B))
	}
	if m.Reversible != nil && len(m.Reversible) != cols {
		return fmt.Errorf("%w: %d reactions but %d reversibility flags",
			errs.ErrInvalidModel, cols, len(m.Reversible))
	}
	if m.Reactions != nil && len(m.Reactions) != cols {
		return fmt.Errorf("%w: %d reactions but %d reaction identifiers",
			errs.ErrInvalidModel, cols, len(m.Reactions))
	}
	if m.Metabolites != nil && len(m.Metabolites) != rows {
		return fmt.Errorf("%w: %d metabolites but %d metabolite identifiers",
			errs.ErrInvalidModel, rows, len(m.Metabolites))
	}

	for j := range m.LB {
		if math.IsInf(m.LB[j], 0) || math.IsInf(m.UB[j], 0) || math.IsNaN(m.LB[j]) || math.IsNaN(m.UB[j]) {
			return fmt.Errorf("%w: non-finite bound on reaction %d", errs.ErrInvalidModel, j)
		}
		if m.LB[j] > m.UB[j] {
			return fmt.Errorf("%w: reaction %d has lb %g > ub %g",
				errs.ErrInvalidModel, j, m.LB[j], m.UB[j])
		}
	}

	return nil
}

// Clone returns a deep copy of the model.
func (m *Model) Clone() *Model {
	c := &Model{
		S:  mat.DenseCopyOf(m.S),
		LB: append([]float64(nil), m.LB...),
		UB: append([]float64(nil), m.UB...),
		B:  append([]float64(nil), m.B...),
	}
	if m.Reversible != nil {
		c.Reversible = append([]bool(nil), m.Reversible...)
	}
	if m.Reactions != nil {
		c.Reactions = append([]string(nil), m.Reactions...)
	}
	if m.Metabolites != nil {
		c.Metabolites = append([]string(nil), m.Metabolites...)
	}

	return c
}

// IsExchange reports whether reaction j touches at most one metabolite.
// Exchange and sink reactions transport mass across the system boundary and
// are the ones closed during loop detection.
func (m *Model) IsExchange(j int) bool {
	rows, _ := m.S.Dims()

	nnz := 0
	for i := 0; i < rows; i++ {
		if m.S.At(i, j) != 0 {
			nnz++
			if nnz > 1 {
				return false
			}
		}
	}

	return true
}

// Residual returns the maximum absolute violation of S·x = B at x.
func (m *Model) Residual(x []float64) float64 {
	rows, cols := m.S.Dims()

	maxAbs := 0.0
	for i := 0; i < rows; i++ {
		sum := -m.B[i]
		for j := 0; j < cols; j++ {
			sum += m.S.At(i, j) * x[j]
		}
		if a := math.Abs(sum); a > maxAbs {
			maxAbs = a
		}
	}

	return maxAbs
}

// WithinBounds reports whether lb-tol ≤ x ≤ ub+tol element-wise.
func (m *Model) WithinBounds(x []float64, tol float64) bool {
	for j := range x {
		if x[j] < m.LB[j]-tol || x[j] > m.UB[j]+tol {
			return false
		}
	}

	return true
}

// Feasible reports whether x satisfies both the equality constraints and the
// bounds within tol.
func (m *Model) Feasible(x []float64, tol float64) bool {
	return m.WithinBounds(x, tol) && m.Residual(x) <= tol
}
