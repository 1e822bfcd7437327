// Package reduce shrinks a model to the reactions that can actually carry
// flux before sampling. Pinned reactions (lb = ub = 0) and blocked reactions
// (flux variability confined to zero) are removed, metabolite rows left
// without participants are dropped, and reversible reactions that can only
// run backwards are flipped into a canonical forward orientation. The
// returned mapping is sufficient to restore original reaction identity and
// sign after sampling.
package reduce

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/achrlab/polyrun/errs"
	"github.com/achrlab/polyrun/model"
	"github.com/achrlab/polyrun/solver"
)

// Mapping links one reduced reaction back to the original model.
type Mapping struct {
	// OrigIndex is the reaction's column index in the original model.
	OrigIndex int
	// Sign is +1, or −1 when the reduced column was flipped into forward
	// orientation. Multiplying a sampled row by Sign restores the original
	// direction convention.
	Sign float64
}

// Reduced is a reduced model together with the mapping back to the original.
type Reduced struct {
	Model *model.Model
	Map   []Mapping
}

// OrigIndices returns the original column index of every reduced reaction.
func (r *Reduced) OrigIndices() []int {
	idx := make([]int, len(r.Map))
	for i, m := range r.Map {
		idx[i] = m.OrigIndex
	}

	return idx
}

// RestoreSigns multiplies each row of samples by the mapping sign in place,
// converting reduced-orientation fluxes back to the original convention.
// Applying it twice is the identity.
func (r *Reduced) RestoreSigns(samples *mat.Dense) {
	rows, cols := samples.Dims()
	for i := 0; i < rows && i < len(r.Map); i++ {
		if r.Map[i].Sign >= 0 {
			continue
		}
		for c := 0; c < cols; c++ {
			samples.Set(i, c, -samples.At(i, c))
		}
	}
}

// Reduce removes blocked and pinned reactions from m and canonicalizes
// reaction orientation.
//
// Flux variability of every reaction is probed with two LP solves. A
// reaction whose attainable flux interval lies within ±tol of zero is
// blocked and removed. A reaction whose interval is entirely non-positive is
// flipped (column negated, bounds swapped) so that every kept reaction can
// run forward. Metabolite rows with no remaining participants are dropped.
//
// Returns errs.ErrEmptyPolytope if the model is infeasible or no reaction
// survives.
func Reduce(m *model.Model, opt solver.Optimizer, tol float64) (*Reduced, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if tol <= 0 {
		tol = 1e-9
	}

	nRxn := m.NumReactions()
	nMet := m.NumMetabolites()

	type span struct {
		min, max float64
	}

	keep := make([]int, 0, nRxn)
	spans := make(map[int]span, nRxn)

	obj := make([]float64, nRxn)
	for j := 0; j < nRxn; j++ {
		if m.LB[j] == 0 && m.UB[j] == 0 {
			continue // pinned shut, no LP needed
		}

		obj[j] = 1
		maxSol, err := opt.Solve(obj, m, solver.Maximize)
		if err != nil {
			obj[j] = 0
			return nil, fmt.Errorf("reduce: variability of reaction %d: %w", j, err)
		}
		minSol, err := opt.Solve(obj, m, solver.Minimize)
		obj[j] = 0
		if err != nil {
			return nil, fmt.Errorf("reduce: variability of reaction %d: %w", j, err)
		}

		if maxSol.Status == solver.StatusInfeasible || minSol.Status == solver.StatusInfeasible {
			return nil, fmt.Errorf("reduce: %w", errs.ErrEmptyPolytope)
		}

		lo, hi := minSol.Objective, maxSol.Objective
		if math.Abs(lo) <= tol && math.Abs(hi) <= tol {
			continue // blocked
		}

		keep = append(keep, j)
		spans[j] = span{min: lo, max: hi}
	}

	if len(keep) == 0 {
		return nil, fmt.Errorf("reduce: %w", errs.ErrEmptyPolytope)
	}

	// Decide orientation before assembling columns.
	mapping := make([]Mapping, len(keep))
	for k, j := range keep {
		sign := 1.0
		if spans[j].max <= tol {
			// Only backward flux attainable; flip into forward orientation.
			sign = -1.0
		}
		mapping[k] = Mapping{OrigIndex: j, Sign: sign}
	}

	// Keep metabolite rows that still touch a kept reaction or carry a
	// non-zero right-hand side.
	rowKeep := make([]int, 0, nMet)
	for i := 0; i < nMet; i++ {
		used := m.B[i] != 0
		for k := range keep {
			if m.S.At(i, keep[k]) != 0 {
				used = true
				break
			}
		}
		if used {
			rowKeep = append(rowKeep, i)
		}
	}

	red := &model.Model{
		S:          mat.NewDense(len(rowKeep), len(keep), nil),
		LB:         make([]float64, len(keep)),
		UB:         make([]float64, len(keep)),
		B:          make([]float64, len(rowKeep)),
		Reversible: make([]bool, len(keep)),
	}
	if m.Reactions != nil {
		red.Reactions = make([]string, len(keep))
	}
	if m.Metabolites != nil {
		red.Metabolites = make([]string, len(rowKeep))
	}

	for r, i := range rowKeep {
		red.B[r] = m.B[i]
		if red.Metabolites != nil {
			red.Metabolites[r] = m.Metabolites[i]
		}
		for k, j := range keep {
			red.S.Set(r, k, mapping[k].Sign*m.S.At(i, j))
		}
	}

	for k, j := range keep {
		if mapping[k].Sign < 0 {
			red.LB[k], red.UB[k] = -m.UB[j], -m.LB[j]
		} else {
			red.LB[k], red.UB[k] = m.LB[j], m.UB[j]
		}
		if m.Reversible != nil {
			red.Reversible[k] = m.Reversible[j]
		} else {
			red.Reversible[k] = red.LB[k] < 0
		}
		if red.Reactions != nil {
			red.Reactions[k] = m.Reactions[j]
		}
	}

	return &Reduced{Model: red, Map: mapping}, nil
}
