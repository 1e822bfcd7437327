// Package loops detects reactions that can participate in thermodynamically
// infeasible loops: internal cycles that carry flux even when every exchange
// reaction is closed. With no mass crossing the system boundary, any
// remaining non-zero flux must run in a closed cycle, so a reaction that can
// still carry flux under closed exchanges is loop-capable.
package loops

import (
	"fmt"

	"github.com/achrlab/polyrun/model"
	"github.com/achrlab/polyrun/solver"
)

// Find returns the sorted indices of loop-capable reactions in m.
//
// The probe closes every exchange reaction (bounds clamped to zero) and
// maximizes then minimizes each internal reaction's flux; a reaction whose
// attainable flux exceeds tol in either direction is loop-capable.
func Find(m *model.Model, opt solver.Optimizer, tol float64) ([]int, error) {
	if tol <= 0 {
		tol = 1e-9
	}

	closed := m.Clone()
	nRxn := closed.NumReactions()

	internal := make([]bool, nRxn)
	for j := 0; j < nRxn; j++ {
		if closed.IsExchange(j) {
			closed.LB[j], closed.UB[j] = 0, 0
		} else {
			internal[j] = true
		}
	}

	var loopy []int
	obj := make([]float64, nRxn)
	for j := 0; j < nRxn; j++ {
		if !internal[j] {
			continue
		}

		obj[j] = 1
		maxSol, err := opt.Solve(obj, closed, solver.Maximize)
		if err != nil {
			obj[j] = 0
			return nil, fmt.Errorf("loops: probe reaction %d: %w", j, err)
		}

		if maxSol.Status == solver.StatusOptimal && maxSol.Objective > tol {
			loopy = append(loopy, j)
			obj[j] = 0
			continue
		}

		minSol, err := opt.Solve(obj, closed, solver.Minimize)
		obj[j] = 0
		if err != nil {
			return nil, fmt.Errorf("loops: probe reaction %d: %w", j, err)
		}
		if minSol.Status == solver.StatusOptimal && minSol.Objective < -tol {
			loopy = append(loopy, j)
		}
	}

	return loopy, nil
}
