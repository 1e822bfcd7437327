// Package solver defines the linear-programming collaborator used by warmup
// generation, model reduction, and loop detection, together with a default
// implementation backed by gonum's simplex method.
package solver

import (
	"github.com/achrlab/polyrun/model"
)

// Sense selects the optimization direction.
type Sense int

const (
	Minimize Sense = iota
	Maximize
)

// Status classifies the outcome of an LP solve.
type Status int

const (
	// StatusOptimal means an optimal vertex was found.
	StatusOptimal Status = iota
	// StatusInfeasible means no point satisfies the constraints.
	StatusInfeasible
	// StatusUnbounded means the objective is unbounded on the feasible
	// region. Cannot occur for models with finite bounds.
	StatusUnbounded
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "Optimal"
	case StatusInfeasible:
		return "Infeasible"
	case StatusUnbounded:
		return "Unbounded"
	default:
		return "Unknown"
	}
}

// Solution is the result of one LP solve over a model's polytope.
type Solution struct {
	Status    Status
	Objective float64
	// X is the optimal flux vector in the model's own variable space.
	// Nil unless Status is StatusOptimal.
	X []float64
}

// Optimizer solves linear programs over a model's feasible region:
// optimize obj·x subject to S·x = b, lb ≤ x ≤ ub.
//
// Implementations must be safe for sequential reuse across many solves;
// concurrent use requires external synchronization unless documented
// otherwise.
type Optimizer interface {
	Solve(obj []float64, m *model.Model, sense Sense) (Solution, error)
}
