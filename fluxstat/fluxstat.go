// Package fluxstat summarizes a sample matrix per reaction: location,
// spread, and quartiles of the sampled flux distribution. Useful for a
// quick look at which reactions are tightly determined and which remain
// variable under the model's constraints.
package fluxstat

import (
	"fmt"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
)

// Summary describes the sampled flux distribution of one reaction.
type Summary struct {
	// Reaction is the reaction identifier, or its row index as a string
	// when no identifiers are available.
	Reaction string
	Mean     float64
	Median   float64
	Std      float64
	Min      float64
	Max      float64
	Q1       float64
	Q3       float64
}

// Summarize computes a Summary for every row of samples. names may be nil,
// in which case row indices are used as identifiers; otherwise its length
// must match the row count.
func Summarize(samples *mat.Dense, names []string) ([]Summary, error) {
	nRows, nCols := samples.Dims()
	if nCols == 0 {
		return nil, fmt.Errorf("fluxstat: empty sample matrix")
	}
	if names != nil && len(names) != nRows {
		return nil, fmt.Errorf("fluxstat: %d names for %d reactions", len(names), nRows)
	}

	out := make([]Summary, nRows)
	row := make([]float64, nCols)

	for i := 0; i < nRows; i++ {
		mat.Row(row, i, samples)

		s := Summary{Reaction: fmt.Sprintf("%d", i)}
		if names != nil {
			s.Reaction = names[i]
		}

		var err error
		if s.Mean, err = stats.Mean(row); err != nil {
			return nil, fmt.Errorf("fluxstat: reaction %s: %w", s.Reaction, err)
		}
		if s.Median, err = stats.Median(row); err != nil {
			return nil, fmt.Errorf("fluxstat: reaction %s: %w", s.Reaction, err)
		}
		if s.Std, err = stats.StandardDeviationSample(row); err != nil {
			return nil, fmt.Errorf("fluxstat: reaction %s: %w", s.Reaction, err)
		}
		if s.Min, err = stats.Min(row); err != nil {
			return nil, fmt.Errorf("fluxstat: reaction %s: %w", s.Reaction, err)
		}
		if s.Max, err = stats.Max(row); err != nil {
			return nil, fmt.Errorf("fluxstat: reaction %s: %w", s.Reaction, err)
		}

		q, err := stats.Quartile(row)
		if err != nil {
			return nil, fmt.Errorf("fluxstat: reaction %s: %w", s.Reaction, err)
		}
		s.Q1, s.Q3 = q.Q1, q.Q3

		out[i] = s
	}

	return out, nil
}
