// Package assemble turns stored sample batches into the final sample
// matrix: it skips burn-in batches, subsamples the remainder down to the
// requested point count with deterministic linspace indexing, restores the
// original reaction sign convention, and optionally strips loop-affected
// reactions.
package assemble

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/achrlab/polyrun/batch"
	"github.com/achrlab/polyrun/errs"
	"github.com/achrlab/polyrun/reduce"
)

// Config controls post-processing of stored batches.
type Config struct {
	// NFiles is the total number of batch files written by the walk.
	NFiles int
	// NFilesSkipped is the number of leading burn-in batches to discard.
	NFilesSkipped int
	// NPointsPerFile is the number of points stored per batch, used to
	// reject configurations before touching any file.
	NPointsPerFile int
	// NPointsReturned is the number of columns in the final sample matrix.
	NPointsReturned int
	// LoopReactions lists reduced-model reaction indices participating in
	// thermodynamically infeasible loops. Rows for these reactions are
	// removed when RemoveLoopSamples is set.
	LoopReactions     []int
	RemoveLoopSamples bool
}

// Validate rejects configurations that cannot be satisfied by the stored
// batches. It runs before any file read, so a misconfigured request fails
// fast with errs.ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.NFiles < 1 || c.NFilesSkipped < 0 || c.NFilesSkipped >= c.NFiles {
		return fmt.Errorf("%w: %d files with %d skipped", errs.ErrInvalidConfig, c.NFiles, c.NFilesSkipped)
	}
	if c.NPointsReturned < 1 {
		return fmt.Errorf("%w: %d points returned", errs.ErrInvalidConfig, c.NPointsReturned)
	}

	loaded := c.NFiles - c.NFilesSkipped
	perFile := (c.NPointsReturned + loaded - 1) / loaded
	if perFile > c.NPointsPerFile {
		return fmt.Errorf("%w: need %d points per file from %d usable files but batches hold only %d",
			errs.ErrInvalidConfig, perFile, loaded, c.NPointsPerFile)
	}

	return nil
}

// Assemble reads batches [NFilesSkipped+1, NFiles] from base and builds the
// final sample matrix in the original model's sign convention.
func Assemble(base string, red *reduce.Reduced, cfg Config) (*mat.Dense, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	reader := batch.NewReader(base)
	nRxn := red.Model.NumReactions()

	var cols []*mat.Dense
	total := 0
	for idx := cfg.NFilesSkipped + 1; idx <= cfg.NFiles; idx++ {
		points, err := reader.Read(idx)
		if err != nil {
			return nil, err
		}
		rows, c := points.Dims()
		if rows != nRxn {
			return nil, fmt.Errorf("batch %d: %w: %d rows for %d reactions", idx, errs.ErrBatchShape, rows, nRxn)
		}
		cols = append(cols, points)
		total += c
	}

	if total < cfg.NPointsReturned {
		return nil, fmt.Errorf("%w: %d stored points for %d requested", errs.ErrInvalidConfig, total, cfg.NPointsReturned)
	}

	// Uniform index subsampling across the concatenated batches preserves
	// the sampler's coverage instead of taking a contiguous prefix.
	picks := Linspace(total, cfg.NPointsReturned)

	samples := mat.NewDense(nRxn, cfg.NPointsReturned, nil)
	for out, global := range picks {
		points, local := locate(cols, global)
		for i := 0; i < nRxn; i++ {
			samples.Set(i, out, points.At(i, local))
		}
	}

	red.RestoreSigns(samples)

	if cfg.RemoveLoopSamples && len(cfg.LoopReactions) > 0 {
		samples = dropRows(samples, cfg.LoopReactions)
	}

	return samples, nil
}

// Linspace returns count indices spread evenly over [0, total), rounding to
// the nearest integer. Deterministic: identical inputs always select the
// same indices.
func Linspace(total, count int) []int {
	picks := make([]int, count)
	if count == 1 {
		return picks
	}

	step := float64(total-1) / float64(count-1)
	for k := range picks {
		picks[k] = int(math.Round(float64(k) * step))
	}

	return picks
}

// locate maps a global column index to the batch holding it.
func locate(cols []*mat.Dense, global int) (*mat.Dense, int) {
	for _, points := range cols {
		_, c := points.Dims()
		if global < c {
			return points, global
		}
		global -= c
	}

	panic("assemble: global column index out of range")
}

// dropRows returns a copy of samples without the given rows.
func dropRows(samples *mat.Dense, rows []int) *mat.Dense {
	drop := make(map[int]bool, len(rows))
	for _, r := range rows {
		drop[r] = true
	}

	nRows, nCols := samples.Dims()
	kept := make([]int, 0, nRows)
	for i := 0; i < nRows; i++ {
		if !drop[i] {
			kept = append(kept, i)
		}
	}
	sort.Ints(kept)

	out := mat.NewDense(len(kept), nCols, nil)
	for oi, i := range kept {
		for c := 0; c < nCols; c++ {
			out.Set(oi, c, samples.At(i, c))
		}
	}

	return out
}
