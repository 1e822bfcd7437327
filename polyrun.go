// Package polyrun samples the feasible flux space of constraint-based
// metabolic models with an artificially-centered hit-and-run walk.
//
// The feasible region of a model is the polytope {x : S·x = b, lb ≤ x ≤ ub}
// over reaction fluxes. Sampling it uniformly characterizes the whole
// solution space instead of the single optimum an FBA solve returns.
//
// # Pipeline
//
// A sampling run goes through four stages:
//
//  1. Reduce: blocked and pinned reactions are removed and backward-only
//     reversible reactions are flipped into a canonical forward orientation
//     (package reduce).
//  2. Warm up: LP vertices spanning the polytope's extreme directions seed
//     the walk (package warmup).
//  3. Walk: hit-and-run chains record thinned points and flush them to
//     numbered batch files (packages walk and batch).
//  4. Assemble: burn-in batches are skipped, the remainder is subsampled to
//     the requested count, and reaction signs are restored to the original
//     model's convention (package assemble).
//
// # Basic Usage
//
//	m := model.New(s, lb, ub)
//	red, samples, err := polyrun.Sample(m, "/tmp/run/samples", format.SamplerACHR,
//	    polyrun.WithWarmupPoints(2000),
//	    polyrun.WithPointsReturned(1000),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// samples is a reactions × points matrix over red.Model's reactions.
//
// Batch files persist under the given base path and can be re-assembled
// later with different subsampling settings without re-walking.
package polyrun

import (
	"gonum.org/v1/gonum/mat"

	"github.com/achrlab/polyrun/internal/options"
	"github.com/achrlab/polyrun/model"
	"github.com/achrlab/polyrun/reduce"
)

// Sample runs the full sampling pipeline on m.
//
// base is the batch file base path; batch i is written to "<base>_<i>".
// samplerName selects the algorithm (only format.SamplerACHR is built in).
// The returned Reduced describes the model actually sampled and maps its
// reactions back to m; the sample matrix has one row per reduced reaction
// and exactly NPointsReturned columns.
//
// The configuration is validated before any work: an impossible request
// (e.g. more returned points than the batches will store) fails with
// errs.ErrInvalidConfig before a single LP solve or file write.
func Sample(m *model.Model, base string, samplerName string, opts ...Option) (*reduce.Reduced, *mat.Dense, error) {
	cfg := DefaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	s, err := samplerFor(samplerName)
	if err != nil {
		return nil, nil, err
	}

	return s.Sample(m, base, cfg)
}
