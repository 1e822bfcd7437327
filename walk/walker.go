package walk

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/achrlab/polyrun/batch"
	"github.com/achrlab/polyrun/errs"
	"github.com/achrlab/polyrun/internal/options"
	"github.com/achrlab/polyrun/model"
	"github.com/achrlab/polyrun/warmup"
)

// Walker drives hit-and-run chains over a model's polytope and flushes
// sample batches through a batch.Writer.
type Walker struct {
	m   *model.Model
	set *warmup.Set
	out *batch.Writer

	stepsPerPoint  int
	pointsPerFile  int
	nFiles         int
	reprojectEvery int
	tol            float64
	seed           int64
	workers        int
}

// Option configures a Walker.
type Option = options.Option[*Walker]

// WithStepsPerPoint sets the number of walk steps between recorded points
// (thinning). Larger values reduce autocorrelation between saved samples.
func WithStepsPerPoint(n int) Option {
	return options.New(func(w *Walker) error {
		if n < 1 {
			return fmt.Errorf("%w: steps per point %d", errs.ErrInvalidConfig, n)
		}
		w.stepsPerPoint = n

		return nil
	})
}

// WithPointsPerFile sets the number of recorded points per batch file.
func WithPointsPerFile(n int) Option {
	return options.New(func(w *Walker) error {
		if n < 1 {
			return fmt.Errorf("%w: points per file %d", errs.ErrInvalidConfig, n)
		}
		w.pointsPerFile = n

		return nil
	})
}

// WithFiles sets the number of batch files to produce.
func WithFiles(n int) Option {
	return options.New(func(w *Walker) error {
		if n < 1 {
			return fmt.Errorf("%w: file count %d", errs.ErrInvalidConfig, n)
		}
		w.nFiles = n

		return nil
	})
}

// WithReprojectEvery sets how many steps may pass between least-squares
// corrections onto S·x = b. Recorded points are always corrected regardless.
func WithReprojectEvery(n int) Option {
	return options.New(func(w *Walker) error {
		if n < 1 {
			return fmt.Errorf("%w: reprojection cadence %d", errs.ErrInvalidConfig, n)
		}
		w.reprojectEvery = n

		return nil
	})
}

// WithTolerance sets the numerical tolerance for chord clipping and drift
// detection.
func WithTolerance(tol float64) Option {
	return options.New(func(w *Walker) error {
		if tol <= 0 {
			return fmt.Errorf("%w: tolerance %g", errs.ErrInvalidConfig, tol)
		}
		w.tol = tol

		return nil
	})
}

// WithSeed fixes the base RNG seed. Chains derive their own streams from it,
// offset by their first batch index, so parallel runs stay reproducible.
func WithSeed(seed int64) Option {
	return options.NoError(func(w *Walker) {
		w.seed = seed
	})
}

// WithWorkers sets the number of concurrent chains. One (the default) walks
// all batches sequentially with a single chain.
func WithWorkers(n int) Option {
	return options.New(func(w *Walker) error {
		if n < 1 {
			return fmt.Errorf("%w: worker count %d", errs.ErrInvalidConfig, n)
		}
		w.workers = n

		return nil
	})
}

// NewWalker creates a walker over m seeded with the given warmup set.
func NewWalker(m *model.Model, set *warmup.Set, out *batch.Writer, opts ...Option) (*Walker, error) {
	if set.Len() < 2 {
		return nil, fmt.Errorf("%w: warmup set has %d points, need at least 2", errs.ErrInvalidConfig, set.Len())
	}
	if set.Dim() != m.NumReactions() {
		return nil, fmt.Errorf("%w: warmup points have %d entries for %d reactions",
			errs.ErrInvalidConfig, set.Dim(), m.NumReactions())
	}

	w := &Walker{
		m:              m,
		set:            set,
		out:            out,
		stepsPerPoint:  200,
		pointsPerFile:  1000,
		nFiles:         10,
		reprojectEvery: 100,
		tol:            1e-9,
		seed:           1,
		workers:        1,
	}
	if err := options.Apply(w, opts...); err != nil {
		return nil, err
	}

	return w, nil
}

// Run walks until nFiles batches have been written. With one worker a single
// chain produces every batch in order; with more, batch files are dealt
// round-robin to independent chains running concurrently. Batch file
// suffixes are 1-based.
func (w *Walker) Run() error {
	if w.workers <= 1 {
		indices := make([]int, w.nFiles)
		for i := range indices {
			indices[i] = i + 1
		}

		return w.runChain(indices, w.seed)
	}

	workers := w.workers
	if workers > w.nFiles {
		workers = w.nFiles
	}

	var wg sync.WaitGroup
	errCh := make(chan error, workers)

	for wk := 0; wk < workers; wk++ {
		var indices []int
		for i := wk; i < w.nFiles; i += workers {
			indices = append(indices, i+1)
		}

		wg.Add(1)
		go func(indices []int, seed int64) {
			defer wg.Done()
			if err := w.runChain(indices, seed); err != nil {
				errCh <- err
			}
		}(indices, w.seed+int64(indices[0]))
	}

	wg.Wait()
	close(errCh)

	for err := range errCh {
		return err
	}

	return nil
}

// runChain walks one chain and writes the given batch files in order.
func (w *Walker) runChain(fileIndices []int, seed int64) error {
	c := newChain(w, seed)
	if err := c.init(); err != nil {
		return err
	}

	n := w.m.NumReactions()
	steps := 0

	for _, fileIdx := range fileIndices {
		points := mat.NewDense(n, w.pointsPerFile, nil)

		for p := 0; p < w.pointsPerFile; p++ {
			for s := 0; s < w.stepsPerPoint; s++ {
				if err := c.step(); err != nil {
					return fmt.Errorf("batch %d: %w", fileIdx, err)
				}
				steps++
				if steps%w.reprojectEvery == 0 {
					c.reproject()
					c.clamp()
				}
			}

			// Recorded points are always drift-corrected.
			c.reproject()
			c.snapshot(points, p)
		}

		c.state = stateBatchComplete
		if err := w.out.Write(fileIdx, points); err != nil {
			return err
		}
		c.state = stateStepping
	}

	c.state = stateDone

	return nil
}
