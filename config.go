package polyrun

import (
	"fmt"

	"github.com/achrlab/polyrun/errs"
	"github.com/achrlab/polyrun/format"
	"github.com/achrlab/polyrun/internal/options"
	"github.com/achrlab/polyrun/solver"
)

// Config holds every knob of a sampling run. All fields have defaults; use
// the With* options to override any subset.
type Config struct {
	// NWarmupPoints is the size of the warmup point set.
	NWarmupPoints int
	// NFiles is the number of batch files the walk produces.
	NFiles int
	// NPointsPerFile is the number of points recorded per batch file.
	NPointsPerFile int
	// NStepsPerPoint is the number of walk steps between recorded points.
	NStepsPerPoint int
	// NPointsReturned is the number of columns in the final sample matrix.
	NPointsReturned int
	// NFilesSkipped is the number of leading burn-in batches discarded
	// during assembly.
	NFilesSkipped int
	// RemoveLoops closes loop-capable reactions (bounds clamped to zero)
	// before warmup, so no sampled flux runs through an infeasible cycle.
	RemoveLoops bool
	// RemoveLoopSamples drops the rows of loop-capable reactions from the
	// final sample matrix.
	RemoveLoopSamples bool

	// Tolerance is the shared numerical tolerance for reduction, chord
	// clipping, and drift correction.
	Tolerance float64
	// Seed is the base RNG seed; warmup and every chain derive their
	// streams from it.
	Seed int64
	// Workers is the number of concurrent chains; 1 means one sequential
	// chain across all batches.
	Workers int
	// Compression selects the batch payload codec.
	Compression format.CompressionType
	// WarmupFile, when non-empty, is a checkpoint path: an existing file is
	// loaded instead of regenerating warmup points, and a fresh warmup set
	// is saved there after generation.
	WarmupFile string
	// Optimizer is the LP collaborator used by reduction, warmup, and loop
	// detection.
	Optimizer solver.Optimizer
}

// DefaultConfig returns the canonical sampling configuration.
func DefaultConfig() *Config {
	return &Config{
		NWarmupPoints:   5000,
		NFiles:          10,
		NPointsPerFile:  1000,
		NStepsPerPoint:  200,
		NPointsReturned: 2000,
		NFilesSkipped:   2,
		Tolerance:       1e-9,
		Seed:            1,
		Workers:         1,
		Compression:     format.CompressionNone,
		Optimizer:       solver.NewSimplex(0),
	}
}

// Validate rejects configurations that cannot produce the requested output.
// It runs before reduction, so a bad request fails before any work or I/O.
func (c *Config) Validate() error {
	if c.NWarmupPoints < 2 {
		return fmt.Errorf("%w: %d warmup points, need at least 2", errs.ErrInvalidConfig, c.NWarmupPoints)
	}
	if c.NFiles < 1 || c.NPointsPerFile < 1 || c.NStepsPerPoint < 1 {
		return fmt.Errorf("%w: files %d, points per file %d, steps per point %d",
			errs.ErrInvalidConfig, c.NFiles, c.NPointsPerFile, c.NStepsPerPoint)
	}
	if c.NFilesSkipped < 0 || c.NFilesSkipped >= c.NFiles {
		return fmt.Errorf("%w: skipping %d of %d files", errs.ErrInvalidConfig, c.NFilesSkipped, c.NFiles)
	}
	if c.NPointsReturned < 1 {
		return fmt.Errorf("%w: %d points returned", errs.ErrInvalidConfig, c.NPointsReturned)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: %d workers", errs.ErrInvalidConfig, c.Workers)
	}
	if c.Tolerance <= 0 {
		return fmt.Errorf("%w: tolerance %g", errs.ErrInvalidConfig, c.Tolerance)
	}
	if c.Optimizer == nil {
		return fmt.Errorf("%w: nil optimizer", errs.ErrInvalidConfig)
	}

	// More points may not be requested than the retained batches store.
	loaded := c.NFiles - c.NFilesSkipped
	perFile := (c.NPointsReturned + loaded - 1) / loaded
	if perFile > c.NPointsPerFile {
		return fmt.Errorf("%w: need %d points per file from %d usable files but only %d are stored",
			errs.ErrInvalidConfig, perFile, loaded, c.NPointsPerFile)
	}

	return nil
}

// Option overrides one Config field.
type Option = options.Option[*Config]

// WithWarmupPoints sets the warmup set size.
func WithWarmupPoints(n int) Option {
	return options.NoError(func(c *Config) { c.NWarmupPoints = n })
}

// WithFiles sets the number of batch files.
func WithFiles(n int) Option {
	return options.NoError(func(c *Config) { c.NFiles = n })
}

// WithPointsPerFile sets the number of points per batch file.
func WithPointsPerFile(n int) Option {
	return options.NoError(func(c *Config) { c.NPointsPerFile = n })
}

// WithStepsPerPoint sets the thinning interval between recorded points.
func WithStepsPerPoint(n int) Option {
	return options.NoError(func(c *Config) { c.NStepsPerPoint = n })
}

// WithPointsReturned sets the final sample count.
func WithPointsReturned(n int) Option {
	return options.NoError(func(c *Config) { c.NPointsReturned = n })
}

// WithFilesSkipped sets the number of burn-in batches discarded during
// assembly.
func WithFilesSkipped(n int) Option {
	return options.NoError(func(c *Config) { c.NFilesSkipped = n })
}

// WithLoopRemoval closes loop-capable reactions before sampling.
func WithLoopRemoval(enabled bool) Option {
	return options.NoError(func(c *Config) { c.RemoveLoops = enabled })
}

// WithLoopSampleRemoval drops loop-capable reaction rows from the result.
func WithLoopSampleRemoval(enabled bool) Option {
	return options.NoError(func(c *Config) { c.RemoveLoopSamples = enabled })
}

// WithTolerance sets the shared numerical tolerance.
func WithTolerance(tol float64) Option {
	return options.NoError(func(c *Config) { c.Tolerance = tol })
}

// WithSeed fixes the base RNG seed for reproducible runs.
func WithSeed(seed int64) Option {
	return options.NoError(func(c *Config) { c.Seed = seed })
}

// WithWorkers sets the number of concurrent chains.
func WithWorkers(n int) Option {
	return options.NoError(func(c *Config) { c.Workers = n })
}

// WithCompression selects the batch payload codec.
func WithCompression(ct format.CompressionType) Option {
	return options.NoError(func(c *Config) { c.Compression = ct })
}

// WithWarmupFile sets the warmup checkpoint path.
func WithWarmupFile(path string) Option {
	return options.NoError(func(c *Config) { c.WarmupFile = path })
}

// WithOptimizer replaces the LP collaborator.
func WithOptimizer(opt solver.Optimizer) Option {
	return options.NoError(func(c *Config) { c.Optimizer = opt })
}
