package polyrun

import (
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/achrlab/polyrun/batch"
	"github.com/achrlab/polyrun/errs"
	"github.com/achrlab/polyrun/format"
	"github.com/achrlab/polyrun/loops"
	"github.com/achrlab/polyrun/model"
	"github.com/achrlab/polyrun/reduce"
	"github.com/achrlab/polyrun/walk"
	"github.com/achrlab/polyrun/warmup"

	asm "github.com/achrlab/polyrun/assemble"
)

// Sampler is one sampling algorithm over a model's polytope. The only
// built-in implementation is the artificially-centered hit-and-run walk;
// the interface leaves room for variants such as a volume estimator.
type Sampler interface {
	// Name returns the dispatch name of the algorithm.
	Name() string
	// Sample runs the full pipeline and returns the reduced model used for
	// sampling together with the final sample matrix.
	Sample(m *model.Model, base string, cfg *Config) (*reduce.Reduced, *mat.Dense, error)
}

// samplerFor maps a sampler name to its implementation.
func samplerFor(name string) (Sampler, error) {
	switch name {
	case format.SamplerACHR:
		return achrSampler{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errs.ErrUnsupportedSampler, name)
	}
}

// achrSampler implements the artificially-centered hit-and-run pipeline:
// reduce, warm up, walk, assemble.
type achrSampler struct{}

func (achrSampler) Name() string {
	return format.SamplerACHR
}

func (achrSampler) Sample(m *model.Model, base string, cfg *Config) (*reduce.Reduced, *mat.Dense, error) {
	red, err := reduce.Reduce(m, cfg.Optimizer, cfg.Tolerance)
	if err != nil {
		return nil, nil, fmt.Errorf("reduce model: %w", err)
	}

	var loopRxns []int
	if cfg.RemoveLoops || cfg.RemoveLoopSamples {
		loopRxns, err = loops.Find(red.Model, cfg.Optimizer, cfg.Tolerance)
		if err != nil {
			return nil, nil, fmt.Errorf("detect loops: %w", err)
		}
	}
	if cfg.RemoveLoops {
		for _, j := range loopRxns {
			red.Model.LB[j], red.Model.UB[j] = 0, 0
		}
	}

	set, err := loadOrGenerateWarmup(red.Model, cfg)
	if err != nil {
		return nil, nil, err
	}

	writer, err := batch.NewWriter(base, batch.WithCompression(cfg.Compression))
	if err != nil {
		return nil, nil, fmt.Errorf("open batch writer: %w", err)
	}

	walker, err := walk.NewWalker(red.Model, set, writer,
		walk.WithStepsPerPoint(cfg.NStepsPerPoint),
		walk.WithPointsPerFile(cfg.NPointsPerFile),
		walk.WithFiles(cfg.NFiles),
		walk.WithTolerance(cfg.Tolerance),
		walk.WithSeed(cfg.Seed),
		walk.WithWorkers(cfg.Workers),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("configure walker: %w", err)
	}
	if err := walker.Run(); err != nil {
		return nil, nil, fmt.Errorf("walk: %w", err)
	}

	samples, err := asm.Assemble(base, red, asm.Config{
		NFiles:            cfg.NFiles,
		NFilesSkipped:     cfg.NFilesSkipped,
		NPointsPerFile:    cfg.NPointsPerFile,
		NPointsReturned:   cfg.NPointsReturned,
		LoopReactions:     loopRxns,
		RemoveLoopSamples: cfg.RemoveLoopSamples,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("assemble samples: %w", err)
	}

	return red, samples, nil
}

// loadOrGenerateWarmup reuses a warmup checkpoint when the configured file
// exists, and otherwise generates a fresh set, checkpointing it when a path
// is configured.
func loadOrGenerateWarmup(m *model.Model, cfg *Config) (*warmup.Set, error) {
	if cfg.WarmupFile != "" {
		if _, err := os.Stat(cfg.WarmupFile); err == nil {
			set, err := warmup.LoadSet(cfg.WarmupFile)
			if err != nil {
				return nil, err
			}
			if set.Dim() != m.NumReactions() {
				return nil, fmt.Errorf("%w: checkpoint has %d reactions, model has %d",
					errs.ErrInvalidConfig, set.Dim(), m.NumReactions())
			}

			return set, nil
		}
	}

	set, err := warmup.Generate(m, cfg.Optimizer, cfg.NWarmupPoints, warmup.WithSeed(cfg.Seed))
	if err != nil {
		return nil, fmt.Errorf("generate warmup points: %w", err)
	}

	if cfg.WarmupFile != "" {
		if err := set.Save(cfg.WarmupFile, cfg.Compression); err != nil {
			return nil, err
		}
	}

	return set, nil
}
