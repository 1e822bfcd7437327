package polyrun_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/achrlab/polyrun"
	"github.com/achrlab/polyrun/batch"
	"github.com/achrlab/polyrun/errs"
	"github.com/achrlab/polyrun/format"
	"github.com/achrlab/polyrun/model"
)

// chainModel is a linear pathway: every steady-state flux vector has all
// three reactions carrying the same flux in [0, 10].
func chainModel() *model.Model {
	s := mat.NewDense(2, 3, []float64{
		1, -1, 0,
		0, 1, -1,
	})

	return model.New(s, []float64{0, 0, 0}, []float64{10, 10, 10})
}

// cycleModel contains an internal A <-> B cycle (r0, r1) fed and drained by
// the exchanges r2 and r3.
func cycleModel() *model.Model {
	s := mat.NewDense(2, 4, []float64{
		-1, 1, 1, 0,
		1, -1, 0, -1,
	})

	return model.New(s,
		[]float64{0, 0, 0, 0},
		[]float64{10, 10, 10, 10},
	)
}

func TestSampleACHRPipeline(t *testing.T) {
	m := chainModel()
	base := filepath.Join(t.TempDir(), "flux")

	red, samples, err := polyrun.Sample(m, base, format.SamplerACHR,
		polyrun.WithWarmupPoints(10),
		polyrun.WithFiles(2),
		polyrun.WithPointsPerFile(5),
		polyrun.WithStepsPerPoint(10),
		polyrun.WithPointsReturned(4),
		polyrun.WithFilesSkipped(0),
		polyrun.WithSeed(7),
		polyrun.WithCompression(format.CompressionLZ4),
	)
	require.NoError(t, err)

	// Nothing in the chain is blocked or backward-only, so the reduced
	// model keeps all three reactions in place.
	require.Equal(t, []int{0, 1, 2}, red.OrigIndices())

	rows, cols := samples.Dims()
	require.Equal(t, 3, rows)
	require.Equal(t, 4, cols)

	p := make([]float64, rows)
	for c := 0; c < cols; c++ {
		mat.Col(p, c, samples)
		require.True(t, red.Model.Feasible(p, 1e-6), "sample %d = %v", c, p)
	}

	// Every batch file persists with the configured shape.
	reader := batch.NewReader(base)
	for idx := 1; idx <= 2; idx++ {
		points, err := reader.Read(idx)
		require.NoError(t, err)

		br, bc := points.Dims()
		require.Equal(t, 3, br)
		require.Equal(t, 5, bc)
	}
}

func TestSampleDeterministicForSeed(t *testing.T) {
	m := chainModel()

	run := func(t *testing.T) *mat.Dense {
		base := filepath.Join(t.TempDir(), "flux")
		_, samples, err := polyrun.Sample(m, base, format.SamplerACHR,
			polyrun.WithWarmupPoints(8),
			polyrun.WithFiles(2),
			polyrun.WithPointsPerFile(4),
			polyrun.WithStepsPerPoint(5),
			polyrun.WithPointsReturned(6),
			polyrun.WithFilesSkipped(0),
			polyrun.WithSeed(123),
		)
		require.NoError(t, err)

		return samples
	}

	require.True(t, mat.Equal(run(t), run(t)))
}

func TestSampleDropsLoopRows(t *testing.T) {
	m := cycleModel()
	base := filepath.Join(t.TempDir(), "flux")

	red, samples, err := polyrun.Sample(m, base, format.SamplerACHR,
		polyrun.WithWarmupPoints(10),
		polyrun.WithFiles(2),
		polyrun.WithPointsPerFile(6),
		polyrun.WithStepsPerPoint(8),
		polyrun.WithPointsReturned(5),
		polyrun.WithFilesSkipped(0),
		polyrun.WithSeed(5),
		polyrun.WithLoopSampleRemoval(true),
	)
	require.NoError(t, err)

	// The cycle reactions r0 and r1 are loop-capable; their rows are gone
	// while the exchange rows survive.
	require.Len(t, red.Map, 4)
	rows, cols := samples.Dims()
	require.Equal(t, 2, rows)
	require.Equal(t, 5, cols)
}

func TestSampleWarmupCheckpoint(t *testing.T) {
	m := chainModel()
	dir := t.TempDir()
	checkpoint := filepath.Join(dir, "warmup.bin")

	opts := []polyrun.Option{
		polyrun.WithWarmupPoints(8),
		polyrun.WithFiles(1),
		polyrun.WithPointsPerFile(4),
		polyrun.WithStepsPerPoint(5),
		polyrun.WithPointsReturned(3),
		polyrun.WithFilesSkipped(0),
		polyrun.WithWarmupFile(checkpoint),
	}

	_, first, err := polyrun.Sample(m, filepath.Join(dir, "a"), format.SamplerACHR, opts...)
	require.NoError(t, err)

	// The checkpoint must exist now and be reused by the second run.
	info, err := os.Stat(checkpoint)
	require.NoError(t, err)

	_, second, err := polyrun.Sample(m, filepath.Join(dir, "b"), format.SamplerACHR, opts...)
	require.NoError(t, err)

	after, err := os.Stat(checkpoint)
	require.NoError(t, err)
	require.Equal(t, info.ModTime(), after.ModTime(), "checkpoint must not be rewritten")

	// Same warmup and same seed: identical walks.
	require.True(t, mat.Equal(first, second))
}

func TestSampleUnsupportedSampler(t *testing.T) {
	m := chainModel()

	_, _, err := polyrun.Sample(m, filepath.Join(t.TempDir(), "flux"), "Volume")
	require.ErrorIs(t, err, errs.ErrUnsupportedSampler)
}

func TestSampleRejectsImpossibleConfig(t *testing.T) {
	m := chainModel()
	dir := t.TempDir()

	// 9000 points from 8 usable files is 1125 per file, more than the 1000
	// each batch stores.
	_, _, err := polyrun.Sample(m, filepath.Join(dir, "flux"), format.SamplerACHR,
		polyrun.WithPointsReturned(9000),
	)
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	// The rejection happens before any LP solve or file write.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestSampleEmptyPolytope(t *testing.T) {
	s := mat.NewDense(1, 2, []float64{1, -1})
	m := model.New(s, []float64{0, 0}, []float64{0, 0})

	_, _, err := polyrun.Sample(m, filepath.Join(t.TempDir(), "flux"), format.SamplerACHR,
		polyrun.WithWarmupPoints(4),
		polyrun.WithFiles(1),
		polyrun.WithPointsPerFile(2),
		polyrun.WithPointsReturned(2),
		polyrun.WithFilesSkipped(0),
	)
	require.ErrorIs(t, err, errs.ErrEmptyPolytope)
}

func TestDefaultConfig(t *testing.T) {
	cfg := polyrun.DefaultConfig()
	require.NoError(t, cfg.Validate())

	require.Equal(t, 5000, cfg.NWarmupPoints)
	require.Equal(t, 10, cfg.NFiles)
	require.Equal(t, 1000, cfg.NPointsPerFile)
	require.Equal(t, 200, cfg.NStepsPerPoint)
	require.Equal(t, 2000, cfg.NPointsReturned)
	require.Equal(t, 2, cfg.NFilesSkipped)
	require.Equal(t, format.CompressionNone, cfg.Compression)
}

func TestConfigValidate(t *testing.T) {
	t.Run("skip all files", func(t *testing.T) {
		cfg := polyrun.DefaultConfig()
		cfg.NFilesSkipped = cfg.NFiles
		require.ErrorIs(t, cfg.Validate(), errs.ErrInvalidConfig)
	})

	t.Run("no workers", func(t *testing.T) {
		cfg := polyrun.DefaultConfig()
		cfg.Workers = 0
		require.ErrorIs(t, cfg.Validate(), errs.ErrInvalidConfig)
	})

	t.Run("nil optimizer", func(t *testing.T) {
		cfg := polyrun.DefaultConfig()
		cfg.Optimizer = nil
		require.ErrorIs(t, cfg.Validate(), errs.ErrInvalidConfig)
	})

	t.Run("one warmup point", func(t *testing.T) {
		cfg := polyrun.DefaultConfig()
		cfg.NWarmupPoints = 1
		require.ErrorIs(t, cfg.Validate(), errs.ErrInvalidConfig)
	})
}
