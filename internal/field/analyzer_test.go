package field

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/thomaslab/internal/thomas"
)

func TestAnalyzerFullPass(t *testing.T) {
	sys := thomas.NewDefault()
	store := attractorStore(t, 1500)

	cfg := DefaultConfig()
	cfg.Grid = GridSpec{N: 12, HalfRange: 4}
	an := NewAnalyzer(cfg, rand.New(rand.NewSource(1)))

	res := an.Analyze(sys, store)
	require.NotNil(t, res)

	cells := cfg.Grid.Cells()
	assert.Len(t, res.Density.Data, cells)
	assert.Len(t, res.KDE.Data, cells)
	assert.Len(t, res.Velocity.Data, cells)
	assert.Len(t, res.Gradient.Data, cells)
	assert.Len(t, res.Eigen.Data, cells)
	assert.Len(t, res.Divergence.Data, cells)
	assert.Len(t, res.Vorticity.Data, cells)
	assert.Len(t, res.LocalLyapunov.Data, cells)
	assert.Len(t, res.Streamlines, cfg.Streamlines)

	assert.Equal(t, 1500, res.Stats.SampleCount)
	assert.Positive(t, res.Stats.OccupiedCells)
	assert.Positive(t, res.Stats.Entropy)
	assert.False(t, res.Approx)
	assert.Positive(t, res.Elapsed)

	// Constant-divergence flow: every cell reads -3b.
	for _, d := range res.Divergence.Data {
		assert.InDelta(t, sys.Divergence(), d, 1e-12)
	}
}

func TestAnalyzerApproxPath(t *testing.T) {
	sys := thomas.NewDefault()
	store := attractorStore(t, 300)

	cfg := DefaultConfig()
	cfg.Grid = GridSpec{N: 8, HalfRange: 4}
	an := NewAnalyzer(cfg, rand.New(rand.NewSource(2)))
	an.SetApprox(true)

	res := an.Analyze(sys, store)
	assert.True(t, res.Approx)
	assert.InDelta(t, 1.0, integrate(res.KDE), 1e-9, "approximate density still integrates to unity")
}

func TestAnalyzerClosedFormVelocity(t *testing.T) {
	sys := thomas.NewDefault()
	store := attractorStore(t, 200)

	cfg := DefaultConfig()
	cfg.Grid = GridSpec{N: 6, HalfRange: 4}
	cfg.SampleVelocity = false
	an := NewAnalyzer(cfg, nil)

	res := an.Analyze(sys, store)
	spec := cfg.Grid
	for idx := range res.Velocity.Data {
		i, j, k := spec.Coords(idx)
		want := sys.Derive(spec.Center(i, j, k))
		assert.Zero(t, res.Velocity.Data[idx].Sub(want).Norm(), "cell %d", idx)
	}
}

func TestAnalyzerEmptyStore(t *testing.T) {
	sys := thomas.NewDefault()
	store := attractorStore(t, 10)

	cfg := DefaultConfig()
	cfg.Grid = GridSpec{N: 4, HalfRange: 4}
	an := NewAnalyzer(cfg, nil)

	// An empty snapshot still produces a complete, zeroed result.
	empty := attractorStore(t, 1)
	empty.Reset()
	res := an.Analyze(sys, empty)
	assert.Zero(t, res.Stats.SampleCount)
	assert.Zero(t, res.Stats.Entropy)

	// And a tiny one works too.
	res = an.Analyze(sys, store)
	assert.Equal(t, 10, res.Stats.SampleCount)
}
