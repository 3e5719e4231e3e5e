package field

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/thomaslab/internal/dynamo"
	"github.com/san-kum/thomaslab/internal/thomas"
)

func TestFitApproxDensityDeterministic(t *testing.T) {
	sys := thomas.NewDefault()
	spec := GridSpec{N: 8, HalfRange: 4}
	cfg := DefaultApproxConfig()

	a := FitApproxDensity(spec, sys, rand.New(rand.NewSource(42)), cfg)
	b := FitApproxDensity(spec, sys, rand.New(rand.NewSource(42)), cfg)

	require.Equal(t, len(a.centers), len(b.centers))
	for i := range a.centers {
		assert.Equal(t, a.centers[i], b.centers[i])
		assert.Equal(t, a.weights[i], b.weights[i])
	}
	assert.Len(t, a.centers, cfg.Basis)
}

func TestApproxDensityGridNormalized(t *testing.T) {
	sys := thomas.NewDefault()
	spec := GridSpec{N: 12, HalfRange: 4}

	a := FitApproxDensity(spec, sys, rand.New(rand.NewSource(7)), DefaultApproxConfig())
	grid := a.BuildGrid(spec)

	assert.InDelta(t, 1.0, integrate(grid), 1e-9, "grid normalizes to unit mass")
	for _, d := range grid.Data {
		assert.GreaterOrEqual(t, d, 0.0)
	}
}

func TestApproxDensityCacheExpiry(t *testing.T) {
	sys := thomas.NewDefault()
	spec := GridSpec{N: 8, HalfRange: 4}
	cfg := DefaultApproxConfig()
	cfg.CacheTTL = time.Second

	a := FitApproxDensity(spec, sys, rand.New(rand.NewSource(3)), cfg)

	clock := time.Unix(1000, 0)
	a.now = func() time.Time { return clock }

	p := dynamo.Vec3{X: 1, Y: 1, Z: 1}
	first := a.Query(p)

	// Within the TTL the cached value answers, even for a different point
	// in the same coarse cell.
	nearby := p.Add(dynamo.Vec3{X: 0.01})
	assert.Equal(t, first, a.Query(nearby))

	// Past the TTL the entry recomputes at the queried point.
	clock = clock.Add(2 * time.Second)
	refreshed := a.Query(nearby)
	assert.NotEqual(t, first, refreshed)
	assert.InDelta(t, first, refreshed, 0.5*first+1e-9, "refreshed value is the same field nearby")
}

func TestApproxDensityBasisCapped(t *testing.T) {
	sys := thomas.NewDefault()
	spec := GridSpec{N: 8, HalfRange: 4}
	cfg := DefaultApproxConfig()
	cfg.Samples = 4
	cfg.Basis = 16

	a := FitApproxDensity(spec, sys, rand.New(rand.NewSource(9)), cfg)
	assert.LessOrEqual(t, len(a.centers), 4, "basis cannot exceed drawn points")
	assert.NotEmpty(t, a.centers)
}
