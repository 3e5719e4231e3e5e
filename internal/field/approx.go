package field

import (
	"math"
	"math/rand"
	"time"

	"github.com/san-kum/thomaslab/internal/dynamo"
)

// ApproxConfig tunes the stochastic density path.
type ApproxConfig struct {
	Samples  int           // Monte Carlo draws
	Basis    int           // RBF centers, typically 8-16
	Sigma    float64       // RBF width
	CacheTTL time.Duration // per-coarse-cell result expiry
}

func DefaultApproxConfig() ApproxConfig {
	return ApproxConfig{
		Samples:  512,
		Basis:    12,
		Sigma:    1.2,
		CacheTTL: 2 * time.Second,
	}
}

// ApproxDensity answers density queries in O(basis count) instead of the
// exact KDE's O(sample count). It draws importance-weighted Monte Carlo
// points over the grid cube, scores them with a cheap flow-potential
// proxy, fits a small radial-basis expansion by kernel-weighted
// averaging, and caches per-coarse-cell results with a fixed expiry.
// Exactness is traded for interactive cadence; the exact path stays the
// reference.
type ApproxDensity struct {
	centers []dynamo.Vec3
	weights []float64
	sigma   float64

	coarse float64
	ttl    time.Duration
	now    func() time.Time
	cache  map[[3]int]approxEntry
}

type approxEntry struct {
	value   float64
	expires time.Time
}

// FitApproxDensity draws cfg.Samples points by rejection sampling against
// the importance map, scores each with the flow proxy, and fits
// cfg.Basis RBF weights. The rng is caller-owned so passes stay
// reproducible under a fixed seed.
func FitApproxDensity(spec GridSpec, dyn dynamo.System, rng *rand.Rand, cfg ApproxConfig) *ApproxDensity {
	if cfg.Samples < 1 {
		cfg.Samples = 1
	}
	if cfg.Basis < 1 {
		cfg.Basis = 1
	}
	if cfg.Sigma <= 0 {
		cfg.Sigma = 1
	}

	points := make([]dynamo.Vec3, 0, cfg.Samples)
	scores := make([]float64, 0, cfg.Samples)

	// Rejection sampling against the importance map; the cap bounds the
	// loop when the map rejects nearly everything.
	maxDraws := cfg.Samples * 32
	for draws := 0; len(points) < cfg.Samples && draws < maxDraws; draws++ {
		p := dynamo.Vec3{
			X: (rng.Float64()*2 - 1) * spec.HalfRange,
			Y: (rng.Float64()*2 - 1) * spec.HalfRange,
			Z: (rng.Float64()*2 - 1) * spec.HalfRange,
		}
		if rng.Float64() >= importance(p, spec.HalfRange) {
			continue
		}
		points = append(points, p)
		scores = append(scores, flowProxy(dyn, p))
	}

	a := &ApproxDensity{
		sigma:  cfg.Sigma,
		coarse: spec.CellSize() * 4,
		ttl:    cfg.CacheTTL,
		now:    time.Now,
		cache:  make(map[[3]int]approxEntry),
	}

	if len(points) == 0 {
		// Degenerate importance map; fall back to a single zero-weight
		// center at the origin so queries stay total.
		a.centers = []dynamo.Vec3{{}}
		a.weights = []float64{0}
		return a
	}

	basis := cfg.Basis
	if basis > len(points) {
		basis = len(points)
	}
	stride := len(points) / basis

	inv2s2 := 1.0 / (2 * cfg.Sigma * cfg.Sigma)
	for i := 0; i < basis; i++ {
		c := points[i*stride]
		num, den := 0.0, 0.0
		for j, p := range points {
			w := math.Exp(-p.Sub(c).Norm2() * inv2s2)
			num += w * scores[j]
			den += w
		}
		weight := 0.0
		if den > 0 {
			weight = num / den
		}
		a.centers = append(a.centers, c)
		a.weights = append(a.weights, weight)
	}
	return a
}

// Query evaluates the fitted radial-basis sum at p, consulting the
// per-coarse-cell cache first. Expiry is checked explicitly on read.
func (a *ApproxDensity) Query(p dynamo.Vec3) float64 {
	key := [3]int{
		coarse(p.X, a.coarse),
		coarse(p.Y, a.coarse),
		coarse(p.Z, a.coarse),
	}
	if e, ok := a.cache[key]; ok && a.now().Before(e.expires) {
		return e.value
	}

	inv2s2 := 1.0 / (2 * a.sigma * a.sigma)
	sum := 0.0
	for i, c := range a.centers {
		sum += a.weights[i] * math.Exp(-p.Sub(c).Norm2()*inv2s2)
	}
	a.cache[key] = approxEntry{value: sum, expires: a.now().Add(a.ttl)}
	return sum
}

// BuildGrid evaluates the approximation at every cell center and
// normalizes the result to unit mass so it reads as a density field.
func (a *ApproxDensity) BuildGrid(spec GridSpec) *ScalarGrid {
	grid := NewScalarGrid(spec)
	total := 0.0
	for k := 0; k < spec.N; k++ {
		for j := 0; j < spec.N; j++ {
			for i := 0; i < spec.N; i++ {
				v := a.Query(spec.Center(i, j, k))
				grid.Data[spec.Index(i, j, k)] = v
				total += v
			}
		}
	}
	if total > 0 {
		norm := 1.0 / (total * spec.CellVolume())
		for idx := range grid.Data {
			grid.Data[idx] *= norm
		}
	}
	return grid
}

// importance favors the attractor's toroidal support: a radial shell
// around |p| ~ 2.4 for the chaotic regime, falling off into the corners
// of the cube.
func importance(p dynamo.Vec3, halfRange float64) float64 {
	r0 := 0.6 * halfRange
	d := p.Norm() - r0
	return math.Exp(-d * d / (2 * 1.5 * 1.5))
}

// flowProxy is the cheap stand-in for the KDE sum: trajectories linger
// where the flow is slow, so density tracks a decaying potential of the
// local speed.
func flowProxy(dyn dynamo.System, p dynamo.Vec3) float64 {
	return math.Exp(-dyn.Derive(p).Norm())
}
