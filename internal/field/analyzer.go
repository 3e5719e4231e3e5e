package field

import (
	"math/rand"
	"time"

	"github.com/san-kum/thomaslab/internal/dynamo"
	"github.com/san-kum/thomaslab/internal/integrators"
	"github.com/san-kum/thomaslab/internal/trajectory"
)

// Config tunes one spatial-field analysis pass.
type Config struct {
	Grid GridSpec

	Bandwidth         float64 // KDE bandwidth h
	CriticalThreshold float64 // |velocity| below this marks a critical cell
	NeighborRadius    int     // coarse-cell radius for neighbor queries
	HashCellFactor    float64 // coarse bucket size in grid cells

	Streamlines         int
	StreamlineMaxPoints int
	StreamlineTol       float64

	LocalLyapDt float64

	// SampleVelocity selects the spatially weighted sample average for
	// the velocity grid instead of closed-form evaluation.
	SampleVelocity bool

	// Approx selects the stochastic RBF density path instead of the
	// exact KDE sum. The choice is made before the pass starts; a pass
	// runs to completion.
	Approx    bool
	ApproxCfg ApproxConfig
}

func DefaultConfig() Config {
	return Config{
		Grid:                GridSpec{N: 24, HalfRange: 4},
		Bandwidth:           0.35,
		CriticalThreshold:   0.05,
		NeighborRadius:      1,
		HashCellFactor:      4,
		Streamlines:         4,
		StreamlineMaxPoints: 400,
		StreamlineTol:       1e-5,
		LocalLyapDt:         0.05,
		SampleVelocity:      true,
		ApproxCfg:           DefaultApproxConfig(),
	}
}

// Result is one pass over the field: every grid rebuilt into fresh
// buffers, critical points and streamlines regenerated. Nothing here is
// mutated after Analyze returns.
type Result struct {
	Density       *ScalarGrid // histogram occupation density
	KDE           *ScalarGrid // smooth density, exact or approximate
	Velocity      *VectorGrid
	Gradient      *TensorGrid
	Eigen         *EigenGrid
	Divergence    *ScalarGrid
	Vorticity     *ScalarGrid
	LocalLyapunov *ScalarGrid

	CriticalPoints []CriticalPoint
	Streamlines    []*Streamline

	Stats   Statistics
	Approx  bool
	Elapsed time.Duration
}

// Analyzer runs spatial-field passes. Single-threaded and synchronous:
// the caller throttles or chooses the approximate path, never cancels
// mid-pass.
type Analyzer struct {
	cfg Config
	rng *rand.Rand
}

func NewAnalyzer(cfg Config, rng *rand.Rand) *Analyzer {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Analyzer{cfg: cfg, rng: rng}
}

func (a *Analyzer) Config() Config { return a.cfg }

// SetApprox flips the density path for subsequent passes.
func (a *Analyzer) SetApprox(on bool) { a.cfg.Approx = on }

// Analyze runs one full pass against the store's current snapshot.
func (a *Analyzer) Analyze(dyn dynamo.System, store *trajectory.Store) *Result {
	start := time.Now()
	spec := a.cfg.Grid
	n := store.Len() // snapshot; tolerate concurrent FIFO eviction

	hash := BuildSpatialHash(store, n, spec.CellSize()*a.cfg.HashCellFactor)

	res := &Result{Approx: a.cfg.Approx}
	res.Density = HistogramDensity(spec, store, n)

	if a.cfg.Approx {
		approx := FitApproxDensity(spec, dyn, a.rng, a.cfg.ApproxCfg)
		res.KDE = approx.BuildGrid(spec)
	} else {
		res.KDE = KernelDensityIndexed(spec, store, n, a.cfg.Bandwidth, hash)
	}

	if a.cfg.SampleVelocity && n > 0 {
		res.Velocity = VelocityFromSamples(spec, store, n, hash, a.cfg.NeighborRadius)
	} else {
		res.Velocity = VelocityClosedForm(spec, dyn)
	}

	res.Gradient = GradientTensor(spec, dyn)
	res.Eigen = BuildEigenGrid(res.Gradient)
	res.Divergence = Divergence(res.Gradient)
	res.Vorticity = VorticityMagnitude(res.Gradient)
	res.CriticalPoints = FindCriticalPoints(res.Velocity, res.Gradient, a.cfg.CriticalThreshold)
	res.LocalLyapunov = LocalLyapunov(spec, dyn, a.cfg.LocalLyapDt)

	sd := integrators.NewStepDoubling(a.cfg.StreamlineTol)
	for i := 0; i < a.cfg.Streamlines; i++ {
		seed := dynamo.Vec3{
			X: (a.rng.Float64()*2 - 1) * spec.HalfRange,
			Y: (a.rng.Float64()*2 - 1) * spec.HalfRange,
			Z: (a.rng.Float64()*2 - 1) * spec.HalfRange,
		}
		res.Streamlines = append(res.Streamlines, TraceStreamline(dyn, sd, seed, spec.HalfRange, a.cfg.StreamlineMaxPoints))
	}

	occupied := 0
	for _, d := range res.Density.Data {
		if d > 0 {
			occupied++
		}
	}
	res.Stats = Statistics{
		Entropy:        ShannonEntropy(res.KDE),
		CorrelationDim: CorrelationDimension(spec, store, n),
		InformationDim: InformationDimension(spec, store, n),
		SampleCount:    n,
		OccupiedCells:  occupied,
	}

	res.Elapsed = time.Since(start)
	return res
}
