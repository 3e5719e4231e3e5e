package engine

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/san-kum/thomaslab/internal/dynamo"
	"github.com/san-kum/thomaslab/internal/field"
	"github.com/san-kum/thomaslab/internal/integrators"
	"github.com/san-kum/thomaslab/internal/lyapunov"
	"github.com/san-kum/thomaslab/internal/thomas"
	"github.com/san-kum/thomaslab/internal/trajectory"
)

// Config seeds an Engine.
type Config struct {
	B             float64
	Dt            float64
	Seed          dynamo.Vec3
	StoreCapacity int
	RandSeed      int64
	Field         field.Config
	Logger        *slog.Logger
}

func DefaultConfig() Config {
	return Config{
		B:             thomas.DefaultB,
		Dt:            0.02,
		Seed:          dynamo.Vec3{X: 0.1, Z: -0.1},
		StoreCapacity: 20000,
		RandSeed:      1,
		Field:         field.DefaultConfig(),
	}
}

// Parameters is the externally visible configuration snapshot.
type Parameters struct {
	B    float64
	Dt   float64
	Seed dynamo.Vec3
	T    float64
}

// Engine owns the state, the trajectory store, and every derived
// computation. It is single-threaded and cooperative: one caller drives
// it, expensive passes run to completion, and bounding latency means
// choosing the approximate path or a coarser grid before a pass starts.
type Engine struct {
	sys   *thomas.Thomas
	integ *integrators.RK4

	x    dynamo.Vec3
	t    float64
	dt   float64
	seed dynamo.Vec3

	store    *trajectory.Store
	quick    *lyapunov.QuickEstimator
	analyzer *field.Analyzer
	rng      *rand.Rand
	randSeed int64

	// epoch counts b/seed changes; bumping it invalidates every derived
	// cache below.
	epoch      uint64
	spectrum   *lyapunov.Spectrum
	lastField  *field.Result
	fieldStale bool

	log *slog.Logger
}

func New(cfg Config) (*Engine, error) {
	sys, err := thomas.New(cfg.B)
	if err != nil {
		return nil, err
	}
	if cfg.Dt <= 0 || math.IsNaN(cfg.Dt) || math.IsInf(cfg.Dt, 0) {
		return nil, fmt.Errorf("%w: dt=%v", dynamo.ErrInvalidTimestep, cfg.Dt)
	}
	if !cfg.Seed.IsValid() {
		return nil, dynamo.ErrInvalidSeed
	}
	if cfg.StoreCapacity < 1 {
		cfg.StoreCapacity = DefaultConfig().StoreCapacity
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	rng := rand.New(rand.NewSource(cfg.RandSeed))
	return &Engine{
		sys:        sys,
		integ:      integrators.NewRK4(),
		x:          cfg.Seed,
		dt:         cfg.Dt,
		seed:       cfg.Seed,
		store:      trajectory.NewStore(cfg.StoreCapacity),
		quick:      lyapunov.NewQuickEstimator(time.Second),
		analyzer:   field.NewAnalyzer(cfg.Field, rng),
		rng:        rng,
		randSeed:   cfg.RandSeed,
		fieldStale: true,
		log:        log,
	}, nil
}

// Step advances n fixed RK4 steps, folds each sample into the store, and
// returns the produced positions in order.
func (e *Engine) Step(n int) []dynamo.Vec3 {
	if n <= 0 {
		return nil
	}
	out := make([]dynamo.Vec3, 0, n)
	for i := 0; i < n; i++ {
		e.x = e.integ.Step(e.sys, e.x, e.dt)
		e.t += e.dt
		e.store.Append(trajectory.Sample{
			Pos: e.x,
			Vel: e.sys.Derive(e.x),
			T:   e.t,
		})
		out = append(out, e.x)
	}
	return out
}

func (e *Engine) Parameters() Parameters {
	return Parameters{B: e.sys.B(), Dt: e.dt, Seed: e.seed, T: e.t}
}

func (e *Engine) Store() *trajectory.Store { return e.store }
func (e *Engine) System() *thomas.Thomas   { return e.sys }
func (e *Engine) Epoch() uint64            { return e.epoch }

// SetB changes the dissipation parameter. Every derived cache, spectrum
// and grid is invalidated atomically with the change.
func (e *Engine) SetB(b float64) error {
	if err := e.sys.SetParam("b", b); err != nil {
		return err
	}
	e.invalidate("set_b")
	return nil
}

// SetDt changes the integration timestep. The spectrum is dt-scaled, so
// derived state is invalidated too.
func (e *Engine) SetDt(dt float64) error {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: dt=%v", dynamo.ErrInvalidTimestep, dt)
	}
	e.dt = dt
	e.invalidate("set_dt")
	return nil
}

// Reset restarts the trajectory. A nil seed reuses the configured one.
// The store is cleared and the RNG rewound so a reset run reproduces
// bit for bit.
func (e *Engine) Reset(seed *dynamo.Vec3) error {
	if seed != nil {
		if !seed.IsValid() {
			return dynamo.ErrInvalidSeed
		}
		e.seed = *seed
	}
	e.x = e.seed
	e.t = 0
	e.store.Reset()
	e.rng = rand.New(rand.NewSource(e.randSeed))
	e.analyzer = field.NewAnalyzer(e.analyzer.Config(), e.rng)
	e.invalidate("reset")
	return nil
}

func (e *Engine) invalidate(cause string) {
	e.epoch++
	e.spectrum = nil
	e.fieldStale = true
	e.quick.Invalidate()
	e.log.Debug("derived state invalidated", "cause", cause, "epoch", e.epoch)
}

// ComputeLyapunovSpectrum runs the full tangent-frame method from the
// current state: skipTransient warmup steps, then steps accumulating
// steps. Expensive; the result is cached until the next invalidation.
func (e *Engine) ComputeLyapunovSpectrum(steps, skipTransient int) (lyapunov.Spectrum, error) {
	if steps <= 0 {
		return lyapunov.Spectrum{}, fmt.Errorf("%w: steps=%d", dynamo.ErrParameterBounds, steps)
	}
	if skipTransient < 0 {
		skipTransient = 0
	}

	start := time.Now()
	spec := lyapunov.Compute(e.sys, e.integ, e.x, e.dt, steps, skipTransient)
	e.spectrum = &spec
	e.log.Debug("lyapunov spectrum computed",
		"steps", steps,
		"lambda1", spec.Exponents[0],
		"sum", spec.Sum(),
		"kaplan_yorke", spec.KaplanYorke,
		"elapsed", time.Since(start))
	return spec, nil
}

// QuickLyapunov approximates lambda1 from recent sample separations,
// cached for about a second of wall clock.
func (e *Engine) QuickLyapunov() float64 {
	return e.quick.Estimate(e.store, e.dt)
}

// ComputeChaosMetric derives the composite metric from the cached full
// spectrum, computing one at moderate depth first when none is cached.
func (e *Engine) ComputeChaosMetric() (lyapunov.ChaosMetric, error) {
	if e.spectrum == nil {
		if _, err := e.ComputeLyapunovSpectrum(5000, 500); err != nil {
			return lyapunov.ChaosMetric{}, err
		}
	}
	s := e.spectrum
	return lyapunov.NewChaosMetric(s.Exponents[0], s.KaplanYorke, e.sys.B()), nil
}

// AnalyzeSpatialField folds the batch into the trajectory store and runs
// one full field pass. The returned grids are fresh buffers; the previous
// result is swapped out whole, never mutated.
func (e *Engine) AnalyzeSpatialField(batch []trajectory.Sample) *field.Result {
	e.store.AppendBatch(batch)
	res := e.analyzer.Analyze(e.sys, e.store)
	e.lastField = res
	e.fieldStale = false
	e.log.Debug("spatial field pass",
		"samples", res.Stats.SampleCount,
		"critical_points", len(res.CriticalPoints),
		"approx", res.Approx,
		"elapsed", res.Elapsed)
	return res
}

// LastField returns the most recent pass result; ok is false when no
// pass has run since the last invalidation.
func (e *Engine) LastField() (*field.Result, bool) {
	if e.fieldStale || e.lastField == nil {
		return nil, false
	}
	return e.lastField, true
}

// SetApprox chooses the stochastic density path for subsequent passes.
func (e *Engine) SetApprox(on bool) { e.analyzer.SetApprox(on) }
