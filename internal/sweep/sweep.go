// Package sweep characterizes the Thomas family across dissipation
// values: each b gets its own short integration, Lyapunov spectrum, chaos
// metric and flower fit, run in parallel across values.
package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/thomaslab/internal/dynamo"
	"github.com/san-kum/thomaslab/internal/flower"
	"github.com/san-kum/thomaslab/internal/integrators"
	"github.com/san-kum/thomaslab/internal/lyapunov"
	"github.com/san-kum/thomaslab/internal/thomas"
	"github.com/san-kum/thomaslab/internal/trajectory"
)

// Config describes one parameter sweep.
type Config struct {
	BMin, BMax float64
	Values     int
	Dt         float64
	Steps      int // accumulating steps per value
	Transient  int // warmup steps per value
	Seed       dynamo.Vec3
	FitFlower  bool
	Workers    int // 0 means GOMAXPROCS
}

func DefaultConfig() Config {
	return Config{
		BMin:      0.05,
		BMax:      0.45,
		Values:    21,
		Dt:        0.02,
		Steps:     8000,
		Transient: 1000,
		Seed:      dynamo.Vec3{X: 0.1, Z: -0.1},
		FitFlower: true,
	}
}

func (c Config) validate() error {
	if c.BMin <= 0 || c.BMax <= c.BMin {
		return fmt.Errorf("%w: b range [%v, %v]", dynamo.ErrParameterBounds, c.BMin, c.BMax)
	}
	if c.Values < 2 {
		return fmt.Errorf("%w: need at least 2 sweep values", dynamo.ErrParameterBounds)
	}
	if c.Dt <= 0 || math.IsNaN(c.Dt) {
		return dynamo.ErrInvalidTimestep
	}
	return nil
}

// Point is the characterization of one b value.
type Point struct {
	B           float64
	Exponents   [3]float64
	KaplanYorke float64
	Chaos       lyapunov.ChaosMetric
	EFlower     float64
	FlowerIndex float64
}

// Run sweeps b over [BMin, BMax] with Values evenly spaced points.
// Each value runs independently; results come back ordered by b.
func Run(ctx context.Context, cfg Config, log *slog.Logger) ([]Point, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	points := make([]Point, cfg.Values)
	step := (cfg.BMax - cfg.BMin) / float64(cfg.Values-1)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < cfg.Values; i++ {
		b := cfg.BMin + float64(i)*step
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pt, err := characterize(b, cfg)
			if err != nil {
				return err
			}
			points[i] = pt
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info("sweep complete", "values", cfg.Values, "b_min", cfg.BMin, "b_max", cfg.BMax)
	return points, nil
}

func characterize(b float64, cfg Config) (Point, error) {
	sys, err := thomas.New(b)
	if err != nil {
		return Point{}, err
	}
	integ := integrators.NewRK4()

	spec := lyapunov.Compute(sys, integ, cfg.Seed, cfg.Dt, cfg.Steps, cfg.Transient)
	pt := Point{
		B:           b,
		Exponents:   spec.Exponents,
		KaplanYorke: spec.KaplanYorke,
		Chaos:       lyapunov.NewChaosMetric(spec.Exponents[0], spec.KaplanYorke, b),
		EFlower:     math.NaN(),
		FlowerIndex: math.NaN(),
	}

	if cfg.FitFlower {
		store := trajectory.NewStore(cfg.Steps)
		x := cfg.Seed
		for s := 0; s < cfg.Transient; s++ {
			x = integ.Step(sys, x, cfg.Dt)
		}
		for s := 0; s < cfg.Steps; s++ {
			x = integ.Step(sys, x, cfg.Dt)
			store.Append(trajectory.Sample{Pos: x, Vel: sys.Derive(x), T: float64(s) * cfg.Dt})
		}
		polar := flower.PolarSamples(store, store.Len(), flower.Projection{Plane: "xy"})
		fit := flower.Fit(polar, flower.Rhodonea{M: 1})
		pt.EFlower = fit.RMSError
		lam := spec.Exponents[0]
		if lam < 0 {
			lam = 0
		}
		pt.FlowerIndex = flower.Index(fit.RMSError, lam)
	}
	return pt, nil
}
