package lyapunov

import (
	"math"
	"sort"

	"github.com/san-kum/thomaslab/internal/dynamo"
)

// Phase tracks the meter's lifecycle.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseWarmup
	PhaseAccumulating
	PhaseConverged
)

// Frame is an orthonormal tangent basis evolved alongside a trajectory,
// with accumulated log-growth per direction. Invariant: orthonormal to
// numerical tolerance after every Advance.
type Frame struct {
	V     [3]dynamo.Vec3
	Sums  [3]float64
	Steps int
}

func NewFrame() *Frame {
	return &Frame{V: [3]dynamo.Vec3{{X: 1}, {Y: 1}, {Z: 1}}}
}

func (f *Frame) Reset() {
	*f = *NewFrame()
}

// Advance propagates each tangent vector through the local Jacobian over
// dt, re-orthonormalizes, and accumulates log-growth. A vector that goes
// non-finite or collapses to zero norm is replaced by the zero vector and
// contributes nothing for this step; this is recovery, not failure.
func (f *Frame) Advance(jac dynamo.Mat3, dt float64) {
	for i := range f.V {
		f.V[i] = f.V[i].Add(jac.MulVec(f.V[i]).Scale(dt))
	}

	// Modified Gram-Schmidt; the diagonal of R is the per-direction growth.
	for i := range f.V {
		for j := 0; j < i; j++ {
			f.V[i] = f.V[i].Sub(f.V[j].Scale(f.V[i].Dot(f.V[j])))
		}
		if !f.V[i].IsValid() {
			f.V[i] = dynamo.Vec3{}
			continue
		}
		r := f.V[i].Norm()
		if r == 0 {
			continue
		}
		f.V[i] = f.V[i].Scale(1 / r)
		f.Sums[i] += math.Log(r)
	}
	f.Steps++
}

// Exponents returns the accumulated spectrum, sorted descending.
// Before any accumulation it is all zeros.
func (f *Frame) Exponents(dt float64) [3]float64 {
	var out [3]float64
	if f.Steps == 0 || dt <= 0 {
		return out
	}
	inv := 1.0 / (float64(f.Steps) * dt)
	for i, s := range f.Sums {
		out[i] = s * inv
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(out[:])))
	return out
}

// Spectrum is the result of a full-method computation.
type Spectrum struct {
	Exponents   [3]float64 // sorted descending
	KaplanYorke float64
	Steps       int
	Dt          float64
}

// Sum returns the spectrum total, which for the Thomas flow should
// approach the divergence -3b.
func (s Spectrum) Sum() float64 {
	return s.Exponents[0] + s.Exponents[1] + s.Exponents[2]
}

// Meter evolves a trajectory and its tangent frame step by step.
type Meter struct {
	dyn   dynamo.System
	integ dynamo.Integrator
	x     dynamo.Vec3
	dt    float64

	frame  *Frame
	phase  Phase
	warmup int
}

// NewMeter prepares a spectrum computation seeded at x0. skipTransient
// steps evolve only the base trajectory before accumulation starts.
func NewMeter(dyn dynamo.System, integ dynamo.Integrator, x0 dynamo.Vec3, dt float64, skipTransient int) *Meter {
	phase := PhaseAccumulating
	if skipTransient > 0 {
		phase = PhaseWarmup
	}
	return &Meter{
		dyn:    dyn,
		integ:  integ,
		x:      x0,
		dt:     dt,
		frame:  NewFrame(),
		phase:  phase,
		warmup: skipTransient,
	}
}

func (m *Meter) Phase() Phase       { return m.phase }
func (m *Meter) State() dynamo.Vec3 { return m.x }
func (m *Meter) Frame() *Frame      { return m.frame }

// Step advances the base trajectory one RK4 step and, past the warmup
// phase, the tangent frame with it.
func (m *Meter) Step() {
	m.x = m.integ.Step(m.dyn, m.x, m.dt)
	if m.phase == PhaseWarmup {
		m.warmup--
		if m.warmup <= 0 {
			m.phase = PhaseAccumulating
		}
		return
	}
	m.frame.Advance(m.dyn.Jacobian(m.x), m.dt)
}

// Run advances the meter for n steps and returns the spectrum so far.
func (m *Meter) Run(n int) Spectrum {
	for i := 0; i < n; i++ {
		m.Step()
	}
	if m.frame.Steps > 0 {
		m.phase = PhaseConverged
	}
	exp := m.frame.Exponents(m.dt)
	return Spectrum{
		Exponents:   exp,
		KaplanYorke: KaplanYorke(exp[:]),
		Steps:       m.frame.Steps,
		Dt:          m.dt,
	}
}

// Compute runs the full method in one call: skipTransient warmup steps,
// then steps accumulating steps.
func Compute(dyn dynamo.System, integ dynamo.Integrator, x0 dynamo.Vec3, dt float64, steps, skipTransient int) Spectrum {
	m := NewMeter(dyn, integ, x0, dt, skipTransient)
	for i := 0; i < skipTransient; i++ {
		m.Step()
	}
	return m.Run(steps)
}

// KaplanYorke interpolates the fractal dimension from a descending
// spectrum: the largest k whose partial sum stays non-negative, plus the
// fraction of the next exponent needed to bring the sum to zero. k=0
// gives 0; a full non-negative sum gives the spectrum length with no
// missing-exponent division.
func KaplanYorke(exponents []float64) float64 {
	k := 0
	partial := 0.0
	for i, lam := range exponents {
		if partial+lam < 0 {
			break
		}
		partial += lam
		k = i + 1
	}
	if k == 0 {
		return 0
	}
	if k == len(exponents) {
		return float64(k)
	}
	next := math.Abs(exponents[k])
	if next == 0 {
		return float64(k)
	}
	return float64(k) + partial/next
}
