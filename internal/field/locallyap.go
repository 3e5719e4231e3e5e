package field

import (
	"math"

	"github.com/san-kum/thomaslab/internal/dynamo"
	"github.com/san-kum/thomaslab/internal/integrators"
)

// localLyapSteps bounds the short forward integration behind each cell's
// local expansion estimate.
const localLyapSteps = 40

// LocalLyapunov estimates a per-cell expansion rate: one unit tangent
// vector propagated through a short forward integration seeded at the
// cell center, renormalized every step with the log growth accumulated.
// Single vector, no orthonormalization. Integration aborts early when the
// trajectory escapes the bounding box (1.5x the grid half-range); a cell
// with zero valid steps reads 0.
func LocalLyapunov(spec GridSpec, dyn dynamo.System, dt float64) *ScalarGrid {
	grid := NewScalarGrid(spec)
	integ := integrators.NewRK4()
	escape := spec.HalfRange * 1.5

	for k := 0; k < spec.N; k++ {
		for j := 0; j < spec.N; j++ {
			for i := 0; i < spec.N; i++ {
				grid.Data[spec.Index(i, j, k)] = localExpansion(dyn, integ, spec.Center(i, j, k), dt, escape)
			}
		}
	}
	return grid
}

func localExpansion(dyn dynamo.System, integ dynamo.Integrator, seed dynamo.Vec3, dt, escape float64) float64 {
	x := seed
	v := dynamo.Vec3{X: 1}
	sum := 0.0
	valid := 0

	for s := 0; s < localLyapSteps; s++ {
		x = integ.Step(dyn, x, dt)
		if !x.IsValid() || !inWindow(x, escape) {
			break
		}
		v = v.Add(dyn.Jacobian(x).MulVec(v).Scale(dt))
		r := v.Norm()
		if r == 0 || math.IsNaN(r) || math.IsInf(r, 0) {
			break
		}
		v = v.Scale(1 / r)
		sum += math.Log(r)
		valid++
	}

	if valid == 0 {
		return 0
	}
	return sum / (float64(valid) * dt)
}
