package field

import (
	"github.com/san-kum/thomaslab/internal/dynamo"
	"github.com/san-kum/thomaslab/internal/trajectory"
)

// VelocityClosedForm evaluates the flow's right-hand side at every cell
// center. This is the exact path; no samples needed.
func VelocityClosedForm(spec GridSpec, dyn dynamo.System) *VectorGrid {
	grid := NewVectorGrid(spec)
	for k := 0; k < spec.N; k++ {
		for j := 0; j < spec.N; j++ {
			for i := 0; i < spec.N; i++ {
				grid.Data[spec.Index(i, j, k)] = dyn.Derive(spec.Center(i, j, k))
			}
		}
	}
	return grid
}

// VelocityFromSamples populates each cell with the spatially weighted
// average of nearby sample velocities, weight 1/(1+distance). Neighbor
// candidates come from the spatial hash; cells with no nearby samples
// stay zero.
func VelocityFromSamples(spec GridSpec, store *trajectory.Store, n int, hash *SpatialHash, radius int) *VectorGrid {
	grid := NewVectorGrid(spec)
	if hash == nil || n <= 0 {
		return grid
	}
	for k := 0; k < spec.N; k++ {
		for j := 0; j < spec.N; j++ {
			for i := 0; i < spec.N; i++ {
				c := spec.Center(i, j, k)
				var acc dynamo.Vec3
				wsum := 0.0
				for _, s := range hash.Neighbors(c, radius) {
					sm := store.At(s)
					w := 1.0 / (1.0 + sm.Pos.Sub(c).Norm())
					acc = acc.Add(sm.Vel.Scale(w))
					wsum += w
				}
				if wsum > 0 {
					grid.Data[spec.Index(i, j, k)] = acc.Scale(1 / wsum)
				}
			}
		}
	}
	return grid
}

// GradientTensor evaluates the analytic Jacobian at every cell center.
func GradientTensor(spec GridSpec, dyn dynamo.System) *TensorGrid {
	grid := NewTensorGrid(spec)
	for k := 0; k < spec.N; k++ {
		for j := 0; j < spec.N; j++ {
			for i := 0; i < spec.N; i++ {
				grid.Data[spec.Index(i, j, k)] = dyn.Jacobian(spec.Center(i, j, k))
			}
		}
	}
	return grid
}

// Divergence extracts the trace of each gradient tensor.
func Divergence(grad *TensorGrid) *ScalarGrid {
	grid := NewScalarGrid(grad.Spec)
	for idx, m := range grad.Data {
		grid.Data[idx] = m.Trace()
	}
	return grid
}

// VorticityMagnitude extracts |curl| from the antisymmetric part of each
// gradient tensor.
func VorticityMagnitude(grad *TensorGrid) *ScalarGrid {
	grid := NewScalarGrid(grad.Spec)
	for idx, m := range grad.Data {
		curl := dynamo.Vec3{
			X: m[2][1] - m[1][2],
			Y: m[0][2] - m[2][0],
			Z: m[1][0] - m[0][1],
		}
		grid.Data[idx] = curl.Norm()
	}
	return grid
}
