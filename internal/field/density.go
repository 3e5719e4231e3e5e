package field

import (
	"math"

	"github.com/san-kum/thomaslab/internal/trajectory"
)

// twoPiPow32 is (2*pi)^1.5, the 3-D Gaussian normalization constant.
var twoPiPow32 = math.Pow(2*math.Pi, 1.5)

// HistogramDensity builds the occupation density: per-cell sample count
// over (total samples x cell volume). Integrating the field over the grid
// volume gives the fraction of samples inside the grid. n is the snapshot
// length taken at pass start; samples past it are ignored.
func HistogramDensity(spec GridSpec, store *trajectory.Store, n int) *ScalarGrid {
	grid := NewScalarGrid(spec)
	if n <= 0 {
		return grid
	}
	for s := 0; s < n; s++ {
		if i, j, k, ok := spec.Locate(store.At(s).Pos); ok {
			grid.Data[spec.Index(i, j, k)]++
		}
	}
	norm := 1.0 / (float64(n) * spec.CellVolume())
	for idx := range grid.Data {
		grid.Data[idx] *= norm
	}
	return grid
}

// KernelDensity evaluates an isotropic Gaussian KDE with fixed bandwidth h
// at every cell center. This is the exact O(cells x samples) sum; the
// approximate path in approx.go replaces it when the sample count makes
// this too slow for interactive cadence.
func KernelDensity(spec GridSpec, store *trajectory.Store, n int, h float64) *ScalarGrid {
	grid := NewScalarGrid(spec)
	if n <= 0 || h <= 0 {
		return grid
	}

	inv2h2 := 1.0 / (2 * h * h)
	norm := 1.0 / (h * h * h * twoPiPow32 * float64(n))

	for k := 0; k < spec.N; k++ {
		for j := 0; j < spec.N; j++ {
			for i := 0; i < spec.N; i++ {
				c := spec.Center(i, j, k)
				sum := 0.0
				for s := 0; s < n; s++ {
					d2 := store.At(s).Pos.Sub(c).Norm2()
					sum += math.Exp(-d2 * inv2h2)
				}
				grid.Data[spec.Index(i, j, k)] = sum * norm
			}
		}
	}
	return grid
}

// KernelDensityIndexed is KernelDensity restricted to samples within
// kernel reach of each cell, found through the spatial hash. The kernel is
// truncated at 4h: in three dimensions the Gaussian carries about 3
// percent of its mass past 3h, but only about 0.1 percent past 4h.
func KernelDensityIndexed(spec GridSpec, store *trajectory.Store, n int, h float64, hash *SpatialHash) *ScalarGrid {
	grid := NewScalarGrid(spec)
	if n <= 0 || h <= 0 || hash == nil {
		return grid
	}

	cutoff2 := 16 * h * h
	inv2h2 := 1.0 / (2 * h * h)
	norm := 1.0 / (h * h * h * twoPiPow32 * float64(n))
	reach := int(math.Ceil(4*h/hash.CellSize())) + 1

	for k := 0; k < spec.N; k++ {
		for j := 0; j < spec.N; j++ {
			for i := 0; i < spec.N; i++ {
				c := spec.Center(i, j, k)
				sum := 0.0
				for _, s := range hash.Neighbors(c, reach) {
					d2 := store.At(s).Pos.Sub(c).Norm2()
					if d2 <= cutoff2 {
						sum += math.Exp(-d2 * inv2h2)
					}
				}
				grid.Data[spec.Index(i, j, k)] = sum * norm
			}
		}
	}
	return grid
}
