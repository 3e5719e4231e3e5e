package field

import (
	"math"

	"github.com/san-kum/thomaslab/internal/trajectory"
)

// MinDensityFloor is the cutoff below which KDE mass is ignored by the
// entropy estimator.
const MinDensityFloor = 1e-12

// boxScales are the box-size multipliers (in units of the base cell size)
// used by the box-counting estimators.
var boxScales = [5]int{1, 2, 4, 8, 16}

// Statistics summarizes one analysis pass.
type Statistics struct {
	Entropy        float64
	CorrelationDim float64
	InformationDim float64
	SampleCount    int
	OccupiedCells  int
}

// ShannonEntropy computes -sum(p*ln p) over the normalized mass of a
// density grid, ignoring cells below the floor. A grid with no mass above
// the floor has zero entropy.
func ShannonEntropy(grid *ScalarGrid) float64 {
	vol := grid.Spec.CellVolume()
	total := 0.0
	for _, d := range grid.Data {
		if d > MinDensityFloor {
			total += d * vol
		}
	}
	if total <= 0 {
		return 0
	}

	h := 0.0
	for _, d := range grid.Data {
		if d > MinDensityFloor {
			p := d * vol / total
			h -= p * math.Log(p)
		}
	}
	return h
}

// CorrelationDimension estimates the box-counting dimension from the
// regression slope of log(occupied boxes) against log(box size) over the
// fixed scale set. Fewer than two valid scales yields 0, not an error.
func CorrelationDimension(spec GridSpec, store *trajectory.Store, n int) float64 {
	var logSize, logCount []float64
	for _, mult := range boxScales {
		size := spec.CellSize() * float64(mult)
		occupied := countOccupiedBoxes(store, n, spec.HalfRange, size)
		if occupied < 1 {
			continue
		}
		logSize = append(logSize, math.Log(size))
		logCount = append(logCount, math.Log(float64(occupied)))
	}
	slope, ok := linearSlope(logSize, logCount)
	if !ok {
		return 0
	}
	// Occupied count scales as size^-D.
	d := -slope
	if d < 0 {
		return 0
	}
	return d
}

// InformationDimension estimates D1 from the slope of entropy-at-scale
// against log(scale). Fewer than two valid scales yields 0.
func InformationDimension(spec GridSpec, store *trajectory.Store, n int) float64 {
	var logSize, entropies []float64
	for _, mult := range boxScales {
		size := spec.CellSize() * float64(mult)
		h, ok := entropyAtScale(store, n, spec.HalfRange, size)
		if !ok {
			continue
		}
		logSize = append(logSize, math.Log(size))
		entropies = append(entropies, h)
	}
	slope, ok := linearSlope(logSize, entropies)
	if !ok {
		return 0
	}
	// H(eps) ~ -D1*log(eps) as eps shrinks.
	d := -slope
	if d < 0 {
		return 0
	}
	return d
}

func boxKey(x, halfRange, size float64) int {
	return int((x + halfRange) / size)
}

func countOccupiedBoxes(store *trajectory.Store, n int, halfRange, size float64) int {
	boxes := make(map[[3]int]struct{})
	for s := 0; s < n; s++ {
		p := store.At(s).Pos
		if p.X < -halfRange || p.X >= halfRange ||
			p.Y < -halfRange || p.Y >= halfRange ||
			p.Z < -halfRange || p.Z >= halfRange {
			continue
		}
		boxes[[3]int{
			boxKey(p.X, halfRange, size),
			boxKey(p.Y, halfRange, size),
			boxKey(p.Z, halfRange, size),
		}] = struct{}{}
	}
	return len(boxes)
}

func entropyAtScale(store *trajectory.Store, n int, halfRange, size float64) (float64, bool) {
	counts := make(map[[3]int]int)
	inside := 0
	for s := 0; s < n; s++ {
		p := store.At(s).Pos
		if p.X < -halfRange || p.X >= halfRange ||
			p.Y < -halfRange || p.Y >= halfRange ||
			p.Z < -halfRange || p.Z >= halfRange {
			continue
		}
		counts[[3]int{
			boxKey(p.X, halfRange, size),
			boxKey(p.Y, halfRange, size),
			boxKey(p.Z, halfRange, size),
		}]++
		inside++
	}
	if inside == 0 {
		return 0, false
	}
	h := 0.0
	for _, c := range counts {
		p := float64(c) / float64(inside)
		h -= p * math.Log(p)
	}
	return h, true
}

// linearSlope is a least-squares slope; ok is false with fewer than two
// points or a degenerate x spread.
func linearSlope(xs, ys []float64) (float64, bool) {
	if len(xs) < 2 || len(xs) != len(ys) {
		return 0, false
	}
	n := float64(len(xs))
	var sx, sy, sxx, sxy float64
	for i := range xs {
		sx += xs[i]
		sy += ys[i]
		sxx += xs[i] * xs[i]
		sxy += xs[i] * ys[i]
	}
	den := n*sxx - sx*sx
	if den == 0 {
		return 0, false
	}
	return (n*sxy - sx*sy) / den, true
}
