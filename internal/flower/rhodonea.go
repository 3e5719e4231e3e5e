// Package flower quantifies the floral symmetry of the attractor's planar
// projection: a rhodonea (rose) curve fitted to the trajectory in polar
// form, the radial RMS fit error, and the Flower Index combining that
// error with the largest Lyapunov exponent.
package flower

import (
	"math"

	"github.com/san-kum/thomaslab/internal/dynamo"
	"github.com/san-kum/thomaslab/internal/trajectory"
)

// Rhodonea is the rose curve r(theta) = a*cos(k*m*theta + phi).
// k and m only enter through their product; m is held at its configured
// value during fitting and k carries the searched frequency.
type Rhodonea struct {
	K, M, Phi, A float64
}

func (r Rhodonea) Eval(theta float64) float64 {
	return r.A * math.Cos(r.K*r.M*theta+r.Phi)
}

// Polar is one projected trajectory point in polar form.
type Polar struct {
	R, Theta float64
}

// Projection selects the plane and an optional pre-rotation applied
// before projecting.
type Projection struct {
	Plane         string // "xy", "yz" or "zx"
	RotationAxis  string // "x", "y" or "z"
	RotationAngle float64
}

// Project maps a phase-space point to planar coordinates.
func (p Projection) Project(v dynamo.Vec3) (x, y float64) {
	if p.RotationAngle != 0 {
		v = rotate(v, p.RotationAxis, p.RotationAngle)
	}
	switch p.Plane {
	case "yz":
		return v.Y, v.Z
	case "zx":
		return v.Z, v.X
	default:
		return v.X, v.Y
	}
}

func rotate(v dynamo.Vec3, axis string, angle float64) dynamo.Vec3 {
	s, c := math.Sin(angle), math.Cos(angle)
	switch axis {
	case "x":
		return dynamo.Vec3{X: v.X, Y: c*v.Y - s*v.Z, Z: s*v.Y + c*v.Z}
	case "y":
		return dynamo.Vec3{X: c*v.X + s*v.Z, Y: v.Y, Z: -s*v.X + c*v.Z}
	default:
		return dynamo.Vec3{X: c*v.X - s*v.Y, Y: s*v.X + c*v.Y, Z: v.Z}
	}
}

// PolarSamples projects the first n stored positions onto the plane.
func PolarSamples(store *trajectory.Store, n int, proj Projection) []Polar {
	out := make([]Polar, 0, n)
	for i := 0; i < n; i++ {
		x, y := proj.Project(store.At(i).Pos)
		out = append(out, Polar{
			R:     math.Hypot(x, y),
			Theta: math.Atan2(y, x),
		})
	}
	return out
}

// FitResult is a fitted rose curve with its radial RMS error.
type FitResult struct {
	Curve    Rhodonea
	RMSError float64
	Samples  int
}

// fit search ranges: frequency k and phase phi, with amplitude a solved
// in closed form per candidate.
const (
	kMin, kMax = 0.25, 8.0
	kSteps     = 64
	phiSteps   = 32
	zoomLevels = 3
)

// Fit searches k and phi by coarse grid with recursive local refinement,
// solving the least-squares amplitude in closed form for each candidate.
// guess supplies m (held fixed) and the initial k when positive. Fewer
// than two points yields a zero curve with zero error.
func Fit(points []Polar, guess Rhodonea) FitResult {
	if len(points) < 2 {
		return FitResult{}
	}
	m := guess.M
	if m <= 0 {
		m = 1
	}

	loK, hiK := kMin, kMax
	loP, hiP := 0.0, math.Pi

	best := Rhodonea{M: m}
	bestErr := math.Inf(1)

	for level := 0; level < zoomLevels; level++ {
		dk := (hiK - loK) / float64(kSteps)
		dp := (hiP - loP) / float64(phiSteps)
		for i := 0; i <= kSteps; i++ {
			k := loK + float64(i)*dk
			for j := 0; j < phiSteps; j++ {
				phi := loP + float64(j)*dp
				cand := Rhodonea{K: k, M: m, Phi: phi}
				cand.A = bestAmplitude(points, cand)
				if e := rmsError(points, cand); e < bestErr {
					bestErr = e
					best = cand
				}
			}
		}
		// Zoom the window around the winner.
		spanK := (hiK - loK) / 8
		spanP := (hiP - loP) / 8
		loK, hiK = best.K-spanK, best.K+spanK
		loP, hiP = best.Phi-spanP, best.Phi+spanP
		if loK < 1e-3 {
			loK = 1e-3
		}
	}

	return FitResult{Curve: best, RMSError: bestErr, Samples: len(points)}
}

// bestAmplitude is the closed-form least-squares a for fixed frequency
// and phase.
func bestAmplitude(points []Polar, r Rhodonea) float64 {
	num, den := 0.0, 0.0
	for _, p := range points {
		c := math.Cos(r.K*r.M*p.Theta + r.Phi)
		num += p.R * c
		den += c * c
	}
	if den == 0 {
		return 0
	}
	return num / den
}

func rmsError(points []Polar, r Rhodonea) float64 {
	sum := 0.0
	for _, p := range points {
		d := p.R - r.Eval(p.Theta)
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(points)))
}

// Index is the Flower Index FI = 1/(1+E) * exp(-lambdaMax). Negative or
// non-finite inputs yield NaN, matching the metric's defined domain.
func Index(eFlower, lambdaMax float64) float64 {
	if eFlower < 0 || lambdaMax < 0 ||
		math.IsNaN(eFlower) || math.IsNaN(lambdaMax) ||
		math.IsInf(eFlower, 0) || math.IsInf(lambdaMax, 0) {
		return math.NaN()
	}
	return 1 / (1 + eFlower) * math.Exp(-lambdaMax)
}
