package flower

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/san-kum/thomaslab/internal/dynamo"
	"github.com/san-kum/thomaslab/internal/trajectory"
)

func rosepoints(curve Rhodonea, n int) []Polar {
	out := make([]Polar, 0, n)
	for i := 0; i < n; i++ {
		theta := -math.Pi + 2*math.Pi*float64(i)/float64(n)
		out = append(out, Polar{R: curve.Eval(theta), Theta: theta})
	}
	return out
}

func TestFitRecoversSyntheticRose(t *testing.T) {
	truth := Rhodonea{K: 3, M: 1, Phi: 0.4, A: 1.7}
	points := dropNegativeRadius(rosepoints(truth, 600))

	res := Fit(points, Rhodonea{M: 1})
	assert.Less(t, res.RMSError, 0.15, "fit error on a clean rose")
	assert.Equal(t, len(points), res.Samples)

	// (k, phi, a) may land on a symmetry-equivalent parameterization, so
	// only the amplitude magnitude is pinned down.
	assert.InDelta(t, truth.A, math.Abs(res.Curve.A), 0.4)
}

// dropNegativeRadius drops points with negative radius; projected trajectories
// only ever produce r >= 0.
func dropNegativeRadius(in []Polar) []Polar {
	out := in[:0]
	for _, p := range in {
		if p.R >= 0 {
			out = append(out, p)
		}
	}
	return out
}

func TestFitConstantRadius(t *testing.T) {
	// A circle is the k -> 0 limit; the search floor keeps k positive but
	// the amplitude still absorbs the mean radius with small error.
	points := make([]Polar, 0, 300)
	for i := 0; i < 300; i++ {
		theta := -math.Pi + 2*math.Pi*float64(i)/300
		points = append(points, Polar{R: 2.0, Theta: theta})
	}
	res := Fit(points, Rhodonea{M: 1})
	assert.Less(t, res.RMSError, 2.0, "error bounded by the signal itself")
}

func TestFitDegenerateInput(t *testing.T) {
	res := Fit(nil, Rhodonea{M: 1})
	assert.Zero(t, res.RMSError)
	assert.Zero(t, res.Curve.A)

	res = Fit([]Polar{{R: 1, Theta: 0}}, Rhodonea{M: 1})
	assert.Zero(t, res.Samples)
}

func TestProjectionPlanes(t *testing.T) {
	v := dynamo.Vec3{X: 1, Y: 2, Z: 3}

	x, y := Projection{Plane: "xy"}.Project(v)
	assert.Equal(t, [2]float64{1, 2}, [2]float64{x, y})

	x, y = Projection{Plane: "yz"}.Project(v)
	assert.Equal(t, [2]float64{2, 3}, [2]float64{x, y})

	x, y = Projection{Plane: "zx"}.Project(v)
	assert.Equal(t, [2]float64{3, 1}, [2]float64{x, y})
}

func TestProjectionRotation(t *testing.T) {
	// Quarter turn about z maps x onto y before the xy projection.
	p := Projection{Plane: "xy", RotationAxis: "z", RotationAngle: math.Pi / 2}
	x, y := p.Project(dynamo.Vec3{X: 1})
	assert.InDelta(t, 0, x, 1e-12)
	assert.InDelta(t, 1, y, 1e-12)

	// Rotation about x leaves x untouched.
	p = Projection{Plane: "xy", RotationAxis: "x", RotationAngle: 1.1}
	x, _ = p.Project(dynamo.Vec3{X: 1, Y: 2, Z: 3})
	assert.Equal(t, 1.0, x)
}

func TestPolarSamples(t *testing.T) {
	store := trajectory.NewStore(4)
	store.Append(trajectory.Sample{Pos: dynamo.Vec3{X: 3, Y: 4}})
	store.Append(trajectory.Sample{Pos: dynamo.Vec3{X: 0, Y: -2}})

	pts := PolarSamples(store, 2, Projection{Plane: "xy"})
	assert.Len(t, pts, 2)
	assert.InDelta(t, 5, pts[0].R, 1e-12)
	assert.InDelta(t, math.Atan2(4, 3), pts[0].Theta, 1e-12)
	assert.InDelta(t, 2, pts[1].R, 1e-12)
	assert.InDelta(t, -math.Pi/2, pts[1].Theta, 1e-12)
}

func TestIndex(t *testing.T) {
	// Perfect fit and zero chaos give the maximum.
	assert.Equal(t, 1.0, Index(0, 0))

	// Monotone decreasing in both arguments.
	assert.Greater(t, Index(0.1, 0.05), Index(0.5, 0.05))
	assert.Greater(t, Index(0.1, 0.05), Index(0.1, 0.5))

	assert.InDelta(t, 1/(1+0.3)*math.Exp(-0.1), Index(0.3, 0.1), 1e-12)

	for _, args := range [][2]float64{
		{-0.1, 0.1}, {0.1, -0.1}, {math.NaN(), 0}, {0, math.Inf(1)},
	} {
		assert.True(t, math.IsNaN(Index(args[0], args[1])), "Index(%v, %v)", args[0], args[1])
	}
}
