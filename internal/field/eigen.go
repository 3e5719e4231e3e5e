package field

import (
	"math"
	"sort"

	"github.com/san-kum/thomaslab/internal/dynamo"
)

// EigenResult holds the eigenvalues of a 3x3 gradient tensor, sorted
// descending. When the characteristic cubic has a complex-conjugate pair
// only the shared real part is retained; imaginary parts are dropped on
// purpose, since classification only needs signs.
type EigenResult struct {
	Values      [3]float64
	ComplexPair bool
}

const degenerateEps = 1e-12

// EigenValues solves the monic characteristic cubic of m in closed form,
// branching on the discriminant sign: a degenerate double/triple root, one
// real root plus a conjugate pair, or three distinct real roots.
func EigenValues(m dynamo.Mat3) EigenResult {
	tr := m.Trace()
	minors := m[0][0]*m[1][1] - m[0][1]*m[1][0] +
		m[0][0]*m[2][2] - m[0][2]*m[2][0] +
		m[1][1]*m[2][2] - m[1][2]*m[2][1]
	det := m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])

	// lambda^3 + a*lambda^2 + b*lambda + c = 0
	a := -tr
	b := minors
	c := -det

	// Depressed cubic y^3 + p*y + q with lambda = y - a/3.
	p := b - a*a/3
	q := 2*a*a*a/27 - a*b/3 + c
	shift := -a / 3

	disc := q*q/4 + p*p*p/27

	var res EigenResult
	switch {
	case math.Abs(disc) <= degenerateEps:
		if math.Abs(p) <= degenerateEps {
			// Triple root.
			res.Values = [3]float64{shift, shift, shift}
		} else {
			single := 3*q/p + shift
			double := -3*q/(2*p) + shift
			res.Values = [3]float64{single, double, double}
		}
	case disc > 0:
		// One real root, two complex conjugates.
		s := math.Sqrt(disc)
		u := math.Cbrt(-q/2 + s)
		v := math.Cbrt(-q/2 - s)
		y := u + v
		res.Values = [3]float64{y + shift, -y/2 + shift, -y/2 + shift}
		res.ComplexPair = true
	default:
		// Three distinct real roots, trigonometric form.
		r := 2 * math.Sqrt(-p/3)
		arg := 3 * q / (2 * p) * math.Sqrt(-3/p)
		if arg > 1 {
			arg = 1
		} else if arg < -1 {
			arg = -1
		}
		theta := math.Acos(arg) / 3
		for k := 0; k < 3; k++ {
			res.Values[k] = r*math.Cos(theta-2*math.Pi*float64(k)/3) + shift
		}
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(res.Values[:])))
	return res
}

// eigenvectorCandidates is the fixed direction set tested against
// (A - lambda*I). Qualitative classification is all the topology pass
// needs, so the minimal-residual candidate stands in for an exact
// null-space solve.
var eigenvectorCandidates = []dynamo.Vec3{
	{X: 1}, {Y: 1}, {Z: 1},
	{X: 1, Y: 1}, {X: 1, Z: 1}, {Y: 1, Z: 1},
	{X: 1, Y: -1}, {X: 1, Z: -1}, {Y: 1, Z: -1},
	{X: 1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: -1},
	{X: 1, Y: -1, Z: 1}, {X: -1, Y: 1, Z: 1},
}

// EigenVector returns the normalized candidate direction with the
// smallest residual |(A - lambda*I)v|.
func EigenVector(m dynamo.Mat3, lambda float64) dynamo.Vec3 {
	shifted := m
	shifted[0][0] -= lambda
	shifted[1][1] -= lambda
	shifted[2][2] -= lambda

	best := dynamo.Vec3{X: 1}
	bestRes := math.Inf(1)
	for _, cand := range eigenvectorCandidates {
		v := cand.Normalized()
		res := shifted.MulVec(v).Norm()
		if res < bestRes {
			bestRes = res
			best = v
		}
	}
	return best
}

// BuildEigenGrid solves the characteristic cubic for every cell of the
// gradient grid.
func BuildEigenGrid(grad *TensorGrid) *EigenGrid {
	grid := NewEigenGrid(grad.Spec)
	for idx, m := range grad.Data {
		grid.Data[idx] = EigenValues(m).Values
	}
	return grid
}

// PointClass labels a critical point by local eigenvalue signs.
type PointClass int

const (
	ClassSaddle PointClass = iota
	ClassStableNode
	ClassUnstableNode
	ClassFocus
)

func (c PointClass) String() string {
	switch c {
	case ClassSaddle:
		return "saddle"
	case ClassStableNode:
		return "stable_node"
	case ClassUnstableNode:
		return "unstable_node"
	default:
		return "focus"
	}
}

// signEps separates genuinely signed eigenvalues from numerical zero.
const signEps = 1e-9

// Classify maps eigenvalue sign counts to a class: all negative is a
// stable node, all positive an unstable node, a genuine mix a saddle,
// anything touching zero a focus.
func Classify(values [3]float64) PointClass {
	pos, neg := 0, 0
	for _, v := range values {
		switch {
		case v > signEps:
			pos++
		case v < -signEps:
			neg++
		}
	}
	switch {
	case neg == 3:
		return ClassStableNode
	case pos == 3:
		return ClassUnstableNode
	case pos > 0 && neg > 0:
		return ClassSaddle
	default:
		return ClassFocus
	}
}

// CriticalPoint is a cell where the velocity magnitude vanishes, with the
// local eigenstructure and its classification. Regenerated wholesale each
// pass.
type CriticalPoint struct {
	Pos     dynamo.Vec3
	Values  [3]float64
	Vectors [3]dynamo.Vec3
	Class   PointClass
}

// FindCriticalPoints scans the velocity grid for cells below the
// magnitude threshold and classifies each by the gradient tensor there.
func FindCriticalPoints(vel *VectorGrid, grad *TensorGrid, threshold float64) []CriticalPoint {
	spec := vel.Spec
	var points []CriticalPoint
	for idx, v := range vel.Data {
		if v.Norm() >= threshold {
			continue
		}
		res := EigenValues(grad.Data[idx])
		i, j, k := spec.Coords(idx)
		cp := CriticalPoint{
			Pos:    spec.Center(i, j, k),
			Values: res.Values,
			Class:  Classify(res.Values),
		}
		for vi, lam := range res.Values {
			cp.Vectors[vi] = EigenVector(grad.Data[idx], lam)
		}
		points = append(points, cp)
	}
	return points
}
