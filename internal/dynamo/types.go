package dynamo

import "math"

// Vec3 is a point or direction in phase space.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z}
}

func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{v.X - w.X, v.Y - w.Y, v.Z - w.Z}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vec3) Dot(w Vec3) float64 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		v.Y*w.Z - v.Z*w.Y,
		v.Z*w.X - v.X*w.Z,
		v.X*w.Y - v.Y*w.X,
	}
}

func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

func (v Vec3) Norm2() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Normalized returns the unit vector along v. A zero or non-finite vector
// normalizes to the zero vector rather than failing.
func (v Vec3) Normalized() Vec3 {
	n := v.Norm()
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return Vec3{}
	}
	return v.Scale(1 / n)
}

func (v Vec3) IsValid() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}

// Component returns coordinate i (0=x, 1=y, 2=z).
func (v Vec3) Component(i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// MaxAbsDiff returns the largest per-coordinate absolute difference,
// the error norm used by step-doubling integration.
func (v Vec3) MaxAbsDiff(w Vec3) float64 {
	d := math.Abs(v.X - w.X)
	if dy := math.Abs(v.Y - w.Y); dy > d {
		d = dy
	}
	if dz := math.Abs(v.Z - w.Z); dz > d {
		d = dz
	}
	return d
}

// Mat3 is a row-major 3x3 matrix.
type Mat3 [3][3]float64

func (m Mat3) MulVec(v Vec3) Vec3 {
	return Vec3{
		m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

func (m Mat3) Trace() float64 {
	return m[0][0] + m[1][1] + m[2][2]
}

// System is an autonomous 3-D flow dX/dt = f(X) with an analytic Jacobian.
type System interface {
	Derive(x Vec3) Vec3
	Jacobian(x Vec3) Mat3
}

// Integrator advances a system state by one timestep.
type Integrator interface {
	Step(dyn System, x Vec3, dt float64) Vec3
}

// Configurable exposes runtime-tunable parameters.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Metric accumulates a scalar observation over a trajectory.
type Metric interface {
	Name() string
	Observe(x, v Vec3, t float64)
	Value() float64
	Reset()
}
