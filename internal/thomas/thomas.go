package thomas

import (
	"fmt"
	"math"

	"github.com/san-kum/thomaslab/internal/dynamo"
)

// DefaultB is the classic chaotic dissipation value.
const DefaultB = 0.19

// Thomas is the cyclically symmetric Thomas attractor:
//
//	dx/dt = sin(y) - b*x
//	dy/dt = sin(z) - b*y
//	dz/dt = sin(x) - b*z
//
// A single parameter b controls dissipation. The divergence of the flow is
// constant, trace(J) = -3b, which anchors the Lyapunov spectrum sum.
type Thomas struct {
	b float64
}

func New(b float64) (*Thomas, error) {
	if b <= 0 || math.IsNaN(b) || math.IsInf(b, 0) {
		return nil, fmt.Errorf("%w: b=%v", dynamo.ErrParameterBounds, b)
	}
	return &Thomas{b: b}, nil
}

// NewDefault returns the flow at the chaotic reference point b=0.19.
func NewDefault() *Thomas {
	return &Thomas{b: DefaultB}
}

func (s *Thomas) B() float64 { return s.b }

func (s *Thomas) Derive(x dynamo.Vec3) dynamo.Vec3 {
	return dynamo.Vec3{
		X: math.Sin(x.Y) - s.b*x.X,
		Y: math.Sin(x.Z) - s.b*x.Y,
		Z: math.Sin(x.X) - s.b*x.Z,
	}
}

// Jacobian is analytic: cosines off the diagonal, -b on it.
func (s *Thomas) Jacobian(x dynamo.Vec3) dynamo.Mat3 {
	return dynamo.Mat3{
		{-s.b, math.Cos(x.Y), 0},
		{0, -s.b, math.Cos(x.Z)},
		{math.Cos(x.X), 0, -s.b},
	}
}

// DeriveFast is Derive with table-lookup trig, for dense grid passes that
// tolerate interpolation error.
func (s *Thomas) DeriveFast(x dynamo.Vec3) dynamo.Vec3 {
	return dynamo.Vec3{
		X: dynamo.DefaultTrigTable.Sin(x.Y) - s.b*x.X,
		Y: dynamo.DefaultTrigTable.Sin(x.Z) - s.b*x.Y,
		Z: dynamo.DefaultTrigTable.Sin(x.X) - s.b*x.Z,
	}
}

// Divergence of the flow; constant in state.
func (s *Thomas) Divergence() float64 { return -3 * s.b }

// DefaultState sits off the x=y=z line; the cyclic symmetry keeps that
// line invariant, so a symmetric start never reaches the attractor.
func (s *Thomas) DefaultState() dynamo.Vec3 { return dynamo.Vec3{X: 0.1, Z: -0.1} }

func (s *Thomas) GetParams() map[string]float64 {
	return map[string]float64{"b": s.b}
}

func (s *Thomas) SetParam(name string, value float64) error {
	if name != "b" {
		return fmt.Errorf("%w: %q", dynamo.ErrUnknownParameter, name)
	}
	if value <= 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: b=%v", dynamo.ErrParameterBounds, value)
	}
	s.b = value
	return nil
}
