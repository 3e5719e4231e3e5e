package integrators

import "github.com/san-kum/thomaslab/internal/dynamo"

// RK4 is the classical fixed-step 4th-order Runge-Kutta method. With value
// types there is no scratch to manage; a step is four derivative
// evaluations and one weighted sum.
type RK4 struct{}

func NewRK4() *RK4 { return &RK4{} }

func (r *RK4) Step(dyn dynamo.System, x dynamo.Vec3, dt float64) dynamo.Vec3 {
	k1 := dyn.Derive(x)
	k2 := dyn.Derive(x.Add(k1.Scale(dt * 0.5)))
	k3 := dyn.Derive(x.Add(k2.Scale(dt * 0.5)))
	k4 := dyn.Derive(x.Add(k3.Scale(dt)))

	incr := k1.Add(k2.Scale(2)).Add(k3.Scale(2)).Add(k4).Scale(dt / 6.0)
	return x.Add(incr)
}
