package integrators

import "github.com/san-kum/thomaslab/internal/dynamo"

// StepDoubling wraps RK4 with step-doubling error control: one full step is
// compared against two half steps, and the half-step result is kept when
// their largest coordinate discrepancy is within tolerance.
type StepDoubling struct {
	inner *RK4

	Tol    float64
	MinDt  float64
	MaxDt  float64
	Grow   float64
	Shrink float64
}

func NewStepDoubling(tol float64) *StepDoubling {
	return &StepDoubling{
		inner:  NewRK4(),
		Tol:    tol,
		MinDt:  1e-5,
		MaxDt:  0.1,
		Grow:   1.2,
		Shrink: 0.5,
	}
}

// Step satisfies dynamo.Integrator using a fixed dt with no error control.
func (s *StepDoubling) Step(dyn dynamo.System, x dynamo.Vec3, dt float64) dynamo.Vec3 {
	return s.inner.Step(dyn, x, dt)
}

// StepAdaptive advances x by one accepted step. It returns the new state,
// the step size actually taken, and the step size to try next. The step
// never shrinks below MinDt (a MinDt step is always accepted) and never
// grows above MaxDt.
func (s *StepDoubling) StepAdaptive(dyn dynamo.System, x dynamo.Vec3, dt float64) (next dynamo.Vec3, taken, dtNext float64) {
	if dt > s.MaxDt {
		dt = s.MaxDt
	}
	if dt < s.MinDt {
		dt = s.MinDt
	}

	for {
		full := s.inner.Step(dyn, x, dt)
		mid := s.inner.Step(dyn, x, dt/2)
		half := s.inner.Step(dyn, mid, dt/2)

		err := full.MaxAbsDiff(half)
		if err <= s.Tol || dt <= s.MinDt {
			dtNext = dt
			if err <= s.Tol {
				dtNext = dt * s.Grow
				if dtNext > s.MaxDt {
					dtNext = s.MaxDt
				}
			}
			return half, dt, dtNext
		}

		dt *= s.Shrink
		if dt < s.MinDt {
			dt = s.MinDt
		}
	}
}
