package field

import (
	"github.com/san-kum/thomaslab/internal/dynamo"
	"github.com/san-kum/thomaslab/internal/integrators"
)

// Streamline is one finite adaptive-integration run through the flow:
// ordered positions, the velocity at each, and the accepted step sizes.
// Streamlines are discarded and regenerated every pass; they never
// restart.
type Streamline struct {
	Points     []dynamo.Vec3
	Velocities []dynamo.Vec3
	StepSizes  []float64
}

// TraceStreamline integrates forward from seed with step-doubling error
// control until the trajectory leaves the window (a cube of halfRange
// around the origin) or maxPoints is reached.
func TraceStreamline(dyn dynamo.System, sd *integrators.StepDoubling, seed dynamo.Vec3, halfRange float64, maxPoints int) *Streamline {
	line := &Streamline{
		Points:     make([]dynamo.Vec3, 0, maxPoints),
		Velocities: make([]dynamo.Vec3, 0, maxPoints),
		StepSizes:  make([]float64, 0, maxPoints),
	}

	x := seed
	dt := sd.MaxDt / 2
	for len(line.Points) < maxPoints {
		if !inWindow(x, halfRange) || !x.IsValid() {
			break
		}
		line.Points = append(line.Points, x)
		line.Velocities = append(line.Velocities, dyn.Derive(x))

		var taken float64
		x, taken, dt = sd.StepAdaptive(dyn, x, dt)
		line.StepSizes = append(line.StepSizes, taken)
	}
	return line
}

func inWindow(p dynamo.Vec3, halfRange float64) bool {
	return p.X >= -halfRange && p.X <= halfRange &&
		p.Y >= -halfRange && p.Y <= halfRange &&
		p.Z >= -halfRange && p.Z <= halfRange
}
