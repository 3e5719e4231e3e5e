package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/thomaslab/internal/dynamo"
	"github.com/san-kum/thomaslab/internal/integrators"
	"github.com/san-kum/thomaslab/internal/thomas"
)

func TestTraceStreamlineBounded(t *testing.T) {
	sys := thomas.NewDefault()
	sd := integrators.NewStepDoubling(1e-5)

	line := TraceStreamline(sys, sd, dynamo.Vec3{X: 0.1, Z: -0.1}, 4, 200)

	require.NotEmpty(t, line.Points)
	assert.LessOrEqual(t, len(line.Points), 200)
	assert.Len(t, line.Velocities, len(line.Points))
	assert.Len(t, line.StepSizes, len(line.Points))

	for i, p := range line.Points {
		assert.True(t, inWindow(p, 4), "point %d left the window", i)
		assert.True(t, p.IsValid())
		// Recorded velocity matches the flow at the recorded point.
		assert.Zero(t, line.Velocities[i].Sub(sys.Derive(p)).Norm())
	}
	for i, h := range line.StepSizes {
		assert.GreaterOrEqual(t, h, sd.MinDt, "step %d", i)
		assert.LessOrEqual(t, h, sd.MaxDt, "step %d", i)
	}
}

func TestTraceStreamlineSeedOutsideWindow(t *testing.T) {
	sys := thomas.NewDefault()
	sd := integrators.NewStepDoubling(1e-5)

	line := TraceStreamline(sys, sd, dynamo.Vec3{X: 10}, 4, 200)
	assert.Empty(t, line.Points, "a seed outside the window records nothing")
}

func TestTraceStreamlineStaysOnAttractor(t *testing.T) {
	// The flow is bounded for the default parameter, so a long trace from
	// an interior seed runs to the point cap rather than escaping.
	sys := thomas.NewDefault()
	sd := integrators.NewStepDoubling(1e-5)

	line := TraceStreamline(sys, sd, dynamo.Vec3{X: 0.5, Y: -0.3, Z: 0.1}, 6, 300)
	assert.Len(t, line.Points, 300)
}
