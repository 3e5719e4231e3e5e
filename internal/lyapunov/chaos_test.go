package lyapunov

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChaosMetricChaoticRegime(t *testing.T) {
	m := NewChaosMetric(0.1, 2.2, 0.19)

	wantU := 1 - math.Exp(-0.1/(3*0.19))
	assert.InDelta(t, wantU, m.Unpredictability, 1e-12)
	assert.InDelta(t, 0.2, m.Complexity, 1e-12)
	assert.InDelta(t, math.Sqrt(wantU*0.2), m.CTM, 1e-12)
}

func TestChaosMetricClamps(t *testing.T) {
	// Negative lambda1: no unpredictability, CTM zero.
	m := NewChaosMetric(-0.05, 2.5, 0.19)
	assert.Zero(t, m.Unpredictability)
	assert.Zero(t, m.CTM)

	// Dimension below 2 clamps complexity to zero.
	m = NewChaosMetric(0.1, 1.5, 0.19)
	assert.Zero(t, m.Complexity)
	assert.Zero(t, m.CTM)

	// Dimension at the ceiling clamps complexity to one.
	m = NewChaosMetric(5, 3.0, 0.19)
	assert.Equal(t, 1.0, m.Complexity)
	assert.LessOrEqual(t, m.CTM, 1.0)

	// Non-positive b yields zero unpredictability rather than a NaN.
	m = NewChaosMetric(0.1, 2.5, 0)
	assert.Zero(t, m.Unpredictability)
	assert.False(t, math.IsNaN(m.CTM))
}

func TestChaosMetricRange(t *testing.T) {
	for _, lam := range []float64{-1, 0, 0.05, 0.5, 10} {
		for _, d := range []float64{0, 1.9, 2.0, 2.5, 3.0} {
			m := NewChaosMetric(lam, d, 0.19)
			assert.GreaterOrEqual(t, m.CTM, 0.0)
			assert.LessOrEqual(t, m.CTM, 1.0)
		}
	}
}
