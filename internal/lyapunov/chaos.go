package lyapunov

import "math"

// ChaosMetric is a composite characterization of the current regime,
// derived from the largest exponent and the Kaplan-Yorke dimension.
type ChaosMetric struct {
	CTM              float64 // composite, sqrt(unpredictability*complexity)
	Unpredictability float64 // 1 - exp(-lambda1/(3b))
	Complexity       float64 // clamp(D-2, 0, 1)
	Lambda1          float64
	KaplanYorke      float64
}

// NewChaosMetric is a pure function of lambda1, the Kaplan-Yorke dimension
// and the dissipation b. Inputs outside their meaningful ranges clamp; no
// failure modes.
func NewChaosMetric(lambda1, kaplanYorke, b float64) ChaosMetric {
	u := 0.0
	if b > 0 {
		u = clamp01(1 - math.Exp(-lambda1/(3*b)))
	}
	c := clamp01(kaplanYorke - 2)
	return ChaosMetric{
		CTM:              math.Sqrt(u * c),
		Unpredictability: u,
		Complexity:       c,
		Lambda1:          lambda1,
		KaplanYorke:      kaplanYorke,
	}
}

func clamp01(x float64) float64 {
	switch {
	case x < 0 || math.IsNaN(x):
		return 0
	case x > 1:
		return 1
	}
	return x
}
