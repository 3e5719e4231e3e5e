package dynamo

import "math"

// TrigTable provides precomputed sin/cos values with linear interpolation.
// The Thomas right-hand side and its Jacobian are nothing but sines and
// cosines, so dense field passes that tolerate ~1e-7 error can use the
// table instead of math.Sin. Exact math.Sin stays the default everywhere
// bit-reproducibility matters.
type TrigTable struct {
	sin []float64
	cos []float64
	n   int
}

// DefaultTrigTable has 4096 entries, ~0.0015 rad resolution.
var DefaultTrigTable = NewTrigTable(4096)

func NewTrigTable(n int) *TrigTable {
	t := &TrigTable{
		sin: make([]float64, n),
		cos: make([]float64, n),
		n:   n,
	}
	for i := 0; i < n; i++ {
		angle := float64(i) * 2 * math.Pi / float64(n)
		t.sin[i] = math.Sin(angle)
		t.cos[i] = math.Cos(angle)
	}
	return t
}

func (t *TrigTable) index(x float64) (i0, i1 int, frac float64) {
	x = math.Mod(x, 2*math.Pi)
	if x < 0 {
		x += 2 * math.Pi
	}
	idx := x * float64(t.n) / (2 * math.Pi)
	i := int(idx)
	frac = idx - float64(i)
	return i % t.n, (i + 1) % t.n, frac
}

func (t *TrigTable) Sin(x float64) float64 {
	i0, i1, frac := t.index(x)
	return t.sin[i0]*(1-frac) + t.sin[i1]*frac
}

func (t *TrigTable) Cos(x float64) float64 {
	i0, i1, frac := t.index(x)
	return t.cos[i0]*(1-frac) + t.cos[i1]*frac
}

// SinCos returns both values for one table lookup.
func (t *TrigTable) SinCos(x float64) (sin, cos float64) {
	i0, i1, frac := t.index(x)
	return t.sin[i0]*(1-frac) + t.sin[i1]*frac,
		t.cos[i0]*(1-frac) + t.cos[i1]*frac
}
