// Package lyapunov measures exponential separation rates of the flow.
//
// The full method evolves an orthonormal tangent frame alongside the
// trajectory ([Meter], [Frame]), re-orthonormalizing with modified
// Gram-Schmidt and accumulating per-direction log growth. From the
// resulting spectrum it derives the [KaplanYorke] fractal dimension and
// the composite [ChaosMetric].
//
// [QuickEstimator] is the cheap O(1)-per-frame companion: a separation
// ratio over recent samples, cached on a wall-clock interval.
package lyapunov
