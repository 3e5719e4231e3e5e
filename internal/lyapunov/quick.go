package lyapunov

import (
	"math"
	"time"

	"golang.org/x/time/rate"

	"github.com/san-kum/thomaslab/internal/trajectory"
)

// DefaultQuickWindow is how many recent samples the quick estimator reads.
const DefaultQuickWindow = 64

// QuickEstimator approximates the largest Lyapunov exponent from the log
// ratio of successive sample separations over a short recent window. It is
// explicitly an approximation for interactive display, never a substitute
// for the full tangent-frame method. Results are cached for a bounded
// wall-clock interval; the rate limiter is the expiry check.
type QuickEstimator struct {
	gate   *rate.Limiter
	window int

	cached float64
	valid  bool
}

func NewQuickEstimator(interval time.Duration) *QuickEstimator {
	if interval <= 0 {
		interval = time.Second
	}
	return &QuickEstimator{
		gate:   rate.NewLimiter(rate.Every(interval), 1),
		window: DefaultQuickWindow,
	}
}

// Invalidate drops the cached value so the next Estimate recomputes.
func (q *QuickEstimator) Invalidate() {
	q.valid = false
}

// Estimate returns the cached value when it is still fresh, otherwise
// recomputes from the newest samples in the store. An empty or too-short
// window yields 0.
func (q *QuickEstimator) Estimate(store *trajectory.Store, dt float64) float64 {
	if !q.valid {
		// Consume a token so the fresh value holds for a full interval.
		q.gate.Allow()
		q.cached = separationRate(store, dt, q.window)
		q.valid = true
		return q.cached
	}
	if q.gate.Allow() {
		q.cached = separationRate(store, dt, q.window)
	}
	return q.cached
}

// separationRate averages log(d_{i+1}/d_i) over successive point
// separations in the recent window.
func separationRate(store *trajectory.Store, dt float64, window int) float64 {
	n := store.Len()
	if n < 3 || dt <= 0 {
		return 0
	}
	start := n - window
	if start < 0 {
		start = 0
	}

	sum := 0.0
	count := 0
	prev := math.NaN()
	for i := start; i < n-1; i++ {
		d := store.At(i + 1).Pos.Sub(store.At(i).Pos).Norm()
		if prev > 0 && d > 0 {
			sum += math.Log(d / prev)
			count++
		}
		prev = d
	}
	if count == 0 {
		return 0
	}
	return sum / (float64(count) * dt)
}
