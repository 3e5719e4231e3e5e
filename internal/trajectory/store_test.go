package trajectory

import (
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/thomaslab/internal/dynamo"
)

func sampleAt(x, y, z float64) Sample {
	return Sample{Pos: dynamo.Vec3{X: x, Y: y, Z: z}}
}

func TestRingEviction(t *testing.T) {
	s := NewStore(3)
	for i := 0; i < 5; i++ {
		s.Append(sampleAt(float64(i), 0, 0))
	}

	if s.Len() != 3 {
		t.Fatalf("len: got %d, want 3", s.Len())
	}
	if s.Total() != 5 {
		t.Errorf("total: got %d, want 5", s.Total())
	}
	for i := 0; i < 3; i++ {
		if got := s.At(i).Pos.X; got != float64(i+2) {
			t.Errorf("At(%d): got %f, want %f", i, got, float64(i+2))
		}
	}
}

func TestLatest(t *testing.T) {
	s := NewStore(4)
	if _, ok := s.Latest(); ok {
		t.Error("empty store reported a latest sample")
	}
	s.Append(sampleAt(1, 0, 0))
	s.Append(sampleAt(2, 0, 0))
	last, ok := s.Latest()
	if !ok || last.Pos.X != 2 {
		t.Errorf("latest: got %+v ok=%v", last, ok)
	}
}

// directStats recomputes mean and covariance from scratch for comparison
// with the incremental path.
func directStats(s *Store) (dynamo.Vec3, dynamo.Mat3) {
	n := s.Len()
	var mean dynamo.Vec3
	for i := 0; i < n; i++ {
		mean = mean.Add(s.At(i).Pos)
	}
	mean = mean.Scale(1 / float64(n))

	var cov dynamo.Mat3
	for i := 0; i < n; i++ {
		d := s.At(i).Pos.Sub(mean)
		dv := [3]float64{d.X, d.Y, d.Z}
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				cov[r][c] += dv[r] * dv[c]
			}
		}
	}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			cov[r][c] /= float64(n - 1)
		}
	}
	return mean, cov
}

func TestWelfordMatchesDirect(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s := NewStore(64)

	// Push well past capacity so the eviction downdate path is exercised.
	for i := 0; i < 500; i++ {
		s.Append(sampleAt(rng.NormFloat64(), rng.NormFloat64()*2, rng.NormFloat64()-1))
	}

	wantMean, wantCov := directStats(s)
	gotMean, gotCov := s.Mean(), s.Covariance()

	if gotMean.Sub(wantMean).Norm() > 1e-9 {
		t.Errorf("mean: got %+v, want %+v", gotMean, wantMean)
	}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			if math.Abs(gotCov[r][c]-wantCov[r][c]) > 1e-8 {
				t.Errorf("cov[%d][%d]: got %f, want %f", r, c, gotCov[r][c], wantCov[r][c])
			}
		}
	}
}

func TestCovarianceFewSamples(t *testing.T) {
	s := NewStore(8)
	s.Append(sampleAt(1, 2, 3))
	if s.Covariance() != (dynamo.Mat3{}) {
		t.Error("covariance of a single sample should be zero")
	}
}

func TestBounds(t *testing.T) {
	s := NewStore(8)
	s.Append(sampleAt(-1, 5, 0))
	s.Append(sampleAt(2, -3, 1))
	s.Append(sampleAt(0, 0, 4))

	min, max := s.Bounds()
	if min != (dynamo.Vec3{X: -1, Y: -3, Z: 0}) {
		t.Errorf("min: got %+v", min)
	}
	if max != (dynamo.Vec3{X: 2, Y: 5, Z: 4}) {
		t.Errorf("max: got %+v", max)
	}
}

func TestReset(t *testing.T) {
	s := NewStore(8)
	s.AppendBatch([]Sample{sampleAt(1, 1, 1), sampleAt(2, 2, 2)})
	s.Reset()
	if s.Len() != 0 || s.Total() != 0 {
		t.Errorf("reset: len=%d total=%d", s.Len(), s.Total())
	}
	if s.Mean() != (dynamo.Vec3{}) {
		t.Errorf("reset mean: %+v", s.Mean())
	}
}
