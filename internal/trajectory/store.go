package trajectory

import (
	"github.com/san-kum/thomaslab/internal/dynamo"
)

// Sample is one trajectory observation. Immutable once stored.
type Sample struct {
	Pos dynamo.Vec3
	Vel dynamo.Vec3
	T   float64
}

// Store is a bounded FIFO ring of trajectory samples with incrementally
// maintained position mean and covariance (Welford's algorithm, with the
// matching downdate on eviction). There is a single writer, the step loop;
// readers snapshot Len() at pass start and index below it, which stays
// valid because eviction only happens on Append.
type Store struct {
	buf  []Sample
	head int // index of oldest sample
	n    int

	total uint64 // appends over the store's lifetime

	mean dynamo.Vec3
	m2   dynamo.Mat3 // sum of outer products of deviations
}

func NewStore(capacity int) *Store {
	if capacity < 1 {
		capacity = 1
	}
	return &Store{buf: make([]Sample, capacity)}
}

func (s *Store) Len() int      { return s.n }
func (s *Store) Cap() int      { return len(s.buf) }
func (s *Store) Total() uint64 { return s.total }

// At returns the i-th sample, oldest first. i must be in [0, Len()).
func (s *Store) At(i int) Sample {
	return s.buf[(s.head+i)%len(s.buf)]
}

// Latest returns the newest sample and false when the store is empty.
func (s *Store) Latest() (Sample, bool) {
	if s.n == 0 {
		return Sample{}, false
	}
	return s.At(s.n - 1), true
}

// Append stores one sample, evicting the oldest when full.
func (s *Store) Append(sm Sample) {
	if s.n == len(s.buf) {
		s.downdate(s.buf[s.head].Pos)
		s.head = (s.head + 1) % len(s.buf)
		s.n--
	}
	s.buf[(s.head+s.n)%len(s.buf)] = sm
	s.n++
	s.total++
	s.update(sm.Pos)
}

// AppendBatch folds a batch of samples into the store in order.
func (s *Store) AppendBatch(batch []Sample) {
	for _, sm := range batch {
		s.Append(sm)
	}
}

// Reset empties the store and its running statistics.
func (s *Store) Reset() {
	s.head = 0
	s.n = 0
	s.total = 0
	s.mean = dynamo.Vec3{}
	s.m2 = dynamo.Mat3{}
}

// Mean returns the running mean position.
func (s *Store) Mean() dynamo.Vec3 { return s.mean }

// Covariance returns the sample covariance of stored positions. With
// fewer than two samples it is the zero matrix.
func (s *Store) Covariance() dynamo.Mat3 {
	if s.n < 2 {
		return dynamo.Mat3{}
	}
	inv := 1.0 / float64(s.n-1)
	var c dynamo.Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			c[i][j] = s.m2[i][j] * inv
		}
	}
	return c
}

// Bounds returns the axis-aligned bounding box of stored positions.
// Zero vectors are returned for an empty store.
func (s *Store) Bounds() (min, max dynamo.Vec3) {
	if s.n == 0 {
		return dynamo.Vec3{}, dynamo.Vec3{}
	}
	first := s.At(0).Pos
	min, max = first, first
	for i := 1; i < s.n; i++ {
		p := s.At(i).Pos
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.Z < min.Z {
			min.Z = p.Z
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
		if p.Z > max.Z {
			max.Z = p.Z
		}
	}
	return min, max
}

func (s *Store) update(p dynamo.Vec3) {
	delta := p.Sub(s.mean)
	s.mean = s.mean.Add(delta.Scale(1 / float64(s.n)))
	delta2 := p.Sub(s.mean)
	addOuter(&s.m2, delta, delta2, 1)
}

// downdate reverses update for an evicted sample.
func (s *Store) downdate(p dynamo.Vec3) {
	if s.n <= 1 {
		s.mean = dynamo.Vec3{}
		s.m2 = dynamo.Mat3{}
		return
	}
	nPrev := float64(s.n - 1)
	meanPrev := s.mean.Scale(float64(s.n) / nPrev).Sub(p.Scale(1 / nPrev))
	addOuter(&s.m2, p.Sub(meanPrev), p.Sub(s.mean), -1)
	s.mean = meanPrev
}

func addOuter(m *dynamo.Mat3, a, b dynamo.Vec3, sign float64) {
	av := [3]float64{a.X, a.Y, a.Z}
	bv := [3]float64{b.X, b.Y, b.Z}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] += sign * av[i] * bv[j]
		}
	}
}
