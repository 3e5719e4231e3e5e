package field

import (
	"github.com/san-kum/thomaslab/internal/dynamo"
	"github.com/san-kum/thomaslab/internal/trajectory"
)

// SpatialHash buckets sample indices into coarse cells for neighbor
// queries. Buckets are coarser than the analysis grid; a query unions a
// configurable-radius block of coarse cells around the query point. The
// index is rebuilt once per analysis pass from the store snapshot.
type SpatialHash struct {
	cellSize float64
	buckets  map[[3]int][]int
}

// BuildSpatialHash indexes the first n samples of the store.
func BuildSpatialHash(store *trajectory.Store, n int, cellSize float64) *SpatialHash {
	if cellSize <= 0 {
		cellSize = 1
	}
	h := &SpatialHash{
		cellSize: cellSize,
		buckets:  make(map[[3]int][]int),
	}
	for s := 0; s < n; s++ {
		key := h.key(store.At(s).Pos)
		h.buckets[key] = append(h.buckets[key], s)
	}
	return h
}

func (h *SpatialHash) CellSize() float64 { return h.cellSize }

func (h *SpatialHash) key(p dynamo.Vec3) [3]int {
	return [3]int{
		coarse(p.X, h.cellSize),
		coarse(p.Y, h.cellSize),
		coarse(p.Z, h.cellSize),
	}
}

func coarse(x, size float64) int {
	k := int(x / size)
	if x < 0 && x != float64(k)*size {
		k--
	}
	return k
}

// Neighbors returns the sample indices in the (2*radius+1)^3 block of
// coarse cells around p. Order follows bucket iteration over the block,
// which is deterministic for a fixed build.
func (h *SpatialHash) Neighbors(p dynamo.Vec3, radius int) []int {
	if radius < 0 {
		radius = 0
	}
	center := h.key(p)
	var out []int
	for dk := -radius; dk <= radius; dk++ {
		for dj := -radius; dj <= radius; dj++ {
			for di := -radius; di <= radius; di++ {
				key := [3]int{center[0] + di, center[1] + dj, center[2] + dk}
				out = append(out, h.buckets[key]...)
			}
		}
	}
	return out
}

// BucketCount reports how many coarse cells hold at least one sample.
func (h *SpatialHash) BucketCount() int { return len(h.buckets) }
