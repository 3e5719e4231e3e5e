package field

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/san-kum/thomaslab/internal/dynamo"
)

func TestGridIndexCoordsBijection(t *testing.T) {
	spec := GridSpec{N: 7, HalfRange: 4}
	seen := make(map[int]bool, spec.Cells())
	for k := 0; k < spec.N; k++ {
		for j := 0; j < spec.N; j++ {
			for i := 0; i < spec.N; i++ {
				idx := spec.Index(i, j, k)
				assert.False(t, seen[idx], "duplicate index %d", idx)
				seen[idx] = true

				ri, rj, rk := spec.Coords(idx)
				assert.Equal(t, [3]int{i, j, k}, [3]int{ri, rj, rk})
			}
		}
	}
	assert.Len(t, seen, spec.Cells())
}

func TestGridCenterLocateRoundTrip(t *testing.T) {
	spec := GridSpec{N: 16, HalfRange: 4}
	for _, c := range [][3]int{{0, 0, 0}, {15, 15, 15}, {3, 7, 11}} {
		p := spec.Center(c[0], c[1], c[2])
		i, j, k, ok := spec.Locate(p)
		assert.True(t, ok)
		assert.Equal(t, c, [3]int{i, j, k})
	}
}

func TestGridLocateOutside(t *testing.T) {
	spec := GridSpec{N: 16, HalfRange: 4}
	for _, p := range []dynamo.Vec3{
		{X: 4.5}, {Y: -4.001}, {Z: 100}, {X: -5, Y: -5, Z: -5},
		{X: -4.0000001}, {Y: -4.1}, {Z: -4.001},
	} {
		_, _, _, ok := spec.Locate(p)
		assert.False(t, ok, "point %+v is outside the volume", p)
		assert.False(t, spec.Contains(p))
	}
	assert.True(t, spec.Contains(dynamo.Vec3{X: 3.99, Y: -4, Z: 0}))
}

func TestGridLocateLowerBoundary(t *testing.T) {
	// -HalfRange is inclusive and must land in cell 0, not leak past it.
	spec := GridSpec{N: 16, HalfRange: 4}
	i, j, k, ok := spec.Locate(dynamo.Vec3{X: -4, Y: -4, Z: -4})
	assert.True(t, ok)
	assert.Equal(t, [3]int{0, 0, 0}, [3]int{i, j, k})

	i, j, k, ok = spec.Locate(dynamo.Vec3{X: -3.999, Y: 0, Z: 3.999})
	assert.True(t, ok)
	assert.Equal(t, [3]int{0, 8, 15}, [3]int{i, j, k})
}

func TestGridCellGeometry(t *testing.T) {
	spec := GridSpec{N: 24, HalfRange: 4}
	assert.Equal(t, 24*24*24, spec.Cells())
	assert.InDelta(t, 1.0/3.0, spec.CellSize(), 1e-12)
	assert.InDelta(t, spec.CellSize()*spec.CellSize()*spec.CellSize(), spec.CellVolume(), 1e-15)
}
