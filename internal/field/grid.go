package field

import "github.com/san-kum/thomaslab/internal/dynamo"

// GridSpec describes a dense cubic grid over [-HalfRange, HalfRange]^3 at
// resolution N per axis. Flattened index convention is i + j*N + k*N*N,
// so an index and a world-space cell center biject deterministically.
type GridSpec struct {
	N         int
	HalfRange float64
}

func (g GridSpec) Cells() int { return g.N * g.N * g.N }

func (g GridSpec) CellSize() float64 { return 2 * g.HalfRange / float64(g.N) }

func (g GridSpec) CellVolume() float64 {
	cs := g.CellSize()
	return cs * cs * cs
}

func (g GridSpec) Index(i, j, k int) int { return i + j*g.N + k*g.N*g.N }

// Coords inverts Index.
func (g GridSpec) Coords(idx int) (i, j, k int) {
	i = idx % g.N
	j = (idx / g.N) % g.N
	k = idx / (g.N * g.N)
	return
}

// Center returns the world-space center of cell (i, j, k).
func (g GridSpec) Center(i, j, k int) dynamo.Vec3 {
	cs := g.CellSize()
	return dynamo.Vec3{
		X: -g.HalfRange + (float64(i)+0.5)*cs,
		Y: -g.HalfRange + (float64(j)+0.5)*cs,
		Z: -g.HalfRange + (float64(k)+0.5)*cs,
	}
}

// Locate maps a world point to cell coordinates; ok is false outside the
// grid volume. Rejection happens in world space: int conversion truncates
// toward zero, so a point just below -HalfRange would otherwise land in
// cell 0.
func (g GridSpec) Locate(p dynamo.Vec3) (i, j, k int, ok bool) {
	if !g.Contains(p) {
		return 0, 0, 0, false
	}
	cs := g.CellSize()
	i = clampCell(int((p.X+g.HalfRange)/cs), g.N)
	j = clampCell(int((p.Y+g.HalfRange)/cs), g.N)
	k = clampCell(int((p.Z+g.HalfRange)/cs), g.N)
	return i, j, k, true
}

func clampCell(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func (g GridSpec) Contains(p dynamo.Vec3) bool {
	return p.X >= -g.HalfRange && p.X < g.HalfRange &&
		p.Y >= -g.HalfRange && p.Y < g.HalfRange &&
		p.Z >= -g.HalfRange && p.Z < g.HalfRange
}

// ScalarGrid is a dense scalar field over a GridSpec.
type ScalarGrid struct {
	Spec GridSpec
	Data []float64
}

func NewScalarGrid(spec GridSpec) *ScalarGrid {
	return &ScalarGrid{Spec: spec, Data: make([]float64, spec.Cells())}
}

// VectorGrid is a dense Vec3 field over a GridSpec.
type VectorGrid struct {
	Spec GridSpec
	Data []dynamo.Vec3
}

func NewVectorGrid(spec GridSpec) *VectorGrid {
	return &VectorGrid{Spec: spec, Data: make([]dynamo.Vec3, spec.Cells())}
}

// TensorGrid is a dense Mat3 field over a GridSpec.
type TensorGrid struct {
	Spec GridSpec
	Data []dynamo.Mat3
}

func NewTensorGrid(spec GridSpec) *TensorGrid {
	return &TensorGrid{Spec: spec, Data: make([]dynamo.Mat3, spec.Cells())}
}

// EigenGrid holds per-cell eigenvalue triples of the gradient tensor,
// sorted descending by real part.
type EigenGrid struct {
	Spec GridSpec
	Data [][3]float64
}

func NewEigenGrid(spec GridSpec) *EigenGrid {
	return &EigenGrid{Spec: spec, Data: make([][3]float64, spec.Cells())}
}
