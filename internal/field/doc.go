// Package field computes geometric characterizations of the flow over a
// dense cubic grid: occupation and kernel densities with multiscale
// statistics, the velocity field and its gradient-tensor eigenstructure,
// classified critical points, adaptive streamlines, and a local expansion
// field.
//
// A pass ([Analyzer.Analyze]) builds every grid into fresh buffers and
// returns them as one immutable [Result]. The exact kernel density is the
// dominant cost; [SpatialHash] trims its neighbor set and [ApproxDensity]
// replaces it outright when interactive cadence matters more than
// exactness.
package field
