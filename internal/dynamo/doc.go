// Package dynamo provides core primitives for simulating 3-D flows.
//
// The package defines the value types and interfaces shared by every
// analysis layer:
//
//   - [Vec3], [Mat3]: phase-space points and local linearizations
//   - [System]: an autonomous flow dX/dt = f(X) with analytic Jacobian
//   - [Integrator]: numerical stepping
//   - [Metric]: scalar observations accumulated over a trajectory
//
// All linear algebra is fixed-size 3x3 and hand-rolled; nothing here
// allocates on the hot path.
package dynamo
