package dynamo

import "errors"

// Domain errors. Numerical degeneracy inside a computation is never an
// error; these cover the configuration boundary only.
var (
	// ErrParameterBounds indicates a parameter value outside its valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrUnknownParameter indicates a parameter name the system does not expose.
	ErrUnknownParameter = errors.New("dynamo: unknown parameter")

	// ErrInvalidTimestep indicates a non-positive or non-finite dt.
	ErrInvalidTimestep = errors.New("dynamo: timestep must be positive and finite")

	// ErrInvalidSeed indicates a seed state with NaN or Inf components.
	ErrInvalidSeed = errors.New("dynamo: seed state is not finite")
)
