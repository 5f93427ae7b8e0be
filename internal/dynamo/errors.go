package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for body construction and simulation operations.
var (
	// ErrInvalidMass indicates a non-positive or non-finite body mass.
	ErrInvalidMass = errors.New("dynamo: mass must be positive and finite")

	// ErrDimension indicates a position or velocity that is not 2 or 3 components long.
	ErrDimension = errors.New("dynamo: vector must have 2 or 3 components")

	// ErrNonFinite indicates a NaN or Inf in a vector or a computed step.
	ErrNonFinite = errors.New("dynamo: non-finite value (NaN or Inf detected)")

	// ErrEmptyName indicates a body without an identifier.
	ErrEmptyName = errors.New("dynamo: body name must not be empty")

	// ErrDuplicateName indicates two bodies sharing a name within one simulation.
	ErrDuplicateName = errors.New("dynamo: duplicate body name")

	// ErrNilBody indicates a nil entry in a body set.
	ErrNilBody = errors.New("dynamo: nil body")

	// ErrZeroMass indicates a body with zero or negative mass reached the force model.
	ErrZeroMass = errors.New("dynamo: zero mass during acceleration computation")

	// ErrInvalidStep indicates a non-positive or non-finite time step.
	ErrInvalidStep = errors.New("dynamo: dt must be positive and finite")

	// ErrNegativeDuration indicates a negative run duration.
	ErrNegativeDuration = errors.New("dynamo: duration must not be negative")

	// ErrInvalidDuration indicates an infinite duration, or one needing more
	// steps than an int can count.
	ErrInvalidDuration = errors.New("dynamo: duration is infinite or too long for dt")

	// ErrContextCanceled indicates the run was interrupted between steps.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")

	// ErrMissingComponent indicates a simulation built without a force model or integrator.
	ErrMissingComponent = errors.New("dynamo: force model and integrator are required")

	// ErrUnknownBody indicates a lookup for a name not present in the simulation.
	ErrUnknownBody = errors.New("dynamo: unknown body")
)

// SimulationError wraps a step failure with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Body    string
	Wrapped error
}

func (e *SimulationError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("step %d (t=%.4f) body %q: %v", e.Step, e.Time, e.Body, e.Wrapped)
	}
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// BodyError ties a failure to a specific body. Force models and integrators
// return it so the simulation can report which body broke a step.
type BodyError struct {
	Name string
	Err  error
}

func (e *BodyError) Error() string {
	return fmt.Sprintf("body %q: %v", e.Name, e.Err)
}

func (e *BodyError) Unwrap() error {
	return e.Err
}
