package carbon

import "fmt"

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// Sentinel errors. Compare with errors.Is.
var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = constError("invalid lifestyle input")

	// ErrComputation matches every *ComputationError.
	ErrComputation = constError("emission computation failed")

	ErrUnknownFuelType    = constError("unknown fuel type")
	ErrUnknownFlightType  = constError("unknown flight type")
	ErrUnknownHeatingType = constError("unknown heating type")
	ErrUnknownDietType    = constError("unknown diet type")

	// ErrUnknownFactorVersion is returned when a registry has no table for a version tag.
	ErrUnknownFactorVersion = constError("unknown emission factor table version")

	// ErrInvalidFactorTable is returned when a table fails its sign or completeness checks.
	ErrInvalidFactorTable = constError("invalid emission factor table")
)

// ValidationError reports a LifestyleInput field that is missing, out of its
// documented range, or holds an unrecognized enum value. It is always raised
// before any arithmetic runs.
type ValidationError struct {
	// Field is the dotted wire path of the offending field, e.g. "transport.car_fuel_type".
	Field string

	// Reason describes the violated constraint.
	Reason string

	cause error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Unwrap returns the parse error behind an unrecognized enum value, if any.
func (e *ValidationError) Unwrap() error {
	return e.cause
}

// ComputationError signals an internal invariant violation, such as a factor
// lookup miss that validation should have prevented. It indicates a defect,
// not a user-facing condition.
type ComputationError struct {
	Op     string
	Detail string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrComputation, e.Op, e.Detail)
}

// Is lets errors.Is(err, ErrComputation) match.
func (e *ComputationError) Is(target error) bool {
	return target == ErrComputation
}
