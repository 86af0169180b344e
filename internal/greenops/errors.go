package greenops

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// Sentinel errors; compare with errors.Is.
var (
	// ErrInvalidUnit is returned by NormalizeToKg for an unknown unit string.
	ErrInvalidUnit = constError("invalid carbon unit")

	// ErrNegativeValue is returned for negative carbon values.
	ErrNegativeValue = constError("negative carbon value")

	// ErrCalculationOverflow is returned for NaN, infinite or overflowing values.
	ErrCalculationOverflow = constError("calculation overflow")

	// ErrUnknownEquivalencyType is returned by ParseEquivalencyType.
	ErrUnknownEquivalencyType = constError("unknown equivalency type")
)
