// Package greenops turns a carbon footprint into relatable everyday
// equivalencies ("driving 781 miles", "charging 18,248 smartphones") using
// EPA-published conversion factors.
package greenops

import "fmt"

// EquivalencyType is a category of everyday equivalency.
type EquivalencyType int

const (
	// EquivalencyMilesDriven is miles driven in an average passenger vehicle.
	EquivalencyMilesDriven EquivalencyType = iota

	// EquivalencySmartphonesCharged is full smartphone charges.
	EquivalencySmartphonesCharged

	// EquivalencyTreeSeedlings is tree seedlings grown for 10 years to absorb
	// the same amount.
	EquivalencyTreeSeedlings

	// EquivalencyHomeDays is days of average US home electricity use.
	EquivalencyHomeDays
)

var equivalencyNames = map[EquivalencyType]string{
	EquivalencyMilesDriven:        "miles_driven",
	EquivalencySmartphonesCharged: "smartphones_charged",
	EquivalencyTreeSeedlings:      "tree_seedlings",
	EquivalencyHomeDays:           "home_days",
}

// String returns the wire name of the equivalency type.
func (e EquivalencyType) String() string {
	if name, ok := equivalencyNames[e]; ok {
		return name
	}
	return fmt.Sprintf("EquivalencyType(%d)", int(e))
}

// MarshalText implements encoding.TextMarshaler.
func (e EquivalencyType) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *EquivalencyType) UnmarshalText(text []byte) error {
	v, err := ParseEquivalencyType(string(text))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// ParseEquivalencyType returns the type with the given wire name.
func ParseEquivalencyType(name string) (EquivalencyType, error) {
	for t, n := range equivalencyNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownEquivalencyType, name)
}

// CarbonInput is a carbon amount in any recognized unit.
type CarbonInput struct {
	Value float64 `json:"value"`

	// Unit is one of g, kg, t, lb, optionally suffixed with CO2e.
	Unit string `json:"unit"`
}

// EquivalencyResult is a single calculated equivalency.
type EquivalencyResult struct {
	Type           EquivalencyType `json:"type"`
	Value          float64         `json:"value"`
	FormattedValue string          `json:"formatted_value"`
	Label          string          `json:"label"`
}

// EquivalencyOutput holds every equivalency for one carbon amount.
type EquivalencyOutput struct {
	// InputKg is the normalized input in kg CO2e.
	InputKg float64 `json:"input_kg"`

	// Results are ordered miles, smartphones, seedlings, home-days.
	Results []EquivalencyResult `json:"results"`

	// DisplayText is the prose form, e.g.
	// "Equivalent to driving ~781 miles or charging ~18,248 smartphones".
	DisplayText string `json:"display_text"`

	// CompactText is the abbreviated form, e.g. "(≈ 781 mi, 18,248 phones)".
	CompactText string `json:"compact_text"`

	// IsEmpty is true when the input was below MinEquivalencyThresholdKg.
	IsEmpty bool `json:"is_empty"`
}

// Result returns the result of type t, if present.
func (o EquivalencyOutput) Result(t EquivalencyType) (EquivalencyResult, bool) {
	for _, r := range o.Results {
		if r.Type == t {
			return r, true
		}
	}
	return EquivalencyResult{}, false
}
