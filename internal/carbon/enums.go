package carbon

import (
	"fmt"
	"strings"
)

// FuelType is the fuel a personal car runs on.
type FuelType int

const (
	// FuelGasoline is a petrol car; emissions scale with liters burned.
	FuelGasoline FuelType = iota

	// FuelDiesel is a diesel car; emissions scale with liters burned.
	FuelDiesel

	// FuelHybrid is a hybrid car; emissions scale with liters burned.
	FuelHybrid

	// FuelElectric is a battery electric car; emissions scale with distance.
	FuelElectric
)

var fuelTypeNames = map[FuelType]string{
	FuelGasoline: "gasoline",
	FuelDiesel:   "diesel",
	FuelHybrid:   "hybrid",
	FuelElectric: "electric",
}

// String returns the wire name of the fuel type.
func (f FuelType) String() string {
	if name, ok := fuelTypeNames[f]; ok {
		return name
	}
	return fmt.Sprintf("FuelType(%d)", int(f))
}

// Valid reports whether f is one of the declared fuel types.
func (f FuelType) Valid() bool {
	_, ok := fuelTypeNames[f]
	return ok
}

// ParseFuelType parses a wire name such as "diesel".
func ParseFuelType(s string) (FuelType, error) {
	for f, name := range fuelTypeNames {
		if strings.EqualFold(s, name) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFuelType, s)
}

// MarshalText implements encoding.TextMarshaler.
func (f FuelType) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFuelType, int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An unknown name is
// reported as a *ValidationError for transport.car_fuel_type.
func (f *FuelType) UnmarshalText(text []byte) error {
	parsed, err := ParseFuelType(string(text))
	if err != nil {
		return unknownEnum(fieldCarFuelType, err)
	}
	*f = parsed
	return nil
}

// FlightType is the dominant haul length of a traveller's flights.
type FlightType int

const (
	FlightDomestic FlightType = iota
	FlightShortHaul
	FlightLongHaul
)

var flightTypeNames = map[FlightType]string{
	FlightDomestic:  "domestic",
	FlightShortHaul: "short_haul",
	FlightLongHaul:  "long_haul",
}

// flightTypeAliases holds the camelCase spellings used by older web clients.
var flightTypeAliases = map[string]FlightType{
	"shorthaul": FlightShortHaul,
	"longhaul":  FlightLongHaul,
}

// String returns the wire name of the flight type.
func (f FlightType) String() string {
	if name, ok := flightTypeNames[f]; ok {
		return name
	}
	return fmt.Sprintf("FlightType(%d)", int(f))
}

// Valid reports whether f is one of the declared flight types.
func (f FlightType) Valid() bool {
	_, ok := flightTypeNames[f]
	return ok
}

// ParseFlightType parses "domestic", "short_haul" or "long_haul".
// The camelCase forms "shortHaul" and "longHaul" are accepted as well.
func ParseFlightType(s string) (FlightType, error) {
	for f, name := range flightTypeNames {
		if strings.EqualFold(s, name) {
			return f, nil
		}
	}
	if f, ok := flightTypeAliases[strings.ToLower(s)]; ok {
		return f, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFlightType, s)
}

// MarshalText implements encoding.TextMarshaler.
func (f FlightType) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFlightType, int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An unknown name is
// reported as a *ValidationError for transport.flight_type.
func (f *FlightType) UnmarshalText(text []byte) error {
	parsed, err := ParseFlightType(string(text))
	if err != nil {
		return unknownEnum(fieldFlightType, err)
	}
	*f = parsed
	return nil
}

// HeatingType is the primary home heating source.
type HeatingType int

const (
	HeatingNaturalGas HeatingType = iota
	HeatingElectricity
	HeatingOil
	HeatingPropane
)

var heatingTypeNames = map[HeatingType]string{
	HeatingNaturalGas:  "natural_gas",
	HeatingElectricity: "electricity",
	HeatingOil:         "oil",
	HeatingPropane:     "propane",
}

// String returns the wire name of the heating type.
func (h HeatingType) String() string {
	if name, ok := heatingTypeNames[h]; ok {
		return name
	}
	return fmt.Sprintf("HeatingType(%d)", int(h))
}

// Valid reports whether h is one of the declared heating types.
func (h HeatingType) Valid() bool {
	_, ok := heatingTypeNames[h]
	return ok
}

// ParseHeatingType parses a wire name such as "natural_gas".
func ParseHeatingType(s string) (HeatingType, error) {
	for h, name := range heatingTypeNames {
		if strings.EqualFold(s, name) {
			return h, nil
		}
	}
	if strings.EqualFold(s, "naturalGas") {
		return HeatingNaturalGas, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownHeatingType, s)
}

// MarshalText implements encoding.TextMarshaler.
func (h HeatingType) MarshalText() ([]byte, error) {
	if !h.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownHeatingType, int(h))
	}
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An unknown name is
// reported as a *ValidationError for energy.heating_type.
func (h *HeatingType) UnmarshalText(text []byte) error {
	parsed, err := ParseHeatingType(string(text))
	if err != nil {
		return unknownEnum(fieldHeatingType, err)
	}
	*h = parsed
	return nil
}

// DietType is the self-reported dietary pattern. Serving counts drive the
// food calculation; any reported diet adds the fixed vegetable and processed
// food baselines, and every reported diet type yields the same figures.
// DietUnspecified means no diet was reported and adds no baselines.
type DietType int

const (
	DietUnspecified DietType = iota
	DietMixed
	DietVegan
	DietVegetarian
	DietPescatarian
	DietHighMeat
)

var dietTypeNames = map[DietType]string{
	DietUnspecified: "unspecified",
	DietMixed:       "mixed",
	DietVegan:       "vegan",
	DietVegetarian:  "vegetarian",
	DietPescatarian: "pescatarian",
	DietHighMeat:    "high_meat",
}

// String returns the wire name of the diet type.
func (d DietType) String() string {
	if name, ok := dietTypeNames[d]; ok {
		return name
	}
	return fmt.Sprintf("DietType(%d)", int(d))
}

// Valid reports whether d is one of the declared diet types.
func (d DietType) Valid() bool {
	_, ok := dietTypeNames[d]
	return ok
}

// ParseDietType parses a wire name such as "high_meat". An empty string is
// DietUnspecified.
func ParseDietType(s string) (DietType, error) {
	if s == "" {
		return DietUnspecified, nil
	}
	for d, name := range dietTypeNames {
		if strings.EqualFold(s, name) {
			return d, nil
		}
	}
	if strings.EqualFold(s, "highMeat") {
		return DietHighMeat, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDietType, s)
}

// MarshalText implements encoding.TextMarshaler.
func (d DietType) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownDietType, int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An unknown name is
// reported as a *ValidationError for food.diet_type.
func (d *DietType) UnmarshalText(text []byte) error {
	parsed, err := ParseDietType(string(text))
	if err != nil {
		return unknownEnum(fieldDietType, err)
	}
	*d = parsed
	return nil
}

// Category is one of the four top-level partitions of a footprint.
type Category string

const (
	CategoryTransport Category = "transport"
	CategoryEnergy    Category = "energy"
	CategoryFood      Category = "food"
	CategoryWaste     Category = "waste"
)

// Categories lists every category in the fixed evaluation order.
func Categories() []Category {
	return []Category{CategoryTransport, CategoryEnergy, CategoryFood, CategoryWaste}
}
