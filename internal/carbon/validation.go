package carbon

import (
	"fmt"
	"math"
)

// Wire paths of the enum fields. Each enum type occurs at exactly one path of
// LifestyleInput, so decoding errors can name the field.
const (
	fieldCarFuelType = "transport.car_fuel_type"
	fieldFlightType  = "transport.flight_type"
	fieldHeatingType = "energy.heating_type"
	fieldDietType    = "food.diet_type"
)

// Validate checks every LifestyleInput field against its documented range and
// returns the first violation as a *ValidationError. Out-of-range values are
// rejected, never clamped.
func Validate(in LifestyleInput) error {
	return firstError(
		validateTransport(in.Transport),
		validateEnergy(in.Energy),
		validateFood(in.Food),
		validateWaste(in.Waste),
	)
}

func validateTransport(t TransportInput) error {
	if !t.CarFuelType.Valid() {
		return invalidEnum(fieldCarFuelType, t.CarFuelType)
	}
	if !t.FlightType.Valid() {
		return invalidEnum(fieldFlightType, t.FlightType)
	}
	return firstError(
		nonNegative("transport.car_distance_km", t.CarDistanceKm),
		nonNegative("transport.car_efficiency_l_per_100km", t.CarEfficiencyLPer100Km),
		nonNegative("transport.public_transport_hours_per_week", t.PublicTransportHoursPerWeek),
		nonNegative("transport.flight_hours_per_year", t.FlightHoursPerYear),
		nonNegative("transport.motorcycle_distance_km", t.MotorcycleDistanceKm),
	)
}

func validateEnergy(e EnergyInput) error {
	if !e.HeatingType.Valid() {
		return invalidEnum(fieldHeatingType, e.HeatingType)
	}
	if e.ApplianceEfficiencyRating != 0 &&
		(e.ApplianceEfficiencyRating < MinApplianceRating || e.ApplianceEfficiencyRating > MaxApplianceRating) {
		return &ValidationError{
			Field: "energy.appliance_efficiency_rating",
			Reason: fmt.Sprintf("must be between %d and %d (or 0 for unrated), got %d",
				MinApplianceRating, MaxApplianceRating, e.ApplianceEfficiencyRating),
		}
	}
	return firstError(
		nonNegative("energy.home_size_m2", e.HomeSizeM2),
		nonNegative("energy.electricity_kwh_per_month", e.ElectricityKwhPerMonth),
		nonNegative("energy.heating_usage", e.HeatingUsage),
		nonNegative("energy.cooling_kwh_per_month", e.CoolingKwhPerMonth),
	)
}

func validateFood(f FoodInput) error {
	if !f.DietType.Valid() {
		return invalidEnum(fieldDietType, f.DietType)
	}
	return firstError(
		nonNegative("food.meat_servings_per_week", f.MeatServingsPerWeek),
		nonNegative("food.dairy_servings_per_week", f.DairyServingsPerWeek),
		percent("food.local_food_percent", f.LocalFoodPercent),
		percent("food.organic_food_percent", f.OrganicFoodPercent),
		percent("food.food_waste_percent", f.FoodWastePercent),
	)
}

func validateWaste(w WasteInput) error {
	if err := firstError(
		nonNegative("waste.waste_kg_per_month", w.WasteKgPerMonth),
		percent("waste.recycling_rate_percent", w.RecyclingRatePercent),
		percent("waste.compost_rate_percent", w.CompostRatePercent),
	); err != nil {
		return err
	}
	if diverted := w.RecyclingRatePercent + w.CompostRatePercent; diverted > 100 {
		return &ValidationError{
			Field:  "waste.compost_rate_percent",
			Reason: fmt.Sprintf("recycling and compost rates sum to %g%%, must not exceed 100%%", diverted),
		}
	}
	return nil
}

func invalidEnum(field string, v fmt.Stringer) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf("unrecognized value %s", v)}
}

// unknownEnum reports a wire value that does not name a declared enum member.
func unknownEnum(field string, err error) error {
	return &ValidationError{Field: field, Reason: err.Error(), cause: err}
}

func nonNegative(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ValidationError{Field: field, Reason: "must be a finite number"}
	}
	if v < 0 {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("must be >= 0, got %g", v)}
	}
	return nil
}

func percent(field string, v float64) error {
	if err := nonNegative(field, v); err != nil {
		return err
	}
	if v > 100 {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("must be <= 100, got %g", v)}
	}
	return nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
