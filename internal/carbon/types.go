// Package carbon estimates the monthly carbon footprint of a household
// lifestyle from transport, energy, food and waste activity data.
//
// All figures are kg CO2e per month. Weekly and yearly inputs are put on a
// monthly basis by the estimator's PeriodConvention.
package carbon

// LifestyleInput is the caller-supplied activity record for one estimate.
type LifestyleInput struct {
	Transport TransportInput `json:"transport" yaml:"transport"`
	Energy    EnergyInput    `json:"energy" yaml:"energy"`
	Food      FoodInput      `json:"food" yaml:"food"`
	Waste     WasteInput     `json:"waste" yaml:"waste"`
}

// TransportInput describes personal travel.
type TransportInput struct {
	// CarDistanceKm is the distance driven per month.
	CarDistanceKm float64 `json:"car_distance_km" yaml:"car_distance_km"`

	// CarFuelType selects the car emission factor.
	CarFuelType FuelType `json:"car_fuel_type" yaml:"car_fuel_type"`

	// CarEfficiencyLPer100Km is fuel consumption in liters per 100 km.
	// Ignored for electric cars.
	CarEfficiencyLPer100Km float64 `json:"car_efficiency_l_per_100km" yaml:"car_efficiency_l_per_100km"`

	// PublicTransportHoursPerWeek is time spent on buses and trains per week.
	PublicTransportHoursPerWeek float64 `json:"public_transport_hours_per_week" yaml:"public_transport_hours_per_week"`

	// FlightHoursPerYear is time spent flying per year.
	FlightHoursPerYear float64 `json:"flight_hours_per_year" yaml:"flight_hours_per_year"`

	// FlightType selects the per passenger-km flight factor.
	FlightType FlightType `json:"flight_type" yaml:"flight_type"`

	// MotorcycleDistanceKm is the distance ridden per month.
	MotorcycleDistanceKm float64 `json:"motorcycle_distance_km" yaml:"motorcycle_distance_km"`
}

// EnergyInput describes household energy use.
type EnergyInput struct {
	HomeSizeM2             float64     `json:"home_size_m2" yaml:"home_size_m2"`
	ElectricityKwhPerMonth float64     `json:"electricity_kwh_per_month" yaml:"electricity_kwh_per_month"`
	HeatingType            HeatingType `json:"heating_type" yaml:"heating_type"`

	// HeatingUsage is monthly heating consumption: m³ for natural gas,
	// kWh for electricity, liters for oil and propane.
	HeatingUsage       float64 `json:"heating_usage" yaml:"heating_usage"`
	CoolingKwhPerMonth float64 `json:"cooling_kwh_per_month" yaml:"cooling_kwh_per_month"`

	// ApplianceEfficiencyRating is 1 (least efficient) to 5 (most efficient).
	// 0 means unrated and is treated as DefaultApplianceRating.
	ApplianceEfficiencyRating int `json:"appliance_efficiency_rating" yaml:"appliance_efficiency_rating"`

	UsesRenewableEnergy bool `json:"uses_renewable_energy" yaml:"uses_renewable_energy"`
}

// FoodInput describes diet composition.
type FoodInput struct {
	DietType             DietType `json:"diet_type" yaml:"diet_type"`
	MeatServingsPerWeek  float64  `json:"meat_servings_per_week" yaml:"meat_servings_per_week"`
	DairyServingsPerWeek float64  `json:"dairy_servings_per_week" yaml:"dairy_servings_per_week"`
	LocalFoodPercent     float64  `json:"local_food_percent" yaml:"local_food_percent"`
	OrganicFoodPercent   float64  `json:"organic_food_percent" yaml:"organic_food_percent"`
	FoodWastePercent     float64  `json:"food_waste_percent" yaml:"food_waste_percent"`
}

// WasteInput describes household waste handling.
type WasteInput struct {
	WasteKgPerMonth      float64 `json:"waste_kg_per_month" yaml:"waste_kg_per_month"`
	RecyclingRatePercent float64 `json:"recycling_rate_percent" yaml:"recycling_rate_percent"`
	CompostRatePercent   float64 `json:"compost_rate_percent" yaml:"compost_rate_percent"`
}

// Breakdown is the categorized result of one estimate. Category totals keep
// full float64 precision; use Rounded for display.
type Breakdown struct {
	Transport float64 `json:"transport"`
	Energy    float64 `json:"energy"`
	Food      float64 `json:"food"`
	Waste     float64 `json:"waste"`
	Total     float64 `json:"total"`

	// FactorVersion is the version tag of the factor table that produced this result.
	FactorVersion string `json:"factor_version"`

	// Convention is the name of the period convention used.
	Convention string `json:"convention"`

	Details BreakdownDetails `json:"details"`
}

// Category returns the total for c, or 0 for an unknown category.
func (b Breakdown) Category(c Category) float64 {
	switch c {
	case CategoryTransport:
		return b.Transport
	case CategoryEnergy:
		return b.Energy
	case CategoryFood:
		return b.Food
	case CategoryWaste:
		return b.Waste
	default:
		return 0
	}
}

// BreakdownDetails holds every sub-term that feeds the category totals.
type BreakdownDetails struct {
	Transport TransportDetail `json:"transport"`
	Energy    EnergyDetail    `json:"energy"`
	Food      FoodDetail      `json:"food"`
	Waste     WasteDetail     `json:"waste"`
}

// TransportDetail splits the transport total by mode.
type TransportDetail struct {
	Car             float64 `json:"car"`
	PublicTransport float64 `json:"public_transport"`
	Flights         float64 `json:"flights"`
	Motorcycle      float64 `json:"motorcycle"`
}

// EnergyDetail splits the energy total by end use.
type EnergyDetail struct {
	Electricity float64 `json:"electricity"`
	Heating     float64 `json:"heating"`
	Cooling     float64 `json:"cooling"`
	Appliances  float64 `json:"appliances"`
}

// FoodDetail holds the food terms before the waste and local-sourcing multipliers.
type FoodDetail struct {
	Meat       float64 `json:"meat"`
	Dairy      float64 `json:"dairy"`
	Vegetables float64 `json:"vegetables"`
	Processed  float64 `json:"processed"`

	// WasteMultiplier is 1 + food waste%/100.
	WasteMultiplier float64 `json:"waste_multiplier"`

	// LocalReduction is 1 − local food%/200.
	LocalReduction float64 `json:"local_reduction"`
}

// WasteDetail holds the waste terms. Credits are reported as positive
// avoided emissions.
type WasteDetail struct {
	General         float64 `json:"general"`
	RecyclingCredit float64 `json:"recycling_credit"`
	CompostCredit   float64 `json:"compost_credit"`
}

// Recommendation is a qualitative suggestion triggered by a category total
// exceeding its threshold.
type Recommendation struct {
	Category               Category `json:"category"`
	SuggestedAction        string   `json:"suggested_action"`
	EstimatedImpactPercent float64  `json:"estimated_impact_percent"`
	ThresholdKg            float64  `json:"threshold_kg"`
	ObservedKg             float64  `json:"observed_kg"`
}
