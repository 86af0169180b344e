package carbon

const (
	// WeeksPerMonth converts weekly activity to a monthly figure (52 weeks / 12 months, rounded).
	WeeksPerMonth = 4.33

	// MonthsPerYear converts yearly activity to a monthly figure.
	MonthsPerYear = 12.0

	// PublicTransportSpeedKmh is the assumed average speed of buses and trains.
	PublicTransportSpeedKmh = 25.0

	// FlightSpeedKmh is the assumed average cruising speed used to turn flight hours into distance.
	FlightSpeedKmh = 800.0

	// MeatServingKg is the assumed mass of one meat serving.
	MeatServingKg = 0.25

	// DairyServingKg is the assumed mass of one dairy serving.
	DairyServingKg = 0.2

	// BaselineVegetablesKgPerMonth is the fixed vegetable consumption assumed for everyone.
	BaselineVegetablesKgPerMonth = 30.0

	// BaselineProcessedKgPerMonth is the fixed processed-food consumption assumed for everyone.
	BaselineProcessedKgPerMonth = 10.0

	// LocalFoodReductionDivisor caps the local-sourcing reduction at 50% for 100% local food.
	LocalFoodReductionDivisor = 200.0

	// ApplianceAreaCoefficient scales home floor area into the appliance proxy term.
	ApplianceAreaCoefficient = 2.0

	// ApplianceRatingCeiling is subtracted from by the rating, so rating 5 minimizes the term.
	ApplianceRatingCeiling = 6

	// ApplianceScaleDivisor normalizes the appliance proxy term.
	ApplianceScaleDivisor = 10.0

	// MinApplianceRating and MaxApplianceRating bound the Energy Star style rating.
	MinApplianceRating = 1
	MaxApplianceRating = 5

	// DefaultApplianceRating is used when the rating is 0 (unrated).
	DefaultApplianceRating = 3

	// DisplayPrecision is the number of decimals shown for category totals.
	DisplayPrecision = 1
)

// Comparison baselines, kg CO2e per month.
const (
	// GlobalAverageKgPerMonth is the global per-capita average footprint.
	GlobalAverageKgPerMonth = 400.0

	// NationalAverageKgPerMonth is a developed-country per-capita average footprint.
	NationalAverageKgPerMonth = 450.0

	// ReductionTargetFraction is the share of the projected footprint kept under the 20% reduction target.
	ReductionTargetFraction = 0.8
)
