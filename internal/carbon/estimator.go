package carbon

import "math"

// CarbonEstimator converts a lifestyle record into a categorized footprint.
type CarbonEstimator interface {
	// Estimate validates in and returns its monthly breakdown.
	Estimate(in LifestyleInput) (Breakdown, error)
}

// Estimator implements CarbonEstimator over one immutable FactorTable and
// PeriodConvention. It holds no mutable state and is safe for concurrent use.
type Estimator struct {
	factors *FactorTable
	periods PeriodConvention
}

var _ CarbonEstimator = (*Estimator)(nil)

// Option configures an Estimator.
type Option func(*Estimator)

// WithPeriods selects the period convention. The default is MonthlyPeriods.
func WithPeriods(p PeriodConvention) Option {
	return func(e *Estimator) {
		e.periods = p
	}
}

// NewEstimator creates an estimator over table. A nil table selects
// DefaultFactorTable.
func NewEstimator(table *FactorTable, opts ...Option) *Estimator {
	if table == nil {
		table = DefaultFactorTable()
	}
	e := &Estimator{
		factors: table,
		periods: MonthlyPeriods(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FactorTable returns the table the estimator applies.
func (e *Estimator) FactorTable() *FactorTable {
	return e.factors
}

// Periods returns the estimator's period convention.
func (e *Estimator) Periods() PeriodConvention {
	return e.periods
}

// Estimate validates in and computes its breakdown.
//
// Validation runs before any arithmetic; a failure is returned as a
// *ValidationError naming the field. Each category is computed independently,
// floored at zero, and summed into Total at full precision.
func (e *Estimator) Estimate(in LifestyleInput) (Breakdown, error) {
	if err := Validate(in); err != nil {
		return Breakdown{}, err
	}

	transport, err := e.transport(in.Transport)
	if err != nil {
		return Breakdown{}, err
	}
	energy, err := e.energy(in.Energy)
	if err != nil {
		return Breakdown{}, err
	}
	food, err := e.food(in.Food)
	if err != nil {
		return Breakdown{}, err
	}
	waste, err := e.waste(in.Waste)
	if err != nil {
		return Breakdown{}, err
	}

	b := Breakdown{
		Transport:     transport.Total(),
		Energy:        energy.Total(),
		Food:          food.Total(),
		Waste:         waste.Total(),
		FactorVersion: e.factors.Version(),
		Convention:    e.periods.Name,
		Details: BreakdownDetails{
			Transport: transport,
			Energy:    energy,
			Food:      food,
			Waste:     waste,
		},
	}
	b.Total = b.Transport + b.Energy + b.Food + b.Waste
	return b, nil
}

// Transport validates and computes the transport terms alone.
func (e *Estimator) Transport(t TransportInput) (TransportDetail, error) {
	if err := validateTransport(t); err != nil {
		return TransportDetail{}, err
	}
	return e.transport(t)
}

// Energy validates and computes the energy terms alone.
func (e *Estimator) Energy(in EnergyInput) (EnergyDetail, error) {
	if err := validateEnergy(in); err != nil {
		return EnergyDetail{}, err
	}
	return e.energy(in)
}

// Food validates and computes the food terms alone.
func (e *Estimator) Food(f FoodInput) (FoodDetail, error) {
	if err := validateFood(f); err != nil {
		return FoodDetail{}, err
	}
	return e.food(f)
}

// Waste validates and computes the waste terms alone.
func (e *Estimator) Waste(w WasteInput) (WasteDetail, error) {
	if err := validateWaste(w); err != nil {
		return WasteDetail{}, err
	}
	return e.waste(w)
}

// transport applies:
//  1. Car: electric ? km × kg/km : (km × L/100km / 100) × kg/L
//  2. Public transport: h/week × 25 km/h × kg/passenger-km × weeks/month
//  3. Flights: h/year × 800 km/h × kg/passenger-km / months/year
//  4. Motorcycle: km × kg/km
func (e *Estimator) transport(t TransportInput) (TransportDetail, error) {
	fuelFactor, err := e.factors.factor(DomainCarFuel, t.CarFuelType.String())
	if err != nil {
		return TransportDetail{}, err
	}
	ptFactor, err := e.factors.factor(DomainTransport, KeyPublicTransport)
	if err != nil {
		return TransportDetail{}, err
	}
	flightFactor, err := e.factors.factor(DomainFlight, t.FlightType.String())
	if err != nil {
		return TransportDetail{}, err
	}
	motoFactor, err := e.factors.factor(DomainTransport, KeyMotorcycle)
	if err != nil {
		return TransportDetail{}, err
	}

	var car float64
	if t.CarFuelType == FuelElectric {
		car = t.CarDistanceKm * fuelFactor
	} else {
		liters := t.CarDistanceKm * t.CarEfficiencyLPer100Km / 100
		car = liters * fuelFactor
	}

	publicTransport := e.periods.weekly(t.PublicTransportHoursPerWeek * PublicTransportSpeedKmh * ptFactor)
	flights := e.periods.yearly(t.FlightHoursPerYear * FlightSpeedKmh * flightFactor)

	return TransportDetail{
		Car:             car,
		PublicTransport: publicTransport,
		Flights:         flights,
		Motorcycle:      t.MotorcycleDistanceKm * motoFactor,
	}, nil
}

// energy applies:
//  1. Electricity factor: renewable supply ? renewable : grid average
//  2. Electricity and cooling: kWh × electricity factor
//  3. Heating: usage × heating factor for the source
//  4. Appliances: m² × 2 × (6 − rating) × electricity factor / 10
func (e *Estimator) energy(in EnergyInput) (EnergyDetail, error) {
	supply := KeyGridAverage
	if in.UsesRenewableEnergy {
		supply = KeyRenewable
	}
	electricityFactor, err := e.factors.factor(DomainElectricity, supply)
	if err != nil {
		return EnergyDetail{}, err
	}
	heatingFactor, err := e.factors.factor(DomainHeating, in.HeatingType.String())
	if err != nil {
		return EnergyDetail{}, err
	}

	rating := in.ApplianceEfficiencyRating
	if rating == 0 {
		rating = DefaultApplianceRating
	}
	appliances := in.HomeSizeM2 * ApplianceAreaCoefficient *
		float64(ApplianceRatingCeiling-rating) * electricityFactor / ApplianceScaleDivisor

	return EnergyDetail{
		Electricity: in.ElectricityKwhPerMonth * electricityFactor,
		Heating:     in.HeatingUsage * heatingFactor,
		Cooling:     in.CoolingKwhPerMonth * electricityFactor,
		Appliances:  appliances,
	}, nil
}

// food applies:
//  1. Meat: servings/week × 0.25 kg × beef factor × weeks/month
//  2. Dairy: servings/week × 0.2 kg × dairy factor × weeks/month
//  3. Vegetables and processed food: fixed monthly baseline × factor
//  4. Multipliers: (1 + waste%/100) × (1 − local%/200)
//
// Serving counts are always converted with WeeksPerMonth; the food figures
// are monthly under every period convention. The baselines apply only when a
// diet type is reported, so DietUnspecified with no servings yields zero.
func (e *Estimator) food(f FoodInput) (FoodDetail, error) {
	beef, err := e.factors.factor(DomainFood, KeyBeef)
	if err != nil {
		return FoodDetail{}, err
	}
	dairy, err := e.factors.factor(DomainFood, KeyDairy)
	if err != nil {
		return FoodDetail{}, err
	}
	vegetables, err := e.factors.factor(DomainFood, KeyVegetables)
	if err != nil {
		return FoodDetail{}, err
	}
	processed, err := e.factors.factor(DomainFood, KeyProcessed)
	if err != nil {
		return FoodDetail{}, err
	}

	d := FoodDetail{
		Meat:            f.MeatServingsPerWeek * MeatServingKg * beef * WeeksPerMonth,
		Dairy:           f.DairyServingsPerWeek * DairyServingKg * dairy * WeeksPerMonth,
		WasteMultiplier: 1 + f.FoodWastePercent/100,
		LocalReduction:  1 - f.LocalFoodPercent/LocalFoodReductionDivisor,
	}
	if f.DietType != DietUnspecified {
		d.Vegetables = BaselineVegetablesKgPerMonth * vegetables
		d.Processed = BaselineProcessedKgPerMonth * processed
	}
	return d, nil
}

// waste applies:
//  1. General: kg × max(0, 1 − (recycling% + compost%)/100) × general factor
//  2. Credits: kg × rate%/100 × credit factor (credit factors are <= 0)
//  3. Total: max(0, general + credits)
func (e *Estimator) waste(w WasteInput) (WasteDetail, error) {
	general, err := e.factors.factor(DomainWaste, KeyGeneralWaste)
	if err != nil {
		return WasteDetail{}, err
	}
	recycling, err := e.factors.factor(DomainWaste, KeyRecycling)
	if err != nil {
		return WasteDetail{}, err
	}
	compost, err := e.factors.factor(DomainWaste, KeyCompost)
	if err != nil {
		return WasteDetail{}, err
	}

	nonDiverted := Clamp(1-(w.RecyclingRatePercent+w.CompostRatePercent)/100, 0, 1)

	return WasteDetail{
		General:         w.WasteKgPerMonth * nonDiverted * general,
		RecyclingCredit: math.Abs(w.WasteKgPerMonth * w.RecyclingRatePercent / 100 * recycling),
		CompostCredit:   math.Abs(w.WasteKgPerMonth * w.CompostRatePercent / 100 * compost),
	}, nil
}

// Total returns the transport category total.
func (d TransportDetail) Total() float64 {
	return d.Car + d.PublicTransport + d.Flights + d.Motorcycle
}

// Total returns the energy category total.
func (d EnergyDetail) Total() float64 {
	return d.Electricity + d.Heating + d.Cooling + d.Appliances
}

// Total returns the food category total after the waste and local-sourcing multipliers.
func (d FoodDetail) Total() float64 {
	return (d.Meat + d.Dairy + d.Vegetables + d.Processed) * d.WasteMultiplier * d.LocalReduction
}

// Total returns the waste category total; credits never push it below zero.
func (d WasteDetail) Total() float64 {
	return math.Max(0, d.General-d.RecyclingCredit-d.CompostCredit)
}
