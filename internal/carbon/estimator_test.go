package carbon

import (
	"errors"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const delta = 1e-6

// referenceScenario is a fully populated household used across tests.
func referenceScenario() LifestyleInput {
	return LifestyleInput{
		Transport: TransportInput{
			CarDistanceKm:               500,
			CarFuelType:                 FuelGasoline,
			CarEfficiencyLPer100Km:      8,
			PublicTransportHoursPerWeek: 10,
			FlightHoursPerYear:          5,
			FlightType:                  FlightDomestic,
			MotorcycleDistanceKm:        100,
		},
		Energy: EnergyInput{
			HomeSizeM2:                150,
			ElectricityKwhPerMonth:    300,
			HeatingType:               HeatingNaturalGas,
			HeatingUsage:              50,
			CoolingKwhPerMonth:        100,
			ApplianceEfficiencyRating: 3,
		},
		Food: FoodInput{
			DietType:             DietMixed,
			MeatServingsPerWeek:  7,
			DairyServingsPerWeek: 14,
			LocalFoodPercent:     50,
			OrganicFoodPercent:   20,
			FoodWastePercent:     15,
		},
		Waste: WasteInput{
			WasteKgPerMonth:      20,
			RecyclingRatePercent: 60,
			CompostRatePercent:   30,
		},
	}
}

func TestEstimate_ReferenceScenario(t *testing.T) {
	tests := []struct {
		name          string
		periods       PeriodConvention
		wantTransport float64
		wantPublic    float64
		wantFlights   float64
		wantTotal     float64
	}{
		{
			name:          "monthly convention",
			periods:       MonthlyPeriods(),
			wantTransport: 285.0425,
			wantPublic:    96.3425, // 10 h × 25 km/h × 0.089 × 4.33
			wantFlights:   85,      // 5 h × 800 km/h × 0.255 / 12
			wantTotal:     1065.052865,
		},
		{
			name:          "reference convention",
			periods:       ReferencePeriods(),
			wantTransport: 1145.95,
			wantPublic:    22.25,
			wantFlights:   1020,
			wantTotal:     1925.960365,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEstimator(nil, WithPeriods(tt.periods))
			b, err := e.Estimate(referenceScenario())
			require.NoError(t, err)

			assert.InDelta(t, 92.4, b.Details.Transport.Car, delta)
			assert.InDelta(t, tt.wantPublic, b.Details.Transport.PublicTransport, delta)
			assert.InDelta(t, tt.wantFlights, b.Details.Transport.Flights, delta)
			assert.InDelta(t, 11.3, b.Details.Transport.Motorcycle, delta)
			assert.InDelta(t, tt.wantTransport, b.Transport, delta)

			assert.InDelta(t, 135, b.Details.Energy.Electricity, delta)
			assert.InDelta(t, 102, b.Details.Energy.Heating, delta)
			assert.InDelta(t, 45, b.Details.Energy.Cooling, delta)
			assert.InDelta(t, 40.5, b.Details.Energy.Appliances, delta)
			assert.InDelta(t, 322.5, b.Energy, delta)

			assert.InDelta(t, 454.65, b.Details.Food.Meat, delta)
			assert.InDelta(t, 38.7968, b.Details.Food.Dairy, delta)
			assert.InDelta(t, 12, b.Details.Food.Vegetables, delta)
			assert.InDelta(t, 25, b.Details.Food.Processed, delta)
			assert.InDelta(t, 457.510365, b.Food, delta)

			assert.InDelta(t, 1.0, b.Details.Waste.General, delta)
			assert.InDelta(t, 2.4, b.Details.Waste.RecyclingCredit, delta)
			assert.InDelta(t, 0.6, b.Details.Waste.CompostCredit, delta)
			assert.Equal(t, 0.0, b.Waste, "credits exceed general waste, total floors at zero")

			assert.InDelta(t, tt.wantTotal, b.Total, delta)
			assert.Equal(t, DefaultFactorVersion, b.FactorVersion)
			assert.Equal(t, tt.periods.Name, b.Convention)
		})
	}
}

func TestEstimate_ZeroInput(t *testing.T) {
	b, err := NewEstimator(nil).Estimate(LifestyleInput{})
	require.NoError(t, err)

	assert.Equal(t, 0.0, b.Transport)
	assert.Equal(t, 0.0, b.Energy)
	assert.Equal(t, 0.0, b.Food)
	assert.Equal(t, 0.0, b.Waste)
	assert.Equal(t, 0.0, b.Total)
	assert.Empty(t, Recommend(b))
}

func TestEstimate_TotalIsSumOfCategories(t *testing.T) {
	b, err := NewEstimator(nil).Estimate(referenceScenario())
	require.NoError(t, err)

	assert.Equal(t, b.Transport+b.Energy+b.Food+b.Waste, b.Total)
	assert.InDelta(t, b.Details.Transport.Total(), b.Transport, delta)
	assert.InDelta(t, b.Details.Energy.Total(), b.Energy, delta)
	assert.InDelta(t, b.Details.Food.Total(), b.Food, delta)
	assert.InDelta(t, b.Details.Waste.Total(), b.Waste, delta)
}

func TestEstimate_CategoriesNeverNegative(t *testing.T) {
	diversions := []struct {
		recycling float64
		compost   float64
	}{
		{0, 0},
		{100, 0},
		{0, 100},
		{50, 50},
		{99.5, 0.5},
	}

	e := NewEstimator(nil)
	for _, d := range diversions {
		in := referenceScenario()
		in.Waste.RecyclingRatePercent = d.recycling
		in.Waste.CompostRatePercent = d.compost
		in.Food.LocalFoodPercent = 100

		b, err := e.Estimate(in)
		require.NoError(t, err)
		for _, c := range Categories() {
			assert.GreaterOrEqual(t, b.Category(c), 0.0, "%s with recycling=%g compost=%g", c, d.recycling, d.compost)
		}
	}
}

func TestEstimate_MonotonicInCarDistance(t *testing.T) {
	e := NewEstimator(nil)
	prev := -1.0
	for _, km := range []float64{0, 1, 10, 250, 1000, 5000} {
		in := referenceScenario()
		in.Transport.CarDistanceKm = km

		b, err := e.Estimate(in)
		require.NoError(t, err)
		assert.Greater(t, b.Transport, prev, "transport should grow with distance %g", km)
		prev = b.Transport
	}
}

func TestEstimate_ElectricNotAboveGasoline(t *testing.T) {
	e := NewEstimator(nil)
	for _, km := range []float64{0, 100, 1500} {
		gasoline := TransportInput{CarDistanceKm: km, CarFuelType: FuelGasoline, CarEfficiencyLPer100Km: 8}
		electric := TransportInput{CarDistanceKm: km, CarFuelType: FuelElectric, CarEfficiencyLPer100Km: 8}

		g, err := e.Transport(gasoline)
		require.NoError(t, err)
		el, err := e.Transport(electric)
		require.NoError(t, err)
		assert.LessOrEqual(t, el.Car, g.Car)
	}
}

func TestEstimate_ElectricIgnoresEfficiency(t *testing.T) {
	e := NewEstimator(nil)
	a, err := e.Transport(TransportInput{CarDistanceKm: 200, CarFuelType: FuelElectric, CarEfficiencyLPer100Km: 4})
	require.NoError(t, err)
	b, err := e.Transport(TransportInput{CarDistanceKm: 200, CarFuelType: FuelElectric, CarEfficiencyLPer100Km: 12})
	require.NoError(t, err)

	assert.InDelta(t, 10.0, a.Car, delta) // 200 km × 0.05
	assert.Equal(t, a.Car, b.Car)
}

func TestEstimate_RenewableNotAboveGrid(t *testing.T) {
	e := NewEstimator(nil)
	in := referenceScenario().Energy

	grid, err := e.Energy(in)
	require.NoError(t, err)
	in.UsesRenewableEnergy = true
	renewable, err := e.Energy(in)
	require.NoError(t, err)

	assert.LessOrEqual(t, renewable.Total(), grid.Total())
	assert.InDelta(t, 15.0, renewable.Electricity, delta) // 300 kWh × 0.05
	assert.Equal(t, grid.Heating, renewable.Heating, "heating does not depend on supply")
}

func TestEnergy_ApplianceRating(t *testing.T) {
	tests := []struct {
		name   string
		rating int
		want   float64
	}{
		{name: "unrated uses default", rating: 0, want: 40.5},
		{name: "least efficient", rating: 1, want: 67.5},
		{name: "average", rating: 3, want: 40.5},
		{name: "most efficient", rating: 5, want: 13.5},
	}

	e := NewEstimator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := e.Energy(EnergyInput{HomeSizeM2: 150, ApplianceEfficiencyRating: tt.rating})
			require.NoError(t, err)
			assert.InDelta(t, tt.want, d.Appliances, delta)
		})
	}
}

func TestFood_Multipliers(t *testing.T) {
	e := NewEstimator(nil)

	plain, err := e.Food(FoodInput{DietType: DietVegan})
	require.NoError(t, err)
	assert.InDelta(t, 37.0, plain.Total(), delta, "baselines only: 30×0.4 + 10×2.5")

	wasteful, err := e.Food(FoodInput{DietType: DietVegan, FoodWastePercent: 100})
	require.NoError(t, err)
	assert.InDelta(t, 74.0, wasteful.Total(), delta)

	local, err := e.Food(FoodInput{DietType: DietVegan, LocalFoodPercent: 100})
	require.NoError(t, err)
	assert.InDelta(t, 18.5, local.Total(), delta)
}

func TestFood_UnspecifiedDietHasNoBaselines(t *testing.T) {
	e := NewEstimator(nil)

	d, err := e.Food(FoodInput{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, d.Vegetables)
	assert.Equal(t, 0.0, d.Processed)
	assert.Equal(t, 0.0, d.Total())

	// Food waste alone has nothing to scale.
	wasteOnly, err := e.Food(FoodInput{FoodWastePercent: 0.001})
	require.NoError(t, err)
	assert.Equal(t, 0.0, wasteOnly.Total())

	servings, err := e.Food(FoodInput{DairyServingsPerWeek: 10})
	require.NoError(t, err)
	assert.InDelta(t, 10*DairyServingKg*3.2*WeeksPerMonth, servings.Total(), delta)
}

func TestFood_DietTypeDoesNotChangeTotal(t *testing.T) {
	e := NewEstimator(nil)
	diets := []DietType{DietMixed, DietVegan, DietVegetarian, DietPescatarian, DietHighMeat}

	for _, in := range []FoodInput{
		{},
		{FoodWastePercent: 0.001},
		{MeatServingsPerWeek: 7, DairyServingsPerWeek: 14, LocalFoodPercent: 50, FoodWastePercent: 15},
	} {
		var totals []float64
		for _, diet := range diets {
			in.DietType = diet
			d, err := e.Food(in)
			require.NoError(t, err)
			totals = append(totals, d.Total())
		}
		for i, total := range totals {
			assert.InDelta(t, totals[0], total, delta, "diet %s", diets[i])
		}
		assert.GreaterOrEqual(t, totals[0], 37.0, "reported diets include the baselines")
	}
}

func TestEstimate_Idempotent(t *testing.T) {
	e := NewEstimator(nil)
	first, err := e.Estimate(referenceScenario())
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := e.Estimate(referenceScenario())
		require.NoError(t, err)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("estimate changed on run %d (-first +again):\n%s", i, diff)
		}
	}
}

func TestEstimate_ValidationRunsFirst(t *testing.T) {
	in := referenceScenario()
	in.Transport.CarFuelType = FuelType(42)

	b, err := NewEstimator(nil).Estimate(in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, Breakdown{}, b)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "transport.car_fuel_type", verr.Field)
}

func TestEstimate_MissingFactorIsComputationError(t *testing.T) {
	spec := DefaultFactorTable().Spec()
	delete(spec.Factors[DomainFood], KeyBeef)
	broken := &FactorTable{
		version: semver.MustParse("0.0.1"),
		factors: spec.Factors,
	}

	_, err := NewEstimator(broken).Estimate(referenceScenario())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrComputation))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "food.beef")
}

func TestNewEstimator_Defaults(t *testing.T) {
	e := NewEstimator(nil)
	assert.Same(t, DefaultFactorTable(), e.FactorTable())
	assert.Equal(t, MonthlyPeriods(), e.Periods())
}

func TestBreakdown_Rounded(t *testing.T) {
	b, err := NewEstimator(nil).Estimate(referenceScenario())
	require.NoError(t, err)

	r := b.Rounded(DisplayPrecision)
	assert.Equal(t, 285.0, r.Transport)
	assert.Equal(t, 322.5, r.Energy)
	assert.Equal(t, 457.5, r.Food)
	assert.Equal(t, 0.0, r.Waste)
	assert.Equal(t, 1065.1, r.Total)
	assert.Equal(t, b.Details, r.Details)
}

func TestBreakdown_Describe(t *testing.T) {
	b, err := NewEstimator(nil).Estimate(referenceScenario())
	require.NoError(t, err)

	assert.Equal(t,
		"Monthly footprint 1065.10 kgCO2e (transport 285, energy 322.50, food 457.50, waste 0), factors v1.0.0",
		b.Describe())
}

func BenchmarkEstimate(b *testing.B) {
	e := NewEstimator(nil)
	in := referenceScenario()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Estimate(in)
	}
}

func BenchmarkEstimateParallel(b *testing.B) {
	e := NewEstimator(nil)
	in := referenceScenario()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = e.Estimate(in)
		}
	})
}
