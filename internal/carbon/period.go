package carbon

// PeriodConvention puts weekly and yearly inputs on the monthly basis shared
// by every category.
type PeriodConvention struct {
	// Name identifies the convention in results, e.g. "monthly".
	Name string `json:"name" yaml:"name"`

	// WeeksPerMonth multiplies per-week inputs.
	WeeksPerMonth float64 `json:"weeks_per_month" yaml:"weeks_per_month"`

	// MonthsPerYear divides per-year inputs.
	MonthsPerYear float64 `json:"months_per_year" yaml:"months_per_year"`
}

const (
	// ConventionMonthly is the name of MonthlyPeriods.
	ConventionMonthly = "monthly"

	// ConventionReference is the name of ReferencePeriods.
	ConventionReference = "reference"
)

// MonthlyPeriods normalizes every category to kg CO2e per month. This is the
// default convention.
func MonthlyPeriods() PeriodConvention {
	return PeriodConvention{
		Name:          ConventionMonthly,
		WeeksPerMonth: WeeksPerMonth,
		MonthsPerYear: MonthsPerYear,
	}
}

// ReferencePeriods applies no period conversion to weekly public transport
// and yearly flight inputs. It reproduces the figures of the legacy web
// calculator and exists for regression comparison only.
func ReferencePeriods() PeriodConvention {
	return PeriodConvention{
		Name:          ConventionReference,
		WeeksPerMonth: 1,
		MonthsPerYear: 1,
	}
}

// ParsePeriodConvention returns the convention with the given name.
// An empty name selects MonthlyPeriods.
func ParsePeriodConvention(name string) (PeriodConvention, bool) {
	switch name {
	case "", ConventionMonthly:
		return MonthlyPeriods(), true
	case ConventionReference:
		return ReferencePeriods(), true
	default:
		return PeriodConvention{}, false
	}
}

func (p PeriodConvention) weekly(v float64) float64 {
	return v * p.WeeksPerMonth
}

func (p PeriodConvention) yearly(v float64) float64 {
	if p.MonthsPerYear == 0 {
		return 0
	}
	return v / p.MonthsPerYear
}
