package carbon

// Projection extrapolates a monthly breakdown to a year.
type Projection struct {
	MonthlyKg float64 `json:"monthly_kg"`
	YearlyKg  float64 `json:"yearly_kg"`

	// TargetYearlyKg is the yearly figure after the 20% reduction target.
	TargetYearlyKg float64 `json:"target_yearly_kg"`
}

// Project returns the yearly projection of b.
func Project(b Breakdown) Projection {
	yearly := b.Total * MonthsPerYear
	return Projection{
		MonthlyKg:      b.Total,
		YearlyKg:       yearly,
		TargetYearlyKg: yearly * ReductionTargetFraction,
	}
}

// Comparison places a monthly total against per-capita averages.
type Comparison struct {
	FootprintKg       float64 `json:"footprint_kg"`
	GlobalAverageKg   float64 `json:"global_average_kg"`
	NationalAverageKg float64 `json:"national_average_kg"`

	// PercentBelowGlobal is (global − footprint) / global × 100. Negative
	// values mean the footprint is above the global average.
	PercentBelowGlobal float64 `json:"percent_below_global"`

	// PercentBelowNational is the same measure against the national average.
	PercentBelowNational float64 `json:"percent_below_national"`

	BelowGlobalAverage bool `json:"below_global_average"`
}

// Compare compares b against GlobalAverageKgPerMonth and NationalAverageKgPerMonth.
func Compare(b Breakdown) Comparison {
	return CompareWith(b, GlobalAverageKgPerMonth, NationalAverageKgPerMonth)
}

// CompareWith compares b against caller-supplied averages. A zero average
// yields a zero percentage for that comparison.
func CompareWith(b Breakdown, globalKg, nationalKg float64) Comparison {
	return Comparison{
		FootprintKg:          b.Total,
		GlobalAverageKg:      globalKg,
		NationalAverageKg:    nationalKg,
		PercentBelowGlobal:   percentBelow(b.Total, globalKg),
		PercentBelowNational: percentBelow(b.Total, nationalKg),
		BelowGlobalAverage:   b.Total < globalKg,
	}
}

func percentBelow(value, reference float64) float64 {
	if reference == 0 {
		return 0
	}
	return (reference - value) / reference * 100
}
