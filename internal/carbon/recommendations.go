package carbon

import "fmt"

// Default recommendation thresholds in kg CO2e per month, and the reduction
// each suggested action is expected to achieve.
const (
	DefaultTransportThresholdKg = 100.0
	DefaultEnergyThresholdKg    = 150.0
	DefaultFoodThresholdKg      = 80.0
	DefaultWasteThresholdKg     = 10.0

	DefaultTransportImpactPercent = 25.0
	DefaultEnergyImpactPercent    = 40.0
	DefaultFoodImpactPercent      = 30.0
	DefaultWasteImpactPercent     = 50.0
)

// Rule fires when its category total strictly exceeds ThresholdKg.
type Rule struct {
	Category      Category `json:"category" yaml:"category"`
	ThresholdKg   float64  `json:"threshold_kg" yaml:"threshold_kg"`
	Action        string   `json:"action" yaml:"action"`
	ImpactPercent float64  `json:"impact_percent" yaml:"impact_percent"`
}

// RuleSet is an immutable recommendation policy. Rules are evaluated in the
// fixed category order transport, energy, food, waste.
type RuleSet struct {
	rules []Rule
}

// DefaultRules returns the standard policy.
func DefaultRules() RuleSet {
	rs, _ := NewRuleSet(
		Rule{
			Category:      CategoryTransport,
			ThresholdKg:   DefaultTransportThresholdKg,
			Action:        "Consider using public transport or cycling more often",
			ImpactPercent: DefaultTransportImpactPercent,
		},
		Rule{
			Category:      CategoryEnergy,
			ThresholdKg:   DefaultEnergyThresholdKg,
			Action:        "Switch to renewable energy and improve home insulation",
			ImpactPercent: DefaultEnergyImpactPercent,
		},
		Rule{
			Category:      CategoryFood,
			ThresholdKg:   DefaultFoodThresholdKg,
			Action:        "Reduce meat consumption and buy local produce",
			ImpactPercent: DefaultFoodImpactPercent,
		},
		Rule{
			Category:      CategoryWaste,
			ThresholdKg:   DefaultWasteThresholdKg,
			Action:        "Increase recycling and composting rates",
			ImpactPercent: DefaultWasteImpactPercent,
		},
	)
	return rs
}

// NewRuleSet builds a policy with at most one rule per category. Rules are
// reordered into the fixed category order.
func NewRuleSet(rules ...Rule) (RuleSet, error) {
	byCategory := make(map[Category]Rule, len(rules))
	for _, r := range rules {
		if !knownCategory(r.Category) {
			return RuleSet{}, fmt.Errorf("unknown recommendation category %q", r.Category)
		}
		if _, dup := byCategory[r.Category]; dup {
			return RuleSet{}, fmt.Errorf("duplicate recommendation rule for %s", r.Category)
		}
		if r.ThresholdKg < 0 {
			return RuleSet{}, fmt.Errorf("%s threshold must be >= 0, got %g", r.Category, r.ThresholdKg)
		}
		if r.ImpactPercent < 0 || r.ImpactPercent > 100 {
			return RuleSet{}, fmt.Errorf("%s impact must be within [0,100], got %g", r.Category, r.ImpactPercent)
		}
		byCategory[r.Category] = r
	}

	ordered := make([]Rule, 0, len(byCategory))
	for _, c := range Categories() {
		if r, ok := byCategory[c]; ok {
			ordered = append(ordered, r)
		}
	}
	return RuleSet{rules: ordered}, nil
}

// Rules returns a copy of the rules in evaluation order.
func (rs RuleSet) Rules() []Rule {
	out := make([]Rule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

// Recommend returns one recommendation per category whose total exceeds its
// threshold, in the fixed category order. The result is empty, not nil, when
// nothing fires.
func (rs RuleSet) Recommend(b Breakdown) []Recommendation {
	recs := make([]Recommendation, 0, len(rs.rules))
	for _, r := range rs.rules {
		observed := b.Category(r.Category)
		if observed <= r.ThresholdKg {
			continue
		}
		recs = append(recs, Recommendation{
			Category:               r.Category,
			SuggestedAction:        r.Action,
			EstimatedImpactPercent: r.ImpactPercent,
			ThresholdKg:            r.ThresholdKg,
			ObservedKg:             observed,
		})
	}
	return recs
}

// Recommend applies DefaultRules to b.
func Recommend(b Breakdown) []Recommendation {
	return DefaultRules().Recommend(b)
}

func knownCategory(c Category) bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}
