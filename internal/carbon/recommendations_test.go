package carbon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommend_Thresholds(t *testing.T) {
	tests := []struct {
		name string
		b    Breakdown
		want []Category
	}{
		{
			name: "all below",
			b:    Breakdown{Transport: 50, Energy: 100, Food: 60, Waste: 5},
			want: []Category{},
		},
		{
			name: "exactly at thresholds does not fire",
			b:    Breakdown{Transport: 100, Energy: 150, Food: 80, Waste: 10},
			want: []Category{},
		},
		{
			name: "all above in fixed order",
			b:    Breakdown{Transport: 101, Energy: 151, Food: 81, Waste: 11},
			want: []Category{CategoryTransport, CategoryEnergy, CategoryFood, CategoryWaste},
		},
		{
			name: "only food and waste",
			b:    Breakdown{Food: 200, Waste: 30},
			want: []Category{CategoryFood, CategoryWaste},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := Recommend(tt.b)
			require.NotNil(t, recs)

			got := make([]Category, len(recs))
			for i, r := range recs {
				got[i] = r.Category
				assert.Greater(t, r.ObservedKg, r.ThresholdKg)
				assert.NotEmpty(t, r.SuggestedAction)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecommend_ReferenceScenario(t *testing.T) {
	b, err := NewEstimator(nil).Estimate(referenceScenario())
	require.NoError(t, err)

	recs := Recommend(b)
	require.Len(t, recs, 3)

	assert.Equal(t, Recommendation{
		Category:               CategoryTransport,
		SuggestedAction:        "Consider using public transport or cycling more often",
		EstimatedImpactPercent: DefaultTransportImpactPercent,
		ThresholdKg:            DefaultTransportThresholdKg,
		ObservedKg:             b.Transport,
	}, recs[0])
	assert.Equal(t, CategoryEnergy, recs[1].Category)
	assert.Equal(t, 40.0, recs[1].EstimatedImpactPercent)
	assert.Equal(t, CategoryFood, recs[2].Category)
	assert.Equal(t, 30.0, recs[2].EstimatedImpactPercent)
}

func TestNewRuleSet(t *testing.T) {
	rs, err := NewRuleSet(
		Rule{Category: CategoryWaste, ThresholdKg: 1, Action: "compost", ImpactPercent: 10},
		Rule{Category: CategoryTransport, ThresholdKg: 5, Action: "cycle", ImpactPercent: 20},
	)
	require.NoError(t, err)

	rules := rs.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, CategoryTransport, rules[0].Category, "rules are reordered by category")
	assert.Equal(t, CategoryWaste, rules[1].Category)

	recs := rs.Recommend(Breakdown{Transport: 6, Energy: 1000, Waste: 2})
	require.Len(t, recs, 2)
	assert.Equal(t, "cycle", recs[0].SuggestedAction)
	assert.Equal(t, "compost", recs[1].SuggestedAction)

	rules[0].ThresholdKg = 0
	assert.Equal(t, 5.0, rs.Rules()[0].ThresholdKg, "Rules returns a copy")
}

func TestNewRuleSet_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		rules []Rule
	}{
		{name: "unknown category", rules: []Rule{{Category: "water", ThresholdKg: 1}}},
		{name: "duplicate category", rules: []Rule{{Category: CategoryFood}, {Category: CategoryFood}}},
		{name: "negative threshold", rules: []Rule{{Category: CategoryFood, ThresholdKg: -1}}},
		{name: "impact above 100", rules: []Rule{{Category: CategoryFood, ImpactPercent: 120}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRuleSet(tt.rules...)
			assert.Error(t, err)
		})
	}
}

func TestDefaultRules(t *testing.T) {
	rules := DefaultRules().Rules()
	require.Len(t, rules, 4)
	for i, c := range Categories() {
		assert.Equal(t, c, rules[i].Category)
	}
}
