package carbon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePeriodConvention(t *testing.T) {
	tests := []struct {
		name   string
		want   PeriodConvention
		wantOK bool
	}{
		{name: "", want: MonthlyPeriods(), wantOK: true},
		{name: "monthly", want: MonthlyPeriods(), wantOK: true},
		{name: "reference", want: ReferencePeriods(), wantOK: true},
		{name: "weekly", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePeriodConvention(tt.name)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPeriodConvention_Yearly(t *testing.T) {
	assert.Equal(t, 10.0, MonthlyPeriods().yearly(120))
	assert.Equal(t, 0.0, PeriodConvention{}.yearly(120))
	assert.InDelta(t, 43.3, MonthlyPeriods().weekly(10), delta)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.3, Round(1.25, 1))
	assert.Equal(t, -1.3, Round(-1.25, 1))
	assert.Equal(t, 2.0, Round(1.96, 1))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-0.5, 0, 1))
	assert.Equal(t, 1.0, Clamp(1.2, 0, 1))
	assert.Equal(t, 0.4, Clamp(0.4, 0, 1))
}
