package greenops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

var english = NewFormatter(language.English)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{18248, "18,248"},
		{-1234567, "-1,234,567"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, english.FormatNumber(tt.in))
	}
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "1,234.57", english.FormatFloat(1234.567, 2))
	assert.Equal(t, "1,065.1", english.FormatFloat(1065.052865, 1))
	assert.Equal(t, "12.0", english.FormatFloat(12, 1))
	assert.Equal(t, "1,235", english.FormatFloat(1234.5, 0))
}

func TestFormatLarge(t *testing.T) {
	assert.Equal(t, "999,999", english.FormatLarge(999_999))
	assert.Equal(t, "~1.5 million", english.FormatLarge(1_500_000))
	assert.Equal(t, "~2.3 billion", english.FormatLarge(2_300_000_000))
}

func TestNewFormatterForLocale_Fallback(t *testing.T) {
	f := NewFormatterForLocale("not a locale!")
	assert.Equal(t, "18,248", f.FormatNumber(18248))
}

func TestNormalizeToKg(t *testing.T) {
	kg, err := NormalizeToKg(2, "LB")
	assert.NoError(t, err)
	assert.InDelta(t, 0.907184, kg, 1e-9)
	assert.True(t, IsRecognizedUnit("kgCO2e"))
	assert.False(t, IsRecognizedUnit("oz"))
}
