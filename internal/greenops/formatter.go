package greenops

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders equivalencies with locale-aware digit grouping. It is
// safe for concurrent use.
type Formatter struct {
	printer *message.Printer
}

// NewFormatter returns a formatter for tag.
func NewFormatter(tag language.Tag) *Formatter {
	return &Formatter{printer: message.NewPrinter(tag)}
}

// NewFormatterForLocale parses a BCP 47 locale such as "de-DE". An unparsable
// locale falls back to English.
func NewFormatterForLocale(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return NewFormatter(tag)
}

// FormatNumber formats n with thousand separators, e.g. 18248 as "18,248".
func (f *Formatter) FormatNumber(n int64) string {
	return f.printer.Sprintf("%d", n)
}

// FormatFloat formats v with exactly precision fraction digits and thousand
// separators, e.g. 1234.567 at precision 2 as "1,234.57".
func (f *Formatter) FormatFloat(v float64, precision int) string {
	if precision <= 0 {
		return f.FormatNumber(int64(math.Round(v)))
	}
	return f.printer.Sprint(number.Decimal(v,
		number.MinFractionDigits(precision),
		number.MaxFractionDigits(precision)))
}

// FormatLarge abbreviates values of a million or more as "~X.X million" or
// "~X.X billion"; smaller values are rounded and grouped.
func (f *Formatter) FormatLarge(v float64) string {
	switch {
	case v >= BillionThreshold:
		return "~" + f.FormatFloat(v/BillionThreshold, 1) + " billion"
	case v >= LargeNumberThreshold:
		return "~" + f.FormatFloat(v/LargeNumberThreshold, 1) + " million"
	default:
		return f.FormatNumber(int64(math.Round(v)))
	}
}

func (f *Formatter) displayText(miles, phones string) string {
	return fmt.Sprintf("Equivalent to driving ~%s miles or charging ~%s smartphones", miles, phones)
}

func (f *Formatter) compactText(miles, phones string) string {
	return fmt.Sprintf("(≈ %s mi, %s phones)", miles, phones)
}
