// Package core provides the value types shared by the scoring engines and
// the money helpers used to round and render amounts.
package core

import (
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Round rounds v half away from zero to the given number of decimal places.
// NaN and infinities are returned unchanged.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// Round2 rounds a monetary value to cents.
func Round2(v float64) float64 { return Round(v, 2) }

// Round1 rounds a percentage to one decimal place.
func Round1(v float64) float64 { return Round(v, 1) }

// Clamp limits v to the closed interval [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// FormatKsh renders an amount with thousands separators and two decimals,
// prefixed with the currency: 1234.5 -> "Ksh 1,234.50".
func FormatKsh(v float64) string {
	return "Ksh " + formatAmount(v, "#,###.##")
}

// FormatKshWhole renders an amount rounded to whole shillings: "Ksh 90,000".
func FormatKshWhole(v float64) string {
	return "Ksh " + formatAmount(v, "#,###.")
}

func formatAmount(v float64, format string) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return humanize.FormatFloat(format, v)
}

// ParseAmount parses a user supplied amount such as "12000", "12,000.50"
// or "Ksh 4,000". Commas are thousands separators.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(s, "Ksh"), "KES"))
	s = strings.NewReplacer(",", "", "_", "").Replace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	v := d.InexactFloat64()
	if math.IsInf(v, 0) {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// Title upper-cases the first letter of every word. A Caser carries state,
// so one is built per call.
func Title(s string) string {
	return cases.Title(language.English).String(s)
}
