// Package money owns the rounding and formatting policy for all monetary
// amounts. Rounding is half-away-from-zero at 2 decimal places and applied
// once per derived quantity, never chained across already-rounded partials.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Zero is decimal zero
var Zero = decimal.Zero

var displayPrinter = message.NewPrinter(language.German)

// FromFloat creates a decimal from a float without rounding. Rounding
// happens when an amount is derived, not when it enters the system.
func FromFloat(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// FromString parses a decimal from a string
func FromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// Round applies the house rounding policy: 2 decimal places,
// half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Mul multiplies two decimals and rounds the product once
func Mul(a, b decimal.Decimal) decimal.Decimal {
	return Round(a.Mul(b))
}

// RateFraction converts a percent rate into its fraction (19 -> 0.19),
// unrounded so the subsequent multiplication rounds exactly once.
func RateFraction(percent decimal.Decimal) decimal.Decimal {
	return percent.Div(decimal.NewFromInt(100))
}

// Sum sums a slice of decimals
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}

// ClampNonNegative returns zero for negative amounts. The compiler never
// fails a line over a bad quantity or price; it defaults the value instead.
func ClampNonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return Zero
	}
	return d
}

// ToXMLDecimal formats an amount for the machine-readable XML: exactly two
// decimal digits, period separator, no grouping.
func ToXMLDecimal(d decimal.Decimal) string {
	return Round(d).StringFixed(2)
}

// ToDisplayDecimal formats an amount for the cosmetic PDF in German style:
// comma decimal separator and period thousands separator. A nil amount
// formats as "0,00"; formatting never fails.
func ToDisplayDecimal(d *decimal.Decimal) string {
	if d == nil {
		return "0,00"
	}
	f, _ := Round(*d).Float64()
	return displayPrinter.Sprintf("%.2f", f)
}

// DisplayAmount is ToDisplayDecimal for a value (non-pointer) amount.
func DisplayAmount(d decimal.Decimal) string {
	return ToDisplayDecimal(&d)
}
