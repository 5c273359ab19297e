package ledger

import (
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Credits converts a whole-credit amount to a decimal.
func Credits(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}

// Format renders an amount as whole credits with thousands separators,
// e.g. "1,007,498".
func Format(d decimal.Decimal) string {
	return humanize.Comma(d.Round(0).IntPart())
}

// Cr renders an amount with the Imperial credit prefix, e.g. "Cr7,498".
func Cr(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-Cr" + Format(d.Neg())
	}
	return "Cr" + Format(d)
}
