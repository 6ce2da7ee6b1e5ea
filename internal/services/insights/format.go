package insights

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Brazilian Portuguese number formatting: "1.234,56".
var printer = message.NewPrinter(language.BrazilianPortuguese)

// FormatCurrency renders a value as "R$ 1.234,56".
func FormatCurrency(v decimal.Decimal) string {
	f, _ := v.Round(2).Float64()
	return printer.Sprintf("R$ %.2f", f)
}

// FormatPercent renders a fraction as a percentage with the given decimals,
// e.g. 0.125 with 1 decimal is "12,5%".
func FormatPercent(fraction decimal.Decimal, decimals int32) string {
	f, _ := fraction.Mul(decimal.NewFromInt(100)).Round(decimals).Float64()
	return printer.Sprintf(fmt.Sprintf("%%.%df%%%%", decimals), f)
}

// FormatCount renders an integer count with thousands grouping.
func FormatCount(v decimal.Decimal) string {
	return printer.Sprintf("%d", v.IntPart())
}

// FormatNumber renders a plain decimal with the given decimals.
func FormatNumber(v float64, decimals int) string {
	return printer.Sprintf(fmt.Sprintf("%%.%df", decimals), v)
}
