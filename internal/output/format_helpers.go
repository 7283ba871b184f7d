package output

import (
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var hundred = decimal.NewFromInt(100)

// FormatCurrency formats a decimal as USD with thousands grouping and 2 decimals.
// Kept here so it can be reused by multiple formatters and unit tested in isolation.
func FormatCurrency(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	p := message.NewPrinter(language.English)
	return sign + "$" + p.Sprintf("%.2f", rounded.InexactFloat64())
}

// FormatPercentage formats a decimal already in percent units with 2 decimals.
func FormatPercentage(amount decimal.Decimal) string { return amount.StringFixed(2) + "%" }

// FormatRate formats a fractional rate such as 0.22 as a percentage.
func FormatRate(rate decimal.Decimal) string { return FormatPercentage(rate.Mul(hundred)) }

func intToString(v int) string { return strconv.Itoa(v) }

func boolToString(v bool) string { return strconv.FormatBool(v) }
