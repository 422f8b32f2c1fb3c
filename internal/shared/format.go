package shared

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.English)

// FormatAmount renders a currency amount with grouping, e.g. 1,234.50.
func FormatAmount(v float64) string {
	return amountPrinter.Sprintf("%.2f", v)
}

// FormatCount renders an integer with grouping.
func FormatCount(v int) string {
	return amountPrinter.Sprintf("%d", v)
}
