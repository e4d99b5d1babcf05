package plans

import (
	"fmt"
	"strings"
)

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CHF": "CHF ",
	"CAD": "CA$",
	"AUD": "A$",
}

// FormatPrice renders a minor-unit amount as a whole-unit currency string
// with no fraction digits, e.g. FormatPrice(1000, "USD") == "$10".
// Catalog prices are whole units in practice; remainders round down.
func FormatPrice(price int64, currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		code = "USD"
	}
	symbol, ok := currencySymbols[code]
	if !ok {
		symbol = code + " "
	}
	return fmt.Sprintf("%s%d", symbol, price/100)
}
