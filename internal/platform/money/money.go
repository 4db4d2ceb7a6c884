// Package money provides currency code validation and display formatting.
// Quote and invoice amounts are computed unrounded; rounding happens here,
// at the presentation boundary only.
package money

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NormalizeCode upper-cases and validates an ISO 4217 currency code.
func NormalizeCode(code string) (string, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(code))
	unit, err := currency.ParseISO(trimmed)
	if err != nil {
		return "", fmt.Errorf("money: invalid currency code %q: %w", code, err)
	}
	return unit.String(), nil
}

// IsValidCode reports whether the supplied string is a known ISO 4217 code.
func IsValidCode(code string) bool {
	_, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	return err == nil
}

// Round2 rounds half away from zero to two decimal places.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// Format renders an amount with its currency symbol, e.g. "US$ 62.00".
// Unknown codes fall back to a plain "62.00 XXX" rendering.
func Format(amount float64, code string) string {
	normalized, err := NormalizeCode(code)
	if err != nil {
		return fmt.Sprintf("%.2f %s", Round2(amount), strings.ToUpper(strings.TrimSpace(code)))
	}
	unit := currency.MustParseISO(normalized)
	printer := message.NewPrinter(language.English)
	return printer.Sprint(currency.Symbol(unit.Amount(Round2(amount))))
}
