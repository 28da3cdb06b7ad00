package billing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// normalizeCurrency upper-cases a provider currency code ("usd" -> "USD").
func normalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// formatAmountCents renders minor units as a 2-decimal string ("1999" ->
// "19.99"). Providers that sign over the amount require exactly this format.
func formatAmountCents(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

// parseDecimalAmount converts a locale-formatted decimal string ("19.99" or
// "19,99") to integer minor units, rounding value*100 to absorb float noise.
func parseDecimalAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	s = strings.ReplaceAll(s, ",", ".")
	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return int64(math.Round(value * 100)), nil
}
