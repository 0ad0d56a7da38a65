package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Round2 rounds half away from zero to two decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FormatMoney renders an amount with thousands separators, e.g. "QAR 1,234.50".
func FormatMoney(amount decimal.Decimal, currency string) string {
	fixed := amount.StringFixed(2)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}

	parts := strings.SplitN(fixed, ".", 2)
	integerPart := parts[0]

	var groups []string
	for i := len(integerPart); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		groups = append([]string{integerPart[start:i]}, groups...)
	}

	out := sign + strings.Join(groups, ",") + "." + parts[1]
	if currency == "" {
		return out
	}
	return currency + " " + out
}
