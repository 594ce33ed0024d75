// internal/models/formatter.go
package models

import (
	"fmt"
	"math"
	"strings"
)

// FormatBRL renders a monetary value the way the UI displays it:
// "R$ 1.700,00" (dot thousands separator, comma decimals). Display only,
// no business-rule effect.
func FormatBRL(v float64) string {
	negative := v < 0
	cents := int64(math.Round(math.Abs(v) * 100))

	intPart := cents / 100
	fracPart := cents % 100

	digits := fmt.Sprintf("%d", intPart)
	var grouped strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(d)
	}

	sign := ""
	if negative {
		sign = "-"
	}
	return fmt.Sprintf("%sR$ %s,%02d", sign, grouped.String(), fracPart)
}

// FormatWageMultiple renders the minimum-wage ratio as a two-decimal
// comma-separated string, e.g. 0.37 -> "0,37".
func FormatWageMultiple(v float64) string {
	return strings.ReplaceAll(fmt.Sprintf("%.2f", v), ".", ",")
}
