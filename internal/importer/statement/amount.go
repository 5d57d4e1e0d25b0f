package statement

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount parses a formatted amount string.
// European: "1.234,56" -> 1234.56, "-588,74" -> -588.74.
// Plain: "1,234.56" -> 1234.56.
func parseAmount(s string, f numberFormat) (decimal.Decimal, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), " ", "")

	switch f {
	case numberEuropean:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	case numberPlain:
		clean = strings.ReplaceAll(clean, ",", "")
	}

	return decimal.NewFromString(clean)
}
