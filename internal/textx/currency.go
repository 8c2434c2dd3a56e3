package textx

import (
	"fmt"
	"strings"

	"golang.org/x/text/currency"
)

// NormalizeCurrency validates a currency code and returns its upper-case
// form. A code is valid when it is exactly three ASCII letters; codes in
// the ISO-4217 table are canonicalized through currency.ParseISO, and
// well-formed codes outside the table pass through uppercased so imports
// carrying internal or regional codes are not rejected.
func NormalizeCurrency(raw string) (string, error) {
	code := strings.TrimSpace(raw)
	if len(code) != 3 || !isAlpha(code) {
		return "", fmt.Errorf("invalid currency code %q", raw)
	}
	code = strings.ToUpper(code)
	if unit, err := currency.ParseISO(code); err == nil {
		return unit.String(), nil
	}
	return code, nil
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
