// Package textx holds the text primitives shared by the importer and the
// catalog services: monetary parsing, field sanitisation and currency code
// normalisation.
package textx

import (
	"fmt"
	"strings"
	"unicode"
)

// ParseMoney converts a human-entered amount into integer cents (smallest
// currency unit). Accepted input: digits, at most one decimal separator
// ('.' or ',', comma is normalised to a dot) and whitespace, which is
// stripped wherever it appears. The fractional part, when present, must be
// one or two digits; a single digit is right-padded ("12.5" means 12.50).
// Anything else is rejected. There is no locale handling beyond the two
// separator characters.
func ParseMoney(raw string) (int64, error) {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsSpace(r) {
			continue
		}
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == ',':
			b.WriteByte('.')
		default:
			return 0, fmt.Errorf("invalid character %q in amount %q", r, raw)
		}
	}
	s := b.String()
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
		if strings.IndexByte(frac, '.') >= 0 {
			return 0, fmt.Errorf("multiple decimal separators in amount %q", raw)
		}
		if len(frac) < 1 || len(frac) > 2 {
			return 0, fmt.Errorf("fractional part must be 1-2 digits in amount %q", raw)
		}
		if len(frac) == 1 {
			frac += "0"
		}
	} else {
		frac = "00"
	}
	if whole == "" {
		return 0, fmt.Errorf("missing whole part in amount %q", raw)
	}

	var cents int64
	for _, r := range whole + frac {
		d := int64(r - '0')
		if cents > (1<<63-1-d)/10 {
			return 0, fmt.Errorf("amount %q overflows", raw)
		}
		cents = cents*10 + d
	}
	return cents, nil
}
