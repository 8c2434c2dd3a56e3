package textx

import (
	"strings"
	"unicode"
)

// CleanInline normalises a single-line field: outer whitespace trimmed,
// runs of internal whitespace collapsed to one space, control characters
// dropped.
func CleanInline(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			space = true
		case unicode.IsControl(r):
			// drop
		default:
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CleanMultiline normalises a multi-line field (descriptions): each line is
// cleaned like an inline field, leading and trailing blank lines are
// trimmed, and runs of consecutive blank lines collapse to a single blank
// line. Non-blank lines keep their relative order verbatim.
func CleanMultiline(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	blankPending := false
	for _, line := range lines {
		cleaned := CleanInline(line)
		if cleaned == "" {
			blankPending = len(out) > 0
			continue
		}
		if blankPending {
			out = append(out, "")
			blankPending = false
		}
		out = append(out, cleaned)
	}
	return strings.Join(out, "\n")
}
