package textx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanInline(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"  hello  ", "hello"},
		{"a   b\tc", "a b c"},
		{"tab\there", "tab here"},
		{"ctrl\x00char", "ctrlchar"},
		{"", ""},
		{"   ", ""},
		{"one", "one"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CleanInline(tc.in), "input %q", tc.in)
	}
}

func TestCleanMultiline(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"trims edge blank lines", "\n\nfirst\nsecond\n\n", "first\nsecond"},
		{"collapses blank runs", "a\n\n\n\nb", "a\n\nb"},
		{"cleans each line", "  a  b  \n\tc\t", "a b\nc"},
		{"windows line endings", "a\r\n\r\nb", "a\n\nb"},
		{"all blank", "\n \n\t\n", ""},
		{"single line", "just one", "just one"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CleanMultiline(tc.in))
		})
	}
}

func TestNormalizeCurrency(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"usd", "USD"},
		{" EUR ", "EUR"},
		// Any three-letter code is valid, listed in ISO-4217 or not.
		{"ABC", "ABC"},
		{"zzz", "ZZZ"},
		{"qqq", "QQQ"},
	}
	for _, tc := range cases {
		got, err := NormalizeCurrency(tc.in)
		assert.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}

	for _, in := range []string{"", "US", "USDX", "U5D", "12$"} {
		_, err := NormalizeCurrency(in)
		assert.Error(t, err, "input %q", in)
	}
}
