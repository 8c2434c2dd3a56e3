package textx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"12.5", 1250},
		{"12,50", 1250},
		{"12", 1200},
		{"0", 0},
		{"0.01", 1},
		{" 12.50 ", 1250},
		{"1 234.56", 123456},
		{"7,5", 750},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestParseMoneyRejects(t *testing.T) {
	for _, in := range []string{
		"12.555",
		"12.5.5",
		"abc",
		"12.",
		".5",
		"",
		"   ",
		"$12.50",
		"12-50",
	} {
		_, err := ParseMoney(in)
		assert.Error(t, err, "input %q", in)
	}
}
