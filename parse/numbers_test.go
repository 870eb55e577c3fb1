package parse_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/compliance-engine/parse"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAmount_StatementFormats(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"5,880.02", "5880.02"},
		{"₪5,880.02", "5880.02"},
		{"300 ש\"ח", "300"},
		{"45.5 ש״ח", "45.5"},
		{"NIS 1,234", "1234"},
		{"5.880,02", "5880.02"}, // European separators
		{"1.234.567,89", "1234567.89"},
		{"-45.5", "-45.5"},
		{"(300)", "-300"},
		{"182", "182"},
	}
	for _, tc := range cases {
		got, ok := parse.Amount(tc.in)
		require.True(t, ok, "Amount(%q) failed", tc.in)
		assert.True(t, got.Equal(d(tc.want)), "Amount(%q) = %v, want %s", tc.in, got, tc.want)
	}
}

func TestAmount_Garbage(t *testing.T) {
	for _, in := range []string{"", "   ", "no numbers here", "ש\"ח"} {
		_, ok := parse.Amount(in)
		assert.False(t, ok, "Amount(%q) should fail", in)
	}
}

func TestFirstAndLastAmount(t *testing.T) {
	first, ok := parse.FirstAmount("rate 30.00 over 182 hours")
	require.True(t, ok)
	assert.True(t, first.Equal(d("30.00")), "first = %v", first)

	last, ok := parse.LastAmount("rate 30.00 over 182 hours")
	require.True(t, ok)
	assert.True(t, last.Equal(d("182")), "last = %v", last)
}

func TestHours_ClockNotation(t *testing.T) {
	h, ok := parse.Hours("8:30")
	require.True(t, ok)
	assert.True(t, h.Equal(d("8.5")), "hours = %v", h)

	h, ok = parse.Hours(": 182")
	require.True(t, ok)
	assert.True(t, h.Equal(d("182")), "hours = %v", h)

	_, ok = parse.Hours("none")
	assert.False(t, ok)
}

func TestPercent_NormalizesToFraction(t *testing.T) {
	p, ok := parse.Percent("6.5%")
	require.True(t, ok)
	assert.True(t, p.Equal(d("0.065")), "percent = %v", p)

	p, ok = parse.Percent("rate: 6 %")
	require.True(t, ok)
	assert.True(t, p.Equal(d("0.06")), "percent = %v", p)

	_, ok = parse.Percent("6.5")
	assert.False(t, ok, "bare number is not a percentage")
}
