package parse_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/compliance-engine/law"
	"github.com/warp/compliance-engine/parse"
)

func TestPeriodDate_Formats(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"Pay period: June 2024", law.Date(2024, time.June, 1)},
		{"Payslip Jun 2024", law.Date(2024, time.June, 1)},
		{"תלוש שכר יוני 2024", law.Date(2024, time.June, 1)},
		{"תקופה: מרץ 2023", law.Date(2023, time.March, 1)},
		{"period 06/2024", law.Date(2024, time.June, 1)},
		{"period 2024-06", law.Date(2024, time.June, 1)},
		{"date: 15/06/2024", law.Date(2024, time.June, 1)}, // day truncated
		{"date: 2024/06/15", law.Date(2024, time.June, 1)},
		{"for 6 2024", law.Date(2024, time.June, 1)},
		{"June 24 payslip", law.Date(2024, time.June, 1)}, // two-digit year
	}
	for _, tc := range cases {
		got, ok := parse.PeriodDate(tc.in)
		require.True(t, ok, "PeriodDate(%q) failed", tc.in)
		assert.True(t, got.Equal(tc.want), "PeriodDate(%q) = %v, want %v", tc.in, got, tc.want)
	}
}

func TestPeriodDate_Rejections(t *testing.T) {
	for _, in := range []string{
		"no date here",
		"month 13/2024",  // impossible month
		"June 1999 memo", // year outside the accepted range
		"",
	} {
		_, ok := parse.PeriodDate(in)
		assert.False(t, ok, "PeriodDate(%q) should fail", in)
	}
}
