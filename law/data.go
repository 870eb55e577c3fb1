package law

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STATUTORY CONSTANTS
// =============================================================================

// Standard working time used to derive hourly and daily floors from the
// monthly minimum. The monthly divisor (182) and the work-days divisor
// (21.67) are the statutory conversion factors, not averages we invented.
var (
	StandardDailyHours       = decimal.RequireFromString("8.6")
	StandardWeeklyHours      = decimal.NewFromInt(43)
	StandardMonthlyHours     = decimal.NewFromInt(182)
	StandardWorkDaysPerMonth = decimal.RequireFromString("21.67")
)

// Overtime pay multipliers. The first two overtime hours in a day are paid at
// 125%; hours beyond that, and weekend or holiday hours, at 150%.
var (
	OvertimeFirstTierRate       = decimal.RequireFromString("1.25")
	OvertimeSecondTierRate      = decimal.RequireFromString("1.5")
	OvertimeFirstTierDailyHours = decimal.NewFromInt(2)
)

// DefaultSeveranceFundRate is the monthly employer contribution to a severance
// fund under a Section 14 arrangement: 8.33% of salary.
var DefaultSeveranceFundRate = decimal.RequireFromString("0.0833")

// =============================================================================
// BUILT-IN MINIMUM-WAGE HISTORY
// =============================================================================

// DefaultTable returns the built-in minimum-wage history, 2016 through the
// 2025 update. The national minimum is reviewed each January and April;
// reviews that left the amount unchanged keep their own entry so coverage
// dates stay explicit. Hourly and daily floors are derived from the monthly
// amount at construction (monthly/182 and monthly/21.67, rounded to cents).
//
// Each call builds a fresh table; callers hold and inject their own copy.
func DefaultTable() *Table {
	entries := []Minimum{
		entry(2016, time.January, "4650.00", "0.055", "0.06"),
		entry(2017, time.January, "4825.00", "0.06", "0.065"),
		entry(2017, time.July, "5000.00", "0.06", "0.065"),
		entry(2018, time.January, "5000.00", "0.06", "0.065"),
		entry(2018, time.April, "5000.00", "0.06", "0.065"),
		entry(2018, time.December, "5300.00", "0.06", "0.065"),
		entry(2019, time.January, "5300.00", "0.06", "0.065"),
		entry(2019, time.April, "5300.00", "0.06", "0.065"),
		entry(2020, time.January, "5300.00", "0.06", "0.065"),
		entry(2020, time.April, "5300.00", "0.06", "0.065"),
		entry(2021, time.January, "5300.00", "0.06", "0.065"),
		entry(2021, time.April, "5300.00", "0.06", "0.065"),
		entry(2022, time.January, "5300.00", "0.06", "0.065"),
		entry(2022, time.April, "5300.00", "0.06", "0.065"),
		entry(2023, time.January, "5300.00", "0.06", "0.065"),
		entry(2023, time.April, "5571.75", "0.06", "0.065"),
		entry(2024, time.January, "5571.75", "0.06", "0.065"),
		entry(2024, time.April, "5880.02", "0.06", "0.065"),
		entry(2025, time.January, "5880.02", "0.06", "0.065"),
		entry(2025, time.April, "6247.67", "0.06", "0.065"),
	}
	t, err := NewTable(entries)
	if err != nil {
		panic("law: built-in minimum-wage table invalid: " + err.Error())
	}
	return t
}

// entry builds one table row from the monthly amount, deriving the hourly and
// daily floors. Always the first of the month.
func entry(year int, month time.Month, monthly, employeeRate, employerRate string) Minimum {
	m := amt(monthly)
	return Minimum{
		EffectiveFrom:       Date(year, month, 1),
		MonthlyMinimum:      m,
		HourlyMinimum:       m.Div(StandardMonthlyHours).Round(2),
		DailyMinimum:        m.Div(StandardWorkDaysPerMonth).Round(2),
		EmployeePensionRate: amt(employeeRate),
		EmployerPensionRate: amt(employerRate),
		SeveranceFundRate:   DefaultSeveranceFundRate,
	}
}

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }
