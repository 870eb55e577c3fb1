package law

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CONTRIBUTION BRACKETS - social insurance and health tax
// =============================================================================

// ContributionSchedule is a two-bracket employee contribution scheme for one
// year: a reduced rate up to LowerCeiling (60% of the average wage), the full
// rate above it, and nothing past UpperCeiling (maximum insurable income).
// Amounts are monthly; rates are fractions.
type ContributionSchedule struct {
	Year         int
	LowerCeiling decimal.Decimal
	UpperCeiling decimal.Decimal
	LowerRate    decimal.Decimal
	UpperRate    decimal.Decimal
}

// Sorted ascending by year. Years after the last entry use the last entry;
// years before the first use the first (contribution checks only run when the
// deduction actually appears on a record, so early periods are rare and the
// 10% rule tolerance absorbs small schedule drift).
var socialInsuranceSchedules = []ContributionSchedule{
	{Year: 2023, LowerCeiling: amt("6331"), UpperCeiling: amt("45075"), LowerRate: amt("0.004"), UpperRate: amt("0.07")},
	{Year: 2024, LowerCeiling: amt("7122"), UpperCeiling: amt("47465"), LowerRate: amt("0.004"), UpperRate: amt("0.07")},
	{Year: 2025, LowerCeiling: amt("7522"), UpperCeiling: amt("50695"), LowerRate: amt("0.004"), UpperRate: amt("0.07")},
}

var healthTaxSchedules = []ContributionSchedule{
	{Year: 2023, LowerCeiling: amt("6331"), UpperCeiling: amt("45075"), LowerRate: amt("0.031"), UpperRate: amt("0.05")},
	{Year: 2024, LowerCeiling: amt("7122"), UpperCeiling: amt("47465"), LowerRate: amt("0.031"), UpperRate: amt("0.05")},
	{Year: 2025, LowerCeiling: amt("7522"), UpperCeiling: amt("50695"), LowerRate: amt("0.031"), UpperRate: amt("0.05")},
}

// SocialInsuranceSchedule returns the schedule applicable to the date's year.
func SocialInsuranceSchedule(date time.Time) ContributionSchedule {
	return scheduleFor(socialInsuranceSchedules, date.Year())
}

// HealthTaxSchedule returns the schedule applicable to the date's year.
func HealthTaxSchedule(date time.Time) ContributionSchedule {
	return scheduleFor(healthTaxSchedules, date.Year())
}

// ExpectedSocialInsurance computes the employee social-insurance contribution
// due on a monthly gross, rounded to cents.
func ExpectedSocialInsurance(gross decimal.Decimal, date time.Time) decimal.Decimal {
	return SocialInsuranceSchedule(date).Expected(gross)
}

// ExpectedHealthTax computes the employee health-tax contribution due on a
// monthly gross, rounded to cents.
func ExpectedHealthTax(gross decimal.Decimal, date time.Time) decimal.Decimal {
	return HealthTaxSchedule(date).Expected(gross)
}

// Expected applies the two brackets to a monthly gross. Income above the
// upper ceiling is not insurable and contributes nothing.
func (s ContributionSchedule) Expected(gross decimal.Decimal) decimal.Decimal {
	if gross.LessThanOrEqual(s.LowerCeiling) {
		return gross.Mul(s.LowerRate).Round(2)
	}
	insurable := decimal.Min(gross, s.UpperCeiling)
	lowerPortion := s.LowerCeiling.Mul(s.LowerRate)
	upperPortion := insurable.Sub(s.LowerCeiling).Mul(s.UpperRate)
	return lowerPortion.Add(upperPortion).Round(2)
}

func scheduleFor(schedules []ContributionSchedule, year int) ContributionSchedule {
	best := schedules[0]
	for _, s := range schedules {
		if s.Year > year {
			break
		}
		best = s
	}
	return best
}
