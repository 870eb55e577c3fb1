package rules_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/warp/compliance-engine/compliance"
	"github.com/warp/compliance-engine/rules"
)

func TestOvertime_UnpaidHours_OwesFullPremium(t *testing.T) {
	// GIVEN: 10 overtime hours at rate 30 with no overtime pay shown
	// WHEN: Evaluating
	// THEN: The full 125% premium is owed: 30 * 1.25 * 10 = 375

	rec := juneRecord()
	rec.HourlyRate = d("30")
	rec.OvertimeHours = d("10")
	rec.OvertimePay = decimal.Zero

	v := evaluateOne(t, rules.NewOvertime(rules.DefaultConfig()), rec)

	assert.Equal(t, compliance.KindUnderpaidOvertime, v.Kind)
	assert.Equal(t, compliance.SeverityHigh, v.Severity)
	assert.True(t, v.Expected.Equal(d("375")), "expected %v", v.Expected)
	assert.True(t, v.AmountOwed.Equal(d("375")), "owed %v", v.AmountOwed)
}

func TestOvertime_NearPremium_NoViolation(t *testing.T) {
	// GIVEN: Overtime pay of 360 against a 375 premium (96% of expected)
	// WHEN: Evaluating with the default 0.95 factor
	// THEN: No violation

	rec := juneRecord()
	rec.HourlyRate = d("30")
	rec.OvertimeHours = d("10")
	rec.OvertimePay = d("360")

	evaluateNone(t, rules.NewOvertime(rules.DefaultConfig()), rec)
}

func TestOvertime_BelowFactor_OwesDifference(t *testing.T) {
	// GIVEN: Overtime pay of 300 against a 375 premium
	// WHEN: Evaluating
	// THEN: The 75 difference is owed

	rec := juneRecord()
	rec.HourlyRate = d("30")
	rec.OvertimeHours = d("10")
	rec.OvertimePay = d("300")

	v := evaluateOne(t, rules.NewOvertime(rules.DefaultConfig()), rec)
	assert.True(t, v.AmountOwed.Equal(d("75")), "owed %v", v.AmountOwed)
}

func TestOvertime_DerivedRate_UsedForPremium(t *testing.T) {
	// GIVEN: No stated rate; 5460 base over 182 hours derives rate 30
	// WHEN: 10 overtime hours are unpaid
	// THEN: The premium prices off the derived rate

	rec := juneRecord()
	rec.HourlyRate = decimal.Zero
	rec.BasePay = d("5460")
	rec.HoursWorked = d("182")
	rec.OvertimeHours = d("10")
	rec.OvertimePay = decimal.Zero

	v := evaluateOne(t, rules.NewOvertime(rules.DefaultConfig()), rec)
	assert.True(t, v.AmountOwed.Equal(d("375")), "owed %v", v.AmountOwed)
}

func TestOvertime_NoOvertimeHours_NotApplicable(t *testing.T) {
	rec := juneRecord()
	rec.OvertimeHours = decimal.Zero

	assert.False(t, rules.NewOvertime(rules.DefaultConfig()).Applicable(rec))
}
