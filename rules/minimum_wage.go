package rules

import (
	"fmt"

	"github.com/warp/compliance-engine/compliance"
	"github.com/warp/compliance-engine/law"
)

// =============================================================================
// MINIMUM WAGE - hourly floor
// =============================================================================

// MinimumWage checks the effective hourly rate against the statutory hourly
// floor for the record's period. The most serious finding the engine makes.
type MinimumWage struct{}

func NewMinimumWage() MinimumWage { return MinimumWage{} }

var _ compliance.Rule = MinimumWage{}

func (MinimumWage) Meta() compliance.RuleMeta {
	return compliance.RuleMeta{
		Name:           "minimum-wage",
		Description:    "Hourly rate must meet the statutory hourly minimum",
		Kind:           compliance.KindBelowMinimumWage,
		Severity:       compliance.SeverityCritical,
		LegalReference: "Minimum Wage Law, 1987",
	}
}

// Applicable when the record carries anything an hourly rate can be read
// from. Zero hours is handled in Evaluate so the skip surfaces as a note.
func (MinimumWage) Applicable(r compliance.WageRecord) bool {
	return r.HourlyRate.IsPositive() || r.BasePay.IsPositive()
}

func (rule MinimumWage) Evaluate(r compliance.WageRecord, min law.Minimum) ([]compliance.Violation, error) {
	rate, err := r.EffectiveHourlyRate()
	if err != nil {
		return nil, err
	}
	if r.HoursWorked.IsZero() {
		// A stated rate below the floor cannot be priced without hours.
		return nil, &compliance.RuleDataError{Field: "hours_worked", Reason: "cannot price shortfall without hours"}
	}
	if rate.GreaterThanOrEqual(min.HourlyMinimum) {
		return nil, nil
	}

	owed := min.HourlyMinimum.Sub(rate).Mul(r.HoursWorked).Round(2)
	expected := min.HourlyMinimum.Mul(r.HoursWorked).Round(2)
	actual := rate.Mul(r.HoursWorked).Round(2)
	desc := fmt.Sprintf("hourly rate %s is below the legal minimum %s; %s short over %s hours",
		rate.Round(2).StringFixed(2), min.HourlyMinimum.StringFixed(2),
		owed.StringFixed(2), r.HoursWorked.String())

	return []compliance.Violation{rule.Meta().Violation(expected, actual, owed, desc)}, nil
}

// =============================================================================
// MONTHLY MINIMUM WAGE - proportional monthly floor
// =============================================================================

// MonthlyMinimumWage checks gross pay against the monthly floor scaled to the
// hours actually worked, catching statements where the hourly figures look
// fine but the month's total still falls short.
type MonthlyMinimumWage struct{}

func NewMonthlyMinimumWage() MonthlyMinimumWage { return MonthlyMinimumWage{} }

var _ compliance.Rule = MonthlyMinimumWage{}

func (MonthlyMinimumWage) Meta() compliance.RuleMeta {
	return compliance.RuleMeta{
		Name:           "monthly-minimum-wage",
		Description:    "Gross pay must meet the monthly minimum scaled to hours worked",
		Kind:           compliance.KindBelowMonthlyMinimum,
		Severity:       compliance.SeverityCritical,
		LegalReference: "Minimum Wage Law, 1987",
	}
}

func (MonthlyMinimumWage) Applicable(r compliance.WageRecord) bool {
	return r.GrossPay.IsPositive() && r.HoursWorked.IsPositive()
}

func (rule MonthlyMinimumWage) Evaluate(r compliance.WageRecord, min law.Minimum) ([]compliance.Violation, error) {
	expected := min.MonthlyMinimum.Mul(r.HoursWorked).Div(law.StandardMonthlyHours).Round(2)
	if r.GrossPay.GreaterThanOrEqual(expected) {
		return nil, nil
	}

	owed := expected.Sub(r.GrossPay).Round(2)
	desc := fmt.Sprintf("gross pay %s is below the proportional monthly minimum %s for %s hours",
		r.GrossPay.StringFixed(2), expected.StringFixed(2), r.HoursWorked.String())

	return []compliance.Violation{rule.Meta().Violation(expected, r.GrossPay, owed, desc)}, nil
}
