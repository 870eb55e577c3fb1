package rules

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/compliance-engine/compliance"
	"github.com/warp/compliance-engine/law"
)

// =============================================================================
// PENSION - employee side
// =============================================================================

// PensionContribution checks the mandatory employee pension deduction against
// the rate in effect for the period. A missing deduction owes the full
// expected amount; a deduction below the tolerance band owes the shortfall.
type PensionContribution struct {
	cfg Config
}

func NewPensionContribution(cfg Config) PensionContribution {
	return PensionContribution{cfg: cfg}
}

var _ compliance.Rule = PensionContribution{}

func (PensionContribution) Meta() compliance.RuleMeta {
	return compliance.RuleMeta{
		Name:           "pension-contribution",
		Description:    "Employee pension deduction must meet the mandatory rate",
		Kind:           compliance.KindMissingOrUnderpaidPension,
		Severity:       compliance.SeverityHigh,
		LegalReference: "Mandatory Pension Expansion Order, 2008",
	}
}

func (PensionContribution) Applicable(r compliance.WageRecord) bool {
	return r.GrossPay.IsPositive()
}

func (rule PensionContribution) Evaluate(r compliance.WageRecord, min law.Minimum) ([]compliance.Violation, error) {
	expected := r.GrossPay.Mul(min.EmployeePensionRate).Round(2)
	actual := r.Deduction(compliance.DeductionEmployeePension)
	meta := rule.Meta()

	if actual.IsZero() {
		desc := fmt.Sprintf("no pension deduction recorded; %s expected (%s%% of gross %s)",
			expected.StringFixed(2), ratePercent(min.EmployeePensionRate), r.GrossPay.StringFixed(2))
		return []compliance.Violation{meta.Violation(expected, actual, expected, desc)}, nil
	}

	floor := expected.Mul(decimal.NewFromInt(1).Sub(rule.cfg.PensionTolerance))
	if actual.GreaterThanOrEqual(floor) {
		return nil, nil
	}

	owed := expected.Sub(actual).Round(2)
	desc := fmt.Sprintf("pension deduction %s is below the expected %s; %s short",
		actual.StringFixed(2), expected.StringFixed(2), owed.StringFixed(2))
	return []compliance.Violation{meta.Violation(expected, actual, owed, desc)}, nil
}

// =============================================================================
// PENSION - employer side
// =============================================================================

// EmployerPension checks the employer's pension contribution when the
// statement shows one. Absence is not evidence of nonpayment (many statements
// simply omit employer-side lines), so unlike the employee rule this one
// fires only on an amount that is present and short. Informational severity:
// the shortfall sits in the worker's fund, not their pay.
type EmployerPension struct {
	cfg Config
}

func NewEmployerPension(cfg Config) EmployerPension { return EmployerPension{cfg: cfg} }

var _ compliance.Rule = EmployerPension{}

func (EmployerPension) Meta() compliance.RuleMeta {
	return compliance.RuleMeta{
		Name:           "employer-pension",
		Description:    "Employer pension contribution, when shown, must meet the mandatory rate",
		Kind:           compliance.KindUnderpaidEmployerPension,
		Severity:       compliance.SeverityMedium,
		LegalReference: "Mandatory Pension Expansion Order, 2008",
	}
}

func (EmployerPension) Applicable(r compliance.WageRecord) bool {
	return r.GrossPay.IsPositive() && r.HasDeduction(compliance.DeductionEmployerPension)
}

func (rule EmployerPension) Evaluate(r compliance.WageRecord, min law.Minimum) ([]compliance.Violation, error) {
	expected := r.GrossPay.Mul(min.EmployerPensionRate).Round(2)
	actual := r.Deduction(compliance.DeductionEmployerPension)

	floor := expected.Mul(decimal.NewFromInt(1).Sub(rule.cfg.PensionTolerance))
	if actual.GreaterThanOrEqual(floor) {
		return nil, nil
	}

	owed := expected.Sub(actual).Round(2)
	desc := fmt.Sprintf("employer pension contribution %s is below the expected %s; %s short",
		actual.StringFixed(2), expected.StringFixed(2), owed.StringFixed(2))
	return []compliance.Violation{rule.Meta().Violation(expected, actual, owed, desc)}, nil
}

// ratePercent renders a fraction as a percentage for descriptions (0.06 -> 6).
func ratePercent(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).String()
}
