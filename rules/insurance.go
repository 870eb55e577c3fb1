package rules

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/compliance-engine/compliance"
	"github.com/warp/compliance-engine/law"
)

// =============================================================================
// SOCIAL INSURANCE and HEALTH TAX
// =============================================================================
// Both deductions follow the same two-bracket arithmetic and the same
// cautious policy: they depend on factors a statement does not show (other
// income, exemptions), so only significant underpayment fires and
// overpayment is never a violation.

// SocialInsurance checks the social-insurance deduction, when shown, against
// the bracketed expectation for the period's year.
type SocialInsurance struct {
	cfg Config
}

func NewSocialInsurance(cfg Config) SocialInsurance { return SocialInsurance{cfg: cfg} }

var _ compliance.Rule = SocialInsurance{}

func (SocialInsurance) Meta() compliance.RuleMeta {
	return compliance.RuleMeta{
		Name:           "social-insurance",
		Description:    "Social insurance deduction, when shown, must be near the bracketed expectation",
		Kind:           compliance.KindSocialInsuranceMismatch,
		Severity:       compliance.SeverityMedium,
		LegalReference: "National Insurance Law (Consolidated Version), 1995",
	}
}

func (SocialInsurance) Applicable(r compliance.WageRecord) bool {
	return r.GrossPay.IsPositive() && r.HasDeduction(compliance.DeductionSocialInsurance)
}

func (rule SocialInsurance) Evaluate(r compliance.WageRecord, _ law.Minimum) ([]compliance.Violation, error) {
	expected := law.ExpectedSocialInsurance(r.GrossPay, r.PeriodStart)
	actual := r.Deduction(compliance.DeductionSocialInsurance)
	return contributionShortfall(rule.Meta(), rule.cfg.InsuranceTolerance, expected, actual, "social insurance")
}

// HealthTax checks the health-tax deduction, when shown, against the
// bracketed expectation for the period's year.
type HealthTax struct {
	cfg Config
}

func NewHealthTax(cfg Config) HealthTax { return HealthTax{cfg: cfg} }

var _ compliance.Rule = HealthTax{}

func (HealthTax) Meta() compliance.RuleMeta {
	return compliance.RuleMeta{
		Name:           "health-tax",
		Description:    "Health tax deduction, when shown, must be near the bracketed expectation",
		Kind:           compliance.KindHealthTaxMismatch,
		Severity:       compliance.SeverityMedium,
		LegalReference: "National Health Insurance Law, 1994",
	}
}

func (HealthTax) Applicable(r compliance.WageRecord) bool {
	return r.GrossPay.IsPositive() && r.HasDeduction(compliance.DeductionHealthTax)
}

func (rule HealthTax) Evaluate(r compliance.WageRecord, _ law.Minimum) ([]compliance.Violation, error) {
	expected := law.ExpectedHealthTax(r.GrossPay, r.PeriodStart)
	actual := r.Deduction(compliance.DeductionHealthTax)
	return contributionShortfall(rule.Meta(), rule.cfg.InsuranceTolerance, expected, actual, "health tax")
}

// contributionShortfall fires only when the actual deduction sits below the
// tolerance band. The estimate caveat stays in the description: these checks
// flag statements for review, they do not prove an underpayment.
func contributionShortfall(meta compliance.RuleMeta, tolerance, expected, actual decimal.Decimal, label string) ([]compliance.Violation, error) {
	floor := expected.Mul(decimal.NewFromInt(1).Sub(tolerance))
	if actual.GreaterThanOrEqual(floor) {
		return nil, nil
	}

	owed := expected.Sub(actual).Round(2)
	desc := fmt.Sprintf("%s deduction %s is significantly below the expected %s; %s difference (estimate, verify with a payroll accountant)",
		label, actual.StringFixed(2), expected.StringFixed(2), owed.StringFixed(2))
	return []compliance.Violation{meta.Violation(expected, actual, owed, desc)}, nil
}
