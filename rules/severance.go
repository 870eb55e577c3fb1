package rules

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/compliance-engine/compliance"
	"github.com/warp/compliance-engine/law"
)

// =============================================================================
// SEVERANCE FUND
// =============================================================================

// SeveranceFund checks the monthly employer contribution to a severance fund
// under a Section 14 arrangement (8.33% of salary). Like the employer pension
// rule it fires only when the statement shows a contribution at all.
type SeveranceFund struct {
	cfg Config
}

func NewSeveranceFund(cfg Config) SeveranceFund { return SeveranceFund{cfg: cfg} }

var _ compliance.Rule = SeveranceFund{}

func (SeveranceFund) Meta() compliance.RuleMeta {
	return compliance.RuleMeta{
		Name:           "severance-fund",
		Description:    "Severance fund contribution, when shown, must be 8.33% of salary",
		Kind:           compliance.KindMissingSeveranceFund,
		Severity:       compliance.SeverityHigh,
		LegalReference: "Severance Pay Law, 1963 (Section 14)",
	}
}

func (SeveranceFund) Applicable(r compliance.WageRecord) bool {
	return r.GrossPay.IsPositive() && r.HasDeduction(compliance.DeductionSeveranceFund)
}

func (rule SeveranceFund) Evaluate(r compliance.WageRecord, min law.Minimum) ([]compliance.Violation, error) {
	expected := r.GrossPay.Mul(min.SeveranceFundRate).Round(2)
	actual := r.Deduction(compliance.DeductionSeveranceFund)

	floor := expected.Mul(decimal.NewFromInt(1).Sub(rule.cfg.SeveranceTolerance))
	if actual.GreaterThanOrEqual(floor) {
		return nil, nil
	}

	owed := expected.Sub(actual).Round(2)
	desc := fmt.Sprintf("severance fund contribution %s is below the required %s (8.33%% of gross); %s missing",
		actual.StringFixed(2), expected.StringFixed(2), owed.StringFixed(2))
	return []compliance.Violation{rule.Meta().Violation(expected, actual, owed, desc)}, nil
}
