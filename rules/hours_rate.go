package rules

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/compliance-engine/compliance"
	"github.com/warp/compliance-engine/law"
)

// =============================================================================
// HOURS x RATE CONSISTENCY
// =============================================================================

// HoursRateMatch cross-checks base pay against hours worked times the hourly
// rate. Underpayment inside the tolerance band is rounding noise; outside it,
// the difference is owed. Overpayment is reported with nothing owed, since it
// is not a debt to the worker but still worth a look.
type HoursRateMatch struct {
	cfg Config
}

func NewHoursRateMatch(cfg Config) HoursRateMatch { return HoursRateMatch{cfg: cfg} }

var _ compliance.Rule = HoursRateMatch{}

func (HoursRateMatch) Meta() compliance.RuleMeta {
	return compliance.RuleMeta{
		Name:           "hours-rate-match",
		Description:    "Base pay must be consistent with hours worked times hourly rate",
		Kind:           compliance.KindHoursRateMismatch,
		Severity:       compliance.SeverityHigh,
		LegalReference: "Wage Protection Law, 1958",
	}
}

func (HoursRateMatch) Applicable(r compliance.WageRecord) bool {
	return r.BasePay.IsPositive() && r.HourlyRate.IsPositive() && r.HoursWorked.IsPositive()
}

func (rule HoursRateMatch) Evaluate(r compliance.WageRecord, _ law.Minimum) ([]compliance.Violation, error) {
	expected := r.HoursWorked.Mul(r.HourlyRate).Round(2)
	diff := r.BasePay.Sub(expected)
	absDiff := diff.Abs()

	// Inside either band means consistent: the relative band scales with the
	// amount, the absolute guard keeps tiny payslips from flagging cents.
	guard := decimal.Max(expected.Mul(rule.cfg.HoursRateTolerance), rule.cfg.HoursRateAbsoluteGuard)
	if absDiff.LessThanOrEqual(guard) {
		return nil, nil
	}

	meta := rule.Meta()
	if diff.IsNegative() {
		owed := absDiff.Round(2)
		desc := fmt.Sprintf("base pay %s is %s below %s hours at rate %s (expected %s)",
			r.BasePay.StringFixed(2), owed.StringFixed(2),
			r.HoursWorked.String(), r.HourlyRate.StringFixed(2), expected.StringFixed(2))
		return []compliance.Violation{meta.Violation(expected, r.BasePay, owed, desc)}, nil
	}

	desc := fmt.Sprintf("base pay %s exceeds %s hours at rate %s (expected %s); overpayment, nothing owed",
		r.BasePay.StringFixed(2), r.HoursWorked.String(),
		r.HourlyRate.StringFixed(2), expected.StringFixed(2))
	return []compliance.Violation{meta.Violation(expected, r.BasePay, decimal.Zero, desc)}, nil
}
