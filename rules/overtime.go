package rules

import (
	"fmt"

	"github.com/warp/compliance-engine/compliance"
	"github.com/warp/compliance-engine/law"
)

// =============================================================================
// OVERTIME PAY
// =============================================================================

// Overtime prices the recorded overtime hours at the first-tier multiplier
// (125%) and compares against the overtime pay actually shown. Statements do
// not split overtime into daily tiers, so the first tier is the floor: hours
// past the daily second-tier threshold or on rest days would only raise it.
type Overtime struct {
	cfg Config
}

func NewOvertime(cfg Config) Overtime { return Overtime{cfg: cfg} }

var _ compliance.Rule = Overtime{}

func (Overtime) Meta() compliance.RuleMeta {
	return compliance.RuleMeta{
		Name:           "overtime",
		Description:    "Overtime hours must be paid at the statutory premium",
		Kind:           compliance.KindUnderpaidOvertime,
		Severity:       compliance.SeverityHigh,
		LegalReference: "Hours of Work and Rest Law, 1951",
	}
}

func (Overtime) Applicable(r compliance.WageRecord) bool {
	return r.OvertimeHours.IsPositive() &&
		(r.HourlyRate.IsPositive() || r.BasePay.IsPositive())
}

func (rule Overtime) Evaluate(r compliance.WageRecord, _ law.Minimum) ([]compliance.Violation, error) {
	rate, err := r.EffectiveHourlyRate()
	if err != nil {
		return nil, err
	}

	expected := rate.Mul(law.OvertimeFirstTierRate).Mul(r.OvertimeHours).Round(2)
	floor := expected.Mul(rule.cfg.OvertimeFactor)
	if r.OvertimePay.GreaterThanOrEqual(floor) {
		return nil, nil
	}

	owed := expected.Sub(r.OvertimePay).Round(2)
	desc := fmt.Sprintf("overtime pay %s for %s hours is below the 125%% premium %s; %s short",
		r.OvertimePay.StringFixed(2), r.OvertimeHours.String(),
		expected.StringFixed(2), owed.StringFixed(2))

	return []compliance.Violation{rule.Meta().Violation(expected, r.OvertimePay, owed, desc)}, nil
}
