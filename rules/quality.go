package rules

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/compliance-engine/compliance"
	"github.com/warp/compliance-engine/law"
)

// =============================================================================
// DATA QUALITY
// =============================================================================

// DataQuality reports internal inconsistencies that are not wage shortfalls
// but must never pass silently, currently net pay exceeding gross pay.
// Nothing is owed; the point is that the statement itself cannot be right.
type DataQuality struct{}

func NewDataQuality() DataQuality { return DataQuality{} }

var _ compliance.Rule = DataQuality{}

func (DataQuality) Meta() compliance.RuleMeta {
	return compliance.RuleMeta{
		Name:        "data-quality",
		Description: "Statement figures must be internally consistent",
		Kind:        compliance.KindDataQuality,
		Severity:    compliance.SeverityMedium,
	}
}

func (DataQuality) Applicable(r compliance.WageRecord) bool {
	return r.GrossPay.IsPositive() && r.NetPay.IsPositive()
}

func (rule DataQuality) Evaluate(r compliance.WageRecord, _ law.Minimum) ([]compliance.Violation, error) {
	if r.NetPay.LessThanOrEqual(r.GrossPay) {
		return nil, nil
	}

	desc := fmt.Sprintf("net pay %s exceeds gross pay %s; the statement is internally inconsistent",
		r.NetPay.StringFixed(2), r.GrossPay.StringFixed(2))
	return []compliance.Violation{rule.Meta().Violation(r.GrossPay, r.NetPay, decimal.Zero, desc)}, nil
}
