// Package rules implements the compliance checks the engine ships with.
// Each rule is a pure function of (record, legal minimum) behind the
// compliance.Rule interface; tolerances come from Config so policy can move
// without touching rule logic.
package rules

import "github.com/warp/compliance-engine/compliance"

// DefaultRegistry returns the production rule set in its fixed evaluation
// order. The order is part of the engine's contract: violation sequences are
// deterministic across runs.
func DefaultRegistry(cfg Config) *compliance.Registry {
	return compliance.NewRegistry(
		NewMinimumWage(),
		NewMonthlyMinimumWage(),
		NewHoursRateMatch(cfg),
		NewOvertime(cfg),
		NewPensionContribution(cfg),
		NewEmployerPension(cfg),
		NewSocialInsurance(cfg),
		NewHealthTax(cfg),
		NewSeveranceFund(cfg),
		NewDataQuality(),
	)
}
