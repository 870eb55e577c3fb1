package rules

import "github.com/shopspring/decimal"

// =============================================================================
// TOLERANCES
// =============================================================================

// Config carries the numeric tolerances the rules compare against. These are
// policy choices, not statute: the defaults absorb rounding noise on real
// statements, and a deployment may tighten or loosen them without touching
// rule logic.
type Config struct {
	// HoursRateTolerance is the relative band around hours*rate within which
	// base pay is considered consistent. Fraction (0.01 = 1%).
	HoursRateTolerance decimal.Decimal

	// HoursRateAbsoluteGuard suppresses mismatches at or below this many
	// currency units regardless of the relative band, so tiny payslips do
	// not flag cent-level rounding.
	HoursRateAbsoluteGuard decimal.Decimal

	// PensionTolerance is the relative shortfall band on the employee and
	// employer pension contributions. Fraction.
	PensionTolerance decimal.Decimal

	// InsuranceTolerance is the relative band on social-insurance and
	// health-tax deductions. Deliberately wide: those calculations depend on
	// factors a statement does not show.
	InsuranceTolerance decimal.Decimal

	// SeveranceTolerance is the relative band on the severance-fund
	// contribution. Fraction.
	SeveranceTolerance decimal.Decimal

	// OvertimeFactor scales expected overtime pay down before comparison;
	// actual pay at or above expected*factor passes.
	OvertimeFactor decimal.Decimal
}

// DefaultConfig returns the tolerances used in production.
func DefaultConfig() Config {
	return Config{
		HoursRateTolerance:     decimal.RequireFromString("0.01"),
		HoursRateAbsoluteGuard: decimal.RequireFromString("1"),
		PensionTolerance:       decimal.RequireFromString("0.005"),
		InsuranceTolerance:     decimal.RequireFromString("0.1"),
		SeveranceTolerance:     decimal.RequireFromString("0.01"),
		OvertimeFactor:         decimal.RequireFromString("0.95"),
	}
}
