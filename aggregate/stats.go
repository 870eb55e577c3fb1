package aggregate

import (
	"github.com/shopspring/decimal"

	"github.com/warp/compliance-engine/compliance"
)

// =============================================================================
// DESCRIPTIVE STATISTICS
// =============================================================================

// Stats describes the violating subset of a batch: how bad the shortfalls
// are per affected record, and how the findings spread across severities.
type Stats struct {
	// ViolationCount is the total number of violations across all analyses.
	ViolationCount int
	// ViolatingRecords is how many records had at least one violation.
	ViolatingRecords int

	// MinOwed, MaxOwed and AverageOwed describe the owed amount per
	// violating record. Zero when nothing violates.
	MinOwed     decimal.Decimal
	MaxOwed     decimal.Decimal
	AverageOwed decimal.Decimal

	// AverageViolationsPerRecord is ViolationCount over all analyzed records,
	// rounded to two places.
	AverageViolationsPerRecord decimal.Decimal

	// CountBySeverity counts violations per severity across the batch.
	CountBySeverity map[compliance.Severity]int
}

// ComputeStats walks the analyses once and returns the descriptive numbers.
func ComputeStats(analyses []compliance.RecordAnalysis) Stats {
	s := Stats{
		MinOwed:                    decimal.Zero,
		MaxOwed:                    decimal.Zero,
		AverageOwed:                decimal.Zero,
		AverageViolationsPerRecord: decimal.Zero,
		CountBySeverity:            make(map[compliance.Severity]int),
	}

	sumOwed := decimal.Zero
	for _, an := range analyses {
		for _, v := range an.Violations {
			s.CountBySeverity[v.Severity]++
		}
		s.ViolationCount += len(an.Violations)

		if an.Compliant {
			continue
		}
		if s.ViolatingRecords == 0 || an.TotalOwed.LessThan(s.MinOwed) {
			s.MinOwed = an.TotalOwed
		}
		if an.TotalOwed.GreaterThan(s.MaxOwed) {
			s.MaxOwed = an.TotalOwed
		}
		sumOwed = sumOwed.Add(an.TotalOwed)
		s.ViolatingRecords++
	}

	if s.ViolatingRecords > 0 {
		s.AverageOwed = sumOwed.Div(decimal.NewFromInt(int64(s.ViolatingRecords))).Round(2)
	}
	if len(analyses) > 0 {
		s.AverageViolationsPerRecord = decimal.NewFromInt(int64(s.ViolationCount)).
			Div(decimal.NewFromInt(int64(len(analyses)))).Round(2)
	}
	return s
}
