package report

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// lineWidth is the banner width of the text renderer.
const lineWidth = 70

var hundred = decimal.NewFromInt(100)

// JSON renders the report with goccy/go-json. With indent set, output is
// two-space indented for files and terminals.
func JSON(r Report, indent bool) ([]byte, error) {
	if indent {
		return json.MarshalIndent(r, "", "  ")
	}
	return json.Marshal(r)
}

// Text renders the report as aligned plain text. Sections mirror the JSON
// layout: summary, breakdown by kind, per-statement details, trend, failures.
// Violations carry a severity marker: "!!" critical, "!" high, "*" medium,
// "-" low.
func Text(r Report) string {
	var b strings.Builder

	writeTitle(&b, "WAGE COMPLIANCE ANALYSIS REPORT")

	writeSection(&b, "SUMMARY")
	writeRow(&b, "Statements analyzed", fmt.Sprintf("%d", r.RecordCount))
	writeRow(&b, "Compliant", fmt.Sprintf("%d", r.CompliantCount))
	writeRow(&b, "With violations", fmt.Sprintf("%d", r.RecordCount-r.CompliantCount))
	if r.FailureCount > 0 {
		writeRow(&b, "Failed to process", fmt.Sprintf("%d", r.FailureCount))
	}
	writeRow(&b, "Total owed", r.TotalOwed.StringFixed(2))
	writeRow(&b, "Compliance rate", r.ComplianceRate.Mul(hundred).StringFixed(2)+"%")
	writeRow(&b, "Risk level", strings.ToUpper(r.RiskLevel))
	if len(r.PeriodsWithViolations) > 0 {
		b.WriteString("\nPeriods with violations:\n")
		for _, period := range r.PeriodsWithViolations {
			b.WriteString("  • " + period + "\n")
		}
	}

	if len(r.ViolationsByKind) > 0 {
		writeSection(&b, "VIOLATION BREAKDOWN")
		for _, kb := range r.ViolationsByKind {
			fmt.Fprintf(&b, "%-34s %3d  %14s\n", kb.Kind, kb.Count, kb.TotalOwed.StringFixed(2))
		}
	}

	if len(r.Records) > 0 {
		writeSection(&b, "STATEMENT DETAILS")
		for i, rec := range r.Records {
			writeRecord(&b, i+1, rec)
		}
	}

	if r.Trend != nil && len(r.Trend.Periods) > 1 {
		writeSection(&b, "TREND")
		fmt.Fprintf(&b, "Direction: %s\n", r.Trend.Direction)
		for _, pt := range r.Trend.Periods {
			fmt.Fprintf(&b, "  %-10s %14s  (%d statements)\n", pt.Period, pt.Owed.StringFixed(2), pt.Records)
		}
	}

	if len(r.Failures) > 0 {
		writeSection(&b, "PROCESSING FAILURES")
		for _, f := range r.Failures {
			fmt.Fprintf(&b, "  • record %d: %s\n", f.Index, f.Error)
		}
	}

	b.WriteString("\n" + strings.Repeat("=", lineWidth) + "\n")
	footer := "Generated " + r.GeneratedAt
	if r.Tool != "" {
		footer += " by " + r.Tool
		if r.Version != "" {
			footer += " v" + r.Version
		}
	}
	b.WriteString(footer + "\n")

	return b.String()
}

func writeTitle(b *strings.Builder, title string) {
	bar := strings.Repeat("=", lineWidth)
	pad := (lineWidth - len(title)) / 2
	if pad < 0 {
		pad = 0
	}
	b.WriteString(bar + "\n")
	b.WriteString(strings.Repeat(" ", pad) + title + "\n")
	b.WriteString(bar + "\n")
}

func writeSection(b *strings.Builder, name string) {
	b.WriteString("\n" + name + "\n")
	b.WriteString(strings.Repeat("-", 30) + "\n")
}

func writeRow(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "%-24s %s\n", label+":", value)
}

func writeRecord(b *strings.Builder, n int, rec RecordBlock) {
	who := rec.WorkerID
	if who == "" {
		who = "(unidentified)"
	}
	if rec.Compliant {
		fmt.Fprintf(b, "[%d] %s  %s  compliant\n", n, who, rec.Period)
		return
	}
	fmt.Fprintf(b, "[%d] %s  %s  owed %s\n", n, who, rec.Period, rec.TotalOwed.StringFixed(2))
	for _, v := range rec.Violations {
		fmt.Fprintf(b, "    %s %s: %s\n", severityMarker(v.Severity), v.Kind, v.Description)
		fmt.Fprintf(b, "       expected %s  actual %s  owed %s\n",
			v.Expected.StringFixed(2), v.Actual.StringFixed(2), v.AmountOwed.StringFixed(2))
		if v.LegalReference != "" {
			fmt.Fprintf(b, "       ref: %s\n", v.LegalReference)
		}
	}
	for _, note := range rec.Notes {
		fmt.Fprintf(b, "    .. %s\n", note)
	}
}

func severityMarker(severity string) string {
	switch severity {
	case "critical":
		return "!!"
	case "high":
		return " !"
	case "medium":
		return " *"
	default:
		return " -"
	}
}
