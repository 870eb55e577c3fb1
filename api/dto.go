/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Records:
    WageRecordDTO (doubles as the request shape for evaluation)

  Analyses:
    AnalysisDTO, ViolationDTO, NoteDTO, MinimumDTO

  Batches:
    BatchRequest, BatchResponse, FailureDTO, SummaryDTO, StatsDTO, TrendDTO

  Service:
    InfoDTO, RuleDTO, RunDTO, TokenRequest, TokenResponse

MONEY:
  Every monetary field is decimal.Decimal end to end. Decimals marshal as
  quoted strings ("5880.02") and unmarshal from both strings and JSON
  numbers, so clients may send either.

SEE ALSO:
  - handlers.go: Uses these types
  - report/report.go: The file/CLI rendering of the same run outputs
*/
package api

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/compliance-engine/aggregate"
	"github.com/warp/compliance-engine/compliance"
	"github.com/warp/compliance-engine/law"
	"github.com/warp/compliance-engine/store/sqlite"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// WageRecordDTO is one worker's one-period pay data as it crosses the wire.
// PeriodStart uses YYYY-MM-DD; deduction keys follow the engine's kinds
// ("income-tax", "employee-pension", ...).
type WageRecordDTO struct {
	WorkerID      string                     `json:"worker_id,omitempty"`
	PeriodStart   string                     `json:"period_start"`
	BasePay       decimal.Decimal            `json:"base_pay"`
	HoursWorked   decimal.Decimal            `json:"hours_worked"`
	OvertimeHours decimal.Decimal            `json:"overtime_hours"`
	OvertimePay   decimal.Decimal            `json:"overtime_pay"`
	HourlyRate    decimal.Decimal            `json:"hourly_rate"`
	GrossPay      decimal.Decimal            `json:"gross_pay"`
	NetPay        decimal.Decimal            `json:"net_pay"`
	Deductions    map[string]decimal.Decimal `json:"deductions,omitempty"`
}

// AnalysisDTO is the evaluation outcome for one record.
type AnalysisDTO struct {
	WorkerID      string          `json:"worker_id,omitempty"`
	Period        string          `json:"period"`
	Compliant     bool            `json:"compliant"`
	WorstSeverity string          `json:"worst_severity,omitempty"`
	TotalOwed     decimal.Decimal `json:"total_owed"`
	Minimum       MinimumDTO      `json:"minimum"`
	Violations    []ViolationDTO  `json:"violations,omitempty"`
	Notes         []NoteDTO       `json:"notes,omitempty"`
}

// ViolationDTO is one rule finding.
type ViolationDTO struct {
	Kind           string          `json:"kind"`
	Severity       string          `json:"severity"`
	Rule           string          `json:"rule"`
	Expected       decimal.Decimal `json:"expected"`
	Actual         decimal.Decimal `json:"actual"`
	AmountOwed     decimal.Decimal `json:"amount_owed"`
	Description    string          `json:"description"`
	Locale         string          `json:"locale"`
	LegalReference string          `json:"legal_reference,omitempty"`
}

// NoteDTO explains why a rule contributed nothing for a record.
type NoteDTO struct {
	Rule   string `json:"rule"`
	Reason string `json:"reason"`
}

// MinimumDTO is the statutory floor set applied to a record, or returned
// from a table lookup.
type MinimumDTO struct {
	EffectiveFrom       string          `json:"effective_from"`
	MonthlyMinimum      decimal.Decimal `json:"monthly_minimum"`
	HourlyMinimum       decimal.Decimal `json:"hourly_minimum"`
	DailyMinimum        decimal.Decimal `json:"daily_minimum"`
	EmployeePensionRate decimal.Decimal `json:"employee_pension_rate"`
	EmployerPensionRate decimal.Decimal `json:"employer_pension_rate"`
	SeveranceFundRate   decimal.Decimal `json:"severance_fund_rate"`
}

// BatchRequest submits several records for one evaluation run. Workers
// bounds the evaluation fan-out; zero means the server default.
type BatchRequest struct {
	Records []WageRecordDTO `json:"records"`
	Workers int             `json:"workers,omitempty"`
}

// BatchResponse is the full outcome of one batch run.
type BatchResponse struct {
	RunID    string        `json:"run_id"`
	Analyses []AnalysisDTO `json:"analyses"`
	Failures []FailureDTO  `json:"failures,omitempty"`
	Summary  SummaryDTO    `json:"summary"`
	Stats    StatsDTO      `json:"stats"`
	Trend    TrendDTO      `json:"trend"`
}

// FailureDTO pairs a failed record's input position with its error.
type FailureDTO struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// SummaryDTO is the cross-record aggregation of a batch.
type SummaryDTO struct {
	RecordCount           int                        `json:"record_count"`
	CompliantCount        int                        `json:"compliant_count"`
	FailureCount          int                        `json:"failure_count"`
	TotalOwed             decimal.Decimal            `json:"total_owed"`
	ComplianceRate        decimal.Decimal            `json:"compliance_rate"`
	RiskLevel             string                     `json:"risk_level"`
	PeriodsWithViolations []string                   `json:"periods_with_violations,omitempty"`
	ViolationCountsByKind map[string]int             `json:"violation_counts_by_kind,omitempty"`
	ViolationTotalsByKind map[string]decimal.Decimal `json:"violation_totals_by_kind,omitempty"`
}

// StatsDTO describes the violating subset of a batch.
type StatsDTO struct {
	ViolationCount             int             `json:"violation_count"`
	ViolatingRecords           int             `json:"violating_records"`
	MinOwed                    decimal.Decimal `json:"min_owed"`
	MaxOwed                    decimal.Decimal `json:"max_owed"`
	AverageOwed                decimal.Decimal `json:"average_owed"`
	AverageViolationsPerRecord decimal.Decimal `json:"average_violations_per_record"`
	CountBySeverity            map[string]int  `json:"count_by_severity,omitempty"`
}

// TrendDTO is the per-period owed series with its direction call.
type TrendDTO struct {
	Direction string           `json:"direction"`
	Periods   []PeriodTotalDTO `json:"periods,omitempty"`
}

// PeriodTotalDTO is one period's owed total.
type PeriodTotalDTO struct {
	Period  string          `json:"period"`
	Owed    decimal.Decimal `json:"owed"`
	Records int             `json:"records"`
}

// AnalyzeTextRequest carries raw payslip text.
type AnalyzeTextRequest struct {
	Text string `json:"text"`
}

// AnalyzeTextResponse returns the parsed record next to its analysis so
// callers can audit what the parser understood.
type AnalyzeTextResponse struct {
	Record   WageRecordDTO `json:"record"`
	Analysis AnalysisDTO   `json:"analysis"`
}

// RuleDTO describes one registered compliance check.
type RuleDTO struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	Kind           string `json:"kind"`
	Severity       string `json:"severity"`
	LegalReference string `json:"legal_reference,omitempty"`
}

// RunDTO is one evaluation run from the run log.
type RunDTO struct {
	ID             string          `json:"id"`
	StartedAt      string          `json:"started_at"`
	FinishedAt     string          `json:"finished_at"`
	Source         string          `json:"source"`
	RecordCount    int             `json:"record_count"`
	CompliantCount int             `json:"compliant_count"`
	FailureCount   int             `json:"failure_count"`
	ViolationCount int             `json:"violation_count"`
	TotalOwed      decimal.Decimal `json:"total_owed"`
	ComplianceRate decimal.Decimal `json:"compliance_rate"`
	RiskLevel      string          `json:"risk_level"`
}

// InfoDTO is the service self-description.
type InfoDTO struct {
	Service   string          `json:"service"`
	Version   string          `json:"version"`
	RuleCount int             `json:"rule_count"`
	Minimums  MinimumsInfoDTO `json:"minimums"`
}

// MinimumsInfoDTO summarizes the active legal-minimums table.
type MinimumsInfoDTO struct {
	Entries           int    `json:"entries"`
	EarliestEffective string `json:"earliest_effective"`
	LatestEffective   string `json:"latest_effective"`
	FetchedAt         string `json:"fetched_at,omitempty"`
}

// TokenRequest is the client-credential exchange body.
type TokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// TokenResponse carries an issued bearer token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

// toRecord converts the wire shape to the engine's record. An unparseable
// period_start is a malformed request; an absent one is left zero so the
// engine reports it as record-fatal.
func (dto WageRecordDTO) toRecord() (compliance.WageRecord, error) {
	rec := compliance.WageRecord{
		WorkerID:      dto.WorkerID,
		BasePay:       dto.BasePay,
		HoursWorked:   dto.HoursWorked,
		OvertimeHours: dto.OvertimeHours,
		OvertimePay:   dto.OvertimePay,
		HourlyRate:    dto.HourlyRate,
		GrossPay:      dto.GrossPay,
		NetPay:        dto.NetPay,
	}

	if dto.PeriodStart != "" {
		start, err := time.Parse("2006-01-02", dto.PeriodStart)
		if err != nil {
			return compliance.WageRecord{}, fmt.Errorf("invalid period_start %q (use YYYY-MM-DD): %w", dto.PeriodStart, err)
		}
		rec.PeriodStart = start
	}

	if len(dto.Deductions) > 0 {
		rec.Deductions = make(map[compliance.DeductionKind]decimal.Decimal, len(dto.Deductions))
		for kind, amount := range dto.Deductions {
			rec.Deductions[compliance.DeductionKind(kind)] = amount
		}
	}
	return rec, nil
}

func toRecordDTO(rec compliance.WageRecord) WageRecordDTO {
	dto := WageRecordDTO{
		WorkerID:      rec.WorkerID,
		BasePay:       rec.BasePay,
		HoursWorked:   rec.HoursWorked,
		OvertimeHours: rec.OvertimeHours,
		OvertimePay:   rec.OvertimePay,
		HourlyRate:    rec.HourlyRate,
		GrossPay:      rec.GrossPay,
		NetPay:        rec.NetPay,
	}
	if !rec.PeriodStart.IsZero() {
		dto.PeriodStart = rec.PeriodStart.Format("2006-01-02")
	}
	if len(rec.Deductions) > 0 {
		dto.Deductions = make(map[string]decimal.Decimal, len(rec.Deductions))
		for kind, amount := range rec.Deductions {
			dto.Deductions[string(kind)] = amount
		}
	}
	return dto
}

func toAnalysisDTO(a compliance.RecordAnalysis) AnalysisDTO {
	dto := AnalysisDTO{
		WorkerID:  a.Record.WorkerID,
		Period:    a.Record.PeriodKey(),
		Compliant: a.Compliant,
		TotalOwed: a.TotalOwed,
		Minimum:   toMinimumDTO(a.Minimum),
	}
	if !a.Compliant {
		dto.WorstSeverity = string(a.WorstSeverity())
	}
	for _, v := range a.Violations {
		dto.Violations = append(dto.Violations, toViolationDTO(v))
	}
	for _, n := range a.Notes {
		dto.Notes = append(dto.Notes, NoteDTO{Rule: n.Rule, Reason: n.Reason})
	}
	return dto
}

func toAnalysisDTOs(analyses []compliance.RecordAnalysis) []AnalysisDTO {
	dtos := make([]AnalysisDTO, len(analyses))
	for i, a := range analyses {
		dtos[i] = toAnalysisDTO(a)
	}
	return dtos
}

func toViolationDTO(v compliance.Violation) ViolationDTO {
	return ViolationDTO{
		Kind:           string(v.Kind),
		Severity:       string(v.Severity),
		Rule:           v.Rule,
		Expected:       v.Expected,
		Actual:         v.Actual,
		AmountOwed:     v.AmountOwed,
		Description:    v.Description,
		Locale:         v.Locale,
		LegalReference: v.LegalReference,
	}
}

func toMinimumDTO(m law.Minimum) MinimumDTO {
	return MinimumDTO{
		EffectiveFrom:       m.EffectiveFrom.Format("2006-01-02"),
		MonthlyMinimum:      m.MonthlyMinimum,
		HourlyMinimum:       m.HourlyMinimum,
		DailyMinimum:        m.DailyMinimum,
		EmployeePensionRate: m.EmployeePensionRate,
		EmployerPensionRate: m.EmployerPensionRate,
		SeveranceFundRate:   m.SeveranceFundRate,
	}
}

func toFailureDTOs(failures []compliance.BatchFailure) []FailureDTO {
	if len(failures) == 0 {
		return nil
	}
	dtos := make([]FailureDTO, len(failures))
	for i, f := range failures {
		dtos[i] = FailureDTO{Index: f.Index, Error: f.Err.Error()}
	}
	return dtos
}

func toSummaryDTO(s aggregate.Summary) SummaryDTO {
	dto := SummaryDTO{
		RecordCount:           s.RecordCount,
		CompliantCount:        s.CompliantCount,
		FailureCount:          s.FailureCount,
		TotalOwed:             s.TotalOwed,
		ComplianceRate:        s.ComplianceRate,
		RiskLevel:             string(s.RiskLevel),
		PeriodsWithViolations: s.PeriodsWithViolations,
	}
	if len(s.ViolationCountsByKind) > 0 {
		dto.ViolationCountsByKind = make(map[string]int, len(s.ViolationCountsByKind))
		for kind, n := range s.ViolationCountsByKind {
			dto.ViolationCountsByKind[string(kind)] = n
		}
	}
	if len(s.ViolationTotalsByKind) > 0 {
		dto.ViolationTotalsByKind = make(map[string]decimal.Decimal, len(s.ViolationTotalsByKind))
		for kind, owed := range s.ViolationTotalsByKind {
			dto.ViolationTotalsByKind[string(kind)] = owed
		}
	}
	return dto
}

func toStatsDTO(s aggregate.Stats) StatsDTO {
	dto := StatsDTO{
		ViolationCount:             s.ViolationCount,
		ViolatingRecords:           s.ViolatingRecords,
		MinOwed:                    s.MinOwed,
		MaxOwed:                    s.MaxOwed,
		AverageOwed:                s.AverageOwed,
		AverageViolationsPerRecord: s.AverageViolationsPerRecord,
	}
	if len(s.CountBySeverity) > 0 {
		dto.CountBySeverity = make(map[string]int, len(s.CountBySeverity))
		for severity, n := range s.CountBySeverity {
			dto.CountBySeverity[string(severity)] = n
		}
	}
	return dto
}

func toTrendDTO(tr aggregate.Trend) TrendDTO {
	dto := TrendDTO{Direction: string(tr.Direction)}
	for _, p := range tr.Periods {
		dto.Periods = append(dto.Periods, PeriodTotalDTO{
			Period:  p.Period,
			Owed:    p.Owed,
			Records: p.Records,
		})
	}
	return dto
}

func toRunDTO(run sqlite.RunRecord) RunDTO {
	return RunDTO{
		ID:             run.ID,
		StartedAt:      run.StartedAt.UTC().Format(time.RFC3339),
		FinishedAt:     run.FinishedAt.UTC().Format(time.RFC3339),
		Source:         run.Source,
		RecordCount:    run.RecordCount,
		CompliantCount: run.CompliantCount,
		FailureCount:   run.FailureCount,
		ViolationCount: run.ViolationCount,
		TotalOwed:      run.TotalOwed,
		ComplianceRate: run.ComplianceRate,
		RiskLevel:      run.RiskLevel,
	}
}

func toRunDTOs(runs []sqlite.RunRecord) []RunDTO {
	dtos := make([]RunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toRunDTO(run)
	}
	return dtos
}
