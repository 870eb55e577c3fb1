package compliance_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/compliance-engine/compliance"
	"github.com/warp/compliance-engine/law"
)

// Note: validRecord and d() are defined in evaluator_test.go.

func TestValidate_MissingMandatoryFields(t *testing.T) {
	// GIVEN: Records each missing one mandatory field
	// WHEN: Validating
	// THEN: Each fails with ErrIncompleteRecord naming the field

	cases := []struct {
		field  string
		mutate func(*compliance.WageRecord)
	}{
		{"period_start", func(r *compliance.WageRecord) { r.PeriodStart = time.Time{} }},
		{"gross_pay", func(r *compliance.WageRecord) { r.GrossPay = decimal.Zero }},
		{"net_pay", func(r *compliance.WageRecord) { r.NetPay = decimal.Zero }},
	}
	for _, tc := range cases {
		rec := validRecord()
		tc.mutate(&rec)

		err := rec.Validate()
		if !errors.Is(err, compliance.ErrIncompleteRecord) {
			t.Errorf("%s: expected ErrIncompleteRecord, got %v", tc.field, err)
			continue
		}
		var invalid *compliance.InvalidRecordError
		if !errors.As(err, &invalid) || invalid.Field != tc.field {
			t.Errorf("%s: expected the error to name the field, got %v", tc.field, err)
		}
	}
}

func TestValidate_NegativeAmountsViolateInvariant(t *testing.T) {
	// GIVEN: A record with a negative deduction
	// WHEN: Validating
	// THEN: ErrInvariantViolation, record-fatal

	rec := validRecord()
	rec.Deductions[compliance.DeductionIncomeTax] = d("-50")

	err := rec.Validate()
	if !errors.Is(err, compliance.ErrInvariantViolation) {
		t.Fatalf("expected ErrInvariantViolation, got %v", err)
	}
	if !compliance.IsRecordFatal(err) {
		t.Error("expected a record-fatal error")
	}
}

func TestValidate_NetAboveGrossIsNotFatal(t *testing.T) {
	// GIVEN: Net pay above gross pay (a data-quality issue, rule territory)
	// WHEN: Validating
	// THEN: Validation passes; the data-quality rule reports it instead

	rec := validRecord()
	rec.NetPay = rec.GrossPay.Add(d("100"))

	if err := rec.Validate(); err != nil {
		t.Errorf("expected net > gross to pass validation, got %v", err)
	}
}

func TestEffectiveHourlyRate_StatedDerivedAndInsufficient(t *testing.T) {
	// GIVEN: Records with a stated rate, a derivable rate, and neither
	// WHEN: Resolving the effective hourly rate
	// THEN: Stated wins, derivation divides, zero hours fails

	rec := validRecord()
	rec.HourlyRate = d("35.50")
	rate, err := rec.EffectiveHourlyRate()
	if err != nil || !rate.Equal(d("35.50")) {
		t.Errorf("stated rate: expected 35.50, got %v (err %v)", rate, err)
	}

	rec = validRecord()
	rec.BasePay = d("5460")
	rec.HoursWorked = d("182")
	rate, err = rec.EffectiveHourlyRate()
	if err != nil || !rate.Equal(d("30")) {
		t.Errorf("derived rate: expected 30, got %v (err %v)", rate, err)
	}

	rec = validRecord()
	rec.HourlyRate = decimal.Zero
	rec.HoursWorked = decimal.Zero
	_, err = rec.EffectiveHourlyRate()
	if !errors.Is(err, compliance.ErrInsufficientData) {
		t.Errorf("zero hours: expected ErrInsufficientData, got %v", err)
	}
}

func TestPeriodKeyAndDeductionHelpers(t *testing.T) {
	rec := validRecord()
	rec.PeriodStart = law.Date(2024, time.November, 1)

	if rec.PeriodKey() != "2024-11" {
		t.Errorf("expected period key 2024-11, got %s", rec.PeriodKey())
	}
	if !rec.HasDeduction(compliance.DeductionEmployeePension) {
		t.Error("expected the employee-pension deduction to be present")
	}
	if rec.HasDeduction(compliance.DeductionHealthTax) {
		t.Error("expected no health-tax deduction")
	}
	if !rec.Deduction(compliance.DeductionHealthTax).IsZero() {
		t.Error("expected a zero amount for an absent deduction")
	}
	if !rec.TotalDeductions().Equal(d("360")) {
		t.Errorf("expected total deductions 360, got %v", rec.TotalDeductions())
	}
}
