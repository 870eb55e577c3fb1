package parse

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// NUMBER EXTRACTION
// =============================================================================

// currencyTokens are the shekel markers that appear around amounts on
// statements, including the quote variants OCR-ish sources produce.
var currencyTokens = []string{"₪", "ש\"ח", "ש״ח", "שח", "NIS", "ILS"}

var (
	// europeanFormat matches 1.234,56 style amounts (period thousands,
	// comma decimal).
	europeanFormat = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})*,\d{1,2}$`)
	// numberRun matches a maximal digit run with embedded separators.
	numberRun = regexp.MustCompile(`\d[\d.,]*`)
	// hoursToken matches plain hours or clock-style H:MM.
	hoursToken = regexp.MustCompile(`\d+(?::\d{2})?(?:\.\d+)?`)
	// percentToken matches 6% / 6.5 % style values.
	percentToken = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
	nonNumeric   = regexp.MustCompile(`[^\d.]`)
)

// Amount parses a single monetary or numeric token. It strips currency
// markers, resolves thousands separators in both the standard (1,234.56) and
// European (1.234,56) conventions, and honors dash or parenthesis negatives.
func Amount(s string) (decimal.Decimal, bool) {
	cleaned := strings.TrimSpace(s)
	for _, token := range currencyTokens {
		cleaned = strings.ReplaceAll(cleaned, token, "")
	}
	cleaned = strings.TrimSpace(cleaned)

	negative := strings.HasPrefix(cleaned, "-") || strings.HasPrefix(cleaned, "(")
	cleaned = strings.Trim(cleaned, "-()")

	if europeanFormat.MatchString(cleaned) {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	} else {
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	cleaned = nonNumeric.ReplaceAllString(cleaned, "")
	cleaned = strings.Trim(cleaned, ".")
	if cleaned == "" {
		return decimal.Decimal{}, false
	}

	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, false
	}
	if negative {
		value = value.Neg()
	}
	return value, true
}

// FirstAmount finds the first parseable number inside free text.
func FirstAmount(s string) (decimal.Decimal, bool) {
	for _, run := range numberRun.FindAllString(s, -1) {
		if value, ok := Amount(run); ok {
			return value, true
		}
	}
	return decimal.Decimal{}, false
}

// LastAmount finds the last parseable number inside free text. Statement
// lines usually end with the value column.
func LastAmount(s string) (decimal.Decimal, bool) {
	runs := numberRun.FindAllString(s, -1)
	for i := len(runs) - 1; i >= 0; i-- {
		if value, ok := Amount(runs[i]); ok {
			return value, true
		}
	}
	return decimal.Decimal{}, false
}

// Hours parses an hours value, accepting clock notation (8:30 means 8.5).
func Hours(s string) (decimal.Decimal, bool) {
	token := hoursToken.FindString(s)
	if token == "" {
		return decimal.Decimal{}, false
	}
	if h, mm, ok := strings.Cut(token, ":"); ok {
		hours, err1 := decimal.NewFromString(h)
		minutes, err2 := decimal.NewFromString(mm)
		if err1 != nil || err2 != nil {
			return decimal.Decimal{}, false
		}
		return hours.Add(minutes.Div(decimal.NewFromInt(60))), true
	}
	return Amount(token)
}

// Percent parses a percentage and returns it as a fraction (6.5% -> 0.065).
func Percent(s string) (decimal.Decimal, bool) {
	m := percentToken.FindStringSubmatch(s)
	if m == nil {
		return decimal.Decimal{}, false
	}
	value, ok := Amount(m[1])
	if !ok {
		return decimal.Decimal{}, false
	}
	return value.Div(decimal.NewFromInt(100)), true
}
