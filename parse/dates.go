package parse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/warp/compliance-engine/law"
)

// =============================================================================
// PERIOD DATE EXTRACTION
// =============================================================================
// Statements rarely agree on a date format. The strategies below run in
// order, most specific first, and every hit resolves to the first day of the
// period's month.

var englishMonths = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sept": time.September, "sep": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

var hebrewMonths = map[string]time.Month{
	"ינואר":   time.January,
	"פברואר":  time.February,
	"מרץ":     time.March,
	"מרס":     time.March,
	"אפריל":   time.April,
	"מאי":     time.May,
	"יוני":    time.June,
	"יולי":    time.July,
	"אוגוסט":  time.August,
	"ספטמבר":  time.September,
	"אוקטובר": time.October,
	"נובמבר":  time.November,
	"דצמבר":   time.December,
}

var (
	fullDatePattern    = regexp.MustCompile(`(\d{1,2})[/\-](\d{1,2})[/\-](\d{4})`)
	isoDatePattern     = regexp.MustCompile(`(\d{4})[/\-](\d{1,2})[/\-](\d{1,2})`)
	monthYearPattern   = regexp.MustCompile(`(\d{1,2})[/\-](\d{4})`)
	yearMonthPattern   = regexp.MustCompile(`(\d{4})[/\-](\d{1,2})`)
	spacedMonthPattern = regexp.MustCompile(`\b(\d{1,2})\s+(\d{4})\b`)
	fullYearPattern    = regexp.MustCompile(`\b(20\d{2})\b`)
	twoDigitPattern    = regexp.MustCompile(`\b(\d{2})\b`)
)

// PeriodDate finds the pay period in free text and returns its first day.
func PeriodDate(text string) (time.Time, bool) {
	for _, strategy := range []func(string) (time.Time, bool){
		monthNameAndYear,
		fullDate,
		numericMonthYear,
	} {
		if date, ok := strategy(text); ok {
			return date, true
		}
	}
	return time.Time{}, false
}

// monthNameAndYear handles "June 2024", "יוני 2024" and abbreviations.
func monthNameAndYear(text string) (time.Time, bool) {
	for name, month := range hebrewMonths {
		if strings.Contains(text, name) {
			if year, ok := extractYear(text); ok {
				return law.Date(year, month, 1), true
			}
		}
	}
	lower := strings.ToLower(text)
	// Iteration order does not matter: a full name and its abbreviation
	// resolve to the same month.
	for name, month := range englishMonths {
		if strings.Contains(lower, name) {
			if year, ok := extractYear(text); ok {
				return law.Date(year, month, 1), true
			}
		}
	}
	return time.Time{}, false
}

// fullDate handles DD/MM/YYYY (statement convention) and YYYY/MM/DD,
// truncating to the first of the month.
func fullDate(text string) (time.Time, bool) {
	if m := fullDatePattern.FindStringSubmatch(text); m != nil {
		day, month, year := atoi(m[1]), atoi(m[2]), atoi(m[3])
		if validYMD(year, month, day) {
			return law.Date(year, time.Month(month), 1), true
		}
	}
	if m := isoDatePattern.FindStringSubmatch(text); m != nil {
		year, month, day := atoi(m[1]), atoi(m[2]), atoi(m[3])
		if validYMD(year, month, day) {
			return law.Date(year, time.Month(month), 1), true
		}
	}
	return time.Time{}, false
}

// numericMonthYear handles MM/YYYY, YYYY-MM and bare "M YYYY".
func numericMonthYear(text string) (time.Time, bool) {
	for _, pattern := range []*regexp.Regexp{monthYearPattern, spacedMonthPattern} {
		if m := pattern.FindStringSubmatch(text); m != nil {
			month, year := atoi(m[1]), atoi(m[2])
			if validYMD(year, month, 1) {
				return law.Date(year, time.Month(month), 1), true
			}
		}
	}
	if m := yearMonthPattern.FindStringSubmatch(text); m != nil {
		year, month := atoi(m[1]), atoi(m[2])
		if validYMD(year, month, 1) {
			return law.Date(year, time.Month(month), 1), true
		}
	}
	return time.Time{}, false
}

// extractYear prefers a four-digit 20xx year; two-digit years 20 through 30
// are read as the 2020s.
func extractYear(text string) (int, bool) {
	if m := fullYearPattern.FindStringSubmatch(text); m != nil {
		return atoi(m[1]), true
	}
	for _, m := range twoDigitPattern.FindAllStringSubmatch(text, -1) {
		if y := atoi(m[1]); y >= 20 && y <= 30 {
			return 2000 + y, true
		}
	}
	return 0, false
}

func validYMD(year, month, day int) bool {
	return year >= 2000 && year <= 2100 && month >= 1 && month <= 12 && day >= 1 && day <= 31
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
