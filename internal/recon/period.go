package recon

import (
	"fmt"
	"strconv"
	"time"
)

const (
	// DefaultStatementMonth is used when statement_month is absent or unparseable.
	DefaultStatementMonth = 1
	// DefaultStatementYear is used when statement_year is absent or unparseable.
	DefaultStatementYear = 2025
)

var monthAbbrevs = [12]string{
	"JAN", "FEB", "MAR", "APR", "MAY", "JUN",
	"JUL", "AUG", "SEP", "OCT", "NOV", "DEC",
}

// MonthAbbrev returns the three-letter abbreviation for month 1-12.
// Any other value is returned in its decimal form, e.g. MonthAbbrev(13) == "13".
func MonthAbbrev(month int64) string {
	if month < 1 || month > 12 {
		return strconv.FormatInt(month, 10)
	}
	return monthAbbrevs[month-1]
}

// PeriodLabel renders "<ABBR> <YEAR>", e.g. "AUG 2025".
func PeriodLabel(month, year int64) string {
	return fmt.Sprintf("%s %d", MonthAbbrev(month), year)
}

// DaysInMonth returns the length of the month, accounting for leap years.
// Out-of-range months roll over the way time.Date normalizes them.
func DaysInMonth(month, year int64) int {
	return time.Date(int(year), time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// StatementDates returns the first and last transaction dates of the
// statement period as M/D/YYYY without leading zeros.
func StatementDates(month, year int64) (first, last string) {
	first = fmt.Sprintf("%d/1/%d", month, year)
	last = fmt.Sprintf("%d/%d/%d", month, DaysInMonth(month, year), year)
	return first, last
}

// DocumentName synthesizes the display label of the statement document.
func DocumentName(month, year int64) string {
	return "Statement " + PeriodLabel(month, year)
}
