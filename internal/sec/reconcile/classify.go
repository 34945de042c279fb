package reconcile

import (
	"strconv"
	"time"

	"github.com/keymetrics/keymetrics/internal/sec"
)

// fiscalYearEndTolerance is the window, in days, within which a
// point-in-time fact's end date is considered to fall on the company's
// fiscal year end.
const fiscalYearEndTolerance = 7

// classifyAnnual decides whether a fact is annual. A 12-month period is
// annual; any other explicit duration is quarterly. Point-in-time facts
// (nil months) are annual when their end date lands within the tolerance
// window of the company's fiscal year end (an MMDD string). The window
// does not wrap the year boundary, matching existing data.
func classifyAnnual(months *int, end time.Time, fiscalYearEnd string) bool {
	if months != nil {
		return *months == 12
	}

	if len(fiscalYearEnd) != 4 {
		return false
	}
	month, err := strconv.Atoi(fiscalYearEnd[:2])
	if err != nil {
		return false
	}
	day, err := strconv.Atoi(fiscalYearEnd[2:])
	if err != nil {
		return false
	}

	yearEnd := time.Date(end.Year(), time.Month(month), day, 0, 0, 0, 0, time.UTC)
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	diff := endDay.Sub(yearEnd).Hours() / 24
	if diff < 0 {
		diff = -diff
	}
	return diff <= fiscalYearEndTolerance
}

// isFramed reports whether upstream marked the entry as part of a
// standardized aggregation frame.
func isFramed(entry sec.FactEntry) bool {
	return entry.Frame != ""
}
