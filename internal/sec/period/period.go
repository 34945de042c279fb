// Package period normalizes heterogeneous start/end date pairs into
// canonical period keys and duration classifications.
package period

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Ref is a raw upstream period: a mandatory end date literal and an
// optional start date literal.
type Ref struct {
	Start string
	End   string
}

// Period is the normalized form. Months is nil for point-in-time periods.
// Start and End preserve the upstream literals verbatim because the key is
// a string concatenation, not a semantic date equality.
type Period struct {
	Start  string
	End    string
	Key    string
	Months *int
}

// Normalize converts a raw period into its canonical key and month count.
// The month count is a fractional approximation, round(days / 30.4), not a
// calendar-exact duration. Pure: no lookups, no side effects.
func Normalize(raw Ref) (Period, error) {
	if raw.End == "" {
		return Period{}, fmt.Errorf("period has no end date")
	}

	if raw.Start == "" {
		return Period{End: raw.End, Key: raw.End}, nil
	}

	startDate, err := time.Parse(time.DateOnly, raw.Start)
	if err != nil {
		return Period{}, fmt.Errorf("invalid start date %q: %w", raw.Start, err)
	}
	endDate, err := time.Parse(time.DateOnly, raw.End)
	if err != nil {
		return Period{}, fmt.Errorf("invalid end date %q: %w", raw.End, err)
	}

	days := endDate.Sub(startDate).Hours() / 24
	months := int(math.Round(days / 30.4))

	return Period{
		Start:  raw.Start,
		End:    raw.End,
		Key:    raw.Start + raw.End + strconv.Itoa(months),
		Months: &months,
	}, nil
}
