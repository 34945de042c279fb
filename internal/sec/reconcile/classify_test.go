package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/keymetrics/keymetrics/internal/sec"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestClassifyAnnual(t *testing.T) {
	twelve := 12
	three := 3
	thirteen := 13

	tests := []struct {
		name          string
		months        *int
		end           time.Time
		fiscalYearEnd string
		expected      bool
	}{
		{
			name:          "twelve month duration is annual",
			months:        &twelve,
			end:           date(2023, time.September, 30),
			fiscalYearEnd: "0930",
			expected:      true,
		},
		{
			name:          "quarter duration is not annual",
			months:        &three,
			end:           date(2023, time.September, 30),
			fiscalYearEnd: "0930",
			expected:      false,
		},
		{
			name:          "thirteen months is not annual",
			months:        &thirteen,
			end:           date(2023, time.September, 30),
			fiscalYearEnd: "0930",
			expected:      false,
		},
		{
			name:          "point in time on fiscal year end",
			end:           date(2023, time.September, 30),
			fiscalYearEnd: "0930",
			expected:      true,
		},
		{
			name:          "point in time inside tolerance window",
			end:           date(2023, time.October, 7),
			fiscalYearEnd: "0930",
			expected:      true,
		},
		{
			name:          "point in time just outside tolerance window",
			end:           date(2023, time.October, 8),
			fiscalYearEnd: "0930",
			expected:      false,
		},
		{
			name:          "window does not wrap the year boundary",
			end:           date(2024, time.January, 3),
			fiscalYearEnd: "1231",
			expected:      false,
		},
		{
			name:     "point in time without fiscal year end",
			end:      date(2023, time.September, 30),
			expected: false,
		},
		{
			name:          "malformed fiscal year end",
			end:           date(2023, time.September, 30),
			fiscalYearEnd: "09AB",
			expected:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyAnnual(tt.months, tt.end, tt.fiscalYearEnd)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestIsFramed(t *testing.T) {
	assert.True(t, isFramed(sec.FactEntry{Frame: "CY2023Q3I"}))
	assert.False(t, isFramed(sec.FactEntry{}))
}
