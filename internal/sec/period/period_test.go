package period

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int {
	return &v
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		raw      Ref
		expected Period
	}{
		{
			name: "full quarter",
			raw:  Ref{Start: "2020-01-01", End: "2020-03-31"},
			expected: Period{
				Start:  "2020-01-01",
				End:    "2020-03-31",
				Key:    "2020-01-012020-03-313",
				Months: intPtr(3),
			},
		},
		{
			name: "partial month rounds to one",
			raw:  Ref{Start: "2020-03-05", End: "2020-03-31"},
			expected: Period{
				Start:  "2020-03-05",
				End:    "2020-03-31",
				Key:    "2020-03-052020-03-311",
				Months: intPtr(1),
			},
		},
		{
			name: "point in time keys on end date alone",
			raw:  Ref{End: "2020-03-31"},
			expected: Period{
				End: "2020-03-31",
				Key: "2020-03-31",
			},
		},
		{
			name: "full fiscal year",
			raw:  Ref{Start: "2020-01-01", End: "2020-12-31"},
			expected: Period{
				Start:  "2020-01-01",
				End:    "2020-12-31",
				Key:    "2020-01-012020-12-3112",
				Months: intPtr(12),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	raw := Ref{Start: "2021-07-01", End: "2021-09-30"}
	first, err := Normalize(raw)
	require.NoError(t, err)
	second, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNormalizeRejectsMalformedInput(t *testing.T) {
	_, err := Normalize(Ref{})
	assert.Error(t, err)

	_, err = Normalize(Ref{Start: "not-a-date", End: "2020-03-31"})
	assert.Error(t, err)

	_, err = Normalize(Ref{Start: "2020-01-01", End: "31/03/2020"})
	assert.Error(t, err)
}
