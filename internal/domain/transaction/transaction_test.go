package transaction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOccurredAt(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected time.Time
		wantErr  bool
	}{
		{"Typical", "24.12.23-18:30", time.Date(2023, 12, 24, 0, 0, 0, 0, time.UTC), false},
		{"SingleDigitFields", "01.01.24-00:05", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"YearWithTrailingGarbage", "05.06.24abc-09:00", time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), false},
		{"MissingTimePortion", "24.12.23", time.Date(2023, 12, 24, 0, 0, 0, 0, time.UTC), false},
		{"Empty", "", time.Time{}, true},
		{"NotADate", "yesterday-18:30", time.Time{}, true},
		{"TooFewFields", "24.12-18:30", time.Time{}, true},
		{"ShortYear", "24.12.3-18:30", time.Time{}, true},
		{"MonthOutOfRange", "24.13.23-18:30", time.Time{}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			day, err := ParseOccurredAt(tc.raw)
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidTimestamp)
				return
			}
			require.NoError(t, err)
			assert.True(t, day.Equal(tc.expected), "got %s, want %s", day, tc.expected)
		})
	}
}
