package timewindow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToUTCRangeMoscow(t *testing.T) {
	// Europe/Moscow is UTC+3 year-round (no DST since 2014).
	start, end, err := ToUTCRange("2024-06-01T00:00", "2024-06-01T23:59", "Europe/Moscow")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 5, 31, 21, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 6, 1, 20, 59, 0, 0, time.UTC), end)
}

func TestToUTCRangeDST(t *testing.T) {
	// Berlin observes DST: +2 in July, +1 in January.
	start, _, err := ToUTCRange("2024-07-01T12:00", "2024-07-01T13:00", "Europe/Berlin")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC), start)

	start, _, err = ToUTCRange("2024-01-15T12:00", "2024-01-15T13:00", "Europe/Berlin")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 11, 0, 0, 0, time.UTC), start)
}

func TestToUTCRangeErrors(t *testing.T) {
	testCases := []struct {
		name    string
		start   string
		end     string
		zone    string
		wantErr error
	}{
		{"bad start format", "2024-06-01 00:00", "2024-06-01T23:59", "UTC", ErrInvalidTimeFormat},
		{"bad end format", "2024-06-01T00:00", "junk", "UTC", ErrInvalidTimeFormat},
		{"seconds not allowed", "2024-06-01T00:00:30", "2024-06-01T23:59", "UTC", ErrInvalidTimeFormat},
		{"unknown zone", "2024-06-01T00:00", "2024-06-01T23:59", "Mars/Olympus", ErrInvalidZone},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := ToUTCRange(tc.start, tc.end, tc.zone)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestToUTCRangeInvertedIsNotAnError(t *testing.T) {
	// An inverted window is permitted; downstream queries just match
	// nothing.
	start, end, err := ToUTCRange("2024-06-02T00:00", "2024-06-01T00:00", "UTC")
	require.NoError(t, err)
	assert.True(t, start.After(end))
}
