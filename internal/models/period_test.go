package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	require := require.New(t)

	p, err := ParsePeriod("2025-07")
	require.NoError(err)
	require.Equal(Period("2025-07"), p)

	_, err = ParsePeriod("2025-13")
	require.Error(err)

	_, err = ParsePeriod("July 2025")
	require.Error(err)

	_, err = ParsePeriod("")
	require.Error(err)
}

func TestPeriodOf(t *testing.T) {
	require := require.New(t)

	ts := time.Date(2025, time.February, 28, 23, 59, 0, 0, time.UTC)
	require.Equal(Period("2025-02"), PeriodOf(ts))
}

func TestPeriodDateRange(t *testing.T) {
	require := require.New(t)

	since, until, err := Period("2025-07").DateRange()
	require.NoError(err)
	require.Equal("2025-07-01", since)
	require.Equal("2025-07-31", until)

	// Leap year February.
	since, until, err = Period("2024-02").DateRange()
	require.NoError(err)
	require.Equal("2024-02-01", since)
	require.Equal("2024-02-29", until)

	_, _, err = Period("not-a-month").DateRange()
	require.Error(err)
}
