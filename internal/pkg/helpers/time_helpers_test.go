package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodBounds(t *testing.T) {
	start, end, err := PeriodBounds("2024-02")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), end)

	_, _, err = PeriodBounds("2024-13")
	assert.Error(t, err)
}

func TestPreviousPeriod(t *testing.T) {
	assert.Equal(t, "2023-12", PreviousPeriod(time.Date(2024, 1, 1, 2, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-02", PreviousPeriod(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)))
}

func TestWorkingDays(t *testing.T) {
	weekend, err := ParseWeekdays([]string{"Saturday", "sun"})
	require.NoError(t, err)

	// June 2024 has 30 days, 10 of them on a weekend
	start, end, err := PeriodBounds("2024-06")
	require.NoError(t, err)
	assert.Equal(t, 20, WorkingDays(start, end, weekend))

	assert.Equal(t, 30, WorkingDays(start, end, nil))

	_, err = ParseWeekdays([]string{"funday"})
	assert.Error(t, err)
}

func TestParseClock(t *testing.T) {
	minutes, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, minutes)

	_, err = ParseClock("25:00")
	assert.Error(t, err)
}
