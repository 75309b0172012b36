package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolvePeriodDaily(t *testing.T) {
	window, err := ResolvePeriod(PeriodDaily, "2024-03-15", time.UTC)
	require.NoError(t, err)
	require.False(t, window.Unbounded)
	require.Equal(t, date(2024, time.March, 15), window.Start)
	require.Equal(t, date(2024, time.March, 16), window.End)
}

func TestResolvePeriodWeeklyStartsMonday(t *testing.T) {
	// 2024-03-15 is a Friday; the enclosing week is Mon 11th through Sun 17th.
	window, err := ResolvePeriod(PeriodWeekly, "2024-03-15", time.UTC)
	require.NoError(t, err)
	require.Equal(t, date(2024, time.March, 11), window.Start)
	require.Equal(t, date(2024, time.March, 18), window.End)
}

func TestResolvePeriodWeeklySundayClosesWeek(t *testing.T) {
	window, err := ResolvePeriod(PeriodWeekly, "2024-03-17", time.UTC)
	require.NoError(t, err)
	require.Equal(t, date(2024, time.March, 11), window.Start)

	monday, err := ResolvePeriod(PeriodWeekly, "2024-03-11", time.UTC)
	require.NoError(t, err)
	require.Equal(t, window.Start, monday.Start)
}

func TestResolvePeriodMonthlyContiguous(t *testing.T) {
	december, err := ResolvePeriod(PeriodMonthly, "2023-12-15", time.UTC)
	require.NoError(t, err)
	january, err := ResolvePeriod(PeriodMonthly, "2024-01-02", time.UTC)
	require.NoError(t, err)

	require.Equal(t, date(2023, time.December, 1), december.Start)
	require.Equal(t, december.End, january.Start, "monthly windows must tile with no gap")
	require.Equal(t, date(2024, time.February, 1), january.End)
}

func TestResolvePeriodYearly(t *testing.T) {
	window, err := ResolvePeriod(PeriodYearly, "2024-06-30", time.UTC)
	require.NoError(t, err)
	require.Equal(t, date(2024, time.January, 1), window.Start)
	require.Equal(t, date(2025, time.January, 1), window.End)
}

func TestResolvePeriodAllTimeUnbounded(t *testing.T) {
	window, err := ResolvePeriod(PeriodAllTime, "2024-03-15", time.UTC)
	require.NoError(t, err)
	require.True(t, window.Unbounded)
}

func TestResolvePeriodUnknownKindBehavesAsDaily(t *testing.T) {
	window, err := ResolvePeriod(Period("fortnightly"), "2024-03-15", time.UTC)
	require.NoError(t, err)
	require.Equal(t, date(2024, time.March, 15), window.Start)
	require.Equal(t, date(2024, time.March, 16), window.End)
}

func TestResolvePeriodMalformedDate(t *testing.T) {
	_, err := ResolvePeriod(PeriodDaily, "15-03-2024", time.UTC)
	require.ErrorIs(t, err, ErrInvalidDate)

	_, err = ResolvePeriod(PeriodWeekly, "", time.UTC)
	require.ErrorIs(t, err, ErrInvalidDate)
}

func TestWindowDateBounds(t *testing.T) {
	window, err := ResolvePeriod(PeriodWeekly, "2024-03-15", time.UTC)
	require.NoError(t, err)
	start, end := window.DateBounds()
	require.Equal(t, "2024-03-11", start)
	require.Equal(t, "2024-03-18", end)
}
