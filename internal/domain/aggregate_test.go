package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSummarizeTotals(t *testing.T) {
	activities := []Activity{
		legacyActivity("a", "user-1", "reading", date(2024, time.March, 11)),
		legacyActivity("b", "user-1", "reading", date(2024, time.March, 12)),
		rangedActivity("c", "user-1", "coding", "2024-03-13", "2024-03-14", date(2024, time.March, 13)),
	}
	activities[0].Duration = 30
	activities[1].Duration = 45
	activities[2].Duration = 210

	totals := SummarizeTotals(activities)
	require.Equal(t, 3, totals.Count)
	require.InDelta(t, 285, totals.TotalMinutes, 1e-9)
	require.InDelta(t, 75, totals.MinutesByLabel["reading"], 1e-9)
	require.InDelta(t, 210, totals.MinutesByLabel["coding"], 1e-9)
	require.Equal(t, 1, totals.CrossDayRecords)
	require.False(t, totals.Empty())
}

func TestSummarizeTotalsEmpty(t *testing.T) {
	totals := SummarizeTotals(nil)
	require.True(t, totals.Empty())
	require.Zero(t, totals.TotalMinutes)
	require.Empty(t, totals.MinutesByLabel)
}
