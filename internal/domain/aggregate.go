package domain

// Totals is the derived view over a reconciled activity sequence.
type Totals struct {
	Count           int
	TotalMinutes    float64
	MinutesByLabel  map[string]float64
	CrossDayRecords int
}

// Empty reports whether there was no activity at all. Callers use it to
// short-circuit summarization with a canned response instead of treating an
// idle period as an error.
func (t Totals) Empty() bool { return t.Count == 0 }

// SummarizeTotals computes total duration and a per-label breakdown. Pure
// function over the deduplicated sequence; it never touches the store.
func SummarizeTotals(activities []Activity) Totals {
	totals := Totals{MinutesByLabel: make(map[string]float64)}
	for _, activity := range activities {
		totals.Count++
		totals.TotalMinutes += activity.Duration
		totals.MinutesByLabel[activity.Label] += activity.Duration
		if activity.IsCrossDay {
			totals.CrossDayRecords++
		}
	}
	return totals
}
