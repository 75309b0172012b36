package domain

import "time"

// TimeShape distinguishes the two record forms that coexist in the activities
// collection. Legacy rows carry only a creation timestamp; ranged rows carry an
// explicit start/end date-time span.
type TimeShape string

const (
	// ShapeLegacy marks records whose occurrence time is created_at alone.
	ShapeLegacy TimeShape = "legacy"
	// ShapeRanged marks records with explicit start/end date-time fields. For
	// these, created_at is insertion time and never occurrence time.
	ShapeRanged TimeShape = "ranged"
)

// Activity is a single tracked activity owned by one user.
type Activity struct {
	ID       string
	UserID   string
	Label    string
	Duration float64 // minutes
	Shape    TimeShape

	// CreatedAt is the occurrence instant for legacy records and the insertion
	// instant for ranged records.
	CreatedAt time.Time

	// Ranged-form fields, ISO "2006-01-02" dates and "15:04" times. Empty for
	// legacy records.
	StartDate  string
	StartTime  string
	EndDate    string
	EndTime    string
	IsCrossDay bool
}

// OccursOn reports whether the activity belongs to the given calendar day
// (ISO date string): legacy records by their created_at day in loc, ranged
// records by either endpoint date. A cross-day record occurs on both days.
func (a Activity) OccursOn(day string, loc *time.Location) bool {
	switch a.Shape {
	case ShapeRanged:
		return a.StartDate == day || a.EndDate == day
	default:
		return a.CreatedAt.In(loc).Format(time.DateOnly) == day
	}
}
