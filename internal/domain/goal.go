package domain

import "time"

// Goal is a user-declared weekly target. Goals relate to activities by
// category/free text only; the summarizer consumes them read-only.
type Goal struct {
	ID                 string
	UserID             string
	Title              string
	Description        string
	Category           string
	Priority           string
	TargetHoursPerWeek float64
	IsCompleted        bool
	CreatedAt          time.Time
}
