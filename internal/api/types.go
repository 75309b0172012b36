package api

import (
	"errors"
	"strings"
	"time"

	"github.com/brn-maker/time-manager-ai2/internal/domain"
)

// ActivityRequest is the payload for POST/PUT activity endpoints. A plain Date
// produces a legacy-form record; the four start/end fields produce a
// range-form record.
type ActivityRequest struct {
	Activity  string  `json:"activity"`
	Duration  float64 `json:"duration"`
	Date      string  `json:"date,omitempty"`
	StartDate string  `json:"start_date,omitempty"`
	StartTime string  `json:"start_time,omitempty"`
	EndDate   string  `json:"end_date,omitempty"`
	EndTime   string  `json:"end_time,omitempty"`
}

// Validate ensures request correctness.
func (r ActivityRequest) Validate() error {
	if strings.TrimSpace(r.Activity) == "" {
		return errors.New("activity is required")
	}
	if r.Duration < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}

func (r ActivityRequest) input() domain.ActivityInput {
	return domain.ActivityInput{
		Label:     r.Activity,
		Duration:  r.Duration,
		Date:      r.Date,
		StartDate: r.StartDate,
		StartTime: r.StartTime,
		EndDate:   r.EndDate,
		EndTime:   r.EndTime,
	}
}

// ActivityView exposes full details about an activity record.
type ActivityView struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Activity   string    `json:"activity"`
	Duration   float64   `json:"duration"`
	TimeShape  string    `json:"time_shape"`
	CreatedAt  time.Time `json:"created_at"`
	StartDate  string    `json:"start_date,omitempty"`
	StartTime  string    `json:"start_time,omitempty"`
	EndDate    string    `json:"end_date,omitempty"`
	EndTime    string    `json:"end_time,omitempty"`
	IsCrossDay bool      `json:"is_cross_day"`
}

// ListActivitiesResponse packages list results.
type ListActivitiesResponse struct {
	Items []ActivityView `json:"items"`
}

func toActivityView(activity domain.Activity) ActivityView {
	return ActivityView{
		ID:         activity.ID,
		UserID:     activity.UserID,
		Activity:   activity.Label,
		Duration:   activity.Duration,
		TimeShape:  string(activity.Shape),
		CreatedAt:  activity.CreatedAt,
		StartDate:  activity.StartDate,
		StartTime:  activity.StartTime,
		EndDate:    activity.EndDate,
		EndTime:    activity.EndTime,
		IsCrossDay: activity.IsCrossDay,
	}
}

// GoalRequest is the payload for POST/PUT goal endpoints.
type GoalRequest struct {
	Title              string  `json:"title"`
	Description        string  `json:"description"`
	Category           string  `json:"category"`
	Priority           string  `json:"priority"`
	TargetHoursPerWeek float64 `json:"target_hours_per_week"`
	IsCompleted        bool    `json:"is_completed"`
}

// Validate ensures request correctness.
func (r GoalRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("title is required")
	}
	if r.TargetHoursPerWeek < 0 {
		return errors.New("target_hours_per_week must be >= 0")
	}
	return nil
}

func (r GoalRequest) input() domain.GoalInput {
	return domain.GoalInput{
		Title:              r.Title,
		Description:        r.Description,
		Category:           r.Category,
		Priority:           r.Priority,
		TargetHoursPerWeek: r.TargetHoursPerWeek,
		IsCompleted:        r.IsCompleted,
	}
}

// GoalView exposes a goal record.
type GoalView struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Category           string    `json:"category"`
	Priority           string    `json:"priority"`
	TargetHoursPerWeek float64   `json:"target_hours_per_week"`
	IsCompleted        bool      `json:"is_completed"`
	CreatedAt          time.Time `json:"created_at"`
}

// ListGoalsResponse packages goal list results.
type ListGoalsResponse struct {
	Items []GoalView `json:"items"`
}

func toGoalView(goal domain.Goal) GoalView {
	return GoalView{
		ID:                 goal.ID,
		UserID:             goal.UserID,
		Title:              goal.Title,
		Description:        goal.Description,
		Category:           goal.Category,
		Priority:           goal.Priority,
		TargetHoursPerWeek: goal.TargetHoursPerWeek,
		IsCompleted:        goal.IsCompleted,
		CreatedAt:          goal.CreatedAt,
	}
}

// SummaryRequest is the payload for POST /v1/activities/summary.
type SummaryRequest struct {
	Period string `json:"period"`
	Date   string `json:"date"`
}

// SummaryResponse carries the narrative text.
type SummaryResponse struct {
	Summary string `json:"summary"`
}

// InitiatePaymentRequest is the payload for POST /v1/payments/initiate.
type InitiatePaymentRequest struct {
	Email string `json:"email"`
}

// InitiatePaymentResponse returns the hosted checkout URL.
type InitiatePaymentResponse struct {
	AuthorizationURL string `json:"authorization_url"`
}
