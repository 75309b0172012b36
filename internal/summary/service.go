// Package summary implements the credit-gated summarization gateway.
package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/brn-maker/time-manager-ai2/internal/domain"
	"github.com/brn-maker/time-manager-ai2/internal/observability"
)

// Generator is the single-shot generative backend.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CreditLedger is the per-user quota store. Consume must be an atomic
// decrement-if-positive at the storage boundary so the count never goes
// negative under concurrent requests.
type CreditLedger interface {
	Balance(ctx context.Context, userID string) (int, error)
	Consume(ctx context.Context, userID string) (int, bool, error)
}

// Service produces narrative summaries of a user's period activity, charging
// one credit per successful generation.
type Service struct {
	tracker   *domain.Service
	credits   CreditLedger
	generator Generator
}

// NewService constructs a Service.
func NewService(tracker *domain.Service, credits CreditLedger, generator Generator) *Service {
	return &Service{tracker: tracker, credits: credits, generator: generator}
}

// Summarize reconciles the period's activities and produces the narrative. An
// empty period yields a canned message without touching the quota or the
// backend. The quota check fails closed: an exhausted user never reaches the
// generative call. The credit is taken only after the generation succeeds, so
// failed attempts are never charged.
func (s *Service) Summarize(ctx context.Context, userID string, period domain.Period, referenceDate string) (string, error) {
	activities, err := s.tracker.ActivitiesByPeriod(ctx, userID, period, referenceDate)
	if err != nil {
		return "", err
	}

	totals := domain.SummarizeTotals(activities)
	if totals.Empty() {
		return fmt.Sprintf("No activities found for %s. Add some activities to get personalized insights!", period.Label()), nil
	}

	goals, err := s.tracker.Goals(ctx, userID)
	if err != nil {
		return "", err
	}

	remaining, err := s.credits.Balance(ctx, userID)
	if err != nil {
		return "", err
	}
	if remaining <= 0 {
		observability.RecordQuotaExhausted()
		return "", domain.ErrQuotaExhausted
	}

	prompt, err := buildPrompt(period, activities, goals)
	if err != nil {
		return "", err
	}

	narrative, err := s.generator.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}

	// Charge strictly after the successful generation. Under concurrent
	// requests the conditional decrement can find the balance already at
	// zero; the call is then uncharged rather than driving the count negative.
	if _, _, err := s.credits.Consume(ctx, userID); err != nil {
		return "", fmt.Errorf("summarize: consume credit: %w", err)
	}

	observability.RecordSummaryGenerated()
	return narrative, nil
}

type activityView struct {
	Activity   string  `json:"activity"`
	Duration   float64 `json:"duration"`
	Date       string  `json:"date,omitempty"`
	StartDate  string  `json:"start_date,omitempty"`
	StartTime  string  `json:"start_time,omitempty"`
	EndDate    string  `json:"end_date,omitempty"`
	EndTime    string  `json:"end_time,omitempty"`
	IsCrossDay bool    `json:"is_cross_day,omitempty"`
}

func buildPrompt(period domain.Period, activities []domain.Activity, goals []domain.Goal) (string, error) {
	views := make([]activityView, 0, len(activities))
	for _, activity := range activities {
		view := activityView{
			Activity: activity.Label,
			Duration: activity.Duration,
		}
		if activity.Shape == domain.ShapeRanged {
			view.StartDate = activity.StartDate
			view.StartTime = activity.StartTime
			view.EndDate = activity.EndDate
			view.EndTime = activity.EndTime
			view.IsCrossDay = activity.IsCrossDay
		} else {
			view.Date = activity.CreatedAt.Format("2006-01-02")
		}
		views = append(views, view)
	}

	serialized, err := json.Marshal(views)
	if err != nil {
		return "", err
	}

	var goalsContext strings.Builder
	if len(goals) > 0 {
		goalsContext.WriteString("\nUSER'S GOALS:\n")
		for _, goal := range goals {
			status := "In Progress"
			if goal.IsCompleted {
				status = "Completed"
			}
			fmt.Fprintf(&goalsContext, "- %s: %s\n  Category: %s\n  Priority: %s\n  Target: %g hours/week\n  Status: %s\n",
				goal.Title, goal.Description, goal.Category, goal.Priority, goal.TargetHoursPerWeek, status)
		}
	}

	label := period.Label()
	prompt := fmt.Sprintf(`Analyze how I spent my time %s based on the data below:
%s
%s
Please provide a comprehensive analysis focusing on:
1. A summary of how time was spent %s
2. Analysis of progress toward stated goals %s
3. Specific recommendations for better time allocation based on the user's goals
4. Suggestions for activities that align with their priorities
5. Insights about %s
6. Any goal-related insights or adjustments needed

Be specific and actionable in your advice, referencing their actual goals when relevant.
Consider the time period context (%s) when providing insights and recommendations.`,
		label, serialized, goalsContext.String(), label, label, periodInsights(period), period)

	return prompt, nil
}

func periodInsights(period domain.Period) string {
	switch period {
	case domain.PeriodWeekly:
		return "weekly patterns, goal progress, and weekly optimization opportunities"
	case domain.PeriodMonthly:
		return "monthly trends, goal achievement, and strategic time allocation"
	case domain.PeriodYearly:
		return "annual patterns, major goal progress, and long-term time management strategies"
	case domain.PeriodAllTime:
		return "overall patterns, lifetime goal progress, and comprehensive time management insights"
	default:
		return "daily patterns, productivity trends, and immediate improvements"
	}
}
