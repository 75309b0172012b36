// Package domain defines the business logic for the time-tracking service.
package domain

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ActivityRepository captures the capability set required of the external
// store. Every operation is scoped to one user. The adapter never merges or
// deduplicates; that is the service's job.
type ActivityRepository interface {
	Create(ctx context.Context, activity Activity) error
	// Update rewrites the record in place. A zero CreatedAt keeps the stored
	// timestamp; either way the effective timestamp is written back onto the
	// passed record.
	Update(ctx context.Context, activity *Activity) error
	Delete(ctx context.Context, userID, activityID string) error
	// All returns every record for the user, newest-first.
	All(ctx context.Context, userID string) ([]Activity, error)
	// ByExactDay returns legacy-form records whose timestamp falls within the
	// day plus records whose start_date or end_date equals it.
	ByExactDay(ctx context.Context, userID, day string) ([]Activity, error)
	// ByLegacyRange returns records whose created_at falls in [start, end),
	// newest-first.
	ByLegacyRange(ctx context.Context, userID string, start, end time.Time) ([]Activity, error)
	// ByDateFieldRange returns records whose start_date or end_date falls in
	// [startDay, endDay), date-only granularity.
	ByDateFieldRange(ctx context.Context, userID, startDay, endDay string) ([]Activity, error)
}

// GoalRepository captures goal persistence operations, scoped to one user.
type GoalRepository interface {
	Create(ctx context.Context, goal Goal) error
	Get(ctx context.Context, userID, goalID string) (*Goal, error)
	List(ctx context.Context, userID string) ([]Goal, error)
	Update(ctx context.Context, goal Goal) error
	Delete(ctx context.Context, userID, goalID string) error
}

// Service orchestrates activity and goal workflows, including the dual-shape
// period reconciliation.
type Service struct {
	activities ActivityRepository
	goals      GoalRepository
	loc        *time.Location
}

// NewService constructs a Service. Windows and calendar-day boundaries are
// computed in loc; pass nil for the process-local zone.
func NewService(activities ActivityRepository, goals GoalRepository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{activities: activities, goals: goals, loc: loc}
}

// ActivityInput carries the create/update payload from the API layer. When
// Date is set, the record is legacy-form with created_at pinned to noon UTC of
// that day. When the four range fields are set, the record is range-form.
type ActivityInput struct {
	Label     string
	Duration  float64
	Date      string
	StartDate string
	StartTime string
	EndDate   string
	EndTime   string
}

func (in ActivityInput) ranged() bool {
	return in.StartDate != "" || in.StartTime != "" || in.EndDate != "" || in.EndTime != ""
}

func (s *Service) buildActivity(userID string, in ActivityInput) (Activity, error) {
	activity := Activity{
		UserID:    userID,
		Label:     in.Label,
		Duration:  in.Duration,
		Shape:     ShapeLegacy,
		CreatedAt: time.Now().UTC(),
	}

	if in.Date != "" {
		day, err := time.Parse(time.DateOnly, in.Date)
		if err != nil {
			return Activity{}, fmt.Errorf("%w: %q", ErrInvalidDate, in.Date)
		}
		// Noon keeps the timestamp inside the intended day for every offset
		// the clients run in.
		activity.CreatedAt = day.Add(12 * time.Hour)
	}

	if in.ranged() {
		if in.StartDate == "" || in.StartTime == "" || in.EndDate == "" || in.EndTime == "" {
			return Activity{}, fmt.Errorf("%w: range form requires start and end date and time", ErrInvalidDate)
		}
		for _, d := range []string{in.StartDate, in.EndDate} {
			if _, err := time.Parse(time.DateOnly, d); err != nil {
				return Activity{}, fmt.Errorf("%w: %q", ErrInvalidDate, d)
			}
		}
		activity.Shape = ShapeRanged
		activity.StartDate = in.StartDate
		activity.StartTime = in.StartTime
		activity.EndDate = in.EndDate
		activity.EndTime = in.EndTime
		activity.IsCrossDay = in.StartDate != in.EndDate
	}

	return activity, nil
}

// CreateActivity persists a new activity for the user.
func (s *Service) CreateActivity(ctx context.Context, userID string, in ActivityInput) (*Activity, error) {
	activity, err := s.buildActivity(userID, in)
	if err != nil {
		return nil, err
	}
	activity.ID = uuid.NewString()
	if err := s.activities.Create(ctx, activity); err != nil {
		return nil, err
	}
	return &activity, nil
}

// UpdateActivity rewrites an existing activity owned by the user. Supplying a
// date re-dates a legacy record onto that day; without one the stored
// timestamp is kept.
func (s *Service) UpdateActivity(ctx context.Context, userID, activityID string, in ActivityInput) (*Activity, error) {
	activity, err := s.buildActivity(userID, in)
	if err != nil {
		return nil, err
	}
	activity.ID = activityID
	if in.Date == "" {
		activity.CreatedAt = time.Time{}
	}
	if err := s.activities.Update(ctx, &activity); err != nil {
		return nil, err
	}
	return &activity, nil
}

// DeleteActivity removes an activity owned by the user.
func (s *Service) DeleteActivity(ctx context.Context, userID, activityID string) error {
	return s.activities.Delete(ctx, userID, activityID)
}

// Activities returns every record for the user, newest-first.
func (s *Service) Activities(ctx context.Context, userID string) ([]Activity, error) {
	return s.activities.All(ctx, userID)
}

// ActivitiesByDate returns the deduplicated set of activities occurring on the
// given calendar day. Cross-day records surface under both endpoint days.
func (s *Service) ActivitiesByDate(ctx context.Context, userID, date string) ([]Activity, error) {
	if _, err := time.ParseInLocation(time.DateOnly, date, s.loc); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	found, err := s.activities.ByExactDay(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	// Re-check occurrence per shape so a misbehaving adapter can never leak a
	// record onto a day it does not occur on.
	matched := found[:0]
	for _, activity := range found {
		if activity.OccursOn(date, s.loc) {
			matched = append(matched, activity)
		}
	}
	return reconcile(matched, nil), nil
}

// ActivitiesByPeriod resolves the reporting window and reconciles the two
// record shapes into one deduplicated, newest-first sequence. The legacy and
// date-field queries are independent and run concurrently; either failure
// aborts the whole read.
func (s *Service) ActivitiesByPeriod(ctx context.Context, userID string, period Period, referenceDate string) ([]Activity, error) {
	window, err := ResolvePeriod(period, referenceDate, s.loc)
	if err != nil {
		return nil, err
	}
	if window.Unbounded {
		return s.activities.All(ctx, userID)
	}

	var legacy, ranged []Activity
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		legacy, err = s.activities.ByLegacyRange(gctx, userID, window.Start, window.End)
		return err
	})
	g.Go(func() error {
		startDay, endDay := window.DateBounds()
		var err error
		ranged, err = s.activities.ByDateFieldRange(gctx, userID, startDay, endDay)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return reconcile(legacy, ranged), nil
}

// reconcile unions the result sequences, keeping one record per id (the last
// occurrence wins) and ordering newest-first by created_at with id as the
// tiebreak.
func reconcile(first, second []Activity) []Activity {
	seen := make(map[string]int, len(first)+len(second))
	merged := make([]Activity, 0, len(first)+len(second))
	for _, activity := range first {
		if i, ok := seen[activity.ID]; ok {
			merged[i] = activity
			continue
		}
		seen[activity.ID] = len(merged)
		merged = append(merged, activity)
	}
	for _, activity := range second {
		if i, ok := seen[activity.ID]; ok {
			merged[i] = activity
			continue
		}
		seen[activity.ID] = len(merged)
		merged = append(merged, activity)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].CreatedAt.Equal(merged[j].CreatedAt) {
			return merged[i].CreatedAt.After(merged[j].CreatedAt)
		}
		return merged[i].ID > merged[j].ID
	})
	return merged
}

// CreateGoal persists a new goal for the user.
func (s *Service) CreateGoal(ctx context.Context, userID string, in GoalInput) (*Goal, error) {
	goal := Goal{
		ID:                 uuid.NewString(),
		UserID:             userID,
		Title:              in.Title,
		Description:        in.Description,
		Category:           in.Category,
		Priority:           in.Priority,
		TargetHoursPerWeek: in.TargetHoursPerWeek,
		IsCompleted:        false,
		CreatedAt:          time.Now().UTC(),
	}
	if err := s.goals.Create(ctx, goal); err != nil {
		return nil, err
	}
	return &goal, nil
}

// GoalInput carries the create/update payload for goals.
type GoalInput struct {
	Title              string
	Description        string
	Category           string
	Priority           string
	TargetHoursPerWeek float64
	IsCompleted        bool
}

// Goal fetches one goal, returning ErrGoalNotFound when it is absent or owned
// by someone else.
func (s *Service) Goal(ctx context.Context, userID, goalID string) (*Goal, error) {
	goal, err := s.goals.Get(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, ErrGoalNotFound
	}
	return goal, nil
}

// Goals lists the user's goals, newest-first.
func (s *Service) Goals(ctx context.Context, userID string) ([]Goal, error) {
	return s.goals.List(ctx, userID)
}

// UpdateGoal rewrites a goal owned by the user.
func (s *Service) UpdateGoal(ctx context.Context, userID, goalID string, in GoalInput) error {
	return s.goals.Update(ctx, Goal{
		ID:                 goalID,
		UserID:             userID,
		Title:              in.Title,
		Description:        in.Description,
		Category:           in.Category,
		Priority:           in.Priority,
		TargetHoursPerWeek: in.TargetHoursPerWeek,
		IsCompleted:        in.IsCompleted,
	})
}

// DeleteGoal removes a goal owned by the user.
func (s *Service) DeleteGoal(ctx context.Context, userID, goalID string) error {
	return s.goals.Delete(ctx, userID, goalID)
}
