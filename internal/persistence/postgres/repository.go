// Package postgres provides pgx-backed persistence for activities, goals and
// user credit records.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brn-maker/time-manager-ai2/internal/domain"
	"github.com/brn-maker/time-manager-ai2/internal/events"
	"github.com/brn-maker/time-manager-ai2/internal/observability"
)

const activityColumns = "id, user_id, activity, duration, time_shape, created_at, start_date, start_time, end_date, end_time, is_cross_day"

// ActivityRepository implements domain.ActivityRepository over Postgres.
type ActivityRepository struct {
	pool *pgxpool.Pool
	loc  *time.Location
}

// NewActivityRepository constructs an ActivityRepository. Day boundaries are
// computed in loc; pass nil for the process-local zone.
func NewActivityRepository(pool *pgxpool.Pool, loc *time.Location) *ActivityRepository {
	if loc == nil {
		loc = time.Local
	}
	return &ActivityRepository{pool: pool, loc: loc}
}

// Create persists the activity and records an activity.created outbox event in
// the same transaction.
func (r *ActivityRepository) Create(ctx context.Context, activity domain.Activity) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const stmt = `INSERT INTO activities (id, user_id, activity, duration, time_shape, created_at, start_date, start_time, end_date, end_time, is_cross_day)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	if _, err := tx.Exec(ctx, stmt,
		activity.ID,
		activity.UserID,
		activity.Label,
		activity.Duration,
		string(activity.Shape),
		activity.CreatedAt,
		activity.StartDate,
		activity.StartTime,
		activity.EndDate,
		activity.EndTime,
		activity.IsCrossDay,
	); err != nil {
		return err
	}

	if err := insertOutbox(ctx, tx, outboxEntry{
		AggregateType: "activity",
		AggregateID:   activity.ID,
		EventType:     events.TypeActivityCreated,
		Topic:         events.TopicActivityEvents,
		PartitionKey:  activity.UserID,
		Payload: events.ActivityCreated{
			ActivityID: activity.ID,
			UserID:     activity.UserID,
			Activity:   activity.Label,
			Duration:   activity.Duration,
			TimeShape:  string(activity.Shape),
			CreatedAt:  activity.CreatedAt,
		},
	}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	observability.RecordActivityPersisted(activity.CreatedAt)
	return nil
}

// Update rewrites an activity owned by the user. A non-zero CreatedAt re-dates
// the record; a zero one keeps the stored timestamp, which is scanned back so
// the caller always sees the effective value. A row that is absent or owned by
// another user yields domain.ErrActivityNotFound.
func (r *ActivityRepository) Update(ctx context.Context, activity *domain.Activity) error {
	const stmt = `UPDATE activities
        SET activity=$3, duration=$4, time_shape=$5, start_date=$6, start_time=$7, end_date=$8, end_time=$9, is_cross_day=$10,
            created_at = COALESCE($11::timestamptz, created_at)
        WHERE id=$1 AND user_id=$2
        RETURNING created_at`
	var createdAt interface{}
	if !activity.CreatedAt.IsZero() {
		createdAt = activity.CreatedAt
	}
	err := r.pool.QueryRow(ctx, stmt,
		activity.ID,
		activity.UserID,
		activity.Label,
		activity.Duration,
		string(activity.Shape),
		activity.StartDate,
		activity.StartTime,
		activity.EndDate,
		activity.EndTime,
		activity.IsCrossDay,
		createdAt,
	).Scan(&activity.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrActivityNotFound
	}
	return err
}

// Delete removes an activity owned by the user.
func (r *ActivityRepository) Delete(ctx context.Context, userID, activityID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM activities WHERE id=$1 AND user_id=$2`, activityID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrActivityNotFound
	}
	return nil
}

// All returns every record for the user, newest-first.
func (r *ActivityRepository) All(ctx context.Context, userID string) ([]domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE user_id=$1 ORDER BY created_at DESC, id DESC`
	return r.query(ctx, query, userID)
}

// ByExactDay returns legacy-form records whose timestamp falls inside the
// calendar day plus records whose start_date or end_date equals it. Ranged
// rows never match on insertion time.
func (r *ActivityRepository) ByExactDay(ctx context.Context, userID, day string) ([]domain.Activity, error) {
	dayStart, err := time.ParseInLocation(time.DateOnly, day, r.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidDate, day)
	}
	query := `SELECT ` + activityColumns + ` FROM activities
        WHERE user_id=$1 AND ((time_shape='legacy' AND created_at >= $2 AND created_at < $3) OR start_date = $4 OR end_date = $4)
        ORDER BY created_at DESC, id DESC`
	return r.query(ctx, query, userID, dayStart, dayStart.AddDate(0, 0, 1), day)
}

// ByLegacyRange returns records whose created_at falls in [start, end),
// newest-first.
func (r *ActivityRepository) ByLegacyRange(ctx context.Context, userID string, start, end time.Time) ([]domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities
        WHERE user_id=$1 AND created_at >= $2 AND created_at < $3
        ORDER BY created_at DESC, id DESC`
	return r.query(ctx, query, userID, start, end)
}

// ByDateFieldRange returns records whose start_date or end_date falls in
// [startDay, endDay). The dates are ISO strings, so lexicographic range
// predicates are calendar-correct; legacy rows carry empty strings and never
// match.
func (r *ActivityRepository) ByDateFieldRange(ctx context.Context, userID, startDay, endDay string) ([]domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities
        WHERE user_id=$1 AND ((start_date >= $2 AND start_date < $3) OR (end_date >= $2 AND end_date < $3))
        ORDER BY created_at DESC, id DESC`
	return r.query(ctx, query, userID, startDay, endDay)
}

func (r *ActivityRepository) query(ctx context.Context, query string, args ...interface{}) ([]domain.Activity, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := make([]domain.Activity, 0)
	for rows.Next() {
		var (
			activity domain.Activity
			shape    string
		)
		if err := rows.Scan(
			&activity.ID,
			&activity.UserID,
			&activity.Label,
			&activity.Duration,
			&shape,
			&activity.CreatedAt,
			&activity.StartDate,
			&activity.StartTime,
			&activity.EndDate,
			&activity.EndTime,
			&activity.IsCrossDay,
		); err != nil {
			return nil, err
		}
		activity.Shape = domain.TimeShape(shape)
		activities = append(activities, activity)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return activities, nil
}

// GoalRepository implements domain.GoalRepository over Postgres.
type GoalRepository struct {
	pool *pgxpool.Pool
}

// NewGoalRepository constructs a GoalRepository.
func NewGoalRepository(pool *pgxpool.Pool) *GoalRepository {
	return &GoalRepository{pool: pool}
}

const goalColumns = "id, user_id, title, description, category, priority, target_hours_per_week, is_completed, created_at"

// Create persists a goal.
func (r *GoalRepository) Create(ctx context.Context, goal domain.Goal) error {
	const stmt = `INSERT INTO goals (id, user_id, title, description, category, priority, target_hours_per_week, is_completed, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err := r.pool.Exec(ctx, stmt,
		goal.ID, goal.UserID, goal.Title, goal.Description, goal.Category,
		goal.Priority, goal.TargetHoursPerWeek, goal.IsCompleted, goal.CreatedAt)
	return err
}

// Get fetches one goal scoped to the user; nil when absent.
func (r *GoalRepository) Get(ctx context.Context, userID, goalID string) (*domain.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE id=$1 AND user_id=$2`
	row := r.pool.QueryRow(ctx, query, goalID, userID)
	var goal domain.Goal
	if err := scanGoal(row, &goal); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &goal, nil
}

// List returns the user's goals, newest-first.
func (r *GoalRepository) List(ctx context.Context, userID string) ([]domain.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE user_id=$1 ORDER BY created_at DESC, id DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals := make([]domain.Goal, 0)
	for rows.Next() {
		var goal domain.Goal
		if err := scanGoal(rows, &goal); err != nil {
			return nil, err
		}
		goals = append(goals, goal)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return goals, nil
}

// Update rewrites a goal owned by the user.
func (r *GoalRepository) Update(ctx context.Context, goal domain.Goal) error {
	const stmt = `UPDATE goals
        SET title=$3, description=$4, category=$5, priority=$6, target_hours_per_week=$7, is_completed=$8
        WHERE id=$1 AND user_id=$2`
	tag, err := r.pool.Exec(ctx, stmt,
		goal.ID, goal.UserID, goal.Title, goal.Description, goal.Category,
		goal.Priority, goal.TargetHoursPerWeek, goal.IsCompleted)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGoalNotFound
	}
	return nil
}

// Delete removes a goal owned by the user.
func (r *GoalRepository) Delete(ctx context.Context, userID, goalID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM goals WHERE id=$1 AND user_id=$2`, goalID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGoalNotFound
	}
	return nil
}

type goalScanner interface {
	Scan(dest ...interface{}) error
}

func scanGoal(row goalScanner, goal *domain.Goal) error {
	return row.Scan(
		&goal.ID,
		&goal.UserID,
		&goal.Title,
		&goal.Description,
		&goal.Category,
		&goal.Priority,
		&goal.TargetHoursPerWeek,
		&goal.IsCompleted,
		&goal.CreatedAt,
	)
}

type outboxEntry struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Topic         string
	PartitionKey  string
	Payload       interface{}
}

func insertOutbox(ctx context.Context, tx pgx.Tx, entry outboxEntry) error {
	body, err := json.Marshal(entry.Payload)
	if err != nil {
		return err
	}
	const stmt = `INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, partition_key, payload)
        VALUES ($1,$2,$3,$4,$5,$6)`
	_, err = tx.Exec(ctx, stmt,
		entry.AggregateType, entry.AggregateID, entry.EventType, entry.Topic, entry.PartitionKey, body)
	return err
}
