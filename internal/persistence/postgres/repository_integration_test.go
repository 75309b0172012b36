//go:build integration

package postgres

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/brn-maker/time-manager-ai2/internal/domain"
)

func startPostgres(t *testing.T, ctx context.Context) *pgxpool.Pool {
	t.Helper()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("tracker"),
		postgrescontainer.WithUsername("tracker"),
		postgrescontainer.WithPassword("tracker"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, waitForDatabase(ctx, connStr))

	runMigrations(t, ctx, connStr)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })
	return pool
}

func TestActivityRepositoryDualShapeQueries(t *testing.T) {
	ctx := context.Background()
	pool := startPostgres(t, ctx)
	repo := NewActivityRepository(pool, time.UTC)

	userID := uuid.NewString()

	legacy := domain.Activity{
		ID:        uuid.NewString(),
		UserID:    userID,
		Label:     "reading",
		Duration:  30,
		Shape:     domain.ShapeLegacy,
		CreatedAt: time.Date(2024, time.March, 12, 12, 0, 0, 0, time.UTC),
	}
	ranged := domain.Activity{
		ID:         uuid.NewString(),
		UserID:     userID,
		Label:      "night shift",
		Duration:   210,
		Shape:      domain.ShapeRanged,
		CreatedAt:  time.Date(2024, time.March, 16, 2, 0, 0, 0, time.UTC),
		StartDate:  "2024-03-15",
		StartTime:  "22:00",
		EndDate:    "2024-03-16",
		EndTime:    "01:30",
		IsCrossDay: true,
	}
	require.NoError(t, repo.Create(ctx, legacy))
	require.NoError(t, repo.Create(ctx, ranged))

	weekStart := time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC)
	weekEnd := weekStart.AddDate(0, 0, 7)

	byLegacy, err := repo.ByLegacyRange(ctx, userID, weekStart, weekEnd)
	require.NoError(t, err)
	require.Len(t, byLegacy, 2)
	require.Equal(t, ranged.ID, byLegacy[0].ID, "newest first")

	byRange, err := repo.ByDateFieldRange(ctx, userID, "2024-03-11", "2024-03-18")
	require.NoError(t, err)
	require.Len(t, byRange, 1, "legacy rows with empty dates must not match")
	require.Equal(t, ranged.ID, byRange[0].ID)
	require.True(t, byRange[0].IsCrossDay)

	// The cross-day record surfaces on both endpoint days.
	for _, day := range []string{"2024-03-15", "2024-03-16"} {
		found, err := repo.ByExactDay(ctx, userID, day)
		require.NoError(t, err)
		require.NotEmpty(t, found, "expected a hit on %s", day)
	}
	outside, err := repo.ByExactDay(ctx, userID, "2024-03-14")
	require.NoError(t, err)
	require.Empty(t, outside)

	// Ownership scoping: another user sees nothing and cannot mutate.
	otherUser := uuid.NewString()
	foreign, err := repo.All(ctx, otherUser)
	require.NoError(t, err)
	require.Empty(t, foreign)
	require.ErrorIs(t, repo.Delete(ctx, otherUser, legacy.ID), domain.ErrActivityNotFound)

	// Update without a new timestamp keeps the stored one; a non-zero
	// timestamp re-dates the row.
	legacy.Label = "deep reading"
	storedAt := legacy.CreatedAt
	legacy.CreatedAt = time.Time{}
	require.NoError(t, repo.Update(ctx, &legacy))
	require.True(t, legacy.CreatedAt.Equal(storedAt), "stored timestamp must be reported back")

	legacy.CreatedAt = time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Update(ctx, &legacy))
	moved, err := repo.ByExactDay(ctx, userID, "2024-03-20")
	require.NoError(t, err)
	require.Len(t, moved, 1)
	require.Equal(t, legacy.ID, moved[0].ID)
	oldDay, err := repo.ByExactDay(ctx, userID, "2024-03-12")
	require.NoError(t, err)
	require.Empty(t, oldDay)

	// A ranged row recorded outside its span never matches its insertion day.
	late := domain.Activity{
		ID:         uuid.NewString(),
		UserID:     userID,
		Label:      "late entry",
		Duration:   90,
		Shape:      domain.ShapeRanged,
		CreatedAt:  time.Date(2024, time.March, 22, 9, 0, 0, 0, time.UTC),
		StartDate:  "2024-03-15",
		StartTime:  "10:00",
		EndDate:    "2024-03-15",
		EndTime:    "11:30",
		IsCrossDay: false,
	}
	require.NoError(t, repo.Create(ctx, late))
	onInsertionDay, err := repo.ByExactDay(ctx, userID, "2024-03-22")
	require.NoError(t, err)
	require.Empty(t, onInsertionDay)

	require.NoError(t, repo.Delete(ctx, userID, legacy.ID))
}

func TestCreateRecordsOutboxEvent(t *testing.T) {
	ctx := context.Background()
	pool := startPostgres(t, ctx)
	repo := NewActivityRepository(pool, time.UTC)

	activity := domain.Activity{
		ID:        uuid.NewString(),
		UserID:    uuid.NewString(),
		Label:     "gym",
		Duration:  60,
		Shape:     domain.ShapeLegacy,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, activity))

	var (
		eventType   string
		aggregateID string
	)
	err := pool.QueryRow(ctx,
		`SELECT event_type, aggregate_id FROM outbox WHERE aggregate_id=$1 AND published_at IS NULL`,
		activity.ID).Scan(&eventType, &aggregateID)
	require.NoError(t, err)
	require.Equal(t, "activity.created", eventType)
	require.Equal(t, activity.ID, aggregateID)
}

func TestCreditStoreNeverGoesNegative(t *testing.T) {
	ctx := context.Background()
	pool := startPostgres(t, ctx)
	store := NewCreditStore(pool)

	userID := uuid.NewString()

	balance, err := store.Balance(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, DefaultCreditGrant, balance)

	// Hammer the conditional decrement from many goroutines; exactly
	// DefaultCreditGrant attempts may succeed.
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < DefaultCreditGrant*4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, taken, err := store.Consume(ctx, userID)
			require.NoError(t, err)
			if taken {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, DefaultCreditGrant, succeeded)

	balance, err = store.Balance(ctx, userID)
	require.NoError(t, err)
	require.Zero(t, balance)

	require.NoError(t, store.AddCredits(ctx, userID, 10, "ref-test"))
	balance, err = store.Balance(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, 10, balance)
}

func TestGoalRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	pool := startPostgres(t, ctx)
	repo := NewGoalRepository(pool)

	userID := uuid.NewString()
	goal := domain.Goal{
		ID:                 uuid.NewString(),
		UserID:             userID,
		Title:              "Learn Go",
		Description:        "One chapter per week",
		Category:           "learning",
		Priority:           "high",
		TargetHoursPerWeek: 6,
		CreatedAt:          time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, goal))

	stored, err := repo.Get(ctx, userID, goal.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, "Learn Go", stored.Title)

	foreign, err := repo.Get(ctx, uuid.NewString(), goal.ID)
	require.NoError(t, err)
	require.Nil(t, foreign)

	goal.IsCompleted = true
	require.NoError(t, repo.Update(ctx, goal))
	require.NoError(t, repo.Delete(ctx, userID, goal.ID))
	require.ErrorIs(t, repo.Delete(ctx, userID, goal.ID), domain.ErrGoalNotFound)
}

func runMigrations(t *testing.T, ctx context.Context, connStr string) {
	files := []string{
		"../../../db/migrations/0001_init.up.sql",
	}

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	for _, rel := range files {
		path := resolvePath(t, rel)
		contents, readErr := os.ReadFile(path)
		require.NoError(t, readErr)

		_, execErr := pool.Exec(ctx, string(contents))
		require.NoError(t, execErr)
	}
}

func resolvePath(t *testing.T, rel string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), rel)
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}
