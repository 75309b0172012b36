package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brn-maker/time-manager-ai2/internal/events"
)

// DefaultCreditGrant is the number of analysis credits a user record starts
// with when first referenced.
const DefaultCreditGrant = 5

// CreditStore manages the per-user analysis quota. Records are created lazily
// on first reference and never deleted.
type CreditStore struct {
	pool  *pgxpool.Pool
	grant int
}

// NewCreditStore constructs a CreditStore with the default starting grant.
func NewCreditStore(pool *pgxpool.Pool) *CreditStore {
	return &CreditStore{pool: pool, grant: DefaultCreditGrant}
}

func (s *CreditStore) ensure(ctx context.Context, userID string) error {
	const stmt = `INSERT INTO users (user_id, ai_analysis_count, created_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id) DO NOTHING`
	_, err := s.pool.Exec(ctx, stmt, userID, s.grant, time.Now().UTC())
	return err
}

// Balance returns the remaining credit count, creating the record with the
// starting grant when the user is new.
func (s *CreditStore) Balance(ctx context.Context, userID string) (int, error) {
	if err := s.ensure(ctx, userID); err != nil {
		return 0, err
	}
	var count int
	err := s.pool.QueryRow(ctx, `SELECT ai_analysis_count FROM users WHERE user_id=$1`, userID).Scan(&count)
	return count, err
}

// Consume atomically decrements the credit count when it is positive. It
// reports the remaining balance and whether a credit was actually taken; the
// count can never go negative regardless of interleaving.
func (s *CreditStore) Consume(ctx context.Context, userID string) (int, bool, error) {
	const stmt = `UPDATE users
        SET ai_analysis_count = ai_analysis_count - 1
        WHERE user_id=$1 AND ai_analysis_count > 0
        RETURNING ai_analysis_count`
	var remaining int
	err := s.pool.QueryRow(ctx, stmt, userID).Scan(&remaining)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return remaining, true, nil
}

// AddCredits increments the credit count and records a credits.granted outbox
// event in the same transaction. Used by the payment webhook only.
func (s *CreditStore) AddCredits(ctx context.Context, userID string, credits int, reference string) error {
	if err := s.ensure(ctx, userID); err != nil {
		return err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE users SET ai_analysis_count = ai_analysis_count + $2 WHERE user_id=$1`,
		userID, credits); err != nil {
		return err
	}

	if err := insertOutbox(ctx, tx, outboxEntry{
		AggregateType: "user",
		AggregateID:   userID,
		EventType:     events.TypeCreditsGranted,
		Topic:         events.TopicCreditEvents,
		PartitionKey:  userID,
		Payload: events.CreditsGranted{
			UserID:    userID,
			Credits:   credits,
			Reference: reference,
			GrantedAt: time.Now().UTC(),
		},
	}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
