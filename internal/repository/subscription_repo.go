package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"careermate/internal/domain"
)

// SubscriptionRepository gestiona las suscripciones a features pagas.
type SubscriptionRepository interface {
	// Activate crea la suscripcion o reactiva la existente.
	Activate(ctx context.Context, sub domain.Subscription) (domain.Subscription, error)
	Cancel(ctx context.Context, userID, featureID string, cancelledAt time.Time) error
	GetActive(ctx context.Context, userID, featureID string) (domain.Subscription, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Subscription, error)
}

type PgSubscriptionRepository struct {
	pool *pgxpool.Pool
}

func NewPgSubscriptionRepository(pool *pgxpool.Pool) *PgSubscriptionRepository {
	return &PgSubscriptionRepository{pool: pool}
}

func (r *PgSubscriptionRepository) Activate(ctx context.Context, sub domain.Subscription) (domain.Subscription, error) {
	const query = `
		INSERT INTO feature_subscriptions (id, user_id, feature_id, active, started_at, cancelled_at)
		VALUES ($1, $2, $3, TRUE, $4, NULL)
		ON CONFLICT (user_id, feature_id)
		DO UPDATE SET active = TRUE, started_at = EXCLUDED.started_at, cancelled_at = NULL
		RETURNING id, user_id, feature_id, active, started_at, cancelled_at
	`
	row := r.pool.QueryRow(ctx, query, sub.ID, sub.UserID, sub.FeatureID, sub.StartedAt)
	return scanSubscription(row)
}

func (r *PgSubscriptionRepository) Cancel(ctx context.Context, userID, featureID string, cancelledAt time.Time) error {
	const query = `
		UPDATE feature_subscriptions
		SET active = FALSE, cancelled_at = $3
		WHERE user_id = $1 AND feature_id = $2 AND active
	`
	return execOne(ctx, r.pool, query, userID, featureID, cancelledAt)
}

func (r *PgSubscriptionRepository) GetActive(ctx context.Context, userID, featureID string) (domain.Subscription, error) {
	const query = `
		SELECT id, user_id, feature_id, active, started_at, cancelled_at
		FROM feature_subscriptions
		WHERE user_id = $1 AND feature_id = $2 AND active
	`
	return scanSubscription(r.pool.QueryRow(ctx, query, userID, featureID))
}

func (r *PgSubscriptionRepository) ListByUser(ctx context.Context, userID string) ([]domain.Subscription, error) {
	const query = `
		SELECT id, user_id, feature_id, active, started_at, cancelled_at
		FROM feature_subscriptions
		WHERE user_id = $1
		ORDER BY started_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []domain.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func scanSubscription(row pgx.Row) (domain.Subscription, error) {
	var s domain.Subscription
	err := row.Scan(&s.ID, &s.UserID, &s.FeatureID, &s.Active, &s.StartedAt, &s.CancelledAt)
	if err != nil {
		return domain.Subscription{}, err
	}
	return s, nil
}
