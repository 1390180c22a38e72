package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"careermate/internal/domain"
)

// ActivityRepository registra la actividad de los usuarios.
type ActivityRepository interface {
	Create(ctx context.Context, activity domain.Activity) error
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Activity, error)
}

type PgActivityRepository struct {
	pool *pgxpool.Pool
}

func NewPgActivityRepository(pool *pgxpool.Pool) *PgActivityRepository {
	return &PgActivityRepository{pool: pool}
}

func (r *PgActivityRepository) Create(ctx context.Context, activity domain.Activity) error {
	const query = `
		INSERT INTO user_activities (id, user_id, activity_type, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		activity.ID,
		activity.UserID,
		activity.ActivityType,
		activity.Content,
		activity.CreatedAt,
	)
	return err
}

func (r *PgActivityRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Activity, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
		SELECT id, user_id, activity_type, content, created_at
		FROM user_activities
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []domain.Activity
	for rows.Next() {
		var a domain.Activity
		if err := rows.Scan(&a.ID, &a.UserID, &a.ActivityType, &a.Content, &a.CreatedAt); err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}
