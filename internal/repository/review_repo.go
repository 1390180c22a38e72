package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"careermate/internal/domain"
)

// ReviewRepository guarda reseñas de carreras y sus likes. Un usuario tiene como mucho un
// like por reseña; la unicidad la garantiza la PK de review_likes.
type ReviewRepository interface {
	Create(ctx context.Context, review domain.Review) error
	// ListByCareer devuelve las reseñas mas nuevas primero. viewerID puede ser vacio.
	ListByCareer(ctx context.Context, careerID, viewerID string, limit int) ([]domain.Review, error)
	// ToggleLike agrega el like si no existe o lo quita si existe. pgx.ErrNoRows si la reseña no existe.
	ToggleLike(ctx context.Context, reviewID, userID string) (domain.LikeState, error)
	// DeleteOwn borra la reseña solo si pertenece a userID; si no, pgx.ErrNoRows.
	DeleteOwn(ctx context.Context, reviewID, userID string) error
}

type PgReviewRepository struct {
	pool *pgxpool.Pool
}

func NewPgReviewRepository(pool *pgxpool.Pool) *PgReviewRepository {
	return &PgReviewRepository{pool: pool}
}

func (r *PgReviewRepository) Create(ctx context.Context, review domain.Review) error {
	const query = `
		INSERT INTO career_reviews (
			id, user_id, career_id, rating, review_text, pros, cons, current_status, likes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8, 0, $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		review.ID,
		review.UserID,
		review.CareerID,
		review.Rating,
		review.Text,
		review.Pros,
		review.Cons,
		review.CurrentStatus,
		review.CreatedAt,
		review.UpdatedAt,
	)
	return err
}

func (r *PgReviewRepository) ListByCareer(ctx context.Context, careerID, viewerID string, limit int) ([]domain.Review, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
		SELECT rv.id, rv.user_id, COALESCE(u.username, ''), rv.career_id, rv.rating, rv.review_text,
			COALESCE(rv.pros, ''), COALESCE(rv.cons, ''), rv.current_status, rv.likes,
			EXISTS (SELECT 1 FROM review_likes l WHERE l.review_id = rv.id AND l.user_id = $2),
			rv.created_at, rv.updated_at
		FROM career_reviews rv
		LEFT JOIN users u ON u.id = rv.user_id
		WHERE rv.career_id = $1
		ORDER BY rv.created_at DESC
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, careerID, viewerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(
			&rv.ID, &rv.UserID, &rv.Username, &rv.CareerID, &rv.Rating, &rv.Text,
			&rv.Pros, &rv.Cons, &rv.CurrentStatus, &rv.Likes, &rv.LikedByViewer,
			&rv.CreatedAt, &rv.UpdatedAt,
		); err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}

func (r *PgReviewRepository) ToggleLike(ctx context.Context, reviewID, userID string) (domain.LikeState, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.LikeState{}, fmt.Errorf("begin like tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Bloquea la fila para que likes concurrentes sobre la misma reseña se serialicen.
	var exists bool
	if err := tx.QueryRow(ctx, `SELECT TRUE FROM career_reviews WHERE id = $1 FOR UPDATE`, reviewID).Scan(&exists); err != nil {
		return domain.LikeState{}, err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM review_likes WHERE review_id = $1 AND user_id = $2`, reviewID, userID)
	if err != nil {
		return domain.LikeState{}, err
	}
	state := domain.LikeState{Liked: tag.RowsAffected() == 0}
	delta := -1
	if state.Liked {
		if _, err := tx.Exec(ctx,
			`INSERT INTO review_likes (review_id, user_id, created_at) VALUES ($1, $2, NOW())`,
			reviewID, userID,
		); err != nil {
			return domain.LikeState{}, err
		}
		delta = 1
	}

	if err := tx.QueryRow(ctx,
		`UPDATE career_reviews SET likes = GREATEST(likes + $2, 0) WHERE id = $1 RETURNING likes`,
		reviewID, delta,
	).Scan(&state.Likes); err != nil {
		return domain.LikeState{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.LikeState{}, fmt.Errorf("commit like tx: %w", err)
	}
	return state, nil
}

func (r *PgReviewRepository) DeleteOwn(ctx context.Context, reviewID, userID string) error {
	// review_likes cae por ON DELETE CASCADE.
	return execOne(ctx, r.pool, `DELETE FROM career_reviews WHERE id = $1 AND user_id = $2`, reviewID, userID)
}
