package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"careermate/internal/domain"
)

// TestResultRepository persiste los resultados del test vocacional.
type TestResultRepository interface {
	Create(ctx context.Context, result domain.TestResult) error
	GetByIDForUser(ctx context.Context, id, userID string) (domain.TestResult, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.TestResult, error)
}

type PgTestResultRepository struct {
	pool *pgxpool.Pool
}

func NewPgTestResultRepository(pool *pgxpool.Pool) *PgTestResultRepository {
	return &PgTestResultRepository{pool: pool}
}

// Create guarda respuestas, resultados e insights como jsonb y el perfil como vector.
func (r *PgTestResultRepository) Create(ctx context.Context, result domain.TestResult) error {
	answers, err := json.Marshal(result.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	results, err := json.Marshal(result.Results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	insights, err := json.Marshal(result.Insights)
	if err != nil {
		return fmt.Errorf("marshal insights: %w", err)
	}

	const query = `
		INSERT INTO career_test_results (
			id, user_id, answers, results, personality_insights, plan_type, profile_vector, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.pool.Exec(ctx, query,
		result.ID,
		result.UserID,
		answers,
		results,
		insights,
		string(result.Tier),
		result.ProfileVector,
		result.CreatedAt,
	)
	return err
}

// GetByIDForUser solo devuelve el resultado si pertenece al usuario.
func (r *PgTestResultRepository) GetByIDForUser(ctx context.Context, id, userID string) (domain.TestResult, error) {
	const query = `
		SELECT id, user_id, answers, results, personality_insights, plan_type, profile_vector, created_at
		FROM career_test_results
		WHERE id = $1 AND user_id = $2
	`
	rows, err := r.pool.Query(ctx, query, id, userID)
	if err != nil {
		return domain.TestResult{}, err
	}
	defer rows.Close()

	results, err := scanTestResults(rows)
	if err != nil {
		return domain.TestResult{}, err
	}
	if len(results) == 0 {
		return domain.TestResult{}, pgx.ErrNoRows
	}
	return results[0], nil
}

// ListByUser devuelve los resultados del usuario, el mas reciente primero.
func (r *PgTestResultRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.TestResult, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `
		SELECT id, user_id, answers, results, personality_insights, plan_type, profile_vector, created_at
		FROM career_test_results
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTestResults(rows)
}

func scanTestResults(rows pgxRows) ([]domain.TestResult, error) {
	var out []domain.TestResult
	for rows.Next() {
		var (
			res                        domain.TestResult
			answers, results, insights []byte
			tier                       string
		)
		if err := rows.Scan(
			&res.ID,
			&res.UserID,
			&answers,
			&results,
			&insights,
			&tier,
			&res.ProfileVector,
			&res.CreatedAt,
		); err != nil {
			return nil, err
		}
		res.Tier = domain.Tier(tier)
		if err := decodeJSONColumns(&res, answers, results, insights); err != nil {
			return nil, fmt.Errorf("result %s: %w", res.ID, err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeJSONColumns(res *domain.TestResult, answers, results, insights []byte) error {
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &res.Answers); err != nil {
			return fmt.Errorf("decode answers: %w", err)
		}
	}
	if len(results) > 0 {
		if err := json.Unmarshal(results, &res.Results); err != nil {
			return fmt.Errorf("decode results: %w", err)
		}
	}
	if len(insights) > 0 {
		if err := json.Unmarshal(insights, &res.Insights); err != nil {
			return fmt.Errorf("decode insights: %w", err)
		}
	}
	return nil
}

// pgxRows es una interfaz minima sobre pgx.Rows para poder testear el escaneo.
type pgxRows interface {
	Next() bool
	Scan(...interface{}) error
	Err() error
	Close()
}
