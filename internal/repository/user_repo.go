package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"careermate/internal/domain"
)

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByAuth(ctx context.Context, provider, subject string) (domain.User, error)
	UpdateOTP(ctx context.Context, id, otpHash string, otpExpiresAt time.Time) error
	VerifyEmail(ctx context.Context, id string, verifiedAt time.Time) error
	LinkOAuth(ctx context.Context, id, provider, subject string) error
	UpdatePassword(ctx context.Context, id, passwordHash string, verifiedAt time.Time) error
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

const userColumns = `id, email, COALESCE(username, ''), COALESCE(auth_provider, ''), COALESCE(auth_subject, ''),
	COALESCE(password_hash, ''), email_verified_at, COALESCE(otp_code_hash, ''), otp_expires_at, created_at`

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (
			id, email, username, auth_provider, auth_subject, password_hash,
			email_verified_at, otp_code_hash, otp_expires_at, created_at
		) VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7, NULLIF($8, ''), $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.Username,
		user.AuthProvider,
		user.AuthSubject,
		user.PasswordHash,
		user.EmailVerifiedAt,
		user.OtpCodeHash,
		user.OtpExpiresAt,
		user.CreatedAt,
	)
	return err
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *PgUserRepository) GetByAuth(ctx context.Context, provider, subject string) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE auth_provider = $1 AND auth_subject = $2`
	return scanUser(r.pool.QueryRow(ctx, query, provider, subject))
}

func (r *PgUserRepository) UpdateOTP(ctx context.Context, id, otpHash string, otpExpiresAt time.Time) error {
	const query = `
		UPDATE users
		SET otp_code_hash = $2, otp_expires_at = $3
		WHERE id = $1
	`
	return execOne(ctx, r.pool, query, id, otpHash, otpExpiresAt)
}

// VerifyEmail marca el email como verificado y descarta cualquier OTP pendiente.
func (r *PgUserRepository) VerifyEmail(ctx context.Context, id string, verifiedAt time.Time) error {
	const query = `
		UPDATE users
		SET email_verified_at = $2, otp_code_hash = NULL, otp_expires_at = NULL
		WHERE id = $1
	`
	return execOne(ctx, r.pool, query, id, verifiedAt)
}

func (r *PgUserRepository) LinkOAuth(ctx context.Context, id, provider, subject string) error {
	const query = `
		UPDATE users
		SET auth_provider = $2, auth_subject = $3
		WHERE id = $1
	`
	return execOne(ctx, r.pool, query, id, provider, subject)
}

// UpdatePassword guarda el hash nuevo y consume el OTP pendiente. Un email sin verificar
// queda verificado con verifiedAt, ya que el codigo llego a esa casilla.
func (r *PgUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string, verifiedAt time.Time) error {
	const query = `
		UPDATE users
		SET password_hash = $2,
			email_verified_at = COALESCE(email_verified_at, $3),
			otp_code_hash = NULL,
			otp_expires_at = NULL
		WHERE id = $1
	`
	return execOne(ctx, r.pool, query, id, passwordHash, verifiedAt)
}

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.AuthProvider,
		&u.AuthSubject,
		&u.PasswordHash,
		&u.EmailVerifiedAt,
		&u.OtpCodeHash,
		&u.OtpExpiresAt,
		&u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}
	return u, err
}

// execOne ejecuta un UPDATE y devuelve pgx.ErrNoRows si no toco ninguna fila.
func execOne(ctx context.Context, pool *pgxpool.Pool, query string, args ...any) error {
	tag, err := pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
