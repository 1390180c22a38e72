package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"careermate/internal/domain"
	"careermate/internal/email"
	"careermate/internal/repository"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidEmail         = errors.New("invalid email")
	ErrWeakPassword         = errors.New("password too short")
	ErrEmailTaken           = errors.New("email already registered")
	ErrOTPNotRequested      = errors.New("otp not requested")
	ErrOTPExpired           = errors.New("otp expired")
	ErrOTPInvalid           = errors.New("otp invalid")
	ErrEmailSendFailure     = errors.New("email send failed")
	ErrRateLimited          = errors.New("rate limited")
	ErrOAuthInvalid         = errors.New("oauth identity invalid")
	ErrOAuthNotConfigured   = errors.New("oauth not configured")
	ErrOAuthAccountConflict = errors.New("email belongs to an account with another sign-in method")
)

var errUsersNotConfigured = errors.New("user service not configured")

const minPasswordLength = 8

// UserService maneja cuentas: registro con contraseña, codigos por email e identidades externas.
type UserService struct {
	logger  *zap.Logger
	users   repository.UserRepository
	mailer  email.Sender
	limiter OTPRateLimiter
	oauth   OAuthVerifier
	now     func() time.Time
}

// NewUserService arma el servicio. Sin limiter se usa uno en memoria; sin verifier el
// login con proveedores externos queda deshabilitado.
func NewUserService(logger *zap.Logger, users repository.UserRepository, mailer email.Sender, limiter OTPRateLimiter, oauth OAuthVerifier) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limiter == nil {
		limiter = NewOTPRateLimiter(otpTTL, 3)
	}
	return &UserService{
		logger:  logger,
		users:   users,
		mailer:  mailer,
		limiter: limiter,
		oauth:   oauth,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

type CreateUserInput struct {
	Email    string
	Username string
	Password string
}

// CreateUser registra una cuenta local. El email queda sin verificar hasta que se confirme
// un codigo.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errUsersNotConfigured
	}
	emailAddr := normalizeEmail(input.Email)
	if !looksLikeEmail(emailAddr) {
		return domain.User{}, ErrInvalidEmail
	}
	hash, err := hashPassword(input.Password)
	if err != nil {
		return domain.User{}, err
	}

	switch _, err := s.users.GetByEmail(ctx, emailAddr); {
	case err == nil:
		return domain.User{}, ErrEmailTaken
	case !errors.Is(err, pgx.ErrNoRows):
		return domain.User{}, err
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        emailAddr,
		Username:     strings.TrimSpace(input.Username),
		AuthProvider: "local",
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("provider", user.AuthProvider))
	return user, nil
}

// GetUser devuelve el usuario o ErrUserNotFound.
func (s *UserService) GetUser(ctx context.Context, id string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errUsersNotConfigured
	}
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, ErrUserNotFound
	}
	return user, err
}

// Authenticate valida email y contraseña. Cualquier falta de coincidencia, incluida una
// cuenta sin contraseña, es ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, emailAddr, password string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errUsersNotConfigured
	}
	emailAddr = normalizeEmail(emailAddr)
	password = strings.TrimSpace(password)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, err
	}
	if user.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func hashPassword(raw string) (string, error) {
	password := strings.TrimSpace(raw)
	if len([]rune(password)) < minPasswordLength {
		return "", ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func looksLikeEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t\r\n")
}
