package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"careermate/internal/domain"
)

const (
	otpTTL    = 10 * time.Minute
	otpDigits = 6
)

type codePurpose int

const (
	purposeVerify codePurpose = iota
	purposeReset
)

func (p codePurpose) String() string {
	if p == purposeReset {
		return "password_reset"
	}
	return "email_verification"
}

// RequestOTP manda un codigo de verificacion. Un email desconocido crea una cuenta sin
// contraseña.
func (s *UserService) RequestOTP(ctx context.Context, emailAddr, username string) (domain.User, error) {
	emailAddr, err := s.admitCodeRequest(ctx, emailAddr)
	if err != nil {
		return domain.User{}, err
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if errors.Is(err, pgx.ErrNoRows) {
		user = domain.User{
			ID:        uuid.NewString(),
			Email:     emailAddr,
			Username:  strings.TrimSpace(username),
			CreatedAt: s.now(),
		}
		err = s.users.Create(ctx, user)
	}
	if err != nil {
		return domain.User{}, err
	}

	if err := s.sendCode(ctx, &user, purposeVerify); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// VerifyOTP confirma el email con el ultimo codigo enviado.
func (s *UserService) VerifyOTP(ctx context.Context, emailAddr, code string) (domain.User, error) {
	user, err := s.redeemCode(ctx, emailAddr, code)
	if err != nil {
		return domain.User{}, err
	}

	verifiedAt := s.now()
	if err := s.users.VerifyEmail(ctx, user.ID, verifiedAt); err != nil {
		return domain.User{}, err
	}
	user.EmailVerifiedAt = &verifiedAt
	user.OtpCodeHash = ""
	user.OtpExpiresAt = nil
	return user, nil
}

// RequestPasswordReset manda un codigo para cambiar la contraseña. Un email desconocido
// no es un error, para no revelar que cuentas existen.
func (s *UserService) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	emailAddr, err := s.admitCodeRequest(ctx, emailAddr)
	if err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if errors.Is(err, pgx.ErrNoRows) {
		s.logger.Info("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}
	return s.sendCode(ctx, &user, purposeReset)
}

// ResetPassword canjea el codigo y fija la nueva contraseña. Recibir el codigo prueba que
// el email es del usuario, asi que tambien queda verificado.
func (s *UserService) ResetPassword(ctx context.Context, emailAddr, code, newPassword string) (domain.User, error) {
	hash, err := hashPassword(newPassword)
	if err != nil {
		return domain.User{}, err
	}
	user, err := s.redeemCode(ctx, emailAddr, code)
	if err != nil {
		return domain.User{}, err
	}

	verifiedAt := s.now()
	if user.EmailVerifiedAt != nil {
		verifiedAt = *user.EmailVerifiedAt
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash, verifiedAt); err != nil {
		return domain.User{}, err
	}
	s.logger.Info("password reset", zap.String("user_id", user.ID))

	user.PasswordHash = hash
	user.EmailVerifiedAt = &verifiedAt
	user.OtpCodeHash = ""
	user.OtpExpiresAt = nil
	return user, nil
}

func (s *UserService) admitCodeRequest(ctx context.Context, emailAddr string) (string, error) {
	if s.users == nil {
		return "", errUsersNotConfigured
	}
	emailAddr = normalizeEmail(emailAddr)
	if !looksLikeEmail(emailAddr) {
		return "", ErrInvalidEmail
	}
	if s.limiter != nil && !s.limiter.Allow(ctx, emailAddr) {
		return "", ErrRateLimited
	}
	return emailAddr, nil
}

// sendCode guarda el hash de un codigo nuevo y lo envia. Un codigo nuevo reemplaza al
// anterior sin importar su proposito.
func (s *UserService) sendCode(ctx context.Context, user *domain.User, purpose codePurpose) error {
	code, hash, err := generateOTP()
	if err != nil {
		return err
	}
	expiresAt := s.now().Add(otpTTL)
	if err := s.users.UpdateOTP(ctx, user.ID, hash, expiresAt); err != nil {
		return err
	}

	if s.mailer == nil {
		return ErrEmailSendFailure
	}
	if purpose == purposeReset {
		err = s.mailer.SendPasswordReset(ctx, user.Email, code, expiresAt)
	} else {
		err = s.mailer.SendVerificationOTP(ctx, user.Email, code, expiresAt)
	}
	if err != nil {
		s.logger.Warn("send otp failed", zap.Error(err), zap.String("user_id", user.ID), zap.Stringer("purpose", purpose))
		return ErrEmailSendFailure
	}

	user.OtpCodeHash = hash
	user.OtpExpiresAt = &expiresAt
	return nil
}

func (s *UserService) redeemCode(ctx context.Context, emailAddr, code string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errUsersNotConfigured
	}
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return domain.User{}, ErrInvalidEmail
	}
	code = strings.TrimSpace(code)
	if !isValidOTPCode(code) {
		return domain.User{}, ErrOTPInvalid
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}

	switch {
	case user.OtpCodeHash == "" || user.OtpExpiresAt == nil:
		return domain.User{}, ErrOTPNotRequested
	case s.now().After(*user.OtpExpiresAt):
		return domain.User{}, ErrOTPExpired
	case !otpMatches(code, user.OtpCodeHash):
		return domain.User{}, ErrOTPInvalid
	}
	return user, nil
}

// generateOTP devuelve el codigo en claro y "salt:sha256(salt:codigo)" para guardar.
func generateOTP() (string, string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", "", err
	}
	code := fmt.Sprintf("%0*d", otpDigits, n.Int64())

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", "", err
	}
	saltStr := base64.StdEncoding.EncodeToString(salt)
	return code, saltStr + ":" + digestOTP(saltStr, code), nil
}

func otpMatches(code, stored string) bool {
	saltStr, want, ok := strings.Cut(stored, ":")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(digestOTP(saltStr, code)), []byte(want)) == 1
}

func digestOTP(salt, code string) string {
	sum := sha256.Sum256([]byte(salt + ":" + code))
	return base64.StdEncoding.EncodeToString(sum[:])
}

func isValidOTPCode(code string) bool {
	if len(code) != otpDigits {
		return false
	}
	return strings.IndexFunc(code, func(r rune) bool { return r < '0' || r > '9' }) < 0
}
