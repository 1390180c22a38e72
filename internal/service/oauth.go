package service

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"careermate/internal/domain"
)

// OAuthIdentity es lo que un proveedor afirma sobre el usuario, ya con la firma comprobada.
type OAuthIdentity struct {
	Provider      string
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
}

// OAuthVerifier comprueba un ID token emitido por un proveedor externo.
type OAuthVerifier interface {
	Verify(ctx context.Context, provider, idToken string) (OAuthIdentity, error)
}

// OAuthProvider describe como validar los tokens de un proveedor. Key es *rsa.PublicKey
// para RS256 o []byte para HS256.
type OAuthProvider struct {
	Issuer   string
	Audience string
	Key      any
}

// NewRSAProvider arma un proveedor que firma con RS256 a partir de la clave publica en PEM.
func NewRSAProvider(issuer, audience string, pemKey []byte) (OAuthProvider, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM(pemKey)
	if err != nil {
		return OAuthProvider{}, fmt.Errorf("parse %s public key: %w", issuer, err)
	}
	return OAuthProvider{Issuer: issuer, Audience: audience, Key: key}, nil
}

type idTokenClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	jwt.RegisteredClaims
}

// IDTokenVerifier valida ID tokens contra una lista fija de proveedores.
type IDTokenVerifier struct {
	providers map[string]OAuthProvider
}

func NewIDTokenVerifier(providers map[string]OAuthProvider) *IDTokenVerifier {
	normalized := make(map[string]OAuthProvider, len(providers))
	for name, p := range providers {
		normalized[strings.ToLower(strings.TrimSpace(name))] = p
	}
	return &IDTokenVerifier{providers: normalized}
}

func (v *IDTokenVerifier) Verify(_ context.Context, provider, idToken string) (OAuthIdentity, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	cfg, ok := v.providers[provider]
	if !ok {
		return OAuthIdentity{}, fmt.Errorf("%w: unknown provider %q", ErrOAuthInvalid, provider)
	}

	var method string
	switch cfg.Key.(type) {
	case *rsa.PublicKey:
		method = jwt.SigningMethodRS256.Alg()
	case []byte:
		method = jwt.SigningMethodHS256.Alg()
	default:
		return OAuthIdentity{}, fmt.Errorf("provider %q has no usable key", provider)
	}

	claims := &idTokenClaims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(idToken), claims,
		func(*jwt.Token) (any, error) { return cfg.Key, nil },
		jwt.WithValidMethods([]string{method}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(cfg.Audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return OAuthIdentity{}, fmt.Errorf("%w: %v", ErrOAuthInvalid, err)
	}
	if claims.Subject == "" {
		return OAuthIdentity{}, fmt.Errorf("%w: token has no subject", ErrOAuthInvalid)
	}

	return OAuthIdentity{
		Provider:      provider,
		Subject:       claims.Subject,
		Email:         normalizeEmail(claims.Email),
		EmailVerified: claims.EmailVerified,
		Name:          strings.TrimSpace(claims.Name),
	}, nil
}

// OAuthLogin inicia sesion con un ID token. La identidad solo se enlaza a una cuenta
// existente cuando esa cuenta no tiene otro metodo de acceso; si lo tiene se devuelve
// ErrOAuthAccountConflict y el usuario debe entrar con su contraseña.
func (s *UserService) OAuthLogin(ctx context.Context, provider, idToken string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errUsersNotConfigured
	}
	if s.oauth == nil {
		return domain.User{}, ErrOAuthNotConfigured
	}

	id, err := s.oauth.Verify(ctx, provider, idToken)
	if err != nil {
		s.logger.Info("oauth token rejected", zap.String("provider", provider), zap.Error(err))
		if errors.Is(err, ErrOAuthInvalid) {
			return domain.User{}, err
		}
		return domain.User{}, fmt.Errorf("%w: %v", ErrOAuthInvalid, err)
	}

	user, err := s.users.GetByAuth(ctx, id.Provider, id.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	if !id.EmailVerified || !looksLikeEmail(id.Email) {
		return domain.User{}, fmt.Errorf("%w: provider did not vouch for an email", ErrOAuthInvalid)
	}

	verifiedAt := s.now()
	existing, err := s.users.GetByEmail(ctx, id.Email)
	switch {
	case err == nil:
		if existing.PasswordHash != "" || existing.AuthSubject != "" {
			s.logger.Warn("oauth email matches account with another sign-in method",
				zap.String("user_id", existing.ID), zap.String("provider", id.Provider))
			return domain.User{}, ErrOAuthAccountConflict
		}
		if err := s.users.LinkOAuth(ctx, existing.ID, id.Provider, id.Subject); err != nil {
			return domain.User{}, err
		}
		if err := s.users.VerifyEmail(ctx, existing.ID, verifiedAt); err != nil {
			return domain.User{}, err
		}
		existing.AuthProvider = id.Provider
		existing.AuthSubject = id.Subject
		existing.EmailVerifiedAt = &verifiedAt
		s.logger.Info("oauth identity linked", zap.String("user_id", existing.ID), zap.String("provider", id.Provider))
		return existing, nil
	case !errors.Is(err, pgx.ErrNoRows):
		return domain.User{}, err
	}

	user = domain.User{
		ID:              uuid.NewString(),
		Email:           id.Email,
		Username:        id.Name,
		AuthProvider:    id.Provider,
		AuthSubject:     id.Subject,
		EmailVerifiedAt: &verifiedAt,
		CreatedAt:       verifiedAt,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("provider", user.AuthProvider))
	return user, nil
}
