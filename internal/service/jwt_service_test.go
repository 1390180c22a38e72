package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"careermate/internal/domain"
)

func newTestJWT(secret string) *JWTService {
	return NewJWTServiceWithStore(secret, 15*time.Minute, 30*time.Minute, NewMemoryRefreshTokenStore())
}

func TestJWTService_GenerateParseAccess(t *testing.T) {
	svc := newTestJWT("secret")
	verified := time.Now().UTC()
	user := domain.User{
		ID:              "u1",
		Email:           "user@example.com",
		Username:        "Test",
		EmailVerifiedAt: &verified,
	}

	pair, err := svc.GeneratePair(context.Background(), user)
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" || pair.ExpiresIn != 900 {
		t.Fatalf("unexpected pair %+v", pair)
	}

	claims, err := svc.ParseAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "user@example.com" || claims.Username != "Test" || !claims.EmailVerified {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Issuer != "careermate" {
		t.Fatalf("unexpected issuer %q", claims.Issuer)
	}
}

func TestJWTService_RefreshRotation(t *testing.T) {
	svc := newTestJWT("secret")
	ctx := context.Background()
	pair, err := svc.GeneratePair(ctx, domain.User{ID: "u1", Email: "user@example.com"})
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}

	refreshed, err := svc.RefreshPair(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh pair: %v", err)
	}
	claims, err := svc.ParseAccessToken(refreshed.AccessToken)
	if err != nil || claims.UserID != "u1" {
		t.Fatalf("refreshed access token invalid: %+v, %v", claims, err)
	}

	if _, err := svc.RefreshPair(ctx, pair.RefreshToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected old refresh token to be revoked, got %v", err)
	}
	if _, err := svc.RefreshPair(ctx, refreshed.RefreshToken); err != nil {
		t.Fatalf("expected rotated refresh token to work, got %v", err)
	}
}

func TestJWTService_RevokeRefresh(t *testing.T) {
	svc := newTestJWT("secret")
	ctx := context.Background()
	pair, err := svc.GeneratePair(ctx, domain.User{ID: "u1", Email: "user@example.com"})
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}

	if err := svc.RevokeRefresh(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("revoke refresh: %v", err)
	}
	if _, err := svc.RefreshPair(ctx, pair.RefreshToken); err == nil {
		t.Fatalf("expected refresh to fail after revoke")
	}
	if err := svc.RevokeRefresh(ctx, pair.AccessToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected access token rejected on revoke, got %v", err)
	}
}

func TestJWTService_RejectsEmptySecret(t *testing.T) {
	svc := newTestJWT("")
	if _, err := svc.GeneratePair(context.Background(), domain.User{ID: "u1"}); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid on empty secret, got %v", err)
	}
}

func TestJWTService_RejectsWrongTokenType(t *testing.T) {
	svc := newTestJWT("secret")
	pair, err := svc.GeneratePair(context.Background(), domain.User{ID: "u1"})
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	if _, err := svc.RefreshPair(context.Background(), pair.AccessToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid for access token used as refresh, got %v", err)
	}
	if _, err := svc.ParseAccessToken(pair.RefreshToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid for refresh token used as access, got %v", err)
	}
}

func signClaims(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestJWTService_RejectsForeignTokens(t *testing.T) {
	svc := newTestJWT("secret")
	now := time.Now().UTC()
	base := Claims{
		UserID:    "u1",
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "careermate",
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
		},
	}

	wrongIssuer := base
	wrongIssuer.Issuer = "other-issuer"
	if _, err := svc.ParseAccessToken(signClaims(t, "secret", wrongIssuer)); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid for wrong issuer, got %v", err)
	}

	if _, err := svc.ParseAccessToken(signClaims(t, "other-secret", base)); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid for wrong secret, got %v", err)
	}

	mismatched := base
	mismatched.Subject = "u2"
	if _, err := svc.ParseAccessToken(signClaims(t, "secret", mismatched)); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid for subject mismatch, got %v", err)
	}

	expired := base
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))
	if _, err := svc.ParseAccessToken(signClaims(t, "secret", expired)); !errors.Is(err, ErrJWTExpired) {
		t.Fatalf("expected ErrJWTExpired, got %v", err)
	}
}
