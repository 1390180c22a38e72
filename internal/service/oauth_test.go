package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"careermate/internal/domain"
)

const (
	testBrokerIssuer   = "https://id.careermate.test"
	testBrokerAudience = "careermate-web"
)

var testBrokerSecret = []byte("broker-signing-secret")

type tokenOpts struct {
	subject  string
	email    string
	verified bool
	issuer   string
	audience string
	expires  time.Time
}

func signIDToken(t *testing.T, method jwt.SigningMethod, key any, o tokenOpts) string {
	t.Helper()
	if o.issuer == "" {
		o.issuer = testBrokerIssuer
	}
	if o.audience == "" {
		o.audience = testBrokerAudience
	}
	if o.expires.IsZero() {
		o.expires = time.Now().Add(time.Hour)
	}
	claims := idTokenClaims{
		Email:         o.email,
		EmailVerified: o.verified,
		Name:          "Ana",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   o.subject,
			Issuer:    o.issuer,
			Audience:  jwt.ClaimStrings{o.audience},
			ExpiresAt: jwt.NewNumericDate(o.expires),
		},
	}
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func brokerToken(t *testing.T, o tokenOpts) string {
	return signIDToken(t, jwt.SigningMethodHS256, testBrokerSecret, o)
}

func newBrokerVerifier() *IDTokenVerifier {
	return NewIDTokenVerifier(map[string]OAuthProvider{
		"broker": {Issuer: testBrokerIssuer, Audience: testBrokerAudience, Key: testBrokerSecret},
	})
}

func newOAuthUserService(repo *mockUserRepo) *UserService {
	return NewUserService(zap.NewNop(), repo, &mockEmailSender{}, nil, newBrokerVerifier())
}

func TestIDTokenVerifier_Rejections(t *testing.T) {
	v := newBrokerVerifier()
	ctx := context.Background()
	valid := tokenOpts{subject: "sub-1", email: "ana@example.com", verified: true}

	cases := []struct {
		name     string
		provider string
		token    string
	}{
		{"unknown provider", "github", brokerToken(t, valid)},
		{"wrong secret", "broker", signIDToken(t, jwt.SigningMethodHS256, []byte("other"), valid)},
		{"wrong issuer", "broker", brokerToken(t, tokenOpts{subject: "sub-1", issuer: "https://evil.test"})},
		{"wrong audience", "broker", brokerToken(t, tokenOpts{subject: "sub-1", audience: "someone-else"})},
		{"expired", "broker", brokerToken(t, tokenOpts{subject: "sub-1", expires: time.Now().Add(-time.Minute)})},
		{"no subject", "broker", brokerToken(t, tokenOpts{email: "ana@example.com", verified: true})},
		{"garbage", "broker", "not-a-jwt"},
	}
	for _, tc := range cases {
		if _, err := v.Verify(ctx, tc.provider, tc.token); !errors.Is(err, ErrOAuthInvalid) {
			t.Fatalf("%s: expected ErrOAuthInvalid, got %v", tc.name, err)
		}
	}

	id, err := v.Verify(ctx, " Broker ", brokerToken(t, tokenOpts{subject: "sub-1", email: " Ana@Example.com", verified: true}))
	if err != nil {
		t.Fatalf("valid token: %v", err)
	}
	if id.Provider != "broker" || id.Subject != "sub-1" || id.Email != "ana@example.com" || !id.EmailVerified {
		t.Fatalf("unexpected identity %+v", id)
	}
}

func TestIDTokenVerifier_RSAProvider(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	google, err := NewRSAProvider("https://accounts.google.com", "client-123", pemKey)
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	v := NewIDTokenVerifier(map[string]OAuthProvider{"google": google})

	opts := tokenOpts{subject: "g-1", email: "ana@example.com", verified: true, issuer: "https://accounts.google.com", audience: "client-123"}
	if _, err := v.Verify(context.Background(), "google", signIDToken(t, jwt.SigningMethodRS256, priv, opts)); err != nil {
		t.Fatalf("rs256 token: %v", err)
	}
	// Un HS256 firmado con la clave publica no debe pasar por RS256.
	if _, err := v.Verify(context.Background(), "google", signIDToken(t, jwt.SigningMethodHS256, pemKey, opts)); !errors.Is(err, ErrOAuthInvalid) {
		t.Fatalf("alg confusion: expected ErrOAuthInvalid, got %v", err)
	}

	if _, err := NewRSAProvider("x", "y", []byte("not pem")); err == nil {
		t.Fatalf("expected error for invalid pem")
	}
}

func TestUserServiceOAuthLogin_DoesNotTakeOverPasswordAccount(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("victim-password"), bcrypt.MinCost)
	victim := domain.User{ID: "victim", Email: "victim@example.com", PasswordHash: string(hash), AuthProvider: "local"}
	repo := newMockUserRepo(victim)
	svc := newOAuthUserService(repo)

	token := brokerToken(t, tokenOpts{subject: "attacker-sub", email: "victim@example.com", verified: true})
	user, err := svc.OAuthLogin(context.Background(), "broker", token)
	if !errors.Is(err, ErrOAuthAccountConflict) {
		t.Fatalf("expected ErrOAuthAccountConflict, got %+v, %v", user, err)
	}
	if user.ID == victim.ID {
		t.Fatalf("oauth login returned the victim account")
	}
	stored, _ := repo.GetByID(context.Background(), "victim")
	if stored.AuthSubject != "" || stored.AuthProvider != "local" {
		t.Fatalf("victim account was linked: %+v", stored)
	}
}

func TestUserServiceOAuthLogin_RejectsUnverifiedEmail(t *testing.T) {
	repo := newMockUserRepo(domain.User{ID: "u1", Email: "ana@example.com"})
	svc := newOAuthUserService(repo)

	token := brokerToken(t, tokenOpts{subject: "sub-1", email: "ana@example.com", verified: false})
	if _, err := svc.OAuthLogin(context.Background(), "broker", token); !errors.Is(err, ErrOAuthInvalid) {
		t.Fatalf("expected ErrOAuthInvalid, got %v", err)
	}
	stored, _ := repo.GetByID(context.Background(), "u1")
	if stored.AuthSubject != "" {
		t.Fatalf("unverified email must not link")
	}
}

func TestUserServiceOAuthLogin_CreatesThenReturnsSameUser(t *testing.T) {
	repo := newMockUserRepo()
	svc := newOAuthUserService(repo)
	token := brokerToken(t, tokenOpts{subject: "sub-2", email: "new@example.com", verified: true})

	first, err := svc.OAuthLogin(context.Background(), "broker", token)
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	if first.AuthProvider != "broker" || first.AuthSubject != "sub-2" || !first.Verified() || first.Username != "Ana" {
		t.Fatalf("unexpected new user %+v", first)
	}
	second, err := svc.OAuthLogin(context.Background(), "broker", token)
	if err != nil || second.ID != first.ID {
		t.Fatalf("second login: got %+v, %v", second, err)
	}
	if len(repo.users) != 1 {
		t.Fatalf("expected one account, got %d", len(repo.users))
	}
}

func TestUserServiceOAuthLogin_LinksPasswordlessAccount(t *testing.T) {
	repo := newMockUserRepo(domain.User{ID: "u1", Email: "ana@example.com"})
	svc := newOAuthUserService(repo)

	token := brokerToken(t, tokenOpts{subject: "sub-3", email: "ana@example.com", verified: true})
	user, err := svc.OAuthLogin(context.Background(), "broker", token)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != "u1" || user.AuthSubject != "sub-3" || !user.Verified() {
		t.Fatalf("expected identity linked to u1, got %+v", user)
	}
}

func TestUserServiceOAuthLogin_NotConfigured(t *testing.T) {
	svc := newTestUserService(newMockUserRepo(), &mockEmailSender{})
	if _, err := svc.OAuthLogin(context.Background(), "broker", "whatever"); !errors.Is(err, ErrOAuthNotConfigured) {
		t.Fatalf("expected ErrOAuthNotConfigured, got %v", err)
	}
}
