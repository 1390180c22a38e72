package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/jackc/pgx/v5"

	"careermate/internal/domain"
	"careermate/internal/service"
)

// mockUserRepo es un repositorio en memoria indexado por id.
type mockUserRepo struct {
	users map[string]domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]domain.User)}
}

func (m *mockUserRepo) lookup(match func(domain.User) bool) (domain.User, error) {
	for _, u := range m.users {
		if match(u) {
			return u, nil
		}
	}
	return domain.User{}, pgx.ErrNoRows
}

func (m *mockUserRepo) mutate(id string, apply func(*domain.User)) error {
	u, ok := m.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	apply(&u)
	m.users[id] = u
	return nil
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	return m.lookup(func(u domain.User) bool { return u.ID == id })
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	return m.lookup(func(u domain.User) bool { return email != "" && u.Email == email })
}

func (m *mockUserRepo) GetByAuth(_ context.Context, provider, subject string) (domain.User, error) {
	return m.lookup(func(u domain.User) bool { return subject != "" && u.AuthProvider == provider && u.AuthSubject == subject })
}

func (m *mockUserRepo) UpdateOTP(_ context.Context, id, otpHash string, otpExpiresAt time.Time) error {
	return m.mutate(id, func(u *domain.User) { u.OtpCodeHash, u.OtpExpiresAt = otpHash, &otpExpiresAt })
}

func (m *mockUserRepo) VerifyEmail(_ context.Context, id string, verifiedAt time.Time) error {
	return m.mutate(id, func(u *domain.User) {
		u.EmailVerifiedAt = &verifiedAt
		u.OtpCodeHash, u.OtpExpiresAt = "", nil
	})
}

func (m *mockUserRepo) LinkOAuth(_ context.Context, id, provider, subject string) error {
	return m.mutate(id, func(u *domain.User) { u.AuthProvider, u.AuthSubject = provider, subject })
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id, passwordHash string, verifiedAt time.Time) error {
	return m.mutate(id, func(u *domain.User) {
		u.PasswordHash = passwordHash
		if u.EmailVerifiedAt == nil {
			u.EmailVerifiedAt = &verifiedAt
		}
		u.OtpCodeHash, u.OtpExpiresAt = "", nil
	})
}

// mockEmailSender captura el ultimo codigo y el ultimo reporte enviados.
type mockEmailSender struct {
	lastTo     string
	lastCode   string
	lastReport string
	resets     int
	err        error
}

func (m *mockEmailSender) SendVerificationOTP(_ context.Context, toEmail, code string, _ time.Time) error {
	m.lastTo, m.lastCode = toEmail, code
	return m.err
}

func (m *mockEmailSender) SendPasswordReset(_ context.Context, toEmail, code string, _ time.Time) error {
	m.lastTo, m.lastCode = toEmail, code
	m.resets++
	return m.err
}

func (m *mockEmailSender) SendReportReady(_ context.Context, toEmail, _ string, fileName string) error {
	m.lastTo, m.lastReport = toEmail, fileName
	return m.err
}

type mockLimiter struct {
	allow bool
}

func (m *mockLimiter) Allow(context.Context, string) bool {
	return m.allow
}

func newTestJWT() *service.JWTService {
	return service.NewJWTServiceWithStore("secret", 15*time.Minute, 30*time.Minute, service.NewMemoryRefreshTokenStore())
}

func performRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}
