package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"careermate/internal/domain"
	"careermate/internal/service"
)

type memorySubscriptionRepo struct {
	mu   sync.Mutex
	subs map[string]domain.Subscription
}

func newMemorySubscriptionRepo() *memorySubscriptionRepo {
	return &memorySubscriptionRepo{subs: make(map[string]domain.Subscription)}
}

func (m *memorySubscriptionRepo) Activate(_ context.Context, sub domain.Subscription) (domain.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := sub.UserID + "|" + sub.FeatureID
	if existing, ok := m.subs[key]; ok {
		sub.ID = existing.ID
	}
	sub.CancelledAt = nil
	m.subs[key] = sub
	return sub, nil
}

func (m *memorySubscriptionRepo) Cancel(_ context.Context, userID, featureID string, cancelledAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := userID + "|" + featureID
	sub, ok := m.subs[key]
	if !ok || !sub.Active {
		return pgx.ErrNoRows
	}
	sub.Active = false
	sub.CancelledAt = &cancelledAt
	m.subs[key] = sub
	return nil
}

func (m *memorySubscriptionRepo) GetActive(_ context.Context, userID, featureID string) (domain.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subs[userID+"|"+featureID]
	if !ok || !sub.Active {
		return domain.Subscription{}, pgx.ErrNoRows
	}
	return sub, nil
}

func (m *memorySubscriptionRepo) ListByUser(_ context.Context, userID string) ([]domain.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Subscription
	for _, sub := range m.subs {
		if sub.UserID == userID {
			out = append(out, sub)
		}
	}
	return out, nil
}

func setupSubscriptionRouter(t *testing.T) (*gin.Engine, *service.SubscriptionTierResolver, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := newMemorySubscriptionRepo()
	resolver := service.NewSubscriptionTierResolver(repo)
	svc := service.NewSubscriptionService(zap.NewNop(), repo, nil, nil)

	jwtSvc := newTestJWT()
	pair, err := jwtSvc.GeneratePair(context.Background(), domain.User{ID: "u1"})
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}

	h := NewSubscriptionHandler(zap.NewNop(), svc)
	r := gin.New()
	subs := r.Group("/subscriptions", JWTAuthMiddleware(jwtSvc))
	subs.GET("", h.List)
	subs.POST("/:feature", h.Subscribe)
	subs.DELETE("/:feature", h.Cancel)
	return r, resolver, pair.AccessToken
}

func authedRequest(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSubscriptionHandler_Lifecycle(t *testing.T) {
	r, resolver, token := setupSubscriptionRouter(t)
	ctx := context.Background()

	rec := authedRequest(r, http.MethodPost, "/subscriptions/career_test", token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}
	if tier, _ := resolver.ResolveTier(ctx, "u1"); tier != domain.TierPremium {
		t.Fatalf("expected premium after subscribing, got %q", tier)
	}

	rec = authedRequest(r, http.MethodGet, "/subscriptions", token)
	var list struct {
		Subscriptions []domain.Subscription `json:"subscriptions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Subscriptions) != 1 || list.Subscriptions[0].FeatureID != domain.FeatureCareerTest {
		t.Fatalf("unexpected subscriptions: %s", rec.Body.String())
	}

	rec = authedRequest(r, http.MethodDelete, "/subscriptions/career_test", token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
	if tier, _ := resolver.ResolveTier(ctx, "u1"); tier != domain.TierFree {
		t.Fatalf("expected free after cancelling, got %q", tier)
	}

	rec = authedRequest(r, http.MethodDelete, "/subscriptions/career_test", token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 on second cancel, got %d", rec.Code)
	}
}

func TestSubscriptionHandler_UnknownFeature(t *testing.T) {
	r, _, token := setupSubscriptionRouter(t)
	rec := authedRequest(r, http.MethodPost, "/subscriptions/time_travel", token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}
