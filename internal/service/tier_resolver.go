package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"careermate/internal/domain"
	"careermate/internal/metrics"
	"careermate/internal/repository"
)

// TierResolver determina el tier del test vocacional de un usuario.
type TierResolver interface {
	ResolveTier(ctx context.Context, userID string) (domain.Tier, error)
}

// SubscriptionTierResolver deriva el tier de las suscripciones activas.
type SubscriptionTierResolver struct {
	subs repository.SubscriptionRepository
}

func NewSubscriptionTierResolver(subs repository.SubscriptionRepository) *SubscriptionTierResolver {
	return &SubscriptionTierResolver{subs: subs}
}

func (r *SubscriptionTierResolver) ResolveTier(ctx context.Context, userID string) (domain.Tier, error) {
	if r.subs == nil {
		return domain.TierFree, nil
	}
	_, err := r.subs.GetActive(ctx, userID, domain.FeatureCareerTest)
	if err == nil {
		return domain.TierPremium, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.TierFree, nil
	}
	return "", err
}

type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// CachedTierResolver cachea en redis el tier resuelto por otro resolver.
// Si redis falla se consulta directamente al resolver envuelto.
//
// Los cambios de suscripcion escriben el tier nuevo con Store. Las lecturas solo llenan
// una clave ausente (SET NX), asi una lectura que consulto la base antes del cambio no
// pisa el valor nuevo. Si Store falla, el tier anterior puede servirse hasta que venza ttl.
type CachedTierResolver struct {
	next    TierResolver
	client  redisKV
	ttl     time.Duration
	prefix  string
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewCachedTierResolver(next TierResolver, client *redis.Client, ttl time.Duration, logger *zap.Logger, m *metrics.Metrics) *CachedTierResolver {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &CachedTierResolver{
		next:    next,
		ttl:     ttl,
		prefix:  "tier:" + domain.FeatureCareerTest + ":",
		logger:  logger,
		metrics: m,
	}
	if client != nil {
		c.client = client
	}
	return c
}

func (c *CachedTierResolver) ResolveTier(ctx context.Context, userID string) (domain.Tier, error) {
	if c.client == nil {
		return c.next.ResolveTier(ctx, userID)
	}
	key := c.prefix + userID

	getCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	cached, err := c.client.Get(getCtx, key).Result()
	cancel()
	garbage := false
	switch {
	case err == nil:
		if tier := domain.Tier(cached); tier.Valid() {
			c.observe("hit")
			return tier, nil
		}
		garbage = true
		c.observe("miss")
	case errors.Is(err, redis.Nil):
		c.observe("miss")
	default:
		c.observe("error")
		c.logger.Warn("tier cache read failed", zap.String("user_id", userID), zap.Error(err))
	}

	tier, err := c.next.ResolveTier(ctx, userID)
	if err != nil {
		return "", err
	}

	setCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	// Una clave con basura se reemplaza; una ausente solo se llena si nadie la escribio antes.
	if garbage {
		err = c.client.Set(setCtx, key, string(tier), c.ttl).Err()
	} else {
		err = c.client.SetNX(setCtx, key, string(tier), c.ttl).Err()
	}
	if err != nil {
		c.logger.Warn("tier cache write failed", zap.String("user_id", userID), zap.Error(err))
	}
	return tier, nil
}

// Store reemplaza el tier cacheado del usuario. Si la escritura falla intenta borrar la
// clave para que la proxima lectura vaya a la base.
func (c *CachedTierResolver) Store(ctx context.Context, userID string, tier domain.Tier) error {
	if c.client == nil {
		return nil
	}
	if !tier.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidTier, tier)
	}
	setCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	err := c.client.Set(setCtx, c.prefix+userID, string(tier), c.ttl).Err()
	cancel()
	if err == nil {
		return nil
	}
	if delErr := c.Invalidate(ctx, userID); delErr != nil {
		return errors.Join(err, delErr)
	}
	return err
}

// Invalidate borra el tier cacheado.
func (c *CachedTierResolver) Invalidate(ctx context.Context, userID string) error {
	if c.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	return c.client.Del(ctx, c.prefix+userID).Err()
}

func (c *CachedTierResolver) observe(result string) {
	if c.metrics != nil {
		c.metrics.TierCacheLookupsTotal.WithLabelValues(result).Inc()
	}
}
