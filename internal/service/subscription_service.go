package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"careermate/internal/domain"
	"careermate/internal/repository"
)

var (
	ErrUnknownFeature       = errors.New("unknown feature")
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// TierCache guarda el tier vigente de un usuario despues de un cambio de suscripcion.
type TierCache interface {
	Store(ctx context.Context, userID string, tier domain.Tier) error
}

// SubscriptionService activa y cancela features pagas. No procesa pagos.
type SubscriptionService struct {
	logger     *zap.Logger
	subs       repository.SubscriptionRepository
	activities repository.ActivityRepository
	tiers      TierCache
}

func NewSubscriptionService(logger *zap.Logger, subs repository.SubscriptionRepository, activities repository.ActivityRepository, tiers TierCache) *SubscriptionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubscriptionService{
		logger:     logger,
		subs:       subs,
		activities: activities,
		tiers:      tiers,
	}
}

func (s *SubscriptionService) Subscribe(ctx context.Context, userID, featureID string) (domain.Subscription, error) {
	featureID, err := knownFeature(featureID)
	if err != nil {
		return domain.Subscription{}, err
	}

	sub, err := s.subs.Activate(ctx, domain.Subscription{
		ID:        uuid.NewString(),
		UserID:    userID,
		FeatureID: featureID,
		Active:    true,
		StartedAt: time.Now().UTC(),
	})
	if err != nil {
		return domain.Subscription{}, fmt.Errorf("activate subscription: %w", err)
	}

	s.afterChange(ctx, userID, domain.TierPremium, "Subscribed to "+featureID)
	return sub, nil
}

func (s *SubscriptionService) Cancel(ctx context.Context, userID, featureID string) error {
	featureID, err := knownFeature(featureID)
	if err != nil {
		return err
	}
	if err := s.subs.Cancel(ctx, userID, featureID, time.Now().UTC()); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrSubscriptionNotFound
		}
		return fmt.Errorf("cancel subscription: %w", err)
	}

	s.afterChange(ctx, userID, domain.TierFree, "Cancelled "+featureID)
	return nil
}

func (s *SubscriptionService) List(ctx context.Context, userID string) ([]domain.Subscription, error) {
	subs, err := s.subs.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if subs == nil {
		subs = []domain.Subscription{}
	}
	return subs, nil
}

// afterChange escribe el tier nuevo en el cache y registra la actividad. Los errores solo
// se loguean: la suscripcion ya quedo persistida.
func (s *SubscriptionService) afterChange(ctx context.Context, userID string, tier domain.Tier, content string) {
	if s.tiers != nil {
		if err := s.tiers.Store(ctx, userID, tier); err != nil {
			s.logger.Warn("tier cache update failed",
				zap.String("user_id", userID),
				zap.String("tier", tier.String()),
				zap.Error(err),
			)
		}
	}
	if s.activities == nil {
		return
	}
	err := s.activities.Create(ctx, domain.Activity{
		ID:           uuid.NewString(),
		UserID:       userID,
		ActivityType: domain.ActivitySubscription,
		Content:      content,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		s.logger.Warn("record subscription activity failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func knownFeature(featureID string) (string, error) {
	featureID = strings.ToLower(strings.TrimSpace(featureID))
	if featureID != domain.FeatureCareerTest {
		return "", fmt.Errorf("%w: %q", ErrUnknownFeature, featureID)
	}
	return featureID, nil
}
