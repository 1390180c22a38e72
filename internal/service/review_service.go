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
	ErrReviewNotFound = errors.New("review not found")
	ErrUnknownCareer  = errors.New("unknown career")
	ErrInvalidReview  = errors.New("review text and current status are required")
)

const (
	maxReviewText = 4000
	reviewsLimit  = 50
)

// CareerLookup resuelve ids del catalogo; *matching.Engine la implementa.
type CareerLookup interface {
	Career(id string) (domain.CareerProfile, bool)
}

// ReviewService publica reseñas de carreras, alterna likes y borra reseñas propias.
type ReviewService struct {
	logger     *zap.Logger
	reviews    repository.ReviewRepository
	careers    CareerLookup
	activities repository.ActivityRepository
}

func NewReviewService(logger *zap.Logger, reviews repository.ReviewRepository, careers CareerLookup, activities repository.ActivityRepository) *ReviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewService{logger: logger, reviews: reviews, careers: careers, activities: activities}
}

type ReviewInput struct {
	CareerID      string
	Rating        int
	Text          string
	Pros          string
	Cons          string
	CurrentStatus string
}

func (s *ReviewService) Create(ctx context.Context, userID string, in ReviewInput) (domain.Review, error) {
	career, err := s.career(in.CareerID)
	if err != nil {
		return domain.Review{}, err
	}
	if !domain.ValidRating(in.Rating) {
		return domain.Review{}, domain.ErrInvalidRating
	}
	text := strings.TrimSpace(in.Text)
	status := strings.TrimSpace(in.CurrentStatus)
	if text == "" || status == "" {
		return domain.Review{}, ErrInvalidReview
	}
	if len(text) > maxReviewText {
		return domain.Review{}, fmt.Errorf("%w: text longer than %d bytes", ErrInvalidReview, maxReviewText)
	}

	now := time.Now().UTC()
	review := domain.Review{
		ID:            uuid.NewString(),
		UserID:        userID,
		CareerID:      career.ID,
		Rating:        in.Rating,
		Text:          text,
		Pros:          strings.TrimSpace(in.Pros),
		Cons:          strings.TrimSpace(in.Cons),
		CurrentStatus: status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return domain.Review{}, fmt.Errorf("create review: %w", err)
	}
	s.logger.Info("review posted", zap.String("user_id", userID), zap.String("career_id", career.ID), zap.Int("rating", in.Rating))
	s.recordActivity(ctx, userID, "Reviewed "+career.Title)
	return review, nil
}

// List devuelve las reseñas de una carrera; LikedByViewer refleja a viewerID, que puede ser vacio.
func (s *ReviewService) List(ctx context.Context, careerID, viewerID string) ([]domain.Review, error) {
	career, err := s.career(careerID)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviews.ListByCareer(ctx, career.ID, viewerID, reviewsLimit)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return reviews, nil
}

func (s *ReviewService) ToggleLike(ctx context.Context, reviewID, userID string) (domain.LikeState, error) {
	state, err := s.reviews.ToggleLike(ctx, reviewID, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.LikeState{}, ErrReviewNotFound
	}
	return state, err
}

// Delete borra la reseña si es de userID. Una reseña ajena responde igual que una inexistente.
func (s *ReviewService) Delete(ctx context.Context, reviewID, userID string) error {
	err := s.reviews.DeleteOwn(ctx, reviewID, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrReviewNotFound
	}
	return err
}

func (s *ReviewService) career(id string) (domain.CareerProfile, error) {
	id = strings.TrimSpace(id)
	if s.careers == nil || id == "" {
		return domain.CareerProfile{}, ErrUnknownCareer
	}
	career, ok := s.careers.Career(id)
	if !ok {
		return domain.CareerProfile{}, fmt.Errorf("%w: %q", ErrUnknownCareer, id)
	}
	return career, nil
}

func (s *ReviewService) recordActivity(ctx context.Context, userID, content string) {
	if s.activities == nil {
		return
	}
	err := s.activities.Create(ctx, domain.Activity{
		ID:           uuid.NewString(),
		UserID:       userID,
		ActivityType: domain.ActivityReview,
		Content:      content,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		s.logger.Warn("record review activity failed", zap.String("user_id", userID), zap.Error(err))
	}
}
