package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"careermate/internal/domain"
	"careermate/internal/matching"
)

// memoryReviewRepo imita career_reviews y review_likes en memoria.
type memoryReviewRepo struct {
	reviews []domain.Review
	likes   map[[2]string]bool
	err     error
}

func newMemoryReviewRepo() *memoryReviewRepo {
	return &memoryReviewRepo{likes: make(map[[2]string]bool)}
}

func (m *memoryReviewRepo) Create(_ context.Context, review domain.Review) error {
	if m.err != nil {
		return m.err
	}
	m.reviews = append(m.reviews, review)
	return nil
}

func (m *memoryReviewRepo) ListByCareer(_ context.Context, careerID, viewerID string, _ int) ([]domain.Review, error) {
	var out []domain.Review
	for i := len(m.reviews) - 1; i >= 0; i-- {
		rv := m.reviews[i]
		if rv.CareerID == careerID {
			rv.LikedByViewer = m.likes[[2]string{rv.ID, viewerID}]
			out = append(out, rv)
		}
	}
	return out, nil
}

func (m *memoryReviewRepo) index(id string) int {
	for i, rv := range m.reviews {
		if rv.ID == id {
			return i
		}
	}
	return -1
}

func (m *memoryReviewRepo) ToggleLike(_ context.Context, reviewID, userID string) (domain.LikeState, error) {
	i := m.index(reviewID)
	if i < 0 {
		return domain.LikeState{}, pgx.ErrNoRows
	}
	key := [2]string{reviewID, userID}
	if m.likes[key] {
		delete(m.likes, key)
		m.reviews[i].Likes--
	} else {
		m.likes[key] = true
		m.reviews[i].Likes++
	}
	return domain.LikeState{Liked: m.likes[key], Likes: m.reviews[i].Likes}, nil
}

func (m *memoryReviewRepo) DeleteOwn(_ context.Context, reviewID, userID string) error {
	i := m.index(reviewID)
	if i < 0 || m.reviews[i].UserID != userID {
		return pgx.ErrNoRows
	}
	m.reviews = append(m.reviews[:i], m.reviews[i+1:]...)
	return nil
}

func validReview() ReviewInput {
	return ReviewInput{
		CareerID:      "data-scientist",
		Rating:        4,
		Text:          "  Lots of statistics, worth it.  ",
		Pros:          "demand",
		CurrentStatus: "student",
	}
}

func TestReviewService_CreateAndList(t *testing.T) {
	repo := newMemoryReviewRepo()
	activities := &mockActivityRepo{}
	svc := NewReviewService(zap.NewNop(), repo, matching.NewEngine(nil), activities)
	ctx := context.Background()

	review, err := svc.Create(ctx, "u1", validReview())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if review.ID == "" || review.Text != "Lots of statistics, worth it." || review.Likes != 0 {
		t.Fatalf("unexpected review %+v", review)
	}
	if len(activities.created) != 1 || activities.created[0].ActivityType != domain.ActivityReview {
		t.Fatalf("expected review activity, got %+v", activities.created)
	}

	list, err := svc.List(ctx, "data-scientist", "")
	if err != nil || len(list) != 1 {
		t.Fatalf("list: got %d reviews, %v", len(list), err)
	}
	empty, err := svc.List(ctx, "physician", "")
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil list, got %v, %v", empty, err)
	}
	if _, err := svc.List(ctx, "astronaut", ""); !errors.Is(err, ErrUnknownCareer) {
		t.Fatalf("expected ErrUnknownCareer, got %v", err)
	}
}

func TestReviewService_CreateRejections(t *testing.T) {
	svc := NewReviewService(zap.NewNop(), newMemoryReviewRepo(), matching.NewEngine(nil), nil)

	cases := []struct {
		name   string
		mutate func(*ReviewInput)
		want   error
	}{
		{"unknown career", func(in *ReviewInput) { in.CareerID = "astronaut" }, ErrUnknownCareer},
		{"rating zero", func(in *ReviewInput) { in.Rating = 0 }, domain.ErrInvalidRating},
		{"rating six", func(in *ReviewInput) { in.Rating = 6 }, domain.ErrInvalidRating},
		{"blank text", func(in *ReviewInput) { in.Text = "   " }, ErrInvalidReview},
		{"no status", func(in *ReviewInput) { in.CurrentStatus = "" }, ErrInvalidReview},
	}
	for _, tc := range cases {
		in := validReview()
		tc.mutate(&in)
		if _, err := svc.Create(context.Background(), "u1", in); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestReviewService_ToggleLikeOncePerUser(t *testing.T) {
	repo := newMemoryReviewRepo()
	svc := NewReviewService(zap.NewNop(), repo, matching.NewEngine(nil), nil)
	ctx := context.Background()
	review, err := svc.Create(ctx, "author", validReview())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	steps := []struct {
		user  string
		liked bool
		likes int
	}{
		{"u1", true, 1},
		{"u2", true, 2},
		{"u1", false, 1},
		{"u1", true, 2},
	}
	for i, st := range steps {
		state, err := svc.ToggleLike(ctx, review.ID, st.user)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if state.Liked != st.liked || state.Likes != st.likes {
			t.Fatalf("step %d: expected liked=%v likes=%d, got %+v", i, st.liked, st.likes, state)
		}
	}

	list, _ := svc.List(ctx, "data-scientist", "u2")
	if len(list) != 1 || !list[0].LikedByViewer || list[0].Likes != 2 {
		t.Fatalf("expected viewer like flag, got %+v", list)
	}
	if _, err := svc.ToggleLike(ctx, "missing", "u1"); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("expected ErrReviewNotFound, got %v", err)
	}
}

func TestReviewService_DeleteOnlyOwn(t *testing.T) {
	repo := newMemoryReviewRepo()
	svc := NewReviewService(zap.NewNop(), repo, matching.NewEngine(nil), nil)
	ctx := context.Background()
	review, _ := svc.Create(ctx, "author", validReview())

	if err := svc.Delete(ctx, review.ID, "intruder"); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("expected ErrReviewNotFound for someone else's review, got %v", err)
	}
	if len(repo.reviews) != 1 {
		t.Fatalf("review must survive a foreign delete")
	}
	if err := svc.Delete(ctx, review.ID, "author"); err != nil {
		t.Fatalf("delete own: %v", err)
	}
	if err := svc.Delete(ctx, review.ID, "author"); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("second delete: expected ErrReviewNotFound, got %v", err)
	}
}
