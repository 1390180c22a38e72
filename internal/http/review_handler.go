package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"careermate/internal/domain"
	"careermate/internal/service"
)

// ReviewHandler expone las reseñas de carreras.
type ReviewHandler struct {
	logger  *zap.Logger
	reviews *service.ReviewService
}

func NewReviewHandler(logger *zap.Logger, reviews *service.ReviewService) *ReviewHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewHandler{logger: logger, reviews: reviews}
}

// List maneja GET /careers/:id/reviews. Con token valido marca las reseñas que el usuario ya likeo.
func (h *ReviewHandler) List(c *gin.Context) {
	var viewerID string
	if claims, ok := GetAuthClaims(c); ok {
		viewerID = claims.UserID
	}
	reviews, err := h.reviews.List(c.Request.Context(), c.Param("id"), viewerID)
	if err != nil {
		h.respondError(c, "list reviews", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews, "total": len(reviews)})
}

// Create maneja POST /careers/:id/reviews.
func (h *ReviewHandler) Create(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	var req struct {
		Rating        int    `json:"rating" binding:"required,min=1,max=5"`
		Text          string `json:"text" binding:"required"`
		Pros          string `json:"pros" binding:"max=1000"`
		Cons          string `json:"cons" binding:"max=1000"`
		CurrentStatus string `json:"current_status" binding:"required,max=64"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid review request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	review, err := h.reviews.Create(c.Request.Context(), claims.UserID, service.ReviewInput{
		CareerID:      c.Param("id"),
		Rating:        req.Rating,
		Text:          req.Text,
		Pros:          req.Pros,
		Cons:          req.Cons,
		CurrentStatus: req.CurrentStatus,
	})
	if err != nil {
		h.respondError(c, "create review", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"review": review})
}

// ToggleLike maneja POST /reviews/:id/like.
func (h *ReviewHandler) ToggleLike(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	state, err := h.reviews.ToggleLike(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		h.respondError(c, "toggle like", err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// Delete maneja DELETE /reviews/:id.
func (h *ReviewHandler) Delete(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	if err := h.reviews.Delete(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		h.respondError(c, "delete review", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ReviewHandler) respondError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownCareer):
		c.JSON(http.StatusNotFound, gin.H{"error": "career not found"})
	case errors.Is(err, service.ErrReviewNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "review not found"})
	case errors.Is(err, service.ErrInvalidReview), errors.Is(err, domain.ErrInvalidRating):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error(op+" failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not " + op})
	}
}
