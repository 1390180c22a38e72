package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"careermate/internal/service"
)

// SubscriptionHandler maneja las suscripciones a features pagas.
type SubscriptionHandler struct {
	logger  *zap.Logger
	subsSvc *service.SubscriptionService
}

func NewSubscriptionHandler(logger *zap.Logger, subsSvc *service.SubscriptionService) *SubscriptionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubscriptionHandler{logger: logger, subsSvc: subsSvc}
}

// List maneja GET /subscriptions.
func (h *SubscriptionHandler) List(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	subs, err := h.subsSvc.List(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("list subscriptions failed", zap.String("user_id", claims.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list subscriptions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscriptions": subs})
}

// Subscribe maneja POST /subscriptions/:feature.
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	sub, err := h.subsSvc.Subscribe(c.Request.Context(), claims.UserID, c.Param("feature"))
	if err != nil {
		if errors.Is(err, service.ErrUnknownFeature) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown feature"})
			return
		}
		h.logger.Error("subscribe failed", zap.String("user_id", claims.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not subscribe"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"subscription": sub})
}

// Cancel maneja DELETE /subscriptions/:feature.
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	err := h.subsSvc.Cancel(c.Request.Context(), claims.UserID, c.Param("feature"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownFeature):
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown feature"})
		case errors.Is(err, service.ErrSubscriptionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "subscription not found"})
		default:
			h.logger.Error("cancel subscription failed", zap.String("user_id", claims.UserID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not cancel subscription"})
		}
		return
	}
	c.Status(http.StatusNoContent)
}
