package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"careermate/internal/domain"
)

// Login maneja POST /auth/login.
func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if !h.bind(c, "login", &req) {
		return
	}
	user, err := h.userServ.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, "login", err)
		return
	}
	h.respondWithSession(c, user)
}

// OAuthLogin maneja POST /auth/oauth. El cliente manda el ID token del proveedor; la
// identidad sale del token verificado, nunca del body.
func (h *UserHandler) OAuthLogin(c *gin.Context) {
	var req struct {
		Provider string `json:"provider" binding:"required,max=32"`
		IDToken  string `json:"id_token" binding:"required"`
	}
	if !h.bind(c, "oauth", &req) {
		return
	}
	user, err := h.userServ.OAuthLogin(c.Request.Context(), req.Provider, req.IDToken)
	if err != nil {
		h.fail(c, "complete oauth", err)
		return
	}
	h.respondWithSession(c, user)
}

// RefreshToken maneja POST /auth/refresh.
func (h *UserHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if !h.bind(c, "refresh", &req) || !h.jwtReady(c) {
		return
	}
	tokens, err := h.jwtServ.RefreshPair(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}

// Logout maneja POST /auth/logout. Revocar es idempotente: un token desconocido tambien da 204.
func (h *UserHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if !h.bind(c, "logout", &req) || !h.jwtReady(c) {
		return
	}
	if err := h.jwtServ.RevokeRefresh(c.Request.Context(), req.RefreshToken); err != nil {
		h.logger.Debug("revoke refresh token failed", zap.Error(err))
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) jwtReady(c *gin.Context) bool {
	if h.jwtServ == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "jwt not configured"})
		return false
	}
	return true
}

// respondWithSession emite un par de tokens para user y responde 200 con ambos.
func (h *UserHandler) respondWithSession(c *gin.Context, user domain.User) {
	if !h.jwtReady(c) {
		return
	}
	tokens, err := h.jwtServ.GeneratePair(c.Request.Context(), user)
	if err != nil {
		h.logger.Error("jwt issue failed", zap.String("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue tokens"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "tokens": tokens})
}
