package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"careermate/internal/service"
)

// UserHandler atiende cuentas y sesiones.
type UserHandler struct {
	logger   *zap.Logger
	userServ *service.UserService
	jwtServ  *service.JWTService
}

func NewUserHandler(logger *zap.Logger, userServ *service.UserService, jwtServ *service.JWTService) *UserHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserHandler{logger: logger, userServ: userServ, jwtServ: jwtServ}
}

// accountErrors traduce errores de dominio de cuentas a respuestas. Lo que no esta aca es 500.
var accountErrors = []struct {
	err     error
	status  int
	message string
}{
	{service.ErrInvalidEmail, http.StatusBadRequest, ""},
	{service.ErrWeakPassword, http.StatusBadRequest, ""},
	{service.ErrOTPNotRequested, http.StatusBadRequest, ""},
	{service.ErrOTPExpired, http.StatusBadRequest, ""},
	{service.ErrOTPInvalid, http.StatusBadRequest, ""},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
	{service.ErrOAuthInvalid, http.StatusUnauthorized, "invalid identity token"},
	{service.ErrEmailTaken, http.StatusConflict, ""},
	{service.ErrOAuthAccountConflict, http.StatusConflict, ""},
	{service.ErrUserNotFound, http.StatusNotFound, "user not found"},
	{service.ErrRateLimited, http.StatusTooManyRequests, "too many requests"},
	{service.ErrOAuthNotConfigured, http.StatusNotImplemented, "oauth login is not enabled"},
	{service.ErrEmailSendFailure, http.StatusServiceUnavailable, "email delivery unavailable"},
}

// fail responde con el status que corresponde a err; op nombra la operacion en el log y en
// el mensaje generico de 500.
func (h *UserHandler) fail(c *gin.Context, op string, err error) {
	for _, e := range accountErrors {
		if errors.Is(err, e.err) {
			msg := e.message
			if msg == "" {
				msg = e.err.Error()
			}
			c.JSON(e.status, gin.H{"error": msg})
			return
		}
	}
	h.logger.Error(op+" failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "could not " + op})
}

// bind decodifica el body en req; si falla responde 400 y devuelve false.
func (h *UserHandler) bind(c *gin.Context, op string, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.logger.Warn("invalid "+op+" request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return false
	}
	return true
}

// CreateUser maneja POST /users.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Username string `json:"username" binding:"max=64"`
		Password string `json:"password" binding:"required"`
	}
	if !h.bind(c, "create user", &req) {
		return
	}
	user, err := h.userServ.CreateUser(c.Request.Context(), service.CreateUserInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.fail(c, "create user", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// Me maneja GET /users/me.
func (h *UserHandler) Me(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	user, err := h.userServ.GetUser(c.Request.Context(), claims.UserID)
	if err != nil {
		h.fail(c, "load user", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// RequestOTP maneja POST /auth/otp/request.
func (h *UserHandler) RequestOTP(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Username string `json:"username" binding:"max=64"`
	}
	if !h.bind(c, "otp", &req) {
		return
	}
	if _, err := h.userServ.RequestOTP(c.Request.Context(), req.Email, req.Username); err != nil {
		h.fail(c, "request otp", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "otp_sent"})
}

// VerifyOTP maneja POST /auth/otp/verify y abre sesion.
func (h *UserHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		Code  string `json:"code" binding:"required"`
	}
	if !h.bind(c, "otp verify", &req) {
		return
	}
	user, err := h.userServ.VerifyOTP(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		h.fail(c, "verify otp", err)
		return
	}
	h.respondWithSession(c, user)
}

// ForgotPassword maneja POST /auth/password/forgot. Responde 202 exista o no la cuenta.
func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if !h.bind(c, "forgot password", &req) {
		return
	}
	if err := h.userServ.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.fail(c, "request password reset", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "reset_code_sent"})
}

// ResetPassword maneja POST /auth/password/reset.
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Code     string `json:"code" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if !h.bind(c, "reset password", &req) {
		return
	}
	_, err := h.userServ.ResetPassword(c.Request.Context(), req.Email, req.Code, req.Password)
	if errors.Is(err, service.ErrUserNotFound) {
		// Mismo 400 que un codigo invalido.
		err = service.ErrOTPInvalid
	}
	if err != nil {
		h.fail(c, "reset password", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "password_reset"})
}
