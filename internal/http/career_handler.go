package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"careermate/internal/domain"
	"careermate/internal/matching"
	"careermate/internal/service"
)

// CareerHandler expone el test vocacional y el catalogo de carreras.
type CareerHandler struct {
	logger  *zap.Logger
	testSvc *service.CareerTestService
	engine  *matching.Engine
}

// NewCareerHandler crea el handler y registra el tag de validacion questionid contra el catalogo del engine.
func NewCareerHandler(logger *zap.Logger, testSvc *service.CareerTestService, engine *matching.Engine) *CareerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if engine == nil {
		engine = matching.NewEngine(nil)
	}
	if err := registerQuestionIDValidator(engine.Catalog()); err != nil {
		logger.Warn("register questionid validator failed", zap.Error(err))
	}
	return &CareerHandler{
		logger:  logger,
		testSvc: testSvc,
		engine:  engine,
	}
}

func registerQuestionIDValidator(catalog *matching.Catalog) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator is not go-playground/validator")
	}
	return v.RegisterValidation("questionid", func(fl validator.FieldLevel) bool {
		_, ok := catalog.Question(fl.Field().String())
		return ok
	})
}

type answerRequest struct {
	QuestionID string `json:"question_id" binding:"required,questionid"`
	Score      int    `json:"score" binding:"required,min=1,max=5"`
}

type submitRequest struct {
	Answers []answerRequest `json:"answers" binding:"required,min=1,dive"`
}

// Questions maneja GET /career-test/questions.
func (h *CareerHandler) Questions(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	out, err := h.testSvc.Questions(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("load questions failed", zap.String("user_id", claims.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load questions"})
		return
	}
	c.JSON(http.StatusOK, out)
}

// Submit maneja POST /career-test/submit.
func (h *CareerHandler) Submit(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid career test submission", zap.String("user_id", claims.UserID), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	answers := make([]domain.Answer, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, domain.Answer{QuestionID: a.QuestionID, Score: a.Score})
	}

	out, err := h.testSvc.Submit(c.Request.Context(), service.SubmitInput{UserID: claims.UserID, Answers: answers})
	if err != nil {
		if errors.Is(err, service.ErrInvalidSubmission) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid submission"})
			return
		}
		h.logger.Error("career test submit failed", zap.String("user_id", claims.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not score test"})
		return
	}
	c.JSON(http.StatusOK, out)
}

// History maneja GET /career-test/history.
func (h *CareerHandler) History(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	out, err := h.testSvc.History(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("load history failed", zap.String("user_id", claims.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load history"})
		return
	}
	c.JSON(http.StatusOK, out)
}

// DownloadReport maneja GET /career-test/results/:id/report.
func (h *CareerHandler) DownloadReport(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	artifact, err := h.testSvc.Report(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFeatureNotAvailable):
			c.JSON(http.StatusForbidden, gin.H{"error": "report requires a premium plan"})
		case errors.Is(err, service.ErrResultNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "result not found"})
		default:
			h.logger.Error("render report failed", zap.String("user_id", claims.UserID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not render report"})
		}
		return
	}
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.FileAttachment(artifact.Path, artifact.FileName)
}

type careerSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

// ListCareers maneja GET /careers?category=&q=.
func (h *CareerHandler) ListCareers(c *gin.Context) {
	profiles := h.engine.SearchCareers(c.Query("category"), c.Query("q"))
	out := make([]careerSummary, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, careerSummary{ID: p.ID, Title: p.Title, Category: p.Category})
	}
	c.JSON(http.StatusOK, gin.H{"careers": out, "total": len(out)})
}

// GetCareer maneja GET /careers/:id.
func (h *CareerHandler) GetCareer(c *gin.Context) {
	profile, ok := h.engine.Career(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "career not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"career": profile})
}
