package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"careermate/internal/domain"
	"careermate/internal/email"
	"careermate/internal/matching"
	"careermate/internal/metrics"
	"careermate/internal/report"
	"careermate/internal/repository"
)

var (
	ErrInvalidSubmission   = errors.New("invalid submission")
	ErrFeatureNotAvailable = errors.New("feature not available for tier")
	ErrResultNotFound      = errors.New("test result not found")
)

const (
	historyLimit          = 20
	activityLimit         = 10
	premiumHistoryMatches = 3
	freeHistoryMatches    = 2
)

// CareerTestService orquesta el test vocacional: preguntas, envio, historial y reportes.
type CareerTestService struct {
	logger      *zap.Logger
	engine      *matching.Engine
	tiers       TierResolver
	results     repository.TestResultRepository
	activities  repository.ActivityRepository
	users       repository.UserRepository
	renderer    report.Renderer
	emailSender email.Sender
	metrics     *metrics.Metrics
	now         func() time.Time
}

func NewCareerTestService(
	logger *zap.Logger,
	engine *matching.Engine,
	tiers TierResolver,
	results repository.TestResultRepository,
	activities repository.ActivityRepository,
	users repository.UserRepository,
	renderer report.Renderer,
	emailSender email.Sender,
	m *metrics.Metrics,
) *CareerTestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if engine == nil {
		engine = matching.NewEngine(nil)
	}
	return &CareerTestService{
		logger:      logger,
		engine:      engine,
		tiers:       tiers,
		results:     results,
		activities:  activities,
		users:       users,
		renderer:    renderer,
		emailSender: emailSender,
		metrics:     m,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

type QuestionsOutput struct {
	Tier      domain.Tier        `json:"plan_type"`
	Features  domain.Features    `json:"features"`
	Questions domain.QuestionSet `json:"questions"`
	Total     int                `json:"total"`
}

func (s *CareerTestService) Questions(ctx context.Context, userID string) (QuestionsOutput, error) {
	tier, err := s.resolveTier(ctx, userID)
	if err != nil {
		return QuestionsOutput{}, err
	}
	set, err := s.engine.Questions(tier)
	if err != nil {
		return QuestionsOutput{}, err
	}
	return QuestionsOutput{
		Tier:      tier,
		Features:  domain.CareerTestFeatures(tier),
		Questions: set,
		Total:     set.Count(),
	}, nil
}

type SubmitInput struct {
	UserID  string
	Answers []domain.Answer
}

type SubmitOutput struct {
	ResultID string               `json:"result_id,omitempty"`
	Tier     domain.Tier          `json:"plan_type"`
	Features domain.Features      `json:"features"`
	Results  []domain.MatchResult `json:"results"`
	Insights []domain.Insight     `json:"personality_insights"`
	Saved    bool                 `json:"saved"`
	Report   *report.Artifact     `json:"report,omitempty"`
}

// Submit puntua las respuestas para el tier del usuario y persiste el resultado.
// Si la persistencia falla el resultado igual se devuelve, con Saved=false. El reporte
// descargable solo se genera para resultados guardados.
func (s *CareerTestService) Submit(ctx context.Context, input SubmitInput) (SubmitOutput, error) {
	tier, err := s.resolveTier(ctx, input.UserID)
	if err != nil {
		return SubmitOutput{}, err
	}

	assessment, err := s.engine.Assess(input.Answers, tier)
	if err != nil {
		s.logger.Info("career test submission rejected",
			zap.String("user_id", input.UserID),
			zap.Int("answers", len(input.Answers)),
			zap.Error(err),
		)
		s.countSubmission(tier, "rejected")
		return SubmitOutput{}, ErrInvalidSubmission
	}

	result := domain.TestResult{
		ID:            uuid.NewString(),
		UserID:        input.UserID,
		Answers:       input.Answers,
		Results:       assessment.Results,
		Insights:      assessment.Insights,
		Tier:          tier,
		ProfileVector: pgvector.NewVector(assessment.ProfileVector),
		CreatedAt:     s.now(),
	}
	out := SubmitOutput{
		Tier:     tier,
		Features: domain.CareerTestFeatures(tier),
		Results:  assessment.Results,
		Insights: assessment.Insights,
	}
	if s.metrics != nil && len(out.Results) > 0 {
		s.metrics.TopMatchPercentage.Observe(float64(out.Results[0].MatchPercentage))
	}

	if err := s.persist(ctx, result); err != nil {
		s.logger.Error("persist career test result failed",
			zap.String("user_id", input.UserID),
			zap.String("result_id", result.ID),
			zap.Error(err),
		)
		if s.metrics != nil {
			s.metrics.PersistFailuresTotal.Inc()
		}
		s.countSubmission(tier, "unsaved")
		return out, nil
	}
	out.Saved = true
	out.ResultID = result.ID
	s.countSubmission(tier, "saved")
	s.recordActivity(ctx, result)

	if out.Features.DownloadableReport {
		out.Report = s.renderAndNotify(ctx, input.UserID, result)
	}
	return out, nil
}

func (s *CareerTestService) persist(ctx context.Context, result domain.TestResult) error {
	if s.results == nil {
		return errors.New("test result repository not configured")
	}
	if err := s.results.Create(ctx, result); err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

// recordActivity deja constancia del test en la actividad del usuario. Una falla no
// afecta al resultado ya guardado.
func (s *CareerTestService) recordActivity(ctx context.Context, result domain.TestResult) {
	if s.activities == nil {
		return
	}
	content := "Completed career fit test"
	if len(result.Results) > 0 {
		top := result.Results[0]
		content = fmt.Sprintf("Completed career fit test. Top match: %s (%d%%)", top.DisplayTitle(), top.MatchPercentage)
	}
	err := s.activities.Create(ctx, domain.Activity{
		ID:           uuid.NewString(),
		UserID:       result.UserID,
		ActivityType: domain.ActivityCareerTest,
		Content:      content,
		CreatedAt:    result.CreatedAt,
	})
	if err != nil {
		s.logger.Warn("save career test activity failed",
			zap.String("user_id", result.UserID),
			zap.String("result_id", result.ID),
			zap.Error(err),
		)
		if s.metrics != nil {
			s.metrics.ActivityFailuresTotal.Inc()
		}
	}
}

// renderAndNotify genera el reporte y avisa por email. Cualquier falla se loguea y se ignora.
func (s *CareerTestService) renderAndNotify(ctx context.Context, userID string, result domain.TestResult) *report.Artifact {
	if s.renderer == nil {
		return nil
	}
	user := s.reportUser(ctx, userID)
	artifact, err := s.renderer.Render(ctx, result.ID, report.User{Name: user.Name(), Email: user.Email}, result.Results, result.Insights)
	if err != nil {
		s.logger.Warn("render career report failed", zap.String("user_id", userID), zap.Error(err))
		s.countReport("failed")
		return nil
	}
	s.countReport("rendered")

	if s.emailSender != nil && user.Email != "" {
		if err := s.emailSender.SendReportReady(ctx, user.Email, user.Name(), artifact.FileName); err != nil {
			s.logger.Warn("send report ready email failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return &artifact
}

type HistoryOutput struct {
	Tier       domain.Tier               `json:"plan_type"`
	Entries    []domain.TestHistoryEntry `json:"history"`
	Progress   *domain.Progress          `json:"progress,omitempty"`
	Activities []domain.Activity         `json:"recent_activity"`
}

// History lista los resultados del usuario, el mas reciente primero, junto con su
// actividad reciente.
func (s *CareerTestService) History(ctx context.Context, userID string) (HistoryOutput, error) {
	tier, err := s.resolveTier(ctx, userID)
	if err != nil {
		return HistoryOutput{}, err
	}
	if s.results == nil {
		return HistoryOutput{}, errors.New("test result repository not configured")
	}

	var (
		stored     []domain.TestResult
		activities []domain.Activity
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.results.ListByUser(gctx, userID, historyLimit)
		if err != nil {
			return fmt.Errorf("list results: %w", err)
		}
		stored = list
		return nil
	})
	if s.activities != nil {
		g.Go(func() error {
			list, err := s.activities.ListByUser(gctx, userID, activityLimit)
			if err != nil {
				s.logger.Warn("list user activity failed", zap.String("user_id", userID), zap.Error(err))
				return nil
			}
			activities = list
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return HistoryOutput{}, err
	}
	if activities == nil {
		activities = []domain.Activity{}
	}

	top := freeHistoryMatches
	if tier == domain.TierPremium {
		top = premiumHistoryMatches
	}
	out := HistoryOutput{Tier: tier, Entries: make([]domain.TestHistoryEntry, 0, len(stored)), Activities: activities}
	for _, r := range stored {
		entry := domain.TestHistoryEntry{ID: r.ID, Tier: r.Tier, CreatedAt: r.CreatedAt, TopMatches: []domain.TopMatch{}}
		for i, m := range r.Results {
			if i == top {
				break
			}
			entry.TopMatches = append(entry.TopMatches, domain.TopMatch{Title: m.DisplayTitle(), MatchPercentage: m.MatchPercentage})
		}
		out.Entries = append(out.Entries, entry)
	}

	if domain.CareerTestFeatures(tier).ProgressTracking && len(stored) >= 2 {
		p := Progress(stored[0], stored[1])
		out.Progress = &p
	}
	return out, nil
}

// Progress compara dos resultados: delta por carrera presente en ambos y distancia
// entre los vectores de perfil.
func Progress(current, previous domain.TestResult) domain.Progress {
	prev := make(map[string]int, len(previous.Results))
	for _, r := range previous.Results {
		prev[r.CareerID] = r.MatchPercentage
	}
	p := domain.Progress{
		CurrentResultID:  current.ID,
		PreviousResultID: previous.ID,
		ProfileShift:     matching.Distance(current.ProfileVector.Slice(), previous.ProfileVector.Slice()),
		Careers:          []domain.CareerDelta{},
	}
	for _, r := range current.Results {
		before, ok := prev[r.CareerID]
		if !ok {
			continue
		}
		p.Careers = append(p.Careers, domain.CareerDelta{
			CareerID: r.CareerID,
			Title:    r.DisplayTitle(),
			Previous: before,
			Current:  r.MatchPercentage,
			Delta:    r.MatchPercentage - before,
		})
	}
	return p
}

// Report genera el reporte descargable de un resultado propio. Solo para tiers que lo incluyen.
func (s *CareerTestService) Report(ctx context.Context, userID, resultID string) (report.Artifact, error) {
	tier, err := s.resolveTier(ctx, userID)
	if err != nil {
		return report.Artifact{}, err
	}
	if !domain.CareerTestFeatures(tier).DownloadableReport || s.renderer == nil {
		return report.Artifact{}, ErrFeatureNotAvailable
	}
	if s.results == nil {
		return report.Artifact{}, errors.New("test result repository not configured")
	}

	result, err := s.results.GetByIDForUser(ctx, resultID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return report.Artifact{}, ErrResultNotFound
		}
		return report.Artifact{}, fmt.Errorf("load result: %w", err)
	}

	user := s.reportUser(ctx, userID)
	artifact, err := s.renderer.Render(ctx, result.ID, report.User{Name: user.Name(), Email: user.Email}, result.Results, result.Insights)
	if err != nil {
		s.countReport("failed")
		return report.Artifact{}, fmt.Errorf("render report: %w", err)
	}
	s.countReport("rendered")
	return artifact, nil
}

func (s *CareerTestService) resolveTier(ctx context.Context, userID string) (domain.Tier, error) {
	if s.tiers == nil {
		return domain.TierFree, nil
	}
	tier, err := s.tiers.ResolveTier(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("resolve tier: %w", err)
	}
	return tier, nil
}

// reportUser devuelve un usuario vacio si no se puede cargar; el reporte usa valores por defecto.
func (s *CareerTestService) reportUser(ctx context.Context, userID string) domain.User {
	if s.users == nil {
		return domain.User{}
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.logger.Warn("load report user failed", zap.String("user_id", userID), zap.Error(err))
		return domain.User{}
	}
	return user
}

func (s *CareerTestService) countSubmission(tier domain.Tier, outcome string) {
	if s.metrics != nil {
		s.metrics.SubmissionsTotal.WithLabelValues(string(tier), outcome).Inc()
	}
}

func (s *CareerTestService) countReport(outcome string) {
	if s.metrics != nil {
		s.metrics.ReportsRenderedTotal.WithLabelValues(outcome).Inc()
	}
}
