package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"careermate/internal/config"
	"careermate/internal/db"
	"careermate/internal/email"
	apihttp "careermate/internal/http"
	"careermate/internal/matching"
	"careermate/internal/metrics"
	"careermate/internal/report"
	"careermate/internal/repository"
	"careermate/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	m := metrics.New()
	engine := matching.NewEngine(nil)
	logger.Info("career catalog loaded",
		zap.Int("version", engine.Catalog().Version()),
		zap.Int("careers", len(engine.Careers())),
	)

	userRepo := repository.NewPgUserRepository(pool)
	resultRepo := repository.NewPgTestResultRepository(pool)
	activityRepo := repository.NewPgActivityRepository(pool)
	subscriptionRepo := repository.NewPgSubscriptionRepository(pool)
	reviewRepo := repository.NewPgReviewRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var (
		otpLimiter  service.OTPRateLimiter
		tokenStore  service.RefreshTokenStore
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			otpLimiter = service.NewRedisOTPRateLimiter(redisClient, 10*time.Minute, 3)
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
		}
		cancel()
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	tiers := service.NewCachedTierResolver(
		service.NewSubscriptionTierResolver(subscriptionRepo),
		redisClient,
		cfg.TierCacheTTL,
		logger,
		m,
	)
	renderer := report.NewTextRenderer(cfg.ReportsDir)

	userSvc := service.NewUserService(logger, userRepo, emailSender, otpLimiter, oauthVerifier(cfg, logger))
	testSvc := service.NewCareerTestService(logger, engine, tiers, resultRepo, activityRepo, userRepo, renderer, emailSender, m)
	subscriptionSvc := service.NewSubscriptionService(logger, subscriptionRepo, activityRepo, tiers)
	reviewSvc := service.NewReviewService(logger, reviewRepo, engine, activityRepo)

	router := apihttp.NewRouter(
		logger,
		m,
		jwtSvc,
		apihttp.NewUserHandler(logger, userSvc, jwtSvc),
		apihttp.NewCareerHandler(logger, testSvc, engine),
		apihttp.NewSubscriptionHandler(logger, subscriptionSvc),
		apihttp.NewReviewHandler(logger, reviewSvc),
		func(ctx context.Context) error { return db.Ping(ctx, pool) },
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
}

// oauthVerifier arma los proveedores configurados; sin ninguno el login externo responde 501.
func oauthVerifier(cfg *config.Config, logger *zap.Logger) service.OAuthVerifier {
	providers := make(map[string]service.OAuthProvider)
	if cfg.OAuthGoogleClientID != "" && cfg.OAuthGooglePublicKey != "" {
		google, err := service.NewRSAProvider("https://accounts.google.com", cfg.OAuthGoogleClientID, []byte(cfg.OAuthGooglePublicKey))
		if err != nil {
			logger.Warn("google oauth disabled", zap.Error(err))
		} else {
			providers["google"] = google
		}
	}
	if cfg.OAuthBrokerIssuer != "" && cfg.OAuthBrokerAudience != "" && cfg.OAuthBrokerSecret != "" {
		providers["broker"] = service.OAuthProvider{
			Issuer:   cfg.OAuthBrokerIssuer,
			Audience: cfg.OAuthBrokerAudience,
			Key:      []byte(cfg.OAuthBrokerSecret),
		}
	}
	if len(providers) == 0 {
		logger.Info("oauth login disabled")
		return nil
	}
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	logger.Info("oauth providers enabled", zap.Strings("providers", names))
	return service.NewIDTokenVerifier(providers)
}
