package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kipusaplus/kipus-api/config"
	"github.com/kipusaplus/kipus-api/internal/email"
	"github.com/kipusaplus/kipus-api/internal/health"
	"github.com/kipusaplus/kipus-api/internal/infrastructure/postgres"
	kipusredis "github.com/kipusaplus/kipus-api/internal/infrastructure/redis"
	ctxlog "github.com/kipusaplus/kipus-api/internal/log"
	"github.com/kipusaplus/kipus-api/internal/metrics"
	"github.com/kipusaplus/kipus-api/internal/token"
	httptransport "github.com/kipusaplus/kipus-api/internal/transport/http"
	"github.com/kipusaplus/kipus-api/internal/transport/http/handler"
	"github.com/kipusaplus/kipus-api/internal/transport/http/middleware"
	"github.com/kipusaplus/kipus-api/internal/usecase"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if cfg.MigrateOnStart {
		if err := migrate(ctx, pool, logger); err != nil {
			stop()
			pool.Close()
			log.Fatalf("migrate: %v", err)
		}
	}

	deps := []health.Dependency{{Name: "postgres", Pinger: pool}}

	// Rate limiting is optional; without Redis the auth routes are unthrottled.
	var limiter middleware.Allower
	if cfg.RedisURL != "" {
		rdb, err := kipusredis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			stop()
			pool.Close()
			log.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
		limiter = kipusredis.NewLimiter(rdb, "", cfg.RateLimitAttempts, cfg.RateLimitWindow)
		deps = append(deps, health.Dependency{
			Name:   "redis",
			Pinger: health.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		})
		logger.Info("rate limiting enabled", "attempts", cfg.RateLimitAttempts, "window", cfg.RateLimitWindow)
	}

	mailer, err := email.NewSender(email.Config{
		Provider:     cfg.MailProvider,
		From:         cfg.MailFrom,
		ResendAPIKey: cfg.ResendAPIKey,
		SMTPHost:     cfg.SMTPHost,
		SMTPPort:     cfg.SMTPPort,
		SMTPUser:     cfg.SMTPUser,
		SMTPPass:     cfg.SMTPPass,
	}, logger)
	if err != nil {
		stop()
		pool.Close()
		log.Fatalf("mailer: %v", err)
	}

	tokens := token.NewService([]byte(cfg.JWTSecret), nil)

	// Repositories
	userRepo := postgres.NewUserRepository(pool, logger)
	resetRepo := postgres.NewResetCodeRepository(pool, logger)
	locationRepo := postgres.NewLocationRepository(pool)
	dwellingRepo := postgres.NewDwellingRepository(pool, logger)
	evaluationRepo := postgres.NewEvaluationRepository(pool, logger)
	commentRepo := postgres.NewCommentRepository(pool)
	ratingRepo := postgres.NewRatingRepository(pool)
	adminRepo := postgres.NewAdminRepository(pool)
	catalogRepo := postgres.NewCatalogRepository(pool)

	// Usecases
	authUC := usecase.NewAuthUsecase(userRepo, tokens, logger)
	resetUC := usecase.NewPasswordResetUsecase(userRepo, resetRepo, mailer, tokens, logger)
	feedbackUC := usecase.NewFeedbackUsecase(commentRepo, ratingRepo, nil)
	adminUC := usecase.NewAdminUsecase(usecase.AdminDeps{
		Users:    userRepo,
		Comments: commentRepo,
		Ratings:  ratingRepo,
		Admin:    adminRepo,
	}, logger, nil)

	metrics.Register()
	checker := health.NewChecker(logger, prometheus.DefaultRegisterer, deps...)

	resp := handler.NewResponder(logger, cfg.IsDevelopment())
	router, err := httptransport.NewRouter(logger, httptransport.RouterConfig{
		Tokens:         tokens,
		CORSOrigins:    cfg.CORSOrigins,
		Limiter:        limiter,
		TrustedProxies: cfg.TrustedProxies,
	}, httptransport.Handlers{
		Auth:       handler.NewAuthHandler(authUC, resetUC, resp, logger),
		Location:   handler.NewLocationHandler(usecase.NewLocationUsecase(locationRepo), resp),
		Dwelling:   handler.NewDwellingHandler(usecase.NewDwellingUsecase(dwellingRepo), resp),
		Evaluation: handler.NewEvaluationHandler(usecase.NewEvaluationUsecase(evaluationRepo, logger), resp),
		Feedback:   handler.NewFeedbackHandler(feedbackUC, resp),
		Admin:      handler.NewAdminHandler(adminUC, resp),
		Catalog:    handler.NewCatalogHandler(usecase.NewCatalogUsecase(catalogRepo), resp),
		Liveness:   checker.LivenessHandler(),
		Readiness:  checker.ReadinessHandler(),
	})
	if err != nil {
		stop()
		pool.Close()
		log.Fatalf("router: %v", err)
	}

	srv := http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, map[string]http.Handler{
		"/healthz": checker.LivenessHandler(),
		"/readyz":  checker.ReadinessHandler(),
	})

	go func() {
		logger.Info("server started", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func migrate(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	m, err := postgres.NewMigrator(pool, logger)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(ctx); err != nil {
		return err
	}
	return postgres.Seed(ctx, pool)
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
