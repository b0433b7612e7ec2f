package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"focusflow/backend/internal/ai"
	"focusflow/backend/internal/analytics"
	"focusflow/backend/internal/config"
	"focusflow/backend/internal/db"
	"focusflow/backend/internal/handler"
	"focusflow/backend/internal/logger"
	"focusflow/backend/internal/ratelimit"
	"focusflow/backend/internal/repository"
	"focusflow/backend/internal/router"
	"focusflow/backend/internal/service"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.RunMigrations(database, cfg.MigrationsDir); err != nil {
		logger.Error("run migrations", "error", err)
		os.Exit(1)
	}

	keywords, err := analytics.LoadKeywordTable(cfg.ClassifierRulesPath)
	if err != nil {
		logger.Error("load classifier rules", "error", err, "path", cfg.ClassifierRulesPath)
		os.Exit(1)
	}
	classifier := analytics.NewClassifier(keywords)

	userRepo := repository.NewUserRepository(database)
	activityRepo := repository.NewActivityRepository(database)
	summaryRepo := repository.NewSummaryRepository(database)
	generationRepo := repository.NewGenerationRepository(database)

	limiterConfig := ratelimit.Config{Limit: cfg.GenerationLimit, Window: cfg.GenerationWindow}
	var limiter ratelimit.Limiter = ratelimit.NewStoreLimiter(generationRepo, limiterConfig)
	if cfg.Redis.Addr != "" {
		redisLimiter, redisErr := ratelimit.NewRedisLimiter(ctx, ratelimit.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, limiterConfig)
		if redisErr != nil {
			logger.Warn("redis unavailable, counting generations in the database", "error", redisErr)
		} else {
			defer redisLimiter.Close()
			limiter = redisLimiter
			logger.Info("using redis generation limiter", "addr", cfg.Redis.Addr)
		}
	}
	go pruneAttempts(ctx, generationRepo, cfg.GenerationWindow)

	// One provider client per process, shared by every request.
	var generator ai.Generator
	if cfg.AI.Enabled() {
		generator = ai.NewHTTPGenerator(ai.Config{
			APIKey:  cfg.AI.APIKey,
			BaseURL: cfg.AI.BaseURL,
			Model:   cfg.AI.Model,
			Timeout: cfg.AI.Timeout,
		})
	} else {
		logger.Info("AI_API_KEY not set, serving deterministic routines and summaries")
	}
	enricher := ai.NewEnricher(generator)

	options := service.GenerationOptions{
		Location:             cfg.Location,
		LookbackDays:         cfg.LookbackDays,
		MinRecordsForRoutine: cfg.MinRecordsForRoutine,
		RecentWindow:         cfg.RecentGenerationWindow,
		RetryDelay:           cfg.StoreRetryDelay,
	}

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	handlers := router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Activity: handler.NewActivityHandler(service.NewActivityService(activityRepo)),
		Routine:  handler.NewRoutineHandler(service.NewRoutineService(activityRepo, summaryRepo, limiter, enricher, classifier, options)),
		Summary:  handler.NewSummaryHandler(service.NewSummaryService(activityRepo, summaryRepo, limiter, enricher, classifier, options)),
		Insights: handler.NewInsightsHandler(service.NewInsightsService(activityRepo, classifier, options)),
	}

	engine := router.New(authService, handlers, cfg.CORSOrigins)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown server", "error", err)
		}
	}()

	logger.Info("backend listening", "port", cfg.Port, "driver", cfg.DBDriver)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("run server", "error", err)
		os.Exit(1)
	}
}

// pruneAttempts trims the generation log so counting stays cheap.
func pruneAttempts(ctx context.Context, repo *repository.GenerationRepository, window time.Duration) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed, err := repo.Prune(ctx, now.Add(-2*window))
			if err != nil {
				logger.Warn("prune generation attempts", "error", err)
				continue
			}
			logger.Debug("pruned generation attempts", "removed", removed)
		}
	}
}
