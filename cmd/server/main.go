package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/choreboard/backend/api/handler"
	"github.com/choreboard/backend/internal/config"
	"github.com/choreboard/backend/internal/infrastructure/journal"
	"github.com/choreboard/backend/internal/infrastructure/monitor"
	pgInfra "github.com/choreboard/backend/internal/infrastructure/postgres"
	redisInfra "github.com/choreboard/backend/internal/infrastructure/redis"
	"github.com/choreboard/backend/internal/middleware"
	"github.com/choreboard/backend/internal/router"
	"github.com/choreboard/backend/internal/services"
	"github.com/choreboard/backend/internal/services/lifecycle"
	"github.com/choreboard/backend/pkg/httpcontext"
	"github.com/choreboard/backend/pkg/logger"
	"github.com/choreboard/backend/repository/postgres"
	redisRepo "github.com/choreboard/backend/repository/redis"
	"github.com/choreboard/backend/usecase/analytics"
	authUC "github.com/choreboard/backend/usecase/auth"
	pointsUC "github.com/choreboard/backend/usecase/points"
	rewardUC "github.com/choreboard/backend/usecase/reward"
	taskUC "github.com/choreboard/backend/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	journalStore, err := journal.Open(cfg.Journal.Path, "events")
	if err != nil {
		zapLogger.Fatal("failed to open event journal", zap.Error(err))
	}
	manager.Register("journal", func(ctx context.Context) error {
		return journalStore.Close()
	})

	mon := monitor.New(pool, redisClient, journalStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	memberRepo := postgres.NewMemberRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	templateRepo := postgres.NewTemplateRepository(pool)
	rewardRepo := postgres.NewRewardRepository(pool)
	contributionRepo := postgres.NewContributionRepository(pool)
	redemptionRepo := postgres.NewRedemptionRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)
	eventRepo := postgres.NewEventRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, 24*time.Hour)

	drainer := services.NewJournalDrainer(
		journalStore,
		eventRepo,
		mon,
		zapLogger,
		services.DrainerConfig{
			Schedule:  cfg.Journal.DrainSchedule,
			BatchSize: cfg.Journal.DrainBatchSize,
			Retention: time.Duration(cfg.Journal.RetentionHours) * time.Hour,
		},
	)
	drainer.Start()
	manager.Register("journal_drainer", func(ctx context.Context) error {
		drainer.Stop(ctx)
		return nil
	})

	authUseCase := authUC.New(memberRepo, sessionRepo, cfg.JWT.Secret, cfg.JWT.Issuer, zapLogger)
	taskUseCase := taskUC.New(taskRepo, templateRepo, memberRepo, ledgerRepo, journalStore, zapLogger)
	rewardUseCase := rewardUC.New(rewardRepo, contributionRepo, redemptionRepo, ledgerRepo, memberRepo, journalStore, zapLogger)
	pointsUseCase := pointsUC.New(ledgerRepo, memberRepo, journalStore, zapLogger)
	analyticsService := analytics.NewService(taskRepo, zapLogger)

	if cfg.Sweeper.Enabled {
		sweeper := services.NewPenaltySweeper(
			taskUseCase,
			memberRepo,
			zapLogger,
			services.SweeperConfig{Schedule: cfg.Sweeper.Schedule},
		)
		sweeper.Start()
		manager.Register("penalty_sweeper", func(ctx context.Context) error {
			sweeper.Stop(ctx)
			return nil
		})
	}

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:      apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger, time.Hour),
		Task:      apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Reward:    apiHandler.NewRewardHandler(rewardUseCase, ctxAdapter, zapLogger),
		Points:    apiHandler.NewPointsHandler(pointsUseCase, ctxAdapter, zapLogger),
		Analytics: apiHandler.NewAnalyticsHandler(analyticsService, ctxAdapter, zapLogger),
		Events:    apiHandler.NewEventsHandler(eventRepo, ctxAdapter, zapLogger),
		Health:    apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
