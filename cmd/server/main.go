package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/sustaingain/backend/api/handler"
	"github.com/sustaingain/backend/internal/config"
	"github.com/sustaingain/backend/internal/infrastructure/collab"
	"github.com/sustaingain/backend/internal/infrastructure/monitor"
	"github.com/sustaingain/backend/internal/infrastructure/outbox"
	pgInfra "github.com/sustaingain/backend/internal/infrastructure/postgres"
	"github.com/sustaingain/backend/internal/infrastructure/rabbitmq"
	redisInfra "github.com/sustaingain/backend/internal/infrastructure/redis"
	"github.com/sustaingain/backend/internal/router"
	"github.com/sustaingain/backend/internal/services"
	"github.com/sustaingain/backend/internal/services/lifecycle"
	"github.com/sustaingain/backend/pkg/httpcontext"
	"github.com/sustaingain/backend/pkg/logger"
	"github.com/sustaingain/backend/repository/postgres"
	redisRepo "github.com/sustaingain/backend/repository/redis"
	"github.com/sustaingain/backend/usecase"
	authUC "github.com/sustaingain/backend/usecase/auth"
	catalogUC "github.com/sustaingain/backend/usecase/catalog"
	feedUC "github.com/sustaingain/backend/usecase/feed"
	friendsUC "github.com/sustaingain/backend/usecase/friends"
	leaguesUC "github.com/sustaingain/backend/usecase/leagues"
	profilesUC "github.com/sustaingain/backend/usecase/profiles"
	tasksUC "github.com/sustaingain/backend/usecase/tasks"
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

	// The broker is optional at boot; events queue in the outbox and the
	// monitor re-dials until it comes online.
	publisher := rabbitmq.NewPublisher(cfg.Rabbit.URL, cfg.Rabbit.Queue, zapLogger)
	manager.Register("rabbitmq", func(ctx context.Context) error {
		return publisher.Close()
	})

	outboxStore, err := outbox.Open(cfg.Outbox.Path, "outbox")
	if err != nil {
		zapLogger.Fatal("failed to open outbox store", zap.Error(err))
	}
	manager.Register("outbox", func(ctx context.Context) error {
		return outboxStore.Close()
	})

	mon := monitor.New(pool, redisClient, publisher, outboxStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	taskRepo := postgres.NewTaskRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	instanceRepo := postgres.NewInstanceRepository(pool)
	profileRepo := postgres.NewProfileRepository(pool)
	friendRepo := postgres.NewFriendRepository(pool)
	leagueRepo := postgres.NewLeagueRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.JWT.SessionTTL)

	notifier := services.NewOutboxNotifier(outboxStore, zapLogger)

	var verifier usecase.PhotoVerifier
	if cfg.Collab.VerifierURL != "" {
		verifier = collab.NewPhotoVerifier(cfg.Collab.VerifierURL, cfg.Collab.VerifierTimeout, zapLogger)
	}
	var geocoder usecase.Geocoder
	if cfg.Collab.GeocoderURL != "" {
		geocoder = collab.NewGeocoder(cfg.Collab.GeocoderURL, cfg.Collab.GeocoderTimeout, zapLogger)
	}

	authUseCase := authUC.New(profileRepo, sessionRepo, cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.SessionTTL, zapLogger)
	catalogUseCase := catalogUC.New(taskRepo, categoryRepo, profileRepo, zapLogger)
	tasksUseCase := tasksUC.New(
		taskRepo,
		instanceRepo,
		profileRepo,
		friendRepo,
		notifier,
		verifier,
		geocoder,
		tasksUC.Policy{
			LikeThreshold:     cfg.Policy.LikeThreshold,
			ApprovalGrace:     cfg.Policy.ApprovalGrace,
			MaxAssignedActive: cfg.Policy.MaxAssignedActive,
			BombWarning:       cfg.Policy.BombWarning,
		},
		zapLogger,
	)
	friendsUseCase := friendsUC.New(friendRepo, profileRepo, notifier, zapLogger)
	leaguesUseCase := leaguesUC.New(leagueRepo, instanceRepo, profileRepo, notifier, zapLogger)
	feedUseCase := feedUC.New(instanceRepo, friendRepo, zapLogger)
	profilesUseCase := profilesUC.New(profileRepo, instanceRepo, friendRepo, zapLogger)

	relay := services.NewEventRelay(outboxStore, publisher, mon, zapLogger, services.RelayConfig{
		Interval:   cfg.Outbox.DrainInterval,
		BatchSize:  cfg.Outbox.BatchSize,
		MaxRetries: cfg.Outbox.MaxRetry,
		Retention:  cfg.Outbox.Retention,
	})
	relay.Start()
	manager.Register("event_relay", func(ctx context.Context) error {
		relay.Stop(ctx)
		return nil
	})

	sweeper, err := services.NewSweeper(tasksUseCase, zapLogger, services.SweeperConfig{
		AgingSpec:      cfg.Sweeps.AgingSpec,
		BombSpec:       cfg.Sweeps.BombSpec,
		AssignmentSpec: cfg.Sweeps.AssignmentSpec,
		JobTimeout:     cfg.Sweeps.JobTimeout,
	})
	if err != nil {
		zapLogger.Fatal("invalid sweep schedule", zap.Error(err))
	}
	sweeper.Start()
	manager.Register("sweeper", func(ctx context.Context) error {
		sweeper.Stop(ctx)
		return nil
	})

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Profile: apiHandler.NewProfileHandler(profilesUseCase, ctxAdapter, zapLogger),
		Catalog: apiHandler.NewCatalogHandler(catalogUseCase, ctxAdapter, zapLogger),
		Tasks:   apiHandler.NewTasksHandler(tasksUseCase, ctxAdapter, zapLogger),
		Friends: apiHandler.NewFriendsHandler(friendsUseCase, ctxAdapter, zapLogger),
		Leagues: apiHandler.NewLeaguesHandler(leaguesUseCase, ctxAdapter, zapLogger),
		Feed:    apiHandler.NewFeedHandler(feedUseCase, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	server := &fasthttp.Server{
		Handler:      router.New(handlers, cfg.JWT.Secret, zapLogger),
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
