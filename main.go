// File: /main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clubnight-api/config"
	"clubnight-api/controllers"
	"clubnight-api/database"
	"clubnight-api/jobs"
	"clubnight-api/logger"
	"clubnight-api/messaging"
	"clubnight-api/middleware"
	"clubnight-api/repositories"
	"clubnight-api/routes"
	"clubnight-api/services"
	"clubnight-api/storage"
	"clubnight-api/workers"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	debug := cfg.GinMode == gin.DebugMode
	log := logger.New(cfg.LogLevel, debug)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Initialize(cfg.DatabaseURL, debug)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	if debug {
		if err := database.SeedData(db, &log); err != nil {
			log.Warn().Err(err).Msg("failed to seed database")
		}
	}

	// Object storage falls back to memory when no MinIO endpoint is configured
	var objects storage.ObjectStore
	if cfg.MinioEndpoint != "" {
		minioStore, err := storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL, &log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create object store client")
		}
		if err := minioStore.EnsureBuckets(ctx, cfg.EventPicturesBucket, cfg.ProfilePicturesBucket); err != nil {
			log.Fatal().Err(err).Msg("failed to prepare buckets")
		}
		objects = minioStore
	} else {
		log.Warn().Msg("MINIO_ENDPOINT not set, pictures are kept in memory")
		objects = storage.NewMemoryStore()
	}

	emailService := services.NewEmailService(cfg, &log)

	var (
		winners  services.WinnerPublisher
		notifier *workers.WinnerNotifier
	)
	if cfg.RabbitURL != "" {
		rmq, err := messaging.NewClient(cfg.RabbitURL, cfg.RabbitExchange, cfg.RabbitQueue, &log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer rmq.Close()

		winners = messaging.NewWinnerPublisher(rmq)
		notifier = workers.NewWinnerNotifier(rmq, emailService, &log)
		notifier.Start(ctx)
	} else {
		log.Warn().Msg("RABBITMQ_URL not set, winner notifications are disabled")
	}

	userRepo := repositories.NewUserRepository(db)
	clubRepo := repositories.NewClubRepository(db)
	eventRepo := repositories.NewEventRepository(db, cfg.EventsPageSize)
	giveawayRepo := repositories.NewGiveawayRepository(db)

	secrets := config.NewEnvSecretStore()
	tokens := services.NewTokenService(secrets, cfg.JWTSecretName)
	images := services.NewImageService(objects, cfg.EventPicturesBucket, cfg.ProfilePicturesBucket, cfg.ProfilePicturesPrefix, &log)

	authService := services.NewAuthService(userRepo, tokens, images, emailService, &log)
	oauthService := services.NewOAuthService(secrets, cfg.ThirdPartyClientSecretName, userRepo, tokens, images, &log)
	userService := services.NewUserService(userRepo, eventRepo, images, &log)
	clubService := services.NewClubService(clubRepo, eventRepo, giveawayRepo, tokens, images, &log)
	eventService := services.NewEventService(eventRepo, giveawayRepo, clubRepo, userRepo, images, &log)
	searchService := services.NewSearchService(eventRepo, images, &log)
	participationService := services.NewParticipationService(eventRepo, userRepo, &log)
	giveawayService := services.NewGiveawayService(giveawayRepo, userRepo, winners, &log)

	cleanup := jobs.NewCodeCleanupJob(userRepo, 15*time.Minute, &log)
	cleanup.Start()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(routes.SetupCORS())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestLogger(&log))
	router.Use(middleware.ErrorHandler(&log))

	routes.SetupRoutes(router, routes.Handlers{
		Auth:      controllers.NewAuthController(authService, oauthService),
		Users:     controllers.NewUserController(userService),
		Clubs:     controllers.NewClubController(clubService),
		Events:    controllers.NewEventController(eventService, searchService, participationService, clubService),
		Giveaways: controllers.NewGiveawayController(giveawayService),
	}, tokens, middleware.RateLimit(ctx, cfg.RateLimitPerMinute, cfg.RateLimitBurst))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting Clubnight API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	cleanup.Stop()
	if notifier != nil {
		notifier.Stop()
	}
}
