package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/eduportal-api/internal/config"
	"github.com/noah-isme/eduportal-api/internal/database"
	"github.com/noah-isme/eduportal-api/internal/handler"
	"github.com/noah-isme/eduportal-api/internal/middleware"
	"github.com/noah-isme/eduportal-api/internal/repository"
	"github.com/noah-isme/eduportal-api/internal/router"
	"github.com/noah-isme/eduportal-api/internal/seed"
	"github.com/noah-isme/eduportal-api/internal/service"
	cloud "github.com/noah-isme/eduportal-api/pkg/cloudinary"
	"github.com/noah-isme/eduportal-api/pkg/storage"
)

const keyPrefix = "eduportal"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("service", cfg.AppName).Logger()

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	if cfg.SeedEnabled {
		catalog, err := seed.Default()
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to load seed catalog")
		}
		stats, err := seed.Apply(context.Background(), db, catalog, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to seed database")
		}
		logger.Info().Interface("stats", stats).Msg("seed catalog applied")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisClient, err = database.ConnectRedis(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis not configured, using in-process captcha and session stores without dashboard cache")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to nats")
		}
		defer natsConn.Drain()
	}

	artifactStorage, filesDir := buildStorage(cfg, logger)

	validate := validator.New(validator.WithRequiredStructEnabled())

	courseRepo := repository.NewCourseRepository(db)
	rosterRepo := repository.NewRosterRepository(db)
	libraryRepo := repository.NewLibraryRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	uploadRepo := repository.NewUploadRepository(db)

	var (
		captchas service.CaptchaStore
		sessions service.SessionStore
	)
	if redisClient != nil {
		captchas = service.NewRedisCaptchaStore(redisClient, keyPrefix)
		sessions = service.NewRedisSessionStore(redisClient, keyPrefix)
	} else {
		captchas = service.NewMemoryCaptchaStore()
		sessions = service.NewMemorySessionStore()
	}

	activityService := service.NewActivityService(repository.NewActivityLogRepository(db), logger)
	dashboardService := service.NewDashboardService(service.DashboardDependencies{
		Courses:     courseRepo,
		Roster:      rosterRepo,
		Assignments: assignmentRepo,
		Submissions: submissionRepo,
	}, redisClient, keyPrefix, cfg.DashboardCacheTTL, logger)
	submissionService := service.NewSubmissionService(service.SubmissionDependencies{
		Submissions: submissionRepo,
		Assignments: assignmentRepo,
		Roster:      rosterRepo,
		Courses:     courseRepo,
		Validator:   validate,
		Events:      service.NewEventPublisher(natsConn, cfg.EventSubject, logger),
		Activity:    activityService,
		Dashboards:  dashboardService,
		Uploads:     uploadRepo,
	}, logger)
	catalogService := service.NewCatalogService(courseRepo, rosterRepo, libraryRepo, validate, logger)
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		Assignments: assignmentRepo,
		Courses:     courseRepo,
		Roster:      rosterRepo,
		Validator:   validate,
		Activity:    activityService,
		Dashboards:  dashboardService,
	}, logger)
	profileService := service.NewProfileService(courseRepo)
	viewService := service.NewViewService(service.ViewDependencies{
		Catalog:     catalogService,
		Assignments: assignmentService,
		Submissions: submissionService,
		Dashboard:   dashboardService,
		Profile:     profileService,
		Activity:    activityService,
	}, logger)
	authService := service.NewAuthService(captchas, sessions, rosterRepo, validate, service.AuthConfig{
		Secret:     cfg.JWTSecret,
		SessionTTL: cfg.SessionTTL,
		CaptchaTTL: cfg.CaptchaTTL,
	}, logger)
	artifactService := service.NewArtifactService(artifactStorage, uploadRepo, cfg.UploadMaxMB, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.UploadMaxMB + 1) * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(authService, logger),
		NavigationHandler: handler.NewNavigationHandler(service.NewNavigationService(submissionService), viewService, profileService, logger),
		CatalogHandler:    handler.NewCatalogHandler(catalogService, logger),
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, logger),
		ArtifactHandler:   handler.NewArtifactHandler(artifactService, logger),
		DashboardHandler:  handler.NewDashboardHandler(dashboardService, activityService, logger),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret, authService),
		FilesDir:          filesDir,
	})

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddress()).Msg("http server listening")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
}

func buildStorage(cfg config.Config, logger zerolog.Logger) (service.ArtifactStorage, string) {
	if cfg.StorageDriver == "cloudinary" {
		uploader, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create cloudinary client")
		}
		return uploader, ""
	}

	local, err := storage.NewLocal(cfg.StorageDir, cfg.StoragePublicURL, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare local artifact storage")
	}
	return local, local.Dir()
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
