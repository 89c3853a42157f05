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
	"github.com/rs/zerolog"

	"github.com/mathmood/diary-api/internal/config"
	"github.com/mathmood/diary-api/internal/database"
	"github.com/mathmood/diary-api/internal/handler"
	"github.com/mathmood/diary-api/internal/identity"
	"github.com/mathmood/diary-api/internal/middleware"
	"github.com/mathmood/diary-api/internal/repository"
	"github.com/mathmood/diary-api/internal/router"
	"github.com/mathmood/diary-api/internal/service"
	"github.com/mathmood/diary-api/pkg/ai"
	cloud "github.com/mathmood/diary-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(context.Background(), cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	suggester, err := ai.NewOpenAISuggester(ai.OpenAIConfig{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.OpenAIModel,
		Logger: logger,
	})
	if err != nil {
		log.Fatalf("failed to create ai suggester: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	classifier := identity.NewClassifier(cfg.OperatorIDs)

	profileRepo := repository.NewProfileRepository(db)
	entryRepo := repository.NewDiaryEntryRepository(db)
	activityRepo := repository.NewActivityRecordRepository(db)
	artifactRepo := repository.NewArtifactUploadRepository(db)

	monitorService := service.NewMonitorService(entryRepo, profileRepo, classifier, redisClient, cfg.SnapshotCacheTTL, logger)
	profileService := service.NewProfileService(profileRepo, monitorService, validate, logger)
	diaryService := service.NewDiaryService(entryRepo, profileRepo, monitorService, validate, logger)
	activityService := service.NewActivityService(activityRepo, logger)
	reviewService := service.NewReviewService(entryRepo, activityService, monitorService, validate, logger)
	suggestionService := service.NewSuggestionService(entryRepo, suggester, logger)
	chatService := service.NewChatRelayService(suggester, validate, logger)
	uploadService := service.NewUploadService(uploader, artifactRepo, cfg.UploadMaxSizeMB, logger)
	seedService := service.NewSeedService(profileRepo, entryRepo, monitorService, cfg.SeedEnabled, cfg.SeedToken, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ProfileHandler: handler.NewProfileHandler(profileService, logger),
		DiaryHandler:   handler.NewDiaryHandler(diaryService, logger),
		ChatHandler:    handler.NewChatHandler(chatService, logger),
		UploadHandler:  handler.NewUploadHandler(uploadService, logger),
		MonitorHandler: handler.NewMonitorHandler(monitorService, reviewService, suggestionService, activityService, logger),
		SeedHandler:    handler.NewSeedHandler(seedService, logger),
		JWTMiddleware:  middleware.JWTProtected(cfg.JWTSecret),
		OperatorGate:   middleware.OperatorOnly(classifier),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
