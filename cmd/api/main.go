package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-classroom-api/internal/config"
	"github.com/noah-isme/gema-classroom-api/internal/database"
	"github.com/noah-isme/gema-classroom-api/internal/handler"
	"github.com/noah-isme/gema-classroom-api/internal/middleware"
	"github.com/noah-isme/gema-classroom-api/internal/repository"
	"github.com/noah-isme/gema-classroom-api/internal/router"
	"github.com/noah-isme/gema-classroom-api/internal/service"
	"github.com/noah-isme/gema-classroom-api/internal/utils"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cfg.AppEnv == "development" {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}
	logger = logger.With().Str("service", cfg.AppName).Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	if redisClient == nil {
		logger.Warn().Msg("redis disabled; progress cache and redis events are off")
	} else {
		defer redisClient.Close()
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to nats")
	}
	if natsConn != nil {
		defer natsConn.Drain()
	}

	validate := utils.NewValidator()

	testRepo := repository.NewTestRepository(db)
	classRepo := repository.NewClassRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	studentAssignmentRepo := repository.NewStudentAssignmentRepository(db, cfg.FanoutBatchSize)
	vocabularyRepo := repository.NewVocabularyCategoryRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	factory := service.NewAssignmentFactory(testRepo, assignmentRepo, enrollmentRepo, studentAssignmentRepo, logger)
	events := service.NewAssignmentEventPublisher(redisClient, cfg.EventChannel, natsConn, logger)
	assignmentService := service.NewAssignmentService(
		testRepo,
		assignmentRepo,
		studentAssignmentRepo,
		factory,
		events,
		activityService,
		redisClient,
		cfg.ProgressCacheTTL,
		validate,
		logger,
	)
	studentAssignmentService := service.NewStudentAssignmentService(studentAssignmentRepo, assignmentRepo, testRepo, redisClient, validate, logger)
	testService := service.NewTestService(testRepo, classRepo, validate, logger)
	rosterService := service.NewRosterService(classRepo, studentRepo, enrollmentRepo, validate, logger)
	vocabularyService := service.NewVocabularyCategoryService(vocabularyRepo, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		ReadTimeout:  cfg.RequestTimeout + 5*time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
	})

	middleware.Register(app, middleware.Config{
		Logger:         &logger,
		RequestTimeout: cfg.RequestTimeout,
		AccessLog:      cfg.AppEnv == "development",
	})
	router.Register(app, cfg, router.Dependencies{
		DB:                        db,
		Redis:                     redisClient,
		AssignmentHandler:         handler.NewAssignmentHandler(assignmentService, logger),
		StudentAssignmentHandler:  handler.NewStudentAssignmentHandler(studentAssignmentService, logger, middleware.RoleTeacher, middleware.RoleAdmin),
		TestHandler:               handler.NewTestHandler(testService, logger),
		RosterHandler:             handler.NewRosterHandler(rosterService, logger),
		VocabularyCategoryHandler: handler.NewVocabularyCategoryHandler(vocabularyService, logger),
		ActivityHandler:           handler.NewActivityHandler(activityService, logger),
		JWTMiddleware:             middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddress()).Msg("classroom api listening")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
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
