package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/safaconnect/tournament-engine/config"
	"github.com/safaconnect/tournament-engine/db"
	"github.com/safaconnect/tournament-engine/faceverify"
	"github.com/safaconnect/tournament-engine/handlers"
	"github.com/safaconnect/tournament-engine/live"
	"github.com/safaconnect/tournament-engine/middleware"
	"github.com/safaconnect/tournament-engine/photojobs"
	"github.com/safaconnect/tournament-engine/repositories"
	"github.com/safaconnect/tournament-engine/routes"
	"github.com/safaconnect/tournament-engine/services"
	"github.com/safaconnect/tournament-engine/storage"
	"github.com/safaconnect/tournament-engine/workers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	engine, err := faceverify.NewPigoEngine(cfg.FaceCascadePath, faceverify.DetectionMode(cfg.FaceDetectionMode))
	if err != nil {
		logger.Error("failed to initialize face detection engine", slog.Any("error", err))
		os.Exit(1)
	}
	verifier := faceverify.NewVerifier(engine, cfg.FaceMatchTolerance)
	logger.Info("face verification engine initialized",
		slog.String("cascade", cfg.FaceCascadePath),
		slog.String("mode", cfg.FaceDetectionMode))

	hub := live.NewHub(logger)
	go hub.Run()

	operatorRepo := repositories.NewPostgresOperatorRepository(dbConn)
	sportRepo := repositories.NewPostgresSportRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	fixtureRepo := repositories.NewPostgresFixtureRepository(dbConn)
	standingRepo := repositories.NewPostgresStandingRepository(dbConn)
	registrationRepo := repositories.NewPostgresRegistrationRepository(dbConn)
	verificationLogRepo := repositories.NewPostgresVerificationLogRepository(dbConn)

	authService := services.NewAuthService(operatorRepo, cfg.JWTSecretKey)
	sportService := services.NewSportService(sportRepo)
	tournamentService := services.NewTournamentService(tournamentRepo, sportRepo, uploader, logger)
	teamService := services.NewTeamService(teamRepo, tournamentRepo, fixtureRepo, registrationRepo, uploader)
	fixtureService := services.NewFixtureService(dbConn, tournamentRepo, sportRepo, teamRepo, fixtureRepo, standingRepo, hub, logger)
	standingsService := services.NewStandingsService(dbConn, tournamentRepo, sportRepo, teamRepo, fixtureRepo, standingRepo, hub)
	compositor := photojobs.NewCompositor(teamRepo, registrationRepo, uploader, logger)
	photoQueue := photojobs.NewQueue(compositor, 0, logger)
	defer photoQueue.Shutdown()

	verificationService := services.NewVerificationService(
		dbConn, registrationRepo, verificationLogRepo, uploader, verifier,
		services.VerificationConfig{
			AutoThreshold:   cfg.VerifyAutoThreshold,
			ReviewThreshold: cfg.VerifyReviewThreshold,
			Timeout:         cfg.VerifyTimeout,
		},
		hub, photoQueue, logger,
	)

	verifyPool := workers.NewVerifyPool(verificationService, cfg.VerifyWorkers, 0, logger)
	defer verifyPool.Shutdown()

	registrationService := services.NewRegistrationService(registrationRepo, tournamentRepo, uploader, verifyPool, logger)

	scheduler, err := workers.NewScheduler(tournamentService, logger)
	if err != nil {
		logger.Error("failed to initialize scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			logger.Error("scheduler shutdown failed", slog.Any("error", err))
		}
	}()

	auth := middleware.NewAuth(cfg.JWTSecretKey)
	router := routes.SetupRoutes(routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService),
		Sport:        handlers.NewSportHandler(sportService),
		Tournament:   handlers.NewTournamentHandler(tournamentService, standingsService),
		Team:         handlers.NewTeamHandler(teamService),
		Fixture:      handlers.NewFixtureHandler(fixtureService),
		Registration: handlers.NewRegistrationHandler(registrationService, verificationService),
		WebSocket:    handlers.NewWebSocketHandler(hub, logger),
	}, auth)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
}
