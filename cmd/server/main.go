package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/pzkpfw44/Pulse360-sub000/internal/cache"
	"github.com/pzkpfw44/Pulse360-sub000/internal/config"
	"github.com/pzkpfw44/Pulse360-sub000/internal/handlers"
	"github.com/pzkpfw44/Pulse360-sub000/internal/models"
	"github.com/pzkpfw44/Pulse360-sub000/internal/repositories/postgres"
	"github.com/pzkpfw44/Pulse360-sub000/internal/services"
	"github.com/pzkpfw44/Pulse360-sub000/internal/utils"
	"github.com/pzkpfw44/Pulse360-sub000/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
		gin.SetMode(gin.ReleaseMode)
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogLogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(
		&models.Employee{},
		&models.Campaign{},
		&models.Submission{},
		&models.AccessToken{},
	); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	var cacheService cache.CacheService = cache.NoopCache{}
	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, evaluation caching disabled", "error", err)
	} else {
		cacheService = cache.NewRedisCache(redisClient, slogLogger)
		defer redisClient.Close()
	}

	eventCfg := config.LoadEventConfig()
	publisher, err := eventCfg.CreateEventPublisher(slogLogger)
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	if cfg.Casdoor.Endpoint != "" {
		casdoorsdk.InitConfig(
			cfg.Casdoor.Endpoint,
			cfg.Casdoor.ClientID,
			cfg.Casdoor.ClientSecret,
			cfg.Casdoor.Certificate,
			cfg.Casdoor.Organization,
			cfg.Casdoor.Application,
		)
	} else {
		logger.Warn("Casdoor not configured, admin routes will reject all requests")
	}

	repo := postgres.NewRepository(db)
	validator := utils.NewValidator()
	validation := services.NewValidationService()
	evaluator := services.NewOpenAIEvaluator(cfg.AI, cacheService, slogLogger)

	sessionService := services.NewSessionService(repo, evaluator, validation, publisher, slogLogger, validator)
	campaignService := services.NewCampaignService(repo, validation, publisher, slogLogger, validator)
	employeeService := services.NewEmployeeService(repo, slogLogger, validator)
	exportService := services.NewExportService(repo, slogLogger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(
		sessionService,
		campaignService,
		employeeService,
		exportService,
		validator,
		logger,
	)
	handlerManager.SetupRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting feedback service", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down feedback service")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
}
