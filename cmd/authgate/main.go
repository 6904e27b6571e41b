package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/piresc/authgate/internal/pkg/config"
	"github.com/piresc/authgate/internal/pkg/database"
	"github.com/piresc/authgate/internal/pkg/health"
	"github.com/piresc/authgate/internal/pkg/logger"
	"github.com/piresc/authgate/internal/pkg/middleware"
	natspkg "github.com/piresc/authgate/internal/pkg/nats"
	nsqpkg "github.com/piresc/authgate/internal/pkg/nsq"
	"github.com/piresc/authgate/internal/pkg/server"
	"github.com/piresc/authgate/services/auth/gateway"
	"github.com/piresc/authgate/services/auth/handler"
	httpHandler "github.com/piresc/authgate/services/auth/handler/http"
	"github.com/piresc/authgate/services/auth/repository"
	"github.com/piresc/authgate/services/auth/usecase"
)

func main() {
	appName := "authgate"
	configPath := "config/authgate.env"
	configs := config.InitConfig(configPath)

	zapLogger, err := logger.InitZapLoggerFromConfig(configs)
	if err != nil {
		log.Fatalf("Failed to create Zap logger: %v", err)
	}
	defer zapLogger.Close()

	// Set global logger for application-wide access
	logger.SetGlobalLogger(zapLogger)

	logger.Info("Starting application",
		logger.String("app", appName),
		logger.String("version", configs.App.Version),
		logger.String("environment", configs.App.Environment),
		logger.String("auth_api", configs.Backend.BaseURL),
	)

	// Initialize Redis client
	redisClient, err := database.NewRedisClient(configs.Redis)
	if err != nil {
		zapLogger.Fatal("Failed to connect to Redis", logger.Err(err))
	}

	// NATS and NSQ are optional; without either, auth events are dropped
	var natsClient *natspkg.Client
	if configs.NATS.URL != "" {
		natsClient, err = natspkg.NewClient(configs.NATS.URL)
		if err != nil {
			zapLogger.Fatal("Failed to connect to NATS", logger.Err(err))
		}
	}
	var nsqProducer *nsqpkg.Producer
	if configs.NSQ.Address != "" {
		nsqProducer, err = nsqpkg.NewProducer(configs.NSQ.Address)
		if err != nil {
			zapLogger.Fatal("Failed to connect to NSQ", logger.Err(err))
		}
	}
	if natsClient == nil && nsqProducer == nil {
		logger.Warn("Neither NATS_URL nor NSQ_ADDR set, auth events will not be published")
	}

	visitorTTL := time.Duration(configs.Flow.VisitorTTL) * time.Minute

	// Initialize repository
	flowRepo := repository.NewFlowRepo(redisClient, visitorTTL, usecase.VisitorLockTTL(configs.Flow))

	// Initialize gateways
	transports := gateway.NewTransportFactory(configs.Backend, func(visitorID string) http.CookieJar {
		return repository.NewCookieJar(redisClient, visitorID, visitorTTL)
	})
	events := gateway.NewEventPublisher(natsClient, nsqProducer)

	// Initialize usecase
	authUC := usecase.NewAuthUC(flowRepo, transports, events, configs.Flow)

	// Initialize handlers
	authHandler := httpHandler.NewAuthHandler(authUC)
	Handler := handler.NewHandler(authHandler, redisClient.GetClient(), configs)

	// Initialize Echo router
	e := echo.New()
	e.HideBanner = true

	// Add middlewares (panic recovery should be first)
	e.Use(middleware.PanicRecoveryMiddleware(zapLogger))
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.ZapEchoMiddleware(zapLogger))

	// Register health endpoints
	healthService := health.NewHealthService()
	healthService.AddChecker("redis", health.NewRedisHealthChecker(redisClient))
	if natsClient != nil {
		healthService.AddChecker("nats", health.NewNATSHealthChecker(natsClient))
	}
	if nsqProducer != nil {
		healthService.AddChecker("nsq", health.NewNSQHealthChecker(nsqProducer))
	}
	health.RegisterHealthEndpoints(e, appName, healthService)

	// Register service routes
	Handler.RegisterRoutes(e)

	srv := server.NewGracefulServer(e, zapLogger, configs.Server.Port,
		time.Duration(configs.Server.ShutdownTimeout)*time.Second)
	srv.OnShutdown(func(context.Context) error {
		if natsClient != nil {
			natsClient.Close()
		}
		if nsqProducer != nil {
			nsqProducer.Stop()
		}
		return nil
	})
	srv.OnShutdown(func(context.Context) error {
		return redisClient.Close()
	})

	if err := srv.Start(context.Background()); err != nil {
		zapLogger.Fatal("Server stopped with error",
			logger.String("app", appName),
			logger.Err(err),
		)
	}
}
