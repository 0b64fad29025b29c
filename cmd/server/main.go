package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/khoahotran/portli/adapters/backend"
	"github.com/khoahotran/portli/adapters/event"
	httpAdapter "github.com/khoahotran/portli/adapters/http"
	"github.com/khoahotran/portli/adapters/media_storage"
	"github.com/khoahotran/portli/adapters/persistence"
	"github.com/khoahotran/portli/internal/application/service"
	authUC "github.com/khoahotran/portli/internal/application/usecase/auth"
	portfolioUC "github.com/khoahotran/portli/internal/application/usecase/portfolio"
	"github.com/khoahotran/portli/internal/config"
	"github.com/khoahotran/portli/internal/domain/analytics"
	"github.com/khoahotran/portli/internal/domain/session"
	"github.com/khoahotran/portli/pkg/auth"
	"github.com/khoahotran/portli/pkg/logger"
	"github.com/khoahotran/portli/pkg/tracing"
)

const serviceName = "portli-web"

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		panic("FATAL: cannot load config: " + err.Error())
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()

	appLogger.Info("Start Portli web server...", zap.String("env", cfg.App.Env))

	shutdownTracer, err := tracing.NewTracerProvider(cfg, appLogger, serviceName)
	if err != nil {
		appLogger.Fatal("cannot init tracer provider", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(ctx); err != nil {
			appLogger.Error("Failed to shutdown tracer provider", err)
		}
	}()

	// Redis backs the session store and the view counter when configured.
	var redisClient *redis.Client
	if cfg.Session.Store == config.SessionStoreRedis || cfg.Redis.Addr != "" {
		redisClient, err = persistence.NewRedisClient(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("cannot connect Redis", err)
		}
		defer redisClient.Close()
	}

	var storage session.Storage
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		storage = persistence.NewRedisStorage(redisClient, cfg.Session.TTL)
	case config.SessionStoreMemory:
		appLogger.Warn("Using in-memory session storage, sessions are lost on restart")
		storage = session.NewMemoryStorage()
	default:
		appLogger.Fatal("unknown session store", nil, zap.String("store", cfg.Session.Store))
	}

	sessions := session.NewProvider(storage)
	unsubscribe := sessions.Subscribe(func(ev session.Event) {
		appLogger.Info("Session changed",
			zap.String("event", string(ev.Kind)),
			zap.String("client_id", ev.ClientID),
			zap.String("username", ev.Username),
		)
	})
	defer unsubscribe()

	backendClient := backend.NewClient(cfg, sessions, appLogger)

	publisher, closePublisher, err := event.NewKafkaProducerClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot init Kafka", err)
	}
	defer closePublisher()

	var uploader service.Uploader
	uploader, err = media_storage.NewCloudinaryAdapter(cfg, appLogger)
	if errors.Is(err, media_storage.ErrNotConfigured) {
		appLogger.Warn("Cloudinary not configured, profile image uploads are disabled")
		uploader = nil
	} else if err != nil {
		appLogger.Fatal("Failed to initialize uploader", err)
	}

	var counter analytics.Counter
	if redisClient != nil {
		counter = persistence.NewRedisViewCounter(redisClient)
	}

	// Daily view history is read from the worker's Postgres table when a DSN is set.
	var viewHistory analytics.Repository
	if cfg.DB.DSN != "" {
		dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
		if err != nil {
			appLogger.Warn("Postgres unavailable, dashboard shows no daily views", zap.Error(err))
		} else {
			defer dbPool.Close()
			viewHistory = persistence.NewPostgresViewStatsRepo(dbPool, appLogger)
		}
	}

	var tokens *auth.TokenInspector
	if cfg.Auth.CheckExpiry {
		tokens = auth.NewTokenInspector(30 * time.Second)
	}

	// Use Cases
	loginUseCase := authUC.NewLoginUseCase(backendClient, sessions, appLogger)
	registerUseCase := authUC.NewRegisterUseCase(backendClient, sessions, appLogger)
	verifyOTPUseCase := authUC.NewVerifyOTPUseCase(backendClient, sessions, appLogger)
	forgotPasswordUseCase := authUC.NewForgotPasswordUseCase(backendClient, sessions, appLogger)
	resetPasswordUseCase := authUC.NewResetPasswordUseCase(backendClient, sessions, appLogger)
	logoutUseCase := authUC.NewLogoutUseCase(sessions)

	getDashboardUseCase := portfolioUC.NewGetDashboardUseCase(backendClient, sessions, counter, viewHistory, appLogger)
	deletePortfolioUseCase := portfolioUC.NewDeletePortfolioUseCase(backendClient, appLogger)
	openEditorUseCase := portfolioUC.NewOpenEditorUseCase(backendClient, sessions, appLogger)
	savePortfolioUseCase := portfolioUC.NewSavePortfolioUseCase(backendClient, appLogger)
	editPortfolioUseCase := portfolioUC.NewEditPortfolioUseCase(openEditorUseCase, savePortfolioUseCase, sessions, uploader, appLogger)
	viewPublicUseCase := portfolioUC.NewViewPublicPortfolioUseCase(backendClient, publisher, appLogger)
	portfolioFeedUseCase := portfolioUC.NewPortfolioFeedUseCase(backendClient, appLogger)

	// HTTP Handlers
	handlers := httpAdapter.Handlers{
		Auth: httpAdapter.NewAuthHandler(
			loginUseCase,
			registerUseCase,
			verifyOTPUseCase,
			forgotPasswordUseCase,
			resetPasswordUseCase,
			logoutUseCase,
			sessions,
			appLogger,
		),
		Dashboard: httpAdapter.NewDashboardHandler(getDashboardUseCase, deletePortfolioUseCase, sessions, appLogger),
		Editor:    httpAdapter.NewEditorHandler(openEditorUseCase, editPortfolioUseCase, sessions, appLogger),
		Public:    httpAdapter.NewPublicHandler(viewPublicUseCase),
		Feed:      httpAdapter.NewFeedHandler(portfolioFeedUseCase, appLogger),
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := httpAdapter.NewRouter(cfg, appLogger, sessions, tokens, handlers)
	if err != nil {
		appLogger.Fatal("cannot build router", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port), zap.String("backend", cfg.Backend.BaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Cannot run server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}
	appLogger.Info("Server exited")
}
