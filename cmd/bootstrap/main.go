package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adaptermiddleware "app-hub/internal/adapters/http/middleware"
	adapterlogger "app-hub/internal/adapters/logger"
	"app-hub/internal/application"
	"app-hub/internal/infrastructure/auth"
	"app-hub/internal/infrastructure/config"
	"app-hub/internal/infrastructure/dynamodb"
	"app-hub/internal/infrastructure/gemini"
	"app-hub/internal/infrastructure/postgres"
	httpiface "app-hub/internal/interfaces/http"
	platformlambda "app-hub/internal/platform/lambda"
	"app-hub/internal/ports"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/labstack/echo/v4"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		adapterlogger.New(adapterlogger.ParseLevel("info")).Error(ctx, "configuration error", "error", err)
		os.Exit(1)
	}
	logger := adapterlogger.New(adapterlogger.ParseLevel(cfg.LogLevel))
	xray.Configure(xray.Config{LogLevel: "error"})

	if cfg.MigrateOnStart {
		if err := postgres.Migrate(cfg.DatabaseURL); err != nil {
			logger.Error(ctx, "failed to apply migrations", "error", err)
			os.Exit(1)
		}
	}

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(ctx, "failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	e, err := buildServer(ctx, cfg, db, logger)
	if err != nil {
		logger.Error(ctx, "failed to initialize server", "error", err)
		os.Exit(1)
	}

	// The Lambda runtime sets this variable; anywhere else we serve HTTP directly.
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		logger.Info(ctx, "starting lambda handler")
		lambda.Start(platformlambda.NewLambdaHandler(e))
		return
	}
	serve(e, cfg.Port, logger)
}

func buildServer(ctx context.Context, cfg config.Config, db *postgres.DB, logger ports.Logger) (*echo.Echo, error) {
	userRepo := postgres.NewUserRepository(db)
	appRepo := postgres.NewApplicationRepository(db)
	grantRepo := postgres.NewGrantRepository(db)
	ticketRepo := postgres.NewTicketRepository(db)

	tokens, err := auth.NewJWTService(cfg.JWTSecret, cfg.Algorithm, cfg.TokenLifetime())
	if err != nil {
		return nil, err
	}
	authSvc := application.NewAuthService(userRepo, auth.NewBcryptHasher(0), tokens, cfg.AdminCreationSecret, logger)
	resolver := application.NewAccessResolver(grantRepo)
	appSvc := application.NewApplicationService(appRepo, grantRepo, resolver, logger)
	accessSvc := application.NewAccessService(grantRepo, logger)
	userSvc := application.NewUserService(userRepo, logger)
	ticketSvc := application.NewTicketService(ticketRepo, logger)

	// Left as a nil interface when no table is configured so the chat service skips persistence.
	var transcripts ports.TranscriptRepository
	if cfg.TranscriptTable != "" {
		client, err := dynamodb.NewClient(ctx, cfg.AWSRegion, cfg.TranscriptTable)
		if err != nil {
			return nil, err
		}
		transcripts = dynamodb.NewTranscriptRepository(client)
	}
	if cfg.Gemini.APIKey == "" {
		logger.Warn(ctx, "GEMINI_API_KEY is not set; chat requests will fail")
	}
	provider := gemini.NewClient(gemini.Config{
		APIKey:  cfg.Gemini.APIKey,
		Model:   cfg.Gemini.Model,
		BaseURL: cfg.Gemini.BaseURL,
		Timeout: cfg.ChatTimeout(),
	})
	chatSvc := application.NewChatService(provider, transcripts, logger)

	metrics := adaptermiddleware.NewMetrics()
	mw := httpiface.Middleware{
		Auth:           adaptermiddleware.BearerAuth(authSvc, logger),
		XRay:           adaptermiddleware.XRayMiddleware("app-hub-http"),
		RequestLogger:  adaptermiddleware.RequestLogger(logger),
		Metrics:        metrics.Middleware(),
		LoginRateLimit: cfg.LoginRateLimit,
	}
	return httpiface.NewRouter(httpiface.Handlers{
		Auth:         httpiface.NewAuthHandler(authSvc, logger),
		Applications: httpiface.NewApplicationsHandler(appSvc, logger),
		Access:       httpiface.NewAccessHandler(accessSvc, logger),
		Users:        httpiface.NewUsersHandler(userSvc, logger),
		Tickets:      httpiface.NewTicketsHandler(ticketSvc, logger),
		Chat:         httpiface.NewChatHandler(chatSvc, logger),
		Health:       httpiface.NewHealthHandler(db, logger),
		Metrics:      echo.WrapHandler(metrics.Handler()),
	}, mw), nil
}

func serve(e *echo.Echo, port string, logger ports.Logger) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info(ctx, "starting http server", "port", port)
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "http server stopped", "error", err)
			stop()
		}
	}()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "graceful shutdown failed", "error", err)
	}
}
